package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"selfie/utils"

	"github.com/gin-gonic/gin"
)

func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", c.GetString(ContextRequestID),
					"stack", string(debug.Stack()),
				)
				utils.TrackError("panic", "recovered")
				utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
