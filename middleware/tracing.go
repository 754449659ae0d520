package middleware

import (
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextRequestID = "request_id"
	HeaderRequestID  = "X-Request-ID"
)

// RequestTracingMiddleware propagates a well-formed incoming X-Request-ID or mints one.
func RequestTracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if !utils.IsID(requestID) {
			requestID = utils.NewID()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}
