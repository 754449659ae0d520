package middleware

import (
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

// ValidateIDParam rejects malformed resource ids before they reach a handler.
func ValidateIDParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.IsID(c.Param(name)) {
			utils.BadRequest(c, "Invalid "+name)
			return
		}
		c.Next()
	}
}
