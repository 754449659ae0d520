package middleware

import (
	"errors"
	"strings"

	"selfie/model"
	"selfie/services"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID      = "user_id"
	ContextUsername    = "username"
	ContextSessionID   = "session_id"
	ContextTokenID     = "token_id"
	ContextTokenClaims = "token_claims"
)

// AuthMiddleware validates the bearer access token. Every failure is a 401 so
// clients know to try a refresh.
func AuthMiddleware(tokens *services.TokenService, blacklist *services.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.Unauthorized(c, "Missing or invalid token")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, model.ErrTokenExpired) {
				utils.Unauthorized(c, "Token has expired")
				return
			}
			utils.Unauthorized(c, "Invalid token")
			return
		}

		if blacklist.IsRevoked(c.Request.Context(), claims.ID, claims.SessionID) {
			utils.Unauthorized(c, "Token has been invalidated")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextSessionID, claims.SessionID)
		c.Set(ContextTokenID, claims.ID)
		c.Set(ContextTokenClaims, claims)

		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func Username(c *gin.Context) string {
	return c.GetString(ContextUsername)
}

func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}

// TokenClaims returns the parsed access token claims, or nil outside AuthMiddleware.
func TokenClaims(c *gin.Context) *services.Claims {
	if v, ok := c.Get(ContextTokenClaims); ok {
		if claims, ok := v.(*services.Claims); ok {
			return claims
		}
	}
	return nil
}
