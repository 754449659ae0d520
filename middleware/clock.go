package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

const ContextNow = "now"

// OffsetSource yields a user's time machine offset.
type OffsetSource interface {
	TimeOffset(ctx context.Context, userID string) (time.Duration, error)
}

// TimeMachineMiddleware resolves the caller's virtual "now" once per request.
// Lookup failures fall back to the real clock.
func TimeMachineMiddleware(users OffsetSource) gin.HandlerFunc {
	return TimeMachineMiddlewareWithClock(users, time.Now)
}

func TimeMachineMiddlewareWithClock(users OffsetSource, clock func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := clock()
		if userID := UserID(c); userID != "" {
			offset, err := users.TimeOffset(c.Request.Context(), userID)
			if err != nil {
				slog.Warn("time offset lookup failed", "user_id", userID, "error", err)
			} else {
				now = now.Add(offset)
			}
		}
		c.Set(ContextNow, now)
		c.Next()
	}
}

// Now returns the request's virtual time, or the real time when unset.
func Now(c *gin.Context) time.Time {
	if v, ok := c.Get(ContextNow); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Now()
}
