package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"selfie/model"
	"selfie/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto its HTTP status. Unknown errors are
// logged and surface as a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.BadRequest(c, verr.Error())
	case errors.Is(err, model.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, model.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, model.ErrConflict):
		utils.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrInvalidTwoFactorCode),
		errors.Is(err, model.ErrTokenMissing):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, model.ErrTwoFactorNotPending),
		errors.Is(err, model.ErrTwoFactorEnabled),
		errors.Is(err, model.ErrTwoFactorDisabled):
		utils.BadRequest(c, err.Error())
	case tokenRejected(err):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, model.ErrPushNotConfigured):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, model.ErrUnsupportedMediaType):
		utils.UnsupportedMediaType(c, err.Error())
	case errors.Is(err, model.ErrMediaTooLarge):
		utils.RequestEntityTooLarge(c, err.Error())
	default:
		utils.TrackError("handler", "internal")
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		utils.InternalError(c, "Internal server error")
	}
}

// tokenRejected reports whether err means the presented token can never be
// used again.
func tokenRejected(err error) bool {
	return errors.Is(err, model.ErrTokenExpired) ||
		errors.Is(err, model.ErrTokenInvalid) ||
		errors.Is(err, model.ErrTokenRevoked) ||
		errors.Is(err, model.ErrRefreshTokenReused) ||
		errors.Is(err, model.ErrSessionInactive)
}

// bindJSON decodes the body into dst, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseTime accepts RFC3339 timestamps or bare YYYY-MM-DD dates (UTC midnight).
func parseTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, model.NewValidationError(field, "must be RFC3339 or YYYY-MM-DD")
}
