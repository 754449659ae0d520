package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrForbidden            = errors.New("not allowed to modify this resource")
	ErrConflict             = errors.New("resource already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidTwoFactorCode = errors.New("invalid 2FA code")
	ErrTwoFactorNotPending  = errors.New("2FA setup has not been started")
	ErrTwoFactorEnabled     = errors.New("2FA is already enabled")
	ErrTwoFactorDisabled    = errors.New("2FA is not enabled")
	ErrTokenMissing         = errors.New("missing token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenRevoked         = errors.New("token has been invalidated")
	ErrRefreshTokenReused   = errors.New("refresh token reuse detected")
	ErrSessionInactive      = errors.New("session is no longer active")
	ErrSubscriptionGone     = errors.New("push subscription is no longer valid")
	ErrPushNotConfigured    = errors.New("push notifications are not configured")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMediaTooLarge        = errors.New("media exceeds the upload limit")
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a *ValidationError.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
