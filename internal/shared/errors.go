package shared

import (
	"errors"
	"strings"

	"github.com/jobport/jobport/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage returns an error message suitable for end users. Internal
// storage errors are replaced with a generic message.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrDuplicate):
		return sentinelDetail(err)
	case errors.Is(err, httpx.ErrForbidden), errors.Is(err, httpx.ErrProtected):
		return "You are not allowed to do that"
	case errors.Is(err, httpx.ErrNotFound):
		return "The requested record was not found"
	default:
		return "Something went wrong, please try again"
	}
}

// sentinelDetail strips the sentinel prefix from a wrapped error so the
// remaining text can be shown in a form.
func sentinelDetail(err error) string {
	msg := err.Error()
	if _, detail, ok := strings.Cut(msg, ": "); ok && detail != "" {
		return detail
	}
	return msg
}
