package authz

import (
	"log/slog"
	"net/http"

	"github.com/jobport/jobport/internal/platform/httpx"
)

// Middleware wires role checks into chi routes. It re-resolves nothing: the
// gate already attached the principal to the context.
type Middleware struct {
	Logger *slog.Logger
}

// RequireRole ensures the current principal carries at least one of the
// required roles, responding 401/403 problems otherwise.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromRequest(r)
			if principal == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if len(roles) == 0 || principal.HasAny(roles...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("role check failed",
					slog.String("path", r.URL.Path),
					slog.Int64("user", principal.ID))
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

// RequireAuthenticated passes any signed-in principal through.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return m.RequireRole()
}
