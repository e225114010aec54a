package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jobport/jobport/internal/platform/httpx"
)

// Gate applies the policy to every inbound request before any handler runs.
// It is the only place path-prefix policy is evaluated; per-resource rules
// live with the services.
type Gate struct {
	policy   *Policy
	resolver Resolver
	logger   *slog.Logger
}

// NewGate constructs a Gate.
func NewGate(policy *Policy, resolver Resolver, logger *slog.Logger) *Gate {
	return &Gate{policy: policy, resolver: resolver, logger: logger}
}

// Middleware resolves the caller's principal, consults the policy and either
// passes the request through (principal attached to context) or turns the
// decision into a redirect for pages and a problem response for /api paths.
// Resolution errors fail closed: the caller is treated as unauthenticated.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.resolver.Resolve(r.Context(), r)
		if err != nil {
			if g.logger != nil {
				g.logger.Warn("principal resolution failed", slog.Any("error", err))
			}
			principal = nil
		}

		path := NormalizePath(r.URL.Path)
		switch g.policy.Decide(path, principal) {
		case Allow:
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		case RedirectSignIn:
			if isAPIPath(path) {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			http.Redirect(w, r, SignInPath, http.StatusSeeOther)
		case RedirectDashboard:
			if isAPIPath(path) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
		}
	})
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
