package authz

import (
	"context"
	"net/http"
)

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context. Only the
// gate writes it; handlers extract it once and pass it on explicitly.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, nil when unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// PrincipalFromRequest is a convenience for handlers.
func PrincipalFromRequest(r *http.Request) *Principal {
	return PrincipalFromContext(r.Context())
}
