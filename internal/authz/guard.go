package authz

import (
	"fmt"

	"github.com/jobport/jobport/internal/platform/httpx"
)

// Require is the single capability check used by every state-changing
// service method. The gate already ran, but several operations are reachable
// from paths the gate treats as generically authenticated, so services never
// rely on it.
func Require(p *Principal, roles ...string) error {
	if p == nil {
		return httpx.ErrUnauthorized
	}
	if p.HasAny(roles...) {
		return nil
	}
	return fmt.Errorf("%w: requires one of %v", httpx.ErrForbidden, roles)
}

// RequireAdmin shorthands the most common guard.
func RequireAdmin(p *Principal) error {
	return Require(p, RoleAdmin, RoleSuperadmin)
}
