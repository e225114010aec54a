// Package authz holds the role model, the path policy and the request gate
// that decide who may reach which part of the application.
package authz

// Role tags carried on a user account. The set is closed; anything else in
// storage is ignored by the policy.
const (
	RoleJobseeker  = "jobseeker"
	RoleRecruiter  = "recruiter"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Principal is the authenticated identity attached to one request. It is
// built from the session once per request and passed explicitly; it owns no
// persistent state.
type Principal struct {
	ID       int64
	Name     string
	Email    string
	Roles    []string
	IsActive bool
}

// HasRole reports whether the principal carries the given role tag.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the principal's role set intersects the given tags.
func (p *Principal) HasAny(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal is an admin or superadmin.
func (p *Principal) IsAdmin() bool {
	return p.HasAny(RoleAdmin, RoleSuperadmin)
}
