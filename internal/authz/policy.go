package authz

import "strings"

// Decision is the terminal verdict of the policy for one request.
type Decision int

const (
	// Allow passes the request through to its handler.
	Allow Decision = iota
	// RedirectSignIn sends an unauthenticated caller to the sign-in page.
	RedirectSignIn
	// RedirectDashboard bounces an authenticated caller whose roles do not
	// match the path back to their dashboard.
	RedirectDashboard
)

// Redirect targets used by the gate.
const (
	SignInPath    = "/auth/signin"
	DashboardPath = "/dashboard"
)

// Rule maps a path prefix to the roles allowed under it. The rule table is
// data, not code, so tests can cover it exhaustively.
type Rule struct {
	Prefix string
	Roles  []string
}

// Policy decides access for normalized request paths.
type Policy struct {
	public         map[string]struct{}
	publicPrefixes []string
	rules          []Rule
}

// NewPolicy returns the application's policy table.
//
// Paths under /jobs, /applications and /profile accept jobseekers and
// recruiters: roles are stored as a set, and recruiters legitimately read
// listings that link back to their own postings.
func NewPolicy() *Policy {
	return &Policy{
		public: map[string]struct{}{
			"/":        {},
			"/about":   {},
			"/contact": {},
			"/privacy": {},
			"/terms":   {},
			"/healthz": {},
			"/metrics": {},
		},
		publicPrefixes: []string{"/auth", "/static"},
		rules: []Rule{
			{Prefix: "/jobs", Roles: []string{RoleJobseeker, RoleRecruiter}},
			{Prefix: "/applications", Roles: []string{RoleJobseeker, RoleRecruiter}},
			{Prefix: "/profile", Roles: []string{RoleJobseeker, RoleRecruiter}},
			{Prefix: "/post-job", Roles: []string{RoleRecruiter}},
			{Prefix: "/my-jobs", Roles: []string{RoleRecruiter}},
			{Prefix: "/applicants", Roles: []string{RoleRecruiter}},
			{Prefix: "/admin", Roles: []string{RoleAdmin, RoleSuperadmin}},
			{Prefix: "/api/admin", Roles: []string{RoleAdmin, RoleSuperadmin}},
		},
	}
}

// Decide maps (path, principal) to an access decision. It is pure and
// deterministic: no I/O, no side effects. The path must be a normalized
// request path (leading slash, no query string); principal is nil when no
// valid session was presented.
func (p *Policy) Decide(path string, principal *Principal) Decision {
	path = NormalizePath(path)

	if p.isPublic(path) {
		return Allow
	}
	if principal == nil {
		return RedirectSignIn
	}
	for _, rule := range p.rules {
		if !matchPrefix(path, rule.Prefix) {
			continue
		}
		if principal.HasAny(rule.Roles...) {
			return Allow
		}
		return RedirectDashboard
	}
	// Authenticated path with no explicit rule.
	return Allow
}

func (p *Policy) isPublic(path string) bool {
	if _, ok := p.public[path]; ok {
		return true
	}
	for _, prefix := range p.publicPrefixes {
		if matchPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NormalizePath strips trailing slashes so /admin/ and /admin decide alike.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// matchPrefix matches on whole path segments: /jobs matches /jobs and
// /jobs/42 but not /jobsearch.
func matchPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
