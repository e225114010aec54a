package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func principalWith(roles ...string) *Principal {
	return &Principal{ID: 1, Roles: roles, IsActive: true}
}

func TestDecidePublicPathsAlwaysAllow(t *testing.T) {
	policy := NewPolicy()
	paths := []string{"/", "/auth/signin", "/auth/signup", "/about", "/contact", "/privacy", "/terms", "/healthz", "/static/css/app.css"}
	principals := []*Principal{
		nil,
		principalWith(RoleJobseeker),
		principalWith(RoleRecruiter),
		principalWith(RoleAdmin),
		principalWith(RoleSuperadmin),
		principalWith(),
	}
	for _, path := range paths {
		for _, p := range principals {
			require.Equal(t, Allow, policy.Decide(path, p), "path %s", path)
		}
	}
}

func TestDecideUnauthenticatedRedirectsToSignIn(t *testing.T) {
	policy := NewPolicy()
	for _, path := range []string{"/jobs", "/jobs/42", "/post-job", "/admin", "/admin/users", "/dashboard", "/notifications"} {
		require.Equal(t, RedirectSignIn, policy.Decide(path, nil), "path %s", path)
	}
}

func TestDecideAdminPaths(t *testing.T) {
	policy := NewPolicy()
	cases := []struct {
		principal *Principal
		want      Decision
	}{
		{principalWith(RoleAdmin), Allow},
		{principalWith(RoleSuperadmin), Allow},
		{principalWith(RoleAdmin, RoleSuperadmin), Allow},
		{principalWith(RoleJobseeker), RedirectDashboard},
		{principalWith(RoleRecruiter), RedirectDashboard},
		{principalWith(), RedirectDashboard},
	}
	for _, path := range []string{"/admin", "/admin/jobs", "/api/admin/logs"} {
		for _, tc := range cases {
			require.Equal(t, tc.want, policy.Decide(path, tc.principal), "path %s roles %v", path, tc.principal.Roles)
		}
	}
}

func TestDecideRecruiterPaths(t *testing.T) {
	policy := NewPolicy()
	for _, path := range []string{"/post-job", "/my-jobs", "/applicants", "/my-jobs/9"} {
		require.Equal(t, Allow, policy.Decide(path, principalWith(RoleRecruiter)))
		require.Equal(t, RedirectDashboard, policy.Decide(path, principalWith(RoleJobseeker)))
		require.Equal(t, RedirectDashboard, policy.Decide(path, principalWith(RoleAdmin)))
		require.Equal(t, RedirectDashboard, policy.Decide(path, principalWith()))
		require.Equal(t, RedirectSignIn, policy.Decide(path, nil))
	}
}

func TestDecideJobsPathsAcceptJobseekerAndRecruiter(t *testing.T) {
	policy := NewPolicy()
	for _, path := range []string{"/jobs", "/jobs/7", "/applications", "/profile"} {
		require.Equal(t, Allow, policy.Decide(path, principalWith(RoleJobseeker)))
		require.Equal(t, Allow, policy.Decide(path, principalWith(RoleRecruiter)))
		require.Equal(t, RedirectDashboard, policy.Decide(path, principalWith(RoleAdmin)))
	}
}

func TestDecideUnlistedAuthenticatedPathAllows(t *testing.T) {
	policy := NewPolicy()
	require.Equal(t, Allow, policy.Decide("/dashboard", principalWith(RoleJobseeker)))
	require.Equal(t, Allow, policy.Decide("/notifications", principalWith(RoleRecruiter)))
	require.Equal(t, Allow, policy.Decide("/dashboard", principalWith(RoleAdmin)))
}

func TestDecidePrefixMatchesWholeSegments(t *testing.T) {
	policy := NewPolicy()
	// /jobsearch must not inherit the /jobs rule.
	require.Equal(t, Allow, policy.Decide("/jobsearch", principalWith(RoleAdmin)))
	require.Equal(t, RedirectDashboard, policy.Decide("/jobs/search", principalWith(RoleAdmin)))
}

func TestNormalizePath(t *testing.T) {
	require.Equal(t, "/", NormalizePath(""))
	require.Equal(t, "/", NormalizePath("/"))
	require.Equal(t, "/admin", NormalizePath("/admin/"))
	require.Equal(t, "/jobs", NormalizePath("/jobs///"))
}
