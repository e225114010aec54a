package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/internal/platform/httpx"
)

func TestRequire(t *testing.T) {
	require.ErrorIs(t, Require(nil, RoleAdmin), httpx.ErrUnauthorized)
	require.ErrorIs(t, Require(principalWith(RoleJobseeker), RoleRecruiter), httpx.ErrForbidden)
	require.NoError(t, Require(principalWith(RoleRecruiter), RoleRecruiter))
	require.NoError(t, Require(principalWith(RoleJobseeker, RoleRecruiter), RoleRecruiter))
}

func TestRequireAdmin(t *testing.T) {
	require.NoError(t, RequireAdmin(principalWith(RoleAdmin)))
	require.NoError(t, RequireAdmin(principalWith(RoleSuperadmin)))
	require.ErrorIs(t, RequireAdmin(principalWith(RoleRecruiter)), httpx.ErrForbidden)
	require.ErrorIs(t, RequireAdmin(nil), httpx.ErrUnauthorized)
}

func TestRequireRoleMiddleware(t *testing.T) {
	mw := Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	run := func(p *Principal, roles ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/admins", nil)
		if p != nil {
			req = req.WithContext(ContextWithPrincipal(req.Context(), p))
		}
		res := httptest.NewRecorder()
		mw.RequireRole(roles...)(next).ServeHTTP(res, req)
		return res.Code
	}

	require.Equal(t, http.StatusUnauthorized, run(nil, RoleAdmin))
	require.Equal(t, http.StatusForbidden, run(principalWith(RoleJobseeker), RoleAdmin, RoleSuperadmin))
	require.Equal(t, http.StatusNoContent, run(principalWith(RoleSuperadmin), RoleAdmin, RoleSuperadmin))
	require.Equal(t, http.StatusNoContent, run(principalWith(RoleJobseeker)))
}
