package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	principal *Principal
	err       error
}

func (s stubResolver) Resolve(ctx context.Context, r *http.Request) (*Principal, error) {
	return s.principal, s.err
}

func serveThrough(t *testing.T, gate *Gate, target string) (*httptest.ResponseRecorder, *Principal) {
	t.Helper()
	var seen *Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromRequest(r)
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, target, nil)
	res := httptest.NewRecorder()
	gate.Middleware(next).ServeHTTP(res, req)
	return res, seen
}

func TestGateAllowsPublicPathWithoutPrincipal(t *testing.T) {
	gate := NewGate(NewPolicy(), stubResolver{}, nil)
	res, seen := serveThrough(t, gate, "/about")
	require.Equal(t, http.StatusOK, res.Code)
	require.Nil(t, seen)
}

func TestGateRedirectsUnauthenticatedPage(t *testing.T) {
	gate := NewGate(NewPolicy(), stubResolver{}, nil)
	res, _ := serveThrough(t, gate, "/admin/jobs")
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, SignInPath, res.Header().Get("Location"))
}

func TestGateRedirectsWrongRoleToDashboard(t *testing.T) {
	gate := NewGate(NewPolicy(), stubResolver{principal: principalWith(RoleJobseeker)}, nil)
	res, _ := serveThrough(t, gate, "/post-job")
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, DashboardPath, res.Header().Get("Location"))
}

func TestGateRespondsProblemsOnAPIPaths(t *testing.T) {
	gate := NewGate(NewPolicy(), stubResolver{}, nil)
	res, _ := serveThrough(t, gate, "/api/admin/jobs")
	require.Equal(t, http.StatusUnauthorized, res.Code)

	gate = NewGate(NewPolicy(), stubResolver{principal: principalWith(RoleRecruiter)}, nil)
	res, _ = serveThrough(t, gate, "/api/admin/jobs")
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestGateFailsClosedOnResolverError(t *testing.T) {
	gate := NewGate(NewPolicy(), stubResolver{err: errors.New("directory down")}, nil)
	res, _ := serveThrough(t, gate, "/jobs")
	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, SignInPath, res.Header().Get("Location"))
}

func TestGateAttachesPrincipal(t *testing.T) {
	principal := principalWith(RoleRecruiter)
	gate := NewGate(NewPolicy(), stubResolver{principal: principal}, nil)
	res, seen := serveThrough(t, gate, "/my-jobs")
	require.Equal(t, http.StatusOK, res.Code)
	require.Same(t, principal, seen)
}
