package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func reload(t *testing.T, sm *SessionManager, id string) *Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: id})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return sess
}

func TestUserIDRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Zero(t, sess.UserID())

	sess.SetUserID(42)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, sess))

	require.Equal(t, int64(42), reload(t, sm, sess.ID).UserID())
}

func TestFlashSurvivesRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	// POST handler queues a flash and commits before redirecting.
	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodPost, "/profile", nil))
	require.NoError(t, err)
	sess.Flash(FlashSuccess, "Profile updated")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, sess))

	// The next page view pops it exactly once.
	next := reload(t, sm, sess.ID)
	flash := next.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, FlashSuccess, flash.Kind)
	require.Equal(t, "Profile updated", flash.Message)
	require.Nil(t, next.PopFlash())
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, next))

	require.Nil(t, reload(t, sm, sess.ID).PopFlash())
}

func TestDestroyExpiresCookieAndRecord(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUserID(7)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, sess))

	sm.Destroy(sess)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, nil, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sm.CookieName(), cookies[0].Name)
	require.Equal(t, -1, cookies[0].MaxAge)

	require.Zero(t, reload(t, sm, sess.ID).UserID())
}
