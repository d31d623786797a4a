package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "admin_session", "test-secret", time.Hour, false)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.False(t, sess.SignedIn())

	sess.SignIn("backend-token", AdminProfile{Name: "Admin", Email: "admin@example.com", Role: "admin"})
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "admin_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	// The cookie carries only the opaque session id, never the token.
	require.NotContains(t, cookies[0].Value, "backend-token")

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.True(t, loaded.SignedIn())
	require.Equal(t, "backend-token", loaded.Token())
	require.Equal(t, "admin@example.com", loaded.Admin().Email)
}

func TestSessionSignOutKeepsSession(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SignIn("tok", AdminProfile{Name: "Admin"})
	sess.SignOut()
	require.False(t, sess.SignedIn())
	require.Nil(t, sess.Admin())
}

func TestSessionDestroyClearsCookie(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	first := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, first, httptest.NewRequest(http.MethodGet, "/", nil), sess))

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))
	header := rec.Header().Get("Set-Cookie")
	require.True(t, strings.Contains(header, "Max-Age=0") || strings.Contains(header, "Expires="), "expected expiring cookie, got %q", header)
}

func TestSessionFlashPopsOnce(t *testing.T) {
	sm := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sess.AddFlash(FlashMessage{Kind: "success", Message: "Saved"})
	msg := sess.PopFlash()
	require.NotNil(t, msg)
	require.Equal(t, "Saved", msg.Message)
	require.Nil(t, sess.PopFlash())
}
