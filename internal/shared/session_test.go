package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "admin_sid", "session-secret", time.Hour, false), mr
}

func TestSessionCommitAndLoad(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("u-1")
	sess.Set("company_id", "4")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	assert.True(t, mr.Exists("admin_session:"+sess.ID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "u-1", loaded.User())
	assert.Equal(t, "4", loaded.Get("company_id"))

	sm.Destroy(loaded)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))
	assert.False(t, mr.Exists("admin_session:"+sess.ID))
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "admin_sid", Value: "gone"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "gone", sess.ID)
	assert.Empty(t, sess.User())
}

func TestSessionCookieIsSigned(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("admin_session:known", `{"values":{"company_id":"4"},"user_id":"u-1"}`))

	for _, value := range []string{"known", "known.forged", sm.SignedID("other")[len("other"):], "known." + sm.SignedID("known")} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "admin_sid", Value: value})
		sess, err := sm.Load(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, "known", sess.ID, value)
		assert.Empty(t, sess.User(), value)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "admin_sid", Value: sm.SignedID("known")})
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "known", sess.ID)
	assert.Equal(t, "u-1", sess.User())

	other := NewSessionManager(nil, "admin_sid", "another-secret", time.Hour, false)
	assert.NotEqual(t, sm.SignedID("known"), other.SignedID("known"))
}

func TestCSRFToken(t *testing.T) {
	m := NewCSRFManager("secret")
	ctx := context.Background()
	sess := &Session{ID: "s-1"}

	token, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	again, err := m.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, m.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(ctx, &Session{ID: "s-2"}, token), ErrCSRFTokenMissing)

	_, err = m.EnsureToken(ctx, nil)
	assert.ErrorIs(t, err, ErrSessionMissing)
}
