package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/duka/pkg/session"
)

func serve(t *testing.T, req *http.Request) (string, *http.Cookie) {
	t.Helper()
	var seen string
	h := session.Middleware(session.DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.ID(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return seen, cookies[0]
}

func TestMintsIDWithoutCookie(t *testing.T) {
	id, cookie := serve(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, id)
	assert.Equal(t, "duka_session", cookie.Name)
	assert.Equal(t, id, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 7200, cookie.MaxAge)
}

func TestKeepsExistingID(t *testing.T) {
	existing := session.NewID()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "duka_session", Value: existing})

	id, cookie := serve(t, req)
	assert.Equal(t, existing, id)
	assert.Equal(t, existing, cookie.Value)
}

func TestReplacesMalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "duka_session", Value: "../../etc/passwd"})

	id, _ := serve(t, req)
	assert.NotEqual(t, "../../etc/passwd", id)
	assert.NotEmpty(t, id)
}

func TestIDOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, session.ID(req.Context()))
	assert.Equal(t, "abc", session.ID(session.WithID(req.Context(), "abc")))
}
