package session_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/daap14/eventpass/internal/session"
)

func newManager(now time.Time) *session.Manager {
	return session.NewManager(session.Options{
		Username: "admin",
		Password: "s3cret",
		Secret:   "signing-key",
		MaxAge:   24 * time.Hour,
	}).WithClock(func() time.Time { return now })
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	m := newManager(time.Now())

	token, err := m.Login("admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	decoded, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	parts := strings.Split(string(decoded), ":")
	require.Len(t, parts, 4)
	assert.Equal(t, "admin", parts[0])
	assert.Len(t, parts[2], 32)
	assert.Len(t, parts[3], 64)

	assert.NoError(t, m.Verify(token))
}

func TestLogin_WrongCredentials(t *testing.T) {
	t.Parallel()

	m := newManager(time.Now())

	_, err := m.Login("admin", "nope")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	_, err = m.Login("root", "s3cret")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

func TestLogin_NotConfigured(t *testing.T) {
	t.Parallel()

	m := session.NewManager(session.Options{Username: "admin", Secret: "x"})

	_, err := m.Login("admin", "")
	assert.ErrorIs(t, err, session.ErrNotConfigured)
	assert.False(t, m.Configured())
}

func TestLogin_PasswordHash(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	m := session.NewManager(session.Options{
		Username:     "admin",
		PasswordHash: string(hash),
		Secret:       "k",
	})

	_, err = m.Login("admin", "hashed-pass")
	assert.NoError(t, err)

	_, err = m.Login("admin", "other")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	m := newManager(time.Now())
	token, err := m.Issue()
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	raw := string(decoded)

	last := raw[len(raw)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	tampered := raw[:len(raw)-1] + string(flipped)

	err = m.Verify(base64.StdEncoding.EncodeToString([]byte(tampered)))
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestVerify_OtherSecret(t *testing.T) {
	t.Parallel()

	token, err := newManager(time.Now()).Issue()
	require.NoError(t, err)

	other := session.NewManager(session.Options{Username: "admin", Password: "s3cret", Secret: "different"})
	assert.ErrorIs(t, other.Verify(token), session.ErrInvalidSession)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	m := newManager(time.Now())

	cases := map[string]string{
		"empty":        "",
		"not base64":   "%%%",
		"three fields": base64.StdEncoding.EncodeToString([]byte("admin:1:abc")),
		"garbage":      base64.StdEncoding.EncodeToString([]byte("::::")),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, m.Verify(token), session.ErrInvalidSession)
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := issuedAt
	m := session.NewManager(session.Options{
		Username: "admin",
		Password: "s3cret",
		Secret:   "signing-key",
		MaxAge:   24 * time.Hour,
	}).WithClock(func() time.Time { return now })

	token, err := m.Issue()
	require.NoError(t, err)

	now = issuedAt.Add(23 * time.Hour)
	assert.NoError(t, m.Verify(token))

	now = issuedAt.Add(25 * time.Hour)
	assert.ErrorIs(t, m.Verify(token), session.ErrSessionExpired)
}

func TestCookies(t *testing.T) {
	t.Parallel()

	m := session.NewManager(session.Options{
		Username: "admin",
		Password: "s3cret",
		Secret:   "k",
		Secure:   true,
	})

	w := httptest.NewRecorder()
	m.SetCookie(w, "tok")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, session.CookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	w = httptest.NewRecorder()
	m.ClearCookie(w)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestVerifyRequest(t *testing.T) {
	t.Parallel()

	m := newManager(time.Now())

	req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	assert.ErrorIs(t, m.VerifyRequest(req), http.ErrNoCookie)

	token, err := m.Issue()
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	assert.NoError(t, m.VerifyRequest(req))
}
