package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// CookieName is the cookie carrying the admin token.
const CookieName = "admin_token"

// DefaultMaxAge is how long an issued token stays valid.
const DefaultMaxAge = 24 * time.Hour

const tokenSubject = "admin"

var (
	// ErrNotConfigured is returned by Login when no admin username or
	// password is configured on the server.
	ErrNotConfigured = errors.New("admin credentials not configured")

	// ErrInvalidCredentials is returned by Login on any username or password
	// mismatch. It does not say which one was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidSession is returned for tokens that are malformed or carry a
	// bad signature.
	ErrInvalidSession = errors.New("invalid session token")

	// ErrSessionExpired is returned for well-signed tokens older than the max age.
	ErrSessionExpired = errors.New("session expired")
)

// Options configures a Manager.
type Options struct {
	Username     string
	Password     string
	PasswordHash string // bcrypt hash; takes precedence over Password when set
	Secret       string
	MaxAge       time.Duration
	Secure       bool
}

// Manager issues and verifies signed admin tokens.
type Manager struct {
	username     string
	password     string
	passwordHash []byte
	secret       []byte
	maxAge       time.Duration
	secure       bool

	now func() time.Time
}

// NewManager creates a Manager from opts. A zero MaxAge means DefaultMaxAge.
func NewManager(opts Options) *Manager {
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	m := &Manager{
		username: opts.Username,
		password: opts.Password,
		secret:   []byte(opts.Secret),
		maxAge:   maxAge,
		secure:   opts.Secure,
		now:      time.Now,
	}
	if opts.PasswordHash != "" {
		m.passwordHash = []byte(opts.PasswordHash)
	}
	return m
}

// WithClock replaces the time source. Used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Configured reports whether admin credentials are present.
func (m *Manager) Configured() bool {
	return m.username != "" && (m.password != "" || len(m.passwordHash) > 0)
}

// Login checks the credentials and returns a freshly signed token.
func (m *Manager) Login(username, password string) (string, error) {
	if !m.Configured() {
		return "", ErrNotConfigured
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1

	var passOK bool
	if len(m.passwordHash) > 0 {
		passOK = bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) == 1
	}

	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return m.Issue()
}

// Issue creates a token of the form base64("admin:<millis>:<nonce>:<signature>").
func (m *Manager) Issue() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	payload := strings.Join([]string{
		tokenSubject,
		strconv.FormatInt(m.now().UnixMilli(), 10),
		hex.EncodeToString(nonce),
	}, ":")

	raw := payload + ":" + m.sign(payload)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Verify checks the token's signature and age.
func (m *Manager) Verify(token string) error {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return ErrInvalidSession
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) < 4 {
		return ErrInvalidSession
	}

	payload := strings.Join(parts[:len(parts)-1], ":")
	signature := parts[len(parts)-1]
	if !hmac.Equal([]byte(signature), []byte(m.sign(payload))) {
		return ErrInvalidSession
	}

	issuedMillis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrInvalidSession
	}
	if m.now().Sub(time.UnixMilli(issuedMillis)) > m.maxAge {
		return ErrSessionExpired
	}
	return nil
}

// VerifyRequest reads the session cookie from r and verifies it. A missing
// cookie yields http.ErrNoCookie.
func (m *Manager) VerifyRequest(r *http.Request) error {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return http.ErrNoCookie
	}
	if c.Value == "" {
		return http.ErrNoCookie
	}
	return m.Verify(c.Value)
}

// SetCookie writes the session cookie carrying token.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.maxAge / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
