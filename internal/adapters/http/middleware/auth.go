package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const accountContextKey contextKey = "account"

// Session timing. A session is valid for sessionTTL after creation or last
// refresh, and can be refreshed until refreshWindow after creation. Past
// the refresh window the user must log in again.
const (
	sessionTTL    = 1 * time.Hour
	refreshWindow = 24 * time.Hour
)

// Session represents an authenticated session.
type Session struct {
	AccountID string
	Email     string
	Role      string
	CompanyID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore is an in-memory session store with short-lived sessions
// that can be refreshed within a longer window.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create stores a new session and returns the token.
// PRE: accountID, email, role are non-empty
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(accountID, email, role, companyID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := ss.now()
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{
		AccountID: accountID,
		Email:     email,
		Role:      role,
		CompanyID: companyID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	return token, nil
}

// Get retrieves a session by token. Expired sessions are not returned but
// stay stored until the refresh window closes.
// PRE: token is non-empty
// POST: Returns session if valid and not expired
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	session, ok := ss.sessions[token]
	if !ok {
		return Session{}, false
	}
	if ss.now().After(session.ExpiresAt) {
		return Session{}, false
	}
	return session, true
}

// Refresh extends an expired or near-expired session if it is still within
// the refresh window. Sessions past the window are removed.
// POST: On success the session's expiry is pushed out by the TTL
func (ss *SessionStore) Refresh(token string) (Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return Session{}, false
	}
	now := ss.now()
	if now.After(session.CreatedAt.Add(refreshWindow)) {
		delete(ss.sessions, token)
		return Session{}, false
	}
	session.ExpiresAt = now.Add(sessionTTL)
	ss.sessions[token] = session
	return session, true
}

// Delete removes a session by token.
// PRE: token is non-empty
// POST: Session with given token is removed
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

const sessionCookieName = "gama_session"

// SecureCookies controls the Secure flag on session cookies. Set to true
// in production from main.
var SecureCookies = false

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(accountContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests and by the access gate.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, accountContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(refreshWindow / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionTokenFromRequest extracts the raw session token from the cookie.
func SessionTokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
