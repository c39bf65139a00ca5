package auth

import (
	"context"
	"net/http"
	"time"

	"plantcare-be/internal/models"
)

// CookieName is the name of the cookie carrying the session token.
const CookieName = "session"

type contextKey string

const sessionContextKey = contextKey("session")

// Manager ties the session store and the token codec to the HTTP boundary:
// issuing cookies on signin, resolving cookies to sessions, and gating
// protected routes.
type Manager struct {
	sessions *SessionStore
	tokens   *TokenCodec
}

// NewManager creates a Manager over the given store and codec.
func NewManager(sessions *SessionStore, tokens *TokenCodec) *Manager {
	return &Manager{sessions: sessions, tokens: tokens}
}

// Issue creates a session for user and sets the signed token cookie.
func (m *Manager) Issue(w http.ResponseWriter, user models.User) (*Session, error) {
	s := m.sessions.Create(user)
	token, err := m.tokens.Sign(s)
	if err != nil {
		m.sessions.Invalidate(s.ID)
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	return s, nil
}

// Clear invalidates the request's session, if any, and expires the cookie.
// Safe to call on requests without a session.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if s := m.Resolve(r); s != nil {
		m.sessions.Invalidate(s.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

// Resolve maps the request's cookie token to its live session, or nil when
// there is no cookie, the token fails verification, or the session is gone.
func (m *Manager) Resolve(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	id, err := m.tokens.Parse(cookie.Value)
	if err != nil {
		return nil
	}
	return m.sessions.Get(id)
}

// RequireSession guards browser-facing routes: unauthenticated requests are
// redirected to the signin page.
func (m *Manager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Resolve(r)
		if !Allowed(s) {
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireSessionAPI guards JSON and websocket routes: unauthenticated
// requests get a plain 401 instead of a redirect.
func (m *Manager) RequireSessionAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Resolve(r)
		if !Allowed(s) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns the session stored by the gate, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey).(*Session)
	return s
}
