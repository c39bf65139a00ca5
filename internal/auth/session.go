package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"plantcare-be/internal/models"
)

// Session is the server-side record of an authenticated client. The client
// never holds a Session directly, only an opaque token mapping to one.
type Session struct {
	ID            string
	Authenticated bool
	UserID        string
	Username      string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Allowed is the session gate: it reports whether a session may pass into a
// protected operation. It is a pure predicate with no side effects.
func Allowed(s *Session) bool {
	return s != nil && s.Authenticated
}

// SessionStore keeps live sessions in memory, keyed by session ID. Sessions do
// not survive a process restart.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionStore creates a store whose sessions expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new authenticated session for the user.
func (st *SessionStore) Create(user models.User) *Session {
	now := time.Now()
	s := &Session{
		ID:            uuid.New().String(),
		Authenticated: true,
		UserID:        user.ID,
		Username:      user.Username,
		CreatedAt:     now,
		ExpiresAt:     now.Add(st.ttl),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the live session for id, or nil when the id is unknown or the
// session has expired. Expired sessions are dropped on access.
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(st.sessions, id)
		return nil
	}
	return s
}

// Invalidate destroys the session with the given id. Invalidating an unknown
// or already-invalidated session is a no-op, never an error.
func (st *SessionStore) Invalidate(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// PurgeExpired drops every expired session and returns how many were removed.
// Called periodically by the janitor.
func (st *SessionStore) PurgeExpired() int {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	purged := 0
	for id, s := range st.sessions {
		if now.After(s.ExpiresAt) {
			delete(st.sessions, id)
			purged++
		}
	}
	return purged
}

// Len returns the number of live (possibly expired but unpurged) sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
