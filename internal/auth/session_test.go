package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-be/internal/models"
)

func testUser() models.User {
	return models.User{ID: "u-1", Username: "alice", Email: "alice@example.com"}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{"authenticated flag present and true", &Session{Authenticated: true}, true},
		{"authenticated flag present but false", &Session{Authenticated: false}, false},
		{"no session at all", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.session))
		})
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	st := NewSessionStore(time.Hour)

	s := st.Create(testUser())
	require.NotEmpty(t, s.ID)
	assert.True(t, s.Authenticated)
	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, "alice", s.Username)

	got := st.Get(s.ID)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)

	assert.Nil(t, st.Get("no-such-session"))
}

func TestSessionStore_GetExpired(t *testing.T) {
	st := NewSessionStore(-time.Minute) // Already expired on creation
	s := st.Create(testUser())

	assert.Nil(t, st.Get(s.ID))
	assert.Equal(t, 0, st.Len(), "expired session should be dropped on access")
}

func TestSessionStore_InvalidateIsIdempotent(t *testing.T) {
	st := NewSessionStore(time.Hour)
	s := st.Create(testUser())

	st.Invalidate(s.ID)
	assert.Nil(t, st.Get(s.ID))

	// Invalidating again must be a harmless no-op.
	st.Invalidate(s.ID)
	assert.Nil(t, st.Get(s.ID))
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	st := NewSessionStore(time.Hour)
	live := st.Create(testUser())

	expired := st.Create(testUser())
	st.mu.Lock()
	st.sessions[expired.ID].ExpiresAt = time.Now().Add(-time.Minute)
	st.mu.Unlock()

	assert.Equal(t, 1, st.PurgeExpired())
	assert.NotNil(t, st.Get(live.ID))
	assert.Equal(t, 1, st.Len())
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	s := &Session{ID: "sess-1", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	token, err := codec.Sign(s)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)
}

func TestTokenCodec_RejectsWrongSecret(t *testing.T) {
	s := &Session{ID: "sess-1", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	token, err := NewTokenCodec("secret-a").Sign(s)
	require.NoError(t, err)

	_, err = NewTokenCodec("secret-b").Parse(token)
	assert.Error(t, err)
}

func TestTokenCodec_RejectsExpired(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	s := &Session{ID: "sess-1", CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour)}

	token, err := codec.Sign(s)
	require.NoError(t, err)

	_, err = codec.Parse(token)
	assert.Error(t, err)
}

func TestTokenCodec_RejectsGarbage(t *testing.T) {
	_, err := NewTokenCodec("test-secret").Parse("not-a-token")
	assert.Error(t, err)
}
