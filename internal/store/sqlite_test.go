package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-be/internal/database"
	"plantcare-be/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // A second pool connection would see a fresh empty memory DB
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	return NewSQLiteStore(db)
}

func TestInsertAndFindByEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, st.Insert(ctx, user))

	found, err := st.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.ID)
	assert.Equal(t, "alice", found.Username)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestFindByEmail_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsert_DuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", PasswordHash: "h1"}))

	err := st.Insert(ctx, models.User{ID: "u-2", Username: "impostor", Email: "alice@example.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// The original record is untouched.
	found, err := st.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.ID)
}
