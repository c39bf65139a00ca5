package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"plantcare-be/internal/models"
)

// SQLiteStore implements CredentialStore on top of the application database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a credential store backed by db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// FindByEmail retrieves a single user by email, including the password hash.
func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Insert writes a new user. The UNIQUE constraint on email makes the
// uniqueness check atomic with the write.
func (s *SQLiteStore) Insert(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash) VALUES (?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// isUniqueViolation reports whether err is the sqlite UNIQUE constraint error
// (SQLITE_CONSTRAINT_UNIQUE, extended code 2067).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
