// Package store defines the durable credential storage contract. The only
// operations in scope are lookup by email and insert; accounts are never
// updated or deleted once created.
package store

import (
	"context"
	"errors"

	"plantcare-be/internal/models"
)

var (
	// ErrNotFound is returned by FindByEmail when no account has the email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by Insert when the email is already
	// registered. The storage layer itself enforces uniqueness, so a
	// concurrent insert race cannot slip a duplicate past a lookup.
	ErrDuplicateEmail = errors.New("email already registered")
)

// CredentialStore persists user accounts keyed by unique email.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Insert(ctx context.Context, user models.User) error
}
