package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"plantcare-be/internal/models"
	"plantcare-be/internal/store"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, email, password string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// UserService provides registration and credential verification on top of the
// credential store.
type UserService struct {
	store store.CredentialStore
}

// NewUserService creates a new UserService.
func NewUserService(st store.CredentialStore) *UserService {
	return &UserService{store: st}
}

// Register validates the signup input, hashes the password, and persists a new
// account. The store's uniqueness constraint decides duplicate emails; there
// is no lookup-then-insert race here.
func (s *UserService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	if username == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, fmt.Errorf("%w: malformed email address", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}

	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown email and wrong password
// both come back as ErrInvalidCredentials so the response never reveals
// whether the email is registered.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
