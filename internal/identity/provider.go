// Package identity is the account and profile store the credential gate
// delegates to.
package identity

import (
	"context"
	"errors"

	"barber-queue/internal/models"
)

var (
	ErrEmailInUse    = errors.New("email already registered")
	ErrWeakPassword  = errors.New("password too weak")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

// MinPasswordLength is the shortest password CreateAccount accepts.
const MinPasswordLength = 6

type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (models.Identity, error)
	SignIn(ctx context.Context, email, password string) (models.Identity, error)
	SignInAnonymous(ctx context.Context) (models.Identity, error)
	WriteProfile(ctx context.Context, id models.Identity, profile models.Profile) error
	// ReadProfile reports false when the identity has no profile.
	ReadProfile(ctx context.Context, id models.Identity) (models.Profile, bool, error)
}
