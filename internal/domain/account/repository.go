package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for accounts and profiles.
type Repository interface {
	// CreateWithProfile inserts the account and its profile in one
	// transaction. Returns pkg/errors.ErrAccountExists when the email is
	// already registered.
	CreateWithProfile(ctx context.Context, acc *Account, profile *Profile) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, accountID uuid.UUID) (*Account, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error
	// SetCode stores a pending verification code; a nil code clears it.
	SetCode(ctx context.Context, accountID uuid.UUID, code *string) error
	// MarkVerified flips is_verified and clears the pending code.
	MarkVerified(ctx context.Context, accountID uuid.UUID) error
	SetPassword(ctx context.Context, accountID uuid.UUID, passwordHash string) error
}

// TokenRepository owns the single active bearer token per account.
type TokenRepository interface {
	// Issue removes every token the account holds and inserts a fresh one,
	// all in one transaction.
	Issue(ctx context.Context, accountID uuid.UUID) (*AuthToken, error)
	GetByToken(ctx context.Context, token string) (*AuthToken, error)
	// Delete removes the token by its opaque value. Returns
	// pkg/errors.ErrInvalidToken when the token is unknown.
	Delete(ctx context.Context, token string) error
	DeleteForAccount(ctx context.Context, accountID uuid.UUID) error
}
