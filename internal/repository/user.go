package repository

import (
	"context"
	"time"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
)

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts u. When profile is non-nil it is inserted in the same
	// transaction with its UserID set to the new user's ID.
	// A taken email yields ErrDuplicate.
	Create(ctx context.Context, u *model.User, profile *model.Supervisor) (*model.User, error)

	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error

	TouchLogin(ctx context.Context, id string, now time.Time) error
}

// PasswordResetRepository persists reset tokens.
type PasswordResetRepository interface {
	// Create stores r and invalidates the user's earlier unused tokens.
	Create(ctx context.Context, r *model.PasswordReset) error

	// Consume marks the token with tokenHash used and sets the user's
	// password, atomically. A missing, used or expired token yields
	// sql.ErrNoRows. It returns the user ID.
	Consume(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error)
}
