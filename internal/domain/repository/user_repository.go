package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by Create when the email is already taken.
	// Backends enforce this atomically; callers must not rely on a prior lookup.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the interface for user persistence.
// Create assigns ID and timestamps on u. Email is expected to be normalized.
// Delete returns ErrNotFound when no user has the id.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}
