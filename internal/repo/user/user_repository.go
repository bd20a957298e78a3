package user

import (
	"context"

	"github.com/mkrupp/shop/internal/domain"
)

// Repository defines the interface for account persistence.
type Repository interface {
	// CreateUser adds a new user and returns its id.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, username, password string) (int64, error)

	// GetUserByUsername retrieves a user by exact (case-sensitive) username.
	// Returns domain.ErrUserNotFound if there is none.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
}
