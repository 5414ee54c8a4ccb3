package repositories

import (
	"context"
	"time"

	"github.com/splitr-app/splitr_backend/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a user by their unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUsersByIDs retrieves users for the given ids, keyed by id.
	// Returns ErrNotFound if any id is unknown.
	FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)

	// FindUserByUsername retrieves a user by username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindCredentialsByUsername retrieves a user together with their stored
	// password hash, for authentication.
	FindCredentialsByUsername(ctx context.Context, username string) (*domain.User, string, error)

	// ListUsers retrieves all active users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user *domain.User, passwordHash string) error

	// UpdateUser updates a user's profile fields.
	UpdateUser(ctx context.Context, user *domain.User) error

	// UpdateRefreshToken stores the hash and expiry of a user's refresh token.
	// A nil expiry clears the stored token.
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiryTime *time.Time) error
}

// UserRepositoryFacade combines all user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
