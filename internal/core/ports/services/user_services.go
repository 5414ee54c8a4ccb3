package services

import (
	"context"
	"time"

	"github.com/splitr-app/splitr_backend/internal/core/domain"
	"github.com/splitr-app/splitr_backend/internal/dto"
)

// UserSvcFacade defines the user service operations. It doubles as the identity
// resolver consumed by the expense core: name, wage and payment handle lookups.
type UserSvcFacade interface {
	// RegisterUser creates a new user with a hashed password.
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// GetUserByID retrieves a user by id. Returns ErrNotFound for unknown ids.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUsersByIDs resolves many users at once, keyed by id.
	// Returns ErrNotFound if any id is unknown.
	GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)

	// UpdateUser updates a user's own profile. Returns ErrForbidden when callerID
	// and userID differ.
	UpdateUser(ctx context.Context, callerID string, userID string, req dto.UpdateUserRequest) (*domain.User, error)

	// AuthenticateUser verifies a username/password pair.
	// Returns ErrUnauthorized on mismatch.
	AuthenticateUser(ctx context.Context, username string, password string) (*domain.User, error)

	// SetRefreshToken stores the hash of a user's current refresh token.
	SetRefreshToken(ctx context.Context, userID string, tokenHash string, expiryTime time.Time) error

	// ClearRefreshToken invalidates a user's stored refresh token.
	ClearRefreshToken(ctx context.Context, userID string) error
}
