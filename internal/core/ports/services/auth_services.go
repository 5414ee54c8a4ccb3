package services

import (
	"context"
	"time"

	"github.com/splitr-app/splitr_backend/internal/core/domain"
)

// TokenSvcFacade handles access and refresh token lifecycle.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a signed JWT for the user and returns it with
	// its expiry time.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// GenerateRefreshToken creates an opaque refresh token and returns it with
	// its expiry time. Only its hash is persisted.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken checks a presented refresh token against the
	// stored hash and returns the owning user.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshToken string) (*domain.User, error)
}

// GoogleOAuthSvcFacade handles the Google OAuth sign-in flow.
type GoogleOAuthSvcFacade interface {
	// GetLoginURL builds the Google consent page URL for the given CSRF state.
	GetLoginURL(state string) string

	// HandleCallback exchanges the authorization code, validates the ID token and
	// returns the matching local user, creating one on first sign-in.
	HandleCallback(ctx context.Context, code string) (*domain.User, error)
}
