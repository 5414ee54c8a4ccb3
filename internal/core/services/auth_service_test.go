package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitr-app/splitr_backend/internal/apperrors"
	"github.com/splitr-app/splitr_backend/internal/core/domain"
	"github.com/splitr-app/splitr_backend/internal/core/services"
	"github.com/splitr-app/splitr_backend/internal/platform/config"
	"github.com/splitr-app/splitr_backend/internal/utils"
)

func tokenTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          15 * time.Minute,
		JWTIssuer:                  "splitr-backend",
		RefreshTokenExpiryDuration: 168 * time.Hour,
	}
}

func TestGenerateAccessToken_ClaimsRoundTrip(t *testing.T) {
	cfg := tokenTestConfig()
	svc := services.NewTokenService(cfg, &MockUserService{})

	token, expiresAt, err := svc.GenerateAccessToken(context.Background(), &domain.User{UserID: "u1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(cfg.JWTExpiryDuration), expiresAt, 5*time.Second)

	claims, err := utils.ParseAndValidateJWT(token, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, cfg.JWTIssuer, claims.Issuer)

	_, err = utils.ParseAndValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateRefreshToken(t *testing.T) {
	raw := "raw-refresh-token"
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	withToken := func(hash string, expiry *time.Time) *MockUserService {
		return &MockUserService{directory: map[string]domain.User{
			"u1": {UserID: "u1", Username: "alice", RefreshTokenHash: hash, RefreshTokenExpiryTime: expiry},
		}}
	}

	t.Run("ValidTokenReturnsUser", func(t *testing.T) {
		svc := services.NewTokenService(tokenTestConfig(), withToken(utils.HashRefreshToken(raw), &future))
		user, err := svc.ValidateAndParseRefreshToken(context.Background(), "u1", raw)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.UserID)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		svc := services.NewTokenService(tokenTestConfig(), withToken(utils.HashRefreshToken(raw), &past))
		_, err := svc.ValidateAndParseRefreshToken(context.Background(), "u1", raw)
		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
	})

	t.Run("MismatchedToken", func(t *testing.T) {
		svc := services.NewTokenService(tokenTestConfig(), withToken(utils.HashRefreshToken(raw), &future))
		_, err := svc.ValidateAndParseRefreshToken(context.Background(), "u1", "someone-elses-token")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("NoStoredToken", func(t *testing.T) {
		svc := services.NewTokenService(tokenTestConfig(), withToken("", nil))
		_, err := svc.ValidateAndParseRefreshToken(context.Background(), "u1", raw)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		svc := services.NewTokenService(tokenTestConfig(), &MockUserService{})
		_, err := svc.ValidateAndParseRefreshToken(context.Background(), "ghost", raw)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}
