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
	"github.com/splitr-app/splitr_backend/internal/dto"
	"github.com/splitr-app/splitr_backend/internal/utils"
)

// --- Mock UserRepository (based on userService usage) ---

type MockUserRepository struct {
	FindUserByIDFn              func(ctx context.Context, userID string) (*domain.User, error)
	FindUsersByIDsFn            func(ctx context.Context, userIDs []string) (map[string]domain.User, error)
	FindUserByUsernameFn        func(ctx context.Context, username string) (*domain.User, error)
	FindCredentialsByUsernameFn func(ctx context.Context, username string) (*domain.User, string, error)
	ListUsersFn                 func(ctx context.Context, limit, offset int) ([]domain.User, error)
	SaveUserFn                  func(ctx context.Context, user *domain.User, passwordHash string) error
	UpdateUserFn                func(ctx context.Context, user *domain.User) error
	UpdateRefreshTokenFn        func(ctx context.Context, userID string, tokenHash string, expiryTime *time.Time) error
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return m.FindUserByIDFn(ctx, userID)
}

func (m *MockUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	return m.FindUsersByIDsFn(ctx, userIDs)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.FindUserByUsernameFn(ctx, username)
}

func (m *MockUserRepository) FindCredentialsByUsername(ctx context.Context, username string) (*domain.User, string, error) {
	return m.FindCredentialsByUsernameFn(ctx, username)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return m.ListUsersFn(ctx, limit, offset)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user *domain.User, passwordHash string) error {
	return m.SaveUserFn(ctx, user, passwordHash)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	return m.UpdateUserFn(ctx, user)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiryTime *time.Time) error {
	return m.UpdateRefreshTokenFn(ctx, userID, tokenHash, expiryTime)
}

func TestRegisterUser_HashesPasswordAndSaves(t *testing.T) {
	var savedUser *domain.User
	var savedHash string
	repo := &MockUserRepository{
		FindUserByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, apperrors.ErrNotFound
		},
		SaveUserFn: func(ctx context.Context, user *domain.User, passwordHash string) error {
			savedUser = user
			savedHash = passwordHash
			return nil
		},
	}
	svc := services.NewUserService(repo)

	req := dto.RegisterUserRequest{
		Username:   "alice",
		Password:   "s3cretpass",
		FirstName:  "Alice",
		LastName:   "Archer",
		HourlyWage: 25,
		Venmo:      "@alice",
	}
	user, err := svc.RegisterUser(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, savedUser)
	assert.NotEmpty(t, user.UserID)
	assert.Equal(t, "alice", savedUser.Username)
	assert.Equal(t, 25.0, savedUser.HourlyWage)

	// The stored credential is a bcrypt hash of the password, never the password.
	assert.NotEqual(t, req.Password, savedHash)
	assert.True(t, utils.CheckPasswordHash(req.Password, savedHash))
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	repo := &MockUserRepository{
		FindUserByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{UserID: "u1", Username: username}, nil
		},
	}
	svc := services.NewUserService(repo)

	_, err := svc.RegisterUser(context.Background(), dto.RegisterUserRequest{
		Username: "alice", Password: "s3cretpass", FirstName: "A", LastName: "B",
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestAuthenticateUser(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)

	repo := &MockUserRepository{
		FindCredentialsByUsernameFn: func(ctx context.Context, username string) (*domain.User, string, error) {
			if username != "alice" {
				return nil, "", apperrors.ErrNotFound
			}
			return &domain.User{UserID: "u1", Username: "alice"}, hash, nil
		},
	}
	svc := services.NewUserService(repo)

	user, err := svc.AuthenticateUser(context.Background(), "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)

	_, err = svc.AuthenticateUser(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Unknown users get the same answer as a bad password.
	_, err = svc.AuthenticateUser(context.Background(), "mallory", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUpdateUser_SelfOnlyAndPartial(t *testing.T) {
	stored := &domain.User{
		UserID:     "u1",
		Username:   "alice",
		FirstName:  "Alice",
		LastName:   "Archer",
		HourlyWage: 25,
		Venmo:      "@alice",
	}
	var updated *domain.User
	repo := &MockUserRepository{
		FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
			clone := *stored
			return &clone, nil
		},
		UpdateUserFn: func(ctx context.Context, user *domain.User) error {
			updated = user
			return nil
		},
	}
	svc := services.NewUserService(repo)

	_, err := svc.UpdateUser(context.Background(), "u2", "u1", dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	wage := 40.0
	user, err := svc.UpdateUser(context.Background(), "u1", "u1", dto.UpdateUserRequest{HourlyWage: &wage})
	require.NoError(t, err)
	require.NotNil(t, updated)

	// Only the provided field changes.
	assert.Equal(t, 40.0, user.HourlyWage)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "@alice", user.Venmo)
	assert.Equal(t, "u1", user.LastUpdatedBy)
}

func TestGetUsersByIDs_EmptySkipsRepository(t *testing.T) {
	repo := &MockUserRepository{
		FindUsersByIDsFn: func(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
			t.Fatal("repository should not be called for an empty id list")
			return nil, nil
		},
	}
	svc := services.NewUserService(repo)

	result, err := svc.GetUsersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
