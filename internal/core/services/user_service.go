package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splitr-app/splitr_backend/internal/apperrors"
	"github.com/splitr-app/splitr_backend/internal/core/domain"
	portsrepo "github.com/splitr-app/splitr_backend/internal/core/ports/repositories"
	portssvc "github.com/splitr-app/splitr_backend/internal/core/ports/services"
	"github.com/splitr-app/splitr_backend/internal/dto"
	"github.com/splitr-app/splitr_backend/internal/middleware"
	"github.com/splitr-app/splitr_backend/internal/utils"
)

// userService provides user registration, lookup and credential operations.
// It is also the identity resolver the expense core uses for participant
// names, wages and payment handles.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

// Ensure userService implements the portssvc.UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// RegisterUser creates a new user with a hashed password.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", apperrors.ErrDuplicate, req.Username)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		UserID:     uuid.NewString(),
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		HourlyWage: req.HourlyWage,
		Venmo:      req.Venmo,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "self-registration",
			LastUpdatedAt: now,
			LastUpdatedBy: "self-registration",
		},
	}

	if err := s.userRepo.SaveUser(ctx, user, passwordHash); err != nil {
		logger.Error("Failed to save user", slog.String("username", req.Username), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	return user, nil
}

// GetUserByID retrieves a user by id.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// GetUsersByIDs resolves many users at once, keyed by id.
func (s *userService) GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	if len(userIDs) == 0 {
		return map[string]domain.User{}, nil
	}
	return s.userRepo.FindUsersByIDs(ctx, userIDs)
}

// ListUsers retrieves all active users.
func (s *userService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	return s.userRepo.ListUsers(ctx, limit, offset)
}

// UpdateUser updates a user's own profile fields.
func (s *userService) UpdateUser(ctx context.Context, callerID string, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	if callerID != userID {
		return nil, fmt.Errorf("%w: users can only update their own profile", apperrors.ErrForbidden)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.HourlyWage != nil {
		user.HourlyWage = *req.HourlyWage
	}
	if req.Venmo != nil {
		user.Venmo = *req.Venmo
	}
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = callerID

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AuthenticateUser verifies a username/password pair.
func (s *userService) AuthenticateUser(ctx context.Context, username string, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, passwordHash, err := s.userRepo.FindCredentialsByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Same answer for unknown user and wrong password.
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	if !utils.CheckPasswordHash(password, passwordHash) {
		logger.Warn("Password mismatch", slog.String("username", username))
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}

// SetRefreshToken stores the hash of a user's current refresh token.
func (s *userService) SetRefreshToken(ctx context.Context, userID string, tokenHash string, expiryTime time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, tokenHash, &expiryTime)
}

// ClearRefreshToken invalidates a user's stored refresh token.
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, "", nil)
}
