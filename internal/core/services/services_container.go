package services

import (
	portsrepo "github.com/splitr-app/splitr_backend/internal/core/ports/repositories"
	portssvc "github.com/splitr-app/splitr_backend/internal/core/ports/services"
	"github.com/splitr-app/splitr_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The user service first: the expense service depends on it for identity
	// resolution and wage snapshots.
	container.User = NewUserService(repos.UserRepo)
	container.Expense = NewExpenseService(repos.ExpenseRepo, container.User)

	container.Token = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthService(cfg, repos.UserRepo)

	return container
}
