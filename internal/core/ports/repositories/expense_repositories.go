package repositories

import (
	"context"

	"github.com/splitr-app/splitr_backend/internal/core/domain"
)

// RowKey identifies one participant index row of an expense.
type RowKey struct {
	ExpenseID string
	UserID    string
}

// ExpenseReader defines read operations for expense data.
type ExpenseReader interface {
	// FindExpenseByID retrieves the aggregate record for one expense.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// FindExpensesByIDs retrieves the aggregates for the given ids. Missing ids are
	// silently omitted from the result.
	FindExpensesByIDs(ctx context.Context, expenseIDs []string) ([]domain.Expense, error)

	// FindExpenseWithParticipant reads the aggregate together with one participant's
	// index row in a single consistent operation. Returns ErrNotFound if either is absent.
	FindExpenseWithParticipant(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error)

	// ListExpenseIDsByTag queries the secondary index for all expense ids whose
	// participant row carries the given tag, ordered by date descending.
	ListExpenseIDsByTag(ctx context.Context, tag string) ([]string, error)
}

// ExpenseWriter defines write operations for expense data.
type ExpenseWriter interface {
	// WriteExpense persists the aggregate, upserts the given participant index rows and
	// deletes the rows identified by deleteRows, all in one atomic all-or-nothing
	// operation. The aggregate's version is check-and-incremented: a version of 0 inserts
	// a new record, any other value must match the stored version or the write fails with
	// ErrConflict. On success the expense's Version is set to the committed value.
	WriteExpense(ctx context.Context, expense *domain.Expense, rows []domain.ParticipantRow, deleteRows []RowKey) error

	// DeleteExpense removes the aggregate and every index row sharing its primary
	// identity in one atomic operation. Deleting an absent expense is not an error.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseRepositoryFacade combines all expense repository interfaces.
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
