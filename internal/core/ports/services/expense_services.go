package services

import (
	"context"

	"github.com/splitr-app/splitr_backend/internal/dto"
)

// ExpenseReaderSvc defines read operations for expenses.
type ExpenseReaderSvc interface {
	// GetExpense retrieves one expense, enriched with totals, every participant's
	// contribution and proportion, resolved user info and owner info. The caller
	// must be the owner or a participant; otherwise ErrNotFound.
	GetExpense(ctx context.Context, callerID string, expenseID string) (*dto.ExpenseDetailResponse, error)

	// ListExpenses queries the participant index for the caller's expenses
	// (owned, owed or settled) in reverse chronological order, optionally
	// grouped by expense owner.
	ListExpenses(ctx context.Context, callerID string, params dto.ListExpensesParams) (*dto.ExpenseListResponse, error)
}

// ExpenseWriterSvc defines lifecycle mutations for expenses.
type ExpenseWriterSvc interface {
	// CreateExpense normalizes and persists a new expense owned by ownerID,
	// together with its participant index rows.
	CreateExpense(ctx context.Context, ownerID string, req dto.SaveExpenseRequest) (*dto.ExpenseResponse, error)

	// UpdateExpense fully replaces an expense's data. Only the owner may update,
	// and only while no non-owner participant has confirmed payment.
	UpdateExpense(ctx context.Context, callerID string, expenseID string, req dto.SaveExpenseRequest) (*dto.ExpenseResponse, error)

	// DeleteExpense removes an expense and all its index rows. Only the owner may
	// delete, and only while no non-owner participant has confirmed payment.
	// Deleting an absent expense succeeds.
	DeleteExpense(ctx context.Context, callerID string, expenseID string) error
}

// ExpenseSettlementSvc drives the per-participant confirm/rescind state machine.
type ExpenseSettlementSvc interface {
	// ConfirmExpenses marks the caller as paid on each expense id. Each id is
	// processed as its own atomic read-then-write unit.
	ConfirmExpenses(ctx context.Context, callerID string, expenseIDs []string) error

	// RescindExpenses marks the caller as unpaid on each expense id.
	RescindExpenses(ctx context.Context, callerID string, expenseIDs []string) error
}

// ExpenseSvcFacade combines all expense service interfaces.
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
	ExpenseSettlementSvc
}
