package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitr-app/splitr_backend/internal/apperrors"
	"github.com/splitr-app/splitr_backend/internal/core/domain"
	portsrepo "github.com/splitr-app/splitr_backend/internal/core/ports/repositories"
	"github.com/splitr-app/splitr_backend/internal/core/services"
	"github.com/splitr-app/splitr_backend/internal/dto"
)

// --- Mock ExpenseRepository (based on expenseService usage) ---

type MockExpenseRepository struct {
	FindExpenseByIDFn            func(ctx context.Context, expenseID string) (*domain.Expense, error)
	FindExpensesByIDsFn          func(ctx context.Context, expenseIDs []string) ([]domain.Expense, error)
	FindExpenseWithParticipantFn func(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error)
	ListExpenseIDsByTagFn        func(ctx context.Context, tag string) ([]string, error)
	WriteExpenseFn               func(ctx context.Context, expense *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error
	DeleteExpenseFn              func(ctx context.Context, expenseID string) error
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	return m.FindExpenseByIDFn(ctx, expenseID)
}

func (m *MockExpenseRepository) FindExpensesByIDs(ctx context.Context, expenseIDs []string) ([]domain.Expense, error) {
	return m.FindExpensesByIDsFn(ctx, expenseIDs)
}

func (m *MockExpenseRepository) FindExpenseWithParticipant(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
	return m.FindExpenseWithParticipantFn(ctx, expenseID, userID)
}

func (m *MockExpenseRepository) ListExpenseIDsByTag(ctx context.Context, tag string) ([]string, error) {
	return m.ListExpenseIDsByTagFn(ctx, tag)
}

func (m *MockExpenseRepository) WriteExpense(ctx context.Context, expense *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
	return m.WriteExpenseFn(ctx, expense, rows, deleteRows)
}

func (m *MockExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	return m.DeleteExpenseFn(ctx, expenseID)
}

// --- Mock UserService backed by a static directory ---

type MockUserService struct {
	directory map[string]domain.User
}

func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	panic("not used")
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if u, ok := m.directory[userID]; ok {
		return &u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *MockUserService) GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	result := make(map[string]domain.User, len(userIDs))
	for _, id := range userIDs {
		u, ok := m.directory[id]
		if !ok {
			return nil, apperrors.ErrNotFound
		}
		result[id] = u
	}
	return result, nil
}

func (m *MockUserService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	panic("not used")
}

func (m *MockUserService) UpdateUser(ctx context.Context, callerID string, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	panic("not used")
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, username string, password string) (*domain.User, error) {
	panic("not used")
}

func (m *MockUserService) SetRefreshToken(ctx context.Context, userID string, tokenHash string, expiryTime time.Time) error {
	panic("not used")
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	panic("not used")
}

// --- Fixtures ---

func testUserDirectory() map[string]domain.User {
	return map[string]domain.User{
		"owner1": {UserID: "owner1", Username: "olivia", FirstName: "Olivia", LastName: "Owner", HourlyWage: 50, Venmo: "@olivia"},
		"alice":  {UserID: "alice", Username: "alice", FirstName: "Alice", LastName: "Archer", HourlyWage: 20},
		"bob":    {UserID: "bob", Username: "bob", FirstName: "Bob", LastName: "Baker", HourlyWage: 40},
		"carol":  {UserID: "carol", Username: "carol", FirstName: "Carol", LastName: "Cooper", HourlyWage: 60},
	}
}

func floatPtr(v float64) *float64 { return &v }

func yesterday() string {
	return time.Now().UTC().AddDate(0, 0, -1).Format(domain.DateFormat)
}

func tagsOf(rows []domain.ParticipantRow) map[string]string {
	tags := make(map[string]string, len(rows))
	for _, r := range rows {
		tags[r.UserID] = r.Tag
	}
	return tags
}

// sharedExpense builds a stored equally-split single-amount expense with the
// given paid flags per participant.
func sharedExpense(owner string, paid map[string]bool) *domain.Expense {
	now := time.Now().UTC()
	e := &domain.Expense{
		ExpenseID: "exp-1",
		Name:      "Dinner",
		Owner:     owner,
		Date:      now.AddDate(0, 0, -1),
		Split:     domain.SplitEqually,
		Kind:      domain.KindSingle,
		Amount:    floatPtr(90),
		Version:   3,
	}
	for userID, hasPaid := range paid {
		status := domain.ParticipantStatus{UserID: userID, Paid: hasPaid, Wage: 30}
		if hasPaid {
			t := now
			status.PaidTime = &t
		}
		e.Users = append(e.Users, status)
	}
	return e
}

// --- CreateExpense ---

func TestCreateExpense_PrunesToEarmarkedUsers(t *testing.T) {
	var written *domain.Expense
	var writtenRows []domain.ParticipantRow
	repo := &MockExpenseRepository{
		WriteExpenseFn: func(ctx context.Context, expense *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
			written = expense
			writtenRows = rows
			assert.Empty(t, deleteRows)
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name:  "Groceries",
		Date:  yesterday(),
		Split: "equally",
		Type:  "multiple",
		Items: []dto.SaveItemRequest{
			{Name: "steak", Quantity: 1, Price: 40, Users: []string{"alice", "bob"}},
			{Name: "wine", Quantity: 1, Price: 20, Users: []string{"alice"}},
		},
		Users: []dto.ExpenseUserRequest{
			{User: "alice"}, {User: "bob"}, {User: "carol"},
		},
	}

	resp, err := svc.CreateExpense(context.Background(), "owner1", req)
	require.NoError(t, err)
	require.NotNil(t, written)

	// carol is named in no item, so she is pruned; the owner is always kept.
	require.Len(t, written.Users, 3)
	assert.True(t, written.HasParticipant("alice"))
	assert.True(t, written.HasParticipant("bob"))
	assert.True(t, written.HasParticipant("owner1"))
	assert.False(t, written.HasParticipant("carol"))

	// The owner starts paid, everyone else starts owing.
	tags := tagsOf(writtenRows)
	assert.Equal(t, "Payer#alice", tags["alice"])
	assert.Equal(t, "Payer#bob", tags["bob"])
	assert.Equal(t, "Owner#owner1", tags["owner1"])

	// Wages snapshotted from the directory.
	assert.Equal(t, 20.0, written.Participant("alice").Wage)
	assert.Equal(t, 40.0, written.Participant("bob").Wage)
	assert.Equal(t, 60.0, resp.Total)
}

func TestCreateExpense_UnassignedItemKeepsAllUsers(t *testing.T) {
	var written *domain.Expense
	repo := &MockExpenseRepository{
		WriteExpenseFn: func(ctx context.Context, expense *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
			written = expense
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name:  "Groceries",
		Date:  yesterday(),
		Split: "equally",
		Type:  "multiple",
		Items: []dto.SaveItemRequest{
			{Name: "steak", Quantity: 1, Price: 40, Users: []string{"alice"}},
			{Name: "bread", Quantity: 1, Price: 5},
		},
		Users: []dto.ExpenseUserRequest{
			{User: "alice"}, {User: "bob"}, {User: "carol"},
		},
	}

	_, err := svc.CreateExpense(context.Background(), "owner1", req)
	require.NoError(t, err)
	require.NotNil(t, written)
	assert.Len(t, written.Users, 4) // alice, bob, carol, owner1
}

func TestCreateExpense_ItemReferencesOutsider(t *testing.T) {
	repo := &MockExpenseRepository{}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name:  "Groceries",
		Date:  yesterday(),
		Split: "equally",
		Type:  "multiple",
		Items: []dto.SaveItemRequest{
			{Name: "steak", Quantity: 1, Price: 40, Users: []string{"mallory"}},
		},
		Users: []dto.ExpenseUserRequest{{User: "alice"}},
	}

	_, err := svc.CreateExpense(context.Background(), "owner1", req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidItemUsers)
}

func TestCreateExpense_CustomSplitMissingWeight(t *testing.T) {
	repo := &MockExpenseRepository{}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name:   "Rent",
		Date:   yesterday(),
		Split:  "custom",
		Type:   "single",
		Amount: floatPtr(1200),
		Users: []dto.ExpenseUserRequest{
			{User: "alice", Weight: floatPtr(1)},
			{User: "bob"}, // no weight
		},
	}

	_, err := svc.CreateExpense(context.Background(), "owner1", req)
	assert.ErrorIs(t, err, apperrors.ErrMissingWeight)
}

func TestCreateExpense_IndividuallyIsOwnerOnlyAndSettled(t *testing.T) {
	var written *domain.Expense
	var writtenRows []domain.ParticipantRow
	repo := &MockExpenseRepository{
		WriteExpenseFn: func(ctx context.Context, expense *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
			written = expense
			writtenRows = rows
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name:   "Coffee",
		Date:   yesterday(),
		Split:  "individually",
		Type:   "single",
		Amount: floatPtr(4.5),
	}

	resp, err := svc.CreateExpense(context.Background(), "owner1", req)
	require.NoError(t, err)

	require.Len(t, written.Users, 1)
	owner := written.Participant("owner1")
	require.NotNil(t, owner)
	assert.True(t, owner.Paid)
	require.NotNil(t, owner.PaidTime)

	require.Len(t, writtenRows, 1)
	assert.Equal(t, "Past#owner1", writtenRows[0].Tag)
	assert.Equal(t, 4.5, resp.Total)
	assert.Equal(t, 4.5, resp.Contribution)
}

func TestCreateExpense_FutureDateRejected(t *testing.T) {
	repo := &MockExpenseRepository{}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name:   "Time travel",
		Date:   time.Now().UTC().AddDate(0, 0, 2).Format(domain.DateFormat),
		Split:  "individually",
		Type:   "single",
		Amount: floatPtr(10),
	}

	_, err := svc.CreateExpense(context.Background(), "owner1", req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// --- Confirm / Rescind ---

func TestConfirmExpenses_OwnerForbidden(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false})
	repo := &MockExpenseRepository{
		FindExpenseWithParticipantFn: func(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
			row := domain.DeriveParticipantRow(expense, userID)
			return expense, &row, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.ConfirmExpenses(context.Background(), "owner1", []string{"exp-1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestConfirmExpenses_AlreadyConfirmed(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": true, "bob": false})
	repo := &MockExpenseRepository{
		FindExpenseWithParticipantFn: func(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
			row := domain.DeriveParticipantRow(expense, userID)
			return expense, &row, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.ConfirmExpenses(context.Background(), "alice", []string{"exp-1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestConfirmExpenses_PayerRowTurnsPastImmediately(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false, "bob": false})
	var writtenRows []domain.ParticipantRow
	repo := &MockExpenseRepository{
		FindExpenseWithParticipantFn: func(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
			row := domain.DeriveParticipantRow(expense, userID)
			return expense, &row, nil
		},
		WriteExpenseFn: func(ctx context.Context, e *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
			writtenRows = rows
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.ConfirmExpenses(context.Background(), "alice", []string{"exp-1"})
	require.NoError(t, err)

	// bob still owes, so only alice's row is rewritten; the owner keeps Owner#.
	require.Len(t, writtenRows, 1)
	assert.Equal(t, "Past#alice", writtenRows[0].Tag)
	require.NotNil(t, expense.Participant("alice").PaidTime)
}

func TestConfirmExpenses_LastPayerFlipsOwnerRow(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false})
	var writtenRows []domain.ParticipantRow
	repo := &MockExpenseRepository{
		FindExpenseWithParticipantFn: func(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
			row := domain.DeriveParticipantRow(expense, userID)
			return expense, &row, nil
		},
		WriteExpenseFn: func(ctx context.Context, e *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
			writtenRows = rows
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.ConfirmExpenses(context.Background(), "alice", []string{"exp-1"})
	require.NoError(t, err)

	tags := tagsOf(writtenRows)
	require.Len(t, writtenRows, 2)
	assert.Equal(t, "Past#alice", tags["alice"])
	assert.Equal(t, "Past#owner1", tags["owner1"])
}

func TestRescindExpenses_ReopensSettledExpense(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": true})
	var writtenRows []domain.ParticipantRow
	repo := &MockExpenseRepository{
		FindExpenseWithParticipantFn: func(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
			row := domain.DeriveParticipantRow(expense, userID)
			return expense, &row, nil
		},
		WriteExpenseFn: func(ctx context.Context, e *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
			writtenRows = rows
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.RescindExpenses(context.Background(), "alice", []string{"exp-1"})
	require.NoError(t, err)

	// Rescinding reopens the expense for the owner too.
	tags := tagsOf(writtenRows)
	require.Len(t, writtenRows, 2)
	assert.Equal(t, "Payer#alice", tags["alice"])
	assert.Equal(t, "Owner#owner1", tags["owner1"])
	assert.False(t, expense.Participant("alice").Paid)
	assert.Nil(t, expense.Participant("alice").PaidTime)
}

func TestRescindExpenses_NotConfirmedIsConflict(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false})
	repo := &MockExpenseRepository{
		FindExpenseWithParticipantFn: func(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
			row := domain.DeriveParticipantRow(expense, userID)
			return expense, &row, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.RescindExpenses(context.Background(), "alice", []string{"exp-1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

// --- Update / Delete ---

func TestUpdateExpense_NonOwnerForbidden(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false})
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return expense, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name: "Dinner", Date: yesterday(), Split: "equally", Type: "single",
		Amount: floatPtr(90),
		Users:  []dto.ExpenseUserRequest{{User: "alice"}},
	}
	_, err := svc.UpdateExpense(context.Background(), "alice", "exp-1", req)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateExpense_BlockedByConfirmedPayer(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": true, "bob": false})
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return expense, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name: "Dinner", Date: yesterday(), Split: "equally", Type: "single",
		Amount: floatPtr(120),
		Users:  []dto.ExpenseUserRequest{{User: "alice"}, {User: "bob"}},
	}
	_, err := svc.UpdateExpense(context.Background(), "owner1", "exp-1", req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdateExpense_RemovedParticipantRowsDeleted(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false, "bob": false})
	var deleted []portsrepo.RowKey
	var writtenRows []domain.ParticipantRow
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return expense, nil
		},
		WriteExpenseFn: func(ctx context.Context, e *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
			writtenRows = rows
			deleted = deleteRows
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	req := dto.SaveExpenseRequest{
		Name: "Dinner", Date: yesterday(), Split: "equally", Type: "single",
		Amount: floatPtr(60),
		Users:  []dto.ExpenseUserRequest{{User: "alice"}},
	}
	_, err := svc.UpdateExpense(context.Background(), "owner1", "exp-1", req)
	require.NoError(t, err)

	require.Len(t, deleted, 1)
	assert.Equal(t, portsrepo.RowKey{ExpenseID: "exp-1", UserID: "bob"}, deleted[0])

	tags := tagsOf(writtenRows)
	assert.Contains(t, tags, "alice")
	assert.Contains(t, tags, "owner1")
	assert.NotContains(t, tags, "bob")
}

func TestDeleteExpense_BlockedByConfirmedPayer(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": true})
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return expense, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.DeleteExpense(context.Background(), "owner1", "exp-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteExpense_AbsentIsSuccess(t *testing.T) {
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return nil, apperrors.ErrNotFound
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.DeleteExpense(context.Background(), "owner1", "exp-gone")
	assert.NoError(t, err)
}

func TestDeleteExpense_Success(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false})
	deleteCalled := false
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return expense, nil
		},
		DeleteExpenseFn: func(ctx context.Context, expenseID string) error {
			deleteCalled = true
			assert.Equal(t, "exp-1", expenseID)
			return nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	err := svc.DeleteExpense(context.Background(), "owner1", "exp-1")
	require.NoError(t, err)
	assert.True(t, deleteCalled)
}

// --- Queries ---

func TestGetExpense_OutsiderGetsNotFound(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false})
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return expense, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	_, err := svc.GetExpense(context.Background(), "carol", "exp-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetExpense_EnrichesContributions(t *testing.T) {
	expense := sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false, "bob": false})
	repo := &MockExpenseRepository{
		FindExpenseByIDFn: func(ctx context.Context, expenseID string) (*domain.Expense, error) {
			return expense, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	resp, err := svc.GetExpense(context.Background(), "alice", "exp-1")
	require.NoError(t, err)

	assert.Equal(t, 90.0, resp.Total)
	assert.Equal(t, 30.0, resp.Contribution)
	assert.Equal(t, "owner1", resp.OwnerInfo.User)
	assert.Equal(t, "Olivia", resp.OwnerInfo.FirstName)

	require.Len(t, resp.Users, 3)
	for _, u := range resp.Users {
		require.NotNil(t, u.Contribution, "contribution missing for %s", u.User)
		require.NotNil(t, u.Proportion)
		assert.InDelta(t, 30.0, *u.Contribution, 1e-9)
		assert.InDelta(t, 1.0/3.0, *u.Proportion, 1e-9)
		assert.NotEmpty(t, u.FirstName)
	}
}

func TestListExpenses_TagSelection(t *testing.T) {
	tests := []struct {
		name    string
		params  dto.ListExpensesParams
		wantTag string
	}{
		{"owned", dto.ListExpensesParams{Own: true}, "Owner#alice"},
		{"owed", dto.ListExpensesParams{Own: false}, "Payer#alice"},
		{"settled", dto.ListExpensesParams{Own: true, Past: true}, "Past#alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var queriedTag string
			repo := &MockExpenseRepository{
				ListExpenseIDsByTagFn: func(ctx context.Context, tag string) ([]string, error) {
					queriedTag = tag
					return nil, nil
				},
				FindExpensesByIDsFn: func(ctx context.Context, expenseIDs []string) ([]domain.Expense, error) {
					return nil, nil
				},
			}
			svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

			_, err := svc.ListExpenses(context.Background(), "alice", tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTag, queriedTag)
		})
	}
}

func TestListExpenses_SortedNewestFirstAndGrouped(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	older := *sharedExpense("owner1", map[string]bool{"owner1": true, "alice": false})
	older.ExpenseID = "exp-old"
	older.Date = base
	newer := *sharedExpense("bob", map[string]bool{"bob": true, "alice": false})
	newer.ExpenseID = "exp-new"
	newer.Date = base.AddDate(0, 0, 7)

	repo := &MockExpenseRepository{
		ListExpenseIDsByTagFn: func(ctx context.Context, tag string) ([]string, error) {
			return []string{"exp-old", "exp-new"}, nil
		},
		FindExpensesByIDsFn: func(ctx context.Context, expenseIDs []string) ([]domain.Expense, error) {
			return []domain.Expense{older, newer}, nil
		},
	}
	svc := services.NewExpenseService(repo, &MockUserService{directory: testUserDirectory()})

	resp, err := svc.ListExpenses(context.Background(), "alice", dto.ListExpensesParams{Own: false})
	require.NoError(t, err)
	require.Len(t, resp.Expenses, 2)
	assert.Equal(t, "exp-new", resp.Expenses[0].ID)
	assert.Equal(t, "exp-old", resp.Expenses[1].ID)

	grouped, err := svc.ListExpenses(context.Background(), "alice", dto.ListExpensesParams{Own: false, Group: true})
	require.NoError(t, err)
	require.Len(t, grouped.Groups, 2)
	assert.Equal(t, "Olivia", grouped.Groups["owner1"].Owner.FirstName)
	assert.Len(t, grouped.Groups["bob"].Expenses, 1)
}
