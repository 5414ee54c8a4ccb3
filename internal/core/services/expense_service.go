package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/splitr-app/splitr_backend/internal/apperrors"
	"github.com/splitr-app/splitr_backend/internal/core/allocation"
	"github.com/splitr-app/splitr_backend/internal/core/domain"
	portsrepo "github.com/splitr-app/splitr_backend/internal/core/ports/repositories"
	portssvc "github.com/splitr-app/splitr_backend/internal/core/ports/services"
	"github.com/splitr-app/splitr_backend/internal/dto"
	"github.com/splitr-app/splitr_backend/internal/middleware"
	"github.com/splitr-app/splitr_backend/internal/utils"
)

// expenseService provides the expense lifecycle, settlement and query operations.
// It keeps the aggregate and its participant index rows consistent by deriving
// every affected row from the aggregate and committing them in one atomic write.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
	userSvc     portssvc.UserSvcFacade
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, userSvc portssvc.UserSvcFacade) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
		userSvc:     userSvc,
	}
}

// Ensure expenseService implements the portssvc.ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// CreateExpense normalizes and persists a new expense owned by ownerID.
// Implements portssvc.ExpenseWriterSvc.
func (s *expenseService) CreateExpense(ctx context.Context, ownerID string, req dto.SaveExpenseRequest) (*dto.ExpenseResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	expense := &domain.Expense{
		ExpenseID: uuid.NewString(),
		AuditFields: domain.AuditFields{
			CreatedAt: now,
			CreatedBy: ownerID,
		},
	}

	if err := s.normalizeExpense(ctx, expense, ownerID, req); err != nil {
		return nil, err
	}
	expense.LastUpdatedAt = now
	expense.LastUpdatedBy = ownerID

	rows := deriveAllRows(expense)
	if err := s.expenseRepo.WriteExpense(ctx, expense, rows, nil); err != nil {
		logger.Error("Failed to write new expense", slog.String("expense_id", expense.ExpenseID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID), slog.Int("participants", len(expense.Users)))
	return s.buildResponse(expense, ownerID)
}

// UpdateExpense fully replaces an expense's monetary fields and participant
// list. Implements portssvc.ExpenseWriterSvc.
func (s *expenseService) UpdateExpense(ctx context.Context, callerID string, expenseID string, req dto.SaveExpenseRequest) (*dto.ExpenseResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if err := verifyModification(expense, callerID); err != nil {
		return nil, err
	}

	// Participants removed by the replacement lose their index rows in the
	// same atomic write that persists the new aggregate state.
	previousIDs := participantIDSet(expense)

	if err := s.normalizeExpense(ctx, expense, expense.Owner, req); err != nil {
		return nil, err
	}
	expense.LastUpdatedAt = time.Now().UTC()
	expense.LastUpdatedBy = callerID

	var deleteRows []portsrepo.RowKey
	for id := range previousIDs {
		if !expense.HasParticipant(id) {
			deleteRows = append(deleteRows, portsrepo.RowKey{ExpenseID: expense.ExpenseID, UserID: id})
		}
	}

	rows := deriveAllRows(expense)
	if err := s.expenseRepo.WriteExpense(ctx, expense, rows, deleteRows); err != nil {
		logger.Error("Failed to write updated expense", slog.String("expense_id", expense.ExpenseID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Expense updated", slog.String("expense_id", expense.ExpenseID), slog.Int("removed_participants", len(deleteRows)))
	return s.buildResponse(expense, callerID)
}

// DeleteExpense removes the aggregate and every projection row in one atomic
// operation. An absent expense is an idempotent success.
// Implements portssvc.ExpenseWriterSvc.
func (s *expenseService) DeleteExpense(ctx context.Context, callerID string, expenseID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Debug("Delete of absent expense treated as success", slog.String("expense_id", expenseID))
			return nil
		}
		return err
	}

	if err := verifyModification(expense, callerID); err != nil {
		return err
	}

	if err := s.expenseRepo.DeleteExpense(ctx, expenseID); err != nil {
		logger.Error("Failed to delete expense", slog.String("expense_id", expenseID), slog.String("error", err.Error()))
		return err
	}

	logger.Info("Expense deleted", slog.String("expense_id", expenseID))
	return nil
}

// ConfirmExpenses marks the caller as paid on each expense.
// Implements portssvc.ExpenseSettlementSvc.
func (s *expenseService) ConfirmExpenses(ctx context.Context, callerID string, expenseIDs []string) error {
	return s.setPaid(ctx, callerID, expenseIDs, true)
}

// RescindExpenses marks the caller as unpaid on each expense.
// Implements portssvc.ExpenseSettlementSvc.
func (s *expenseService) RescindExpenses(ctx context.Context, callerID string, expenseIDs []string) error {
	return s.setPaid(ctx, callerID, expenseIDs, false)
}

// setPaid runs the confirm/rescind state machine. Each expense id is its own
// atomic read-then-write unit: a failure on one id does not roll back ids that
// already committed.
func (s *expenseService) setPaid(ctx context.Context, callerID string, expenseIDs []string, confirm bool) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	verb := "rescind"
	if confirm {
		verb = "confirm"
	}

	for _, expenseID := range expenseIDs {
		expense, callerRow, err := s.expenseRepo.FindExpenseWithParticipant(ctx, expenseID, callerID)
		if err != nil {
			return fmt.Errorf("failed to read expense %s for %s: %w", expenseID, verb, err)
		}

		// Owners settle their expense by collecting from everyone else, never
		// by confirming their own payment.
		if expense.Owner == callerID {
			return fmt.Errorf("%w: cannot %s own expense %s", apperrors.ErrForbidden, verb, expenseID)
		}

		participant := expense.Participant(callerID)
		if participant == nil {
			return fmt.Errorf("%w: user %s is not part of expense %s", apperrors.ErrNotFound, callerID, expenseID)
		}
		if participant.Paid == confirm {
			return fmt.Errorf("%w: expense %s already %sed", apperrors.ErrConflict, expenseID, verb)
		}

		allPaidBefore := expense.AllPaid()

		if confirm {
			now := time.Now().UTC()
			participant.Paid = true
			participant.PaidTime = &now
		} else {
			participant.Paid = false
			participant.PaidTime = nil
		}

		rows := []domain.ParticipantRow{domain.DeriveParticipantRow(expense, callerID)}

		// A transition that flips whether all participants have paid also
		// changes the owner's relationship, so the owner's row is rewritten in
		// the same atomic operation.
		if allPaidAfter := expense.AllPaid(); allPaidBefore != allPaidAfter {
			rows = append(rows, domain.DeriveParticipantRow(expense, expense.Owner))
		}

		if err := s.expenseRepo.WriteExpense(ctx, expense, rows, nil); err != nil {
			logger.Error("Failed to write payment transition",
				slog.String("expense_id", expenseID),
				slog.String("from_tag", callerRow.Tag),
				slog.String("error", err.Error()))
			return err
		}

		logger.Info("Payment status changed",
			slog.String("expense_id", expenseID),
			slog.String("action", verb),
			slog.Bool("settled", expense.AllPaid()))
	}

	return nil
}

// GetExpense retrieves one expense, enriched with totals and each
// participant's contribution and proportion of the total.
// Implements portssvc.ExpenseReaderSvc.
func (s *expenseService) GetExpense(ctx context.Context, callerID string, expenseID string) (*dto.ExpenseDetailResponse, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	// Users can only see expenses they are a part of. Leaking existence to
	// outsiders is avoided by answering not-found rather than forbidden.
	if callerID != expense.Owner && !expense.HasParticipant(callerID) {
		return nil, fmt.Errorf("%w: expense %s", apperrors.ErrNotFound, expenseID)
	}

	totals, err := allocation.ComputeTotals(expense)
	if err != nil {
		return nil, err
	}
	callerContribution, err := allocation.ComputeContribution(expense, totals, callerID)
	if err != nil {
		return nil, err
	}

	lookupIDs := make([]string, 0, len(expense.Users)+1)
	for _, u := range expense.Users {
		lookupIDs = append(lookupIDs, u.UserID)
	}
	if !expense.HasParticipant(expense.Owner) {
		lookupIDs = append(lookupIDs, expense.Owner)
	}
	infos, err := s.userSvc.GetUsersByIDs(ctx, lookupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participant identities: %w", err)
	}

	response := dto.ToExpenseResponse(expense, totals, callerContribution)
	for i := range response.Users {
		userID := response.Users[i].User

		contribution := callerContribution
		if userID != callerID {
			contribution, err = allocation.ComputeContribution(expense, totals, userID)
			if err != nil {
				return nil, err
			}
		}

		proportion := 0.0
		if totals.Total != 0 {
			proportion = contribution / totals.Total
		}

		info := infos[userID]
		response.Users[i].FirstName = info.FirstName
		response.Users[i].LastName = info.LastName
		response.Users[i].Venmo = info.Venmo
		rounded := utils.RoundMoney(contribution)
		response.Users[i].Contribution = &rounded
		response.Users[i].Proportion = &proportion
	}

	ownerInfo := infos[expense.Owner]
	return &dto.ExpenseDetailResponse{
		ExpenseResponse: response,
		OwnerInfo:       dto.ToUserResponse(&ownerInfo),
	}, nil
}

// ListExpenses queries the participant index by relationship tag and returns
// the caller's expenses in reverse chronological order.
// Implements portssvc.ExpenseReaderSvc.
func (s *expenseService) ListExpenses(ctx context.Context, callerID string, params dto.ListExpensesParams) (*dto.ExpenseListResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rel := domain.RelationshipPayer
	switch {
	case params.Past:
		rel = domain.RelationshipPast
	case params.Own:
		rel = domain.RelationshipOwner
	}
	tag := domain.Tag(rel, callerID)

	expenseIDs, err := s.expenseRepo.ListExpenseIDsByTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.FindExpensesByIDs(ctx, expenseIDs)
	if err != nil {
		return nil, err
	}

	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})

	responses := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		expense := &expenses[i]
		totals, err := allocation.ComputeTotals(expense)
		if err != nil {
			return nil, err
		}
		contribution, err := allocation.ComputeContribution(expense, totals, callerID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.ToExpenseResponse(expense, totals, contribution))
	}

	if !params.Group {
		return &dto.ExpenseListResponse{Expenses: responses}, nil
	}

	// Group expenses by owner and attach owner identity to each bucket.
	groups := make(map[string][]dto.ExpenseResponse)
	for _, resp := range responses {
		groups[resp.Owner] = append(groups[resp.Owner], resp)
	}

	ownerIDs := make([]string, 0, len(groups))
	for ownerID := range groups {
		ownerIDs = append(ownerIDs, ownerID)
	}
	ownerInfos, err := s.userSvc.GetUsersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve expense owners: %w", err)
	}

	grouped := make(map[string]dto.ExpenseGroup, len(groups))
	for ownerID, bucket := range groups {
		ownerInfo := ownerInfos[ownerID]
		grouped[ownerID] = dto.ExpenseGroup{
			Owner:    dto.ToUserResponse(&ownerInfo),
			Expenses: bucket,
		}
	}

	logger.Debug("Expenses listed", slog.String("tag", tag), slog.Int("count", len(responses)), slog.Int("groups", len(grouped)))
	return &dto.ExpenseListResponse{Groups: grouped}, nil
}

// verifyModification checks that callerID may modify or delete the expense:
// only the owner may, and only while no other participant has confirmed payment.
func verifyModification(expense *domain.Expense, callerID string) error {
	if expense.Owner != callerID {
		return fmt.Errorf("%w: only the owner of an expense can modify or delete it", apperrors.ErrForbidden)
	}
	if expense.HasConfirmedPayers() {
		return fmt.Errorf("%w: expense has confirmed payers and cannot be modified or deleted", apperrors.ErrConflict)
	}
	return nil
}

// normalizeExpense funnels create and update through one routine: it copies
// scalar fields, materializes the kind-specific payload, prunes itemized
// participant lists to the union of item assignments, resolves identity info
// and snapshots wages for every surviving participant.
func (s *expenseService) normalizeExpense(ctx context.Context, expense *domain.Expense, ownerID string, req dto.SaveExpenseRequest) error {
	date, err := time.ParseInLocation(domain.DateFormat, req.Date, time.UTC)
	if err != nil {
		return fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
	}
	if today := time.Now().UTC().Truncate(24 * time.Hour); date.After(today) {
		return fmt.Errorf("%w: date cannot be in the future", apperrors.ErrValidation)
	}

	expense.Name = req.Name
	expense.Owner = ownerID
	expense.Date = date
	expense.Split = domain.SplitPolicy(req.Split)
	expense.Kind = domain.ExpenseKind(req.Type)
	expense.Notes = req.Notes
	expense.Images = req.Images

	if expense.Split != domain.SplitIndividually && len(req.Users) == 0 {
		return fmt.Errorf("%w: shared expenses must name at least one user", apperrors.ErrValidation)
	}

	// requestedUsers is the caller-supplied participant list, possibly pruned
	// below for itemized expenses.
	requestedUsers := req.Users

	switch expense.Kind {
	case domain.KindSingle:
		expense.Amount = req.Amount
		expense.Items = nil
		expense.Tax = nil
		expense.Tip = nil

	case domain.KindItemized:
		expense.Amount = nil

		requestedSet := make(map[string]bool, len(req.Users)+1)
		for _, u := range req.Users {
			requestedSet[u.User] = true
		}
		requestedSet[ownerID] = true

		// Item-level earmarks only apply when the expense is shared among more
		// than one participant.
		shared := expense.Split != domain.SplitIndividually && len(requestedSet) > 1

		earmarked := make(map[string]bool)
		everyoneImplicated := false
		items := make([]domain.Item, len(req.Items))
		for i, item := range req.Items {
			items[i] = domain.Item{
				ItemID:   uuid.NewString(),
				Name:     item.Name,
				Quantity: item.Quantity,
				Price:    item.Price,
			}

			if !shared || item.Users == nil {
				// An unassigned item implicates every requested participant.
				everyoneImplicated = true
				continue
			}
			if len(item.Users) == 0 {
				return fmt.Errorf("%w: users for item %q must be non-empty", apperrors.ErrInvalidItemUsers, item.Name)
			}
			for _, id := range item.Users {
				if !requestedSet[id] {
					return fmt.Errorf("%w: item %q references user %s who is not part of this expense", apperrors.ErrInvalidItemUsers, item.Name, id)
				}
				earmarked[id] = true
			}
			items[i].Users = item.Users
		}
		expense.Items = items
		expense.Tax = toAdjustment(req.Tax)
		expense.Tip = toAdjustment(req.Tip)

		// When every item is earmarked, the participant list is pruned to the
		// users actually implicated. The owner is re-added unconditionally in
		// resolveParticipants.
		if shared && !everyoneImplicated {
			pruned := make([]dto.ExpenseUserRequest, 0, len(req.Users))
			for _, u := range req.Users {
				if earmarked[u.User] {
					pruned = append(pruned, u)
				}
			}
			requestedUsers = pruned
		}

	default:
		return fmt.Errorf("%w: unknown expense kind %q", apperrors.ErrInvalidPolicy, req.Type)
	}

	users, err := s.resolveParticipants(ctx, expense, ownerID, requestedUsers)
	if err != nil {
		return err
	}
	expense.Users = users

	return nil
}

// resolveParticipants builds the participant status list: identity resolution,
// wage snapshot, owner inclusion and custom weights.
func (s *expenseService) resolveParticipants(ctx context.Context, expense *domain.Expense, ownerID string, requested []dto.ExpenseUserRequest) ([]domain.ParticipantStatus, error) {
	now := time.Now().UTC()

	// An individually-split expense involves only the owner, already settled.
	if expense.Split == domain.SplitIndividually {
		owner, err := s.userSvc.GetUserByID(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve owner %s: %w", ownerID, err)
		}
		return []domain.ParticipantStatus{{
			UserID:   ownerID,
			Paid:     true,
			PaidTime: &now,
			Wage:     owner.HourlyWage,
		}}, nil
	}

	// The owner is always a participant, even when the caller omitted them or
	// earmark pruning removed them.
	entries := make([]dto.ExpenseUserRequest, 0, len(requested)+1)
	seenOwner := false
	for _, u := range requested {
		if u.User == ownerID {
			seenOwner = true
		}
		entries = append(entries, u)
	}
	if !seenOwner {
		entries = append(entries, dto.ExpenseUserRequest{User: ownerID})
	}

	ids := make([]string, len(entries))
	for i, u := range entries {
		ids[i] = u.User
	}
	infos, err := s.userSvc.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}

	users := make([]domain.ParticipantStatus, len(entries))
	for i, entry := range entries {
		info := infos[entry.User]
		status := domain.ParticipantStatus{
			UserID: entry.User,
			Paid:   entry.User == ownerID,
			Wage:   info.HourlyWage,
		}
		if status.Paid {
			status.PaidTime = &now
		}

		if expense.Split == domain.SplitCustom {
			if entry.Weight == nil {
				return nil, fmt.Errorf("%w: weight missing for user %s", apperrors.ErrMissingWeight, entry.User)
			}
			status.Weight = entry.Weight
		}
		users[i] = status
	}

	return users, nil
}

// buildResponse computes totals and the acting user's contribution for a
// freshly written expense.
func (s *expenseService) buildResponse(expense *domain.Expense, callerID string) (*dto.ExpenseResponse, error) {
	totals, err := allocation.ComputeTotals(expense)
	if err != nil {
		return nil, err
	}
	contribution, err := allocation.ComputeContribution(expense, totals, callerID)
	if err != nil {
		return nil, err
	}
	response := dto.ToExpenseResponse(expense, totals, contribution)
	return &response, nil
}

// deriveAllRows recomputes the participant index row for every current participant.
func deriveAllRows(expense *domain.Expense) []domain.ParticipantRow {
	rows := make([]domain.ParticipantRow, 0, len(expense.Users))
	for _, u := range expense.Users {
		rows = append(rows, domain.DeriveParticipantRow(expense, u.UserID))
	}
	return rows
}

// participantIDSet returns the current participant ids as a set.
func participantIDSet(expense *domain.Expense) map[string]bool {
	ids := make(map[string]bool, len(expense.Users))
	for _, u := range expense.Users {
		ids[u.UserID] = true
	}
	return ids
}

// toAdjustment converts an adjustment request, passing nil through.
func toAdjustment(req *dto.AdjustmentRequest) *domain.Adjustment {
	if req == nil {
		return nil
	}
	return &domain.Adjustment{Type: domain.AdjustmentType(req.Type), Value: req.Value}
}
