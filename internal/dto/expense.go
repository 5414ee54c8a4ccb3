package dto

import (
	"time"

	"github.com/splitr-app/splitr_backend/internal/core/allocation"
	"github.com/splitr-app/splitr_backend/internal/core/domain"
	"github.com/splitr-app/splitr_backend/internal/utils"
)

// SaveItemRequest is one line of an itemized expense.
type SaveItemRequest struct {
	Name     string   `json:"name" binding:"required"`
	Quantity int      `json:"quantity" binding:"required,min=1"`
	Price    float64  `json:"price" binding:"required,gt=0"`
	Users    []string `json:"users,omitempty"`
}

// AdjustmentRequest is a tax or tip expressed as a percentage of the running
// total or as a flat amount. A nil value means no adjustment.
type AdjustmentRequest struct {
	Type  string   `json:"type" binding:"required,oneof=percentage amount"`
	Value *float64 `json:"value" binding:"omitempty,gte=0"`
}

// ExpenseUserRequest names a participant, with an optional custom split weight.
type ExpenseUserRequest struct {
	User   string   `json:"user" binding:"required"`
	Weight *float64 `json:"weight" binding:"omitempty,gt=0"`
}

// SaveExpenseRequest is the client payload for creating or fully replacing an
// expense. Structural validation happens here via binding tags; business
// normalization (participant pruning, wage snapshots, weights) is the
// expense service's job.
type SaveExpenseRequest struct {
	Name   string               `json:"name" binding:"required"`
	Date   string               `json:"date" binding:"required,datetime=2006-01-02,notfuture"`
	Split  string               `json:"split" binding:"required,oneof=individually equally proportionally custom"`
	Type   string               `json:"type" binding:"required,oneof=single multiple"`
	Amount *float64             `json:"amount" binding:"required_if=Type single,omitempty,gt=0"`
	Items  []SaveItemRequest    `json:"items" binding:"required_if=Type multiple,omitempty,min=1,dive"`
	Tax    *AdjustmentRequest   `json:"tax" binding:"omitempty"`
	Tip    *AdjustmentRequest   `json:"tip" binding:"omitempty"`
	Notes  string               `json:"notes"`
	Images []string             `json:"images"`
	Users  []ExpenseUserRequest `json:"users" binding:"omitempty,dive"`
}

// ListExpensesParams defines query parameters for listing expenses.
// Boolean coercion of raw query strings belongs to this boundary layer.
type ListExpensesParams struct {
	Own   bool `form:"own,default=true"`
	Past  bool `form:"past,default=false"`
	Group bool `form:"group,default=false"`
}

// ConfirmExpensesRequest carries expense ids for a batch confirm.
type ConfirmExpensesRequest struct {
	ExpenseIDs []string `json:"expenseIDs" binding:"required,min=1"`
}

// ItemResponse mirrors a stored item.
type ItemResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
	Users    []string `json:"users,omitempty"`
}

// AdjustmentResponse mirrors a stored tax or tip adjustment.
type AdjustmentResponse struct {
	Type  string   `json:"type"`
	Value *float64 `json:"value,omitempty"`
}

// ExpenseUserResponse is one participant's status within an expense response.
// Identity fields and contribution are populated on the detail view.
type ExpenseUserResponse struct {
	User         string     `json:"user"`
	Paid         bool       `json:"paid"`
	PaidTime     *time.Time `json:"paidTime,omitempty"`
	Wage         float64    `json:"wage"`
	Weight       *float64   `json:"weight,omitempty"`
	FirstName    string     `json:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty"`
	Venmo        string     `json:"venmo,omitempty"`
	Contribution *float64   `json:"contribution,omitempty"`
	Proportion   *float64   `json:"proportion,omitempty"`
}

// ExpenseResponse is the client-facing shape of an expense, enriched with the
// grand total and the calling user's contribution.
type ExpenseResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Owner        string                `json:"owner"`
	Date         string                `json:"date"`
	Split        string                `json:"split"`
	Type         string                `json:"type"`
	Amount       *float64              `json:"amount,omitempty"`
	Items        []ItemResponse        `json:"items,omitempty"`
	Tax          *AdjustmentResponse   `json:"tax,omitempty"`
	Tip          *AdjustmentResponse   `json:"tip,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Images       []string              `json:"images,omitempty"`
	Users        []ExpenseUserResponse `json:"users"`
	Total        float64               `json:"total"`
	Contribution float64               `json:"contribution"`
}

// ExpenseDetailResponse extends ExpenseResponse with resolved owner info.
type ExpenseDetailResponse struct {
	ExpenseResponse
	OwnerInfo UserResponse `json:"ownerInfo"`
}

// ExpenseGroup is a per-owner bucket of expenses for the grouped list view.
type ExpenseGroup struct {
	Owner    UserResponse      `json:"owner"`
	Expenses []ExpenseResponse `json:"expenses"`
}

// ExpenseListResponse wraps the list endpoint result. Exactly one of Expenses
// or Groups is set, depending on the group query parameter.
type ExpenseListResponse struct {
	Expenses []ExpenseResponse       `json:"expenses,omitempty"`
	Groups   map[string]ExpenseGroup `json:"groups,omitempty"`
}

// ToItemResponse converts a domain.Item to its response shape.
func ToItemResponse(item domain.Item) ItemResponse {
	return ItemResponse{
		ID:       item.ItemID,
		Name:     item.Name,
		Quantity: item.Quantity,
		Price:    item.Price,
		Users:    item.Users,
	}
}

// ToAdjustmentResponse converts a domain.Adjustment, passing nil through.
func ToAdjustmentResponse(adj *domain.Adjustment) *AdjustmentResponse {
	if adj == nil {
		return nil
	}
	return &AdjustmentResponse{Type: string(adj.Type), Value: adj.Value}
}

// ToExpenseResponse converts a domain expense plus its computed totals and the
// caller's contribution into the client shape. Monetary results are rounded to
// cents here; core math is unrounded.
func ToExpenseResponse(e *domain.Expense, totals allocation.Totals, contribution float64) ExpenseResponse {
	items := make([]ItemResponse, len(e.Items))
	for i, item := range e.Items {
		items[i] = ToItemResponse(item)
	}
	if len(items) == 0 {
		items = nil
	}

	users := make([]ExpenseUserResponse, len(e.Users))
	for i, u := range e.Users {
		users[i] = ExpenseUserResponse{
			User:     u.UserID,
			Paid:     u.Paid,
			PaidTime: u.PaidTime,
			Wage:     u.Wage,
			Weight:   u.Weight,
		}
	}

	return ExpenseResponse{
		ID:           e.ExpenseID,
		Name:         e.Name,
		Owner:        e.Owner,
		Date:         e.Date.Format(domain.DateFormat),
		Split:        string(e.Split),
		Type:         string(e.Kind),
		Amount:       e.Amount,
		Items:        items,
		Tax:          ToAdjustmentResponse(e.Tax),
		Tip:          ToAdjustmentResponse(e.Tip),
		Notes:        e.Notes,
		Images:       e.Images,
		Users:        users,
		Total:        utils.RoundMoney(totals.Total),
		Contribution: utils.RoundMoney(contribution),
	}
}
