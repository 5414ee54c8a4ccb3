package domain

import "time"

// ExpenseKind discriminates how an expense's cost is recorded: a single amount,
// or an itemized list with tax and tip adjustments.
type ExpenseKind string

const (
	KindSingle   ExpenseKind = "single"
	KindItemized ExpenseKind = "multiple" // wire value kept from the client schema
)

// SplitPolicy determines how an expense's total is divided among its participants.
type SplitPolicy string

const (
	SplitIndividually   SplitPolicy = "individually"
	SplitEqually        SplitPolicy = "equally"
	SplitProportionally SplitPolicy = "proportionally" // by snapshotted hourly wage
	SplitCustom         SplitPolicy = "custom"         // by caller-supplied weights
)

// AdjustmentType discriminates how a tax or tip adjustment is expressed.
type AdjustmentType string

const (
	AdjustPercentage AdjustmentType = "percentage" // 0-100, applied to the running total
	AdjustAmount     AdjustmentType = "amount"     // flat amount added to the running total
)

// Adjustment is a tax or tip applied sequentially to the running total of an
// itemized expense. A nil Value is the identity.
type Adjustment struct {
	Type  AdjustmentType `json:"type"`
	Value *float64       `json:"value,omitempty"`
}

// Item is a single line of an itemized expense. A non-nil Users slice earmarks
// the item for that subset of participants; its cost is then split equally among
// exactly those users regardless of the expense's overall split policy.
type Item struct {
	ItemID   string   `json:"id"`
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"` // unit price
	Users    []string `json:"users,omitempty"`
}

// ParticipantStatus tracks one participant's payment state within an expense.
type ParticipantStatus struct {
	UserID   string     `json:"user"`
	Paid     bool       `json:"paid"`
	PaidTime *time.Time `json:"paidTime,omitempty"` // set iff Paid
	Wage     float64    `json:"wage"`               // hourly wage snapshotted at write time
	Weight   *float64   `json:"weight,omitempty"`   // required iff split is custom
}

// Expense is the authoritative record for one shared expense.
//
// Amount and Items are mutually exclusive by Kind. The owner always appears in
// Users; for an individually-split expense Users contains exactly the owner,
// already marked paid. Version increases monotonically on every committed write
// and drives optimistic concurrency at the storage layer.
type Expense struct {
	ExpenseID string              `json:"id"`
	Name      string              `json:"name"`
	Owner     string              `json:"owner"`
	Date      time.Time           `json:"date"`
	Split     SplitPolicy         `json:"split"`
	Kind      ExpenseKind         `json:"expenseType"`
	Amount    *float64            `json:"amount,omitempty"`
	Items     []Item              `json:"items,omitempty"`
	Tax       *Adjustment         `json:"tax,omitempty"`
	Tip       *Adjustment         `json:"tip,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	Images    []string            `json:"images,omitempty"`
	Users     []ParticipantStatus `json:"users"`
	Version   int64               `json:"version"`
	AuditFields
}

// Participant returns the status entry for userID, or nil if userID is not a
// participant of this expense.
func (e *Expense) Participant(userID string) *ParticipantStatus {
	for i := range e.Users {
		if e.Users[i].UserID == userID {
			return &e.Users[i]
		}
	}
	return nil
}

// HasParticipant reports whether userID appears in the participant list.
func (e *Expense) HasParticipant(userID string) bool {
	return e.Participant(userID) != nil
}

// AllPaid reports whether every participant, owner included, has paid.
func (e *Expense) AllPaid() bool {
	for i := range e.Users {
		if !e.Users[i].Paid {
			return false
		}
	}
	return true
}

// HasConfirmedPayers reports whether any non-owner participant has paid.
// An expense with confirmed payers is immutable and undeletable until every
// such payer has rescinded.
func (e *Expense) HasConfirmedPayers() bool {
	for i := range e.Users {
		if e.Users[i].UserID != e.Owner && e.Users[i].Paid {
			return true
		}
	}
	return false
}
