package domain

import (
	"fmt"
	"time"
)

// Relationship is the partition prefix of a participant index tag. It encodes a
// participant's current relationship to an expense for range queries.
type Relationship string

const (
	RelationshipOwner Relationship = "Owner" // caller created the expense, not yet settled
	RelationshipPayer Relationship = "Payer" // non-owner who has not yet paid
	RelationshipPast  Relationship = "Past"  // settled from this participant's point of view
)

// ParticipantRow is the denormalized index entry for one (expense, participant)
// pair. Rows exist exactly for the aggregate's current participants and are
// rewritten whenever their governing relationship or the expense date changes.
type ParticipantRow struct {
	ExpenseID string    `json:"expenseID"`
	UserID    string    `json:"user"`
	Tag       string    `json:"tag"`
	Date      time.Time `json:"date"`
}

// Tag builds the composite index key for a relationship and participant.
func Tag(rel Relationship, userID string) string {
	return fmt.Sprintf("%s#%s", rel, userID)
}

// DeriveParticipantRow computes the index row for one participant from the
// aggregate. The owner's row turns Past only once every participant has paid;
// any other participant's row turns Past as soon as that participant has paid,
// independent of the rest.
func DeriveParticipantRow(e *Expense, userID string) ParticipantRow {
	isOwner := userID == e.Owner

	var isPast bool
	if isOwner {
		isPast = e.AllPaid()
	} else if p := e.Participant(userID); p != nil {
		isPast = p.Paid
	}

	rel := RelationshipPayer
	switch {
	case isPast:
		rel = RelationshipPast
	case isOwner:
		rel = RelationshipOwner
	}

	return ParticipantRow{
		ExpenseID: e.ExpenseID,
		UserID:    userID,
		Tag:       Tag(rel, userID),
		Date:      e.Date,
	}
}
