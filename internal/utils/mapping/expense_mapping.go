package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/splitr-app/splitr_backend/internal/core/domain"
	"github.com/splitr-app/splitr_backend/internal/models"
)

// ToExpenseRecord encodes an expense aggregate into its table row. The caller
// decides the version to stamp; the payload carries the same value so the row
// is self-describing.
func ToExpenseRecord(e *domain.Expense, version int64) (models.ExpenseRecord, error) {
	stamped := *e
	stamped.Version = version
	payload, err := json.Marshal(&stamped)
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("failed to encode expense %s: %w", e.ExpenseID, err)
	}
	return models.ExpenseRecord{
		PartitionKey: e.ExpenseID,
		SortKey:      models.ExpenseSortKey,
		RecordType:   models.RecordTypeExpense,
		Payload:      payload,
		Version:      version,
	}, nil
}

// ToDomainExpense decodes an aggregate row. The version column is
// authoritative over whatever the payload carries.
func ToDomainExpense(m models.ExpenseRecord) (*domain.Expense, error) {
	var e domain.Expense
	if err := json.Unmarshal(m.Payload, &e); err != nil {
		return nil, fmt.Errorf("failed to decode expense %s: %w", m.PartitionKey, err)
	}
	e.Version = m.Version
	return &e, nil
}

// ToParticipantRecord encodes a participant index row into its table row, with
// tag and date lifted into columns for the relationship index.
func ToParticipantRecord(row domain.ParticipantRow) (models.ExpenseRecord, error) {
	payload, err := json.Marshal(&row)
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("failed to encode participant row %s/%s: %w", row.ExpenseID, row.UserID, err)
	}
	rec := models.ExpenseRecord{
		PartitionKey: row.ExpenseID,
		SortKey:      models.ParticipantSortKey(row.UserID),
		RecordType:   models.RecordTypeParticipant,
		Payload:      payload,
	}
	rec.Tag.String = row.Tag
	rec.Tag.Valid = true
	rec.RecordDate.Time = row.Date
	rec.RecordDate.Valid = true
	return rec, nil
}

// ToDomainParticipantRow decodes a participant index row.
func ToDomainParticipantRow(m models.ExpenseRecord) (*domain.ParticipantRow, error) {
	var row domain.ParticipantRow
	if err := json.Unmarshal(m.Payload, &row); err != nil {
		return nil, fmt.Errorf("failed to decode participant row %s/%s: %w", m.PartitionKey, m.SortKey, err)
	}
	return &row, nil
}
