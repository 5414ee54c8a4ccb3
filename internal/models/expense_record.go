package models

import "database/sql"

// Record type discriminators for the expense_records table.
const (
	RecordTypeExpense     = "expense"
	RecordTypeParticipant = "participant"
)

// Sort key of the aggregate record. Participant rows use ParticipantSortKey.
const ExpenseSortKey = "expense"

// ParticipantSortKey builds the sort key of a participant index row.
func ParticipantSortKey(userID string) string {
	return "user#" + userID
}

// ExpenseRecord is one row of the expense_records table. The table is a
// single-table layout: the aggregate and its per-participant index rows share
// the expense id as partition key and are distinguished by sort key. The full
// record body lives in the JSONB payload; tag and record_date are lifted out of
// participant payloads into columns so the (tag, record_date) index can serve
// the relationship queries. Version is maintained on the aggregate row only.
type ExpenseRecord struct {
	PartitionKey string         `db:"partition_key"`
	SortKey      string         `db:"sort_key"`
	RecordType   string         `db:"record_type"`
	Tag          sql.NullString `db:"tag"`
	RecordDate   sql.NullTime   `db:"record_date"`
	Payload      []byte         `db:"payload"`
	Version      int64          `db:"version"`
}
