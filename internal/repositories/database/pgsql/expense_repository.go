package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitr-app/splitr_backend/internal/apperrors"
	"github.com/splitr-app/splitr_backend/internal/core/domain"
	portsrepo "github.com/splitr-app/splitr_backend/internal/core/ports/repositories"
	"github.com/splitr-app/splitr_backend/internal/models"
	"github.com/splitr-app/splitr_backend/internal/utils/mapping"
)

// PgxExpenseRepository stores expenses in the expense_records single-table
// layout: the aggregate and its per-participant index rows share a partition
// key and are written together inside one database transaction.
type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `
		SELECT partition_key, sort_key, record_type, tag, record_date, payload, version
		FROM expense_records
		WHERE partition_key = $1 AND sort_key = $2;
	`
	var rec models.ExpenseRecord
	err := r.Pool.QueryRow(ctx, query, expenseID, models.ExpenseSortKey).Scan(
		&rec.PartitionKey,
		&rec.SortKey,
		&rec.RecordType,
		&rec.Tag,
		&rec.RecordDate,
		&rec.Payload,
		&rec.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}

	return mapping.ToDomainExpense(rec)
}

func (r *PgxExpenseRepository) FindExpensesByIDs(ctx context.Context, expenseIDs []string) ([]domain.Expense, error) {
	if len(expenseIDs) == 0 {
		return []domain.Expense{}, nil
	}

	query := `
		SELECT partition_key, sort_key, record_type, tag, record_date, payload, version
		FROM expense_records
		WHERE partition_key = ANY($1) AND sort_key = $2;
	`
	rows, err := r.Pool.Query(ctx, query, expenseIDs, models.ExpenseSortKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var rec models.ExpenseRecord
		if err := rows.Scan(&rec.PartitionKey, &rec.SortKey, &rec.RecordType, &rec.Tag, &rec.RecordDate, &rec.Payload, &rec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		e, err := mapping.ToDomainExpense(rec)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", rows.Err())
	}

	// Missing ids are silently omitted; the caller decides whether that matters.
	return expenses, nil
}

func (r *PgxExpenseRepository) FindExpenseWithParticipant(ctx context.Context, expenseID, userID string) (*domain.Expense, *domain.ParticipantRow, error) {
	// One query for both records of the partition keeps the pair consistent.
	query := `
		SELECT partition_key, sort_key, record_type, tag, record_date, payload, version
		FROM expense_records
		WHERE partition_key = $1 AND sort_key IN ($2, $3);
	`
	rows, err := r.Pool.Query(ctx, query, expenseID, models.ExpenseSortKey, models.ParticipantSortKey(userID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query expense %s with participant %s: %w", expenseID, userID, err)
	}
	defer rows.Close()

	var expense *domain.Expense
	var participant *domain.ParticipantRow
	for rows.Next() {
		var rec models.ExpenseRecord
		if err := rows.Scan(&rec.PartitionKey, &rec.SortKey, &rec.RecordType, &rec.Tag, &rec.RecordDate, &rec.Payload, &rec.Version); err != nil {
			return nil, nil, fmt.Errorf("failed to scan expense record: %w", err)
		}
		switch rec.RecordType {
		case models.RecordTypeExpense:
			expense, err = mapping.ToDomainExpense(rec)
		case models.RecordTypeParticipant:
			participant, err = mapping.ToDomainParticipantRow(rec)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating expense records: %w", rows.Err())
	}

	if expense == nil || participant == nil {
		return nil, nil, fmt.Errorf("expense %s with participant %s: %w", expenseID, userID, apperrors.ErrNotFound)
	}
	return expense, participant, nil
}

func (r *PgxExpenseRepository) ListExpenseIDsByTag(ctx context.Context, tag string) ([]string, error) {
	query := `
		SELECT partition_key
		FROM expense_records
		WHERE tag = $1
		ORDER BY record_date DESC;
	`
	rows, err := r.Pool.Query(ctx, query, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense ids for tag %s: %w", tag, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense ids: %w", rows.Err())
	}
	return ids, nil
}

// WriteExpense persists the aggregate and the given index row changes in one
// transaction. The aggregate's version is check-and-incremented: version 0
// inserts a fresh record, any other value must still match the stored row or
// the whole write fails with ErrConflict.
func (r *PgxExpenseRepository) WriteExpense(ctx context.Context, expense *domain.Expense, rows []domain.ParticipantRow, deleteRows []portsrepo.RowKey) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	newVersion := expense.Version + 1
	rec, err := mapping.ToExpenseRecord(expense, newVersion)
	if err != nil {
		return err
	}

	if expense.Version == 0 {
		insertQuery := `
			INSERT INTO expense_records (partition_key, sort_key, record_type, tag, record_date, payload, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
		`
		_, err = tx.Exec(ctx, insertQuery,
			rec.PartitionKey, rec.SortKey, rec.RecordType, rec.Tag, rec.RecordDate, rec.Payload, rec.Version)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("expense %s already exists: %w", expense.ExpenseID, apperrors.ErrConflict)
			}
			return fmt.Errorf("failed to insert expense %s: %w", expense.ExpenseID, err)
		}
	} else {
		updateQuery := `
			UPDATE expense_records
			SET payload = $1, version = $2
			WHERE partition_key = $3 AND sort_key = $4 AND version = $5;
		`
		cmdTag, err := tx.Exec(ctx, updateQuery,
			rec.Payload, rec.Version, rec.PartitionKey, rec.SortKey, expense.Version)
		if err != nil {
			return fmt.Errorf("failed to update expense %s: %w", expense.ExpenseID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("expense %s version %d is stale: %w", expense.ExpenseID, expense.Version, apperrors.ErrConflict)
		}
	}

	upsertQuery := `
		INSERT INTO expense_records (partition_key, sort_key, record_type, tag, record_date, payload, version)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		ON CONFLICT (partition_key, sort_key) DO UPDATE SET
			tag = EXCLUDED.tag,
			record_date = EXCLUDED.record_date,
			payload = EXCLUDED.payload;
	`
	for _, row := range rows {
		rowRec, err := mapping.ToParticipantRecord(row)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, upsertQuery,
			rowRec.PartitionKey, rowRec.SortKey, rowRec.RecordType, rowRec.Tag, rowRec.RecordDate, rowRec.Payload)
		if err != nil {
			return fmt.Errorf("failed to upsert participant row %s/%s: %w", row.ExpenseID, row.UserID, err)
		}
	}

	deleteQuery := `DELETE FROM expense_records WHERE partition_key = $1 AND sort_key = $2;`
	for _, key := range deleteRows {
		if _, err := tx.Exec(ctx, deleteQuery, key.ExpenseID, models.ParticipantSortKey(key.UserID)); err != nil {
			return fmt.Errorf("failed to delete participant row %s/%s: %w", key.ExpenseID, key.UserID, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}

	expense.Version = newVersion
	return nil
}

// DeleteExpense removes the aggregate and every index row of the partition.
// A single statement keeps it atomic; deleting an absent expense is a no-op.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	query := `DELETE FROM expense_records WHERE partition_key = $1;`
	if _, err := r.Pool.Exec(ctx, query, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", expenseID, err)
	}
	return nil
}
