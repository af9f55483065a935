package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/courtside/badminton-league/models"
	"github.com/lib/pq"
)

var ErrLedgerUserInvalid = errors.New("ledger user conflict or invalid")

type LedgerRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry *models.LedgerEntry) error
	ListByUser(ctx context.Context, userID int) ([]*models.LedgerEntry, error)
}

type postgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) LedgerRepository {
	return &postgresLedgerRepository{db: db}
}

func (r *postgresLedgerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLedgerRepository) Append(ctx context.Context, exec SQLExecutor, entry *models.LedgerEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO ledger_entries (user_id, amount, reason, related_match_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		entry.UserID, entry.Amount, entry.Reason, entry.RelatedMatchID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrLedgerUserInvalid
	}
	return err
}

func (r *postgresLedgerRepository) ListByUser(ctx context.Context, userID int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, reason, related_match_id, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.LedgerEntry, 0)
	for rows.Next() {
		var entry models.LedgerEntry
		if scanErr := rows.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Reason, &entry.RelatedMatchID, &entry.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
