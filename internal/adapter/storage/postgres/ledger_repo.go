package postgres

import (
	"context"
	"fmt"

	"banking-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append inserts a ledger entry within a transaction and assigns its
// per-account sequence number. The subselect is safe because the caller holds
// the account's row lock for the duration of the transaction.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (account_id, seq, kind, amount, counterparty_id, transfer_id, created_at)
		VALUES ($1, (SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger_entries WHERE account_id = $1), $2, $3, $4, $5, $6)
		RETURNING seq`

	err := tx.QueryRow(ctx, query,
		e.AccountID, e.Kind, e.Amount, e.CounterpartyID, e.TransferID, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByAccount returns an account's entries in chronological order.
func (r *LedgerRepo) ListByAccount(ctx context.Context, accountID int64) ([]domain.LedgerEntry, error) {
	query := `SELECT seq, account_id, kind, amount, counterparty_id, transfer_id, created_at
		FROM ledger_entries WHERE account_id = $1 ORDER BY seq`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by account: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// List returns the full ledger in insertion order.
func (r *LedgerRepo) List(ctx context.Context) ([]domain.LedgerEntry, error) {
	query := `SELECT seq, account_id, kind, amount, counterparty_id, transfer_id, created_at
		FROM ledger_entries ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.Seq, &e.AccountID, &e.Kind, &e.Amount, &e.CounterpartyID, &e.TransferID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}
