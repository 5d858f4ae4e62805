package ports

import (
	"context"
	"errors"

	"banking-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrDuplicateUsername is returned by user creation when the username is
// already taken. On postgres it surfaces from the unique constraint, on the
// memory store from the username index.
var ErrDuplicateUsername = errors.New("username already exists")

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx run inside a transaction; GetForUpdate takes the
// account's lock (row lock on postgres, account mutex on the memory store)
// and callers must acquire locks in ascending account-id order.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	// CreateTx inserts the account inside the given transaction; it becomes
	// visible only on commit.
	CreateTx(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id int64, balance decimal.Decimal) error
}

// LedgerRepository defines persistence for the append-only transaction log.
type LedgerRepository interface {
	// Append stores the entry and assigns its per-account sequence number.
	// It must run inside the same transaction as the balance mutation it
	// documents: if the append fails, the mutation never commits.
	Append(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	// ListByAccount returns the account's history, oldest first.
	ListByAccount(ctx context.Context, accountID int64) ([]domain.LedgerEntry, error)
	// List returns the full ledger, oldest first.
	List(ctx context.Context) ([]domain.LedgerEntry, error)
}

// UserRepository defines persistence for login identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// CreateTx inserts the user inside the given transaction. Duplicate
	// usernames fail with ErrDuplicateUsername, at insert or at commit.
	CreateTx(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// DBTransactor provides transaction management for the active storage driver.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
