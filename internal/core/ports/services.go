package ports

import (
	"context"
	"time"

	"banking-api/internal/core/domain"

	"github.com/shopspring/decimal"
)

// BankService defines the core balance-mutation operations. Every mutating
// call is one atomic unit: either the balance change and its ledger entries
// are all visible, or none are.
type BankService interface {
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.LedgerEntry, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.LedgerEntry, error)
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*TransferResult, error)

	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	AccountByUser(ctx context.Context, userID int64) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	Statement(ctx context.Context, accountID int64) (*Statement, error)
	ListLedger(ctx context.Context) ([]domain.LedgerEntry, error)
	ListLedgerByAccount(ctx context.Context, accountID int64) ([]domain.LedgerEntry, error)
}

// TransferResult holds both halves of a completed transfer.
type TransferResult struct {
	Sent     *domain.LedgerEntry
	Received *domain.LedgerEntry
}

// Statement is the /extrato view: current balance plus full history.
type Statement struct {
	Account *domain.Account
	Entries []domain.LedgerEntry
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds validated input for account registration.
type RegisterRequest struct {
	Username string
	Password string
	Owner    string
}

// RegisterResult holds the created identity and its account.
type RegisterResult struct {
	UserID    int64
	AccountID int64
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID int64, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   int64
	Username string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}
