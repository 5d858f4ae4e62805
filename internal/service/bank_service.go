package service

import (
	"context"
	"fmt"
	"time"

	"banking-api/internal/core/domain"
	"banking-api/internal/core/ports"
	"banking-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BankServiceImpl implements ports.BankService. Every mutating operation runs
// as one transactional unit: lock the touched accounts (ascending id order),
// validate, write the new balances and ledger entries, commit. A storage
// failure retries the whole unit exactly once.
type BankServiceImpl struct {
	accountRepo ports.AccountRepository
	ledgerRepo  ports.LedgerRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewBankService creates a new BankServiceImpl.
func NewBankService(
	accountRepo ports.AccountRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *BankServiceImpl {
	return &BankServiceImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Deposit credits the account and appends a "deposito" entry.
func (s *BankServiceImpl) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	var entry *domain.LedgerEntry
	err := s.withRetry(ctx, func(ctx context.Context) error {
		e, err := s.applySingle(ctx, accountID, amount, domain.EntryKindDeposit)
		entry = e
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("account_id", accountID).
		Str("amount", amount.String()).
		Int64("seq", entry.Seq).
		Msg("deposit committed")
	return entry, nil
}

// Withdraw debits the account and appends a "retirada" entry. Withdrawing the
// exact balance is allowed.
func (s *BankServiceImpl) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	var entry *domain.LedgerEntry
	err := s.withRetry(ctx, func(ctx context.Context) error {
		e, err := s.applySingle(ctx, accountID, amount, domain.EntryKindWithdrawal)
		entry = e
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("account_id", accountID).
		Str("amount", amount.String()).
		Int64("seq", entry.Seq).
		Msg("withdrawal committed")
	return entry, nil
}

// applySingle runs a one-account unit: lock, validate, mutate, record.
func (s *BankServiceImpl) applySingle(ctx context.Context, accountID int64, amount decimal.Decimal, kind domain.EntryKind) (*domain.LedgerEntry, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	acct, err := s.accountRepo.GetForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("lock account: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	var newBalance decimal.Decimal
	if kind == domain.EntryKindWithdrawal {
		if !acct.CanWithdraw(amount) {
			return nil, apperror.ErrInsufficientFunds()
		}
		newBalance = acct.Balance.Sub(amount)
	} else {
		newBalance = acct.Balance.Add(amount)
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, accountID, newBalance); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("update balance: %w", err))
	}

	entry := &domain.LedgerEntry{
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledgerRepo.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("append ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}
	return entry, nil
}

// Transfer moves amount between two accounts: debit source, credit
// destination, append one linked entry per side. All four effects commit
// together or not at all.
func (s *BankServiceImpl) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*ports.TransferResult, error) {
	if amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if fromID == toID {
		return nil, apperror.Validation("Transferência para a própria conta não é permitida")
	}

	var result *ports.TransferResult
	err := s.withRetry(ctx, func(ctx context.Context) error {
		r, err := s.transfer(ctx, fromID, toID, amount)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("from_id", fromID).
		Int64("to_id", toID).
		Str("amount", amount.String()).
		Str("transfer_id", result.Sent.TransferID.String()).
		Msg("transfer committed")
	return result, nil
}

func (s *BankServiceImpl) transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*ports.TransferResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both accounts in ascending-id order to prevent deadlocks between
	// opposing transfers.
	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.accountRepo.GetForUpdate(ctx, dbTx, firstID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("lock account %d: %w", firstID, err))
	}
	second, err := s.accountRepo.GetForUpdate(ctx, dbTx, secondID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("lock account %d: %w", secondID, err))
	}

	from, to := first, second
	if fromID != firstID {
		from, to = second, first
	}
	if from == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	if to == nil {
		return nil, apperror.ErrRecipientNotFound()
	}

	if !from.CanWithdraw(amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, from.ID, from.Balance.Sub(amount)); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("debit source: %w", err))
	}
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, to.ID, to.Balance.Add(amount)); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("credit destination: %w", err))
	}

	now := time.Now().UTC()
	transferID := uuid.New()
	sent := &domain.LedgerEntry{
		AccountID:      from.ID,
		Kind:           domain.EntryKindTransferSent,
		Amount:         amount,
		CounterpartyID: &to.ID,
		TransferID:     &transferID,
		CreatedAt:      now,
	}
	received := &domain.LedgerEntry{
		AccountID:      to.ID,
		Kind:           domain.EntryKindTransferReceived,
		Amount:         amount,
		CounterpartyID: &from.ID,
		TransferID:     &transferID,
		CreatedAt:      now,
	}

	if err := s.ledgerRepo.Append(ctx, dbTx, sent); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("append sent entry: %w", err))
	}
	if err := s.ledgerRepo.Append(ctx, dbTx, received); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("append received entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}

	return &ports.TransferResult{Sent: sent, Received: received}, nil
}

// GetBalance returns the account's current balance.
func (s *BankServiceImpl) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, apperror.ErrStorage(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return decimal.Zero, apperror.ErrAccountNotFound()
	}
	return acct.Balance, nil
}

// AccountByUser resolves the authenticated user's account.
func (s *BankServiceImpl) AccountByUser(ctx context.Context, userID int64) (*domain.Account, error) {
	acct, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get account by user: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	return acct, nil
}

// ListAccounts returns every account, ascending by id.
func (s *BankServiceImpl) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// Statement returns the account's balance and full history.
func (s *BankServiceImpl) Statement(ctx context.Context, accountID int64) (*ports.Statement, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	entries, err := s.ledgerRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list ledger: %w", err))
	}
	return &ports.Statement{Account: acct, Entries: entries}, nil
}

// ListLedger returns the full transaction log.
func (s *BankServiceImpl) ListLedger(ctx context.Context) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list ledger: %w", err))
	}
	return entries, nil
}

// ListLedgerByAccount returns one account's transaction log. Unknown accounts
// fail with NotFound rather than returning an empty history.
func (s *BankServiceImpl) ListLedgerByAccount(ctx context.Context, accountID int64) ([]domain.LedgerEntry, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	entries, err := s.ledgerRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list ledger: %w", err))
	}
	return entries, nil
}

// withRetry runs the unit, retrying exactly once when it fails at the storage
// layer. Domain errors surface immediately.
func (s *BankServiceImpl) withRetry(ctx context.Context, unit func(context.Context) error) error {
	err := unit(ctx)
	if err == nil || !apperror.IsStorage(err) {
		return err
	}

	s.log.Warn().Err(err).Msg("storage failure, retrying unit once")
	return unit(ctx)
}
