package memory

import (
	"context"
	"fmt"
	"time"

	"banking-api/internal/core/domain"
	"banking-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Transactor implements ports.DBTransactor for the memory driver.
type Transactor struct {
	store *Store
}

// NewTransactor creates a new Transactor over the store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin starts a buffered in-memory transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &Tx{
		store:    t.store,
		locked:   make(map[int64]*accountState),
		balances: make(map[int64]decimal.Decimal),
		pending:  make(map[int64]int64),
	}, nil
}

// Tx is a buffered in-memory transaction. It satisfies pgx.Tx through the
// embedded interface so the memory repos fit the same ports as the postgres
// ones; only Commit and Rollback are implemented, the repos never touch the
// SQL-level methods.
type Tx struct {
	pgx.Tx

	store       *Store
	locked      map[int64]*accountState
	lockOrder   []int64
	balances    map[int64]decimal.Decimal
	appends     []domain.LedgerEntry
	pending     map[int64]int64 // buffered entry count per account, for seq assignment
	newUsers    []*domain.User
	newAccounts []*domain.Account
	done        bool
}

func asTx(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory store requires a memory transaction, got %T", tx)
	}
	if mtx.done {
		return nil, fmt.Errorf("transaction already closed")
	}
	return mtx, nil
}

func (t *Tx) lock(id int64, st *accountState) {
	if _, held := t.locked[id]; held {
		return
	}
	st.mu.Lock()
	t.locked[id] = st
	t.lockOrder = append(t.lockOrder, id)
}

func (t *Tx) holds(id int64) bool {
	_, held := t.locked[id]
	return held
}

// Commit applies the buffered writes while the account locks are still held,
// then releases them. All effects become visible at once. Buffered user and
// account inserts go first: if a concurrently committed transaction took the
// same username, nothing is applied and ErrDuplicateUsername surfaces here.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}

	if len(t.newUsers) > 0 || len(t.newAccounts) > 0 {
		s := t.store
		s.mu.Lock()
		for _, u := range t.newUsers {
			if _, exists := s.usersByName[u.Username]; exists {
				s.mu.Unlock()
				t.release()
				return fmt.Errorf("%s: %w", u.Username, ports.ErrDuplicateUsername)
			}
		}
		for _, u := range t.newUsers {
			stored := *u
			s.users[u.ID] = &stored
			s.usersByName[u.Username] = u.ID
		}
		for _, a := range t.newAccounts {
			s.accounts[a.ID] = &accountState{account: *a}
		}
		s.mu.Unlock()
	}

	now := time.Now().UTC()
	for id, balance := range t.balances {
		st := t.locked[id]
		st.account.Balance = balance
		st.account.UpdatedAt = now
	}
	for _, e := range t.appends {
		st := t.locked[e.AccountID]
		st.entries = append(st.entries, e)
	}
	if len(t.appends) > 0 {
		t.store.ledgerMu.Lock()
		t.store.ledger = append(t.store.ledger, t.appends...)
		t.store.ledgerMu.Unlock()
	}

	t.release()
	return nil
}

// Rollback discards buffered writes and releases the locks. Calling it after
// Commit is a no-op, which permits the usual `defer tx.Rollback(ctx)`.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *Tx) release() {
	// Unlock in reverse acquisition order.
	for i := len(t.lockOrder) - 1; i >= 0; i-- {
		t.locked[t.lockOrder[i]].mu.Unlock()
	}
	t.done = true
}
