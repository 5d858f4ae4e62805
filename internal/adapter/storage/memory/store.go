// Package memory is the in-memory storage driver. It implements the same
// repository ports as the postgres driver: balance mutations happen inside a
// transaction that buffers writes and applies them all-or-nothing while
// holding the per-account locks, so a partially applied transfer is never
// observable. Lock regions cover in-memory arithmetic only, never I/O.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"banking-api/internal/core/domain"
	"banking-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Store owns all in-memory state. Construct one per process and share it
// between the repositories and the transactor.
type Store struct {
	mu            sync.RWMutex // guards maps and id counters
	accounts      map[int64]*accountState
	users         map[int64]*domain.User
	usersByName   map[string]int64
	nextAccountID int64
	nextUserID    int64

	ledgerMu sync.Mutex // guards the global ledger sequence
	ledger   []domain.LedgerEntry
}

// accountState pairs an account with its history. The mutex guards both and
// is the lock GetForUpdate acquires.
type accountState struct {
	mu      sync.Mutex
	account domain.Account
	entries []domain.LedgerEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[int64]*accountState),
		users:       make(map[int64]*domain.User),
		usersByName: make(map[string]int64),
	}
}

func (s *Store) state(id int64) *accountState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[id]
}

// --- AccountRepo ---

// AccountRepo implements ports.AccountRepository over the store.
type AccountRepo struct {
	store *Store
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(store *Store) *AccountRepo {
	return &AccountRepo{store: store}
}

// Create inserts a new account and assigns the next id.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID++
	a.ID = s.nextAccountID
	s.accounts[a.ID] = &accountState{account: *a}
	return nil
}

// CreateTx reserves the next account id and buffers the insert; the account
// becomes visible on Commit.
func (r *AccountRepo) CreateTx(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	s.nextAccountID++
	a.ID = s.nextAccountID
	s.mu.Unlock()

	buffered := *a
	mtx.newAccounts = append(mtx.newAccounts, &buffered)
	return nil
}

// GetByID returns a copy of the account, or nil when absent.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	st := r.store.state(id)
	if st == nil {
		return nil, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	a := st.account
	return &a, nil
}

// GetByUserID returns the account owned by the given user. The map is
// snapshotted before any account mutex is taken: holding s.mu while waiting
// on an account lock would let a queued writer on s.mu close a cycle with an
// in-flight transaction.
func (r *AccountRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	states := make([]*accountState, 0, len(s.accounts))
	for _, st := range s.accounts {
		states = append(states, st)
	}
	s.mu.RUnlock()

	for _, st := range states {
		st.mu.Lock()
		a := st.account
		st.mu.Unlock()
		if a.UserID == userID {
			return &a, nil
		}
	}
	return nil, nil
}

// List returns every account, ascending by id.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	s := r.store
	s.mu.RLock()
	states := make([]*accountState, 0, len(s.accounts))
	for _, st := range s.accounts {
		states = append(states, st)
	}
	s.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(states))
	for _, st := range states {
		st.mu.Lock()
		accounts = append(accounts, st.account)
		st.mu.Unlock()
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// GetForUpdate acquires the account's lock for the duration of the
// transaction and returns a copy. Callers must lock accounts in ascending-id
// order; the lock is released on Commit or Rollback.
func (r *AccountRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	st := r.store.state(id)
	if st == nil {
		return nil, nil
	}
	mtx.lock(id, st)
	a := st.account
	return &a, nil
}

// UpdateBalance buffers the new balance; it becomes visible on Commit.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id int64, balance decimal.Decimal) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if !mtx.holds(id) {
		return fmt.Errorf("account %d not locked in this transaction", id)
	}
	mtx.balances[id] = balance
	return nil
}

// --- LedgerRepo ---

// LedgerRepo implements ports.LedgerRepository over the store.
type LedgerRepo struct {
	store *Store
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(store *Store) *LedgerRepo {
	return &LedgerRepo{store: store}
}

// Append buffers the entry and assigns its per-account sequence number. The
// account must already be locked in the transaction.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	st, ok := mtx.locked[e.AccountID]
	if !ok {
		return fmt.Errorf("account %d not locked in this transaction", e.AccountID)
	}

	e.Seq = int64(len(st.entries)) + mtx.pending[e.AccountID] + 1
	mtx.pending[e.AccountID]++
	mtx.appends = append(mtx.appends, *e)
	return nil
}

// ListByAccount returns a copy of the account's history, oldest first.
func (r *LedgerRepo) ListByAccount(ctx context.Context, accountID int64) ([]domain.LedgerEntry, error) {
	st := r.store.state(accountID)
	if st == nil {
		return []domain.LedgerEntry{}, nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	entries := make([]domain.LedgerEntry, len(st.entries))
	copy(entries, st.entries)
	return entries, nil
}

// List returns a copy of the full ledger in commit order.
func (r *LedgerRepo) List(ctx context.Context) ([]domain.LedgerEntry, error) {
	s := r.store
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	entries := make([]domain.LedgerEntry, len(s.ledger))
	copy(entries, s.ledger)
	return entries, nil
}

// --- UserRepo ---

// UserRepo implements ports.UserRepository over the store.
type UserRepo struct {
	store *Store
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

// Create inserts a new user and assigns the next id.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByName[u.Username]; exists {
		return fmt.Errorf("%s: %w", u.Username, ports.ErrDuplicateUsername)
	}
	s.nextUserID++
	u.ID = s.nextUserID
	stored := *u
	s.users[u.ID] = &stored
	s.usersByName[u.Username] = u.ID
	return nil
}

// CreateTx reserves the next user id and buffers the insert. The username is
// checked here against committed state and again at Commit, so two
// transactions racing for the same name cannot both land.
func (r *UserRepo) CreateTx(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	if _, exists := s.usersByName[u.Username]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", u.Username, ports.ErrDuplicateUsername)
	}
	s.nextUserID++
	u.ID = s.nextUserID
	s.mu.Unlock()

	for _, pending := range mtx.newUsers {
		if pending.Username == u.Username {
			return fmt.Errorf("%s: %w", u.Username, ports.ErrDuplicateUsername)
		}
	}

	buffered := *u
	mtx.newUsers = append(mtx.newUsers, &buffered)
	return nil
}

// GetByID returns a copy of the user, or nil when absent.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

// GetByUsername returns a copy of the user, or nil when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return nil, nil
	}
	copied := *s.users[id]
	return &copied, nil
}
