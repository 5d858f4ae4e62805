package postgres

import (
	"context"
	"testing"
	"time"

	"banking-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerColumns() []string {
	return []string{"seq", "account_id", "kind", "amount", "counterparty_id", "transfer_id", "created_at"}
}

func TestLedgerRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	ctx := context.Background()

	e := &domain.LedgerEntry{
		AccountID: 1,
		Kind:      domain.EntryKindDeposit,
		Amount:    decimal.RequireFromString("200"),
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO ledger_entries").
		WithArgs(e.AccountID, e.Kind, e.Amount, e.CounterpartyID, e.TransferID, e.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(3)))
	mock.ExpectCommit()

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Append(ctx, tx, e))
	assert.Equal(t, int64(3), e.Seq)

	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	now := time.Now().UTC()
	transferID := uuid.New()
	counterparty := int64(2)

	rows := pgxmock.NewRows(ledgerColumns()).
		AddRow(int64(1), int64(1), domain.EntryKindDeposit, decimal.RequireFromString("200"), (*int64)(nil), (*uuid.UUID)(nil), now).
		AddRow(int64(2), int64(1), domain.EntryKindTransferSent, decimal.RequireFromString("50"), &counterparty, &transferID, now)

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE account_id").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	entries, err := repo.ListByAccount(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, domain.EntryKindDeposit, entries[0].Kind)
	assert.Nil(t, entries[0].CounterpartyID)

	assert.Equal(t, int64(2), entries[1].Seq)
	require.NotNil(t, entries[1].CounterpartyID)
	assert.Equal(t, counterparty, *entries[1].CounterpartyID)
	require.NotNil(t, entries[1].TransferID)
	assert.Equal(t, transferID, *entries[1].TransferID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByAccount_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE account_id").
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows(ledgerColumns()))

	entries, err := repo.ListByAccount(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	now := time.Now().UTC()

	rows := pgxmock.NewRows(ledgerColumns()).
		AddRow(int64(1), int64(1), domain.EntryKindDeposit, decimal.RequireFromString("100"), (*int64)(nil), (*uuid.UUID)(nil), now).
		AddRow(int64(1), int64(2), domain.EntryKindDeposit, decimal.RequireFromString("300"), (*int64)(nil), (*uuid.UUID)(nil), now)

	mock.ExpectQuery("SELECT .+ FROM ledger_entries ORDER BY id").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].AccountID)
	assert.Equal(t, int64(2), entries[1].AccountID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
