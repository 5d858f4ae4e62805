package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind enumerates the balance-affecting event types. The values are the
// wire-level names the API has always exposed.
type EntryKind string

const (
	EntryKindDeposit          EntryKind = "deposito"
	EntryKindWithdrawal       EntryKind = "retirada"
	EntryKindTransferSent     EntryKind = "transferencia_enviada"
	EntryKindTransferReceived EntryKind = "transferencia_recebida"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindDeposit, EntryKindWithdrawal, EntryKindTransferSent, EntryKindTransferReceived:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one balance-affecting event.
// Seq is sequential per account, starting at 1. The two halves of a transfer
// share a TransferID and reference each other through CounterpartyID.
type LedgerEntry struct {
	Seq            int64           `json:"id"`
	AccountID      int64           `json:"usuario_id"`
	Kind           EntryKind       `json:"tipo"`
	Amount         decimal.Decimal `json:"valor"`
	CounterpartyID *int64          `json:"contraparte_id,omitempty"`
	TransferID     *uuid.UUID      `json:"transferencia_id,omitempty"`
	CreatedAt      time.Time       `json:"data"`
}
