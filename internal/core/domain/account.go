package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's balance. The integer account id is the canonical
// identifier everywhere in the system; usernames resolve to it via the user
// record.
type Account struct {
	ID        int64           `json:"usuario_id"`
	UserID    int64           `json:"-"`
	Owner     string          `json:"titular"`
	Balance   decimal.Decimal `json:"saldo"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanWithdraw reports whether the account covers the given amount.
// Withdrawing the exact balance is allowed (balance reaches zero).
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return !a.Balance.LessThan(amount)
}
