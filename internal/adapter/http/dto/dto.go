package dto

import (
	"banking-api/internal/core/domain"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts serialize as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Usuario string `json:"usuario" binding:"required"`
	Senha   string `json:"senha" binding:"required"`
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Usuario string `json:"usuario" binding:"required,min=3,max=50,safe_id"`
	Senha   string `json:"senha" binding:"required,min=6,max=128"`
	Nome    string `json:"nome" binding:"omitempty,max=100"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiraEm    int64  `json:"expira_em"` // Unix timestamp
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	Mensagem  string `json:"mensagem"`
	UsuarioID int64  `json:"usuario_id"`
	ContaID   int64  `json:"conta_id"`
}

// OperationRequest is the request body for deposits and withdrawals.
type OperationRequest struct {
	Valor decimal.Decimal `json:"valor" binding:"required"`
}

// TransferRequest is the request body for transfers.
type TransferRequest struct {
	UsuarioDestino int64           `json:"usuario_destino" binding:"required"`
	Valor          decimal.Decimal `json:"valor" binding:"required"`
}

// OperationResponse is the response body for a committed deposit, withdrawal
// or transfer. Transacao is the caller's side of the movement.
type OperationResponse struct {
	Mensagem  string              `json:"mensagem"`
	Transacao *domain.LedgerEntry `json:"transacao"`
}

// AccountSummary is one element of the public account listing.
type AccountSummary struct {
	UsuarioID int64           `json:"usuario_id"`
	Titular   string          `json:"titular"`
	Saldo     decimal.Decimal `json:"saldo"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	UsuarioID int64           `json:"usuario_id"`
	Saldo     decimal.Decimal `json:"saldo"`
}

// StatementResponse is the response for the account statement.
type StatementResponse struct {
	UsuarioID  int64                `json:"usuario_id"`
	SaldoAtual decimal.Decimal      `json:"saldo_atual"`
	Extrato    []domain.LedgerEntry `json:"extrato"`
}

// ToAccountSummary converts a domain account to its public listing form.
func ToAccountSummary(a domain.Account) AccountSummary {
	return AccountSummary{
		UsuarioID: a.ID,
		Titular:   a.Owner,
		Saldo:     a.Balance,
	}
}
