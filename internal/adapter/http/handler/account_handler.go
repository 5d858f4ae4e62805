package handler

import (
	"strconv"

	"banking-api/internal/adapter/http/dto"
	"banking-api/internal/adapter/http/middleware"
	"banking-api/internal/core/ports"
	"banking-api/pkg/apperror"
	"banking-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account query endpoints.
type AccountHandler struct {
	bankSvc ports.BankService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(bankSvc ports.BankService) *AccountHandler {
	return &AccountHandler{bankSvc: bankSvc}
}

// ListAccounts handles GET /contas.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.bankSvc.ListAccounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	summaries := make([]dto.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, dto.ToAccountSummary(a))
	}
	response.OK(c, summaries)
}

// GetBalance handles GET /saldo/:usuario_id.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID, err := pathID(c, "usuario_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.bankSvc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		UsuarioID: accountID,
		Saldo:     balance,
	})
}

// Statement handles GET /extrato for the authenticated user.
func (h *AccountHandler) Statement(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	acct, err := h.bankSvc.AccountByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	stmt, err := h.bankSvc.Statement(c.Request.Context(), acct.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatementResponse{
		UsuarioID:  stmt.Account.ID,
		SaldoAtual: stmt.Account.Balance,
		Extrato:    stmt.Entries,
	})
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("Identificador de usuário inválido")
	}
	return id, nil
}
