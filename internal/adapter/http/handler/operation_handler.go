package handler

import (
	"banking-api/internal/adapter/http/dto"
	"banking-api/internal/adapter/http/middleware"
	"banking-api/internal/core/domain"
	"banking-api/internal/core/ports"
	"banking-api/pkg/apperror"
	"banking-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// OperationHandler handles the balance-mutating endpoints. Each one resolves
// the caller's account from the token identity, never from the request body.
type OperationHandler struct {
	bankSvc ports.BankService
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(bankSvc ports.BankService) *OperationHandler {
	return &OperationHandler{bankSvc: bankSvc}
}

// Deposit handles POST /deposito.
func (h *OperationHandler) Deposit(c *gin.Context) {
	acct, req, ok := h.bindOperation(c)
	if !ok {
		return
	}

	entry, err := h.bankSvc.Deposit(c.Request.Context(), acct.ID, req.Valor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OperationResponse{
		Mensagem:  "Depósito realizado com sucesso",
		Transacao: entry,
	})
}

// Withdraw handles POST /retirada.
func (h *OperationHandler) Withdraw(c *gin.Context) {
	acct, req, ok := h.bindOperation(c)
	if !ok {
		return
	}

	entry, err := h.bankSvc.Withdraw(c.Request.Context(), acct.ID, req.Valor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OperationResponse{
		Mensagem:  "Saque realizado com sucesso",
		Transacao: entry,
	})
}

// Transfer handles POST /transferencia.
func (h *OperationHandler) Transfer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("Dados de transferência inválidos"))
		return
	}

	acct, err := h.bankSvc.AccountByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.bankSvc.Transfer(c.Request.Context(), acct.ID, req.UsuarioDestino, req.Valor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OperationResponse{
		Mensagem:  "Transferência realizada com sucesso",
		Transacao: result.Sent,
	})
}

// bindOperation resolves the caller's account and parses the amount body
// shared by deposits and withdrawals.
func (h *OperationHandler) bindOperation(c *gin.Context) (*domain.Account, dto.OperationRequest, bool) {
	var req dto.OperationRequest

	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return nil, req, false
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("Valor ausente ou malformado"))
		return nil, req, false
	}

	acct, err := h.bankSvc.AccountByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return nil, req, false
	}

	return acct, req, true
}
