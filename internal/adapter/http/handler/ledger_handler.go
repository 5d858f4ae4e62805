package handler

import (
	"banking-api/internal/core/ports"
	"banking-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles the transaction log endpoints.
type LedgerHandler struct {
	bankSvc ports.BankService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(bankSvc ports.BankService) *LedgerHandler {
	return &LedgerHandler{bankSvc: bankSvc}
}

// List handles GET /transacoes.
func (h *LedgerHandler) List(c *gin.Context) {
	entries, err := h.bankSvc.ListLedger(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// ListByAccount handles GET /transacoes/:usuario_id.
func (h *LedgerHandler) ListByAccount(c *gin.Context) {
	accountID, err := pathID(c, "usuario_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.bankSvc.ListLedgerByAccount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}
