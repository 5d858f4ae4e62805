package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"banking-api/internal/core/domain"
	"banking-api/internal/core/ports"
	"banking-api/internal/core/ports/mocks"
	"banking-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupRouterTest(t *testing.T) (*mocks.MockAuthService, *mocks.MockBankService, *mocks.MockTokenService, http.Handler) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	authSvc := mocks.NewMockAuthService(ctrl)
	bankSvc := mocks.NewMockBankService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	router := SetupRouter(RouterDeps{
		AuthSvc:  authSvc,
		BankSvc:  bankSvc,
		TokenSvc: tokenSvc,
		Logger:   zerolog.Nop(),
	})
	return authSvc, bankSvc, tokenSvc, router
}

func doRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authHeaders(tokenSvc *mocks.MockTokenService, userID int64, username string) map[string]string {
	tokenSvc.EXPECT().Validate("test-token").Return(&ports.TokenClaims{UserID: userID, Username: username}, nil)
	return map[string]string{"Authorization": "Bearer test-token"}
}

func TestLogin_Success(t *testing.T) {
	authSvc, _, _, router := setupRouterTest(t)

	expiry := time.Now().Add(30 * time.Minute)
	authSvc.EXPECT().Login(gomock.Any(), "usuario1", "senha123").Return("jwt-token", expiry, nil)

	w := doRequest(router, http.MethodPost, "/login", `{"usuario":"usuario1","senha":"senha123"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp["access_token"])
	assert.Equal(t, "bearer", resp["token_type"])
	assert.EqualValues(t, expiry.Unix(), resp["expira_em"])
}

func TestLogin_WrongCredentials(t *testing.T) {
	authSvc, _, _, router := setupRouterTest(t)

	authSvc.EXPECT().Login(gomock.Any(), "usuario1", "senha_errada").
		Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := doRequest(router, http.MethodPost, "/login", `{"usuario":"usuario1","senha":"senha_errada"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"erro":"Usuário ou senha incorretos"}`, w.Body.String())
}

func TestLogin_MissingFields(t *testing.T) {
	_, _, _, router := setupRouterTest(t)

	w := doRequest(router, http.MethodPost, "/login", `{"usuario":"usuario1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "erro")
}

func TestRegister_Success(t *testing.T) {
	authSvc, _, _, router := setupRouterTest(t)

	authSvc.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Username: "novo", Password: "senha123", Owner: "Novo Usuário",
	}).Return(&ports.RegisterResult{UserID: 3, AccountID: 3}, nil)

	w := doRequest(router, http.MethodPost, "/registro", `{"usuario":"novo","senha":"senha123","nome":"Novo Usuário"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Usuário criado com sucesso")
	assert.Contains(t, w.Body.String(), `"usuario_id":3`)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	authSvc, _, _, router := setupRouterTest(t)

	authSvc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUsernameTaken())

	w := doRequest(router, http.MethodPost, "/registro", `{"usuario":"usuario1","senha":"senha123"}`, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"erro":"Nome de usuário já existe"}`, w.Body.String())
}

func TestListAccounts(t *testing.T) {
	_, bankSvc, _, router := setupRouterTest(t)

	bankSvc.EXPECT().ListAccounts(gomock.Any()).Return([]domain.Account{
		{ID: 1, Owner: "Usuário Um", Balance: money("1000.50")},
		{ID: 2, Owner: "Usuário Dois", Balance: money("5000.00")},
	}, nil)

	w := doRequest(router, http.MethodGet, "/contas", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.EqualValues(t, 1, resp[0]["usuario_id"])
	assert.EqualValues(t, 1000.50, resp[0]["saldo"])
}

func TestGetBalance(t *testing.T) {
	_, bankSvc, _, router := setupRouterTest(t)

	bankSvc.EXPECT().GetBalance(gomock.Any(), int64(1)).Return(money("1000.50"), nil)

	w := doRequest(router, http.MethodGet, "/saldo/1", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"usuario_id":1,"saldo":1000.5}`, w.Body.String())
}

func TestGetBalance_UnknownAccount(t *testing.T) {
	_, bankSvc, _, router := setupRouterTest(t)

	bankSvc.EXPECT().GetBalance(gomock.Any(), int64(404)).Return(decimal.Zero, apperror.ErrAccountNotFound())

	w := doRequest(router, http.MethodGet, "/saldo/404", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"erro":"Usuário não encontrado"}`, w.Body.String())
}

func TestGetBalance_InvalidID(t *testing.T) {
	_, _, _, router := setupRouterTest(t)

	w := doRequest(router, http.MethodGet, "/saldo/abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "erro")
}

func TestDeposit_Success(t *testing.T) {
	_, bankSvc, tokenSvc, router := setupRouterTest(t)

	acct := &domain.Account{ID: 1, UserID: 42, Balance: money("1000.50")}
	entry := &domain.LedgerEntry{Seq: 1, AccountID: 1, Kind: domain.EntryKindDeposit, Amount: money("200")}

	bankSvc.EXPECT().AccountByUser(gomock.Any(), int64(42)).Return(acct, nil)
	bankSvc.EXPECT().Deposit(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ any, _ int64, amount decimal.Decimal) (*domain.LedgerEntry, error) {
			assert.True(t, amount.Equal(money("200")))
			return entry, nil
		})

	w := doRequest(router, http.MethodPost, "/deposito", `{"valor":200}`,
		authHeaders(tokenSvc, 42, "usuario1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Depósito realizado com sucesso")
	assert.Contains(t, w.Body.String(), `"tipo":"deposito"`)
}

func TestDeposit_Unauthenticated(t *testing.T) {
	_, _, _, router := setupRouterTest(t)

	w := doRequest(router, http.MethodPost, "/deposito", `{"valor":200}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	_, bankSvc, tokenSvc, router := setupRouterTest(t)

	acct := &domain.Account{ID: 1, UserID: 42, Balance: money("100")}
	bankSvc.EXPECT().AccountByUser(gomock.Any(), int64(42)).Return(acct, nil)
	bankSvc.EXPECT().Withdraw(gomock.Any(), int64(1), gomock.Any()).Return(nil, apperror.ErrInsufficientFunds())

	w := doRequest(router, http.MethodPost, "/retirada", `{"valor":500}`,
		authHeaders(tokenSvc, 42, "usuario1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"erro":"Saldo insuficiente"}`, w.Body.String())
}

func TestTransfer_Success(t *testing.T) {
	_, bankSvc, tokenSvc, router := setupRouterTest(t)

	acct := &domain.Account{ID: 1, UserID: 42, Balance: money("1000.50")}
	sent := &domain.LedgerEntry{Seq: 2, AccountID: 1, Kind: domain.EntryKindTransferSent, Amount: money("500")}
	received := &domain.LedgerEntry{Seq: 1, AccountID: 2, Kind: domain.EntryKindTransferReceived, Amount: money("500")}

	bankSvc.EXPECT().AccountByUser(gomock.Any(), int64(42)).Return(acct, nil)
	bankSvc.EXPECT().Transfer(gomock.Any(), int64(1), int64(2), gomock.Any()).
		Return(&ports.TransferResult{Sent: sent, Received: received}, nil)

	w := doRequest(router, http.MethodPost, "/transferencia", `{"usuario_destino":2,"valor":500}`,
		authHeaders(tokenSvc, 42, "usuario1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Transferência realizada com sucesso")
	assert.Contains(t, w.Body.String(), `"tipo":"transferencia_enviada"`)
}

func TestTransfer_RecipientNotFound(t *testing.T) {
	_, bankSvc, tokenSvc, router := setupRouterTest(t)

	acct := &domain.Account{ID: 1, UserID: 42}
	bankSvc.EXPECT().AccountByUser(gomock.Any(), int64(42)).Return(acct, nil)
	bankSvc.EXPECT().Transfer(gomock.Any(), int64(1), int64(9), gomock.Any()).
		Return(nil, apperror.ErrRecipientNotFound())

	w := doRequest(router, http.MethodPost, "/transferencia", `{"usuario_destino":9,"valor":10}`,
		authHeaders(tokenSvc, 42, "usuario1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"erro":"Destinatário não encontrado"}`, w.Body.String())
}

func TestStatement(t *testing.T) {
	_, bankSvc, tokenSvc, router := setupRouterTest(t)

	acct := &domain.Account{ID: 1, UserID: 42, Balance: money("500.50")}
	bankSvc.EXPECT().AccountByUser(gomock.Any(), int64(42)).Return(acct, nil)
	bankSvc.EXPECT().Statement(gomock.Any(), int64(1)).Return(&ports.Statement{
		Account: acct,
		Entries: []domain.LedgerEntry{
			{Seq: 1, AccountID: 1, Kind: domain.EntryKindDeposit, Amount: money("200")},
		},
	}, nil)

	w := doRequest(router, http.MethodGet, "/extrato", "", authHeaders(tokenSvc, 42, "usuario1"))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp["usuario_id"])
	assert.EqualValues(t, 500.50, resp["saldo_atual"])
	assert.Len(t, resp["extrato"], 1)
}

func TestListLedger(t *testing.T) {
	_, bankSvc, _, router := setupRouterTest(t)

	bankSvc.EXPECT().ListLedger(gomock.Any()).Return([]domain.LedgerEntry{
		{Seq: 1, AccountID: 1, Kind: domain.EntryKindDeposit, Amount: money("100")},
		{Seq: 1, AccountID: 2, Kind: domain.EntryKindDeposit, Amount: money("300")},
	}, nil)

	w := doRequest(router, http.MethodGet, "/transacoes", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestListLedgerByAccount_UnknownAccount(t *testing.T) {
	_, bankSvc, _, router := setupRouterTest(t)

	bankSvc.EXPECT().ListLedgerByAccount(gomock.Any(), int64(404)).
		Return(nil, apperror.ErrAccountNotFound())

	w := doRequest(router, http.MethodGet, "/transacoes/404", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"erro":"Usuário não encontrado"}`, w.Body.String())
}

func TestHealthCheck_NoCheckers(t *testing.T) {
	_, _, _, router := setupRouterTest(t)

	w := doRequest(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
