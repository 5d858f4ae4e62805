package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
// Message is the client-facing text (the API speaks Portuguese on the wire);
// Err carries the internal cause and is never exposed.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Accounts (ACC) ----

func ErrAccountNotFound() *AppError {
	return New("ACC_001", "Usuário não encontrado", http.StatusNotFound)
}

func ErrRecipientNotFound() *AppError {
	return New("ACC_002", "Destinatário não encontrado", http.StatusNotFound)
}

// ---- Operations (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Saldo insuficiente", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Valor inválido", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Usuário ou senha incorretos", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Token inválido ou expirado", http.StatusUnauthorized)
}

func ErrUsernameTaken() *AppError {
	return New("AUTH_003", "Nome de usuário já existe", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Limite de requisições excedido", http.StatusTooManyRequests)
}

// ---- System & Storage (SYS) ----

const storageCode = "SYS_001"

// ErrStorage wraps a persistence failure. Operations retry the whole unit
// once on this class of error before surfacing it.
func ErrStorage(err error) *AppError {
	return Wrap(storageCode, "Erro interno do servidor", http.StatusInternalServerError, err)
}

// InternalError wraps any unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap("SYS_000", "Erro interno do servidor", http.StatusInternalServerError, err)
}

// Validation returns a 400 error for malformed request input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// IsStorage reports whether err is a storage-layer failure.
func IsStorage(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == storageCode
}
