package response

import (
	"errors"
	"net/http"

	"banking-api/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error envelope the API has always used: a single
// "erro" field with a human-readable message.
type ErrorResponse struct {
	Erro string `json:"erro"`
}

// OK sends a 200 response with the payload as-is.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the payload as-is.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error sends an error response. *apperror.AppError maps to its HTTP status;
// anything else becomes an opaque 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{Erro: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Erro: "Erro interno do servidor"})
}
