package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStruct_TrimsAndEscapes(t *testing.T) {
	req := RegisterRequest{
		Usuario: "  usuario1  ",
		Senha:   "senha123",
		Nome:    "<b>Fulano</b>",
	}

	SanitizeStruct(&req)

	assert.Equal(t, "usuario1", req.Usuario)
	assert.Equal(t, "senha123", req.Senha)
	assert.Equal(t, "&lt;b&gt;Fulano&lt;/b&gt;", req.Nome)
}

func TestSanitizeStruct_IgnoresNonStructPointers(t *testing.T) {
	// Must not panic on unexpected input.
	SanitizeStruct(nil)
	SanitizeStruct("string")
	s := "valor"
	SanitizeStruct(&s)
}

func TestValidateSafeID(t *testing.T) {
	valid := []string{"usuario1", "user_name", "user-name", "user.name", "ABC123"}
	invalid := []string{"", "user name", "user@host", "usuário", "<script>"}

	for _, s := range valid {
		assert.True(t, safeStringRe.MatchString(s), "%q should be valid", s)
	}
	for _, s := range invalid {
		assert.False(t, safeStringRe.MatchString(s), "%q should be invalid", s)
	}
}

func TestAmountsSerializeAsNumbers(t *testing.T) {
	resp := BalanceResponse{
		UsuarioID: 1,
		Saldo:     decimal.RequireFromString("1000.50"),
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"usuario_id":1,"saldo":1000.5}`, string(raw))
}

func TestTransferRequest_Unmarshal(t *testing.T) {
	var req TransferRequest
	require.NoError(t, json.Unmarshal([]byte(`{"usuario_destino":2,"valor":500.25}`), &req))

	assert.Equal(t, int64(2), req.UsuarioDestino)
	assert.True(t, req.Valor.Equal(decimal.RequireFromString("500.25")))
}
