package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptochat-backend/models"
	"cryptochat-backend/registry"
)

func newCipherRouter() *gin.Engine {
	h := NewCipherHandler(registry.NewSymmetric(), registry.NewKeyExchange())
	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/algorithms", h.Algorithms)
	r.POST("/encrypt", h.Encrypt)
	r.POST("/decrypt", h.Decrypt)
	return r
}

func postCipher(t *testing.T, r http.Handler, path string, req any) (int, models.CipherResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))

	var resp models.CipherResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealthAndAlgorithms(t *testing.T) {
	r := newCipherRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/algorithms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AlgorithmsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Symmetric, 9)
	assert.Equal(t, []string{"lib", "manual"}, resp.Symmetric["des"])
	assert.Equal(t, []string{"ecc", "rsa"}, resp.KeyExchange)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	r := newCipherRouter()

	for _, req := range []models.CipherRequest{
		{Message: "HELLO WORLD", Algorithm: "caesar", Key: "7"},
		{Message: "Attack at dawn", Algorithm: "vigenere", Key: "LEMON"},
		{Message: "WEAREDISCOVERED", Algorithm: "railfence", Key: "3"},
		{Message: "Gizli mesaj", Algorithm: "aes", Key: "0123456789abcdef"},
		{Message: "Gizli mesaj", Algorithm: "des", Implementation: "manual", Key: "8bytekey"},
		{Message: "bytes", Algorithm: "xor", Key: "k"},
	} {
		code, enc := postCipher(t, r, "/encrypt", req)
		require.Equal(t, http.StatusOK, code, enc.Message)
		assert.True(t, enc.Success)

		dreq := req
		dreq.Message = enc.Result
		code, dec := postCipher(t, r, "/decrypt", dreq)
		require.Equal(t, http.StatusOK, code, dec.Message)
		assert.Equal(t, req.Message, dec.Result, req.Algorithm)
	}
}

func TestCipherErrors(t *testing.T) {
	r := newCipherRouter()

	code, resp := postCipher(t, r, "/encrypt", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)

	code, resp = postCipher(t, r, "/encrypt", models.CipherRequest{Message: "hi", Algorithm: "enigma"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "unknown algorithm")

	code, resp = postCipher(t, r, "/encrypt", models.CipherRequest{Message: "hi", Algorithm: "vigenere"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "key is required")

	code, resp = postCipher(t, r, "/encrypt", models.CipherRequest{Message: "hi", Algorithm: "vigenere", Key: strings.Repeat("k", 257)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "invalid key")

	code, resp = postCipher(t, r, "/decrypt", models.CipherRequest{Message: "!!", Algorithm: "aes", Key: "k"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "invalid ciphertext")
}
