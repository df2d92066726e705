// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptochat-backend/crypto"
	"cryptochat-backend/models"
	"cryptochat-backend/registry"
)

type CipherHandler struct {
	symmetric   *registry.Symmetric
	keyExchange *registry.KeyExchange
}

func NewCipherHandler(symmetric *registry.Symmetric, keyExchange *registry.KeyExchange) *CipherHandler {
	return &CipherHandler{
		symmetric:   symmetric,
		keyExchange: keyExchange,
	}
}

func (h *CipherHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Crypto chat API is running",
		"version": "1.0.0",
	})
}

func (h *CipherHandler) Algorithms(c *gin.Context) {
	symmetric := make(map[string][]string)
	for _, name := range h.symmetric.Names() {
		symmetric[name] = h.symmetric.Implementations(name)
	}
	c.JSON(http.StatusOK, models.AlgorithmsResponse{
		Success:     true,
		Symmetric:   symmetric,
		KeyExchange: h.keyExchange.Names(),
	})
}

func (h *CipherHandler) Encrypt(c *gin.Context) {
	h.run(c, "encrypt", crypto.Cipher.Encrypt)
}

func (h *CipherHandler) Decrypt(c *gin.Context) {
	h.run(c, "decrypt", crypto.Cipher.Decrypt)
}

func (h *CipherHandler) run(c *gin.Context, op string, fn func(crypto.Cipher, string, []byte) (string, error)) {
	var req models.CipherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.CipherResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	cipher, err := h.symmetric.Get(req.Algorithm, req.Implementation)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.CipherResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	result, err := fn(cipher, req.Message, []byte(req.Key))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, crypto.ErrCryptoBackend) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, models.CipherResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to %s message: %v", op, err),
		})
		return
	}

	c.JSON(http.StatusOK, models.CipherResponse{
		Success:   true,
		Message:   fmt.Sprintf("Message %sed with %s", op, cipher.Name()),
		Result:    result,
		Algorithm: cipher.Name(),
	})
}
