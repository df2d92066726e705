package crypto

import (
	"encoding/base64"
	"fmt"
)

// XOR xors the UTF-8 plaintext with a repeating key and base64 encodes the
// result.
type XOR struct{}

func NewXOR() *XOR {
	return &XOR{}
}

func (x *XOR) Name() string { return "xor" }

func (x *XOR) Encrypt(plaintext string, key []byte) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: xor", ErrMissingKey)
	}
	return base64.StdEncoding.EncodeToString(xorBytes([]byte(plaintext), key)), nil
}

// Decrypt never tells a corrupt ciphertext apart from a wrong key.
func (x *XOR) Decrypt(ciphertext string, key []byte) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: xor", ErrMissingKey)
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	out := xorBytes(raw, key)
	if _, err := validUTF8(out); err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(out), nil
}

// GenerateKey returns size random bytes (16 by default).
func (x *XOR) GenerateKey(size int) ([]byte, error) {
	if size <= 0 {
		size = 16
	}
	return randomBytes(size)
}

func xorBytes(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
