// Package crypto contains the symmetric ciphers a chat session can pick from:
// classical letter ciphers, the AES/DES block adapters and their manual
// reference variants.
package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode/utf8"
)

// Cipher is implemented by every symmetric algorithm. Keys are opaque bytes
// whose meaning depends on the algorithm.
type Cipher interface {
	// Name returns the registry name of the algorithm.
	Name() string

	// Encrypt encrypts plaintext with key.
	Encrypt(plaintext string, key []byte) (string, error)

	// Decrypt reverses Encrypt.
	Decrypt(ciphertext string, key []byte) (string, error)

	// GenerateKey returns a fresh key. A size <= 0 selects the algorithm
	// default; its unit (bits or characters) is algorithm specific.
	GenerateKey(size int) ([]byte, error)
}

const (
	upperAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, BackendError("random", err)
	}
	return b, nil
}

// randomInt returns a uniform integer in [lo, hi].
func randomInt(lo, hi int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return 0, BackendError("random", err)
	}
	return lo + int(n.Int64()), nil
}

func randomLetters(n int) ([]byte, error) {
	key := make([]byte, n)
	for i := range key {
		idx, err := randomInt(0, len(upperAlphabet)-1)
		if err != nil {
			return nil, err
		}
		key[i] = upperAlphabet[idx]
	}
	return key, nil
}

func validUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidCiphertext)
	}
	return string(b), nil
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

// mod returns the non-negative remainder of a / m.
func mod(a, m int) int {
	return ((a % m) + m) % m
}
