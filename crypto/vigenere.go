package crypto

import (
	"fmt"
	"strings"
)

// Vigenere is the classical letter Vigenère cipher. Only ASCII letters are
// shifted; other characters are copied and do not advance the key.
type Vigenere struct{}

func NewVigenere() *Vigenere {
	return &Vigenere{}
}

func (v *Vigenere) Name() string { return "vigenere" }

func (v *Vigenere) Encrypt(plaintext string, key []byte) (string, error) {
	return vigenere(plaintext, string(key), 1)
}

func (v *Vigenere) Decrypt(ciphertext string, key []byte) (string, error) {
	return vigenere(ciphertext, string(key), -1)
}

// GenerateKey returns size random letters (10 by default).
func (v *Vigenere) GenerateKey(size int) ([]byte, error) {
	if size <= 0 {
		size = 10
	}
	return randomLetters(size)
}

func vigenere(text, key string, direction int) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	key = strings.ToLower(key)

	var sb strings.Builder
	sb.Grow(len(text))
	keyIndex := 0
	for _, r := range text {
		if !isLetter(r) {
			sb.WriteRune(r)
			continue
		}
		base := 'a'
		if isUpper(r) {
			base = 'A'
		}
		shift := int(key[keyIndex%len(key)]) - 'a'
		sb.WriteRune(rune(mod(int(r-base)+direction*shift, 26)) + base)
		keyIndex++
	}
	return sb.String(), nil
}

const maxKeywordLen = 256

// ValidateKey validates if the key is suitable for keyword ciphers.
func ValidateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key cannot be empty", ErrMissingKey)
	}
	if len(key) > maxKeywordLen {
		return fmt.Errorf("%w: key length cannot exceed %d characters", ErrInvalidKey, maxKeywordLen)
	}
	return nil
}
