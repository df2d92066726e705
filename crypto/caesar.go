package crypto

import (
	"strconv"
	"strings"
)

// DefaultCaesarShift is used when no key is given.
const DefaultCaesarShift = 3

// CaesarShift shifts ASCII letters by shift positions, preserving case.
// Everything else passes through unchanged.
func CaesarShift(text string, shift int) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch {
		case isLower(r):
			sb.WriteRune(rune(mod(int(r-'a')+shift, 26)) + 'a')
		case isUpper(r):
			sb.WriteRune(rune(mod(int(r-'A')+shift, 26)) + 'A')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Caesar adapts CaesarShift to the Cipher interface.
type Caesar struct{}

func NewCaesar() *Caesar {
	return &Caesar{}
}

func (c *Caesar) Name() string { return "caesar" }

func (c *Caesar) Encrypt(plaintext string, key []byte) (string, error) {
	return CaesarShift(plaintext, caesarShiftFromKey(key)), nil
}

func (c *Caesar) Decrypt(ciphertext string, key []byte) (string, error) {
	return CaesarShift(ciphertext, -caesarShiftFromKey(key)), nil
}

// GenerateKey returns a single byte holding a shift in [1, 25].
func (c *Caesar) GenerateKey(int) ([]byte, error) {
	shift, err := randomInt(1, 25)
	if err != nil {
		return nil, err
	}
	return []byte{byte(shift)}, nil
}

// caesarShiftFromKey reads the key as decimal text ("3", "-1") and falls back
// to the value of its first byte.
func caesarShiftFromKey(key []byte) int {
	if len(key) == 0 {
		return DefaultCaesarShift
	}
	if n, err := strconv.Atoi(strings.TrimSpace(string(key))); err == nil {
		return n
	}
	return int(key[0])
}
