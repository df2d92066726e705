package crypto

import (
	"encoding/base64"
	"fmt"
)

// ManualBlock is the "manual" reference implementation selectable for AES and
// DES. It frames data like the library adapters (base64(IV || body), PKCS#7)
// but the body is the padded plaintext xored with the repeating key and IV.
// It offers no real confidentiality and exists for comparison in the UI.
type ManualBlock struct {
	name      string
	blockSize int
	keyLen    int // 0 keeps the key as given
}

// NewManualAES returns the manual AES variant (16 byte IV and blocks).
func NewManualAES() *ManualBlock {
	return &ManualBlock{name: "aes", blockSize: 16}
}

// NewManualDES returns the manual DES variant (8 byte IV, blocks and key).
func NewManualDES() *ManualBlock {
	return &ManualBlock{name: "des", blockSize: 8, keyLen: desKeyLen}
}

func (m *ManualBlock) Name() string { return m.name }

func (m *ManualBlock) Encrypt(plaintext string, key []byte) (string, error) {
	key, err := m.key(key)
	if err != nil {
		return "", err
	}
	iv, err := randomBytes(m.blockSize)
	if err != nil {
		return "", err
	}
	padded := PKCS7Pad([]byte(plaintext), m.blockSize)
	out := append(iv, m.mask(padded, key, iv)...)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (m *ManualBlock) Decrypt(ciphertext string, key []byte) (string, error) {
	key, err := m.key(key)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(data) < m.blockSize {
		return "", ErrInvalidCiphertext
	}
	iv, body := data[:m.blockSize], data[m.blockSize:]
	return validUTF8(PKCS7Unpad(m.mask(body, key, iv), m.blockSize))
}

// GenerateKey follows the library variant of the same algorithm.
func (m *ManualBlock) GenerateKey(size int) ([]byte, error) {
	if m.keyLen > 0 {
		return randomBytes(m.keyLen)
	}
	return randomBytes(aesKeyBytes(size))
}

func (m *ManualBlock) key(key []byte) ([]byte, error) {
	if m.keyLen > 0 {
		return fitDESKey(key), nil
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: %s manual", ErrMissingKey, m.name)
	}
	return key, nil
}

func (m *ManualBlock) mask(data, key, iv []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)] ^ iv[i%len(iv)]
	}
	return out
}
