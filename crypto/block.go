package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
)

const (
	aesMaxKeyLen = 32
	desKeyLen    = 8
)

// AES is AES-CBC with PKCS#7 padding. Output is base64(IV || ciphertext).
type AES struct{}

func NewAES() *AES {
	return &AES{}
}

func (a *AES) Name() string { return "aes" }

func (a *AES) Encrypt(plaintext string, key []byte) (string, error) {
	return cbcEncrypt(normalizeAESKey(key), []byte(plaintext))
}

func (a *AES) Decrypt(ciphertext string, key []byte) (string, error) {
	return cbcDecrypt(normalizeAESKey(key), ciphertext)
}

// GenerateKey takes a size in bits: 128, 192 or 256 (default).
func (a *AES) GenerateKey(size int) ([]byte, error) {
	return randomBytes(aesKeyBytes(size))
}

// DES keeps the DES key format (8 bytes) but runs AES-128-CBC underneath:
// the key is repeated to 16 bytes. Browser clients have no DES primitive, so
// both ends agree on this substitution; it is not real DES.
type DES struct{}

func NewDES() *DES {
	return &DES{}
}

func (d *DES) Name() string { return "des" }

func (d *DES) Encrypt(plaintext string, key []byte) (string, error) {
	return cbcEncrypt(widenDESKey(key), []byte(plaintext))
}

func (d *DES) Decrypt(ciphertext string, key []byte) (string, error) {
	return cbcDecrypt(widenDESKey(key), ciphertext)
}

// GenerateKey returns an 8 byte key; size is ignored.
func (d *DES) GenerateKey(int) ([]byte, error) {
	return randomBytes(desKeyLen)
}

func aesKeyBytes(bits int) int {
	switch bits {
	case 128, 192, 256:
		return bits / 8
	default:
		return 32
	}
}

// normalizeAESKey keeps 16, 24 and 32 byte keys, zero-pads shorter keys to
// 32 bytes and truncates longer ones.
func normalizeAESKey(key []byte) []byte {
	switch len(key) {
	case 16, 24, 32:
		return key
	}
	out := make([]byte, aesMaxKeyLen)
	copy(out, key)
	return out
}

func fitDESKey(key []byte) []byte {
	out := make([]byte, desKeyLen)
	copy(out, key)
	return out
}

func widenDESKey(key []byte) []byte {
	k := fitDESKey(key)
	out := make([]byte, 2*desKeyLen)
	for i := range out {
		out[i] = k[i%desKeyLen]
	}
	return out
}

func cbcEncrypt(key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", BackendError("aes", err)
	}
	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return "", err
	}

	padded := PKCS7Pad(plaintext, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func cbcDecrypt(key []byte, ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: bad length %d", ErrInvalidCiphertext, len(data))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", BackendError("aes", err)
	}
	iv, body := data[:aes.BlockSize], data[aes.BlockSize:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	return validUTF8(PKCS7Unpad(plain, aes.BlockSize))
}
