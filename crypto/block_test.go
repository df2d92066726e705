package crypto_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptochat-backend/crypto"
)

func TestAESRoundTrip(t *testing.T) {
	a := crypto.NewAES()
	keys := map[string][]byte{
		"128":   make([]byte, 16),
		"256":   []byte("0123456789abcdef0123456789abcdef"),
		"short": []byte("secret"),
		"long":  []byte("this key is definitely longer than thirty-two bytes"),
	}
	for name, key := range keys {
		t.Run(name, func(t *testing.T) {
			ct, err := a.Encrypt("Merhaba dünya", key)
			require.NoError(t, err)

			raw, err := base64.StdEncoding.DecodeString(ct)
			require.NoError(t, err)
			assert.Zero(t, len(raw)%16)
			assert.Equal(t, 32, len(raw), "IV plus one padded block")

			pt, err := a.Decrypt(ct, key)
			require.NoError(t, err)
			assert.Equal(t, "Merhaba dünya", pt)
		})
	}
}

func TestAESFreshIV(t *testing.T) {
	a := crypto.NewAES()
	key, err := a.GenerateKey(0)
	require.NoError(t, err)
	require.Len(t, key, 32)

	c1, err := a.Encrypt("same text", key)
	require.NoError(t, err)
	c2, err := a.Encrypt("same text", key)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
}

func TestAESGenerateKeySizes(t *testing.T) {
	a := crypto.NewAES()
	for bits, want := range map[int]int{128: 16, 192: 24, 256: 32, 100: 32, 0: 32} {
		key, err := a.GenerateKey(bits)
		require.NoError(t, err)
		assert.Len(t, key, want, "bits %d", bits)
	}
}

func TestAESInvalidCiphertext(t *testing.T) {
	a := crypto.NewAES()
	key := []byte("0123456789abcdef")

	_, err := a.Decrypt("not base64!", key)
	assert.ErrorIs(t, err, crypto.ErrInvalidCiphertext)

	_, err = a.Decrypt(base64.StdEncoding.EncodeToString(make([]byte, 16)), key)
	assert.ErrorIs(t, err, crypto.ErrInvalidCiphertext, "IV only")

	_, err = a.Decrypt(base64.StdEncoding.EncodeToString(make([]byte, 40)), key)
	assert.ErrorIs(t, err, crypto.ErrInvalidCiphertext, "not block aligned")
}

func TestDESIsAES128WithRepeatedKey(t *testing.T) {
	d := crypto.NewDES()
	key := []byte("8bytekey")

	ct, err := d.Encrypt("wire compatible", key)
	require.NoError(t, err)

	pt, err := d.Decrypt(ct, key)
	require.NoError(t, err)
	assert.Equal(t, "wire compatible", pt)

	widened := append(append([]byte{}, key...), key...)
	pt, err = crypto.NewAES().Decrypt(ct, widened)
	require.NoError(t, err)
	assert.Equal(t, "wire compatible", pt)
}

func TestDESKeyFitting(t *testing.T) {
	d := crypto.NewDES()

	ct, err := d.Encrypt("hello", []byte("abc"))
	require.NoError(t, err)
	pt, err := d.Decrypt(ct, []byte("abc\x00\x00\x00\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, "hello", pt)

	ct, err = d.Encrypt("hello", []byte("8bytekey-and-more"))
	require.NoError(t, err)
	pt, err = d.Decrypt(ct, []byte("8bytekey"))
	require.NoError(t, err)
	assert.Equal(t, "hello", pt)

	key, err := d.GenerateKey(0)
	require.NoError(t, err)
	assert.Len(t, key, 8)
}

func TestManualVariants(t *testing.T) {
	for _, c := range []crypto.Cipher{crypto.NewManualAES(), crypto.NewManualDES()} {
		t.Run(c.Name(), func(t *testing.T) {
			key, err := c.GenerateKey(0)
			require.NoError(t, err)

			ct, err := c.Encrypt("manual reference variant", key)
			require.NoError(t, err)
			pt, err := c.Decrypt(ct, key)
			require.NoError(t, err)
			assert.Equal(t, "manual reference variant", pt)

			_, err = c.Decrypt("***", key)
			assert.ErrorIs(t, err, crypto.ErrInvalidCiphertext)
		})
	}

	_, err := crypto.NewManualAES().Encrypt("x", nil)
	assert.ErrorIs(t, err, crypto.ErrMissingKey)
}

func TestPKCS7(t *testing.T) {
	padded := crypto.PKCS7Pad([]byte("YELLOW SUBMARINE"), 16)
	assert.Len(t, padded, 32)
	assert.Equal(t, byte(16), padded[31])
	assert.Equal(t, []byte("YELLOW SUBMARINE"), crypto.PKCS7Unpad(padded, 16))

	padded = crypto.PKCS7Pad([]byte("abc"), 8)
	assert.Equal(t, []byte("abc\x05\x05\x05\x05\x05"), padded)

	corrupt := []byte("abcdefg\x20")
	assert.Equal(t, corrupt, crypto.PKCS7Unpad(corrupt, 8))
	assert.Empty(t, crypto.PKCS7Unpad(nil, 8))
}
