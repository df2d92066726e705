package keyexchange

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"

	"cryptochat-backend/crypto"
)

// DefaultRSABits is the modulus size used when none is requested.
const DefaultRSABits = 2048

// RSA wraps keys with RSA-OAEP, SHA-256 for both the hash and MGF1.
type RSA struct{}

func NewRSA() *RSA {
	return &RSA{}
}

func (r *RSA) Name() string { return "rsa" }

func (r *RSA) GenerateKeyPair(bits int) ([]byte, []byte, error) {
	if bits <= 0 {
		bits = DefaultRSABits
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, crypto.BackendError("rsa keygen", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, crypto.BackendError("marshal public key", err)
	}
	privPEM, err := encodePrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}
	return pub, privPEM, nil
}

func (r *RSA) EncryptKey(symmetricKey, publicKey []byte) (string, error) {
	key, err := parsePublicKey(publicKey)
	if err != nil {
		return "", err
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return "", wrongKeyType("RSA", key)
	}
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, symmetricKey, nil)
	if err != nil {
		return "", crypto.BackendError("rsa oaep encrypt", err)
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}

func (r *RSA) DecryptKey(wrapped string, privateKey []byte) ([]byte, error) {
	key, err := decodePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, wrongKeyType("RSA", key)
	}
	data, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, crypto.ErrInvalidCiphertext
	}
	symmetricKey, err := rsa.DecryptOAEP(sha256.New(), nil, priv, data, nil)
	if err != nil {
		return nil, crypto.BackendError("rsa oaep decrypt", err)
	}
	return symmetricKey, nil
}
