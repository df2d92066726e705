// Package keyexchange wraps a client's symmetric session key under a
// server-generated asymmetric keypair. RSA and ECC are supported.
package keyexchange

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"cryptochat-backend/crypto"
)

// KeyExchange is implemented by every asymmetric algorithm. Public keys are
// DER encoded SubjectPublicKeyInfo, private keys PEM encoded PKCS#8.
type KeyExchange interface {
	Name() string

	// GenerateKeyPair returns a new (public, private) pair. bits <= 0
	// selects the algorithm default.
	GenerateKeyPair(bits int) (publicKey []byte, privateKey []byte, err error)

	// EncryptKey wraps symmetricKey for the holder of publicKey. The result
	// is base64 text.
	EncryptKey(symmetricKey, publicKey []byte) (string, error)

	// DecryptKey unwraps the output of EncryptKey.
	DecryptKey(wrapped string, privateKey []byte) ([]byte, error)
}

const pemPrivateKey = "PRIVATE KEY"

func encodePrivateKey(key any) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, crypto.BackendError("marshal private key", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPrivateKey, Bytes: der}), nil
}

func decodePrivateKey(data []byte) (any, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, crypto.BackendError("parse private key", errors.New("no PEM block"))
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, crypto.BackendError("parse private key", err)
	}
	return key, nil
}

// parsePublicKey accepts DER SubjectPublicKeyInfo or its PEM armour.
func parsePublicKey(data []byte) (any, error) {
	if key, err := x509.ParsePKIXPublicKey(data); err == nil {
		return key, nil
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, crypto.BackendError("parse public key", errors.New("neither DER nor PEM"))
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, crypto.BackendError("parse public key", err)
	}
	return key, nil
}

func wrongKeyType(want string, got any) error {
	return crypto.BackendError("key type", fmt.Errorf("expected %s key, got %T", want, got))
}
