package keyexchange

import (
	"bytes"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"cryptochat-backend/crypto"
)

const derivedKeyLen = 32

// eccSeparator splits the ephemeral public key from the masked key. Nothing
// enforces that it cannot occur inside the DER public key; the split takes the
// first occurrence.
var eccSeparator = []byte("|||")

// ECC wraps keys with an ephemeral P-256 ECDH exchange: the shared secret is
// run through HKDF-SHA256 (empty salt and info) and xored with the key.
type ECC struct {
	curve ecdh.Curve
}

func NewECC() *ECC {
	return &ECC{curve: ecdh.P256()}
}

func (e *ECC) Name() string { return "ecc" }

// GenerateKeyPair ignores bits; the curve is always P-256.
func (e *ECC) GenerateKeyPair(int) ([]byte, []byte, error) {
	priv, err := e.curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, crypto.BackendError("ecdh keygen", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(priv.PublicKey())
	if err != nil {
		return nil, nil, crypto.BackendError("marshal public key", err)
	}
	privPEM, err := encodePrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}
	return pub, privPEM, nil
}

func (e *ECC) EncryptKey(symmetricKey, publicKey []byte) (string, error) {
	peer, err := e.parsePeerKey(publicKey)
	if err != nil {
		return "", err
	}

	ephemeral, err := e.curve.GenerateKey(rand.Reader)
	if err != nil {
		return "", crypto.BackendError("ecdh keygen", err)
	}
	mask, err := deriveMask(ephemeral, peer)
	if err != nil {
		return "", err
	}
	ephemeralDER, err := x509.MarshalPKIXPublicKey(ephemeral.PublicKey())
	if err != nil {
		return "", crypto.BackendError("marshal public key", err)
	}

	combined := make([]byte, 0, len(ephemeralDER)+len(eccSeparator)+derivedKeyLen)
	combined = append(combined, ephemeralDER...)
	combined = append(combined, eccSeparator...)
	combined = append(combined, xorMask(symmetricKey, mask)...)
	return base64.StdEncoding.EncodeToString(combined), nil
}

func (e *ECC) DecryptKey(wrapped string, privateKey []byte) ([]byte, error) {
	key, err := decodePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	priv, err := toECDHPrivate(key)
	if err != nil {
		return nil, err
	}

	combined, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, crypto.ErrInvalidCiphertext
	}
	ephemeralBytes, masked, found := bytes.Cut(combined, eccSeparator)
	if !found {
		return nil, fmt.Errorf("%w: separator not found", crypto.ErrInvalidCiphertext)
	}
	ephemeral, err := e.parsePeerKey(ephemeralBytes)
	if err != nil {
		return nil, err
	}

	mask, err := deriveMask(priv, ephemeral)
	if err != nil {
		return nil, err
	}
	return xorMask(masked, mask), nil
}

// parsePeerKey accepts DER or PEM SubjectPublicKeyInfo, or a raw uncompressed
// point.
func (e *ECC) parsePeerKey(data []byte) (*ecdh.PublicKey, error) {
	if key, err := parsePublicKey(data); err == nil {
		switch k := key.(type) {
		case *ecdsa.PublicKey:
			pub, err := k.ECDH()
			if err != nil {
				return nil, crypto.BackendError("convert public key", err)
			}
			return pub, nil
		case *ecdh.PublicKey:
			return k, nil
		default:
			return nil, wrongKeyType("EC", key)
		}
	}
	pub, err := e.curve.NewPublicKey(data)
	if err != nil {
		return nil, crypto.BackendError("parse public key", err)
	}
	return pub, nil
}

func toECDHPrivate(key any) (*ecdh.PrivateKey, error) {
	switch k := key.(type) {
	case *ecdsa.PrivateKey:
		priv, err := k.ECDH()
		if err != nil {
			return nil, crypto.BackendError("convert private key", err)
		}
		return priv, nil
	case *ecdh.PrivateKey:
		return k, nil
	default:
		return nil, wrongKeyType("EC", key)
	}
}

func deriveMask(priv *ecdh.PrivateKey, peer *ecdh.PublicKey) ([]byte, error) {
	secret, err := priv.ECDH(peer)
	if err != nil {
		return nil, crypto.BackendError("ecdh", err)
	}
	mask := make([]byte, derivedKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, []byte{}, []byte{}), mask); err != nil {
		return nil, crypto.BackendError("hkdf", err)
	}
	return mask, nil
}

// xorMask xors data with mask over the shorter of the two lengths, so keys
// longer than the derived mask are truncated to it.
func xorMask(data, mask []byte) []byte {
	n := min(len(data), len(mask))
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = data[i] ^ mask[i]
	}
	return out
}
