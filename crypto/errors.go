package crypto

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAlgorithm is returned when an algorithm or implementation name
	// is not registered.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrMissingKey is returned when an algorithm that needs a key gets an
	// empty one.
	ErrMissingKey = errors.New("key is required")

	// ErrInvalidKey is returned when a key is present but unusable by the
	// algorithm, such as an over-long keyword.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidCiphertext covers malformed input and wrong keys alike. The
	// two cases are deliberately reported the same way.
	ErrInvalidCiphertext = errors.New("invalid ciphertext or wrong key")

	// ErrCryptoBackend wraps failures reported by the underlying primitives.
	ErrCryptoBackend = errors.New("crypto backend failure")
)

// BackendError wraps err so that errors.Is(err, ErrCryptoBackend) holds.
func BackendError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrCryptoBackend, op, err)
}
