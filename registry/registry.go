// Package registry resolves algorithm names to cipher and key-exchange
// implementations. Both registries are filled at construction and only read
// afterwards, so they are safe for concurrent use.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"cryptochat-backend/crypto"
	"cryptochat-backend/keyexchange"
)

const (
	// ImplementationLibrary selects the adapter over the platform crypto
	// primitives. It is the default.
	ImplementationLibrary = "lib"

	// ImplementationManual selects the hand-written reference variant.
	ImplementationManual = "manual"
)

type NewCipherFunc func() crypto.Cipher
type NewKeyExchangeFunc func() keyexchange.KeyExchange

// normalize case-folds name. A Caser is stateful, so each call gets its own.
func normalize(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// -----------------------------------------------------------------------------

// Symmetric maps (algorithm, implementation) to cipher constructors.
type Symmetric struct {
	ciphers map[string]map[string]NewCipherFunc
}

// NewSymmetric returns a registry holding every built-in cipher.
func NewSymmetric() *Symmetric {
	r := &Symmetric{ciphers: make(map[string]map[string]NewCipherFunc)}

	lib := map[string]NewCipherFunc{
		"caesar":    func() crypto.Cipher { return crypto.NewCaesar() },
		"vigenere":  func() crypto.Cipher { return crypto.NewVigenere() },
		"xor":       func() crypto.Cipher { return crypto.NewXOR() },
		"railfence": func() crypto.Cipher { return crypto.NewRailFence() },
		"columnar":  func() crypto.Cipher { return crypto.NewColumnar() },
		"playfair":  func() crypto.Cipher { return crypto.NewPlayfair() },
		"pigpen":    func() crypto.Cipher { return crypto.NewPigpen() },
		"aes":       func() crypto.Cipher { return crypto.NewAES() },
		"des":       func() crypto.Cipher { return crypto.NewDES() },
	}
	for name, fn := range lib {
		r.register(name, ImplementationLibrary, fn)
	}
	r.register("aes", ImplementationManual, func() crypto.Cipher { return crypto.NewManualAES() })
	r.register("des", ImplementationManual, func() crypto.Cipher { return crypto.NewManualDES() })

	return r
}

func (r *Symmetric) register(name, impl string, fn NewCipherFunc) {
	impls, ok := r.ciphers[name]
	if !ok {
		impls = make(map[string]NewCipherFunc)
		r.ciphers[name] = impls
	}
	impls[impl] = fn
}

// Get returns a cipher for algorithm. An empty implementation means "lib".
func (r *Symmetric) Get(algorithm, implementation string) (crypto.Cipher, error) {
	impl := normalize(implementation)
	if impl == "" {
		impl = ImplementationLibrary
	}
	impls, ok := r.ciphers[normalize(algorithm)]
	if !ok {
		return nil, fmt.Errorf("%w: symmetric algorithm %q", crypto.ErrUnknownAlgorithm, algorithm)
	}
	fn, ok := impls[impl]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no %q implementation", crypto.ErrUnknownAlgorithm, algorithm, implementation)
	}
	return fn(), nil
}

// Names returns the registered algorithms, sorted.
func (r *Symmetric) Names() []string {
	return sortedKeys(r.ciphers)
}

// Implementations returns the implementations registered for algorithm.
func (r *Symmetric) Implementations(algorithm string) []string {
	return sortedKeys(r.ciphers[normalize(algorithm)])
}

// -----------------------------------------------------------------------------

// KeyExchange maps algorithm names to key-exchange constructors. Only the
// library implementation exists.
type KeyExchange struct {
	algorithms map[string]NewKeyExchangeFunc
}

// NewKeyExchange returns a registry holding RSA and ECC.
func NewKeyExchange() *KeyExchange {
	return &KeyExchange{
		algorithms: map[string]NewKeyExchangeFunc{
			"rsa": func() keyexchange.KeyExchange { return keyexchange.NewRSA() },
			"ecc": func() keyexchange.KeyExchange { return keyexchange.NewECC() },
		},
	}
}

// Get returns the key exchange registered under algorithm.
func (r *KeyExchange) Get(algorithm string) (keyexchange.KeyExchange, error) {
	fn, ok := r.algorithms[normalize(algorithm)]
	if !ok {
		return nil, fmt.Errorf("%w: key exchange algorithm %q", crypto.ErrUnknownAlgorithm, algorithm)
	}
	return fn(), nil
}

// Names returns the registered algorithms, sorted.
func (r *KeyExchange) Names() []string {
	return sortedKeys(r.algorithms)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
