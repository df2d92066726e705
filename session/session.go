// Package session implements the per-connection handshake and relay state
// machine. The Engine holds no per-connection state: every operation takes the
// current Session value and returns the updated one, and the caller owns
// storage and serialisation.
package session

import (
	"errors"
	"fmt"

	"gopkg.in/op/go-logging.v1"

	"cryptochat-backend/registry"
)

var (
	// ErrHandshakeNotReady is returned when an operation needs a step of the
	// handshake that has not happened yet.
	ErrHandshakeNotReady = errors.New("handshake not ready")

	// ErrSessionClosed is returned for any operation on a closed session.
	ErrSessionClosed = errors.New("session closed")

	ErrDecryptMessage = errors.New("failed to decrypt message")
	ErrEncryptMessage = errors.New("failed to encrypt reply")
)

type State int

const (
	Unestablished State = iota
	AwaitingClientKey
	Established
	Closed
)

func (s State) String() string {
	switch s {
	case Unestablished:
		return "unestablished"
	case AwaitingClientKey:
		return "awaiting_client_key"
	case Established:
		return "established"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PendingKeyPair is the server keypair generated for the current handshake.
type PendingKeyPair struct {
	Algorithm  string
	PublicKey  []byte
	PrivateKey []byte
}

// Settings is the negotiated symmetric configuration.
type Settings struct {
	SymmetricAlgorithm string
	Implementation     string
	SymmetricKey       []byte
}

// Session is the state of one connection.
type Session struct {
	ID       string
	State    State
	Pending  *PendingKeyPair
	Settings *Settings
}

// SettingsRequest carries the client's half of the handshake.
type SettingsRequest struct {
	// KeyExchangeAlgorithm is optional; when set it must match the pending
	// keypair.
	KeyExchangeAlgorithm string
	SymmetricAlgorithm   string
	Implementation       string
	WrappedKey           string
}

// Transform is applied to every decrypted message before it is re-encrypted.
type Transform func(string) string

// PrefixTransform prepends prefix to each message.
func PrefixTransform(prefix string) Transform {
	return func(s string) string { return prefix + s }
}

// DefaultReplyPrefix marks relayed messages.
const DefaultReplyPrefix = "+"

// Engine runs the handshake and relay operations.
type Engine struct {
	symmetric   *registry.Symmetric
	keyExchange *registry.KeyExchange
	transform   Transform
	rsaBits     int
	log         *logging.Logger
}

type Option func(*Engine)

// WithTransform replaces the default "+" prefix transform.
func WithTransform(t Transform) Option {
	return func(e *Engine) { e.transform = t }
}

// WithRSAKeyBits sets the modulus size of generated RSA keypairs.
func WithRSAKeyBits(bits int) Option {
	return func(e *Engine) { e.rsaBits = bits }
}

// WithLogger sets the logger used for handshake events.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine over the given registries.
func NewEngine(symmetric *registry.Symmetric, keyExchange *registry.KeyExchange, opts ...Option) *Engine {
	e := &Engine{
		symmetric:   symmetric,
		keyExchange: keyExchange,
		transform:   PrefixTransform(DefaultReplyPrefix),
		log:         logging.MustGetLogger("session"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
