// Package models contains the wire records of the REST and websocket APIs
package models

// Websocket event names.
const (
	EventConnected             = "connected"
	EventKeyExchangeParams     = "key_exchange_params"
	EventServerPublicKey       = "server_public_key"
	EventSetEncryptionSettings = "set_encryption_settings"
	EventSettingsConfirmed     = "settings_confirmed"
	EventMessage               = "message"
	EventMessageResponse       = "message_response"
	EventError                 = "error"
)

// Error codes carried by ErrorEvent.
const (
	CodeUnknownAlgorithm  = "unknown_algorithm"
	CodeMissingKey        = "missing_key"
	CodeInvalidKey        = "invalid_key"
	CodeInvalidCiphertext = "invalid_ciphertext"
	CodeHandshakeNotReady = "handshake_not_ready"
	CodeCryptoBackend     = "crypto_backend"
	CodeBadRequest        = "bad_request"
)

// Defaults applied to handshake fields a client leaves out.
const (
	DefaultAsymmetricAlgorithm     = "rsa"
	DefaultSymmetricAlgorithm      = "aes"
	DefaultSymmetricImplementation = "lib"
)

// Connected is sent once after the websocket upgrade
type Connected struct {
	ID string `json:"id" cbor:"id"`
}

// KeyExchangeParamsRequest asks the server for a fresh keypair
type KeyExchangeParamsRequest struct {
	AsymmetricAlgorithm string `json:"asymmetric_algorithm" cbor:"asymmetric_algorithm"`
}

// ApplyDefaults selects RSA when no algorithm was sent.
func (r *KeyExchangeParamsRequest) ApplyDefaults() {
	if r.AsymmetricAlgorithm == "" {
		r.AsymmetricAlgorithm = DefaultAsymmetricAlgorithm
	}
}

// ServerPublicKey carries the base64 DER public key of the server keypair
type ServerPublicKey struct {
	PublicKey string `json:"public_key" cbor:"public_key"`
	Algorithm string `json:"algorithm" cbor:"algorithm"`
}

// EncryptionSettingsRequest is the client's half of the handshake
type EncryptionSettingsRequest struct {
	AsymmetricAlgorithm     string `json:"asymmetric_algorithm" cbor:"asymmetric_algorithm"`
	SymmetricAlgorithm      string `json:"symmetric_algorithm" cbor:"symmetric_algorithm"`
	SymmetricImplementation string `json:"symmetric_implementation" cbor:"symmetric_implementation"`
	EncryptedSymmetricKey   string `json:"encrypted_symmetric_key" cbor:"encrypted_symmetric_key"`
}

// ApplyDefaults selects AES with the library implementation when the client
// names none. An empty AsymmetricAlgorithm is left for the pending keypair to
// decide.
func (r *EncryptionSettingsRequest) ApplyDefaults() {
	if r.SymmetricAlgorithm == "" {
		r.SymmetricAlgorithm = DefaultSymmetricAlgorithm
	}
	if r.SymmetricImplementation == "" {
		r.SymmetricImplementation = DefaultSymmetricImplementation
	}
}

// SettingsConfirmed acknowledges negotiated settings
type SettingsConfirmed struct {
	Status             string `json:"status" cbor:"status"`
	SymmetricAlgorithm string `json:"symmetric_algorithm" cbor:"symmetric_algorithm"`
	Implementation     string `json:"symmetric_implementation" cbor:"symmetric_implementation"`
}

// ChatMessage is an encrypted client message
type ChatMessage struct {
	Message string `json:"message" cbor:"message"`
}

// MessageResponse is the encrypted reply to a ChatMessage
type MessageResponse struct {
	EncryptedPayload string `json:"encrypted_payload" cbor:"encrypted_payload"`
}

// ErrorEvent reports a failed operation; the connection stays open
type ErrorEvent struct {
	Code    string `json:"code" cbor:"code"`
	Message string `json:"message" cbor:"message"`
}

// RelayFrame is both the request and the reply of the classical relay
type RelayFrame struct {
	Message string `json:"message"`
	Method  string `json:"method"`
	Key     string `json:"key,omitempty"`
}

// RelayError is the classical relay's error reply
type RelayError struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// CipherRequest represents a stateless encrypt or decrypt request
type CipherRequest struct {
	Message        string `json:"message"`
	Algorithm      string `json:"algorithm" binding:"required"`
	Implementation string `json:"implementation"`
	Key            string `json:"key"`
}

// CipherResponse represents the result of a CipherRequest
type CipherResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Result    string `json:"result,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
}

// AlgorithmsResponse lists what the server supports
type AlgorithmsResponse struct {
	Success     bool                `json:"success"`
	Symmetric   map[string][]string `json:"symmetric"`
	KeyExchange []string            `json:"key_exchange"`
}
