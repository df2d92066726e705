package session_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptochat-backend/crypto"
	"cryptochat-backend/keyexchange"
	"cryptochat-backend/registry"
	"cryptochat-backend/session"
)

const testRSABits = 1024

func newEngine(opts ...session.Option) *session.Engine {
	opts = append([]session.Option{session.WithRSAKeyBits(testRSABits)}, opts...)
	return session.NewEngine(registry.NewSymmetric(), registry.NewKeyExchange(), opts...)
}

// handshake drives a session to Established with the given algorithms and
// returns the session and the symmetric key the client chose.
func handshake(t *testing.T, e *session.Engine, s session.Session, kxAlg, symAlg, impl string, key []byte) session.Session {
	t.Helper()

	s, pub, err := e.KeyExchangeParams(s, kxAlg)
	require.NoError(t, err)

	kx, err := registry.NewKeyExchange().Get(kxAlg)
	require.NoError(t, err)
	wrapped, err := kx.EncryptKey(key, pub)
	require.NoError(t, err)

	s, err = e.SetEncryptionSettings(s, session.SettingsRequest{
		KeyExchangeAlgorithm: kxAlg,
		SymmetricAlgorithm:   symAlg,
		Implementation:       impl,
		WrappedKey:           wrapped,
	})
	require.NoError(t, err)
	require.Equal(t, session.Established, s.State)
	return s
}

func TestConnect(t *testing.T) {
	s := newEngine().Connect("conn-1")
	assert.Equal(t, "conn-1", s.ID)
	assert.Equal(t, session.Unestablished, s.State)
	assert.Nil(t, s.Pending)
	assert.Nil(t, s.Settings)
}

func TestKeyExchangeParams(t *testing.T) {
	e := newEngine()

	s, pub, err := e.KeyExchangeParams(e.Connect("c"), "RSA")
	require.NoError(t, err)
	assert.NotEmpty(t, pub)
	assert.Equal(t, session.AwaitingClientKey, s.State)
	require.NotNil(t, s.Pending)
	assert.Equal(t, "rsa", s.Pending.Algorithm)
	assert.Equal(t, pub, s.Pending.PublicKey)

	s, pub, err = e.KeyExchangeParams(s, "ecc")
	require.NoError(t, err)
	assert.NotEmpty(t, pub)
	assert.Equal(t, "ecc", s.Pending.Algorithm)

	before := s
	s, _, err = e.KeyExchangeParams(s, "elgamal")
	assert.ErrorIs(t, err, crypto.ErrUnknownAlgorithm)
	assert.Equal(t, before, s)
}

func TestMessageBeforeHandshake(t *testing.T) {
	e := newEngine()
	s := e.Connect("c")

	_, err := e.Message(s, "anything")
	assert.ErrorIs(t, err, session.ErrHandshakeNotReady)

	s, _, err = e.KeyExchangeParams(s, "rsa")
	require.NoError(t, err)
	_, err = e.Message(s, "anything")
	assert.ErrorIs(t, err, session.ErrHandshakeNotReady)

	// A rejected message does not prevent the handshake from completing.
	key := []byte("0123456789abcdef")
	s = handshake(t, e, s, "rsa", "aes", "", key)
	ct, err := crypto.NewAES().Encrypt("hello", key)
	require.NoError(t, err)
	reply, err := e.Message(s, ct)
	require.NoError(t, err)
	pt, err := crypto.NewAES().Decrypt(reply, key)
	require.NoError(t, err)
	assert.Equal(t, "+hello", pt)
}

func TestSettingsWithoutKeyExchange(t *testing.T) {
	e := newEngine()
	s := e.Connect("c")

	got, err := e.SetEncryptionSettings(s, session.SettingsRequest{
		SymmetricAlgorithm: "aes",
		WrappedKey:         "AAAA",
	})
	assert.ErrorIs(t, err, session.ErrHandshakeNotReady)
	assert.Equal(t, s, got)
}

func TestSettingsAlgorithmMismatch(t *testing.T) {
	e := newEngine()
	s, _, err := e.KeyExchangeParams(e.Connect("c"), "ecc")
	require.NoError(t, err)

	got, err := e.SetEncryptionSettings(s, session.SettingsRequest{
		KeyExchangeAlgorithm: "rsa",
		SymmetricAlgorithm:   "aes",
		WrappedKey:           "AAAA",
	})
	assert.ErrorIs(t, err, session.ErrHandshakeNotReady)
	assert.Equal(t, s, got)
}

func TestSettingsUnknownCipher(t *testing.T) {
	e := newEngine()
	s, pub, err := e.KeyExchangeParams(e.Connect("c"), "rsa")
	require.NoError(t, err)
	wrapped, err := keyexchange.NewRSA().EncryptKey([]byte("k"), pub)
	require.NoError(t, err)

	got, err := e.SetEncryptionSettings(s, session.SettingsRequest{
		SymmetricAlgorithm: "enigma",
		WrappedKey:         wrapped,
	})
	assert.ErrorIs(t, err, crypto.ErrUnknownAlgorithm)
	assert.Equal(t, session.AwaitingClientKey, got.State)
	assert.Nil(t, got.Settings)
}

func TestRoundTrips(t *testing.T) {
	tests := []struct {
		name   string
		kx     string
		sym    string
		impl   string
		key    []byte
		cipher crypto.Cipher
	}{
		{"aes over rsa", "rsa", "aes", "lib", []byte("0123456789abcdef0123456789abcdef"), crypto.NewAES()},
		{"aes over ecc", "ecc", "AES", "", []byte("0123456789abcdef"), crypto.NewAES()},
		{"des over ecc", "ecc", "des", "", []byte("8bytekey"), crypto.NewDES()},
		{"manual aes", "rsa", "aes", "manual", []byte("manual-key"), crypto.NewManualAES()},
		{"xor", "ecc", "xor", "", []byte("KEY"), crypto.NewXOR()},
		{"vigenere", "rsa", "vigenere", "", []byte("SECRET"), crypto.NewVigenere()},
		{"caesar", "ecc", "caesar", "", []byte("3"), crypto.NewCaesar()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			s := handshake(t, e, e.Connect("c"), tt.kx, tt.sym, tt.impl, tt.key)
			assert.Equal(t, tt.key, s.Settings.SymmetricKey)

			ct, err := tt.cipher.Encrypt("merhaba", tt.key)
			require.NoError(t, err)
			reply, err := e.Message(s, ct)
			require.NoError(t, err)

			pt, err := tt.cipher.Decrypt(reply, tt.key)
			require.NoError(t, err)
			assert.Equal(t, "+merhaba", pt)
		})
	}
}

func TestCustomTransform(t *testing.T) {
	e := newEngine(session.WithTransform(strings.ToUpper))
	key := []byte("KEY")
	s := handshake(t, e, e.Connect("c"), "ecc", "xor", "", key)

	ct, err := crypto.NewXOR().Encrypt("quiet", key)
	require.NoError(t, err)
	reply, err := e.Message(s, ct)
	require.NoError(t, err)
	pt, err := crypto.NewXOR().Decrypt(reply, key)
	require.NoError(t, err)
	assert.Equal(t, "QUIET", pt)
}

func TestMessageWrongCiphertext(t *testing.T) {
	e := newEngine()
	s := handshake(t, e, e.Connect("c"), "rsa", "aes", "", []byte("0123456789abcdef"))

	_, err := e.Message(s, "not base64!")
	assert.ErrorIs(t, err, session.ErrDecryptMessage)
	assert.ErrorIs(t, err, crypto.ErrInvalidCiphertext)
}

func TestRekeying(t *testing.T) {
	e := newEngine()
	oldKey := []byte("0123456789abcdef")
	s := handshake(t, e, e.Connect("c"), "rsa", "aes", "", oldKey)

	// Wrap for the first keypair, then start a new handshake.
	firstPub := s.Pending.PublicKey
	staleWrapped, err := keyexchange.NewRSA().EncryptKey([]byte("fedcba9876543210"), firstPub)
	require.NoError(t, err)

	s, newPub, err := e.KeyExchangeParams(s, "rsa")
	require.NoError(t, err)
	assert.NotEqual(t, firstPub, newPub)
	assert.Equal(t, session.Established, s.State, "old settings stay active until re-keyed")

	got, err := e.SetEncryptionSettings(s, session.SettingsRequest{
		SymmetricAlgorithm: "aes",
		WrappedKey:         staleWrapped,
	})
	assert.ErrorIs(t, err, crypto.ErrCryptoBackend)
	require.NotNil(t, got.Settings)
	assert.Equal(t, oldKey, got.Settings.SymmetricKey, "failed settings keep the previous key")

	ct, err := crypto.NewAES().Encrypt("still here", oldKey)
	require.NoError(t, err)
	reply, err := e.Message(got, ct)
	require.NoError(t, err)
	pt, err := crypto.NewAES().Decrypt(reply, oldKey)
	require.NoError(t, err)
	assert.Equal(t, "+still here", pt)

	newKey := []byte("a-brand-new-key!")
	s = handshake(t, e, got, "rsa", "xor", "", newKey)
	assert.Equal(t, "xor", s.Settings.SymmetricAlgorithm)
	assert.Equal(t, newKey, s.Settings.SymmetricKey)
}

func TestDisconnect(t *testing.T) {
	e := newEngine()
	key := []byte("0123456789abcdef")
	s := handshake(t, e, e.Connect("c"), "ecc", "aes", "", append([]byte(nil), key...))
	settings := s.Settings

	closed := e.Disconnect(s)
	assert.Equal(t, session.Closed, closed.State)
	assert.Equal(t, "c", closed.ID)
	assert.Nil(t, closed.Pending)
	assert.Nil(t, closed.Settings)
	assert.Equal(t, make([]byte, len(key)), settings.SymmetricKey, "key material wiped")

	_, err := e.Message(closed, "x")
	assert.ErrorIs(t, err, session.ErrSessionClosed)
	_, _, err = e.KeyExchangeParams(closed, "rsa")
	assert.ErrorIs(t, err, session.ErrSessionClosed)
	_, err = e.SetEncryptionSettings(closed, session.SettingsRequest{})
	assert.ErrorIs(t, err, session.ErrSessionClosed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_client_key", session.AwaitingClientKey.String())
	assert.Equal(t, "State(9)", session.State(9).String())
}

func TestStaleKeypairBeforeSettingsRSA(t *testing.T) {
	e := newEngine()

	s, firstPub, err := e.KeyExchangeParams(e.Connect("c"), "rsa")
	require.NoError(t, err)
	staleWrapped, err := keyexchange.NewRSA().EncryptKey([]byte("0123456789abcdef"), firstPub)
	require.NoError(t, err)

	s, secondPub, err := e.KeyExchangeParams(s, "rsa")
	require.NoError(t, err)
	assert.NotEqual(t, firstPub, secondPub)
	assert.Equal(t, session.AwaitingClientKey, s.State)

	got, err := e.SetEncryptionSettings(s, session.SettingsRequest{
		SymmetricAlgorithm: "aes",
		WrappedKey:         staleWrapped,
	})
	assert.ErrorIs(t, err, crypto.ErrCryptoBackend)
	assert.Equal(t, session.AwaitingClientKey, got.State)
	assert.Nil(t, got.Settings)

	_, err = e.Message(got, "anything")
	assert.ErrorIs(t, err, session.ErrHandshakeNotReady)
}

// ECC unwrapping cannot detect a key wrapped for an earlier keypair: it
// completes, but with a key the client never chose.
func TestStaleKeypairBeforeSettingsECC(t *testing.T) {
	e := newEngine()
	key := []byte("0123456789abcdef")

	s, firstPub, err := e.KeyExchangeParams(e.Connect("c"), "ecc")
	require.NoError(t, err)
	staleWrapped, err := keyexchange.NewECC().EncryptKey(key, firstPub)
	require.NoError(t, err)

	s, _, err = e.KeyExchangeParams(s, "ecc")
	require.NoError(t, err)

	s, err = e.SetEncryptionSettings(s, session.SettingsRequest{
		SymmetricAlgorithm: "aes",
		WrappedKey:         staleWrapped,
	})
	require.NoError(t, err)
	assert.Equal(t, session.Established, s.State)
	assert.Len(t, s.Settings.SymmetricKey, len(key))
	assert.NotEqual(t, key, s.Settings.SymmetricKey)
}
