package session

import (
	"fmt"

	"cryptochat-backend/registry"
)

// Connect returns a fresh session for connection id.
func (e *Engine) Connect(id string) Session {
	e.log.Debugf("%s: connected", id)
	return Session{ID: id, State: Unestablished}
}

// KeyExchangeParams generates a server keypair for algorithm and returns the
// public half. Any earlier pending keypair is dropped, so a client still
// holding the old public key can no longer finish its handshake. Negotiated
// settings, if any, stay in effect until the new handshake completes.
func (e *Engine) KeyExchangeParams(s Session, algorithm string) (Session, []byte, error) {
	if s.State == Closed {
		return s, nil, ErrSessionClosed
	}
	kx, err := e.keyExchange.Get(algorithm)
	if err != nil {
		return s, nil, err
	}

	bits := 0
	if kx.Name() == "rsa" {
		bits = e.rsaBits
	}
	pub, priv, err := kx.GenerateKeyPair(bits)
	if err != nil {
		return s, nil, err
	}

	s.Pending = &PendingKeyPair{
		Algorithm:  kx.Name(),
		PublicKey:  pub,
		PrivateKey: priv,
	}
	// An Established session keeps its settings until new ones succeed.
	if s.State == Unestablished {
		s.State = AwaitingClientKey
	}
	e.log.Infof("%s: generated %s keypair", s.ID, kx.Name())
	return s, pub, nil
}

// SetEncryptionSettings unwraps the client's symmetric key with the pending
// private key and stores the negotiated settings. On any failure the session
// is returned unchanged.
func (e *Engine) SetEncryptionSettings(s Session, req SettingsRequest) (Session, error) {
	switch {
	case s.State == Closed:
		return s, ErrSessionClosed
	case s.Pending == nil:
		return s, fmt.Errorf("%w: no server keypair, request key exchange parameters first", ErrHandshakeNotReady)
	}

	pending := s.Pending
	if req.KeyExchangeAlgorithm != "" {
		kx, err := e.keyExchange.Get(req.KeyExchangeAlgorithm)
		if err != nil {
			return s, err
		}
		if kx.Name() != pending.Algorithm {
			return s, fmt.Errorf("%w: pending keypair is %s, not %s", ErrHandshakeNotReady, pending.Algorithm, kx.Name())
		}
	}
	cipher, err := e.symmetric.Get(req.SymmetricAlgorithm, req.Implementation)
	if err != nil {
		return s, err
	}

	kx, err := e.keyExchange.Get(pending.Algorithm)
	if err != nil {
		return s, err
	}
	key, err := kx.DecryptKey(req.WrappedKey, pending.PrivateKey)
	if err != nil {
		e.log.Warningf("%s: failed to unwrap symmetric key: %v", s.ID, err)
		return s, err
	}

	impl := req.Implementation
	if impl == "" {
		impl = registry.ImplementationLibrary
	}
	s.Settings = &Settings{
		SymmetricAlgorithm: cipher.Name(),
		Implementation:     impl,
		SymmetricKey:       key,
	}
	s.State = Established
	e.log.Infof("%s: established %s/%s over %s", s.ID, cipher.Name(), impl, pending.Algorithm)
	return s, nil
}

// Message decrypts ciphertext with the session settings, applies the
// transform and encrypts the result with the same cipher and key.
func (e *Engine) Message(s Session, ciphertext string) (string, error) {
	switch {
	case s.State == Closed:
		return "", ErrSessionClosed
	case s.State != Established || s.Settings == nil:
		return "", fmt.Errorf("%w: encryption settings not negotiated", ErrHandshakeNotReady)
	}

	cipher, err := e.symmetric.Get(s.Settings.SymmetricAlgorithm, s.Settings.Implementation)
	if err != nil {
		return "", err
	}
	plaintext, err := cipher.Decrypt(ciphertext, s.Settings.SymmetricKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptMessage, err)
	}
	e.log.Debugf("%s: relaying %d byte message", s.ID, len(plaintext))

	reply, err := cipher.Encrypt(e.transform(plaintext), s.Settings.SymmetricKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncryptMessage, err)
	}
	return reply, nil
}

// Disconnect wipes the session's key material and marks it closed.
func (e *Engine) Disconnect(s Session) Session {
	if s.Pending != nil {
		clear(s.Pending.PrivateKey)
	}
	if s.Settings != nil {
		clear(s.Settings.SymmetricKey)
	}
	e.log.Debugf("%s: disconnected", s.ID)
	return Session{ID: s.ID, State: Closed}
}
