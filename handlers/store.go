package handlers

import (
	"errors"
	"sync"

	"cryptochat-backend/session"
)

var errUnknownConnection = errors.New("unknown connection")

type storeEntry struct {
	sync.Mutex
	s session.Session
}

// SessionStore owns the sessions of all open connections. Operations on one
// session are serialized; distinct sessions proceed in parallel.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*storeEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*storeEntry)}
}

// Open registers s under its ID, replacing any previous session.
func (st *SessionStore) Open(s session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = &storeEntry{s: s}
}

// Do runs fn with exclusive access to the session id and stores the session
// it returns.
func (st *SessionStore) Do(id string, fn func(session.Session) (session.Session, error)) error {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return errUnknownConnection
	}

	e.Lock()
	defer e.Unlock()
	s, err := fn(e.s)
	e.s = s
	return err
}

// Close removes the session id and returns its last state.
func (st *SessionStore) Close(id string) (session.Session, bool) {
	st.mu.Lock()
	e, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return session.Session{}, false
	}

	e.Lock()
	defer e.Unlock()
	return e.s, true
}

// Len returns the number of open sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
