package applock

import (
	"sync"

	"github.com/dmitrijs2005/mindvault/internal/common"
)

// Session holds the journal key for as long as the app is unlocked.
// Lock wipes the key; afterwards Key returns ErrSessionLocked.
type Session struct {
	mu  sync.RWMutex
	key []byte
}

func newSession(key []byte) *Session {
	return &Session{key: key}
}

// Key returns the session key. The slice is shared with the session and is
// zeroed by Lock, so callers must not keep it beyond the current operation.
func (s *Session) Key() ([]byte, error) {
	if s == nil {
		return nil, ErrSessionLocked
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, ErrSessionLocked
	}
	return s.key, nil
}

// Lock zeroes and drops the key. Safe to call more than once.
func (s *Session) Lock() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = nil
}

// Locked reports whether the key has been discarded.
func (s *Session) Locked() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key == nil
}
