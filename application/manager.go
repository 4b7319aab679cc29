package application

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// SessionManager tracks live sessions by poll UID. Sessions exist only in
// process memory; a restart loses them while the durable records survive.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

func NewSessionManager(logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

func (m *SessionManager) Register(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.Record.UID]; exists {
		return fmt.Errorf("session already registered for poll %s", s.Record.UID)
	}
	m.sessions[s.Record.UID] = s

	return nil
}

func (m *SessionManager) Lookup(uid string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[uid]
	return s, ok
}

// Remove detaches the session without ending it; the caller owns teardown.
func (m *SessionManager) Remove(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[uid]
	if ok {
		delete(m.sessions, uid)
	}
	return s, ok
}

func (m *SessionManager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown stops every live session's worker. The durable records and the
// poll messages are left in place; only the in-memory ledgers are lost.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Shutdown()
		m.logger.Info("poll session stopped on shutdown", zap.String("uid", s.Record.UID))
	}
}
