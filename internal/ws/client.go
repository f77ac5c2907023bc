package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Session is one authenticated connection. A user with two tabs has two sessions.
type Session struct {
	ID     string
	UserID string
	Name   string
	Role   string
	Send   chan []byte

	hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewSession(userID, name, role string, buffer int) *Session {
	if buffer <= 0 {
		buffer = 1
	}
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
		Role:   role,
		Send:   make(chan []byte, buffer),
	}
}

// enqueue never blocks; a full buffer drops the frame.
func (s *Session) enqueue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.Send <- frame:
		return true
	default:
		return false
	}
}

// Close unregisters the session from every room and closes Send. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.Send)
	hub := s.hub
	s.mu.Unlock()
	if hub != nil {
		hub.Unregister(s)
	}
}
