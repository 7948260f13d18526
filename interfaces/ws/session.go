package ws

import (
	"sync"

	"sheethub/application/collab"
)

// client is the transport half of a connection. The production
// implementation wraps a websocket; tests substitute an in-memory fake.
type client interface {
	ID() string
	Send(data []byte) error
}

// State of one connection's lifecycle.
type State int

const (
	// StateConnected: socket open, no share code bound.
	StateConnected State = iota
	// StateJoined: bound to a share code. The transition is one-way; the
	// binding is immutable for the rest of the connection's lifetime.
	StateJoined
	// StateClosed is terminal.
	StateClosed
)

// session is the relay-side state of one connection. Its own read loop is
// the only writer; other connections read the binding during broadcast,
// so access goes through the session lock.
type session struct {
	client client

	mu        sync.Mutex
	state     State
	shareCode string
	presences []collab.Presence
}

func newSession(c client) *session {
	return &session{client: c, state: StateConnected}
}

// bind transitions Connected → Joined. Once joined the binding never
// changes; a repeated join is just a resync request.
func (s *session) bind(shareCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConnected {
		s.shareCode = shareCode
		s.state = StateJoined
	}
}

// bound returns the share code the connection is joined to, if any.
func (s *session) bound() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shareCode, s.state == StateJoined
}

// boundOrDefault resolves the share code for op and presence traffic,
// falling back to the legacy default session before a join.
func (s *session) boundOrDefault() string {
	if code, ok := s.bound(); ok {
		return code
	}
	return DefaultShareCode
}

// setPresences remembers the records this connection last contributed,
// for cleanup when the socket closes.
func (s *session) setPresences(p []collab.Presence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presences = p
}

// contributed returns the presence records owed a removal on disconnect.
func (s *session) contributed() []collab.Presence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presences
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}
