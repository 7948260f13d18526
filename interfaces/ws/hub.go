package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub owns the set of live connections. Constructed once at process
// start and handed to the relay; never ambient state.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		logger:   logger,
	}
}

func (h *Hub) add(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.client.ID()] = s
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// broadcast fans data out to every live connection bound to shareCode,
// excluding the sender. Best-effort, at-most-once: a failed send is
// logged and skipped, never retried, and delivery order across receivers
// is unspecified.
func (h *Hub) broadcast(senderID, shareCode string, data []byte) {
	h.mu.RLock()
	var targets []client
	for id, s := range h.sessions {
		if id == senderID {
			continue
		}
		if code, ok := s.bound(); ok && code == shareCode {
			targets = append(targets, s.client)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(data); err != nil {
			h.logger.Warn("broadcast send failed",
				zap.String("conn", c.ID()),
				zap.String("shareCode", shareCode),
				zap.Error(err),
			)
		}
	}
}
