package collab

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// Presence is one user's ephemeral cursor state within a session. It
// lives only in the registry and dies with the owning connection.
type Presence struct {
	UserID    string     `json:"userId,omitempty"`
	Username  string     `json:"username"`
	SheetID   string     `json:"sheetId,omitempty"`
	Selection *Selection `json:"selection,omitempty"`
	Color     string     `json:"color,omitempty"`
}

// Selection is the active cell of a presence record.
type Selection struct {
	R int `json:"r"`
	C int `json:"c"`
}

// Key identifies a presence record: userId when present, else username.
func (p Presence) Key() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.Username
}

// Registry tracks the presence list of every active session, keyed by
// share code. It is the one structure mutated by all connections
// concurrently, so every method takes the registry lock. Presence is
// never persisted: a restart legitimately forgets who was here. Lists are
// created lazily and simply tend to empty as connections leave.
type Registry struct {
	mu        sync.Mutex
	presences map[string][]Presence
	logger    *zap.Logger
}

// NewRegistry creates an empty presence registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		presences: make(map[string][]Presence),
		logger:    logger,
	}
}

// AddPresences merges incoming records into a session's list: records
// with a key already present replace the existing entry, new keys are
// appended. Merging the same record twice leaves a single entry.
func (r *Registry) AddPresences(shareCode string, incoming []Presence) {
	if len(incoming) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := presenceKeys(incoming)
	merged := make([]Presence, 0, len(r.presences[shareCode])+len(incoming))
	for _, p := range r.presences[shareCode] {
		if !keys.Contains(p.Key()) {
			merged = append(merged, p)
		}
	}
	merged = append(merged, incoming...)
	r.presences[shareCode] = merged

	r.logger.Debug("presences merged",
		zap.String("shareCode", shareCode),
		zap.Int("incoming", len(incoming)),
		zap.Int("total", len(merged)),
	)
}

// RemovePresences drops every record whose key appears in removed.
// Keys not present in the list are a no-op.
func (r *Registry) RemovePresences(shareCode string, removed []Presence) {
	if len(removed) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := presenceKeys(removed)
	kept := make([]Presence, 0, len(r.presences[shareCode]))
	for _, p := range r.presences[shareCode] {
		if !keys.Contains(p.Key()) {
			kept = append(kept, p)
		}
	}
	r.presences[shareCode] = kept
}

// Presences returns a copy of a session's current presence list.
func (r *Registry) Presences(shareCode string) []Presence {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]Presence, len(r.presences[shareCode]))
	copy(list, r.presences[shareCode])
	return list
}

func presenceKeys(list []Presence) mapset.Set[string] {
	keys := mapset.NewThreadUnsafeSet[string]()
	for _, p := range list {
		keys.Add(p.Key())
	}
	return keys
}
