package bancho

import (
	"sync"

	"github.com/prismosu/banchod/internal/constants"
)

// Matches is the multiplayer lobby registry.
type Matches struct {
	mu   sync.RWMutex
	byID map[int32]*Match
}

// NewMatches creates an empty registry.
func NewMatches() *Matches {
	return &Matches{byID: make(map[int32]*Match)}
}

// Allocate assigns the lowest free id in [1, MaxMatches] to the match
// and registers it. Returns false when the lobby is full.
func (r *Matches) Allocate(m *Match) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := int32(1); id <= constants.MaxMatches; id++ {
		if _, taken := r.byID[id]; !taken {
			m.id = id
			r.byID[id] = m
			return true
		}
	}
	return false
}

// Remove drops a match from the registry.
func (r *Matches) Remove(id int32) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

// ByID looks a match up.
func (r *Matches) ByID(id int32) *Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// Snapshot returns every registered match.
func (r *Matches) Snapshot() []*Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Match, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out
}

// Count returns the number of open lobbies.
func (r *Matches) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
