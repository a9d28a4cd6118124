package bancho

import (
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/prismosu/banchod/internal/clients"
)

// Players indexes every authenticated session by token, user id and
// name. A user holding tournament spectator streams may own several
// tokens at once; the primary (non-tourney) session wins the id and
// name indexes.
type Players struct {
	mu      sync.RWMutex
	byToken map[uuid.UUID]*Session
	byID    map[int32]*Session
	byName  map[string]*Session
	tourney map[int32][]*Session
}

// NewPlayers creates an empty registry.
func NewPlayers() *Players {
	return &Players{
		byToken: make(map[uuid.UUID]*Session),
		byID:    make(map[int32]*Session),
		byName:  make(map[string]*Session),
		tourney: make(map[int32][]*Session),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// Add registers an authenticated session.
func (p *Players) Add(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.byToken[s.Token()] = s
	if s.IsTourney() {
		p.tourney[s.ID()] = append(p.tourney[s.ID()], s)
		return
	}
	p.byID[s.ID()] = s
	p.byName[nameKey(s.Name())] = s
}

// Remove unregisters a session. It only clears the id and name indexes
// when they still point at this exact session.
func (p *Players) Remove(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.byToken, s.Token())

	if s.IsTourney() {
		streams := p.tourney[s.ID()]
		for i, t := range streams {
			if t == s {
				p.tourney[s.ID()] = append(streams[:i], streams[i+1:]...)
				break
			}
		}
		if len(p.tourney[s.ID()]) == 0 {
			delete(p.tourney, s.ID())
		}
		return
	}

	if cur, ok := p.byID[s.ID()]; ok && cur == s {
		delete(p.byID, s.ID())
	}
	if cur, ok := p.byName[nameKey(s.Name())]; ok && cur == s {
		delete(p.byName, nameKey(s.Name()))
	}
}

// ByToken looks a session up by its token.
func (p *Players) ByToken(token uuid.UUID) *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byToken[token]
}

// ByID looks the primary session of a user up.
func (p *Players) ByID(id int32) *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byID[id]
}

// ByName looks a session up by display name, case and space
// insensitive.
func (p *Players) ByName(name string) *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byName[nameKey(name)]
}

// TourneyStreams returns the tournament spectator sessions of a user.
func (p *Players) TourneyStreams(id int32) []*Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Session(nil), p.tourney[id]...)
}

// TourneyCount returns how many tournament streams a user holds.
func (p *Players) TourneyCount(id int32) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tourney[id])
}

// HasPrimary reports whether the user still has a regular session
// online.
func (p *Players) HasPrimary(id int32) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byID[id]
	return ok
}

// Snapshot returns every registered session, tourney streams included.
func (p *Players) Snapshot() []*Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Session, 0, len(p.byToken))
	for _, s := range p.byToken {
		out = append(out, s)
	}
	return out
}

// Primaries returns every primary (non-tourney) session.
func (p *Players) Primaries() []*Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Session, 0, len(p.byID))
	for _, s := range p.byID {
		out = append(out, s)
	}
	return out
}

// IDs returns the user ids of every primary session.
func (p *Players) IDs() []int32 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]int32, 0, len(p.byID))
	for id := range p.byID {
		out = append(out, id)
	}
	return out
}

// Count returns the number of registered sessions.
func (p *Players) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byToken)
}

// Broadcast sends one packet to every registered session.
func (p *Players) Broadcast(t clients.PacketType, v any) {
	for _, s := range p.Snapshot() {
		s.Send(t, v)
	}
}

// BroadcastExcept sends one packet to everyone but the given session.
func (p *Players) BroadcastExcept(except *Session, t clients.PacketType, v any) {
	for _, s := range p.Snapshot() {
		if s == except {
			continue
		}
		s.Send(t, v)
	}
}

// InLobby returns every primary session currently on the lobby screen.
func (p *Players) InLobby() []*Session {
	var out []*Session
	for _, s := range p.Primaries() {
		if s.InLobby() {
			out = append(out, s)
		}
	}
	return out
}
