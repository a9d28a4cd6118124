package bancho

import (
	"fmt"
	"sync"

	"github.com/prismosu/banchod/internal/clients"
)

// Channels is the channel registry.
type Channels struct {
	mu     sync.RWMutex
	byName map[string]*Channel
}

// NewChannels creates an empty registry.
func NewChannels() *Channels {
	return &Channels{byName: make(map[string]*Channel)}
}

// Add registers a channel.
func (r *Channels) Add(c *Channel) {
	r.mu.Lock()
	r.byName[c.Name()] = c
	r.mu.Unlock()
}

// Remove drops a channel, revoking it on every remaining member.
func (r *Channels) Remove(name string) {
	r.mu.Lock()
	c, ok := r.byName[name]
	if ok {
		delete(r.byName, name)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	for _, m := range c.Members() {
		c.Remove(m)
		m.Send(clients.RespChannelRevoked, name)
	}
}

// ByName looks a channel up.
func (r *Channels) ByName(name string) *Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Public returns every publicly advertised channel.
func (r *Channels) Public() []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Channel
	for _, c := range r.byName {
		if c.Public() {
			out = append(out, c)
		}
	}
	return out
}

// specChannelName is the private channel of one spectated host.
func specChannelName(hostID int32) string {
	return fmt.Sprintf("#spec_%d", hostID)
}

// multiChannelName is the private channel of one multiplayer match.
func multiChannelName(matchID int32) string {
	return fmt.Sprintf("#multi_%d", matchID)
}
