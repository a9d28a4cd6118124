// Package cache holds the transient realtime state the engine shares
// with its web counterpart: leaderboards, player status snapshots and
// the online user counter. Everything lives in memory.
package cache

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

// Cache bundles the three sub-caches behind one handle.
type Cache struct {
	Leaderboards *Leaderboards
	Status       *StatusCache
	Usercount    *Usercount
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		Leaderboards: NewLeaderboards(),
		Status:       NewStatusCache(),
		Usercount:    &Usercount{},
	}
}

type leaderboardEntry struct {
	userID int32
	pp     float64
	score  int64
}

// Leaderboards ranks players by performance and by ranked score, per
// game mode.
type Leaderboards struct {
	mu      sync.RWMutex
	entries map[constants.GameMode]map[int32]leaderboardEntry
}

// NewLeaderboards creates empty leaderboards.
func NewLeaderboards() *Leaderboards {
	l := &Leaderboards{entries: make(map[constants.GameMode]map[int32]leaderboardEntry)}
	for mode := constants.ModeOsu; mode <= constants.ModeMania; mode++ {
		l.entries[mode] = make(map[int32]leaderboardEntry)
	}
	return l
}

// Update stores a player's ranking values for one mode.
func (l *Leaderboards) Update(userID int32, mode constants.GameMode, pp float64, rankedScore int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[mode][userID] = leaderboardEntry{userID: userID, pp: pp, score: rankedScore}
}

// Remove drops a player from every mode, used on restriction.
func (l *Leaderboards) Remove(userID int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, byUser := range l.entries {
		delete(byUser, userID)
	}
}

// GlobalRank returns the 1-based pp rank, or 0 when unranked.
func (l *Leaderboards) GlobalRank(userID int32, mode constants.GameMode) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	self, ok := l.entries[mode][userID]
	if !ok || self.pp <= 0 {
		return 0
	}

	rank := 1
	for _, e := range l.entries[mode] {
		if e.pp > self.pp {
			rank++
		}
	}
	return rank
}

// ScoreRank returns the 1-based ranked-score rank, or 0 when unranked.
func (l *Leaderboards) ScoreRank(userID int32, mode constants.GameMode) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	self, ok := l.entries[mode][userID]
	if !ok || self.score <= 0 {
		return 0
	}

	rank := 1
	for _, e := range l.entries[mode] {
		if e.score > self.score {
			rank++
		}
	}
	return rank
}

// Top returns up to n user ids ordered by pp for one mode.
func (l *Leaderboards) Top(mode constants.GameMode, n int) []int32 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := make([]leaderboardEntry, 0, len(l.entries[mode]))
	for _, e := range l.entries[mode] {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].pp > all[j].pp })

	if n > len(all) {
		n = len(all)
	}
	out := make([]int32, 0, n)
	for _, e := range all[:n] {
		out = append(out, e.userID)
	}
	return out
}

// StatusCache mirrors every online player's current status block.
type StatusCache struct {
	mu       sync.RWMutex
	statuses map[int32]protocol.StatusUpdate
}

// NewStatusCache creates an empty status cache.
func NewStatusCache() *StatusCache {
	return &StatusCache{statuses: make(map[int32]protocol.StatusUpdate)}
}

// Update stores the latest status of a player.
func (s *StatusCache) Update(userID int32, status protocol.StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[userID] = status
}

// Get returns the cached status of a player.
func (s *StatusCache) Get(userID int32) (protocol.StatusUpdate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[userID]
	return status, ok
}

// Delete drops a player's status on logout.
func (s *StatusCache) Delete(userID int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, userID)
}

// Usercount tracks the number of online players.
type Usercount struct {
	count atomic.Int64
}

// Increment bumps the counter and returns the new value.
func (u *Usercount) Increment() int64 {
	return u.count.Add(1)
}

// Decrement lowers the counter, clamped at zero.
func (u *Usercount) Decrement() int64 {
	n := u.count.Add(-1)
	if n < 0 {
		u.count.Store(0)
		return 0
	}
	return n
}

// Current returns the current counter value.
func (u *Usercount) Current() int64 {
	return u.count.Load()
}
