package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

func TestLeaderboards_Ranks(t *testing.T) {
	l := NewLeaderboards()
	l.Update(1, constants.ModeOsu, 5000, 1_000_000)
	l.Update(2, constants.ModeOsu, 7000, 500_000)
	l.Update(3, constants.ModeOsu, 6000, 2_000_000)

	assert.Equal(t, 1, l.GlobalRank(2, constants.ModeOsu))
	assert.Equal(t, 2, l.GlobalRank(3, constants.ModeOsu))
	assert.Equal(t, 3, l.GlobalRank(1, constants.ModeOsu))

	assert.Equal(t, 1, l.ScoreRank(3, constants.ModeOsu))
	assert.Equal(t, 3, l.ScoreRank(2, constants.ModeOsu))

	// Unknown player and empty mode are unranked.
	assert.Equal(t, 0, l.GlobalRank(99, constants.ModeOsu))
	assert.Equal(t, 0, l.GlobalRank(1, constants.ModeTaiko))
}

func TestLeaderboards_Remove(t *testing.T) {
	l := NewLeaderboards()
	l.Update(1, constants.ModeOsu, 100, 100)
	l.Update(1, constants.ModeMania, 200, 200)

	l.Remove(1)

	assert.Equal(t, 0, l.GlobalRank(1, constants.ModeOsu))
	assert.Equal(t, 0, l.GlobalRank(1, constants.ModeMania))
}

func TestLeaderboards_Top(t *testing.T) {
	l := NewLeaderboards()
	l.Update(1, constants.ModeOsu, 100, 0)
	l.Update(2, constants.ModeOsu, 300, 0)
	l.Update(3, constants.ModeOsu, 200, 0)

	assert.Equal(t, []int32{2, 3}, l.Top(constants.ModeOsu, 2))
	assert.Len(t, l.Top(constants.ModeOsu, 10), 3)
}

func TestStatusCache(t *testing.T) {
	s := NewStatusCache()

	status := protocol.StatusUpdate{Action: constants.StatusPlaying, Text: "song"}
	s.Update(5, status)

	got, ok := s.Get(5)
	assert.True(t, ok)
	assert.Equal(t, status, got)

	s.Delete(5)
	_, ok = s.Get(5)
	assert.False(t, ok)
}

func TestUsercount(t *testing.T) {
	var u Usercount

	assert.Equal(t, int64(1), u.Increment())
	assert.Equal(t, int64(2), u.Increment())
	assert.Equal(t, int64(1), u.Decrement())
	assert.Equal(t, int64(0), u.Decrement())

	// Never drops below zero.
	assert.Equal(t, int64(0), u.Decrement())
	assert.Equal(t, int64(0), u.Current())
}
