package bancho

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/db"
)

var testClients = clients.NewRegistry()

func testSession(t *testing.T, id int32, name string, tourney bool) *Session {
	t.Helper()

	c1, c2 := net.Pipe()
	t.Cleanup(func() {
		c1.Close()
		c2.Close()
	})

	s := newSession(c1, nil)
	s.user = &db.User{ID: id, Name: name}
	s.stats = &db.ModeStats{}
	s.isTourney = tourney
	s.cohort = testClients.Resolve(20130815)
	s.loggedIn.Store(true)
	return s
}

func TestPlayers_Lookup(t *testing.T) {
	p := NewPlayers()
	s := testSession(t, 5, "Some Player", false)
	p.Add(s)

	assert.Equal(t, s, p.ByID(5))
	assert.Equal(t, s, p.ByToken(s.Token()))
	assert.Equal(t, s, p.ByName("Some Player"))
	assert.Equal(t, s, p.ByName("some_player"))
	assert.Equal(t, s, p.ByName("SOME PLAYER"))
	assert.Nil(t, p.ByID(6))
}

func TestPlayers_Remove(t *testing.T) {
	p := NewPlayers()
	s := testSession(t, 5, "gone", false)
	p.Add(s)
	p.Remove(s)

	assert.Nil(t, p.ByID(5))
	assert.Nil(t, p.ByName("gone"))
	assert.Nil(t, p.ByToken(s.Token()))
	assert.Zero(t, p.Count())
}

func TestPlayers_RemoveKeepsReplacement(t *testing.T) {
	p := NewPlayers()
	old := testSession(t, 5, "dup", false)
	p.Add(old)

	// A relogin takes over the id and name indexes.
	fresh := testSession(t, 5, "dup", false)
	p.Add(fresh)

	p.Remove(old)
	assert.Equal(t, fresh, p.ByID(5))
	assert.Equal(t, fresh, p.ByName("dup"))
}

func TestPlayers_TourneyStreams(t *testing.T) {
	p := NewPlayers()
	primary := testSession(t, 9, "tourney host", false)
	stream1 := testSession(t, 9, "tourney host", true)
	stream2 := testSession(t, 9, "tourney host", true)

	p.Add(primary)
	p.Add(stream1)
	p.Add(stream2)

	require.Equal(t, primary, p.ByID(9))
	assert.Equal(t, 2, p.TourneyCount(9))
	assert.Len(t, p.Snapshot(), 3)
	assert.Len(t, p.Primaries(), 1)

	p.Remove(stream1)
	assert.Equal(t, 1, p.TourneyCount(9))
	assert.True(t, p.HasPrimary(9))

	p.Remove(primary)
	assert.False(t, p.HasPrimary(9))
	assert.Equal(t, 1, p.TourneyCount(9))
}
