package bancho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specServer(t *testing.T, hostID int32) (*Server, *Session, *Session) {
	t.Helper()
	srv := testServer()
	host := liveSession(t, srv, hostID, "host")
	watcher := liveSession(t, srv, hostID+1, "watcher")
	srv.channels.Add(newChannel(srv, specChannelName(hostID), "Spectator chat", srv.bot.Name(), false, 0, 0))
	return srv, host, watcher
}

func TestSpectator_JoinAndToggle(t *testing.T) {
	srv, host, watcher := specServer(t, 1)

	watcher.StartSpectating(host.ID())
	require.Equal(t, host, watcher.Spectating())
	require.True(t, host.hasSpectator(watcher))

	chat := srv.channels.ByName(specChannelName(host.ID()))
	require.NotNil(t, chat)
	assert.True(t, chat.Contains(watcher))
	assert.True(t, chat.Contains(host))

	// Asking for the same host again acts as a stop.
	watcher.StartSpectating(host.ID())
	assert.Nil(t, watcher.Spectating())
	assert.Empty(t, host.Spectators())
	assert.False(t, chat.Contains(watcher))
	assert.False(t, chat.Contains(host))
}

func TestSpectator_DetachOnHostClose(t *testing.T) {
	srv, host, watcher := specServer(t, 1)

	watcher.StartSpectating(host.ID())
	require.Equal(t, host, watcher.Spectating())

	host.Close()

	assert.Nil(t, watcher.Spectating())
	assert.Empty(t, host.Spectators())
	assert.Nil(t, srv.players.ByID(host.ID()))
	assert.Nil(t, srv.channels.ByName(specChannelName(host.ID())))
}
