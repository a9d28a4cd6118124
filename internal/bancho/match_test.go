package bancho

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismosu/banchod/internal/cache"
	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

// testServer builds an engine with live registries and no store; match
// archival is skipped for lobbies without a store row.
func testServer() *Server {
	srv := &Server{
		registry: testClients,
		players:  NewPlayers(),
		channels: NewChannels(),
		matches:  NewMatches(),
		bot:      newBot("BanchoBot"),
		cache:    cache.New(),
	}
	srv.commands = NewCommands(srv)
	return srv
}

// liveSession is a testSession attached to the server and registered.
func liveSession(t *testing.T, srv *Server, id int32, name string) *Session {
	t.Helper()
	s := testSession(t, id, name, false)
	s.server = srv
	srv.players.Add(s)
	return s
}

// testMatch seats host in a fresh registered lobby with its channel.
func testMatch(t *testing.T, srv *Server, host *Session) *Match {
	t.Helper()
	m := newMatch(srv, protocol.Match{
		Name:            "best of one",
		BeatmapID:       42,
		BeatmapText:     "artist - title",
		BeatmapChecksum: "0123456789abcdef",
	})
	m.hostID = host.ID()
	require.True(t, srv.matches.Allocate(m))
	m.chat = newChannel(srv, multiChannelName(m.id), "Multiplayer chat", srv.bot.Name(), false, 0, 0)
	srv.channels.Add(m.chat)
	require.True(t, m.Join(host, ""))
	return m
}

// queuedPackets drains everything currently sitting in the session's
// outbound queue.
func queuedPackets(s *Session) [][]byte {
	var out [][]byte
	for {
		select {
		case pkt := <-s.sendCh:
			out = append(out, pkt)
		default:
			return out
		}
	}
}

func encodedPacket(t *testing.T, s *Session, pt clients.PacketType, v any) []byte {
	t.Helper()
	data, ok, err := s.cohort.Encode(pt, v)
	require.True(t, ok)
	require.NoError(t, err)
	return data
}

func TestNewMatch_NameLimit(t *testing.T) {
	m := newMatch(nil, protocol.Match{Name: strings.Repeat("x", constants.MaxMatchNameLength+10)})
	defer m.stopPump()

	assert.Len(t, m.Name(), constants.MaxMatchNameLength)
}

func TestCreateMatch_RequiresLobby(t *testing.T) {
	srv := testServer()
	s := liveSession(t, srv, 7, "loner")

	handleCreateMatch(srv, s, protocol.Match{Name: "room"})

	assert.Nil(t, s.Match())
	assert.Zero(t, srv.matches.Count())
	assert.Contains(t, queuedPackets(s), encodedPacket(t, s, clients.RespMatchJoinFail, nil))
}

func TestMatch_HostLeavesDuringSongSelect(t *testing.T) {
	srv := testServer()
	host := liveSession(t, srv, 1, "host")
	peer := liveSession(t, srv, 2, "peer")

	m := testMatch(t, srv, host)
	require.True(t, m.Join(peer, ""))

	// Host enters song select, which clears the beatmap.
	m.ChangeSettings(host, protocol.Match{BeatmapID: -1})
	require.Equal(t, int32(-1), m.Wire().BeatmapID)

	m.Leave(host)

	w := m.Wire()
	assert.Equal(t, peer.ID(), m.HostID())
	assert.Equal(t, int32(42), w.BeatmapID)
	assert.Equal(t, "artist - title", w.BeatmapText)
	assert.Contains(t, queuedPackets(peer), encodedPacket(t, peer, clients.RespMatchTransferHost, nil))

	m.Leave(peer)
	assert.Nil(t, srv.matches.ByID(m.ID()))
	assert.Nil(t, srv.channels.ByName(multiChannelName(m.ID())))
}

func TestMatch_ScoreFlow(t *testing.T) {
	srv := testServer()
	host := liveSession(t, srv, 1, "host")
	peer := liveSession(t, srv, 2, "peer")

	m := testMatch(t, srv, host)
	require.True(t, m.Join(peer, ""))

	m.Start(host)
	require.True(t, m.InProgress())
	m.LoadComplete(host)
	m.LoadComplete(peer)

	// Clear the lobby chatter so only gameplay traffic remains.
	queuedPackets(peer)

	hostSlot := uint8(m.SlotIndex(host))
	var sent [][]byte
	for i := 0; i < 5; i++ {
		frame := protocol.ScoreFrame{
			Time:       int32(100 * i),
			Count300:   uint16(i),
			TotalScore: int32(1000 * i),
			MaxCombo:   uint16(i),
			HP:         200,
		}
		m.ScoreUpdate(host, frame)

		frame.ID = hostSlot
		sent = append(sent, encodedPacket(t, peer, clients.RespMatchScoreUpdate, frame))
	}

	m.Complete(host)
	m.Complete(peer)
	assert.False(t, m.InProgress())

	// Completion flushes the score queue, so by now every frame must
	// have reached the other player, in send order.
	all := queuedPackets(peer)
	var got [][]byte
	for _, pkt := range all {
		for _, want := range sent {
			if bytes.Equal(pkt, want) {
				got = append(got, pkt)
				break
			}
		}
	}
	assert.Equal(t, sent, got)
	assert.Contains(t, all, encodedPacket(t, peer, clients.RespMatchComplete, nil))

	w := m.Wire()
	for i := range w.Slots {
		assert.NotEqual(t, constants.SlotPlaying, w.Slots[i].Status)
		assert.NotEqual(t, constants.SlotComplete, w.Slots[i].Status)
	}
}
