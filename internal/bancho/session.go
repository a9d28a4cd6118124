package bancho

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/db"
	"github.com/prismosu/banchod/internal/protocol"
)

const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
)

// Session is one authenticated (or authenticating) client connection.
type Session struct {
	conn  net.Conn
	host  string
	port  int
	token uuid.UUID

	server *Server
	cohort *clients.Cohort

	versionString string
	version       int
	isTourney     bool
	utcOffset     int8
	displayCity   bool

	// lastResponse holds the unix time of the last inbound frame.
	lastResponse atomic.Int64
	loggedIn     atomic.Bool

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	// teardownOnce makes session teardown idempotent.
	teardownOnce sync.Once

	mu             sync.Mutex
	user           *db.User
	stats          *db.ModeStats
	status         protocol.StatusUpdate
	friends        []int32
	awayMessage    string
	friendOnlyDMs  bool
	presenceFilter constants.PresenceFilter
	silenceEnd     time.Time
	inLobby        bool
	hardware       db.ClientRow

	match      *Match
	spectating *Session

	specMu     sync.RWMutex
	spectators map[uuid.UUID]*Session

	channels sync.Map // name -> *Channel

	chatBucket *messageBucket
}

func newSession(conn net.Conn, server *Server) *Session {
	host, portStr, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}
	port, _ := strconv.Atoi(portStr)

	token, _ := uuid.NewV4()
	s := &Session{
		conn:       conn,
		host:       host,
		port:       port,
		token:      token,
		server:     server,
		sendCh:     make(chan []byte, defaultSendQueueSize),
		closeCh:    make(chan struct{}),
		spectators: make(map[uuid.UUID]*Session),
		chatBucket: newMessageBucket(constants.ChatBucketCapacity, constants.ChatBucketWindowSeconds*time.Second),
	}
	s.lastResponse.Store(time.Now().Unix())
	return s
}

// Token returns the unique session token.
func (s *Session) Token() uuid.UUID { return s.token }

// Host returns the remote IP.
func (s *Session) Host() string { return s.host }

// Port returns the remote TCP port.
func (s *Session) Port() int { return s.port }

// ID returns the user id, 0 before authentication.
func (s *Session) ID() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

// Name returns the display name, empty before authentication.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Name
}

// LoggedIn reports whether the session passed authentication.
func (s *Session) LoggedIn() bool { return s.loggedIn.Load() }

// IsTourney reports whether this is a tournament spectator stream.
func (s *Session) IsTourney() bool { return s.isTourney }

// Permissions returns the permission mask.
func (s *Session) Permissions() constants.Permissions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return 0
	}
	return constants.Permissions(s.user.Permissions)
}

// Status returns a copy of the current status block.
func (s *Session) Status() protocol.StatusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus replaces the status block.
func (s *Session) SetStatus(status protocol.StatusUpdate) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Friends returns the cached friends list.
func (s *Session) Friends() []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int32(nil), s.friends...)
}

// IsFriend reports whether id is in the friends list.
func (s *Session) IsFriend(id int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.friends {
		if f == id {
			return true
		}
	}
	return false
}

// AwayMessage returns the away text, empty when not away.
func (s *Session) AwayMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awayMessage
}

// Silenced reports whether the session is currently silenced.
func (s *Session) Silenced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().Before(s.silenceEnd)
}

// SilenceSecondsLeft returns the remaining silence time.
func (s *Session) SilenceSecondsLeft() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	left := time.Until(s.silenceEnd)
	if left <= 0 {
		return 0
	}
	return int32(left / time.Second)
}

// Match returns the joined match, nil when not in one.
func (s *Session) Match() *Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

func (s *Session) setMatch(m *Match) {
	s.mu.Lock()
	s.match = m
	s.mu.Unlock()
}

// Spectating returns the session being watched, nil when none.
func (s *Session) Spectating() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spectating
}

// InLobby reports whether the client is on the lobby screen.
func (s *Session) InLobby() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inLobby
}

// Presence assembles the wire presence for this player.
func (s *Session) Presence() protocol.UserPresence {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := protocol.UserPresence{
		UserID:      s.user.ID,
		Name:        s.user.Name,
		Timezone:    s.utcOffset,
		CountryCode: countryIndex(s.user.Country),
		Permissions: constants.Permissions(s.user.Permissions),
		Mode:        s.status.Mode,
		Rank:        s.globalRankLocked(),
	}
	if s.displayCity {
		p.City = s.user.Country
	}
	return p
}

// Stats assembles the wire stats for this player.
func (s *Session) Stats() protocol.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return protocol.UserStats{
		UserID:      s.user.ID,
		Status:      s.status,
		RankedScore: s.stats.RankedScore,
		Accuracy:    s.stats.Accuracy,
		Playcount:   s.stats.Playcount,
		TotalScore:  s.stats.TotalScore,
		Rank:        s.globalRankLocked(),
		PP:          int16(s.stats.PP),
	}
}

// globalRankLocked resolves the live pp rank, falling back to the
// stored row when the leaderboard has no entry yet. Callers hold s.mu.
func (s *Session) globalRankLocked() int32 {
	if s.server != nil {
		if rank := s.server.cache.Leaderboards.GlobalRank(s.user.ID, s.status.Mode); rank > 0 {
			return int32(rank)
		}
	}
	return s.stats.Rank
}

// writePump is the dedicated writer goroutine for this session. It
// drains sendCh and batches queued frames into one writev call.
func (s *Session) writePump() {
	bufs := make(net.Buffers, 0, 64)

	for {
		select {
		case pkt, ok := <-s.sendCh:
			if !ok {
				return
			}

			if err := s.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout)); err != nil {
				slog.Warn("set write deadline failed", "client", s.host, "error", err)
				return
			}

			queued := len(s.sendCh)
			if queued == 0 {
				if _, err := s.conn.Write(pkt); err != nil {
					slog.Warn("write failed", "client", s.host, "error", err)
					return
				}
				continue
			}

			bufs = bufs[:0]
			bufs = append(bufs, pkt)
			for range queued {
				bufs = append(bufs, <-s.sendCh)
			}

			if _, err := bufs.WriteTo(s.conn); err != nil {
				slog.Warn("batch write failed", "client", s.host, "error", err)
				return
			}

		case <-s.closeCh:
			return
		}
	}
}

// enqueue queues raw frame bytes for async delivery. Non-blocking: a
// full queue means a stalled client, which gets disconnected.
func (s *Session) enqueue(data []byte) error {
	select {
	case s.sendCh <- data:
		return nil
	case <-s.closeCh:
		return fmt.Errorf("session closed")
	default:
		slog.Warn("send queue full, disconnecting slow client",
			"client", s.host, "user", s.Name())
		s.closeAsync()
		return fmt.Errorf("send queue full")
	}
}

// Send encodes one logical packet for this session's cohort and queues
// it. Packets the cohort does not speak are dropped silently.
func (s *Session) Send(t clients.PacketType, v any) {
	data, ok, err := s.cohort.Encode(t, v)
	if !ok {
		return
	}
	if err != nil {
		slog.Error("encode packet failed", "packet", t.String(), "user", s.Name(), "error", err)
		return
	}
	// enqueue already handles the slow-client case.
	_ = s.enqueue(data)
}

// SendPresenceOf delivers another player's presence, falling back to
// the combined stats+presence packet on old cohorts.
func (s *Session) SendPresenceOf(target *Session) {
	if s.cohort.SupportsResponse(clients.RespUserStats) {
		s.Send(clients.RespUserPresence, target.Presence())
		return
	}
	s.Send(clients.RespUserPresence, clients.PresenceStats{
		Presence: target.Presence(),
		Stats:    target.Stats(),
	})
}

// SendStatsOf delivers another player's stats, falling back to the
// combined packet on old cohorts.
func (s *Session) SendStatsOf(target *Session) {
	if s.cohort.SupportsResponse(clients.RespUserStats) {
		s.Send(clients.RespUserStats, target.Stats())
		return
	}
	s.Send(clients.RespUserPresence, clients.PresenceStats{
		Presence: target.Presence(),
		Stats:    target.Stats(),
		Update:   true,
	})
}

// SendBotPresence advertises the service bot.
func (s *Session) SendBotPresence() {
	bot := s.server.bot
	if s.cohort.SupportsResponse(clients.RespUserStats) {
		s.Send(clients.RespUserPresence, bot.Presence())
		return
	}
	s.Send(clients.RespIrcJoin, bot.Name())
}

// SendQuitOf announces another player's exit; old cohorts get IRC_QUIT
// with the name instead.
func (s *Session) SendQuitOf(target *Session, state constants.QuitState) {
	if s.cohort.SupportsResponse(clients.RespUserQuit) {
		s.Send(clients.RespUserQuit, protocol.UserQuit{UserID: target.ID(), State: state})
		return
	}
	s.Send(clients.RespIrcQuit, target.Name())
}

// SendInvite delivers a match invite; cohorts without INVITE get it as
// a private message.
func (s *Session) SendInvite(msg protocol.Message) {
	if s.cohort.SupportsResponse(clients.RespInvite) {
		s.Send(clients.RespInvite, msg)
		return
	}
	s.Send(clients.RespSendMessage, msg)
}

// closeAsync signals the write pump to stop. Safe to call repeatedly.
func (s *Session) closeAsync() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
}

// Close tears the session down and closes the socket. Idempotent.
func (s *Session) Close() {
	s.teardownOnce.Do(func() {
		s.teardown()
	})
	s.closeAsync()
	s.conn.Close()
}
