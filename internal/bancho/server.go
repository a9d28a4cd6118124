package bancho

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prismosu/banchod/internal/cache"
	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/config"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/db"
	"github.com/prismosu/banchod/internal/protocol"
)

const (
	pingInterval   = 30 * time.Second
	sessionTimeout = 3 * time.Minute
	sweepInterval  = time.Minute
	matchIdleLimit = 30 * time.Minute

	// handlerWorkers bounds concurrent handler execution.
	handlerWorkers = 64
)

// Server is the realtime engine: listeners, registries and the shared
// infrastructure every session hangs off.
type Server struct {
	ctx context.Context
	cfg config.Server

	db    *db.DB
	cache *cache.Cache

	registry *clients.Registry
	players  *Players
	channels *Channels
	matches  *Matches
	bot      *Bot
	commands *Commands

	workers *errgroup.Group
}

// NewServer wires the engine together and seeds the public channels
// from the store.
func NewServer(ctx context.Context, cfg config.Server, database *db.DB, c *cache.Cache) (*Server, error) {
	srv := &Server{
		ctx:      ctx,
		cfg:      cfg,
		db:       database,
		cache:    c,
		registry: clients.NewRegistry(),
		players:  NewPlayers(),
		channels: NewChannels(),
		matches:  NewMatches(),
		bot:      newBot(cfg.BotName),
	}
	srv.commands = NewCommands(srv)

	srv.workers = &errgroup.Group{}
	srv.workers.SetLimit(handlerWorkers)

	rows, err := database.Channels.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading channels: %w", err)
	}
	for _, row := range rows {
		srv.channels.Add(newChannel(srv, row.Name, row.Topic, cfg.BotName, true,
			constants.Permissions(row.ReadPerms), constants.Permissions(row.WritePerms)))
	}

	return srv, nil
}

// Players exposes the player registry.
func (srv *Server) Players() *Players { return srv.players }

// Channels exposes the channel registry.
func (srv *Server) Channels() *Channels { return srv.channels }

// Matches exposes the match registry.
func (srv *Server) Matches() *Matches { return srv.matches }

// Bot exposes the service bot.
func (srv *Server) Bot() *Bot { return srv.bot }

// Run opens one listener per configured port and serves until the
// context is canceled.
func (srv *Server) Run() error {
	g, ctx := errgroup.WithContext(srv.ctx)

	for _, port := range srv.cfg.Ports {
		addr := fmt.Sprintf("%s:%d", srv.cfg.BindAddress, port)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		slog.Info("listening", "addr", addr)

		g.Go(func() error {
			<-ctx.Done()
			return ln.Close()
		})
		g.Go(func() error {
			return srv.acceptLoop(ctx, ln)
		})
	}

	g.Go(func() error {
		srv.pingJob(ctx)
		return nil
	})
	g.Go(func() error {
		srv.sweepJob(ctx)
		return nil
	})

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (srv *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		go srv.handleConnection(conn)
	}
}

// handleConnection drives one connection from handshake to teardown.
func (srv *Server) handleConnection(conn net.Conn) {
	s := newSession(conn, srv)
	defer s.Close()

	if err := conn.SetReadDeadline(time.Now().Add(constants.HandshakeTimeoutSeconds * time.Second)); err != nil {
		return
	}

	reader := bufio.NewReader(conn)
	first, err := reader.ReadString('\n')
	if err != nil {
		s.writeRaw([]byte("no.\r\n"))
		return
	}

	// A browser or health probe poking the port gets a static page.
	if strings.HasPrefix(first, "GET /") {
		s.writeRaw([]byte("HTTP/1.1 200 OK\r\ncontent-type: text/html\r\n\r\n" + constants.WebResponse))
		return
	}

	second, err := reader.ReadString('\n')
	if err != nil {
		s.writeRaw([]byte("no.\r\n"))
		return
	}
	third, err := reader.ReadString('\n')
	if err != nil {
		s.writeRaw([]byte("no.\r\n"))
		return
	}

	username := strings.TrimRight(first, "\r\n")
	password := strings.TrimRight(second, "\r\n")
	descriptor := strings.TrimRight(third, "\r\n")

	if err := srv.handleLogin(s, username, password, descriptor); err != nil {
		slog.Warn("login rejected", "client", s.Host(), "error", err)
		return
	}

	srv.liveLoop(s, reader)
}

// liveLoop reads frames until the transport dies.
func (srv *Server) liveLoop(s *Session, reader *bufio.Reader) {
	legacy := s.cohort.Legacy()

	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(sessionTimeout)); err != nil {
			return
		}

		frame, err := protocol.ReadFrame(reader, legacy)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("read frame failed", "user", s.Name(), "error", err)
			}
			return
		}
		s.lastResponse.Store(time.Now().Unix())

		srv.dispatch(s, frame)
	}
}

// writeRaw writes bytes synchronously, only used before the write
// pump starts.
func (s *Session) writeRaw(data []byte) {
	_ = s.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	_, _ = s.conn.Write(data)
}

// persistMessage archives a chat line off the hot path.
func (srv *Server) persistMessage(sender, target, text string) {
	srv.workers.Go(func() error {
		if err := srv.db.Messages.Create(srv.ctx, sender, target, text); err != nil {
			slog.Error("archive message failed", "sender", sender, "target", target, "error", err)
		}
		return nil
	})
}

// pingJob keeps idle sessions alive and reaps stalled ones.
func (srv *Server) pingJob(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now().Unix()
		for _, s := range srv.players.Snapshot() {
			idle := now - s.lastResponse.Load()
			if idle > int64(sessionTimeout/time.Second) {
				slog.Info("dropping stalled session", "user", s.Name(), "idle_seconds", idle)
				go s.Close()
				continue
			}
			s.Send(clients.RespPing, nil)
		}
	}
}

// sweepJob disbands lobbies nobody has touched for a while.
func (srv *Server) sweepJob(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-matchIdleLimit)
		for _, m := range srv.matches.Snapshot() {
			if m.InProgress() || m.IdleSince().After(cutoff) {
				continue
			}
			slog.Info("disbanding idle match", "match", m.ID(), "name", m.Name())
			for _, s := range m.sessions() {
				m.Leave(s)
			}
		}
	}
}

// teardown detaches the session from everything it touches. Runs
// exactly once per session via Close.
func (s *Session) teardown() {
	srv := s.server
	if !s.LoggedIn() {
		return
	}

	if host := s.Spectating(); host != nil {
		host.removeSpectator(s)
	}
	for _, o := range s.Spectators() {
		s.removeSpectator(o)
	}

	s.channels.Range(func(_, v any) bool {
		if c, ok := v.(*Channel); ok {
			c.Remove(s)
		}
		return true
	})

	if m := s.Match(); m != nil {
		m.Leave(s)
	}

	srv.players.Remove(s)

	// A tourney principal stays visible while any stream survives.
	remains := srv.players.HasPrimary(s.ID()) || srv.players.TourneyCount(s.ID()) > 0
	if !remains {
		for _, other := range srv.players.Snapshot() {
			other.SendQuitOf(s, constants.QuitGone)
		}
		srv.channels.Remove(specChannelName(s.ID()))
		srv.cache.Status.Delete(s.ID())
		srv.cache.Usercount.Decrement()
	}

	slog.Info("session closed", "user", s.Name(), "id", s.ID(), "client", s.Host())
}
