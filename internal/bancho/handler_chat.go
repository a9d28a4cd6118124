package bancho

import (
	"log/slog"
	"strings"
	"time"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/db"
	"github.com/prismosu/banchod/internal/protocol"
)

// Silence mutes a session, records the infringement and tells both
// the victim and the rest of the server.
func (srv *Server) Silence(s *Session, d time.Duration, reason string) {
	end := time.Now().Add(d)

	s.mu.Lock()
	s.silenceEnd = end
	s.mu.Unlock()
	s.chatBucket.Reset()

	if err := srv.db.Users.SetSilenceEnd(srv.ctx, s.ID(), &end); err != nil {
		slog.Error("persist silence failed", "user", s.Name(), "error", err)
	}
	if err := srv.db.Infringements.Create(srv.ctx, s.ID(), db.InfringementSilence, &end, reason, false); err != nil {
		slog.Error("record infringement failed", "user", s.Name(), "error", err)
	}

	s.Send(clients.RespSilenceInfo, int32(d/time.Second))
	srv.players.BroadcastExcept(s, clients.RespUserSilenced, s.ID())

	slog.Info("silenced", "user", s.Name(), "seconds", int(d/time.Second), "reason", reason)
}

// chatAllowed enforces the silence state and the rolling rate limit.
func (srv *Server) chatAllowed(s *Session) bool {
	if s.Silenced() {
		return false
	}
	if !s.chatBucket.Record(time.Now()) {
		srv.Silence(s, constants.SpamSilenceSeconds*time.Second, "Chat spamming")
		return false
	}
	return true
}

// resolveChannelName maps the client-side aliases to the session's
// actual private channels.
func (srv *Server) resolveChannelName(s *Session, name string) string {
	switch name {
	case "#spectator":
		if host := s.Spectating(); host != nil {
			return specChannelName(host.ID())
		}
		return specChannelName(s.ID())
	case "#multiplayer":
		if m := s.Match(); m != nil {
			return multiChannelName(m.ID())
		}
	}
	return name
}

func handleSendMessage(srv *Server, s *Session, v any) {
	msg, ok := v.(protocol.Message)
	if !ok || !srv.chatAllowed(s) {
		return
	}

	name := srv.resolveChannelName(s, msg.Target)
	channel := srv.channels.ByName(name)
	if channel == nil || !channel.Contains(s) {
		return
	}
	channel.SendMessage(s, msg.Content)
}

func handleSendPrivateMessage(srv *Server, s *Session, v any) {
	msg, ok := v.(protocol.Message)
	if !ok || !srv.chatAllowed(s) {
		return
	}

	// Anything aimed at the bot is a command, delivered or not.
	if strings.EqualFold(msg.Target, srv.bot.Name()) {
		srv.commands.HandlePrivate(s, msg.Content)
		return
	}
	if strings.HasPrefix(msg.Content, "!") {
		srv.commands.HandlePrivate(s, msg.Content)
		return
	}

	target := srv.players.ByName(msg.Target)
	if target == nil {
		return
	}

	if target.Silenced() {
		s.Send(clients.RespTargetIsSilenced, protocol.Message{Target: target.Name()})
		return
	}

	target.mu.Lock()
	blocked := target.friendOnlyDMs
	target.mu.Unlock()
	if blocked && !target.IsFriend(s.ID()) {
		s.Send(clients.RespUserDMBlocked, protocol.Message{Target: target.Name()})
		return
	}

	if away := target.AwayMessage(); away != "" {
		s.Send(clients.RespSendMessage, protocol.Message{
			Sender:   target.Name(),
			Content:  "\x01ACTION is away: " + away + "\x01",
			Target:   s.Name(),
			SenderID: target.ID(),
		})
	}

	out := protocol.Message{
		Sender:   s.Name(),
		Content:  prepareBody(msg.Content),
		Target:   target.Name(),
		SenderID: s.ID(),
	}
	target.Send(clients.RespSendMessage, out)

	// Tournament streams of the same principal mirror the message,
	// except the stream sharing the target's port.
	for _, stream := range srv.players.TourneyStreams(target.ID()) {
		if stream.Port() == target.Port() {
			continue
		}
		stream.Send(clients.RespSendMessage, out)
	}

	srv.persistMessage(s.Name(), target.Name(), out.Content)
}

func handleJoinChannel(srv *Server, s *Session, v any) {
	name, ok := v.(string)
	if !ok {
		return
	}
	channel := srv.channels.ByName(srv.resolveChannelName(s, name))
	if channel == nil {
		s.Send(clients.RespChannelRevoked, name)
		return
	}
	if !channel.Add(s) {
		s.Send(clients.RespChannelRevoked, name)
	}
}

func handleLeaveChannel(srv *Server, s *Session, v any) {
	name, ok := v.(string)
	if !ok {
		return
	}
	if channel := srv.channels.ByName(srv.resolveChannelName(s, name)); channel != nil {
		channel.Remove(s)
	}
}
