package bancho

import (
	"fmt"
	"log/slog"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

func handleJoinLobby(srv *Server, s *Session, _ any) {
	s.mu.Lock()
	s.inLobby = true
	s.mu.Unlock()

	for _, other := range srv.players.InLobby() {
		if other.ID() == s.ID() {
			continue
		}
		other.Send(clients.RespLobbyJoin, s.ID())
	}
	for _, m := range srv.matches.Snapshot() {
		m.mu.Lock()
		masked := m.wireLocked(false)
		m.mu.Unlock()
		s.Send(clients.RespNewMatch, masked)
	}
}

func handlePartLobby(srv *Server, s *Session, _ any) {
	s.mu.Lock()
	s.inLobby = false
	s.mu.Unlock()

	for _, other := range srv.players.InLobby() {
		other.Send(clients.RespLobbyPart, s.ID())
	}
}

func handleCreateMatch(srv *Server, s *Session, v any) {
	wire, ok := v.(protocol.Match)
	if !ok {
		return
	}
	if !s.InLobby() || s.IsTourney() || s.Silenced() || s.Match() != nil {
		s.Send(clients.RespMatchJoinFail, nil)
		return
	}

	m := newMatch(srv, wire)
	m.hostID = s.ID()
	if !srv.matches.Allocate(m) {
		m.stopPump()
		s.Send(clients.RespMatchJoinFail, nil)
		s.Send(clients.RespAnnounce, "The multiplayer lobby is full, try again later.")
		return
	}

	dbID, err := srv.db.Matches.Create(srv.ctx, int16(m.id), m.name, s.ID())
	if err != nil {
		slog.Error("archive match failed", "name", m.name, "error", err)
	}
	m.dbID = dbID

	m.chat = newChannel(srv, multiChannelName(m.id), "Multiplayer chat", srv.bot.Name(), false, 0, 0)
	srv.channels.Add(m.chat)

	if !m.Join(s, wire.Password) {
		m.stopPump()
		srv.matches.Remove(m.id)
		srv.channels.Remove(m.chat.Name())
		s.Send(clients.RespMatchJoinFail, nil)
		return
	}

	m.chat.SendBotMessage(fmt.Sprintf("Match history available [%s here].", m.historyURL()))

	m.mu.Lock()
	masked := m.wireLocked(false)
	m.mu.Unlock()
	for _, lobbyist := range srv.players.InLobby() {
		lobbyist.Send(clients.RespNewMatch, masked)
	}

	slog.Info("match created", "match", m.id, "name", m.name, "host", s.Name())
}

func handleJoinMatch(srv *Server, s *Session, v any) {
	join, ok := v.(protocol.MatchJoin)
	if !ok {
		return
	}
	if s.Match() != nil || s.IsTourney() {
		s.Send(clients.RespMatchJoinFail, nil)
		return
	}

	m := srv.matches.ByID(join.MatchID)
	if m == nil || !m.Join(s, join.Password) {
		s.Send(clients.RespMatchJoinFail, nil)
	}
}

func handleLeaveMatch(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.Leave(s)
	}
}

func handleMatchChangeSlot(_ *Server, s *Session, v any) {
	target, ok := v.(int32)
	if !ok {
		return
	}
	if m := s.Match(); m != nil {
		m.ChangeSlot(s, int(target))
	}
}

func handleMatchReady(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.SetStatus(s, constants.SlotReady)
	}
}

func handleMatchNotReady(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.SetStatus(s, constants.SlotNotReady)
	}
}

func handleMatchNoBeatmap(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.SetStatus(s, constants.SlotNoMap)
	}
}

func handleMatchHasBeatmap(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.SetStatus(s, constants.SlotNotReady)
	}
}

func handleMatchLock(_ *Server, s *Session, v any) {
	slot, ok := v.(int32)
	if !ok {
		return
	}
	if m := s.Match(); m != nil {
		m.Lock(s, int(slot))
	}
}

func handleMatchChangeSettings(_ *Server, s *Session, v any) {
	wire, ok := v.(protocol.Match)
	if !ok {
		return
	}
	if m := s.Match(); m != nil {
		m.ChangeSettings(s, wire)
	}
}

func handleMatchChangeMods(_ *Server, s *Session, v any) {
	mods, ok := v.(int32)
	if !ok {
		return
	}
	if m := s.Match(); m != nil {
		m.ChangeMods(s, constants.Mods(uint32(mods)))
	}
}

func handleMatchChangeTeam(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.ChangeTeam(s)
	}
}

func handleMatchChangePassword(_ *Server, s *Session, v any) {
	wire, ok := v.(protocol.Match)
	if !ok {
		return
	}
	if m := s.Match(); m != nil {
		m.ChangePassword(s, wire.Password)
	}
}

func handleMatchTransferHost(_ *Server, s *Session, v any) {
	slot, ok := v.(int32)
	if !ok {
		return
	}
	if m := s.Match(); m != nil {
		m.TransferHost(s, int(slot))
	}
}

func handleMatchStart(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.Start(s)
	}
}

func handleMatchLoadComplete(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.LoadComplete(s)
	}
}

func handleMatchSkip(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.Skip(s)
	}
}

func handleMatchFailed(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.Fail(s)
	}
}

func handleMatchScoreUpdate(_ *Server, s *Session, v any) {
	frame, ok := v.(protocol.ScoreFrame)
	if !ok {
		return
	}
	if m := s.Match(); m != nil {
		m.ScoreUpdate(s, frame)
	}
}

func handleMatchComplete(_ *Server, s *Session, _ any) {
	if m := s.Match(); m != nil {
		m.Complete(s)
	}
}

func handleMatchInvite(srv *Server, s *Session, v any) {
	targetID, ok := v.(int32)
	if !ok {
		return
	}
	m := s.Match()
	if m == nil {
		return
	}
	target := srv.players.ByID(targetID)
	if target == nil {
		return
	}

	m.mu.Lock()
	link := fmt.Sprintf("[osump://%d/%s %s]", m.id, m.password, m.name)
	m.mu.Unlock()

	target.SendInvite(protocol.Message{
		Sender:   s.Name(),
		Content:  "Come join my multiplayer match: " + link,
		Target:   target.Name(),
		SenderID: s.ID(),
	})
}

// handleTournamentMatchInfo streams lobby state to tourney clients.
func handleTournamentMatchInfo(srv *Server, s *Session, v any) {
	matchID, ok := v.(int32)
	if !ok || !s.IsTourney() {
		return
	}
	m := srv.matches.ByID(matchID)
	if m == nil {
		return
	}
	m.mu.Lock()
	masked := m.wireLocked(false)
	m.mu.Unlock()
	s.Send(clients.RespUpdateMatch, masked)
}
