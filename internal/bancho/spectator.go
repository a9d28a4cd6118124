package bancho

import (
	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/protocol"
)

// addSpectator attaches s as an observer of host.
func (host *Session) addSpectator(s *Session) {
	chat := host.server.channels.ByName(specChannelName(host.ID()))
	if chat != nil {
		chat.Add(s)
		if !chat.Contains(host) {
			chat.Add(host)
		}
	}

	host.specMu.Lock()
	observers := make([]*Session, 0, len(host.spectators))
	for _, o := range host.spectators {
		observers = append(observers, o)
	}
	host.spectators[s.Token()] = s
	host.specMu.Unlock()

	for _, o := range observers {
		o.Send(clients.RespFellowSpectatorJoined, s.ID())
	}
	host.Send(clients.RespSpectatorJoined, s.ID())

	s.mu.Lock()
	s.spectating = host
	s.mu.Unlock()
}

// removeSpectator detaches s from host. When the last observer leaves,
// the host leaves its own spectator channel too.
func (host *Session) removeSpectator(s *Session) {
	host.specMu.Lock()
	delete(host.spectators, s.Token())
	remaining := make([]*Session, 0, len(host.spectators))
	for _, o := range host.spectators {
		remaining = append(remaining, o)
	}
	host.specMu.Unlock()

	chat := host.server.channels.ByName(specChannelName(host.ID()))
	if chat != nil {
		chat.Remove(s)
		if len(remaining) == 0 {
			chat.Remove(host)
		}
	}

	host.Send(clients.RespSpectatorLeft, s.ID())
	for _, o := range remaining {
		o.Send(clients.RespFellowSpectatorLeft, s.ID())
	}

	s.mu.Lock()
	s.spectating = nil
	s.mu.Unlock()
}

// hasSpectator reports whether s observes host.
func (host *Session) hasSpectator(s *Session) bool {
	host.specMu.RLock()
	defer host.specMu.RUnlock()
	_, ok := host.spectators[s.Token()]
	return ok
}

// Spectators returns a snapshot of the observer set.
func (s *Session) Spectators() []*Session {
	s.specMu.RLock()
	defer s.specMu.RUnlock()

	out := make([]*Session, 0, len(s.spectators))
	for _, o := range s.spectators {
		out = append(out, o)
	}
	return out
}

// StartSpectating attaches the caller to the target's observer set.
// Asking again for a host already being watched acts as a stop.
func (s *Session) StartSpectating(targetID int32) {
	target := s.server.players.ByID(targetID)
	if target == nil || target.Token() == s.Token() {
		return
	}

	if cur := s.Spectating(); cur != nil {
		cur.removeSpectator(s)
		if cur.Token() == target.Token() {
			return
		}
	} else if target.hasSpectator(s) {
		target.removeSpectator(s)
		return
	}

	target.addSpectator(s)
}

// StopSpectating detaches the caller from whoever they watch.
func (s *Session) StopSpectating() {
	if host := s.Spectating(); host != nil {
		host.removeSpectator(s)
	}
}

// CantSpectate tells the host and fellow observers that the caller is
// missing the beatmap.
func (s *Session) CantSpectate() {
	host := s.Spectating()
	if host == nil {
		return
	}
	host.Send(clients.RespCantSpectate, s.ID())
	for _, o := range host.Spectators() {
		if o.Token() == s.Token() {
			continue
		}
		o.Send(clients.RespCantSpectate, s.ID())
	}
}

// RelayFrames fans a replay bundle from the host to every observer,
// unmodified.
func (s *Session) RelayFrames(bundle protocol.ReplayFrameBundle) {
	for _, o := range s.Spectators() {
		o.Send(clients.RespSpectateFrames, bundle)
	}
}

func handleStartSpectating(_ *Server, s *Session, v any) {
	targetID, ok := v.(int32)
	if !ok {
		return
	}
	s.StartSpectating(targetID)
}

func handleStopSpectating(_ *Server, s *Session, _ any) {
	s.StopSpectating()
}

func handleCantSpectate(_ *Server, s *Session, _ any) {
	s.CantSpectate()
}

func handleSendFrames(_ *Server, s *Session, v any) {
	bundle, ok := v.(protocol.ReplayFrameBundle)
	if !ok {
		return
	}
	s.RelayFrames(bundle)
}
