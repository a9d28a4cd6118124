package bancho

import (
	"log/slog"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/db"
	"github.com/prismosu/banchod/internal/protocol"
)

func handleChangeStatus(srv *Server, s *Session, v any) {
	status, ok := v.(protocol.StatusUpdate)
	if !ok {
		return
	}
	status.Mods = status.Mods.NormalizeSpeed()

	modeChanged := s.Status().Mode != status.Mode
	s.SetStatus(status)
	srv.cache.Status.Update(s.ID(), status)

	if modeChanged {
		stats, err := srv.db.Users.FetchStats(srv.ctx, s.ID(), int16(status.Mode))
		if err != nil {
			slog.Error("fetch stats failed", "user", s.Name(), "mode", int(status.Mode), "error", err)
		} else {
			s.mu.Lock()
			s.stats = stats
			s.mu.Unlock()
		}
	}

	// Everyone with the panel open sees the new activity line.
	for _, other := range srv.players.Primaries() {
		other.SendStatsOf(s)
	}
}

func handleRequestStatus(_ *Server, s *Session, _ any) {
	s.SendStatsOf(s)
}

func handleReceiveUpdates(_ *Server, s *Session, v any) {
	filter, ok := v.(int32)
	if !ok {
		return
	}
	s.mu.Lock()
	s.presenceFilter = constants.PresenceFilter(filter)
	s.mu.Unlock()
}

func handlePresenceRequest(srv *Server, s *Session, v any) {
	ids, ok := v.([]int32)
	if !ok {
		return
	}
	for _, id := range ids {
		if id == botUserID {
			s.SendBotPresence()
			continue
		}
		if target := srv.players.ByID(id); target != nil {
			s.SendPresenceOf(target)
		}
	}
}

func handlePresenceRequestAll(srv *Server, s *Session, _ any) {
	for _, target := range srv.players.Primaries() {
		s.SendPresenceOf(target)
	}
}

func handleStatsRequest(srv *Server, s *Session, v any) {
	ids, ok := v.([]int32)
	if !ok {
		return
	}
	for _, id := range ids {
		if target := srv.players.ByID(id); target != nil {
			s.SendStatsOf(target)
		}
	}
}

func handleSetAwayMessage(_ *Server, s *Session, v any) {
	msg, ok := v.(protocol.Message)
	if !ok {
		return
	}
	s.mu.Lock()
	s.awayMessage = msg.Content
	s.mu.Unlock()
}

func handleChangeFriendOnlyDMs(_ *Server, s *Session, v any) {
	enabled, ok := v.(int32)
	if !ok {
		return
	}
	s.mu.Lock()
	s.friendOnlyDMs = enabled == 1
	s.mu.Unlock()
}

func handleAddFriend(srv *Server, s *Session, v any) {
	targetID, ok := v.(int32)
	if !ok || targetID == s.ID() || targetID <= 0 {
		return
	}
	if s.IsFriend(targetID) {
		return
	}
	// The target may be offline, so existence comes from the store.
	if target, err := srv.db.Users.FetchByID(srv.ctx, targetID); err != nil || target == nil {
		if err != nil {
			slog.Error("fetch friend target failed", "user", s.Name(), "target", targetID, "error", err)
		}
		return
	}
	if err := srv.db.Relationships.Create(srv.ctx, s.ID(), targetID); err != nil {
		slog.Error("add friend failed", "user", s.Name(), "target", targetID, "error", err)
		return
	}
	s.mu.Lock()
	s.friends = append(s.friends, targetID)
	s.mu.Unlock()
}

func handleRemoveFriend(srv *Server, s *Session, v any) {
	targetID, ok := v.(int32)
	if !ok {
		return
	}
	if err := srv.db.Relationships.Delete(srv.ctx, s.ID(), targetID); err != nil {
		slog.Error("remove friend failed", "user", s.Name(), "target", targetID, "error", err)
		return
	}
	s.mu.Lock()
	for i, f := range s.friends {
		if f == targetID {
			s.friends = append(s.friends[:i], s.friends[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

// gradeFromString maps a stored grade to its wire enum; no score means
// grade N.
func gradeFromString(grade string) constants.Grade {
	switch grade {
	case "XH":
		return constants.GradeXH
	case "SH":
		return constants.GradeSH
	case "X":
		return constants.GradeX
	case "S":
		return constants.GradeS
	case "A":
		return constants.GradeA
	case "B":
		return constants.GradeB
	case "C":
		return constants.GradeC
	case "D":
		return constants.GradeD
	case "F":
		return constants.GradeF
	default:
		return constants.GradeN
	}
}

// rankedStatusWire maps the store's status to the client's: the client
// wants 0 unknown, 1 unsubmitted, 2 pending, 3 ranked, 4 approved.
func rankedStatusWire(status int16) int8 {
	switch {
	case status <= 0:
		return 1
	case status == 1:
		return 2
	case status == 2:
		return 3
	default:
		return 4
	}
}

func handleBeatmapInfo(srv *Server, s *Session, v any) {
	req, ok := v.(protocol.BeatmapInfoRequest)
	if !ok {
		return
	}

	var reply protocol.BeatmapInfoReply

	for i, filename := range req.Filenames {
		b, err := srv.db.Beatmaps.FetchByFile(srv.ctx, filename)
		if err != nil {
			slog.Error("beatmap lookup failed", "file", filename, "error", err)
			continue
		}
		if b == nil {
			continue
		}
		reply.Beatmaps = append(reply.Beatmaps, srv.beatmapInfo(s, int16(i), b))
	}
	for _, id := range req.IDs {
		b, err := srv.db.Beatmaps.FetchByID(srv.ctx, id)
		if err != nil {
			slog.Error("beatmap lookup failed", "id", id, "error", err)
			continue
		}
		if b == nil {
			continue
		}
		reply.Beatmaps = append(reply.Beatmaps, srv.beatmapInfo(s, -1, b))
	}

	s.Send(clients.RespBeatmapInfoReply, reply)
}

// beatmapInfo builds one reply entry, attaching the caller's personal
// best grade per mode.
func (srv *Server) beatmapInfo(s *Session, index int16, b *db.Beatmap) protocol.BeatmapInfo {
	info := protocol.BeatmapInfo{
		Index:        index,
		BeatmapID:    b.ID,
		BeatmapsetID: b.SetID,
		RankedStatus: rankedStatusWire(b.Status),
		OsuRank:      constants.GradeN,
		TaikoRank:    constants.GradeN,
		FruitsRank:   constants.GradeN,
		ManiaRank:    constants.GradeN,
		Checksum:     b.MD5,
	}
	for mode := int16(0); mode < 4; mode++ {
		best, err := srv.db.Scores.FetchPersonalBest(srv.ctx, b.ID, s.ID(), mode)
		if err != nil || best == nil {
			continue
		}
		grade := gradeFromString(best.Grade)
		switch constants.GameMode(mode) {
		case constants.ModeOsu:
			info.OsuRank = grade
		case constants.ModeTaiko:
			info.TaikoRank = grade
		case constants.ModeFruits:
			info.FruitsRank = grade
		case constants.ModeMania:
			info.ManiaRank = grade
		}
	}
	return info
}
