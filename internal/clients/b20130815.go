package clients

import (
	"fmt"

	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

// newB20130815 is the newest supported dialect and the root of the
// cohort chain. Every table is fully populated here; older cohorts
// override only what changed.
func newB20130815() *Cohort {
	return &Cohort{
		Version: 20130815,

		requests: map[uint16]PacketType{
			0:  ReqChangeStatus,
			1:  ReqSendMessage,
			2:  ReqExit,
			3:  ReqRequestStatus,
			4:  ReqPong,
			16: ReqStartSpectating,
			17: ReqStopSpectating,
			18: ReqSendFrames,
			20: ReqErrorReport,
			21: ReqCantSpectate,
			25: ReqSendPrivateMessage,
			29: ReqPartLobby,
			30: ReqJoinLobby,
			31: ReqCreateMatch,
			32: ReqJoinMatch,
			33: ReqLeaveMatch,
			38: ReqMatchChangeSlot,
			39: ReqMatchReady,
			40: ReqMatchLock,
			41: ReqMatchChangeSettings,
			44: ReqMatchStart,
			47: ReqMatchScoreUpdate,
			49: ReqMatchComplete,
			51: ReqMatchChangeMods,
			52: ReqMatchLoadComplete,
			54: ReqMatchNoBeatmap,
			55: ReqMatchNotReady,
			56: ReqMatchFailed,
			59: ReqMatchHasBeatmap,
			60: ReqMatchSkip,
			63: ReqJoinChannel,
			68: ReqBeatmapInfo,
			70: ReqMatchTransferHost,
			73: ReqAddFriend,
			74: ReqRemoveFriend,
			77: ReqMatchChangeTeam,
			78: ReqLeaveChannel,
			79: ReqReceiveUpdates,
			82: ReqSetAwayMessage,
			85: ReqStatsRequest,
			87: ReqMatchInvite,
			90: ReqMatchChangePassword,
			93: ReqTournamentMatchInfo,
			97: ReqPresenceRequest,
			98: ReqPresenceRequestAll,
			99: ReqChangeFriendOnlyDMs,
		},

		responses: map[PacketType]uint16{
			RespLoginReply:               5,
			RespSendMessage:              7,
			RespPing:                     8,
			RespIrcJoin:                  9,
			RespIrcQuit:                  10,
			RespUserStats:                11,
			RespUserQuit:                 12,
			RespSpectatorJoined:          13,
			RespSpectatorLeft:            14,
			RespSpectateFrames:           15,
			RespCantSpectate:             22,
			RespAnnounce:                 24,
			RespUpdateMatch:              26,
			RespNewMatch:                 27,
			RespDisbandMatch:             28,
			RespLobbyJoin:                34,
			RespLobbyPart:                35,
			RespMatchJoinSuccess:         36,
			RespMatchJoinFail:            37,
			RespFellowSpectatorJoined:    42,
			RespFellowSpectatorLeft:      43,
			RespMatchStart:               46,
			RespMatchScoreUpdate:         48,
			RespMatchTransferHost:        50,
			RespMatchAllPlayersLoaded:    53,
			RespMatchPlayerFailed:        57,
			RespMatchComplete:            58,
			RespMatchSkip:                61,
			RespChannelJoinSuccess:       64,
			RespChannelAvailable:         65,
			RespChannelRevoked:           66,
			RespChannelAvailableAutojoin: 67,
			RespBeatmapInfoReply:         69,
			RespLoginPermissions:         71,
			RespFriendsList:              72,
			RespProtocolVersion:          75,
			RespMenuIcon:                 76,
			RespMonitor:                  80,
			RespMatchPlayerSkipped:       81,
			RespUserPresence:             83,
			RespInvite:                   88,
			RespChannelInfoComplete:      89,
			RespMatchChangePassword:      91,
			RespSilenceInfo:              92,
			RespUserSilenced:             94,
			RespUserPresenceSingle:       95,
			RespUserPresenceBundle:       96,
			RespUserDMBlocked:            100,
			RespTargetIsSilenced:         101,
		},

		decoders: map[PacketType]Decoder{
			ReqChangeStatus:        decodeStatus,
			ReqSendMessage:         decodeMessage,
			ReqSendPrivateMessage:  decodeMessage,
			ReqSetAwayMessage:      decodeMessage,
			ReqExit:                decodeS32,
			ReqStartSpectating:     decodeS32,
			ReqSendFrames:          decodeReplayBundle,
			ReqErrorReport:         decodeString,
			ReqCreateMatch:         decodeMatch,
			ReqJoinMatch:           decodeMatchJoin,
			ReqMatchChangeSlot:     decodeS32,
			ReqMatchLock:           decodeS32,
			ReqMatchChangeSettings: decodeMatch,
			ReqMatchScoreUpdate:    decodeScoreFrame,
			ReqMatchChangeMods:     decodeS32,
			ReqJoinChannel:         decodeString,
			ReqLeaveChannel:        decodeString,
			ReqBeatmapInfo:         decodeBeatmapRequest,
			ReqMatchTransferHost:   decodeS32,
			ReqAddFriend:           decodeS32,
			ReqRemoveFriend:        decodeS32,
			ReqReceiveUpdates:      decodeS32,
			ReqStatsRequest:        decodeIntListS16,
			ReqMatchInvite:         decodeS32,
			ReqMatchChangePassword: decodeMatch,
			ReqTournamentMatchInfo: decodeS32,
			ReqPresenceRequest:     decodeIntListS16,
			ReqChangeFriendOnlyDMs: decodeS32,
		},

		encoders: map[PacketType]Encoder{
			RespLoginReply:               encodeS32,
			RespSendMessage:              encodeMessage,
			RespIrcJoin:                  encodeString,
			RespIrcQuit:                  encodeString,
			RespUserStats:                encodeUserStats,
			RespUserQuit:                 encodeUserQuit,
			RespSpectatorJoined:          encodeS32,
			RespSpectatorLeft:            encodeS32,
			RespSpectateFrames:           encodeReplayBundle,
			RespCantSpectate:             encodeS32,
			RespAnnounce:                 encodeString,
			RespUpdateMatch:              encodeMatch,
			RespNewMatch:                 encodeMatch,
			RespDisbandMatch:             encodeS32,
			RespLobbyJoin:                encodeS32,
			RespLobbyPart:                encodeS32,
			RespMatchJoinSuccess:         encodeMatch,
			RespFellowSpectatorJoined:    encodeS32,
			RespFellowSpectatorLeft:      encodeS32,
			RespMatchStart:               encodeMatch,
			RespMatchScoreUpdate:         encodeScoreFrame,
			RespMatchPlayerFailed:        encodeS32,
			RespMatchPlayerSkipped:       encodeS32,
			RespChannelJoinSuccess:       encodeString,
			RespChannelAvailable:         encodeChannel,
			RespChannelRevoked:           encodeString,
			RespChannelAvailableAutojoin: encodeChannel,
			RespBeatmapInfoReply:         encodeBeatmapReply,
			RespLoginPermissions:         encodeS32,
			RespFriendsList:              encodeIntListS16,
			RespProtocolVersion:          encodeS32,
			RespMenuIcon:                 encodeString,
			RespUserPresence:             encodeUserPresence,
			RespInvite:                   encodeMessage,
			RespMatchChangePassword:      encodeString,
			RespSilenceInfo:              encodeS32,
			RespUserSilenced:             encodeS32,
			RespUserPresenceSingle:       encodeS32,
			RespUserPresenceBundle:       encodeIntListS16,
			RespUserDMBlocked:            encodeMessage,
			RespTargetIsSilenced:         encodeMessage,
		},
	}
}

func decodeS32(r *protocol.Reader) (any, error) {
	return r.ReadS32()
}

func decodeString(r *protocol.Reader) (any, error) {
	return r.ReadString()
}

func decodeIntListS16(r *protocol.Reader) (any, error) {
	return r.ReadIntListS16()
}

func decodeMessage(r *protocol.Reader) (any, error) {
	var m protocol.Message
	var err error

	if m.Sender, err = r.ReadString(); err != nil {
		return nil, err
	}
	if m.Content, err = r.ReadString(); err != nil {
		return nil, err
	}
	if m.Target, err = r.ReadString(); err != nil {
		return nil, err
	}

	// Older clients leave the sender id off.
	if r.Remaining() >= 4 {
		if m.SenderID, err = r.ReadS32(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func decodeStatus(r *protocol.Reader) (any, error) {
	var s protocol.StatusUpdate

	action, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	s.Action = constants.ClientStatus(action)

	if s.Text, err = r.ReadString(); err != nil {
		return nil, err
	}
	if s.BeatmapChecksum, err = r.ReadString(); err != nil {
		return nil, err
	}

	mods, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	s.Mods = constants.Mods(mods)

	mode, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	s.Mode = constants.GameMode(mode)

	if s.BeatmapID, err = r.ReadS32(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeBeatmapRequest(r *protocol.Reader) (any, error) {
	var req protocol.BeatmapInfoRequest

	count, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	if count < 0 || int(count) > r.Remaining() {
		return nil, fmt.Errorf("beatmap request: bad filename count %d", count)
	}
	for range count {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		req.Filenames = append(req.Filenames, name)
	}

	if req.IDs, err = r.ReadIntListS32(); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeReplayFrame(r *protocol.Reader) (protocol.ReplayFrame, error) {
	var f protocol.ReplayFrame

	buttons, err := r.ReadU8()
	if err != nil {
		return f, err
	}
	f.ButtonState = constants.ButtonState(buttons)

	if f.TaikoByte, err = r.ReadU8(); err != nil {
		return f, err
	}
	if f.MouseX, err = r.ReadF32(); err != nil {
		return f, err
	}
	if f.MouseY, err = r.ReadF32(); err != nil {
		return f, err
	}
	if f.Time, err = r.ReadS32(); err != nil {
		return f, err
	}
	return f, nil
}

func decodeScoreFrameInto(r *protocol.Reader, f *protocol.ScoreFrame) error {
	var err error
	if f.Time, err = r.ReadS32(); err != nil {
		return err
	}
	if f.ID, err = r.ReadU8(); err != nil {
		return err
	}
	if f.Count300, err = r.ReadU16(); err != nil {
		return err
	}
	if f.Count100, err = r.ReadU16(); err != nil {
		return err
	}
	if f.Count50, err = r.ReadU16(); err != nil {
		return err
	}
	if f.CountGeki, err = r.ReadU16(); err != nil {
		return err
	}
	if f.CountKatu, err = r.ReadU16(); err != nil {
		return err
	}
	if f.CountMiss, err = r.ReadU16(); err != nil {
		return err
	}
	if f.TotalScore, err = r.ReadS32(); err != nil {
		return err
	}
	if f.MaxCombo, err = r.ReadU16(); err != nil {
		return err
	}
	if f.CurrentCombo, err = r.ReadU16(); err != nil {
		return err
	}
	if f.Perfect, err = r.ReadBool(); err != nil {
		return err
	}
	if f.HP, err = r.ReadU8(); err != nil {
		return err
	}
	if f.TagByte, err = r.ReadU8(); err != nil {
		return err
	}
	return nil
}

func decodeScoreFrame(r *protocol.Reader) (any, error) {
	var f protocol.ScoreFrame
	if err := decodeScoreFrameInto(r, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeReplayBundle(r *protocol.Reader) (any, error) {
	var b protocol.ReplayFrameBundle
	var err error

	if b.Extra, err = r.ReadS32(); err != nil {
		return nil, err
	}
	if err := decodeReplayBundleTail(r, &b); err != nil {
		return nil, err
	}
	return b, nil
}

// decodeReplayBundleTail reads everything after the leading extra
// field; cohorts before 20130815 start the bundle here.
func decodeReplayBundleTail(r *protocol.Reader, b *protocol.ReplayFrameBundle) error {
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for range count {
		frame, err := decodeReplayFrame(r)
		if err != nil {
			return err
		}
		b.Frames = append(b.Frames, frame)
	}

	action, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.Action = constants.ReplayAction(action)

	// The score frame trails only during gameplay.
	if r.Remaining() > 0 {
		var f protocol.ScoreFrame
		if err := decodeScoreFrameInto(r, &f); err != nil {
			return err
		}
		b.ScoreFrame = &f
	}
	return nil
}

func decodeMatchJoin(r *protocol.Reader) (any, error) {
	var j protocol.MatchJoin
	var err error

	if j.MatchID, err = r.ReadS32(); err != nil {
		return nil, err
	}
	if j.Password, err = r.ReadString(); err != nil {
		return nil, err
	}
	return j, nil
}

func decodeMatch(r *protocol.Reader) (any, error) {
	var m protocol.Match

	id, err := r.ReadS16()
	if err != nil {
		return nil, err
	}
	m.ID = id

	if err := decodeMatchBody(r, &m, false); err != nil {
		return nil, err
	}

	// Freemod block and seed exist on modern clients only.
	freemod, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	m.Freemod = freemod
	if freemod {
		for i := range m.Slots {
			mods, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			m.Slots[i].Mods = constants.Mods(mods)
		}
	}

	if m.Seed, err = r.ReadS32(); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeMatchBody reads the shared middle of a match object, from the
// in_progress flag through the team type. narrowMods selects the u16
// mods field used by b1700 and below.
func decodeMatchBody(r *protocol.Reader, m *protocol.Match, narrowMods bool) error {
	var err error

	if m.InProgress, err = r.ReadBool(); err != nil {
		return err
	}

	mt, err := r.ReadU8()
	if err != nil {
		return err
	}
	m.Type = constants.MatchType(mt)

	if narrowMods {
		mods, err := r.ReadU16()
		if err != nil {
			return err
		}
		m.Mods = constants.Mods(mods)
	} else {
		mods, err := r.ReadU32()
		if err != nil {
			return err
		}
		m.Mods = constants.Mods(mods)
	}

	if m.Name, err = r.ReadString(); err != nil {
		return err
	}
	if m.Password, err = r.ReadString(); err != nil {
		return err
	}
	if m.BeatmapText, err = r.ReadString(); err != nil {
		return err
	}
	if m.BeatmapID, err = r.ReadS32(); err != nil {
		return err
	}
	if m.BeatmapChecksum, err = r.ReadString(); err != nil {
		return err
	}

	for i := range m.Slots {
		status, err := r.ReadU8()
		if err != nil {
			return err
		}
		m.Slots[i].Status = constants.SlotStatus(status)
	}
	for i := range m.Slots {
		team, err := r.ReadU8()
		if err != nil {
			return err
		}
		m.Slots[i].Team = constants.SlotTeam(team)
	}
	for i := range m.Slots {
		m.Slots[i].UserID = -1
		if m.Slots[i].HasPlayer() {
			if m.Slots[i].UserID, err = r.ReadS32(); err != nil {
				return err
			}
		}
	}

	if m.HostID, err = r.ReadS32(); err != nil {
		return err
	}

	mode, err := r.ReadU8()
	if err != nil {
		return err
	}
	m.Mode = constants.GameMode(mode)

	scoring, err := r.ReadU8()
	if err != nil {
		return err
	}
	m.ScoringType = constants.ScoringType(scoring)

	team, err := r.ReadU8()
	if err != nil {
		return err
	}
	m.TeamType = constants.TeamType(team)

	return nil
}

func encodeS32(w *protocol.Writer, v any) error {
	switch n := v.(type) {
	case int32:
		w.WriteS32(n)
	case int:
		w.WriteS32(int32(n))
	default:
		return fmt.Errorf("encodeS32: unexpected type %T", v)
	}
	return nil
}

func encodeString(w *protocol.Writer, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("encodeString: unexpected type %T", v)
	}
	w.WriteString(s)
	return nil
}

func encodeIntListS16(w *protocol.Writer, v any) error {
	list, ok := v.([]int32)
	if !ok {
		return fmt.Errorf("encodeIntListS16: unexpected type %T", v)
	}
	w.WriteIntListS16(list)
	return nil
}

func encodeMessage(w *protocol.Writer, v any) error {
	m, ok := v.(protocol.Message)
	if !ok {
		return fmt.Errorf("encodeMessage: unexpected type %T", v)
	}
	w.WriteString(m.Sender)
	w.WriteString(m.Content)
	w.WriteString(m.Target)
	w.WriteS32(m.SenderID)
	return nil
}

func encodeChannel(w *protocol.Writer, v any) error {
	c, ok := v.(protocol.Channel)
	if !ok {
		return fmt.Errorf("encodeChannel: unexpected type %T", v)
	}
	w.WriteString(c.Name)
	w.WriteString(c.Topic)
	w.WriteS16(c.UserCount)
	return nil
}

func encodeUserQuit(w *protocol.Writer, v any) error {
	q, ok := v.(protocol.UserQuit)
	if !ok {
		return fmt.Errorf("encodeUserQuit: unexpected type %T", v)
	}
	w.WriteS32(q.UserID)
	w.WriteU8(uint8(q.State))
	return nil
}

func writeStatus(w *protocol.Writer, s protocol.StatusUpdate) {
	w.WriteU8(uint8(s.Action))
	w.WriteString(s.Text)
	w.WriteString(s.BeatmapChecksum)
	w.WriteU32(uint32(s.Mods))
	w.WriteU8(uint8(s.Mode))
	w.WriteS32(s.BeatmapID)
}

func encodeUserStats(w *protocol.Writer, v any) error {
	s, ok := v.(protocol.UserStats)
	if !ok {
		return fmt.Errorf("encodeUserStats: unexpected type %T", v)
	}
	w.WriteS32(s.UserID)
	writeStatus(w, s.Status)
	w.WriteS64(s.RankedScore)
	w.WriteF32(s.Accuracy)
	w.WriteS32(s.Playcount)
	w.WriteS64(s.TotalScore)
	w.WriteS32(s.Rank)
	w.WriteS16(s.PP)
	return nil
}

func encodeUserPresence(w *protocol.Writer, v any) error {
	p, ok := v.(protocol.UserPresence)
	if !ok {
		return fmt.Errorf("encodeUserPresence: unexpected type %T", v)
	}
	w.WriteS32(p.UserID)
	w.WriteString(p.Name)
	w.WriteU8(uint8(p.Timezone + 24))
	w.WriteU8(p.CountryCode)
	w.WriteU8(uint8(p.Permissions)&0x1f | uint8(p.Mode)<<5)
	w.WriteF32(p.Longitude)
	w.WriteF32(p.Latitude)
	w.WriteS32(p.Rank)
	return nil
}

func writeScoreFrame(w *protocol.Writer, f protocol.ScoreFrame) {
	w.WriteS32(f.Time)
	w.WriteU8(f.ID)
	w.WriteU16(f.Count300)
	w.WriteU16(f.Count100)
	w.WriteU16(f.Count50)
	w.WriteU16(f.CountGeki)
	w.WriteU16(f.CountKatu)
	w.WriteU16(f.CountMiss)
	w.WriteS32(f.TotalScore)
	w.WriteU16(f.MaxCombo)
	w.WriteU16(f.CurrentCombo)
	w.WriteBool(f.Perfect)
	w.WriteU8(f.HP)
	w.WriteU8(f.TagByte)
}

func encodeScoreFrame(w *protocol.Writer, v any) error {
	f, ok := v.(protocol.ScoreFrame)
	if !ok {
		return fmt.Errorf("encodeScoreFrame: unexpected type %T", v)
	}
	writeScoreFrame(w, f)
	return nil
}

func encodeReplayBundle(w *protocol.Writer, v any) error {
	b, ok := v.(protocol.ReplayFrameBundle)
	if !ok {
		return fmt.Errorf("encodeReplayBundle: unexpected type %T", v)
	}
	w.WriteS32(b.Extra)
	writeReplayBundleTail(w, b)
	return nil
}

func writeReplayBundleTail(w *protocol.Writer, b protocol.ReplayFrameBundle) {
	w.WriteU16(uint16(len(b.Frames)))
	for _, f := range b.Frames {
		w.WriteU8(uint8(f.ButtonState))
		w.WriteU8(f.TaikoByte)
		w.WriteF32(f.MouseX)
		w.WriteF32(f.MouseY)
		w.WriteS32(f.Time)
	}
	w.WriteU8(uint8(b.Action))
	if b.ScoreFrame != nil {
		writeScoreFrame(w, *b.ScoreFrame)
	}
}

func encodeBeatmapReply(w *protocol.Writer, v any) error {
	reply, ok := v.(protocol.BeatmapInfoReply)
	if !ok {
		return fmt.Errorf("encodeBeatmapReply: unexpected type %T", v)
	}
	w.WriteS32(int32(len(reply.Beatmaps)))
	for _, b := range reply.Beatmaps {
		w.WriteS16(b.Index)
		w.WriteS32(b.BeatmapID)
		w.WriteS32(b.BeatmapsetID)
		w.WriteS32(b.ThreadID)
		w.WriteU8(uint8(b.RankedStatus))
		w.WriteU8(uint8(b.OsuRank))
		w.WriteU8(uint8(b.TaikoRank))
		w.WriteU8(uint8(b.FruitsRank))
		w.WriteU8(uint8(b.ManiaRank))
		w.WriteString(b.Checksum)
	}
	return nil
}

func encodeMatch(w *protocol.Writer, v any) error {
	m, ok := v.(protocol.Match)
	if !ok {
		return fmt.Errorf("encodeMatch: unexpected type %T", v)
	}
	w.WriteS16(m.ID)
	writeMatchBody(w, m, false)

	w.WriteBool(m.Freemod)
	if m.Freemod {
		for _, s := range m.Slots {
			w.WriteU32(uint32(s.Mods))
		}
	}
	w.WriteS32(m.Seed)
	return nil
}

// writeMatchBody mirrors decodeMatchBody.
func writeMatchBody(w *protocol.Writer, m protocol.Match, narrowMods bool) {
	w.WriteBool(m.InProgress)
	w.WriteU8(uint8(m.Type))
	if narrowMods {
		w.WriteU16(uint16(m.Mods))
	} else {
		w.WriteU32(uint32(m.Mods))
	}

	w.WriteString(m.Name)
	w.WriteString(m.Password)
	w.WriteString(m.BeatmapText)
	w.WriteS32(m.BeatmapID)
	w.WriteString(m.BeatmapChecksum)

	for _, s := range m.Slots {
		w.WriteU8(uint8(s.Status))
	}
	for _, s := range m.Slots {
		w.WriteU8(uint8(s.Team))
	}
	for _, s := range m.Slots {
		if s.HasPlayer() {
			w.WriteS32(s.UserID)
		}
	}

	w.WriteS32(m.HostID)
	w.WriteU8(uint8(m.Mode))
	w.WriteU8(uint8(m.ScoringType))
	w.WriteU8(uint8(m.TeamType))
}
