package clients

import (
	"fmt"

	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

// newB20130329 drops the leading extra field from spectator bundles.
func newB20130329(parent *Cohort) *Cohort {
	return &Cohort{
		Version: 20130329,
		parent:  parent,
		decoders: map[PacketType]Decoder{
			ReqSendFrames: decodeReplayBundleNoExtra,
		},
		encoders: map[PacketType]Encoder{
			RespSpectateFrames: encodeReplayBundleNoExtra,
		},
	}
}

// newB20121223 predates USER_PRESENCE_SINGLE and USER_PRESENCE_BUNDLE;
// the engine falls back to sending full presence per player.
func newB20121223(parent *Cohort) *Cohort {
	return &Cohort{
		Version: 20121223,
		parent:  parent,
		removed: map[PacketType]bool{
			RespUserPresenceSingle: true,
			RespUserPresenceBundle: true,
		},
	}
}

// newB1700 predates the presence/stats split, INVITE, freemod and the
// match seed. Mods fields shrink to u16 and int lists carry s32 counts.
func newB1700(parent *Cohort) *Cohort {
	return &Cohort{
		Version: 1700,
		parent:  parent,
		removed: map[PacketType]bool{
			RespUserStats: true,
			RespInvite:    true,
		},
		decoders: map[PacketType]Decoder{
			ReqChangeStatus:        decodeStatus1700,
			ReqSendMessage:         decodeMessage,
			ReqSendPrivateMessage:  decodeMessage,
			ReqStatsRequest:        decodeIntListS32,
			ReqPresenceRequest:     decodeIntListS32,
			ReqCreateMatch:         decodeMatch1700,
			ReqMatchChangeSettings: decodeMatch1700,
			ReqMatchChangePassword: decodeMatch1700,
		},
		encoders: map[PacketType]Encoder{
			RespUserPresence:     encodeCombined1700,
			RespSendMessage:      encodeMessageNoSender,
			RespUpdateMatch:      encodeMatch1700,
			RespNewMatch:         encodeMatch1700,
			RespMatchJoinSuccess: encodeMatch1700,
			RespMatchStart:       encodeMatch1700,
			RespFriendsList:      encodeIntListS32,
		},
	}
}

// newB590 clamps unsupported login error codes. b558 shares this
// dialect via a registry alias.
func newB590(parent *Cohort) *Cohort {
	return &Cohort{
		Version: 590,
		parent:  parent,
		encoders: map[PacketType]Encoder{
			RespLoginReply: encodeLoginReplyClamped,
		},
	}
}

// newB323 is the oldest dialect: short frame header with mandatory
// gzip, no match password or teams, no score frame tag byte and
// two-bool replay buttons.
func newB323(parent *Cohort) *Cohort {
	return &Cohort{
		Version: 323,
		parent:  parent,
		decoders: map[PacketType]Decoder{
			ReqChangeStatus:     decodeStatus323,
			ReqJoinMatch:        decodeMatchJoin323,
			ReqSendFrames:       decodeReplayBundle323,
			ReqMatchScoreUpdate: decodeScoreFrame323,
			ReqCreateMatch:      decodeMatch323,
		},
		encoders: map[PacketType]Encoder{
			RespUserPresence:     encodeCombined323,
			RespSpectateFrames:   encodeReplayBundle323,
			RespMatchScoreUpdate: encodeScoreFrame323,
			RespUpdateMatch:      encodeMatch323,
			RespNewMatch:         encodeMatch323,
			RespMatchJoinSuccess: encodeMatch323,
			RespMatchStart:       encodeMatch323,
		},
	}
}

// newB319 adds a leading update flag to the combined packet.
func newB319(parent *Cohort) *Cohort {
	return &Cohort{
		Version: 319,
		parent:  parent,
		encoders: map[PacketType]Encoder{
			RespUserPresence: encodeCombined319,
		},
	}
}

func decodeIntListS32(r *protocol.Reader) (any, error) {
	return r.ReadIntListS32()
}

func encodeIntListS32(w *protocol.Writer, v any) error {
	list, ok := v.([]int32)
	if !ok {
		return fmt.Errorf("encodeIntListS32: unexpected type %T", v)
	}
	w.WriteIntListS32(list)
	return nil
}

func decodeReplayBundleNoExtra(r *protocol.Reader) (any, error) {
	var b protocol.ReplayFrameBundle
	if err := decodeReplayBundleTail(r, &b); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeReplayBundleNoExtra(w *protocol.Writer, v any) error {
	b, ok := v.(protocol.ReplayFrameBundle)
	if !ok {
		return fmt.Errorf("encodeReplayBundleNoExtra: unexpected type %T", v)
	}
	writeReplayBundleTail(w, b)
	return nil
}

func encodeMessageNoSender(w *protocol.Writer, v any) error {
	m, ok := v.(protocol.Message)
	if !ok {
		return fmt.Errorf("encodeMessageNoSender: unexpected type %T", v)
	}
	w.WriteString(m.Sender)
	w.WriteString(m.Content)
	w.WriteString(m.Target)
	return nil
}

// decodeStatus1700 reads the guarded status form: the full beatmap
// block only follows when the update flag is set, and mods are u16.
func decodeStatus1700(r *protocol.Reader) (any, error) {
	var s protocol.StatusUpdate

	action, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	s.Action = constants.ClientStatus(action)

	hasBeatmap, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !hasBeatmap {
		return s, nil
	}

	if s.Text, err = r.ReadString(); err != nil {
		return nil, err
	}
	if s.BeatmapChecksum, err = r.ReadString(); err != nil {
		return nil, err
	}

	mods, err := r.ReadU16()
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

// decodeStatus323 is the guarded form without mode and beatmap id.
func decodeStatus323(r *protocol.Reader) (any, error) {
	var s protocol.StatusUpdate

	action, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	s.Action = constants.ClientStatus(action)

	hasBeatmap, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !hasBeatmap {
		return s, nil
	}

	if s.Text, err = r.ReadString(); err != nil {
		return nil, err
	}
	if s.BeatmapChecksum, err = r.ReadString(); err != nil {
		return nil, err
	}

	mods, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	s.Mods = constants.Mods(mods)
	return s, nil
}

func writeStatus1700(w *protocol.Writer, s protocol.StatusUpdate, withBeatmapInfo bool) {
	w.WriteU8(uint8(s.Action))
	w.WriteBool(true)
	w.WriteString(s.Text)
	w.WriteString(s.BeatmapChecksum)
	w.WriteU16(uint16(s.Mods))
	if withBeatmapInfo {
		w.WriteU8(uint8(s.Mode))
		w.WriteS32(s.BeatmapID)
	}
}

// writeCombined is the single stats+presence packet spoken before the
// presence/stats split.
func writeCombined(w *protocol.Writer, ps PresenceStats, withBeatmapInfo bool) {
	w.WriteS32(ps.Stats.UserID)
	writeStatus1700(w, ps.Stats.Status, withBeatmapInfo)
	w.WriteS64(ps.Stats.RankedScore)
	w.WriteF32(ps.Stats.Accuracy)
	w.WriteS32(ps.Stats.Playcount)
	w.WriteS64(ps.Stats.TotalScore)
	w.WriteS32(ps.Stats.Rank)
	w.WriteString(ps.Presence.Name)
	w.WriteString(ps.Presence.City)
	w.WriteU8(uint8(ps.Presence.Timezone + 24))
	w.WriteU8(uint8(ps.Presence.Permissions))
}

func encodeCombined1700(w *protocol.Writer, v any) error {
	ps, ok := v.(PresenceStats)
	if !ok {
		return fmt.Errorf("encodeCombined1700: unexpected type %T", v)
	}
	writeCombined(w, ps, true)
	return nil
}

func encodeCombined323(w *protocol.Writer, v any) error {
	ps, ok := v.(PresenceStats)
	if !ok {
		return fmt.Errorf("encodeCombined323: unexpected type %T", v)
	}
	writeCombined(w, ps, false)
	return nil
}

func encodeCombined319(w *protocol.Writer, v any) error {
	ps, ok := v.(PresenceStats)
	if !ok {
		return fmt.Errorf("encodeCombined319: unexpected type %T", v)
	}
	w.WriteBool(ps.Update)
	writeCombined(w, ps, false)
	return nil
}

func encodeLoginReplyClamped(w *protocol.Writer, v any) error {
	reply, ok := v.(int32)
	if !ok {
		return fmt.Errorf("encodeLoginReplyClamped: unexpected type %T", v)
	}
	if reply < -2 {
		reply = constants.LoginAuthenticationError
	}
	w.WriteS32(reply)
	return nil
}

func decodeMatchJoin323(r *protocol.Reader) (any, error) {
	id, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	return protocol.MatchJoin{MatchID: id}, nil
}

func decodeScoreFrame323(r *protocol.Reader) (any, error) {
	var f protocol.ScoreFrame
	if err := decodeScoreFrameNoTag(r, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeScoreFrameNoTag(r *protocol.Reader, f *protocol.ScoreFrame) error {
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
	return nil
}

func encodeScoreFrame323(w *protocol.Writer, v any) error {
	f, ok := v.(protocol.ScoreFrame)
	if !ok {
		return fmt.Errorf("encodeScoreFrame323: unexpected type %T", v)
	}
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
	return nil
}

func decodeReplayFrame323(r *protocol.Reader) (protocol.ReplayFrame, error) {
	var f protocol.ReplayFrame

	left, err := r.ReadBool()
	if err != nil {
		return f, err
	}
	right, err := r.ReadBool()
	if err != nil {
		return f, err
	}
	if left {
		f.ButtonState |= constants.ButtonLeft1
	}
	if right {
		f.ButtonState |= constants.ButtonRight1
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

func decodeReplayBundle323(r *protocol.Reader) (any, error) {
	var b protocol.ReplayFrameBundle

	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	for range count {
		frame, err := decodeReplayFrame323(r)
		if err != nil {
			return nil, err
		}
		b.Frames = append(b.Frames, frame)
	}

	action, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	b.Action = constants.ReplayAction(action)

	if r.Remaining() > 0 {
		var f protocol.ScoreFrame
		if err := decodeScoreFrameNoTag(r, &f); err != nil {
			return nil, err
		}
		b.ScoreFrame = &f
	}
	return b, nil
}

func encodeReplayBundle323(w *protocol.Writer, v any) error {
	b, ok := v.(protocol.ReplayFrameBundle)
	if !ok {
		return fmt.Errorf("encodeReplayBundle323: unexpected type %T", v)
	}
	w.WriteU16(uint16(len(b.Frames)))
	for _, f := range b.Frames {
		w.WriteBool(f.ButtonState&constants.ButtonLeft1 != 0)
		w.WriteBool(f.ButtonState&constants.ButtonRight1 != 0)
		w.WriteF32(f.MouseX)
		w.WriteF32(f.MouseY)
		w.WriteS32(f.Time)
	}
	w.WriteU8(uint8(b.Action))
	if b.ScoreFrame != nil {
		if err := encodeScoreFrame323(w, *b.ScoreFrame); err != nil {
			return err
		}
	}
	return nil
}

// decodeMatch1700 reads the narrow match form: u8 id, u16 mods, no
// freemod block and no seed.
func decodeMatch1700(r *protocol.Reader) (any, error) {
	var m protocol.Match

	id, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	m.ID = int16(id)

	if err := decodeMatchBody(r, &m, true); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeMatch1700(w *protocol.Writer, v any) error {
	m, ok := v.(protocol.Match)
	if !ok {
		return fmt.Errorf("encodeMatch1700: unexpected type %T", v)
	}
	w.WriteU8(uint8(m.ID))
	writeMatchBody(w, m, true)
	return nil
}

// decodeMatch323 reads the earliest match form: no password, no
// teams, no host, no scoring or team type.
func decodeMatch323(r *protocol.Reader) (any, error) {
	var m protocol.Match

	id, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	m.ID = int16(id)

	if m.InProgress, err = r.ReadBool(); err != nil {
		return nil, err
	}

	mt, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	m.Type = constants.MatchType(mt)

	mods, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	m.Mods = constants.Mods(mods)

	if m.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if m.BeatmapText, err = r.ReadString(); err != nil {
		return nil, err
	}
	if m.BeatmapID, err = r.ReadS32(); err != nil {
		return nil, err
	}
	if m.BeatmapChecksum, err = r.ReadString(); err != nil {
		return nil, err
	}

	for i := range m.Slots {
		status, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		m.Slots[i].Status = constants.SlotStatus(status)
	}
	for i := range m.Slots {
		m.Slots[i].UserID = -1
		if m.Slots[i].HasPlayer() {
			if m.Slots[i].UserID, err = r.ReadS32(); err != nil {
				return nil, err
			}
		}
	}

	m.HostID = -1
	return m, nil
}

func encodeMatch323(w *protocol.Writer, v any) error {
	m, ok := v.(protocol.Match)
	if !ok {
		return fmt.Errorf("encodeMatch323: unexpected type %T", v)
	}
	w.WriteU8(uint8(m.ID))
	w.WriteBool(m.InProgress)
	w.WriteU8(uint8(m.Type))
	w.WriteU16(uint16(m.Mods))
	w.WriteString(m.Name)
	w.WriteString(m.BeatmapText)
	w.WriteS32(m.BeatmapID)
	w.WriteString(m.BeatmapChecksum)

	for _, s := range m.Slots {
		w.WriteU8(uint8(s.Status))
	}
	for _, s := range m.Slots {
		if s.HasPlayer() {
			w.WriteS32(s.UserID)
		}
	}
	return nil
}
