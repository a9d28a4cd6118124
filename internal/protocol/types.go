package protocol

import (
	"github.com/prismosu/banchod/internal/constants"
)

// Wire-level object shapes shared by every client cohort. Field order
// here is documentation only; the actual byte layout per cohort lives
// in internal/clients.

// Message is a chat message, public or private.
type Message struct {
	Sender   string
	Content  string
	Target   string
	SenderID int32
}

// Channel describes one chat channel as advertised to clients.
type Channel struct {
	Name      string
	Topic     string
	Owner     string
	UserCount int16
}

// StatusUpdate is the action block a client reports about itself.
type StatusUpdate struct {
	Action          constants.ClientStatus
	Text            string
	BeatmapChecksum string
	Mods            constants.Mods
	Mode            constants.GameMode
	BeatmapID       int32
}

// UserPresence is the static half of a player's public state.
type UserPresence struct {
	UserID      int32
	IsIrc       bool
	Name        string
	Timezone    int8
	CountryCode uint8
	Permissions constants.Permissions
	Mode        constants.GameMode
	Longitude   float32
	Latitude    float32
	Rank        int32
	City        string
}

// UserStats is the dynamic half: mode-specific ranking numbers plus
// the current status block.
type UserStats struct {
	UserID      int32
	Status      StatusUpdate
	RankedScore int64
	Accuracy    float32
	Playcount   int32
	TotalScore  int64
	Rank        int32
	PP          int16
}

// UserQuit announces a player leaving, with the remaining-entity state.
type UserQuit struct {
	UserID int32
	State  constants.QuitState
}

// BeatmapInfoRequest asks for ranked status by filename and/or id.
type BeatmapInfoRequest struct {
	Filenames []string
	IDs       []int32
}

// BeatmapInfo is one entry of a BEATMAP_INFO_REPLY.
type BeatmapInfo struct {
	Index        int16
	BeatmapID    int32
	BeatmapsetID int32
	ThreadID     int32
	RankedStatus int8
	OsuRank      constants.Grade
	TaikoRank    constants.Grade
	FruitsRank   constants.Grade
	ManiaRank    constants.Grade
	Checksum     string
}

// BeatmapInfoReply carries the requested beatmap entries.
type BeatmapInfoReply struct {
	Beatmaps []BeatmapInfo
}

// ReplayFrame is one input sample inside a spectator bundle.
type ReplayFrame struct {
	ButtonState constants.ButtonState
	TaikoByte   uint8
	MouseX      float32
	MouseY      float32
	Time        int32
}

// ScoreFrame is a point-in-time score snapshot during gameplay.
type ScoreFrame struct {
	Time         int32
	ID           uint8
	Count300     uint16
	Count100     uint16
	Count50      uint16
	CountGeki    uint16
	CountKatu    uint16
	CountMiss    uint16
	TotalScore   int32
	MaxCombo     uint16
	CurrentCombo uint16
	Perfect      bool
	HP           uint8
	TagByte      uint8
}

// Passed reports whether the frame represents a non-failed state.
// HP 254 is the client's failed marker.
func (f ScoreFrame) Passed() bool { return f.HP != 254 }

// TotalHits is the summed judgement count for the mode.
func (f ScoreFrame) TotalHits(mode constants.GameMode) int {
	base := int(f.Count50) + int(f.Count100) + int(f.Count300) + int(f.CountMiss)
	switch mode {
	case constants.ModeFruits:
		return base + int(f.CountKatu)
	case constants.ModeMania:
		return base + int(f.CountGeki) + int(f.CountKatu)
	default:
		return base
	}
}

// Accuracy computes the mode-specific accuracy in [0, 1].
func (f ScoreFrame) Accuracy(mode constants.GameMode) float64 {
	total := f.TotalHits(mode)
	if total == 0 {
		return 0
	}

	switch mode {
	case constants.ModeTaiko:
		return (0.5*float64(f.Count100) + float64(f.Count300)) / float64(total)
	case constants.ModeFruits:
		return float64(int(f.Count300)+int(f.Count100)+int(f.Count50)) / float64(total)
	case constants.ModeMania:
		return (float64(f.Count50)*50 + float64(f.Count100)*100 +
			float64(f.CountKatu)*200 + float64(int(f.Count300)+int(f.CountGeki))*300) /
			(float64(total) * 300)
	default:
		return (float64(f.Count50)*50 + float64(f.Count100)*100 + float64(f.Count300)*300) /
			(float64(total) * 300)
	}
}

// ReplayFrameBundle is the spectator frame batch relayed verbatim.
type ReplayFrameBundle struct {
	Extra      int32
	Action     constants.ReplayAction
	Frames     []ReplayFrame
	ScoreFrame *ScoreFrame
}

// MatchJoin is the join request: target match id plus its password.
type MatchJoin struct {
	MatchID  int32
	Password string
}

// Slot is one of the eight seats of a match as seen on the wire.
type Slot struct {
	UserID int32
	Status constants.SlotStatus
	Team   constants.SlotTeam
	Mods   constants.Mods
}

// HasPlayer reports whether the slot status implies an occupant.
func (s Slot) HasPlayer() bool {
	return s.Status&constants.SlotHasPlayer != 0
}

// Match is the full lobby state broadcast on every mutation.
type Match struct {
	ID              int16
	InProgress      bool
	Type            constants.MatchType
	Mods            constants.Mods
	Name            string
	Password        string
	BeatmapText     string
	BeatmapID       int32
	BeatmapChecksum string
	Slots           [constants.MaxMatchSlots]Slot
	HostID          int32
	Mode            constants.GameMode
	ScoringType     constants.ScoringType
	TeamType        constants.TeamType
	Freemod         bool
	Seed            int32
}
