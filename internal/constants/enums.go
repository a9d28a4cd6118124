package constants

// GameMode is the play mode a client reports in its status.
type GameMode uint8

const (
	ModeOsu GameMode = iota
	ModeTaiko
	ModeFruits
	ModeMania
)

// ClientStatus is the action field of a status update.
type ClientStatus uint8

const (
	StatusIdle ClientStatus = iota
	StatusAfk
	StatusPlaying
	StatusEditing
	StatusModding
	StatusMultiplayer
	StatusWatching
	StatusUnknown
	StatusTesting
	StatusSubmitting
	StatusPaused
	StatusLobby
	StatusMultiplaying
	StatusOsuDirect
)

// Mods is the gameplay modifier bitmask.
type Mods uint32

const (
	NoMod       Mods = 0
	NoFail      Mods = 1 << 0
	Easy        Mods = 1 << 1
	NoVideo     Mods = 1 << 2
	Hidden      Mods = 1 << 3
	HardRock    Mods = 1 << 4
	SuddenDeath Mods = 1 << 5
	DoubleTime  Mods = 1 << 6
	Relax       Mods = 1 << 7
	HalfTime    Mods = 1 << 8
	Nightcore   Mods = 1 << 9
	Flashlight  Mods = 1 << 10
	Autoplay    Mods = 1 << 11
	SpunOut     Mods = 1 << 12
	Autopilot   Mods = 1 << 13
	Perfect     Mods = 1 << 14
	Key4        Mods = 1 << 15
	Key5        Mods = 1 << 16
	Key6        Mods = 1 << 17
	Key7        Mods = 1 << 18
	Key8        Mods = 1 << 19
	FadeIn      Mods = 1 << 20
	Random      Mods = 1 << 21
	KeyCoop     Mods = 1 << 22
	Key9        Mods = 1 << 23
	Key1        Mods = 1 << 24
	Key3        Mods = 1 << 25
	Key2        Mods = 1 << 26

	KeyMods Mods = Key1 | Key2 | Key3 | Key4 | Key5 | Key6 | Key7 | Key8 | Key9 | KeyCoop

	// SpeedMods stay match-wide even in freemod.
	SpeedMods Mods = DoubleTime | HalfTime | Nightcore

	// FreeModAllowed is the set each player may pick for themselves
	// when freemod is enabled.
	FreeModAllowed Mods = NoFail | Easy | Hidden | HardRock | SuddenDeath |
		Flashlight | FadeIn | Relax | Autopilot | SpunOut | KeyMods
)

// Has reports whether all bits of m2 are set in m.
func (m Mods) Has(m2 Mods) bool { return m&m2 == m2 }

// NormalizeSpeed clears DoubleTime whenever Nightcore is also set.
// The client has a bug where both end up enabled at the same time.
func (m Mods) NormalizeSpeed() Mods {
	if m.Has(DoubleTime | Nightcore) {
		return m &^ DoubleTime
	}
	return m
}

// SlotStatus is the state of one seat in a multiplayer match.
type SlotStatus uint8

const (
	SlotOpen     SlotStatus = 1 << 0
	SlotLocked   SlotStatus = 1 << 1
	SlotNotReady SlotStatus = 1 << 2
	SlotReady    SlotStatus = 1 << 3
	SlotNoMap    SlotStatus = 1 << 4
	SlotPlaying  SlotStatus = 1 << 5
	SlotComplete SlotStatus = 1 << 6
	SlotQuit     SlotStatus = 1 << 7

	// SlotHasPlayer covers every status that implies an occupant.
	SlotHasPlayer SlotStatus = SlotNotReady | SlotReady | SlotNoMap | SlotPlaying | SlotComplete
)

// SlotTeam is the team assignment of a slot.
type SlotTeam uint8

const (
	TeamNeutral SlotTeam = iota
	TeamBlue
	TeamRed
)

// Opposite flips Red and Blue; Neutral maps to itself.
func (t SlotTeam) Opposite() SlotTeam {
	switch t {
	case TeamBlue:
		return TeamRed
	case TeamRed:
		return TeamBlue
	default:
		return t
	}
}

// MatchType distinguishes standard lobbies from powerplay ones.
type MatchType uint8

const (
	MatchTypeStandard MatchType = iota
	MatchTypePowerplay
)

// TeamType is the match team mode.
type TeamType uint8

const (
	TeamTypeHeadToHead TeamType = iota
	TeamTypeTagCoop
	TeamTypeTeamVs
	TeamTypeTagTeamVs
)

// FreeForAll reports whether players pick their own team.
func (t TeamType) FreeForAll() bool {
	return t == TeamTypeTeamVs || t == TeamTypeTagTeamVs
}

// ScoringType is the match win condition.
type ScoringType uint8

const (
	ScoringScore ScoringType = iota
	ScoringAccuracy
	ScoringCombo
)

// Permissions is the account permission bitmask.
type Permissions uint32

const (
	PermNormal     Permissions = 1 << 0
	PermBAT        Permissions = 1 << 1
	PermSubscriber Permissions = 1 << 2
	PermFriend     Permissions = 1 << 3
	PermAdmin      Permissions = 1 << 4
	PermTourney    Permissions = 1 << 5
)

// Has reports whether all bits of p2 are set.
func (p Permissions) Has(p2 Permissions) bool { return p&p2 == p2 }

// LoginReply codes carried in LOGIN_REPLY. Values >= 1 are user ids.
const (
	LoginAuthenticationError = -1
	LoginUpdateNeeded        = -2
	LoginBanned              = -3
	LoginBannedAlias         = -4
	LoginServerError         = -5
	LoginNotActivated        = -6
)

// PresenceFilter selects which players a client wants updates for.
type PresenceFilter uint8

const (
	FilterNone PresenceFilter = iota
	FilterAll
	FilterFriends
)

// QuitState is the second field of USER_QUIT.
type QuitState uint8

const (
	QuitGone QuitState = iota
	QuitOsuRemaining
	QuitIrcRemaining
)

// ReplayAction is the action field of a replay frame bundle.
type ReplayAction uint8

const (
	ReplayStandard ReplayAction = iota
	ReplayNewSong
	ReplaySkip
	ReplayCompletion
	ReplayFail
	ReplayPause
	ReplayUnpause
	ReplaySongSelect
	ReplayWatchingOther
)

// ButtonState is the pressed-buttons bitmask inside a replay frame.
type ButtonState uint8

const (
	ButtonNone   ButtonState = 0
	ButtonLeft1  ButtonState = 1 << 0
	ButtonRight1 ButtonState = 1 << 1
	ButtonLeft2  ButtonState = 1 << 2
	ButtonRight2 ButtonState = 1 << 3
	ButtonSmoke  ButtonState = 1 << 4
)

// EventType tags archived match events.
type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventHost
	EventStart
	EventDisband
	EventResult
)

// Grade is a score grade used in beatmap info replies.
type Grade uint8

const (
	GradeXH Grade = iota
	GradeSH
	GradeX
	GradeS
	GradeA
	GradeB
	GradeC
	GradeD
	GradeF
	GradeN
)
