package clients

// PacketType is a logical packet name. Numeric wire ids vary per
// client cohort; handlers and encoders are keyed by these names.
type PacketType int

// Requests (client to server).
const (
	ReqChangeStatus PacketType = iota
	ReqSendMessage
	ReqExit
	ReqRequestStatus
	ReqPong
	ReqStartSpectating
	ReqStopSpectating
	ReqSendFrames
	ReqErrorReport
	ReqCantSpectate
	ReqSendPrivateMessage
	ReqPartLobby
	ReqJoinLobby
	ReqCreateMatch
	ReqJoinMatch
	ReqLeaveMatch
	ReqMatchChangeSlot
	ReqMatchReady
	ReqMatchLock
	ReqMatchChangeSettings
	ReqMatchStart
	ReqMatchScoreUpdate
	ReqMatchComplete
	ReqMatchChangeMods
	ReqMatchLoadComplete
	ReqMatchNoBeatmap
	ReqMatchNotReady
	ReqMatchFailed
	ReqMatchHasBeatmap
	ReqMatchSkip
	ReqJoinChannel
	ReqBeatmapInfo
	ReqMatchTransferHost
	ReqAddFriend
	ReqRemoveFriend
	ReqMatchChangeTeam
	ReqLeaveChannel
	ReqReceiveUpdates
	ReqSetAwayMessage
	ReqStatsRequest
	ReqMatchInvite
	ReqMatchChangePassword
	ReqTournamentMatchInfo
	ReqPresenceRequest
	ReqPresenceRequestAll
	ReqChangeFriendOnlyDMs
)

// Responses (server to client).
const (
	RespLoginReply PacketType = iota + 1000
	RespSendMessage
	RespPing
	RespIrcJoin
	RespIrcQuit
	RespUserStats
	RespUserQuit
	RespSpectatorJoined
	RespSpectatorLeft
	RespSpectateFrames
	RespCantSpectate
	RespAnnounce
	RespUpdateMatch
	RespNewMatch
	RespDisbandMatch
	RespLobbyJoin
	RespLobbyPart
	RespMatchJoinSuccess
	RespMatchJoinFail
	RespFellowSpectatorJoined
	RespFellowSpectatorLeft
	RespMatchStart
	RespMatchScoreUpdate
	RespMatchTransferHost
	RespMatchAllPlayersLoaded
	RespMatchPlayerFailed
	RespMatchComplete
	RespMatchSkip
	RespChannelJoinSuccess
	RespChannelAvailable
	RespChannelRevoked
	RespChannelAvailableAutojoin
	RespBeatmapInfoReply
	RespLoginPermissions
	RespFriendsList
	RespProtocolVersion
	RespMenuIcon
	RespMonitor
	RespMatchPlayerSkipped
	RespUserPresence
	RespInvite
	RespChannelInfoComplete
	RespMatchChangePassword
	RespSilenceInfo
	RespUserSilenced
	RespUserPresenceSingle
	RespUserPresenceBundle
	RespUserDMBlocked
	RespTargetIsSilenced
)

var packetNames = map[PacketType]string{
	ReqChangeStatus:        "CHANGE_STATUS",
	ReqSendMessage:         "SEND_MESSAGE",
	ReqExit:                "EXIT",
	ReqRequestStatus:       "REQUEST_STATUS",
	ReqPong:                "PONG",
	ReqStartSpectating:     "START_SPECTATING",
	ReqStopSpectating:      "STOP_SPECTATING",
	ReqSendFrames:          "SEND_FRAMES",
	ReqErrorReport:         "ERROR_REPORT",
	ReqCantSpectate:        "CANT_SPECTATE",
	ReqSendPrivateMessage:  "SEND_PRIVATE_MESSAGE",
	ReqPartLobby:           "PART_LOBBY",
	ReqJoinLobby:           "JOIN_LOBBY",
	ReqCreateMatch:         "CREATE_MATCH",
	ReqJoinMatch:           "JOIN_MATCH",
	ReqLeaveMatch:          "LEAVE_MATCH",
	ReqMatchChangeSlot:     "MATCH_CHANGE_SLOT",
	ReqMatchReady:          "MATCH_READY",
	ReqMatchLock:           "MATCH_LOCK",
	ReqMatchChangeSettings: "MATCH_CHANGE_SETTINGS",
	ReqMatchStart:          "MATCH_START",
	ReqMatchScoreUpdate:    "MATCH_SCORE_UPDATE",
	ReqMatchComplete:       "MATCH_COMPLETE",
	ReqMatchChangeMods:     "MATCH_CHANGE_MODS",
	ReqMatchLoadComplete:   "MATCH_LOAD_COMPLETE",
	ReqMatchNoBeatmap:      "MATCH_NO_BEATMAP",
	ReqMatchNotReady:       "MATCH_NOT_READY",
	ReqMatchFailed:         "MATCH_FAILED",
	ReqMatchHasBeatmap:     "MATCH_HAS_BEATMAP",
	ReqMatchSkip:           "MATCH_SKIP",
	ReqJoinChannel:         "JOIN_CHANNEL",
	ReqBeatmapInfo:         "BEATMAP_INFO",
	ReqMatchTransferHost:   "MATCH_TRANSFER_HOST",
	ReqAddFriend:           "ADD_FRIEND",
	ReqRemoveFriend:        "REMOVE_FRIEND",
	ReqMatchChangeTeam:     "MATCH_CHANGE_TEAM",
	ReqLeaveChannel:        "LEAVE_CHANNEL",
	ReqReceiveUpdates:      "RECEIVE_UPDATES",
	ReqSetAwayMessage:      "SET_AWAY_MESSAGE",
	ReqStatsRequest:        "STATS_REQUEST",
	ReqMatchInvite:         "MATCH_INVITE",
	ReqMatchChangePassword: "MATCH_CHANGE_PASSWORD",
	ReqTournamentMatchInfo: "TOURNAMENT_MATCH_INFO",
	ReqPresenceRequest:     "PRESENCE_REQUEST",
	ReqPresenceRequestAll:  "PRESENCE_REQUEST_ALL",
	ReqChangeFriendOnlyDMs: "CHANGE_FRIENDONLY_DMS",

	RespLoginReply:               "LOGIN_REPLY",
	RespSendMessage:              "SEND_MESSAGE",
	RespPing:                     "PING",
	RespIrcJoin:                  "IRC_JOIN",
	RespIrcQuit:                  "IRC_QUIT",
	RespUserStats:                "USER_STATS",
	RespUserQuit:                 "USER_QUIT",
	RespSpectatorJoined:          "SPECTATOR_JOINED",
	RespSpectatorLeft:            "SPECTATOR_LEFT",
	RespSpectateFrames:           "SPECTATE_FRAMES",
	RespCantSpectate:             "CANT_SPECTATE",
	RespAnnounce:                 "ANNOUNCE",
	RespUpdateMatch:              "UPDATE_MATCH",
	RespNewMatch:                 "NEW_MATCH",
	RespDisbandMatch:             "DISBAND_MATCH",
	RespLobbyJoin:                "LOBBY_JOIN",
	RespLobbyPart:                "LOBBY_PART",
	RespMatchJoinSuccess:         "MATCH_JOIN_SUCCESS",
	RespMatchJoinFail:            "MATCH_JOIN_FAIL",
	RespFellowSpectatorJoined:    "FELLOW_SPECTATOR_JOINED",
	RespFellowSpectatorLeft:      "FELLOW_SPECTATOR_LEFT",
	RespMatchStart:               "MATCH_START",
	RespMatchScoreUpdate:         "MATCH_SCORE_UPDATE",
	RespMatchTransferHost:        "MATCH_TRANSFER_HOST",
	RespMatchAllPlayersLoaded:    "MATCH_ALL_PLAYERS_LOADED",
	RespMatchPlayerFailed:        "MATCH_PLAYER_FAILED",
	RespMatchComplete:            "MATCH_COMPLETE",
	RespMatchSkip:                "MATCH_SKIP",
	RespChannelJoinSuccess:       "CHANNEL_JOIN_SUCCESS",
	RespChannelAvailable:         "CHANNEL_AVAILABLE",
	RespChannelRevoked:           "CHANNEL_REVOKED",
	RespChannelAvailableAutojoin: "CHANNEL_AVAILABLE_AUTOJOIN",
	RespBeatmapInfoReply:         "BEATMAP_INFO_REPLY",
	RespLoginPermissions:         "LOGIN_PERMISSIONS",
	RespFriendsList:              "FRIENDS_LIST",
	RespProtocolVersion:          "PROTOCOL_VERSION",
	RespMenuIcon:                 "MENU_ICON",
	RespMonitor:                  "MONITOR",
	RespMatchPlayerSkipped:       "MATCH_PLAYER_SKIPPED",
	RespUserPresence:             "USER_PRESENCE",
	RespInvite:                   "INVITE",
	RespChannelInfoComplete:      "CHANNEL_INFO_COMPLETE",
	RespMatchChangePassword:      "MATCH_CHANGE_PASSWORD",
	RespSilenceInfo:              "SILENCE_INFO",
	RespUserSilenced:             "USER_SILENCED",
	RespUserPresenceSingle:       "USER_PRESENCE_SINGLE",
	RespUserPresenceBundle:       "USER_PRESENCE_BUNDLE",
	RespUserDMBlocked:            "USER_DM_BLOCKED",
	RespTargetIsSilenced:         "TARGET_IS_SILENCED",
}

func (p PacketType) String() string {
	if name, ok := packetNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsResponse reports whether p is a server-to-client packet.
func (p PacketType) IsResponse() bool { return p >= RespLoginReply }
