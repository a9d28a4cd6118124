package bancho

import (
	"log/slog"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/protocol"
)

// handlerFunc processes one decoded request.
type handlerFunc func(srv *Server, s *Session, v any)

// handlers is the static request dispatch table.
var handlers = map[clients.PacketType]handlerFunc{
	clients.ReqPong:                handlePong,
	clients.ReqExit:                handleExit,
	clients.ReqChangeStatus:        handleChangeStatus,
	clients.ReqRequestStatus:       handleRequestStatus,
	clients.ReqReceiveUpdates:      handleReceiveUpdates,
	clients.ReqPresenceRequest:     handlePresenceRequest,
	clients.ReqPresenceRequestAll:  handlePresenceRequestAll,
	clients.ReqStatsRequest:        handleStatsRequest,
	clients.ReqSetAwayMessage:      handleSetAwayMessage,
	clients.ReqChangeFriendOnlyDMs: handleChangeFriendOnlyDMs,
	clients.ReqAddFriend:           handleAddFriend,
	clients.ReqRemoveFriend:        handleRemoveFriend,
	clients.ReqBeatmapInfo:         handleBeatmapInfo,
	clients.ReqErrorReport:         handleErrorReport,

	clients.ReqSendMessage:        handleSendMessage,
	clients.ReqSendPrivateMessage: handleSendPrivateMessage,
	clients.ReqJoinChannel:        handleJoinChannel,
	clients.ReqLeaveChannel:       handleLeaveChannel,

	clients.ReqStartSpectating: handleStartSpectating,
	clients.ReqStopSpectating:  handleStopSpectating,
	clients.ReqCantSpectate:    handleCantSpectate,
	clients.ReqSendFrames:      handleSendFrames,

	clients.ReqJoinLobby:           handleJoinLobby,
	clients.ReqPartLobby:           handlePartLobby,
	clients.ReqCreateMatch:         handleCreateMatch,
	clients.ReqJoinMatch:           handleJoinMatch,
	clients.ReqLeaveMatch:          handleLeaveMatch,
	clients.ReqMatchChangeSlot:     handleMatchChangeSlot,
	clients.ReqMatchReady:          handleMatchReady,
	clients.ReqMatchNotReady:       handleMatchNotReady,
	clients.ReqMatchNoBeatmap:      handleMatchNoBeatmap,
	clients.ReqMatchHasBeatmap:     handleMatchHasBeatmap,
	clients.ReqMatchLock:           handleMatchLock,
	clients.ReqMatchChangeSettings: handleMatchChangeSettings,
	clients.ReqMatchChangeMods:     handleMatchChangeMods,
	clients.ReqMatchChangeTeam:     handleMatchChangeTeam,
	clients.ReqMatchChangePassword: handleMatchChangePassword,
	clients.ReqMatchTransferHost:   handleMatchTransferHost,
	clients.ReqMatchStart:          handleMatchStart,
	clients.ReqMatchLoadComplete:   handleMatchLoadComplete,
	clients.ReqMatchSkip:           handleMatchSkip,
	clients.ReqMatchFailed:         handleMatchFailed,
	clients.ReqMatchScoreUpdate:    handleMatchScoreUpdate,
	clients.ReqMatchComplete:       handleMatchComplete,
	clients.ReqMatchInvite:         handleMatchInvite,
	clients.ReqTournamentMatchInfo: handleTournamentMatchInfo,
}

// dispatch decodes one frame and routes it. Score updates and chat
// stay on the read path to keep their ordering; everything else runs
// on the worker pool.
func (srv *Server) dispatch(s *Session, frame protocol.Frame) {
	t, known := s.cohort.Request(frame.ID)
	if !known {
		slog.Warn("unknown packet id", "id", frame.ID, "cohort", s.cohort.Version, "user", s.Name())
		return
	}

	var v any
	if dec, ok := s.cohort.Decoder(t); ok {
		decoded, err := dec(protocol.NewReader(frame.Payload))
		if err != nil {
			slog.Warn("decode failed", "packet", t.String(), "user", s.Name(), "error", err)
			return
		}
		v = decoded
	}

	h, ok := handlers[t]
	if !ok {
		slog.Warn("no handler", "packet", t.String(), "user", s.Name())
		return
	}

	switch t {
	case clients.ReqMatchScoreUpdate, clients.ReqSendMessage:
		srv.runHandler(t, h, s, v)
	default:
		srv.workers.Go(func() error {
			srv.runHandler(t, h, s, v)
			return nil
		})
	}
}

// runHandler executes one handler, containing any panic to the frame
// that caused it.
func (srv *Server) runHandler(t clients.PacketType, h handlerFunc, s *Session, v any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panicked", "packet", t.String(), "user", s.Name(), "panic", r)
			if srv.cfg.Debug {
				s.Send(clients.RespAnnounce, "An error occurred while processing your request.")
			}
		}
	}()
	h(srv, s, v)
}

func handlePong(_ *Server, _ *Session, _ any) {}

func handleExit(_ *Server, s *Session, _ any) {
	s.Close()
}

func handleErrorReport(_ *Server, s *Session, v any) {
	report, _ := v.(string)
	slog.Warn("client error report", "user", s.Name(), "report", report)

	// A client falling over mid-round would leave the match hanging.
	if m := s.Match(); m != nil && m.InProgress() {
		m.Abort()
	}
}
