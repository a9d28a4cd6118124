package bancho

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

// matchSlot is the server-side view of one seat: the wire fields plus
// the gameplay bookkeeping that never leaves the server.
type matchSlot struct {
	session   *Session
	status    constants.SlotStatus
	team      constants.SlotTeam
	mods      constants.Mods
	loaded    bool
	skipped   bool
	failed    bool
	lastFrame *protocol.ScoreFrame
}

func (s *matchSlot) reset(status constants.SlotStatus) {
	s.session = nil
	s.status = status
	s.team = constants.TeamNeutral
	s.mods = constants.NoMod
	s.loaded = false
	s.skipped = false
	s.failed = false
	s.lastFrame = nil
}

// HasPlayer reports whether the slot status implies an occupant.
func (s *matchSlot) HasPlayer() bool {
	return s.status&constants.SlotHasPlayer != 0
}

func (s *matchSlot) copyFrom(o *matchSlot) {
	s.session = o.session
	s.status = o.status
	s.team = o.team
	s.mods = o.mods
	s.loaded = o.loaded
	s.skipped = o.skipped
	s.failed = o.failed
	s.lastFrame = o.lastFrame
}

// Match is one multiplayer lobby. All mutation is serialized by mu;
// packet fan-out happens on slot snapshots taken under the lock.
type Match struct {
	id     int32
	dbID   int32
	server *Server

	mu              sync.Mutex
	name            string
	password        string
	hostID          int32
	matchType       constants.MatchType
	mods            constants.Mods
	beatmapName     string
	beatmapID       int32
	beatmapChecksum string
	prevName        string
	prevID          int32
	prevChecksum    string
	mode            constants.GameMode
	scoring         constants.ScoringType
	teamType        constants.TeamType
	freemod         bool
	seed            int32
	inProgress      bool
	slots           [constants.MaxMatchSlots]matchSlot
	banned          map[int32]bool
	startTimer      *time.Timer

	lastActivity atomic.Int64

	chat *Channel

	scoreCh chan protocol.ScoreFrame
	flushCh chan chan struct{}
	stopCh  chan struct{}
	stopped sync.Once
}

func newMatch(server *Server, wire protocol.Match) *Match {
	name := wire.Name
	if len(name) > constants.MaxMatchNameLength {
		name = name[:constants.MaxMatchNameLength]
	}
	m := &Match{
		server:          server,
		name:            name,
		password:        wire.Password,
		matchType:       wire.Type,
		mods:            wire.Mods.NormalizeSpeed(),
		beatmapName:     wire.BeatmapText,
		beatmapID:       wire.BeatmapID,
		beatmapChecksum: wire.BeatmapChecksum,
		prevID:          -1,
		mode:            wire.Mode,
		scoring:         wire.ScoringType,
		teamType:        wire.TeamType,
		freemod:         wire.Freemod,
		seed:            wire.Seed,
		banned:          make(map[int32]bool),
		scoreCh:         make(chan protocol.ScoreFrame, 128),
		flushCh:         make(chan chan struct{}),
		stopCh:          make(chan struct{}),
	}
	for i := range m.slots {
		m.slots[i].reset(constants.SlotOpen)
	}
	m.touch()
	go m.scorePump()
	return m
}

// ID returns the lobby id in [1, MaxMatches].
func (m *Match) ID() int32 { return m.id }

// Chat returns the private match channel.
func (m *Match) Chat() *Channel { return m.chat }

// HostID returns the current host's user id.
func (m *Match) HostID() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hostID
}

// Name returns the lobby name.
func (m *Match) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// InProgress reports whether gameplay is running.
func (m *Match) InProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inProgress
}

func (m *Match) touch() {
	m.lastActivity.Store(time.Now().Unix())
}

// IdleSince returns the time of the last lobby activity.
func (m *Match) IdleSince() time.Time {
	return time.Unix(m.lastActivity.Load(), 0)
}

// scorePump fans score frames out in arrival order. A flush request
// drains everything already queued before acknowledging, which lets
// completion wait for in-flight frames.
func (m *Match) scorePump() {
	for {
		select {
		case frame := <-m.scoreCh:
			m.broadcastFrame(frame)
		case done := <-m.flushCh:
			m.drainScores()
			close(done)
		case <-m.stopCh:
			return
		}
	}
}

func (m *Match) drainScores() {
	for {
		select {
		case frame := <-m.scoreCh:
			m.broadcastFrame(frame)
		default:
			return
		}
	}
}

func (m *Match) broadcastFrame(frame protocol.ScoreFrame) {
	for _, s := range m.sessions() {
		s.Send(clients.RespMatchScoreUpdate, frame)
	}
}

func (m *Match) flushScores() {
	done := make(chan struct{})
	select {
	case m.flushCh <- done:
		<-done
	case <-m.stopCh:
	}
}

func (m *Match) stopPump() {
	m.stopped.Do(func() { close(m.stopCh) })
}

// sessions returns every occupant under a slot snapshot.
func (m *Match) sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionsLocked()
}

func (m *Match) sessionsLocked() []*Session {
	var out []*Session
	for i := range m.slots {
		if m.slots[i].session != nil {
			out = append(out, m.slots[i].session)
		}
	}
	return out
}

func (m *Match) slotOf(s *Session) int {
	for i := range m.slots {
		if m.slots[i].session != nil && m.slots[i].session.Token() == s.Token() {
			return i
		}
	}
	return -1
}

// SlotIndex returns the seat of the session, -1 when absent.
func (m *Match) SlotIndex(s *Session) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slotOf(s)
}

// wireLocked builds the broadcast shape. Legacy clients without
// per-slot mods ignore the Mods fields.
func (m *Match) wireLocked(includePassword bool) protocol.Match {
	w := protocol.Match{
		ID:              int16(m.id),
		InProgress:      m.inProgress,
		Type:            m.matchType,
		Mods:            m.mods,
		Name:            m.name,
		BeatmapText:     m.beatmapName,
		BeatmapID:       m.beatmapID,
		BeatmapChecksum: m.beatmapChecksum,
		HostID:          m.hostID,
		Mode:            m.mode,
		ScoringType:     m.scoring,
		TeamType:        m.teamType,
		Freemod:         m.freemod,
		Seed:            m.seed,
	}
	if includePassword {
		w.Password = m.password
	} else if m.password != "" {
		// Lobby viewers only learn that a password exists.
		w.Password = " "
	}
	for i := range m.slots {
		w.Slots[i] = protocol.Slot{
			Status: m.slots[i].status,
			Team:   m.slots[i].team,
			Mods:   m.slots[i].mods,
		}
		if m.slots[i].session != nil {
			w.Slots[i].UserID = m.slots[i].session.ID()
		}
	}
	return w
}

// Wire returns the lobby state as sent to its members.
func (m *Match) Wire() protocol.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wireLocked(true)
}

// broadcastUpdate pushes the current state to members and lobby
// viewers. Members see the password, the lobby does not.
func (m *Match) broadcastUpdate() {
	m.mu.Lock()
	full := m.wireLocked(true)
	masked := m.wireLocked(false)
	members := m.sessionsLocked()
	m.mu.Unlock()

	for _, s := range members {
		s.Send(clients.RespUpdateMatch, full)
	}
	for _, s := range m.server.players.InLobby() {
		s.Send(clients.RespUpdateMatch, masked)
	}
	m.touch()
}

func (m *Match) logEvent(typ constants.EventType, data map[string]any) {
	// No archive row, nothing to attach events to.
	if m.dbID == 0 {
		return
	}
	if err := m.server.db.Events.Create(m.server.ctx, m.dbID, typ, data); err != nil {
		slog.Error("archive match event failed", "match", m.id, "type", int(typ), "error", err)
	}
}

// Join seats a session. The host bypasses the password check. Returns
// false when the password is wrong, the player is banned or no seat is
// free; the caller answers with MATCH_JOIN_FAIL.
func (m *Match) Join(s *Session, password string) bool {
	m.mu.Lock()

	if m.banned[s.ID()] {
		m.mu.Unlock()
		return false
	}
	isHost := s.ID() == m.hostID
	if !isHost && m.password != "" && m.password != password {
		m.mu.Unlock()
		return false
	}

	idx := -1
	for i := range m.slots {
		if m.slots[i].status == constants.SlotOpen {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false
	}

	m.slots[idx].reset(constants.SlotNotReady)
	m.slots[idx].session = s
	if m.teamType.FreeForAll() {
		m.slots[idx].team = constants.TeamRed
	}
	wire := m.wireLocked(true)
	m.mu.Unlock()

	s.setMatch(m)
	s.Send(clients.RespMatchJoinSuccess, wire)
	m.chat.Add(s)
	m.logEvent(constants.EventJoin, map[string]any{"user_id": s.ID(), "name": s.Name()})
	m.broadcastUpdate()
	return true
}

// Leave unseats a session. When the lobby empties it is disbanded;
// when the host leaves, the host rotates to the next occupied seat.
func (m *Match) Leave(s *Session) {
	m.chat.Remove(s)
	s.setMatch(nil)

	m.mu.Lock()
	idx := m.slotOf(s)
	if idx < 0 {
		m.mu.Unlock()
		return
	}

	wasHost := s.ID() == m.hostID
	if m.slots[idx].status == constants.SlotLocked {
		m.slots[idx].reset(constants.SlotLocked)
	} else {
		m.slots[idx].reset(constants.SlotOpen)
	}

	// Host left while picking a beatmap: bring the previous one back.
	if wasHost && m.beatmapID == -1 && m.prevID != -1 {
		m.beatmapID = m.prevID
		m.beatmapName = m.prevName
		m.beatmapChecksum = m.prevChecksum
	}

	remaining := m.sessionsLocked()
	if len(remaining) == 0 {
		m.mu.Unlock()
		m.disband()
		m.logEvent(constants.EventLeave, map[string]any{"user_id": s.ID(), "name": s.Name()})
		return
	}

	var newHost int32
	if wasHost {
		for i := range m.slots {
			if m.slots[i].session != nil {
				m.hostID = m.slots[i].session.ID()
				m.slots[i].session.Send(clients.RespMatchTransferHost, nil)
				newHost = m.hostID
				break
			}
		}
	}
	m.mu.Unlock()

	if newHost != 0 {
		m.logEvent(constants.EventHost, map[string]any{"user_id": newHost})
	}
	m.logEvent(constants.EventLeave, map[string]any{"user_id": s.ID(), "name": s.Name()})
	m.broadcastUpdate()
}

// disband removes the lobby from the registry and settles the archive
// row: played matches get an end timestamp, never-started ones are
// deleted outright.
func (m *Match) disband() {
	m.stopPump()
	m.server.matches.Remove(m.id)
	m.server.channels.Remove(m.chat.Name())

	for _, s := range m.server.players.InLobby() {
		s.Send(clients.RespDisbandMatch, m.id)
	}

	m.logEvent(constants.EventDisband, nil)

	if m.dbID == 0 {
		return
	}
	started, err := m.server.db.Events.FetchLastByType(m.server.ctx, m.dbID, constants.EventStart)
	if err != nil {
		slog.Error("lookup start event failed", "match", m.id, "error", err)
		return
	}
	if started != nil {
		if err := m.server.db.Matches.SetEnded(m.server.ctx, m.dbID); err != nil {
			slog.Error("mark match ended failed", "match", m.id, "error", err)
		}
		return
	}
	if err := m.server.db.Matches.Delete(m.server.ctx, m.dbID); err != nil {
		slog.Error("delete unplayed match failed", "match", m.id, "error", err)
	}
}

// Kick force-removes a player, used by slot locking.
func (m *Match) Kick(s *Session) {
	m.Leave(s)
	s.Send(clients.RespMatchJoinFail, nil)
}

// Ban blocks a player id from rejoining and kicks them if seated.
// Host only.
func (m *Match) Ban(host *Session, targetID int32) {
	m.mu.Lock()
	if host.ID() != m.hostID {
		m.mu.Unlock()
		return
	}
	m.banned[targetID] = true
	var seated *Session
	for i := range m.slots {
		if m.slots[i].session != nil && m.slots[i].session.ID() == targetID {
			seated = m.slots[i].session
			break
		}
	}
	m.mu.Unlock()

	if seated != nil {
		m.Kick(seated)
	}
}

// unreadyLocked drops every Ready slot back to NotReady.
func (m *Match) unreadyLocked() {
	for i := range m.slots {
		if m.slots[i].status == constants.SlotReady {
			m.slots[i].status = constants.SlotNotReady
		}
	}
}

// ChangeSettings applies a host settings update: name, password, team
// and scoring modes, mode, beatmap. Mods travel separately.
func (m *Match) ChangeSettings(s *Session, wire protocol.Match) {
	m.mu.Lock()
	if s.ID() != m.hostID || m.inProgress {
		m.mu.Unlock()
		return
	}

	if wire.Name != "" && wire.Name != m.name {
		name := wire.Name
		if len(name) > constants.MaxMatchNameLength {
			name = name[:constants.MaxMatchNameLength]
		}
		m.name = name
		if m.dbID != 0 {
			if err := m.server.db.Matches.UpdateName(m.server.ctx, m.dbID, name); err != nil {
				slog.Error("update match name failed", "match", m.id, "error", err)
			}
		}
	}

	if wire.BeatmapID != m.beatmapID {
		if wire.BeatmapID == -1 && m.beatmapID != -1 {
			// Host went into song select; remember what was picked.
			m.prevID = m.beatmapID
			m.prevName = m.beatmapName
			m.prevChecksum = m.beatmapChecksum
		}
		m.beatmapID = wire.BeatmapID
		m.beatmapName = wire.BeatmapText
		m.beatmapChecksum = wire.BeatmapChecksum
		m.unreadyLocked()
		for i := range m.slots {
			if m.slots[i].status == constants.SlotNoMap && m.beatmapID != -1 {
				m.slots[i].status = constants.SlotNotReady
			}
		}
	}

	if wire.TeamType != m.teamType {
		m.teamType = wire.TeamType
		if m.teamType.FreeForAll() {
			for i := range m.slots {
				if m.slots[i].session != nil && m.slots[i].team == constants.TeamNeutral {
					m.slots[i].team = constants.TeamRed
				}
			}
		} else {
			for i := range m.slots {
				m.slots[i].team = constants.TeamNeutral
			}
		}
	}
	m.scoring = wire.ScoringType
	m.mode = wire.Mode

	if wire.Freemod != m.freemod {
		m.freemod = wire.Freemod
		if m.freemod {
			// Split: the match keeps speed mods, players inherit the rest.
			shared := m.mods & constants.FreeModAllowed
			m.mods &= constants.SpeedMods
			for i := range m.slots {
				if m.slots[i].session != nil {
					m.slots[i].mods = shared
				}
			}
		} else {
			if idx := m.hostSlotLocked(); idx >= 0 {
				m.mods = (m.mods | m.slots[idx].mods).NormalizeSpeed()
			}
			for i := range m.slots {
				m.slots[i].mods = constants.NoMod
			}
		}
		m.unreadyLocked()
	}
	m.mu.Unlock()

	m.broadcastUpdate()
}

func (m *Match) hostSlotLocked() int {
	for i := range m.slots {
		if m.slots[i].session != nil && m.slots[i].session.ID() == m.hostID {
			return i
		}
	}
	return -1
}

// ChangeMods applies a mods update. In freemod everyone owns their
// slot mods and the host additionally owns the speed mods; otherwise
// the host owns everything. Any change unreadies the lobby.
func (m *Match) ChangeMods(s *Session, mods constants.Mods) {
	m.mu.Lock()
	isHost := s.ID() == m.hostID

	if m.freemod {
		if isHost {
			m.mods = (mods & constants.SpeedMods).NormalizeSpeed()
		}
		if idx := m.slotOf(s); idx >= 0 {
			m.slots[idx].mods = mods & constants.FreeModAllowed
		}
	} else {
		if !isHost {
			m.mu.Unlock()
			return
		}
		m.mods = mods.NormalizeSpeed()
	}
	m.unreadyLocked()
	m.mu.Unlock()

	m.broadcastUpdate()
}

// ChangeSlot moves the caller to an open seat.
func (m *Match) ChangeSlot(s *Session, target int) {
	m.mu.Lock()
	if target < 0 || target >= constants.MaxMatchSlots || m.inProgress {
		m.mu.Unlock()
		return
	}
	cur := m.slotOf(s)
	if cur < 0 || m.slots[target].status != constants.SlotOpen {
		m.mu.Unlock()
		return
	}
	m.slots[target].copyFrom(&m.slots[cur])
	m.slots[cur].reset(constants.SlotOpen)
	m.mu.Unlock()

	m.broadcastUpdate()
}

// Lock toggles a seat between Open and Locked. A seated non-host
// player is kicked. The host cannot lock their own seat.
func (m *Match) Lock(s *Session, target int) {
	m.mu.Lock()
	if s.ID() != m.hostID || target < 0 || target >= constants.MaxMatchSlots {
		m.mu.Unlock()
		return
	}
	slot := &m.slots[target]
	if slot.session != nil && slot.session.ID() == m.hostID {
		m.mu.Unlock()
		return
	}

	var kicked *Session
	switch {
	case slot.session != nil:
		kicked = slot.session
		slot.reset(constants.SlotLocked)
	case slot.status == constants.SlotLocked:
		slot.reset(constants.SlotOpen)
	default:
		slot.reset(constants.SlotLocked)
	}
	m.mu.Unlock()

	if kicked != nil {
		m.Kick(kicked)
	}
	m.broadcastUpdate()
}

// ChangeTeam flips the caller between Red and Blue, free-for-all
// modes only.
func (m *Match) ChangeTeam(s *Session) {
	m.mu.Lock()
	if !m.teamType.FreeForAll() || m.inProgress {
		m.mu.Unlock()
		return
	}
	idx := m.slotOf(s)
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	if m.slots[idx].team == constants.TeamNeutral {
		m.slots[idx].team = constants.TeamRed
	}
	m.slots[idx].team = m.slots[idx].team.Opposite()
	m.mu.Unlock()

	m.broadcastUpdate()
}

// SetStatus moves the caller's seat to the given status (Ready,
// NotReady, NoMap and back).
func (m *Match) SetStatus(s *Session, status constants.SlotStatus) {
	m.mu.Lock()
	idx := m.slotOf(s)
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	m.slots[idx].status = status
	m.mu.Unlock()

	m.broadcastUpdate()
}

// TransferHost hands the lobby to the player in the target seat.
func (m *Match) TransferHost(s *Session, target int) {
	m.mu.Lock()
	if s.ID() != m.hostID || target < 0 || target >= constants.MaxMatchSlots {
		m.mu.Unlock()
		return
	}
	next := m.slots[target].session
	if next == nil {
		m.mu.Unlock()
		return
	}
	m.hostID = next.ID()
	m.mu.Unlock()

	next.Send(clients.RespMatchTransferHost, nil)
	m.logEvent(constants.EventHost, map[string]any{"user_id": next.ID()})
	m.broadcastUpdate()
}

// ChangePassword updates the join password. Host only.
func (m *Match) ChangePassword(s *Session, password string) {
	m.mu.Lock()
	if s.ID() != m.hostID {
		m.mu.Unlock()
		return
	}
	m.password = password
	members := m.sessionsLocked()
	m.mu.Unlock()

	for _, p := range members {
		p.Send(clients.RespMatchChangePassword, password)
	}
	m.broadcastUpdate()
}

// Start begins gameplay for every seated player. Host only, rejected
// while a round is already running.
func (m *Match) Start(s *Session) {
	m.mu.Lock()
	if s.ID() != m.hostID || m.inProgress {
		m.mu.Unlock()
		return
	}
	m.startLocked()
}

// startLocked transitions seated slots to Playing; callers hold mu,
// which is released before fan-out.
func (m *Match) startLocked() {
	m.inProgress = true
	m.cancelTimerLocked()

	var playing []*Session
	for i := range m.slots {
		if !m.slots[i].HasPlayer() {
			continue
		}
		m.slots[i].status = constants.SlotPlaying
		m.slots[i].loaded = false
		m.slots[i].skipped = false
		m.slots[i].failed = false
		m.slots[i].lastFrame = nil
		playing = append(playing, m.slots[i].session)
	}
	wire := m.wireLocked(true)
	beatmapID := m.beatmapID
	checksum := m.beatmapChecksum
	m.mu.Unlock()

	for _, p := range playing {
		p.Send(clients.RespMatchStart, wire)
	}
	m.logEvent(constants.EventStart, map[string]any{
		"time":        time.Now().Unix(),
		"beatmap_id":  beatmapID,
		"beatmap_md5": checksum,
	})
	m.broadcastUpdate()
}

// StartTimer arms a delayed start, capped at MaxStartTimerSeconds.
// A second call rearms; StopTimer cancels.
func (m *Match) StartTimer(s *Session, d time.Duration) {
	if limit := constants.MaxStartTimerSeconds * time.Second; d > limit {
		d = limit
	}

	m.mu.Lock()
	if s.ID() != m.hostID || m.inProgress {
		m.mu.Unlock()
		return
	}
	m.cancelTimerLocked()
	m.startTimer = time.AfterFunc(d, m.timerFired)
	m.mu.Unlock()
}

// StopTimer cancels a pending delayed start.
func (m *Match) StopTimer(s *Session) {
	m.mu.Lock()
	if s.ID() == m.hostID {
		m.cancelTimerLocked()
	}
	m.mu.Unlock()
}

func (m *Match) cancelTimerLocked() {
	if m.startTimer != nil {
		m.startTimer.Stop()
		m.startTimer = nil
	}
}

func (m *Match) timerFired() {
	m.mu.Lock()
	if m.startTimer == nil || m.inProgress {
		m.mu.Unlock()
		return
	}
	m.startTimer = nil
	m.startLocked()
}

// LoadComplete marks the caller loaded; once every playing seat has
// loaded, everyone is released at once.
func (m *Match) LoadComplete(s *Session) {
	m.mu.Lock()
	idx := m.slotOf(s)
	if idx < 0 || m.slots[idx].status != constants.SlotPlaying {
		m.mu.Unlock()
		return
	}
	m.slots[idx].loaded = true

	for i := range m.slots {
		if m.slots[i].status == constants.SlotPlaying && !m.slots[i].loaded {
			m.mu.Unlock()
			return
		}
	}
	players := m.playingLocked()
	m.mu.Unlock()

	for _, p := range players {
		p.Send(clients.RespMatchAllPlayersLoaded, nil)
	}
}

func (m *Match) playingLocked() []*Session {
	var out []*Session
	for i := range m.slots {
		if m.slots[i].status == constants.SlotPlaying && m.slots[i].session != nil {
			out = append(out, m.slots[i].session)
		}
	}
	return out
}

// Skip marks the caller's seat skipped; once every playing seat has
// skipped, the skip fires for everyone.
func (m *Match) Skip(s *Session) {
	m.mu.Lock()
	idx := m.slotOf(s)
	if idx < 0 || m.slots[idx].status != constants.SlotPlaying {
		m.mu.Unlock()
		return
	}
	m.slots[idx].skipped = true
	players := m.playingLocked()

	all := true
	for i := range m.slots {
		if m.slots[i].status == constants.SlotPlaying && !m.slots[i].skipped {
			all = false
			break
		}
	}
	m.mu.Unlock()

	for _, p := range players {
		p.Send(clients.RespMatchPlayerSkipped, int32(idx))
	}
	if all {
		for _, p := range players {
			p.Send(clients.RespMatchSkip, nil)
		}
	}
}

// Fail marks the caller's seat failed and tells the other players.
func (m *Match) Fail(s *Session) {
	m.mu.Lock()
	idx := m.slotOf(s)
	if idx < 0 || m.slots[idx].status != constants.SlotPlaying {
		m.mu.Unlock()
		return
	}
	m.slots[idx].failed = true
	players := m.playingLocked()
	m.mu.Unlock()

	for _, p := range players {
		p.Send(clients.RespMatchPlayerFailed, int32(idx))
	}
}

// ScoreUpdate stamps the frame with the sender's seat, remembers it as
// the slot's latest and queues it for ordered fan-out. Called inline
// on the read path to keep per-sender frame order.
func (m *Match) ScoreUpdate(s *Session, frame protocol.ScoreFrame) {
	m.mu.Lock()
	idx := m.slotOf(s)
	if idx < 0 || !m.inProgress {
		m.mu.Unlock()
		return
	}
	frame.ID = uint8(idx)
	stored := frame
	m.slots[idx].lastFrame = &stored
	if frame.HP == 254 {
		m.slots[idx].failed = true
	}
	m.mu.Unlock()

	select {
	case m.scoreCh <- frame:
	case <-m.stopCh:
	}
	m.touch()
}

// Complete moves the caller's seat to Complete; once no seat is still
// playing the round is settled.
func (m *Match) Complete(s *Session) {
	m.mu.Lock()
	idx := m.slotOf(s)
	if idx < 0 || m.slots[idx].status != constants.SlotPlaying {
		m.mu.Unlock()
		return
	}
	m.slots[idx].status = constants.SlotComplete

	for i := range m.slots {
		if m.slots[i].status == constants.SlotPlaying {
			m.mu.Unlock()
			return
		}
	}
	m.mu.Unlock()

	m.finish()
}

// finish settles a round: waits for queued score frames, archives the
// ranked result and resets the lobby to the idle state.
func (m *Match) finish() {
	m.flushScores()

	m.mu.Lock()
	type result struct {
		userID int32
		name   string
		frame  protocol.ScoreFrame
		order  int
	}
	var results []result
	var played []*Session
	for i := range m.slots {
		if m.slots[i].status != constants.SlotComplete {
			continue
		}
		played = append(played, m.slots[i].session)
		if m.slots[i].lastFrame != nil {
			results = append(results, result{
				userID: m.slots[i].session.ID(),
				name:   m.slots[i].session.Name(),
				frame:  *m.slots[i].lastFrame,
				order:  len(results),
			})
		}
		m.slots[i].status = constants.SlotNotReady
		m.slots[i].loaded = false
		m.slots[i].skipped = false
	}
	m.inProgress = false
	scoring := m.scoring
	mode := m.mode
	m.mu.Unlock()

	rankOf := func(r result) float64 {
		switch scoring {
		case constants.ScoringAccuracy:
			return r.frame.Accuracy(mode)
		case constants.ScoringCombo:
			return float64(r.frame.MaxCombo)
		default:
			return float64(r.frame.TotalScore)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return rankOf(results[i]) > rankOf(results[j])
	})

	ranking := make([]map[string]any, 0, len(results))
	for place, r := range results {
		ranking = append(ranking, map[string]any{
			"place":     place + 1,
			"user_id":   r.userID,
			"name":      r.name,
			"score":     r.frame.TotalScore,
			"accuracy":  r.frame.Accuracy(mode),
			"max_combo": r.frame.MaxCombo,
			"passed":    r.frame.Passed(),
		})
	}
	m.logEvent(constants.EventResult, map[string]any{"ranking": ranking})

	for _, p := range played {
		p.Send(clients.RespMatchComplete, nil)
	}
	m.broadcastUpdate()
}

// Abort cancels an in-progress round without a result, used when a
// client reports a fatal error mid-play.
func (m *Match) Abort() {
	m.mu.Lock()
	if !m.inProgress {
		m.mu.Unlock()
		return
	}
	var playing []*Session
	for i := range m.slots {
		if m.slots[i].status == constants.SlotPlaying || m.slots[i].status == constants.SlotComplete {
			if m.slots[i].session != nil {
				playing = append(playing, m.slots[i].session)
			}
			m.slots[i].status = constants.SlotNotReady
			m.slots[i].loaded = false
			m.slots[i].skipped = false
			m.slots[i].lastFrame = nil
		}
	}
	m.inProgress = false
	m.mu.Unlock()

	m.flushScores()
	for _, p := range playing {
		p.Send(clients.RespMatchComplete, nil)
	}
	m.broadcastUpdate()
}

// historyURL is the public archive page for the match.
func (m *Match) historyURL() string {
	return fmt.Sprintf("https://%s/mp/%d", m.server.cfg.Domain, m.dbID)
}
