package bancho

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/prismosu/banchod/internal/clients"
	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/db"
	"github.com/prismosu/banchod/internal/protocol"
)

// loginRequest is the parsed three-line handshake body.
type loginRequest struct {
	username    string
	passwordMD5 string

	versionString string
	version       int
	isTourney     bool
	utcOffset     int8
	displayCity   bool
	friendOnlyDMs bool

	osuMD5        string
	adapters      string
	adaptersMD5   string
	uninstallID   string
	diskSignature string
}

// parseLoginRequest parses the handshake lines: username, password md5
// and the client descriptor
// `version|utc_offset|display_city|adapters_block|dms`.
func parseLoginRequest(username, password, descriptor string) (*loginRequest, error) {
	parts := strings.Split(descriptor, "|")
	if len(parts) < 5 {
		return nil, fmt.Errorf("descriptor has %d fields, want 5", len(parts))
	}

	offset, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("utc offset %q: %w", parts[1], err)
	}

	adapters := strings.Split(parts[3], ":")
	if len(adapters) < 5 {
		return nil, fmt.Errorf("adapters block has %d fields, want 5", len(adapters))
	}

	version := parts[0]
	req := &loginRequest{
		username:      strings.TrimSpace(username),
		passwordMD5:   password,
		versionString: version,
		version:       parseVersionNumber(version),
		isTourney:     strings.Contains(version, "tourney"),
		utcOffset:     int8(offset),
		displayCity:   parts[2] == "1",
		friendOnlyDMs: parts[4] == "1",
		osuMD5:        adapters[0],
		adapters:      adapters[1],
		adaptersMD5:   adapters[2],
		uninstallID:   adapters[3],
		diskSignature: adapters[4],
	}
	if req.version == 0 {
		return nil, fmt.Errorf("unparseable version %q", version)
	}
	return req, nil
}

// parseVersionNumber extracts the numeric date-stamp from a client
// version like "b20130815.1" or "b20130815tourney".
func parseVersionNumber(version string) int {
	version = strings.TrimPrefix(version, "b")
	end := 0
	for end < len(version) && version[end] >= '0' && version[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(version[:end])
	return n
}

// adaptersConsistent verifies the self-reported adapters hash.
func adaptersConsistent(req *loginRequest) bool {
	sum := md5.Sum([]byte(req.adapters))
	return hex.EncodeToString(sum[:]) == req.adaptersMD5
}

// sendLoginError writes a login reply synchronously; the write pump is
// not running during the handshake.
func (s *Session) sendLoginError(code int) {
	if s.cohort == nil {
		return
	}
	data, ok, err := s.cohort.Encode(clients.RespLoginReply, code)
	if !ok || err != nil {
		return
	}
	s.writeRaw(data)
}

// sendRawAnnounce writes an announce synchronously during handshake.
func (s *Session) sendRawAnnounce(text string) {
	if s.cohort == nil {
		return
	}
	data, ok, err := s.cohort.Encode(clients.RespAnnounce, text)
	if !ok || err != nil {
		return
	}
	s.writeRaw(data)
}

// handleLogin runs the full authentication flow. A nil return means
// the session reached LIVE; any error closes the connection.
func (srv *Server) handleLogin(s *Session, username, password, descriptor string) error {
	req, err := parseLoginRequest(username, password, descriptor)
	if err != nil {
		s.writeRaw([]byte("no.\r\n"))
		return fmt.Errorf("parsing login request: %w", err)
	}

	s.versionString = req.versionString
	s.version = req.version
	s.isTourney = req.isTourney
	s.utcOffset = req.utcOffset
	s.displayCity = req.displayCity
	s.cohort = srv.registry.Resolve(req.version)

	if !adaptersConsistent(req) {
		s.writeRaw([]byte("no.\r\n"))
		return fmt.Errorf("adapters hash mismatch for %q", req.username)
	}

	if req.version < srv.cfg.MinClientVersion ||
		(srv.cfg.MaxClientVersion > 0 && req.version > srv.cfg.MaxClientVersion) {
		s.sendRawAnnounce("Your client version is not supported.")
		s.sendLoginError(constants.LoginUpdateNeeded)
		return fmt.Errorf("unsupported version %d", req.version)
	}

	user, err := srv.db.Users.FetchByName(srv.ctx, req.username)
	if err != nil {
		s.sendLoginError(constants.LoginServerError)
		return fmt.Errorf("fetching user %q: %w", req.username, err)
	}
	if user == nil {
		s.sendLoginError(constants.LoginAuthenticationError)
		return fmt.Errorf("unknown user %q", req.username)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordBcrypt), []byte(req.passwordMD5)); err != nil {
		s.sendLoginError(constants.LoginAuthenticationError)
		return fmt.Errorf("bad password for %q", req.username)
	}

	if !user.Activated {
		s.sendLoginError(constants.LoginNotActivated)
		return fmt.Errorf("user %q not activated", req.username)
	}
	if srv.restricted(user) {
		srv.cache.Leaderboards.Remove(user.ID)
		s.sendLoginError(constants.LoginBanned)
		return fmt.Errorf("user %q restricted", req.username)
	}

	if banned, err := srv.hardwareBanned(user.ID, req); err != nil {
		slog.Error("hardware check failed", "user", user.Name, "error", err)
	} else if banned {
		s.sendLoginError(constants.LoginBanned)
		return fmt.Errorf("banned hardware for %q", req.username)
	}

	perms := constants.Permissions(user.Permissions)
	if srv.cfg.Maintenance && !perms.Has(constants.PermAdmin) {
		s.sendRawAnnounce("Bancho is in maintenance mode, please check back later.")
		s.sendLoginError(constants.LoginServerError)
		return fmt.Errorf("maintenance mode rejects %q", req.username)
	}

	supporter := srv.cfg.FreeSupporter ||
		(user.SupporterEnd != nil && user.SupporterEnd.After(time.Now()))
	if supporter && !perms.Has(constants.PermSubscriber) {
		perms |= constants.PermSubscriber
		user.Permissions = int32(perms)
	}

	if req.isTourney {
		if !supporter {
			s.sendLoginError(constants.LoginAuthenticationError)
			return fmt.Errorf("tourney stream without supporter for %q", req.username)
		}
		if srv.players.TourneyCount(user.ID) >= constants.MaxTourneyClients {
			s.sendLoginError(constants.LoginAuthenticationError)
			return fmt.Errorf("tourney stream limit reached for %q", req.username)
		}
	} else if other := srv.players.ByID(user.ID); other != nil {
		// The newcomer wins; the old session is told and dropped.
		other.Send(clients.RespAnnounce, "You have logged in from another location.")
		go other.Close()
	}

	stats, err := srv.db.Users.FetchStats(srv.ctx, user.ID, user.PreferredMode)
	if err != nil {
		s.sendLoginError(constants.LoginServerError)
		return fmt.Errorf("fetching stats for %q: %w", req.username, err)
	}

	friends, err := srv.db.Relationships.FetchFriendIDs(srv.ctx, user.ID)
	if err != nil {
		slog.Error("fetch friends failed", "user", user.Name, "error", err)
	}

	s.mu.Lock()
	s.user = user
	s.stats = stats
	s.friends = friends
	s.friendOnlyDMs = req.friendOnlyDMs
	s.status = protocol.StatusUpdate{Mode: constants.GameMode(user.PreferredMode)}
	if user.SilenceEnd != nil {
		s.silenceEnd = *user.SilenceEnd
	}
	s.hardware = db.ClientRow{
		UserID:        user.ID,
		Executable:    req.osuMD5,
		Adapters:      req.adapters,
		UninstallID:   req.uninstallID,
		DiskSignature: req.diskSignature,
	}
	s.mu.Unlock()
	s.loggedIn.Store(true)

	srv.recordLogin(s)
	go s.writePump()
	srv.loginEpilogue(s)

	slog.Info("login",
		"user", user.Name,
		"id", user.ID,
		"version", req.versionString,
		"cohort", s.cohort.Version,
		"tourney", req.isTourney,
		"client", s.host)
	return nil
}

// restricted decides account standing. The latest infringement record
// wins when present; the user row is the fallback.
func (srv *Server) restricted(user *db.User) bool {
	inf, err := srv.db.Infringements.FetchLatestRestriction(srv.ctx, user.ID)
	if err != nil {
		slog.Error("fetch restriction failed", "user", user.Name, "error", err)
		return user.Restricted
	}
	if inf == nil {
		return user.Restricted
	}
	if inf.IsPermanent {
		return true
	}
	if inf.Length != nil {
		return inf.Length.After(time.Now())
	}
	return user.Restricted
}

// hardwareBanned reports whether the hardware triple the client sent
// was flagged on a previous login.
func (srv *Server) hardwareBanned(userID int32, req *loginRequest) (bool, error) {
	rows, err := srv.db.Clients.FetchWithoutExecutable(srv.ctx, userID,
		req.adapters, req.uninstallID, req.diskSignature)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Banned {
			return true, nil
		}
	}
	return false, nil
}

// recordLogin writes the audit rows: login history and the hardware
// fingerprint.
func (srv *Server) recordLogin(s *Session) {
	if err := srv.db.Logins.Create(srv.ctx, s.ID(), s.Token(), s.Host(), s.versionString); err != nil {
		slog.Error("record login failed", "user", s.Name(), "error", err)
	}
	s.mu.Lock()
	hw := s.hardware
	s.mu.Unlock()
	if err := srv.db.Clients.Create(srv.ctx, hw); err != nil {
		slog.Error("record client hardware failed", "user", s.Name(), "error", err)
	}
	if err := srv.db.Users.TouchActivity(srv.ctx, s.ID()); err != nil {
		slog.Error("touch activity failed", "user", s.Name(), "error", err)
	}
}

// loginEpilogue delivers the post-authentication packet sequence and
// publishes the new player to the rest of the server.
func (srv *Server) loginEpilogue(s *Session) {
	s.Send(clients.RespProtocolVersion, constants.ProtocolVersion)
	s.Send(clients.RespLoginReply, s.ID())
	if srv.cfg.MenuIconImage != "" {
		s.Send(clients.RespMenuIcon, srv.cfg.MenuIconImage+"|"+srv.cfg.MenuIconURL)
	}
	s.Send(clients.RespLoginPermissions, int32(s.Permissions()))
	s.SendPresenceOf(s)
	s.SendStatsOf(s)
	s.SendBotPresence()
	s.Send(clients.RespFriendsList, s.Friends())

	// Per-user spectator channel, alive for the whole session.
	srv.channels.Add(newChannel(srv, specChannelName(s.ID()), "Spectator chat", srv.bot.Name(), false, 0, 0))

	for _, c := range srv.channels.Public() {
		if !c.CanRead(s.Permissions()) {
			continue
		}
		if srv.isAutojoin(c.Name()) {
			s.Send(clients.RespChannelAvailableAutojoin, c.wire())
			c.Add(s)
			continue
		}
		s.Send(clients.RespChannelAvailable, c.wire())
	}
	s.Send(clients.RespChannelInfoComplete, nil)

	if s.Silenced() {
		s.Send(clients.RespSilenceInfo, s.SilenceSecondsLeft())
	}

	srv.players.Add(s)
	srv.cache.Usercount.Increment()
	srv.cache.Status.Update(s.ID(), s.Status())
	if stats := s.statsRow(); stats != nil {
		srv.cache.Leaderboards.Update(s.ID(), constants.GameMode(stats.Mode), float64(stats.PP), stats.RankedScore)
	}

	// Everyone learns about the newcomer; the newcomer learns about
	// everyone.
	for _, other := range srv.players.Primaries() {
		if other.ID() == s.ID() {
			continue
		}
		other.SendPresenceOf(s)
		other.SendStatsOf(s)
	}
	srv.sendOnlinePresence(s)

	for _, lobbyist := range srv.players.InLobby() {
		s.Send(clients.RespLobbyJoin, lobbyist.ID())
	}
}

func (s *Session) statsRow() *db.ModeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// sendOnlinePresence tells the new client who is online. Cohorts with
// the presence bundle get chunked id lists; older ones get individual
// presence packets.
func (srv *Server) sendOnlinePresence(s *Session) {
	if s.cohort.SupportsResponse(clients.RespUserPresenceBundle) {
		ids := srv.players.IDs()
		for start := 0; start < len(ids); start += constants.PresenceBundleSize {
			end := min(start+constants.PresenceBundleSize, len(ids))
			s.Send(clients.RespUserPresenceBundle, ids[start:end])
		}
		return
	}
	for _, other := range srv.players.Primaries() {
		if other.ID() == s.ID() {
			continue
		}
		s.SendPresenceOf(other)
	}
}

func (srv *Server) isAutojoin(name string) bool {
	for _, c := range srv.cfg.AutojoinChannels {
		if c == name {
			return true
		}
	}
	return false
}
