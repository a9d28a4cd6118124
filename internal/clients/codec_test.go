package clients

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

func testMatch() protocol.Match {
	m := protocol.Match{
		ID:              3,
		InProgress:      true,
		Type:            constants.MatchTypeStandard,
		Mods:            constants.Hidden | constants.HardRock,
		Name:            "rar's game",
		Password:        "secret",
		BeatmapText:     "some artist - some song [insane]",
		BeatmapID:       1337,
		BeatmapChecksum: "c8f59bc63079766ebe1552e2d03c2065",
		HostID:          5,
		Mode:            constants.ModeOsu,
		ScoringType:     constants.ScoringScore,
		TeamType:        constants.TeamTypeTeamVs,
		Freemod:         true,
		Seed:            42,
	}
	for i := range m.Slots {
		m.Slots[i] = protocol.Slot{UserID: -1, Status: constants.SlotOpen, Team: constants.TeamNeutral}
	}
	m.Slots[0] = protocol.Slot{UserID: 5, Status: constants.SlotReady, Team: constants.TeamRed, Mods: constants.Hidden}
	m.Slots[1] = protocol.Slot{UserID: 7, Status: constants.SlotNotReady, Team: constants.TeamBlue}
	m.Slots[7].Status = constants.SlotLocked
	return m
}

func TestMatch_RoundTrip_Modern(t *testing.T) {
	m := testMatch()

	w := protocol.NewWriter(256)
	require.NoError(t, encodeMatch(w, m))

	got, err := decodeMatch(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, m, got)
}

func TestMatch_RoundTrip_1700(t *testing.T) {
	m := testMatch()

	w := protocol.NewWriter(256)
	require.NoError(t, encodeMatch1700(w, m))

	got, err := decodeMatch1700(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)

	decoded := got.(protocol.Match)
	assert.Equal(t, m.ID, decoded.ID)
	assert.Equal(t, m.Name, decoded.Name)
	assert.Equal(t, m.Password, decoded.Password)
	assert.Equal(t, m.Mods, decoded.Mods)
	assert.Equal(t, m.HostID, decoded.HostID)
	assert.Equal(t, m.TeamType, decoded.TeamType)

	// The narrow form has no freemod block, slot mods or seed.
	assert.False(t, decoded.Freemod)
	assert.Zero(t, decoded.Seed)
	assert.Zero(t, decoded.Slots[0].Mods)
	assert.Equal(t, m.Slots[0].UserID, decoded.Slots[0].UserID)
	assert.Equal(t, m.Slots[0].Team, decoded.Slots[0].Team)
}

func TestMatch_RoundTrip_323(t *testing.T) {
	m := testMatch()

	w := protocol.NewWriter(256)
	require.NoError(t, encodeMatch323(w, m))

	got, err := decodeMatch323(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)

	decoded := got.(protocol.Match)
	assert.Equal(t, m.ID, decoded.ID)
	assert.Equal(t, m.Name, decoded.Name)
	assert.Equal(t, m.BeatmapID, decoded.BeatmapID)
	assert.Equal(t, m.Slots[1].UserID, decoded.Slots[1].UserID)

	// No password, teams or host on the wire.
	assert.Empty(t, decoded.Password)
	assert.Equal(t, int32(-1), decoded.HostID)
	assert.Equal(t, constants.TeamNeutral, decoded.Slots[0].Team)
}

func TestScoreFrame_RoundTrip(t *testing.T) {
	frame := protocol.ScoreFrame{
		Time:         12345,
		ID:           2,
		Count300:     100,
		Count100:     12,
		Count50:      1,
		CountGeki:    20,
		CountKatu:    4,
		CountMiss:    3,
		TotalScore:   725910,
		MaxCombo:     180,
		CurrentCombo: 23,
		Perfect:      false,
		HP:           160,
		TagByte:      1,
	}

	w := protocol.NewWriter(64)
	require.NoError(t, encodeScoreFrame(w, frame))

	got, err := decodeScoreFrame(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}

func TestScoreFrame_RoundTrip_323(t *testing.T) {
	frame := protocol.ScoreFrame{Time: 1, ID: 4, Count300: 9, TotalScore: 900, HP: 100}

	w := protocol.NewWriter(64)
	require.NoError(t, encodeScoreFrame323(w, frame))

	got, err := decodeScoreFrame323(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)

	decoded := got.(protocol.ScoreFrame)
	assert.Equal(t, frame.Count300, decoded.Count300)
	assert.Zero(t, decoded.TagByte)
}

func TestReplayBundle_RoundTrip(t *testing.T) {
	bundle := protocol.ReplayFrameBundle{
		Extra:  -1,
		Action: constants.ReplayStandard,
		Frames: []protocol.ReplayFrame{
			{ButtonState: constants.ButtonLeft1, MouseX: 100.5, MouseY: 200.25, Time: 10},
			{ButtonState: constants.ButtonLeft1 | constants.ButtonRight1, MouseX: 101, MouseY: 201, Time: 26},
		},
		ScoreFrame: &protocol.ScoreFrame{Time: 26, Count300: 2, TotalScore: 600, HP: 200},
	}

	w := protocol.NewWriter(256)
	require.NoError(t, encodeReplayBundle(w, bundle))

	got, err := decodeReplayBundle(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, bundle, got)
}

func TestReplayBundle_RoundTrip_NoExtra(t *testing.T) {
	bundle := protocol.ReplayFrameBundle{
		Action: constants.ReplaySkip,
		Frames: []protocol.ReplayFrame{
			{ButtonState: constants.ButtonRight1, MouseX: 55, MouseY: 44, Time: 3},
		},
	}

	w := protocol.NewWriter(128)
	require.NoError(t, encodeReplayBundleNoExtra(w, bundle))

	got, err := decodeReplayBundleNoExtra(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, bundle, got)
}

func TestMessage_RoundTrip(t *testing.T) {
	msg := protocol.Message{
		Sender:   "peppy",
		Content:  "hello there",
		Target:   "#osu",
		SenderID: 2,
	}

	w := protocol.NewWriter(128)
	require.NoError(t, encodeMessage(w, msg))

	got, err := decodeMessage(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestMessage_DecodeWithoutSenderID(t *testing.T) {
	w := protocol.NewWriter(64)
	require.NoError(t, encodeMessageNoSender(w, protocol.Message{
		Sender:  "old",
		Content: "hi",
		Target:  "#osu",
	}))

	got, err := decodeMessage(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)

	msg := got.(protocol.Message)
	assert.Equal(t, "old", msg.Sender)
	assert.Zero(t, msg.SenderID)
}

func TestStatus_RoundTrip(t *testing.T) {
	status := protocol.StatusUpdate{
		Action:          constants.StatusPlaying,
		Text:            "artist - song [diff]",
		BeatmapChecksum: "d41d8cd98f00b204e9800998ecf8427e",
		Mods:            constants.Hidden | constants.DoubleTime,
		Mode:            constants.ModeTaiko,
		BeatmapID:       4242,
	}

	w := protocol.NewWriter(128)
	writeStatus(w, status)

	got, err := decodeStatus(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, status, got)
}

func TestStatus_RoundTrip_1700(t *testing.T) {
	status := protocol.StatusUpdate{
		Action:          constants.StatusEditing,
		Text:            "mapping",
		BeatmapChecksum: "abc",
		Mods:            constants.HardRock,
		Mode:            constants.ModeOsu,
		BeatmapID:       7,
	}

	w := protocol.NewWriter(128)
	writeStatus1700(w, status, true)

	got, err := decodeStatus1700(protocol.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, status, got)
}

func TestLoginReply_Clamped(t *testing.T) {
	r := NewRegistry()

	old := r.Resolve(590)
	enc, ok := old.Encoder(RespLoginReply)
	require.True(t, ok)

	w := protocol.NewWriter(8)
	require.NoError(t, enc(w, int32(constants.LoginServerError)))

	got, err := protocol.NewReader(w.Bytes()).ReadS32()
	require.NoError(t, err)
	assert.Equal(t, int32(constants.LoginAuthenticationError), got)

	// -2 and user ids pass through untouched.
	w2 := protocol.NewWriter(8)
	require.NoError(t, enc(w2, int32(constants.LoginUpdateNeeded)))
	got2, _ := protocol.NewReader(w2.Bytes()).ReadS32()
	assert.Equal(t, int32(-2), got2)
}

func TestEncode_LegacyFramesAreGzipped(t *testing.T) {
	r := NewRegistry()
	old := r.Resolve(323)

	data, ok, err := old.Encode(RespAnnounce, "welcome to the past")
	require.NoError(t, err)
	require.True(t, ok)

	// Legacy header: u16 id + u32 len, no compression byte.
	payload := data[constants.LegacyPacketHeaderSize:]
	decompressed, err := protocol.Decompress(payload)
	require.NoError(t, err)

	got, err := protocol.NewReader(decompressed).ReadString()
	require.NoError(t, err)
	assert.Equal(t, "welcome to the past", got)
}

func TestEncode_ModernFrameRoundTrip(t *testing.T) {
	r := NewRegistry()
	modern := r.Resolve(20130815)

	data, ok, err := modern.Encode(RespAnnounce, "hello")
	require.NoError(t, err)
	require.True(t, ok)

	frame, err := protocol.ReadFrame(bytes.NewReader(data), false)
	require.NoError(t, err)

	id, _ := modern.ResponseID(RespAnnounce)
	assert.Equal(t, id, frame.ID)
}

func TestEncode_UnsupportedPacket(t *testing.T) {
	r := NewRegistry()
	old := r.Resolve(1700)

	_, ok, err := old.Encode(RespUserStats, protocol.UserStats{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCombined_1700_CarriesPresenceAndStats(t *testing.T) {
	r := NewRegistry()
	old := r.Resolve(1700)

	enc, ok := old.Encoder(RespUserPresence)
	require.True(t, ok)

	ps := PresenceStats{
		Presence: protocol.UserPresence{
			UserID:   9,
			Name:     "oldtimer",
			Timezone: 2,
			City:     "Berlin",
		},
		Stats: protocol.UserStats{
			UserID:      9,
			RankedScore: 123456789,
			Accuracy:    0.9812,
			Playcount:   4200,
			TotalScore:  987654321,
			Rank:        17,
		},
	}

	w := protocol.NewWriter(256)
	require.NoError(t, enc(w, ps))

	rd := protocol.NewReader(w.Bytes())
	userID, err := rd.ReadS32()
	require.NoError(t, err)
	assert.Equal(t, int32(9), userID)
}
