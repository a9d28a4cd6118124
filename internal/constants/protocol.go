package constants

// Bancho Protocol Constants
//
// The wire protocol is a stream of framed packets over plain TCP.
// A modern frame is `u16 packet id | u8 compressed | u32 payload len`.
// Clients of version b323 and below omit the compression byte and
// always gzip the payload.

const (
	// ProtocolVersion is the bancho protocol revision reported to
	// every client right after login.
	ProtocolVersion = 18

	// PacketHeaderSize is the modern frame header size in bytes.
	PacketHeaderSize = 7

	// LegacyPacketHeaderSize is the frame header size for b323 and
	// below (no compression byte).
	LegacyPacketHeaderSize = 6

	// LegacyCompressionVersion is the last client version cohort that
	// uses implicit gzip compression and the legacy header.
	LegacyCompressionVersion = 323

	// MaxPayloadSize caps a single packet payload. Anything larger is
	// treated as a transport error.
	MaxPayloadSize = 1 << 20
)

const (
	// HandshakeTimeout is how long a fresh connection may take to
	// reach the authenticated state before it is dropped.
	HandshakeTimeoutSeconds = 20

	// LoginTimeout is the soft deadline for the login handler itself.
	LoginTimeoutSeconds = 15

	// MaxMatches is the multiplayer lobby capacity.
	MaxMatches = 64

	// MaxMatchSlots is the number of seats in one match.
	MaxMatchSlots = 8

	// MaxMessageLength is the chat body limit; longer bodies are
	// truncated with a marker.
	MaxMessageLength = 512

	// MaxMatchNameLength caps a multiplayer lobby name.
	MaxMatchNameLength = 50

	// MaxTourneyClients is the number of parallel sessions one
	// supporter principal may hold with the tourney stream.
	MaxTourneyClients = 8

	// MaxStartTimerSeconds bounds the host-armed match start timer.
	MaxStartTimerSeconds = 300

	// PresenceBundleSize is the chunk size for USER_PRESENCE_BUNDLE.
	PresenceBundleSize = 150
)

const (
	// ChatBucketCapacity is the number of chat messages allowed per
	// rolling minute before the sender is auto-silenced.
	ChatBucketCapacity = 400

	// ChatBucketWindowSeconds is the token bucket window.
	ChatBucketWindowSeconds = 60

	// SpamSilenceSeconds is the auto-silence duration on overflow.
	SpamSilenceSeconds = 60
)

// WebResponse is the static body served to plain HTTP probes.
const WebResponse = "<html><body>banchod is running</body></html>"
