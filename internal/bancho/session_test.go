package bancho

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_CloseIdempotent(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c2.Close()

	s := newSession(c1, nil)

	s.Close()
	s.Close()

	select {
	case <-s.closeCh:
	default:
		t.Fatal("close channel not closed")
	}
}

func TestSession_EnqueueSlowClient(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	// No write pump running, so the queue fills up.
	s := newSession(c1, nil)
	for i := 0; i < defaultSendQueueSize; i++ {
		assert.NoError(t, s.enqueue([]byte{0x00}))
	}

	// Overflow disconnects instead of blocking the caller.
	assert.Error(t, s.enqueue([]byte{0x00}))
	select {
	case <-s.closeCh:
	default:
		t.Fatal("slow client was not disconnected")
	}
}

func TestParseLoginRequest(t *testing.T) {
	req, err := parseLoginRequest(
		"player\r", "0123456789abcdef0123456789abcdef",
		"b20130815|2|1|aaaa:adapters:bbbb:cccc:dddd|0")
	assert.NoError(t, err)
	assert.Equal(t, "player", req.username)
	assert.Equal(t, 20130815, req.version)
	assert.False(t, req.isTourney)
	assert.Equal(t, int8(2), req.utcOffset)
	assert.True(t, req.displayCity)
	assert.False(t, req.friendOnlyDMs)
	assert.Equal(t, "adapters", req.adapters)
	assert.Equal(t, "dddd", req.diskSignature)
}

func TestParseLoginRequest_Tourney(t *testing.T) {
	req, err := parseLoginRequest(
		"player", "hash",
		"b20130815tourney|0|0|a:b:c:d:e|1")
	assert.NoError(t, err)
	assert.True(t, req.isTourney)
	assert.Equal(t, 20130815, req.version)
	assert.True(t, req.friendOnlyDMs)
}

func TestParseLoginRequest_Invalid(t *testing.T) {
	_, err := parseLoginRequest("p", "h", "not a descriptor")
	assert.Error(t, err)

	_, err = parseLoginRequest("p", "h", "bogus|0|0|a:b:c:d:e|0")
	assert.Error(t, err)

	_, err = parseLoginRequest("p", "h", "b20130815|0|0|tooshort|0")
	assert.Error(t, err)
}

func TestParseVersionNumber(t *testing.T) {
	assert.Equal(t, 20130815, parseVersionNumber("b20130815"))
	assert.Equal(t, 20130815, parseVersionNumber("b20130815.1"))
	assert.Equal(t, 1700, parseVersionNumber("b1700"))
	assert.Zero(t, parseVersionNumber("unknown"))
}
