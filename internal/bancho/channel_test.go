package bancho

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prismosu/banchod/internal/constants"
)

func TestPrepareBody_Truncation(t *testing.T) {
	long := strings.Repeat("a", constants.MaxMessageLength+100)
	got := prepareBody(long)

	assert.Len(t, got, constants.MaxMessageLength+len(truncationMarker))
	assert.True(t, strings.HasSuffix(got, truncationMarker))

	short := "hello"
	assert.Equal(t, short, prepareBody(short))
}

func TestPrepareBody_Action(t *testing.T) {
	assert.Equal(t, "\x01ACTION waves\x01", prepareBody("/me waves"))
	assert.Equal(t, "/menu", prepareBody("/menu"))
}

func TestChannel_AddRemove(t *testing.T) {
	c := newChannel(nil, "#osu", "main", "bot", true, 0, 0)
	s := testSession(t, 5, "member", false)

	assert.True(t, c.Add(s))
	assert.True(t, c.Contains(s))
	assert.Equal(t, 1, c.MemberCount())

	// Rejoining is a no-op.
	assert.True(t, c.Add(s))
	assert.Equal(t, 1, c.MemberCount())

	c.Remove(s)
	assert.False(t, c.Contains(s))
	assert.Zero(t, c.MemberCount())

	// Removing twice is fine.
	c.Remove(s)
	assert.Zero(t, c.MemberCount())
}

func TestChannel_ReadPermission(t *testing.T) {
	c := newChannel(nil, "#admin", "staff", "bot", true, constants.PermAdmin, constants.PermAdmin)
	s := testSession(t, 5, "pleb", false)

	assert.False(t, c.Add(s))
	assert.False(t, c.Contains(s))

	s.user.Permissions = int32(constants.PermNormal | constants.PermAdmin)
	assert.True(t, c.Add(s))
}

func TestChannel_Wire(t *testing.T) {
	c := newChannel(nil, "#osu", "main", "bot", true, 0, 0)
	c.Add(testSession(t, 5, "one", false))
	c.Add(testSession(t, 6, "two", false))

	w := c.wire()
	assert.Equal(t, "#osu", w.Name)
	assert.Equal(t, "main", w.Topic)
	assert.Equal(t, int16(2), w.UserCount)
}
