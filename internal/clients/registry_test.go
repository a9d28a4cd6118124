package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve_Exact(t *testing.T) {
	r := NewRegistry()

	for _, version := range []int{20130815, 20130329, 20121223, 1700, 590, 558, 323, 319} {
		c := r.Resolve(version)
		require.NotNil(t, c, "version %d", version)

		if version == 558 {
			assert.Equal(t, 590, c.Version, "b558 shares the b590 dialect")
			continue
		}
		assert.Equal(t, version, c.Version)
	}
}

func TestRegistry_Resolve_Nearest(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		version int
		want    int
	}{
		{20130820, 20130815},
		{20130520, 20130329},
		{20125000, 20121223},
		{1800, 1700},
		{1000, 590},
		{600, 590},
		{500, 590},
		{400, 323},
		{322, 323},
		{100, 319},
		{1, 319},
	}

	for _, tt := range tests {
		c := r.Resolve(tt.version)
		assert.Equal(t, tt.want, c.Version, "version %d", tt.version)
	}
}

func TestRegistry_Resolve_TieGoesOlder(t *testing.T) {
	r := NewRegistry()

	// 321 is equidistant from 319 and 323.
	c := r.Resolve(321)
	assert.Equal(t, 319, c.Version)
}

func TestCohort_Legacy(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Resolve(20130815).Legacy())
	assert.False(t, r.Resolve(590).Legacy())
	assert.True(t, r.Resolve(323).Legacy())
	assert.True(t, r.Resolve(319).Legacy())
}

func TestCohort_RequestInheritance(t *testing.T) {
	r := NewRegistry()
	old := r.Resolve(319)

	// Request ids are inherited down the whole chain.
	pt, ok := old.Request(4)
	require.True(t, ok)
	assert.Equal(t, ReqPong, pt)

	pt, ok = old.Request(47)
	require.True(t, ok)
	assert.Equal(t, ReqMatchScoreUpdate, pt)

	_, ok = old.Request(60000)
	assert.False(t, ok)
}

func TestCohort_PresenceSplit(t *testing.T) {
	r := NewRegistry()

	modern := r.Resolve(20130815)
	assert.True(t, modern.SupportsResponse(RespUserStats))
	assert.True(t, modern.SupportsResponse(RespUserPresenceSingle))
	assert.True(t, modern.SupportsResponse(RespUserPresenceBundle))

	// 20121223 loses the presence bundle packets.
	mid := r.Resolve(20121223)
	assert.True(t, mid.SupportsResponse(RespUserStats))
	assert.False(t, mid.SupportsResponse(RespUserPresenceSingle))
	assert.False(t, mid.SupportsResponse(RespUserPresenceBundle))

	// 1700 additionally loses the stats/presence split.
	old := r.Resolve(1700)
	assert.False(t, old.SupportsResponse(RespUserStats))
	assert.True(t, old.SupportsResponse(RespUserPresence))
	assert.False(t, old.SupportsResponse(RespUserPresenceSingle))
}

func TestCohort_InviteCutoff(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Resolve(20130815).SupportsResponse(RespInvite))
	assert.False(t, r.Resolve(1700).SupportsResponse(RespInvite))
	assert.False(t, r.Resolve(323).SupportsResponse(RespInvite))
}

func TestCohort_RemovalStopsChainWalk(t *testing.T) {
	r := NewRegistry()
	old := r.Resolve(319)

	// Even though the base cohort has an encoder, the tombstone at
	// 1700 must win for everything below it.
	_, ok := old.Encoder(RespUserStats)
	assert.False(t, ok)
	_, ok = old.ResponseID(RespUserStats)
	assert.False(t, ok)
}
