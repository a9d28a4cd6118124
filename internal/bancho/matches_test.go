package bancho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismosu/banchod/internal/constants"
)

func TestMatches_AllocateLowestFree(t *testing.T) {
	r := NewMatches()

	first := &Match{}
	second := &Match{}
	require.True(t, r.Allocate(first))
	require.True(t, r.Allocate(second))
	assert.Equal(t, int32(1), first.id)
	assert.Equal(t, int32(2), second.id)

	// Freeing a low id makes it the next allocation again.
	r.Remove(first.id)
	third := &Match{}
	require.True(t, r.Allocate(third))
	assert.Equal(t, int32(1), third.id)
}

func TestMatches_Overflow(t *testing.T) {
	r := NewMatches()
	for i := 0; i < constants.MaxMatches; i++ {
		require.True(t, r.Allocate(&Match{}))
	}
	assert.False(t, r.Allocate(&Match{}))
	assert.Equal(t, constants.MaxMatches, r.Count())
}
