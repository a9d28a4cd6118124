package bancho

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageBucket_Capacity(t *testing.T) {
	b := newMessageBucket(3, time.Minute)
	now := time.Now()

	assert.True(t, b.Record(now))
	assert.True(t, b.Record(now))
	assert.True(t, b.Record(now))
	assert.False(t, b.Record(now))
}

func TestMessageBucket_RollingWindow(t *testing.T) {
	b := newMessageBucket(2, time.Minute)
	start := time.Now()

	assert.True(t, b.Record(start))
	assert.True(t, b.Record(start.Add(time.Second)))
	assert.False(t, b.Record(start.Add(2*time.Second)))

	// The first entry ages out of the window; room opens up again.
	assert.True(t, b.Record(start.Add(61*time.Second)))
}

func TestMessageBucket_Reset(t *testing.T) {
	b := newMessageBucket(1, time.Minute)
	now := time.Now()

	assert.True(t, b.Record(now))
	assert.False(t, b.Record(now))

	b.Reset()
	assert.True(t, b.Record(now))
}
