package bancho

import (
	"sync"
	"time"
)

// messageBucket is a rolling-window counter for chat flood detection.
// A sender exceeding capacity inside the window gets auto-silenced.
type messageBucket struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	stamps   []time.Time
}

func newMessageBucket(capacity int, window time.Duration) *messageBucket {
	return &messageBucket{
		capacity: capacity,
		window:   window,
		stamps:   make([]time.Time, 0, 64),
	}
}

// Record notes one message at now and reports whether the sender is
// still within the limit.
func (b *messageBucket) Record(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := now.Add(-b.window)
	keep := b.stamps[:0]
	for _, t := range b.stamps {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	b.stamps = keep

	b.stamps = append(b.stamps, now)
	return len(b.stamps) <= b.capacity
}

// Reset clears the window, used after a silence lands.
func (b *messageBucket) Reset() {
	b.mu.Lock()
	b.stamps = b.stamps[:0]
	b.mu.Unlock()
}
