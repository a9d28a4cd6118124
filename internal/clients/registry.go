package clients

import (
	"sort"

	"github.com/prismosu/banchod/internal/constants"
	"github.com/prismosu/banchod/internal/protocol"
)

// Decoder turns a request payload into a typed value.
type Decoder func(r *protocol.Reader) (any, error)

// Encoder serializes a typed value into a response payload.
type Encoder func(w *protocol.Writer, v any) error

// PresenceStats is the combined stats+presence object sent to cohorts
// that predate separate USER_PRESENCE and USER_STATS packets.
type PresenceStats struct {
	Presence protocol.UserPresence
	Stats    protocol.UserStats
	Update   bool
}

// Cohort is one client version family. Tables are sparse: lookups
// that miss walk the parent chain, so a cohort only carries the
// entries it changes relative to its parent.
type Cohort struct {
	Version int

	parent    *Cohort
	requests  map[uint16]PacketType
	responses map[PacketType]uint16
	decoders  map[PacketType]Decoder
	encoders  map[PacketType]Encoder

	// removed marks logical packets this cohort and everything older
	// does not speak at all.
	removed map[PacketType]bool
}

// Legacy reports whether the cohort uses the short header and
// mandatory gzip compression.
func (c *Cohort) Legacy() bool {
	return c.Version <= constants.LegacyCompressionVersion
}

// Request resolves a numeric request id to its logical packet.
func (c *Cohort) Request(id uint16) (PacketType, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if t, ok := cur.requests[id]; ok {
			return t, true
		}
	}
	return 0, false
}

// ResponseID resolves a logical response to the cohort's numeric id.
// Returns false when the cohort does not speak the packet.
func (c *Cohort) ResponseID(t PacketType) (uint16, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.removed[t] {
			return 0, false
		}
		if id, ok := cur.responses[t]; ok {
			return id, true
		}
	}
	return 0, false
}

// SupportsResponse reports whether the cohort can receive t.
func (c *Cohort) SupportsResponse(t PacketType) bool {
	_, ok := c.ResponseID(t)
	return ok
}

// Decoder resolves the payload decoder for a logical request.
func (c *Cohort) Decoder(t PacketType) (Decoder, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.removed[t] {
			return nil, false
		}
		if d, ok := cur.decoders[t]; ok {
			return d, true
		}
	}
	return nil, false
}

// Encoder resolves the payload encoder for a logical response.
func (c *Cohort) Encoder(t PacketType) (Encoder, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.removed[t] {
			return nil, false
		}
		if e, ok := cur.encoders[t]; ok {
			return e, true
		}
	}
	return nil, false
}

// Encode serializes one response frame for this cohort. ok is false
// when the cohort does not speak the packet at all.
func (c *Cohort) Encode(t PacketType, v any) (data []byte, ok bool, err error) {
	id, ok := c.ResponseID(t)
	if !ok {
		return nil, false, nil
	}

	w := protocol.GetWriter()
	defer w.Put()

	if enc, ok := c.Encoder(t); ok && v != nil {
		if err := enc(w, v); err != nil {
			return nil, true, err
		}
	}

	data, err = protocol.EncodeFrame(protocol.Frame{ID: id, Payload: w.Bytes()}, c.Legacy())
	return data, true, err
}

// Registry holds every known cohort keyed by version date-stamp.
type Registry struct {
	cohorts map[int]*Cohort
	sorted  []int
}

// NewRegistry builds the full cohort set.
func NewRegistry() *Registry {
	base := newB20130815()
	b329 := newB20130329(base)
	b1223 := newB20121223(b329)
	b1700 := newB1700(b1223)
	b590 := newB590(b1700)
	b323 := newB323(b590)
	b319 := newB319(b323)

	r := &Registry{cohorts: make(map[int]*Cohort)}
	for _, c := range []*Cohort{base, b329, b1223, b1700, b590, b323, b319} {
		r.cohorts[c.Version] = c
	}
	// b558 speaks the same dialect as b590.
	r.cohorts[558] = b590

	r.sorted = make([]int, 0, len(r.cohorts))
	for v := range r.cohorts {
		r.sorted = append(r.sorted, v)
	}
	sort.Ints(r.sorted)

	return r
}

// Resolve snaps a client version to the nearest cohort by absolute
// distance. Ties go to the older cohort.
func (r *Registry) Resolve(version int) *Cohort {
	best := r.sorted[0]
	bestDist := abs(version - best)

	for _, v := range r.sorted[1:] {
		d := abs(version - v)
		if d < bestDist {
			best, bestDist = v, d
		}
	}
	return r.cohorts[best]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
