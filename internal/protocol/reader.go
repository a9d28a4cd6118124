package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader provides methods for reading packet payload data.
// Uses little-endian byte order for all multi-byte values.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new payload reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadU8: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadU16 reads a uint16 (2 bytes, LE).
func (r *Reader) ReadU16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("ReadU16: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a uint32 (4 bytes, LE).
func (r *Reader) ReadU32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadU32: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a uint64 (8 bytes, LE).
func (r *Reader) ReadU64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadU64: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadS16 reads an int16 (2 bytes, LE).
func (r *Reader) ReadS16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadS32 reads an int32 (4 bytes, LE).
func (r *Reader) ReadS32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadS64 reads an int64 (8 bytes, LE).
func (r *Reader) ReadS64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a float32 (4 bytes, LE, IEEE 754).
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	return b != 0, err
}

// ReadString reads an osu string: a one-byte presence tag, then for
// tag 0x0b an ULEB128 length followed by that many UTF-8 bytes.
// Tag 0x00 yields the empty string.
func (r *Reader) ReadString() (string, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return "", err
	}

	switch tag {
	case 0x00:
		return "", nil
	case 0x0b:
	default:
		return "", fmt.Errorf("ReadString: invalid tag 0x%02x at pos %d", tag, r.pos-1)
	}

	length, err := r.readUleb128()
	if err != nil {
		return "", err
	}
	if length < 0 || r.pos+length > len(r.data) {
		return "", fmt.Errorf("ReadString: length %d exceeds remaining %d", length, r.Remaining())
	}

	s := string(r.data[r.pos : r.pos+length])
	r.pos += length
	return s, nil
}

// readUleb128 decodes a 7-bit variable length integer.
func (r *Reader) readUleb128() (int, error) {
	result := 0
	shift := 0
	for {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		result |= int(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift > 35 {
			return 0, fmt.Errorf("readUleb128: varint too long")
		}
	}
}

// ReadIntListS16 reads a u16 count followed by that many s32 values.
func (r *Reader) ReadIntListS16() ([]int32, error) {
	count, err := r.ReadS16()
	if err != nil {
		return nil, err
	}
	return r.readInts(int(count))
}

// ReadIntListS32 reads an s32 count followed by that many s32 values.
// Old clients (b1700 and below) use this wider form.
func (r *Reader) ReadIntListS32() ([]int32, error) {
	count, err := r.ReadS32()
	if err != nil {
		return nil, err
	}
	return r.readInts(int(count))
}

func (r *Reader) readInts(count int) ([]int32, error) {
	if count < 0 || count*4 > r.Remaining() {
		return nil, fmt.Errorf("readInts: bad count %d (remaining %d)", count, r.Remaining())
	}
	out := make([]int32, 0, count)
	for range count {
		v, err := r.ReadS32()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadBytes reads n bytes (zero-copy subslice of the internal data).
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
