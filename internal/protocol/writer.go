package protocol

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
)

// Writer provides methods for writing packet payload data.
// Uses little-endian byte order for all multi-byte values.
type Writer struct {
	buf *bytes.Buffer
}

// writerPool reduces allocations by reusing Writers.
var writerPool = sync.Pool{
	New: func() any {
		return &Writer{
			buf: bytes.NewBuffer(make([]byte, 0, 512)),
		}
	},
}

// GetWriter returns a Writer from the pool (already reset).
func GetWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns a Writer to the pool for reuse.
// Do not use the Writer after calling Put.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// NewWriter creates a new payload writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: bytes.NewBuffer(make([]byte, 0, capacity)),
	}
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(b uint8) {
	w.buf.WriteByte(b)
}

// WriteU16 writes a uint16 (2 bytes, LE).
func (w *Writer) WriteU16(v uint16) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
}

// WriteU32 writes a uint32 (4 bytes, LE).
func (w *Writer) WriteU32(v uint32) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 24))
}

// WriteU64 writes a uint64 (8 bytes, LE).
func (w *Writer) WriteU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf.Write(tmp[:])
}

// WriteS16 writes an int16 (2 bytes, LE).
func (w *Writer) WriteS16(v int16) { w.WriteU16(uint16(v)) }

// WriteS32 writes an int32 (4 bytes, LE).
func (w *Writer) WriteS32(v int32) { w.WriteU32(uint32(v)) }

// WriteS64 writes an int64 (8 bytes, LE).
func (w *Writer) WriteS64(v int64) { w.WriteU64(uint64(v)) }

// WriteF32 writes a float32 (4 bytes, LE, IEEE 754).
func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteBool writes one byte, 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteString writes an osu string: empty strings are the single tag
// byte 0x00, everything else is 0x0b, an ULEB128 length and the UTF-8
// bytes.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.buf.WriteByte(0x00)
		return
	}

	w.buf.WriteByte(0x0b)
	w.writeUleb128(len(s))
	w.buf.WriteString(s)
}

func (w *Writer) writeUleb128(v int) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// WriteIntListS16 writes a u16 count followed by the s32 values.
func (w *Writer) WriteIntListS16(values []int32) {
	w.WriteS16(int16(len(values)))
	for _, v := range values {
		w.WriteS32(v)
	}
}

// WriteIntListS32 writes an s32 count followed by the s32 values.
func (w *Writer) WriteIntListS32(values []int32) {
	w.WriteS32(int32(len(values)))
	for _, v := range values {
		w.WriteS32(v)
	}
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// Bytes returns the accumulated payload data.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the current length of the payload.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
}
