package protocol

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/prismosu/banchod/internal/constants"
)

// Frame is one packet on the wire: a numeric id and a raw payload.
// The id is cohort-specific; payloads are already decompressed.
type Frame struct {
	ID      uint16
	Payload []byte
}

// ReadFrame reads one frame from r. Modern clients send
// `u16 id | u8 compressed | u32 len`; legacy clients (b323 and below)
// omit the compression byte and always gzip the payload.
func ReadFrame(r io.Reader, legacy bool) (Frame, error) {
	headerSize := constants.PacketHeaderSize
	if legacy {
		headerSize = constants.LegacyPacketHeaderSize
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}

	id := binary.LittleEndian.Uint16(header[0:2])

	var compressed bool
	var length uint32
	if legacy {
		compressed = true
		length = binary.LittleEndian.Uint32(header[2:6])
	} else {
		compressed = header[2] != 0
		length = binary.LittleEndian.Uint32(header[3:7])
	}

	if length > constants.MaxPayloadSize {
		return Frame{}, fmt.Errorf("frame payload too large: %d bytes (packet %d)", length, id)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, fmt.Errorf("read frame payload: %w", err)
	}

	if compressed {
		var err error
		payload, err = Decompress(payload)
		if err != nil {
			return Frame{}, fmt.Errorf("decompress frame payload (packet %d): %w", id, err)
		}
	}

	return Frame{ID: id, Payload: payload}, nil
}

// EncodeFrame serializes a frame into wire bytes. For legacy clients
// the payload is gzip-compressed and the compression byte is dropped.
func EncodeFrame(f Frame, legacy bool) ([]byte, error) {
	payload := f.Payload
	if legacy {
		var err error
		payload, err = Compress(payload)
		if err != nil {
			return nil, fmt.Errorf("compress frame payload (packet %d): %w", f.ID, err)
		}
	}

	headerSize := constants.PacketHeaderSize
	if legacy {
		headerSize = constants.LegacyPacketHeaderSize
	}

	out := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint16(out[0:2], f.ID)
	if legacy {
		binary.LittleEndian.PutUint32(out[2:6], uint32(len(payload)))
		copy(out[6:], payload)
	} else {
		out[2] = 0
		binary.LittleEndian.PutUint32(out[3:7], uint32(len(payload)))
		copy(out[7:], payload)
	}
	return out, nil
}

// Compress gzips data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress gunzips data.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, constants.MaxPayloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > constants.MaxPayloadSize {
		return nil, fmt.Errorf("decompressed payload too large: %d bytes", len(out))
	}
	return out, nil
}
