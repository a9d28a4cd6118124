package protocol

import (
	"bytes"
	"testing"
)

func TestFrame_RoundTrip_Modern(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}

	encoded, err := EncodeFrame(Frame{ID: 83, Payload: payload}, false)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	if len(encoded) != 7+len(payload) {
		t.Errorf("expected %d bytes, got %d", 7+len(payload), len(encoded))
	}

	frame, err := ReadFrame(bytes.NewReader(encoded), false)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	if frame.ID != 83 {
		t.Errorf("expected packet id 83, got %d", frame.ID)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Errorf("payload mismatch: %v", frame.Payload)
	}
}

func TestFrame_RoundTrip_Legacy(t *testing.T) {
	payload := []byte("legacy clients always gzip")

	encoded, err := EncodeFrame(Frame{ID: 11, Payload: payload}, true)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	frame, err := ReadFrame(bytes.NewReader(encoded), true)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	if frame.ID != 11 {
		t.Errorf("expected packet id 11, got %d", frame.ID)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Errorf("payload mismatch: %q", frame.Payload)
	}
}

func TestFrame_LegacyPayloadIsCompressed(t *testing.T) {
	payload := bytes.Repeat([]byte("aaaa"), 256)

	encoded, err := EncodeFrame(Frame{ID: 1, Payload: payload}, true)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	body := encoded[6:]
	if bytes.Contains(body, payload[:32]) {
		t.Error("legacy frame body carries uncompressed payload")
	}

	decompressed, err := Decompress(body)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(decompressed, payload) {
		t.Error("decompressed body does not match payload")
	}
}

func TestFrame_EmptyPayload(t *testing.T) {
	encoded, err := EncodeFrame(Frame{ID: 8}, false)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	frame, err := ReadFrame(bytes.NewReader(encoded), false)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if frame.ID != 8 || len(frame.Payload) != 0 {
		t.Errorf("unexpected frame %+v", frame)
	}
}

func TestFrame_OversizedLength(t *testing.T) {
	header := []byte{0x01, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}

	if _, err := ReadFrame(bytes.NewReader(header), false); err == nil {
		t.Error("expected error for oversized payload length")
	}
}

func TestFrame_ShortHeader(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader([]byte{0x01, 0x00}), false); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	data := []byte("the quick brown fox")

	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	if !bytes.Equal(out, data) {
		t.Errorf("round trip mismatch: %q", out)
	}
}
