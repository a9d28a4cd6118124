package protocol

import (
	"bytes"
	"testing"
)

func TestWriter_WriteString_Empty(t *testing.T) {
	w := NewWriter(8)
	w.WriteString("")

	if !bytes.Equal(w.Bytes(), []byte{0x00}) {
		t.Errorf("expected single 0x00 tag, got %v", w.Bytes())
	}
}

func TestWriter_WriteString_RoundTrip(t *testing.T) {
	tests := []string{
		"a",
		"hello world",
		"#osu",
		"ドキドキ",
		string(make([]byte, 200)),
	}

	for _, s := range tests {
		w := NewWriter(256)
		w.WriteString(s)

		r := NewReader(w.Bytes())
		got, err := r.ReadString()
		if err != nil {
			t.Fatalf("ReadString(%q) failed: %v", s, err)
		}
		if got != s {
			t.Errorf("round trip mismatch: wrote %q, read %q", s, got)
		}
		if r.Remaining() != 0 {
			t.Errorf("trailing bytes after %q: %d", s, r.Remaining())
		}
	}
}

func TestWriter_Primitives_RoundTrip(t *testing.T) {
	w := NewWriter(64)
	w.WriteU8(0xAB)
	w.WriteU16(0xBEEF)
	w.WriteS32(-1234)
	w.WriteS64(-5_000_000_000)
	w.WriteF32(0.5)
	w.WriteBool(true)
	w.WriteBool(false)

	r := NewReader(w.Bytes())

	if v, _ := r.ReadU8(); v != 0xAB {
		t.Errorf("u8: got 0x%02X", v)
	}
	if v, _ := r.ReadU16(); v != 0xBEEF {
		t.Errorf("u16: got 0x%04X", v)
	}
	if v, _ := r.ReadS32(); v != -1234 {
		t.Errorf("s32: got %d", v)
	}
	if v, _ := r.ReadS64(); v != -5_000_000_000 {
		t.Errorf("s64: got %d", v)
	}
	if v, _ := r.ReadF32(); v != 0.5 {
		t.Errorf("f32: got %f", v)
	}
	if v, _ := r.ReadBool(); !v {
		t.Error("bool: expected true")
	}
	if v, _ := r.ReadBool(); v {
		t.Error("bool: expected false")
	}
	if r.Remaining() != 0 {
		t.Errorf("trailing bytes: %d", r.Remaining())
	}
}

func TestWriter_Pool(t *testing.T) {
	w := GetWriter()
	w.WriteU32(42)
	if w.Len() != 4 {
		t.Errorf("expected 4 bytes, got %d", w.Len())
	}
	w.Put()

	w2 := GetWriter()
	if w2.Len() != 0 {
		t.Errorf("pooled writer not reset: %d bytes", w2.Len())
	}
	w2.Put()
}
