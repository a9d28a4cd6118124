package protocol

import (
	"encoding/binary"
	"testing"
)

func TestReader_ReadU8(t *testing.T) {
	r := NewReader([]byte{0x42})

	val, err := r.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8 failed: %v", err)
	}

	if val != 0x42 {
		t.Errorf("expected 0x42, got 0x%02X", val)
	}

	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining bytes, got %d", r.Remaining())
	}
}

func TestReader_ReadU16(t *testing.T) {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, 0x1234)

	r := NewReader(data)

	val, err := r.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16 failed: %v", err)
	}

	if val != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04X", val)
	}
}

func TestReader_ReadU32(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 0x12345678)

	r := NewReader(data)

	val, err := r.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32 failed: %v", err)
	}

	if val != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08X", val)
	}
}

func TestReader_ReadS32_Negative(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 0xFFFFFFFF)

	r := NewReader(data)

	val, err := r.ReadS32()
	if err != nil {
		t.Fatalf("ReadS32 failed: %v", err)
	}

	if val != -1 {
		t.Errorf("expected -1, got %d", val)
	}
}

func TestReader_ReadU64(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, 0x123456789ABCDEF0)

	r := NewReader(data)

	val, err := r.ReadU64()
	if err != nil {
		t.Fatalf("ReadU64 failed: %v", err)
	}

	if val != 0x123456789ABCDEF0 {
		t.Errorf("expected 0x123456789ABCDEF0, got 0x%016X", val)
	}
}

func TestReader_ReadString(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "empty string tag",
			input:    []byte{0x00},
			expected: "",
		},
		{
			name:     "short string",
			input:    []byte{0x0b, 0x05, 'h', 'e', 'l', 'l', 'o'},
			expected: "hello",
		},
		{
			name:     "unicode string",
			input:    append([]byte{0x0b, 0x06}, []byte("ドキ")...),
			expected: "ドキ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.input)

			val, err := r.ReadString()
			if err != nil {
				t.Fatalf("ReadString failed: %v", err)
			}

			if val != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, val)
			}
		})
	}
}

func TestReader_ReadString_InvalidTag(t *testing.T) {
	r := NewReader([]byte{0x07, 0x01, 'x'})

	if _, err := r.ReadString(); err == nil {
		t.Error("expected error for invalid string tag")
	}
}

func TestReader_ReadString_TruncatedLength(t *testing.T) {
	r := NewReader([]byte{0x0b, 0x10, 'a', 'b'})

	if _, err := r.ReadString(); err == nil {
		t.Error("expected error for length past end of data")
	}
}

func TestReader_ReadString_LongLength(t *testing.T) {
	// 300 byte string needs a two-byte ULEB128 length.
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = 'a'
	}
	data := append([]byte{0x0b, 0xac, 0x02}, payload...)

	r := NewReader(data)

	val, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}

	if len(val) != 300 {
		t.Errorf("expected 300 byte string, got %d", len(val))
	}
}

func TestReader_ReadIntListS16(t *testing.T) {
	w := NewWriter(32)
	w.WriteIntListS16([]int32{1, -2, 3})

	r := NewReader(w.Bytes())

	list, err := r.ReadIntListS16()
	if err != nil {
		t.Fatalf("ReadIntListS16 failed: %v", err)
	}

	expected := []int32{1, -2, 3}
	if len(list) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(list))
	}
	for i := range expected {
		if list[i] != expected[i] {
			t.Errorf("value %d: expected %d, got %d", i, expected[i], list[i])
		}
	}
}

func TestReader_ReadIntListS32(t *testing.T) {
	w := NewWriter(32)
	w.WriteIntListS32([]int32{7, 8})

	r := NewReader(w.Bytes())

	list, err := r.ReadIntListS32()
	if err != nil {
		t.Fatalf("ReadIntListS32 failed: %v", err)
	}

	if len(list) != 2 || list[0] != 7 || list[1] != 8 {
		t.Errorf("unexpected list %v", list)
	}
}

func TestReader_ReadIntList_BadCount(t *testing.T) {
	// Count claims 100 values but only 4 bytes follow.
	w := NewWriter(8)
	w.WriteS16(100)
	w.WriteS32(1)

	r := NewReader(w.Bytes())

	if _, err := r.ReadIntListS16(); err == nil {
		t.Error("expected error for count past end of data")
	}
}

func TestReader_OutOfBounds(t *testing.T) {
	r := NewReader([]byte{0x01})

	if _, err := r.ReadU32(); err == nil {
		t.Error("expected error for short read")
	}
}

func TestReader_ReadF32(t *testing.T) {
	w := NewWriter(8)
	w.WriteF32(13.37)

	r := NewReader(w.Bytes())

	val, err := r.ReadF32()
	if err != nil {
		t.Fatalf("ReadF32 failed: %v", err)
	}

	if val != 13.37 {
		t.Errorf("expected 13.37, got %f", val)
	}
}
