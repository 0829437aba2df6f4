package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	beberrors "github.com/synoet/bebop/errors"
)

func TestWriterFixedWidth(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(123)
	w.WriteInt32(-6360)

	want := []byte{0x7B, 0x00, 0x00, 0x00, 0x28, 0xE7, 0xFF, 0xFF}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("bytes = % X, want % X", w.Bytes(), want)
	}

	r := NewReader(want)
	if v, err := r.ReadInt32(); err != nil || v != 123 {
		t.Errorf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -6360 {
		t.Errorf("ReadInt32 = %d, %v", v, err)
	}
}

func TestRoundTripScalars(t *testing.T) {
	w := NewWriter()
	w.WriteBool(true)
	w.Byte(0xAB)
	w.WriteInt16(-12345)
	w.WriteUint16(54321)
	w.WriteInt32(-2000000000)
	w.WriteUint32(4000000000)
	w.WriteInt64(-9000000000000000000)
	w.WriteUint64(18000000000000000000)
	w.WriteFloat32(3.5)
	w.WriteFloat64(-2.25)
	w.WriteString("héllo")

	r := NewReader(w.Bytes())
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Errorf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadByte(); err != nil || v != 0xAB {
		t.Errorf("ReadByte = %#x, %v", v, err)
	}
	if v, err := r.ReadInt16(); err != nil || v != -12345 {
		t.Errorf("ReadInt16 = %d, %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 54321 {
		t.Errorf("ReadUint16 = %d, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -2000000000 {
		t.Errorf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 4000000000 {
		t.Errorf("ReadUint32 = %d, %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -9000000000000000000 {
		t.Errorf("ReadInt64 = %d, %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 18000000000000000000 {
		t.Errorf("ReadUint64 = %d, %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 3.5 {
		t.Errorf("ReadFloat32 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != -2.25 {
		t.Errorf("ReadFloat64 = %v, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "héllo" {
		t.Errorf("ReadString = %q, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestFloatSpecials(t *testing.T) {
	w := NewWriter()
	w.WriteFloat64(math.Inf(1))
	w.WriteFloat64(math.Inf(-1))
	w.WriteFloat64(math.NaN())

	r := NewReader(w.Bytes())
	if v, _ := r.ReadFloat64(); !math.IsInf(v, 1) {
		t.Errorf("want +inf, got %v", v)
	}
	if v, _ := r.ReadFloat64(); !math.IsInf(v, -1) {
		t.Errorf("want -inf, got %v", v)
	}
	if v, _ := r.ReadFloat64(); !math.IsNaN(v) {
		t.Errorf("want nan, got %v", v)
	}
}

func TestReadStringRejectsInvalidUTF8(t *testing.T) {
	buf := []byte{0x02, 0x00, 0x00, 0x00, 0xFF, 0xFE}
	r := NewReader(buf)
	_, err := r.ReadString()
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, &beberrors.Error{Phase: beberrors.PhaseDecode, Kind: beberrors.KindInvalidUTF8}) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGUIDLayout(t *testing.T) {
	id := uuid.MustParse("81c6987b-48b7-495f-ad01-ec20cc5f5be1")

	w := NewWriter()
	w.WriteGUID(id)

	want := []byte{
		0x7b, 0x98, 0xc6, 0x81,
		0xb7, 0x48,
		0x5f, 0x49,
		0xad, 0x01, 0xec, 0x20, 0xcc, 0x5f, 0x5b, 0xe1,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("guid bytes = % x, want % x", w.Bytes(), want)
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadGUID()
	if err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Errorf("round trip = %s, want %s", got, id)
	}
}

func TestDateRoundTrip(t *testing.T) {
	// Tick granularity is 100ns, so truncate before comparing.
	orig := time.Date(2024, time.March, 1, 12, 30, 45, 123456700, time.UTC)

	w := NewWriter()
	w.WriteDate(orig)

	if w.Len() != 8 {
		t.Fatalf("date width = %d, want 8", w.Len())
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadDate()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(orig) {
		t.Errorf("round trip = %v, want %v", got, orig)
	}
}

func TestByteSlice(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}

	w := NewWriter()
	w.WriteByteSlice(data)

	want := []byte{5, 0, 0, 0, 1, 2, 3, 4, 5}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("bytes = % x, want % x", w.Bytes(), want)
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadByteSlice()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip = %v, want %v", got, data)
	}
}

func TestReserveAndPatch(t *testing.T) {
	w := NewWriter()
	at := w.ReserveLength()
	start := w.Len()
	w.Byte(0x01)
	w.WriteString("ab")
	w.PatchLength(at, uint32(w.Len()-start))

	want := []byte{
		0x07, 0x00, 0x00, 0x00, // patched length: 1 + 4 + 2
		0x01,
		0x02, 0x00, 0x00, 0x00, 'a', 'b',
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("bytes = % x, want % x", w.Bytes(), want)
	}
}

func TestSetPosition(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	if _, err := r.ReadByte(); err != nil {
		t.Fatal(err)
	}

	r.SetPosition(4)
	b, err := r.ReadByte()
	if err != nil {
		t.Fatal(err)
	}
	if b != 5 {
		t.Errorf("byte at position 4 = %d, want 5", b)
	}

	// Past the end: positioning succeeds, the next read fails.
	r.SetPosition(9)
	if _, err := r.ReadByte(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
}

func TestShortBuffer(t *testing.T) {
	tests := []struct {
		name string
		read func(r *Reader) error
		buf  []byte
	}{
		{"byte", func(r *Reader) error { _, err := r.ReadByte(); return err }, nil},
		{"uint16", func(r *Reader) error { _, err := r.ReadUint16(); return err }, []byte{1}},
		{"uint32", func(r *Reader) error { _, err := r.ReadUint32(); return err }, []byte{1, 2, 3}},
		{"uint64", func(r *Reader) error { _, err := r.ReadUint64(); return err }, []byte{1, 2, 3, 4, 5, 6, 7}},
		{"guid", func(r *Reader) error { _, err := r.ReadGUID(); return err }, []byte{1, 2, 3}},
		{"string body", func(r *Reader) error { _, err := r.ReadString(); return err }, []byte{5, 0, 0, 0, 'a'}},
		{"byte slice body", func(r *Reader) error { _, err := r.ReadByteSlice(); return err }, []byte{9, 0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.read(NewReader(tc.buf))
			if !errors.Is(err, ErrShortBuffer) {
				t.Errorf("expected ErrShortBuffer, got %v", err)
			}
		})
	}
}

func TestWriterReset(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(42)
	w.Reset()
	if w.Len() != 0 {
		t.Errorf("Len after Reset = %d", w.Len())
	}
	w.Byte(7)
	if !bytes.Equal(w.Bytes(), []byte{7}) {
		t.Errorf("bytes after reuse = % x", w.Bytes())
	}
}
