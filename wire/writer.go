package wire

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"
)

// tickMask keeps the low 62 bits of a date's tick count, matching the wire
// contract for the date scalar.
const tickMask = 0x3FFFFFFFFFFFFFFF

// ticksToUnixEpoch is the number of 100ns ticks between 0001-01-01T00:00:00
// UTC and the Unix epoch.
const ticksToUnixEpoch = 621355968000000000

// Writer provides cursor-based writing for the bebop wire format. All
// multi-byte values are little-endian. A Writer is not safe for concurrent
// use; use one Writer per encode call.
type Writer struct {
	buf []byte
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset empties the writer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBool writes a bool as one byte, 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteBytes appends raw bytes with no length prefix.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteUint16 writes a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteInt16 writes a little-endian int16.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteInt32 writes a little-endian int32.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 writes a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteInt64 writes a little-endian int64.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteFloat32 writes an IEEE-754 float32.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes an IEEE-754 float64.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes a 4-byte byte length followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteByteSlice writes a 4-byte length followed by the raw bytes. This is
// the byte-array fast path: no per-element overhead.
func (w *Writer) WriteByteSlice(data []byte) {
	w.WriteUint32(uint32(len(data)))
	w.buf = append(w.buf, data...)
}

// WriteGUID writes 16 bytes in mixed-endian layout: the first three groups
// of the RFC 4122 byte form are byte-swapped (4, 2, 2), the trailing 8
// bytes verbatim.
func (w *Writer) WriteGUID(id uuid.UUID) {
	w.buf = append(w.buf,
		id[3], id[2], id[1], id[0],
		id[5], id[4],
		id[7], id[6],
		id[8], id[9], id[10], id[11], id[12], id[13], id[14], id[15],
	)
}

// WriteDate writes an 8-byte tick count: 100ns ticks since
// 0001-01-01T00:00:00 UTC, masked to 62 bits.
func (w *Writer) WriteDate(t time.Time) {
	ticks := uint64(t.UnixNano()/100+ticksToUnixEpoch) & tickMask
	w.WriteUint64(ticks)
}

// ReserveLength appends a 4-byte length placeholder and returns its offset
// for a later PatchLength. It supports forward framing without pre-computing
// sizes.
func (w *Writer) ReserveLength() int {
	at := len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0)
	return at
}

// PatchLength fills a placeholder previously returned by ReserveLength.
func (w *Writer) PatchLength(at int, length uint32) {
	binary.LittleEndian.PutUint32(w.buf[at:at+4], length)
}
