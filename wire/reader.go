package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	beberrors "github.com/synoet/bebop/errors"
)

// ErrShortBuffer is returned when a read runs past the end of the buffer.
var ErrShortBuffer = errors.New("wire: read past end of buffer")

// Reader provides cursor-based reading over a byte buffer. The cursor can be
// positioned absolutely, which decode uses to implement skip-to-end. A
// Reader is not safe for concurrent use; use one Reader per decode call.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader over buf with the cursor at the start.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// SetPosition moves the cursor to an absolute position. Positions beyond the
// buffer are allowed; the next read reports ErrShortBuffer.
func (r *Reader) SetPosition(pos int) {
	r.pos = pos
}

// Len returns the total buffer length.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) || r.pos+n < 0 {
		return nil, fmt.Errorf("at position %d: %w", r.pos, ErrShortBuffer)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadByte reads a single byte and advances the cursor.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads one byte as a bool.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads an IEEE-754 float32.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an IEEE-754 float64.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadString reads a 4-byte byte length followed by that many UTF-8 bytes.
// Payloads that are not valid UTF-8 are rejected.
func (r *Reader) ReadString() (string, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", beberrors.InvalidUTF8(beberrors.PhaseDecode, nil, b)
	}
	return string(b), nil
}

// ReadByteSlice reads a 4-byte length followed by that many raw bytes.
func (r *Reader) ReadByteSlice() ([]byte, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(length))
}

// ReadGUID reads 16 bytes in the mixed-endian layout written by WriteGUID.
func (r *Reader) ReadGUID() (uuid.UUID, error) {
	b, err := r.take(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	id[0], id[1], id[2], id[3] = b[3], b[2], b[1], b[0]
	id[4], id[5] = b[5], b[4]
	id[6], id[7] = b[7], b[6]
	copy(id[8:], b[8:16])
	return id, nil
}

// ReadDate reads an 8-byte tick count and converts it to a UTC time.
func (r *Reader) ReadDate() (time.Time, error) {
	ticks, err := r.ReadUint64()
	if err != nil {
		return time.Time{}, err
	}
	ticks &= tickMask
	return time.Unix(0, (int64(ticks)-ticksToUnixEpoch)*100).UTC(), nil
}

// ReadLength reads a 4-byte length prefix.
func (r *Reader) ReadLength() (uint32, error) {
	return r.ReadUint32()
}
