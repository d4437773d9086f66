// Package bitio provides bit-granular cursors over byte data.
//
// Positions are 0-based bit offsets. The byte position is always derived
// as bitPos/8 and never stored separately, so the two can not drift.
package bitio

import (
	"github.com/jacoelho/dfdl/errors"
)

// ByteOrder selects multi-byte integer layout.
type ByteOrder uint8

const (
	// BigEndian is most-significant byte first.
	BigEndian ByteOrder = iota
	// LittleEndian is least-significant byte first.
	LittleEndian
)

// Reader consumes bits from an in-memory byte slice.
type Reader struct {
	data     []byte
	bitPos   int64
	bitLimit int64
}

// NewReader returns a reader over data with the bit limit set to len(data)*8.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, bitLimit: int64(len(data)) * 8}
}

// BitPos returns the 0-based bit position of the cursor.
func (r *Reader) BitPos() int64 { return r.bitPos }

// BytePos returns the byte position derived from the bit position.
func (r *Reader) BytePos() int64 { return r.bitPos / 8 }

// BitLimit returns the current bit limit.
func (r *Reader) BitLimit() int64 { return r.bitLimit }

// SetBitLimit narrows the readable region. Widening past the underlying
// data is a usage error.
func (r *Reader) SetBitLimit(limit int64) error {
	if limit < r.bitPos || limit > int64(len(r.data))*8 {
		return errors.NewUsage(errors.ErrUsage, "bit limit %d outside [%d, %d]", limit, r.bitPos, int64(len(r.data))*8)
	}
	r.bitLimit = limit
	return nil
}

// Remaining returns the number of readable bits.
func (r *Reader) Remaining() int64 { return r.bitLimit - r.bitPos }

// SeekBit moves the cursor to an absolute bit position within the limit.
func (r *Reader) SeekBit(pos int64) error {
	if pos < 0 || pos > r.bitLimit {
		return errors.NewProcessing(errors.ErrProcessing, r.bitPos, "", "seek to bit %d outside limit %d", pos, r.bitLimit)
	}
	r.bitPos = pos
	return nil
}

// AlignTo advances the cursor to the next multiple of n bits.
// Already-aligned positions are left unchanged.
func (r *Reader) AlignTo(n int64) error {
	if n <= 0 {
		return errors.NewUsage(errors.ErrUsage, "alignment must be positive, got %d", n)
	}
	rem := r.bitPos % n
	if rem == 0 {
		return nil
	}
	skip := n - rem
	if r.Remaining() < skip {
		return errors.NewProcessing(errors.ErrStreamExhausted, r.bitPos, "", "need %d alignment fill bits, %d remain", skip, r.Remaining())
	}
	r.bitPos += skip
	return nil
}

// ReadBits reads n bits (1..64) as an unsigned value in the given byte order.
// Little-endian order requires n to be a multiple of 8.
func (r *Reader) ReadBits(n int, order ByteOrder) (uint64, error) {
	if n < 1 || n > 64 {
		return 0, errors.NewUsage(errors.ErrUsage, "read width %d outside [1, 64]", n)
	}
	if order == LittleEndian && n%8 != 0 {
		return 0, errors.NewUsage(errors.ErrUsage, "little-endian read width %d is not byte-sized", n)
	}
	if r.Remaining() < int64(n) {
		return 0, errors.NewProcessing(errors.ErrStreamExhausted, r.bitPos, "", "need %d bits, %d remain", n, r.Remaining())
	}

	var v uint64
	if order == LittleEndian {
		for i := 0; i < n/8; i++ {
			b := r.readByteBits(8)
			v |= uint64(b) << (8 * i)
		}
		return v, nil
	}
	for n > 0 {
		take := n
		if take > 8 {
			take = 8
		}
		v = v<<take | uint64(r.readByteBits(take))
		n -= take
	}
	return v, nil
}

// readByteBits reads up to 8 bits, MSB-first, crossing a byte boundary if needed.
func (r *Reader) readByteBits(n int) uint8 {
	var v uint8
	for i := 0; i < n; i++ {
		byteIdx := r.bitPos / 8
		bitIdx := uint(7 - r.bitPos%8)
		bit := (r.data[byteIdx] >> bitIdx) & 1
		v = v<<1 | bit
		r.bitPos++
	}
	return v
}

// ReadBytes reads n whole bytes. The cursor must be byte-aligned.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.bitPos%8 != 0 {
		return nil, errors.NewUsage(errors.ErrUsage, "byte read at unaligned bit %d", r.bitPos)
	}
	if r.Remaining() < int64(n)*8 {
		return nil, errors.NewProcessing(errors.ErrStreamExhausted, r.bitPos, "", "need %d bytes, %d bits remain", n, r.Remaining())
	}
	start := r.bitPos / 8
	r.bitPos += int64(n) * 8
	return r.data[start : start+int64(n)], nil
}

// PeekBytes returns up to n whole bytes without advancing the cursor.
// The cursor must be byte-aligned. Fewer bytes may be returned near the limit.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	if r.bitPos%8 != 0 {
		return nil, errors.NewUsage(errors.ErrUsage, "byte peek at unaligned bit %d", r.bitPos)
	}
	avail := r.Remaining() / 8
	if int64(n) > avail {
		n = int(avail)
	}
	start := r.bitPos / 8
	return r.data[start : start+int64(n)], nil
}
