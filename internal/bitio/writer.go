package bitio

import (
	"github.com/jacoelho/dfdl/errors"
)

// Writer produces bits into an in-memory buffer.
//
// The buffer stays resident until Bytes is called so that deferred-value
// regions can be patched after the forward pass completes.
type Writer struct {
	buf    []byte
	bitPos int64
}

// NewWriter returns an empty writer positioned at bit 0.
func NewWriter() *Writer {
	return &Writer{}
}

// BitPos returns the 0-based bit position of the cursor.
func (w *Writer) BitPos() int64 { return w.bitPos }

// BytePos returns the byte position derived from the bit position.
func (w *Writer) BytePos() int64 { return w.bitPos / 8 }

// grow extends the buffer to cover bit position pos.
func (w *Writer) grow(pos int64) {
	need := int((pos + 7) / 8)
	for len(w.buf) < need {
		w.buf = append(w.buf, 0)
	}
}

// WriteBits writes the low n bits (1..64) of v in the given byte order.
// Little-endian order requires n to be a multiple of 8.
func (w *Writer) WriteBits(v uint64, n int, order ByteOrder) error {
	if n < 1 || n > 64 {
		return errors.NewUsage(errors.ErrUsage, "write width %d outside [1, 64]", n)
	}
	if order == LittleEndian && n%8 != 0 {
		return errors.NewUsage(errors.ErrUsage, "little-endian write width %d is not byte-sized", n)
	}
	w.patchBitsAt(w.bitPos, v, n, order)
	w.bitPos += int64(n)
	return nil
}

// WriteBytes writes whole bytes. The cursor must be byte-aligned.
func (w *Writer) WriteBytes(p []byte) error {
	if w.bitPos%8 != 0 {
		return errors.NewUsage(errors.ErrUsage, "byte write at unaligned bit %d", w.bitPos)
	}
	w.grow(w.bitPos + int64(len(p))*8)
	copy(w.buf[w.bitPos/8:], p)
	w.bitPos += int64(len(p)) * 8
	return nil
}

// AlignTo advances the cursor to the next multiple of n bits, filling
// skipped bits with zero. Already-aligned positions are left unchanged.
func (w *Writer) AlignTo(n int64) error {
	if n <= 0 {
		return errors.NewUsage(errors.ErrUsage, "alignment must be positive, got %d", n)
	}
	rem := w.bitPos % n
	if rem == 0 {
		return nil
	}
	w.bitPos += n - rem
	w.grow(w.bitPos)
	return nil
}

// ReserveBits skips n bits, leaving them zero, and returns the bit position
// of the reserved region for a later PatchBits.
func (w *Writer) ReserveBits(n int) (int64, error) {
	if n < 1 || n > 64 {
		return 0, errors.NewUsage(errors.ErrUsage, "reserve width %d outside [1, 64]", n)
	}
	pos := w.bitPos
	w.bitPos += int64(n)
	w.grow(w.bitPos)
	return pos, nil
}

// PatchBits overwrites a previously reserved region without moving the cursor.
func (w *Writer) PatchBits(pos int64, v uint64, n int, order ByteOrder) error {
	if n < 1 || n > 64 {
		return errors.NewUsage(errors.ErrUsage, "patch width %d outside [1, 64]", n)
	}
	if pos < 0 || pos+int64(n) > w.bitPos {
		return errors.NewUsage(errors.ErrUsage, "patch region [%d, %d) outside written [0, %d)", pos, pos+int64(n), w.bitPos)
	}
	w.patchBitsAt(pos, v, n, order)
	return nil
}

func (w *Writer) patchBitsAt(pos int64, v uint64, n int, order ByteOrder) {
	w.grow(pos + int64(n))
	if order == LittleEndian {
		for i := 0; i < n/8; i++ {
			w.setByteBits(pos+int64(i)*8, uint8(v>>(8*i)), 8)
		}
		return
	}
	for n > 0 {
		take := n
		if take > 8 {
			take = 8
		}
		w.setByteBits(pos, uint8(v>>(n-take)), take)
		pos += int64(take)
		n -= take
	}
}

// setByteBits writes up to 8 bits MSB-first starting at pos.
func (w *Writer) setByteBits(pos int64, v uint8, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := (v >> i) & 1
		byteIdx := pos / 8
		bitIdx := uint(7 - pos%8)
		if bit == 1 {
			w.buf[byteIdx] |= 1 << bitIdx
		} else {
			w.buf[byteIdx] &^= 1 << bitIdx
		}
		pos++
	}
}

// Bytes returns the written buffer. A trailing partial byte is padded
// with zero bits.
func (w *Writer) Bytes() []byte {
	w.grow(w.bitPos)
	return w.buf
}
