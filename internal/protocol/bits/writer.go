package bits

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Writer accumulates bits MSB-first. The zero value is ready to use.
type Writer struct {
	buf     []byte
	written int
}

// WriteUint appends the least significant n bits of value (1 <= n <= 64),
// most significant first. Bits of value above n are ignored.
func (w *Writer) WriteUint(n int, value uint64) error {
	if n < 1 || n > 64 {
		return fmt.Errorf("%w: got %d", ErrWidth, n)
	}
	if n < 64 {
		value &= 1<<n - 1
	}

	pending := n
	for pending > 0 {
		offset := w.written % bitsPerByte
		if offset == 0 {
			w.buf = append(w.buf, 0)
		}
		var (
			available = bitsPerByte - offset
			nbits     = min(pending, available)
			remaining = pending - nbits
			chunk     = byte(value>>remaining) & (1<<nbits - 1)
		)
		w.buf[len(w.buf)-1] |= chunk << (available - nbits)
		w.written += nbits
		pending = remaining
	}
	return nil
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(bit bool) {
	var v uint64
	if bit {
		v = 1
	}
	_ = w.WriteUint(1, v)
}

// WriteBuffer appends every unconsumed bit of b without consuming it.
func (w *Writer) WriteBuffer(b *Buffer) {
	for pos := b.pos; pos < b.end; pos++ {
		w.WriteBit(b.bitAt(pos) == 1)
	}
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.written
}

// Bytes returns the written bits, zero-padded to a byte boundary.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Hex returns Bytes as upper-case hex.
func (w *Writer) Hex() string {
	return strings.ToUpper(hex.EncodeToString(w.buf))
}
