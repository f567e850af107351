// Package bits provides MSB-first bit buffers for the packet wire format.
//
// A Buffer is a consumable view over a byte slice. Reads only ever consume
// from the front; Take splits the consumed prefix off as its own Buffer.
// Buffers are not safe for concurrent use.
package bits

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const bitsPerByte = 8

var (
	ErrMalformedHex = errors.New("bits: malformed hex")
	ErrOddLength    = fmt.Errorf("%w: odd length", ErrMalformedHex)
	ErrUnderrun     = errors.New("bits: buffer underrun")
	ErrWidth        = errors.New("bits: field width must be between 1 and 64")
)

// Buffer is an ordered sequence of bits with a read cursor.
//
// pos and end are absolute bit positions into data, so a Buffer produced by
// Take still reports offsets relative to the original stream.
type Buffer struct {
	data []byte
	pos  int
	end  int
}

// FromBytes returns a Buffer over every bit of data.
func FromBytes(data []byte) *Buffer {
	return &Buffer{data: data, end: len(data) * bitsPerByte}
}

// ParseHex decodes case-insensitive hex pairs into a Buffer.
func ParseHex(s string) (*Buffer, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w (%d characters)", ErrOddLength, len(s))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		var invalid hex.InvalidByteError
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("%w: invalid character %q at %d",
				ErrMalformedHex, rune(invalid), strings.IndexByte(s, byte(invalid)))
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	return FromBytes(data), nil
}

// Len returns the number of unconsumed bits.
func (b *Buffer) Len() int {
	return b.end - b.pos
}

// IsEmpty reports whether every bit has been consumed.
func (b *Buffer) IsEmpty() bool {
	return b.pos >= b.end
}

// Offset returns the absolute position of the next unread bit.
func (b *Buffer) Offset() int {
	return b.pos
}

// Take removes the first n bits and returns them as a new Buffer. The
// receiver keeps the remainder.
func (b *Buffer) Take(n int) (*Buffer, error) {
	if n < 0 || n > b.Len() {
		return nil, fmt.Errorf("%w: take %d bits at offset %d, %d remaining", ErrUnderrun, n, b.pos, b.Len())
	}
	head := &Buffer{data: b.data, pos: b.pos, end: b.pos + n}
	b.pos += n
	return head, nil
}

// ReadBit consumes a single bit.
func (b *Buffer) ReadBit() (bool, error) {
	if b.IsEmpty() {
		return false, fmt.Errorf("%w: read 1 bit at offset %d, 0 remaining", ErrUnderrun, b.pos)
	}
	bit := b.bitAt(b.pos)
	b.pos++
	return bit == 1, nil
}

// ReadUint consumes n bits and returns them as an unsigned integer, the first
// bit read being the most significant.
func (b *Buffer) ReadUint(n int) (uint64, error) {
	if n < 1 || n > 64 {
		return 0, fmt.Errorf("%w: got %d", ErrWidth, n)
	}
	if n > b.Len() {
		return 0, fmt.Errorf("%w: read %d bits at offset %d, %d remaining", ErrUnderrun, n, b.pos, b.Len())
	}

	var result uint64
	pending := n
	for pending > 0 {
		var (
			shift     = b.pos % bitsPerByte
			available = bitsPerByte - shift
			reading   = min(pending, available)
			chunk     = uint64(b.data[b.pos/bitsPerByte]>>(available-reading)) & (1<<reading - 1)
		)
		result = result<<reading | chunk
		b.pos += reading
		pending -= reading
	}
	return result, nil
}

func (b *Buffer) bitAt(pos int) byte {
	return (b.data[pos/bitsPerByte] >> (bitsPerByte - 1 - pos%bitsPerByte)) & 1
}

// String renders the unconsumed bits as 0/1 characters.
func (b *Buffer) String() string {
	var sb strings.Builder
	sb.Grow(b.Len())
	for pos := b.pos; pos < b.end; pos++ {
		sb.WriteByte('0' + b.bitAt(pos))
	}
	return sb.String()
}
