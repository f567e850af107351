package packet

import (
	"errors"
	"fmt"

	"github.com/danmuck/packetctl/internal/protocol/bits"
)

var (
	ErrDepthExceeded   = errors.New("packet: nesting depth exceeded")
	ErrInputTooLarge   = errors.New("packet: input too large")
	ErrEmptyOperator   = errors.New("packet: operator has no sub-packets")
	ErrLiteralOverflow = errors.New("packet: literal exceeds 64 bits")

	ErrUnknownType   = errors.New("packet: unknown operator type")
	ErrArity         = errors.New("packet: invalid operator arity")
	ErrOverflow      = errors.New("packet: arithmetic overflow")
	ErrBodyMismatch  = errors.New("packet: body does not match type")
	ErrFieldOverflow = errors.New("packet: field does not fit wire width")
)

// DecodeError locates a decode failure in the input stream.
type DecodeError struct {
	// Offset is the absolute bit position where the failing packet started.
	Offset int
	// Depth is the nesting depth of the failing packet; the top level is 1.
	Depth int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("packet: decode at bit %d (depth %d): %v", e.Offset, e.Depth, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err was caused by an input stream that cannot be
// decoded.
func IsMalformed(err error) bool {
	switch {
	case errors.Is(err, bits.ErrMalformedHex),
		errors.Is(err, bits.ErrUnderrun),
		errors.Is(err, ErrDepthExceeded),
		errors.Is(err, ErrInputTooLarge),
		errors.Is(err, ErrEmptyOperator),
		errors.Is(err, ErrLiteralOverflow):
		return true
	}
	return false
}

// IsInvalid reports whether err was raised while evaluating a decoded tree.
func IsInvalid(err error) bool {
	switch {
	case errors.Is(err, ErrUnknownType),
		errors.Is(err, ErrArity),
		errors.Is(err, ErrOverflow),
		errors.Is(err, ErrBodyMismatch):
		return true
	}
	return false
}
