package packet

import (
	"fmt"

	"github.com/danmuck/packetctl/internal/protocol/bits"
)

// Encode serialises p into the wire format, zero-padded to a byte boundary.
// It returns the packed bytes and the number of meaningful bits.
func Encode(p Packet) ([]byte, int, error) {
	var w bits.Writer
	if err := encodePacket(&w, p); err != nil {
		return nil, 0, err
	}
	return w.Bytes(), w.Len(), nil
}

// EncodeHex serialises p as upper-case hex text.
func EncodeHex(p Packet) (string, error) {
	var w bits.Writer
	if err := encodePacket(&w, p); err != nil {
		return "", err
	}
	return w.Hex(), nil
}

func encodePacket(w *bits.Writer, p Packet) error {
	if p.Header.Version > maxVersion {
		return fmt.Errorf("%w: version %d", ErrFieldOverflow, p.Header.Version)
	}
	if p.Header.TypeID > maxTypeID {
		return fmt.Errorf("%w: type id %d", ErrFieldOverflow, p.Header.TypeID)
	}
	_ = w.WriteUint(versionBits, uint64(p.Header.Version))
	_ = w.WriteUint(typeBits, uint64(p.Header.TypeID))

	switch body := p.Body.(type) {
	case Literal:
		if p.Header.TypeID != TypeLiteral {
			return fmt.Errorf("%w: literal body on %s packet", ErrBodyMismatch, p.Header.TypeID)
		}
		encodeLiteral(w, body.Value)
		return nil
	case Operator:
		if p.Header.TypeID == TypeLiteral {
			return fmt.Errorf("%w: operator body on literal packet", ErrBodyMismatch)
		}
		return encodeOperator(w, body)
	default:
		return fmt.Errorf("%w: %T body on %s packet", ErrBodyMismatch, p.Body, p.Header.TypeID)
	}
}

func encodeLiteral(w *bits.Writer, value uint64) {
	groups := 1
	for v := value >> groupValueBits; v != 0; v >>= groupValueBits {
		groups++
	}
	for i := groups - 1; i >= 0; i-- {
		w.WriteBit(i > 0)
		_ = w.WriteUint(groupValueBits, value>>(uint(i)*groupValueBits))
	}
}

func encodeOperator(w *bits.Writer, op Operator) error {
	if len(op.Subpackets) == 0 {
		return ErrEmptyOperator
	}
	switch op.LengthType {
	case LengthCount:
		if len(op.Subpackets) > maxSubpacketNum {
			return fmt.Errorf("%w: %d sub-packets", ErrFieldOverflow, len(op.Subpackets))
		}
		w.WriteBit(true)
		_ = w.WriteUint(subpacketsBits, uint64(len(op.Subpackets)))
		for _, sub := range op.Subpackets {
			if err := encodePacket(w, sub); err != nil {
				return err
			}
		}
		return nil
	case LengthBits:
		var region bits.Writer
		for _, sub := range op.Subpackets {
			if err := encodePacket(&region, sub); err != nil {
				return err
			}
		}
		if region.Len() > maxBitLength {
			return fmt.Errorf("%w: %d bit sub-packet region", ErrFieldOverflow, region.Len())
		}
		w.WriteBit(false)
		_ = w.WriteUint(bitLengthBits, uint64(region.Len()))
		regionBuf, err := bits.FromBytes(region.Bytes()).Take(region.Len())
		if err != nil {
			return err
		}
		w.WriteBuffer(regionBuf)
		return nil
	default:
		return fmt.Errorf("%w: length type %d", ErrFieldOverflow, op.LengthType)
	}
}
