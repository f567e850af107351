package packet

import (
	"fmt"
	"math/bits"
	"slices"
)

// VersionSum returns the sum of the version field over the whole tree.
func (p Packet) VersionSum() uint64 {
	sum := uint64(p.Header.Version)
	if op, ok := p.Body.(Operator); ok {
		for _, sub := range op.Subpackets {
			sum += sub.VersionSum()
		}
	}
	return sum
}

// Eval evaluates the tree as an unsigned 64-bit expression. Overflow is an
// error rather than wrapping.
func (p Packet) Eval() (uint64, error) {
	switch body := p.Body.(type) {
	case Literal:
		if p.Header.TypeID != TypeLiteral {
			return 0, fmt.Errorf("%w: literal body on %s packet", ErrBodyMismatch, p.Header.TypeID)
		}
		return body.Value, nil
	case Operator:
		return evalOperator(p.Header.TypeID, body.Subpackets)
	default:
		return 0, fmt.Errorf("%w: %T body on %s packet", ErrBodyMismatch, p.Body, p.Header.TypeID)
	}
}

func evalOperator(typeID TypeID, subpackets []Packet) (uint64, error) {
	switch typeID {
	case TypeSum, TypeProduct, TypeMinimum, TypeMaximum:
		if len(subpackets) == 0 {
			return 0, fmt.Errorf("%w: %s needs at least 1 sub-packet", ErrArity, typeID)
		}
	case TypeGreater, TypeLess, TypeEqual:
		if len(subpackets) != 2 {
			return 0, fmt.Errorf("%w: %s needs exactly 2 sub-packets, got %d", ErrArity, typeID, len(subpackets))
		}
	case TypeLiteral:
		return 0, fmt.Errorf("%w: operator body on literal packet", ErrBodyMismatch)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownType, uint8(typeID))
	}

	values := make([]uint64, len(subpackets))
	for i, sub := range subpackets {
		v, err := sub.Eval()
		if err != nil {
			return 0, err
		}
		values[i] = v
	}

	switch typeID {
	case TypeSum:
		var acc uint64
		for _, v := range values {
			var carry uint64
			acc, carry = bits.Add64(acc, v, 0)
			if carry != 0 {
				return 0, fmt.Errorf("%w: sum", ErrOverflow)
			}
		}
		return acc, nil
	case TypeProduct:
		if slices.Contains(values, 0) {
			return 0, nil
		}
		acc := uint64(1)
		for _, v := range values {
			hi, lo := bits.Mul64(acc, v)
			if hi != 0 {
				return 0, fmt.Errorf("%w: product", ErrOverflow)
			}
			acc = lo
		}
		return acc, nil
	case TypeMinimum:
		return slices.Min(values), nil
	case TypeMaximum:
		return slices.Max(values), nil
	case TypeGreater:
		return boolValue(values[0] > values[1]), nil
	case TypeLess:
		return boolValue(values[0] < values[1]), nil
	default:
		return boolValue(values[0] == values[1]), nil
	}
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
