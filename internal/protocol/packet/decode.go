package packet

import (
	"errors"
	"fmt"

	"github.com/danmuck/packetctl/internal/protocol/bits"
	"github.com/rs/zerolog"
)

// Limits constrains decode resource use on untrusted input.
type Limits struct {
	MaxDepth     int
	MaxInputBits int
}

func DefaultLimits() Limits {
	return Limits{
		MaxDepth:     256,
		MaxInputBits: 1 << 20,
	}
}

// Decoder turns bit streams into packet trees. It holds no per-decode state
// and may be shared between goroutines.
type Decoder struct {
	limits Limits
	logger zerolog.Logger
}

// NewDecoder returns a Decoder; zero limit fields fall back to DefaultLimits.
func NewDecoder(limits Limits) *Decoder {
	def := DefaultLimits()
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = def.MaxDepth
	}
	if limits.MaxInputBits <= 0 {
		limits.MaxInputBits = def.MaxInputBits
	}
	return &Decoder{limits: limits, logger: zerolog.Nop()}
}

// WithLogger returns a copy of d that emits debug events to logger.
func (d *Decoder) WithLogger(logger zerolog.Logger) *Decoder {
	cp := *d
	cp.logger = logger
	return &cp
}

func (d *Decoder) Limits() Limits {
	return d.limits
}

// Decode decodes a packet from buf with default limits.
func Decode(buf *bits.Buffer) (Packet, error) {
	return NewDecoder(DefaultLimits()).Decode(buf)
}

// DecodeHex decodes a packet from hex text with default limits.
func DecodeHex(s string) (Packet, error) {
	return NewDecoder(DefaultLimits()).DecodeHex(s)
}

// DecodeHex parses s and decodes the top-level packet.
func (d *Decoder) DecodeHex(s string) (Packet, error) {
	if len(s)*4 > d.limits.MaxInputBits {
		return Packet{}, fmt.Errorf("%w: %d bits, limit %d", ErrInputTooLarge, len(s)*4, d.limits.MaxInputBits)
	}
	buf, err := bits.ParseHex(s)
	if err != nil {
		return Packet{}, err
	}
	return d.Decode(buf)
}

// Decode consumes the top-level packet from buf. Bits left after it are
// padding and stay in buf.
func (d *Decoder) Decode(buf *bits.Buffer) (Packet, error) {
	if buf.Len() > d.limits.MaxInputBits {
		return Packet{}, fmt.Errorf("%w: %d bits, limit %d", ErrInputTooLarge, buf.Len(), d.limits.MaxInputBits)
	}
	start := buf.Offset()
	p, err := d.decodePacket(buf, 1)
	if err != nil {
		d.logger.Debug().Err(err).Int("offset", start).Msg("packet decode failed")
		return Packet{}, err
	}
	d.logger.Debug().
		Int("packets", p.Count()).
		Int("depth", p.Depth()).
		Int("bits", buf.Offset()-start).
		Int("padding", buf.Len()).
		Msg("packet decoded")
	return p, nil
}

func (d *Decoder) decodePacket(buf *bits.Buffer, depth int) (Packet, error) {
	start := buf.Offset()
	fail := func(err error) (Packet, error) {
		var located *DecodeError
		if errors.As(err, &located) {
			return Packet{}, err
		}
		return Packet{}, &DecodeError{Offset: start, Depth: depth, Err: err}
	}

	if depth > d.limits.MaxDepth {
		return fail(fmt.Errorf("%w: limit %d", ErrDepthExceeded, d.limits.MaxDepth))
	}

	head, err := parseHeader(buf)
	if err != nil {
		return fail(err)
	}

	var body Body
	if head.TypeID == TypeLiteral {
		body, err = decodeLiteral(buf)
	} else {
		body, err = d.decodeOperator(buf, depth)
	}
	if err != nil {
		return fail(err)
	}
	return Packet{Header: head, Body: body}, nil
}

func parseHeader(buf *bits.Buffer) (Header, error) {
	raw, err := buf.ReadUint(HeaderBits)
	if err != nil {
		return Header{}, fmt.Errorf("header: %w", err)
	}
	return Header{
		Version: uint8(raw >> typeBits),
		TypeID:  TypeID(raw & maxTypeID),
	}, nil
}

func decodeLiteral(buf *bits.Buffer) (Literal, error) {
	var value uint64
	for {
		group, err := buf.ReadUint(groupBits)
		if err != nil {
			return Literal{}, fmt.Errorf("literal group: %w", err)
		}
		if value>>(64-groupValueBits) != 0 {
			return Literal{}, ErrLiteralOverflow
		}
		value = value<<groupValueBits | group&(1<<groupValueBits-1)
		if group>>groupValueBits == 0 {
			return Literal{Value: value}, nil
		}
	}
}

func (d *Decoder) decodeOperator(buf *bits.Buffer, depth int) (Operator, error) {
	count, err := buf.ReadBit()
	if err != nil {
		return Operator{}, fmt.Errorf("length type: %w", err)
	}

	var subpackets []Packet
	if count {
		n, err := buf.ReadUint(subpacketsBits)
		if err != nil {
			return Operator{}, fmt.Errorf("sub-packet count: %w", err)
		}
		if n == 0 {
			return Operator{}, ErrEmptyOperator
		}
		subpackets = make([]Packet, 0, n)
		for i := uint64(0); i < n; i++ {
			p, err := d.decodePacket(buf, depth+1)
			if err != nil {
				return Operator{}, err
			}
			subpackets = append(subpackets, p)
		}
		return Operator{LengthType: LengthCount, Subpackets: subpackets}, nil
	}

	length, err := buf.ReadUint(bitLengthBits)
	if err != nil {
		return Operator{}, fmt.Errorf("sub-packet length: %w", err)
	}
	region, err := buf.Take(int(length))
	if err != nil {
		return Operator{}, fmt.Errorf("sub-packet region: %w", err)
	}
	for !region.IsEmpty() {
		p, err := d.decodePacket(region, depth+1)
		if err != nil {
			return Operator{}, err
		}
		subpackets = append(subpackets, p)
	}
	if len(subpackets) == 0 {
		return Operator{}, ErrEmptyOperator
	}
	return Operator{LengthType: LengthBits, Subpackets: subpackets}, nil
}
