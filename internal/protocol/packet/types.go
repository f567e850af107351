package packet

import "strconv"

// TypeID is the 3-bit packet type tag.
type TypeID uint8

const (
	TypeSum     TypeID = 0
	TypeProduct TypeID = 1
	TypeMinimum TypeID = 2
	TypeMaximum TypeID = 3
	TypeLiteral TypeID = 4
	TypeGreater TypeID = 5
	TypeLess    TypeID = 6
	TypeEqual   TypeID = 7
)

var typeNames = [...]string{
	TypeSum:     "sum",
	TypeProduct: "product",
	TypeMinimum: "minimum",
	TypeMaximum: "maximum",
	TypeLiteral: "literal",
	TypeGreater: "greater",
	TypeLess:    "less",
	TypeEqual:   "equal",
}

func (t TypeID) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// LengthType selects how an operator delimits its sub-packet region.
type LengthType uint8

const (
	// LengthBits prefixes the region with its total size in bits (15-bit field).
	LengthBits LengthType = 0
	// LengthCount prefixes the region with its sub-packet count (11-bit field).
	LengthCount LengthType = 1
)

func (l LengthType) String() string {
	switch l {
	case LengthBits:
		return "bits"
	case LengthCount:
		return "count"
	default:
		return "length(" + strconv.Itoa(int(l)) + ")"
	}
}

// Wire field widths.
const (
	versionBits     = 3
	typeBits        = 3
	HeaderBits      = versionBits + typeBits
	groupBits       = 5
	groupValueBits  = 4
	bitLengthBits   = 15
	subpacketsBits  = 11
	maxVersion      = 1<<versionBits - 1
	maxTypeID       = 1<<typeBits - 1
	maxBitLength    = 1<<bitLengthBits - 1
	maxSubpacketNum = 1<<subpacketsBits - 1
)

// Header is the fixed 6-bit packet prefix.
type Header struct {
	Version uint8
	TypeID  TypeID
}

// Body is either Literal or Operator.
type Body interface {
	isBody()
}

// Literal carries the value of a type 4 packet.
type Literal struct {
	Value uint64
}

// Operator carries the sub-packets of every non-literal packet.
type Operator struct {
	LengthType LengthType
	Subpackets []Packet
}

func (Literal) isBody()  {}
func (Operator) isBody() {}

// Packet is one decoded unit. A packet exclusively owns its sub-packets.
type Packet struct {
	Header Header
	Body   Body
}

// NewLiteral builds a literal packet.
func NewLiteral(version uint8, value uint64) Packet {
	return Packet{
		Header: Header{Version: version, TypeID: TypeLiteral},
		Body:   Literal{Value: value},
	}
}

// NewOperator builds an operator packet using the count length type.
func NewOperator(version uint8, typeID TypeID, subpackets ...Packet) Packet {
	return Packet{
		Header: Header{Version: version, TypeID: typeID},
		Body:   Operator{LengthType: LengthCount, Subpackets: subpackets},
	}
}

// Count returns the number of packets in the tree, including p.
func (p Packet) Count() int {
	op, ok := p.Body.(Operator)
	if !ok {
		return 1
	}
	n := 1
	for _, sub := range op.Subpackets {
		n += sub.Count()
	}
	return n
}

// Depth returns the nesting depth of the tree; a lone packet has depth 1.
func (p Packet) Depth() int {
	op, ok := p.Body.(Operator)
	if !ok {
		return 1
	}
	deepest := 0
	for _, sub := range op.Subpackets {
		deepest = max(deepest, sub.Depth())
	}
	return deepest + 1
}
