package packet

import (
	"encoding/json"
	"strconv"
	"strings"
)

// String renders p as a compact expression, e.g.
// less(v1){literal(v6)=10 literal(v2)=20}.
func (p Packet) String() string {
	var sb strings.Builder
	p.render(&sb)
	return sb.String()
}

func (p Packet) render(sb *strings.Builder) {
	sb.WriteString(p.Header.TypeID.String())
	sb.WriteString("(v")
	sb.WriteString(strconv.Itoa(int(p.Header.Version)))
	sb.WriteByte(')')
	switch body := p.Body.(type) {
	case Literal:
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatUint(body.Value, 10))
	case Operator:
		sb.WriteByte('{')
		for i, sub := range body.Subpackets {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sub.render(sb)
		}
		sb.WriteByte('}')
	}
}

type jsonPacket struct {
	Version    uint8    `json:"version"`
	Type       string   `json:"type"`
	TypeID     uint8    `json:"type_id"`
	Value      *uint64  `json:"value,omitempty"`
	ValueText  string   `json:"value_str,omitempty"`
	LengthType string   `json:"length_type,omitempty"`
	Subpackets []Packet `json:"subpackets,omitempty"`
}

func (p Packet) MarshalJSON() ([]byte, error) {
	out := jsonPacket{
		Version: p.Header.Version,
		Type:    p.Header.TypeID.String(),
		TypeID:  uint8(p.Header.TypeID),
	}
	switch body := p.Body.(type) {
	case Literal:
		value := body.Value
		out.Value = &value
		out.ValueText = strconv.FormatUint(value, 10)
	case Operator:
		out.LengthType = body.LengthType.String()
		out.Subpackets = body.Subpackets
	}
	return json.Marshal(out)
}
