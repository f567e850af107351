package bits

import (
	"errors"
	"math"
	"testing"
)

func TestParseHexExpandsMSBFirst(t *testing.T) {
	b, err := ParseHex("D2fe28")
	if err != nil {
		t.Fatalf("parse hex: %v", err)
	}
	if b.Len() != 24 {
		t.Fatalf("expected 24 bits, got %d", b.Len())
	}
	if got, want := b.String(), "110100101111111000101000"; got != want {
		t.Fatalf("bits mismatch: got=%s want=%s", got, want)
	}
}

func TestParseHexRejectsMalformedInput(t *testing.T) {
	if _, err := ParseHex("D2F"); !errors.Is(err, ErrOddLength) || !errors.Is(err, ErrMalformedHex) {
		t.Fatalf("expected ErrOddLength wrapping ErrMalformedHex, got %v", err)
	}
	if _, err := ParseHex("D2ZZ"); !errors.Is(err, ErrMalformedHex) {
		t.Fatalf("expected ErrMalformedHex, got %v", err)
	}
}

func TestReadUintAcrossByteBoundaries(t *testing.T) {
	b := FromBytes([]byte{0xD2, 0xFE, 0x28})
	version, err := b.ReadUint(3)
	if err != nil || version != 6 {
		t.Fatalf("version: got=%d err=%v", version, err)
	}
	typeID, err := b.ReadUint(3)
	if err != nil || typeID != 4 {
		t.Fatalf("type id: got=%d err=%v", typeID, err)
	}
	group, err := b.ReadUint(5)
	if err != nil || group != 0b10111 {
		t.Fatalf("group: got=%05b err=%v", group, err)
	}
	if b.Offset() != 11 || b.Len() != 13 {
		t.Fatalf("cursor mismatch: offset=%d len=%d", b.Offset(), b.Len())
	}
}

func TestReadUintFullWidth(t *testing.T) {
	b := FromBytes([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x80})
	if _, err := b.ReadUint(1); err != nil {
		t.Fatalf("read 1: %v", err)
	}
	v, err := b.ReadUint(64)
	if err != nil {
		t.Fatalf("read 64: %v", err)
	}
	if v != math.MaxUint64 {
		t.Fatalf("expected max uint64, got %x", v)
	}
	if b.Len() != 7 {
		t.Fatalf("expected 7 bits left, got %d", b.Len())
	}
}

func TestReadUintRejectsBadWidth(t *testing.T) {
	b := FromBytes([]byte{0x00})
	for _, n := range []int{0, 65, -1} {
		if _, err := b.ReadUint(n); !errors.Is(err, ErrWidth) {
			t.Fatalf("width %d: expected ErrWidth, got %v", n, err)
		}
	}
	if b.Offset() != 0 {
		t.Fatalf("rejected reads must not consume, offset=%d", b.Offset())
	}
}

func TestUnderrunIsReportedNotPanicked(t *testing.T) {
	b := FromBytes([]byte{0xAB})
	if _, err := b.ReadUint(9); !errors.Is(err, ErrUnderrun) {
		t.Fatalf("expected ErrUnderrun, got %v", err)
	}
	if _, err := b.Take(9); !errors.Is(err, ErrUnderrun) {
		t.Fatalf("expected ErrUnderrun from take, got %v", err)
	}
	if b.Len() != 8 {
		t.Fatalf("failed reads must not consume, len=%d", b.Len())
	}
	if _, err := b.ReadUint(8); err != nil {
		t.Fatalf("read remaining: %v", err)
	}
	if _, err := b.ReadBit(); !errors.Is(err, ErrUnderrun) {
		t.Fatalf("expected ErrUnderrun from read bit, got %v", err)
	}
}

func TestTakeSplitsIndependentPrefix(t *testing.T) {
	b := FromBytes([]byte{0b10110011, 0b01010101})
	if _, err := b.ReadUint(2); err != nil {
		t.Fatalf("skip: %v", err)
	}
	head, err := b.Take(7)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if head.String() != "1100110" {
		t.Fatalf("head mismatch: %s", head.String())
	}
	if head.Offset() != 2 {
		t.Fatalf("head should keep absolute offset, got %d", head.Offset())
	}
	if b.String() != "1010101" || b.Offset() != 9 {
		t.Fatalf("remainder mismatch: %s offset=%d", b.String(), b.Offset())
	}

	if _, err := head.ReadUint(7); err != nil {
		t.Fatalf("drain head: %v", err)
	}
	if !head.IsEmpty() {
		t.Fatalf("head should be empty")
	}
	if b.Len() != 7 {
		t.Fatalf("draining head must not touch remainder, len=%d", b.Len())
	}
	if _, err := head.ReadBit(); !errors.Is(err, ErrUnderrun) {
		t.Fatalf("head must not read past its end, got %v", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	var w Writer
	fields := []struct {
		width int
		value uint64
	}{
		{3, 6}, {3, 4}, {5, 0b10111}, {5, 0b11110}, {5, 0b00101}, {1, 0}, {64, math.MaxUint64}, {11, 2047},
	}
	for _, f := range fields {
		if err := w.WriteUint(f.width, f.value); err != nil {
			t.Fatalf("write %d bits: %v", f.width, err)
		}
	}
	if w.Len() != 97 {
		t.Fatalf("expected 97 bits written, got %d", w.Len())
	}
	if len(w.Bytes()) != 13 {
		t.Fatalf("expected 13 padded bytes, got %d", len(w.Bytes()))
	}

	r := FromBytes(w.Bytes())
	for i, f := range fields {
		got, err := r.ReadUint(f.width)
		if err != nil {
			t.Fatalf("field %d: %v", i, err)
		}
		if got != f.value {
			t.Fatalf("field %d: got=%d want=%d", i, got, f.value)
		}
	}
	if r.String() != "0000000" {
		t.Fatalf("padding should be zero bits, got %s", r.String())
	}
}

func TestWriterHexMatchesKnownLiteral(t *testing.T) {
	var w Writer
	_ = w.WriteUint(6, 0b110100)
	for _, g := range []uint64{0b10111, 0b11110, 0b00101} {
		_ = w.WriteUint(5, g)
	}
	if got := w.Hex(); got != "D2FE28" {
		t.Fatalf("hex mismatch: %s", got)
	}

	var copyW Writer
	src, _ := ParseHex("D2FE28")
	copyW.WriteBuffer(src)
	if copyW.Hex() != "D2FE28" || src.Len() != 24 {
		t.Fatalf("WriteBuffer mismatch: hex=%s remaining=%d", copyW.Hex(), src.Len())
	}
}
