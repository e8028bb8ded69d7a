package kbd

import (
	"errors"
	"fmt"
)

// SwitchRollover is the max number of switches reported by a scan.
const SwitchRollover = 12

// ErrInvalidSwitchData indicates bytes can't be decoded into a SwitchID.
var ErrInvalidSwitchData = errors.New("invalid switch data")

// Side identifies the half of a split keyboard.
type Side uint8

// Sides of a keyboard. SideNone is used by non-split keyboards.
const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// String implements fmt.Stringer.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return "none"
}

// Opposite returns the other half.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return SideNone
}

// ParseSide parses the name of a side.
func ParseSide(name string) (Side, error) {
	switch name {
	case "", "none":
		return SideNone, nil
	case "left", "l":
		return SideLeft, nil
	case "right", "r":
		return SideRight, nil
	}
	return SideNone, fmt.Errorf("unknown side %q", name)
}

// SwitchID addresses a physical key switch.
type SwitchID struct {
	Side Side
	Row  uint8
	Col  uint8
}

// Switch creates a SwitchID without side.
func Switch(row, col uint8) SwitchID {
	return SwitchID{Row: row, Col: col}
}

// Left returns a copy tagged with the left side.
func (s SwitchID) Left() SwitchID {
	return s.On(SideLeft)
}

// Right returns a copy tagged with the right side.
func (s SwitchID) Right() SwitchID {
	return s.On(SideRight)
}

// On returns a copy tagged with the specified side.
func (s SwitchID) On(side Side) SwitchID {
	s.Side = side
	return s
}

// String implements fmt.Stringer.
func (s SwitchID) String() string {
	if s.Side == SideNone {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%s(%d,%d)", s.Side, s.Row, s.Col)
}

// Codec encodes SwitchID into a fixed number of bytes.
type Codec interface {
	// Size is the number of bytes of one encoded SwitchID.
	Size() int
	// Encode writes the SwitchID into dst which has at least Size bytes.
	Encode(dst []byte, id SwitchID)
	// Decode reads a SwitchID from src which has at least Size bytes.
	Decode(src []byte) (SwitchID, error)
}

// PlainCodec encodes row and col only.
type PlainCodec struct{}

// Size implements Codec.
func (PlainCodec) Size() int { return 2 }

// Encode implements Codec.
func (PlainCodec) Encode(dst []byte, id SwitchID) {
	dst[0], dst[1] = id.Row, id.Col
}

// Decode implements Codec.
func (PlainCodec) Decode(src []byte) (SwitchID, error) {
	if len(src) < 2 {
		return SwitchID{}, ErrInvalidSwitchData
	}
	return SwitchID{Row: src[0], Col: src[1]}, nil
}

// TaggedCodec encodes the side ahead of row and col.
// Left is encoded as 0 and right as 1. An untagged SwitchID is encoded as
// left, so the receiving half retags decoded IDs with the sender's side.
type TaggedCodec struct{}

// Size implements Codec.
func (TaggedCodec) Size() int { return 3 }

// Encode implements Codec.
func (TaggedCodec) Encode(dst []byte, id SwitchID) {
	if id.Side == SideRight {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	dst[1], dst[2] = id.Row, id.Col
}

// Decode implements Codec.
func (TaggedCodec) Decode(src []byte) (SwitchID, error) {
	if len(src) < 3 {
		return SwitchID{}, ErrInvalidSwitchData
	}
	var side Side
	switch src[0] {
	case 0:
		side = SideLeft
	case 1:
		side = SideRight
	default:
		return SwitchID{}, ErrInvalidSwitchData
	}
	return SwitchID{Side: side, Row: src[1], Col: src[2]}, nil
}

// KeySwitches provides currently pressed switches.
type KeySwitches interface {
	// Scan returns at most SwitchRollover pressed switches.
	Scan() []SwitchID
}

// ScanFunc is the func form of KeySwitches.
type ScanFunc func() []SwitchID

// Scan implements KeySwitches.
func (f ScanFunc) Scan() []SwitchID {
	return f()
}
