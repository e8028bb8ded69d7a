// Package status mirrors the keyboard state to monitors.
package status

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// Snapshot is the published state of a keyboard.
type Snapshot struct {
	DeviceID  string   `protobuf:"bytes,1,opt,name=device_id,proto3" json:"device_id,omitempty"`
	Seq       uint64   `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	Layer     uint32   `protobuf:"varint,3,opt,name=layer,proto3" json:"layer"`
	LayerName string   `protobuf:"bytes,4,opt,name=layer_name,proto3" json:"layer_name,omitempty"`
	Keys      []uint32 `protobuf:"varint,5,rep,packed,name=keys,proto3" json:"keys,omitempty"`
	KeyNames  []string `protobuf:"bytes,6,rep,name=key_names,proto3" json:"key_names,omitempty"`
	Split     string   `protobuf:"bytes,7,opt,name=split,proto3" json:"split,omitempty"`
	Side      string   `protobuf:"bytes,8,opt,name=side,proto3" json:"side,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Snapshot) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Snapshot) Reset() { *m = Snapshot{} }

// String implements proto.Message.
func (m *Snapshot) String() string { return proto.CompactTextString(m) }

// NewSnapshot converts the keyboard state.
func NewSnapshot(deviceID string, side kbd.Side, seq uint64, state *kbd.State) *Snapshot {
	s := &Snapshot{
		DeviceID:  deviceID,
		Seq:       seq,
		Layer:     uint32(state.Layer),
		LayerName: state.LayerName,
		Split:     state.Split.String(),
	}
	if side != kbd.SideNone {
		s.Side = side.String()
	}
	for _, key := range state.Keys {
		s.Keys = append(s.Keys, uint32(key))
		s.KeyNames = append(s.KeyNames, key.String())
	}
	return s
}

// KeyChars renders the keys as a compact string.
func (m *Snapshot) KeyChars() string {
	chars := make([]byte, len(m.Keys))
	for n, code := range m.Keys {
		chars[n] = kbd.Key(code).Char()
	}
	return string(chars)
}

// Encode serializes the snapshot.
func Encode(s *Snapshot) ([]byte, error) {
	return proto.Marshal(s)
}

// Decode parses a serialized snapshot.
func Decode(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}
