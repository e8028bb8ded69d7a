// Package hid delivers resolved keys to the host over a USB HID gadget.
package hid

import (
	"encoding/binary"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// Report IDs.
const (
	KeyboardReportID byte = 1
	ConsumerReportID byte = 2
)

// KeyboardReport is the boot-compatible keyboard report.
type KeyboardReport struct {
	Modifier byte
	Keys     [kbd.KeyRollover]byte
}

// NewKeyboardReport builds the keyboard report from resolved keys.
// Modifier flags are OR-ed together and the first KeyRollover key
// codes are kept.
func NewKeyboardReport(keys []kbd.Key) *KeyboardReport {
	r := &KeyboardReport{}
	n := 0
	for _, key := range keys {
		r.Modifier |= key.ModifierFlag()
		if code, ok := key.KeyCode(); ok && n < len(r.Keys) {
			r.Keys[n] = code
			n++
		}
	}
	return r
}

// Bytes encodes the report prefixed with its report ID.
//
//	Byte 0: KeyboardReportID
//	Byte 1: Modifiers
//	Byte 2: Reserved
//	Bytes 3-8: Key codes
func (r *KeyboardReport) Bytes() []byte {
	b := make([]byte, 3+len(r.Keys))
	b[0] = KeyboardReportID
	b[1] = r.Modifier
	copy(b[3:], r.Keys[:])
	return b
}

// ConsumerReport carries a single consumer control usage.
type ConsumerReport struct {
	Usage uint16
}

// NewConsumerReport uses the first media key, or reports no usage.
func NewConsumerReport(keys []kbd.Key) *ConsumerReport {
	for _, key := range keys {
		if key.IsMediaKey() {
			return &ConsumerReport{Usage: key.MediaUsageID()}
		}
	}
	return &ConsumerReport{}
}

// Bytes encodes the report prefixed with its report ID.
func (r *ConsumerReport) Bytes() []byte {
	b := make([]byte, 3)
	b[0] = ConsumerReportID
	binary.LittleEndian.PutUint16(b[1:], r.Usage)
	return b
}
