// Package device reads Linux joystick devices.
package device

import (
	"errors"
	"io"
)

// ErrNoDevice indicates no joystick is found.
var ErrNoDevice = errors.New("no joystick detected")

// Event defines the base event interface.
type Event interface {
	// IsInit indicates this is the initial state reported after open.
	IsInit() bool
	// Index returns either Axis or Button index.
	Index() int
}

// AxisEvent represents the change on an axis.
type AxisEvent interface {
	Event
	// Value is in [-32767, 32767].
	Value() int
}

// ButtonEvent represents the change on a button.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device represents an opened joystick.
type Device interface {
	io.Closer
	// Index returns the index of the device on the system.
	Index() int
	// Name returns the name of the device.
	Name() string
	// AxisCount returns the number of Axis on the device.
	AxisCount() int
	// ButtonCount returns the number of buttons on the device.
	ButtonCount() int
	// ReadEvent reads one event from the device, blocking.
	ReadEvent() (Event, error)
}

// MaxAxisValue is the full deflection of an axis.
const MaxAxisValue = 32767
