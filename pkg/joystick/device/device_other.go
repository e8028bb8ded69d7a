// +build !linux

package device

import "errors"

var errUnsupported = errors.New("joystick is only supported on linux")

// Open is not supported.
func Open(index int) (Device, error) {
	return nil, errUnsupported
}

// DetectAndOpen is not supported.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, errUnsupported
}
