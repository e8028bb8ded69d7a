package split

import (
	"errors"
	"fmt"
)

var (
	// ErrReadTimedOut indicates nothing is received within the timeout.
	ErrReadTimedOut = errors.New("read timed out")
	// ErrReadBufferOverflow indicates the declared length of a message
	// exceeds the capacity.
	ErrReadBufferOverflow = errors.New("read buffer overflow")
	// ErrMessageTooLong indicates a message carries more switches than
	// the rollover.
	ErrMessageTooLong = errors.New("message too long")
	// ErrNotAvailable indicates the keyboard is not split.
	ErrNotAvailable = errors.New("split not available")
)

// ReadError wraps a fault from the underlying connection.
type ReadError struct {
	Err error
}

// Error implements error.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read error: %v", e.Err)
}

// Unwrap returns the source error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// UnknownMessageError indicates an unknown head byte.
type UnknownMessageError struct {
	Head byte
}

// Error implements error.
func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("unknown message 0x%02x", e.Head)
}
