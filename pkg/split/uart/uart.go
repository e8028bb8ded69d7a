// Package uart connects the halves of a split keyboard over a serial port.
package uart

import (
	"os"
	"time"

	"github.com/goburrow/serial"
)

// Config configures the serial port.
type Config struct {
	Address  string
	BaudRate int
	// ReadTimeout bounds a single read on the port. It should be much
	// shorter than the link timeout.
	ReadTimeout time.Duration
}

// DefaultConfig returns the default serial settings.
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		ReadTimeout: time.Millisecond,
	}
}

// Port is a serial connection to the other half. Read returns 0 bytes
// with nil error when nothing is received within ReadTimeout.
type Port struct {
	port serial.Port
}

// Open opens the serial port.
func Open(conf Config) (*Port, error) {
	p, err := serial.Open(&serial.Config{
		Address:  conf.Address,
		BaudRate: conf.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  conf.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Port{port: p}, nil
}

// Wrap wraps an opened serial port.
func Wrap(p serial.Port) *Port {
	return &Port{port: p}
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err != nil && isTimeout(err) {
		return n, nil
	}
	return n, err
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.port.Close()
}

func isTimeout(err error) bool {
	if err == serial.ErrTimeout || os.IsTimeout(err) {
		return true
	}
	if t, ok := err.(interface{ Timeout() bool }); ok {
		return t.Timeout()
	}
	return false
}
