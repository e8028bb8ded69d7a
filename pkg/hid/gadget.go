package hid

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// DefaultDevice is the gadget device created by the Linux HID function.
const DefaultDevice = "/dev/hidg0"

// ErrNotReady indicates the gadget device is not opened.
var ErrNotReady = errors.New("HID gadget not ready")

// DeviceState is the state of the gadget.
type DeviceState int

// Device states.
const (
	StateDefault DeviceState = iota
	StateConfigured
)

// String implements fmt.Stringer.
func (s DeviceState) String() string {
	if s == StateConfigured {
		return "configured"
	}
	return "default"
}

// Opener opens the gadget device for writing.
type Opener func(path string) (io.WriteCloser, error)

func openDevice(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY, 0)
}

// Gadget implements kbd.ExternalCommunicator on a HID gadget device.
// The device is configured while the file is open.
type Gadget struct {
	Path string
	Open Opener

	lock sync.Mutex
	dev  io.WriteCloser
}

// NewGadget creates a Gadget. The device is opened on Poll.
func NewGadget(path string) *Gadget {
	if path == "" {
		path = DefaultDevice
	}
	return &Gadget{Path: path, Open: openDevice}
}

// State returns the device state.
func (g *Gadget) State() DeviceState {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.dev != nil {
		return StateConfigured
	}
	return StateDefault
}

// IsReady implements kbd.ExternalCommunicator.
func (g *Gadget) IsReady() bool {
	return g.State() == StateConfigured
}

// Poll opens the device if not opened yet.
func (g *Gadget) Poll() error {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.dev != nil {
		return nil
	}
	dev, err := g.Open(g.Path)
	if err != nil {
		return err
	}
	glog.Infof("HID gadget %s opened", g.Path)
	g.dev = dev
	return nil
}

// SendKeys implements kbd.ExternalCommunicator. A write may block until
// the host reads the previous report, so the lock is not held while
// writing. The device is closed on write failures and reopened by the
// next Poll.
func (g *Gadget) SendKeys(keys []kbd.Key) error {
	g.lock.Lock()
	dev := g.dev
	g.lock.Unlock()
	if dev == nil {
		return ErrNotReady
	}
	for _, report := range [][]byte{
		NewKeyboardReport(keys).Bytes(),
		NewConsumerReport(keys).Bytes(),
	} {
		if _, err := dev.Write(report); err != nil {
			g.lock.Lock()
			if g.dev == dev {
				g.closeDevice()
			}
			g.lock.Unlock()
			return err
		}
	}
	return nil
}

// Close closes the device.
func (g *Gadget) Close() error {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.closeDevice()
}

func (g *Gadget) closeDevice() error {
	if g.dev == nil {
		return nil
	}
	err := g.dev.Close()
	g.dev = nil
	glog.Warningf("HID gadget %s closed", g.Path)
	return err
}
