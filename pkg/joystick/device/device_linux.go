// +build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"syscall"
	"unsafe"
)

const maxDevices = 32

type device struct {
	file        *os.File
	index       int
	name        string
	axisCount   uint8
	buttonCount uint8
	buf         [8]byte
}

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &device{file: f, index: index}
	if err := d.query(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// DetectAndOpen opens the first available device from startIndex.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < maxDevices; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, ErrNoDevice
}

func (d *device) query() error {
	if errno := d.ioctl(iocGAXES, unsafe.Pointer(&d.axisCount)); errno != 0 {
		return errno
	}
	if errno := d.ioctl(iocGBUTTONS, unsafe.Pointer(&d.buttonCount)); errno != 0 {
		return errno
	}
	var name [256]byte
	if errno := d.ioctl(iocGNAME, unsafe.Pointer(&name)); errno != 0 {
		return errno
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		d.name = string(name[:pos])
	} else {
		d.name = string(name[:])
	}
	return nil
}

func (d *device) Close() error     { return d.file.Close() }
func (d *device) Index() int       { return d.index }
func (d *device) Name() string     { return d.name }
func (d *device) AxisCount() int   { return int(d.axisCount) }
func (d *device) ButtonCount() int { return int(d.buttonCount) }

// ReadEvent implements Device. Events other than axis and button are
// returned as plain Event.
func (d *device) ReadEvent() (Event, error) {
	if _, err := io.ReadFull(d.file, d.buf[:]); err != nil {
		return nil, err
	}
	ev := event{
		value:  int16(binary.LittleEndian.Uint16(d.buf[4:])),
		kind:   d.buf[6],
		number: d.buf[7],
	}
	switch ev.kind &^ evINIT {
	case evBTN:
		return &buttonEvent{ev}, nil
	case evAXIS:
		return &axisEvent{ev}, nil
	}
	return &ev, nil
}

type event struct {
	value  int16
	kind   uint8
	number uint8
}

func (e *event) IsInit() bool { return e.kind&evINIT != 0 }
func (e *event) Index() int   { return int(e.number) }

type axisEvent struct{ event }

func (e *axisEvent) Value() int { return int(e.value) }

type buttonEvent struct{ event }

func (e *buttonEvent) Pressed() bool { return e.value != 0 }

const (
	iocGAXES    uint = 0x80016a11
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80ff6a13

	evINIT uint8 = 0x80
	evBTN  uint8 = 0x01
	evAXIS uint8 = 0x02
)

func (d *device) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, err := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(req), uintptr(ptr))
	return err
}
