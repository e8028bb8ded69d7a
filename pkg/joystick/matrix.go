// Package joystick provides key switches backed by a joystick or a
// USB button box.
package joystick

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/splitkbd/pkg/framework"
	"github.com/robotalks/splitkbd/pkg/joystick/device"
	"github.com/robotalks/splitkbd/pkg/kbd"
	"github.com/robotalks/splitkbd/pkg/matrix"
)

// Opener opens a joystick device.
type Opener func() (device.Device, error)

type axis struct {
	value    int
	filter   matrix.Filter
	neg, pos *matrix.Debouncer
}

// ButtonMatrix maps joystick buttons to switches. Button n is the switch
// at row n/Cols, column n%Cols. Each axis is filtered and debounced into
// two virtual switches, for negative and positive deflection, numbered
// from AxisBase.
type ButtonMatrix struct {
	Cols          int
	Side          kbd.Side
	AxisBase      int
	Threshold     float32
	RetryInterval time.Duration
	Verbose       bool

	open Opener

	lock    sync.Mutex
	name    string
	buttons map[int]bool
	axes    map[int]*axis
}

// NewButtonMatrix creates a ButtonMatrix. Devices are opened by Run.
func NewButtonMatrix(open Opener, cols int) *ButtonMatrix {
	if cols <= 0 {
		cols = defaultConfig.Cols
	}
	return &ButtonMatrix{
		Cols:          cols,
		AxisBase:      defaultConfig.AxisBase,
		Threshold:     matrix.DefaultThreshold,
		RetryInterval: defaultConfig.RetryInterval,
		open:          open,
		buttons:       make(map[int]bool),
		axes:          make(map[int]*axis),
	}
}

// DeviceName returns the name of the opened device, or empty.
func (m *ButtonMatrix) DeviceName() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.name
}

func (m *ButtonMatrix) switchAt(index int) kbd.SwitchID {
	return kbd.SwitchID{Side: m.Side, Row: uint8(index / m.Cols), Col: uint8(index % m.Cols)}
}

// Scan implements kbd.KeySwitches.
func (m *ButtonMatrix) Scan() []kbd.SwitchID {
	m.lock.Lock()
	defer m.lock.Unlock()

	var indices []int
	for index, pressed := range m.buttons {
		if pressed {
			indices = append(indices, index)
		}
	}
	for index, a := range m.axes {
		level := a.filter.Predict(float32(a.value) * 100 / device.MaxAxisValue)
		if a.neg.Update(level < -m.Threshold) {
			indices = append(indices, m.AxisBase+index*2)
		}
		if a.pos.Update(level > m.Threshold) {
			indices = append(indices, m.AxisBase+index*2+1)
		}
	}
	sort.Ints(indices)
	if len(indices) > kbd.SwitchRollover {
		indices = indices[:kbd.SwitchRollover]
	}
	switches := make([]kbd.SwitchID, len(indices))
	for n, index := range indices {
		switches[n] = m.switchAt(index)
	}
	return switches
}

// HandleEvent applies a device event.
func (m *ButtonMatrix) HandleEvent(ev device.Event) {
	m.lock.Lock()
	defer m.lock.Unlock()
	switch e := ev.(type) {
	case device.ButtonEvent:
		if m.Verbose {
			glog.Infof("button %d: %v", e.Index(), e.Pressed())
		}
		m.buttons[e.Index()] = e.Pressed()
	case device.AxisEvent:
		if m.Verbose {
			glog.Infof("axis %d: %d", e.Index(), e.Value())
		}
		a := m.axes[e.Index()]
		if a == nil {
			a = &axis{
				neg: matrix.NewDebouncer(matrix.DefaultDebounceSize),
				pos: matrix.NewDebouncer(matrix.DefaultDebounceSize),
			}
			m.axes[e.Index()] = a
		}
		a.value = e.Value()
	}
}

func (m *ButtonMatrix) attach(dev device.Device) {
	glog.Infof("joystick %d %q opened, %d buttons %d axes",
		dev.Index(), dev.Name(), dev.ButtonCount(), dev.AxisCount())
	m.lock.Lock()
	m.name = dev.Name()
	m.lock.Unlock()
}

// detach releases everything so nothing stays pressed.
func (m *ButtonMatrix) detach() {
	m.lock.Lock()
	m.name = ""
	m.buttons = make(map[int]bool)
	m.axes = make(map[int]*axis)
	m.lock.Unlock()
}

// Run implements framework.Runnable. The device is reopened when it
// disappears.
func (m *ButtonMatrix) Run(ctx context.Context) error {
	for {
		dev, err := m.open()
		if err == nil {
			m.attach(dev)
			err = fx.RunWithContextCloser(ctx, dev, func() error {
				for {
					ev, err := dev.ReadEvent()
					if err != nil {
						return err
					}
					m.HandleEvent(ev)
				}
			})
			m.detach()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.Warningf("joystick %d lost: %v", dev.Index(), err)
		} else {
			glog.V(2).Infof("open joystick: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.RetryInterval):
		}
	}
}
