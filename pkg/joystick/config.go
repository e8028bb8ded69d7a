package joystick

import (
	"flag"
	"time"

	"github.com/robotalks/splitkbd/pkg/joystick/device"
	"github.com/robotalks/splitkbd/pkg/kbd"
)

// Config defines the configurations of ButtonMatrix.
type Config struct {
	DeviceIndex   int
	Cols          int
	AxisBase      int
	RetryInterval time.Duration
	Verbose       bool
}

var defaultConfig = Config{
	DeviceIndex:   -1,
	Cols:          16,
	AxisBase:      128,
	RetryInterval: time.Second,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "joystick", defaultConfig.DeviceIndex, "Joystick device index, -1 for auto detection.")
	flag.IntVar(&defaultConfig.Cols, "joystick-cols", defaultConfig.Cols, "Columns of the switch matrix mapped from buttons.")
	flag.IntVar(&defaultConfig.AxisBase, "joystick-axis-base", defaultConfig.AxisBase, "Switch index of the first axis switch.")
	flag.BoolVar(&defaultConfig.Verbose, "joystick-verbose", defaultConfig.Verbose, "Log joystick events.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Opener opens the configured device.
func (c *Config) Opener() Opener {
	index := c.DeviceIndex
	if index >= 0 {
		return func() (device.Device, error) { return device.Open(index) }
	}
	return func() (device.Device, error) { return device.DetectAndOpen(0) }
}

// NewButtonMatrix creates a ButtonMatrix using the config.
func (c *Config) NewButtonMatrix(side kbd.Side) *ButtonMatrix {
	m := NewButtonMatrix(c.Opener(), c.Cols)
	m.Side = side
	m.AxisBase = c.AxisBase
	m.RetryInterval = c.RetryInterval
	m.Verbose = c.Verbose
	return m
}
