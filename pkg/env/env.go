// Package env builds the keyboard daemon from configurations.
package env

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robotalks/splitkbd/pkg/controller"
	fx "github.com/robotalks/splitkbd/pkg/framework"
	"github.com/robotalks/splitkbd/pkg/hid"
	"github.com/robotalks/splitkbd/pkg/joystick"
	"github.com/robotalks/splitkbd/pkg/kbd"
	"github.com/robotalks/splitkbd/pkg/kbd/keymap"
	"github.com/robotalks/splitkbd/pkg/split"
	"github.com/robotalks/splitkbd/pkg/split/uart"
	"github.com/robotalks/splitkbd/pkg/status"
	"github.com/robotalks/splitkbd/pkg/status/mqtt"
	"github.com/robotalks/splitkbd/pkg/status/websocket"
)

// Config provides the options of the keyboard daemon.
type Config struct {
	DeviceID string
	// Side is the half of a split keyboard: left, right or empty.
	Side string
	// Keymap is the path to the keymap file.
	Keymap string
	// HIDDevice is the HID gadget device.
	HIDDevice string

	// SerialDevice connects to the other half, empty for non-split.
	SerialDevice string
	BaudRate     int
	// TaggedSwitches sends switches with their side on the link.
	TaggedSwitches bool

	ScanInterval time.Duration
	SendInterval time.Duration

	// MQTTBrokerURL publishes status if specified.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebsocketAddr serves status over websocket if specified.
	WebsocketAddr string

	Joystick *joystick.Config
}

var defaultConfig = Config{
	Keymap:       "keymap.yaml",
	HIDDevice:    hid.DefaultDevice,
	BaudRate:     uart.DefaultConfig().BaudRate,
	ScanInterval: fx.DefaultInterval,
	SendInterval: controller.DefaultSendInterval,
	Joystick:     joystick.Default(),
}

func init() {
	envVars := map[string]*string{
		"KBD_SIDE":     &defaultConfig.Side,
		"KBD_KEYMAP":   &defaultConfig.Keymap,
		"KBD_HIDG":     &defaultConfig.HIDDevice,
		"KBD_SERIAL":   &defaultConfig.SerialDevice,
		"KBD_MQTT_URL": &defaultConfig.MQTTBrokerURL,
		"KBD_ID":       &defaultConfig.DeviceID,
	}
	for name, ptr := range envVars {
		if val := os.Getenv(name); val != "" {
			*ptr = val
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID, default to machine ID.")
	flag.StringVar(&defaultConfig.Side, "side", defaultConfig.Side, "Side of the split keyboard: left, right.")
	flag.StringVar(&defaultConfig.Keymap, "keymap", defaultConfig.Keymap, "Keymap file, YAML or TOML.")
	flag.StringVar(&defaultConfig.HIDDevice, "hidg", defaultConfig.HIDDevice, "HID gadget device.")
	flag.StringVar(&defaultConfig.SerialDevice, "serial", defaultConfig.SerialDevice, "Serial device connecting the other half.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate of the serial device.")
	flag.BoolVar(&defaultConfig.TaggedSwitches, "tagged", defaultConfig.TaggedSwitches, "Send switches with side on the split link.")
	flag.DurationVar(&defaultConfig.ScanInterval, "scan-interval", defaultConfig.ScanInterval, "Interval of scanning switches.")
	flag.DurationVar(&defaultConfig.SendInterval, "send-interval", defaultConfig.SendInterval, "Interval of sending keys.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for status.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Listen address of status websocket.")
	joystick.SetupFlags()
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	joystickConf := *defaultConfig.Joystick
	conf.Joystick = &joystickConf
	return &conf
}

// Env is the assembled keyboard.
type Env struct {
	Config *Config
	Side   kbd.Side
	Layout *keymap.Layout

	Matrix     *joystick.ButtonMatrix
	Split      *split.Switches
	Gadget     *hid.Gadget
	Controller *controller.Controller
	Driver     *controller.Driver

	Queue     *mqtt.Queue
	Websocket *websocket.Server
	Notifier  *controller.Notifier

	closers []io.Closer
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	side, err := kbd.ParseSide(c.Side)
	if err != nil {
		return nil, err
	}
	if c.SerialDevice != "" && side == kbd.SideNone {
		return nil, fmt.Errorf("side must be specified for split keyboard")
	}
	layout, err := keymap.Load(c.Keymap)
	if err != nil {
		return nil, fmt.Errorf("load keymap %s error: %w", c.Keymap, err)
	}
	if c.DeviceID == "" {
		c.DeviceID = MachineID()
	}

	e := &Env{Config: c, Side: side, Layout: layout}
	if err := e.setupSplit(); err != nil {
		return nil, err
	}
	e.Gadget = hid.NewGadget(c.HIDDevice)
	e.closers = append(e.closers, e.Gadget)
	e.Controller = controller.New(e.Gadget, e.Split, layout).WithSplit(e.Split)
	e.Driver = controller.NewDriver(e.Controller)
	e.Driver.SendInterval = c.SendInterval

	if err := e.setupStatus(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Env) setupSplit() error {
	e.Matrix = e.Config.Joystick.NewButtonMatrix(kbd.SideNone)
	var codec kbd.Codec = kbd.PlainCodec{}
	if e.Config.TaggedSwitches {
		codec = kbd.TaggedCodec{}
	}
	if e.Config.SerialDevice == "" {
		e.Split = split.NewSwitches(e.Matrix, split.NewCommunicator(nil, codec, nil), e.Side)
		return nil
	}
	conf := uart.DefaultConfig()
	conf.Address, conf.BaudRate = e.Config.SerialDevice, e.Config.BaudRate
	port, err := uart.Open(conf)
	if err != nil {
		return fmt.Errorf("open serial %s error: %w", conf.Address, err)
	}
	e.closers = append(e.closers, port)
	e.Split = split.NewSwitches(e.Matrix, split.NewCommunicator(port, codec, nil), e.Side)
	return nil
}

func (e *Env) setupStatus() error {
	var publishers status.Mux
	if e.Config.MQTTBrokerURL != "" {
		q, err := mqtt.NewQueueFromURL(e.Config.MQTTBrokerURL)
		if err != nil {
			return fmt.Errorf("MQTT broker URL error: %w", err)
		}
		e.Queue = q
		publishers = append(publishers, mqtt.NewPublisher(q))
	}
	if e.Config.WebsocketAddr != "" {
		e.Websocket = websocket.NewServer(e.Config.WebsocketAddr)
		publishers = append(publishers, e.Websocket)
	}
	if len(publishers) > 0 {
		e.Notifier = controller.NewNotifier(e.Config.DeviceID, e.Side, publishers)
	}
	return nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop implements framework.LoopAdder.
func (e *Env) AddToLoop(l *fx.Loop) {
	l.Interval = e.Config.ScanInterval
	l.AddRunnable(fx.NamedRun("joystick", e.Matrix))
	l.Add(e.Driver)
	if e.Notifier != nil {
		l.Add(e.Notifier)
	}
	if e.Queue != nil {
		l.AddRunnable(fx.NamedRun("mqtt", e.Queue))
	}
	if e.Websocket != nil {
		l.AddRunnable(fx.NamedRun("websocket", e.Websocket))
	}
}

// Close releases devices.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for _, c := range e.closers {
		errs.Add(c.Close())
	}
	return errs.Aggregate()
}

// String describes the keyboard.
func (e *Env) String() string {
	parts := []string{e.Config.DeviceID, e.Layout.Name()}
	if e.Side != kbd.SideNone {
		parts = append(parts, e.Side.String())
	}
	return strings.Join(parts, " ")
}
