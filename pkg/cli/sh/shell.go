// Package sh provides the interactive shell inspecting keyboards.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/splitkbd/pkg/kbd"
	"github.com/robotalks/splitkbd/pkg/kbd/keymap"
	"github.com/robotalks/splitkbd/pkg/status"
	"github.com/robotalks/splitkbd/pkg/status/mqtt"
)

// Config provides the options of the shell.
type Config struct {
	// MQTTBrokerURL is where keyboards publish status.
	MQTTBrokerURL string
	// Keymap is the keymap file to inspect.
	Keymap string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/kbd/",
}

func init() {
	if val := os.Getenv("KBD_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("KBD_KEYMAP"); val != "" {
		defaultConfig.Keymap = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.Keymap, "keymap", defaultConfig.Keymap, "Keymap file to inspect.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *Config
	Status *StatusStore

	queue   *mqtt.Queue
	sub     *mqtt.Subscription
	keymap  *keymap.Keymap
	layout  *keymap.Layout
	pressed kbd.PressedSwitches
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "kbd > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&DevicesCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Status: NewStatusStore(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a broker connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).queue == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// MustHaveKeymap wraps command func requires a keymap.
func MustHaveKeymap(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if err := ShellFrom(c).LoadKeymap(); err != nil {
			c.Err(err)
			return
		}
		fn(c)
	}
}

// Print prints a value, in JSON if requested.
func (s *Shell) Print(c *ishell.Context, val interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(val)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Connect connects the MQTT broker and subscribes status of keyboards.
func (s *Shell) Connect(brokerURL string) error {
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Connect(ctx); err != nil {
		return err
	}
	s.Disconnect()
	s.queue = q
	s.sub = mqtt.SubscribeStatus(q, s.Status.Update)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", brokerURL))
	return nil
}

// Disconnect disconnects the broker.
func (s *Shell) Disconnect() {
	if s.queue != nil {
		s.sub.Close()
		s.queue.Close()
		s.queue, s.sub = nil, nil
		s.Status.Reset()
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// LoadKeymap loads the configured keymap once.
func (s *Shell) LoadKeymap() error {
	if s.layout != nil {
		return nil
	}
	if s.Config.Keymap == "" {
		return fmt.Errorf("keymap not specified")
	}
	km, err := keymap.LoadKeymap(s.Config.Keymap)
	if err != nil {
		return err
	}
	layout, err := km.Build()
	if err != nil {
		return err
	}
	s.keymap, s.layout = km, layout
	return nil
}

// Keymap returns the loaded keymap.
func (s *Shell) Keymap() (*keymap.Keymap, *keymap.Layout) {
	return s.keymap, s.layout
}

// Resolve resolves switches against the loaded layout as if they are
// pressed after the previous call. No switches releases everything.
func (s *Shell) Resolve(args ...string) (*kbd.State, error) {
	if s.layout == nil {
		return nil, fmt.Errorf("keymap not loaded")
	}
	switches := make([]kbd.SwitchID, 0, len(args))
	for _, arg := range args {
		sw, err := keymap.ParseSwitch(arg)
		if err != nil {
			return nil, err
		}
		switches = append(switches, sw)
	}
	res := kbd.Resolve(s.layout, switches, &s.pressed)
	s.pressed = res.Pressed
	return &kbd.State{
		Layer:     res.Layer,
		LayerName: s.layout.LayerName(res.Layer),
		Keys:      res.Keys,
		Split:     kbd.SplitNotAvailable,
	}, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Config.MQTTBrokerURL != "" {
		if err := s.Connect(s.Config.MQTTBrokerURL); err != nil && s.Interactive {
			s.Shell.Printf("Connect %s failed: %v\n", s.Config.MQTTBrokerURL, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// FormatSnapshot prints a snapshot into friendly string for display.
func FormatSnapshot(s *status.Snapshot) string {
	text := s.DeviceID
	if s.Side != "" {
		text += " " + s.Side
	}
	return fmt.Sprintf("%s #%d %s layer %s keys %v", text, s.Seq, s.Split, s.LayerName, s.KeyNames)
}

// FormatState prints a state into friendly string for display.
func FormatState(state *kbd.State) string {
	return fmt.Sprintf("layer %s keys %v", state.LayerName, state.Keys)
}

var (
	// ConnectCmd connects a broker.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[MQTT_URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.Config.MQTTBrokerURL
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			if err := s.Connect(url); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects the broker.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// DevicesCmd lists keyboards publishing status.
	DevicesCmd = ishell.Cmd{
		Name:    "devices",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			ids := s.Status.DeviceIDs()
			if s.OutputJSON {
				s.Print(c, ids, "")
				return
			}
			if len(ids) == 0 {
				c.Println("No keyboards found")
				return
			}
			for _, id := range ids {
				c.Println(id)
			}
		}),
	}
)

// StatusStore keeps the latest status of keyboards.
type StatusStore struct {
	lock     sync.Mutex
	latest   map[string]*status.Snapshot
	watchers map[chan *status.Snapshot]struct{}
}

// NewStatusStore creates a StatusStore.
func NewStatusStore() *StatusStore {
	return &StatusStore{
		latest:   make(map[string]*status.Snapshot),
		watchers: make(map[chan *status.Snapshot]struct{}),
	}
}

// Update implements mqtt.StatusHandler.
func (s *StatusStore) Update(deviceID string, snapshot *status.Snapshot) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.latest[deviceID] = snapshot
	for ch := range s.watchers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Reset forgets all keyboards.
func (s *StatusStore) Reset() {
	s.lock.Lock()
	s.latest = make(map[string]*status.Snapshot)
	s.lock.Unlock()
}

// Get returns the latest status of a keyboard.
func (s *StatusStore) Get(deviceID string) *status.Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.latest[deviceID]
}

// DeviceIDs returns the keyboards seen, sorted.
func (s *StatusStore) DeviceIDs() []string {
	s.lock.Lock()
	ids := make([]string, 0, len(s.latest))
	for id := range s.latest {
		ids = append(ids, id)
	}
	s.lock.Unlock()
	sort.Strings(ids)
	return ids
}

// Watch receives updates until the returned func is called.
func (s *StatusStore) Watch() (<-chan *status.Snapshot, func()) {
	ch := make(chan *status.Snapshot, 16)
	s.lock.Lock()
	s.watchers[ch] = struct{}{}
	s.lock.Unlock()
	return ch, func() {
		s.lock.Lock()
		delete(s.watchers, ch)
		s.lock.Unlock()
	}
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).Run(flag.Args()...)
}
