package env

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/splitkbd/pkg/framework"
	"github.com/robotalks/splitkbd/pkg/kbd"
)

const testKeymap = `
name: test
layers:
  - name: default
    keys:
      - [A, B]
`

func newTestConfig(t *testing.T) (*Config, func()) {
	dir, err := ioutil.TempDir("", "env")
	require.NoError(t, err)
	path := filepath.Join(dir, "keymap.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(testKeymap), 0644))
	conf := NewConfig()
	conf.DeviceID = "kbd0"
	conf.Side = ""
	conf.SerialDevice = ""
	conf.MQTTBrokerURL = ""
	conf.WebsocketAddr = ""
	conf.Keymap = path
	conf.HIDDevice = filepath.Join(dir, "hidg0")
	return conf, func() { os.RemoveAll(dir) }
}

func TestNewEnv(t *testing.T) {
	conf, cleanup := newTestConfig(t)
	defer cleanup()

	e, err := conf.NewEnv()
	require.NoError(t, err)
	defer e.Close()
	require.Equal(t, kbd.SideNone, e.Side)
	require.Equal(t, "test", e.Layout.Name())
	require.Equal(t, kbd.SplitNotAvailable, e.Controller.SplitState())
	require.Nil(t, e.Notifier)
	require.Nil(t, e.Queue)
	require.Equal(t, "kbd0 test", e.String())

	l := fx.NewLoop()
	l.Add(e)
	require.Equal(t, conf.ScanInterval, l.Interval)
}

func TestNewEnvWithStatus(t *testing.T) {
	conf, cleanup := newTestConfig(t)
	defer cleanup()
	conf.Side = "right"
	conf.MQTTBrokerURL = "mqtt://localhost:1883/kbd/"
	conf.WebsocketAddr = "127.0.0.1:0"

	e, err := conf.NewEnv()
	require.NoError(t, err)
	defer e.Close()
	require.Equal(t, kbd.SideRight, e.Side)
	require.NotNil(t, e.Queue)
	require.Equal(t, "kbd/", e.Queue.TopicPrefix)
	require.NotNil(t, e.Websocket)
	require.NotNil(t, e.Notifier)
	require.Equal(t, "kbd0 test right", e.String())
}

func TestNewEnvErrors(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(*Config)
	}{
		{"bad side", func(c *Config) { c.Side = "up" }},
		{"split without side", func(c *Config) { c.SerialDevice = "/dev/ttyS0" }},
		{"no keymap", func(c *Config) { c.Keymap = filepath.Join(filepath.Dir(c.Keymap), "missing.yaml") }},
		{"no serial", func(c *Config) {
			c.Side = "left"
			c.SerialDevice = filepath.Join(filepath.Dir(c.Keymap), "ttyS0")
		}},
		{"bad mqtt", func(c *Config) { c.MQTTBrokerURL = "mqtt://broker:%zz" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf, cleanup := newTestConfig(t)
			defer cleanup()
			tc.setup(conf)
			_, err := conf.NewEnv()
			require.Error(t, err)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	conf := NewConfig()
	require.NotNil(t, conf.Joystick)
	require.False(t, conf.Joystick == Default().Joystick)
	require.NotEmpty(t, MachineID())
}
