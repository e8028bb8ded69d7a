// Package keymap loads keyboard layouts from YAML or TOML files.
package keymap

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// Formats of keymap files.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Keymap is the file model of a layout.
type Keymap struct {
	Name   string        `yaml:"name" toml:"name"`
	Layers []LayerConfig `yaml:"layers" toml:"layers"`
}

// LayerConfig defines one layer.
//
// Keys is used for non-split keyboards, Left and Right for the halves of
// a split keyboard. Each is a grid of key names indexed by row then col.
type LayerConfig struct {
	Name string `yaml:"name" toml:"name"`
	// Below is the layer Transparent keys fall through to. Empty means
	// the previous layer, "-" means none.
	Below string `yaml:"below,omitempty" toml:"below,omitempty"`
	// Hold lists switches selecting this layer while held,
	// in the form "ROW,COL" or "SIDE:ROW,COL".
	Hold  []string   `yaml:"hold,omitempty" toml:"hold,omitempty"`
	Keys  [][]string `yaml:"keys,omitempty" toml:"keys,omitempty"`
	Left  [][]string `yaml:"left,omitempty" toml:"left,omitempty"`
	Right [][]string `yaml:"right,omitempty" toml:"right,omitempty"`
}

// ValidationError reports an invalid keymap.
type ValidationError struct {
	Layer string
	Msg   string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Layer == "" {
		return "keymap: " + e.Msg
	}
	return fmt.Sprintf("keymap layer %q: %s", e.Layer, e.Msg)
}

// FormatOf determines the format from file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown keymap format of %q", path)
}

// Load reads a keymap file and builds the layout.
func Load(path string) (*Layout, error) {
	km, err := LoadKeymap(path)
	if err != nil {
		return nil, err
	}
	return km.Build()
}

// LoadKeymap reads a keymap file without building the Layout.
func LoadKeymap(path string) (*Keymap, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	km, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}

// Parse decodes a keymap. Unknown fields are rejected.
func Parse(data []byte, format string) (*Keymap, error) {
	var km Keymap
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&km); err != nil {
			return nil, fmt.Errorf("decode keymap yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.Strict(true)
		if err := dec.Decode(&km); err != nil {
			return nil, fmt.Errorf("decode keymap toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown keymap format %q", format)
	}
	return &km, nil
}

// Marshal encodes the keymap.
func (k *Keymap) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(k)
	case FormatTOML:
		return toml.Marshal(*k)
	}
	return nil, fmt.Errorf("unknown keymap format %q", format)
}

// ParseSwitch parses "ROW,COL" or "SIDE:ROW,COL".
func ParseSwitch(s string) (kbd.SwitchID, error) {
	var id kbd.SwitchID
	if pos := strings.IndexByte(s, ':'); pos >= 0 {
		side, err := kbd.ParseSide(strings.TrimSpace(s[:pos]))
		if err != nil {
			return id, err
		}
		id.Side, s = side, s[pos+1:]
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return id, fmt.Errorf("invalid switch %q", s)
	}
	row, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 8)
	if err != nil {
		return id, fmt.Errorf("invalid switch row %q", parts[0])
	}
	col, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 8)
	if err != nil {
		return id, fmt.Errorf("invalid switch col %q", parts[1])
	}
	id.Row, id.Col = uint8(row), uint8(col)
	return id, nil
}

func parseKeyName(name string) (kbd.Key, error) {
	switch strings.TrimSpace(name) {
	case "", "_", "-":
		return kbd.None, nil
	case "__", "___", "trans":
		return kbd.Transparent, nil
	}
	return kbd.ParseKey(strings.TrimSpace(name))
}

// Validate checks the keymap without building it.
func (k *Keymap) Validate() error {
	_, err := k.Build()
	return err
}

// Build validates the keymap and creates the layout.
func (k *Keymap) Build() (*Layout, error) {
	if len(k.Layers) == 0 {
		return nil, &ValidationError{Msg: "no layers"}
	}
	if len(k.Layers) > 0x100 {
		return nil, &ValidationError{Msg: "too many layers"}
	}
	l := &Layout{
		name:      k.Name,
		selectors: make(map[kbd.SwitchID]kbd.Layer),
	}
	index := make(map[string]int)
	for n, lc := range k.Layers {
		if lc.Name == "" {
			return nil, &ValidationError{Msg: fmt.Sprintf("layer %d has no name", n)}
		}
		if _, exists := index[lc.Name]; exists {
			return nil, &ValidationError{Layer: lc.Name, Msg: "duplicated name"}
		}
		index[lc.Name] = n

		below := n - 1
		switch lc.Below {
		case "":
		case "-":
			below = -1
		default:
			pos, ok := index[lc.Below]
			if !ok || pos >= n {
				return nil, &ValidationError{Layer: lc.Name, Msg: fmt.Sprintf("below %q is not a lower layer", lc.Below)}
			}
			below = pos
		}

		keys := make(map[kbd.SwitchID]kbd.Key)
		grids := []struct {
			side kbd.Side
			rows [][]string
		}{
			{kbd.SideNone, lc.Keys},
			{kbd.SideLeft, lc.Left},
			{kbd.SideRight, lc.Right},
		}
		for _, grid := range grids {
			for row, cols := range grid.rows {
				for col, name := range cols {
					if row > 0xff || col > 0xff {
						return nil, &ValidationError{Layer: lc.Name, Msg: "grid too large"}
					}
					key, err := parseKeyName(name)
					if err != nil {
						return nil, &ValidationError{Layer: lc.Name, Msg: err.Error()}
					}
					if key != kbd.None {
						keys[kbd.SwitchID{Side: grid.side, Row: uint8(row), Col: uint8(col)}] = key
					}
				}
			}
		}

		if len(lc.Hold) > 0 && n == 0 {
			return nil, &ValidationError{Layer: lc.Name, Msg: "default layer can't be held"}
		}
		for _, s := range lc.Hold {
			sw, err := ParseSwitch(s)
			if err != nil {
				return nil, &ValidationError{Layer: lc.Name, Msg: err.Error()}
			}
			if prev, exists := l.selectors[sw]; exists {
				return nil, &ValidationError{Layer: lc.Name, Msg: fmt.Sprintf("switch %s already selects %q", sw, k.Layers[prev].Name)}
			}
			l.selectors[sw] = kbd.Layer(n)
		}

		l.layers = append(l.layers, layer{name: lc.Name, below: below, keys: keys})
	}
	return l, nil
}

type layer struct {
	name  string
	below int
	keys  map[kbd.SwitchID]kbd.Key
}

// Layout implements kbd.Layout from a Keymap.
type Layout struct {
	name      string
	layers    []layer
	selectors map[kbd.SwitchID]kbd.Layer
}

// Name returns the name of the keymap.
func (l *Layout) Name() string {
	return l.name
}

// NumLayers returns the number of layers.
func (l *Layout) NumLayers() int {
	return len(l.layers)
}

// Layer implements kbd.Layout. The highest layer selected by held
// switches wins.
func (l *Layout) Layer(switches []kbd.SwitchID) kbd.Layer {
	selected := kbd.DefaultLayer
	for _, sw := range switches {
		if layer, ok := l.selectors[sw]; ok && layer > selected {
			selected = layer
		}
	}
	return selected
}

// Key implements kbd.Layout.
func (l *Layout) Key(layer kbd.Layer, sw kbd.SwitchID) kbd.Key {
	if int(layer) >= len(l.layers) {
		return kbd.None
	}
	return l.layers[layer].keys[sw]
}

// Below implements kbd.Layout.
func (l *Layout) Below(layer kbd.Layer) (kbd.Layer, bool) {
	if int(layer) >= len(l.layers) || l.layers[layer].below < 0 {
		return kbd.DefaultLayer, false
	}
	return kbd.Layer(l.layers[layer].below), true
}

// LayerName implements kbd.Layout.
func (l *Layout) LayerName(layer kbd.Layer) string {
	if int(layer) >= len(l.layers) {
		return kbd.LayerName(layer)
	}
	return l.layers[layer].name
}

// LayerByName finds a layer.
func (l *Layout) LayerByName(name string) (kbd.Layer, bool) {
	for n, layer := range l.layers {
		if layer.name == name {
			return kbd.Layer(n), true
		}
	}
	return kbd.DefaultLayer, false
}
