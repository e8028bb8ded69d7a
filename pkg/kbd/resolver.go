package kbd

import "fmt"

// PressedCapacity is the capacity of PressedSwitches.
const PressedCapacity = 16

type pressedEntry struct {
	sw    SwitchID
	layer Layer
}

// PressedSwitches remembers the layer each held switch was first
// resolved on. It is a fixed capacity value type, copying it is cheap
// and safe.
type PressedSwitches struct {
	n       int
	entries [PressedCapacity]pressedEntry
}

// Len returns the number of remembered switches.
func (p *PressedSwitches) Len() int {
	return p.n
}

// Get looks up the layer of a switch.
func (p *PressedSwitches) Get(sw SwitchID) (Layer, bool) {
	for i := 0; i < p.n; i++ {
		if p.entries[i].sw == sw {
			return p.entries[i].layer, true
		}
	}
	return DefaultLayer, false
}

// Put records the layer of a switch. It returns false when full.
func (p *PressedSwitches) Put(sw SwitchID, layer Layer) bool {
	for i := 0; i < p.n; i++ {
		if p.entries[i].sw == sw {
			p.entries[i].layer = layer
			return true
		}
	}
	if p.n >= PressedCapacity {
		return false
	}
	p.entries[p.n] = pressedEntry{sw: sw, layer: layer}
	p.n++
	return true
}

// Each iterates the entries in insertion order.
func (p *PressedSwitches) Each(fn func(SwitchID, Layer)) {
	for i := 0; i < p.n; i++ {
		fn(p.entries[i].sw, p.entries[i].layer)
	}
}

// SwitchLayer pairs a switch with the layer it resolves on.
type SwitchLayer struct {
	Switch SwitchID
	Layer  Layer
}

// Resolution is the result of one resolving pass.
type Resolution struct {
	Layer   Layer
	Keys    []Key
	Pressed PressedSwitches
}

// Resolve computes keys from currently pressed switches and the memory
// of the previous pass. It's a pure function of its inputs.
func Resolve(layout Layout, switches []SwitchID, prev *PressedSwitches) Resolution {
	if len(switches) > SwitchRollover {
		switches = switches[:SwitchRollover]
	}
	var res Resolution
	res.Layer = layout.Layer(switches)
	layers := DetermineLayers(prev, switches, res.Layer)
	for _, sl := range layers {
		res.Pressed.Put(sl.Switch, sl.Layer)
	}
	keys := FilterKeys(DetermineKeys(layout, layers))
	if len(keys) > KeyRollover {
		keys = keys[:KeyRollover]
	}
	res.Keys = keys
	return res
}

// DetermineLayers assigns each switch the layer it was first pressed on,
// or the global layer if it's newly pressed.
func DetermineLayers(prev *PressedSwitches, switches []SwitchID, global Layer) []SwitchLayer {
	layers := make([]SwitchLayer, 0, len(switches))
	for _, sw := range switches {
		layer := global
		if prev != nil {
			if l, ok := prev.Get(sw); ok {
				layer = l
			}
		}
		layers = append(layers, SwitchLayer{Switch: sw, Layer: layer})
	}
	return layers
}

// DetermineKeys looks up keys, falling through Transparent keys.
// No-op keys are dropped.
func DetermineKeys(layout Layout, layers []SwitchLayer) []Key {
	keys := make([]Key, 0, len(layers))
	for _, sl := range layers {
		if key := LookupKey(layout, sl.Layer, sl.Switch); !key.IsNoop() {
			keys = append(keys, key)
		}
	}
	return keys
}

// LookupKey finds the key of a switch on a layer. Transparent keys fall
// through to the layer below until a key is found. It panics if the
// Below chain of the layout doesn't terminate.
func LookupKey(layout Layout, layer Layer, sw SwitchID) Key {
	key := layout.Key(layer, sw)
	for steps := 0; key == Transparent; steps++ {
		below, ok := layout.Below(layer)
		if !ok {
			return None
		}
		if below == layer {
			panic(fmt.Sprintf("layer %s is below itself", layout.LayerName(layer)))
		}
		if steps > 0xff {
			panic(fmt.Sprintf("layer %s has a cyclic below chain", layout.LayerName(layer)))
		}
		layer = below
		key = layout.Key(layer, sw)
	}
	return key
}

// FilterKeys drops no-op keys and drops modified keys when any
// unmodified key other than modifiers is present.
func FilterKeys(keys []Key) []Key {
	var plain bool
	for _, key := range keys {
		if !key.IsNoop() && !key.IsModifiedKey() && !key.IsModifierKey() {
			plain = true
			break
		}
	}
	filtered := make([]Key, 0, len(keys))
	for _, key := range keys {
		if key.IsNoop() || (plain && key.IsModifiedKey()) {
			continue
		}
		filtered = append(filtered, key)
	}
	return filtered
}
