package kbd

import "strconv"

// Layer indexes a remapping context of a Layout.
// DefaultLayer is active when no layer switch is held.
type Layer uint8

// DefaultLayer is the base layer.
const DefaultLayer Layer = 0

// Layout maps switches to keys.
type Layout interface {
	// Layer computes the active layer from currently pressed switches.
	// It must only depend on the switches.
	Layer(switches []SwitchID) Layer
	// Key looks up the key of a switch on a layer.
	Key(layer Layer, sw SwitchID) Key
	// Below returns the layer Transparent keys fall through to.
	Below(layer Layer) (Layer, bool)
	// LayerName returns the display name of a layer.
	LayerName(layer Layer) string
}

// LayerName returns a generic layer name for layouts without names.
func LayerName(layer Layer) string {
	if layer == DefaultLayer {
		return "default"
	}
	return "layer" + strconv.Itoa(int(layer))
}
