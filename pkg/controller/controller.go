// Package controller turns pressed switches into keys sent to the host.
package controller

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// SplitLink is the split connection of the keyboard.
type SplitLink interface {
	State() kbd.SplitState
	Establish()
}

// Controller resolves pressed switches into keys on every Tick and
// delivers the keys on SendKeys.
type Controller struct {
	layout   kbd.Layout
	switches kbd.KeySwitches
	comm     kbd.ExternalCommunicator
	split    SplitLink

	lock    sync.Mutex
	layer   kbd.Layer
	keys    []kbd.Key
	pressed kbd.PressedSwitches
}

// New creates a Controller.
func New(comm kbd.ExternalCommunicator, switches kbd.KeySwitches, layout kbd.Layout) *Controller {
	return &Controller{layout: layout, switches: switches, comm: comm}
}

// WithSplit attaches the split link. Without it the keyboard is
// reported as not split.
func (c *Controller) WithSplit(split SplitLink) *Controller {
	c.split = split
	return c
}

// Layout returns the layout.
func (c *Controller) Layout() kbd.Layout {
	return c.layout
}

// SplitState returns the state of the split link.
func (c *Controller) SplitState() kbd.SplitState {
	if c.split == nil {
		return kbd.SplitNotAvailable
	}
	return c.split.State()
}

// Tick scans the switches and resolves the keys. The split connection
// is established first when undetermined and the host is ready, so
// only the half attached to the host becomes the Controller.
func (c *Controller) Tick() {
	if c.split != nil && c.split.State() == kbd.SplitUndetermined && c.comm.IsReady() {
		c.split.Establish()
	}

	switches := c.switches.Scan()

	c.lock.Lock()
	defer c.lock.Unlock()
	res := kbd.Resolve(c.layout, switches, &c.pressed)
	if glog.V(2) {
		if !keysEqual(res.Keys, c.keys) {
			glog.Infof("layer %s keys %v", c.layout.LayerName(res.Layer), res.Keys)
		}
	}
	c.layer, c.keys, c.pressed = res.Layer, res.Keys, res.Pressed
}

// SendKeys delivers the current keys, nothing is done if the host
// is not ready.
func (c *Controller) SendKeys() error {
	if !c.comm.IsReady() {
		return nil
	}
	c.lock.Lock()
	keys := c.keys
	c.lock.Unlock()
	return c.comm.SendKeys(keys)
}

// State returns a snapshot of the keyboard state.
func (c *Controller) State() kbd.State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return kbd.State{
		Layer:     c.layer,
		LayerName: c.layout.LayerName(c.layer),
		Keys:      append([]kbd.Key(nil), c.keys...),
		Split:     c.SplitState(),
	}
}

func keysEqual(a, b []kbd.Key) bool {
	if len(a) != len(b) {
		return false
	}
	for n, key := range a {
		if b[n] != key {
			return false
		}
	}
	return true
}
