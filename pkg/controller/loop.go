package controller

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/splitkbd/pkg/framework"
	"github.com/robotalks/splitkbd/pkg/kbd"
	"github.com/robotalks/splitkbd/pkg/status"
)

// Default intervals.
const (
	DefaultSendInterval  = 10 * time.Millisecond
	DefaultPollInterval  = time.Millisecond
	DefaultProbeInterval = time.Second
)

// StateChanged is posted to the loop when the keyboard state changes.
type StateChanged struct {
	State kbd.State
}

// Poller services the split link on the Receiver.
type Poller interface {
	Poll()
}

// Prober reopens the host link.
type Prober interface {
	Poll() error
}

// Driver runs a Controller in a framework.Loop.
type Driver struct {
	Controller    *Controller
	SendInterval  time.Duration
	PollInterval  time.Duration
	ProbeInterval time.Duration

	last *kbd.State
}

// NewDriver creates a Driver.
func NewDriver(ctl *Controller) *Driver {
	return &Driver{
		Controller:    ctl,
		SendInterval:  DefaultSendInterval,
		PollInterval:  DefaultPollInterval,
		ProbeInterval: DefaultProbeInterval,
	}
}

// Control implements framework.Controller.
func (d *Driver) Control(c fx.Cycle) error {
	d.Controller.Tick()
	state := d.Controller.State()
	if d.last == nil || !d.last.Equal(&state) {
		d.last = &state
		c.Post(&StateChanged{State: state})
	}
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (d *Driver) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StageScan, d)
	l.AddRunnable(fx.NamedRun("send", fx.Every(d.SendInterval, func(context.Context) error {
		return d.Controller.SendKeys()
	})))
	if p, ok := d.Controller.split.(Poller); ok {
		l.AddRunnable(fx.NamedRun("split", fx.Every(d.PollInterval, func(context.Context) error {
			p.Poll()
			return nil
		})))
	}
	if p, ok := d.Controller.comm.(Prober); ok {
		l.AddRunnable(fx.NamedRun("probe", fx.Every(d.ProbeInterval, func(context.Context) error {
			return p.Poll()
		})))
	}
}

// Notifier publishes state changes. Publishing runs in background and
// only the latest state is published.
type Notifier struct {
	DeviceID  string
	Side      kbd.Side
	Publisher status.Publisher

	seq     uint64
	pending chan *status.Snapshot
}

// NewNotifier creates a Notifier.
func NewNotifier(deviceID string, side kbd.Side, publisher status.Publisher) *Notifier {
	return &Notifier{
		DeviceID:  deviceID,
		Side:      side,
		Publisher: publisher,
		pending:   make(chan *status.Snapshot, 1),
	}
}

// AddToLoop implements framework.LoopAdder.
func (n *Notifier) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StagePublish, n)
}

// Control implements framework.Controller.
func (n *Notifier) Control(c fx.Cycle) error {
	var changed *StateChanged
	for _, evt := range c.Events() {
		if e, ok := evt.(*StateChanged); ok {
			changed = e
		}
	}
	if changed == nil {
		return nil
	}
	n.seq++
	snapshot := status.NewSnapshot(n.DeviceID, n.Side, n.seq, &changed.State)
	for {
		select {
		case n.pending <- snapshot:
			return nil
		default:
		}
		select {
		case <-n.pending:
		default:
		}
	}
}

// Run implements framework.Runnable.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot := <-n.pending:
			if err := n.Publisher.Publish(ctx, snapshot); err != nil {
				glog.Warningf("publish status %d failed: %v", snapshot.Seq, err)
			}
		}
	}
}
