package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Event is anything posted to the loop, e.g. a state change.
type Event interface{}

// Stage orders the controllers within a cycle.
type Stage int

// Stages of a cycle, executed in order.
const (
	StageScan Stage = iota
	StageResolve
	StageReport
	StagePublish

	NumStages int = iota
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageScan:
		return "scan"
	case StageResolve:
		return "resolve"
	case StageReport:
		return "report"
	case StagePublish:
		return "publish"
	}
	return "stage?"
}

// Controller is invoked once per cycle at its stage.
type Controller interface {
	Control(Cycle) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(Cycle) error

// Control implements Controller.
func (f ControlFunc) Control(c Cycle) error {
	return f(c)
}

// Cycle is a single iteration of the loop.
type Cycle interface {
	// Context retrieves context.Context.
	Context() context.Context
	// Time is when the cycle started.
	Time() time.Time
	// Seq is the sequence number of the cycle, starting from 1.
	Seq() uint64
	// Stage is the stage being executed.
	Stage() Stage
	// Events returns the events posted before this cycle and the ones
	// posted by earlier controllers of this cycle.
	Events() []Event

	LoopControl
}

// LoopControl exposes access to the loop.
type LoopControl interface {
	// Post enqueues an event. Events posted by a controller within a cycle
	// are visible to the controllers after it in the same cycle only. Events
	// posted on the Loop from outside a cycle are delivered to the next cycle.
	Post(Event)
	// TriggerNext schedules the next cycle immediately.
	TriggerNext()
}
