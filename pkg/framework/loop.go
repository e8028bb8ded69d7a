package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the default scan interval.
const DefaultInterval = time.Millisecond

// Loop runs controllers stage by stage in periodic cycles, along with
// background Runnables.
type Loop struct {
	Interval time.Duration

	stages  [NumStages][]Controller
	runners []Runnable

	lock    sync.Mutex
	pending []Event
	seq     uint64

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type cycle struct {
	loop   *Loop
	ctx    context.Context
	time   time.Time
	seq    uint64
	stage  Stage
	events []Event
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a stage. Controllers
// implementing Runnable are also run in background.
func (l *Loop) AddController(stage Stage, ctls ...Controller) *Loop {
	l.stages[stage] = append(l.stages[stage], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
			l.RunCycle(ctx)
		case <-l.wakeUpCh:
			l.RunCycle(ctx)
		}
	}
}

// RunCycle executes a single cycle synchronously.
func (l *Loop) RunCycle(ctx context.Context) {
	c := &cycle{loop: l, ctx: ctx, time: time.Now()}
	l.lock.Lock()
	l.seq++
	c.seq = l.seq
	c.events, l.pending = l.pending, nil
	l.lock.Unlock()
	for n := range l.stages {
		c.stage = Stage(n)
		for _, ctl := range l.stages[n] {
			if err := ctl.Control(c); err != nil {
				glog.Errorf("%s controller error: %v", c.stage, err)
			}
		}
	}
}

// Post implements LoopControl.
func (l *Loop) Post(evt Event) {
	l.lock.Lock()
	l.pending = append(l.pending, evt)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	if l.wakeUpCh == nil {
		return
	}
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (c *cycle) Context() context.Context { return c.ctx }
func (c *cycle) Time() time.Time          { return c.time }
func (c *cycle) Seq() uint64              { return c.seq }
func (c *cycle) Stage() Stage             { return c.stage }
func (c *cycle) Events() []Event          { return c.events }
func (c *cycle) Post(evt Event)           { c.events = append(c.events, evt) }
func (c *cycle) TriggerNext()             { c.loop.TriggerNext() }
