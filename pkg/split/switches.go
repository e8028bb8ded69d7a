package split

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// Switches merges the switches of the local half with the ones
// of the other half.
type Switches struct {
	local kbd.KeySwitches
	comm  *Communicator
	side  kbd.Side

	lock sync.Mutex
	near []kbd.SwitchID
}

// NewSwitches creates Switches. side is the local half.
func NewSwitches(local kbd.KeySwitches, comm *Communicator, side kbd.Side) *Switches {
	return &Switches{local: local, comm: comm, side: side}
}

// Communicator returns the underlying Communicator.
func (s *Switches) Communicator() *Communicator {
	return s.comm
}

// Side returns the local half.
func (s *Switches) Side() kbd.Side {
	return s.side
}

// State implements the split state source of the controller.
func (s *Switches) State() kbd.SplitState {
	return s.comm.State()
}

// Establish looks for the other half. Failures are logged.
func (s *Switches) Establish() {
	if err := s.comm.Establish(); err != nil {
		glog.Warningf("failed to establish split connection: %v", err)
	}
}

// Poll services the link for the Receiver.
func (s *Switches) Poll() {
	s.lock.Lock()
	near := s.near
	s.lock.Unlock()
	s.comm.Respond(near)
}

// Scan implements kbd.KeySwitches. Local switches come first, followed
// by the switches of the other half, up to kbd.SwitchRollover.
func (s *Switches) Scan() []kbd.SwitchID {
	near := s.local.Scan()
	if len(near) > kbd.SwitchRollover {
		near = near[:kbd.SwitchRollover]
	}
	s.lock.Lock()
	s.near = near
	s.lock.Unlock()

	far := s.comm.Request(near)
	farSide := s.side.Opposite()
	switches := make([]kbd.SwitchID, 0, kbd.SwitchRollover)
	for _, sw := range near {
		switches = append(switches, sw.On(s.side))
	}
	for _, sw := range far {
		if len(switches) >= kbd.SwitchRollover {
			break
		}
		switches = append(switches, sw.On(farSide))
	}
	return switches
}
