package split

import (
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// Communicator negotiates the role of a half and exchanges pressed
// switches with the other half.
type Communicator struct {
	Timeout time.Duration

	conn  io.ReadWriter
	codec kbd.Codec
	timer Timer

	// linkLock serializes exchanges on the connection.
	linkLock sync.Mutex

	lock   sync.RWMutex
	state  kbd.SplitState
	buffer []kbd.SwitchID
}

// NewCommunicator creates a Communicator over conn. A nil conn creates
// a Communicator for a non-split keyboard which stays NotAvailable.
func NewCommunicator(conn io.ReadWriter, codec kbd.Codec, timer Timer) *Communicator {
	checkCapacity(codec)
	if timer == nil {
		timer = NewTimer()
	}
	c := &Communicator{
		Timeout: DefaultTimeout,
		conn:    conn,
		codec:   codec,
		timer:   timer,
	}
	if conn == nil {
		c.state = kbd.SplitNotAvailable
	}
	return c
}

// State returns the current role.
func (c *Communicator) State() kbd.SplitState {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.state
}

// Buffer returns a copy of the switches last received from the other half.
func (c *Communicator) Buffer() []kbd.SwitchID {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return append([]kbd.SwitchID(nil), c.buffer...)
}

func (c *Communicator) setState(state kbd.SplitState) {
	c.lock.Lock()
	prev := c.state
	c.state = state
	c.lock.Unlock()
	if prev != state {
		glog.V(2).Infof("split state %s -> %s", prev, state)
	}
}

func (c *Communicator) setBuffer(switches []kbd.SwitchID) {
	c.lock.Lock()
	c.buffer = switches
	c.lock.Unlock()
}

// Establish looks for the other half. The state becomes Controller if
// it acknowledges within the timeout, otherwise Undetermined.
func (c *Communicator) Establish() error {
	if c.State() == kbd.SplitNotAvailable {
		return ErrNotAvailable
	}
	c.linkLock.Lock()
	defer c.linkLock.Unlock()

	c.setState(kbd.SplitWaitingForReceiver)
	if err := c.send(&Message{Kind: KindFindReceiver}); err != nil {
		c.setState(kbd.SplitUndetermined)
		return err
	}
	msg, err := c.read()
	if err != nil {
		c.setState(kbd.SplitUndetermined)
		return err
	}
	if msg.Kind != KindAcknowledge {
		glog.Warningf("split establish: unexpected response %s", msg)
		c.setState(kbd.SplitUndetermined)
		return nil
	}
	glog.Info("split connection established as controller")
	c.setState(kbd.SplitController)
	return nil
}

// Respond services one incoming message on a half which is not the
// Controller. local is replied to Switches requests.
func (c *Communicator) Respond(local []kbd.SwitchID) {
	c.linkLock.Lock()
	defer c.linkLock.Unlock()

	switch c.State() {
	case kbd.SplitNotAvailable, kbd.SplitController, kbd.SplitWaitingForReceiver:
		return
	}
	msg, err := c.read()
	if err != nil {
		if err == ErrReadTimedOut {
			glog.V(4).Info("split respond: no request")
		} else {
			glog.Warningf("split respond: failed to receive request: %v", err)
		}
		return
	}
	switch msg.Kind {
	case KindSwitches:
		c.setBuffer(msg.Switches)
		if len(local) > kbd.SwitchRollover {
			local = local[:kbd.SwitchRollover]
		}
		if err := c.send(SwitchesReply(local)); err != nil {
			glog.Warningf("split respond: reply error: %v", err)
		}
	case KindSwitchesReply:
		// a late reply when roles changed.
		c.setBuffer(msg.Switches)
	case KindFindReceiver:
		if err := c.send(&Message{Kind: KindAcknowledge}); err != nil {
			glog.Warningf("split respond: acknowledge error: %v", err)
			return
		}
		glog.Info("split connection established as receiver")
		c.setState(kbd.SplitReceiver)
	default:
		glog.Warningf("split respond: unexpected message %s", msg)
	}
}

// Request returns the switches pressed on the other half.
// A Controller exchanges local with the other half and falls back to
// the previous switches on failure. A Receiver returns the switches last
// received in Respond. Otherwise nothing is returned.
func (c *Communicator) Request(local []kbd.SwitchID) []kbd.SwitchID {
	switch c.State() {
	case kbd.SplitReceiver:
		return c.Buffer()
	case kbd.SplitController:
	default:
		return nil
	}

	c.linkLock.Lock()
	defer c.linkLock.Unlock()
	if len(local) > kbd.SwitchRollover {
		local = local[:kbd.SwitchRollover]
	}
	if err := c.send(NewSwitchesMessage(local)); err != nil {
		glog.Warningf("split request: send error: %v", err)
		return c.Buffer()
	}
	msg, err := c.read()
	if err != nil {
		glog.Warningf("split request: failed to receive reply: %v", err)
		return c.Buffer()
	}
	if msg.Kind != KindSwitchesReply {
		glog.Warningf("split request: unexpected reply %s", msg)
		return c.Buffer()
	}
	c.setBuffer(msg.Switches)
	return c.Buffer()
}

func (c *Communicator) read() (*Message, error) {
	msg, err := ReadMessage(c.conn, c.codec, c.timer, c.Timeout)
	if err == nil {
		glog.V(4).Infof("split RCV %s", msg)
	}
	return msg, err
}

func (c *Communicator) send(msg *Message) error {
	if glog.V(4) {
		glog.Infof("split SND %s", msg)
	}
	return SendMessage(c.conn, c.codec, msg)
}
