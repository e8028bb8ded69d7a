package split

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// chanConn is one end of an in-memory link. Read returns no data
// after a short wait like a serial port with read timeout.
type chanConn struct {
	readCh  <-chan byte
	writeCh chan<- byte
}

func (c *chanConn) Read(p []byte) (int, error) {
	select {
	case b := <-c.readCh:
		p[0] = b
		return 1, nil
	case <-time.After(time.Millisecond):
		return 0, nil
	}
}

func (c *chanConn) Write(p []byte) (int, error) {
	for _, b := range p {
		c.writeCh <- b
	}
	return len(p), nil
}

func newLink() (*chanConn, *chanConn) {
	ab, ba := make(chan byte, 256), make(chan byte, 256)
	return &chanConn{readCh: ba, writeCh: ab}, &chanConn{readCh: ab, writeCh: ba}
}

type testHalves struct {
	t        *testing.T
	ctrl     *Communicator
	recv     *Communicator
	ctrlConn *chanConn
	recvConn *chanConn
}

func newTestHalves(t *testing.T) *testHalves {
	h := &testHalves{t: t}
	h.ctrlConn, h.recvConn = newLink()
	h.ctrl = NewCommunicator(h.ctrlConn, kbd.PlainCodec{}, nil)
	h.recv = NewCommunicator(h.recvConn, kbd.PlainCodec{}, nil)
	h.ctrl.Timeout = time.Second
	h.recv.Timeout = 20 * time.Millisecond
	return h
}

// serve polls the receiver until canceled.
func (h *testHalves) serve(ctx context.Context, local func() []kbd.SwitchID) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			h.recv.Respond(local())
		}
	}()
	return &wg
}

func (h *testHalves) establish() {
	ctx, cancel := context.WithCancel(context.Background())
	wg := h.serve(ctx, func() []kbd.SwitchID { return nil })
	require.NoError(h.t, h.ctrl.Establish())
	cancel()
	wg.Wait()
	require.Equal(h.t, kbd.SplitController, h.ctrl.State())
	require.Equal(h.t, kbd.SplitReceiver, h.recv.State())
}

func TestHandshake(t *testing.T) {
	h := newTestHalves(t)
	require.Equal(t, kbd.SplitUndetermined, h.ctrl.State())
	require.Equal(t, kbd.SplitUndetermined, h.recv.State())
	h.establish()
}

func TestHandshakeNoReceiver(t *testing.T) {
	conn, _ := newLink()
	c := NewCommunicator(conn, kbd.PlainCodec{}, nil)
	require.Equal(t, DefaultTimeout, c.Timeout)
	start := time.Now()
	require.Equal(t, ErrReadTimedOut, c.Establish())
	require.True(t, time.Since(start) >= DefaultTimeout)
	require.Equal(t, kbd.SplitUndetermined, c.State())
	require.Empty(t, c.Request([]kbd.SwitchID{kbd.Switch(0, 0)}))
}

func TestHandshakeUnexpectedReply(t *testing.T) {
	conn, peer := newLink()
	c := NewCommunicator(conn, kbd.PlainCodec{}, nil)
	_, err := peer.Write([]byte{0, 0})
	require.NoError(t, err)
	require.NoError(t, c.Establish())
	require.Equal(t, kbd.SplitUndetermined, c.State())
}

func TestExchange(t *testing.T) {
	h := newTestHalves(t)
	h.establish()

	remote := []kbd.SwitchID{kbd.Switch(1, 1), kbd.Switch(2, 3)}
	ctx, cancel := context.WithCancel(context.Background())
	wg := h.serve(ctx, func() []kbd.SwitchID { return remote })
	local := []kbd.SwitchID{kbd.Switch(0, 4)}
	require.Equal(t, remote, h.ctrl.Request(local))
	cancel()
	wg.Wait()
	require.Equal(t, local, h.recv.Request(nil))
	require.Equal(t, remote, h.ctrl.Buffer())
}

func TestRequestTimeoutKeepsBuffer(t *testing.T) {
	h := newTestHalves(t)
	h.establish()

	remote := []kbd.SwitchID{kbd.Switch(1, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	wg := h.serve(ctx, func() []kbd.SwitchID { return remote })
	require.Equal(t, remote, h.ctrl.Request(nil))
	cancel()
	wg.Wait()

	h.ctrl.Timeout = DefaultTimeout
	require.Equal(t, remote, h.ctrl.Request(nil))
	require.Equal(t, kbd.SplitController, h.ctrl.State())
}

func TestRequestUnexpectedReply(t *testing.T) {
	conn, peer := newLink()
	c := NewCommunicator(conn, kbd.PlainCodec{}, nil)
	c.setState(kbd.SplitController)
	c.setBuffer([]kbd.SwitchID{kbd.Switch(4, 4)})
	_, err := peer.Write([]byte{0xfe})
	require.NoError(t, err)
	require.Equal(t, []kbd.SwitchID{kbd.Switch(4, 4)}, c.Request(nil))
}

func TestRespondStrayReply(t *testing.T) {
	conn, peer := newLink()
	c := NewCommunicator(conn, kbd.PlainCodec{}, nil)
	_, err := peer.Write([]byte{1, 1, 2, 2})
	require.NoError(t, err)
	c.Respond(nil)
	require.Equal(t, []kbd.SwitchID{kbd.Switch(2, 2)}, c.Buffer())
	require.Equal(t, kbd.SplitUndetermined, c.State())

	// no request is a quiet no-op.
	c.Respond(nil)
	require.Equal(t, kbd.SplitUndetermined, c.State())
}

func TestNotAvailable(t *testing.T) {
	c := NewCommunicator(nil, kbd.PlainCodec{}, nil)
	require.Equal(t, kbd.SplitNotAvailable, c.State())
	require.Equal(t, ErrNotAvailable, c.Establish())
	c.Respond(nil)
	require.Nil(t, c.Request([]kbd.SwitchID{kbd.Switch(0, 0)}))
	require.Equal(t, kbd.SplitNotAvailable, c.State())
}

type oversizedCodec struct {
	kbd.PlainCodec
}

func (oversizedCodec) Size() int { return 4 }

func TestCapacityAssertion(t *testing.T) {
	require.Panics(t, func() {
		NewCommunicator(nil, oversizedCodec{}, nil)
	})
	require.NotPanics(t, func() {
		NewCommunicator(nil, kbd.TaggedCodec{}, nil)
	})
}

type staticSwitches []kbd.SwitchID

func (s staticSwitches) Scan() []kbd.SwitchID { return s }

func TestSwitches(t *testing.T) {
	h := newTestHalves(t)
	left := NewSwitches(staticSwitches{kbd.Switch(0, 0), kbd.Switch(0, 1)}, h.ctrl, kbd.SideLeft)
	right := NewSwitches(staticSwitches{kbd.Switch(2, 2)}, h.recv, kbd.SideRight)
	require.Equal(t, kbd.SideLeft, left.Side())
	require.Equal(t, h.ctrl, left.Communicator())

	require.Equal(t, []kbd.SwitchID{kbd.Switch(2, 2).Right()}, right.Scan())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			right.Poll()
		}
	}()
	left.Establish()
	require.Equal(t, kbd.SplitController, left.State())
	require.Equal(t, []kbd.SwitchID{
		kbd.Switch(0, 0).Left(),
		kbd.Switch(0, 1).Left(),
		kbd.Switch(2, 2).Right(),
	}, left.Scan())
	cancel()
	wg.Wait()

	require.Equal(t, kbd.SplitReceiver, right.State())
	require.Equal(t, []kbd.SwitchID{
		kbd.Switch(2, 2).Right(),
		kbd.Switch(0, 0).Left(),
		kbd.Switch(0, 1).Left(),
	}, right.Scan())
}

func TestSwitchesRollover(t *testing.T) {
	c := NewCommunicator(nil, kbd.PlainCodec{}, nil)
	var local staticSwitches
	for n := 0; n < 20; n++ {
		local = append(local, kbd.Switch(uint8(n), 0))
	}
	s := NewSwitches(local, c, kbd.SideLeft)
	switches := s.Scan()
	require.Len(t, switches, kbd.SwitchRollover)
	require.Equal(t, kbd.Switch(0, 0).Left(), switches[0])
}
