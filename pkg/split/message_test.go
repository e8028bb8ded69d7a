package split

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// countdownTimer expires after a number of checks.
type countdownTimer struct {
	checks int
	left   int
}

func (t *countdownTimer) Start(time.Duration) { t.left = t.checks }

func (t *countdownTimer) Expired() bool {
	if t.left <= 0 {
		return true
	}
	t.left--
	return false
}

func newTestTimer() *countdownTimer {
	return &countdownTimer{checks: 256}
}

// trickleReader returns at most one byte per Read, and no data
// every other Read.
type trickleReader struct {
	data []byte
	idle bool
}

func (r *trickleReader) Read(p []byte) (int, error) {
	if r.idle = !r.idle; r.idle || len(r.data) == 0 {
		return 0, nil
	}
	p[0], r.data = r.data[0], r.data[1:]
	return 1, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func testSwitches(n int, tagged bool) []kbd.SwitchID {
	switches := make([]kbd.SwitchID, n)
	for i := range switches {
		switches[i] = kbd.Switch(uint8(i/4), uint8(i%4))
		if tagged {
			if i%2 == 0 {
				switches[i] = switches[i].Left()
			} else {
				switches[i] = switches[i].Right()
			}
		}
	}
	return switches
}

func TestMessageEncode(t *testing.T) {
	testCases := []struct {
		name   string
		msg    *Message
		codec  kbd.Codec
		expect []byte
	}{
		{"acknowledge", &Message{Kind: KindAcknowledge}, kbd.PlainCodec{}, []byte{0xfe}},
		{"find receiver", &Message{Kind: KindFindReceiver}, kbd.PlainCodec{}, []byte{0xff}},
		{"empty switches", NewSwitchesMessage(nil), kbd.PlainCodec{}, []byte{0, 0}},
		{"switches", NewSwitchesMessage([]kbd.SwitchID{kbd.Switch(1, 2), kbd.Switch(3, 4)}), kbd.PlainCodec{}, []byte{0, 2, 1, 2, 3, 4}},
		{"tagged reply", SwitchesReply([]kbd.SwitchID{kbd.Switch(1, 2).Right()}), kbd.TaggedCodec{}, []byte{1, 1, 1, 1, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.msg.Encode(tc.codec)
			require.NoError(t, err)
			require.Equal(t, tc.expect, b)
			var buf bytes.Buffer
			require.NoError(t, SendMessage(&buf, tc.codec, tc.msg))
			require.Equal(t, tc.expect, buf.Bytes())
		})
	}
	_, err := NewSwitchesMessage(testSwitches(kbd.SwitchRollover+1, false)).Encode(kbd.PlainCodec{})
	require.Equal(t, ErrMessageTooLong, err)
}

func TestMessageRoundTrip(t *testing.T) {
	codecs := []struct {
		name   string
		codec  kbd.Codec
		tagged bool
	}{
		{"plain", kbd.PlainCodec{}, false},
		{"tagged", kbd.TaggedCodec{}, true},
	}
	for _, c := range codecs {
		for n := 0; n <= kbd.SwitchRollover; n++ {
			for _, kind := range []MessageKind{KindSwitches, KindSwitchesReply} {
				msg := &Message{Kind: kind, Switches: testSwitches(n, c.tagged)}
				b, err := msg.Encode(c.codec)
				require.NoError(t, err)
				require.True(t, len(b) <= MaxBufLen)
				decoded, err := ReadMessage(&trickleReader{data: b}, c.codec, newTestTimer(), DefaultTimeout)
				require.NoError(t, err, "%s %s[%d]", c.name, kind, n)
				require.Equal(t, kind, decoded.Kind)
				require.Equal(t, msg.Switches, decoded.Switches)
			}
		}
	}
}

func TestReadMessageErrors(t *testing.T) {
	testCases := []struct {
		name   string
		data   []byte
		expect error
	}{
		{"nothing", nil, ErrReadTimedOut},
		{"no length", []byte{0}, ErrReadTimedOut},
		{"partial", []byte{1, 2, 1, 2, 3}, ErrReadTimedOut},
		{"overflow", []byte{0, kbd.SwitchRollover + 1}, ErrReadBufferOverflow},
		{"unknown", []byte{0x42}, &UnknownMessageError{Head: 0x42}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadMessage(&trickleReader{data: tc.data}, kbd.PlainCodec{}, newTestTimer(), DefaultTimeout)
			require.Equal(t, tc.expect, err)
		})
	}

	_, err := ReadMessage(failingReader{}, kbd.PlainCodec{}, newTestTimer(), DefaultTimeout)
	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = ReadMessage(&trickleReader{data: []byte{0, 1, 5, 1, 2}}, kbd.TaggedCodec{}, newTestTimer(), DefaultTimeout)
	require.Equal(t, kbd.ErrInvalidSwitchData, err)
}

func TestClockTimer(t *testing.T) {
	timer := NewTimer()
	timer.Start(time.Hour)
	require.False(t, timer.Expired())
	timer.Start(0)
	require.True(t, timer.Expired())
}

func TestMessageKind(t *testing.T) {
	require.Equal(t, "FindReceiver", KindFindReceiver.String())
	require.Equal(t, "MessageKind(0x42)", MessageKind(0x42).String())
	require.Equal(t, "Switches[(1,2)]", NewSwitchesMessage([]kbd.SwitchID{kbd.Switch(1, 2)}).String())
}
