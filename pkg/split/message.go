package split

import (
	"fmt"
	"io"
	"time"

	"github.com/robotalks/splitkbd/pkg/kbd"
)

// MaxBufLen is the max number of bytes of an encoded message.
const MaxBufLen = 40

// DefaultTimeout bounds every read on the link.
const DefaultTimeout = 10 * time.Millisecond

// MessageKind is the head byte of a message.
type MessageKind byte

// Message kinds.
const (
	KindSwitches      MessageKind = 0x00
	KindSwitchesReply MessageKind = 0x01
	KindAcknowledge   MessageKind = 0xfe
	KindFindReceiver  MessageKind = 0xff
)

// String implements fmt.Stringer.
func (k MessageKind) String() string {
	switch k {
	case KindSwitches:
		return "Switches"
	case KindSwitchesReply:
		return "SwitchesReply"
	case KindAcknowledge:
		return "Acknowledge"
	case KindFindReceiver:
		return "FindReceiver"
	}
	return fmt.Sprintf("MessageKind(0x%02x)", byte(k))
}

// HasSwitches indicates the kind carries a switch list.
func (k MessageKind) HasSwitches() bool {
	return k == KindSwitches || k == KindSwitchesReply
}

// Message is exchanged between the halves.
type Message struct {
	Kind     MessageKind
	Switches []kbd.SwitchID
}

// NewSwitchesMessage creates a Switches message.
func NewSwitchesMessage(switches []kbd.SwitchID) *Message {
	return &Message{Kind: KindSwitches, Switches: switches}
}

// SwitchesReply creates a SwitchesReply message.
func SwitchesReply(switches []kbd.SwitchID) *Message {
	return &Message{Kind: KindSwitchesReply, Switches: switches}
}

// String implements fmt.Stringer.
func (m *Message) String() string {
	if m.Kind.HasSwitches() {
		return fmt.Sprintf("%s%v", m.Kind, m.Switches)
	}
	return m.Kind.String()
}

func checkCapacity(codec kbd.Codec) {
	if MaxBufLen <= codec.Size()*kbd.SwitchRollover {
		panic(fmt.Sprintf("MaxBufLen %d too small for %d switches of %d bytes",
			MaxBufLen, kbd.SwitchRollover, codec.Size()))
	}
}

// Encode returns the bytes of the message.
func (m *Message) Encode(codec kbd.Codec) ([]byte, error) {
	if !m.Kind.HasSwitches() {
		return []byte{byte(m.Kind)}, nil
	}
	if len(m.Switches) > kbd.SwitchRollover {
		return nil, ErrMessageTooLong
	}
	sz := codec.Size()
	b := make([]byte, 2+len(m.Switches)*sz)
	b[0], b[1] = byte(m.Kind), byte(len(m.Switches))
	for n, sw := range m.Switches {
		codec.Encode(b[2+n*sz:], sw)
	}
	return b, nil
}

// Timer bounds blocking reads.
type Timer interface {
	// Start (re)starts counting down from d.
	Start(d time.Duration)
	// Expired indicates the duration since Start elapsed.
	Expired() bool
}

type clockTimer struct {
	deadline time.Time
}

// NewTimer creates a Timer on the monotonic clock.
func NewTimer() Timer {
	return &clockTimer{}
}

func (t *clockTimer) Start(d time.Duration) {
	t.deadline = time.Now().Add(d)
}

func (t *clockTimer) Expired() bool {
	return !time.Now().Before(t.deadline)
}

// ReadWithTimeout fills buf from r before the timer expires.
// r is expected to return 0 bytes with nil error when no data
// is available yet.
func ReadWithTimeout(r io.Reader, buf []byte, timer Timer, timeout time.Duration) error {
	timer.Start(timeout)
	for offset := 0; offset < len(buf); {
		if timer.Expired() {
			return ErrReadTimedOut
		}
		n, err := r.Read(buf[offset:])
		if err != nil {
			return &ReadError{Err: err}
		}
		offset += n
	}
	return nil
}

// ReadMessage reads one message. Every part of the message must arrive
// within the timeout.
func ReadMessage(r io.Reader, codec kbd.Codec, timer Timer, timeout time.Duration) (*Message, error) {
	var buf [MaxBufLen]byte
	if err := ReadWithTimeout(r, buf[:1], timer, timeout); err != nil {
		return nil, err
	}
	msg := &Message{Kind: MessageKind(buf[0])}
	switch msg.Kind {
	case KindAcknowledge, KindFindReceiver:
		return msg, nil
	case KindSwitches, KindSwitchesReply:
	default:
		return nil, &UnknownMessageError{Head: buf[0]}
	}
	if err := ReadWithTimeout(r, buf[:1], timer, timeout); err != nil {
		return nil, err
	}
	count := int(buf[0])
	if count > kbd.SwitchRollover {
		return nil, ErrReadBufferOverflow
	}
	sz := codec.Size()
	if count*sz > len(buf) {
		return nil, ErrReadBufferOverflow
	}
	data := buf[:count*sz]
	if err := ReadWithTimeout(r, data, timer, timeout); err != nil {
		return nil, err
	}
	msg.Switches = make([]kbd.SwitchID, 0, count)
	for n := 0; n < count; n++ {
		sw, err := codec.Decode(data[n*sz:])
		if err != nil {
			return nil, err
		}
		msg.Switches = append(msg.Switches, sw)
	}
	return msg, nil
}

// SendMessage writes one message in a single write.
func SendMessage(w io.Writer, codec kbd.Codec, msg *Message) error {
	b, err := msg.Encode(codec)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
