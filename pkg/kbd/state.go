package kbd

// SplitState is the role of a half in a split keyboard.
type SplitState int

// Split states.
const (
	SplitUndetermined SplitState = iota
	SplitNotAvailable
	SplitWaitingForReceiver
	SplitController
	SplitReceiver
)

// String implements fmt.Stringer.
func (s SplitState) String() string {
	switch s {
	case SplitUndetermined:
		return "undetermined"
	case SplitNotAvailable:
		return "not-available"
	case SplitWaitingForReceiver:
		return "waiting-for-receiver"
	case SplitController:
		return "controller"
	case SplitReceiver:
		return "receiver"
	}
	return "unknown"
}

// State is a read-only snapshot of the keyboard.
type State struct {
	Layer     Layer
	LayerName string
	Keys      []Key
	Split     SplitState
}

// Equal compares two snapshots.
func (s *State) Equal(o *State) bool {
	if s.Layer != o.Layer || s.LayerName != o.LayerName || s.Split != o.Split || len(s.Keys) != len(o.Keys) {
		return false
	}
	for n, key := range s.Keys {
		if o.Keys[n] != key {
			return false
		}
	}
	return true
}

// ExternalCommunicator delivers keys to the host.
type ExternalCommunicator interface {
	// IsReady indicates the host link is configured.
	IsReady() bool
	// SendKeys delivers resolved keys.
	SendKeys(keys []Key) error
}
