package batch

// State is an item's position in the conversion lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateConverting State = "converting"
	StateConverted  State = "converted"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

var allStates = []State{
	StateIdle,
	StateConverting,
	StateConverted,
	StateFailed,
	StateCancelled,
}

// AllStates returns the ordered list of known states.
func AllStates() []State {
	return append([]State(nil), allStates...)
}

// CanConvert reports whether a conversion may start from s.
func (s State) CanConvert() bool {
	switch s {
	case StateIdle, StateConverted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether s is the outcome of a finished conversion.
func (s State) Terminal() bool {
	switch s {
	case StateConverted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}
