package websocket

// State is the lifecycle stage of a streaming session
type State int

const (
	StateIdle State = iota
	StateAccepted
	StateReceiving
	StateResponding
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccepted:
		return "accepted"
	case StateReceiving:
		return "receiving"
	case StateResponding:
		return "responding"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
