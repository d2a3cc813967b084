package conn

import "time"

// ConnState is the lifecycle state of the managed connection.
type ConnState int32

const (
	// StateDisconnected means no connection is established.
	StateDisconnected ConnState = iota

	// StateConnecting means a connection attempt is in progress.
	StateConnecting

	// StateReady means the connection is established and serving commands.
	StateReady

	// StateReconnecting means the connection was lost and backoff-driven
	// reconnection is in progress.
	StateReconnecting

	// StateClosed is terminal, reachable only through explicit shutdown.
	StateClosed
)

// String returns the state name.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// eventKind enumerates the lifecycle events consumed by the state machine.
type eventKind int

const (
	eventConnect eventKind = iota
	eventReady
	eventError
	eventClose
	eventReconnecting
	eventEnd
)

func (k eventKind) String() string {
	switch k {
	case eventConnect:
		return "connect"
	case eventReady:
		return "ready"
	case eventError:
		return "error"
	case eventClose:
		return "close"
	case eventReconnecting:
		return "reconnecting"
	case eventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// event is a single lifecycle event with its payload. applied is closed by
// the event loop once the transition has been executed, so dispatchers can
// rely on the state being current when dispatch returns.
type event struct {
	kind    eventKind
	err     error
	attempt int
	delay   time.Duration
	applied chan struct{}
}

// nextState is the transition function of the connection state machine.
// Closed is terminal; error events leave the state unchanged (only the
// connected flag drops).
func nextState(current ConnState, kind eventKind) ConnState {
	if current == StateClosed {
		return StateClosed
	}

	switch kind {
	case eventConnect:
		return StateConnecting
	case eventReady:
		return StateReady
	case eventError:
		return current
	case eventClose:
		return StateDisconnected
	case eventReconnecting:
		return StateReconnecting
	case eventEnd:
		return StateDisconnected
	default:
		return current
	}
}
