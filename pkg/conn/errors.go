package conn

import (
	"errors"
	"fmt"
)

// Common errors returned by the connection manager.
var (
	// ErrNotConnected is returned when a command is attempted while the
	// connection is not ready. The command is rejected before it reaches
	// the transport.
	ErrNotConnected = errors.New("not connected")

	// ErrCreateClient is returned when client construction fails. The
	// caller may re-invoke the factory to retry.
	ErrCreateClient = errors.New("create client")

	// ErrRetryExhausted is returned when the reconnection retry budget is
	// consumed. The connection stays down until recreated.
	ErrRetryExhausted = errors.New("reconnect attempts exhausted")

	// ErrClosed is returned when the manager has been shut down.
	ErrClosed = errors.New("connection manager closed")
)

// CommandError wraps a failed command with the operation that issued it.
type CommandError struct {
	Op  Op
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *CommandError) Unwrap() error {
	return e.Err
}
