package conn

import (
	"errors"
	"strings"
	"testing"
)

func TestCommandError(t *testing.T) {
	inner := errors.New("connection reset by peer")
	err := &CommandError{Op: OpGet, Err: inner}

	if !strings.Contains(err.Error(), "get") {
		t.Errorf("Error() = %q, should name the operation", err.Error())
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Errorf("Error() = %q, should include the cause", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is should unwrap to the inner error")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatal("errors.As should match *CommandError")
	}
	if cmdErr.Op != OpGet {
		t.Errorf("Op = %q, want %q", cmdErr.Op, OpGet)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotConnected, ErrCreateClient, ErrRetryExhausted, ErrClosed}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v should not match %v", a, b)
			}
		}
	}
}
