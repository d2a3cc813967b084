package conn

import (
	"sync"
	"time"
)

// LastError records the most recent error seen by the manager, regardless
// of whether it was connection-level or command-level.
type LastError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a read-only view of the manager's statistics.
type Snapshot struct {
	Connections       uint64        `json:"connections"`
	Errors            uint64        `json:"errors"`
	Commands          uint64        `json:"commands"`
	LastError         *LastError    `json:"last_error,omitempty"`
	IsConnected       bool          `json:"is_connected"`
	ReconnectAttempts int           `json:"reconnect_attempts"`
	Uptime            time.Duration `json:"uptime"`
}

// statsCollector holds the mutable counters. Lifecycle transitions are
// serialized through the event loop, but snapshots are read from arbitrary
// goroutines and command counters are bumped from concurrent callers, so a
// mutex guards the fields.
type statsCollector struct {
	mu          sync.Mutex
	connections uint64
	errors      uint64
	commands    uint64
	lastError   *LastError
	readySince  time.Time
}

func newStatsCollector() *statsCollector {
	return &statsCollector{}
}

// recordConnection counts a connection reaching ready and anchors uptime
// on the first one.
func (s *statsCollector) recordConnection(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections++
	if s.readySince.IsZero() {
		s.readySince = now
	}
}

func (s *statsCollector) recordCommand() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands++
}

func (s *statsCollector) recordError(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors++
	s.lastError = &LastError{
		Message:   err.Error(),
		Timestamp: time.Now(),
	}
}

func (s *statsCollector) lastErr() *LastError {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastError == nil {
		return nil
	}
	le := *s.lastError
	return &le
}

// snapshot copies the counters into a read-only view.
func (s *statsCollector) snapshot(connected bool, reconnectAttempts int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Connections:       s.connections,
		Errors:            s.errors,
		Commands:          s.commands,
		IsConnected:       connected,
		ReconnectAttempts: reconnectAttempts,
	}
	if s.lastError != nil {
		le := *s.lastError
		snap.LastError = &le
	}
	if !s.readySince.IsZero() {
		snap.Uptime = time.Since(s.readySince)
	}
	return snap
}
