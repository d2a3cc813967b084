// Package conn manages a single long-lived connection to the cache backend:
// establishing it, watching it, reconnecting it with capped backoff, and
// routing all commands through one guarded choke point.
//
// One Manager instance owns one shared connection. The process entry point
// constructs it via CreateClient and hands the same instance to every
// consumer; there is no package-level singleton.
package conn

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mwalther/redkeeper/pkg/config"
)

// quitTimeout bounds the graceful QUIT during shutdown.
const quitTimeout = 2 * time.Second

// Manager owns the shared cache connection and its lifecycle.
//
// Lifecycle events flow through a single serialized event loop, so state
// transitions never run concurrently. Commands are issued concurrently by
// many callers against the same multiplexed connection; they consult the
// connected flag at call time and tolerate the inherent race with an
// in-flight disconnect (the command then fails with a transport error,
// which the executor records like any other command failure).
type Manager struct {
	cfg    config.CacheConfig
	client *redis.Client
	policy Policy
	logger zerolog.Logger

	stats *statsCollector

	events chan event
	done   chan struct{}
	loopWG sync.WaitGroup

	state      atomic.Int32
	connected  atomic.Bool
	connecting atomic.Bool
	attempts   atomic.Int32

	monitorRunning atomic.Bool
	monitorCancel  atomic.Value // context.CancelFunc
	monitorWG      sync.WaitGroup

	closeOnce sync.Once
}

// newManager wires the manager and starts its event loop.
func newManager(cfg config.CacheConfig, client *redis.Client, policy Policy, logger zerolog.Logger) *Manager {
	if policy.MaxAttempts == 0 {
		policy = DefaultPolicy()
	}

	m := &Manager{
		cfg:    cfg,
		client: client,
		policy: policy,
		logger: logger.With().Str("component", "conn").Logger(),
		stats:  newStatsCollector(),
		events: make(chan event),
		done:   make(chan struct{}),
	}
	m.state.Store(int32(StateDisconnected))

	m.loopWG.Add(1)
	go m.run()

	return m
}

// State returns the current connection state.
func (m *Manager) State() ConnState {
	if m == nil {
		return StateDisconnected
	}
	return ConnState(m.state.Load())
}

// IsConnected reports whether the connection is ready to serve commands.
func (m *Manager) IsConnected() bool {
	return m != nil && m.connected.Load()
}

// Stats returns a read-only snapshot of the manager's statistics.
func (m *Manager) Stats() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return m.stats.snapshot(m.connected.Load(), int(m.attempts.Load()))
}

// Connect establishes the connection or confirms it is already established.
// On initial failure it drives the reconnection policy to completion and
// returns whether the connection reached ready.
func (m *Manager) Connect(ctx context.Context) bool {
	if m == nil || m.State() == StateClosed {
		return false
	}
	if m.connected.Load() {
		return true
	}

	// One goroutine drives a connection attempt at a time; concurrent
	// callers report the current readiness instead of running a second
	// backoff walk against the same budget.
	if !m.connecting.CompareAndSwap(false, true) {
		return m.connected.Load()
	}
	defer m.connecting.Store(false)

	if m.connected.Load() {
		return true
	}

	m.dispatch(event{kind: eventConnect})

	if err := m.establish(ctx); err != nil {
		m.dispatch(event{kind: eventError, err: err})
		if !m.reconnectLoop(ctx) {
			return false
		}
	} else {
		m.dispatch(event{kind: eventReady})
	}

	m.startMonitor()
	return true
}

// establish verifies the backend answers before the connection is marked
// ready. With the ready check disabled the pool is trusted to dial lazily.
func (m *Manager) establish(ctx context.Context) error {
	if !m.cfg.ReadyCheckEnabled() {
		return nil
	}
	return m.probeBackend(ctx)
}

// probeBackend issues one bounded PING against the backend.
func (m *Manager) probeBackend(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, m.cfg.CommandTimeout())
	defer cancel()
	return m.client.Ping(pctx).Err()
}

// reconnectLoop runs backoff-delayed reconnection attempts until the
// connection is ready, the budget is exhausted, or the manager shuts down.
func (m *Manager) reconnectLoop(ctx context.Context) bool {
	for attempt := 1; ; attempt++ {
		delay, ok := m.policy.Delay(attempt)
		if !ok {
			m.logger.WithLevel(zerolog.FatalLevel).
				Int("attempts", attempt-1).
				Msg("reconnect attempts exhausted; connection requires manual intervention")
			reconnectExhaustedTotal.Inc()
			m.stats.recordError(ErrRetryExhausted)
			errorsTotal.WithLabelValues("connection").Inc()
			m.dispatch(event{kind: eventEnd, err: ErrRetryExhausted})
			return false
		}

		m.dispatch(event{kind: eventReconnecting, attempt: attempt, delay: delay})

		select {
		case <-ctx.Done():
			m.dispatch(event{kind: eventClose})
			return false
		case <-m.done:
			return false
		case <-time.After(delay):
		}

		if err := m.establish(ctx); err != nil {
			m.dispatch(event{kind: eventError, err: err})
			continue
		}

		m.dispatch(event{kind: eventReady})
		return true
	}
}

// startMonitor launches the keep-alive pinger if it is not already running.
// An explicit zero keep-alive interval disables the monitor.
func (m *Manager) startMonitor() {
	if m.cfg.KeepAlive() <= 0 {
		return
	}
	if !m.monitorRunning.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.monitorCancel.Store(cancel)

	m.monitorWG.Add(1)
	go func() {
		defer m.monitorWG.Done()
		defer m.monitorRunning.Store(false)
		m.monitor(ctx)
	}()
}

// monitor pings the backend at the keep-alive cadence and turns failures
// into state-machine events and reconnection attempts. Unlike establish it
// always pings: the ready-check flag governs only how a connection is
// declared ready, not whether a live one is watched.
func (m *Manager) monitor(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.KeepAlive())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			if err := m.probeBackend(ctx); err != nil {
				m.dispatch(event{kind: eventError, err: err})
				if !m.connecting.CompareAndSwap(false, true) {
					continue
				}
				recovered := m.reconnectLoop(ctx)
				m.connecting.Store(false)
				if !recovered {
					return
				}
			}
		}
	}
}

// dispatch feeds an event into the serialized state machine and waits for
// the transition to be applied. After shutdown it is a no-op.
func (m *Manager) dispatch(ev event) {
	ev.applied = make(chan struct{})

	select {
	case m.events <- ev:
		<-ev.applied
	case <-m.done:
	}
}

// run is the single goroutine consuming lifecycle events. It is the only
// writer of the connection state.
func (m *Manager) run() {
	defer m.loopWG.Done()

	for {
		select {
		case ev := <-m.events:
			m.apply(ev)
			if ev.applied != nil {
				close(ev.applied)
			}
		case <-m.done:
			return
		}
	}
}

// apply executes one state transition and its side effects.
func (m *Manager) apply(ev event) {
	prev := m.State()
	if prev == StateClosed {
		return
	}
	next := nextState(prev, ev.kind)

	switch ev.kind {
	case eventConnect:
		m.logger.Debug().Msg("connecting to cache backend")

	case eventReady:
		m.connected.Store(true)
		connectedGauge.Set(1)
		m.attempts.Store(0)
		m.stats.recordConnection(time.Now())
		connectionsTotal.Inc()
		m.logger.Info().Str("addr", m.cfg.Addr()).Msg("cache connection ready")

	case eventError:
		m.connected.Store(false)
		connectedGauge.Set(0)
		m.stats.recordError(ev.err)
		errorsTotal.WithLabelValues("connection").Inc()
		m.logger.Error().Err(ev.err).Str("state", prev.String()).Msg("cache connection error")

	case eventClose:
		m.connected.Store(false)
		connectedGauge.Set(0)
		m.logger.Info().Msg("cache connection closed")

	case eventReconnecting:
		m.connected.Store(false)
		connectedGauge.Set(0)
		m.attempts.Store(int32(ev.attempt))
		reconnectAttemptsTotal.Inc()
		reconnectBackoffSeconds.Observe(ev.delay.Seconds())
		m.logger.Warn().
			Int("attempt", ev.attempt).
			Dur("backoff", ev.delay).
			Msg("reconnecting to cache backend")

	case eventEnd:
		m.connected.Store(false)
		connectedGauge.Set(0)
		m.logger.Warn().Msg("cache connection ended by transport")
	}

	if next != prev {
		m.state.Store(int32(next))
		m.logger.Debug().
			Str("from", prev.String()).
			Str("to", next.String()).
			Str("event", ev.kind.String()).
			Msg("state transition")
	}
}

// Disconnect tears the connection down: it detaches the monitor and the
// event loop so no reconnection can race the close, attempts a graceful
// QUIT with a bounded wait, and force-closes the transport if that fails.
// It is idempotent; repeated calls are no-ops.
func (m *Manager) Disconnect() {
	if m == nil {
		return
	}

	m.closeOnce.Do(func() {
		m.logger.Info().Msg("shutting down cache connection")

		if cancel, ok := m.monitorCancel.Load().(context.CancelFunc); ok {
			cancel()
		}
		close(m.done)
		m.loopWG.Wait()
		m.monitorWG.Wait()

		m.connected.Store(false)
		connectedGauge.Set(0)
		m.state.Store(int32(StateClosed))

		if m.client == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), quitTimeout)
		defer cancel()

		if err := m.client.Do(ctx, "quit").Err(); err != nil {
			m.logger.Warn().Err(err).Msg("graceful quit failed; forcing close")
		} else {
			m.logger.Info().Msg("graceful quit acknowledged")
		}

		if err := m.client.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("transport close failed")
		} else {
			m.logger.Info().Msg("transport closed")
		}
	})
}
