package conn

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Op identifies an operation issued through the executor. The set is
// closed: every sanctioned command is enumerated here and routed through
// the same guard, so the statistics stay consistent.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpDel    Op = "del"
	OpExpire Op = "expire"
	OpTTL    Op = "ttl"
	OpPing   Op = "ping"
	OpInfo   Op = "info"
	OpProbe  Op = "probe"
)

// exec is the single choke point for all routine traffic. It rejects the
// command when the connection is not ready, counts every gated attempt,
// and records failures before re-raising them to the caller.
func (m *Manager) exec(ctx context.Context, op Op, fn func(context.Context) error) error {
	if m == nil || !m.connected.Load() {
		return ErrNotConnected
	}

	m.stats.recordCommand()
	commandsTotal.WithLabelValues(string(op)).Inc()

	if err := fn(ctx); err != nil {
		m.stats.recordError(err)
		errorsTotal.WithLabelValues("command").Inc()
		return &CommandError{Op: op, Err: err}
	}
	return nil
}

// Get retrieves a key. A missing key is not an error: it returns
// ("", false, nil) and leaves the error counters untouched.
func (m *Manager) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	found := true

	err := m.exec(ctx, OpGet, func(ctx context.Context) error {
		v, err := m.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

// Set stores a key with the given TTL. A zero TTL stores without expiry.
func (m *Manager) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.exec(ctx, OpSet, func(ctx context.Context) error {
		return m.client.Set(ctx, key, value, ttl).Err()
	})
}

// Del removes the given keys and returns how many existed.
func (m *Manager) Del(ctx context.Context, keys ...string) (int64, error) {
	var removed int64
	err := m.exec(ctx, OpDel, func(ctx context.Context) error {
		n, err := m.client.Del(ctx, keys...).Result()
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	return removed, err
}

// Expire sets a TTL on an existing key and reports whether the key exists.
func (m *Manager) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var ok bool
	err := m.exec(ctx, OpExpire, func(ctx context.Context) error {
		v, err := m.client.Expire(ctx, key, ttl).Result()
		if err != nil {
			return err
		}
		ok = v
		return nil
	})
	return ok, err
}

// TTL returns the remaining time to live of a key.
func (m *Manager) TTL(ctx context.Context, key string) (time.Duration, error) {
	var ttl time.Duration
	err := m.exec(ctx, OpTTL, func(ctx context.Context) error {
		v, err := m.client.TTL(ctx, key).Result()
		if err != nil {
			return err
		}
		ttl = v
		return nil
	})
	return ttl, err
}

// Ping issues a round trip to the backend.
func (m *Manager) Ping(ctx context.Context) error {
	return m.exec(ctx, OpPing, func(ctx context.Context) error {
		return m.client.Ping(ctx).Err()
	})
}

// Info returns the raw server introspection output for the given sections.
func (m *Manager) Info(ctx context.Context, sections ...string) (string, error) {
	var raw string
	err := m.exec(ctx, OpInfo, func(ctx context.Context) error {
		v, err := m.client.Info(ctx, sections...).Result()
		if err != nil {
			return err
		}
		raw = v
		return nil
	})
	return raw, err
}
