package conn

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// probeKeyPrefix namespaces ephemeral health-probe keys away from
// application keys. Cleanup scans for this prefix.
const probeKeyPrefix = "redkeeper:probe:"

// probeTTL bounds how long a leaked probe key can survive.
const probeTTL = 30 * time.Second

// HealthStatus classifies the outcome of a health check.
type HealthStatus string

const (
	StatusHealthy      HealthStatus = "healthy"
	StatusDegraded     HealthStatus = "degraded"
	StatusError        HealthStatus = "error"
	StatusDisconnected HealthStatus = "disconnected"
)

// HealthReport is the structured result of a health check. It is produced
// fresh on every call and never persisted.
type HealthReport struct {
	Status      HealthStatus `json:"status"`
	LatencyMs   float64      `json:"latency_ms,omitempty"`
	ReadWriteOk bool         `json:"read_write_ok,omitempty"`
	ServerInfo  *ServerInfo  `json:"server_info,omitempty"`
	Error       string       `json:"error,omitempty"`
	LastError   *LastError   `json:"last_error,omitempty"`
}

// ServerInfo carries the backend's self-reported vitals.
type ServerInfo struct {
	Version                  string `json:"version"`
	Mode                     string `json:"mode"`
	UptimeSeconds            int64  `json:"uptime_seconds"`
	ConnectedClients         int64  `json:"connected_clients"`
	UsedMemoryHuman          string `json:"used_memory_human"`
	TotalCommandsProcessed   int64  `json:"total_commands_processed"`
	TotalConnectionsReceived int64  `json:"total_connections_received"`
}

// HealthCheck probes the connection and returns a structured report. It
// never returns an error: probe failures are folded into the report and
// recorded in the statistics through the executor's error path.
func (m *Manager) HealthCheck(ctx context.Context) HealthReport {
	if m == nil || !m.connected.Load() {
		return HealthReport{Status: StatusDisconnected, Error: "not connected"}
	}

	timer := prometheus.NewTimer(healthCheckDuration)
	defer timer.ObserveDuration()

	latency, err := m.latencyProbe(ctx)
	if err != nil {
		return m.probeFailure(err)
	}

	readWriteOk, err := m.readWriteProbe(ctx)
	if err != nil {
		return m.probeFailure(err)
	}

	info, err := m.serverInfo(ctx)
	if err != nil {
		return m.probeFailure(err)
	}

	status := StatusHealthy
	if !readWriteOk {
		status = StatusDegraded
		m.logger.Warn().Msg("read/write probe returned a mismatched value")
	}

	return HealthReport{
		Status:      status,
		LatencyMs:   float64(latency.Microseconds()) / 1000.0,
		ReadWriteOk: readWriteOk,
		ServerInfo:  info,
	}
}

func (m *Manager) probeFailure(err error) HealthReport {
	errorsTotal.WithLabelValues("health").Inc()
	m.logger.Error().Err(err).Msg("health probe failed")

	return HealthReport{
		Status:    StatusError,
		Error:     err.Error(),
		LastError: m.stats.lastErr(),
	}
}

// latencyProbe times a trivial round trip.
func (m *Manager) latencyProbe(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := m.Ping(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// newProbeKey builds a unique ephemeral key. The UUID component keeps two
// health checks issued within the same millisecond from colliding.
func newProbeKey() string {
	return fmt.Sprintf("%s%d:%s", probeKeyPrefix, time.Now().UnixMilli(), uuid.NewString())
}

// readWriteProbe writes a unique short-lived key, reads it back, compares,
// and deletes it. Atomicity across the three steps is best effort; a crash
// in between leaks a key for Cleanup to scavenge.
func (m *Manager) readWriteProbe(ctx context.Context) (bool, error) {
	key := newProbeKey()
	want := uuid.NewString()

	if m.cfg.AutoPipelining {
		return m.pipelinedProbe(ctx, key, want)
	}

	if err := m.Set(ctx, key, want, probeTTL); err != nil {
		return false, err
	}

	got, found, err := m.Get(ctx, key)
	if err != nil {
		return false, err
	}

	if _, err := m.Del(ctx, key); err != nil {
		return false, err
	}

	return found && got == want, nil
}

// pipelinedProbe issues the write/read/delete round trip as one pipeline.
func (m *Manager) pipelinedProbe(ctx context.Context, key, want string) (bool, error) {
	var got string
	var found bool

	err := m.exec(ctx, OpProbe, func(ctx context.Context) error {
		var getCmd *redis.StringCmd
		_, err := m.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, want, probeTTL)
			getCmd = pipe.Get(ctx, key)
			pipe.Del(ctx, key)
			return nil
		})
		// Pipelined surfaces redis.Nil when the GET misses; that is a
		// degraded probe result, not a command failure.
		if err != nil && err != redis.Nil {
			return err
		}

		v, err := getCmd.Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		got = v
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return found && got == want, nil
}

// serverInfo gathers and parses the backend's introspection output.
func (m *Manager) serverInfo(ctx context.Context) (*ServerInfo, error) {
	raw, err := m.Info(ctx, "server", "clients", "memory", "stats")
	if err != nil {
		return nil, err
	}
	return parseServerInfo(raw), nil
}

// parseServerInfo extracts the fields we report from INFO output
// (lines of "key:value", sections prefixed with '#').
func parseServerInfo(raw string) *ServerInfo {
	info := &ServerInfo{}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch key {
		case "redis_version":
			info.Version = value
		case "redis_mode":
			info.Mode = value
		case "uptime_in_seconds":
			info.UptimeSeconds, _ = strconv.ParseInt(value, 10, 64)
		case "connected_clients":
			info.ConnectedClients, _ = strconv.ParseInt(value, 10, 64)
		case "used_memory_human":
			info.UsedMemoryHuman = value
		case "total_commands_processed":
			info.TotalCommandsProcessed, _ = strconv.ParseInt(value, 10, 64)
		case "total_connections_received":
			info.TotalConnectionsReceived, _ = strconv.ParseInt(value, 10, 64)
		}
	}

	return info
}
