// Package metrics documents the Prometheus metrics exposed by redkeeper.
// The metrics themselves are defined next to the code that drives them
// (pkg/conn) via promauto; this package is the registry reference.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the Prometheus registerer used by redkeeper. Metrics are
// registered automatically through promauto in their owning packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Connection Metrics (pkg/conn):
//   - redkeeper_connected (Gauge): 1 while the connection is ready, else 0
//   - redkeeper_connections_total (Counter): times the connection reached ready
//   - redkeeper_errors_total{source} (Counter): errors by source
//     (connection, command, health, creation)
//
// Executor Metrics (pkg/conn):
//   - redkeeper_commands_total{op} (Counter): commands through the choke point
//
// Reconnect Metrics (pkg/conn):
//   - redkeeper_reconnect_attempts_total (Counter): reconnection attempts
//   - redkeeper_reconnect_backoff_seconds (Histogram): applied backoff delays
//   - redkeeper_reconnect_exhausted_total (Counter): retry budget exhaustions
//
// Health Metrics (pkg/conn):
//   - redkeeper_health_check_duration_seconds (Histogram): full check duration
//   - redkeeper_probe_keys_scavenged_total (Counter): leaked probe keys removed
//
// Example Prometheus Queries:
//
//   # Command error rate
//   rate(redkeeper_errors_total{source="command"}[5m]) /
//   rate(redkeeper_commands_total[5m])
//
//   # Connection flapping
//   rate(redkeeper_reconnect_attempts_total[15m])
//
//   # Alert: connection down
//   redkeeper_connected == 0
//
//   # P95 health check latency
//   histogram_quantile(0.95, rate(redkeeper_health_check_duration_seconds_bucket[5m]))
