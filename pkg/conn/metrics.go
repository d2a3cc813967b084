package conn

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the connection manager.
var (
	connectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redkeeper_connections_total",
		Help: "Total number of times the connection reached ready",
	})

	connectedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redkeeper_connected",
		Help: "Whether the cache connection is currently ready (1) or not (0)",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redkeeper_commands_total",
		Help: "Total commands issued through the executor by operation",
	}, []string{"op"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redkeeper_errors_total",
		Help: "Total errors by source (connection, command, health, creation)",
	}, []string{"source"})

	reconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redkeeper_reconnect_attempts_total",
		Help: "Total reconnection attempts",
	})

	reconnectBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redkeeper_reconnect_backoff_seconds",
		Help:    "Backoff delay applied before reconnection attempts",
		Buckets: []float64{0.05, 0.1, 0.15, 0.2, 0.25, 0.5, 1, 2},
	})

	reconnectExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redkeeper_reconnect_exhausted_total",
		Help: "Total number of times the reconnection budget was exhausted",
	})

	healthCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redkeeper_health_check_duration_seconds",
		Help:    "Duration of full health checks",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	probeKeysScavenged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redkeeper_probe_keys_scavenged_total",
		Help: "Total leaked health-probe keys removed by cleanup",
	})
)
