// redkeeperd runs the cache connection manager as a small daemon exposing
// health, statistics, and Prometheus metrics over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwalther/redkeeper/pkg/config"
	"github.com/mwalther/redkeeper/pkg/conn"
	"github.com/mwalther/redkeeper/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logging.Setup(logging.DefaultConfig())
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	manager, err := conn.CreateClient(cfg.Cache, conn.DefaultPolicy(), logging.NewLogger("factory"))
	if err != nil {
		logger.Fatal().Err(err).Msg("cache client construction failed")
	}

	if manager != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if !manager.Connect(ctx) {
			logger.Warn().Msg("cache backend unreachable at startup; serving with a down connection")
		} else {
			manager.Cleanup(ctx)
		}
		cancel()

		manager.RegisterShutdown()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler(manager))
	mux.HandleFunc("/stats", statsHandler(manager))
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("starting redkeeperd")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
}

// healthHandler serves the connection health report. A disconnected or
// erroring connection answers 503 so load balancers can act on it.
func healthHandler(m *conn.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := m.HealthCheck(ctx)

		status := http.StatusOK
		if report.Status == conn.StatusError || report.Status == conn.StatusDisconnected {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, report)
	}
}

// statsHandler serves the read-only statistics snapshot.
func statsHandler(m *conn.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.Stats())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
