package conn

import (
	"context"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mwalther/redkeeper/pkg/config"
)

// CreateClient builds a connection manager from the given configuration.
//
// When the cache subsystem is disabled it logs a warning and returns a nil
// manager without touching the network; callers must treat nil as a
// permanent condition for this process lifetime. When construction fails
// it returns a nil manager and an error wrapping ErrCreateClient; the
// caller may re-invoke the factory to retry.
func CreateClient(cfg config.CacheConfig, policy Policy, logger zerolog.Logger) (*Manager, error) {
	if !cfg.IsEnabled() {
		logger.Warn().Msg("cache subsystem disabled by configuration; running without a cache connection")
		return nil, nil
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		errorsTotal.WithLabelValues("creation").Inc()
		logger.Error().Err(err).Msg("cache client construction failed")
		return nil, fmt.Errorf("%w: %v", ErrCreateClient, err)
	}

	client := redis.NewClient(opts)
	return newManager(cfg, client, policy, logger), nil
}

// clientOptions maps the cache configuration onto go-redis options. The
// transport owns command timeouts and per-command retries; the manager
// adds no timeout layer of its own.
func clientOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("cache host is empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("cache port %d out of range", cfg.Port)
	}
	if cfg.CommandTimeoutMs <= 0 {
		return nil, fmt.Errorf("command timeout must be positive (got %dms)", cfg.CommandTimeoutMs)
	}
	if cfg.MaxRetries() < 0 {
		return nil, fmt.Errorf("max retries per command must not be negative (got %d)", cfg.MaxRetries())
	}

	// The transport treats zero as "use its own default" for both knobs;
	// an explicit zero in the configuration means disabled, which the
	// transport spells -1.
	maxRetries := cfg.MaxRetries()
	if maxRetries == 0 {
		maxRetries = -1
	}
	keepAlive := cfg.KeepAlive()
	if keepAlive <= 0 {
		keepAlive = -1
	}

	dialer := &net.Dialer{
		Timeout:   cfg.CommandTimeout(),
		KeepAlive: keepAlive,
	}

	return &redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		MaxRetries:   maxRetries,
		ReadTimeout:  cfg.CommandTimeout(),
		WriteTimeout: cfg.CommandTimeout(),
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}, nil
}
