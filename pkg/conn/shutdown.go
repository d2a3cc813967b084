package conn

import (
	"os"
	"os/signal"
	"syscall"
)

// RegisterShutdown binds Disconnect to the given termination signals,
// defaulting to SIGINT and SIGTERM. Disconnect is idempotent, so a second
// signal (or a duplicate internal call) is a harmless no-op.
func (m *Manager) RegisterShutdown(signals ...os.Signal) {
	if m == nil {
		return
	}
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, signals...)

	go func() {
		sig := <-ch
		m.logger.Info().Str("signal", sig.String()).Msg("termination signal received")
		m.Disconnect()
	}()
}
