package conn

import "context"

// scanBatchSize is the SCAN count hint used while scavenging.
const scanBatchSize = 100

// Cleanup removes health-probe keys that leaked, typically because a crash
// happened between the probe's write and delete. It is best effort: every
// failure is logged as a warning and nothing escapes this boundary.
func (m *Manager) Cleanup(ctx context.Context) {
	if m == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn().Interface("panic", r).Msg("probe scavenging panicked")
		}
	}()

	if !m.connected.Load() {
		m.logger.Debug().Msg("skipping probe scavenging: not connected")
		return
	}

	var cursor uint64
	var removed int

	for {
		keys, next, err := m.client.Scan(ctx, cursor, probeKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			m.logger.Warn().Err(err).Msg("probe scavenging scan failed")
			return
		}

		if len(keys) > 0 {
			if err := m.client.Del(ctx, keys...).Err(); err != nil {
				m.logger.Warn().Err(err).Msg("probe scavenging delete failed")
				return
			}
			removed += len(keys)
			probeKeysScavenged.Add(float64(len(keys)))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("scavenged leaked probe keys")
	}
}
