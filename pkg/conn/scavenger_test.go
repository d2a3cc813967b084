package conn

import (
	"context"
	"testing"
	"time"
)

func TestCleanup_NotConnected(t *testing.T) {
	m := newOfflineManager(t)

	// Must not panic and must not attempt network work that hangs.
	done := make(chan struct{})
	go func() {
		m.Cleanup(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cleanup on a disconnected manager should return immediately")
	}
}

func TestCleanup_RemovesLeakedProbeKeys(t *testing.T) {
	m := setupLiveManager(t)
	ctx := context.Background()

	// Simulate probes that crashed between write and delete.
	leaked := []string{
		probeKeyPrefix + "1700000000000:leak-a",
		probeKeyPrefix + "1700000000001:leak-b",
		probeKeyPrefix + "1700000000002:leak-c",
	}
	for _, key := range leaked {
		if err := m.client.Set(ctx, key, "stale", 0).Err(); err != nil {
			t.Fatalf("seed leaked key: %v", err)
		}
	}
	// An application key matching nothing probe-related must survive.
	appKey := "redkeeper-test:app-data"
	if err := m.client.Set(ctx, appKey, "keep", 0).Err(); err != nil {
		t.Fatalf("seed app key: %v", err)
	}
	t.Cleanup(func() { m.client.Del(context.Background(), appKey) })

	m.Cleanup(ctx)

	for _, key := range leaked {
		n, err := m.client.Exists(ctx, key).Result()
		if err != nil {
			t.Fatalf("exists check: %v", err)
		}
		if n != 0 {
			t.Errorf("leaked key %q should have been scavenged", key)
		}
	}

	n, err := m.client.Exists(ctx, appKey).Result()
	if err != nil {
		t.Fatalf("exists check: %v", err)
	}
	if n != 1 {
		t.Error("application keys must not be touched by cleanup")
	}
}
