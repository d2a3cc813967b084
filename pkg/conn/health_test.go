package conn

import (
	"context"
	"strings"
	"testing"
)

func TestNewProbeKey_UniqueAndPrefixed(t *testing.T) {
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		key := newProbeKey()
		if !strings.HasPrefix(key, probeKeyPrefix) {
			t.Fatalf("probe key %q missing prefix %q", key, probeKeyPrefix)
		}
		if _, dup := seen[key]; dup {
			t.Fatalf("probe key collision: %q", key)
		}
		seen[key] = struct{}{}
	}
}

func TestParseServerInfo(t *testing.T) {
	raw := "# Server\r\n" +
		"redis_version:7.2.4\r\n" +
		"redis_mode:standalone\r\n" +
		"uptime_in_seconds:86400\r\n" +
		"# Clients\r\n" +
		"connected_clients:12\r\n" +
		"# Memory\r\n" +
		"used_memory_human:1.05M\r\n" +
		"# Stats\r\n" +
		"total_connections_received:341\r\n" +
		"total_commands_processed:99817\r\n" +
		"malformed line without separator\r\n"

	info := parseServerInfo(raw)

	if info.Version != "7.2.4" {
		t.Errorf("Version = %q, want 7.2.4", info.Version)
	}
	if info.Mode != "standalone" {
		t.Errorf("Mode = %q, want standalone", info.Mode)
	}
	if info.UptimeSeconds != 86400 {
		t.Errorf("UptimeSeconds = %d, want 86400", info.UptimeSeconds)
	}
	if info.ConnectedClients != 12 {
		t.Errorf("ConnectedClients = %d, want 12", info.ConnectedClients)
	}
	if info.UsedMemoryHuman != "1.05M" {
		t.Errorf("UsedMemoryHuman = %q, want 1.05M", info.UsedMemoryHuman)
	}
	if info.TotalConnectionsReceived != 341 {
		t.Errorf("TotalConnectionsReceived = %d, want 341", info.TotalConnectionsReceived)
	}
	if info.TotalCommandsProcessed != 99817 {
		t.Errorf("TotalCommandsProcessed = %d, want 99817", info.TotalCommandsProcessed)
	}
}

func TestParseServerInfo_Empty(t *testing.T) {
	info := parseServerInfo("")
	if info == nil {
		t.Fatal("parseServerInfo should never return nil")
	}
	if info.Version != "" {
		t.Errorf("Version = %q, want empty", info.Version)
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	m := setupLiveManager(t)

	report := m.HealthCheck(context.Background())

	if report.Status != StatusHealthy {
		t.Fatalf("Status = %q (error=%q), want healthy", report.Status, report.Error)
	}
	if report.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, want non-negative", report.LatencyMs)
	}
	if !report.ReadWriteOk {
		t.Error("ReadWriteOk should be true against a healthy backend")
	}
	if report.ServerInfo == nil {
		t.Fatal("ServerInfo should be populated")
	}
	if report.ServerInfo.Version == "" {
		t.Error("ServerInfo.Version should be set")
	}
	if report.ServerInfo.ConnectedClients < 1 {
		t.Errorf("ConnectedClients = %d, want >= 1", report.ServerInfo.ConnectedClients)
	}
}

func TestHealthCheck_PipelinedProbe(t *testing.T) {
	m := setupLiveManager(t)
	m.cfg.AutoPipelining = true

	report := m.HealthCheck(context.Background())

	if report.Status != StatusHealthy {
		t.Fatalf("Status = %q (error=%q), want healthy", report.Status, report.Error)
	}
	if !report.ReadWriteOk {
		t.Error("pipelined probe should verify the written value")
	}
}

func TestHealthCheck_LeavesNoProbeKeys(t *testing.T) {
	m := setupLiveManager(t)
	ctx := context.Background()

	report := m.HealthCheck(ctx)
	if report.Status != StatusHealthy {
		t.Fatalf("Status = %q, want healthy", report.Status)
	}

	keys, _, err := m.client.Scan(ctx, 0, probeKeyPrefix+"*", 100).Result()
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("health check leaked probe keys: %v", keys)
	}
}
