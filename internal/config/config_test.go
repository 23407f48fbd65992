package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ADMIN_TOKEN", "sekrit")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.TerraBaseURL != "https://terra.snellman.net" {
		t.Errorf("TerraBaseURL = %q", cfg.TerraBaseURL)
	}
	if cfg.DetectionStrategy != StrategyServerClock {
		t.Errorf("DetectionStrategy = %q", cfg.DetectionStrategy)
	}
	if !cfg.UpdateUnchanged {
		t.Error("UpdateUnchanged should default to true")
	}
	if cfg.PollWorkers != 4 {
		t.Errorf("PollWorkers = %d", cfg.PollWorkers)
	}
	if cfg.PollingIntervalSeconds != 0 {
		t.Errorf("PollingIntervalSeconds = %d", cfg.PollingIntervalSeconds)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("DETECTION_STRATEGY", "ledger-length")
	t.Setenv("UPDATE_UNCHANGED", "false")
	t.Setenv("POLL_WORKERS", "8")
	t.Setenv("POLLING_INTERVAL_SECONDS", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9999 || cfg.PollWorkers != 8 || cfg.PollingIntervalSeconds != 90 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DetectionStrategy != StrategyLedgerLength || cfg.UpdateUnchanged {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadMissingAdminToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "ADMIN_TOKEN") {
		t.Fatalf("err = %v, want ADMIN_TOKEN error", err)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DETECTION_STRATEGY", "vibes")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POLL_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero workers")
	}
}
