package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != "8090" {
		t.Errorf("Port = %s, want 8090", cfg.Server.Port)
	}
	if cfg.Host.Mode != "local" {
		t.Errorf("Host.Mode = %s, want local", cfg.Host.Mode)
	}
	if cfg.Terminal.HistoryCap != 1000 {
		t.Errorf("HistoryCap = %d, want 1000", cfg.Terminal.HistoryCap)
	}
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Reconnect.MaxAttempts)
	}
	if cfg.Reconnect.BackoffBase != 500*time.Millisecond {
		t.Errorf("BackoffBase = %v, want 500ms", cfg.Reconnect.BackoffBase)
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Reconnect.QueueDepth != 64 {
		t.Errorf("QueueDepth = %d, want 64", cfg.Reconnect.QueueDepth)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %s, want info", cfg.Logging.Level)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HOST_MODE", "remote")
	t.Setenv("HOST_URL", "ws://hostbox:7000/host")
	t.Setenv("RECONNECT_MAX_ATTEMPTS", "3")
	t.Setenv("RECONNECT_BACKOFF_BASE", "250ms")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %s, want 9000", cfg.Server.Port)
	}
	if cfg.Host.Mode != "remote" {
		t.Errorf("Host.Mode = %s, want remote", cfg.Host.Mode)
	}
	if cfg.Host.URL != "ws://hostbox:7000/host" {
		t.Errorf("Host.URL = %s", cfg.Host.URL)
	}
	if cfg.Reconnect.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Reconnect.MaxAttempts)
	}
	if cfg.Reconnect.BackoffBase != 250*time.Millisecond {
		t.Errorf("BackoffBase = %v, want 250ms", cfg.Reconnect.BackoffBase)
	}
	if !cfg.Logging.Development {
		t.Error("Development = false, want true")
	}
}

func TestLoadOrDefaultNeverFails(t *testing.T) {
	t.Setenv("RECONNECT_MAX_ATTEMPTS", "not-a-number")

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want default 5", cfg.Reconnect.MaxAttempts)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("HISTORY_CAP", "lots")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on a non-numeric HISTORY_CAP")
	}
}
