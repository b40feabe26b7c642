package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCoreConfigDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := LoadCoreConfig()
	if err != nil {
		t.Fatalf("LoadCoreConfig: %v", err)
	}
	if cfg.DaemonAddress() != "127.0.0.1:7878" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
	if cfg.DaemonBaseURL() != "http://127.0.0.1:7878" {
		t.Fatalf("unexpected daemon base url: %q", cfg.DaemonBaseURL())
	}
	if cfg.PollInterval() != time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.NextTimeout() != 3*time.Second {
		t.Fatalf("unexpected next timeout: %s", cfg.NextTimeout())
	}
	if cfg.ToastDuration() != 5*time.Second {
		t.Fatalf("unexpected toast duration: %s", cfg.ToastDuration())
	}
	if cfg.StorageBackend() != StorageBackendBbolt {
		t.Fatalf("unexpected storage backend: %q", cfg.StorageBackend())
	}
	if !cfg.PushEnabled() {
		t.Fatalf("expected push enabled by default")
	}
	if cfg.PersistTimeout() != 10*time.Second {
		t.Fatalf("unexpected persist timeout: %s", cfg.PersistTimeout())
	}
}

func TestLoadCoreConfigFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".outreach")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := strings.Join([]string{
		"[daemon]",
		`address = "http://127.0.0.1:9999/"`,
		`persist_timeout = "2s"`,
		"[storage]",
		`backend = "FILE"`,
		"[panel]",
		`poll_interval = "500ms"`,
		`poll_max_backoff = "nonsense"`,
		"disable_push = true",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadCoreConfig()
	if err != nil {
		t.Fatalf("LoadCoreConfig: %v", err)
	}
	if cfg.DaemonBaseURL() != "http://127.0.0.1:9999" {
		t.Fatalf("unexpected daemon base url: %q", cfg.DaemonBaseURL())
	}
	if cfg.StorageBackend() != StorageBackendFile {
		t.Fatalf("unexpected storage backend: %q", cfg.StorageBackend())
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.PollMaxBackoff() != 8*time.Second {
		t.Fatalf("expected invalid backoff to fall back, got %s", cfg.PollMaxBackoff())
	}
	if cfg.PushEnabled() {
		t.Fatalf("expected push disabled")
	}
	if cfg.PersistTimeout() != 2*time.Second {
		t.Fatalf("unexpected persist timeout: %s", cfg.PersistTimeout())
	}
}

func TestPollJitterBoundedByInterval(t *testing.T) {
	cfg := DefaultCoreConfig()
	cfg.Panel.PollInterval = "100ms"
	cfg.Panel.PollJitter = "1s"
	if got := cfg.PollJitter(); got != 50*time.Millisecond {
		t.Fatalf("expected jitter capped to half interval, got %s", got)
	}
}

func TestCoreConfigMarshalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data, err := DefaultCoreConfig().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadCoreConfigFromPath(path)
	if err != nil {
		t.Fatalf("LoadCoreConfigFromPath: %v", err)
	}
	if cfg.DaemonAddress() != defaultDaemonAddress {
		t.Fatalf("unexpected daemon address after round trip: %q", cfg.DaemonAddress())
	}
}
