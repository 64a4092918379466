package config

import (
	"os"
	"testing"
)

func TestEnvOverrides(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = "/tmp/config" // avoid creation

	t.Setenv("BLITZ_HOTKEY", "rctrl")
	t.Setenv("BLITZ_METRICS_ADDR", "1.2.3.4:9999")
	t.Setenv("BLITZ_LOG_LEVEL", "debug")
	t.Setenv("BLITZ_LOG_FORMAT", "json")
	t.Setenv("BLITZ_NOTIFY_ENABLED", "false")

	applyEnvOverrides(cfg)

	if cfg.Hotkey.Key != "rctrl" {
		t.Fatalf("hotkey override failed: %+v", cfg.Hotkey)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "1.2.3.4:9999" {
		t.Fatalf("metrics override failed: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
	if cfg.Notify.Enabled {
		t.Fatalf("notify should be disabled via env")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.toml"

	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = path
	cfg.Hotkey.Key = "f13"
	cfg.Inject.Method = "type"
	cfg.Hook.Command = "/bin/echo"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Hotkey.Key != "f13" {
		t.Fatalf("expected hotkey to persist, got %q", loaded.Hotkey.Key)
	}
	if loaded.Inject.Method != "type" {
		t.Fatalf("expected inject method to persist, got %q", loaded.Inject.Method)
	}
	if loaded.Hook.Command != "/bin/echo" {
		t.Fatalf("expected hook command to persist")
	}

	// cleanup to avoid residue
	_ = os.Remove(path)
}

func TestLoadWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.toml"

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.MinDurationMS != defaultMinDurationMS {
		t.Fatalf("expected default min duration, got %d", cfg.Session.MinDurationMS)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected template written: %v", err)
	}
}
