package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL == "" {
		t.Error("default base url is empty")
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("default theme = %q", cfg.UI.Theme)
	}
	if cfg.ConnectTimeout() != 10*time.Second {
		t.Errorf("connect timeout = %v", cfg.ConnectTimeout())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  base_url: http://localhost:9000\n  request_timeout: 5s\nlogging:\n  debug_mode: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:9000" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout())
	}
	if !cfg.Logging.DebugMode {
		t.Error("debug_mode not read from file")
	}
	// Unset fields keep their defaults.
	if cfg.Server.ConnectTimeout != "10s" {
		t.Errorf("connect timeout = %q", cfg.Server.ConnectTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  base_url: http://from-file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EVA_BASE_URL", "http://from-env")
	t.Setenv("EVA_THEME", "dark")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://from-env" {
		t.Errorf("base url = %q, want env override", cfg.Server.BaseURL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  request_timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("request timeout = %v, want fallback", cfg.RequestTimeout())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://localhost:1234"
	cfg.OAuth.ClientID = "client-1"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Server.BaseURL != "http://localhost:1234" {
		t.Errorf("base url = %q", got.Server.BaseURL)
	}
	if got.OAuth.ClientID != "client-1" {
		t.Errorf("client id = %q", got.OAuth.ClientID)
	}
}

func TestDir_HonorsOverride(t *testing.T) {
	t.Setenv("EVA_HOME", "/tmp/eva-test")
	if Dir() != "/tmp/eva-test" {
		t.Errorf("Dir = %q", Dir())
	}
	if Path() != filepath.Join("/tmp/eva-test", "config.yaml") {
		t.Errorf("Path = %q", Path())
	}
}
