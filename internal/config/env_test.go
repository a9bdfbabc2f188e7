package config

import (
	"testing"
)

func TestEnvOverrides_APIURL(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("PLANRATE_API_URL", "https://api.example.com")

	applyEnvOverrides(cfg)

	if cfg.Service.GenerateURL != "https://api.example.com" || cfg.Service.SubmitURL != "https://api.example.com" {
		t.Errorf("expected both URLs overridden, got %+v", cfg.Service)
	}
}

func TestEnvOverrides_SpecificURLWins(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("PLANRATE_API_URL", "https://api.example.com")
	t.Setenv("PLANRATE_SUBMIT_URL", "http://localhost:9000")

	applyEnvOverrides(cfg)

	if cfg.Service.GenerateURL != "https://api.example.com" {
		t.Errorf("unexpected GenerateURL %q", cfg.Service.GenerateURL)
	}
	if cfg.Service.SubmitURL != "http://localhost:9000" {
		t.Errorf("unexpected SubmitURL %q", cfg.Service.SubmitURL)
	}
}

func TestEnvOverrides_Port(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("PORT", "9090")

	applyEnvOverrides(cfg)

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected Addr ':9090', got %q", cfg.Server.Addr)
	}

	t.Setenv("PLANRATE_ADDR", "127.0.0.1:7000")
	applyEnvOverrides(cfg)
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("expected PLANRATE_ADDR to win, got %q", cfg.Server.Addr)
	}
}

func TestEnvOverrides_LogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	t.Setenv("PLANRATE_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel to be 'debug', got '%s'", cfg.LogLevel)
	}
}

func TestEnvOverrides_ArchiveAndUpstream(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("PLANRATE_ARCHIVE", "/tmp/planrate.db")
	t.Setenv("PLANRATE_UPSTREAM_URL", "https://gen.example.com")

	applyEnvOverrides(cfg)

	if cfg.Server.ArchivePath != "/tmp/planrate.db" {
		t.Errorf("unexpected ArchivePath %q", cfg.Server.ArchivePath)
	}
	if cfg.Server.UpstreamGenerateURL != "https://gen.example.com" {
		t.Errorf("unexpected UpstreamGenerateURL %q", cfg.Server.UpstreamGenerateURL)
	}
}

func TestEnvOverrides_EmptyNoChange(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	t.Setenv("PLANRATE_LOG_LEVEL", "")

	applyEnvOverrides(cfg)

	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel to remain 'info', got '%s'", cfg.LogLevel)
	}
}
