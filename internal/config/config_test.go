package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeFile creates a file with the given content for testing
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// isolateHome points HOME at an empty directory so a developer's
// ~/.planrate/config.yaml does not leak into tests
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.GenerateURL != DefaultServiceURL {
		t.Errorf("expected GenerateURL to be %q, got %q", DefaultServiceURL, cfg.Service.GenerateURL)
	}
	if cfg.Service.SubmitURL != DefaultServiceURL {
		t.Errorf("expected SubmitURL to be %q, got %q", DefaultServiceURL, cfg.Service.SubmitURL)
	}
	if cfg.Generation.Temperature != 0.5 {
		t.Errorf("expected Temperature to be 0.5, got %v", cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxTokens != 10000 {
		t.Errorf("expected MaxTokens to be 10000, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("expected Addr to be %q, got %q", DefaultAddr, cfg.Server.Addr)
	}
	expectedArchive := filepath.Join(dir, DefaultArchivePath)
	if cfg.Server.ArchivePath != expectedArchive {
		t.Errorf("expected ArchivePath to be %q, got %q", expectedArchive, cfg.Server.ArchivePath)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("expected LogLevel to be %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil || timeout != 120*time.Second {
		t.Errorf("expected timeout 120s, got %v (%v)", timeout, err)
	}
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, FileName), `
service:
  generate_url: https://planner.example.com
  submit_url: http://localhost:9000
  timeout: 30s
generation:
  temperature: 0.2
  max_tokens: 4000
server:
  addr: 127.0.0.1:9000
  archive_path: /var/lib/planrate/data.db
  allowed_origins:
    - https://review.example.com
log_level: debug
log_format: json
`)

	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.GenerateURL != "https://planner.example.com" {
		t.Errorf("unexpected GenerateURL %q", cfg.Service.GenerateURL)
	}
	if cfg.Service.SubmitURL != "http://localhost:9000" {
		t.Errorf("unexpected SubmitURL %q", cfg.Service.SubmitURL)
	}
	if cfg.Generation.Temperature != 0.2 || cfg.Generation.MaxTokens != 4000 {
		t.Errorf("unexpected generation settings %+v", cfg.Generation)
	}
	if cfg.Server.ArchivePath != "/var/lib/planrate/data.db" {
		t.Errorf("absolute ArchivePath should be kept, got %q", cfg.Server.ArchivePath)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://review.example.com" {
		t.Errorf("unexpected AllowedOrigins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected LogFormat json, got %q", cfg.LogFormat)
	}
	// unset fields keep defaults
	if cfg.Server.Model != DefaultModel {
		t.Errorf("expected Model default, got %q", cfg.Server.Model)
	}
}

func TestLoadConfig_UserConfigUnderProject(t *testing.T) {
	home := isolateHome(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(home, ".planrate", "config.yaml"), `
service:
  generate_url: https://user.example.com
log_level: warn
`)
	writeFile(t, filepath.Join(dir, FileName), `
log_level: error
`)

	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Service.GenerateURL != "https://user.example.com" {
		t.Errorf("expected user GenerateURL, got %q", cfg.Service.GenerateURL)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected project log level to win, got %q", cfg.LogLevel)
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	other := filepath.Join(t.TempDir(), "custom.yaml")

	writeFile(t, filepath.Join(dir, FileName), "log_level: debug\n")
	writeFile(t, other, "log_level: warn\nserver:\n  archive_path: data/x.db\n")

	cfg, err := LoadConfig(dir, other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected explicit file to be used, got %q", cfg.LogLevel)
	}
	expected := filepath.Join(filepath.Dir(other), "data/x.db")
	if cfg.Server.ArchivePath != expected {
		t.Errorf("expected ArchivePath %q, got %q", expected, cfg.Server.ArchivePath)
	}
}

func TestLoadConfig_ExplicitPathMissing(t *testing.T) {
	isolateHome(t)

	_, err := LoadConfig(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "service: [unterminated")

	_, err := LoadConfig(dir, "")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "generation:\n  temperature: 1.5\n")

	_, err := LoadConfig(dir, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "data.db")

	if err := EnsureDataDir(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Errorf("expected directory to exist: %v", err)
	}
	if err := EnsureDataDir("data.db"); err != nil {
		t.Errorf("bare file name should be a no-op: %v", err)
	}
}
