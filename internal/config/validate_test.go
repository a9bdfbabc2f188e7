package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateConfig_Defaults(t *testing.T) {
	if err := validateConfig(DefaultConfig()); err != nil {
		t.Errorf("expected defaults to be valid, got %v", err)
	}
}

func TestValidateConfig_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad generate url", func(c *Config) { c.Service.GenerateURL = "localhost:8000" }, "service.generate_url"},
		{"missing host", func(c *Config) { c.Service.SubmitURL = "http://" }, "service.submit_url"},
		{"bad upstream", func(c *Config) { c.Server.UpstreamGenerateURL = "ftp://x" }, "server.upstream_generate_url"},
		{"bad timeout", func(c *Config) { c.Service.Timeout = "soon" }, "service.timeout"},
		{"zero timeout", func(c *Config) { c.Service.Timeout = "0s" }, "service.timeout"},
		{"temperature high", func(c *Config) { c.Generation.Temperature = 1.1 }, "generation.temperature"},
		{"temperature low", func(c *Config) { c.Generation.Temperature = -0.1 }, "generation.temperature"},
		{"max tokens low", func(c *Config) { c.Generation.MaxTokens = 999 }, "generation.max_tokens"},
		{"max tokens high", func(c *Config) { c.Generation.MaxTokens = 20001 }, "generation.max_tokens"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"empty archive", func(c *Config) { c.Server.ArchivePath = "" }, "server.archive_path"},
		{"log level", func(c *Config) { c.LogLevel = "DEBUG" }, "log_level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestValidateConfig_JoinsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	cfg.Generation.MaxTokens = 0

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "config.log_level") || !strings.Contains(msg, "config.generation.max_tokens") {
		t.Errorf("expected both failures in %q", msg)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "log_level", Value: "loud", Message: "must be one of: debug, info, warn, error"}
	want := "config.log_level: must be one of: debug, info, warn, error (got: loud)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
