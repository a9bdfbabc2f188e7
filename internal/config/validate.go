package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/RevCBH/planrate/internal/plan"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	// Service URLs must be absolute http(s) URLs
	for _, f := range []struct{ field, value string }{
		{"service.generate_url", cfg.Service.GenerateURL},
		{"service.submit_url", cfg.Service.SubmitURL},
	} {
		if err := checkURL(f.value); err != nil {
			errs = append(errs, &ValidationError{Field: f.field, Value: f.value, Message: err.Error()})
		}
	}

	// Upstream is optional
	if cfg.Server.UpstreamGenerateURL != "" {
		if err := checkURL(cfg.Server.UpstreamGenerateURL); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "server.upstream_generate_url",
				Value:   cfg.Server.UpstreamGenerateURL,
				Message: err.Error(),
			})
		}
	}

	// Service.Timeout must be a positive Go duration string
	if d, err := time.ParseDuration(cfg.Service.Timeout); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "service.timeout",
			Value:   cfg.Service.Timeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	} else if d <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "service.timeout",
			Value:   cfg.Service.Timeout,
			Message: "must be positive",
		})
	}

	if cfg.Generation.Temperature < plan.MinTemperature || cfg.Generation.Temperature > plan.MaxTemperature {
		errs = append(errs, &ValidationError{
			Field:   "generation.temperature",
			Value:   cfg.Generation.Temperature,
			Message: fmt.Sprintf("must be between %.1f and %.1f", plan.MinTemperature, plan.MaxTemperature),
		})
	}

	if cfg.Generation.MaxTokens < plan.MinMaxTokens || cfg.Generation.MaxTokens > plan.MaxMaxTokens {
		errs = append(errs, &ValidationError{
			Field:   "generation.max_tokens",
			Value:   cfg.Generation.MaxTokens,
			Message: fmt.Sprintf("must be between %d and %d", plan.MinMaxTokens, plan.MaxMaxTokens),
		})
	}

	if cfg.Server.Addr == "" {
		errs = append(errs, &ValidationError{
			Field:   "server.addr",
			Value:   cfg.Server.Addr,
			Message: "must not be empty",
		})
	}

	if cfg.Server.ArchivePath == "" {
		errs = append(errs, &ValidationError{
			Field:   "server.archive_path",
			Value:   cfg.Server.ArchivePath,
			Message: "must not be empty",
		})
	}

	// LogLevel must be one of: debug, info, warn, error (case-sensitive)
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, &ValidationError{
			Field:   "log_format",
			Value:   cfg.LogFormat,
			Message: "must be one of: text, json",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be an http or https URL")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}
