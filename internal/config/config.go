package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the working
// directory.
const FileName = ".planrate.yaml"

// Config holds all configuration for planrate.
// It is immutable after creation via LoadConfig().
type Config struct {
	// Service locates the generation and submission services
	Service ServiceConfig `yaml:"service"`

	// Generation holds the sampling settings sent with generate requests
	Generation GenerationConfig `yaml:"generation"`

	// Server configures `planrate serve`
	Server ServerConfig `yaml:"server"`

	// LogLevel controls log verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log handler (text, json)
	LogFormat string `yaml:"log_format"`
}

// ServiceConfig identifies the remote services. Generation and submission
// may be served from different hosts.
type ServiceConfig struct {
	// GenerateURL is the base URL of the generation service
	GenerateURL string `yaml:"generate_url"`

	// SubmitURL is the base URL of the submission service
	SubmitURL string `yaml:"submit_url"`

	// Timeout bounds a single request
	Timeout string `yaml:"timeout"`
}

// GenerationConfig holds sampling settings.
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// ServerConfig controls the reference submission service.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8000")
	Addr string `yaml:"addr"`

	// ArchivePath is the SQLite file datasets are stored in.
	// Relative paths are resolved from the config directory.
	ArchivePath string `yaml:"archive_path"`

	// Model is recorded in model_metadata when the plan metadata names none
	Model string `yaml:"model"`

	// UpstreamGenerateURL is the generation service generate requests are
	// forwarded to. Empty disables generation on this server.
	UpstreamGenerateURL string `yaml:"upstream_generate_url"`

	// AllowedOrigins lists CORS origins; "*" allows any
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TimeoutDuration parses the service timeout as a Duration.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Service.Timeout)
}

// LoadConfig loads configuration for the given directory.
// It applies defaults, then the user config, then the project file (or
// explicitPath when set), then environment overrides, then validates.
//
// Parameters:
//   - dir: directory searched for .planrate.yaml
//   - explicitPath: a config file that must exist; empty to search dir
//
// Returns the validated Config or an error if validation fails.
func LoadConfig(dir, explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	userPath, err := UserConfigPath()
	if err == nil {
		if err := mergeFile(cfg, userPath, false); err != nil {
			return nil, err
		}
	}

	configPath := filepath.Join(dir, FileName)
	required := false
	if explicitPath != "" {
		configPath = explicitPath
		required = true
	}
	if err := mergeFile(cfg, configPath, required); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Resolve relative paths
	if cfg.Server.ArchivePath != "" && !filepath.IsAbs(cfg.Server.ArchivePath) {
		base := dir
		if explicitPath != "" {
			base = filepath.Dir(explicitPath)
		}
		cfg.Server.ArchivePath = filepath.Join(base, cfg.Server.ArchivePath)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// mergeFile unmarshals a YAML file over cfg. A missing file is only an
// error when required.
func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
