package config

import "github.com/RevCBH/planrate/internal/plan"

const (
	DefaultServiceURL  = "http://localhost:8000"
	DefaultTimeout     = "120s"
	DefaultAddr        = ":8000"
	DefaultArchivePath = ".planrate/datasets.db"
	DefaultModel       = "pddl-planner"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			GenerateURL: DefaultServiceURL,
			SubmitURL:   DefaultServiceURL,
			Timeout:     DefaultTimeout,
		},
		Generation: GenerationConfig{
			Temperature: plan.DefaultTemperature,
			MaxTokens:   plan.DefaultMaxTokens,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			ArchivePath:    DefaultArchivePath,
			Model:          DefaultModel,
			AllowedOrigins: []string{"*"},
		},
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}
