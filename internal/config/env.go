package config

import "os"

// envOverrides maps environment variables to config field setters.
// Later entries win, so the specific service URLs override PLANRATE_API_URL.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "PLANRATE_API_URL",
		apply: func(c *Config, v string) {
			c.Service.GenerateURL = v
			c.Service.SubmitURL = v
		},
	},
	{
		envVar: "PLANRATE_GENERATE_URL",
		apply: func(c *Config, v string) {
			c.Service.GenerateURL = v
		},
	},
	{
		envVar: "PLANRATE_SUBMIT_URL",
		apply: func(c *Config, v string) {
			c.Service.SubmitURL = v
		},
	},
	{
		envVar: "PLANRATE_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
	{
		envVar: "PORT",
		apply: func(c *Config, v string) {
			c.Server.Addr = ":" + v
		},
	},
	{
		envVar: "PLANRATE_ADDR",
		apply: func(c *Config, v string) {
			c.Server.Addr = v
		},
	},
	{
		envVar: "PLANRATE_ARCHIVE",
		apply: func(c *Config, v string) {
			c.Server.ArchivePath = v
		},
	},
	{
		envVar: "PLANRATE_UPSTREAM_URL",
		apply: func(c *Config, v string) {
			c.Server.UpstreamGenerateURL = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
