package config

import "time"

// Config holds runtime settings for eventctl.
//
// Fields:
//   - ServerURL: base URL of the eventdrop server, e.g. "http://127.0.0.1:8080".
//   - AdminPassword: value sent in the x-admin-pass header. Empty means prompt.
//   - MaxFileSize: per-file cap checked before an upload is sent ("50MiB").
//   - Timeout: overall timeout of one request.
type Config struct {
	ServerURL     string
	AdminPassword string
	MaxFileSize   string
	Timeout       time.Duration
}

// LoadDefaults populates c with defaults matching a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.AdminPassword = ""
	c.MaxFileSize = "50MiB"
	c.Timeout = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
