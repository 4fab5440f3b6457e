package config

import "time"

// Config holds runtime settings for the JayCloud terminal client.
//
// Fields:
//   - APIBaseURL: base URL of the JayCloud backend.
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabaseDSN: path of the local metadata database holding the
//     renewal credential.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DatabaseDSN    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.DatabaseDSN = "jaycloud.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
