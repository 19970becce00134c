package config

import (
	"time"
)

// Config holds runtime settings for the mindvault CLI.
//
// Fields:
//   - DBPath: location of the local SQLite database.
//   - LogLevel: debug, info, warn or error.
//   - BiometricKind: sensor the device offers (none, fingerprint, face, iris).
//   - LockTimeout: idle timeout to persist at startup; zero keeps the stored one.
type Config struct {
	DBPath        string
	LogLevel      string
	BiometricKind string
	LockTimeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "data/mindvault.db"
	c.LogLevel = "warn"
	c.BiometricKind = "none"
	c.LockTimeout = 0
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if -c/-config is present in args) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
