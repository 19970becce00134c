package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mindvault/internal/flagx"
	"github.com/dmitrijs2005/mindvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Fields left
// out of the file keep the value they had before.
type JsonConfig struct {
	DBPath        *string         `json:"db_path"`
	LogLevel      *string         `json:"log_level"`
	BiometricKind *string         `json:"biometric"`
	LockTimeout   *timex.Duration `json:"lock_timeout"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. Without
// either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.DBPath != nil {
		cfg.DBPath = *jc.DBPath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.BiometricKind != nil {
		cfg.BiometricKind = *jc.BiometricKind
	}
	if jc.LockTimeout != nil {
		cfg.LockTimeout = jc.LockTimeout.Duration
	}
	return nil
}
