// Package config loads runtime configuration for the mindvault CLI.
//
// Sources and precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   database path
//	-l string   log level
//	-b string   biometric sensor kind
//	-t int      lock timeout (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "90s" or integer
// nanoseconds:
//
//	{
//	  "db_path": "data/mindvault.db",
//	  "log_level": "info",
//	  "biometric": "fingerprint",
//	  "lock_timeout": "2m"
//	}
package config
