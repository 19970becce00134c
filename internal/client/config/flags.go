package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   database path
//	-l string   log level
//	-b string   biometric sensor kind
//	-t int      lock timeout in seconds
//
// Only these flags are looked at; see flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-l", "-b", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.BiometricKind, "b", cfg.BiometricKind, "biometric sensor kind (none, fingerprint, face, iris)")
	timeout := fs.Int("t", int(cfg.LockTimeout.Seconds()), "lock timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *timeout < 0 {
		return fmt.Errorf("parse flags: negative lock timeout %d", *timeout)
	}

	cfg.LockTimeout = time.Duration(*timeout) * time.Second
	return nil
}
