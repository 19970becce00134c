package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name:     "all flags",
			args:     []string{"-d", "/tmp/x.db", "-l", "debug", "-b", "face", "-t", "90"},
			expected: &Config{
				DBPath: "/tmp/x.db", LogLevel: "debug", BiometricKind: "face", LockTimeout: 90 * time.Second,
			},
		},
		{
			name:     "unknown flags ignored",
			args:     []string{"-c", "conf.json", "-x", "1", "-d", "a.db"},
			expected: &Config{
				DBPath: "a.db", LogLevel: "warn", BiometricKind: "none",
			},
		},
		{name: "bad timeout", args: []string{"-t", "abc"}, wantErr: true},
		{name: "negative timeout", args: []string{"-t=-5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
