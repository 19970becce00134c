package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{DBPath: "data/mindvault.db", LogLevel: "warn", BiometricKind: "none"}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"db_path":      "/from/json.db",
		"log_level":    "debug",
		"lock_timeout": "2m",
	})

	cfg, err := LoadConfig([]string{"-c", path, "-l", "error"})
	require.NoError(t, err)

	want := &Config{
		DBPath:        "/from/json.db",
		LogLevel:      "error",
		BiometricKind: "none",
		LockTimeout:   2 * time.Minute,
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig([]string{"-config", "/definitely/not/here.json"})
	require.ErrorContains(t, err, "read config")
}
