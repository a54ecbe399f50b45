package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
name = "testgate"
tick_rate = "100ms"

[database]
enabled = true
conn_max_lifetime = "5m"

[collision]
thread_count = 8
movement_threshold = 2.0

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testgate", cfg.Server.Name)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.TickRate.Duration)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime.Duration)
	assert.Equal(t, 8, cfg.Collision.ThreadCount)
	assert.Equal(t, 2.0, cfg.Collision.MovementThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NotZero(t, cfg.Server.StartTime)

	// Untouched sections keep their defaults.
	assert.Equal(t, 100, cfg.Collision.ThreadingThreshold)
	assert.Equal(t, 128.0, cfg.Collision.StaticCoarseCell)
	assert.Equal(t, "scripts", cfg.Scripting.Dir)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "riftgate", cfg.Server.Name)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate.Duration)
	assert.False(t, cfg.Database.Enabled)
	assert.True(t, cfg.Collision.ThreadingEnabled)
	assert.Equal(t, 8192.0, cfg.Collision.WorldMaxX)
}

func TestLoadBadDurationFails(t *testing.T) {
	_, err := Load(writeConfig(t, `
[server]
tick_rate = "fast"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
