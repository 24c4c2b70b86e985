package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PREPPILOT_JWT_SECRET", "testsecret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./dist", cfg.Server.StaticDir)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, 24, cfg.Auth.SessionHours)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLen)
	assert.Equal(t, 25, cfg.Pomodoro.FocusMinutes)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, time.Second, cfg.Auth.LoginDelay())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090
static_dir = "/srv/dist"

[auth]
jwt_secret = "filesecret"
session_hours = 48
login_delay_ms = 250

[pomodoro]
focus_minutes = 50
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/dist", cfg.Server.StaticDir)
	assert.Equal(t, "filesecret", cfg.Auth.JWTSecret)
	assert.Equal(t, 48, cfg.Auth.SessionHours)
	assert.Equal(t, 250*time.Millisecond, cfg.Auth.LoginDelay())
	assert.Equal(t, 50, cfg.Pomodoro.FocusMinutes)
	// Unset sections keep their defaults.
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, 5, cfg.Pomodoro.ShortBreakMinutes)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[auth]
jwt_secret = "filesecret"
`), 0644))

	t.Setenv("PREPPILOT_PORT", "7070")
	t.Setenv("PREPPILOT_JWT_SECRET", "envsecret")
	t.Setenv("PREPPILOT_DATA_DIR", "/var/lib/preppilot")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "envsecret", cfg.Auth.JWTSecret)
	assert.Equal(t, "/var/lib/preppilot", cfg.Storage.DataDir)
}

func TestMissingSecretFails(t *testing.T) {
	t.Setenv("PREPPILOT_JWT_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
