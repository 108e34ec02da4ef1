package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Empty(t, cfg.NotificationIcon, "the notifier falls back to its own icon")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "db_path")
	assert.Contains(t, string(data), ":memory:")

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreateOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
notifications = "granted"
agenda_path = "agenda.toml"

[reminder]
threshold = "10m"

[keys]
add = "n"
`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, "granted", cfg.Notifications)
	assert.Equal(t, "agenda.toml", cfg.AgendaPath)
	assert.Equal(t, "n", cfg.Keys.Add)
	assert.Equal(t, "q", cfg.Keys.Quit, "unset keys keep their default")

	tm, err := cfg.Reminder.Timings()
	require.NoError(t, err)
	assert.Equal(t, Timings{
		Threshold:      10 * time.Minute,
		CheckInterval:  30 * time.Second,
		BannerDuration: 5 * time.Second,
	}, tm)
}

func TestLoadOrCreateRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[reminder]\ncheck_interval = \"-1s\"\n"), 0o644))

	_, err := LoadOrCreate(path)
	assert.ErrorContains(t, err, "reminder.check_interval")
}

func TestTimingsEmptyUsesDefaults(t *testing.T) {
	tm, err := ReminderConfig{}.Timings()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, tm.Threshold)
	assert.Equal(t, 30*time.Second, tm.CheckInterval)
	assert.Equal(t, 5*time.Second, tm.BannerDuration)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))

	t.Setenv(configEnv, "/tmp/from-env.toml")
	assert.Equal(t, "/tmp/from-env.toml", ResolveConfigPath(""))

	t.Setenv(configEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if dir, err := os.UserConfigDir(); err == nil {
		assert.Equal(t, filepath.Join(dir, "chime", "config.toml"), ResolveConfigPath(""))
	}
}
