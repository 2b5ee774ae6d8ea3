package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, Validate(cfg))
	assert.Equal(t, "en", cfg.Properties.Locale)
	assert.Equal(t, "/var/luna/preferences/ran-first-use", cfg.Resources.FirstUseMarker)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palmhost.yaml")
	content := `
log_level: debug
app:
  info: apps/com.example.hello/appinfo.json
  activity_id: 42
properties:
  locale: fr
  time_format: HH24
resources:
  cache_entries: 8
  progress_interval: 250ms
services:
  preferences:
    wallpaper: stars.png
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "apps/com.example.hello/appinfo.json", cfg.App.InfoPath)
	assert.Equal(t, 42, cfg.App.ActivityID)
	assert.Equal(t, "{}", cfg.App.Parameters, "unset keys keep defaults")
	assert.Equal(t, "fr", cfg.Properties.Locale)
	assert.Equal(t, "HH24", cfg.Properties.TimeFormat)
	assert.Equal(t, 8, cfg.Resources.CacheEntries)
	assert.Equal(t, 250*time.Millisecond, cfg.Resources.ProgressInterval)
	assert.Equal(t, "stars.png", cfg.Services.Preferences["wallpaper"])
	assert.NoError(t, Validate(cfg))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PALMHOST_LOCALE", "de")
	t.Setenv("PALMHOST_ACTIVITY_ID", "9")
	t.Setenv("PALMHOST_RESOURCES_RESTRICT", "true")
	t.Setenv("PALMHOST_CALL_TIMEOUT", "5s")
	t.Setenv("PALMHOST_USER_AGENT", "Mozilla/5.0 (webOS/2.2.4; U; en-US)")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)
	assert.Equal(t, "de", cfg.Properties.Locale)
	assert.Equal(t, 9, cfg.App.ActivityID)
	assert.True(t, cfg.Resources.Restrict)
	assert.Equal(t, 5*time.Second, cfg.Services.CallTimeout)
	assert.Equal(t, "Mozilla/5.0 (webOS/2.2.4; U; en-US)", cfg.Properties.UserAgent)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Properties.TimeFormat = "HH13"
	cfg.Resources.CacheEntries = 0

	err := Validate(cfg)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 3)
	assert.Contains(t, err.Error(), "log_level")
}
