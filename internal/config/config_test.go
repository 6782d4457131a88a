package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotEnv(t *testing.T) {
	t.Helper()
	orig := loadDotEnv
	loadDotEnv = func(...string) error { return os.ErrNotExist }
	t.Cleanup(func() { loadDotEnv = orig })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "taskdeck.db", filepath.Base(cfg.DBPath))
	assert.Equal(t, "claude", cfg.Remote.Session)
	assert.Equal(t, 22, cfg.Remote.Port)
	assert.Equal(t, "#3498db", cfg.Settings.ScopeColor("frontend"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	noDotEnv(t)
	dir := t.TempDir()
	t.Setenv("TASKDECK_DB", filepath.Join(dir, "t.db"))
	t.Setenv("TASKDECK_ADDR", "127.0.0.1:9000")
	t.Setenv("TASKDECK_API_KEY", "secret")
	t.Setenv("TASKDECK_SETTINGS", filepath.Join(dir, "missing.yaml"))
	t.Setenv("TASKDECK_SSH_HOST", "ryzen")
	t.Setenv("TASKDECK_SSH_PORT", "2222")
	t.Setenv("TASKDECK_SSH_TIMEOUT", "45")
	t.Setenv("TASKDECK_TMUX_SESSION", "work")
	t.Setenv("TASKDECK_LOG_USE_CASES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "t.db"), cfg.DBPath)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "ryzen", cfg.Remote.Host)
	assert.Equal(t, 2222, cfg.Remote.Port)
	assert.Equal(t, 45*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "work", cfg.Remote.Session)
	assert.True(t, cfg.LogUseCases)
}

func TestLoad_IgnoresInvalidNumbers(t *testing.T) {
	noDotEnv(t)
	t.Setenv("TASKDECK_SETTINGS", "")
	t.Setenv("TASKDECK_SSH_PORT", "99999")
	t.Setenv("TASKDECK_SSH_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 22, cfg.Remote.Port)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
}

func TestParseTimeout(t *testing.T) {
	d, ok := parseTimeout("1m30s")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	_, ok = parseTimeout("-5")
	assert.False(t, ok)
}

func TestLoadSettings_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
directory_presets:
  - name: Shop
    path: /var/www/shop
screenshot_dirs:
  - /srv/shots
scope_colors:
  backend: "#000000"
`), 0o600))

	defaults := DefaultSettings("/home/x/.taskdeck")
	s, err := LoadSettings(path, defaults)
	require.NoError(t, err)
	assert.Equal(t, []DirectoryPreset{{Name: "Shop", Path: "/var/www/shop"}}, s.DirectoryPresets)
	assert.Equal(t, []string{"/srv/shots"}, s.ScreenshotDirs)
	assert.Equal(t, "#000000", s.ScopeColor("backend"))
	assert.Equal(t, "#3498db", s.ScopeColor("frontend"))
	assert.Equal(t, "#7f8c8d", s.ScopeColor("unknown"))
	assert.Equal(t, "#2ecc71", defaults.ScopeColors["backend"], "defaults must not be modified")
}

func TestLoadSettings_MissingFileKeepsDefaults(t *testing.T) {
	defaults := DefaultSettings("/root")
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"), defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults.ScreenshotDirs, s.ScreenshotDirs)
}

func TestLoadSettings_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scope_colors: [unclosed"), 0o600))
	_, err := LoadSettings(path, DefaultSettings("/root"))
	assert.Error(t, err)
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	in := Settings{
		DirectoryPresets: []DirectoryPreset{{Name: "API", Path: "/srv/api"}},
		ScreenshotDirs:   []string{"/tmp/shots"},
		ScopeColors:      map[string]string{"seo": "#111111"},
	}
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path, Settings{})
	require.NoError(t, err)
	assert.Equal(t, in.DirectoryPresets, out.DirectoryPresets)
	assert.Equal(t, in.ScreenshotDirs, out.ScreenshotDirs)
	assert.Equal(t, "#111111", out.ScopeColor("seo"))
}
