// Package config loads taskdeck settings from the environment, an optional
// .env file and an optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexanderramin/taskdeck/internal/remote"
	"github.com/joho/godotenv"
)

const envPrefix = "TASKDECK_"

// Config holds process-wide settings.
type Config struct {
	DBPath            string
	ListenAddr        string
	APIKey            string
	DefaultWorkingDir string
	AttachmentDir     string
	SettingsPath      string
	LogLevel          string
	LogUseCases       bool
	Remote            remote.Config
	Settings          Settings
}

// DefaultConfig returns a Config rooted at ~/.taskdeck. Remote control
// targets the local host until configured.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	root := filepath.Join(home, ".taskdeck")
	return Config{
		DBPath:        filepath.Join(root, "taskdeck.db"),
		ListenAddr:    ":8080",
		AttachmentDir: filepath.Join(root, "attachments"),
		SettingsPath:  filepath.Join(root, "settings.yaml"),
		LogLevel:      "info",
		Remote:        remote.DefaultConfig(),
		Settings:      DefaultSettings(root),
	}
}

// loadDotEnv is swapped out by tests.
var loadDotEnv = godotenv.Load

// Load reads .env (if present), then TASKDECK_* variables, then the settings
// file they point at. Variables already set in the process win over .env.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := DefaultConfig()
	applyEnv(&cfg)

	settings, err := LoadSettings(cfg.SettingsPath, cfg.Settings)
	if err != nil {
		return Config{}, err
	}
	cfg.Settings = settings
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.DBPath, "DB")
	setString(&cfg.ListenAddr, "ADDR")
	setString(&cfg.APIKey, "API_KEY")
	setString(&cfg.DefaultWorkingDir, "WORKING_DIR")
	setString(&cfg.AttachmentDir, "ATTACHMENT_DIR")
	setString(&cfg.SettingsPath, "SETTINGS")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if v := env("LOG_USE_CASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}

	setString(&cfg.Remote.Host, "SSH_HOST")
	setString(&cfg.Remote.User, "SSH_USER")
	setString(&cfg.Remote.KeyPath, "SSH_KEY")
	setString(&cfg.Remote.KnownHostsPath, "SSH_KNOWN_HOSTS")
	setString(&cfg.Remote.Session, "TMUX_SESSION")
	if v := env("SSH_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Remote.Port = n
		}
	}
	if v := env("SSH_TIMEOUT"); v != "" {
		if d, ok := parseTimeout(v); ok {
			cfg.Remote.Timeout = d
		}
	}
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

func env(key string) string {
	return os.Getenv(envPrefix + key)
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}
