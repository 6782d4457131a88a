package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DirectoryPreset is a named working directory offered when creating todos.
type DirectoryPreset struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Settings is the operator-editable part of the configuration.
type Settings struct {
	DirectoryPresets []DirectoryPreset `yaml:"directory_presets"`
	ScreenshotDirs   []string          `yaml:"screenshot_dirs"`
	ScopeColors      map[string]string `yaml:"scope_colors"`
}

func DefaultSettings(root string) Settings {
	return Settings{
		ScreenshotDirs: []string{filepath.Join(root, "screenshots")},
		ScopeColors: map[string]string{
			"frontend":  "#3498db",
			"backend":   "#2ecc71",
			"database":  "#e74c3c",
			"n8n":       "#f39c12",
			"mt5":       "#9b59b6",
			"server":    "#34495e",
			"content":   "#16a085",
			"seo":       "#e67e22",
			"analytics": "#95a5a6",
			"other":     "#7f8c8d",
		},
	}
}

// LoadSettings overlays the YAML file at path onto defaults. A missing file
// leaves the defaults untouched. Colours merge by scope; lists replace.
func LoadSettings(path string, defaults Settings) (Settings, error) {
	out := defaults
	out.ScopeColors = make(map[string]string, len(defaults.ScopeColors))
	for k, v := range defaults.ScopeColors {
		out.ScopeColors[k] = v
	}
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Settings{}, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if file.DirectoryPresets != nil {
		out.DirectoryPresets = file.DirectoryPresets
	}
	if file.ScreenshotDirs != nil {
		out.ScreenshotDirs = file.ScreenshotDirs
	}
	for k, v := range file.ScopeColors {
		out.ScopeColors[k] = v
	}
	return out, nil
}

// SaveSettings writes s as YAML, creating the parent directory.
func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ScopeColor returns the colour for scope, falling back to "other".
func (s Settings) ScopeColor(scope string) string {
	if c, ok := s.ScopeColors[scope]; ok {
		return c
	}
	return s.ScopeColors["other"]
}
