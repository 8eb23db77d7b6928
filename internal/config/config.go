package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and in
// the user config directory.
const FileName = ".tdash.yaml"

// Constants for default values.
const (
	DefaultCommand  = "go test -json ./..."
	DefaultDebounce = 300 * time.Millisecond
	DefaultLogLevel = "warn"
)

// DefaultWatch is watched when neither flags nor the file name any patterns.
var DefaultWatch = []string{"**/*.go", "go.mod"}

// AppConfig represents the application's configuration from .tdash.yaml.
type AppConfig struct {
	Command  string   `yaml:"command,omitempty"`
	Watch    []string `yaml:"watch,omitempty"`
	Debounce string   `yaml:"debounce,omitempty"` // time.ParseDuration syntax
	LogLevel string   `yaml:"log_level,omitempty"`
	NoColor  bool     `yaml:"no_color"`
	BarWidth int      `yaml:"bar_width,omitempty"`

	path string // file the values came from; empty for defaults
}

// Path returns the file the configuration was loaded from, if any.
func (c *AppConfig) Path() string {
	return c.path
}

// Defaults returns the hardcoded configuration.
func Defaults() *AppConfig {
	return &AppConfig{
		Command:  DefaultCommand,
		Watch:    append([]string(nil), DefaultWatch...),
		Debounce: DefaultDebounce.String(),
		LogLevel: DefaultLogLevel,
	}
}

// Load reads the config file at path, or searches for one when path is
// empty. A missing file yields the defaults; an unreadable or invalid
// file is an error.
func Load(path string) (*AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		path = getConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fromFile AppConfig
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if fromFile.Debounce != "" {
		if _, err := time.ParseDuration(fromFile.Debounce); err != nil {
			return nil, fmt.Errorf("config file %s: invalid debounce %q: %w", path, fromFile.Debounce, err)
		}
	}

	merge(cfg, &fromFile)
	cfg.path = path
	return cfg, nil
}

// merge copies the values set in the file onto the defaults.
func merge(dst, src *AppConfig) {
	if src.Command != "" {
		dst.Command = src.Command
	}
	if len(src.Watch) > 0 {
		dst.Watch = src.Watch
	}
	if src.Debounce != "" {
		dst.Debounce = src.Debounce
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	dst.NoColor = src.NoColor
	if src.BarWidth > 0 {
		dst.BarWidth = src.BarWidth
	}
}

// getConfigPath tries to find the .tdash.yaml configuration file.
// It checks the local directory first, then the XDG user config directory.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	// An empty or root config dir is not suitable for XDG path construction.
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "tdash", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
