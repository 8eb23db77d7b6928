package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp moves the test into a fresh directory with no config files in
// reach and returns that directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tempDir, "home"))
	return tempDir
}

func TestGetConfigPath_ReturnsLocalConfig_When_FileExists(t *testing.T) {
	tempDir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(tempDir, FileName), []byte("command: make test\n"), 0o600); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}

	if got := getConfigPath(); got != FileName {
		t.Fatalf("expected local config path, got %q", got)
	}
}

func TestGetConfigPath_UsesXDGPath_When_LocalMissing(t *testing.T) {
	tempDir := chdirTemp(t)
	configHome := filepath.Join(tempDir, "xdg", "tdash")
	if err := os.MkdirAll(configHome, 0o755); err != nil {
		t.Fatalf("failed to create XDG config directory: %v", err)
	}
	configPath := filepath.Join(configHome, FileName)
	if err := os.WriteFile(configPath, []byte("log_level: info\n"), 0o600); err != nil {
		t.Fatalf("failed to write XDG config: %v", err)
	}

	if got := getConfigPath(); got != configPath {
		t.Fatalf("expected XDG config path %q, got %q", configPath, got)
	}
}

func TestGetConfigPath_ReturnsEmpty_When_NoConfigAvailable(t *testing.T) {
	chdirTemp(t)
	if got := getConfigPath(); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
}

func TestLoad_ReturnsDefaults_When_NoFile(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Command != DefaultCommand {
		t.Errorf("Command = %q, want %q", cfg.Command, DefaultCommand)
	}
	if len(cfg.Watch) != len(DefaultWatch) {
		t.Errorf("Watch = %v, want %v", cfg.Watch, DefaultWatch)
	}
	if cfg.Path() != "" {
		t.Errorf("Path = %q, want empty", cfg.Path())
	}
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	tempDir := chdirTemp(t)
	body := "command: go test -json ./pkg/...\nwatch:\n  - \"pkg/**/*.go\"\ndebounce: 1s\nno_color: true\nbar_width: 60\n"
	if err := os.WriteFile(filepath.Join(tempDir, FileName), []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Command != "go test -json ./pkg/..." {
		t.Errorf("Command = %q", cfg.Command)
	}
	if len(cfg.Watch) != 1 || cfg.Watch[0] != "pkg/**/*.go" {
		t.Errorf("Watch = %v", cfg.Watch)
	}
	if cfg.Debounce != "1s" || !cfg.NoColor || cfg.BarWidth != 60 {
		t.Errorf("unexpected merge result: %+v", cfg)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want default", cfg.LogLevel)
	}
	if cfg.Path() != FileName {
		t.Errorf("Path = %q", cfg.Path())
	}
}

func TestLoad_RejectsInvalidYAML(t *testing.T) {
	tempDir := chdirTemp(t)
	path := filepath.Join(tempDir, "bad.yaml")
	if err := os.WriteFile(path, []byte("watch: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_RejectsInvalidDebounce(t *testing.T) {
	tempDir := chdirTemp(t)
	path := filepath.Join(tempDir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("debounce: soon\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected debounce error")
	}
}

func TestLoad_ExplicitMissingFile_IsError(t *testing.T) {
	tempDir := chdirTemp(t)
	if _, err := Load(filepath.Join(tempDir, "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestDefaults_DebounceParses(t *testing.T) {
	d, err := time.ParseDuration(Defaults().Debounce)
	if err != nil || d != DefaultDebounce {
		t.Fatalf("default debounce %q does not round-trip: %v", Defaults().Debounce, err)
	}
}
