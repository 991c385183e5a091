package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Scrollback != 10000 {
		t.Errorf("Scrollback = %d, want 10000", cfg.Scrollback)
	}
	if cfg.TickInterval.Std() != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", cfg.TickInterval.Std())
	}
	if cfg.GraceTimeout.Std() != 5*time.Second {
		t.Errorf("GraceTimeout = %v, want 5s", cfg.GraceTimeout.Std())
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error for missing file: %v", err)
	}
	if cfg.Scrollback != 10000 {
		t.Errorf("Scrollback = %d, want default", cfg.Scrollback)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "termpane.toml", `
shell = "/bin/bash"
work_dir = "/tmp"
scrollback = 500
tick_interval = "25ms"
grace_timeout = "2s"

[env]
FOO = "bar"

[logging]
level = "DEBUG"
file = "/tmp/termpane.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Shell != "/bin/bash" {
		t.Errorf("Shell = %q", cfg.Shell)
	}
	if cfg.WorkDir != "/tmp" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.Scrollback != 500 {
		t.Errorf("Scrollback = %d, want 500", cfg.Scrollback)
	}
	if cfg.TickInterval.Std() != 25*time.Millisecond {
		t.Errorf("TickInterval = %v, want 25ms", cfg.TickInterval.Std())
	}
	if cfg.GraceTimeout.Std() != 2*time.Second {
		t.Errorf("GraceTimeout = %v, want 2s", cfg.GraceTimeout.Std())
	}
	if cfg.Env["FOO"] != "bar" {
		t.Errorf("Env = %v", cfg.Env)
	}
	if cfg.Logging.Level != "DEBUG" || cfg.Logging.File != "/tmp/termpane.log" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "termpane.yaml", `
shell: /bin/sh
scrollback: 250
tick_interval: 100ms
env:
  A: "1"
logging:
  level: WARN
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Shell != "/bin/sh" {
		t.Errorf("Shell = %q", cfg.Shell)
	}
	if cfg.Scrollback != 250 {
		t.Errorf("Scrollback = %d, want 250", cfg.Scrollback)
	}
	if cfg.TickInterval.Std() != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want 100ms", cfg.TickInterval.Std())
	}
	if cfg.Env["A"] != "1" {
		t.Errorf("Env = %v", cfg.Env)
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeFile(t, "bad.toml", "shell = [not closed")

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() = %v, want *ParseError", err)
	}
	if perr.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "config.json", "{}")

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() = %v, want ErrUnsupportedFormat", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "termpane.toml", `shell = "/bin/bash"`)

	t.Setenv("TERMPANE_SHELL", "/bin/zsh")
	t.Setenv("TERMPANE_WORKDIR", "/var")
	t.Setenv("TERMPANE_SCROLLBACK", "42")
	t.Setenv("TERMPANE_LOG_LEVEL", "ERROR")
	t.Setenv("TERMPANE_LOG_FILE", "/tmp/t.log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Shell != "/bin/zsh" {
		t.Errorf("Shell = %q, want env override", cfg.Shell)
	}
	if cfg.WorkDir != "/var" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.Scrollback != 42 {
		t.Errorf("Scrollback = %d, want 42", cfg.Scrollback)
	}
	if cfg.Logging.Level != "ERROR" || cfg.Logging.File != "/tmp/t.log" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestEnvOverrideIgnoresBadNumber(t *testing.T) {
	t.Setenv("TERMPANE_SCROLLBACK", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Scrollback != 10000 {
		t.Errorf("Scrollback = %d, want default", cfg.Scrollback)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"zero scrollback", func(c *Config) { c.Scrollback = 0 }, true},
		{"negative scrollback", func(c *Config) { c.Scrollback = -1 }, true},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }, true},
		{"zero grace", func(c *Config) { c.GraceTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvSlice(t *testing.T) {
	cfg := Default()
	cfg.Env = map[string]string{"B": "2", "A": "1"}

	got := cfg.EnvSlice()
	want := []string{"A=1", "B=2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EnvSlice() = %v, want %v", got, want)
	}

	cfg.Env = nil
	if cfg.EnvSlice() != nil {
		t.Error("EnvSlice() on empty overlay should be nil")
	}
}
