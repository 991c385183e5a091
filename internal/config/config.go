// Package config loads terminal panel configuration from TOML or YAML
// files, applies TERMPANE_* environment overrides, and supports live
// reload through a filesystem watcher.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can use "250ms" / "5s"
// notation in both TOML and YAML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler (used by TOML).
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Logging configures the log sink shared by all sessions.
type Logging struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// Config holds every setting the terminal panel engine accepts.
type Config struct {
	// Shell is the shell executable; empty selects the platform default.
	Shell string `toml:"shell" yaml:"shell"`

	// WorkDir is the initial working directory; empty means inherit.
	WorkDir string `toml:"work_dir" yaml:"work_dir"`

	// Env is an environment overlay applied to the shell.
	Env map[string]string `toml:"env" yaml:"env"`

	// Scrollback is the transcript line limit per session.
	Scrollback int `toml:"scrollback" yaml:"scrollback"`

	// TickInterval is how often a standalone host polls sessions.
	TickInterval Duration `toml:"tick_interval" yaml:"tick_interval"`

	// GraceTimeout bounds graceful shell termination.
	GraceTimeout Duration `toml:"grace_timeout" yaml:"grace_timeout"`

	Logging Logging `toml:"logging" yaml:"logging"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Env:          map[string]string{},
		Scrollback:   10000,
		TickInterval: Duration(50 * time.Millisecond),
		GraceTimeout: Duration(5 * time.Second),
		Logging:      Logging{Level: "INFO"},
	}
}

// Load reads configuration from path, chosen by extension (.toml, .yaml,
// .yml), applies environment overrides, and validates the result. An
// empty or missing path yields the defaults with overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Absent config file is not an error; defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

// applyEnv overrides settings from TERMPANE_* environment variables.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("TERMPANE_SHELL"); ok {
		cfg.Shell = v
	}
	if v, ok := os.LookupEnv("TERMPANE_WORKDIR"); ok {
		cfg.WorkDir = v
	}
	if v, ok := os.LookupEnv("TERMPANE_SCROLLBACK"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scrollback = n
		}
	}
	if v, ok := os.LookupEnv("TERMPANE_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("TERMPANE_LOG_FILE"); ok {
		cfg.Logging.File = v
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.Scrollback <= 0 {
		return fmt.Errorf("scrollback must be positive, got %d", c.Scrollback)
	}
	if c.TickInterval.Std() <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", c.TickInterval.Std())
	}
	if c.GraceTimeout.Std() <= 0 {
		return fmt.Errorf("grace_timeout must be positive, got %v", c.GraceTimeout.Std())
	}
	return nil
}

// EnvSlice returns the environment overlay as sorted KEY=VALUE entries.
func (c Config) EnvSlice() []string {
	if len(c.Env) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
