package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for the config package.
var (
	// ErrUnsupportedFormat is returned for config files whose extension
	// is neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// ParseError describes a config file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
