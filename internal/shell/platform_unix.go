//go:build !windows

package shell

import (
	"fmt"
	"os"
)

// unixShellCandidates are probed in order when $SHELL is unset or invalid.
var unixShellCandidates = []string{"/bin/zsh", "/bin/bash", "/bin/sh"}

type unixPlatform struct{}

func newPlatform() Platform {
	return unixPlatform{}
}

func (unixPlatform) Name() string {
	return "unix"
}

func (p unixPlatform) DefaultShellPath() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		if err := p.Validate(sh); err == nil {
			return sh
		}
	}
	for _, candidate := range unixShellCandidates {
		if err := p.Validate(candidate); err == nil {
			return candidate
		}
	}
	return "/bin/sh"
}

func (p unixPlatform) AvailableShells() []string {
	var shells []string
	seen := make(map[string]bool)

	if sh := os.Getenv("SHELL"); sh != "" && p.Validate(sh) == nil {
		shells = append(shells, sh)
		seen[sh] = true
	}
	for _, candidate := range unixShellCandidates {
		if seen[candidate] {
			continue
		}
		if err := p.Validate(candidate); err == nil {
			shells = append(shells, candidate)
		}
	}
	return shells
}

func (unixPlatform) Validate(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrShellNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrShellNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotExecutable, path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrNotExecutable, path)
	}
	return nil
}

func (unixPlatform) CurrentDirCommand() string {
	return "pwd"
}
