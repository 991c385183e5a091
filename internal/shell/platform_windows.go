//go:build windows

package shell

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type windowsPlatform struct{}

func newPlatform() Platform {
	return windowsPlatform{}
}

func (windowsPlatform) Name() string {
	return "windows"
}

func (p windowsPlatform) DefaultShellPath() string {
	if comspec := os.Getenv("COMSPEC"); comspec != "" {
		if err := p.Validate(comspec); err == nil {
			return comspec
		}
	}
	if path, err := exec.LookPath("powershell.exe"); err == nil {
		return path
	}
	if path, err := exec.LookPath("cmd.exe"); err == nil {
		return path
	}
	return `C:\Windows\System32\cmd.exe`
}

func (p windowsPlatform) AvailableShells() []string {
	var shells []string
	seen := make(map[string]bool)

	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		if err := p.Validate(path); err == nil {
			shells = append(shells, path)
			seen[path] = true
		}
	}

	add(os.Getenv("COMSPEC"))
	for _, name := range []string{"pwsh.exe", "powershell.exe", "cmd.exe"} {
		if path, err := exec.LookPath(name); err == nil {
			add(path)
		}
	}
	return shells
}

func (windowsPlatform) Validate(path string) error {
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
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exe", ".bat", ".cmd", ".com":
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotExecutable, path)
}

func (windowsPlatform) CurrentDirCommand() string {
	return "cd"
}
