package shell

// Platform abstracts the shell conventions that differ between operating
// systems: which shell to run by default, how to validate a shell
// executable, and the command used to query the current directory in
// tests.
type Platform interface {
	// Name returns the platform name ("unix" or "windows").
	Name() string

	// DefaultShellPath returns the shell to use when none is configured.
	DefaultShellPath() string

	// AvailableShells returns the shells found on this system, most
	// preferred first.
	AvailableShells() []string

	// Validate reports whether path resolves to an existing executable
	// suitable as a shell. The returned error names the offending path.
	Validate(path string) error

	// CurrentDirCommand returns the shell command that prints the
	// working directory.
	CurrentDirCommand() string
}

// CurrentPlatform returns the Platform implementation for this OS.
func CurrentPlatform() Platform {
	return newPlatform()
}
