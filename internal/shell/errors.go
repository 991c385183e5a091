package shell

import "errors"

// Sentinel errors for the shell package.
var (
	// ErrShellNotFound is returned when the shell executable does not exist.
	ErrShellNotFound = errors.New("shell not found")

	// ErrNotExecutable is returned when the shell path is not an executable file.
	ErrNotExecutable = errors.New("shell is not executable")

	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("process already started")

	// ErrNotRunning is returned by I/O operations when the process is not running.
	ErrNotRunning = errors.New("process not running")
)
