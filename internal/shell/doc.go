// Package shell manages one interactive shell subprocess per Process.
//
// A Process owns the OS-level handles for a single shell: its PID, stdin
// pipe, and merged stdout/stderr stream. The lifecycle is strictly
// NotStarted -> Running -> Terminated; a Process is never restarted.
// Construct a new one for a new session.
//
// # Non-blocking I/O
//
// OS pipes block on read, so each Process pumps its output pipes into an
// internal buffer from background goroutines. Every exported read
// (ReadOutput, DrainOutput, HasOutput) returns immediately with whatever
// is buffered, which keeps a host render loop safe to poll every frame.
//
// # Platform selection
//
// Shell discovery and executable validation differ per platform and are
// factored behind the Platform interface, selected at construction:
//
//	proc := shell.NewProcess(shell.Options{})
//	if err := proc.Start(); err != nil {
//	    // bad shell path: fatal for this session, no retry
//	}
//	defer proc.Cleanup()
//
//	proc.WriteCommand("echo hello")
//	out := proc.DrainOutput() // never blocks
//
// # Termination
//
// Terminate requests a graceful shutdown and escalates to a kill after a
// bounded grace period. It is idempotent and converges with natural
// process exit: one terminal state, one exit code, one resource release.
package shell
