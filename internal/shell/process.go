package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State represents the lifecycle state of a Process.
type State int32

const (
	// StateNotStarted indicates the process has been constructed but not started.
	StateNotStarted State = iota
	// StateRunning indicates the OS process is running.
	StateRunning
	// StateTerminated is the terminal state; a Process is never reused.
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// DefaultGraceTimeout bounds how long Terminate waits for a graceful exit
// before escalating to a kill.
const DefaultGraceTimeout = 5 * time.Second

// readChunk bounds how much ReadOutput returns per call.
const readChunk = 4096

// Options configures a new Process.
type Options struct {
	// Shell is the shell executable path. Empty means the platform default.
	Shell string

	// Args are additional arguments passed to the shell.
	Args []string

	// WorkDir is the working directory. Empty means the current directory.
	WorkDir string

	// Env is an environment overlay in KEY=VALUE form. Later entries and
	// entries matching inherited keys win.
	Env []string

	// GraceTimeout bounds graceful termination. Zero means
	// DefaultGraceTimeout.
	GraceTimeout time.Duration

	// Platform overrides platform detection; nil selects the host platform.
	Platform Platform
}

// Process owns one shell subprocess: its lifecycle, stdin pipe, and
// merged stdout/stderr stream.
//
// All exported methods are safe for concurrent use, and no read or write
// blocks on the child process.
type Process struct {
	platform Platform
	opts     Options

	mu        sync.Mutex // guards start/terminate transitions and cmd wiring
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	shellPath string
	pid       int
	started   time.Time

	outMu  sync.Mutex
	outBuf bytes.Buffer

	state      atomic.Int32
	exitCode   atomic.Int32
	endedNano  atomic.Int64
	lastOutput atomic.Int64

	pumps     sync.WaitGroup
	done      chan struct{}
	closeDone sync.Once
	release   sync.Once
}

// NewProcess creates a process in the NotStarted state. Nothing is
// spawned until Start.
func NewProcess(opts Options) *Process {
	if opts.GraceTimeout <= 0 {
		opts.GraceTimeout = DefaultGraceTimeout
	}
	platform := opts.Platform
	if platform == nil {
		platform = CurrentPlatform()
	}

	p := &Process{
		platform: platform,
		opts:     opts,
		done:     make(chan struct{}),
	}
	p.exitCode.Store(-1)
	return p
}

// Platform returns the platform implementation in use.
func (p *Process) Platform() Platform {
	return p.platform
}

// ShellPath returns the resolved shell executable path. Empty until Start.
func (p *Process) ShellPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shellPath
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// IsRunning reports whether the OS process is running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// PID returns the OS process ID, or -1 before Start.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pid == 0 {
		return -1
	}
	return p.pid
}

// Start validates the shell executable, spawns it with the configured
// working directory and environment overlay, and wires I/O.
//
// A spawn failure is fatal for this Process: the error is returned and
// the Process must be discarded. Start can succeed at most once.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.State() != StateNotStarted {
		return ErrAlreadyStarted
	}

	path := p.opts.Shell
	if path == "" {
		path = p.platform.DefaultShellPath()
	}
	if err := p.platform.Validate(path); err != nil {
		return err
	}

	cmd := exec.Command(path, p.opts.Args...)
	cmd.Dir = p.opts.WorkDir
	cmd.Env = mergeEnv(os.Environ(), append([]string{"TERM=xterm-256color"}, p.opts.Env...))

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("wire stdin for %s: %w", path, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("wire stdout for %s: %w", path, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("wire stderr for %s: %w", path, err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("spawn %s: %w", path, err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.shellPath = path
	p.pid = cmd.Process.Pid
	p.started = time.Now()
	p.lastOutput.Store(p.started.UnixNano())
	p.state.Store(int32(StateRunning))

	p.pumps.Add(2)
	go p.pump(stdout)
	go p.pump(stderr)
	go p.waitLoop()

	return nil
}

// pump copies one output pipe into the shared buffer until EOF.
func (p *Process) pump(r io.Reader) {
	defer p.pumps.Done()

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.outMu.Lock()
			p.outBuf.Write(buf[:n])
			p.outMu.Unlock()
			p.lastOutput.Store(time.Now().UnixNano())
		}
		if err != nil {
			return
		}
	}
}

// waitLoop reaps the child exactly once, records the exit code, and
// moves the Process to its terminal state.
func (p *Process) waitLoop() {
	// Both pipes must hit EOF before Wait, which closes them.
	p.pumps.Wait()

	err := p.cmd.Wait()

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	p.exitCode.Store(int32(code))
	p.endedNano.Store(time.Now().UnixNano())
	p.state.Store(int32(StateTerminated))
	p.releaseHandles()
	p.closeDone.Do(func() { close(p.done) })
}

// WriteInput forwards text verbatim to the shell's stdin.
// Returns ErrNotRunning when the process is not running.
//
// The write goes straight into the stdin pipe. If the shell stops
// reading and the OS pipe buffer fills, the write blocks until the
// shell drains it or exits; keep writes typing-sized so interactive
// input stays well under the pipe capacity.
func (p *Process) WriteInput(text string) error {
	if !p.IsRunning() {
		return ErrNotRunning
	}
	if _, err := io.WriteString(p.stdin, text); err != nil {
		// The pipe broke under us: the shell exited. Surface it as
		// not-running, never as an I/O exception.
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	return nil
}

// WriteCommand forwards text with a trailing newline so the shell
// executes it.
func (p *Process) WriteCommand(text string) error {
	return p.WriteInput(text + "\n")
}

// ReadOutput returns up to one chunk of currently buffered output
// without blocking. Empty result means nothing is pending.
func (p *Process) ReadOutput() string {
	p.outMu.Lock()
	defer p.outMu.Unlock()

	if p.outBuf.Len() == 0 {
		return ""
	}
	n := p.outBuf.Len()
	if n > readChunk {
		n = readChunk
	}
	return string(p.outBuf.Next(n))
}

// DrainOutput returns all currently buffered output without blocking.
func (p *Process) DrainOutput() string {
	p.outMu.Lock()
	defer p.outMu.Unlock()

	if p.outBuf.Len() == 0 {
		return ""
	}
	out := p.outBuf.String()
	p.outBuf.Reset()
	return out
}

// HasOutput reports whether a read would return data.
func (p *Process) HasOutput() bool {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	return p.outBuf.Len() > 0
}

// Terminate moves the process to Terminated. With force it kills
// immediately; otherwise it signals a graceful shutdown and escalates to
// a kill after the grace timeout. Safe to call at any time and from any
// state; repeated calls are no-ops.
func (p *Process) Terminate(force bool) {
	switch p.State() {
	case StateTerminated:
		return
	case StateNotStarted:
		if p.state.CompareAndSwap(int32(StateNotStarted), int32(StateTerminated)) {
			p.closeDone.Do(func() { close(p.done) })
		}
		return
	}

	p.mu.Lock()
	proc := p.cmd.Process
	p.mu.Unlock()
	if proc == nil {
		return
	}

	if force {
		_ = proc.Kill()
	} else if err := proc.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery is unsupported or the process is already
		// gone; fall back to a kill.
		_ = proc.Kill()
	}

	select {
	case <-p.done:
		return
	case <-time.After(p.opts.GraceTimeout):
		_ = proc.Kill()
	}

	select {
	case <-p.done:
	case <-time.After(p.opts.GraceTimeout):
		// The wait goroutine owns the terminal transition; give up
		// rather than block the caller.
	}
}

// Cleanup terminates the process and releases all I/O handles. Safe to
// call more than once.
func (p *Process) Cleanup() {
	p.Terminate(true)
	p.releaseHandles()
}

// releaseHandles closes the stdin pipe exactly once. The output pipes
// are closed by the wait goroutine after EOF.
func (p *Process) releaseHandles() {
	p.release.Do(func() {
		p.mu.Lock()
		stdin := p.stdin
		p.mu.Unlock()
		if stdin != nil {
			_ = stdin.Close()
		}
	})
}

// Done returns a channel closed when the process reaches Terminated.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitCode returns the child's exit code, or -1 before termination and
// for abnormal exits.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// StartTime returns when the process was started, zero before Start.
func (p *Process) StartTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Uptime returns how long the process has been running, frozen at its
// total runtime once terminated. Zero before Start.
func (p *Process) Uptime() time.Duration {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	if started.IsZero() {
		return 0
	}
	if ended := p.endedNano.Load(); ended > 0 {
		return time.Unix(0, ended).Sub(started)
	}
	return time.Since(started)
}

// TimeSinceLastOutput returns how long ago output was last produced.
// Zero before Start.
func (p *Process) TimeSinceLastOutput() time.Duration {
	last := p.lastOutput.Load()
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

// mergeEnv applies overlay entries onto base, replacing duplicate keys
// so each key appears once. Later overlay entries win.
func mergeEnv(base, overlay []string) []string {
	merged := make([]string, 0, len(base)+len(overlay))
	index := make(map[string]int, len(base))

	apply := func(entry string) {
		key := entry
		if i := strings.IndexByte(entry, '='); i >= 0 {
			key = entry[:i]
		}
		if at, ok := index[key]; ok {
			merged[at] = entry
			return
		}
		index[key] = len(merged)
		merged = append(merged, entry)
	}

	for _, entry := range base {
		apply(entry)
	}
	for _, entry := range overlay {
		apply(entry)
	}
	return merged
}
