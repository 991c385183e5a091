package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/termpane/internal/ansi"
	"github.com/dshills/termpane/internal/logging"
	"github.com/dshills/termpane/internal/shell"
	"github.com/dshills/termpane/internal/transcript"
)

// Options configures a new Session.
type Options struct {
	// Name is a human-readable name for the session.
	Name string

	// Shell is the shell executable (empty means the platform default).
	Shell string

	// Args are additional arguments passed to the shell.
	Args []string

	// WorkDir is the shell's working directory.
	WorkDir string

	// Env is an environment overlay in KEY=VALUE form.
	Env []string

	// Scrollback is the transcript line limit.
	Scrollback int

	// GraceTimeout bounds graceful termination.
	GraceTimeout time.Duration

	// Logger receives session lifecycle events. Nil discards them.
	Logger *logging.Logger

	// Platform overrides shell platform detection, mainly for tests.
	Platform shell.Platform
}

// Status is a point-in-time snapshot for a status-display collaborator.
type Status struct {
	State    shell.State
	Running  bool
	PID      int
	Uptime   time.Duration
	IdleFor  time.Duration
	ExitCode int
	Lines    int
}

// Session is one terminal session: a shell process, the parser for its
// output stream, and the transcript it fills. It is the only type a host
// UI needs to talk to.
//
// Tick, WriteInput, WriteCommand, and Close must be called from a single
// goroutine (the host loop).
type Session struct {
	id   string
	name string

	proc   *shell.Process
	parser *ansi.Parser
	buf    *transcript.Buffer

	// partial holds raw output not yet terminated by a newline.
	partial string

	finalized bool
	closed    bool

	log *logging.Logger
}

// New constructs a session without starting its shell.
func New(opts Options) *Session {
	if opts.Name == "" {
		opts.Name = "terminal"
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	id := uuid.New().String()
	return &Session{
		id:     id,
		name:   opts.Name,
		parser: ansi.NewParser(),
		buf:    transcript.NewBuffer(opts.Scrollback),
		proc: shell.NewProcess(shell.Options{
			Shell:        opts.Shell,
			Args:         opts.Args,
			WorkDir:      opts.WorkDir,
			Env:          opts.Env,
			GraceTimeout: opts.GraceTimeout,
			Platform:     opts.Platform,
		}),
		log: log.WithSession(id),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Name returns the session's display name.
func (s *Session) Name() string {
	return s.name
}

// Start spawns the shell. A spawn failure is fatal for the session.
func (s *Session) Start() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.proc.Start(); err != nil {
		s.log.Error("shell spawn failed", "error", err)
		return err
	}
	s.log.Info("session started",
		"shell", s.proc.ShellPath(),
		"pid", s.proc.PID(),
	)
	return nil
}

// Tick performs one non-blocking update: drain pending shell output,
// fold completed lines into the transcript, and keep bookkeeping
// current. Safe to call every render frame.
func (s *Session) Tick() {
	if s.finalized {
		return
	}

	switch s.proc.State() {
	case shell.StateNotStarted:
		return
	case shell.StateRunning:
		s.consume(s.proc.DrainOutput())
	case shell.StateTerminated:
		// Pick up anything produced between the last tick and exit,
		// then seal the transcript.
		s.consume(s.proc.DrainOutput())
		s.finalizeTranscript()
	}
}

// consume appends raw output and folds every completed line into the
// transcript. The unterminated tail stays buffered.
func (s *Session) consume(chunk string) {
	if chunk == "" {
		return
	}
	s.partial += chunk

	for {
		i := strings.IndexByte(s.partial, '\n')
		if i < 0 {
			return
		}
		line := strings.TrimSuffix(s.partial[:i], "\r")
		s.partial = s.partial[i+1:]
		s.buf.Append(s.parser.ParseToLine(line))
	}
}

// finalizeTranscript flushes the buffered partial line and any truncated
// escape sequence into the transcript at session end.
func (s *Session) finalizeTranscript() {
	runs := s.parser.ParseText(s.partial)
	runs = append(runs, s.parser.Flush()...)
	s.partial = ""

	line := ansi.NewLine(runs)
	if line.Text != "" {
		s.buf.Append(line)
	}

	s.finalized = true
	s.log.Info("session ended", "exit_code", s.proc.ExitCode())
}

// WriteInput forwards raw keystrokes or pasted text verbatim to the shell.
func (s *Session) WriteInput(text string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.proc.WriteInput(text)
}

// WriteCommand forwards a command line, appending the newline that
// submits it.
func (s *Session) WriteCommand(text string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.proc.WriteCommand(text)
}

// Transcript returns the session's transcript buffer. The session is the
// buffer's only writer; renderers read it between ticks.
func (s *Session) Transcript() *transcript.Buffer {
	return s.buf
}

// Status returns a snapshot of the session for status display.
func (s *Session) Status() Status {
	return Status{
		State:    s.proc.State(),
		Running:  s.proc.IsRunning(),
		PID:      s.proc.PID(),
		Uptime:   s.proc.Uptime(),
		IdleFor:  s.proc.TimeSinceLastOutput(),
		ExitCode: s.proc.ExitCode(),
		Lines:    s.buf.Len(),
	}
}

// Stalled reports whether the shell is running but has produced no
// output for at least threshold. Used for hang detection.
func (s *Session) Stalled(threshold time.Duration) bool {
	return s.proc.IsRunning() && s.proc.TimeSinceLastOutput() >= threshold
}

// Clear empties the transcript. The shell keeps running.
func (s *Session) Clear() {
	s.buf.Clear()
}

// Done returns a channel closed when the shell process terminates.
func (s *Session) Done() <-chan struct{} {
	return s.proc.Done()
}

// Close terminates the shell and seals the transcript. Idempotent.
// The transcript remains readable after Close.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.proc.Terminate(false)
	s.proc.Cleanup()

	if !s.finalized {
		s.consume(s.proc.DrainOutput())
		s.finalizeTranscript()
	}
}
