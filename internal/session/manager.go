package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/termpane/internal/logging"
)

// EventPublisher publishes session lifecycle events to the host.
type EventPublisher interface {
	Publish(eventType string, data map[string]any)
}

// ManagerConfig configures a session manager.
type ManagerConfig struct {
	// DefaultShell is used when a session does not name one.
	DefaultShell string

	// DefaultWorkDir is used when a session does not name one.
	DefaultWorkDir string

	// Scrollback is the default transcript line limit.
	Scrollback int

	// GraceTimeout is the default termination grace period.
	GraceTimeout time.Duration

	// Logger receives lifecycle events from all sessions. Nil discards.
	Logger *logging.Logger

	// EventBus for publishing session events. Nil disables publishing.
	EventBus EventPublisher
}

// Manager tracks multiple terminal sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg    ManagerConfig
	log    *logging.Logger
	closed atomic.Bool
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		log:      log,
	}
}

// Create constructs and starts a new session, applying manager defaults
// for anything the options leave unset.
func (m *Manager) Create(opts Options) (*Session, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	if opts.Shell == "" {
		opts.Shell = m.cfg.DefaultShell
	}
	if opts.WorkDir == "" {
		opts.WorkDir = m.cfg.DefaultWorkDir
	}
	if opts.Scrollback <= 0 {
		opts.Scrollback = m.cfg.Scrollback
	}
	if opts.GraceTimeout <= 0 {
		opts.GraceTimeout = m.cfg.GraceTimeout
	}
	if opts.Logger == nil {
		opts.Logger = m.log
	}

	sess := New(opts)
	if err := sess.Start(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()

	m.publish("session.created", map[string]any{
		"id":   sess.ID(),
		"name": sess.Name(),
		"pid":  sess.Status().PID,
	})
	return sess, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// List returns all tracked sessions.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// TickAll advances every tracked session one update.
func (m *Manager) TickAll() {
	for _, sess := range m.List() {
		sess.Tick()
	}
}

// Close terminates one session, removes it from tracking, and publishes
// its exit.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	sess.Close()
	m.publish("session.closed", map[string]any{
		"id":        sess.ID(),
		"name":      sess.Name(),
		"exit_code": sess.Status().ExitCode,
	})
	return nil
}

// CloseAll terminates and removes every session.
func (m *Manager) CloseAll() {
	for _, sess := range m.List() {
		_ = m.Close(sess.ID())
	}
}

// Shutdown closes the manager: every session is asked to terminate
// gracefully, and any shell still alive after the timeout is killed.
// Further Create calls fail with ErrManagerClosed.
func (m *Manager) Shutdown(timeout time.Duration) {
	if m.closed.Swap(true) {
		return
	}

	sessions := m.List()
	if len(sessions) == 0 {
		return
	}

	done := make(chan struct{})
	go func() {
		for _, sess := range sessions {
			<-sess.Done()
		}
		close(done)
	}()

	for _, sess := range sessions {
		sess.Close()
	}

	select {
	case <-done:
	case <-time.After(timeout):
		m.log.Warn("shutdown timeout, some shells were killed")
	}

	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
}

func (m *Manager) publish(eventType string, data map[string]any) {
	if m.cfg.EventBus == nil {
		return
	}
	if data == nil {
		data = make(map[string]any)
	}
	data["timestamp"] = time.Now().UnixMilli()
	m.cfg.EventBus.Publish(eventType, data)
}
