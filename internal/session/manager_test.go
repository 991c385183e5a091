package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []string
	data   []map[string]any
}

func (b *recordingBus) Publish(eventType string, data map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	b.data = append(b.data, data)
}

func (b *recordingBus) has(eventType string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func TestManagerCreateAndTrack(t *testing.T) {
	requireShell(t)

	bus := &recordingBus{}
	m := NewManager(ManagerConfig{Scrollback: 100, EventBus: bus})
	defer m.Shutdown(5 * time.Second)

	sess, err := m.Create(Options{Name: "one"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	got, ok := m.Get(sess.ID())
	if !ok || got != sess {
		t.Error("Get did not return the created session")
	}
	if len(m.List()) != 1 {
		t.Errorf("List() returned %d sessions, want 1", len(m.List()))
	}
	if !bus.has("session.created") {
		t.Error("session.created event not published")
	}
}

func TestManagerCreateFailsForBadShell(t *testing.T) {
	requireShell(t)

	m := NewManager(ManagerConfig{})
	defer m.Shutdown(time.Second)

	_, err := m.Create(Options{Shell: "/no/such/shell"})
	if err == nil {
		t.Fatal("expected error for bad shell")
	}
	if m.Count() != 0 {
		t.Errorf("failed create left %d sessions tracked", m.Count())
	}
}

func TestManagerTickAll(t *testing.T) {
	requireShell(t)

	m := NewManager(ManagerConfig{})
	defer m.Shutdown(5 * time.Second)

	a, err := m.Create(Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Create(Options{})
	if err != nil {
		t.Fatal(err)
	}

	if err := a.WriteCommand("echo from-a"); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteCommand("echo from-b"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		m.TickAll()
		if strings.Contains(a.Transcript().Text(), "from-a") &&
			strings.Contains(b.Transcript().Text(), "from-b") {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("TickAll never surfaced both sessions' output")
}

func TestManagerClose(t *testing.T) {
	requireShell(t)

	bus := &recordingBus{}
	m := NewManager(ManagerConfig{EventBus: bus})
	defer m.Shutdown(time.Second)

	sess, err := m.Create(Options{})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Close(sess.ID()); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after close, want 0", m.Count())
	}
	if !bus.has("session.closed") {
		t.Error("session.closed event not published")
	}

	if err := m.Close(sess.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Close() = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerShutdown(t *testing.T) {
	requireShell(t)

	m := NewManager(ManagerConfig{})
	if _, err := m.Create(Options{}); err != nil {
		t.Fatal(err)
	}

	m.Shutdown(5 * time.Second)

	if m.Count() != 0 {
		t.Errorf("Count() = %d after shutdown, want 0", m.Count())
	}
	if _, err := m.Create(Options{}); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Create after shutdown = %v, want ErrManagerClosed", err)
	}

	// Shutdown is idempotent.
	m.Shutdown(time.Second)
}
