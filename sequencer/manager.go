package sequencer

import (
	"context"
	"errors"
	"sync"

	"github.com/benbjohnson/clock"

	"go-bounce/debug"
	"go-bounce/midi"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("manager already started")

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Port      string
	Delivered uint64
	NoteOns   uint64
	NoteOffs  uint64
	Pending   int // note-off timers not yet fired
	Queued    int // notes buffered in the channel
	Dropped   uint64
	LostOffs  uint64
}

// Manager wires the connection, channel, scheduler and worker together.
type Manager struct {
	conn   *midi.Conn
	clock  clock.Clock
	sched  *Scheduler
	worker *Worker
	rx     *Receiver

	// Notify TUI of deliveries
	updates chan Delivery

	mu      sync.Mutex
	started bool
	done    chan struct{}
	err     error
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithClock replaces the wall clock used for note-off timers.
func WithClock(c clock.Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithUpdateBuffer sets the capacity of the Updates channel (0 disables it).
func WithUpdateBuffer(n int) ManagerOption {
	return func(m *Manager) {
		if n <= 0 {
			m.updates = nil
			return
		}
		m.updates = make(chan Delivery, n)
	}
}

// NewManager creates a manager that will own conn once started.
func NewManager(conn *midi.Conn, opts ...ManagerOption) *Manager {
	m := &Manager{
		conn:    conn,
		updates: make(chan Delivery, 64),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = clock.New()
	}
	m.sched = NewScheduler(m.clock)
	return m
}

// Start launches the delivery worker and returns the first producer handle.
// Clone it per producer; Close every clone to let the worker drain and exit.
func (m *Manager) Start(ctx context.Context) (*Sender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil, ErrAlreadyStarted
	}
	m.started = true

	tx, rx := NewChannel()
	m.rx = rx
	m.worker = NewWorker(m.conn, rx, m.sched, m.updates)

	go func() {
		err := m.worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		debug.Log("manager", "worker exited: err=%v", err)
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()
		close(m.done)
	}()

	debug.Log("manager", "started on %q", m.conn.Name())
	return tx, nil
}

// Done is closed when the worker has exited.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Err is the worker's exit error, valid after Done is closed.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Wait blocks until the worker exits or ctx ends.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Updates streams deliveries to a UI. Slow readers miss updates, never the device.
func (m *Manager) Updates() <-chan Delivery {
	return m.updates
}

// Scheduler exposes the note-off timers, mainly for waiting in tests and tools.
func (m *Manager) Scheduler() *Scheduler {
	return m.sched
}

// Stats returns current counters.
func (m *Manager) Stats() Stats {
	s := Stats{
		Port:     m.conn.Name(),
		Pending:  m.sched.Pending(),
		LostOffs: m.sched.Failed(),
	}
	m.mu.Lock()
	w, rx := m.worker, m.rx
	m.mu.Unlock()
	if w != nil {
		s.Delivered = w.delivered.Load()
		s.NoteOns = w.noteOns.Load()
		s.NoteOffs = w.noteOffs.Load()
		s.Dropped = w.dropped.Load()
	}
	if rx != nil {
		s.Queued = rx.Len()
	}
	return s
}
