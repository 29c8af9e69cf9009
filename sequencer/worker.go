package sequencer

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"go-bounce/debug"
	"go-bounce/midi"
)

// Delivery is published after each note reaches the device.
type Delivery struct {
	Seq  uint64
	Note midi.Note
	At   time.Time
}

// Worker is the only writer to the output connection. It drains the
// channel in order, writes each note, and schedules note-offs for note-ons.
type Worker struct {
	conn    *midi.Conn
	rx      *Receiver
	sched   *Scheduler
	updates chan Delivery

	delivered atomic.Uint64
	noteOns   atomic.Uint64
	noteOffs  atomic.Uint64
	dropped   atomic.Uint64 // updates the UI was too slow to take
}

// NewWorker takes ownership of conn and rx. updates may be nil.
func NewWorker(conn *midi.Conn, rx *Receiver, sched *Scheduler, updates chan Delivery) *Worker {
	return &Worker{
		conn:    conn,
		rx:      rx,
		sched:   sched,
		updates: updates,
	}
}

// Run blocks until the stream ends (nil), ctx is cancelled (ctx.Err()) or a
// device write fails (wrapped midi.ErrDeviceWrite). There is no retry.
func (w *Worker) Run(ctx context.Context) error {
	defer w.rx.Close()
	if err := w.conn.Claim(); err != nil {
		return err
	}
	defer w.conn.Close()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		n, err := w.rx.Receive(ctx)
		if errors.Is(err, io.EOF) {
			debug.Log("worker", "stream ended after %d notes", w.delivered.Load())
			return nil
		}
		if err != nil {
			return err
		}

		if err := w.conn.Send(n); err != nil {
			debug.Log("worker", "fatal: %v", err)
			return err
		}

		if n.IsOn() {
			w.noteOns.Add(1)
			tx, err := w.rx.Sender()
			if err != nil {
				// only possible once the stream is torn down
				debug.Log("worker", "no loopback for %s: %v", n, err)
			} else {
				w.sched.Schedule(n.Pitch, n.Duration, tx)
			}
		} else {
			w.noteOffs.Add(1)
		}

		seq := w.delivered.Add(1)
		debug.Log("dispatch", "seq=%d %s", seq, n)
		w.publish(Delivery{Seq: seq, Note: n, At: time.Now()})
	}
}

func (w *Worker) publish(d Delivery) {
	if w.updates == nil {
		return
	}
	select {
	case w.updates <- d:
	default:
		w.dropped.Add(1)
	}
}
