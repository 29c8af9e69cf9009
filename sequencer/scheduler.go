package sequencer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"go-bounce/debug"
	"go-bounce/midi"
)

// Scheduler re-injects a note-off into the stream after a note's duration.
// Every note-on gets its own timer. There is no cancellation and no
// coalescing: a pitch retriggered before its off fires gets two offs.
type Scheduler struct {
	clock   clock.Clock
	pending atomic.Int64
	fired   atomic.Uint64
	failed  atomic.Uint64
	wg      sync.WaitGroup
}

// NewScheduler returns a Scheduler driven by clk (clock.New() in production).
func NewScheduler(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clock: clk}
}

// Schedule returns immediately. After d, Off(pitch) is sent on tx from the
// timer's own goroutine and tx is released. A failed send only ends that timer.
func (s *Scheduler) Schedule(pitch uint8, d time.Duration, tx *Sender) {
	if d < 0 {
		d = 0
	}
	s.pending.Add(1)
	s.wg.Add(1)
	s.clock.AfterFunc(d, func() {
		defer s.wg.Done()
		defer s.pending.Add(-1)
		defer tx.Close()

		if err := tx.Send(midi.Off(pitch)); err != nil {
			s.failed.Add(1)
			debug.Log("timer", "note-off %s dropped: %v", midi.PitchName(pitch), err)
			return
		}
		s.fired.Add(1)
	})
}

// Pending is the number of timers that have not finished yet.
func (s *Scheduler) Pending() int {
	return int(s.pending.Load())
}

// Fired is the number of note-offs successfully re-injected.
func (s *Scheduler) Fired() uint64 {
	return s.fired.Load()
}

// Failed is the number of note-offs lost to a closed channel.
func (s *Scheduler) Failed() uint64 {
	return s.failed.Load()
}

// Wait blocks until every scheduled timer has fired and finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
