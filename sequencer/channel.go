package sequencer

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/eapache/queue"

	"go-bounce/midi"
)

var (
	// ErrChannelClosed is returned by Send once the receiving side is gone.
	ErrChannelClosed = errors.New("event channel closed")
	// ErrSenderClosed is returned when a released Sender handle is used again.
	ErrSenderClosed = errors.New("sender already closed")
)

// channel is an unbounded multi-producer single-consumer FIFO of notes.
// The stream ends when the last Sender is closed and the buffer is drained.
type channel struct {
	mu       sync.Mutex
	buf      *queue.Queue
	senders  int
	rxClosed bool
	eof      bool
	ready    chan struct{} // one pending wake-up for the single consumer
}

// Sender is a producer handle. Clone it for every independent producer and
// Close it when done; it is not safe to Close one handle from two owners.
type Sender struct {
	ch     *channel
	mu     sync.Mutex
	closed bool
}

// Receiver is the single consumer handle.
type Receiver struct {
	ch *channel
}

// NewChannel returns the first Sender and the only Receiver.
func NewChannel() (*Sender, *Receiver) {
	ch := &channel{
		buf:     queue.New(),
		senders: 1,
		ready:   make(chan struct{}, 1),
	}
	return &Sender{ch: ch}, &Receiver{ch: ch}
}

func (c *channel) wake() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// Send enqueues n. It never blocks.
func (s *Sender) Send(n midi.Note) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSenderClosed
	}

	c := s.ch
	c.mu.Lock()
	if c.rxClosed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.buf.Add(n)
	c.mu.Unlock()
	c.wake()
	return nil
}

// Clone returns another handle to the same channel.
func (s *Sender) Clone() (*Sender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSenderClosed
	}
	return s.ch.newSender()
}

// Close releases the handle. Closing twice is a no-op.
func (s *Sender) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	c := s.ch
	c.mu.Lock()
	c.senders--
	last := c.senders == 0
	c.mu.Unlock()
	if last {
		c.wake()
	}
}

func (c *channel) newSender() (*Sender, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rxClosed || c.eof {
		return nil, ErrChannelClosed
	}
	c.senders++
	return &Sender{ch: c}, nil
}

// Receive blocks until a note is available. It returns io.EOF once every
// Sender is closed and the buffer is empty, or ctx.Err() if ctx ends first.
func (r *Receiver) Receive(ctx context.Context) (midi.Note, error) {
	c := r.ch
	for {
		c.mu.Lock()
		if c.rxClosed {
			c.mu.Unlock()
			return midi.Note{}, ErrChannelClosed
		}
		if c.buf.Length() > 0 {
			n := c.buf.Remove().(midi.Note)
			c.mu.Unlock()
			return n, nil
		}
		if c.senders == 0 {
			c.eof = true
			c.mu.Unlock()
			return midi.Note{}, io.EOF
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return midi.Note{}, ctx.Err()
		case <-c.ready:
		}
	}
}

// Sender mints a loopback handle from the consumer side, so the consumer
// can feed events back into its own stream. Valid until Receive reports io.EOF.
func (r *Receiver) Sender() (*Sender, error) {
	return r.ch.newSender()
}

// Len is the number of buffered notes.
func (r *Receiver) Len() int {
	c := r.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Length()
}

// Close drops the consumer; further sends fail with ErrChannelClosed and
// buffered notes are discarded.
func (r *Receiver) Close() {
	c := r.ch
	c.mu.Lock()
	c.rxClosed = true
	c.buf = queue.New()
	c.mu.Unlock()
	c.wake()
}
