package midi

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrDeviceWrite wraps every failed write to the output device.
	ErrDeviceWrite = errors.New("device write failed")
	// ErrConnClaimed is returned when a second owner tries to take a Conn.
	ErrConnClaimed = errors.New("connection already owned")
)

// Conn is the single open connection to the output device.
// Exactly one goroutine may own it; Claim enforces that at runtime.
type Conn struct {
	port    Port
	claimed atomic.Bool
	sent    atomic.Uint64
	once    sync.Once
	err     error
}

// Open opens port and wraps it in a Conn.
func Open(port Port) (*Conn, error) {
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("open %q: %w", port.Name(), err)
	}
	return &Conn{port: port}, nil
}

// Name returns the underlying port name.
func (c *Conn) Name() string {
	return c.port.Name()
}

// Claim marks the caller as the sole owner of c.
func (c *Conn) Claim() error {
	if !c.claimed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", ErrConnClaimed, c.port.Name())
	}
	return nil
}

// Send writes n to the device as a 3-byte note message.
// Out-of-range values are rejected before anything is written.
func (c *Conn) Send(n Note) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeviceWrite, c.port.Name(), err)
	}
	if err := c.port.Send(n.Message()); err != nil {
		return fmt.Errorf("%w: %s: %s: %w", ErrDeviceWrite, c.port.Name(), n, err)
	}
	c.sent.Add(1)
	return nil
}

// Sent is the number of messages successfully written.
func (c *Conn) Sent() uint64 {
	return c.sent.Load()
}

// Close closes the port. Safe to call more than once.
func (c *Conn) Close() error {
	c.once.Do(func() {
		c.err = c.port.Close()
	})
	return c.err
}
