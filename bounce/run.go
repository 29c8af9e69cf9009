package bounce

import (
	"context"
	"errors"
	"time"

	"go-bounce/debug"
)

// ErrStopped is returned by Run when the consumer of its notes goes away.
var ErrStopped = errors.New("note delivery stopped")

// Run steps p at fps frames per second until ctx ends, done is closed or a
// send fails. A nil done is never closed.
func Run(ctx context.Context, p *Producer, fps int, done <-chan struct{}) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			debug.Log("bounce", "delivery stopped after %d frames", p.Frames())
			return ErrStopped
		case <-ticker.C:
			hits, err := p.Step()
			for _, h := range hits {
				debug.Log("bounce", "%s wall -> %s", h.Wall, h.Note)
			}
			if err != nil {
				return err
			}
			debug.LogEvery(fps*10, "bounce", "frame=%d pos=(%.0f,%.0f)", p.Frames(), p.Ball.Pos.X, p.Ball.Pos.Y)
		}
	}
}
