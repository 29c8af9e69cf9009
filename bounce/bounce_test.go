package bounce

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-bounce/midi"
)

type captureSender struct {
	notes []midi.Note
	err   error
}

func (c *captureSender) Send(n midi.Note) error {
	if c.err != nil {
		return c.err
	}
	c.notes = append(c.notes, n)
	return nil
}

func TestBallHitsEachWall(t *testing.T) {
	a := Arena{Width: 100, Height: 100}
	cases := []struct {
		name string
		ball Ball
		want Boundary
	}{
		{"right", Ball{Pos: Vec{85, 50}, Vel: Vec{6, 0}, Radius: 10}, Right},
		{"left", Ball{Pos: Vec{15, 50}, Vel: Vec{-6, 0}, Radius: 10}, Left},
		{"top", Ball{Pos: Vec{50, 15}, Vel: Vec{0, -6}, Radius: 10}, Top},
		{"bottom", Ball{Pos: Vec{50, 85}, Vel: Vec{0, 6}, Radius: 10}, Bottom},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := c.ball
			before := b.Vel
			hits := b.Step(a)
			if len(hits) != 1 || hits[0] != c.want {
				t.Fatalf("hits = %v, want [%s]", hits, c.want)
			}
			if b.Vel.X != -before.X || b.Vel.Y != -before.Y {
				t.Fatalf("velocity not reflected: %+v -> %+v", before, b.Vel)
			}
			if b.Pos.X-b.Radius < 0 || b.Pos.X+b.Radius > a.Width || b.Pos.Y-b.Radius < 0 || b.Pos.Y+b.Radius > a.Height {
				t.Fatalf("ball left the arena: %+v", b.Pos)
			}
			if again := b.Step(a); len(again) != 0 {
				t.Fatalf("one crossing hit twice: %v", again)
			}
		})
	}
}

func TestBallCornerHitsTwoWalls(t *testing.T) {
	b := Ball{Pos: Vec{95, 95}, Vel: Vec{3, 3}, Radius: 5}
	hits := b.Step(Arena{Width: 100, Height: 100})
	if len(hits) != 2 || hits[0] != Right || hits[1] != Bottom {
		t.Fatalf("hits = %v", hits)
	}
}

func TestNewBallRanges(t *testing.T) {
	rng := NewRand(7)
	for i := 0; i < 200; i++ {
		b := NewBall(rng, DefaultArena)
		if b.Radius < 10 || b.Radius >= 50 {
			t.Fatalf("radius %f", b.Radius)
		}
		if b.Vel.X < 1 || b.Vel.X >= 10 || b.Vel.Y < 1 || b.Vel.Y >= 10 {
			t.Fatalf("velocity %+v", b.Vel)
		}
		if b.Pos != DefaultArena.Center() {
			t.Fatalf("start %+v", b.Pos)
		}
	}
	tiny := NewBall(rng, Arena{Width: 12, Height: 12})
	if tiny.Radius > 6 {
		t.Fatalf("radius %f does not fit", tiny.Radius)
	}
}

func TestVoicingNote(t *testing.T) {
	v := DefaultVoicing()
	if err := v.Validate(); err != nil {
		t.Fatal(err)
	}
	rng := NewRand(42)
	want := map[Boundary]uint8{Right: 67, Left: 71, Top: 60, Bottom: 64}
	for _, b := range Boundaries {
		for i := 0; i < 100; i++ {
			n := v.Note(rng, b)
			if n.Pitch != want[b] || n.Velocity != 100 {
				t.Fatalf("%s: %+v", b, n)
			}
			if n.Duration < 300*time.Millisecond || n.Duration >= 2*time.Second {
				t.Fatalf("%s: duration %s out of range", b, n.Duration)
			}
		}
	}
}

func TestVoicingValidate(t *testing.T) {
	v := DefaultVoicing()
	v.MaxDuration = v.MinDuration
	if err := v.Validate(); err == nil {
		t.Fatal("empty duration range accepted")
	}

	v = DefaultVoicing()
	delete(v.Pitches, Top)
	if err := v.Validate(); err == nil {
		t.Fatal("missing wall accepted")
	}

	v = DefaultVoicing()
	v.Pitches[Left] = 200
	if err := v.Validate(); !errors.Is(err, midi.ErrPitchRange) {
		t.Fatalf("err = %v", err)
	}

	v = DefaultVoicing()
	v.Velocity = 0
	if err := v.Validate(); err == nil {
		t.Fatal("velocity 0 would be a note-off")
	}
}

func TestProducerSendsOnRightWall(t *testing.T) {
	tx := &captureSender{}
	p := NewProducer(tx, Arena{Width: 100, Height: 100}, DefaultVoicing(), NewRand(1))
	p.Ball = &Ball{Pos: Vec{85, 50}, Vel: Vec{6, 0}, Radius: 10}

	hits, err := p.Step()
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Wall != Right {
		t.Fatalf("hits = %+v", hits)
	}
	if len(tx.notes) != 1 {
		t.Fatalf("sent %d notes", len(tx.notes))
	}
	n := tx.notes[0]
	if n.Pitch != 67 || n.Velocity != 100 || n.Duration < 300*time.Millisecond || n.Duration >= 2*time.Second {
		t.Fatalf("note = %+v", n)
	}
	if p.Hits() != 1 || p.Frames() != 1 {
		t.Fatalf("hits=%d frames=%d", p.Hits(), p.Frames())
	}
}

func TestProducerLongRunStaysInside(t *testing.T) {
	tx := &captureSender{}
	p := NewProducer(tx, DefaultArena, DefaultVoicing(), NewRand(3))
	for i := 0; i < 5000; i++ {
		if _, err := p.Step(); err != nil {
			t.Fatal(err)
		}
		b := p.Ball
		if b.Pos.X < b.Radius-1e-9 || b.Pos.X > DefaultArena.Width-b.Radius+1e-9 {
			t.Fatalf("frame %d: x=%f", i, b.Pos.X)
		}
		if i%500 == 0 {
			p.Nudge()
		}
	}
	if len(tx.notes) == 0 || uint64(len(tx.notes)) != p.Hits() {
		t.Fatalf("notes=%d hits=%d", len(tx.notes), p.Hits())
	}
}

func TestProducerSendError(t *testing.T) {
	closed := errors.New("closed")
	p := NewProducer(&captureSender{err: closed}, Arena{Width: 100, Height: 100}, DefaultVoicing(), NewRand(1))
	p.Ball = &Ball{Pos: Vec{85, 50}, Vel: Vec{6, 0}, Radius: 10}
	if _, err := p.Step(); !errors.Is(err, closed) {
		t.Fatalf("err = %v", err)
	}
}

func TestIntro(t *testing.T) {
	notes := Intro()
	want := []uint8{60, 64, 67, 71}
	if len(notes) != len(want) {
		t.Fatalf("intro = %v", notes)
	}
	for i, n := range notes {
		if n.Pitch != want[i] || !n.IsOn() || n.Duration != 500*time.Millisecond {
			t.Fatalf("intro[%d] = %+v", i, n)
		}
	}
}

func TestRunStopsOnContext(t *testing.T) {
	p := NewProducer(&captureSender{}, DefaultArena, DefaultVoicing(), NewRand(5))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := Run(ctx, p, 200, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if p.Frames() == 0 {
		t.Fatal("no frames simulated")
	}
}

func TestRunStopsWhenDeliveryEnds(t *testing.T) {
	p := NewProducer(&captureSender{}, DefaultArena, DefaultVoicing(), NewRand(5))
	done := make(chan struct{})
	close(done)

	errc := make(chan error, 1)
	go func() { errc <- Run(context.Background(), p, 60, done) }()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrStopped) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run ignored a closed done channel")
	}
}
