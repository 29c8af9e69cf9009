package bounce

import (
	"fmt"
	"math/rand/v2"
	"time"

	"go-bounce/midi"
)

// NoteSender is the producer side of the event channel. Send must not block.
type NoteSender interface {
	Send(n midi.Note) error
}

// Voicing decides which note a wall hit plays.
type Voicing struct {
	Pitches     map[Boundary]uint8
	Velocity    uint8
	MinDuration time.Duration // inclusive
	MaxDuration time.Duration // exclusive
}

// DefaultVoicing maps the walls to a G-B-C-E spread at velocity 100,
// each note lasting 300ms to 2s.
func DefaultVoicing() Voicing {
	return Voicing{
		Pitches: map[Boundary]uint8{
			Right:  67,
			Left:   71,
			Top:    60,
			Bottom: 64,
		},
		Velocity:    100,
		MinDuration: 300 * time.Millisecond,
		MaxDuration: 2000 * time.Millisecond,
	}
}

// Validate checks every wall has an in-range pitch and the duration range is sane.
func (v Voicing) Validate() error {
	for _, b := range Boundaries {
		p, ok := v.Pitches[b]
		if !ok {
			return fmt.Errorf("voicing: no pitch for %s wall", b)
		}
		if p > midi.MaxValue {
			return fmt.Errorf("voicing: %s wall: %w: %d", b, midi.ErrPitchRange, p)
		}
	}
	if v.Velocity == 0 || v.Velocity > midi.MaxValue {
		return fmt.Errorf("voicing: velocity %d must be 1-127", v.Velocity)
	}
	if v.MinDuration < 0 || v.MaxDuration <= v.MinDuration {
		return fmt.Errorf("voicing: duration range [%s, %s) is empty", v.MinDuration, v.MaxDuration)
	}
	return nil
}

// Note builds the note for a hit on b with a random duration from the range.
func (v Voicing) Note(rng *rand.Rand, b Boundary) midi.Note {
	span := int64(v.MaxDuration - v.MinDuration)
	d := v.MinDuration
	if span > 0 {
		d += time.Duration(rng.Int64N(span))
	}
	return midi.Note{Pitch: v.Pitches[b], Velocity: v.Velocity, Duration: d}
}

// Intro is the opening arpeggio played before the ball starts moving.
func Intro() []midi.Note {
	var notes []midi.Note
	for _, p := range []uint8{60, 64, 67, 71} {
		notes = append(notes, midi.Note{Pitch: p, Velocity: 100, Duration: 500 * time.Millisecond})
	}
	return notes
}

// Hit is one wall collision and the note it produced.
type Hit struct {
	Wall Boundary
	Note midi.Note
}

// Producer runs the ball simulation and turns wall hits into notes.
// It is driven from a single goroutine (the UI or the headless loop).
type Producer struct {
	Ball    *Ball
	Arena   Arena
	Voicing Voicing

	tx     NoteSender
	rng    *rand.Rand
	frames uint64
	hits   uint64
}

// NewProducer creates a producer with a freshly placed ball.
func NewProducer(tx NoteSender, arena Arena, v Voicing, rng *rand.Rand) *Producer {
	return &Producer{
		Ball:    NewBall(rng, arena),
		Arena:   arena,
		Voicing: v,
		tx:      tx,
		rng:     rng,
	}
}

// NewRand returns a PCG source; seed 0 picks a time-based seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Step advances one frame and sends one note per wall hit.
// On a send error the remaining hits of the frame are not sent.
func (p *Producer) Step() ([]Hit, error) {
	p.frames++
	walls := p.Ball.Step(p.Arena)
	if len(walls) == 0 {
		return nil, nil
	}
	hits := make([]Hit, 0, len(walls))
	for _, w := range walls {
		n := p.Voicing.Note(p.rng, w)
		if err := p.tx.Send(n); err != nil {
			return hits, fmt.Errorf("%s wall: %w", w, err)
		}
		p.hits++
		hits = append(hits, Hit{Wall: w, Note: n})
	}
	return hits, nil
}

// Nudge kicks the ball in a new random direction.
func (p *Producer) Nudge() {
	p.Ball.Nudge(p.rng)
}

// Frames is the number of simulated frames.
func (p *Producer) Frames() uint64 {
	return p.frames
}

// Hits is the number of notes sent.
func (p *Producer) Hits() uint64 {
	return p.hits
}
