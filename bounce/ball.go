package bounce

import "math/rand/v2"

// Boundary identifies an arena wall.
type Boundary int

const (
	Right Boundary = iota
	Left
	Top
	Bottom
)

// Boundaries lists every wall in a fixed order.
var Boundaries = []Boundary{Right, Left, Top, Bottom}

func (b Boundary) String() string {
	switch b {
	case Right:
		return "right"
	case Left:
		return "left"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	}
	return "unknown"
}

// Vec is a 2D vector in arena units.
type Vec struct {
	X, Y float64
}

// Arena is the playfield. Origin is the top-left corner, Y grows downward.
type Arena struct {
	Width, Height float64
}

// DefaultArena matches an 800x600 window.
var DefaultArena = Arena{Width: 800, Height: 600}

// Center is the middle of the arena.
func (a Arena) Center() Vec {
	return Vec{a.Width / 2, a.Height / 2}
}

// Ball is a disc moving at constant speed, reflecting off the walls.
type Ball struct {
	Pos    Vec
	Vel    Vec // units per frame
	Radius float64
}

// NewBall places a ball at the arena centre with a random speed in [1,10)
// per axis and a random radius in [10,50), clamped to fit the arena.
func NewBall(rng *rand.Rand, arena Arena) *Ball {
	r := 10 + rng.Float64()*40
	if limit := min(arena.Width, arena.Height) / 2; r > limit {
		r = limit
	}
	return &Ball{
		Pos:    arena.Center(),
		Vel:    Vec{1 + rng.Float64()*9, 1 + rng.Float64()*9},
		Radius: r,
	}
}

// Step advances one frame and returns the walls hit, in Right, Left, Top,
// Bottom order. A wall only counts when the ball moves toward it; the ball
// is pushed back inside so one crossing yields one hit.
func (b *Ball) Step(a Arena) []Boundary {
	b.Pos.X += b.Vel.X
	b.Pos.Y += b.Vel.Y

	var hits []Boundary
	if b.Vel.X > 0 && b.Pos.X+b.Radius > a.Width {
		b.Vel.X = -b.Vel.X
		b.Pos.X = a.Width - b.Radius
		hits = append(hits, Right)
	}
	if b.Vel.X < 0 && b.Pos.X-b.Radius < 0 {
		b.Vel.X = -b.Vel.X
		b.Pos.X = b.Radius
		hits = append(hits, Left)
	}
	if b.Vel.Y < 0 && b.Pos.Y-b.Radius < 0 {
		b.Vel.Y = -b.Vel.Y
		b.Pos.Y = b.Radius
		hits = append(hits, Top)
	}
	if b.Vel.Y > 0 && b.Pos.Y+b.Radius > a.Height {
		b.Vel.Y = -b.Vel.Y
		b.Pos.Y = a.Height - b.Radius
		hits = append(hits, Bottom)
	}
	return hits
}

// Nudge adds a random kick to the velocity, keeping each axis within [1,10).
func (b *Ball) Nudge(rng *rand.Rand) {
	kick := func(v float64) float64 {
		s := 1.0
		if v < 0 {
			s = -1
		}
		return s * (1 + rng.Float64()*9)
	}
	b.Vel = Vec{kick(b.Vel.X), kick(b.Vel.Y)}
}
