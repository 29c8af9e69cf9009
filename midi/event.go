package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80 // recognised, never sent: note-off goes out as NoteOn with velocity 0
)

// MaxValue is the largest pitch or velocity a 7-bit data byte can carry.
const MaxValue = 127

var (
	ErrPitchRange       = errors.New("pitch out of range 0-127")
	ErrVelocityRange    = errors.New("velocity out of range 0-127")
	ErrNegativeDuration = errors.New("duration must not be negative")
)

// Note is one event flowing through the pipeline.
// Velocity 0 means note-off; Duration only matters when Velocity > 0.
type Note struct {
	Pitch    uint8
	Velocity uint8
	Duration time.Duration
}

// NewNote builds a Note from plain ints, checking the protocol ranges.
func NewNote(pitch, velocity, durationMs int) (Note, error) {
	if pitch < 0 || pitch > MaxValue {
		return Note{}, fmt.Errorf("%w: %d", ErrPitchRange, pitch)
	}
	if velocity < 0 || velocity > MaxValue {
		return Note{}, fmt.Errorf("%w: %d", ErrVelocityRange, velocity)
	}
	if durationMs < 0 {
		return Note{}, fmt.Errorf("%w: %dms", ErrNegativeDuration, durationMs)
	}
	return Note{
		Pitch:    uint8(pitch),
		Velocity: uint8(velocity),
		Duration: time.Duration(durationMs) * time.Millisecond,
	}, nil
}

// Off returns the note-off for pitch.
func Off(pitch uint8) Note {
	return Note{Pitch: pitch}
}

// IsOn reports whether n starts a note.
func (n Note) IsOn() bool {
	return n.Velocity > 0
}

// Validate rejects pitches and velocities that do not fit a data byte.
func (n Note) Validate() error {
	if n.Pitch > MaxValue {
		return fmt.Errorf("%w: %d", ErrPitchRange, n.Pitch)
	}
	if n.Velocity > MaxValue {
		return fmt.Errorf("%w: %d", ErrVelocityRange, n.Velocity)
	}
	return nil
}

// Message encodes n as [0x90, pitch, velocity] on channel 0.
// Call Validate first; gomidi masks out-of-range values.
func (n Note) Message() gomidi.Message {
	return gomidi.NoteOn(0, n.Pitch, n.Velocity)
}

func (n Note) String() string {
	if !n.IsOn() {
		return fmt.Sprintf("off %s", PitchName(n.Pitch))
	}
	return fmt.Sprintf("on %s vel=%d dur=%s", PitchName(n.Pitch), n.Velocity, n.Duration)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName renders a MIDI pitch as e.g. "C4" (60).
func PitchName(pitch uint8) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], int(pitch/12)-1)
}
