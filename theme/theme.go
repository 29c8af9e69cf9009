package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Ball    rune // ● ball body
	Empty   rune // blank arena cell
	KeyOn   rune // ■ sounding key
	KeyOff  rune // □ silent key
	Paused  rune // ‖
	Playing rune // ▶
}

// New builds a theme. A nil palette uses Default.
func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Ball:    '●',
			Empty:   ' ',
			KeyOn:   '■',
			KeyOff:  '□',
			Paused:  '‖',
			Playing: '▶',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.2
	RoleAccent  = 0.5
	RoleBall    = 0.6
	RoleWarning = 0.8
)

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Ball() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBall))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// PitchColor spreads the 128 MIDI pitches across the palette.
func (t *Theme) PitchColor(pitch uint8) RGB {
	return t.Palette.Lookup(float64(pitch) / 127)
}

func (t *Theme) PitchLipgloss(pitch uint8) lipgloss.Color {
	return rgbToLipgloss(t.PitchColor(pitch))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(Hex(c))
}

// Hex formats c as #rrggbb.
func Hex(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
