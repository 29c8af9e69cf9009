package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-bounce/midi"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(symbol))
}

// Key is one wall's note in the key strip.
type Key struct {
	Label string
	Pitch uint8
	Color [3]uint8
}

// RenderKeys draws one cell per key: the pad, the wall label and the note
// name. Sounding keys use on, the rest off.
func RenderKeys(keys []Key, sounding map[uint8]int, on, off rune) string {
	cells := make([]string, 0, len(keys))
	for _, k := range keys {
		sym := off
		color := k.Color
		if sounding[k.Pitch] > 0 {
			sym = on
		} else {
			color = dim(color)
		}
		cells = append(cells, fmt.Sprintf("%s %-6s %-3s", RenderPad(color, sym), k.Label, midi.PitchName(k.Pitch)))
	}
	return strings.Join(cells, "  ")
}

func dim(c [3]uint8) [3]uint8 {
	return [3]uint8{c[0] / 3, c[1] / 3, c[2] / 3}
}

// RenderKeyHelp lays sections out as a help screen. Keys are padded to the
// widest key so descriptions line up across sections.
func RenderKeyHelp(sections []KeySection, title lipgloss.Style) string {
	width := 0
	for _, sec := range sections {
		for _, k := range sec.Keys {
			width = max(width, lipgloss.Width(k.Key))
		}
	}

	var blocks []string
	for _, sec := range sections {
		var lines []string
		if sec.Title != "" {
			lines = append(lines, title.Render(sec.Title))
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-*s  %s", width, k.Key, k.Desc))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderHelpLine squeezes bindings onto one line: "q:quit  p:pause".
func RenderHelpLine(keys []KeyBinding) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Key + ":" + k.Desc
	}
	return strings.Join(parts, "  ")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
