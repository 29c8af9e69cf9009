package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderKeys(t *testing.T) {
	keys := []Key{
		{Label: "top", Pitch: 60, Color: [3]uint8{255, 0, 0}},
		{Label: "bottom", Pitch: 64, Color: [3]uint8{0, 255, 0}},
	}
	out := RenderKeys(keys, map[uint8]int{60: 1}, '■', '□')
	for _, want := range []string{"top", "C4", "bottom", "E4", "■", "□"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Count(out, "■") != 1 {
		t.Fatalf("only C4 is sounding: %q", out)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	sections := []KeySection{
		{Title: "Ball", Keys: []KeyBinding{{"n", "nudge"}, {"p", "pause"}}},
		{Title: "App", Keys: []KeyBinding{{"ctrl+c", "quit"}}},
	}
	got := RenderKeyHelp(sections, lipgloss.NewStyle())
	want := "Ball\n  n       nudge\n  p       pause\n\nApp\n  ctrl+c  quit"
	if got != want {
		t.Fatalf("got %q", got)
	}
	if line := RenderHelpLine(sections[0].Keys); line != "n:nudge  p:pause" {
		t.Fatalf("line = %q", line)
	}
}
