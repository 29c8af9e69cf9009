package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-bounce/bounce"
	"go-bounce/sequencer"
	"go-bounce/theme"
	"go-bounce/widgets"
)

// frames a wall stays lit after a hit
const flashFrames = 6

type Model struct {
	Producer *bounce.Producer
	Manager  *sequencer.Manager
	Theme    *theme.Theme

	fps      int
	width    int
	height   int
	paused   bool
	showHelp bool
	quitting bool
	err      error
	sounding map[uint8]int
	flash    map[bounce.Boundary]int
	keys     []widgets.Key
}

type tickMsg time.Time

// DeliveryMsg is one note the worker wrote to the device.
type DeliveryMsg sequencer.Delivery

// WorkerDoneMsg reports that the delivery worker exited.
type WorkerDoneMsg struct{ Err error }

func NewModel(p *bounce.Producer, manager *sequencer.Manager, th *theme.Theme, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	keys := make([]widgets.Key, 0, len(bounce.Boundaries))
	for _, b := range bounce.Boundaries {
		pitch := p.Voicing.Pitches[b]
		keys = append(keys, widgets.Key{Label: b.String(), Pitch: pitch, Color: th.PitchColor(pitch)})
	}
	return Model{
		Producer: p,
		Manager:  manager,
		Theme:    th,
		fps:      fps,
		width:    80,
		height:   24,
		sounding: make(map[uint8]int),
		flash:    make(map[bounce.Boundary]int),
		keys:     keys,
	}
}

// Err is the error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func tick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ListenForDeliveries waits for the next delivery or for the worker to exit.
func ListenForDeliveries(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		select {
		case d := <-manager.Updates():
			return DeliveryMsg(d)
		case <-manager.Done():
			return WorkerDoneMsg{Err: manager.Err()}
		}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(m.fps),
		ListenForDeliveries(m.Manager),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		case "n":
			m.Producer.Nudge()
		case "?":
			m.showHelp = !m.showHelp
		case "esc":
			m.showHelp = false
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tickMsg:
		for b, n := range m.flash {
			if n <= 1 {
				delete(m.flash, b)
			} else {
				m.flash[b] = n - 1
			}
		}
		if m.paused {
			return m, tick(m.fps)
		}
		hits, err := m.Producer.Step()
		for _, h := range hits {
			m.flash[h.Wall] = flashFrames
		}
		if err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		return m, tick(m.fps)

	case DeliveryMsg:
		if msg.Note.IsOn() {
			m.sounding[msg.Note.Pitch]++
		} else if m.sounding[msg.Note.Pitch] > 0 {
			m.sounding[msg.Note.Pitch]--
		}
		return m, ListenForDeliveries(m.Manager)

	case WorkerDoneMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	state := m.Theme.Symbols.Playing
	if m.paused {
		state = m.Theme.Symbols.Paused
		headerStyle = headerStyle.Foreground(m.Theme.Warning())
	}
	header := fmt.Sprintf("go-bounce  %c  hits:%d", state, m.Producer.Hits())
	if m.Manager != nil {
		s := m.Manager.Stats()
		header += fmt.Sprintf("  %s  sent:%d  sounding:%d  queued:%d", s.Port, s.Delivered, s.Pending, s.Queued)
		if s.LostOffs > 0 {
			header += fmt.Sprintf("  lost offs:%d", s.LostOffs)
		}
	}

	// header, blank, border x2, blank, keys, blank, help
	cols := max(m.width-2, 10)
	rows := max(m.height-8, 4)
	var arena string
	if m.showHelp {
		titleStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
		arena = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.Theme.Muted()).
			Width(cols).
			Height(rows).
			Render(widgets.RenderKeyHelp(helpSections, titleStyle))
	} else {
		arena = m.renderArena(cols, rows)
	}

	keys := widgets.RenderKeys(m.keys, m.sounding, m.Theme.Symbols.KeyOn, m.Theme.Symbols.KeyOff)
	help := dimStyle.Render(widgets.RenderHelpLine(helpKeys))

	var out strings.Builder
	out.WriteString(headerStyle.Render(header))
	out.WriteString("\n\n")
	out.WriteString(arena)
	out.WriteString("\n\n")
	out.WriteString(keys)
	out.WriteString("\n\n")
	out.WriteString(help)
	return out.String()
}

var helpSections = []widgets.KeySection{
	{Title: "Ball", Keys: []widgets.KeyBinding{
		{Key: "p / space", Desc: "pause or resume the simulation"},
		{Key: "n", Desc: "nudge the ball in a new direction"},
	}},
	{Title: "Program", Keys: []widgets.KeyBinding{
		{Key: "?", Desc: "toggle this help"},
		{Key: "q / ctrl+c", Desc: "quit after pending notes stop"},
	}},
}

var helpKeys = []widgets.KeyBinding{
	{Key: "p", Desc: "pause"},
	{Key: "n", Desc: "nudge"},
	{Key: "?", Desc: "help"},
	{Key: "q", Desc: "quit"},
}

func (m Model) renderArena(cols, rows int) string {
	ballStyle := lipgloss.NewStyle().Foreground(m.Theme.Ball())
	cells := ArenaCells(m.Producer.Ball, m.Producer.Arena, cols, rows)

	lines := make([]string, rows)
	ball := string(m.Theme.Symbols.Ball)
	empty := string(m.Theme.Symbols.Empty)
	for y, row := range cells {
		var line strings.Builder
		for _, hit := range row {
			if hit {
				line.WriteString(ballStyle.Render(ball))
			} else {
				line.WriteString(empty)
			}
		}
		lines[y] = line.String()
	}

	wall := func(b bounce.Boundary) lipgloss.Color {
		if m.flash[b] > 0 {
			return m.Theme.PitchLipgloss(m.Producer.Voicing.Pitches[b])
		}
		return m.Theme.Muted()
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderTopForeground(wall(bounce.Top)).
		BorderRightForeground(wall(bounce.Right)).
		BorderBottomForeground(wall(bounce.Bottom)).
		BorderLeftForeground(wall(bounce.Left))
	return box.Render(strings.Join(lines, "\n"))
}
