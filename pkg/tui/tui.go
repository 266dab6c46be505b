// Package tui provides the terminal sequencer interface for dust
package tui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frnsys/dust/pkg/export"
	"github.com/frnsys/dust/pkg/progression"
	"github.com/frnsys/dust/pkg/theory"
)

var (
	dustPurple = lipgloss.Color("#B48EAD")
	dustGold   = lipgloss.Color("#EBCB8B")
	dustWhite  = lipgloss.Color("#ECEFF4")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dustGold).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	cellStyle = lipgloss.NewStyle().
			Foreground(dustWhite).
			Width(6).
			Align(lipgloss.Center)

	restStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Width(6).
			Align(lipgloss.Center)

	cursorStyle = lipgloss.NewStyle().
			Foreground(darkGray).
			Background(dustGold).
			Bold(true).
			Width(6).
			Align(lipgloss.Center)

	statusStyle = lipgloss.NewStyle().
			Foreground(dustPurple).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(dustGold).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dustPurple).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateGrid State = iota
	StateEditing
	StateSaving
)

// Model represents the TUI model
type Model struct {
	state       State
	template    *progression.ProgressionTemplate
	progression *progression.Progression
	key         theory.Key
	bars        int
	cursor      int
	rng         *rand.Rand
	input       textinput.Model
	err         error
	status      string
	width       int
	height      int
}

// New creates a sequencer model with a freshly generated progression.
func New(template *progression.ProgressionTemplate) Model {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	input := textinput.New()
	input.CharLimit = 24
	input.Width = 24

	key := theory.DefaultKey()
	bars := 2

	return Model{
		state:       StateGrid,
		template:    template,
		progression: template.GenProgression(rng, bars, key.Mode),
		key:         key,
		bars:        bars,
		rng:         rng,
		input:       input,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateGrid:
			return m.updateGrid(msg)
		case StateEditing:
			return m.updateEditing(msg)
		case StateSaving:
			return m.updateSaving(msg)
		}
	}

	return m, nil
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ticks := len(m.progression.Sequence)
	ticksPerBar := m.progression.Resolution.TicksPerBar()

	switch msg.String() {
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < ticks-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor >= ticksPerBar {
			m.cursor -= ticksPerBar
		}
	case "down", "j":
		if m.cursor+ticksPerBar < ticks {
			m.cursor += ticksPerBar
		}

	case "enter":
		m.state = StateEditing
		m.err = nil
		m.input.SetValue(m.chordAtCursor())
		m.input.Focus()
		return m, textinput.Blink

	case "d", "backspace":
		m.progression.DeleteChordAt(m.cursor)
		m.status = ""

	case "c":
		m.cycleChord()

	case "r":
		m.progression = m.template.GenProgression(m.rng, m.bars, m.key.Mode)
		m.cursor = 0
		m.status = "regenerated"

	case "v":
		m.progression = m.progression.VoiceLead()
		m.status = "voice-led"

	case "m":
		m.key.Mode = 1 - m.key.Mode
		m.progression = m.template.GenProgression(m.rng, m.bars, m.key.Mode)
		m.cursor = 0
		m.status = fmt.Sprintf("mode: %s", modeName(m.key.Mode))

	case ",":
		m.key.Root = m.key.Root.Sub(theory.Interval{Semitones: 1})
		m.status = fmt.Sprintf("key: %s %s", m.key.Root.String(), modeName(m.key.Mode))
	case ".":
		m.key.Root = m.key.Root.Add(theory.Interval{Semitones: 1})
		m.status = fmt.Sprintf("key: %s %s", m.key.Root.String(), modeName(m.key.Mode))

	case "[":
		if m.bars > 1 {
			m.bars--
			m.progression = m.template.GenProgression(m.rng, m.bars, m.key.Mode)
			m.cursor = 0
		}
	case "]":
		m.bars++
		m.progression = m.template.GenProgression(m.rng, m.bars, m.key.Mode)
		m.cursor = 0

	case "s":
		m.state = StateSaving
		m.err = nil
		m.input.SetValue("progression.mid")
		m.input.Focus()
		return m, textinput.Blink

	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateGrid
		m.err = nil
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			m.progression.DeleteChordAt(m.cursor)
		} else {
			cs, err := theory.ParseChord(value)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.progression.InsertChordAt(m.cursor, cs)
		}
		m.state = StateGrid
		m.err = nil
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSaving(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateGrid
		m.err = nil
		m.input.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		if err := export.NewMIDIExporter().WriteFile(m.progression, m.key, path); err != nil {
			m.err = err
			return m, nil
		}
		m.state = StateGrid
		m.err = nil
		m.status = fmt.Sprintf("saved %s", path)
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// chordAtCursor returns the rendered chord under the cursor, or an
// empty string for a rest.
func (m Model) chordAtCursor() string {
	cs := m.progression.Sequence[m.cursor]
	if cs == nil {
		return ""
	}
	return cs.String()
}

// cycleChord replaces the chord under the cursor with the next
// candidate from the transition graph, keyed by the preceding chord.
func (m *Model) cycleChord() {
	if m.progression.Sequence[m.cursor] == nil {
		return
	}
	chordIdx := m.progression.SeqIdxToChordIdx(m.cursor)
	prev := m.progression.PrevChord(chordIdx)

	cands := m.template.Next(prev, m.key.Mode)
	if len(cands) == 0 {
		cands = []theory.ChordSpec{m.template.RandChord(m.rng, m.key.Mode)}
	}

	// Step to the candidate after the current chord, wrapping.
	current := *m.progression.Sequence[m.cursor]
	next := cands[0]
	for i, c := range cands {
		if c.Equal(current) {
			next = cands[(i+1)%len(cands)]
			break
		}
	}
	m.progression.SetChord(chordIdx, next)
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(logo())
	s.WriteString("\n")
	s.WriteString(m.viewGrid())
	s.WriteString("\n")

	switch m.state {
	case StateEditing:
		s.WriteString(statusStyle.Render("chord: "))
		s.WriteString(m.input.View())
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter: set • empty: rest • esc: cancel"))
	case StateSaving:
		s.WriteString(statusStyle.Render("save to: "))
		s.WriteString(m.input.View())
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter: save • esc: cancel"))
	default:
		s.WriteString(helpStyle.Render("←↓↑→: move • enter: edit • c: cycle • d: delete • r: regen • v: voice-lead • m: mode • ,/.: key • [/]: bars • s: save • q: quit"))
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err.Error())))
	} else if m.status != "" && m.state == StateGrid {
		s.WriteString("\n")
		s.WriteString(successStyle.Render(m.status))
	}

	return s.String()
}

func (m Model) viewGrid() string {
	var s strings.Builder

	title := fmt.Sprintf(" %s %s • %d bars • %s ",
		m.key.Root.String(), modeName(m.key.Mode), m.bars, m.progression.Resolution.String())
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	ticksPerBar := m.progression.Resolution.TicksPerBar()
	for i, cs := range m.progression.Sequence {
		label := "·"
		if cs != nil {
			label = cs.String()
		}

		switch {
		case i == m.cursor:
			s.WriteString(cursorStyle.Render(label))
		case cs == nil:
			s.WriteString(restStyle.Render(label))
		default:
			s.WriteString(cellStyle.Render(label))
		}

		if (i+1)%ticksPerBar == 0 {
			s.WriteString("\n")
		}
	}

	// Resolved notes for the chord under the cursor.
	s.WriteString("\n")
	if cs := m.progression.Sequence[m.cursor]; cs != nil {
		chord := cs.ChordForKey(m.key)
		s.WriteString(statusStyle.Render(fmt.Sprintf("%s = %s", cs.String(), chord.String())))
	} else {
		s.WriteString(statusStyle.Render("rest"))
	}

	return boxStyle.Render(s.String())
}

func modeName(mode theory.Mode) string {
	if mode == theory.Minor {
		return "minor"
	}
	return "major"
}

func logo() string {
	text := `
      _           _
   __| |_   _ ___| |_
  / _' | | | / __| __|
 | (_| | |_| \__ \ |_
  \__,_|\__,_|___/\__|
`
	return lipgloss.NewStyle().Foreground(dustPurple).Render(text)
}

// Run starts the sequencer TUI.
func Run(template *progression.ProgressionTemplate) error {
	p := tea.NewProgram(New(template), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
