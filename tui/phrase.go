package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-trkr/midi"
	"go-trkr/sequencer"
)

// Phrase editor columns
const (
	fieldNote = iota
	fieldVelocity
	fieldProbability
	fieldCondition
	numFields
)

func (m *Model) openPhrase(id int) {
	m.phrase = id
	m.lastPhrase = id
	m.step = clamp(m.step, 0, m.Bank.Length(id)-1)
	m.screen = screenPhrase
}

func (m *Model) updatePhrase(key string) {
	length := m.Bank.Length(m.phrase)

	switch key {
	case "esc":
		m.screen = screenArrange
	case "up", "k":
		m.step = (m.step - 1 + length) % length
	case "down", "j":
		m.step = (m.step + 1) % length
	case "left", "h":
		m.field = clamp(m.field-1, 0, numFields-1)
	case "right", "l":
		m.field = clamp(m.field+1, 0, numFields-1)
	case "[":
		m.step = clamp(m.step-sequencer.PageSize, 0, length-1)
	case "]":
		m.step = clamp(m.step+sequencer.PageSize, 0, length-1)

	case "shift+up":
		m.adjust(1, false)
	case "shift+down":
		m.adjust(-1, false)
	case "shift+right":
		m.adjust(1, true)
	case "shift+left":
		m.adjust(-1, true)

	case "enter":
		m.toggleNote()
	case "backspace", "delete":
		m.Bank.UpdateStep(m.phrase, m.step, func(s *sequencer.Step) { s.Kind = sequencer.StepRest })

	case ">":
		m.resize(length + sequencer.PageSize)
	case "<":
		m.resize(length - sequencer.PageSize)

	case "pgup":
		m.openPhrase((m.phrase - 1 + sequencer.NumPhrases) % sequencer.NumPhrases)
	case "pgdown":
		m.openPhrase((m.phrase + 1) % sequencer.NumPhrases)

	case "x":
		m.Bank.Clear(m.phrase)
		m.step = 0
		m.status = fmt.Sprintf("phrase %02X cleared", m.phrase)
	}
}

func (m *Model) resize(length int) {
	if err := m.Bank.Resize(m.phrase, length); err != nil {
		m.status = err.Error()
		return
	}
	m.step = clamp(m.step, 0, length-1)
}

// adjust nudges the value under the cursor. coarse moves notes by an
// octave and percentages by ten.
func (m *Model) adjust(dir int, coarse bool) {
	err := m.Bank.UpdateStep(m.phrase, m.step, func(s *sequencer.Step) {
		switch m.field {
		case fieldNote:
			if !s.IsNote() {
				s.Kind = sequencer.StepNote
				s.Pitch = m.lastPitch
				return
			}
			step := 1
			if coarse {
				step = 12
			}
			s.Pitch = uint8(clamp(int(s.Pitch)+dir*step, 0, sequencer.MaxPitch))
		case fieldVelocity:
			step := 1
			if coarse {
				step = 10
			}
			s.Velocity = uint8(clamp(int(s.Velocity)+dir*step, 0, sequencer.MaxVelocity))
		case fieldProbability:
			step := 1
			if coarse {
				step = 10
			}
			s.Probability = uint8(clamp(int(s.Probability)+dir*step, 0, sequencer.MaxProbability))
		case fieldCondition:
			s.Condition = sequencer.CycleCondition(s.Condition, dir)
		}
	})
	if err != nil {
		m.status = err.Error()
		return
	}
	if m.field == fieldNote {
		m.lastPitch = m.Bank.Get(m.phrase).Steps[m.step].Pitch
	}
}

func (m *Model) toggleNote() {
	m.Bank.UpdateStep(m.phrase, m.step, func(s *sequencer.Step) {
		if s.IsNote() {
			s.Kind = sequencer.StepRest
			return
		}
		s.Kind = sequencer.StepNote
		if s.Pitch == 0 {
			s.Pitch = m.lastPitch
		}
	})
}

// enterNote writes a played note at the cursor and moves to the next step
func (m *Model) enterNote(note, velocity uint8) {
	err := m.Bank.UpdateStep(m.phrase, m.step, func(s *sequencer.Step) {
		s.Kind = sequencer.StepNote
		s.Pitch = note
		s.Velocity = velocity
	})
	if err != nil {
		m.status = err.Error()
		return
	}
	m.lastPitch = note
	m.step = (m.step + 1) % m.Bank.Length(m.phrase)
}

// playedSteps returns the step indices of this phrase heard on the last tick
func (m Model) playedSteps(st sequencer.PlaybackState) map[int]bool {
	played := map[int]bool{}
	if !st.Running {
		return played
	}
	for ch, id := range m.Arr.Row(st.ActiveRow) {
		if id == m.phrase && st.Played[ch] >= 0 {
			played[st.Played[ch]] = true
		}
	}
	return played
}

func (m Model) viewPhrase(st sequencer.PlaybackState) string {
	dim := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fg := lipgloss.NewStyle().Foreground(m.Theme.FG())
	note := lipgloss.NewStyle().Foreground(m.Theme.PhraseColor(m.phrase))
	cursor := lipgloss.NewStyle().Background(m.Theme.Cursor()).Foreground(m.Theme.BG())
	marker := lipgloss.NewStyle().Foreground(m.Theme.Success())

	p := m.Bank.Get(m.phrase)
	pages := p.Length() / sequencer.PageSize
	page := m.step / sequencer.PageSize
	played := m.playedSteps(st)

	var b strings.Builder
	b.WriteString(fg.Render(fmt.Sprintf("phrase %02X", m.phrase)))
	b.WriteString(dim.Render(fmt.Sprintf("  length %d  page %d/%d", p.Length(), page+1, pages)))
	b.WriteString("\n")
	b.WriteString(dim.Render("      note vel prob cond"))
	b.WriteString("\n")

	first := page * sequencer.PageSize
	for i := first; i < first+sequencer.PageSize; i++ {
		s := p.Steps[i]

		mark := " "
		if played[i] {
			mark = string(m.Theme.Symbols.StepPlayhead)
		}
		b.WriteString(marker.Render(mark))
		b.WriteString(dim.Render(fmt.Sprintf(" %02d  ", i)))

		cells := stepCells(s, m.Theme.Symbols.StepRest)
		for f, text := range cells {
			style := dim
			if s.IsNote() {
				style = fg
				if f == fieldNote {
					style = note
				}
			}
			if i == m.step && f == m.field {
				style = cursor
			}
			b.WriteString(style.Render(text))
			b.WriteString(" ")
		}
		if s.IsNote() && (s.Probability < sequencer.MaxProbability || !s.Condition.IsAlways()) {
			b.WriteString(marker.Render(string(m.Theme.Symbols.Conditional)))
		}
		if i < first+sequencer.PageSize-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// stepCells formats the four editable columns
func stepCells(s sequencer.Step, rest string) [numFields]string {
	pitch := fmt.Sprintf("%-4s", rest)
	if s.IsNote() {
		pitch = fmt.Sprintf("%-4s", midi.NoteName(s.Pitch))
	}
	return [numFields]string{
		pitch,
		fmt.Sprintf("%3d", s.Velocity),
		fmt.Sprintf("%3d%%", s.Probability),
		fmt.Sprintf("%-3s", s.Condition),
	}
}
