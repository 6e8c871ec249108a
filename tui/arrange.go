package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-trkr/sequencer"
)

const visibleRows = 16

func (m *Model) updateArrange(key string) {
	switch key {
	case "up", "k":
		m.moveRow(-1)
	case "down", "j":
		m.moveRow(1)
	case "pgup":
		m.moveRow(-visibleRows)
	case "pgdown":
		m.moveRow(visibleRows)
	case "left", "h":
		m.ch = clamp(m.ch-1, 0, sequencer.NumChannels-1)
	case "right", "l":
		m.ch = clamp(m.ch+1, 0, sequencer.NumChannels-1)

	case "shift+up":
		m.cyclePhrase(1)
	case "shift+down":
		m.cyclePhrase(-1)
	case "shift+right":
		m.cyclePhrase(16)
	case "shift+left":
		m.cyclePhrase(-16)

	case "enter":
		id, ok := m.Arr.Get(m.row, m.ch)
		if !ok {
			id = m.lastPhrase
			m.Arr.Set(m.row, m.ch, id)
		}
		m.openPhrase(id)

	case "backspace", "delete":
		m.Arr.Clear(m.row, m.ch)

	case "p":
		m.openPorts()

	case "o":
		m.openSaves("")
	}
}

func (m *Model) moveRow(delta int) {
	m.row = clamp(m.row+delta, 0, sequencer.NumRows-1)
	if m.row < m.top {
		m.top = m.row
	}
	if m.row >= m.top+visibleRows {
		m.top = m.row - visibleRows + 1
	}
}

// cyclePhrase assigns the next/previous phrase id to the cursor cell;
// an empty cell gets the last phrase used
func (m *Model) cyclePhrase(delta int) {
	id, ok := m.Arr.Get(m.row, m.ch)
	if !ok {
		id = m.lastPhrase
	} else {
		id = ((id+delta)%sequencer.NumPhrases + sequencer.NumPhrases) % sequencer.NumPhrases
	}
	if err := m.Arr.Set(m.row, m.ch, id); err != nil {
		m.status = err.Error()
		return
	}
	m.lastPhrase = id
}

func (m Model) viewArrange(st sequencer.PlaybackState) string {
	dim := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	cursor := lipgloss.NewStyle().Background(m.Theme.Cursor()).Foreground(m.Theme.BG())
	marker := lipgloss.NewStyle().Foreground(m.Theme.Success())

	var b strings.Builder
	b.WriteString("      ")
	for c := 0; c < sequencer.NumChannels; c++ {
		b.WriteString(dim.Render(fmt.Sprintf("%-3d", c+1)))
	}
	b.WriteString("\n")

	for r := m.top; r < m.top+visibleRows && r < sequencer.NumRows; r++ {
		mark := " "
		switch {
		case st.Running && r == st.ActiveRow && st.PendingStop:
			mark = string(m.Theme.Symbols.RowStopping)
		case st.Running && r == st.ActiveRow:
			mark = string(m.Theme.Symbols.RowPlaying)
		case st.Running && r == st.PendingRow:
			mark = string(m.Theme.Symbols.RowQueued)
		}
		b.WriteString(marker.Render(mark))
		b.WriteString(" ")
		b.WriteString(dim.Render(fmt.Sprintf("%02X", r)))
		b.WriteString("  ")

		for c, id := range m.Arr.Row(r) {
			text := m.Theme.Symbols.CellEmpty
			style := dim
			if id != sequencer.NoPhrase {
				text = fmt.Sprintf("%02X", id)
				style = lipgloss.NewStyle().Foreground(m.Theme.PhraseColor(id))
			}
			if r == m.row && c == m.ch {
				style = cursor
			}
			b.WriteString(style.Render(text))
			b.WriteString(" ")
		}
		if r < m.top+visibleRows-1 && r < sequencer.NumRows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
