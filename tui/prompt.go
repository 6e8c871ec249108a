package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-trkr/debug"
	"go-trkr/midi"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptTempo
	promptSave
	promptRenameSave
	promptRenameProject
)

func (m *Model) openPrompt(kind promptKind) tea.Cmd {
	m.prompt = kind
	m.input.Reset()
	switch kind {
	case promptTempo:
		m.input.Prompt = "tempo> "
		m.input.Placeholder = strconv.Itoa(m.sched().Tempo())
		m.input.CharLimit = 3
	case promptSave:
		m.input.Prompt = "save as> "
		m.input.Placeholder = "name (optional)"
		m.input.CharLimit = 32
	case promptRenameSave, promptRenameProject:
		m.input.Prompt = "rename> "
		m.input.Placeholder = ""
		m.input.CharLimit = 32
	}
	return m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.closePrompt()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.closePrompt()
		switch kind {
		case promptTempo:
			if value == "" {
				return m, nil
			}
			bpm, err := strconv.Atoi(value)
			if err != nil {
				m.status = fmt.Sprintf("bad tempo %q", value)
				return m, nil
			}
			m.sched().SetTempo(bpm)
			m.status = fmt.Sprintf("tempo %d", m.sched().Tempo())
		case promptSave:
			m.saveProject(value)
		case promptRenameSave, promptRenameProject:
			m.renameSelected(kind, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
}

func (m *Model) refreshPorts() {
	if m.Watcher != nil {
		m.ports = m.Watcher.Ports()
	} else {
		ports, err := midi.OutPorts()
		if err != nil {
			m.status = err.Error()
		}
		m.ports = ports
	}
	m.portIdx = clamp(m.portIdx, 0, max(len(m.ports)-1, 0))
}

func (m *Model) openPorts() {
	m.refreshPorts()
	if m.Sink != nil {
		for i, name := range m.ports {
			if name == m.Sink.PortName() {
				m.portIdx = i
			}
		}
	}
	m.screen = screenPorts
}

func (m *Model) updatePorts(key string) {
	switch key {
	case "esc":
		m.screen = screenArrange
	case "up", "k":
		m.portIdx = clamp(m.portIdx-1, 0, max(len(m.ports)-1, 0))
	case "down", "j":
		m.portIdx = clamp(m.portIdx+1, 0, max(len(m.ports)-1, 0))
	case "enter":
		if m.Sink == nil || len(m.ports) == 0 {
			m.status = "no output available"
			return
		}
		name := m.ports[m.portIdx]
		if err := m.Sink.SetPort(name); err != nil {
			m.status = err.Error()
			return
		}
		debug.Log("tui", "output port -> %s", name)
		m.status = "output: " + name
		m.screen = screenArrange
	}
}

func (m Model) viewPorts() string {
	dim := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fg := lipgloss.NewStyle().Foreground(m.Theme.FG())
	cursor := lipgloss.NewStyle().Background(m.Theme.Cursor()).Foreground(m.Theme.BG())

	if len(m.ports) == 0 {
		return dim.Render("no MIDI output ports")
	}
	current := ""
	if m.Sink != nil {
		current = m.Sink.PortName()
	}

	var lines []string
	lines = append(lines, fg.Render("MIDI output"))
	for i, name := range m.ports {
		mark := "  "
		if name == current {
			mark = "* "
		}
		style := fg
		if i == m.portIdx {
			style = cursor
		}
		lines = append(lines, mark+style.Render(name))
	}
	return strings.Join(lines, "\n")
}
