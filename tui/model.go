package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-trkr/debug"
	"go-trkr/midi"
	"go-trkr/sequencer"
	"go-trkr/theme"
	"go-trkr/widgets"
)

type screen int

const (
	screenArrange screen = iota
	screenPhrase
	screenPorts
	screenSaves
	screenProjects
)

// Session is the engine the UI edits and drives
type Session struct {
	Bank      *sequencer.Bank
	Arr       *sequencer.Arrangement
	Transport *sequencer.Transport
	Store     *sequencer.ProjectStore // nil disables save/load
	Project   string
}

type Model struct {
	Session
	Theme   *theme.Theme
	Sink    *midi.PortSink    // may be nil
	Watcher *midi.PortWatcher // may be nil
	Input   *midi.NoteInput   // may be nil

	screen   screen
	showHelp bool
	quitting bool
	status   string
	width    int
	height   int

	// arrangement cursor
	row, ch, top int
	lastPhrase   int

	// phrase editor
	phrase, step, field int
	lastPitch           uint8

	prompt promptKind
	input  textinput.Model

	ports   []string
	portIdx int

	// project browser
	browse   string // project whose saves are listed
	saves    []sequencer.SaveInfo
	saveIdx  int
	projects []string
	projIdx  int
	confirm  bool // a delete is waiting for a second d
}

// UpdateMsg is sent after every scheduler step or transport change
type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

type NoteInputMsg midi.NoteEvent

func NewModel(s Session, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	if s.Project == "" {
		s.Project = "untitled"
	}
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 24
	return Model{
		Session:   s,
		Theme:     th,
		lastPitch: 60,
		input:     ti,
	}
}

// WithPorts attaches the output sink and hot-plug watcher
func (m Model) WithPorts(sink *midi.PortSink, w *midi.PortWatcher) Model {
	m.Sink = sink
	m.Watcher = w
	return m
}

// WithInput attaches a keyboard for step entry
func (m Model) WithInput(in *midi.NoteInput) Model {
	m.Input = in
	return m
}

func ListenForUpdates(sched *sequencer.Scheduler) tea.Cmd {
	return func() tea.Msg {
		<-sched.Updates()
		return UpdateMsg{}
	}
}

func ListenForPorts(w *midi.PortWatcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-w.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func ListenForNotes(in *midi.NoteInput) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-in.Notes()
		if !ok {
			return nil
		}
		return NoteInputMsg(ev)
	}
}

func (m Model) sched() *sequencer.Scheduler {
	return m.Transport.Scheduler()
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.sched())}
	if m.Watcher != nil {
		cmds = append(cmds, ListenForPorts(m.Watcher))
	}
	if m.Input != nil {
		cmds = append(cmds, ListenForNotes(m.Input))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case UpdateMsg:
		return m, ListenForUpdates(m.sched())

	case PortEventMsg:
		event := midi.PortEvent(msg)
		if event.Type == midi.PortAdded {
			m.status = "port connected: " + event.Name
		} else {
			m.status = "port removed: " + event.Name
		}
		if m.screen == screenPorts {
			m.refreshPorts()
		}
		return m, ListenForPorts(m.Watcher)

	case NoteInputMsg:
		if m.screen == screenPhrase && m.prompt == promptNone {
			m.enterNote(msg.Note, msg.Velocity)
		}
		return m, ListenForNotes(m.Input)

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		if cmd, handled := m.handleGlobal(msg.String()); handled {
			return m, cmd
		}
		switch m.screen {
		case screenArrange:
			m.updateArrange(msg.String())
		case screenPhrase:
			m.updatePhrase(msg.String())
		case screenPorts:
			m.updatePorts(msg.String())
		case screenSaves:
			m.updateSaves(msg.String())
		case screenProjects:
			m.updateProjects(msg.String())
		}
	}
	return m, nil
}

// handleGlobal runs keys that work on every screen
func (m *Model) handleGlobal(key string) (tea.Cmd, bool) {
	sched := m.sched()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		if !m.Transport.Close() {
			debug.Warn("tui", "clock loop did not stop on quit")
		}
		return tea.Quit, true

	case " ":
		if err := m.Transport.Launch(m.row); err != nil {
			m.status = err.Error()
		}

	case ".":
		m.Transport.Stop()

	case "tab":
		mode := m.Transport.ToggleMode()
		m.status = "mode: " + mode.String()

	case "+", "=":
		sched.SetTempo(sched.Tempo() + 1)

	case "-", "_":
		sched.SetTempo(sched.Tempo() - 1)

	case "t":
		return m.openPrompt(promptTempo), true

	case "ctrl+s":
		return m.openPrompt(promptSave), true

	case "ctrl+o":
		m.loadLatest()

	case "?":
		m.showHelp = !m.showHelp

	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) saveProject(name string) {
	if m.Store == nil {
		m.status = "no project directory"
		return
	}
	doc := sequencer.Snapshot(m.Bank, m.Arr, m.sched())
	file, err := m.Store.Save(m.Project, name, doc)
	if err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	debug.Log("tui", "saved %s/%s", m.Project, file)
	m.status = "saved " + file
}

func (m *Model) loadLatest() {
	if m.Store == nil {
		m.status = "no project directory"
		return
	}
	m.loadSave(m.Project, "")
}

func (m Model) styles() (header, dim, status lipgloss.Style) {
	header = lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dim = lipgloss.NewStyle().Foreground(m.Theme.Muted())
	status = lipgloss.NewStyle().Foreground(m.Theme.Warning())
	return
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle, dimStyle, statusStyle := m.styles()
	st := m.sched().State()

	port := "no port"
	if m.Sink != nil && m.Sink.PortName() != "" {
		port = m.Sink.PortName()
		if !m.Sink.Connected() {
			port += " (idle)"
		}
	}
	header := headerStyle.Render(fmt.Sprintf("go-trkr  %-8s %-7s %3dbpm  row %02X  tick %02d",
		st.State, st.Mode, st.Tempo, st.ActiveRow, st.BarTick)) +
		dimStyle.Render("  "+m.Project+"  "+port)

	var body string
	switch m.screen {
	case screenArrange:
		body = m.viewArrange(st)
	case screenPhrase:
		body = m.viewPhrase(st)
	case screenPorts:
		body = m.viewPorts()
	case screenSaves:
		body = m.viewSaves()
	case screenProjects:
		body = m.viewProjects()
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")

	if m.prompt != promptNone {
		out.WriteString(m.input.View())
		out.WriteString("\n")
	} else if m.status != "" {
		out.WriteString(statusStyle.Render(m.status))
		out.WriteString("\n")
	}

	keyStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(m.helpSections()))
	} else {
		out.WriteString(widgets.RenderKeyLine(m.keyLine(), m.width, keyStyle, dimStyle))
	}
	return out.String()
}

func (m Model) keyLine() []widgets.KeyBinding {
	common := []widgets.KeyBinding{
		{Key: "space", Desc: "play"},
		{Key: ".", Desc: "stop"},
		{Key: "tab", Desc: "mode"},
		{Key: "t", Desc: "tempo"},
	}
	switch m.screen {
	case screenPhrase:
		return append([]widgets.KeyBinding{
			{Key: "S-↑↓", Desc: "edit"},
			{Key: "enter", Desc: "note/rest"},
			{Key: "<>", Desc: "length"},
			{Key: "esc", Desc: "back"},
		}, append(common, widgets.KeyBinding{Key: "?", Desc: "help"})...)
	case screenPorts:
		return []widgets.KeyBinding{
			{Key: "↑↓", Desc: "select"},
			{Key: "enter", Desc: "use port"},
			{Key: "esc", Desc: "back"},
		}
	case screenSaves:
		return []widgets.KeyBinding{
			{Key: "enter", Desc: "load"},
			{Key: "r", Desc: "rename"},
			{Key: "d d", Desc: "delete"},
			{Key: "←", Desc: "projects"},
			{Key: "esc", Desc: "back"},
		}
	case screenProjects:
		return []widgets.KeyBinding{
			{Key: "enter", Desc: "saves"},
			{Key: "r", Desc: "rename"},
			{Key: "d d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
		}
	}
	return append([]widgets.KeyBinding{
		{Key: "S-↑↓", Desc: "phrase"},
		{Key: "enter", Desc: "edit"},
		{Key: "p", Desc: "ports"},
		{Key: "o", Desc: "open"},
	}, append(common, widgets.KeyBinding{Key: "?", Desc: "help"})...)
}

func (m Model) helpSections() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Transport", Keys: []widgets.KeyBinding{
			{Key: "space", Desc: "play row (pattern: queue at bar end; song: start/stop)"},
			{Key: ".", Desc: "stop (pattern: at bar end)"},
			{Key: "tab", Desc: "toggle pattern/song (stops playback)"},
			{Key: "t  + -", Desc: "set / nudge tempo"},
		}},
		{Title: "Arrangement", Keys: []widgets.KeyBinding{
			{Key: "arrows hjkl", Desc: "move"},
			{Key: "shift+↑↓", Desc: "phrase -/+1"},
			{Key: "shift+←→", Desc: "phrase -/+16"},
			{Key: "enter", Desc: "edit phrase"},
			{Key: "backspace", Desc: "clear cell"},
			{Key: "p", Desc: "output port"},
		}},
		{Title: "Phrase", Keys: []widgets.KeyBinding{
			{Key: "↑↓ ←→", Desc: "step / field"},
			{Key: "shift+↑↓", Desc: "value -/+1"},
			{Key: "shift+←→", Desc: "value -/+ octave or 10"},
			{Key: "enter", Desc: "toggle note/rest"},
			{Key: "[ ]", Desc: "page"},
			{Key: "< >", Desc: "shrink / grow"},
			{Key: "pgup pgdn", Desc: "previous / next phrase"},
			{Key: "x", Desc: "clear phrase"},
			{Key: "esc", Desc: "back"},
		}},
		{Title: "Project", Keys: []widgets.KeyBinding{
			{Key: "ctrl+s", Desc: "save"},
			{Key: "ctrl+o", Desc: "load latest"},
			{Key: "o", Desc: "browse saves and projects"},
			{Key: "r  d d", Desc: "rename / delete in the browser"},
			{Key: "q", Desc: "quit"},
		}},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
