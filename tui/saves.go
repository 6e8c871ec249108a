package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-trkr/debug"
)

// openSaves shows the saves of project (the open one when empty)
func (m *Model) openSaves(project string) {
	if m.Store == nil {
		m.status = "no project directory"
		return
	}
	if project == "" {
		project = m.Project
	}
	m.browse = project
	m.confirm = false
	m.refreshSaves()
	m.screen = screenSaves
}

func (m *Model) refreshSaves() {
	saves, err := m.Store.ListSaves(m.browse)
	if err != nil {
		m.status = err.Error()
	}
	m.saves = saves
	m.saveIdx = clamp(m.saveIdx, 0, max(len(m.saves)-1, 0))
}

func (m *Model) openProjects() {
	projects, err := m.Store.ListProjects()
	if err != nil {
		m.status = err.Error()
	}
	m.projects = projects
	m.projIdx = 0
	for i, name := range projects {
		if name == m.browse {
			m.projIdx = i
		}
	}
	m.confirm = false
	m.screen = screenProjects
}

func (m *Model) updateSaves(key string) {
	if key != "d" {
		m.confirm = false
	}
	switch key {
	case "esc":
		m.screen = screenArrange
	case "left", "h":
		m.openProjects()
	case "up", "k":
		m.saveIdx = clamp(m.saveIdx-1, 0, max(len(m.saves)-1, 0))
	case "down", "j":
		m.saveIdx = clamp(m.saveIdx+1, 0, max(len(m.saves)-1, 0))
	case "enter":
		if len(m.saves) == 0 {
			return
		}
		m.loadSave(m.browse, m.saves[m.saveIdx].Filename)
	case "r":
		if len(m.saves) > 0 {
			m.openPrompt(promptRenameSave)
			m.input.SetValue(m.saves[m.saveIdx].Name)
		}
	case "d":
		if len(m.saves) == 0 {
			return
		}
		file := m.saves[m.saveIdx].Filename
		if !m.confirm {
			m.confirm = true
			m.status = "press d again to delete " + file
			return
		}
		m.confirm = false
		if err := m.Store.DeleteSave(m.browse, file); err != nil {
			m.status = "delete failed: " + err.Error()
			return
		}
		debug.Log("tui", "deleted %s/%s", m.browse, file)
		m.status = "deleted " + file
		m.refreshSaves()
	}
}

func (m *Model) updateProjects(key string) {
	if key != "d" {
		m.confirm = false
	}
	switch key {
	case "esc":
		m.screen = screenArrange
	case "up", "k":
		m.projIdx = clamp(m.projIdx-1, 0, max(len(m.projects)-1, 0))
	case "down", "j":
		m.projIdx = clamp(m.projIdx+1, 0, max(len(m.projects)-1, 0))
	case "enter", "right", "l":
		if len(m.projects) > 0 {
			m.openSaves(m.projects[m.projIdx])
		}
	case "r":
		if len(m.projects) > 0 {
			m.openPrompt(promptRenameProject)
			m.input.SetValue(m.projects[m.projIdx])
		}
	case "d":
		if len(m.projects) == 0 {
			return
		}
		name := m.projects[m.projIdx]
		if !m.confirm {
			m.confirm = true
			m.status = "press d again to delete project " + name
			return
		}
		m.confirm = false
		if err := m.Store.DeleteProject(name); err != nil {
			m.status = "delete failed: " + err.Error()
			return
		}
		debug.Log("tui", "deleted project %s", name)
		m.status = "deleted project " + name
		m.openProjects()
	}
}

// renameSelected applies the rename prompt to the selected save or project
func (m *Model) renameSelected(kind promptKind, value string) {
	switch kind {
	case promptRenameSave:
		old := m.saves[m.saveIdx].Filename
		file, err := m.Store.RenameSave(m.browse, old, value)
		if err != nil {
			m.status = "rename failed: " + err.Error()
			return
		}
		m.status = "renamed to " + file
		m.refreshSaves()
	case promptRenameProject:
		old := m.projects[m.projIdx]
		name, err := m.Store.RenameProject(old, value)
		if err != nil {
			m.status = "rename failed: " + err.Error()
			return
		}
		if m.Project == old {
			m.Project = name
		}
		if m.browse == old {
			m.browse = name
		}
		m.status = "project renamed to " + name
		m.openProjects()
	}
}

func (m *Model) loadSave(project, file string) {
	doc, err := m.Store.Load(project, file)
	if err != nil {
		m.status = "load failed: " + err.Error()
		return
	}
	if err := doc.Apply(m.Bank, m.Arr, m.sched()); err != nil {
		m.status = "load failed: " + err.Error()
		return
	}
	m.Project = project
	debug.Log("tui", "loaded %s/%s", project, file)
	m.status = "loaded " + project
	if file != "" {
		m.status += "/" + file
	}
	m.screen = screenArrange
}

func (m Model) viewList(title string, items []string, selected int, marked string) string {
	dim := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fg := lipgloss.NewStyle().Foreground(m.Theme.FG())
	cursor := lipgloss.NewStyle().Background(m.Theme.Cursor()).Foreground(m.Theme.BG())

	lines := []string{fg.Render(title)}
	if len(items) == 0 {
		lines = append(lines, dim.Render("  (empty)"))
	}
	for i, item := range items {
		mark := "  "
		if item == marked {
			mark = "* "
		}
		style := fg
		if i == selected {
			style = cursor
		}
		lines = append(lines, mark+style.Render(item))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewSaves() string {
	items := make([]string, len(m.saves))
	for i, s := range m.saves {
		name := s.Name
		if name == "" {
			name = "-"
		}
		items[i] = fmt.Sprintf("%s  %s", s.Timestamp.Format("2006-01-02 15:04:05"), name)
	}
	return m.viewList("saves of "+m.browse, items, m.saveIdx, "")
}

func (m Model) viewProjects() string {
	return m.viewList("projects", m.projects, m.projIdx, m.Project)
}
