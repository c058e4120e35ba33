package app

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/theme"
	"github.com/nhle/todomaster/internal/ui/command"
)

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(cmd command.CommandMsg) (tea.Model, tea.Cmd) {
	switch cmd.Name {
	case "new", "todo":
		return m.startCreate()
	case "projects":
		return m.openProjects()
	case "settings", "config":
		return m.openSettings()
	case "help":
		m.previousView = ViewList
		m.currentView = ViewHelp
		return m, nil
	case "quit", "q":
		return m.quit()
	case "all":
		m.apply(m.st.SetCurrentProject(""))
		return m, nil
	case "project":
		p, ok := m.findProject(cmd.Args)
		if !ok {
			m.flash = fmt.Sprintf("no project named %q", cmd.Args)
			return m, nil
		}
		m.apply(m.st.SetCurrentProject(p.ID))
		return m, nil
	case "filter":
		f, err := state.ParseFilter(cmd.Args)
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		m.taskList.SetFilter(f)
		return m, nil
	case "sort":
		k, err := state.ParseSortKey(cmd.Args)
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		m.taskList.SetSort(k)
		return m, nil
	default:
		m.flash = fmt.Sprintf("unknown command %q", cmd.Name)
		return m, nil
	}
}

// findProject matches a project by name, ignoring case, or by id.
func (m Model) findProject(nameOrID string) (*model.Project, bool) {
	nameOrID = strings.TrimSpace(nameOrID)
	if p, ok := m.st.Project(nameOrID); ok {
		return p, true
	}
	for _, p := range m.st.Projects() {
		if strings.EqualFold(p.Name, nameOrID) {
			return p, true
		}
	}
	return nil, false
}

// cycleProject moves the selection through "all projects" followed by the
// active projects, wrapping at either end.
func (m *Model) cycleProject(delta int) {
	ids := []string{""}
	for _, p := range m.st.ActiveProjects() {
		ids = append(ids, p.ID)
	}
	i := max(slices.Index(ids, m.st.CurrentProjectID()), 0)
	next := (i + delta + len(ids)) % len(ids)
	m.apply(m.st.SetCurrentProject(ids[next]))
}

func (m Model) openProjects() (tea.Model, tea.Cmd) {
	m.projectView.Reload()
	m.previousView = m.currentView
	m.currentView = ViewProjectList
	return m, m.projectView.Init()
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m, m.configView.Init()
}

// applyConfig takes the display settings of a freshly saved configuration.
// Storage changes apply on the next start.
func (m *Model) applyConfig(cfg *model.AppConfig) {
	m.cfg = cfg
	m.configView.SetConfig(cfg)
	theme.Apply(cfg.Display.Theme)
	if f, err := state.ParseFilter(cfg.Display.DefaultFilter); err == nil {
		m.taskList.SetFilter(f)
	}
	if k, err := state.ParseSortKey(cfg.Display.DefaultSort); err == nil {
		m.taskList.SetSort(k)
	}
	m.logger.Info("settings saved")
}
