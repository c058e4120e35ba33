// Package projectmgr is the project manager view: it lists active and
// archived projects and drives create, rename, archive and delete through
// huh forms.
package projectmgr

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/keys"
	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/theme"
)

// ProjectListCloseMsg asks the parent to leave the project view.
type ProjectListCloseMsg struct{}

// ProjectChangedMsg reports that the project set or the selection changed.
type ProjectChangedMsg struct{}

// pending is the operation the open form will perform once completed.
type pending int

const (
	pendingNone pending = iota
	pendingCreate
	pendingRename
	pendingDelete
)

// anyColor lets the state pick a palette color.
const anyColor = ""

var archiveKey = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive/restore"))

// fields holds the values huh writes into. It lives behind a pointer so the
// bindings survive Model being copied by value.
type fields struct {
	name    string
	color   string
	confirm bool
}

// Model mutates the shared AppState directly. The parent persists through
// its subscription and only needs ProjectChangedMsg to refresh other views.
type Model struct {
	st       *state.AppState
	keys     *keys.KeyMap
	rows     []*model.Project
	archived int // trailing rows that are archived
	cursor   int
	op       pending
	target   string // project id for rename and delete
	form     *huh.Form
	in       *fields
	note     string
	width    int
	height   int
}

// New builds the view over st.
func New(st *state.AppState, k *keys.KeyMap, width, height int) Model {
	m := Model{st: st, keys: k, in: &fields{}, width: width, height: height}
	m.Reload()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Reload re-reads the projects and drops any open form. Active projects
// come first.
func (m *Model) Reload() {
	active, archived := m.st.ActiveProjects(), m.st.ArchivedProjects()
	m.rows = append(active, archived...)
	m.archived = len(archived)
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	m.op = pendingNone
	m.form = nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.SetSize(size.Width, size.Height)
		return m, nil
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		return m.listKey(k)
	}
	return m, nil
}

func (m Model) listKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.rows)
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, closeCmd
	case key.Matches(msg, m.keys.Down) && n > 0:
		m.cursor = (m.cursor + 1) % n
	case key.Matches(msg, m.keys.Up) && n > 0:
		m.cursor = (m.cursor + n - 1) % n
	case key.Matches(msg, m.keys.New):
		*m.in = fields{color: anyColor}
		return m.open(pendingCreate, "", m.nameForm(true))
	}

	p, ok := m.current()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Select):
		return m.done("", m.st.SetCurrentProject(p.ID), closeCmd)
	case key.Matches(msg, m.keys.Edit):
		*m.in = fields{name: p.Name}
		return m.open(pendingRename, p.ID, m.nameForm(false))
	case key.Matches(msg, archiveKey):
		if p.IsArchived {
			return m.done("Restored "+p.Name, m.st.UnarchiveProject(p.ID), nil)
		}
		return m.done("Archived "+p.Name, m.st.ArchiveProject(p.ID), nil)
	case key.Matches(msg, m.keys.Delete):
		*m.in = fields{}
		return m.open(pendingDelete, p.ID, m.deleteForm(p))
	}
	return m, nil
}

func closeCmd() tea.Msg { return ProjectListCloseMsg{} }

func changedCmd() tea.Msg { return ProjectChangedMsg{} }

func (m Model) current() (*model.Project, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil, false
	}
	return m.rows[m.cursor], true
}

func (m Model) open(op pending, target string, f *huh.Form) (Model, tea.Cmd) {
	m.op, m.target, m.form = op, target, f
	return m, f.Init()
}

// done records the outcome of a mutation, reloads and tells the parent.
func (m Model) done(note string, err error, then tea.Cmd) (Model, tea.Cmd) {
	m.Reload()
	if err != nil {
		m.note = "Error: " + err.Error()
		return m, nil
	}
	m.note = note
	return m, tea.Batch(changedCmd, then)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateAborted:
		m.op, m.form = pendingNone, nil
		return m, nil
	case huh.StateCompleted:
		return m.commit()
	}
	return m, cmd
}

func (m Model) commit() (Model, tea.Cmd) {
	name := strings.TrimSpace(m.in.name)
	switch m.op {
	case pendingCreate:
		p := m.st.CreateProject(name, model.ProjectOptions{Color: m.in.color})
		var cmd tea.Cmd
		m, cmd = m.done("Created "+p.Name, nil, nil)
		for i, row := range m.rows {
			if row.ID == p.ID {
				m.cursor = i
			}
		}
		return m, cmd
	case pendingRename:
		return m.done("Renamed to "+name, m.st.RenameProject(m.target, name), nil)
	case pendingDelete:
		if !m.in.confirm {
			m.op, m.form = pendingNone, nil
			return m, nil
		}
		return m.done("Project deleted", m.st.DeleteProject(m.target), nil)
	}
	m.op, m.form = pendingNone, nil
	return m, nil
}

func (m Model) nameForm(withColor bool) *huh.Form {
	group := []huh.Field{
		huh.NewInput().
			Title("Project name").
			Value(&m.in.name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("a project needs a name")
				}
				return nil
			}),
	}
	if withColor {
		opts := make([]huh.Option[string], 0, len(model.ProjectColors)+1)
		opts = append(opts, huh.NewOption("Pick for me", anyColor))
		for _, c := range model.ProjectColors {
			opts = append(opts, huh.NewOption(theme.ProjectDot(c)+" "+c, c))
		}
		group = append(group, huh.NewSelect[string]().Title("Color").Options(opts...).Value(&m.in.color))
	}
	return m.sized(huh.NewForm(huh.NewGroup(group...)))
}

func (m Model) deleteForm(p *model.Project) *huh.Form {
	return m.sized(huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Delete "+p.Name+"?").
			Description(fmt.Sprintf("This also deletes its %d todo(s).", p.TodoCount())).
			Affirmative("Delete").
			Negative("Keep").
			Value(&m.in.confirm),
	)))
}

func (m Model) sized(f *huh.Form) *huh.Form {
	return f.WithWidth(clamp(m.width-4, 40, 100)).WithHeight(max(m.height-4, 10))
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func (m Model) View() string {
	frame := lipgloss.NewStyle().Padding(1, 2)
	if m.form != nil {
		return frame.Render(m.form.View())
	}
	return frame.Width(m.width).Height(m.height).Render(m.listView())
}

func (m Model) listView() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	muted := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var b strings.Builder
	b.WriteString(heading.Render("Projects") + "\n\n")
	if len(m.rows) == 0 {
		b.WriteString(muted.Italic(true).Render("Nothing here. Press n to add a project.") + "\n")
	}

	firstArchived := len(m.rows) - m.archived
	selected := m.st.CurrentProjectID()
	for i, p := range m.rows {
		if i == firstArchived {
			b.WriteString("\n" + muted.Render("Archived") + "\n")
		}
		b.WriteString(m.row(p, i == m.cursor, p.ID == selected) + "\n")
	}

	if m.note != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.ColorYellow).Render(m.note) + "\n")
	}
	return b.String()
}

func (m Model) row(p *model.Project, focused, selected bool) string {
	text := fmt.Sprintf("%s %s  %d open", theme.ProjectDot(p.Color), p.Name, m.st.UncompletedCount(p.ID))
	if selected {
		text += "  (current)"
	}
	if p.IsArchived {
		text = theme.DimmedStyle.Render(text)
	}
	if focused {
		return theme.SelectedItemStyle.Render(text)
	}
	return theme.ListItemStyle.Render(text)
}

func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
}
