package tasklist

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/keys"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/theme"
)

// SelectedTodoMsg is sent when a user selects a todo to view details.
type SelectedTodoMsg struct {
	TodoID string
}

// NewTodoMsg asks for the create form.
type NewTodoMsg struct{}

// EditTodoMsg asks for the edit form.
type EditTodoMsg struct {
	TodoID string
}

// MoveTodoMsg asks for the move form.
type MoveTodoMsg struct {
	TodoID string
}

// ToggleTodoMsg asks to flip a todo's completion.
type ToggleTodoMsg struct {
	TodoID string
}

// DeleteTodoMsg asks to delete a todo. It is only sent after confirmation.
type DeleteTodoMsg struct {
	TodoID string
}

// Model is the main todo list view component. It reads from the shared
// AppState and reports intents as messages; the app applies them.
type Model struct {
	list          list.Model
	st            *state.AppState
	keys          *keys.KeyMap
	filter        state.Filter
	sort          state.SortKey
	confirmDelete string
	width         int
	height        int
}

// New creates a new todo list model.
func New(st *state.AppState, k *keys.KeyMap, filter state.Filter, sort state.SortKey, width, height int) Model {
	l := list.New([]list.Item{}, TodoDelegate{}, width, height-2)
	l.Title = "Todos"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	m := Model{
		list:   l,
		st:     st,
		keys:   k,
		filter: filter,
		sort:   sort,
		width:  width,
		height: height,
	}
	m.Refresh()
	return m
}

// Filter returns the active filter.
func (m Model) Filter() state.Filter { return m.filter }

// Sort returns the active sort key.
func (m Model) Sort() state.SortKey { return m.sort }

// SetFilter changes the filter and rebuilds the rows.
func (m *Model) SetFilter(f state.Filter) {
	m.filter = f
	m.Refresh()
}

// SetSort changes the sort key and rebuilds the rows.
func (m *Model) SetSort(k state.SortKey) {
	m.sort = k
	m.Refresh()
}

// Refresh rebuilds the rows from the current state, keeping the cursor on
// the same todo when it is still listed.
func (m *Model) Refresh() {
	var selectedID string
	if it, ok := m.list.SelectedItem().(TodoItem); ok {
		selectedID = it.Todo.ID
	}

	projectID := m.st.CurrentProjectID()
	now := m.st.Now()
	todos := m.st.FilteredTodos(projectID, m.filter, m.sort)
	items := make([]list.Item, len(todos))
	cursor := 0
	for i, t := range todos {
		p, _ := m.st.Project(t.ProjectID)
		items[i] = TodoItem{Todo: t, Project: p, Now: now}
		if t.ID == selectedID {
			cursor = i
		}
	}
	m.list.SetDelegate(TodoDelegate{ShowProject: projectID == ""})
	m.list.SetItems(items)
	m.list.Select(cursor)
	m.list.Title = m.title()
}

func (m Model) title() string {
	name := "All projects"
	if p, ok := m.st.CurrentProject(); ok {
		name = p.Name
	}
	return fmt.Sprintf("%s · %s · by %s", name, m.filter, m.sort)
}

// SelectedID returns the todo under the cursor.
func (m Model) SelectedID() (string, bool) {
	it, ok := m.list.SelectedItem().(TodoItem)
	if !ok {
		return "", false
	}
	return it.Todo.ID, true
}

// Confirming reports whether a delete confirmation is pending.
func (m Model) Confirming() bool {
	return m.confirmDelete != ""
}

// Update handles messages for the todo list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.confirmDelete != "" {
			return m.handleConfirmKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	// Delegate to list model for other messages
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	id := m.confirmDelete
	m.confirmDelete = ""
	switch msg.String() {
	case "y", "Y", "d":
		return m, func() tea.Msg { return DeleteTodoMsg{TodoID: id} }
	}
	return m, nil
}

// handleNormalKeys processes key input in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	id, hasSelection := m.SelectedID()

	switch {
	case key.Matches(msg, m.keys.Select):
		if !hasSelection {
			return m, nil
		}
		return m, func() tea.Msg { return SelectedTodoMsg{TodoID: id} }

	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return NewTodoMsg{} }

	case key.Matches(msg, m.keys.Edit):
		if !hasSelection {
			return m, nil
		}
		return m, func() tea.Msg { return EditTodoMsg{TodoID: id} }

	case key.Matches(msg, m.keys.Move):
		if !hasSelection {
			return m, nil
		}
		return m, func() tea.Msg { return MoveTodoMsg{TodoID: id} }

	case key.Matches(msg, m.keys.Toggle):
		if !hasSelection {
			return m, nil
		}
		return m, func() tea.Msg { return ToggleTodoMsg{TodoID: id} }

	case key.Matches(msg, m.keys.Delete):
		if hasSelection {
			m.confirmDelete = id
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		m.filter = next(state.Filters, m.filter)
		m.Refresh()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.sort = next(state.SortKeys, m.sort)
		m.Refresh()
		return m, nil
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func next[T comparable](all []T, cur T) T {
	i := slices.Index(all, cur)
	return all[(i+1)%len(all)]
}

// View renders the todo list view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	if m.confirmDelete != "" {
		title := m.confirmDelete
		if t, ok := m.st.Todo(m.confirmDelete); ok {
			title = t.Title
		}
		prompt := theme.OverdueStyle.Render(fmt.Sprintf("Delete %q? (y/n)", title))
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), prompt)
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when no todos are listed.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.filter != state.FilterAll {
		return style.Render(fmt.Sprintf("No %s todos.\nPress f to change the filter.", m.filter))
	}
	if len(m.st.Projects()) == 0 {
		return style.Render("No projects yet.\n\nPress p to create one.")
	}
	return style.Render("Nothing to do.\n\nPress n to add a todo.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
