package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/keys"
	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Checklist actions carried by ChecklistMsg.
const (
	ActionAdd    = "add"
	ActionToggle = "toggle"
	ActionRemove = "remove"
)

// ChecklistMsg asks the parent to change the open todo's checklist.
type ChecklistMsg struct {
	Action string
	TodoID string
	ItemID string
	Text   string
}

// EditMsg asks the parent for the edit form of the open todo.
type EditMsg struct {
	TodoID string
}

// Model is the todo detail view component.
type Model struct {
	st       *state.AppState
	todoID   string
	cursor   int
	adding   bool
	input    textinput.Model
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(st *state.AppState, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	in := textinput.New()
	in.Placeholder = "new checklist step"
	in.Prompt = "+ "
	in.Width = width - 6

	return Model{
		st:       st,
		input:    in,
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Open shows the todo with the given id.
func (m *Model) Open(todoID string) {
	m.todoID = todoID
	m.cursor = 0
	m.adding = false
	m.Refresh()
	m.viewport.GotoTop()
}

// TodoID returns the todo being shown.
func (m Model) TodoID() string {
	return m.todoID
}

// Refresh re-renders from the current state.
func (m *Model) Refresh() {
	if t, ok := m.st.Todo(m.todoID); ok && m.cursor >= len(t.Checklist) {
		m.cursor = max(0, len(t.Checklist)-1)
	}
	m.viewport.SetContent(m.renderContent())
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if m.adding && isKey {
		return m.handleInputKeys(keyMsg)
	}

	todo, ok := m.st.Todo(m.todoID)
	if isKey && ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(keyMsg, m.keys.Down):
			if m.cursor < len(todo.Checklist)-1 {
				m.cursor++
				m.Refresh()
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.Refresh()
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.New), keyMsg.String() == "a":
			m.adding = true
			m.input.Reset()
			m.Refresh()
			return m, m.input.Focus()

		case key.Matches(keyMsg, m.keys.Toggle):
			if item, ok := m.current(todo); ok {
				return m, checklistCmd(ActionToggle, todo.ID, item.ID, "")
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Delete):
			if item, ok := m.current(todo); ok {
				return m, checklistCmd(ActionRemove, todo.ID, item.ID, "")
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Edit):
			id := todo.ID
			return m, func() tea.Msg { return EditMsg{TodoID: id} }
		}
	} else if isKey && key.Matches(keyMsg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		m.Refresh()
		if text == "" {
			return m, nil
		}
		return m, checklistCmd(ActionAdd, m.todoID, "", text)
	case "esc":
		m.adding = false
		m.input.Blur()
		m.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) current(todo *model.TodoItem) (model.ChecklistItem, bool) {
	if m.cursor < 0 || m.cursor >= len(todo.Checklist) {
		return model.ChecklistItem{}, false
	}
	return todo.Checklist[m.cursor], true
}

func checklistCmd(action, todoID, itemID, text string) tea.Cmd {
	return func() tea.Msg {
		return ChecklistMsg{Action: action, TodoID: todoID, ItemID: itemID, Text: text}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if _, ok := m.st.Todo(m.todoID); !ok {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No todo selected")
	}

	if m.adding {
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.input.View())
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	todo, ok := m.st.Todo(m.todoID)
	if !ok {
		return ""
	}
	now := m.st.Now()
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := todo.Title
	if todo.IsComplete {
		title = theme.DimmedStyle.Render(title)
	}
	sections = append(sections, titleStyle.Render(title))

	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10)
	row := func(label, value string) string {
		return labelStyle.Render(label) + value
	}

	status := "open"
	if todo.IsComplete {
		status = "done"
	}
	meta := []string{
		row("Status", status),
		row("Priority", theme.PriorityStyle(todo.Priority).Render(todo.Priority.String())),
	}
	if p, ok := m.st.Project(todo.ProjectID); ok {
		meta = append(meta, row("Project", theme.ProjectDot(p.Color)+" "+p.Name))
	}
	if todo.DueDate != nil {
		due := todo.DueDate.In(now.Location()).Format("Mon Jan 02 2006")
		if todo.IsOverdue(now) {
			due = theme.OverdueStyle.Render(due + " (overdue)")
		} else {
			due = theme.DueDateStyle.Render(due)
		}
		meta = append(meta, row("Due", due))
	}
	meta = append(meta, row("Created", todo.CreatedAt.In(now.Location()).Format("Jan 02 2006 15:04")))
	sections = append(sections, strings.Join(meta, "\n"))

	if todo.Description != "" {
		sections = append(sections, section("Description", todo.Description))
	}
	if todo.Notes != "" {
		sections = append(sections, section("Notes", todo.Notes))
	}

	done, total := todo.ChecklistProgress()
	var lines []string
	for i, item := range todo.Checklist {
		box := "[ ]"
		text := item.Text
		if item.IsChecked {
			box = "[x]"
			text = theme.DimmedStyle.Render(text)
		}
		line := box + " " + text
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, theme.HelpStyle.Render("  no steps yet, press a to add one"))
	}
	sections = append(sections, section(fmt.Sprintf("Checklist %d/%d", done, total), strings.Join(lines, "\n")))

	sections = append(sections, theme.HelpStyle.Render("a add step · x toggle · d remove · e edit · esc back"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(strings.Join(sections, "\n\n"))
}

func section(heading, body string) string {
	h := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render(heading)
	return h + "\n" + body
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.input.Width = width - 6
	m.Refresh()
}
