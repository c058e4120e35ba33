package todoform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/theme"
)

// Values is what the form collected.
type Values struct {
	Title       string
	Description string
	Notes       string
	Priority    model.Priority
	DueDate     *time.Time
	ProjectID   string
}

// TodoSubmittedMsg is dispatched when the create or edit form completes.
// EditID is empty for a new todo.
type TodoSubmittedMsg struct {
	EditID string
	Values Values
}

// TodoMoveMsg is dispatched when the move form completes.
type TodoMoveMsg struct {
	TodoID    string
	ProjectID string
}

// TodoFormCancelMsg is dispatched when the user cancels the form.
type TodoFormCancelMsg struct{}

type mode int

const (
	modeCreate mode = iota
	modeEdit
	modeMove
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	notes       string
	priority    model.Priority
	dueDate     string
	projectID   string
}

// Model is the Bubble Tea model for the todo create/edit/move form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	mode     mode
	editID   string
	projects []*model.Project
	loc      *time.Location
	width    int
	height   int
}

// New creates a new todo form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium},
		loc:    time.Local,
		width:  width,
		height: height,
	}
}

// SetProjects sets the projects offered by the project selector.
func (m *Model) SetProjects(projects []*model.Project) {
	m.projects = projects
}

// StartCreate initializes the form for a new todo in projectID.
func (m *Model) StartCreate(projectID string) tea.Cmd {
	m.mode = modeCreate
	m.editID = ""
	*m.fb = formBindings{priority: model.PriorityMedium, projectID: projectID}
	if m.fb.projectID == "" && len(m.projects) > 0 {
		m.fb.projectID = m.projects[0].ID
	}
	m.form = m.buildForm(true)
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing todo.
func (m *Model) StartEdit(todo *model.TodoItem) tea.Cmd {
	m.mode = modeEdit
	m.editID = todo.ID
	*m.fb = formBindings{
		title:       todo.Title,
		description: todo.Description,
		notes:       todo.Notes,
		priority:    todo.Priority,
		projectID:   todo.ProjectID,
	}
	if todo.DueDate != nil {
		m.fb.dueDate = todo.DueDate.In(m.loc).Format(model.DateLayout)
	}
	m.form = m.buildForm(true)
	return m.form.Init()
}

// StartMove initializes a project picker for moving todo.
func (m *Model) StartMove(todo *model.TodoItem) tea.Cmd {
	m.mode = modeMove
	m.editID = todo.ID
	*m.fb = formBindings{projectID: todo.ProjectID}
	m.form = huh.NewForm(
		huh.NewGroup(m.projectField("Move to project")),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// Update handles messages for the todo form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return TodoFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the todo form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Todo"
	switch m.mode {
	case modeEdit:
		titleText = "Edit Todo"
	case modeMove:
		titleText = "Move Todo"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm(withProject bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewText().
			Title("Notes").
			Placeholder("Optional notes...").
			Value(&m.fb.notes),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(m.validateOptionalDate),
	}
	if withProject {
		fields = append(fields, m.projectField("Project"))
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) projectField(title string) huh.Field {
	opts := make([]huh.Option[string], 0, len(m.projects))
	for _, p := range m.projects {
		if p.IsArchived && p.ID != m.fb.projectID {
			continue
		}
		opts = append(opts, huh.NewOption(theme.ProjectDot(p.Color)+" "+p.Name, p.ID))
	}
	return huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&m.fb.projectID).
		Validate(validateRequired("Project"))
}

func (m Model) handleSubmit() tea.Cmd {
	if m.mode == modeMove {
		msg := TodoMoveMsg{TodoID: m.editID, ProjectID: m.fb.projectID}
		return func() tea.Msg { return msg }
	}

	values := Values{
		Title:       strings.TrimSpace(m.fb.title),
		Description: m.fb.description,
		Notes:       m.fb.notes,
		Priority:    m.fb.priority,
		ProjectID:   m.fb.projectID,
	}
	if s := strings.TrimSpace(m.fb.dueDate); s != "" {
		if t, err := model.ParseDate(s, m.loc); err == nil {
			values.DueDate = &t
		}
	}

	msg := TodoSubmittedMsg{Values: values}
	if m.mode == modeEdit {
		msg.EditID = m.editID
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func (m Model) validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := model.ParseDate(s, m.loc); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
