package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/ui/detail"
	"github.com/nhle/todomaster/internal/ui/todoform"
)

// startCreate opens the form for a new todo in the current project.
func (m Model) startCreate() (tea.Model, tea.Cmd) {
	if len(m.st.ActiveProjects()) == 0 {
		m.flash = "create a project first (p)"
		return m, nil
	}
	m.todoFormView.SetProjects(m.st.Projects())
	m.formReturn = m.currentView
	m.currentView = ViewTodoForm
	return m, m.todoFormView.StartCreate(m.st.CurrentProjectID())
}

// startEdit opens the form prefilled with the todo's fields.
func (m Model) startEdit(todoID string) (tea.Model, tea.Cmd) {
	todo, ok := m.st.Todo(todoID)
	if !ok {
		return m, nil
	}
	m.todoFormView.SetProjects(m.st.Projects())
	m.formReturn = m.currentView
	m.currentView = ViewTodoForm
	return m, m.todoFormView.StartEdit(todo)
}

// startMove opens the project picker for the todo.
func (m Model) startMove(todoID string) (tea.Model, tea.Cmd) {
	todo, ok := m.st.Todo(todoID)
	if !ok {
		return m, nil
	}
	m.todoFormView.SetProjects(m.st.Projects())
	m.formReturn = m.currentView
	m.currentView = ViewTodoForm
	return m, m.todoFormView.StartMove(todo)
}

// submitTodo creates or updates a todo from the form values. An edit that
// picks another project also moves the todo.
func (m *Model) submitTodo(msg todoform.TodoSubmittedMsg) {
	v := msg.Values
	if msg.EditID == "" {
		_, err := m.st.CreateTodo(v.Title, v.ProjectID, model.TodoOptions{
			Description: v.Description,
			DueDate:     v.DueDate,
			Priority:    v.Priority,
			Notes:       v.Notes,
		})
		m.apply(err)
		return
	}

	patch := model.TodoPatch{
		Title:       &v.Title,
		Description: &v.Description,
		Notes:       &v.Notes,
		Priority:    &v.Priority,
		SetDueDate:  true,
		DueDate:     v.DueDate,
	}
	if err := m.st.UpdateTodo(msg.EditID, patch); err != nil {
		m.apply(err)
		return
	}
	if t, ok := m.st.Todo(msg.EditID); ok && v.ProjectID != "" && t.ProjectID != v.ProjectID {
		m.apply(m.st.MoveTodoToProject(msg.EditID, v.ProjectID))
		return
	}
	m.apply(nil)
}

// applyChecklist performs a checklist change requested by the detail view.
func (m *Model) applyChecklist(msg detail.ChecklistMsg) {
	var err error
	switch msg.Action {
	case detail.ActionAdd:
		_, err = m.st.AddChecklistItem(msg.TodoID, msg.Text)
	case detail.ActionToggle:
		err = m.st.ToggleChecklistItem(msg.TodoID, msg.ItemID)
	case detail.ActionRemove:
		err = m.st.RemoveChecklistItem(msg.TodoID, msg.ItemID)
	}
	m.apply(err)
}

// apply reports a failed mutation in the status bar and re-renders the
// views that read the state.
func (m *Model) apply(err error) {
	if err != nil {
		m.flash = err.Error()
		m.logger.Warn("action failed", "err", err)
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.taskList.Refresh()
	m.detail.Refresh()
	m.commandView.SetProjectNames(m.projectNames())
}

func (m Model) projectNames() []string {
	projects := m.st.ActiveProjects()
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return names
}
