package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/ui/command"
	"github.com/nhle/todomaster/internal/ui/detail"
	"github.com/nhle/todomaster/internal/ui/tasklist"
	"github.com/nhle/todomaster/internal/ui/todoform"
)

func newTestModel(t *testing.T) (Model, *state.AppState) {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	st := state.NewWithSampleData(state.WithClock(func() time.Time { return now }))
	m := New(Options{State: st})
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40}), st
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleFromList(t *testing.T) {
	m, st := newTestModel(t)
	id, ok := m.taskList.SelectedID()
	require.True(t, ok)

	next, cmd := m.Update(keyMsg("x"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, tasklist.ToggleTodoMsg{TodoID: id}, msg)

	m = update(t, next.(Model), msg)
	todo, ok := st.Todo(id)
	require.True(t, ok)
	assert.True(t, todo.IsComplete)
	assert.Equal(t, ViewList, m.currentView)
}

func TestSubmitCreatesTodo(t *testing.T) {
	m, st := newTestModel(t)
	projectID := st.CurrentProjectID()
	before := st.Len()

	due := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	m = update(t, m, todoform.TodoSubmittedMsg{Values: todoform.Values{
		Title:     "Write report",
		Priority:  model.PriorityHigh,
		DueDate:   &due,
		ProjectID: projectID,
	}})

	assert.Equal(t, before+1, st.Len())
	var found *model.TodoItem
	for _, td := range st.TodosForProject(projectID) {
		if td.Title == "Write report" {
			found = td
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, model.PriorityHigh, found.Priority)
	assert.Empty(t, m.flash)
}

func TestSubmitEditMovesTodo(t *testing.T) {
	m, st := newTestModel(t)
	other := st.CreateProject("Errands", model.ProjectOptions{})
	id, _ := m.taskList.SelectedID()

	m = update(t, m, todoform.TodoSubmittedMsg{EditID: id, Values: todoform.Values{
		Title:     "Renamed",
		Priority:  model.PriorityLow,
		ProjectID: other.ID,
	}})

	todo, ok := st.Todo(id)
	require.True(t, ok)
	assert.Equal(t, "Renamed", todo.Title)
	assert.Equal(t, other.ID, todo.ProjectID)
	assert.Nil(t, todo.DueDate)
	assert.True(t, other.HasTodo(id))
}

func TestChecklistMessages(t *testing.T) {
	m, st := newTestModel(t)
	id, _ := m.taskList.SelectedID()

	m = update(t, m, detail.ChecklistMsg{Action: detail.ActionAdd, TodoID: id, Text: "step one"})
	todo, _ := st.Todo(id)
	require.Len(t, todo.Checklist, 1)

	itemID := todo.Checklist[0].ID
	m = update(t, m, detail.ChecklistMsg{Action: detail.ActionToggle, TodoID: id, ItemID: itemID})
	assert.True(t, todo.Checklist[0].IsChecked)

	m = update(t, m, detail.ChecklistMsg{Action: detail.ActionRemove, TodoID: id, ItemID: itemID})
	assert.Empty(t, todo.Checklist)

	update(t, m, detail.ChecklistMsg{Action: detail.ActionToggle, TodoID: id, ItemID: "missing"})
}

func TestFailedActionShowsFlash(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tasklist.DeleteTodoMsg{TodoID: "missing"})
	assert.Contains(t, m.errorText(), "missing")
}

func TestCycleProjects(t *testing.T) {
	m, st := newTestModel(t)
	first := st.CurrentProjectID()
	second := st.CreateProject("Errands", model.ProjectOptions{})

	m = update(t, m, keyMsg("]"))
	assert.Equal(t, second.ID, st.CurrentProjectID())

	m = update(t, m, keyMsg("]"))
	assert.Equal(t, "", st.CurrentProjectID())

	m = update(t, m, keyMsg("["))
	assert.Equal(t, second.ID, st.CurrentProjectID())

	m = update(t, m, keyMsg("0"))
	assert.Equal(t, "", st.CurrentProjectID())

	update(t, m, keyMsg("]"))
	assert.Equal(t, first, st.CurrentProjectID())
}

func TestPaletteCommands(t *testing.T) {
	m, st := newTestModel(t)
	st.CreateProject("Errands", model.ProjectOptions{})

	m = update(t, m, command.CommandMsg{Name: "filter", Args: "completed"})
	assert.Equal(t, state.FilterCompleted, m.taskList.Filter())

	m = update(t, m, command.CommandMsg{Name: "sort", Args: "priority"})
	assert.Equal(t, state.SortPriority, m.taskList.Sort())

	m = update(t, m, command.CommandMsg{Name: "project", Args: "errands"})
	p, ok := st.CurrentProject()
	require.True(t, ok)
	assert.Equal(t, "Errands", p.Name)

	m = update(t, m, command.CommandMsg{Name: "filter", Args: "someday"})
	assert.Contains(t, m.flash, "unknown filter")

	m = update(t, m, command.CommandMsg{Name: "bogus"})
	assert.Contains(t, m.flash, "unknown command")
}

func TestNewWithoutProjects(t *testing.T) {
	m := New(Options{State: state.New()})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, tasklist.NewTodoMsg{})
	assert.Equal(t, ViewList, m.currentView)
	assert.NotEmpty(t, m.flash)
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyMsg("?"))
	assert.Equal(t, ViewHelp, m.currentView)
	m = update(t, m, keyMsg("?"))
	assert.Equal(t, ViewList, m.currentView)
}

func TestViewShowsCounters(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "today 2")
	assert.Contains(t, out, state.DefaultProjectName)
}

func TestQuitWithoutSaver(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).quitting)
	assert.Equal(t, tea.Quit(), cmd())
}
