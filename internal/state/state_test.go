package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todomaster/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestState(t *testing.T) (*AppState, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)}
	s := New(
		WithClock(clock.Now),
		WithIDGenerator(seqIDs()),
		WithColorPicker(func() string { return "#3b82f6" }),
	)
	return s, clock
}

// assertIntegrity checks that project and todo references agree in both
// directions.
func assertIntegrity(t *testing.T, s *AppState) {
	t.Helper()
	for _, p := range s.Projects() {
		seen := map[string]bool{}
		for _, id := range p.TodoIDs {
			todo, ok := s.Todo(id)
			require.True(t, ok, "project %s lists missing todo %s", p.ID, id)
			assert.Equal(t, p.ID, todo.ProjectID)
			assert.False(t, seen[id], "duplicate todo %s in project %s", id, p.ID)
			seen[id] = true
		}
	}
	for _, todo := range s.Todos() {
		p, ok := s.Project(todo.ProjectID)
		require.True(t, ok, "todo %s references missing project %s", todo.ID, todo.ProjectID)
		assert.True(t, p.HasTodo(todo.ID))
	}
	if id := s.CurrentProjectID(); id != "" {
		_, ok := s.Project(id)
		assert.True(t, ok, "selection points at missing project %s", id)
	}
}

func TestCreateTodoRequiresProject(t *testing.T) {
	s, _ := newTestState(t)

	_, err := s.CreateTodo("orphan", "nope", model.TodoOptions{})
	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindProject, nf.Kind)
	assert.Equal(t, 0, s.Len())

	p := s.CreateProject("Work", model.ProjectOptions{})
	todo, err := s.CreateTodo("Write report", p.ID, model.TodoOptions{Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, []string{todo.ID}, p.TodoIDs)
	assert.Equal(t, "#3b82f6", p.Color)
	assertIntegrity(t, s)
}

func TestDeleteProjectCascades(t *testing.T) {
	s, _ := newTestState(t)
	first := s.CreateProject("First", model.ProjectOptions{})
	second := s.CreateProject("Second", model.ProjectOptions{})
	_, err := s.CreateTodo("a", first.ID, model.TodoOptions{})
	require.NoError(t, err)
	kept, err := s.CreateTodo("b", second.ID, model.TodoOptions{})
	require.NoError(t, err)
	require.NoError(t, s.SetCurrentProject(first.ID))

	require.NoError(t, s.DeleteProject(first.ID))

	todos := s.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, kept.ID, todos[0].ID)
	assert.Empty(t, s.CurrentProjectID())
	_, ok := s.CurrentProject()
	assert.False(t, ok)
	assertIntegrity(t, s)

	require.ErrorIs(t, s.DeleteProject(first.ID), ErrNotFound)
}

func TestDeleteProjectKeepsOtherSelection(t *testing.T) {
	s, _ := newTestState(t)
	first := s.CreateProject("First", model.ProjectOptions{})
	second := s.CreateProject("Second", model.ProjectOptions{})
	require.NoError(t, s.SetCurrentProject(second.ID))

	require.NoError(t, s.DeleteProject(first.ID))
	assert.Equal(t, second.ID, s.CurrentProjectID())
}

func TestDeleteTodo(t *testing.T) {
	s, _ := newTestState(t)
	p := s.CreateProject("Work", model.ProjectOptions{})
	a, _ := s.CreateTodo("a", p.ID, model.TodoOptions{})
	b, _ := s.CreateTodo("b", p.ID, model.TodoOptions{})

	require.NoError(t, s.DeleteTodo(a.ID))
	assert.Equal(t, []string{b.ID}, p.TodoIDs)
	_, ok := s.Todo(a.ID)
	assert.False(t, ok)
	assertIntegrity(t, s)

	require.ErrorIs(t, s.DeleteTodo(a.ID), ErrNotFound)
}

func TestMoveTodoToProject(t *testing.T) {
	s, _ := newTestState(t)
	src := s.CreateProject("Src", model.ProjectOptions{})
	dst := s.CreateProject("Dst", model.ProjectOptions{})
	todo, _ := s.CreateTodo("a", src.ID, model.TodoOptions{})

	require.NoError(t, s.MoveTodoToProject(todo.ID, dst.ID))
	assert.Empty(t, src.TodoIDs)
	assert.Equal(t, []string{todo.ID}, dst.TodoIDs)
	assert.Equal(t, dst.ID, todo.ProjectID)
	assertIntegrity(t, s)

	// Same project again: nothing changes.
	require.NoError(t, s.MoveTodoToProject(todo.ID, dst.ID))
	assert.Equal(t, []string{todo.ID}, dst.TodoIDs)
}

func TestMoveTodoToProjectFailureChangesNothing(t *testing.T) {
	s, _ := newTestState(t)
	src := s.CreateProject("Src", model.ProjectOptions{})
	todo, _ := s.CreateTodo("a", src.ID, model.TodoOptions{})

	err := s.MoveTodoToProject(todo.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{todo.ID}, src.TodoIDs)
	assert.Equal(t, src.ID, todo.ProjectID)

	require.ErrorIs(t, s.MoveTodoToProject("missing", src.ID), ErrNotFound)
	assertIntegrity(t, s)
}

func TestUpdateTodoPatch(t *testing.T) {
	s, _ := newTestState(t)
	p := s.CreateProject("Work", model.ProjectOptions{})
	due := s.Now().AddDate(0, 0, 2)
	todo, _ := s.CreateTodo("a", p.ID, model.TodoOptions{DueDate: &due, Notes: "keep"})

	title := "renamed"
	high := model.PriorityHigh
	done := true
	require.NoError(t, s.UpdateTodo(todo.ID, model.TodoPatch{Title: &title, Priority: &high, IsComplete: &done}))
	assert.Equal(t, "renamed", todo.Title)
	assert.Equal(t, model.PriorityHigh, todo.Priority)
	assert.True(t, todo.IsComplete)
	assert.Equal(t, "keep", todo.Notes)
	require.NotNil(t, todo.DueDate)

	require.NoError(t, s.UpdateTodo(todo.ID, model.TodoPatch{SetDueDate: true}))
	assert.Nil(t, todo.DueDate)

	bad := model.Priority(5)
	other := "ignored"
	err := s.UpdateTodo(todo.ID, model.TodoPatch{Title: &other, Priority: &bad})
	require.ErrorIs(t, err, model.ErrInvalidPriority)
	assert.Equal(t, "renamed", todo.Title)

	require.ErrorIs(t, s.UpdateTodo("missing", model.TodoPatch{Title: &title}), ErrNotFound)
}

func TestChecklistThroughAggregate(t *testing.T) {
	s, _ := newTestState(t)
	p := s.CreateProject("Work", model.ProjectOptions{})
	todo, _ := s.CreateTodo("a", p.ID, model.TodoOptions{})

	item, err := s.AddChecklistItem(todo.ID, "step")
	require.NoError(t, err)
	require.NoError(t, s.ToggleChecklistItem(todo.ID, item.ID))
	assert.True(t, todo.Checklist[0].IsChecked)

	err = s.ToggleChecklistItem(todo.ID, "nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindChecklistItem, nf.Kind)

	require.NoError(t, s.RemoveChecklistItem(todo.ID, item.ID))
	assert.Empty(t, todo.Checklist)

	_, err = s.AddChecklistItem("missing", "x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveKeepsTodos(t *testing.T) {
	s, _ := newTestState(t)
	p := s.CreateProject("Work", model.ProjectOptions{})
	other := s.CreateProject("Home", model.ProjectOptions{})
	_, _ = s.CreateTodo("a", p.ID, model.TodoOptions{})

	require.NoError(t, s.ArchiveProject(p.ID))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []*model.Project{other}, s.ActiveProjects())
	assert.Equal(t, []*model.Project{p}, s.ArchivedProjects())

	require.NoError(t, s.UnarchiveProject(p.ID))
	assert.Len(t, s.ActiveProjects(), 2)

	require.NoError(t, s.RenameProject(p.ID, "Office"))
	assert.Equal(t, "Office", p.Name)
	require.ErrorIs(t, s.RenameProject("missing", "x"), ErrNotFound)
}

func TestSetCurrentProject(t *testing.T) {
	s, _ := newTestState(t)
	p := s.CreateProject("Work", model.ProjectOptions{})

	require.NoError(t, s.SetCurrentProject(p.ID))
	got, ok := s.CurrentProject()
	require.True(t, ok)
	assert.Equal(t, p, got)

	require.ErrorIs(t, s.SetCurrentProject("missing"), ErrNotFound)
	assert.Equal(t, p.ID, s.CurrentProjectID())

	require.NoError(t, s.SetCurrentProject(""))
	assert.Empty(t, s.CurrentProjectID())
}

func TestSubscribe(t *testing.T) {
	s, _ := newTestState(t)
	var events []Event
	unsubscribe := s.Subscribe(func(e Event) { events = append(events, e) })

	p := s.CreateProject("Work", model.ProjectOptions{})
	todo, _ := s.CreateTodo("a", p.ID, model.TodoOptions{})
	_ = s.DeleteTodo("missing")
	require.NoError(t, s.ToggleTodoComplete(todo.ID))

	assert.Equal(t, []Event{
		{Kind: ProjectCreated, ID: p.ID},
		{Kind: TodoCreated, ID: todo.ID},
		{Kind: TodoUpdated, ID: todo.ID},
	}, events)

	unsubscribe()
	require.NoError(t, s.DeleteTodo(todo.ID))
	assert.Len(t, events, 3)
}

func TestReferentialIntegrityUnderRandomOps(t *testing.T) {
	s, _ := newTestState(t)
	var projects []string
	for i := range 60 {
		switch i % 6 {
		case 0, 3:
			projects = append(projects, s.CreateProject(fmt.Sprintf("p%d", i), model.ProjectOptions{}).ID)
		case 1, 4:
			if len(projects) > 0 {
				_, _ = s.CreateTodo(fmt.Sprintf("t%d", i), projects[i%len(projects)], model.TodoOptions{})
			}
		case 2:
			todos := s.Todos()
			if len(todos) > 0 && len(projects) > 0 {
				_ = s.MoveTodoToProject(todos[0].ID, projects[len(projects)-1])
			}
		case 5:
			if len(projects) > 2 {
				_ = s.DeleteProject(projects[1])
				projects = append(projects[:1], projects[2:]...)
			}
		}
		assertIntegrity(t, s)
	}
}
