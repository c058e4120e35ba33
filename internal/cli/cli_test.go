package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

// workspace is a temporary config and database shared by several runs.
type workspace struct {
	dir string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	return workspace{dir: t.TempDir()}
}

func (w workspace) dbPath() string {
	return filepath.Join(w.dir, "todomaster.db")
}

func (w workspace) runCLI(t *testing.T, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := newRootCmd(&App{now: func() time.Time { return testNow }})

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append(args,
		"--config", filepath.Join(w.dir, "config.yaml"),
		"--backend", "sqlite",
		"--db", w.dbPath(),
	))

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// mustJSON runs a command with --json and decodes its output.
func mustJSON[T any](t *testing.T, w workspace, args ...string) T {
	t.Helper()
	out, stderr, err := w.runCLI(t, append(args, "--json")...)
	require.NoError(t, err, string(stderr))
	var v T
	require.NoError(t, json.Unmarshal(out, &v), string(out))
	return v
}

func titles(todos []model.TodoRecord) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Title
	}
	return out
}

func TestFirstRunSeedsSampleData(t *testing.T) {
	w := newWorkspace(t)

	projects := mustJSON[[]model.ProjectRecord](t, w, "projects", "list")
	require.Len(t, projects, 1)
	assert.Equal(t, state.DefaultProjectName, projects[0].Name)

	todos := mustJSON[[]model.TodoRecord](t, w, "list", "--sort", "title")
	assert.Equal(t, []string{"Plan the week", "Try a checklist", "Welcome to TodoMaster"}, titles(todos))

	// The seeded state is saved by the first run, not regenerated.
	again := mustJSON[[]model.ProjectRecord](t, w, "projects", "list")
	assert.Equal(t, projects[0].ID, again[0].ID)
}

func TestTodoLifecycle(t *testing.T) {
	w := newWorkspace(t)

	work := mustJSON[model.ProjectRecord](t, w, "projects", "create", "Work", "--select")
	todo := mustJSON[model.TodoRecord](t, w, "add", "Write", "report", "--due", "2026-03-09", "--priority", "high")
	assert.Equal(t, "Write report", todo.Title)
	assert.Equal(t, work.ID, todo.ProjectID)
	assert.Equal(t, int(model.PriorityHigh), todo.Priority)

	overdue := mustJSON[[]model.TodoRecord](t, w, "list", "--filter", "overdue")
	assert.Equal(t, []string{"Write report"}, titles(overdue))

	// Any unique id prefix addresses a todo.
	done := mustJSON[[]model.TodoRecord](t, w, "done", todo.ID[:8])
	require.Len(t, done, 1)
	assert.True(t, done[0].IsComplete)

	overdue = mustJSON[[]model.TodoRecord](t, w, "list", "--filter", "overdue")
	assert.Empty(t, overdue)

	edited := mustJSON[model.TodoRecord](t, w, "edit", todo.ID, "--title", "Write final report", "--no-due")
	assert.Equal(t, "Write final report", edited.Title)
	assert.Nil(t, edited.DueDate)
	assert.True(t, edited.IsComplete)

	home := mustJSON[model.ProjectRecord](t, w, "projects", "create", "Home")
	moved := mustJSON[model.TodoRecord](t, w, "mv", todo.ID, "home")
	assert.Equal(t, home.ID, moved.ProjectID)

	inWork := mustJSON[[]model.TodoRecord](t, w, "list", "--project", "Work")
	assert.Empty(t, inWork)

	out, _, err := w.runCLI(t, "rm", todo.ID)
	require.NoError(t, err)
	assert.Contains(t, string(out), "deleted Write final report")

	_, _, err = w.runCLI(t, "show", todo.ID)
	require.Error(t, err)
	assert.True(t, state.IsNotFound(err))
}

func TestChecklistCommands(t *testing.T) {
	w := newWorkspace(t)
	mustJSON[model.ProjectRecord](t, w, "projects", "create", "Work", "--select")
	todo := mustJSON[model.TodoRecord](t, w, "add", "Pack")

	item := mustJSON[model.ChecklistItem](t, w, "check", "add", todo.ID, "passport")
	assert.Equal(t, "passport", item.Text)
	mustJSON[model.ChecklistItem](t, w, "check", "add", todo.ID, "tickets")

	toggled := mustJSON[model.TodoRecord](t, w, "check", "toggle", todo.ID, item.ID)
	require.Len(t, toggled.Checklist, 2)
	assert.True(t, toggled.Checklist[0].IsChecked)
	assert.False(t, toggled.Checklist[1].IsChecked)

	out, _, err := w.runCLI(t, "show", todo.ID)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Checklist 1/2")
	assert.Contains(t, string(out), "[x] passport")

	removed := mustJSON[model.TodoRecord](t, w, "check", "rm", todo.ID, item.ID)
	require.Len(t, removed.Checklist, 1)
	assert.Equal(t, "tickets", removed.Checklist[0].Text)

	_, _, err = w.runCLI(t, "check", "toggle", todo.ID, "missing")
	require.Error(t, err)
	assert.True(t, state.IsNotFound(err))
}

func TestProjectCommands(t *testing.T) {
	w := newWorkspace(t)
	mustJSON[model.ProjectRecord](t, w, "projects", "create", "Errands", "--select")
	mustJSON[model.TodoRecord](t, w, "add", "Buy milk")
	mustJSON[model.TodoRecord](t, w, "add", "Post letter")

	renamed := mustJSON[model.ProjectRecord](t, w, "projects", "rename", "errands", "Chores")
	assert.Equal(t, "Chores", renamed.Name)

	archived := mustJSON[model.ProjectRecord](t, w, "projects", "archive", "Chores")
	assert.True(t, archived.IsArchived)

	active := mustJSON[[]model.ProjectRecord](t, w, "projects", "list")
	assert.Len(t, active, 1)
	all := mustJSON[[]model.ProjectRecord](t, w, "projects", "list", "--all")
	assert.Len(t, all, 2)

	mustJSON[model.ProjectRecord](t, w, "projects", "unarchive", "Chores")

	deleted := mustJSON[map[string]any](t, w, "projects", "delete", "Chores")
	assert.EqualValues(t, 2, deleted["deletedTodos"])

	// Only the sample todos remain.
	todos := mustJSON[[]model.TodoRecord](t, w, "list", "--project", "all")
	assert.Len(t, todos, 3)

	_, _, err := w.runCLI(t, "projects", "select", "Chores")
	require.Error(t, err)
	assert.True(t, state.IsNotFound(err))
}

func TestCounts(t *testing.T) {
	w := newWorkspace(t)
	mustJSON[model.ProjectRecord](t, w, "projects", "create", "Work", "--select")
	mustJSON[model.TodoRecord](t, w, "add", "Late", "--due", "2026-03-01")

	c := mustJSON[counts](t, w, "counts")
	// Two sample todos are due today, which also makes them overdue.
	assert.Equal(t, 2, c.Today)
	assert.Equal(t, 2, c.Week)
	assert.Equal(t, 3, c.Overdue)
	assert.Equal(t, 4, c.Uncompleted)

	c = mustJSON[counts](t, w, "counts", "--project", "Work")
	assert.Equal(t, 1, c.Uncompleted)
}

func TestInputErrors(t *testing.T) {
	w := newWorkspace(t)

	_, _, err := w.runCLI(t, "add", "x", "--priority", "urgent", "--project", state.DefaultProjectName)
	require.ErrorIs(t, err, model.ErrInvalidPriority)

	_, _, err = w.runCLI(t, "add", "x", "--due", "tomorrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")

	_, _, err = w.runCLI(t, "list", "--filter", "someday")
	require.Error(t, err)

	_, _, err = w.runCLI(t, "edit", "x", "--due", "2026-01-01", "--no-due")
	require.Error(t, err)
}

func TestExportImport(t *testing.T) {
	src := newWorkspace(t)
	mustJSON[model.ProjectRecord](t, src, "projects", "create", "Work", "--select")
	mustJSON[model.TodoRecord](t, src, "add", "Ship it")

	file := filepath.Join(src.dir, "export.json")
	_, _, err := src.runCLI(t, "export", "--out", file)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"allTodos"`)

	dst := newWorkspace(t)
	res := mustJSON[map[string]int](t, dst, "import", file)
	assert.Equal(t, 2, res["projects"])
	assert.Equal(t, 4, res["todos"])

	todos := mustJSON[[]model.TodoRecord](t, dst, "list", "--project", "Work")
	assert.Equal(t, []string{"Ship it"}, titles(todos))

	bad := filepath.Join(dst.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"projects": 3}`), 0o600))
	_, _, err = dst.runCLI(t, "import", bad)
	require.Error(t, err)

	// The rejected document left the imported state alone.
	todos = mustJSON[[]model.TodoRecord](t, dst, "list", "--project", "Work")
	assert.Equal(t, []string{"Ship it"}, titles(todos))
}

func TestClear(t *testing.T) {
	w := newWorkspace(t)
	mustJSON[model.ProjectRecord](t, w, "projects", "create", "Work")

	_, _, err := w.runCLI(t, "clear", "--yes")
	require.NoError(t, err)

	out, _, err := w.runCLI(t, "export")
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(string(out)))
}

func TestTableOutput(t *testing.T) {
	w := newWorkspace(t)
	out, _, err := w.runCLI(t, "list", "--project", "all")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Welcome to TodoMaster")
	assert.Contains(t, string(out), "TITLE")
}
