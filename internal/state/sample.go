package state

import "github.com/nhle/todomaster/internal/model"

// DefaultProjectName names the project created for a first run.
const DefaultProjectName = "My Tasks"

// NewWithSampleData returns an aggregate seeded for a first run: one
// selected project holding three example todos.
func NewWithSampleData(opts ...Option) *AppState {
	s := New(opts...)
	p := s.CreateProject(DefaultProjectName, model.ProjectOptions{})
	_ = s.SetCurrentProject(p.ID)

	today := s.now()
	samples := []struct {
		title, desc string
		priority    model.Priority
		due         bool
	}{
		{"Welcome to TodoMaster", "Press n to add a todo, x to complete it and p to manage projects.", model.PriorityHigh, true},
		{"Plan the week", "Give each task a due date and a priority.", model.PriorityMedium, true},
		{"Try a checklist", "Open a todo and break it into steps.", model.PriorityLow, false},
	}
	for _, sm := range samples {
		opts := model.TodoOptions{Description: sm.desc, Priority: sm.priority}
		if sm.due {
			due := today
			opts.DueDate = &due
		}
		// The project was created above, so this cannot fail.
		_, _ = s.CreateTodo(sm.title, p.ID, opts)
	}
	return s
}
