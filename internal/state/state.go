// Package state holds the in-memory application aggregate: every project,
// every todo and the current project selection, kept referentially
// consistent across all mutations.
//
// An AppState is owned by a single goroutine. Callers that share one across
// goroutines must serialize access themselves.
package state

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/todomaster/internal/model"
)

// AppState is the aggregate root.
type AppState struct {
	projects     map[string]*model.Project
	projectOrder []string
	todos        map[string]*model.TodoItem
	todoOrder    []string
	currentID    string

	now      func() time.Time
	newID    func() string
	pick     func() string
	locale   language.Tag
	collator *collate.Collator

	subs    []subscriber
	nextSub int
}

// Option configures an AppState.
type Option func(*AppState)

// WithClock overrides the time source used for creation stamps and date
// filters.
func WithClock(now func() time.Time) Option {
	return func(s *AppState) { s.now = now }
}

// WithIDGenerator overrides uuid generation for projects and todos.
func WithIDGenerator(gen func() string) Option {
	return func(s *AppState) { s.newID = gen }
}

// WithColorPicker overrides the random palette pick for new projects.
func WithColorPicker(pick func() string) Option {
	return func(s *AppState) { s.pick = pick }
}

// WithLocale sets the language used to collate titles.
func WithLocale(tag language.Tag) Option {
	return func(s *AppState) { s.locale = tag }
}

// New returns an empty aggregate with "all projects" selected.
func New(opts ...Option) *AppState {
	s := &AppState{
		projects: make(map[string]*model.Project),
		todos:    make(map[string]*model.TodoItem),
		now:      time.Now,
		newID:    uuid.NewString,
		pick:     model.RandomProjectColor,
		locale:   language.English,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.collator = collate.New(s.locale)
	return s
}

// Now returns the aggregate's current time.
func (s *AppState) Now() time.Time {
	return s.now()
}

// CreateProject adds a new active project and returns it.
func (s *AppState) CreateProject(name string, opts model.ProjectOptions) *model.Project {
	p := model.NewProject(s.newID(), name, opts, s.now(), s.pick)
	s.projects[p.ID] = p
	s.projectOrder = append(s.projectOrder, p.ID)
	s.emit(ProjectCreated, p.ID)
	return p
}

// CreateTodo adds a todo to an existing project. Nothing is created when
// the project is unknown.
func (s *AppState) CreateTodo(title, projectID string, opts model.TodoOptions) (*model.TodoItem, error) {
	p, ok := s.projects[projectID]
	if !ok {
		return nil, notFound(KindProject, projectID)
	}
	todo := model.NewTodoItem(s.newID(), title, projectID, opts, s.now())
	s.todos[todo.ID] = todo
	s.todoOrder = append(s.todoOrder, todo.ID)
	p.AddTodo(todo.ID)
	s.emit(TodoCreated, todo.ID)
	return todo, nil
}

// DeleteProject removes a project and every todo it references. The
// selection falls back to all projects if it pointed here.
func (s *AppState) DeleteProject(id string) error {
	p, ok := s.projects[id]
	if !ok {
		return notFound(KindProject, id)
	}
	for _, todoID := range p.TodoIDs {
		s.dropTodo(todoID)
	}
	delete(s.projects, id)
	s.projectOrder = removeID(s.projectOrder, id)
	if s.currentID == id {
		s.currentID = ""
	}
	s.emit(ProjectDeleted, id)
	return nil
}

// DeleteTodo removes a todo and its reference in the owning project.
func (s *AppState) DeleteTodo(id string) error {
	todo, ok := s.todos[id]
	if !ok {
		return notFound(KindTodo, id)
	}
	if p, ok := s.projects[todo.ProjectID]; ok {
		p.RemoveTodo(id)
	}
	s.dropTodo(id)
	s.emit(TodoDeleted, id)
	return nil
}

// MoveTodoToProject reassigns a todo. Both ids are resolved before anything
// changes; moving a todo to the project that already owns it is a no-op.
func (s *AppState) MoveTodoToProject(todoID, newProjectID string) error {
	todo, ok := s.todos[todoID]
	if !ok {
		return notFound(KindTodo, todoID)
	}
	dst, ok := s.projects[newProjectID]
	if !ok {
		return notFound(KindProject, newProjectID)
	}
	if todo.ProjectID == newProjectID && dst.HasTodo(todoID) {
		return nil
	}
	if src, ok := s.projects[todo.ProjectID]; ok {
		src.RemoveTodo(todoID)
	}
	dst.AddTodo(todoID)
	todo.MoveToProject(newProjectID)
	s.emit(TodoMoved, todoID)
	return nil
}

// UpdateTodo applies a partial patch. The priority is validated before any
// field is written.
func (s *AppState) UpdateTodo(id string, patch model.TodoPatch) error {
	todo, ok := s.todos[id]
	if !ok {
		return notFound(KindTodo, id)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return fmt.Errorf("updating todo %s: %w: %d", id, model.ErrInvalidPriority, int(*patch.Priority))
	}
	if patch.Title != nil {
		todo.UpdateTitle(*patch.Title)
	}
	if patch.Description != nil {
		todo.UpdateDescription(*patch.Description)
	}
	if patch.Notes != nil {
		todo.UpdateNotes(*patch.Notes)
	}
	if patch.Priority != nil {
		todo.Priority = *patch.Priority
	}
	if patch.IsComplete != nil {
		todo.IsComplete = *patch.IsComplete
	}
	if patch.SetDueDate {
		todo.UpdateDueDate(patch.DueDate)
	}
	s.emit(TodoUpdated, id)
	return nil
}

// ToggleTodoComplete flips a todo's completion flag.
func (s *AppState) ToggleTodoComplete(id string) error {
	todo, ok := s.todos[id]
	if !ok {
		return notFound(KindTodo, id)
	}
	todo.ToggleComplete()
	s.emit(TodoUpdated, id)
	return nil
}

// AddChecklistItem appends an unchecked entry to a todo's checklist.
func (s *AppState) AddChecklistItem(todoID, text string) (model.ChecklistItem, error) {
	todo, ok := s.todos[todoID]
	if !ok {
		return model.ChecklistItem{}, notFound(KindTodo, todoID)
	}
	item := todo.AddChecklistItem(text)
	s.emit(TodoUpdated, todoID)
	return item, nil
}

// ToggleChecklistItem flips one checklist entry.
func (s *AppState) ToggleChecklistItem(todoID, itemID string) error {
	todo, ok := s.todos[todoID]
	if !ok {
		return notFound(KindTodo, todoID)
	}
	if !todo.ToggleChecklistItem(itemID) {
		return notFound(KindChecklistItem, itemID)
	}
	s.emit(TodoUpdated, todoID)
	return nil
}

// RemoveChecklistItem drops one checklist entry.
func (s *AppState) RemoveChecklistItem(todoID, itemID string) error {
	todo, ok := s.todos[todoID]
	if !ok {
		return notFound(KindTodo, todoID)
	}
	if !todo.RemoveChecklistItem(itemID) {
		return notFound(KindChecklistItem, itemID)
	}
	s.emit(TodoUpdated, todoID)
	return nil
}

// RenameProject replaces a project's name.
func (s *AppState) RenameProject(id, name string) error {
	p, ok := s.projects[id]
	if !ok {
		return notFound(KindProject, id)
	}
	p.UpdateName(name)
	s.emit(ProjectUpdated, id)
	return nil
}

// ArchiveProject hides a project from active views. Its todos stay.
func (s *AppState) ArchiveProject(id string) error {
	p, ok := s.projects[id]
	if !ok {
		return notFound(KindProject, id)
	}
	p.Archive()
	s.emit(ProjectUpdated, id)
	return nil
}

// UnarchiveProject restores an archived project.
func (s *AppState) UnarchiveProject(id string) error {
	p, ok := s.projects[id]
	if !ok {
		return notFound(KindProject, id)
	}
	p.Unarchive()
	s.emit(ProjectUpdated, id)
	return nil
}

// SetCurrentProject changes the selection. An empty id selects all projects.
func (s *AppState) SetCurrentProject(id string) error {
	if id != "" {
		if _, ok := s.projects[id]; !ok {
			return notFound(KindProject, id)
		}
	}
	s.currentID = id
	s.emit(SelectionChanged, id)
	return nil
}

// CurrentProjectID returns the selected project id, or "" for all projects.
func (s *AppState) CurrentProjectID() string {
	return s.currentID
}

// CurrentProject returns the selected project, if any.
func (s *AppState) CurrentProject() (*model.Project, bool) {
	if s.currentID == "" {
		return nil, false
	}
	p, ok := s.projects[s.currentID]
	return p, ok
}

// Project looks up a project by id.
func (s *AppState) Project(id string) (*model.Project, bool) {
	p, ok := s.projects[id]
	return p, ok
}

// Projects returns every project in creation order.
func (s *AppState) Projects() []*model.Project {
	out := make([]*model.Project, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		out = append(out, s.projects[id])
	}
	return out
}

// ActiveProjects returns the projects that are not archived.
func (s *AppState) ActiveProjects() []*model.Project {
	return slices.DeleteFunc(s.Projects(), func(p *model.Project) bool { return p.IsArchived })
}

// ArchivedProjects returns the archived projects.
func (s *AppState) ArchivedProjects() []*model.Project {
	return slices.DeleteFunc(s.Projects(), func(p *model.Project) bool { return !p.IsArchived })
}

// Todo looks up a todo by id.
func (s *AppState) Todo(id string) (*model.TodoItem, bool) {
	t, ok := s.todos[id]
	return t, ok
}

// Todos returns every todo in creation order.
func (s *AppState) Todos() []*model.TodoItem {
	out := make([]*model.TodoItem, 0, len(s.todoOrder))
	for _, id := range s.todoOrder {
		out = append(out, s.todos[id])
	}
	return out
}

// TodosForProject returns a project's todos in the project's order.
func (s *AppState) TodosForProject(projectID string) []*model.TodoItem {
	p, ok := s.projects[projectID]
	if !ok {
		return []*model.TodoItem{}
	}
	out := make([]*model.TodoItem, 0, len(p.TodoIDs))
	for _, id := range p.TodoIDs {
		if t, ok := s.todos[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of todos.
func (s *AppState) Len() int {
	return len(s.todos)
}

func (s *AppState) dropTodo(id string) {
	if _, ok := s.todos[id]; !ok {
		return
	}
	delete(s.todos, id)
	s.todoOrder = removeID(s.todoOrder, id)
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}
