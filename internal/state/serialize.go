package state

import (
	"encoding/json"
	"fmt"

	"github.com/nhle/todomaster/internal/model"
)

// Record returns a deep copy of the aggregate in its durable form. The
// result shares no memory with s.
func (s *AppState) Record() model.AppStateRecord {
	rec := model.AppStateRecord{
		Projects: make([]model.ProjectRecord, 0, len(s.projectOrder)),
		AllTodos: make([]model.TodoRecord, 0, len(s.todoOrder)),
	}
	for _, p := range s.Projects() {
		rec.Projects = append(rec.Projects, p.ToRecord())
	}
	for _, t := range s.Todos() {
		rec.AllTodos = append(rec.AllTodos, t.ToRecord())
	}
	if s.currentID != "" {
		id := s.currentID
		rec.CurrentProjectID = &id
	}
	return rec
}

// MarshalJSON encodes the aggregate as its durable record.
func (s *AppState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record())
}

// FromRecord rebuilds an aggregate from its durable form. Projects are
// restored first, then todos, then the selection. References are repaired
// on the way in:
//   - project todoIds that name no todo are dropped, duplicates collapsed
//   - a todo whose project exists but does not list it is appended there
//   - a todo whose project does not exist is dropped
//   - an unknown currentProjectId selects all projects
//
// A malformed timestamp fails the whole decode.
func FromRecord(rec model.AppStateRecord, opts ...Option) (*AppState, error) {
	s := New(opts...)

	for _, pr := range rec.Projects {
		p, err := model.ProjectFromRecord(pr)
		if err != nil {
			return nil, fmt.Errorf("restoring state: %w", err)
		}
		if _, dup := s.projects[p.ID]; dup {
			continue
		}
		s.projects[p.ID] = p
		s.projectOrder = append(s.projectOrder, p.ID)
	}

	for _, tr := range rec.AllTodos {
		t, err := model.TodoFromRecord(tr)
		if err != nil {
			return nil, fmt.Errorf("restoring state: %w", err)
		}
		if _, dup := s.todos[t.ID]; dup {
			continue
		}
		if _, ok := s.projects[t.ProjectID]; !ok {
			continue
		}
		s.todos[t.ID] = t
		s.todoOrder = append(s.todoOrder, t.ID)
	}

	for _, p := range s.Projects() {
		ids := make([]string, 0, len(p.TodoIDs))
		seen := make(map[string]bool, len(p.TodoIDs))
		for _, id := range p.TodoIDs {
			t, ok := s.todos[id]
			if !ok || seen[id] || t.ProjectID != p.ID {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		p.TodoIDs = ids
	}
	for _, t := range s.Todos() {
		s.projects[t.ProjectID].AddTodo(t.ID)
	}

	if rec.CurrentProjectID != nil {
		if _, ok := s.projects[*rec.CurrentProjectID]; ok {
			s.currentID = *rec.CurrentProjectID
		}
	}
	return s, nil
}

// UnmarshalState decodes a JSON document produced by MarshalJSON.
func UnmarshalState(data []byte, opts ...Option) (*AppState, error) {
	var rec model.AppStateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return FromRecord(rec, opts...)
}
