package model

import (
	"fmt"
	"time"
)

// TimestampLayout is the UTC, millisecond-precision form every persisted
// date is written in.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ChecklistRecord is the durable form of a ChecklistItem.
type ChecklistRecord struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsChecked bool   `json:"isChecked"`
}

// TodoRecord is the durable form of a TodoItem.
type TodoRecord struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	DueDate     *string           `json:"dueDate"`
	Priority    int               `json:"priority"`
	ProjectID   string            `json:"projectId"`
	IsComplete  bool              `json:"isComplete"`
	Notes       string            `json:"notes"`
	Checklist   []ChecklistRecord `json:"checklist"`
	CreatedAt   string            `json:"createdAt"`
}

// ProjectRecord is the durable form of a Project.
type ProjectRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	TodoIDs    []string `json:"todoIds"`
	CreatedAt  string   `json:"createdAt"`
	IsArchived bool     `json:"isArchived"`
	Color      string   `json:"color"`
}

// AppStateRecord is the whole persisted document.
type AppStateRecord struct {
	Projects         []ProjectRecord `json:"projects"`
	AllTodos         []TodoRecord    `json:"allTodos"`
	CurrentProjectID *string         `json:"currentProjectId"`
}

// FormatTimestamp renders t in the persisted layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts any RFC 3339 timestamp, with or without fractional
// seconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// ToRecord converts the todo to its durable form.
func (t *TodoItem) ToRecord() TodoRecord {
	rec := TodoRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    int(t.Priority),
		ProjectID:   t.ProjectID,
		IsComplete:  t.IsComplete,
		Notes:       t.Notes,
		Checklist:   make([]ChecklistRecord, 0, len(t.Checklist)),
		CreatedAt:   FormatTimestamp(t.CreatedAt),
	}
	if t.DueDate != nil {
		due := FormatTimestamp(*t.DueDate)
		rec.DueDate = &due
	}
	for _, item := range t.Checklist {
		rec.Checklist = append(rec.Checklist, ChecklistRecord(item))
	}
	return rec
}

// TodoFromRecord rebuilds a todo. A priority outside Low..High becomes Medium.
func TodoFromRecord(rec TodoRecord) (*TodoItem, error) {
	created, err := ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("decoding todo %s createdAt: %w", rec.ID, err)
	}
	todo := &TodoItem{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    Priority(rec.Priority),
		ProjectID:   rec.ProjectID,
		IsComplete:  rec.IsComplete,
		Notes:       rec.Notes,
		Checklist:   make([]ChecklistItem, 0, len(rec.Checklist)),
		CreatedAt:   created,
	}
	if !todo.Priority.Valid() {
		todo.Priority = PriorityMedium
	}
	if rec.DueDate != nil {
		due, err := ParseTimestamp(*rec.DueDate)
		if err != nil {
			return nil, fmt.Errorf("decoding todo %s dueDate: %w", rec.ID, err)
		}
		todo.DueDate = &due
	}
	for _, item := range rec.Checklist {
		todo.Checklist = append(todo.Checklist, ChecklistItem(item))
	}
	return todo, nil
}

// ToRecord converts the project to its durable form.
func (p *Project) ToRecord() ProjectRecord {
	return ProjectRecord{
		ID:         p.ID,
		Name:       p.Name,
		TodoIDs:    append([]string{}, p.TodoIDs...),
		CreatedAt:  FormatTimestamp(p.CreatedAt),
		IsArchived: p.IsArchived,
		Color:      p.Color,
	}
}

// ProjectFromRecord rebuilds a project.
func ProjectFromRecord(rec ProjectRecord) (*Project, error) {
	created, err := ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("decoding project %s createdAt: %w", rec.ID, err)
	}
	return &Project{
		ID:         rec.ID,
		Name:       rec.Name,
		TodoIDs:    append([]string{}, rec.TodoIDs...),
		CreatedAt:  created,
		IsArchived: rec.IsArchived,
		Color:      rec.Color,
	}, nil
}
