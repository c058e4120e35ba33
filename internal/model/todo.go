package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the ordinal importance of a todo. Higher values are more urgent.
type Priority int

// Priority levels.
const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// ErrInvalidPriority is returned when a priority outside Low..High is supplied.
var ErrInvalidPriority = errors.New("invalid priority")

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority accepts a level name ("low", "medium", "high") or its digit.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Priority(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return Priority(n), nil
}

// ChecklistItem is a sub-step of a todo. Its position in the checklist is
// significant.
type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsChecked bool   `json:"isChecked"`
}

// TodoOptions carries the optional fields accepted when creating a todo.
type TodoOptions struct {
	Description string
	DueDate     *time.Time
	Priority    Priority
	Notes       string
}

// TodoPatch describes a partial update of a todo. Nil fields are left alone.
// DueDate is applied only when SetDueDate is true; a nil DueDate then clears it.
type TodoPatch struct {
	Title       *string
	Description *string
	Notes       *string
	Priority    *Priority
	IsComplete  *bool
	SetDueDate  bool
	DueDate     *time.Time
}

// TodoItem is a single task owned by exactly one project.
type TodoItem struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	ProjectID   string
	IsComplete  bool
	Notes       string
	Checklist   []ChecklistItem
	CreatedAt   time.Time
}

// NewTodoItem builds a todo with defaults applied. An invalid or zero
// priority in opts becomes Medium.
func NewTodoItem(id, title, projectID string, opts TodoOptions, now time.Time) *TodoItem {
	priority := opts.Priority
	if !priority.Valid() {
		priority = PriorityMedium
	}
	return &TodoItem{
		ID:          id,
		Title:       title,
		Description: opts.Description,
		DueDate:     cloneTime(opts.DueDate),
		Priority:    priority,
		ProjectID:   projectID,
		Notes:       opts.Notes,
		Checklist:   []ChecklistItem{},
		CreatedAt:   now,
	}
}

// ToggleComplete flips the completion flag.
func (t *TodoItem) ToggleComplete() {
	t.IsComplete = !t.IsComplete
}

// UpdateTitle replaces the title verbatim.
func (t *TodoItem) UpdateTitle(title string) {
	t.Title = title
}

// UpdateDescription replaces the description verbatim.
func (t *TodoItem) UpdateDescription(description string) {
	t.Description = description
}

// UpdateNotes replaces the notes verbatim.
func (t *TodoItem) UpdateNotes(notes string) {
	t.Notes = notes
}

// UpdatePriority sets the priority, rejecting values outside Low..High.
func (t *TodoItem) UpdatePriority(p Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, int(p))
	}
	t.Priority = p
	return nil
}

// UpdateDueDate replaces the due date. Nil clears it.
func (t *TodoItem) UpdateDueDate(due *time.Time) {
	t.DueDate = cloneTime(due)
}

// AddChecklistItem appends a new unchecked entry and returns it.
func (t *TodoItem) AddChecklistItem(text string) ChecklistItem {
	item := ChecklistItem{ID: uuid.NewString(), Text: text}
	t.Checklist = append(t.Checklist, item)
	return item
}

// ToggleChecklistItem flips the matching entry. It reports whether one was found.
func (t *TodoItem) ToggleChecklistItem(itemID string) bool {
	for i := range t.Checklist {
		if t.Checklist[i].ID == itemID {
			t.Checklist[i].IsChecked = !t.Checklist[i].IsChecked
			return true
		}
	}
	return false
}

// RemoveChecklistItem drops the matching entry. It reports whether one was found.
func (t *TodoItem) RemoveChecklistItem(itemID string) bool {
	kept := t.Checklist[:0]
	found := false
	for _, item := range t.Checklist {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	t.Checklist = kept
	return found
}

// MoveToProject rewrites the owning project reference only. Keeping the
// projects' todo lists in step is the aggregate's job.
func (t *TodoItem) MoveToProject(projectID string) {
	t.ProjectID = projectID
}

// ChecklistProgress returns the number of checked entries and the total.
func (t *TodoItem) ChecklistProgress() (done, total int) {
	for _, item := range t.Checklist {
		if item.IsChecked {
			done++
		}
	}
	return done, len(t.Checklist)
}

// IsDueToday reports whether the due date falls on the calendar day of now.
func (t *TodoItem) IsDueToday(now time.Time) bool {
	return t.DueDate != nil && SameDay(*t.DueDate, now)
}

// IsDueThisWeek reports whether the due date falls in the week containing now.
func (t *TodoItem) IsDueThisWeek(now time.Time) bool {
	return t.DueDate != nil && InSameWeek(*t.DueDate, now)
}

// IsOverdue reports whether the start of the due day lies strictly before
// now and the todo is still open.
func (t *TodoItem) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsComplete {
		return false
	}
	return StartOfDay(t.DueDate.In(now.Location())).Before(now)
}

// Clone returns a deep copy of the todo.
func (t *TodoItem) Clone() *TodoItem {
	c := *t
	c.DueDate = cloneTime(t.DueDate)
	c.Checklist = append([]ChecklistItem{}, t.Checklist...)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
