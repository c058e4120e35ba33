package state

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/nhle/todomaster/internal/model"
)

// Filter selects a subset of todos by date or status.
type Filter string

const (
	FilterAll         Filter = "all"
	FilterToday       Filter = "today"
	FilterWeek        Filter = "week"
	FilterOverdue     Filter = "overdue"
	FilterCompleted   Filter = "completed"
	FilterUncompleted Filter = "uncompleted"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterToday, FilterWeek, FilterOverdue, FilterCompleted, FilterUncompleted}

// ParseFilter resolves a filter name. Empty means all.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FilterAll, nil
	}
	if !slices.Contains(Filters, f) {
		return "", fmt.Errorf("unknown filter %q", s)
	}
	return f, nil
}

// SortKey orders a filtered result.
type SortKey string

const (
	SortDate     SortKey = "date"
	SortPriority SortKey = "priority"
	SortCreated  SortKey = "created"
	SortTitle    SortKey = "title"
)

// SortKeys lists every sort key in display order.
var SortKeys = []SortKey{SortDate, SortPriority, SortCreated, SortTitle}

// ParseSortKey resolves a sort key name. Empty means date.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return SortDate, nil
	}
	if !slices.Contains(SortKeys, k) {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// FilteredTodos returns a new, filtered and stably sorted slice. An empty
// projectID covers all todos; an unknown project yields an empty result.
func (s *AppState) FilteredTodos(projectID string, f Filter, key SortKey) []*model.TodoItem {
	var base []*model.TodoItem
	if projectID == "" {
		base = s.Todos()
	} else {
		base = s.TodosForProject(projectID)
	}

	keep := s.filterFunc(f)
	out := make([]*model.TodoItem, 0, len(base))
	for _, t := range base {
		if keep(t) {
			out = append(out, t)
		}
	}

	switch key {
	case SortDate:
		slices.SortStableFunc(out, compareDueDate)
	case SortPriority:
		slices.SortStableFunc(out, func(a, b *model.TodoItem) int {
			return cmp.Compare(b.Priority, a.Priority)
		})
	case SortCreated:
		slices.SortStableFunc(out, func(a, b *model.TodoItem) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortTitle:
		slices.SortStableFunc(out, func(a, b *model.TodoItem) int {
			return s.collator.CompareString(a.Title, b.Title)
		})
	}
	return out
}

func (s *AppState) filterFunc(f Filter) func(*model.TodoItem) bool {
	now := s.now()
	switch f {
	case FilterToday:
		return func(t *model.TodoItem) bool { return t.IsDueToday(now) }
	case FilterWeek:
		return func(t *model.TodoItem) bool { return t.IsDueThisWeek(now) }
	case FilterOverdue:
		return func(t *model.TodoItem) bool { return t.IsOverdue(now) }
	case FilterCompleted:
		return func(t *model.TodoItem) bool { return t.IsComplete }
	case FilterUncompleted:
		return func(t *model.TodoItem) bool { return !t.IsComplete }
	default:
		return func(*model.TodoItem) bool { return true }
	}
}

// compareDueDate orders ascending by due date with undated todos last.
func compareDueDate(a, b *model.TodoItem) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}

// TodayCount counts incomplete todos due today, across all projects.
func (s *AppState) TodayCount() int {
	now := s.now()
	return s.countOpen(func(t *model.TodoItem) bool { return t.IsDueToday(now) })
}

// WeekCount counts incomplete todos due this week, across all projects.
func (s *AppState) WeekCount() int {
	now := s.now()
	return s.countOpen(func(t *model.TodoItem) bool { return t.IsDueThisWeek(now) })
}

// OverdueCount counts overdue todos, across all projects.
func (s *AppState) OverdueCount() int {
	now := s.now()
	return s.countOpen(func(t *model.TodoItem) bool { return t.IsOverdue(now) })
}

// UncompletedCount counts incomplete todos in one project, or in all of
// them when projectID is empty.
func (s *AppState) UncompletedCount(projectID string) int {
	var base []*model.TodoItem
	if projectID == "" {
		base = s.Todos()
	} else {
		base = s.TodosForProject(projectID)
	}
	n := 0
	for _, t := range base {
		if !t.IsComplete {
			n++
		}
	}
	return n
}

func (s *AppState) countOpen(match func(*model.TodoItem) bool) int {
	n := 0
	for _, t := range s.todos {
		if !t.IsComplete && match(t) {
			n++
		}
	}
	return n
}
