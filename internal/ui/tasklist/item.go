package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/theme"
)

// TodoItem wraps a todo and its project so it can be used in a bubbles/list.
type TodoItem struct {
	Todo    *model.TodoItem
	Project *model.Project
	Now     time.Time
}

// FilterValue returns the string used for fuzzy filtering.
func (i TodoItem) FilterValue() string { return i.Todo.Title }

// Title returns the todo title for the list.
func (i TodoItem) Title() string { return i.Todo.Title }

// Description returns a short summary line for the list.
func (i TodoItem) Description() string {
	parts := []string{i.Todo.Priority.String()}
	if i.Project != nil {
		parts = append(parts, i.Project.Name)
	}
	if i.Todo.DueDate != nil {
		parts = append(parts, dueLabel(*i.Todo.DueDate, i.Now))
	}
	return strings.Join(parts, " | ")
}

// TodoDelegate implements list.ItemDelegate for rendering todo rows.
type TodoDelegate struct {
	// ShowProject adds the project name to each row, for the all-projects view.
	ShowProject bool
}

// Height returns the number of lines each item takes.
func (d TodoDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TodoDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d TodoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d TodoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TodoItem)
	if !ok {
		return
	}
	todo := it.Todo
	isSelected := index == m.Index()

	prefix := "○"
	if todo.IsComplete {
		prefix = "✓"
	}

	priBadge := theme.PriorityStyle(todo.Priority).Render(theme.PriorityBadge(todo.Priority))

	projectBadge := ""
	if d.ShowProject && it.Project != nil {
		projectBadge = " " + theme.ProjectStyle(it.Project.Color).Render(it.Project.Name)
	} else if it.Project != nil {
		projectBadge = " " + theme.ProjectDot(it.Project.Color)
	}

	checklist := ""
	if done, total := todo.ChecklistProgress(); total > 0 {
		checklist = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(fmt.Sprintf(" [%d/%d]", done, total))
	}

	dueStr := ""
	if todo.DueDate != nil {
		label := " " + dueLabel(*todo.DueDate, it.Now)
		if todo.IsOverdue(it.Now) {
			dueStr = theme.OverdueStyle.Render(label)
		} else {
			dueStr = theme.DueDateStyle.Render(label)
		}
	}

	line := fmt.Sprintf("%s %s %s%s%s%s", prefix, priBadge, todo.Title, projectBadge, checklist, dueStr)

	// Apply dimmed style for completed items
	if todo.IsComplete {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// dueLabel returns a human-friendly description of a due date relative to now.
func dueLabel(due, now time.Time) string {
	due = due.In(now.Location())
	today := model.StartOfDay(now)
	days := int(model.StartOfDay(due).Sub(today).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days < 0:
		return fmt.Sprintf("%dd late", -days)
	case days < 7:
		return due.Format("Mon")
	case due.Year() == now.Year():
		return due.Format("Jan 02")
	default:
		return due.Format("Jan 02 2006")
	}
}
