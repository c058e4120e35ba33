package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/theme"
)

// writeOut prints v as indented JSON with --json, and text otherwise.
func writeOut(cmd *cobra.Command, app *App, v any, text string) error {
	w := cmd.OutOrStdout()
	if app.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(text, "\n"))
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func projectTable(st *state.AppState, projects []*model.Project) string {
	if len(projects) == 0 {
		return "no projects"
	}
	t := newTable("ID", "NAME", "OPEN", "TODOS", "")
	for _, p := range projects {
		var flags []string
		if p.ID == st.CurrentProjectID() {
			flags = append(flags, "current")
		}
		if p.IsArchived {
			flags = append(flags, "archived")
		}
		t.Row(
			shortID(p.ID),
			theme.ProjectDot(p.Color)+" "+p.Name,
			strconv.Itoa(st.UncompletedCount(p.ID)),
			strconv.Itoa(p.TodoCount()),
			strings.Join(flags, ","),
		)
	}
	return t.String()
}

func todoTable(st *state.AppState, todos []*model.TodoItem) string {
	if len(todos) == 0 {
		return "no todos"
	}
	now := st.Now()
	t := newTable("ID", "", "PRI", "TITLE", "DUE", "PROJECT")
	for _, td := range todos {
		done := " "
		if td.IsComplete {
			done = "✓"
		}
		project := ""
		if p, ok := st.Project(td.ProjectID); ok {
			project = p.Name
		}
		t.Row(
			shortID(td.ID),
			done,
			theme.PriorityStyle(td.Priority).Render(td.Priority.String()),
			td.Title,
			dueText(td, now),
			project,
		)
	}
	return t.String()
}

func todoDetail(st *state.AppState, td *model.TodoItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", lipgloss.NewStyle().Bold(true).Render(td.Title))
	fmt.Fprintf(&b, "  id:        %s\n", td.ID)
	status := "open"
	if td.IsComplete {
		status = "done"
	}
	fmt.Fprintf(&b, "  status:    %s\n", status)
	fmt.Fprintf(&b, "  priority:  %s\n", td.Priority)
	if p, ok := st.Project(td.ProjectID); ok {
		fmt.Fprintf(&b, "  project:   %s\n", p.Name)
	}
	if td.DueDate != nil {
		fmt.Fprintf(&b, "  due:       %s\n", dueText(td, st.Now()))
	}
	fmt.Fprintf(&b, "  created:   %s\n", td.CreatedAt.Local().Format("2006-01-02 15:04"))
	if td.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", td.Description)
	}
	if td.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", td.Notes)
	}
	if len(td.Checklist) > 0 {
		done, total := td.ChecklistProgress()
		fmt.Fprintf(&b, "\nChecklist %d/%d\n", done, total)
		for _, item := range td.Checklist {
			mark := "[ ]"
			if item.IsChecked {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "  %s %s  %s\n", mark, item.Text, theme.DimmedStyle.Render(shortID(item.ID)))
		}
	}
	return b.String()
}

func dueText(td *model.TodoItem, now time.Time) string {
	if td.DueDate == nil {
		return ""
	}
	s := td.DueDate.Local().Format(model.DateLayout)
	if td.IsOverdue(now) {
		return theme.OverdueStyle.Render(s + " overdue")
	}
	return s
}

// shortID abbreviates a uuid for display. Commands accept any unique prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
