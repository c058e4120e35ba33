package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

// parseDue reads a YYYY-MM-DD date as local midnight.
func parseDue(s string) (*time.Time, error) {
	t, err := model.ParseDate(strings.TrimSpace(s), time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: want YYYY-MM-DD", s)
	}
	return &t, nil
}

// targetProject resolves --project, falling back to the selected project.
func targetProject(st *state.AppState, ref string) (*model.Project, error) {
	if ref != "" {
		return resolveProject(st, ref)
	}
	if p, ok := st.CurrentProject(); ok {
		return p, nil
	}
	return nil, errors.New("no project selected: pass --project or run 'todomaster projects select <project>'")
}

func todoRecords(todos []*model.TodoItem) []model.TodoRecord {
	out := make([]model.TodoRecord, len(todos))
	for i, t := range todos {
		out[i] = t.ToRecord()
	}
	return out
}

func newAddCmd(app *App) *cobra.Command {
	var (
		project     string
		description string
		notes       string
		priority    string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return errors.New("title must not be blank")
			}
			opts := model.TodoOptions{Description: description, Notes: notes}
			if priority != "" {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return err
				}
				opts.Priority = p
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				opts.DueDate = d
			}

			return app.write(cmd, func(st *state.AppState) (result, error) {
				p, err := targetProject(st, project)
				if err != nil {
					return result{}, err
				}
				td, err := st.CreateTodo(title, p.ID, opts)
				if err != nil {
					return result{}, err
				}
				return result{td.ToRecord(), fmt.Sprintf("added %s to %s (%s)", td.Title, p.Name, shortID(td.ID))}, nil
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name or id (default: the selected project)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var (
		project string
		filter  string
		sortBy  string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos",
		Long:    "List todos of one project, or of every project when --project is omitted and none is selected.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := state.ParseFilter(filter)
			if err != nil {
				return err
			}
			key, err := state.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			return app.read(cmd, func(st *state.AppState) (result, error) {
				projectID := st.CurrentProjectID()
				switch project {
				case "":
				case "all":
					projectID = ""
				default:
					p, err := resolveProject(st, project)
					if err != nil {
						return result{}, err
					}
					projectID = p.ID
				}
				todos := st.FilteredTodos(projectID, f, key)
				return result{todoRecords(todos), todoTable(st, todos)}, nil
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", `Project name or id, or "all" (default: the selected project)`)
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Filter (all|today|week|overdue|completed|uncompleted)")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "date", "Sort key (date|priority|created|title)")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <todo>",
		Short: "Show a todo with its checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.read(cmd, func(st *state.AppState) (result, error) {
				td, err := resolveTodo(st, args[0])
				if err != nil {
					return result{}, err
				}
				return result{td.ToRecord(), todoDetail(st, td)}, nil
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var (
		title       string
		description string
		notes       string
		priority    string
		due         string
		noDue       bool
	)

	cmd := &cobra.Command{
		Use:   "edit <todo>",
		Short: "Change fields of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.TodoPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				t := strings.TrimSpace(title)
				if t == "" {
					return errors.New("title must not be blank")
				}
				patch.Title = &t
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("priority") {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}
			switch {
			case noDue && flags.Changed("due"):
				return errors.New("--due and --no-due are mutually exclusive")
			case noDue:
				patch.SetDueDate = true
			case flags.Changed("due"):
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				patch.SetDueDate, patch.DueDate = true, d
			}

			return app.write(cmd, func(st *state.AppState) (result, error) {
				td, err := resolveTodo(st, args[0])
				if err != nil {
					return result{}, err
				}
				if err := st.UpdateTodo(td.ID, patch); err != nil {
					return result{}, err
				}
				return result{td.ToRecord(), "updated " + td.Title}, nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (low|medium|high)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&noDue, "no-due", false, "Clear the due date")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <todo>...",
		Short: "Mark todos complete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.write(cmd, func(st *state.AppState) (result, error) {
				var (
					recs  []model.TodoRecord
					lines []string
				)
				for _, ref := range args {
					td, err := resolveTodo(st, ref)
					if err != nil {
						return result{}, err
					}
					complete := !undo
					if err := st.UpdateTodo(td.ID, model.TodoPatch{IsComplete: &complete}); err != nil {
						return result{}, err
					}
					recs = append(recs, td.ToRecord())
					verb := "completed"
					if undo {
						verb = "reopened"
					}
					lines = append(lines, verb+" "+td.Title)
				}
				return result{recs, strings.Join(lines, "\n")}, nil
			})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the todos incomplete instead")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <todo>...",
		Aliases: []string{"delete"},
		Short:   "Delete todos",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.write(cmd, func(st *state.AppState) (result, error) {
				var (
					ids   []string
					lines []string
				)
				for _, ref := range args {
					td, err := resolveTodo(st, ref)
					if err != nil {
						return result{}, err
					}
					if err := st.DeleteTodo(td.ID); err != nil {
						return result{}, err
					}
					ids = append(ids, td.ID)
					lines = append(lines, "deleted "+td.Title)
				}
				return result{map[string]any{"deleted": ids}, strings.Join(lines, "\n")}, nil
			})
		},
	}
}

func newMvCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <todo> <project>",
		Short: "Move a todo to another project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.write(cmd, func(st *state.AppState) (result, error) {
				td, err := resolveTodo(st, args[0])
				if err != nil {
					return result{}, err
				}
				p, err := resolveProject(st, args[1])
				if err != nil {
					return result{}, err
				}
				if err := st.MoveTodoToProject(td.ID, p.ID); err != nil {
					return result{}, err
				}
				return result{td.ToRecord(), fmt.Sprintf("moved %s to %s", td.Title, p.Name)}, nil
			})
		},
	}
}

type counts struct {
	Today       int `json:"today"`
	Week        int `json:"week"`
	Overdue     int `json:"overdue"`
	Uncompleted int `json:"uncompleted"`
}

func newCountsCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show the today, week, overdue and open counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.read(cmd, func(st *state.AppState) (result, error) {
				projectID := ""
				if project != "" {
					p, err := resolveProject(st, project)
					if err != nil {
						return result{}, err
					}
					projectID = p.ID
				}
				c := counts{
					Today:       st.TodayCount(),
					Week:        st.WeekCount(),
					Overdue:     st.OverdueCount(),
					Uncompleted: st.UncompletedCount(projectID),
				}
				text := fmt.Sprintf("today %d · week %d · overdue %d · open %d", c.Today, c.Week, c.Overdue, c.Uncompleted)
				return result{c, text}, nil
			})
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Count open todos of this project only")
	return cmd
}
