package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsRenameCmd(app))
	cmd.AddCommand(newProjectsArchiveCmd(app, true))
	cmd.AddCommand(newProjectsArchiveCmd(app, false))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newProjectsSelectCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.read(cmd, func(st *state.AppState) (result, error) {
				projects := st.ActiveProjects()
				if all {
					projects = st.Projects()
				}
				recs := make([]model.ProjectRecord, len(projects))
				for i, p := range projects {
					recs[i] = p.ToRecord()
				}
				return result{recs, projectTable(st, projects)}, nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived projects")
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var color string
	var sel bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return errors.New("project name must not be blank")
			}
			return app.write(cmd, func(st *state.AppState) (result, error) {
				p := st.CreateProject(name, model.ProjectOptions{Color: color})
				if sel {
					if err := st.SetCurrentProject(p.ID); err != nil {
						return result{}, err
					}
				}
				return result{p.ToRecord(), fmt.Sprintf("created project %s (%s)", p.Name, shortID(p.ID))}, nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "Hex color (default: random from the palette)")
	cmd.Flags().BoolVar(&sel, "select", false, "Select the new project")
	return cmd
}

func newProjectsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <new name>",
		Short: "Rename a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if name == "" {
				return errors.New("project name must not be blank")
			}
			return app.write(cmd, func(st *state.AppState) (result, error) {
				p, err := resolveProject(st, args[0])
				if err != nil {
					return result{}, err
				}
				old := p.Name
				if err := st.RenameProject(p.ID, name); err != nil {
					return result{}, err
				}
				return result{p.ToRecord(), fmt.Sprintf("renamed %s to %s", old, p.Name)}, nil
			})
		},
	}
}

// newProjectsArchiveCmd builds both archive and unarchive.
func newProjectsArchiveCmd(app *App, archive bool) *cobra.Command {
	use, short, verb := "archive <project>", "Hide a project from active views", "archived"
	if !archive {
		use, short, verb = "unarchive <project>", "Restore an archived project", "restored"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.write(cmd, func(st *state.AppState) (result, error) {
				p, err := resolveProject(st, args[0])
				if err != nil {
					return result{}, err
				}
				op := st.ArchiveProject
				if !archive {
					op = st.UnarchiveProject
				}
				if err := op(p.ID); err != nil {
					return result{}, err
				}
				return result{p.ToRecord(), fmt.Sprintf("%s project %s", verb, p.Name)}, nil
			})
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and every todo in it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.write(cmd, func(st *state.AppState) (result, error) {
				p, err := resolveProject(st, args[0])
				if err != nil {
					return result{}, err
				}
				n := p.TodoCount()
				if err := st.DeleteProject(p.ID); err != nil {
					return result{}, err
				}
				return result{map[string]any{"id": p.ID, "deletedTodos": n},
					fmt.Sprintf("deleted project %s and %d todos", p.Name, n)}, nil
			})
		},
	}
}

func newProjectsSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select [project]",
		Short: "Select the current project (no argument selects all projects)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.write(cmd, func(st *state.AppState) (result, error) {
				id, name := "", "all projects"
				if len(args) == 1 {
					p, err := resolveProject(st, args[0])
					if err != nil {
						return result{}, err
					}
					id, name = p.ID, p.Name
				}
				if err := st.SetCurrentProject(id); err != nil {
					return result{}, err
				}
				return result{map[string]string{"projectId": id}, "selected "+name}, nil
			})
		},
	}
}
