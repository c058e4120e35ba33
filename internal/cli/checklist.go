package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/todomaster/internal/state"
)

func newCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check",
		Aliases: []string{"checklist"},
		Short:   "Checklist commands",
	}
	cmd.AddCommand(newCheckAddCmd(app))
	cmd.AddCommand(newCheckItemCmd(app, "toggle", "Check or uncheck a checklist item"))
	cmd.AddCommand(newCheckItemCmd(app, "rm", "Remove a checklist item"))
	return cmd
}

func newCheckAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <todo> <text>",
		Short: "Append a checklist item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return errors.New("checklist text must not be blank")
			}
			return app.write(cmd, func(st *state.AppState) (result, error) {
				td, err := resolveTodo(st, args[0])
				if err != nil {
					return result{}, err
				}
				item, err := st.AddChecklistItem(td.ID, text)
				if err != nil {
					return result{}, err
				}
				return result{item, fmt.Sprintf("added %q to %s (%s)", item.Text, td.Title, shortID(item.ID))}, nil
			})
		},
	}
}

// newCheckItemCmd builds the commands addressing one existing item.
func newCheckItemCmd(app *App, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <todo> <item>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.write(cmd, func(st *state.AppState) (result, error) {
				td, err := resolveTodo(st, args[0])
				if err != nil {
					return result{}, err
				}
				itemID, err := resolveChecklistItem(td, args[1])
				if err != nil {
					return result{}, err
				}
				op := st.ToggleChecklistItem
				if use == "rm" {
					op = st.RemoveChecklistItem
				}
				if err := op(td.ID, itemID); err != nil {
					return result{}, err
				}
				done, total := td.ChecklistProgress()
				return result{td.ToRecord(), fmt.Sprintf("%s: checklist %d/%d", td.Title, done, total)}, nil
			})
		},
	}
}
