package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.openStorage(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			text, err := s.Export(ctx)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(out, []byte(text), 0o600); err != nil {
				return fmt.Errorf("writing export to %s: %w", out, err)
			}
			app.logger.Info("exported state", "file", out, "bytes", len(text))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|-]",
		Short: "Replace the stored state with an exported document",
		Long:  "Validate an exported document and replace the stored state with it. A rejected document changes nothing.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading import: %w", err)
			}

			ctx := cmd.Context()
			s, err := app.openStorage(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Import(ctx, string(data)); err != nil {
				return err
			}
			st, err := s.Load(ctx, app.stateOptions()...)
			if err != nil {
				return err
			}
			n, projects := 0, 0
			if st != nil {
				n, projects = st.Len(), len(st.Projects())
			}
			return writeOut(cmd, app,
				map[string]int{"projects": projects, "todos": n},
				fmt.Sprintf("imported %d projects and %d todos", projects, n))
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored project and todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				confirmed := false
				err := huh.NewConfirm().
					Title("Delete all projects and todos?").
					Description("The next run starts again from the sample data.").
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed).
					Run()
				if err != nil {
					return fmt.Errorf("confirming clear (pass --yes to skip): %w", err)
				}
				if !confirmed {
					return errors.New("clear cancelled")
				}
			}

			ctx := cmd.Context()
			s, err := app.openStorage(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Clear(ctx); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]bool{"cleared": true}, "cleared stored state")
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
