// Package cli wires the cobra command tree: the terminal UI by default and
// scriptable subcommands over the same stored state.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/nhle/todomaster/internal/logging"
	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/store"
)

// App holds the persistent flags and the per-invocation collaborators
// built from them.
type App struct {
	ConfigPath string
	Backend    string
	DBPath     string
	JSON       bool

	cfg    *model.AppConfig
	logger *log.Logger
	closer io.Closer
	// now overrides the clock in tests.
	now func() time.Time
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todomaster",
		Short:         "Projects and todos in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todomaster

  # Scriptable commands
  todomaster add "Write report" --due 2026-03-10 --priority high
  todomaster list --filter today --json

  # Serve the local JSON API
  todomaster serve
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closer != nil {
			return app.closer.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", model.DefaultConfigPath(), "Path to the config file")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (sqlite|redis|memory); overrides the config")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "SQLite database path; overrides the config")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of tables")

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newMvCmd(app))
	cmd.AddCommand(newCheckCmd(app))
	cmd.AddCommand(newCountsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSecretCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// setup loads the config, applies flag overrides and builds the logger.
// Command output goes to stdout, so logs go to stderr unless a file is set.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := model.LoadConfig(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.Backend != "" {
		cfg.Storage.Backend = app.Backend
	}
	if app.DBPath != "" {
		cfg.Storage.Path = app.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	app.cfg = cfg

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	app.logger, app.closer = logger, closer
	return nil
}

// stateOptions returns the options every loaded state is built with.
func (app *App) stateOptions() []state.Option {
	var opts []state.Option
	if app.now != nil {
		opts = append(opts, state.WithClock(app.now))
	}
	if tag, err := language.Parse(app.cfg.Display.Locale); err == nil {
		opts = append(opts, state.WithLocale(tag))
	} else {
		app.logger.Warn("ignoring unknown locale", "locale", app.cfg.Display.Locale, "err", err)
	}
	return opts
}

func (app *App) openStorage(ctx context.Context) (*store.Storage, error) {
	return store.Open(ctx, app.cfg.Storage, app.logger)
}

// loadState reads the stored state. A first run is seeded with a default
// project and example todos, which are saved straight away.
func (app *App) loadState(ctx context.Context, s *store.Storage) (*state.AppState, error) {
	opts := app.stateOptions()
	st, err := s.Load(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if st == nil {
		app.logger.Info("no saved state, starting with sample data", "key", s.Key())
		st = state.NewWithSampleData(opts...)
		if err := s.Save(ctx, st); err != nil {
			return nil, fmt.Errorf("saving sample data: %w", err)
		}
	}
	return st, nil
}

// result is what a command prints once its work is done.
type result struct {
	v    any
	text string
}

// withState opens storage, loads the state and runs fn. When fn reports a
// change, the state is saved before the result is printed.
func (app *App) withState(cmd *cobra.Command, save bool, fn func(st *state.AppState) (result, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := app.openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := app.loadState(ctx, s)
	if err != nil {
		return err
	}
	res, err := fn(st)
	if err != nil {
		return err
	}
	if save {
		if err := s.Save(ctx, st); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
	}
	return writeOut(cmd, app, res.v, res.text)
}

// read runs fn over the loaded state without saving.
func (app *App) read(cmd *cobra.Command, fn func(st *state.AppState) (result, error)) error {
	return app.withState(cmd, false, fn)
}

// write runs fn over the loaded state and saves it.
func (app *App) write(cmd *cobra.Command, fn func(st *state.AppState) (result, error)) error {
	return app.withState(cmd, true, fn)
}
