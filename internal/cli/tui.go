package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/todomaster/internal/app"
	"github.com/nhle/todomaster/internal/logging"
	appsync "github.com/nhle/todomaster/internal/sync"
)

func newTUICmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}
}

// runTUI runs the terminal UI with a debounced autosaver. Logs go to a file
// because the UI owns the terminal.
func runTUI(cmd *cobra.Command, a *App) error {
	logCfg := a.cfg.Log
	if logCfg.File == "" {
		logCfg.File = logging.DefaultTUILogPath()
	}
	logger, closer, err := logging.New(logCfg, nil)
	if err != nil {
		return err
	}
	defer closer.Close()
	a.logger = logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := a.loadState(ctx, s)
	if err != nil {
		return err
	}
	saver := appsync.NewSaver(s, appsync.SaverOptions{
		Debounce: time.Duration(a.cfg.Storage.DebounceMS) * time.Millisecond,
		Logger:   logger,
	})

	m := app.New(app.Options{
		State:      st,
		Saver:      saver,
		Config:     a.cfg,
		ConfigPath: a.ConfigPath,
		Logger:     logger,
	})
	logger.Info("starting tui", "backend", a.cfg.Storage.Backend, "todos", st.Len())
	_, runErr := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	// The model flushes on quit; this covers an interrupted program.
	saver.Stop()
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := saver.Flush(flushCtx); err != nil {
		logger.Error("final save failed", "err", err)
		if runErr == nil {
			return fmt.Errorf("saving state: %w", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("running tui: %w", runErr)
	}
	return nil
}
