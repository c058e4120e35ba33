package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/todomaster/internal/api"
	appsync "github.com/nhle/todomaster/internal/sync"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the state over a local JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := app.openStorage(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := app.loadState(ctx, s)
			if err != nil {
				return err
			}
			saver := appsync.NewSaver(s, appsync.SaverOptions{
				Debounce: time.Duration(app.cfg.Storage.DebounceMS) * time.Millisecond,
				Logger:   app.logger,
			})
			srv := api.New(api.Options{
				State:        st,
				Storage:      s,
				Saver:        saver,
				Logger:       app.logger,
				StateOptions: app.stateOptions(),
			})

			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			app.logger.Info("serving api", "addr", addr, "backend", app.cfg.Storage.Backend)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from the config)")
	return cmd
}
