package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/api"
)

// shutdownTimeout bounds how long in-flight requests may run after SIGINT.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree over HTTP",
		Long: `Serve the tree as a JSON API.

  GET    /people            POST /people
  GET    /people/{id}       PATCH /people/{id}     DELETE /people/{id}
  GET    /layout            POST /layout (compute and save)
  GET    /check             GET  /render.svg

Requests are handled one at a time against the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			store, cfg, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			handler := api.NewServer(store,
				api.WithLogger(logger),
				api.WithLayout(layoutOptions(cfg)),
			)
			srv := api.NewHTTPServer(addr, handler)

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			logger.Info("listening", "addr", addr, "people", store.Len())

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
