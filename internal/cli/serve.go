package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/internal/server"
	"github.com/matzehuels/collagefm/pkg/store"
)

// storeCleanupInterval is how often expired collage records are purged
// while serving.
const storeCleanupInterval = time.Hour

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

  GET  /healthz
  GET  /v1/layouts
  POST /v1/collages              {"username": "rj", "grid_size": 5, ...}
  GET  /v1/collages/{id}
  GET  /v1/collages/{id}/image

Collages are kept in the configured record store ([store] backend).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireAPIKey(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			go c.cleanupStore(ctx, st, storeCleanupInterval)

			printInfo("Serving on %s", StyleHighlight.Render(addr))
			return server.New(runner, st, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// cleanupStore purges expired records every interval until ctx ends.
func (c *CLI) cleanupStore(ctx context.Context, st store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := st.Cleanup(ctx); err != nil {
				c.Logger.Warn("store cleanup failed", "err", err)
			}
		}
	}
}
