package cli

import (
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/spacesedan/steamnoodles/internal/api"
	"github.com/spacesedan/steamnoodles/internal/metrics"
	"github.com/spacesedan/steamnoodles/internal/monitoring"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := opts.settings
			if addr != "" {
				settings.HTTPAddr = addr
			}
			if err := validated(settings); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openStore(ctx, settings)
			if err != nil {
				return err
			}
			defer a.Close()
			a.withTrends(settings)
			if err := a.withIngest(settings); err != nil {
				return err
			}

			if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
				return err
			}

			healthy := &atomic.Bool{}
			healthy.Store(true)
			if a.checker != nil {
				go monitoring.MonitorBackendHealth(ctx, settings.ClassifierBackend, a.checker, healthy, monitoring.HEALTHCHECK_INTERVAL)
			}

			srv := api.NewServer(a.ingest, a.trends,
				api.WithHealth(healthy),
				api.WithTimeout(settings.ServiceTimeout))
			return srv.Run(ctx, settings.HTTPAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: HTTP_ADDR)")
	return cmd
}
