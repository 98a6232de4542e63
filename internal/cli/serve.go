package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/kpiboard/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the dashboard server.

Send SIGHUP to drop every cached query result.

Examples:
  kpiboard serve              # Start on the configured address (default :8080)
  kpiboard serve --port 3000  # Start on port 3000
  kpiboard serve --ttl 1m     # Cache query results for one minute`,
	RunE: runServe,
}

var (
	servePort int
	serveTTL  time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides KPIBOARD_ADDR)")
	serveCmd.Flags().DurationVar(&serveTTL, "ttl", 0, "Cache time-to-live (overrides KPIBOARD_CACHE_TTL)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := *appConfig
	if servePort > 0 {
		cfg.Server.Addr = fmt.Sprintf(":%d", servePort)
	}
	if serveTTL > 0 {
		cfg.Dashboard.CacheTTL = serveTTL
	}

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := NewAppContext(ctx, &cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer closeCancel()
		if err := app.Close(closeCtx); err != nil {
			level.Warn(appLogger).Log("msg", "shutdown", "err", err)
		}
	}()

	// Handle shutdown and purge signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		for {
			select {
			case sig := <-sigChan:
				if sig == syscall.SIGHUP {
					app.Fetcher.Cache().Purge()
					level.Info(appLogger).Log("msg", "cache purged")
					continue
				}
				level.Info(appLogger).Log("msg", "shutting down", "signal", sig)
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	server := web.NewServer(app.Renderer, app.Catalog, web.Options{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Metrics:         app.Metrics.Handler(),
		Logger:          appLogger,
	})
	level.Info(appLogger).Log("msg", "dashboard configured",
		"driver", cfg.Database.Driver,
		"table", cfg.Dashboard.OrdersTable,
		"ttl", cfg.Dashboard.CacheTTL,
		"queries", len(app.Catalog.All()),
	)
	return server.Start(ctx)
}
