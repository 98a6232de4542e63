package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration read from KPIBOARD_* environment variables, with
secrets masked.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	c := appConfig.Masked()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	rows := [][2]any{
		{"db.driver", c.Database.Driver},
		{"db.url", c.Database.URL},
		{"db.host", c.Database.Host},
		{"db.name", c.Database.Name},
		{"db.user", c.Database.User},
		{"db.password", c.Database.Password},
		{"db.max_open_conns", c.Database.MaxOpenConns},
		{"dashboard.orders_table", c.Dashboard.OrdersTable},
		{"dashboard.cache_ttl", c.Dashboard.CacheTTL},
		{"dashboard.fetch_concurrency", c.Dashboard.FetchConcurrency},
		{"dashboard.top_regions", c.Dashboard.TopRegions},
		{"dashboard.scatter_k", c.Dashboard.ScatterK},
		{"server.addr", c.Server.Addr},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"log.level", c.Log.Level},
		{"log.format", c.Log.Format},
		{"otel.enabled", c.OTEL.Enabled},
		{"otel.endpoint", c.OTEL.Endpoint},
		{"otel.insecure", c.OTEL.Insecure},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%v\n", r[0], r[1])
	}
	return tw.Flush()
}
