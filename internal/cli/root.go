package cli

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/config"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/logging"
)

var rootCmd = &cobra.Command{
	Use:   "kpiboard",
	Short: "Retail KPI dashboard over an orders fact table",
	Long: `kpiboard runs a fixed catalog of aggregate queries against an orders table,
caches the results and serves them as a dashboard of KPI cards and charts.

Configuration is read from KPIBOARD_* environment variables; see
'kpiboard config' for the effective values.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Persistent flags
var (
	logLevel  string
	logFormat string
)

// Loaded by loadConfig before any subcommand runs.
var (
	appConfig *config.Config
	appLogger log.Logger
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides KPIBOARD_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: logfmt, json (overrides KPIBOARD_LOG_FORMAT)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	appConfig = cfg
	appLogger = logger
	return nil
}
