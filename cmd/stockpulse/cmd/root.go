// Package cmd holds the stockpulse CLI commands
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/stockpulse/internal/app"
	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/pkg/config"
	"github.com/wonny/stockpulse/internal/pkg/logger"
)

const version = "2.0.0"

var (
	cfgFile string
	verbose bool

	// newGateway is replaced in tests
	newGateway func(cfg *config.Config) market.Gateway = app.NewGateway
)

// rootCmd is the root command
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stockpulse",
		Short: "StockPulse - stock watchlist dashboard",
		Long: `StockPulse - stock watchlist dashboard

Commands:
    serve                       - dashboard and API server
    bars <SYMBOL> [--timeframe] - historical bars as JSON
    snapshot <SYMBOL...>        - latest snapshots as JSON
`,
		SilenceUsage: true,
		Version:      version,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newServeCmd())
	root.AddCommand(newBarsCmd())
	root.AddCommand(newSnapshotCmd())

	return root
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads configuration and initializes logging
// Console commands log to stderr so stdout stays machine readable
func loadConfig(serviceName string) (*config.Config, error) {
	if cfgFile != "" {
		if err := os.Setenv("STOCKPULSE_CONFIG", cfgFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:          level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: version,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
