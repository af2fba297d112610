package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wonny/stockpulse/internal/app"
)

func newServeCmd() *cobra.Command {
	var port string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("stockpulse")
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			log.Info().
				Str("port", cfg.Server.Port).
				Strs("watchlist", cfg.Dashboard.Watchlist).
				Msg("🚀 Starting StockPulse...")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(cfg, newGateway(cfg), version)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}

	c.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides config)")
	return c
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
