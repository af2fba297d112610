package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/stockpulse/internal/domain/market"
)

func newBarsCmd() *cobra.Command {
	var timeframe string

	c := &cobra.Command{
		Use:   "bars <SYMBOL>",
		Short: "Print historical bars as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("stockpulse-cli")
			if err != nil {
				return err
			}

			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			tf := market.ParseTimeframe(timeframe)

			bars, err := newGateway(cfg).FetchBars(commandContext(cmd), symbol, tf)
			if err != nil {
				return fmt.Errorf("fetch bars for %s: %w", symbol, err)
			}
			return writeJSON(cmd, bars)
		},
	}

	c.Flags().StringVarP(&timeframe, "timeframe", "t", string(market.DefaultTimeframe), "1D, 1W, 1M, 3M, 1Y or 5Y")
	return c
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <SYMBOL...>",
		Short: "Print latest snapshots as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("stockpulse-cli")
			if err != nil {
				return err
			}

			symbols := make([]string, 0, len(args))
			for _, a := range args {
				if s := strings.ToUpper(strings.TrimSpace(a)); s != "" {
					symbols = append(symbols, s)
				}
			}

			gw := newGateway(cfg)
			ctx := commandContext(cmd)

			if len(symbols) == 1 {
				snap, err := gw.FetchSnapshot(ctx, symbols[0])
				if err != nil {
					return fmt.Errorf("fetch snapshot for %s: %w", symbols[0], err)
				}
				return writeJSON(cmd, snap.RawJSON())
			}

			snaps, err := gw.FetchSnapshots(ctx, symbols)
			if err != nil {
				return fmt.Errorf("fetch snapshots: %w", err)
			}
			raw := make(map[string]json.RawMessage, len(snaps))
			for sym, snap := range snaps {
				raw[sym] = snap.RawJSON()
			}
			return writeJSON(cmd, raw)
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
