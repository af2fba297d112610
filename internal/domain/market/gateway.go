package market

import "context"

//go:generate mockgen -source=gateway.go -destination=mocks/gateway_mock.go -package=mocks

// Gateway fetches market data from the upstream provider
// Every call is one-shot: no retries, no caching
type Gateway interface {
	FetchBars(ctx context.Context, symbol string, tf Timeframe) ([]Bar, error)
	FetchSnapshot(ctx context.Context, symbol string) (Snapshot, error)
	FetchSnapshots(ctx context.Context, symbols []string) (map[string]Snapshot, error)
}
