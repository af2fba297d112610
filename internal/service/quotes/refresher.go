package quotes

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/pkg/scheduler"
)

// DefaultInterval is the watchlist refresh period
const DefaultInterval = 30 * time.Second

// Refresher keeps the board current by polling watchlist snapshots
type Refresher struct {
	gateway  market.Gateway
	board    *Board
	broker   *Broker
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
}

// RefresherOption configures a Refresher
type RefresherOption func(*Refresher)

// WithInterval sets the refresh period
func WithInterval(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithClock sets the clock stamped on derived quotes
func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) {
		r.now = now
	}
}

// NewRefresher creates a Refresher; broker may be nil
func NewRefresher(gateway market.Gateway, board *Board, broker *Broker, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		gateway:  gateway,
		board:    board,
		broker:   broker,
		interval: DefaultInterval,
		timeout:  15 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run refreshes immediately, then every interval until ctx is cancelled
func (r *Refresher) Run(ctx context.Context) error {
	log.Info().
		Strs("watchlist", r.board.Watchlist()).
		Dur("interval", r.interval).
		Msg("🔄 Quote refresher starting")

	_ = r.Refresh(ctx)

	s := scheduler.New()
	if err := s.Every("quote-refresh", r.interval, func() { _ = r.Refresh(ctx) }); err != nil {
		return err
	}
	s.Start()

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(stopCtx)

	log.Info().Msg("Quote refresher stopped")
	return nil
}

// Refresh fetches one batched snapshot for the watchlist and applies it
// On failure prior quotes stay in place
func (r *Refresher) Refresh(ctx context.Context) error {
	symbols := r.board.Watchlist()
	if len(symbols) == 0 {
		return nil
	}

	gen := r.board.Begin()

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snaps, err := r.gateway.FetchSnapshots(fetchCtx, symbols)
	if err != nil {
		log.Warn().Err(err).Int("symbol_count", len(symbols)).Msg("Failed to fetch prices")
		return err
	}

	now := r.now()
	quotes := make([]market.Quote, 0, len(snaps))
	for symbol, snap := range snaps {
		if snap.Symbol == "" {
			snap.Symbol = symbol
		}
		quotes = append(quotes, market.NewQuote(snap, now))
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Symbol < quotes[j].Symbol })

	if !r.board.Apply(gen, quotes, now) {
		log.Debug().Uint64("generation", gen).Msg("Dropped stale quote refresh")
		return nil
	}

	if r.broker != nil {
		for _, q := range quotes {
			r.broker.Publish(q)
		}
	}

	log.Debug().
		Uint64("generation", gen).
		Int("count", len(quotes)).
		Msg("Quotes refreshed")

	return nil
}
