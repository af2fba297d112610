package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockpulse/internal/domain/market"
)

// QuoteSource provides the shared watchlist quotes
type QuoteSource interface {
	Watchlist() []string
	Get(symbol string) (market.Quote, bool)
	UpdatedAt() time.Time
}

// Controller drives one viewer's dashboard
type Controller struct {
	state   *State
	gateway market.Gateway
	quotes  QuoteSource
}

// NewController creates a controller over an existing state
func NewController(state *State, gateway market.Gateway, quotes QuoteSource) *Controller {
	return &Controller{
		state:   state,
		gateway: gateway,
		quotes:  quotes,
	}
}

// Select changes the selected symbol; blank input is ignored
func (c *Controller) Select(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}
	c.state.mu.Lock()
	c.state.selected = symbol
	c.state.mu.Unlock()
}

// SetTimeframe changes the chart timeframe; unknown codes become 1M
func (c *Controller) SetTimeframe(code string) {
	if strings.TrimSpace(code) == "" {
		return
	}
	c.state.mu.Lock()
	c.state.timeframe = market.ParseTimeframe(code)
	c.state.mu.Unlock()
}

// Selected returns the current symbol and timeframe
func (c *Controller) Selected() (string, market.Timeframe) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.selected, c.state.timeframe
}

// LoadChart fetches bars for the current selection
// Without force the fetch is skipped when the chart already matches the selection
func (c *Controller) LoadChart(ctx context.Context, force bool) error {
	if !force && !c.state.needsLoad() {
		return nil
	}

	gen, key := c.state.begin()

	bars, err := c.gateway.FetchBars(ctx, key.symbol, key.timeframe)
	if err != nil {
		c.state.fail(gen, err)
		log.Error().
			Err(err).
			Str("symbol", key.symbol).
			Str("timeframe", key.timeframe.String()).
			Msg("Failed to fetch chart")
		return err
	}

	if !c.state.apply(gen, key, bars) {
		log.Debug().
			Uint64("generation", gen).
			Str("symbol", key.symbol).
			Msg("Dropped stale chart response")
	}
	return nil
}

// Filter returns watchlist symbols containing query, ignoring case
func (c *Controller) Filter(query string) []string {
	return filterSymbols(c.quotes.Watchlist(), query)
}

func filterSymbols(watchlist []string, query string) []string {
	q := strings.ToUpper(strings.TrimSpace(query))
	out := make([]string, 0, len(watchlist))
	for _, s := range watchlist {
		if strings.Contains(strings.ToUpper(s), q) {
			out = append(out, s)
		}
	}
	return out
}
