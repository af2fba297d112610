package alpaca

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/stockpulse/internal/domain/market"
)

const (
	barsLimit = 500

	// startLayout is RFC3339 in UTC with milliseconds
	startLayout = "2006-01-02T15:04:05.000Z07:00"
)

// barsResponse represents the Alpaca historical bars response
type barsResponse struct {
	Bars          []barPayload `json:"bars"`
	Symbol        string       `json:"symbol"`
	NextPageToken *string      `json:"next_page_token"`
}

// barPayload represents one bar; t and c are required
type barPayload struct {
	T *time.Time `json:"t"` // bucket start
	O float64    `json:"o"`
	H float64    `json:"h"`
	L float64    `json:"l"`
	C *float64   `json:"c"`
	V float64    `json:"v"` // volume; fractional for some feeds
}

type tradePayload struct {
	T time.Time `json:"t"`
	P float64   `json:"p"`
	S int64     `json:"s"`
}

type snapshotPayload struct {
	LatestTrade *tradePayload `json:"latestTrade"`
	DailyBar    *barPayload   `json:"dailyBar"`
}

// FetchBars fetches historical bars for the timeframe window ending now
func (c *Client) FetchBars(ctx context.Context, symbol string, tf market.Timeframe) ([]market.Bar, error) {
	if symbol == "" {
		return nil, &market.ConfigError{Field: "symbol"}
	}

	w := tf.Window()
	start := w.Start(c.now()).UTC().Format(startLayout)

	body, err := c.get(ctx, "/stocks/"+url.PathEscape(symbol)+"/bars", map[string]string{
		"timeframe": string(w.Granularity),
		"start":     start,
		"limit":     strconv.Itoa(barsLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}

	var resp barsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &market.ParseError{What: "bars", Err: err}
	}

	bars := make([]market.Bar, 0, len(resp.Bars))
	for i, b := range resp.Bars {
		bar, err := convertBar(b)
		if err != nil {
			return nil, &market.ParseError{What: fmt.Sprintf("bars[%d]", i), Err: err}
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// FetchSnapshot fetches the latest snapshot of one symbol
func (c *Client) FetchSnapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	if symbol == "" {
		return market.Snapshot{}, &market.ConfigError{Field: "symbol"}
	}

	body, err := c.get(ctx, "/stocks/"+url.PathEscape(symbol)+"/snapshot", nil)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("fetch snapshot %s: %w", symbol, err)
	}

	return decodeSnapshot(symbol, body)
}

// FetchSnapshots fetches snapshots of several symbols in one call
func (c *Client) FetchSnapshots(ctx context.Context, symbols []string) (map[string]market.Snapshot, error) {
	if len(symbols) == 0 {
		return nil, &market.ConfigError{Field: "symbols"}
	}

	body, err := c.get(ctx, "/stocks/snapshots", map[string]string{
		"symbols": strings.Join(symbols, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch snapshots: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &market.ParseError{What: "snapshots", Err: err}
	}

	out := make(map[string]market.Snapshot, len(raw))
	for symbol, payload := range raw {
		s, err := decodeSnapshot(symbol, payload)
		if err != nil {
			return nil, err
		}
		out[symbol] = s
	}

	return out, nil
}

// decodeSnapshot converts a provider snapshot object, keeping the raw payload
func decodeSnapshot(symbol string, payload json.RawMessage) (market.Snapshot, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" || trimmed == "null" {
		return market.NewSnapshot(symbol, nil, nil, nil), nil
	}

	var p snapshotPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return market.Snapshot{}, &market.ParseError{What: "snapshot " + symbol, Err: err}
	}

	var trade *market.Trade
	if p.LatestTrade != nil {
		trade = &market.Trade{
			Price:     p.LatestTrade.P,
			Size:      p.LatestTrade.S,
			Timestamp: p.LatestTrade.T,
		}
	}

	var daily *market.Bar
	if p.DailyBar != nil {
		d := toBar(*p.DailyBar)
		daily = &d
	}

	return market.NewSnapshot(symbol, trade, daily, payload), nil
}

func convertBar(b barPayload) (market.Bar, error) {
	if b.T == nil {
		return market.Bar{}, errors.New("missing timestamp")
	}
	if b.C == nil {
		return market.Bar{}, errors.New("missing close")
	}
	return toBar(b), nil
}

// toBar maps a payload leniently; missing fields stay zero
func toBar(b barPayload) market.Bar {
	bar := market.Bar{
		Open:   b.O,
		High:   b.H,
		Low:    b.L,
		Volume: int64(b.V),
	}
	if b.T != nil {
		bar.Date = *b.T
	}
	if b.C != nil {
		bar.Close = *b.C
	}
	return bar
}
