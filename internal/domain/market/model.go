package market

import (
	"time"
)

// DefaultSymbol is selected when nothing else was asked for
const DefaultSymbol = "AAPL"

// DefaultWatchlist is the symbol list shown when no watchlist is configured
var DefaultWatchlist = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "JPM"}

// Bar represents one OHLCV sample for a symbol over a time bucket
// Bars are immutable once fetched
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Trade represents the latest trade print of a symbol
type Trade struct {
	Price     float64   `json:"price"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}
