package market

import (
	"strings"
	"time"
)

// Timeframe represents a user-selectable chart window
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
	Timeframe3M Timeframe = "3M"
	Timeframe1Y Timeframe = "1Y"
	Timeframe5Y Timeframe = "5Y"
)

// DefaultTimeframe is used for empty and unknown timeframe codes
const DefaultTimeframe = Timeframe1M

// Granularity is the provider sampling size of one bar
type Granularity string

const (
	GranularityHour Granularity = "1Hour"
	GranularityDay  Granularity = "1Day"
	GranularityWeek Granularity = "1Week"
)

const day = 24 * time.Hour

// Window represents the upstream query derived from a timeframe
type Window struct {
	Lookback    time.Duration
	Granularity Granularity
}

// Start returns the first instant covered by the window
func (w Window) Start(now time.Time) time.Time {
	return now.Add(-w.Lookback)
}

var windows = map[Timeframe]Window{
	Timeframe1D: {Lookback: day, Granularity: GranularityHour},
	Timeframe1W: {Lookback: 7 * day, Granularity: GranularityHour},
	Timeframe1M: {Lookback: 30 * day, Granularity: GranularityDay},
	Timeframe3M: {Lookback: 90 * day, Granularity: GranularityDay},
	Timeframe1Y: {Lookback: 365 * day, Granularity: GranularityDay},
	Timeframe5Y: {Lookback: 5 * 365 * day, Granularity: GranularityWeek},
}

// Timeframes lists every selectable timeframe in display order
func Timeframes() []Timeframe {
	return []Timeframe{Timeframe1D, Timeframe1W, Timeframe1M, Timeframe3M, Timeframe1Y, Timeframe5Y}
}

// ParseTimeframe parses a timeframe code, falling back to 1M
func ParseTimeframe(s string) Timeframe {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	if !tf.IsValid() {
		return DefaultTimeframe
	}
	return tf
}

// IsValid checks if the timeframe is one of the known codes
func (tf Timeframe) IsValid() bool {
	_, ok := windows[tf]
	return ok
}

// Window returns lookback and granularity for the timeframe
// Unknown timeframes map to the 1M window
func (tf Timeframe) Window() Window {
	if w, ok := windows[tf]; ok {
		return w
	}
	return windows[DefaultTimeframe]
}

func (tf Timeframe) String() string {
	return string(tf)
}
