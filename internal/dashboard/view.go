package dashboard

import (
	"strings"
	"time"

	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/service/chart"
)

// Footer lines
const (
	Attribution = "Data by Alpaca Markets"
	Disclaimer  = "Prices may be delayed"
)

// Viewer describes the signed-in state shown in the header
type Viewer struct {
	AuthAvailable bool
	SignedIn      bool
	Name          string
}

// WatchItem is one watchlist row
type WatchItem struct {
	Symbol   string
	HasQuote bool
	Price    string
	Percent  string
	Up       bool
	Selected bool
}

// TimeframeOption is one timeframe button
type TimeframeOption struct {
	Code   string
	Active bool
}

// Stat is one latest-bar tile
type Stat struct {
	Label string
	Value string
}

// ViewModel is everything the dashboard template renders
type ViewModel struct {
	Viewer     Viewer
	Query      string
	Watchlist  []WatchItem
	Selected   string
	Current    *WatchItem
	Timeframe  string
	Timeframes []TimeframeOption

	Loading bool
	Failed  bool
	Chart   chart.Series
	Low     string
	High    string
	Stats   []Stat

	QuotesUpdatedAt time.Time
	Attribution     string
	Disclaimer      string
}

// View builds the view model for the current state
func (c *Controller) View(query string, viewer Viewer) ViewModel {
	snap := c.state.snapshot()
	query = strings.ToUpper(strings.TrimSpace(query))

	vm := ViewModel{
		Viewer:          viewer,
		Query:           query,
		Selected:        snap.selected,
		Timeframe:       snap.timeframe.String(),
		Loading:         snap.loading,
		Failed:          snap.err != nil,
		QuotesUpdatedAt: c.quotes.UpdatedAt(),
		Attribution:     Attribution,
		Disclaimer:      Disclaimer,
	}

	for _, s := range c.Filter(query) {
		vm.Watchlist = append(vm.Watchlist, c.watchItem(s, snap.selected))
	}
	if q, ok := c.quotes.Get(snap.selected); ok {
		item := itemFromQuote(q, true)
		vm.Current = &item
	}

	for _, tf := range market.Timeframes() {
		vm.Timeframes = append(vm.Timeframes, TimeframeOption{
			Code:   tf.String(),
			Active: tf == snap.timeframe,
		})
	}

	var bars []market.Bar
	if !snap.stale {
		bars = snap.bars
	}
	vm.Chart = chart.Build(bars)
	if !vm.Chart.Empty {
		latest := vm.Chart.Latest
		vm.Low = FormatPriceFloat(vm.Chart.Min)
		vm.High = FormatPriceFloat(vm.Chart.Max)
		vm.Stats = []Stat{
			{Label: "Open", Value: FormatPriceFloat(latest.Open)},
			{Label: "High", Value: FormatPriceFloat(latest.High)},
			{Label: "Low", Value: FormatPriceFloat(latest.Low)},
			{Label: "Volume", Value: FormatVolume(latest.Volume)},
		}
	}

	return vm
}

func (c *Controller) watchItem(symbol, selected string) WatchItem {
	if q, ok := c.quotes.Get(symbol); ok {
		return itemFromQuote(q, symbol == selected)
	}
	return WatchItem{Symbol: symbol, Selected: symbol == selected}
}

func itemFromQuote(q market.Quote, selected bool) WatchItem {
	return WatchItem{
		Symbol:   q.Symbol,
		HasQuote: true,
		Price:    FormatPrice(q.Price),
		Percent:  FormatPercent(q.ChangePercent),
		Up:       q.IsUp(),
		Selected: selected,
	}
}
