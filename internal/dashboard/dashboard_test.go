package dashboard

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/domain/market/mocks"
)

type fakeQuotes struct {
	watchlist []string
	quotes    map[string]market.Quote
}

func (f fakeQuotes) Watchlist() []string { return f.watchlist }

func (f fakeQuotes) Get(symbol string) (market.Quote, bool) {
	q, ok := f.quotes[symbol]
	return q, ok
}

func (f fakeQuotes) UpdatedAt() time.Time { return time.Time{} }

func testQuotes() fakeQuotes {
	return fakeQuotes{
		watchlist: []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "JPM"},
		quotes: map[string]market.Quote{
			"AAPL": {Symbol: "AAPL", Price: decimal.RequireFromString("123.456"), ChangePercent: decimal.RequireFromString("1.234")},
			"TSLA": {Symbol: "TSLA", Price: decimal.RequireFromString("200"), ChangePercent: decimal.RequireFromString("-2.5")},
		},
	}
}

func testBars() []market.Bar {
	return []market.Bar{
		{Close: 10, Open: 9, High: 11, Low: 8, Volume: 1_000_000},
		{Close: 12, Open: 10, High: 13, Low: 9.5, Volume: 12_345_678},
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$123.45", FormatPrice(decimal.RequireFromString("123.454")))
	assert.Equal(t, "$0.00", FormatPrice(decimal.Zero))
	assert.Equal(t, "+1.23%", FormatPercent(decimal.RequireFromString("1.234")))
	assert.Equal(t, "+0.00%", FormatPercent(decimal.Zero))
	assert.Equal(t, "-1.23%", FormatPercent(decimal.RequireFromString("-1.234")))
	assert.Equal(t, "12.35M", FormatVolume(12_345_678))
	assert.Equal(t, "$9.50", FormatPriceFloat(9.5))
}

func TestFilter(t *testing.T) {
	wl := []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META"}
	assert.Equal(t, []string{"AAPL", "AMZN", "META"}, filterSymbols(wl, "a"))
	assert.Equal(t, []string{"MSFT"}, filterSymbols(wl, " sf "))
	assert.Equal(t, wl, filterSymbols(wl, ""))
	assert.Empty(t, filterSymbols(wl, "zzz"))
}

func TestLoadChart_OnlyWhenSelectionChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchBars(gomock.Any(), "AAPL", market.Timeframe1M).Return(testBars(), nil).Times(2)
	gw.EXPECT().FetchBars(gomock.Any(), "MSFT", market.Timeframe1M).Return(nil, nil).Times(1)
	gw.EXPECT().FetchBars(gomock.Any(), "MSFT", market.Timeframe5Y).Return(testBars(), nil).Times(1)

	c := NewController(NewState("AAPL", market.Timeframe1M), gw, testQuotes())
	ctx := testContext(t)

	require.NoError(t, c.LoadChart(ctx, false))
	require.NoError(t, c.LoadChart(ctx, false)) // same pair, no fetch
	require.NoError(t, c.LoadChart(ctx, true))  // refresh forces a fetch

	c.Select("msft")
	require.NoError(t, c.LoadChart(ctx, false))
	assert.True(t, c.View("", Viewer{}).Chart.Empty)

	c.SetTimeframe("5y")
	require.NoError(t, c.LoadChart(ctx, false))
	symbol, tf := c.Selected()
	assert.Equal(t, "MSFT", symbol)
	assert.Equal(t, market.Timeframe5Y, tf)
	assert.False(t, c.View("", Viewer{}).Chart.Empty)
}

func TestLoadChart_DropsStaleResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)

	release := make(chan struct{})
	started := make(chan struct{})
	slow := []market.Bar{{Close: 1}, {Close: 2}, {Close: 3}}

	gw.EXPECT().FetchBars(gomock.Any(), "AAPL", market.Timeframe1M).
		DoAndReturn(func(context.Context, string, market.Timeframe) ([]market.Bar, error) {
			close(started)
			<-release
			return slow, nil
		})
	gw.EXPECT().FetchBars(gomock.Any(), "TSLA", market.Timeframe1M).Return(testBars(), nil)

	state := NewState("AAPL", market.Timeframe1M)
	c := NewController(state, gw, testQuotes())

	done := make(chan error, 1)
	go func() { done <- c.LoadChart(testContext(t), false) }()
	<-started

	c.Select("TSLA")
	require.NoError(t, c.LoadChart(testContext(t), false))

	close(release)
	require.NoError(t, <-done)

	vm := c.View("", Viewer{})
	assert.Equal(t, "TSLA", vm.Selected)
	assert.Equal(t, 2, vm.Chart.Points())
	assert.False(t, vm.Loading)
}

func TestLoadChart_FailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gomock.InOrder(
		gw.EXPECT().FetchBars(gomock.Any(), "AAPL", market.Timeframe1M).Return(testBars(), nil),
		gw.EXPECT().FetchBars(gomock.Any(), "AAPL", market.Timeframe1M).Return(nil, errors.New("down")),
	)

	c := NewController(NewState("AAPL", market.Timeframe1M), gw, testQuotes())
	require.NoError(t, c.LoadChart(testContext(t), false))
	assert.Error(t, c.LoadChart(testContext(t), true))

	vm := c.View("", Viewer{})
	assert.True(t, vm.Failed)
	assert.False(t, vm.Loading)
	assert.Equal(t, 2, vm.Chart.Points())
}

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	r := NewRegistry(gw, testQuotes(), "", market.Timeframe("bad"))

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	a := r.Controller("a")
	a.Select("NVDA")
	symbol, tf := r.Controller("a").Selected()
	assert.Equal(t, "NVDA", symbol)
	assert.Equal(t, market.Timeframe1M, tf)

	b := r.Controller("b")
	symbol, _ = b.Selected()
	assert.Equal(t, market.DefaultSymbol, symbol)

	now = now.Add(time.Hour)
	r.Controller("b")
	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.Equal(t, 1, r.Len())

	r.Remove("b")
	assert.Zero(t, r.Len())
}

func render(t *testing.T, vm ViewModel) *goquery.Document {
	t.Helper()
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, TemplateName, vm))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestTemplate_Render(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchBars(gomock.Any(), "AAPL", market.Timeframe1M).Return(testBars(), nil)

	c := NewController(NewState("AAPL", market.Timeframe1M), gw, testQuotes())
	require.NoError(t, c.LoadChart(testContext(t), false))

	doc := render(t, c.View("", Viewer{AuthAvailable: true}))

	assert.Equal(t, 8, doc.Find("#watchlist a.watch").Length())
	sel := doc.Find("#watchlist a.watch.selected")
	assert.Equal(t, "AAPL", sel.AttrOr("data-symbol", ""))
	assert.Equal(t, "+1.23%", sel.Find(".pct").Text())
	assert.Equal(t, "$123.46", sel.Find(".price").Text())
	assert.True(t, doc.Find(`a.watch[data-symbol="TSLA"] .pct.down`).Length() == 1)

	assert.Equal(t, "1M", doc.Find(".tf.active").Text())
	assert.Equal(t, 6, doc.Find(".tfs a").Length())

	svg := doc.Find("#chart svg")
	assert.Equal(t, "0 0 2 100", svg.AttrOr("viewbox", svg.AttrOr("viewBox", "")))
	assert.Equal(t, "M 0 100 L 0 100 L 1 0", doc.Find("path.line").AttrOr("d", ""))
	assert.Equal(t, "#22c55e", doc.Find("path.line").AttrOr("stroke", ""))

	assert.Equal(t, "Low: $10.00", doc.Find("#low").Text())
	assert.Equal(t, "High: $12.00", doc.Find("#high").Text())
	assert.Equal(t, "2 data points", doc.Find("#points").Text())
	assert.Contains(t, doc.Find(".stats").Text(), "12.35M")

	assert.Equal(t, 1, doc.Find("#signin").Length())
	assert.Contains(t, doc.Find("footer").Text(), "Data by Alpaca Markets")
	assert.Contains(t, doc.Find("footer").Text(), "Prices may be delayed")
}

func TestTemplate_NoDataAndSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)

	c := NewController(NewState("AAPL", market.Timeframe1M), gw, testQuotes())
	doc := render(t, c.View("ms", Viewer{AuthAvailable: true, SignedIn: true, Name: "jane"}))

	assert.Equal(t, 1, doc.Find("#nodata").Length())
	assert.Equal(t, 0, doc.Find(".stats").Length())
	assert.Equal(t, 1, doc.Find("#watchlist a.watch").Length())
	assert.Equal(t, "MS", doc.Find(`input[name="q"]`).AttrOr("value", ""))
	assert.Equal(t, "jane", doc.Find("#signout").Text())
}

func TestTemplate_AuthHiddenWhenUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewController(NewState("AAPL", market.Timeframe1M), mocks.NewMockGateway(ctrl), testQuotes())

	doc := render(t, c.View("", Viewer{}))
	assert.Equal(t, 0, doc.Find("#auth").Length())
}
