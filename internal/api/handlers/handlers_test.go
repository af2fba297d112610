package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wonny/stockpulse/internal/api/middleware"
	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/domain/market/mocks"
	"github.com/wonny/stockpulse/internal/service/quotes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	e := gin.New()
	e.Use(middleware.Recovery(), middleware.RequestID())
	return e
}

func do(e http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func stocksEngine(gw market.Gateway) *gin.Engine {
	h := NewStocksHandler(gw)
	e := newEngine()
	e.GET("/api/stocks/bars", h.Bars)
	e.GET("/api/stocks/snapshot", h.Snapshot)
	return e
}

func TestBars(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)

	day := time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)
	gw.EXPECT().FetchBars(gomock.Any(), "MSFT", market.Timeframe1Y).
		Return([]market.Bar{{Date: day, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}}, nil)

	rec := do(stocksEngine(gw), http.MethodGet, "/api/stocks/bars?symbol=msft&timeframe=1Y")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bars":[{"date":"2026-03-02T05:00:00Z","open":1,"high":2,"low":0.5,"close":1.5,"volume":10}]}`, rec.Body.String())
}

func TestBars_Defaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchBars(gomock.Any(), "AAPL", market.Timeframe1M).Return(nil, nil)

	rec := do(stocksEngine(gw), http.MethodGet, "/api/stocks/bars")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bars":[]}`, rec.Body.String())
}

func TestBars_UpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchBars(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &market.UpstreamError{StatusCode: 403, Body: "secret detail"})

	rec := do(stocksEngine(gw), http.MethodGet, "/api/stocks/bars?symbol=AAPL")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch bars"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestSnapshot(t *testing.T) {
	raw := json.RawMessage(`{"latestTrade":{"p":101.5}}`)

	t.Run("single symbol is relayed verbatim", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gw := mocks.NewMockGateway(ctrl)
		gw.EXPECT().FetchSnapshot(gomock.Any(), "AAPL").
			Return(market.NewSnapshot("AAPL", &market.Trade{Price: 101.5}, nil, raw), nil)

		rec := do(stocksEngine(gw), http.MethodGet, "/api/stocks/snapshot?symbol=AAPL")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, string(raw), rec.Body.String())
	})

	t.Run("symbols wins over symbol", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gw := mocks.NewMockGateway(ctrl)
		gw.EXPECT().FetchSnapshots(gomock.Any(), []string{"AAPL", "MSFT"}).
			Return(map[string]market.Snapshot{
				"AAPL": market.NewSnapshot("AAPL", nil, nil, raw),
				"MSFT": market.NewSnapshot("MSFT", nil, nil, nil),
			}, nil)

		rec := do(stocksEngine(gw), http.MethodGet, "/api/stocks/snapshot?symbols=AAPL,MSFT&symbol=TSLA")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"AAPL":{"latestTrade":{"p":101.5}},"MSFT":null}`, rec.Body.String())
	})

	t.Run("missing symbol", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gw := mocks.NewMockGateway(ctrl)

		rec := do(stocksEngine(gw), http.MethodGet, "/api/stocks/snapshot")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing symbol"}`, rec.Body.String())

		rec = do(stocksEngine(gw), http.MethodGet, "/api/stocks/snapshot?symbols=,&symbol=")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gw := mocks.NewMockGateway(ctrl)
		gw.EXPECT().FetchSnapshots(gomock.Any(), gomock.Any()).Return(nil, &market.UpstreamError{StatusCode: 500})

		rec := do(stocksEngine(gw), http.MethodGet, "/api/stocks/snapshot?symbols=AAPL")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch snapshot"}`, rec.Body.String())
	})
}

func seededBoard() *quotes.Board {
	b := quotes.NewBoard([]string{"AAPL", "MSFT"})
	b.Apply(b.Begin(), []market.Quote{
		{Symbol: "AAPL", Price: decimal.NewFromInt(110), ChangePercent: decimal.NewFromInt(10), Kind: "trade"},
	}, time.Now())
	return b
}

func TestQuotes(t *testing.T) {
	h := NewQuotesHandler(seededBoard())
	e := newEngine()
	e.GET("/api/quotes", h.List)
	e.GET("/api/quotes/:symbol", h.Get)

	rec := do(e, http.MethodGet, "/api/quotes")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []market.Quote `json:"data"`
		Meta struct {
			RequestID string `json:"request_id"`
			Count     int    `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "AAPL", body.Data[0].Symbol)
	assert.Equal(t, 1, body.Meta.Count)
	assert.NotEmpty(t, body.Meta.RequestID)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/quotes/aapl").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/quotes/MSFT").Code)
}

func TestHealth(t *testing.T) {
	broker := quotes.NewBroker(1)

	pending := NewHealthHandler(quotes.NewBoard([]string{"AAPL"}), broker, "test", time.Minute)
	e := newEngine()
	e.GET("/health", pending.Health)
	e.GET("/health/ready", pending.Ready)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/health/ready").Code)

	ready := NewHealthHandler(seededBoard(), broker, "test", time.Minute)
	e = newEngine()
	e.GET("/health/ready", ready.Ready)
	e.GET("/api/health/detailed", ready.Detailed)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health/ready").Code)

	rec := do(e, http.MethodGet, "/api/health/detailed")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quote_count":1`)
}

func TestSSE_InitialAndLiveQuotes(t *testing.T) {
	board := seededBoard()
	broker := quotes.NewBroker(4)
	h := NewStreamHandler(board, broker, nil)

	e := newEngine()
	e.GET("/api/stream/quotes", h.SSE)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/stream/quotes?symbols=AAPL,MSFT", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		e.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return broker.Stats().ActiveSubscribers == 1 }, time.Second, 5*time.Millisecond)
	broker.Publish(market.Quote{Symbol: "MSFT", Price: decimal.NewFromInt(400)})
	broker.Publish(market.Quote{Symbol: "TSLA", Price: decimal.NewFromInt(1)})
	require.Eventually(t, func() bool { return broker.Stats().TotalDelivered == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, 2, strings.Count(body, "event: quote\n"))
	assert.Contains(t, body, `"symbol":"AAPL"`)
	assert.Contains(t, body, `"symbol":"MSFT"`)
	assert.NotContains(t, body, `"symbol":"TSLA"`)
	assert.Zero(t, broker.Stats().ActiveSubscribers)
}

func TestWebSocket(t *testing.T) {
	board := seededBoard()
	broker := quotes.NewBroker(4)
	h := NewStreamHandler(board, broker, []string{"http://allowed.test"})

	e := newEngine()
	e.GET("/api/ws/quotes", h.WebSocket)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/quotes"

	t.Run("foreign origin rejected", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"http://evil.test"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("streams quotes", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"http://allowed.test"}})
		require.NoError(t, err)
		defer conn.Close()

		var q market.Quote
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&q))
		assert.Equal(t, "AAPL", q.Symbol)

		require.Eventually(t, func() bool { return broker.Stats().ActiveSubscribers == 1 }, time.Second, 5*time.Millisecond)
		broker.Publish(market.Quote{Symbol: "NVDA", Price: decimal.NewFromInt(900)})

		require.NoError(t, conn.ReadJSON(&q))
		assert.Equal(t, "NVDA", q.Symbol)
		assert.True(t, q.Price.Equal(decimal.NewFromInt(900)))
	})
}
