package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/wonny/stockpulse/internal/api/response"
	"github.com/wonny/stockpulse/internal/domain/market"
)

// StocksHandler proxies market data to the browser
type StocksHandler struct {
	gateway market.Gateway
}

// NewStocksHandler creates a new stocks handler
func NewStocksHandler(gateway market.Gateway) *StocksHandler {
	return &StocksHandler{gateway: gateway}
}

// BarsResponse is the bars endpoint body
type BarsResponse struct {
	Bars []market.Bar `json:"bars"`
}

// Bars returns historical bars
// GET /api/stocks/bars?symbol=AAPL&timeframe=1M
func (h *StocksHandler) Bars(c *gin.Context) {
	symbol := normalizeSymbol(c.Query("symbol"))
	if symbol == "" {
		symbol = market.DefaultSymbol
	}
	tf := market.ParseTimeframe(c.Query("timeframe"))

	bars, err := h.gateway.FetchBars(c.Request.Context(), symbol, tf)
	if err != nil {
		response.InternalError(c, response.MsgFetchBars, err)
		return
	}
	if bars == nil {
		bars = []market.Bar{}
	}

	zerolog.Ctx(c.Request.Context()).Debug().
		Str("symbol", symbol).
		Str("timeframe", tf.String()).
		Int("count", len(bars)).
		Msg("Bars fetched")

	c.JSON(http.StatusOK, BarsResponse{Bars: bars})
}

// Snapshot returns provider snapshots verbatim
// GET /api/stocks/snapshot?symbol=AAPL
// GET /api/stocks/snapshot?symbols=AAPL,MSFT
func (h *StocksHandler) Snapshot(c *gin.Context) {
	ctx := c.Request.Context()

	if symbols := parseSymbols(c.Query("symbols")); len(symbols) > 0 {
		snaps, err := h.gateway.FetchSnapshots(ctx, symbols)
		if err != nil {
			response.InternalError(c, response.MsgFetchSnapshot, err)
			return
		}

		out := make(map[string]json.RawMessage, len(snaps))
		for symbol, s := range snaps {
			out[symbol] = s.RawJSON()
		}
		c.JSON(http.StatusOK, out)
		return
	}

	symbol := normalizeSymbol(c.Query("symbol"))
	if symbol == "" {
		response.BadRequest(c, response.MsgMissingSymbol)
		return
	}

	snap, err := h.gateway.FetchSnapshot(ctx, symbol)
	if err != nil {
		response.InternalError(c, response.MsgFetchSnapshot, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", snap.RawJSON())
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// parseSymbols splits a comma-separated list, dropping blanks
func parseSymbols(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normalizeSymbol(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
