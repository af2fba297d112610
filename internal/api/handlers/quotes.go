package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wonny/stockpulse/internal/api/response"
	"github.com/wonny/stockpulse/internal/service/quotes"
)

// QuotesHandler serves the derived watchlist quotes
type QuotesHandler struct {
	board *quotes.Board
}

// NewQuotesHandler creates a new quotes handler
func NewQuotesHandler(board *quotes.Board) *QuotesHandler {
	return &QuotesHandler{board: board}
}

// List returns every known watchlist quote
// GET /api/quotes
func (h *QuotesHandler) List(c *gin.Context) {
	qs := h.board.Quotes()
	response.SuccessWithCount(c, qs, len(qs))
}

// Get returns the quote of one symbol
// GET /api/quotes/:symbol
func (h *QuotesHandler) Get(c *gin.Context) {
	q, ok := h.board.Get(normalizeSymbol(c.Param("symbol")))
	if !ok {
		response.NotFound(c, "Quote not found")
		return
	}
	response.Success(c, q)
}
