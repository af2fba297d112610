package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wonny/stockpulse/internal/service/quotes"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	board     *quotes.Board
	broker    *quotes.Broker
	startTime time.Time
	version   string
	stale     time.Duration // quotes older than this make /health/ready fail
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(board *quotes.Board, broker *quotes.Broker, version string, refreshInterval time.Duration) *HealthHandler {
	return &HealthHandler{
		board:     board,
		broker:    broker,
		startTime: time.Now(),
		version:   version,
		stale:     3 * refreshInterval,
	}
}

// SimpleHealthResponse represents a simple health check response
type SimpleHealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents a readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// DetailedHealthResponse represents detailed health information
type DetailedHealthResponse struct {
	Status          string             `json:"status"`
	Version         string             `json:"version"`
	UptimeSeconds   int64              `json:"uptime_seconds"`
	Timestamp       time.Time          `json:"timestamp"`
	QuotesUpdatedAt *time.Time         `json:"quotes_updated_at,omitempty"`
	QuoteCount      int                `json:"quote_count"`
	Broker          quotes.BrokerStats `json:"broker"`
}

// Health returns simple liveness check
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, SimpleHealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// Ready reports whether watchlist quotes are fresh
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	now := time.Now()
	checks := map[string]string{}

	updated := h.board.UpdatedAt()
	switch {
	case updated.IsZero():
		checks["quotes"] = "pending"
	case h.stale > 0 && now.Sub(updated) > h.stale:
		checks["quotes"] = "stale"
	default:
		checks["quotes"] = "ok"
	}

	status, code := "ready", http.StatusOK
	if checks["quotes"] != "ok" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	c.JSON(code, ReadyResponse{
		Status:    status,
		Timestamp: now,
		Checks:    checks,
	})
}

// Detailed returns component status
// GET /api/health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	resp := DetailedHealthResponse{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now(),
		QuoteCount:    len(h.board.Quotes()),
		Broker:        h.broker.Stats(),
	}
	if updated := h.board.UpdatedAt(); !updated.IsZero() {
		resp.QuotesUpdatedAt = &updated
	}
	c.JSON(http.StatusOK, resp)
}
