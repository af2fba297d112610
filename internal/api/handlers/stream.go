package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wonny/stockpulse/internal/api/response"
	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/service/quotes"
)

const (
	keepAliveInterval = 30 * time.Second
	wsWriteWait       = 10 * time.Second
	wsPongWait        = 60 * time.Second
	wsPingPeriod      = wsPongWait * 9 / 10
	maxStreamSymbols  = 100
)

// StreamHandler pushes live quote updates over SSE and WebSocket
type StreamHandler struct {
	board     *quotes.Board
	broker    *quotes.Broker
	upgrader  websocket.Upgrader
	keepAlive time.Duration
}

// NewStreamHandler creates a new stream handler
// Cross-origin WebSocket upgrades are accepted only from allowedOrigins
func NewStreamHandler(board *quotes.Board, broker *quotes.Broker, allowedOrigins []string) *StreamHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return &StreamHandler{
		board:  board,
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				return sameHost(origin, r.Host)
			},
		},
		keepAlive: keepAliveInterval,
	}
}

// subscribe returns a subscription for ?symbols=, or every symbol when absent
func (h *StreamHandler) subscribe(c *gin.Context) (*quotes.Subscription, []string, bool) {
	symbols := parseSymbols(c.Query("symbols"))
	if len(symbols) > maxStreamSymbols {
		response.BadRequest(c, fmt.Sprintf("max %d symbols allowed", maxStreamSymbols))
		return nil, nil, false
	}
	return h.broker.Subscribe(symbols...), symbols, true
}

// initial returns the current board quotes matching symbols
func (h *StreamHandler) initial(symbols []string) []market.Quote {
	all := h.board.Quotes()
	if len(symbols) == 0 {
		return all
	}
	want := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		want[s] = struct{}{}
	}
	out := make([]market.Quote, 0, len(symbols))
	for _, q := range all {
		if _, ok := want[q.Symbol]; ok {
			out = append(out, q)
		}
	}
	return out
}

// SSE streams quote updates as server-sent events
// GET /api/stream/quotes?symbols=AAPL,MSFT
func (h *StreamHandler) SSE(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.InternalError(c, response.MsgStreamNotAllowed, nil)
		return
	}

	sub, symbols, ok := h.subscribe(c)
	if !ok {
		return
	}
	defer h.broker.Unsubscribe(sub)

	// streams outlive the server write timeout
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("SSE: write deadline not cleared")
	}

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for _, q := range h.initial(symbols) {
		writeEvent(w, "quote", q)
	}
	flusher.Flush()

	logger := zerolog.Ctx(c.Request.Context())
	logger.Info().Strs("symbols", symbols).Str("remote", c.ClientIP()).Msg("SSE: client connected")

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			logger.Info().Str("remote", c.ClientIP()).Msg("SSE: client disconnected")
			return

		case q, ok := <-sub.C:
			if !ok {
				return
			}
			writeEvent(w, "quote", q)
			flusher.Flush()

		case <-keepAlive.C:
			fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, event string, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
}

// WebSocket streams quote updates as JSON text frames
// GET /api/ws/quotes?symbols=AAPL,MSFT
func (h *StreamHandler) WebSocket(c *gin.Context) {
	sub, symbols, ok := h.subscribe(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.broker.Unsubscribe(sub)
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("WS: upgrade failed")
		return
	}

	logger := zerolog.Ctx(c.Request.Context()).With().Str("remote", c.ClientIP()).Logger()
	logger.Info().Strs("symbols", symbols).Msg("WS: client connected")

	done := make(chan struct{})
	go h.wsReadPump(conn, done)
	h.wsWritePump(conn, sub, symbols, done)

	h.broker.Unsubscribe(sub)
	logger.Info().Msg("WS: client disconnected")
}

// wsReadPump discards client frames and closes done when the peer goes away
func (h *StreamHandler) wsReadPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) wsWritePump(conn *websocket.Conn, sub *quotes.Subscription, symbols []string, done <-chan struct{}) {
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		conn.Close()
	}()

	for _, q := range h.initial(symbols) {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(q); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			return

		case q, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(q); err != nil {
				return
			}

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func sameHost(origin, host string) bool {
	origin = strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	return strings.EqualFold(origin, host)
}
