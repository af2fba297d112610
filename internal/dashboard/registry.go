package dashboard

import (
	"sync"
	"time"

	"github.com/wonny/stockpulse/internal/domain/market"
)

// Registry keeps one dashboard state per viewer session
type Registry struct {
	mu      sync.Mutex
	states  map[string]*State
	gateway market.Gateway
	quotes  QuoteSource

	defaultSymbol    string
	defaultTimeframe market.Timeframe
	now              func() time.Time
}

// NewRegistry creates a registry; new viewers start on symbol and tf
func NewRegistry(gateway market.Gateway, quotes QuoteSource, symbol string, tf market.Timeframe) *Registry {
	if symbol == "" {
		symbol = market.DefaultSymbol
	}
	if !tf.IsValid() {
		tf = market.DefaultTimeframe
	}
	return &Registry{
		states:           make(map[string]*State),
		gateway:          gateway,
		quotes:           quotes,
		defaultSymbol:    symbol,
		defaultTimeframe: tf,
		now:              time.Now,
	}
}

// Controller returns the controller for a viewer, creating its state on first use
func (r *Registry) Controller(viewerID string) *Controller {
	r.mu.Lock()
	st, ok := r.states[viewerID]
	if !ok {
		st = NewState(r.defaultSymbol, r.defaultTimeframe)
		r.states[viewerID] = st
	}
	r.mu.Unlock()

	st.touch(r.now())
	return NewController(st, r.gateway, r.quotes)
}

// Remove forgets a viewer
func (r *Registry) Remove(viewerID string) {
	r.mu.Lock()
	delete(r.states, viewerID)
	r.mu.Unlock()
}

// Sweep drops states idle longer than maxIdle and returns how many were removed
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, st := range r.states {
		if st.idleSince().Before(cutoff) {
			delete(r.states, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked viewers
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
