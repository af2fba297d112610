package quotes

import (
	"sync"
	"time"

	"github.com/wonny/stockpulse/internal/domain/market"
)

// Board holds the latest quote of every watchlist symbol
// Refreshes are sequenced: each fetch takes a generation from Begin and
// Apply rejects results older than the last applied one
type Board struct {
	mu        sync.RWMutex
	watchlist []string
	quotes    map[string]market.Quote
	issued    uint64
	applied   uint64
	updatedAt time.Time
}

// NewBoard creates an empty board for the watchlist
func NewBoard(watchlist []string) *Board {
	w := make([]string, len(watchlist))
	copy(w, watchlist)
	return &Board{
		watchlist: w,
		quotes:    make(map[string]market.Quote, len(w)),
	}
}

// Watchlist returns the board symbols in display order
func (b *Board) Watchlist() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.watchlist))
	copy(out, b.watchlist)
	return out
}

// Begin issues the generation for a new refresh
func (b *Board) Begin() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.issued++
	return b.issued
}

// Apply stores quotes fetched under gen
// Returns false when a newer refresh was already applied
func (b *Board) Apply(gen uint64, quotes []market.Quote, at time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen <= b.applied {
		return false
	}
	b.applied = gen
	for _, q := range quotes {
		b.quotes[q.Symbol] = q
	}
	b.updatedAt = at
	return true
}

// Get returns the quote of a symbol
func (b *Board) Get(symbol string) (market.Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q, ok := b.quotes[symbol]
	return q, ok
}

// Quotes returns known quotes in watchlist order
func (b *Board) Quotes() []market.Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]market.Quote, 0, len(b.quotes))
	for _, s := range b.watchlist {
		if q, ok := b.quotes[s]; ok {
			out = append(out, q)
		}
	}
	return out
}

// UpdatedAt returns when quotes were last applied; zero if never
func (b *Board) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.updatedAt
}
