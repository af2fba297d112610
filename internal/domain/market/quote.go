package market

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote represents a watchlist entry with derived day change
// Recomputed on every refresh, never persisted
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Kind          string          `json:"source"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewQuote derives price and day change from a snapshot
func NewQuote(s Snapshot, now time.Time) Quote {
	price := decimal.NewFromFloat(s.Price())
	ref := decimal.NewFromFloat(s.ReferencePrice())
	change := price.Sub(ref)

	pct := decimal.Zero
	if !ref.IsZero() {
		pct = change.Div(ref).Mul(hundred)
	}

	return Quote{
		Symbol:        s.Symbol,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
		Kind:          s.Kind.String(),
		UpdatedAt:     now,
	}
}

// IsUp reports a non-negative day change
func (q Quote) IsUp() bool {
	return !q.ChangePercent.IsNegative()
}
