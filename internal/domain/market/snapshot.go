package market

import (
	"encoding/json"
)

// SnapshotKind tells which price source a snapshot carries
type SnapshotKind int

const (
	SnapshotEmpty    SnapshotKind = iota // neither trade nor daily bar
	SnapshotTrade                        // latest trade present
	SnapshotDailyBar                     // only the daily bar present
)

func (k SnapshotKind) String() string {
	switch k {
	case SnapshotTrade:
		return "trade"
	case SnapshotDailyBar:
		return "daily_bar"
	default:
		return "empty"
	}
}

// Snapshot represents the latest known trade/daily state of a symbol
// Raw keeps the provider object so it can be relayed verbatim
type Snapshot struct {
	Symbol      string
	Kind        SnapshotKind
	LatestTrade *Trade
	DailyBar    *Bar
	Raw         json.RawMessage
}

// NewSnapshot builds a snapshot and derives its kind
// A trade printed at zero is treated as absent
func NewSnapshot(symbol string, trade *Trade, daily *Bar, raw json.RawMessage) Snapshot {
	s := Snapshot{
		Symbol:   symbol,
		DailyBar: daily,
		Raw:      raw,
	}

	switch {
	case trade != nil && trade.Price != 0:
		s.Kind = SnapshotTrade
		s.LatestTrade = trade
	case daily != nil:
		s.Kind = SnapshotDailyBar
	default:
		s.Kind = SnapshotEmpty
	}

	return s
}

// Price returns the current price implied by the snapshot
func (s Snapshot) Price() float64 {
	switch s.Kind {
	case SnapshotTrade:
		return s.LatestTrade.Price
	case SnapshotDailyBar:
		return s.DailyBar.Close
	default:
		return 0
	}
}

// ReferencePrice returns the price the day change is measured against:
// the daily open when known, otherwise the current price
func (s Snapshot) ReferencePrice() float64 {
	if s.DailyBar != nil && s.DailyBar.Open != 0 {
		return s.DailyBar.Open
	}
	return s.Price()
}

// RawJSON returns the provider payload, or JSON null when absent
func (s Snapshot) RawJSON() json.RawMessage {
	if len(s.Raw) == 0 {
		return json.RawMessage("null")
	}
	return s.Raw
}
