package dashboard

import (
	"sync"
	"time"

	"github.com/wonny/stockpulse/internal/domain/market"
)

// chartKey identifies what a chart was loaded for
type chartKey struct {
	symbol    string
	timeframe market.Timeframe
}

// State is the per-viewer dashboard state
// Chart loads are sequenced by generation: only the latest issued load may
// replace the bars, so a slow superseded response is discarded
type State struct {
	mu sync.Mutex

	selected  string
	timeframe market.Timeframe

	bars    []market.Bar
	loaded  *chartKey // key of bars, nil until the first successful load
	loading bool
	lastErr error

	issued  uint64
	applied uint64

	lastSeen time.Time
}

// NewState creates a state with the given selection
func NewState(symbol string, tf market.Timeframe) *State {
	return &State{
		selected:  symbol,
		timeframe: tf,
	}
}

func (s *State) key() chartKey {
	return chartKey{symbol: s.selected, timeframe: s.timeframe}
}

// begin marks a chart load for the current selection and returns its generation
func (s *State) begin() (uint64, chartKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	s.loading = true
	return s.issued, s.key()
}

// apply stores bars loaded under gen; stale generations are dropped
func (s *State) apply(gen uint64, key chartKey, bars []market.Bar) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.issued || gen <= s.applied {
		return false
	}
	s.applied = gen
	s.bars = bars
	s.loaded = &key
	s.loading = false
	s.lastErr = nil
	return true
}

// fail records a failed load; prior bars stay in place
func (s *State) fail(gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.issued {
		return false
	}
	s.loading = false
	s.lastErr = err
	return true
}

// needsLoad reports whether the chart is missing or belongs to another selection
func (s *State) needsLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loaded == nil || *s.loaded != s.key()
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// snapshot is a consistent copy used for rendering
type snapshot struct {
	selected  string
	timeframe market.Timeframe
	bars      []market.Bar
	stale     bool // bars belong to a previous selection
	loading   bool
	err       error
}

func (s *State) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot{
		selected:  s.selected,
		timeframe: s.timeframe,
		bars:      s.bars,
		stale:     s.loaded == nil || *s.loaded != s.key(),
		loading:   s.loading,
		err:       s.lastErr,
	}
}
