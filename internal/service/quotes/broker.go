package quotes

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockpulse/internal/domain/market"
)

const allSymbols = "*"

// Broker distributes quote updates to subscribers
// Publishing never blocks: updates to a full subscriber buffer are dropped
type Broker struct {
	mu sync.RWMutex

	subscribers map[string]map[*Subscription]struct{} // symbol → subscriptions
	allSubs     map[*Subscription]struct{}

	channelSize int

	published atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
}

// Subscription receives quote updates on C until unsubscribed
type Subscription struct {
	C       chan market.Quote
	symbols []string // empty means every symbol
}

// BrokerStats holds broker statistics
type BrokerStats struct {
	ActiveSymbols     int     `json:"active_symbols"`
	ActiveSubscribers int     `json:"active_subscribers"`
	TotalPublished    int64   `json:"total_published"`
	TotalDelivered    int64   `json:"total_delivered"`
	TotalDropped      int64   `json:"total_dropped"`
	DropRate          float64 `json:"drop_rate"` // percentage
}

// NewBroker creates a new broker; channelSize <= 0 uses 64
func NewBroker(channelSize int) *Broker {
	if channelSize <= 0 {
		channelSize = 64
	}
	return &Broker{
		subscribers: make(map[string]map[*Subscription]struct{}),
		allSubs:     make(map[*Subscription]struct{}),
		channelSize: channelSize,
	}
}

// Subscribe creates a subscription for the given symbols
func (b *Broker) Subscribe(symbols ...string) *Subscription {
	if len(symbols) == 0 {
		return b.SubscribeAll()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		C:       make(chan market.Quote, b.channelSize*len(symbols)),
		symbols: symbols,
	}
	for _, symbol := range symbols {
		if _, ok := b.subscribers[symbol]; !ok {
			b.subscribers[symbol] = make(map[*Subscription]struct{})
		}
		b.subscribers[symbol][sub] = struct{}{}
	}

	log.Debug().Strs("symbols", symbols).Msg("Broker: new subscription")
	return sub
}

// SubscribeAll creates a subscription for every symbol
func (b *Broker) SubscribeAll() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{C: make(chan market.Quote, b.channelSize*8)}
	b.allSubs[sub] = struct{}{}

	log.Debug().Str("symbol", allSymbols).Msg("Broker: new subscription")
	return sub
}

// Unsubscribe removes a subscription and closes its channel
// Calling it twice is a no-op
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	found := false
	if len(sub.symbols) == 0 {
		if _, ok := b.allSubs[sub]; ok {
			delete(b.allSubs, sub)
			found = true
		}
	}
	for _, symbol := range sub.symbols {
		subs, ok := b.subscribers[symbol]
		if !ok {
			continue
		}
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			found = true
		}
		if len(subs) == 0 {
			delete(b.subscribers, symbol)
		}
	}

	if found {
		close(sub.C)
	}
}

// Publish sends a quote to every matching subscriber
func (b *Broker) Publish(q market.Quote) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.published.Add(1)

	for sub := range b.subscribers[q.Symbol] {
		b.send(sub, q)
	}
	for sub := range b.allSubs {
		b.send(sub, q)
	}
}

func (b *Broker) send(sub *Subscription, q market.Quote) {
	select {
	case sub.C <- q:
		b.delivered.Add(1)
	default:
		b.dropped.Add(1)
	}
}

// Stats returns broker statistics
func (b *Broker) Stats() BrokerStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make(map[*Subscription]struct{}, len(b.allSubs))
	for sub := range b.allSubs {
		subs[sub] = struct{}{}
	}
	for _, set := range b.subscribers {
		for sub := range set {
			subs[sub] = struct{}{}
		}
	}

	published := b.published.Load()
	dropped := b.dropped.Load()
	dropRate := float64(0)
	if published > 0 {
		dropRate = float64(dropped) / float64(published) * 100
	}

	return BrokerStats{
		ActiveSymbols:     len(b.subscribers),
		ActiveSubscribers: len(subs),
		TotalPublished:    published,
		TotalDelivered:    b.delivered.Load(),
		TotalDropped:      dropped,
		DropRate:          dropRate,
	}
}

// Close closes every subscription
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	closed := make(map[*Subscription]struct{})
	for _, subs := range b.subscribers {
		for sub := range subs {
			closed[sub] = struct{}{}
		}
	}
	for sub := range b.allSubs {
		closed[sub] = struct{}{}
	}
	for sub := range closed {
		close(sub.C)
	}

	b.subscribers = make(map[string]map[*Subscription]struct{})
	b.allSubs = make(map[*Subscription]struct{})

	log.Info().Int("subscriptions", len(closed)).Msg("Broker closed")
}
