package realtime

import (
	"sync"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/metrics"
)

// subscriberBuffer is how many events a slow subscriber may lag before drops
const subscriberBuffer = 16

// Subscription receives the events of one game. C is closed when the game is
// forgotten; Unsubscribe never closes it.
type Subscription struct {
	GameID string
	TeamID string
	C      chan domain.Event
}

// Broker is an in-process pub/sub keyed by game id
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscriber for gameID. An empty teamID receives every
// event of the game, otherwise team-scoped events of other teams are skipped.
func (b *Broker) Subscribe(gameID, teamID string) *Subscription {
	sub := &Subscription{
		GameID: gameID,
		TeamID: teamID,
		C:      make(chan domain.Event, subscriberBuffer),
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.C)
		return sub
	}
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[*Subscription]struct{})
	}
	b.subs[gameID][sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes sub from its game.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs[sub.GameID], sub)
	if len(b.subs[sub.GameID]) == 0 {
		delete(b.subs, sub.GameID)
	}
	b.mu.Unlock()
}

// Publish delivers evt to the game's subscribers without blocking and returns
// how many received it.
func (b *Broker) Publish(evt domain.Event) int {
	delivered := 0
	b.mu.RLock()
	for sub := range b.subs[evt.GameID] {
		if !evt.VisibleTo(sub.TeamID) {
			continue
		}
		select {
		case sub.C <- evt:
			delivered++
		default:
			metrics.EventsDropped.Inc()
		}
	}
	b.mu.RUnlock()
	return delivered
}

// Forget closes every subscription of a deleted game.
func (b *Broker) Forget(gameID string) {
	b.mu.Lock()
	for sub := range b.subs[gameID] {
		close(sub.C)
	}
	delete(b.subs, gameID)
	b.mu.Unlock()
}

// Close ends every subscription on shutdown; later subscriptions start closed.
func (b *Broker) Close() {
	b.mu.Lock()
	for gameID, subs := range b.subs {
		for sub := range subs {
			close(sub.C)
		}
		delete(b.subs, gameID)
	}
	b.closed = true
	b.mu.Unlock()
}

// Subscribers returns the number of subscribers of gameID.
func (b *Broker) Subscribers(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[gameID])
}
