// Package feed fans newly submitted records out to live HQ subscribers.
package feed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

// subscriberBuffer bounds how far a subscriber may lag before events are dropped for it.
const subscriberBuffer = 100

type Event struct {
	Kind   models.Kind   `json:"kind"`
	ID     string        `json:"id"`
	Record models.Record `json:"record"`
	At     time.Time     `json:"at"`
}

func NewEvent(rec models.Record, at time.Time) Event {
	return Event{Kind: rec.Kind(), ID: rec.ID(), Record: rec, At: at}
}

type Broadcaster struct {
	subscribers map[uint64]chan Event
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan Event),
	}
}

func (b *Broadcaster) Subscribe() (uint64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			// slow subscriber
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel so open streams end.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
