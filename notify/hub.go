// Package notify delivers per-owner change events to long-poll waiters.
package notify

import (
	"context"
	"sync"
	"time"
)

// Kind names the collection a change happened in.
type Kind string

const (
	KindCategory    Kind = "category"
	KindTransaction Kind = "transaction"
)

// Event announces that a record was created for an owner.
type Event struct {
	OwnerID   string    `json:"owner_id"`
	Kind      Kind      `json:"kind"`
	RecordID  string    `json:"record_id"`
	CreatedAt time.Time `json:"created_at"`
	// Origin identifies the process that produced the event.
	Origin string `json:"origin,omitempty"`
}

// Publisher accepts change events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscription receives events for a single owner. C is closed by Close.
type Subscription struct {
	C <-chan Event

	ch    chan Event
	hub   *Hub
	owner string
	once  sync.Once
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub fans events out to subscribers keyed by owner id. Slow subscribers
// never block publishers: each subscription buffers one pending event and
// further events are dropped until it is drained, which is enough for a
// waiter that only needs to know "something changed".
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers interest in ownerID's changes.
func (h *Hub) Subscribe(ownerID string) *Subscription {
	ch := make(chan Event, 1)
	sub := &Subscription{C: ch, ch: ch, hub: h, owner: ownerID}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[ownerID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[ownerID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish delivers ev to every current subscriber of ev.OwnerID.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.deliver(ev)
	return nil
}

func (h *Hub) deliver(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[ev.OwnerID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for ownerID.
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[sub.owner]
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.owner)
	}
	close(sub.ch)
}
