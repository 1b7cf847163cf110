package gamification

import (
	"sync"
	"time"
)

// StateChanged is published after every award mutation.
type StateChanged struct {
	UserID string    `json:"userId"`
	State  State     `json:"state"`
	At     time.Time `json:"at"`
}

// Broker fans StateChanged events out to in-process subscribers of one user.
// Each subscriber owns a bounded buffer; when it is full the oldest queued
// event is discarded. Subscriptions are per user, so a dropped event is
// always an older snapshot of the same user and the newest one survives.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]chan StateChanged
	nextID uint64
	buffer int
}

// NewBroker creates a broker whose subscriber channels hold buffer events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{subs: make(map[string]map[uint64]chan StateChanged), buffer: buffer}
}

// Subscribe registers a listener for userID's events. The returned cancel
// func closes the channel and is safe to call more than once.
func (b *Broker) Subscribe(userID string) (<-chan StateChanged, func()) {
	ch := make(chan StateChanged, b.buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[uint64]chan StateChanged)
	}
	b.subs[userID][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of ev.UserID without blocking.
func (b *Broker) Publish(ev StateChanged) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[ev.UserID] {
		deliver(ch, ev)
	}
}

// Subscribers returns the number of live subscriptions across all users.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.subs {
		n += len(subs)
	}
	return n
}

func deliver(ch chan StateChanged, ev StateChanged) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		// full: drop the oldest and retry
		select {
		case <-ch:
		default:
		}
	}
}
