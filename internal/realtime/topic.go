// Package realtime fans out collection snapshots to live subscribers.
package realtime

import (
	"sync"
	"sync/atomic"
)

// Listener receives the full collection snapshot after every change
type Listener[T any] func(snapshot []T)

// Topic holds the subscribers of one collection
type Topic[T any] struct {
	name string

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*subscriber[T]
}

type subscriber[T any] struct {
	listener Listener[T]
	closed   atomic.Bool
}

// NewTopic creates a topic for the named collection
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{
		name: name,
		subs: make(map[uint64]*subscriber[T]),
	}
}

// Name returns the collection the topic belongs to
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers listener and returns its unsubscribe token
func (t *Topic[T]) Subscribe(listener Listener[T]) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	sub := &subscriber[T]{listener: listener}
	t.subs[id] = sub

	return &Subscription{
		cancel: func() {
			sub.closed.Store(true)
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		},
	}
}

// Len returns the number of active subscribers
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Publish delivers snapshot to every active subscriber on the calling
// goroutine. Listeners may unsubscribe from inside the callback.
func (t *Topic[T]) Publish(snapshot []T) {
	t.mu.RLock()
	targets := make([]*subscriber[T], 0, len(t.subs))
	for _, sub := range t.subs {
		targets = append(targets, sub)
	}
	t.mu.RUnlock()

	for _, sub := range targets {
		sub.deliver(snapshot)
	}
}

func (s *subscriber[T]) deliver(snapshot []T) {
	if s.closed.Load() {
		return
	}
	s.listener(snapshot)
}

// Subscription is the token returned by Subscribe
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery. It is safe to call more than once and from
// inside a listener; no delivery starts after it returns.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}
