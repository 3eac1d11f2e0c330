// Package events provides the synchronous event bus used by the navigation model
// to publish change notifications to its observers.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	// EventPermuted is published after every mutation pass of the presentation list.
	EventPermuted EventType = "permuted"

	// EventLayoutProblem is published when a layout pass had to exclude an entry
	// because the backing source violated its contract (e.g. unknown volume type).
	EventLayoutProblem EventType = "layout_problem"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// Permutation describes how an old ordered collection maps onto a new one.
// Permutation[i] is the new index of the element that was at old index i,
// or -1 if that element no longer exists. NewLength is the size of the new
// collection; new slots not targeted by any old index hold new elements.
type Permutation struct {
	NewLength   int
	Permutation []int
}

// Identity returns the permutation that maps a collection of length n onto itself.
func Identity(n int) Permutation {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return Permutation{NewLength: n, Permutation: perm}
}

// Apply rebuilds the new collection from old using p. Slots that no old element
// maps to are filled by fill(index). It returns false when p is not consistent
// with old (wrong length, out-of-range or duplicate targets).
func Apply[T any](p Permutation, old []T, fill func(newIndex int) T) ([]T, bool) {
	if len(p.Permutation) != len(old) || p.NewLength < 0 {
		return nil, false
	}
	out := make([]T, p.NewLength)
	taken := make([]bool, p.NewLength)
	for i, target := range p.Permutation {
		if target < 0 {
			continue
		}
		if target >= p.NewLength || taken[target] {
			return nil, false
		}
		out[target] = old[i]
		taken[target] = true
	}
	for i := range out {
		if !taken[i] {
			out[i] = fill(i)
		}
	}
	return out, true
}

// PermutedEvent reports one combined change of the presentation list.
type PermutedEvent struct {
	BaseEvent
	Source      string // "volumes", "shortcuts", "fake_root" or "initial"
	NewLength   int
	Permutation []int
}

// LayoutProblemEvent reports an entry excluded from a layout pass.
type LayoutProblemEvent struct {
	BaseEvent
	VolumeID   string
	VolumeType string
	Error      error
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine, in registration order.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	ID        string
	EventType EventType // empty for subscriptions to all events
}

type subscriber struct {
	id      string
	handler Handler
}

// EventBus manages event subscriptions and publishing.
// Unlike a buffered channel bus, Publish returns only after every handler has run.
type EventBus struct {
	subscribers map[EventType][]subscriber
	all         []subscriber
	mu          sync.RWMutex
	closed      bool
	published   atomic.Int64
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]subscriber),
	}
}

// Subscribe registers a handler for a specific event type.
func (eb *EventBus) Subscribe(eventType EventType, h Handler) Subscription {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	sub := Subscription{ID: uuid.NewString(), EventType: eventType}
	if eb.closed {
		return sub
	}
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber{id: sub.ID, handler: h})
	return sub
}

// SubscribeAll registers a handler for all events.
func (eb *EventBus) SubscribeAll(h Handler) Subscription {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	sub := Subscription{ID: uuid.NewString()}
	if eb.closed {
		return sub
	}
	eb.all = append(eb.all, subscriber{id: sub.ID, handler: h})
	return sub
}

// Publish delivers an event to type subscribers first, then to all-events
// subscribers, each group in registration order.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	if eb.closed {
		eb.mu.RUnlock()
		return
	}
	// Snapshot so handlers may unsubscribe while being called.
	targets := make([]subscriber, 0, len(eb.subscribers[event.Type()])+len(eb.all))
	targets = append(targets, eb.subscribers[event.Type()]...)
	targets = append(targets, eb.all...)
	eb.mu.RUnlock()

	eb.published.Add(1)
	for _, s := range targets {
		s.handler(event)
	}
}

// Unsubscribe removes a handler. Order of the remaining handlers is preserved.
func (eb *EventBus) Unsubscribe(sub Subscription) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if sub.EventType == "" {
		eb.all = remove(eb.all, sub.ID)
		return
	}
	eb.subscribers[sub.EventType] = remove(eb.subscribers[sub.EventType], sub.ID)
}

func remove(list []subscriber, id string) []subscriber {
	for i, s := range list {
		if s.id == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// Close drops all subscribers. Publishing on a closed bus is a no-op.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.closed = true
	eb.subscribers = make(map[EventType][]subscriber)
	eb.all = nil
}

// PublishedCount returns the number of events published so far.
func (eb *EventBus) PublishedCount() int64 {
	return eb.published.Load()
}

// PublishPermuted is a convenience method for publishing permutation events
func (eb *EventBus) PublishPermuted(source string, p Permutation) {
	eb.Publish(&PermutedEvent{
		BaseEvent: BaseEvent{
			EventType: EventPermuted,
			Time:      time.Now(),
		},
		Source:      source,
		NewLength:   p.NewLength,
		Permutation: p.Permutation,
	})
}

// PublishLayoutProblem is a convenience method for publishing layout problems
func (eb *EventBus) PublishLayoutProblem(volumeID, volumeType string, err error) {
	eb.Publish(&LayoutProblemEvent{
		BaseEvent: BaseEvent{
			EventType: EventLayoutProblem,
			Time:      time.Now(),
		},
		VolumeID:   volumeID,
		VolumeType: volumeType,
		Error:      err,
	})
}
