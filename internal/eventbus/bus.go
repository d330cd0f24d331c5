// Package eventbus implements the double-buffered, filtered/mapped/once/weak
// subscription event bus system from spec.md section 4.4. Grounded on
// original_source's engine/core/tests/event_bus_*.rs behavioral tests (the
// Rust source for ecs/event.rs itself was filtered from the pack, so the
// tests are the ground truth for exact semantics).
package eventbus

import (
	"encoding/json"
	"fmt"
	"sync"
)

// WeakOwner is a handle subscribers can bind their subscription's lifetime
// to. Go has no automatic weak references, so liveness is modeled with an
// alive flag that Drop clears and fan-out checks.
type WeakOwner struct {
	alive bool
}

// NewWeakOwner creates a live owner handle.
func NewWeakOwner() *WeakOwner {
	return &WeakOwner{alive: true}
}

// Drop marks the owner as gone; subscriptions bound to it are garbage
// collected on the next fan-out.
func (w *WeakOwner) Drop() {
	w.alive = false
}

// SubscriptionID identifies a subscription for later unsubscription.
type SubscriptionID uint64

type subscriber[T any] struct {
	id     SubscriptionID
	fn     func(T)
	once   bool
	filter func(T) bool
	owner  *WeakOwner // nil for non-weak subscriptions
}

// Bus is a named, buffered publish/subscribe channel over payload type T,
// double-buffered across Update() calls.
type Bus[T any] struct {
	mu         sync.Mutex
	events     []T
	lastEvents []T
	subs       []*subscriber[T]
	nextSubID  SubscriptionID

	// totalSent counts every event ever sent, independent of Update()
	// swaps. EventReader compares its own high-water mark against this to
	// know how far into (last_events ++ events) it hasn't read yet.
	totalSent uint64
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Send appends e to the current buffer and fans out immediately to every
// subscriber whose predicate (if any) admits e. Weak subscribers whose
// owner has been dropped, and once-subscribers that just fired, are pruned
// from the subscriber list before Send returns.
func (b *Bus[T]) Send(e T) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.totalSent++

	live := b.subs[:0]
	var toCall []func(T)
	for _, s := range b.subs {
		if s.owner != nil && !s.owner.alive {
			continue // weak owner dropped: drop subscription
		}
		admitted := s.filter == nil || s.filter(e)
		if admitted {
			toCall = append(toCall, s.fn)
		}
		if s.once && admitted {
			continue // fires at most once: drop after this send
		}
		live = append(live, s)
	}
	b.subs = live
	b.mu.Unlock()

	for _, fn := range toCall {
		fn(e)
	}
}

// Update moves the current buffer into last_events and clears the current
// buffer, per spec.md section 4.4.
func (b *Bus[T]) Update() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastEvents = b.events
	b.events = nil
}

// Events returns a snapshot of the current (unswapped) buffer.
func (b *Bus[T]) Events() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, len(b.events))
	copy(out, b.events)
	return out
}

// LastEvents returns a snapshot of the last-swapped buffer.
func (b *Bus[T]) LastEvents() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, len(b.lastEvents))
	copy(out, b.lastEvents)
	return out
}

// SetEvents overwrites the current buffer (used when restoring from a
// serialized tail).
func (b *Bus[T]) SetEvents(events []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = events
}

// SetLastEvents overwrites the last buffer (used when restoring from a
// serialized tail).
func (b *Bus[T]) SetLastEvents(events []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastEvents = events
}

// EventReader is a cursor into a Bus: Read returns only the events appended
// since the reader's last call, per spec.md section 4.4. The zero value
// reads the bus's entire retained history (last_events ++ events) on its
// first call, matching original_source's EventReader::default() observing
// whatever a bus already holds at construction time (see
// engine/core/tests/dynamic_event_bus.rs).
type EventReader[T any] struct {
	seen uint64
}

// NewEventReader creates a reader with no events seen yet.
func NewEventReader[T any]() *EventReader[T] {
	return &EventReader[T]{}
}

// Read returns the events sent to b since r's last Read (or since r was
// constructed, for a reader's first call), advancing r's cursor. A reader
// can only ever observe events retained in last_events or events — one
// Update() past a reader's high-water mark and the superseded generation is
// gone, matching the bus's own double-buffering.
func (r *EventReader[T]) Read(b *Bus[T]) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.seen > b.totalSent {
		r.seen = b.totalSent
	}
	elapsed := b.totalSent - r.seen
	history := make([]T, 0, len(b.lastEvents)+len(b.events))
	history = append(history, b.lastEvents...)
	history = append(history, b.events...)

	newCount := elapsed
	if newCount > uint64(len(history)) {
		newCount = uint64(len(history))
	}
	r.seen = b.totalSent

	skip := len(history) - int(newCount)
	out := make([]T, newCount)
	copy(out, history[skip:])
	return out
}

// Subscribe registers f permanently; returns an id for later Unsubscribe.
func (b *Bus[T]) Subscribe(f func(T)) SubscriptionID {
	return b.addSub(f, false, nil, nil)
}

// SubscribeOnce registers f to run exactly once, then auto-unsubscribes.
func (b *Bus[T]) SubscribeOnce(f func(T)) SubscriptionID {
	return b.addSub(f, true, nil, nil)
}

// SubscribeWithFilter calls f(e) only when pred(e) is true.
func (b *Bus[T]) SubscribeWithFilter(f func(T), pred func(T) bool) SubscriptionID {
	return b.addSub(f, false, pred, nil)
}

// SubscribeWithMap calls f(u) when mapFn(e) yields (u, true).
func SubscribeWithMap[T any, U any](b *Bus[T], f func(U), mapFn func(T) (U, bool)) SubscriptionID {
	return b.addSub(func(e T) {
		if u, ok := mapFn(e); ok {
			f(u)
		}
	}, false, nil, nil)
}

// SubscribeWeak retains a weak reference to owner: when owner is dropped,
// the subscription is garbage collected on the next fan-out.
func (b *Bus[T]) SubscribeWeak(owner *WeakOwner, f func(T)) SubscriptionID {
	return b.addSub(f, false, nil, owner)
}

func (b *Bus[T]) addSub(f func(T), once bool, filter func(T) bool, owner *WeakOwner) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSubID++
	id := b.nextSubID
	b.subs = append(b.subs, &subscriber[T]{id: id, fn: f, once: once, filter: filter, owner: owner})
	return id
}

// Unsubscribe removes a subscription by id.
func (b *Bus[T]) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	filtered := b.subs[:0]
	for _, s := range b.subs {
		if s.id != id {
			filtered = append(filtered, s)
		}
	}
	b.subs = filtered
}

// MarshalTail encodes (events, last_events) as a pair of JSON documents, per
// spec.md section 9's "buses support emitting (events, last_events) as a
// serialisable pair." Subscribers are never part of the tail.
func (b *Bus[T]) MarshalTail() (events, lastEvents json.RawMessage, err error) {
	b.mu.Lock()
	e, le := b.events, b.lastEvents
	b.mu.Unlock()

	events, err = json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("eventbus: marshal events: %w", err)
	}
	lastEvents, err = json.Marshal(le)
	if err != nil {
		return nil, nil, fmt.Errorf("eventbus: marshal last_events: %w", err)
	}
	return events, lastEvents, nil
}

// UnmarshalTail restores (events, last_events) from a serialized pair and
// resets totalSent so that restored history reads as unread by any reader
// created after the restore, and any reader that outlives the restore (it
// already observed these events pre-save) reads nothing new from them.
func (b *Bus[T]) UnmarshalTail(events, lastEvents json.RawMessage) error {
	var e, le []T
	if len(events) > 0 {
		if err := json.Unmarshal(events, &e); err != nil {
			return fmt.Errorf("eventbus: unmarshal events: %w", err)
		}
	}
	if len(lastEvents) > 0 {
		if err := json.Unmarshal(lastEvents, &le); err != nil {
			return fmt.Errorf("eventbus: unmarshal last_events: %w", err)
		}
	}

	b.mu.Lock()
	b.events = e
	b.lastEvents = le
	b.totalSent = uint64(len(e) + len(le))
	b.mu.Unlock()
	return nil
}

// SubscriberCount returns the number of live subscribers, pruning any whose
// weak owner has been dropped.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	live := b.subs[:0]
	for _, s := range b.subs {
		if s.owner != nil && !s.owner.alive {
			continue
		}
		live = append(live, s)
	}
	b.subs = live
	return len(b.subs)
}
