package reactive

import "sync"

// Handler receives the current value of a reference after it changed.
type Handler func(value any)

// ChangeHandler receives one index-addressed collection change.
type ChangeHandler func(Change)

// Subscription identifies one Observe or ObserveChanges registration.
// It is the only way to unobserve, since Go funcs are not comparable.
type Subscription struct {
	id     uint64
	value  Handler
	change ChangeHandler
}

// ID returns the unique identifier for this subscription.
func (s *Subscription) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// observerSet provides type-erased subscriber management.
// It is embedded in every reference and collection.
type observerSet struct {
	id uint64

	// subs are the live subscriptions, in registration order.
	subs []*Subscription

	// mu protects subs.
	mu sync.RWMutex
}

// add registers a subscription.
func (o *observerSet) add(s *Subscription) *Subscription {
	o.mu.Lock()
	o.subs = append(o.subs, s)
	o.mu.Unlock()
	return s
}

// remove unregisters a subscription. Unknown or nil subscriptions are ignored.
func (o *observerSet) remove(s *Subscription) {
	if s == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for i, existing := range o.subs {
		if existing.id == s.id {
			// Keep order: handlers fire in registration order.
			o.subs = append(o.subs[:i], o.subs[i+1:]...)
			return
		}
	}
}

// snapshot copies the subscriber list so notification runs without the lock.
func (o *observerSet) snapshot() []*Subscription {
	o.mu.RLock()
	subs := make([]*Subscription, len(o.subs))
	copy(subs, o.subs)
	o.mu.RUnlock()
	return subs
}

// count returns the number of live subscriptions.
func (o *observerSet) count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}

// notifyValue delivers a value change. Inside a batch the delivery is queued
// and deduplicated per subscription; read reports the value at flush time.
func (o *observerSet) notifyValue(read func() any) {
	subs := o.snapshot()

	if inBatch() {
		for _, sub := range subs {
			if sub.value == nil {
				continue
			}
			h := sub.value
			queuePending(sub.id, func() { h(read()) })
		}
		return
	}

	value := read()
	for _, sub := range subs {
		if sub.value != nil {
			sub.value(value)
		}
	}
}

// notifyChange delivers a collection change. Changes are never coalesced.
func (o *observerSet) notifyChange(c Change) {
	subs := o.snapshot()

	for _, sub := range subs {
		if sub.change == nil {
			continue
		}
		h := sub.change
		if inBatch() {
			queuePending(0, func() { h(c) })
		} else {
			h(c)
		}
	}
}
