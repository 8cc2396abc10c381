package reactive

import "sync"

// ChangeOp identifies the kind of collection change.
type ChangeOp uint8

const (
	// OpEntryAdded sets the entry at Index, replacing an existing one or
	// appending past the current end.
	OpEntryAdded ChangeOp = iota

	// OpEntryRemoved removes the entry at Index.
	OpEntryRemoved

	// OpCleared removes every entry.
	OpCleared
)

// String returns the string representation of the ChangeOp.
func (op ChangeOp) String() string {
	switch op {
	case OpEntryAdded:
		return "entry_added"
	case OpEntryRemoved:
		return "entry_removed"
	case OpCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Change is one index-addressed collection notification.
type Change struct {
	Op    ChangeOp
	Index int
	Value any
}

// Collection is an ordered reactive collection.
type Collection interface {
	// ID returns the collection identity.
	ID() uint64

	// Snapshot returns the current entries in iteration order.
	// Unset list slots are reported as Hole.
	Snapshot() []any

	// ObserveChanges subscribes fn to future changes.
	ObserveChanges(fn ChangeHandler) *Subscription

	// Unobserve cancels a subscription.
	Unobserve(sub *Subscription)
}

// holeType marks a list slot that was skipped by SetAt.
type holeType struct{}

// Hole is the Snapshot value of an unset list slot.
var Hole any = holeType{}

// IsHole reports whether v is the Hole sentinel.
func IsHole(v any) bool {
	_, ok := v.(holeType)
	return ok
}

// =============================================================================
// List
// =============================================================================

type slot[T any] struct {
	value T
	set   bool
}

// List is an ordered reactive sequence.
type List[T any] struct {
	observerSet

	items []slot[T]
	mu    sync.RWMutex
}

// NewList creates a list holding items.
func NewList[T any](items ...T) *List[T] {
	l := &List[T]{observerSet: observerSet{id: nextID()}}
	for _, v := range items {
		l.items = append(l.items, slot[T]{value: v, set: true})
	}
	return l
}

// ID returns the list identity.
func (l *List[T]) ID() uint64 { return l.id }

// Len returns the number of slots, holes included.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// At returns the value at i and whether the slot is set.
func (l *List[T]) At(i int) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var zero T
	if i < 0 || i >= len(l.items) || !l.items[i].set {
		return zero, false
	}
	return l.items[i].value, true
}

// Items returns a copy of the values. Holes are zero values.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	for i, s := range l.items {
		out[i] = s.value
	}
	return out
}

// Snapshot returns the entries as []any with Hole for unset slots.
func (l *List[T]) Snapshot() []any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]any, len(l.items))
	for i, s := range l.items {
		if s.set {
			out[i] = s.value
		} else {
			out[i] = Hole
		}
	}
	return out
}

// Append adds v at the end.
func (l *List[T]) Append(v T) {
	l.mu.Lock()
	idx := len(l.items)
	l.items = append(l.items, slot[T]{value: v, set: true})
	l.mu.Unlock()

	l.notifyChange(Change{Op: OpEntryAdded, Index: idx, Value: v})
}

// SetAt stores v at i. Setting past the end leaves unset slots in between.
// Negative indexes are ignored.
func (l *List[T]) SetAt(i int, v T) {
	if i < 0 {
		return
	}

	l.mu.Lock()
	for len(l.items) <= i {
		l.items = append(l.items, slot[T]{})
	}
	l.items[i] = slot[T]{value: v, set: true}
	l.mu.Unlock()

	l.notifyChange(Change{Op: OpEntryAdded, Index: i, Value: v})
}

// InsertAt inserts v before index i. Subscribers see the shifted tail as
// replacements followed by one append at the old length.
func (l *List[T]) InsertAt(i int, v T) {
	l.mu.Lock()
	if i < 0 {
		i = 0
	}
	if i > len(l.items) {
		i = len(l.items)
	}
	l.items = append(l.items, slot[T]{})
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = slot[T]{value: v, set: true}

	changes := make([]Change, 0, len(l.items)-i)
	for j := i; j < len(l.items); j++ {
		var value any = Hole
		if l.items[j].set {
			value = l.items[j].value
		}
		changes = append(changes, Change{Op: OpEntryAdded, Index: j, Value: value})
	}
	l.mu.Unlock()

	for _, c := range changes {
		l.notifyChange(c)
	}
}

// RemoveAt removes the slot at i. Out-of-range indexes are ignored.
func (l *List[T]) RemoveAt(i int) {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		l.mu.Unlock()
		return
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.mu.Unlock()

	l.notifyChange(Change{Op: OpEntryRemoved, Index: i})
}

// Clear removes every slot.
func (l *List[T]) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()

	l.notifyChange(Change{Op: OpCleared})
}

// Replace swaps the whole content: one clear followed by one append per item.
func (l *List[T]) Replace(items ...T) {
	Batch(func() {
		l.Clear()
		for _, v := range items {
			l.Append(v)
		}
	})
}

// ObserveChanges subscribes fn to list changes.
func (l *List[T]) ObserveChanges(fn ChangeHandler) *Subscription {
	return l.add(&Subscription{id: nextID(), change: fn})
}

// Unobserve cancels a subscription.
func (l *List[T]) Unobserve(sub *Subscription) { l.remove(sub) }

// =============================================================================
// Map
// =============================================================================

// Map is an insertion-ordered reactive map. Its collection entries are the
// values, indexed by key insertion order.
type Map[K comparable, V any] struct {
	observerSet

	keys   []K
	values map[K]V
	mu     sync.RWMutex
}

// NewMap creates an empty map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		observerSet: observerSet{id: nextID()},
		values:      make(map[K]V),
	}
}

// ID returns the map identity.
func (m *Map[K, V]) ID() uint64 { return m.id }

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Snapshot returns the values in key insertion order.
func (m *Map[K, V]) Snapshot() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]any, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.values[k]
	}
	return out
}

// Set stores v under k. An existing key keeps its position.
func (m *Map[K, V]) Set(k K, v V) {
	m.mu.Lock()
	idx := m.indexOf(k)
	if idx < 0 {
		idx = len(m.keys)
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
	m.mu.Unlock()

	m.notifyChange(Change{Op: OpEntryAdded, Index: idx, Value: v})
}

// Delete removes k. Missing keys are ignored.
func (m *Map[K, V]) Delete(k K) {
	m.mu.Lock()
	idx := m.indexOf(k)
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	delete(m.values, k)
	m.mu.Unlock()

	m.notifyChange(Change{Op: OpEntryRemoved, Index: idx})
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	m.keys = nil
	m.values = make(map[K]V)
	m.mu.Unlock()

	m.notifyChange(Change{Op: OpCleared})
}

// ObserveChanges subscribes fn to map changes.
func (m *Map[K, V]) ObserveChanges(fn ChangeHandler) *Subscription {
	return m.add(&Subscription{id: nextID(), change: fn})
}

// Unobserve cancels a subscription.
func (m *Map[K, V]) Unobserve(sub *Subscription) { m.remove(sub) }

// indexOf must be called with mu held.
func (m *Map[K, V]) indexOf(k K) int {
	if _, ok := m.values[k]; !ok {
		return -1
	}
	for i, existing := range m.keys {
		if existing == k {
			return i
		}
	}
	return -1
}

// =============================================================================
// Set
// =============================================================================

// Set is an insertion-ordered reactive set.
type Set[T comparable] struct {
	observerSet

	items []T
	index map[T]struct{}
	mu    sync.RWMutex
}

// NewSet creates a set holding items, duplicates dropped.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{
		observerSet: observerSet{id: nextID()},
		index:       make(map[T]struct{}),
	}
	for _, v := range items {
		if _, ok := s.index[v]; ok {
			continue
		}
		s.index[v] = struct{}{}
		s.items = append(s.items, v)
	}
	return s
}

// ID returns the set identity.
func (s *Set[T]) ID() uint64 { return s.id }

// Len returns the number of members.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Has reports membership.
func (s *Set[T]) Has(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[v]
	return ok
}

// Items returns the members in insertion order.
func (s *Set[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Snapshot returns the members in insertion order.
func (s *Set[T]) Snapshot() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]any, len(s.items))
	for i, v := range s.items {
		out[i] = v
	}
	return out
}

// Add inserts v at the end. Existing members are left in place.
func (s *Set[T]) Add(v T) {
	s.mu.Lock()
	if _, ok := s.index[v]; ok {
		s.mu.Unlock()
		return
	}
	idx := len(s.items)
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	s.mu.Unlock()

	s.notifyChange(Change{Op: OpEntryAdded, Index: idx, Value: v})
}

// Delete removes v. Missing members are ignored.
func (s *Set[T]) Delete(v T) {
	s.mu.Lock()
	if _, ok := s.index[v]; !ok {
		s.mu.Unlock()
		return
	}
	idx := 0
	for i, existing := range s.items {
		if existing == v {
			idx = i
			break
		}
	}
	delete(s.index, v)
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	s.notifyChange(Change{Op: OpEntryRemoved, Index: idx})
}

// Clear removes every member.
func (s *Set[T]) Clear() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[T]struct{})
	s.mu.Unlock()

	s.notifyChange(Change{Op: OpCleared})
}

// ObserveChanges subscribes fn to set changes.
func (s *Set[T]) ObserveChanges(fn ChangeHandler) *Subscription {
	return s.add(&Subscription{id: nextID(), change: fn})
}

// Unobserve cancels a subscription.
func (s *Set[T]) Unobserve(sub *Subscription) { s.remove(sub) }
