package reactive

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// ErrTypeMismatch is returned by SetValue when the value cannot be converted
// to the signal's element type.
var ErrTypeMismatch = errors.New("reactive: value type does not match reference")

// Ref is a read-only reactive reference.
type Ref interface {
	// ID returns the reference identity. Two refs holding equal values are
	// still distinct subscriptions.
	ID() uint64

	// Value returns the current value synchronously.
	Value() any

	// Kind returns the declared coarse type of the reference.
	Kind() Kind

	// Observe subscribes fn to future changes.
	Observe(fn Handler) *Subscription

	// Unobserve cancels a subscription returned by Observe.
	Unobserve(sub *Subscription)
}

// Writable is a Ref that accepts untyped writes from two-way bindings.
type Writable interface {
	Ref
	SetValue(v any) error
}

// Option configures a Signal at construction time.
type Option func(*signalConfig)

type signalConfig struct {
	kind Kind
}

// WithKind tags the signal with an explicit Kind.
func WithKind(k Kind) Option {
	return func(c *signalConfig) { c.kind = k }
}

// Signal is a reactive value container.
// When a Signal's value changes, all subscriptions are notified in
// registration order.
type Signal[T any] struct {
	observerSet

	// value is the current value.
	value T

	// mu protects value.
	mu sync.RWMutex

	// equal is the equality function used to skip redundant notifications.
	equal func(T, T) bool

	// validate rejects untyped writes.
	validate func(T) error

	kind Kind
}

// NewSignal creates a new signal with the given initial value.
// Without WithKind the signal is KindOpaque and cannot back a form control.
func NewSignal[T any](initial T, opts ...Option) *Signal[T] {
	cfg := signalConfig{kind: KindOpaque}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Signal[T]{
		observerSet: observerSet{id: nextID()},
		value:       initial,
		kind:        cfg.kind,
	}
}

// Text creates a text-kinded signal.
func Text(initial string) *Signal[string] {
	return NewSignal(initial, WithKind(KindText))
}

// Decimal creates a decimal-kinded signal.
func Decimal(initial float64) *Signal[float64] {
	return NewSignal(initial, WithKind(KindDecimal))
}

// Integer creates an integer-kinded signal.
func Integer(initial int64) *Signal[int64] {
	return NewSignal(initial, WithKind(KindInteger))
}

// Bool creates a boolean-kinded signal.
func Bool(initial bool) *Signal[bool] {
	return NewSignal(initial, WithKind(KindBoolean))
}

// Time creates a time-kinded signal.
func Time(initial time.Time) *Signal[time.Time] {
	return NewSignal(initial, WithKind(KindTime))
}

// Void creates a void-kinded signal holding nil.
func Void() *Signal[any] {
	return NewSignal[any](nil, WithKind(KindVoid))
}

// ID returns the unique identifier of this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Kind returns the declared kind.
func (s *Signal[T]) Kind() Kind {
	return s.kind
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek returns the current value. It is an alias of Get kept for callers
// that want to make a non-subscribing read explicit.
func (s *Signal[T]) Peek() T {
	return s.Get()
}

// Value returns the current value as any.
func (s *Signal[T]) Value() any {
	return s.Get()
}

// Set updates the signal's value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	if s.isEqual(s.value, value) {
		s.mu.Unlock()
		return
	}
	s.value = value
	s.mu.Unlock()

	s.notifyValue(s.Value)
}

// Update applies fn to the current value and stores the result.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.Get()))
}

// SetValue converts v to T and stores it. Numeric values are converted
// between Go numeric types. The validator, if any, runs before the write.
func (s *Signal[T]) SetValue(v any) error {
	typed, err := convertTo[T](v)
	if err != nil {
		return err
	}
	if s.validate != nil {
		if err := s.validate(typed); err != nil {
			return err
		}
	}
	s.Set(typed)
	return nil
}

// WithEquals sets a custom equality function and returns the signal.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.mu.Lock()
	s.equal = fn
	s.mu.Unlock()
	return s
}

// WithValidator sets a validator consulted by SetValue and returns the signal.
// Set bypasses validation.
func (s *Signal[T]) WithValidator(fn func(T) error) *Signal[T] {
	s.mu.Lock()
	s.validate = fn
	s.mu.Unlock()
	return s
}

// Observe subscribes fn to value changes.
func (s *Signal[T]) Observe(fn Handler) *Subscription {
	return s.add(&Subscription{id: nextID(), value: fn})
}

// Unobserve cancels a subscription.
func (s *Signal[T]) Unobserve(sub *Subscription) {
	s.remove(sub)
}

// Observers returns the number of live subscriptions.
func (s *Signal[T]) Observers() int {
	return s.count()
}

func (s *Signal[T]) isEqual(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals compares primitives directly and falls back to
// reflect.DeepEqual for everything else. The second assertion is checked
// because T may be an interface type holding different dynamic types.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := any(b).(time.Time)
		return ok && av.Equal(bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// convertTo converts v to T, allowing numeric conversions.
func convertTo[T any](v any) (T, error) {
	var zero T
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	target := reflect.TypeOf((*T)(nil)).Elem()
	if v == nil {
		if target.Kind() == reflect.Interface || target.Kind() == reflect.Pointer {
			return zero, nil
		}
		return zero, fmt.Errorf("%w: nil for %s", ErrTypeMismatch, target)
	}

	rv := reflect.ValueOf(v)
	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, target)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// IsRef reports whether v is a reactive reference.
func IsRef(v any) bool {
	_, ok := v.(Ref)
	return ok
}

// ValueOf returns the current value of v if it is a Ref, otherwise v itself.
func ValueOf(v any) any {
	if r, ok := v.(Ref); ok {
		return r.Value()
	}
	return v
}
