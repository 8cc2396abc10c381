package reactive

import "sync"

// LazyRef is a reference whose backing Ref becomes available later.
type LazyRef interface {
	// OnLoad registers fn to run with the resolved Ref. If the reference is
	// already resolved fn runs immediately.
	OnLoad(fn func(Ref))
}

// Deferred is an asynchronous value.
type Deferred interface {
	// Then registers fn to run with the resolved value. If the value is
	// already available fn runs immediately.
	Then(fn func(any))
}

// Lazy is a lazily-resolved Signal.
type Lazy[T any] struct {
	mu       sync.Mutex
	resolved *Signal[T]
	waiters  []func(Ref)
}

// NewLazy creates an unresolved lazy reference.
func NewLazy[T any]() *Lazy[T] {
	return &Lazy[T]{}
}

// OnLoad registers fn for resolution.
func (l *Lazy[T]) OnLoad(fn func(Ref)) {
	l.mu.Lock()
	if l.resolved != nil {
		s := l.resolved
		l.mu.Unlock()
		fn(s)
		return
	}
	l.waiters = append(l.waiters, fn)
	l.mu.Unlock()
}

// Resolve binds the lazy reference to s and runs waiting continuations
// on the calling goroutine. Later calls are ignored.
func (l *Lazy[T]) Resolve(s *Signal[T]) {
	l.mu.Lock()
	if l.resolved != nil || s == nil {
		l.mu.Unlock()
		return
	}
	l.resolved = s
	waiters := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	for _, fn := range waiters {
		fn(s)
	}
}

// Loaded reports whether Resolve has been called.
func (l *Lazy[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolved != nil
}

// Future is a value produced asynchronously.
type Future[T any] struct {
	mu      sync.Mutex
	done    bool
	value   T
	waiters []func(any)
}

// NewFuture creates a pending future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Resolved creates a future that already holds v.
func Resolved[T any](v T) *Future[T] {
	return &Future[T]{done: true, value: v}
}

// Then registers fn for resolution.
func (f *Future[T]) Then(fn func(any)) {
	f.mu.Lock()
	if f.done {
		v := f.value
		f.mu.Unlock()
		fn(v)
		return
	}
	f.waiters = append(f.waiters, fn)
	f.mu.Unlock()
}

// Resolve completes the future and runs continuations on the calling
// goroutine. Later calls are ignored.
func (f *Future[T]) Resolve(v T) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.done = true
	f.value = v
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, fn := range waiters {
		fn(v)
	}
}

// Done reports whether the future is resolved.
func (f *Future[T]) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}
