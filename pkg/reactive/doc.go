// Package reactive provides the observable values that vbind binds to the DOM.
//
// A reference is an observable cell with a synchronous current value and
// explicit Observe/Unobserve subscriptions. Unlike a render-tracking signal
// graph, nothing is subscribed implicitly: the binder decides what to observe
// and owns every Subscription it creates.
//
// # Core Types
//
// Signal[T] is a single observable value:
//
//	name := reactive.Text("Ada")
//	sub := name.Observe(func(v any) { fmt.Println("name is", v) })
//	name.Set("Grace")    // prints "name is Grace"
//	name.Unobserve(sub)
//
// Every reference carries an explicit Kind tag (text, decimal, integer,
// boolean, time, void or opaque). Form controls pick their coercion rules
// from this tag; it is never inferred from the Go type at bind time.
//
// List[T], Map[K, V] and Set[T] are ordered collections that emit
// index-addressed changes (entry added, entry removed, cleared) so that a
// DOM region can mirror them without re-rendering.
//
// Lazy[T] is a reference that becomes available later; Future[T] is a
// plain asynchronous value. Both register continuations rather than block.
//
// # Batching
//
// Batch groups writes so that each value subscription fires once with the
// final value. Collection changes are never coalesced: they are delivered in
// emission order when the outermost batch ends.
//
// # Thread Safety
//
// Values and subscriber lists are safe for concurrent use. Handlers run
// synchronously on the goroutine that performed the write.
package reactive
