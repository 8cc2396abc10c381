// Package bind connects reactive references to DOM nodes.
//
// A Binder owns two cooperating pieces:
//
//   - the attribute/value binder, which decides for every (element,
//     attribute, value) triple whether the attribute is written once
//     (static), rewritten on every change of a reference (reactive), kept in
//     sync in both directions with a form control (two-way), or bound later
//     when a lazy or asynchronous value resolves (deferred);
//   - the list reconciler, which mirrors an ordered reactive collection
//     into the siblings between two anchor comments.
//
// # Ownership
//
// Every subscription that targets a node is recorded in the Binder's
// registry, keyed by the node's identity. Handlers never hold the node
// itself: they hold a handle that is resolved through a weak reference
// when they fire. A handler whose node is gone logs "undetected garbage
// collection" once and does nothing.
//
// Whoever owns a node's lifetime releases its bindings with Dispose or
// DisposeTree. Removing a node from the document does not release
// anything, since a detached subtree may still be referenced and
// re-inserted. Sweep releases the bindings of nodes that have been
// collected.
//
// # Errors
//
// Invalid attribute/value combinations (value:selected outside a radio
// input, a plain value for value:out, an unsupported reference kind on a
// form control) are returned as errors. Malformed user input is reported
// through the control's validity state and never returned.
//
// # Concurrency
//
// The DOM is single-threaded: a Binder and the document it binds must be
// used from one goroutine at a time, and references bound to that document
// must be written from the same goroutine. The registry itself is safe for
// concurrent use so Sweep may run on a timer.
package bind
