// Package preview serves a live view of a document.
//
// The document is owned by a single event loop goroutine. HTTP and
// WebSocket handlers never touch it directly; they post tasks with Do.
// After a task mutates the document the body is re-rendered and pushed to
// every connected client, at most once per push interval.
//
// Server to client messages:
//
//	{"type":"hello","client":"<uuid>"}
//	{"type":"html","seq":3,"html":"<body markup>"}
//
// Client to server messages address elements by the data-vb-id attribute
// written on every rendered element:
//
//	{"type":"input","id":12,"value":"Ada"}
//	{"type":"change","id":14,"checked":true}
//	{"type":"click","id":20}
//
// The loop applies value and checked to the control and dispatches the
// event, so two-way bindings run exactly as they would for a local user.
//
// Routes: "/" (page), "/ws" (live updates), "/healthz" and "/metrics".
package preview
