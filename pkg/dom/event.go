package dom

// EventHandler handles a dispatched event.
type EventHandler func(ev *Event)

// Event is a DOM event.
type Event struct {
	// Type is the event type, e.g. "input", "change", "click", "submit".
	Type string

	// Target is the element the event was dispatched on.
	Target Element

	// Detail carries implementation-specific data.
	Detail any

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}
