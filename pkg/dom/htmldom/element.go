package htmldom

import (
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
)

// Element is an element node.
type Element struct {
	Node

	tag string
	ns  string

	attrs     []dom.Attr
	style     *Style
	classList *TokenList

	listeners    map[string][]*listener
	nextListener uint64

	attrObservers []*attrObserver
}

type listener struct {
	id uint64
	fn dom.EventHandler
}

type attrObserver struct {
	filter map[string]bool
	fn     func(name string)
}

func (e *Element) init(d *Document, ns, tag string) {
	name := tag
	if ns == dom.XHTMLNamespace {
		name = strings.ToUpper(tag)
	}
	e.Node = Node{id: d.allocID(), nodeType: dom.ElementNode, nodeName: name, doc: d}
	e.tag = tag
	e.ns = ns
}

// IsNil reports whether the receiver is a nil pointer.
func (e *Element) IsNil() bool { return e == nil }

// TagName returns the local name.
func (e *Element) TagName() string { return e.tag }

// NamespaceURI returns the element namespace.
func (e *Element) NamespaceURI() string { return e.ns }

func (e *Element) self() dom.Element {
	return e.Node.outer.(dom.Element)
}

func (e *Element) normalizeName(name string) string {
	if e.ns == dom.XHTMLNamespace {
		return strings.ToLower(name)
	}
	return name
}

func (e *Element) attrIndex(name string) int {
	for i, a := range e.attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// GetAttribute returns the attribute value and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool) {
	if i := e.attrIndex(e.normalizeName(name)); i >= 0 {
		return e.attrs[i].Value, true
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (e *Element) HasAttribute(name string) bool {
	return e.attrIndex(e.normalizeName(name)) >= 0
}

// Attributes returns a copy of the attributes in insertion order.
func (e *Element) Attributes() []dom.Attr {
	out := make([]dom.Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// SetAttribute sets an attribute. Every call is recorded, even when the
// value is unchanged.
func (e *Element) SetAttribute(name, value string) {
	name = e.normalizeName(name)
	e.setAttr(name, value)
	if name == "style" && e.style != nil {
		e.style.refresh(value)
	}
}

func (e *Element) setAttr(name, value string) {
	if i := e.attrIndex(name); i >= 0 {
		e.attrs[i].Value = value
	} else {
		e.attrs = append(e.attrs, dom.Attr{Name: name, Value: value})
	}
	e.record(Mutation{Op: MutationSetAttr, Target: e.id, Name: name, Value: value})
	e.notifyAttr(name)
}

// RemoveAttribute removes an attribute. Missing attributes are ignored.
func (e *Element) RemoveAttribute(name string) {
	name = e.normalizeName(name)
	i := e.attrIndex(name)
	if i < 0 {
		return
	}
	e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
	if name == "style" && e.style != nil {
		e.style.refresh("")
	}
	e.record(Mutation{Op: MutationRemoveAttr, Target: e.id, Name: name})
	e.notifyAttr(name)
}

// Style returns the inline style declaration, synced with the style attribute.
func (e *Element) Style() dom.Style {
	if e.style == nil {
		e.style = newStyle(e)
	}
	return e.style
}

// ClassList returns the class token list.
func (e *Element) ClassList() dom.TokenList {
	if e.classList == nil {
		e.classList = &TokenList{el: e, attr: "class"}
	}
	return e.classList
}

// AddEventListener registers fn and returns its removal function.
func (e *Element) AddEventListener(typ string, fn dom.EventHandler) func() {
	if fn == nil {
		return func() {}
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	e.nextListener++
	l := &listener{id: e.nextListener, fn: fn}
	e.listeners[typ] = append(e.listeners[typ], l)

	return func() {
		ls := e.listeners[typ]
		for i, existing := range ls {
			if existing.id == l.id {
				e.listeners[typ] = append(ls[:i], ls[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[typ])
}

// DispatchEvent runs listeners on the element, then bubbles to ancestor
// elements until propagation is stopped.
func (e *Element) DispatchEvent(ev *dom.Event) {
	if ev == nil {
		return
	}
	if ev.Target == nil {
		ev.Target = e.self()
	}
	for n := &e.Node; n != nil; n = n.parent {
		el, ok := n.outer.(interface{ element() *Element })
		if !ok {
			continue
		}
		target := el.element()
		ls := make([]*listener, len(target.listeners[ev.Type]))
		copy(ls, target.listeners[ev.Type])
		for _, l := range ls {
			l.fn(ev)
		}
		if ev.PropagationStopped() {
			return
		}
	}
}

func (e *Element) element() *Element { return e }

// ObserveAttributes calls fn synchronously after any attribute in filter
// is set or removed. An empty filter observes every attribute.
func (e *Element) ObserveAttributes(filter []string, fn func(name string)) func() {
	o := &attrObserver{fn: fn}
	if len(filter) > 0 {
		o.filter = make(map[string]bool, len(filter))
		for _, name := range filter {
			o.filter[e.normalizeName(name)] = true
		}
	}
	e.attrObservers = append(e.attrObservers, o)

	return func() {
		for i, existing := range e.attrObservers {
			if existing == o {
				e.attrObservers = append(e.attrObservers[:i], e.attrObservers[i+1:]...)
				return
			}
		}
	}
}

func (e *Element) notifyAttr(name string) {
	if len(e.attrObservers) == 0 {
		return
	}
	obs := make([]*attrObserver, len(e.attrObservers))
	copy(obs, e.attrObservers)
	for _, o := range obs {
		if o.filter == nil || o.filter[name] {
			o.fn(name)
		}
	}
}
