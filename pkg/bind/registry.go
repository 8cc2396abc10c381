package bind

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"weak"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

type slotKind uint8

const (
	slotAttr slotKind = iota
	slotListener
	slotStyle
	slotText
	slotChildren
	slotDeferred
)

func (k slotKind) String() string {
	switch k {
	case slotAttr:
		return "attr"
	case slotListener:
		return "listener"
	case slotStyle:
		return "style"
	case slotText:
		return "text"
	case slotChildren:
		return "children"
	case slotDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// slot names one binding of a node. A node has one slot per attribute,
// event type, style property and bound collection, plus one for its text.
type slot struct {
	kind slotKind
	name string
}

func (s slot) String() string {
	if s.name == "" {
		return s.kind.String()
	}
	return s.kind.String() + ":" + s.name
}

// handle is what handlers capture instead of the node.
type handle struct {
	id dom.NodeID
}

// record is the binding state of one node.
type record struct {
	ref      dom.WeakRef
	name     string
	releases map[slot][]func()

	// selected is the reference of a value:selected binding; value writes
	// compare against it to keep the radio checked.
	selected reactive.Ref

	// classes are the tokens the last class list write added.
	classes map[string]bool

	warned bool
}

func (r *record) count() int {
	n := 0
	for _, fns := range r.releases {
		n += len(fns)
	}
	return n
}

// registry is the ownership arena of all bindings made by a Binder.
type registry struct {
	mu      sync.Mutex
	doc     dom.Document
	records map[dom.NodeID]*record
	log     *slog.Logger
	obs     Observer
}

func newRegistry(doc dom.Document, log *slog.Logger, obs Observer) *registry {
	return &registry{
		doc:     doc,
		records: make(map[dom.NodeID]*record),
		log:     log,
		obs:     obs,
	}
}

// recordFor returns the record of n, creating it. Callers hold mu.
func (r *registry) recordFor(n dom.Node) *record {
	rec, ok := r.records[n.NodeID()]
	if !ok {
		rec = &record{
			ref:      r.doc.WeakRef(n),
			name:     n.NodeName(),
			releases: make(map[slot][]func()),
		}
		r.records[n.NodeID()] = rec
	}
	return rec
}

// track makes n resolvable and returns its handle.
func (r *registry) track(n dom.Node) handle {
	r.mu.Lock()
	r.recordFor(n)
	r.mu.Unlock()
	return handle{id: n.NodeID()}
}

// add records a release function under s.
func (r *registry) add(n dom.Node, s slot, release func()) {
	r.mu.Lock()
	rec := r.recordFor(n)
	rec.releases[s] = append(rec.releases[s], release)
	r.mu.Unlock()
}

// detach holds a teardown that only the node it tears down keeps alive.
// The registry refers to it weakly so that recording the teardown does
// not pin the node.
type detach struct {
	stop func()
}

func (r *registry) addDetach(n dom.Node, s slot, d *detach) {
	wp := weak.Make(d)
	r.add(n, s, func() {
		if d := wp.Value(); d != nil && d.stop != nil {
			d.stop()
			d.stop = nil
		}
	})
}

// listen registers fn for event on el under s.
func (r *registry) listen(el dom.Element, s slot, event string, fn dom.EventHandler) {
	d := &detach{}
	d.stop = el.AddEventListener(event, func(ev *dom.Event) {
		runtime.KeepAlive(d)
		fn(ev)
	})
	r.addDetach(el, s, d)
}

// observeAttributes calls fn when one of the named attributes of el
// changes. It is a no-op for elements that cannot report changes.
func (r *registry) observeAttributes(el dom.Element, s slot, names []string, fn func(string)) {
	ao, ok := el.(dom.AttributeObserver)
	if !ok {
		return
	}
	d := &detach{}
	d.stop = ao.ObserveAttributes(names, func(name string) {
		runtime.KeepAlive(d)
		fn(name)
	})
	r.addDetach(el, s, d)
}

// release runs and forgets the release functions recorded under s.
func (r *registry) release(n dom.Node, s slot) int {
	r.mu.Lock()
	rec, ok := r.records[n.NodeID()]
	if !ok {
		r.mu.Unlock()
		return 0
	}
	fns := rec.releases[s]
	delete(rec.releases, s)
	if s.kind == slotAttr && s.name == "value:selected" {
		rec.selected = nil
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// releaseKind releases every slot of the given kind.
func (r *registry) releaseKind(n dom.Node, kind slotKind) int {
	r.mu.Lock()
	rec, ok := r.records[n.NodeID()]
	if !ok {
		r.mu.Unlock()
		return 0
	}
	var fns []func()
	for s, list := range rec.releases {
		if s.kind == kind {
			fns = append(fns, list...)
			delete(rec.releases, s)
		}
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// transfer moves the releases under s from one node to another. Content
// bindings use it when the bound node is replaced.
func (r *registry) transfer(from, to dom.Node, s slot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.records[from.NodeID()]
	if !ok {
		return
	}
	fns := src.releases[s]
	delete(src.releases, s)
	dst := r.recordFor(to)
	dst.releases[s] = append(dst.releases[s], fns...)
}

// resolve returns the live node behind h. A collected node is reported
// once; a released record resolves to nothing silently.
func (r *registry) resolve(h handle) (dom.Node, bool) {
	r.mu.Lock()
	rec, ok := r.records[h.id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	n, alive := rec.ref.Deref()
	if alive && !dom.IsNil(n) {
		r.mu.Unlock()
		return n, true
	}
	first := !rec.warned
	rec.warned = true
	name := rec.name
	r.mu.Unlock()

	if first {
		r.log.Warn("undetected garbage collection", "code", "R001", "node_id", uint64(h.id), "node", name)
		r.obs.StaleHandler()
	}
	return nil, false
}

func (r *registry) setSelected(n dom.Node, ref reactive.Ref) {
	r.mu.Lock()
	r.recordFor(n).selected = ref
	r.mu.Unlock()
}

// swapClasses stores the tokens a class list write added and returns the
// previous ones.
func (r *registry) swapClasses(n dom.Node, next map[string]bool) map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.recordFor(n)
	prev := rec.classes
	rec.classes = next
	return prev
}

func (r *registry) selected(n dom.Node) reactive.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[n.NodeID()]; ok {
		return rec.selected
	}
	return nil
}

// dispose releases every binding of the node with the given id.
func (r *registry) dispose(id dom.NodeID) int {
	r.mu.Lock()
	rec, ok := r.records[id]
	if ok {
		delete(r.records, id)
	}
	r.mu.Unlock()
	if !ok {
		return 0
	}
	return runAll(rec)
}

// sweep releases the records whose node has been collected.
func (r *registry) sweep() (records, bindings int) {
	var dead []*record

	r.mu.Lock()
	for id, rec := range r.records {
		if n, ok := rec.ref.Deref(); !ok || dom.IsNil(n) {
			dead = append(dead, rec)
			delete(r.records, id)
		}
	}
	r.mu.Unlock()

	for _, rec := range dead {
		bindings += runAll(rec)
	}
	return len(dead), bindings
}

func runAll(rec *record) int {
	n := 0
	for _, fns := range rec.releases {
		for _, fn := range fns {
			fn()
			n++
		}
	}
	return n
}

func (r *registry) slots(id dom.NodeID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(rec.releases))
	for s, fns := range rec.releases {
		if len(fns) > 0 {
			out = append(out, s.String())
		}
	}
	sort.Strings(out)
	return out
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Dispose releases every binding of n: reference subscriptions, event
// listeners installed by the binder and reconcilers attached to n. It
// returns the number of bindings released.
func (b *Binder) Dispose(n dom.Node) int {
	if dom.IsNil(n) {
		return 0
	}
	released := b.reg.dispose(n.NodeID())
	b.cfg.observer.Released("dispose", released)
	return released
}

// DisposeTree releases the bindings of n and all its descendants.
func (b *Binder) DisposeTree(n dom.Node) int {
	if dom.IsNil(n) {
		return 0
	}
	released := 0
	var walk func(dom.Node)
	walk = func(n dom.Node) {
		released += b.reg.dispose(n.NodeID())
		for c := n.FirstChild(); !dom.IsNil(c); c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	b.cfg.observer.Released("dispose", released)
	return released
}

// Sweep releases the bindings of nodes that have been garbage collected
// and returns the number of bindings released.
func (b *Binder) Sweep() int {
	records, released := b.reg.sweep()
	if records > 0 {
		b.log.Debug("swept collected nodes", "records", records, "bindings", released)
	}
	b.cfg.observer.Released("sweep", released)
	return released
}

// Bindings lists the live bindings of n as sorted "kind:name" strings,
// e.g. "attr:value", "style:color", "children:7", "text".
func (b *Binder) Bindings(n dom.Node) []string {
	if dom.IsNil(n) {
		return nil
	}
	return b.reg.slots(n.NodeID())
}

// Tracked returns the number of nodes known to the registry.
func (b *Binder) Tracked() int {
	return b.reg.size()
}
