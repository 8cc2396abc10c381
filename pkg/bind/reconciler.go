package bind

import (
	"strconv"
	"sync"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// MapFunc maps a collection entry to content for Content.
type MapFunc func(value any, index int) (any, error)

// ListBinding mirrors a reactive collection into the nodes between two
// comment anchors. Entry k lives at position k after the start anchor, so
// the anchors may share their parent with other content.
type ListBinding struct {
	b     *Binder
	coll  reactive.Collection
	mapFn MapFunc

	start handle
	end   handle

	owner handle
	slot  slot

	once sync.Once
	sub  *reactive.Subscription
}

// AttachList appends start and end anchors to parent, renders the current
// entries of coll between them and follows its changes. mapFn may be nil,
// in which case entries are converted with Content.
//
// The binding is owned by parent, or by the start anchor when parent is a
// fragment whose children will move. It ends with Close or when the owner
// is disposed.
func (b *Binder) AttachList(parent dom.Node, coll reactive.Collection, mapFn MapFunc) *ListBinding {
	id := strconv.FormatUint(coll.ID(), 10)
	start := b.doc.CreateComment("start " + id)
	end := b.doc.CreateComment("end " + id)
	parent.Append(start, end)

	owner := parent
	if parent.NodeType() == dom.DocumentFragmentNode {
		owner = start
	}

	lb := &ListBinding{
		b:     b,
		coll:  coll,
		mapFn: mapFn,
		start: b.reg.track(start),
		end:   b.reg.track(end),
		owner: b.reg.track(owner),
		slot:  slot{slotChildren, id},
	}

	for i, v := range coll.Snapshot() {
		lb.entryAdded(start, end, i, v)
	}

	lb.sub = coll.ObserveChanges(lb.apply)
	b.reg.add(owner, lb.slot, lb.unsubscribe)
	return lb
}

func (lb *ListBinding) unsubscribe() {
	lb.once.Do(func() { lb.coll.Unobserve(lb.sub) })
}

// Close stops following the collection. The rendered nodes stay.
func (lb *ListBinding) Close() {
	if owner, ok := lb.b.reg.resolve(lb.owner); ok {
		lb.b.reg.release(owner, lb.slot)
	}
	lb.unsubscribe()
}

// Nodes returns the nodes between the anchors.
func (lb *ListBinding) Nodes() []dom.Node {
	start, end, ok := lb.anchors()
	if !ok {
		return nil
	}
	var out []dom.Node
	for n := start.NextSibling(); !dom.IsNil(n) && !sameNode(n, end); n = n.NextSibling() {
		out = append(out, n)
	}
	return out
}

func (lb *ListBinding) anchors() (start, end dom.Node, ok bool) {
	start, ok = lb.b.reg.resolve(lb.start)
	if !ok {
		return nil, nil, false
	}
	end, ok = lb.b.reg.resolve(lb.end)
	if !ok {
		return nil, nil, false
	}
	return start, end, true
}

func (lb *ListBinding) apply(c reactive.Change) {
	start, end, ok := lb.anchors()
	if !ok {
		return
	}
	if dom.IsNil(start.ParentNode()) || !sameNode(start.ParentNode(), end.ParentNode()) {
		lb.b.log.Warn("list anchors are detached", "collection_id", lb.coll.ID())
		return
	}
	lb.b.cfg.observer.ListChange(c.Op)

	switch c.Op {
	case reactive.OpEntryAdded:
		lb.entryAdded(start, end, c.Index, c.Value)
	case reactive.OpEntryRemoved:
		lb.entryRemoved(start, end, c.Index)
	case reactive.OpCleared:
		lb.cleared(start, end)
	}
}

// entryAdded replaces the node at k, or pads the gap up to k with empty
// comments and inserts before the end anchor.
func (lb *ListBinding) entryAdded(start, end dom.Node, k int, v any) {
	if k < 0 {
		lb.b.log.Warn("ignoring list change with a negative index", "index", k, "collection_id", lb.coll.ID())
		return
	}
	parent := start.ParentNode()
	node := lb.render(v, k)

	if current, count := nodeAt(start, end, k); current != nil {
		parent.ReplaceChild(node, current)
	} else {
		for i := count; i < k; i++ {
			parent.InsertBefore(lb.b.doc.CreateComment("empty"), end)
		}
		parent.InsertBefore(node, end)
	}
}

// entryRemoved removes the node at k. Positions outside the region are
// ignored.
func (lb *ListBinding) entryRemoved(start, end dom.Node, k int) {
	if k < 0 {
		lb.b.log.Warn("ignoring list change with a negative index", "index", k, "collection_id", lb.coll.ID())
		return
	}
	if current, _ := nodeAt(start, end, k); current != nil {
		start.ParentNode().RemoveChild(current)
	}
}

func (lb *ListBinding) cleared(start, end dom.Node) {
	parent := start.ParentNode()
	for n := start.NextSibling(); !dom.IsNil(n) && !sameNode(n, end); {
		next := n.NextSibling()
		parent.RemoveChild(n)
		n = next
	}
}

// render maps an entry to a node. Holes and mapping failures render as
// empty comments.
func (lb *ListBinding) render(v any, k int) dom.Node {
	if reactive.IsHole(v) {
		return lb.b.doc.CreateComment("empty")
	}
	content := v
	if lb.mapFn != nil {
		mapped, err := lb.mapFn(v, k)
		if err != nil {
			lb.b.log.Error("list entry mapping failed", "index", k, "collection_id", lb.coll.ID(), "error", err)
			return lb.b.doc.CreateComment("empty")
		}
		content = mapped
	}
	node, err := lb.b.Content(content)
	if err != nil {
		lb.b.log.Error("list entry conversion failed", "index", k, "collection_id", lb.coll.ID(), "error", err)
		return lb.b.doc.CreateComment("empty")
	}
	if node.NodeType() == dom.DocumentFragmentNode {
		// Each entry holds one position.
		first := node.FirstChild()
		if dom.IsNil(first) {
			return lb.b.doc.CreateComment("empty")
		}
		if extra := len(node.ChildNodes()) - 1; extra > 0 {
			lb.b.log.Warn("list entry fragment has extra nodes", "index", k, "collection_id", lb.coll.ID(), "dropped", extra)
		}
		return first
	}
	return node
}

// nodeAt returns the k-th node after start, or nil and the number of nodes
// in the region when k is past the end.
func nodeAt(start, end dom.Node, k int) (dom.Node, int) {
	i := 0
	for n := start.NextSibling(); !dom.IsNil(n) && !sameNode(n, end); n = n.NextSibling() {
		if i == k {
			return n, i
		}
		i++
	}
	return nil, i
}
