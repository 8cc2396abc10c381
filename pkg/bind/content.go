package bind

import (
	"fmt"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/inputfmt"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// PlaceholderTag is the element rendered for content that is not
// available yet.
const PlaceholderTag = "vbind-placeholder"

// Content converts a value to a node.
//
//   - dom.Node values are returned as is.
//   - Functions are called and their result converted.
//   - A reference becomes a text node that follows it. When the reference
//     holds a node, that node is used and replaced by the next one.
//   - A LazyRef or Deferred renders a placeholder element that is replaced
//     when the value resolves. A value that resolves synchronously is
//     converted directly.
//   - Everything else becomes a text node; nil and false are empty.
func (b *Binder) Content(value any) (dom.Node, error) {
	switch v := value.(type) {
	case nil:
		return b.doc.CreateTextNode(""), nil
	case dom.Node:
		if dom.IsNil(v) {
			return b.doc.CreateTextNode(""), nil
		}
		return v, nil
	case func() any:
		return b.Content(v())
	case func() dom.Node:
		return b.Content(v())
	case func() (dom.Node, error):
		n, err := v()
		if err != nil {
			return nil, err
		}
		return b.Content(n)
	case func() string:
		return b.doc.CreateTextNode(v()), nil
	case reactive.LazyRef:
		return b.deferredContent(func(resolve func(any)) {
			v.OnLoad(func(ref reactive.Ref) { resolve(ref) })
		})
	case reactive.Deferred:
		return b.deferredContent(v.Then)
	case reactive.Ref:
		return b.bindNode(v)
	case bool:
		if !v {
			return b.doc.CreateTextNode(""), nil
		}
	}
	return b.doc.CreateTextNode(inputfmt.String(value)), nil
}

// deferredContent renders a placeholder until then delivers the value.
// Resolution is expected on the goroutine that owns the document.
func (b *Binder) deferredContent(then func(func(any))) (dom.Node, error) {
	var (
		pending = true
		early   bool
		node    dom.Node
		err     error
		ph      handle
	)
	then(func(resolved any) {
		if pending {
			early = true
			node, err = b.Content(resolved)
			return
		}
		b.replacePlaceholder(ph, resolved)
	})
	pending = false
	if early {
		return node, err
	}

	placeholder := b.doc.CreateElement(PlaceholderTag)
	ph = b.reg.track(placeholder)
	return placeholder, nil
}

func (b *Binder) replacePlaceholder(h handle, resolved any) {
	placeholder, ok := b.reg.resolve(h)
	if !ok {
		return
	}
	node, err := b.Content(resolved)
	if err != nil {
		b.log.Error("deferred content failed", "error", err)
		return
	}
	parent := placeholder.ParentNode()
	if dom.IsNil(parent) {
		b.log.Debug("deferred content resolved for a detached placeholder", "node_id", uint64(h.id))
		return
	}
	parent.ReplaceChild(node, placeholder)
	b.reg.dispose(h.id)
}

// bindNode returns the node for a reference and keeps it in sync. The
// subscription lives on whichever node currently represents the reference.
func (b *Binder) bindNode(ref reactive.Ref) (dom.Node, error) {
	node := b.nodeForValue(ref.Value())
	current := b.reg.track(node)

	sub := ref.Observe(func(v any) {
		n, ok := b.reg.resolve(current)
		if !ok {
			return
		}
		next, isNode := v.(dom.Node)
		if !isNode || dom.IsNil(next) {
			if n.NodeType() == dom.TextNode {
				if text := inputfmt.String(v); n.TextContent() != text {
					n.SetTextContent(text)
				}
				return
			}
			next = b.doc.CreateTextNode(inputfmt.String(v))
		}
		if sameNode(n, next) {
			return
		}
		parent := n.ParentNode()
		if dom.IsNil(parent) {
			b.log.Debug("reference content changed while detached", "node", n.NodeName())
			return
		}
		parent.ReplaceChild(next, n)
		b.reg.transfer(n, next, slot{slotText, ""})
		current = b.reg.track(next)
	})
	b.reg.add(node, slot{slotText, ""}, func() { ref.Unobserve(sub) })
	return node, nil
}

func (b *Binder) nodeForValue(v any) dom.Node {
	if n, ok := v.(dom.Node); ok && !dom.IsNil(n) {
		return n
	}
	return b.doc.CreateTextNode(inputfmt.String(v))
}

// SetText binds the text content of el, replacing an earlier text
// binding. nil and false clear the text.
func (b *Binder) SetText(el dom.Element, value any) {
	if el == nil {
		return
	}
	textSlot := slot{slotText, ""}
	b.reg.release(el, textSlot)

	switch v := value.(type) {
	case reactive.LazyRef:
		h := b.reg.track(el)
		v.OnLoad(func(ref reactive.Ref) {
			if n, ok := b.reg.resolve(h); ok {
				b.SetText(n.(dom.Element), ref)
			}
		})
	case reactive.Deferred:
		h := b.reg.track(el)
		v.Then(func(resolved any) {
			if n, ok := b.reg.resolve(h); ok {
				b.SetText(n.(dom.Element), resolved)
			}
		})
	case reactive.Ref:
		setText(el, v.Value())
		h := b.reg.track(el)
		sub := v.Observe(func(next any) {
			if n, ok := b.reg.resolve(h); ok {
				setText(n, next)
			}
		})
		b.reg.add(el, textSlot, func() { v.Unobserve(sub) })
	default:
		setText(el, value)
	}
}

func setText(n dom.Node, v any) {
	text := ""
	if v != nil && v != false {
		text = inputfmt.String(v)
	}
	if n.TextContent() != text || dom.IsNil(n.FirstChild()) != (text == "") {
		n.SetTextContent(text)
	}
}

// fragmentParser is implemented by documents that can parse markup.
type fragmentParser interface {
	ParseFragment(markup string, context dom.Element) (dom.Node, error)
}

// SetHTML replaces the children of el with parsed markup. The markup is
// trusted.
func (b *Binder) SetHTML(el dom.Element, markup string) error {
	p, ok := b.doc.(fragmentParser)
	if !ok {
		return fmt.Errorf("bind: document %T cannot parse markup", b.doc)
	}
	frag, err := p.ParseFragment(markup, el)
	if err != nil {
		return err
	}
	b.reg.release(el, slot{slotText, ""})
	for c := el.FirstChild(); !dom.IsNil(c); c = el.FirstChild() {
		el.RemoveChild(c)
	}
	el.Append(frag)
	return nil
}

// Append converts children to nodes and appends them to parent.
//
// Collections are attached as live lists. Slices are flattened. A
// reference child of a textarea binds its value instead of adding text.
func (b *Binder) Append(parent dom.Node, children ...any) error {
	if dom.IsNil(parent) {
		return errors.New("B020").WithDetail("append to a nil parent")
	}
	if el, ok := parent.(dom.Element); ok && tagOf(el) == "textarea" {
		for _, c := range children {
			if ref, ok := c.(reactive.Ref); ok {
				_, err := b.SetAttribute(el, "value", ref)
				return err
			}
		}
	}

	for _, child := range children {
		if err := b.appendOne(parent, child); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) appendOne(parent dom.Node, child any) error {
	switch c := child.(type) {
	case nil:
		return nil
	case bool:
		if !c {
			return nil
		}
	case []any:
		for _, item := range c {
			if err := b.appendOne(parent, item); err != nil {
				return err
			}
		}
		return nil
	case []dom.Node:
		for _, item := range c {
			if !dom.IsNil(item) {
				parent.Append(item)
			}
		}
		return nil
	case []string:
		for _, item := range c {
			parent.Append(b.doc.CreateTextNode(item))
		}
		return nil
	case reactive.Collection:
		b.AttachList(parent, c, nil)
		return nil
	}

	node, err := b.Content(child)
	if err != nil {
		return err
	}
	parent.Append(node)
	return nil
}
