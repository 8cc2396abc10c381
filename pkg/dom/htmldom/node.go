package htmldom

import (
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
)

// Node is a tree member. Text, comment and fragment nodes are plain *Node;
// elements, form controls and documents embed it.
type Node struct {
	id       dom.NodeID
	nodeType dom.NodeType
	nodeName string
	doc      *Document

	// outer is the value handed out through the dom interfaces: the *Node
	// itself or the *Element, *Control or *Document embedding it.
	outer dom.Node

	// data holds text or comment content.
	data string

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node
}

// base returns the embedded *Node of a node created by this package.
func base(n dom.Node) *Node {
	switch v := n.(type) {
	case *Node:
		return v
	case *Element:
		if v == nil {
			return nil
		}
		return &v.Node
	case *Control:
		if v == nil {
			return nil
		}
		return &v.Node
	case *Document:
		if v == nil {
			return nil
		}
		return &v.Node
	default:
		return nil
	}
}

// wrap returns n as a dom.Node, mapping nil to a nil interface.
func wrap(n *Node) dom.Node {
	if n == nil {
		return nil
	}
	return n.outer
}

// IsNil reports whether the receiver is a nil pointer.
func (n *Node) IsNil() bool { return n == nil }

func (n *Node) NodeType() dom.NodeType { return n.nodeType }
func (n *Node) NodeName() string       { return n.nodeName }
func (n *Node) NodeID() dom.NodeID     { return n.id }

func (n *Node) OwnerDocument() dom.Document {
	if n.doc == nil {
		return nil
	}
	return n.doc
}

func (n *Node) ParentNode() dom.Node      { return wrap(n.parent) }
func (n *Node) FirstChild() dom.Node      { return wrap(n.firstChild) }
func (n *Node) LastChild() dom.Node       { return wrap(n.lastChild) }
func (n *Node) NextSibling() dom.Node     { return wrap(n.nextSibling) }
func (n *Node) PreviousSibling() dom.Node { return wrap(n.prevSibling) }

// ChildNodes returns a snapshot of the children.
func (n *Node) ChildNodes() []dom.Node {
	var out []dom.Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c.outer)
	}
	return out
}

// Data returns the content of a text or comment node.
func (n *Node) Data() string { return n.data }

func (n *Node) canHaveChildren() bool {
	switch n.nodeType {
	case dom.ElementNode, dom.DocumentNode, dom.DocumentFragmentNode:
		return true
	}
	return false
}

// isInclusiveAncestor reports whether n is other or one of its ancestors.
func (n *Node) isInclusiveAncestor(other *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == other {
			return true
		}
	}
	return false
}

// Append adds children at the end. Fragments contribute their children.
func (n *Node) Append(children ...dom.Node) {
	for _, c := range children {
		n.insertBefore(base(c), nil)
	}
}

// InsertBefore inserts child before ref. A nil ref appends; a ref that is not
// a child of n is ignored.
func (n *Node) InsertBefore(child, ref dom.Node) {
	r := base(ref)
	if r != nil && r.parent != n {
		return
	}
	n.insertBefore(base(child), r)
}

// ReplaceChild swaps old for child. An old that is not a child is ignored.
func (n *Node) ReplaceChild(child, old dom.Node) {
	c, o := base(child), base(old)
	if c == nil || o == nil || o.parent != n || c == o {
		return
	}
	if c.nodeType == dom.DocumentFragmentNode {
		for _, fc := range c.childList() {
			n.insertBefore(fc, o)
		}
		n.removeChild(o)
		return
	}
	if n.isInclusiveAncestor(c) {
		return
	}
	if c == o.nextSibling {
		n.removeChild(o)
		return
	}
	next := o.nextSibling
	n.removeChild(o)
	n.insertBefore(c, next)
}

// RemoveChild detaches child. Non-children are ignored.
func (n *Node) RemoveChild(child dom.Node) {
	c := base(child)
	if c == nil || c.parent != n {
		return
	}
	n.removeChild(c)
}

func (n *Node) childList() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}

func (n *Node) insertBefore(c, ref *Node) {
	if c == nil || !n.canHaveChildren() || c == ref {
		return
	}
	if c.nodeType == dom.DocumentFragmentNode {
		for _, fc := range c.childList() {
			n.insertBefore(fc, ref)
		}
		return
	}
	if c.nodeType == dom.DocumentNode || n.isInclusiveAncestor(c) {
		return
	}
	if c.parent != nil {
		c.parent.removeChild(c)
	}

	c.parent = n
	if ref == nil {
		c.prevSibling = n.lastChild
		c.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = c
		} else {
			n.firstChild = c
		}
		n.lastChild = c
	} else {
		c.nextSibling = ref
		c.prevSibling = ref.prevSibling
		if ref.prevSibling != nil {
			ref.prevSibling.nextSibling = c
		} else {
			n.firstChild = c
		}
		ref.prevSibling = c
	}

	n.record(Mutation{Op: MutationInsert, Target: n.id, Child: c.id})
}

func (n *Node) removeChild(c *Node) {
	if c.prevSibling != nil {
		c.prevSibling.nextSibling = c.nextSibling
	} else {
		n.firstChild = c.nextSibling
	}
	if c.nextSibling != nil {
		c.nextSibling.prevSibling = c.prevSibling
	} else {
		n.lastChild = c.prevSibling
	}
	c.parent, c.prevSibling, c.nextSibling = nil, nil, nil

	n.record(Mutation{Op: MutationRemove, Target: n.id, Child: c.id})
}

// TextContent returns the data of text and comment nodes, or the
// concatenated text of all descendant text nodes.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case dom.TextNode, dom.CommentNode:
		return n.data
	case dom.DocumentNode:
		return ""
	}
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		switch c.nodeType {
		case dom.TextNode:
			sb.WriteString(c.data)
		case dom.ElementNode:
			c.collectText(sb)
		}
	}
}

// SetTextContent replaces the data of text and comment nodes, or replaces
// all children with a single text node.
func (n *Node) SetTextContent(text string) {
	switch n.nodeType {
	case dom.TextNode, dom.CommentNode:
		if n.data == text {
			return
		}
		n.data = text
		n.record(Mutation{Op: MutationSetText, Target: n.id, Value: text})
		return
	case dom.DocumentNode:
		return
	}
	for c := n.firstChild; c != nil; c = n.firstChild {
		n.removeChild(c)
	}
	if text != "" && n.doc != nil {
		n.insertBefore(n.doc.newNode(dom.TextNode, "#text", text), nil)
	}
}

func (n *Node) record(m Mutation) {
	if n.doc != nil {
		n.doc.record(m)
	}
}

// walk visits n and its descendants in document order until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// root returns the topmost ancestor of n.
func (n *Node) root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}
