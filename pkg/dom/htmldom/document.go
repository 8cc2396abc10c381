// Package htmldom is an in-process DOM implementing pkg/dom.
//
// Nodes are sibling-linked like a browser tree and carry stable NodeIDs.
// Form controls keep live value, checked and custom-validity state apart
// from their attributes. Every structural, attribute and form-state change
// is appended to the owning Document's mutation log and delivered to
// Observe callbacks, which is how tests count DOM writes and how the preview
// server knows when to re-render.
//
// Serialisation and parsing go through golang.org/x/net/html.
//
// A Document is not safe for concurrent use; callers confine it to one
// goroutine, the way a browser confines the DOM to its event loop.
package htmldom

import (
	"strings"
	"weak"

	"github.com/vango-dev/vbind/pkg/dom"
)

// Document is the root of a tree and the factory for its nodes.
type Document struct {
	Node

	nextID dom.NodeID

	html *Element
	head *Element
	body *Element

	mutations []Mutation
	logLimit  int
	observers []*mutationObserver
	nextObs   uint64
}

// Option configures a Document.
type Option func(*Document)

// WithLogLimit bounds the number of mutations kept in the log.
// Zero keeps none; observers still receive every mutation.
func WithLogLimit(n int) Option {
	return func(d *Document) { d.logLimit = n }
}

// NewDocument creates a document with html, head and body elements.
func NewDocument(opts ...Option) *Document {
	d := &Document{logLimit: 4096}
	d.nextID = 1
	d.Node = Node{id: d.nextID, nodeType: dom.DocumentNode, nodeName: "#document", doc: d}
	d.Node.outer = d
	for _, opt := range opts {
		opt(d)
	}

	d.html = d.newElement(dom.XHTMLNamespace, "html")
	d.head = d.newElement(dom.XHTMLNamespace, "head")
	d.body = d.newElement(dom.XHTMLNamespace, "body")
	d.html.Append(d.head, d.body)
	d.Node.Append(d.html)
	d.mutations = nil
	return d
}

// IsNil reports whether the receiver is a nil pointer.
func (d *Document) IsNil() bool { return d == nil }

// DocumentElement returns the html element.
func (d *Document) DocumentElement() dom.Element { return d.html }

// Head returns the head element.
func (d *Document) Head() dom.Element { return d.head }

// Body returns the body element.
func (d *Document) Body() dom.Element { return d.body }

func (d *Document) allocID() dom.NodeID {
	d.nextID++
	return d.nextID
}

func (d *Document) newNode(t dom.NodeType, name, data string) *Node {
	n := &Node{id: d.allocID(), nodeType: t, nodeName: name, doc: d, data: data}
	n.outer = n
	return n
}

func (d *Document) newElement(ns, tag string) *Element {
	if ns == dom.XHTMLNamespace {
		tag = strings.ToLower(tag)
		switch tag {
		case "input", "select", "textarea":
			c := &Control{}
			c.init(d, ns, tag)
			c.Node.outer = c
			return &c.Element
		}
	}
	el := &Element{}
	el.init(d, ns, tag)
	el.Node.outer = el
	return el
}

// CreateElement creates an element in the XHTML namespace.
// input, select and textarea elements are returned as *Control.
func (d *Document) CreateElement(tag string) dom.Element {
	el := d.newElement(dom.XHTMLNamespace, tag)
	return el.Node.outer.(dom.Element)
}

// CreateElementNS creates an element in namespace ns.
func (d *Document) CreateElementNS(ns, tag string) dom.Element {
	if ns == "" {
		ns = dom.XHTMLNamespace
	}
	el := d.newElement(ns, tag)
	return el.Node.outer.(dom.Element)
}

// CreateTextNode creates a text node.
func (d *Document) CreateTextNode(data string) dom.Node {
	return d.newNode(dom.TextNode, "#text", data)
}

// CreateComment creates a comment node.
func (d *Document) CreateComment(data string) dom.Node {
	return d.newNode(dom.CommentNode, "#comment", data)
}

// CreateDocumentFragment creates an empty fragment.
func (d *Document) CreateDocumentFragment() dom.Node {
	return d.newNode(dom.DocumentFragmentNode, "#document-fragment", "")
}

// FindByID returns the node with the given id if it is attached to the
// document tree.
func (d *Document) FindByID(id dom.NodeID) dom.Node {
	var found *Node
	d.Node.walk(func(n *Node) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return wrap(found)
}

// =============================================================================
// Weak references
// =============================================================================

type weakRef[T any] struct {
	p    weak.Pointer[T]
	conv func(*T) dom.Node
}

func (w weakRef[T]) Deref() (dom.Node, bool) {
	v := w.p.Value()
	if v == nil {
		return nil, false
	}
	return w.conv(v), true
}

// WeakRef returns a reference to n that does not keep it alive.
// Nodes from other implementations are referenced strongly.
func (d *Document) WeakRef(n dom.Node) dom.WeakRef {
	switch v := n.(type) {
	case *Node:
		return weakRef[Node]{p: weak.Make(v), conv: func(p *Node) dom.Node { return p }}
	case *Element:
		return weakRef[Element]{p: weak.Make(v), conv: func(p *Element) dom.Node { return p }}
	case *Control:
		return weakRef[Control]{p: weak.Make(v), conv: func(p *Control) dom.Node { return p }}
	case *Document:
		return weakRef[Document]{p: weak.Make(v), conv: func(p *Document) dom.Node { return p }}
	default:
		return strongRef{n: n}
	}
}

type strongRef struct{ n dom.Node }

func (s strongRef) Deref() (dom.Node, bool) { return s.n, s.n != nil }
