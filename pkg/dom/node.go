// Package dom defines the DOM surface that vbind binds against.
//
// The binder never depends on a concrete tree: it is handed a Document and
// works through the interfaces in this package. pkg/dom/htmldom provides the
// in-process implementation used by the CLI, the preview server and tests.
package dom

// NodeType mirrors the DOM nodeType constants.
type NodeType uint8

const (
	ElementNode          NodeType = 1
	TextNode             NodeType = 3
	CommentNode          NodeType = 8
	DocumentNode         NodeType = 9
	DocumentFragmentNode NodeType = 11
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	case DocumentFragmentNode:
		return "fragment"
	default:
		return "unknown"
	}
}

// NodeID is a stable, never reused node handle. The binding registry keys
// its records by NodeID so that it never holds a node strongly.
type NodeID uint64

// Node is the base of every tree member.
//
// Navigation methods return a nil interface when there is no such node.
type Node interface {
	NodeType() NodeType
	NodeName() string
	NodeID() NodeID
	OwnerDocument() Document

	ParentNode() Node
	FirstChild() Node
	LastChild() Node
	NextSibling() Node
	PreviousSibling() Node
	ChildNodes() []Node

	// Append adds children at the end. Fragments contribute their children.
	Append(children ...Node)

	// InsertBefore inserts child before ref. A nil ref appends.
	InsertBefore(child, ref Node)

	// ReplaceChild swaps old for child.
	ReplaceChild(child, old Node)

	// RemoveChild detaches child. Non-children are ignored.
	RemoveChild(child Node)

	TextContent() string
	SetTextContent(text string)
}

// Attr is one attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is a Node with attributes, style and listeners.
type Element interface {
	Node

	// TagName returns the local name as written (lowercase for HTML).
	TagName() string
	NamespaceURI() string

	GetAttribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	HasAttribute(name string) bool
	Attributes() []Attr

	Style() Style
	ClassList() TokenList

	// AddEventListener registers fn for events of type typ and returns a
	// function that removes it.
	AddEventListener(typ string, fn EventHandler) (remove func())
	DispatchEvent(ev *Event)
}

// FormControl is an input, select or textarea element.
type FormControl interface {
	Element

	// Type returns the lowercase input type, "select-one" for select and
	// "textarea" for textarea.
	Type() string

	Value() string
	SetValue(v string)
	Checked() bool
	SetChecked(checked bool)

	SetCustomValidity(msg string)
	ValidationMessage() string

	// ReportValidity reports whether the control is valid and surfaces the
	// current validation message.
	ReportValidity() bool
}

// AttributeObserver is implemented by elements that can report attribute
// changes, like a MutationObserver with an attributeFilter.
type AttributeObserver interface {
	ObserveAttributes(filter []string, fn func(name string)) (stop func())
}

// Style is an element's inline style declaration block.
// Property names are kebab-case.
type Style interface {
	GetPropertyValue(name string) string
	SetProperty(name, value string)
	RemoveProperty(name string)
	CSSText() string
	SetCSSText(text string)
	Len() int
}

// TokenList is an element's class list.
type TokenList interface {
	Add(tokens ...string)
	Remove(tokens ...string)
	Contains(token string) bool
	Toggle(token string, force bool)
	Values() []string
	Len() int
}

// WeakRef refers to a node without keeping it alive.
type WeakRef interface {
	// Deref returns the node if it is still reachable.
	Deref() (Node, bool)
}

// Document creates nodes and hands out weak references to them.
type Document interface {
	Node

	CreateElement(tag string) Element
	CreateElementNS(ns, tag string) Element
	CreateTextNode(data string) Node
	CreateComment(data string) Node
	CreateDocumentFragment() Node

	Head() Element
	Body() Element

	WeakRef(n Node) WeakRef
}

// IsNil reports whether n is nil or a typed nil pointer behind the interface.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	type nilChecker interface{ IsNil() bool }
	if c, ok := n.(nilChecker); ok {
		return c.IsNil()
	}
	return false
}
