package htmldom

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vbind/pkg/dom"
)

// NodeIDAttr is the attribute WithNodeIDs writes on every element.
const NodeIDAttr = "data-vb-id"

type renderConfig struct {
	nodeIDs bool
}

// RenderOption configures rendering.
type RenderOption func(*renderConfig)

// WithNodeIDs writes each element's NodeID as a data-vb-id attribute so a
// remote client can address elements.
func WithNodeIDs() RenderOption {
	return func(c *renderConfig) { c.nodeIDs = true }
}

// Render serialises n as HTML. Live form state (dirty values and
// checkedness) is written as attributes so the output reflects what the
// user sees. Documents are prefixed with a doctype.
func Render(w io.Writer, n dom.Node, opts ...RenderOption) error {
	var cfg renderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	b := base(n)
	if b == nil {
		return nil
	}

	switch b.nodeType {
	case dom.DocumentNode:
		root := &html.Node{Type: html.DocumentNode}
		root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
		for c := b.firstChild; c != nil; c = c.nextSibling {
			root.AppendChild(toHTML(c, &cfg))
		}
		return html.Render(w, root)
	case dom.DocumentFragmentNode:
		for c := b.firstChild; c != nil; c = c.nextSibling {
			if err := html.Render(w, toHTML(c, &cfg)); err != nil {
				return err
			}
		}
		return nil
	default:
		return html.Render(w, toHTML(b, &cfg))
	}
}

// RenderString serialises n and returns the markup.
func RenderString(n dom.Node, opts ...RenderOption) string {
	var sb strings.Builder
	_ = Render(&sb, n, opts...)
	return sb.String()
}

// InnerHTML serialises the children of n.
func InnerHTML(n dom.Node, opts ...RenderOption) string {
	var cfg renderConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	b := base(n)
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for c := b.firstChild; c != nil; c = c.nextSibling {
		_ = html.Render(&sb, toHTML(c, &cfg))
	}
	return sb.String()
}

func htmlNamespace(ns string) string {
	switch ns {
	case dom.SVGNamespace:
		return "svg"
	case dom.MathMLNamespace:
		return "math"
	default:
		return ""
	}
}

// toHTML converts a subtree into golang.org/x/net/html nodes.
func toHTML(n *Node, cfg *renderConfig) *html.Node {
	switch n.nodeType {
	case dom.TextNode:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case dom.CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	case dom.DocumentFragmentNode:
		// Nested fragments only occur when a caller renders a detached one.
		frag := &html.Node{Type: html.ElementNode, Data: "template", DataAtom: atom.Template}
		for c := n.firstChild; c != nil; c = c.nextSibling {
			frag.AppendChild(toHTML(c, cfg))
		}
		return frag
	}

	var el *Element
	var ctl *Control
	switch v := n.outer.(type) {
	case *Control:
		ctl = v
		el = &v.Element
	case *Element:
		el = v
	default:
		return &html.Node{Type: html.CommentNode}
	}

	out := &html.Node{
		Type:      html.ElementNode,
		Data:      el.tag,
		DataAtom:  atom.Lookup([]byte(el.tag)),
		Namespace: htmlNamespace(el.ns),
	}
	for _, a := range el.attrs {
		if ctl != nil && ((ctl.dirtyValue && a.Name == "value" && ctl.tag == "input") ||
			(ctl.dirtyChecked && a.Name == "checked")) {
			continue
		}
		out.Attr = append(out.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	if ctl != nil && ctl.tag == "input" {
		if ctl.dirtyValue {
			out.Attr = append(out.Attr, html.Attribute{Key: "value", Val: ctl.value})
		}
		if ctl.dirtyChecked && ctl.checked {
			out.Attr = append(out.Attr, html.Attribute{Key: "checked"})
		}
	}
	if cfg.nodeIDs {
		out.Attr = append(out.Attr, html.Attribute{
			Key: NodeIDAttr,
			Val: strconv.FormatUint(uint64(el.id), 10),
		})
	}

	if ctl != nil && ctl.tag == "textarea" && ctl.dirtyValue {
		if ctl.value != "" {
			out.AppendChild(&html.Node{Type: html.TextNode, Data: ctl.value})
		}
		return out
	}
	for c := el.firstChild; c != nil; c = c.nextSibling {
		out.AppendChild(toHTML(c, cfg))
	}
	return out
}
