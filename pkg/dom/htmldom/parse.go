package htmldom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/vbind/pkg/dom"
)

// Parse reads a complete HTML document.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse document: %w", err)
	}

	d := NewDocument(opts...)
	for h := root.FirstChild; h != nil; h = h.NextSibling {
		if h.Type != html.ElementNode || h.DataAtom != atom.Html {
			continue
		}
		for _, a := range h.Attr {
			d.html.setAttr(a.Key, a.Val)
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.ElementNode && c.DataAtom == atom.Head:
				d.importInto(d.head, c)
			case c.Type == html.ElementNode && c.DataAtom == atom.Body:
				d.importInto(d.body, c)
			}
		}
	}
	d.ResetMutations()
	return d, nil
}

// ParseFragment parses markup in the context of an element (body when nil)
// and returns a detached fragment holding the result.
func (d *Document) ParseFragment(markup string, context dom.Element) (dom.Node, error) {
	tag := "body"
	if context != nil {
		tag = context.TagName()
	}
	ctx := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}

	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse fragment: %w", err)
	}

	frag := d.newNode(dom.DocumentFragmentNode, "#document-fragment", "")
	for _, h := range nodes {
		if n := d.importNode(h); n != nil {
			frag.insertBefore(n, nil)
		}
	}
	return frag, nil
}

// SetInnerHTML replaces the children of el with parsed markup.
func SetInnerHTML(el dom.Element, markup string) error {
	b := base(el)
	if b == nil || b.doc == nil {
		return fmt.Errorf("htmldom: element does not belong to an htmldom document")
	}
	frag, err := b.doc.ParseFragment(markup, el)
	if err != nil {
		return err
	}
	for c := b.firstChild; c != nil; c = b.firstChild {
		b.removeChild(c)
	}
	b.insertBefore(base(frag), nil)
	return nil
}

func (d *Document) importInto(parent *Element, h *html.Node) {
	for _, a := range h.Attr {
		parent.setAttr(a.Key, a.Val)
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if n := d.importNode(c); n != nil {
			parent.insertBefore(n, nil)
		}
	}
}

// importNode converts a golang.org/x/net/html subtree into this document.
func (d *Document) importNode(h *html.Node) *Node {
	switch h.Type {
	case html.TextNode:
		return d.newNode(dom.TextNode, "#text", h.Data)
	case html.CommentNode:
		return d.newNode(dom.CommentNode, "#comment", h.Data)
	case html.ElementNode:
		ns := dom.XHTMLNamespace
		switch h.Namespace {
		case "svg":
			ns = dom.SVGNamespace
		case "math":
			ns = dom.MathMLNamespace
		}
		el := d.newElement(ns, h.Data)
		for _, a := range h.Attr {
			el.setAttr(a.Key, a.Val)
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if n := d.importNode(c); n != nil {
				el.insertBefore(n, nil)
			}
		}
		return &el.Node
	default:
		return nil
	}
}
