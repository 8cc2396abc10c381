// Package attrs is the static attribute dispatch table.
//
// The table is built once at init from the attribute lists below and keyed
// by (tag, attribute). Lookup answers in O(1) which rule admitted an
// attribute, or KindUnknown when none did.
package attrs

import (
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
)

// Kind is the rule that admits an attribute on an element.
type Kind uint8

const (
	KindUnknown       Kind = iota
	KindGlobal             // allowed on every element
	KindEvent              // on* handler, including :frontend variants
	KindElement            // listed for this tag
	KindData               // data-*
	KindAria               // aria-*
	KindCustomElement      // any attribute on a custom element
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindEvent:
		return "event"
	case KindElement:
		return "element"
	case KindData:
		return "data"
	case KindAria:
		return "aria"
	case KindCustomElement:
		return "custom_element"
	default:
		return "unknown"
	}
}

type key struct {
	tag  string
	attr string
}

var (
	globals = make(map[string]Kind)
	table   = make(map[key]Kind)
)

var globalAttributes = []string{
	"accesskey", "class", "contenteditable", "contextmenu", "dir", "draggable",
	"dropzone", "hidden", "id", "lang", "spellcheck", "style", "tabindex",
	"title", "role", "name", "slot",
	"module", "stylesheet", "shadow-root", "display",
}

var eventHandlerAttributes = []string{
	"onabort", "onblur", "oncanplay", "oncanplaythrough", "onchange",
	"onclick", "oncontextmenu", "oncuechange", "ondblclick", "ondrag",
	"ondragend", "ondragenter", "ondragleave", "ondragover", "ondragstart",
	"ondrop", "ondurationchange", "onemptied", "onended", "onerror",
	"onfocus", "oninput", "oninvalid", "onkeydown", "onkeypress", "onkeyup",
	"onload", "onloadeddata", "onloadedmetadata", "onloadstart",
	"onmousedown", "onmousemove", "onmouseout", "onmouseover", "onmouseup",
	"onmousewheel", "onpause", "onplay", "onplaying", "onprogress",
	"onratechange", "onreadystatechange", "onreset", "onscroll", "onseeked",
	"onseeking", "onselect", "onshow", "onstalled", "onsubmit", "onsuspend",
	"ontimeupdate", "onvolumechange", "onwaiting",
}

var (
	widthAndHeight = []string{"width", "height"}
	src            = []string{"src", "src:route"}
	href           = []string{"href", "href:route"}
	valueForms     = []string{"value", "value:in", "value:out"}
)

func join(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

var htmlElementAttributes = map[string][]string{
	"a":        join(href, []string{"target"}),
	"link":     join(href, []string{"rel"}),
	"script":   join(src, []string{"type"}),
	"progress": {"value", "max", "min"},
	"input": join([]string{"alt"}, src, widthAndHeight, valueForms, []string{
		"min", "minlength", "accept", "autocomplete", "autofocus", "checked",
		"dirname", "disabled", "form", "formaction", "formenctype",
		"formmethod", "formnovalidate", "formtarget", "list", "max",
		"maxlength", "multiple", "pattern", "placeholder", "readonly",
		"required", "size", "step", "type", "value:selected",
	}),
	"button": {"type", "disabled"},
	"form":   {"method", "enctype", "action"},
	"img": join([]string{"alt"}, src, widthAndHeight, []string{
		"border", "crossorigin", "ismap", "loading", "longdesc",
		"referrerpolicy", "sizes", "srcset", "usemap",
	}),
	"template": {"shadowrootmode"},
	"iframe":   join(src, []string{"allowtransparency", "allow"}),
	"details":  {"open"},
	"source":   join(src, []string{"type"}),
	"label":    {"for"},
	"video": join(src, widthAndHeight, []string{
		"autoplay", "controls", "loop", "muted", "poster", "preload", "playsinline",
	}),
	"textarea": join(valueForms, []string{"placeholder", "rows", "cols", "readonly", "required", "disabled"}),
	"option":   {"value", "selected", "disabled"},
	"select":   join(valueForms, []string{"required", "multiple", "disabled"}),
	"dialog":   {"open"},
	"table":    {"cellspacing", "cellpadding", "align", "width", "border"},
	"meta":     {"content"},
}

// svgPresentationAttributes are admitted on every SVG element.
var svgPresentationAttributes = []string{
	"fill", "fill-rule", "fill-opacity", "stroke", "stroke-width",
	"stroke-linecap", "stroke-linejoin", "stroke-opacity", "opacity",
	"transform", "x", "y", "width", "height", "href", "clip-path", "mask",
}

var svgElementAttributes = map[string][]string{
	"circle":   {"cx", "cy", "r"},
	"ellipse":  {"cx", "cy", "rx", "ry"},
	"rect":     {"rx", "ry"},
	"line":     {"x1", "y1", "x2", "y2"},
	"polygon":  {"points"},
	"polyline": {"points"},
	"svg":      {"xmlns", "viewBox", "preserveAspectRatio"},
	"path":     {"d"},
	"use":      {"href:route"},
	"image":    {"href:route", "preserveAspectRatio"},
	"text":     {"dx", "dy", "text-anchor"},
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func init() {
	for _, a := range globalAttributes {
		globals[a] = KindGlobal
	}
	for _, a := range eventHandlerAttributes {
		globals[a] = KindEvent
		globals[a+":frontend"] = KindEvent
	}
	for tag, list := range htmlElementAttributes {
		for _, a := range list {
			table[key{tag, a}] = KindElement
		}
	}
	for tag := range svgTagNames() {
		for _, a := range svgPresentationAttributes {
			table[key{tag, a}] = KindElement
		}
	}
	for tag, list := range svgElementAttributes {
		for _, a := range list {
			table[key{tag, a}] = KindElement
		}
	}
}

func svgTagNames() map[string]bool {
	names := make(map[string]bool)
	for _, tag := range []string{
		"svg", "g", "defs", "symbol", "use", "image", "circle", "ellipse",
		"rect", "line", "polygon", "polyline", "path", "text", "tspan",
		"textPath", "marker", "mask", "pattern", "clipPath", "linearGradient",
		"radialGradient", "stop", "filter", "foreignObject", "view", "switch",
	} {
		if dom.IsSVGTag(tag) {
			names[tag] = true
		}
	}
	return names
}

// Lookup returns the rule admitting attr on tag.
func Lookup(tag, attr string) Kind {
	if k, ok := table[key{tag, attr}]; ok {
		return k
	}
	if k, ok := globals[attr]; ok {
		return k
	}
	switch {
	case strings.HasPrefix(attr, "data-"):
		return KindData
	case strings.HasPrefix(attr, "aria-"):
		return KindAria
	case IsCustomElement(tag):
		return KindCustomElement
	}
	return KindUnknown
}

// Allowed reports whether attr is admitted on tag.
func Allowed(tag, attr string) bool {
	return Lookup(tag, attr) != KindUnknown
}

// IsCustomElement reports whether tag names a custom element.
func IsCustomElement(tag string) bool {
	return strings.Contains(tag, "-") && !dom.IsMathMLTag(tag) && !strings.HasPrefix(tag, "vbind-")
}

// IsEventHandler reports whether attr is an on* handler attribute.
func IsEventHandler(attr string) bool {
	return globals[attr] == KindEvent
}

// IsSVG reports whether tag is an SVG element.
func IsSVG(tag string) bool { return dom.IsSVGTag(tag) }

// IsMathML reports whether tag is a MathML element.
func IsMathML(tag string) bool { return dom.IsMathMLTag(tag) }

// IsVoid reports whether tag is a void HTML element.
func IsVoid(tag string) bool { return voidElements[tag] }
