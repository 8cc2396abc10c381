package dom

// Element namespaces.
const (
	XHTMLNamespace  = "http://www.w3.org/1999/xhtml"
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)

// svgTags lists tag names created in the SVG namespace. Names shared with
// HTML (a, script, style, title) stay in the XHTML namespace.
var svgTags = map[string]bool{
	"animate": true, "animateMotion": true, "animateTransform": true,
	"circle": true, "clipPath": true, "defs": true, "desc": true,
	"ellipse": true, "feBlend": true, "feColorMatrix": true,
	"feComponentTransfer": true, "feComposite": true, "feConvolveMatrix": true,
	"feDiffuseLighting": true, "feDisplacementMap": true, "feDropShadow": true,
	"feFlood": true, "feFuncA": true, "feFuncB": true, "feFuncG": true,
	"feFuncR": true, "feGaussianBlur": true, "feImage": true, "feMerge": true,
	"feMergeNode": true, "feMorphology": true, "feOffset": true,
	"fePointLight": true, "feSpecularLighting": true, "feSpotLight": true,
	"feTile": true, "feTurbulence": true, "filter": true,
	"foreignObject": true, "g": true, "image": true, "line": true,
	"linearGradient": true, "marker": true, "mask": true, "metadata": true,
	"mpath": true, "path": true, "pattern": true, "polygon": true,
	"polyline": true, "radialGradient": true, "rect": true, "set": true,
	"stop": true, "svg": true, "switch": true, "symbol": true, "text": true,
	"textPath": true, "tspan": true, "use": true, "view": true,
}

var mathMLTags = map[string]bool{
	"annotation": true, "annotation-xml": true, "maction": true, "math": true,
	"merror": true, "mfrac": true, "mi": true, "mmultiscripts": true,
	"mn": true, "mo": true, "mover": true, "mpadded": true, "mphantom": true,
	"mprescripts": true, "mroot": true, "mrow": true, "ms": true,
	"mspace": true, "msqrt": true, "mstyle": true, "msub": true,
	"msubsup": true, "msup": true, "mtable": true, "mtd": true, "mtext": true,
	"mtr": true, "munder": true, "munderover": true, "semantics": true,
}

// IsSVGTag reports whether tag is created in the SVG namespace.
func IsSVGTag(tag string) bool {
	return svgTags[tag]
}

// IsMathMLTag reports whether tag is created in the MathML namespace.
func IsMathMLTag(tag string) bool {
	return mathMLTags[tag]
}

// NamespaceFor returns the namespace an element named tag is created in.
func NamespaceFor(tag string) string {
	switch {
	case svgTags[tag]:
		return SVGNamespace
	case mathMLTags[tag]:
		return MathMLNamespace
	default:
		return XHTMLNamespace
	}
}

// CreateElement creates tag in the namespace NamespaceFor selects.
func CreateElement(doc Document, tag string) Element {
	ns := NamespaceFor(tag)
	if ns == XHTMLNamespace {
		return doc.CreateElement(tag)
	}
	return doc.CreateElementNS(ns, tag)
}
