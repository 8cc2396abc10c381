package bind

import (
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

// Programmer errors returned by SetAttribute and friends. Errors carrying
// details about the element match these with errors.Is.
var (
	ErrSelectedNotRadio = errors.New("B001")
	ErrNotReactive      = errors.New("B002")
	ErrUnsupportedType  = errors.New("B003")
	ErrInvalidHandler   = errors.New("B004")
	ErrFrontendHandler  = errors.New("B005")
	ErrCheckedNotInput  = errors.New("B006")
)

// Mode is the binding state an attribute ends up in.
type Mode uint8

const (
	ModeStatic Mode = iota
	ModeReactive
	ModeTwoWay
	ModeDeferred
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeReactive:
		return "reactive"
	case ModeTwoWay:
		return "two_way"
	case ModeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Binder binds values to the nodes of one document.
type Binder struct {
	doc dom.Document
	cfg config
	log *slog.Logger
	reg *registry
}

// New creates a Binder for doc.
func New(doc dom.Document, opts ...Option) *Binder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.With("component", "bind")
	return &Binder{
		doc: doc,
		cfg: cfg,
		log: log,
		reg: newRegistry(doc, log, cfg.observer),
	}
}

// Document returns the bound document.
func (b *Binder) Document() dom.Document { return b.doc }

// Logger returns the logger the binder was configured with.
func (b *Binder) Logger() *slog.Logger { return b.cfg.logger }

// RootPath returns the base URL for relative attribute values.
func (b *Binder) RootPath() string { return b.cfg.rootPath }

// Location returns the time zone used for local-time controls.
func (b *Binder) Location() *time.Location { return b.cfg.location }

// Validation returns the input validation policy.
func (b *Binder) Validation() ValidationPolicy { return b.cfg.validation }

// WithRootPath returns a Binder that resolves relative values against root
// and shares the receiver's registry, so bindings made through either are
// released together.
func (b *Binder) WithRootPath(root string) *Binder {
	nb := *b
	nb.cfg.rootPath = root
	return &nb
}

// CreateElement creates an element in the namespace its tag belongs to.
func (b *Binder) CreateElement(tag string) dom.Element {
	return dom.CreateElement(b.doc, tag)
}

func tagOf(el dom.Element) string {
	if el.NamespaceURI() == dom.XHTMLNamespace || el.NamespaceURI() == "" {
		return strings.ToLower(el.TagName())
	}
	return el.TagName()
}

func isInput(el dom.Element) bool { return tagOf(el) == "input" }

// controlOf returns el as a form control if it is an input, select or
// textarea.
func controlOf(el dom.Element) (dom.FormControl, bool) {
	switch tagOf(el) {
	case "input", "select", "textarea":
		fc, ok := el.(dom.FormControl)
		return fc, ok
	}
	return nil, false
}

func inputType(el dom.Element) string {
	if fc, ok := el.(dom.FormControl); ok {
		return fc.Type()
	}
	t, _ := el.GetAttribute("type")
	return strings.ToLower(t)
}

func sameNode(a, b dom.Node) bool {
	if dom.IsNil(a) || dom.IsNil(b) {
		return false
	}
	return a.NodeID() == b.NodeID()
}
