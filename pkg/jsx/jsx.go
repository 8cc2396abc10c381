package jsx

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/bind"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Construction errors. Errors with details match these with errors.Is.
var (
	ErrInvalidTag     = errors.New("B020")
	ErrEmptyComponent = errors.New("B021")
)

// Props are the attributes of an element or the arguments of a component.
type Props map[string]any

// Attr is a single prop for H.
type Attr struct {
	Key   string
	Value any
}

// Component renders props and children to content. The result may be a
// dom.Node, a reactive.Deferred or anything bind.Binder.Content accepts.
type Component func(props Props, children []any) (any, error)

// Runtime constructs elements for one Binder.
type Runtime struct {
	b      *bind.Binder
	log    *slog.Logger
	tracer trace.Tracer
	ctx    context.Context
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Default: the binder's logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.log = l
		}
	}
}

// WithTracer starts a span for every construction call.
func WithTracer(t trace.Tracer) Option {
	return func(rt *Runtime) {
		rt.tracer = t
	}
}

// WithContext sets the parent context of construction spans.
func WithContext(ctx context.Context) Option {
	return func(rt *Runtime) {
		if ctx != nil {
			rt.ctx = ctx
		}
	}
}

// New creates a Runtime that binds through b.
func New(b *bind.Binder, opts ...Option) *Runtime {
	rt := &Runtime{
		b:   b,
		log: b.Logger(),
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.log = rt.log.With("component", "jsx")
	return rt
}

// Binder returns the binder elements are bound with.
func (rt *Runtime) Binder() *bind.Binder { return rt.b }

// Construct creates the element or calls the component named by tag.
// tag is a tag name, a Component or a func(Props, []any) (any, error).
func (rt *Runtime) Construct(tag any, props Props, children ...any) (node dom.Node, err error) {
	if rt.tracer != nil {
		name, isComponent := spanName(tag)
		var span trace.Span
		_, span = tracing.StartConstruct(rt.ctx, rt.tracer, name, isComponent, len(props), len(children))
		defer func() { tracing.End(span, err) }()
	}

	props = clone(props)
	if debug, _ := props["_debug"].(bool); debug {
		delete(props, "_debug")
		rt.log.Debug("construct", "tag", tag, "props", sortedKeys(props), "children", len(children))
	}

	switch t := tag.(type) {
	case string:
		return rt.intrinsic(t, props, children)
	case Component:
		return rt.component(t, props, children)
	case func(Props, []any) (any, error):
		return rt.component(t, props, children)
	case nil:
		return nil, errors.New("B020").WithDetail("tag is nil")
	default:
		return nil, errors.New("B020").WithDetailf("tag has type %T", tag)
	}
}

// Must is Construct for tags with children only. It panics on error and
// is meant for static trees.
func (rt *Runtime) Must(tag any, children ...any) dom.Node {
	n, err := rt.Construct(tag, nil, children...)
	if err != nil {
		panic(err)
	}
	return n
}

// H is the variadic form of Construct. Props and Attr arguments are
// merged into the props; nil is skipped and everything else is a child.
func (rt *Runtime) H(tag any, args ...any) (dom.Node, error) {
	props := Props{}
	var children []any
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Props:
			for k, val := range v {
				props[k] = val
			}
		case Attr:
			if v.Key != "" {
				props[v.Key] = v.Value
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					props[a.Key] = a.Value
				}
			}
		default:
			children = append(children, v)
		}
	}
	return rt.Construct(tag, props, children...)
}

// Fragment returns a document fragment holding children.
func (rt *Runtime) Fragment(children ...any) (dom.Node, error) {
	frag := rt.b.Document().CreateDocumentFragment()
	if err := rt.b.Append(frag, children...); err != nil {
		return nil, err
	}
	return frag, nil
}

func (rt *Runtime) intrinsic(tag string, props Props, children []any) (dom.Node, error) {
	shadow := shadowMode(props["shadow-root"])
	delete(props, "shadow-root")

	if tag == "shadow-root" {
		tag = "template"
		mode, ok := props["mode"]
		if !ok {
			mode = "open"
		}
		props["shadowrootmode"] = mode
		delete(props, "mode")
	}

	el := rt.b.CreateElement(tag)
	if err := rt.setChildren(el, children, shadow); err != nil {
		return nil, err
	}

	b := rt.b
	if module, ok := props["module"].(string); ok {
		b = b.WithRootPath(module)
		delete(props, "module")
	}
	for _, name := range sortedKeys(props) {
		value := props[name]
		if name == "style" {
			if err := b.SetStyle(el, value); err != nil {
				return nil, err
			}
			continue
		}
		ok, err := b.SetAttribute(el, name, value)
		if err != nil {
			return nil, err
		}
		if !ok {
			rt.log.Warn("attribute is not allowed for this element", "attribute", name, "tag", tag)
		}
	}
	return el, nil
}

func (rt *Runtime) setChildren(el dom.Element, children []any, shadow string) error {
	if shadow == "" {
		return rt.b.Append(el, children...)
	}
	tpl, err := rt.Construct("template", Props{"shadowrootmode": shadow}, children...)
	if err != nil {
		return err
	}
	el.Append(tpl)
	return nil
}

func (rt *Runtime) component(c Component, props Props, children []any) (dom.Node, error) {
	out, err := c(props, children)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("B021").WithDetailf("component %T", c)
	}
	return rt.b.Content(out)
}

// shadowMode maps a shadow-root prop to a template mode. true means
// "open"; false and nil disable it.
func shadowMode(v any) string {
	switch m := v.(type) {
	case bool:
		if m {
			return "open"
		}
	case string:
		return m
	}
	return ""
}

func spanName(tag any) (string, bool) {
	if s, ok := tag.(string); ok {
		return s, false
	}
	return tracing.TypeName(tag), true
}

func clone(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// sortedKeys orders props by name, except that type comes first: the
// bindings of value and checked depend on the input type.
func sortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "type") != (keys[j] == "type") {
			return keys[i] == "type"
		}
		return keys[i] < keys[j]
	})
	return keys
}
