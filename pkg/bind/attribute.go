package bind

import (
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/attrs"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/inputfmt"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// SetAttribute binds value to the attribute name of el.
//
// value may be a plain value (static), a reactive.Ref (reactive, or two-way
// for value, value:out, value:selected and checked on form controls), or a
// reactive.LazyRef / reactive.Deferred (bound when it resolves). Any binding
// previously made for the same attribute is released first.
//
// The returned bool is false when the attribute is not admitted on el by
// the attribute tables; nothing is written in that case.
func (b *Binder) SetAttribute(el dom.Element, name string, value any) (bool, error) {
	if el == nil {
		return false, nil
	}
	tag := tagOf(el)
	if !attrs.Allowed(tag, name) {
		return false, nil
	}

	if name == "value" && isInput(el) && inputType(el) == "checkbox" && isBoolean(value) {
		b.log.Warn(`assigning a boolean to the "value" attribute of a checkbox has no effect on its state, use "checked"`,
			"tag", tag)
	} else if name == "value:selected" && !(isInput(el) && inputType(el) == "radio") {
		return false, errors.New("B001").WithDetailf("<%s type=%q>", tag, inputType(el))
	}

	b.reg.release(el, slot{slotAttr, baseName(name)})

	switch v := value.(type) {
	case reactive.LazyRef:
		h := b.reg.track(el)
		b.cfg.observer.AttributeBound(ModeDeferred)
		v.OnLoad(func(ref reactive.Ref) {
			b.resume(h, name, ref)
		})
		return true, nil
	case reactive.Deferred:
		h := b.reg.track(el)
		b.cfg.observer.AttributeBound(ModeDeferred)
		v.Then(func(resolved any) {
			b.resume(h, name, resolved)
		})
		return true, nil
	case reactive.Ref:
		mode, err := b.bindReactive(el, name, v)
		if err != nil {
			return false, err
		}
		b.cfg.observer.AttributeBound(mode)
		return true, nil
	default:
		if err := b.writeAttribute(el, name, value, b.cfg.rootPath); err != nil {
			return false, err
		}
		b.cfg.observer.AttributeBound(ModeStatic)
		return true, nil
	}
}

// resume re-runs SetAttribute once a deferred value resolved.
func (b *Binder) resume(h handle, name string, value any) {
	n, ok := b.reg.resolve(h)
	if !ok {
		return
	}
	el, ok := n.(dom.Element)
	if !ok {
		return
	}
	if _, err := b.SetAttribute(el, name, value); err != nil {
		b.log.Error("deferred attribute binding failed", "tag", tagOf(el), "attr", name, "error", err)
	}
}

// baseName strips direction and routing suffixes. All forms of an
// attribute share one binding slot, except value:selected which binds the
// checkedness of a radio rather than its value.
func baseName(name string) string {
	if name == "value:selected" {
		return name
	}
	if i := strings.IndexByte(name, ':'); i > 0 {
		return name[:i]
	}
	return name
}

// bindReactive installs a binding for a reference.
func (b *Binder) bindReactive(el dom.Element, name string, ref reactive.Ref) (Mode, error) {
	root := b.cfg.rootPath
	attrSlot := slot{slotAttr, baseName(name)}

	if fc, ok := controlOf(el); ok {
		switch name {
		case "value", "value:in", "value:out", "value:selected":
			return b.bindControlValue(el, fc, name, ref, root)
		}
	}

	mode := ModeReactive
	if name == "checked" && isInput(el) && inputType(el) == "checkbox" {
		if _, ok := el.(dom.FormControl); !ok {
			return 0, errors.New("B006").WithDetailf("<%s>", tagOf(el))
		}
		switch ref.Kind() {
		case reactive.KindBoolean:
			w, ok := ref.(reactive.Writable)
			if !ok {
				return 0, errors.New("B002").WithDetail("checked")
			}
			b.listen(el, attrSlot, "change", func(c dom.FormControl) {
				b.commit(c, w, ref.Kind(), c.Checked())
			})
			mode = ModeTwoWay
		case reactive.KindVoid:
			b.log.Warn("setting checked attribute to void", "tag", tagOf(el))
		default:
			return 0, errors.New("B003").WithDetailf("%s for checked on <input>", ref.Kind())
		}
	}

	if name == "class" && isClassCollection(ref.Value()) {
		b.bindClassRef(el, ref)
		return mode, nil
	}

	current := ref.Value()
	if err := b.writeAttribute(el, name, current, root); err != nil {
		return 0, err
	}
	if !isPrimitive(current) {
		// Structural values are written once.
		return ModeStatic, nil
	}

	h := b.reg.track(el)
	sub := ref.Observe(func(v any) {
		n, ok := b.reg.resolve(h)
		if !ok {
			return
		}
		if err := b.writeAttribute(n.(dom.Element), name, v, root); err != nil {
			b.log.Error("reactive attribute update failed", "attr", name, "error", err)
		}
	})
	b.reg.add(el, attrSlot, func() { ref.Unobserve(sub) })
	return mode, nil
}

// bindControlValue binds value, value:in, value:out or value:selected of
// an input, select or textarea.
func (b *Binder) bindControlValue(el dom.Element, fc dom.FormControl, name string, ref reactive.Ref, root string) (Mode, error) {
	attrSlot := slot{slotAttr, baseName(name)}
	mode := ModeReactive

	if name != "value:in" {
		twoWay, err := b.bindControlOutput(el, fc, name, ref)
		if err != nil {
			return 0, err
		}
		if twoWay {
			mode = ModeTwoWay
		}
	}

	switch name {
	case "value:out":
		// The control keeps its own value until the user edits it.
		return mode, nil
	case "value:selected":
		b.reg.setSelected(el, ref)
		if fc.Value() == inputfmt.String(ref.Value()) {
			fc.SetChecked(true)
		}
	default:
		if err := b.writeAttribute(el, "value", ref.Value(), root); err != nil {
			return 0, err
		}
	}

	h := b.reg.track(el)
	selected := name == "value:selected"
	sub := ref.Observe(func(v any) {
		n, ok := b.reg.resolve(h)
		if !ok {
			return
		}
		target := n.(dom.Element)
		if selected {
			if c, ok := target.(dom.FormControl); ok {
				c.SetChecked(c.Value() == inputfmt.String(v))
			}
			return
		}
		if err := b.writeAttribute(target, "value", v, root); err != nil {
			b.log.Error("reactive value update failed", "tag", tagOf(target), "error", err)
		}
	})
	b.reg.add(el, attrSlot, func() { ref.Unobserve(sub) })
	return mode, nil
}

// writeAttribute writes a plain value. It is the single write path for
// static values and for every reactive update.
func (b *Binder) writeAttribute(el dom.Element, name string, val any, root string) error {
	if base, ok := strings.CutSuffix(name, ":route"); ok {
		name = base
		root = ""
	}
	name = strings.TrimSuffix(name, ":in")
	tag := tagOf(el)

	if name == "checked" && isInput(el) {
		if fc, ok := el.(dom.FormControl); ok {
			fc.SetChecked(truthy(val))
		}
	}

	if base, ok := strings.CutSuffix(name, ":frontend"); ok {
		if _, ok := toHandler(val); !ok {
			return errors.New("B005").WithDetail(name)
		}
		name = base
	}

	switch {
	case strings.HasSuffix(name, ":out") || strings.HasSuffix(name, ":selected"):
		return errors.New("B002").WithDetailf("%s on <%s> must be a reference", name, tag)

	case name == "value":
		b.writeValue(el, val, root)

	case name == "stylesheet":
		link := b.doc.CreateElement("link")
		link.SetAttribute("rel", "stylesheet")
		link.SetAttribute("href", b.formatAttribute(val, root)+"?scope")
		el.Append(link)

	case name == "open" && tag == "dialog":
		setBoolAttribute(el, "open", truthy(val))

	case name == "display":
		b.writeStyleProperty(el, "display", val)

	case name == "class" && isClassCollection(val):
		b.bindClass(el, val)

	case name == "style" && val != nil && !isPrimitive(val):
		b.applyStyleValue(el, val)

	case val == nil:
		setBoolAttribute(el, name, true)

	case isBool(val):
		setBoolAttribute(el, name, val.(bool))

	case strings.HasPrefix(name, "on") && attrs.IsEventHandler(name):
		return b.writeEventHandler(el, name, val)

	case name == "action" && tag == "form":
		if fn, ok := toHandler(val); ok {
			b.replaceListener(el, "submit", func(ev *dom.Event) {
				ev.PreventDefault()
				fn(ev)
			})
			return nil
		}
		writeIfChanged(el, name, b.formatAttribute(val, root))

	default:
		writeIfChanged(el, name, b.formatAttribute(val, root))
	}
	return nil
}

// writeValue writes the value of a control, or the value attribute of any
// other element.
func (b *Binder) writeValue(el dom.Element, val any, root string) {
	fc, isControl := controlOf(el)
	switch {
	case tagOf(el) == "select" && isControl:
		if text := inputfmt.String(val); fc.Value() != text {
			fc.SetValue(text)
		}
	case tagOf(el) == "select":
		text := inputfmt.String(val)
		matched := false
		for c := el.FirstChild(); !dom.IsNil(c); c = c.NextSibling() {
			opt, ok := c.(dom.Element)
			if !ok || tagOf(opt) != "option" {
				continue
			}
			on := !matched && optionValue(opt) == text
			matched = matched || on
			setBoolAttribute(opt, "selected", on)
		}
	case isControl:
		step, _ := el.GetAttribute("step")
		text, ok := inputfmt.Format(fc.Type(), val, step, b.cfg.location)
		if !ok {
			return
		}
		if fc.Value() != text {
			fc.SetValue(text)
		}
	default:
		writeIfChanged(el, "value", b.formatAttribute(val, root))
	}

	if sel := b.reg.selected(el); sel != nil && isControl {
		if inputfmt.String(sel.Value()) == inputfmt.String(val) {
			fc.SetChecked(true)
		}
	}
}

func optionValue(opt dom.Element) string {
	if v, ok := opt.GetAttribute("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.TextContent())
}

// writeEventHandler installs on* handlers. A string is written as the
// attribute; functions become listeners replacing the listeners a previous
// write installed for the same event.
func (b *Binder) writeEventHandler(el dom.Element, name string, val any) error {
	event := strings.ToLower(strings.TrimPrefix(name, "on"))

	if s, ok := val.(string); ok {
		writeIfChanged(el, name, s)
		return nil
	}

	var handlers []dom.EventHandler
	if list, ok := val.([]any); ok {
		for _, item := range list {
			fn, ok := toHandler(item)
			if !ok {
				return errors.New("B004").WithDetailf("%s: %T", name, item)
			}
			handlers = append(handlers, fn)
		}
	} else if fn, ok := toHandler(val); ok {
		handlers = append(handlers, fn)
	} else {
		return errors.New("B004").WithDetailf("%s: %T", name, val)
	}

	b.reg.release(el, slot{slotListener, event})
	for _, fn := range handlers {
		b.reg.listen(el, slot{slotListener, event}, event, fn)
	}
	return nil
}

func (b *Binder) replaceListener(el dom.Element, event string, fn dom.EventHandler) {
	b.reg.release(el, slot{slotListener, event})
	b.reg.listen(el, slot{slotListener, event}, event, fn)
}

// formatAttribute converts a value to attribute text, resolving relative
// paths against root.
func (b *Binder) formatAttribute(val any, root string) string {
	if s, ok := val.(string); ok && root != "" && (strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../")) {
		return resolvePath(root, s)
	}
	return inputfmt.String(val)
}

func resolvePath(root, rel string) string {
	base, err := url.Parse(root)
	if err != nil {
		return rel
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return rel
	}
	return base.ResolveReference(ref).String()
}

func writeIfChanged(el dom.Element, name, value string) {
	if cur, ok := el.GetAttribute(name); !ok || cur != value {
		el.SetAttribute(name, value)
	}
}

// setBoolAttribute makes the attribute present with an empty value or
// absent. It writes only when the state changes.
func setBoolAttribute(el dom.Element, name string, present bool) {
	if present {
		if cur, ok := el.GetAttribute(name); !ok || cur != "" {
			el.SetAttribute(name, "")
		}
		return
	}
	if el.HasAttribute(name) {
		el.RemoveAttribute(name)
	}
}

func toHandler(v any) (dom.EventHandler, bool) {
	switch fn := v.(type) {
	case dom.EventHandler:
		return fn, fn != nil
	case func(*dom.Event):
		return fn, fn != nil
	case func():
		if fn == nil {
			return nil, false
		}
		return func(*dom.Event) { fn() }, true
	}
	return nil, false
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// isBoolean reports whether v is a bool or a boolean reference.
func isBoolean(v any) bool {
	if r, ok := v.(reactive.Ref); ok {
		return r.Kind() == reactive.KindBoolean || isBool(r.Value())
	}
	return isBool(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && f == f
	}
	return true
}

// isPrimitive reports whether v is observed for rewrites when bound as an
// attribute.
func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool, time.Time:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return true
	}
	return false
}
