package bind

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/inputfmt"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// SetStyle binds the inline style of el.
//
// A string (or string reference) is written as the style attribute. A map
// of property names to values sets each property through
// SetStyleProperty; map values may be references. A reference or reactive
// map holding properties is followed and every property is re-applied on
// change. nil removes the style attribute. Property bindings made
// earlier are released.
func (b *Binder) SetStyle(el dom.Element, value any) error {
	if el == nil {
		return nil
	}
	b.reg.releaseKind(el, slotStyle)

	switch v := value.(type) {
	case nil:
		if el.HasAttribute("style") {
			el.RemoveAttribute("style")
		}
		return nil
	case string:
		_, err := b.SetAttribute(el, "style", v)
		return err
	case map[string]any:
		b.setStyleMap(el, v)
		return nil
	case map[string]string:
		for _, prop := range sortedKeys(v) {
			b.SetStyleProperty(el, prop, v[prop])
		}
		return nil
	case *reactive.Map[string, any]:
		b.followStyle(el, v, func() map[string]any {
			out := make(map[string]any, v.Len())
			for _, k := range v.Keys() {
				out[k], _ = v.Get(k)
			}
			return out
		})
		return nil
	case *reactive.Map[string, string]:
		b.followStyle(el, v, func() map[string]any {
			out := make(map[string]any, v.Len())
			for _, k := range v.Keys() {
				out[k], _ = v.Get(k)
			}
			return out
		})
		return nil
	case reactive.LazyRef:
		h := b.reg.track(el)
		v.OnLoad(func(ref reactive.Ref) { b.resumeStyle(h, ref) })
		return nil
	case reactive.Deferred:
		h := b.reg.track(el)
		v.Then(func(resolved any) { b.resumeStyle(h, resolved) })
		return nil
	case reactive.Ref:
		if _, isText := v.Value().(string); isText {
			_, err := b.SetAttribute(el, "style", v)
			return err
		}
		b.applyStyleValue(el, v.Value())
		h := b.reg.track(el)
		sub := v.Observe(func(next any) {
			if n, ok := b.reg.resolve(h); ok {
				b.applyStyleValue(n.(dom.Element), next)
			}
		})
		b.reg.add(el, slot{slotStyle, ""}, func() { v.Unobserve(sub) })
		return nil
	default:
		_, err := b.SetAttribute(el, "style", inputfmt.String(v))
		return err
	}
}

func (b *Binder) resumeStyle(h handle, value any) {
	n, ok := b.reg.resolve(h)
	if !ok {
		return
	}
	if err := b.SetStyle(n.(dom.Element), value); err != nil {
		b.log.Error("deferred style binding failed", "error", err)
	}
}

func (b *Binder) setStyleMap(el dom.Element, props map[string]any) {
	for _, prop := range sortedKeys(props) {
		b.SetStyleProperty(el, prop, props[prop])
	}
}

func (b *Binder) applyStyleValue(el dom.Element, v any) {
	switch t := v.(type) {
	case map[string]any:
		for _, prop := range sortedKeys(t) {
			b.writeStyleProperty(el, prop, reactive.ValueOf(t[prop]))
		}
	case map[string]string:
		for _, prop := range sortedKeys(t) {
			b.writeStyleProperty(el, prop, t[prop])
		}
	case nil:
	default:
		writeIfChanged(el, "style", inputfmt.String(v))
	}
}

// followStyle applies a reactive property map and re-applies it on every
// change. Properties dropped from the map are removed.
func (b *Binder) followStyle(el dom.Element, coll reactive.Collection, props func() map[string]any) {
	applied := make(map[string]bool)
	apply := func(el dom.Element) {
		current := props()
		for prop := range applied {
			if _, ok := current[prop]; !ok {
				b.writeStyleProperty(el, prop, nil)
				delete(applied, prop)
			}
		}
		for _, prop := range sortedKeys(current) {
			b.writeStyleProperty(el, prop, reactive.ValueOf(current[prop]))
			applied[prop] = true
		}
	}
	apply(el)

	h := b.reg.track(el)
	sub := coll.ObserveChanges(func(reactive.Change) {
		if n, ok := b.reg.resolve(h); ok {
			apply(n.(dom.Element))
		}
	})
	b.reg.add(el, slot{slotStyle, ""}, func() { coll.Unobserve(sub) })
}

// SetStyleProperty binds one style property. prop may be camelCase or
// kebab-case. A reference is followed until the property is reassigned.
func (b *Binder) SetStyleProperty(el dom.Element, prop string, value any) {
	if el == nil || prop == "" {
		return
	}
	prop = KebabCase(prop)
	propSlot := slot{slotStyle, prop}
	b.reg.release(el, propSlot)

	switch v := value.(type) {
	case reactive.LazyRef:
		h := b.reg.track(el)
		v.OnLoad(func(ref reactive.Ref) {
			if n, ok := b.reg.resolve(h); ok {
				b.SetStyleProperty(n.(dom.Element), prop, ref)
			}
		})
	case reactive.Deferred:
		h := b.reg.track(el)
		v.Then(func(resolved any) {
			if n, ok := b.reg.resolve(h); ok {
				b.SetStyleProperty(n.(dom.Element), prop, resolved)
			}
		})
	case reactive.Ref:
		b.writeStyleProperty(el, prop, v.Value())
		h := b.reg.track(el)
		sub := v.Observe(func(next any) {
			if n, ok := b.reg.resolve(h); ok {
				b.writeStyleProperty(n.(dom.Element), prop, next)
			}
		})
		b.reg.add(el, propSlot, func() { v.Unobserve(sub) })
	default:
		b.writeStyleProperty(el, prop, value)
	}
}

// writeStyleProperty writes a plain value. nil removes the property; a
// boolean display becomes revert or none; numbers are pixels.
func (b *Binder) writeStyleProperty(el dom.Element, prop string, val any) {
	prop = KebabCase(prop)
	st := el.Style()

	if prop == "display" {
		if on, ok := val.(bool); ok {
			if on {
				val = "revert"
			} else {
				val = "none"
			}
		}
	}

	if val == nil {
		if st.GetPropertyValue(prop) != "" {
			st.RemoveProperty(prop)
		}
		return
	}

	text := CSSValue(val)
	if st.GetPropertyValue(prop) != text {
		st.SetProperty(prop, text)
	}
}

// CSSValue converts a value to property text: numbers get a px unit and
// strings are escaped with EscapeCSSValue.
func CSSValue(v any) string {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return inputfmt.String(v) + "px"
	}
	return EscapeCSSValue(inputfmt.String(v))
}

// EscapeCSSValue keeps a value from closing its declaration: everything
// from the first ';' is turned into a comment.
func EscapeCSSValue(s string) string {
	i := strings.IndexByte(s, ';')
	if i < 0 {
		return s
	}
	return s[:i] + "/*" + strings.ReplaceAll(s[i:], "*/", "* /") + "*/"
}

// KebabCase converts a camelCase property name ("backgroundColor") to its
// CSS form ("background-color"). Custom properties are left alone.
func KebabCase(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			sb.WriteByte('-')
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CamelCase is the inverse of KebabCase.
func CamelCase(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	var sb strings.Builder
	upper := false
	for _, r := range name {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
