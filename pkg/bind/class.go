package bind

import (
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/inputfmt"
	"github.com/vango-dev/vbind/pkg/reactive"
)

func isClassCollection(v any) bool {
	switch v.(type) {
	case map[string]bool, map[string]any, []string, []any,
		*reactive.Map[string, bool], *reactive.List[string], *reactive.Set[string]:
		return true
	}
	return false
}

// bindClass applies a structured class value.
//
// Maps set membership per key; a map value may be a boolean reference, in
// which case the class follows it. Lists replace the tokens the previous
// list added. Reactive maps, lists and sets are followed until the class
// attribute is reassigned.
func (b *Binder) bindClass(el dom.Element, val any) {
	cls := slot{slotAttr, "class"}

	switch v := val.(type) {
	case map[string]bool:
		for name, on := range v {
			toggleClass(el, name, on)
		}
	case map[string]any:
		for name, item := range v {
			ref, ok := item.(reactive.Ref)
			if !ok {
				toggleClass(el, name, truthy(item))
				continue
			}
			toggleClass(el, name, truthy(ref.Value()))
			h := b.reg.track(el)
			sub := ref.Observe(func(next any) {
				if n, ok := b.reg.resolve(h); ok {
					toggleClass(n.(dom.Element), name, truthy(next))
				}
			})
			b.reg.add(el, cls, func() { ref.Unobserve(sub) })
		}
	case []string, []any:
		b.replaceClasses(el, tokenSet(v))
	case *reactive.Map[string, bool]:
		b.followClasses(el, v, func() map[string]bool {
			want := make(map[string]bool, v.Len())
			for _, k := range v.Keys() {
				on, _ := v.Get(k)
				want[k] = on
			}
			return want
		})
	case *reactive.List[string]:
		b.followClasses(el, v, func() map[string]bool { return tokenSet(v.Items()) })
	case *reactive.Set[string]:
		b.followClasses(el, v, func() map[string]bool { return tokenSet(v.Items()) })
	}
}

// bindClassRef follows a reference holding a class map or list.
func (b *Binder) bindClassRef(el dom.Element, ref reactive.Ref) {
	b.applyClassValue(el, ref.Value())

	h := b.reg.track(el)
	sub := ref.Observe(func(v any) {
		if n, ok := b.reg.resolve(h); ok {
			b.applyClassValue(n.(dom.Element), v)
		}
	})
	b.reg.add(el, slot{slotAttr, "class"}, func() { ref.Unobserve(sub) })
}

func (b *Binder) applyClassValue(el dom.Element, v any) {
	switch t := v.(type) {
	case map[string]bool:
		b.replaceClasses(el, t)
	case map[string]any:
		want := make(map[string]bool, len(t))
		for k, item := range t {
			want[k] = truthy(reactive.ValueOf(item))
		}
		b.replaceClasses(el, want)
	case []string, []any:
		b.replaceClasses(el, tokenSet(t))
	default:
		b.replaceClasses(el, tokenSet(strings.Fields(inputfmt.String(v))))
	}
}

func (b *Binder) followClasses(el dom.Element, coll reactive.Collection, want func() map[string]bool) {
	b.replaceClasses(el, want())

	h := b.reg.track(el)
	sub := coll.ObserveChanges(func(reactive.Change) {
		if n, ok := b.reg.resolve(h); ok {
			b.replaceClasses(n.(dom.Element), want())
		}
	})
	b.reg.add(el, slot{slotAttr, "class"}, func() { coll.Unobserve(sub) })
}

// replaceClasses makes the tokens marked true present and removes the
// tokens marked false and those the previous write added that are gone.
// Classes set by other means are left alone.
func (b *Binder) replaceClasses(el dom.Element, want map[string]bool) {
	next := make(map[string]bool, len(want))
	for name, on := range want {
		if on {
			next[name] = true
		}
	}
	prev := b.reg.swapClasses(el, next)

	cl := el.ClassList()
	for name := range prev {
		if !next[name] && cl.Contains(name) {
			cl.Remove(name)
		}
	}
	for name, on := range want {
		toggleClass(el, name, on)
	}
}

func toggleClass(el dom.Element, name string, on bool) {
	if name == "" {
		return
	}
	cl := el.ClassList()
	if cl.Contains(name) != on {
		cl.Toggle(name, on)
	}
}

func tokenSet(v any) map[string]bool {
	out := make(map[string]bool)
	add := func(s string) {
		for _, tok := range strings.Fields(s) {
			out[tok] = true
		}
	}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, item := range t {
			if item == nil || item == false {
				continue
			}
			add(inputfmt.String(reactive.ValueOf(item)))
		}
	}
	return out
}
