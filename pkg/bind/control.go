package bind

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/inputfmt"
	"github.com/vango-dev/vbind/pkg/reactive"
)

var integerPattern = regexp.MustCompile(`^-?\d+$`)

// rangeAttributes re-run the commit of number and range inputs when
// they change.
var rangeAttributes = []string{"max", "min", "step"}

// controlHandler reads a control and commits its value to a reference.
type controlHandler func(c dom.FormControl)

// bindControlOutput installs the control to reference direction for a
// value form. It reports whether a listener was installed. A read-only
// reference on a plain value binding degrades to one-way.
func (b *Binder) bindControlOutput(el dom.Element, fc dom.FormControl, name string, ref reactive.Ref) (bool, error) {
	w, ok := ref.(reactive.Writable)
	if !ok {
		if name == "value" {
			return false, nil
		}
		return false, errors.New("B002").WithDetailf("%s on <%s> needs a writable reference", name, tagOf(el))
	}

	var handle controlHandler
	switch ref.Kind() {
	case reactive.KindText:
		handle = b.bindTextControl(w)
	case reactive.KindDecimal:
		handle = b.bindDecimalControl(w)
	case reactive.KindInteger:
		handle = b.bindIntegerControl(w)
	case reactive.KindBoolean:
		handle = b.bindBooleanControl(w)
	case reactive.KindTime:
		handle = b.bindTimeControl(w)
	case reactive.KindVoid:
		b.log.Warn("two-way binding to a void reference", "tag", tagOf(el), "attr", name)
		return false, nil
	default:
		return false, errors.New("B003").WithDetailf("%s reference for %s on <%s>", ref.Kind(), name, tagOf(el))
	}

	event := "input"
	if tagOf(el) == "select" || name == "value:selected" {
		event = "change"
	}
	attrSlot := slot{slotAttr, baseName(name)}

	if name == "value:selected" {
		inner := handle
		handle = func(c dom.FormControl) {
			if c.Checked() {
				inner(c)
			}
		}
	}

	b.listen(el, attrSlot, event, handle)

	switch fc.Type() {
	case "number", "range":
		h := b.reg.track(el)
		b.reg.observeAttributes(el, attrSlot, rangeAttributes, func(string) {
			if n, ok := b.reg.resolve(h); ok {
				if c, ok := n.(dom.FormControl); ok {
					handle(c)
				}
			}
		})
	}
	return true, nil
}

// listen registers a control handler for event. The handler receives the
// live control; nothing runs once the node is gone.
func (b *Binder) listen(el dom.Element, s slot, event string, fn controlHandler) {
	h := b.reg.track(el)
	b.reg.listen(el, s, event, func(*dom.Event) {
		n, ok := b.reg.resolve(h)
		if !ok {
			return
		}
		if c, ok := n.(dom.FormControl); ok {
			fn(c)
		}
	})
}

func (b *Binder) bindTextControl(w reactive.Writable) controlHandler {
	return func(c dom.FormControl) {
		b.commit(c, w, reactive.KindText, c.Value())
	}
}

// bindDecimalControl commits numbers; blank text commits 0. Date-like
// controls commit their instant as Unix milliseconds, or NaN when blank.
func (b *Binder) bindDecimalControl(w reactive.Writable) controlHandler {
	return func(c dom.FormControl) {
		text := c.Value()
		if inputfmt.IsDateControl(c.Type()) {
			if strings.TrimSpace(text) == "" {
				b.commit(c, w, reactive.KindDecimal, math.NaN())
				return
			}
			t, err := inputfmt.ParseControl(c.Type(), text, b.cfg.location)
			if err != nil {
				b.reject(c, reactive.KindDecimal, err.Error())
				return
			}
			b.commit(c, w, reactive.KindDecimal, float64(t.UnixMilli()))
			return
		}

		f, ok := parseNumber(text)
		if !ok && b.cfg.validation.Number.Enabled {
			b.reject(c, reactive.KindDecimal, b.cfg.validation.Number.Message)
			return
		}
		b.commit(c, w, reactive.KindDecimal, f)
	}
}

func (b *Binder) bindIntegerControl(w reactive.Writable) controlHandler {
	return func(c dom.FormControl) {
		text := strings.TrimSpace(c.Value())
		if !integerPattern.MatchString(text) && b.cfg.validation.Integer.Enabled {
			b.reject(c, reactive.KindInteger, b.cfg.validation.Integer.Message)
			return
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			b.reject(c, reactive.KindInteger, conversionMessage(err))
			return
		}
		b.commit(c, w, reactive.KindInteger, n)
	}
}

// bindBooleanControl commits the checkedness of checkboxes and radios and
// the presence of text for other controls.
func (b *Binder) bindBooleanControl(w reactive.Writable) controlHandler {
	return func(c dom.FormControl) {
		switch c.Type() {
		case "checkbox", "radio":
			b.commit(c, w, reactive.KindBoolean, c.Checked())
		default:
			b.commit(c, w, reactive.KindBoolean, c.Value() != "")
		}
	}
}

// bindTimeControl commits the instant of a date-like control. A cleared
// control commits the zero time.
func (b *Binder) bindTimeControl(w reactive.Writable) controlHandler {
	return func(c dom.FormControl) {
		text := c.Value()
		if strings.TrimSpace(text) == "" {
			b.commit(c, w, reactive.KindTime, time.Time{})
			return
		}
		t, err := inputfmt.ParseControl(c.Type(), text, b.cfg.location)
		if err != nil {
			b.reject(c, reactive.KindTime, err.Error())
			return
		}
		b.commit(c, w, reactive.KindTime, t)
	}
}

// commit writes v to the reference and clears the control's custom
// validity. A write error becomes the validity message instead.
func (b *Binder) commit(c dom.FormControl, w reactive.Writable, kind reactive.Kind, v any) {
	if err := w.SetValue(v); err != nil {
		b.reject(c, kind, err.Error())
		return
	}
	c.SetCustomValidity("")
	c.ReportValidity()
}

func (b *Binder) reject(c dom.FormControl, kind reactive.Kind, msg string) {
	c.SetCustomValidity(msg)
	c.ReportValidity()
	b.cfg.observer.ValidationFailed(kind)
	b.log.Debug("input rejected", "tag", tagOf(c), "kind", kind.String(), "message", msg)
}

// parseNumber converts text the way a numeric coercion does: surrounding
// space is ignored and blank text is 0.
func parseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, true
	}
	switch text {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return math.NaN(), false
	}
	return f, true
}

func conversionMessage(err error) string {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err.Error()
	}
	return err.Error()
}
