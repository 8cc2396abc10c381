package bind

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/dom/htmldom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

func TestIntegerInputRejectsMalformedText(t *testing.T) {
	env := newTestEnv(t)
	input := env.input("text")
	n := reactive.Integer(5)

	env.mustSet(t, input, "value", n)
	if input.Value() != "5" {
		t.Fatalf("initial value = %q", input.Value())
	}

	typeInto(input, "12x")
	if input.ValidationMessage() != "Invalid integer" {
		t.Errorf("validity = %q, want %q", input.ValidationMessage(), "Invalid integer")
	}
	if n.Get() != 5 {
		t.Errorf("reference changed to %d", n.Get())
	}
	if env.obs.validation[reactive.KindInteger] != 1 {
		t.Errorf("validation failures observed = %v", env.obs.validation)
	}

	typeInto(input, "-12")
	if n.Get() != -12 || input.ValidationMessage() != "" {
		t.Errorf("after valid input: ref=%d validity=%q", n.Get(), input.ValidationMessage())
	}
}

func TestDecimalInput(t *testing.T) {
	env := newTestEnv(t)
	input := env.input("number")
	f := reactive.Decimal(1)
	env.mustSet(t, input, "value", f)

	tests := []struct {
		text     string
		want     float64
		validity string
	}{
		{"3.5", 3.5, ""},
		{"abc", 3.5, "Invalid number"},
		{" 2 ", 2, ""},
		{"", 0, ""},
		{"1e3", 1000, ""},
	}
	for _, tt := range tests {
		typeInto(input, tt.text)
		if f.Get() != tt.want || input.ValidationMessage() != tt.validity {
			t.Errorf("typed %q: ref=%v validity=%q; want %v %q",
				tt.text, f.Get(), input.ValidationMessage(), tt.want, tt.validity)
		}
	}
}

func TestValidationPolicyIsPerBinder(t *testing.T) {
	strict := newTestEnv(t, WithValidation(ValidationPolicy{
		Integer: Rule{Message: "whole numbers only", Enabled: true},
	}))
	in := strict.input("text")
	n := reactive.Integer(1)
	strict.mustSet(t, in, "value", n)
	typeInto(in, "1.5")
	if in.ValidationMessage() != "whole numbers only" {
		t.Errorf("custom message = %q", in.ValidationMessage())
	}

	// Number checks are off in this policy: malformed text commits NaN.
	num := strict.input("text")
	f := reactive.Decimal(1)
	strict.mustSet(t, num, "value", f)
	typeInto(num, "abc")
	if !math.IsNaN(f.Get()) || num.ValidationMessage() != "" {
		t.Errorf("disabled number check: ref=%v validity=%q", f.Get(), num.ValidationMessage())
	}

	// Another binder keeps the defaults.
	other := newTestEnv(t)
	in2 := other.input("text")
	other.mustSet(t, in2, "value", reactive.Integer(1))
	typeInto(in2, "1.5")
	if in2.ValidationMessage() != "Invalid integer" {
		t.Errorf("default binder message = %q", in2.ValidationMessage())
	}
}

func TestWriteErrorBecomesValidity(t *testing.T) {
	env := newTestEnv(t)
	input := env.input("text")
	n := reactive.Integer(1).WithValidator(func(v int64) error {
		if v < 0 {
			return errors.New("must not be negative")
		}
		return nil
	})
	env.mustSet(t, input, "value", n)

	typeInto(input, "-3")
	if input.ValidationMessage() != "must not be negative" || n.Get() != 1 {
		t.Errorf("validity=%q ref=%d", input.ValidationMessage(), n.Get())
	}
}

func TestTextTwoWay(t *testing.T) {
	env := newTestEnv(t)
	input := env.input("")
	s := reactive.Text("start")
	env.mustSet(t, input, "value", s)

	typeInto(input, "typed")
	if s.Get() != "typed" {
		t.Errorf("ref = %q", s.Get())
	}
	s.Set("from model")
	if input.Value() != "from model" {
		t.Errorf("control = %q", input.Value())
	}
}

func TestValueDirections(t *testing.T) {
	env := newTestEnv(t)

	in := env.input("text")
	inRef := reactive.Text("a")
	env.mustSet(t, in, "value:in", inRef)
	typeInto(in, "user")
	if inRef.Get() != "a" {
		t.Error("value:in must not commit user input")
	}
	inRef.Set("b")
	if in.Value() != "b" {
		t.Errorf("value:in control = %q", in.Value())
	}

	out := env.input("text")
	out.SetAttribute("value", "default")
	outRef := reactive.Text("a")
	env.mustSet(t, out, "value:out", outRef)
	if out.Value() != "default" {
		t.Errorf("value:out initial = %q, the control keeps its own value", out.Value())
	}
	outRef.Set("b")
	if out.Value() != "default" {
		t.Error("value:out must not follow the reference")
	}
	typeInto(out, "user")
	if outRef.Get() != "user" {
		t.Errorf("value:out ref = %q", outRef.Get())
	}
}

func TestReadOnlyReferenceDegradesToOneWay(t *testing.T) {
	env := newTestEnv(t)
	input := env.input("text")
	src := reactive.Text("a")

	env.mustSet(t, input, "value", readOnly{src})
	src.Set("b")
	if input.Value() != "b" {
		t.Errorf("control = %q", input.Value())
	}
	if input.ListenerCount("input") != 0 {
		t.Error("no input listener for a read-only reference")
	}
}

func TestUnsupportedKinds(t *testing.T) {
	env := newTestEnv(t)

	opaque := env.input("text")
	if _, err := env.b.SetAttribute(opaque, "value", reactive.NewSignal("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("opaque reference: %v, want ErrUnsupportedType", err)
	}

	void := env.input("text")
	if _, err := env.b.SetAttribute(void, "value", reactive.Void()); err != nil {
		t.Errorf("void reference: %v", err)
	}
	if !strings.Contains(env.logs.String(), "void reference") {
		t.Error("void binding should warn")
	}
}

func TestSelectBinding(t *testing.T) {
	env := newTestEnv(t)
	sel := env.doc.CreateElement("select").(*htmldom.Control)
	for _, v := range []string{"a", "b", "c"} {
		o := env.doc.CreateElement("option")
		o.SetAttribute("value", v)
		sel.Append(o)
	}
	env.doc.Body().Append(sel)

	choice := reactive.Text("b")
	env.mustSet(t, sel, "value", choice)
	if sel.Value() != "b" {
		t.Fatalf("select value = %q", sel.Value())
	}

	sel.SetValue("c")
	sel.DispatchEvent(dom.NewEvent("input"))
	if choice.Get() != "b" {
		t.Error("select commits on change, not input")
	}
	sel.DispatchEvent(dom.NewEvent("change"))
	if choice.Get() != "c" {
		t.Errorf("ref = %q", choice.Get())
	}

	for _, want := range []string{"a", "b", "c"} {
		choice.Set(want)
		if sel.Value() != want {
			t.Errorf("after ref = %q select value = %q", want, sel.Value())
		}
	}
}

func TestCheckboxChecked(t *testing.T) {
	env := newTestEnv(t)
	box := env.input("checkbox")
	on := reactive.Bool(false)

	env.mustSet(t, box, "checked", on)
	if box.Checked() {
		t.Fatal("checkbox should start unchecked")
	}
	on.Set(true)
	if !box.Checked() {
		t.Error("checkbox should follow the reference")
	}

	box.SetChecked(false)
	box.DispatchEvent(dom.NewEvent("change"))
	if on.Get() {
		t.Error("unchecking should commit false")
	}
	if env.obs.bound[ModeTwoWay] != 1 {
		t.Errorf("modes = %v", env.obs.bound)
	}

	if _, err := env.b.SetAttribute(box, "checked", reactive.Text("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("text reference for checked: %v", err)
	}
}

func TestCheckboxValueBooleanWarns(t *testing.T) {
	env := newTestEnv(t)
	box := env.input("checkbox")
	env.mustSet(t, box, "value", true)
	if !strings.Contains(env.logs.String(), "has no effect on its state") {
		t.Errorf("expected a warning, logs: %s", env.logs.String())
	}
}

func radioGroup(env *testEnv, values ...string) []*htmldom.Control {
	form := env.element("form")
	var radios []*htmldom.Control
	for range values {
		r := env.doc.CreateElement("input").(*htmldom.Control)
		r.SetAttribute("type", "radio")
		r.SetAttribute("name", "group")
		form.Append(r)
		radios = append(radios, r)
	}
	return radios
}

func TestRadioSelectedBinding(t *testing.T) {
	env := newTestEnv(t)
	values := []string{"a", "b", "c"}
	radios := radioGroup(env, values...)
	choice := reactive.Text("b")

	for i, r := range radios {
		env.mustSet(t, r, "value", values[i])
		env.mustSet(t, r, "value:selected", choice)
	}

	for i, r := range radios {
		if r.Checked() != (values[i] == "b") {
			t.Errorf("radio %s checked = %v", values[i], r.Checked())
		}
	}

	choice.Set("a")
	if !radios[0].Checked() || radios[1].Checked() {
		t.Error("selection should follow the reference")
	}

	radios[2].SetChecked(true)
	radios[2].DispatchEvent(dom.NewEvent("change"))
	if choice.Get() != "c" {
		t.Errorf("checking a radio commits its value, ref = %q", choice.Get())
	}
	if !radios[2].Checked() || radios[0].Checked() {
		t.Error("checked state after user selection")
	}
}

func TestRadioValueWrittenAfterSelectedBinding(t *testing.T) {
	env := newTestEnv(t)
	values := []string{"a", "b"}
	radios := radioGroup(env, values...)
	choice := reactive.Text("b")

	for i, r := range radios {
		env.mustSet(t, r, "value:selected", choice)
		env.mustSet(t, r, "value", values[i])
	}

	if radios[0].Checked() || !radios[1].Checked() {
		t.Errorf("initial checked a=%v b=%v", radios[0].Checked(), radios[1].Checked())
	}
	if got := strings.Join(env.b.Bindings(radios[0]), ","); got != "attr:value:selected" {
		t.Errorf("Bindings = %s", got)
	}

	choice.Set("a")
	if !radios[0].Checked() || radios[1].Checked() {
		t.Error("selection should follow the reference")
	}

	radios[1].SetChecked(true)
	radios[1].DispatchEvent(dom.NewEvent("change"))
	if choice.Get() != "b" {
		t.Errorf("ref = %q, want b", choice.Get())
	}
}

func TestNumberInputRecommitsOnRangeChange(t *testing.T) {
	env := newTestEnv(t)
	input := env.input("number")
	f := reactive.Decimal(1)
	env.mustSet(t, input, "value", f)

	input.SetValue("7")
	if f.Get() != 1 {
		t.Fatal("no commit without an event")
	}
	input.SetAttribute("max", "10")
	if f.Get() != 7 {
		t.Errorf("changing max should re-commit, ref = %v", f.Get())
	}
	input.SetAttribute("placeholder", "n")
	input.SetValue("8")
	input.SetAttribute("placeholder", "m")
	if f.Get() != 7 {
		t.Error("unrelated attributes must not re-commit")
	}
}

func TestDateControls(t *testing.T) {
	env := newTestEnv(t, WithLocation(time.FixedZone("CET", 3600)))

	date := env.input("date")
	env.mustSet(t, date, "value", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	if date.Value() != "2024-03-05" {
		t.Errorf("date control = %q, want 2024-03-05", date.Value())
	}

	week := env.input("week")
	env.mustSet(t, week, "value", reactive.Time(time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)))
	if week.Value() != "2024-W10" {
		t.Errorf("week control = %q", week.Value())
	}

	local := env.input("datetime-local")
	when := reactive.Time(time.Date(2024, 3, 5, 13, 7, 0, 0, time.UTC))
	env.mustSet(t, local, "value", when)
	if local.Value() != "2024-03-05T14:07" {
		t.Errorf("datetime-local control = %q", local.Value())
	}
	typeInto(local, "2024-03-05T09:30")
	if want := time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC); !when.Get().Equal(want) {
		t.Errorf("datetime-local commit = %s, want %s", when.Get(), want)
	}

	empty := env.input("datetime-local")
	env.mustSet(t, empty, "value", 0)
	if empty.Value() != "" {
		t.Errorf("non-positive timestamp written: %q", empty.Value())
	}

	stamp := env.input("date")
	millis := reactive.Decimal(0)
	env.mustSet(t, stamp, "value", millis)
	typeInto(stamp, "2024-03-05")
	if want := float64(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).UnixMilli()); millis.Get() != want {
		t.Errorf("decimal date commit = %v, want %v", millis.Get(), want)
	}
}

func TestTextareaReferenceChild(t *testing.T) {
	env := newTestEnv(t)
	area := env.element("textarea").(*htmldom.Control)
	body := reactive.Text("hello")

	if err := env.b.Append(area, body); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if area.Value() != "hello" || area.FirstChild() != nil {
		t.Errorf("textarea value=%q children=%d", area.Value(), len(area.ChildNodes()))
	}
	typeInto(area, "edited")
	if body.Get() != "edited" {
		t.Errorf("ref = %q", body.Get())
	}
}
