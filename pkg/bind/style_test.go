package bind

import (
	"testing"

	"github.com/vango-dev/vbind/pkg/reactive"
)

func TestClassMap(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	active := reactive.Bool(true)

	env.mustSet(t, div, "class", map[string]any{"active": active, "disabled": false})
	cl := div.ClassList()
	if !cl.Contains("active") || cl.Contains("disabled") {
		t.Fatalf("class = %q", attr(div, "class"))
	}

	active.Set(false)
	if cl.Contains("active") {
		t.Error("flipping the reference should remove the class")
	}
	active.Set(true)
	if !cl.Contains("active") {
		t.Error("flipping back should add the class")
	}

	env.mustSet(t, div, "class", map[string]bool{"active": false})
	if active.Observers() != 0 {
		t.Error("reassigning class should release per-key subscriptions")
	}
	if cl.Contains("active") {
		t.Error("static map should remove the class")
	}
}

func TestClassListReplacesPreviousList(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	div.ClassList().Add("external")

	env.mustSet(t, div, "class", []string{"a", "b"})
	env.mustSet(t, div, "class", []any{"b", "c", nil, false})

	cl := div.ClassList()
	for _, want := range []string{"external", "b", "c"} {
		if !cl.Contains(want) {
			t.Errorf("missing class %q in %q", want, attr(div, "class"))
		}
	}
	if cl.Contains("a") {
		t.Errorf("class a should be removed: %q", attr(div, "class"))
	}
}

func TestClassReference(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	list := reactive.NewSignal([]string{"x", "y"})

	env.mustSet(t, div, "class", list)
	if attr(div, "class") != "x y" && attr(div, "class") != "y x" {
		t.Fatalf("class = %q", attr(div, "class"))
	}
	list.Set([]string{"y", "z"})
	cl := div.ClassList()
	if cl.Contains("x") || !cl.Contains("y") || !cl.Contains("z") {
		t.Errorf("class = %q", attr(div, "class"))
	}

	flags := reactive.NewSignal(map[string]bool{"on": true})
	env.mustSet(t, div, "class", flags)
	if list.Observers() != 0 {
		t.Error("previous class reference still observed")
	}
	if !cl.Contains("on") || cl.Contains("z") {
		t.Errorf("class = %q", attr(div, "class"))
	}
	flags.Set(map[string]bool{"on": false})
	if cl.Contains("on") {
		t.Error("map reference should toggle membership")
	}
}

func TestReactiveClassCollections(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	set := reactive.NewSet("a")

	env.mustSet(t, div, "class", set)
	set.Add("b")
	set.Delete("a")
	cl := div.ClassList()
	if cl.Contains("a") || !cl.Contains("b") {
		t.Errorf("set class = %q", attr(div, "class"))
	}

	flags := reactive.NewMap[string, bool]()
	flags.Set("open", true)
	span := env.element("span")
	env.mustSet(t, span, "class", flags)
	if !span.ClassList().Contains("open") {
		t.Fatal("map class not applied")
	}
	flags.Set("open", false)
	if span.ClassList().Contains("open") {
		t.Error("map value false should remove the class")
	}
	flags.Set("hot", true)
	flags.Delete("hot")
	if span.ClassList().Contains("hot") {
		t.Error("deleted key should remove the class")
	}
}

func TestStyleProperty(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	st := div.Style()

	tests := []struct {
		prop  string
		value any
		name  string
		want  string
	}{
		{"backgroundColor", "red", "background-color", "red"},
		{"margin-top", 4, "margin-top", "4px"},
		{"width", 1.5, "width", "1.5px"},
		{"display", true, "display", "revert"},
		{"display", false, "display", "none"},
		{"color", "blue; background: url(x)", "color", "blue/*; background: url(x)*/"},
		{"color", nil, "color", ""},
	}
	for _, tt := range tests {
		env.b.SetStyleProperty(div, tt.prop, tt.value)
		if got := st.GetPropertyValue(tt.name); got != tt.want {
			t.Errorf("SetStyleProperty(%q, %v): %s = %q, want %q", tt.prop, tt.value, tt.name, got, tt.want)
		}
	}
}

func TestReactiveStyleProperty(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	color := reactive.Text("red")

	env.b.SetStyleProperty(div, "color", color)
	color.Set("green")
	if got := div.Style().GetPropertyValue("color"); got != "green" {
		t.Errorf("color = %q", got)
	}

	n := env.countMutations(func() { env.b.SetStyleProperty(div, "color", "green") })
	if n != 0 {
		t.Errorf("rewriting the same value caused %d mutations", n)
	}
	if color.Observers() != 0 {
		t.Error("reassigning the property should release the reference")
	}
}

func TestSetStyle(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	size := reactive.Integer(10)

	if err := env.b.SetStyle(div, map[string]any{"fontSize": size, "color": "red"}); err != nil {
		t.Fatal(err)
	}
	st := div.Style()
	if st.GetPropertyValue("font-size") != "10px" || st.GetPropertyValue("color") != "red" {
		t.Fatalf("style = %q", attr(div, "style"))
	}
	size.Set(12)
	if st.GetPropertyValue("font-size") != "12px" {
		t.Errorf("font-size = %q", st.GetPropertyValue("font-size"))
	}

	if err := env.b.SetStyle(div, "color: blue"); err != nil {
		t.Fatal(err)
	}
	if st.GetPropertyValue("color") != "blue" || st.GetPropertyValue("font-size") != "" {
		t.Errorf("string style = %q", attr(div, "style"))
	}
	if size.Observers() != 0 {
		t.Error("a whole style assignment should release property bindings")
	}

	props := reactive.NewMap[string, any]()
	props.Set("color", "red")
	props.Set("paddingLeft", 2)
	span := env.element("span")
	if err := env.b.SetStyle(span, props); err != nil {
		t.Fatal(err)
	}
	props.Delete("color")
	if span.Style().GetPropertyValue("color") != "" || span.Style().GetPropertyValue("padding-left") != "2px" {
		t.Errorf("reactive map style = %q", attr(span, "style"))
	}

	if err := env.b.SetStyle(span, nil); err != nil || span.HasAttribute("style") {
		t.Errorf("nil style: err=%v style=%q", err, attr(span, "style"))
	}
}

func TestCaseConversion(t *testing.T) {
	tests := []struct {
		camel, kebab string
	}{
		{"backgroundColor", "background-color"},
		{"color", "color"},
		{"borderTopLeftRadius", "border-top-left-radius"},
		{"--brandColor", "--brandColor"},
	}
	for _, tt := range tests {
		if got := KebabCase(tt.camel); got != tt.kebab {
			t.Errorf("KebabCase(%q) = %q, want %q", tt.camel, got, tt.kebab)
		}
		if got := CamelCase(tt.kebab); got != tt.camel {
			t.Errorf("CamelCase(%q) = %q, want %q", tt.kebab, got, tt.camel)
		}
	}
}

func TestEscapeCSSValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"red", "red"},
		{"red; x: y", "red/*; x: y*/"},
		{"a;*/b*/", "a/*;* /b* /*/"},
	}
	for _, tt := range tests {
		if got := EscapeCSSValue(tt.in); got != tt.want {
			t.Errorf("EscapeCSSValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
