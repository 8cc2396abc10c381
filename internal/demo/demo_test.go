package demo

import (
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vbind/pkg/bind"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/dom/htmldom"
	"github.com/vango-dev/vbind/pkg/jsx"
)

func build(t *testing.T) (*App, *htmldom.Document) {
	t.Helper()
	doc := htmldom.NewDocument()
	b := bind.New(doc, bind.WithLocation(time.UTC))
	app, err := Build(jsx.New(b))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc.Body().Append(app.Root)
	return app, doc
}

func typeInto(c dom.FormControl, text string) {
	c.SetValue(text)
	c.DispatchEvent(dom.NewEvent("input"))
}

func TestInitialRender(t *testing.T) {
	app, _ := build(t)
	out := htmldom.RenderString(app.Root)

	for _, want := range []string{
		`<main class="compact">`,
		`<h1 style="color: teal;">Hello, Ada</h1>`,
		`class="profile"`,
		`<li>write the notes</li><li>check the engine</li>`,
		`<p>2 left</p>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render does not contain %q\n%s", want, out)
		}
	}

	inputs := map[string]string{
		"name":     "Ada",
		"age":      "36",
		"height":   "1.68",
		"birthday": "1815-12-10",
		"week":     "2024-W10",
	}
	for key, want := range inputs {
		if got := app.Inputs[key].Value(); got != want {
			t.Errorf("%s value = %q, want %q", key, got, want)
		}
	}
	if !app.Radios["free"].Checked() || app.Radios["pro"].Checked() {
		t.Error("the free plan should start selected")
	}
}

func TestTwoWayFields(t *testing.T) {
	app, _ := build(t)

	typeInto(app.Inputs["name"], "Grace")
	if app.Name.Get() != "Grace" {
		t.Errorf("Name = %q", app.Name.Get())
	}
	if got := app.Root.FirstChild().TextContent(); got != "Hello, Grace" {
		t.Errorf("greeting = %q", got)
	}

	typeInto(app.Inputs["age"], "40")
	typeInto(app.Inputs["height"], "1.7")
	if app.Age.Get() != 40 || app.Height.Get() != 1.7 {
		t.Errorf("Age = %d, Height = %v", app.Age.Get(), app.Height.Get())
	}

	typeInto(app.Inputs["birthday"], "1906-12-09")
	if want := time.Date(1906, 12, 9, 0, 0, 0, 0, time.UTC); !app.Birthday.Get().Equal(want) {
		t.Errorf("Birthday = %s", app.Birthday.Get())
	}

	typeInto(app.Inputs["accent"], "crimson")
	if v, _ := app.Root.FirstChild().(dom.Element).GetAttribute("style"); v != "color: crimson;" {
		t.Errorf("greeting style = %q", v)
	}
}

func TestInvalidIntegerKeepsReference(t *testing.T) {
	app, _ := build(t)
	age := app.Inputs["age"]

	typeInto(age, "4.5")
	if app.Age.Get() != 36 {
		t.Errorf("Age changed to %d", app.Age.Get())
	}
	if age.ValidationMessage() != "Invalid integer" {
		t.Errorf("validation message = %q", age.ValidationMessage())
	}

	typeInto(age, "41")
	if age.ValidationMessage() != "" || app.Age.Get() != 41 {
		t.Errorf("valid input should clear the message: %q, %d", age.ValidationMessage(), app.Age.Get())
	}
}

func TestPlanRadios(t *testing.T) {
	app, _ := build(t)

	pro := app.Radios["pro"]
	pro.SetChecked(true)
	pro.DispatchEvent(dom.NewEvent("change"))
	if app.Plan.Get() != "pro" {
		t.Errorf("Plan = %q", app.Plan.Get())
	}
	if app.Radios["free"].Checked() {
		t.Error("radio group should uncheck free")
	}

	app.Plan.Set("team")
	if !app.Radios["team"].Checked() || pro.Checked() {
		t.Error("setting the plan should check the team radio")
	}
}

func TestSubscribedToggle(t *testing.T) {
	app, _ := build(t)
	box := app.Inputs["subscribed"]

	box.SetChecked(true)
	box.DispatchEvent(dom.NewEvent("change"))
	if !app.Subscribed.Get() {
		t.Fatal("Subscribed should follow the checkbox")
	}
	if !app.Form.ClassList().Contains("subscribed") || !app.Form.ClassList().Contains("profile") {
		t.Errorf("form class = %v", app.Form.ClassList())
	}

	app.Subscribed.Set(false)
	if box.Checked() || app.Form.ClassList().Contains("subscribed") {
		t.Error("clearing Subscribed should uncheck and drop the class")
	}
}

func TestTheme(t *testing.T) {
	app, _ := build(t)
	app.Theme.Set("dark", true)
	app.Theme.Set("compact", false)
	if v, _ := app.Root.GetAttribute("class"); v != "dark" {
		t.Errorf("main class = %q", v)
	}
}

func TestTodos(t *testing.T) {
	app, _ := build(t)
	click := func(el dom.Element) { el.DispatchEvent(dom.NewEvent("click")) }

	click(app.AddTodo)
	if app.Todos.Len() != 2 {
		t.Error("an empty draft should not add a todo")
	}

	typeInto(app.Inputs["draft"], "oil the gears")
	click(app.AddTodo)
	if app.Todos.Len() != 3 || app.Draft.Get() != "" || app.Inputs["draft"].Value() != "" {
		t.Errorf("add: len=%d draft=%q", app.Todos.Len(), app.Draft.Get())
	}
	if app.Remaining.Get() != 3 {
		t.Errorf("Remaining = %d", app.Remaining.Get())
	}

	click(app.PopTodo)
	out := htmldom.InnerHTML(app.TodoList)
	if strings.Contains(out, "write the notes") || !strings.Contains(out, "<li>oil the gears</li>") {
		t.Errorf("list = %s", out)
	}
	if app.Remaining.Get() != 2 {
		t.Errorf("Remaining = %d", app.Remaining.Get())
	}
}
