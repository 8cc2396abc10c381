// Package demo builds the profile form and todo list served by
// "vbind serve" and written by "vbind render". Every binding mode appears
// at least once.
package demo

import (
	"time"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/jsx"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// Plans are the radio choices of the plan field.
var Plans = []string{"free", "pro", "team"}

// App holds the state and the notable nodes of the demo.
type App struct {
	Name       *reactive.Signal[string]
	Age        *reactive.Signal[int64]
	Height     *reactive.Signal[float64]
	Birthday   *reactive.Signal[time.Time]
	Week       *reactive.Signal[time.Time]
	Plan       *reactive.Signal[string]
	Subscribed *reactive.Signal[bool]
	Accent     *reactive.Signal[string]
	Theme      *reactive.Map[string, bool]

	Todos     *reactive.List[string]
	Draft     *reactive.Signal[string]
	Remaining *reactive.Signal[int64]

	// Root is the outermost element.
	Root dom.Element

	Form     dom.Element
	Inputs   map[string]dom.FormControl
	Radios   map[string]dom.FormControl
	TodoList dom.Element
	AddTodo  dom.Element
	PopTodo  dom.Element
}

// New returns the initial demo state.
func New() *App {
	return &App{
		Name:       reactive.Text("Ada"),
		Age:        reactive.Integer(36),
		Height:     reactive.Decimal(1.68),
		Birthday:   reactive.Time(time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC)),
		Week:       reactive.Time(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)),
		Plan:       reactive.Text("free"),
		Subscribed: reactive.Bool(false),
		Accent:     reactive.Text("teal"),
		Theme:      reactive.NewMap[string, bool](),
		Todos:      reactive.NewList("write the notes", "check the engine"),
		Draft:      reactive.Text(""),
		Remaining:  reactive.Integer(2),
		Inputs:     make(map[string]dom.FormControl),
		Radios:     make(map[string]dom.FormControl),
	}
}

// Build constructs the demo with rt.
func Build(rt *jsx.Runtime) (*App, error) {
	app := New()
	if err := app.build(rt); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *App) build(rt *jsx.Runtime) error {
	app.Theme.Set("compact", true)
	app.Todos.ObserveChanges(func(reactive.Change) {
		app.Remaining.Set(int64(app.Todos.Len()))
	})

	form, err := app.buildForm(rt)
	if err != nil {
		return err
	}
	todos, err := app.buildTodos(rt)
	if err != nil {
		return err
	}

	greeting, err := rt.H("h1", jsx.Attr{Key: "style", Value: map[string]any{"color": app.Accent}},
		"Hello, ", app.Name)
	if err != nil {
		return err
	}
	root, err := rt.H("main", jsx.Attr{Key: "class", Value: app.Theme}, greeting, form, todos)
	if err != nil {
		return err
	}
	app.Root = root.(dom.Element)
	return nil
}

func (app *App) input(rt *jsx.Runtime, key, label string, props jsx.Props) (dom.Node, error) {
	props["id"] = key
	props["name"] = key
	el, err := rt.Construct("input", props)
	if err != nil {
		return nil, err
	}
	app.Inputs[key] = el.(dom.FormControl)
	return rt.H("label", jsx.Attr{Key: "for", Value: key}, label, el)
}

func (app *App) buildForm(rt *jsx.Runtime) (dom.Node, error) {
	fields := []struct {
		key, label string
		props      jsx.Props
	}{
		{"name", "Name", jsx.Props{"type": "text", "value": app.Name}},
		{"age", "Age", jsx.Props{"type": "number", "value": app.Age}},
		{"height", "Height (m)", jsx.Props{"type": "number", "step": "0.01", "value": app.Height}},
		{"birthday", "Birthday", jsx.Props{"type": "date", "value": app.Birthday}},
		{"week", "Start week", jsx.Props{"type": "week", "value": app.Week}},
		{"accent", "Accent", jsx.Props{"type": "text", "value": app.Accent}},
		{"subscribed", "Newsletter", jsx.Props{"type": "checkbox", "checked": app.Subscribed}},
	}

	children := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		field, err := app.input(rt, f.key, f.label, f.props)
		if err != nil {
			return nil, err
		}
		children = append(children, field)
	}

	radios := make([]any, 0, len(Plans))
	for _, plan := range Plans {
		el, err := rt.Construct("input", jsx.Props{
			"type":           "radio",
			"name":           "plan",
			"value":          plan,
			"value:selected": app.Plan,
		})
		if err != nil {
			return nil, err
		}
		app.Radios[plan] = el.(dom.FormControl)
		label, err := rt.H("label", el, plan)
		if err != nil {
			return nil, err
		}
		radios = append(radios, label)
	}
	plans, err := rt.H("fieldset", radios)
	if err != nil {
		return nil, err
	}
	children = append(children, plans)

	form, err := rt.Construct("form", jsx.Props{
		"class": map[string]any{"profile": true, "subscribed": app.Subscribed},
	}, children...)
	if err != nil {
		return nil, err
	}
	app.Form = form.(dom.Element)
	return form, nil
}

func (app *App) buildTodos(rt *jsx.Runtime) (dom.Node, error) {
	ul, err := rt.H("ul", jsx.Attr{Key: "class", Value: "todos"})
	if err != nil {
		return nil, err
	}
	app.TodoList = ul.(dom.Element)
	rt.Binder().AttachList(ul, app.Todos, func(v any, _ int) (any, error) {
		return rt.H("li", v)
	})

	draft, err := rt.Construct("input", jsx.Props{"type": "text", "id": "draft", "value": app.Draft})
	if err != nil {
		return nil, err
	}
	app.Inputs["draft"] = draft.(dom.FormControl)

	add, err := rt.H("button", jsx.Props{"type": "button", "onclick": func() {
		text := app.Draft.Peek()
		if text == "" {
			return
		}
		app.Todos.Append(text)
		app.Draft.Set("")
	}}, "Add")
	if err != nil {
		return nil, err
	}
	app.AddTodo = add.(dom.Element)

	pop, err := rt.H("button", jsx.Props{"type": "button", "onclick": func() {
		app.Todos.RemoveAt(0)
	}}, "Done")
	if err != nil {
		return nil, err
	}
	app.PopTodo = pop.(dom.Element)

	count, err := rt.H("p", app.Remaining, " left")
	if err != nil {
		return nil, err
	}
	return rt.H("section", ul, draft, add, pop, count)
}
