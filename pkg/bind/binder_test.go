package bind

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/dom/htmldom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// =============================================================================
// Test helpers
// =============================================================================

type fakeWeakRef struct {
	n    dom.Node
	gone bool
}

func (r *fakeWeakRef) Deref() (dom.Node, bool) {
	if r.gone {
		return nil, false
	}
	return r.n, true
}

// collectableDocument hands out weak references that a test can clear,
// standing in for the garbage collector.
type collectableDocument struct {
	*htmldom.Document
	refs map[dom.NodeID]*fakeWeakRef
}

func newCollectableDocument() *collectableDocument {
	return &collectableDocument{
		Document: htmldom.NewDocument(),
		refs:     make(map[dom.NodeID]*fakeWeakRef),
	}
}

func (d *collectableDocument) WeakRef(n dom.Node) dom.WeakRef {
	r, ok := d.refs[n.NodeID()]
	if !ok {
		r = &fakeWeakRef{n: n}
		d.refs[n.NodeID()] = r
	}
	return r
}

func (d *collectableDocument) collect(n dom.Node) {
	if r, ok := d.refs[n.NodeID()]; ok {
		r.gone = true
	}
}

type recordingObserver struct {
	mu         sync.Mutex
	bound      map[Mode]int
	validation map[reactive.Kind]int
	stale      int
	changes    map[reactive.ChangeOp]int
	released   map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		bound:      make(map[Mode]int),
		validation: make(map[reactive.Kind]int),
		changes:    make(map[reactive.ChangeOp]int),
		released:   make(map[string]int),
	}
}

func (o *recordingObserver) AttributeBound(m Mode) {
	o.mu.Lock()
	o.bound[m]++
	o.mu.Unlock()
}

func (o *recordingObserver) ValidationFailed(k reactive.Kind) {
	o.mu.Lock()
	o.validation[k]++
	o.mu.Unlock()
}

func (o *recordingObserver) StaleHandler() {
	o.mu.Lock()
	o.stale++
	o.mu.Unlock()
}

func (o *recordingObserver) ListChange(op reactive.ChangeOp) {
	o.mu.Lock()
	o.changes[op]++
	o.mu.Unlock()
}

func (o *recordingObserver) Released(reason string, n int) {
	o.mu.Lock()
	o.released[reason] += n
	o.mu.Unlock()
}

type testEnv struct {
	doc  *collectableDocument
	b    *Binder
	logs *bytes.Buffer
	obs  *recordingObserver
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := newRecordingObserver()
	doc := newCollectableDocument()
	all := append([]Option{WithLogger(logger), WithObserver(obs)}, opts...)
	return &testEnv{doc: doc, b: New(doc, all...), logs: &logs, obs: obs}
}

func (e *testEnv) element(tag string) dom.Element {
	el := e.doc.CreateElement(tag)
	e.doc.Body().Append(el)
	return el
}

func (e *testEnv) input(typ string) *htmldom.Control {
	c := e.doc.CreateElement("input").(*htmldom.Control)
	if typ != "" {
		c.SetAttribute("type", typ)
	}
	e.doc.Body().Append(c)
	return c
}

// countMutations returns the number of DOM mutations fn causes.
func (e *testEnv) countMutations(fn func()) int {
	n := 0
	stop := e.doc.Observe(func(htmldom.Mutation) { n++ })
	defer stop()
	fn()
	return n
}

func (e *testEnv) mustSet(t *testing.T, el dom.Element, name string, value any) {
	t.Helper()
	ok, err := e.b.SetAttribute(el, name, value)
	if err != nil {
		t.Fatalf("SetAttribute(%s): %v", name, err)
	}
	if !ok {
		t.Fatalf("SetAttribute(%s) was not admitted", name)
	}
}

func attr(el dom.Element, name string) string {
	v, _ := el.GetAttribute(name)
	return v
}

func typeInto(c dom.FormControl, text string) {
	c.SetValue(text)
	c.DispatchEvent(dom.NewEvent("input"))
}

// readOnly hides SetValue of the wrapped reference.
type readOnly struct {
	reactive.Ref
}

// =============================================================================
// Static mode
// =============================================================================

func TestStaticBooleanPolicy(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")

	env.mustSet(t, div, "hidden", true)
	if v, ok := div.GetAttribute("hidden"); !ok || v != "" {
		t.Errorf("true: hidden = %q, %v; want present and empty", v, ok)
	}

	env.mustSet(t, div, "hidden", false)
	if div.HasAttribute("hidden") {
		t.Error("false should remove the attribute")
	}

	env.mustSet(t, div, "title", nil)
	if v, ok := div.GetAttribute("title"); !ok || v != "" {
		t.Errorf("nil: title = %q, %v; want present and empty", v, ok)
	}
}

func TestSetAttributeRejectsUnknownAttributes(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")

	ok, err := env.b.SetAttribute(div, "href", "/x")
	if err != nil || ok {
		t.Fatalf("SetAttribute(div, href) = %v, %v; want false, nil", ok, err)
	}
	if div.HasAttribute("href") {
		t.Error("unknown attribute must not be written")
	}

	// Custom elements accept anything.
	widget := env.element("my-widget")
	env.mustSet(t, widget, "anything", "x")
	if attr(widget, "anything") != "x" {
		t.Error("custom element attribute not written")
	}
}

func TestStaticWriteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	text := env.input("text")

	tests := []struct {
		name  string
		el    dom.Element
		attr  string
		value any
	}{
		{"string", div, "title", "hello"},
		{"number", div, "tabindex", 3},
		{"true", div, "hidden", true},
		{"nil", div, "lang", nil},
		{"false", div, "draggable", false},
		{"control value", text, "value", "typed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := env.countMutations(func() { env.mustSet(t, tt.el, tt.attr, tt.value) })
			second := env.countMutations(func() { env.mustSet(t, tt.el, tt.attr, tt.value) })
			if second != 0 {
				t.Errorf("second write caused %d mutations (first caused %d)", second, first)
			}
		})
	}
}

func TestPathRewriting(t *testing.T) {
	env := newTestEnv(t, WithRootPath("https://example.com/app/"))
	a := env.element("a")

	tests := []struct {
		attr, value, want string
	}{
		{"href", "./docs", "https://example.com/app/docs"},
		{"href", "../up", "https://example.com/up"},
		{"href", "/absolute", "/absolute"},
		{"href:route", "./docs", "./docs"},
	}
	for _, tt := range tests {
		env.mustSet(t, a, tt.attr, tt.value)
		if got := attr(a, "href"); got != tt.want {
			t.Errorf("%s=%q wrote %q, want %q", tt.attr, tt.value, got, tt.want)
		}
	}

	local := env.b.WithRootPath("")
	local.SetAttribute(a, "href", "./plain")
	if got := attr(a, "href"); got != "./plain" {
		t.Errorf("without a root path got %q", got)
	}
}

func TestEventHandlers(t *testing.T) {
	env := newTestEnv(t)
	btn := env.element("button").(*htmldom.Element)

	var calls []string
	env.mustSet(t, btn, "onclick", func() { calls = append(calls, "first") })
	env.mustSet(t, btn, "onclick", func(*dom.Event) { calls = append(calls, "second") })
	if n := btn.ListenerCount("click"); n != 1 {
		t.Fatalf("reassigning onclick left %d listeners", n)
	}
	btn.DispatchEvent(dom.NewEvent("click"))
	if strings.Join(calls, ",") != "second" {
		t.Errorf("calls = %v", calls)
	}

	env.mustSet(t, btn, "onclick", []any{func() {}, dom.EventHandler(func(*dom.Event) {})})
	if n := btn.ListenerCount("click"); n != 2 {
		t.Errorf("handler list installed %d listeners, want 2", n)
	}

	env.mustSet(t, btn, "onclick", "alert(1)")
	if attr(btn, "onclick") != "alert(1)" || btn.ListenerCount("click") != 2 {
		t.Error("a string handler is written as the attribute")
	}

	if _, err := env.b.SetAttribute(btn, "onclick", 42); !errors.Is(err, ErrInvalidHandler) {
		t.Errorf("number handler error = %v, want ErrInvalidHandler", err)
	}
	if _, err := env.b.SetAttribute(btn, "onclick:frontend", "code"); !errors.Is(err, ErrFrontendHandler) {
		t.Errorf("frontend string error = %v, want ErrFrontendHandler", err)
	}
	env.mustSet(t, btn, "onclick:frontend", func() {})
}

func TestFormActionFunction(t *testing.T) {
	env := newTestEnv(t)
	form := env.element("form")

	submitted := 0
	env.mustSet(t, form, "action", func() { submitted++ })
	ev := dom.NewEvent("submit")
	form.DispatchEvent(ev)
	if submitted != 1 || !ev.DefaultPrevented() {
		t.Errorf("submitted=%d prevented=%v", submitted, ev.DefaultPrevented())
	}
	if form.HasAttribute("action") {
		t.Error("a function action is not written as an attribute")
	}

	env.mustSet(t, form, "action", "/save")
	if attr(form, "action") != "/save" {
		t.Error("string action not written")
	}
}

func TestSpecialAttributes(t *testing.T) {
	env := newTestEnv(t)

	div := env.element("div")
	env.mustSet(t, div, "display", false)
	if got := div.Style().GetPropertyValue("display"); got != "none" {
		t.Errorf("display=false -> %q", got)
	}

	env.mustSet(t, div, "stylesheet", "/theme.css")
	link, ok := div.LastChild().(dom.Element)
	if !ok || link.TagName() != "link" || attr(link, "rel") != "stylesheet" {
		t.Fatalf("stylesheet did not append a link: %v", div.LastChild())
	}

	dialog := env.element("dialog")
	env.mustSet(t, dialog, "open", true)
	if !dialog.HasAttribute("open") {
		t.Error("dialog should be open")
	}
	env.mustSet(t, dialog, "open", false)
	if dialog.HasAttribute("open") {
		t.Error("dialog should be closed")
	}
}

func TestSelectedRequiresRadio(t *testing.T) {
	env := newTestEnv(t)
	text := env.input("text")

	_, err := env.b.SetAttribute(text, "value:selected", reactive.Text("a"))
	if !errors.Is(err, ErrSelectedNotRadio) {
		t.Fatalf("error = %v, want ErrSelectedNotRadio", err)
	}
}

func TestDirectionalBindingRequiresReference(t *testing.T) {
	env := newTestEnv(t)
	text := env.input("text")

	if _, err := env.b.SetAttribute(text, "value:out", "static"); !errors.Is(err, ErrNotReactive) {
		t.Errorf("value:out with a static value: %v, want ErrNotReactive", err)
	}
	ro := readOnly{reactive.Text("x")}
	if _, err := env.b.SetAttribute(text, "value:out", ro); !errors.Is(err, ErrNotReactive) {
		t.Errorf("value:out with a read-only reference: %v, want ErrNotReactive", err)
	}
}

// =============================================================================
// Reactive and deferred modes
// =============================================================================

func TestReactiveAttribute(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	title := reactive.Text("one")

	env.mustSet(t, div, "title", title)
	if attr(div, "title") != "one" {
		t.Fatalf("initial title = %q", attr(div, "title"))
	}
	title.Set("two")
	if attr(div, "title") != "two" {
		t.Errorf("updated title = %q", attr(div, "title"))
	}

	env.mustSet(t, div, "title", "static")
	if title.Observers() != 0 {
		t.Errorf("reassignment left %d subscriptions", title.Observers())
	}
	title.Set("three")
	if attr(div, "title") != "static" {
		t.Error("released binding still writes")
	}

	if env.obs.bound[ModeReactive] != 1 || env.obs.bound[ModeStatic] != 1 {
		t.Errorf("observer saw %v", env.obs.bound)
	}
}

func TestReactiveBooleanAttribute(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	hidden := reactive.Bool(true)

	env.mustSet(t, div, "hidden", hidden)
	if !div.HasAttribute("hidden") {
		t.Fatal("hidden should be present")
	}
	hidden.Set(false)
	if div.HasAttribute("hidden") {
		t.Error("hidden should be removed")
	}
}

func TestStructuralReferenceIsWrittenOnce(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	data := reactive.NewSignal([]int{1, 2})

	env.mustSet(t, div, "data-items", data)
	if attr(div, "data-items") != "[1 2]" {
		t.Errorf("data-items = %q", attr(div, "data-items"))
	}
	if data.Observers() != 0 {
		t.Error("structural values are not observed")
	}
}

func TestDeferredAttribute(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")

	fut := reactive.NewFuture[string]()
	env.mustSet(t, div, "title", fut)
	if div.HasAttribute("title") {
		t.Fatal("attribute must stay unset until resolution")
	}
	fut.Resolve("later")
	if attr(div, "title") != "later" {
		t.Errorf("resolved title = %q", attr(div, "title"))
	}

	lazy := reactive.NewLazy[string]()
	env.mustSet(t, div, "lang", lazy)
	sig := reactive.Text("en")
	lazy.Resolve(sig)
	if attr(div, "lang") != "en" {
		t.Fatalf("lazy lang = %q", attr(div, "lang"))
	}
	sig.Set("de")
	if attr(div, "lang") != "de" {
		t.Errorf("lazy binding does not follow the reference: %q", attr(div, "lang"))
	}
	if env.obs.bound[ModeDeferred] != 2 {
		t.Errorf("deferred bindings observed = %d", env.obs.bound[ModeDeferred])
	}
}

func TestBindingsListsSlots(t *testing.T) {
	env := newTestEnv(t)
	text := env.input("text")

	env.mustSet(t, text, "value", reactive.Text("x"))
	env.mustSet(t, text, "title", reactive.Text("t"))
	env.mustSet(t, text, "oninput", func() {})

	got := strings.Join(env.b.Bindings(text), ",")
	if got != "attr:title,attr:value,listener:input" {
		t.Errorf("Bindings = %s", got)
	}
}
