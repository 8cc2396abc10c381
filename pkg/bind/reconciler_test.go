package bind

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// regionText describes the nodes of a list region: text nodes by their
// content, comments as "#comment" and elements by tag.
func regionText(lb *ListBinding) []string {
	var out []string
	for _, n := range lb.Nodes() {
		switch n.NodeType() {
		case dom.TextNode:
			out = append(out, n.TextContent())
		case dom.CommentNode:
			out = append(out, "#"+n.TextContent())
		default:
			out = append(out, strings.ToLower(n.NodeName()))
		}
	}
	return out
}

// expectedRegion is what a region should show for a snapshot.
func expectedRegion(snapshot []any) []string {
	out := make([]string, 0, len(snapshot))
	for _, v := range snapshot {
		if reactive.IsHole(v) {
			out = append(out, "#empty")
			continue
		}
		out = append(out, v.(string))
	}
	return out
}

func assertRegion(t *testing.T, lb *ListBinding, want ...string) {
	t.Helper()
	got := regionText(lb)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("region = %q, want %q", got, want)
	}
}

func TestListRemoveKeepsAnchors(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList("a", "b", "c")

	lb := env.b.AttachList(ul, list, nil)
	start, end := ul.FirstChild(), ul.LastChild()
	assertRegion(t, lb, "a", "b", "c")

	list.RemoveAt(1)
	assertRegion(t, lb, "a", "c")
	if ul.FirstChild() != start || ul.LastChild() != end {
		t.Error("anchors should stay in place")
	}
	if start.NodeType() != dom.CommentNode || !strings.HasPrefix(start.TextContent(), "start ") {
		t.Errorf("start anchor = %q", start.TextContent())
	}
	if env.obs.changes[reactive.OpEntryRemoved] != 1 {
		t.Errorf("observer saw %v", env.obs.changes)
	}
}

func TestListOperations(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList[string]()
	lb := env.b.AttachList(ul, list, nil)

	list.Append("x")
	list.SetAt(3, "y")
	assertRegion(t, lb, "x", "#empty", "#empty", "y")

	list.SetAt(1, "z")
	assertRegion(t, lb, "x", "z", "#empty", "y")

	list.InsertAt(0, "w")
	assertRegion(t, lb, "w", "x", "z", "#empty", "y")

	list.Clear()
	assertRegion(t, lb)
	if len(ul.ChildNodes()) != 2 {
		t.Errorf("clearing should keep both anchors, got %d nodes", len(ul.ChildNodes()))
	}

	list.Replace("p", "q")
	assertRegion(t, lb, "p", "q")
}

func TestListMatchesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList("seed")
	lb := env.b.AttachList(ul, list, nil)

	rng := rand.New(rand.NewSource(7))
	for step := 0; step < 500; step++ {
		n := list.Len()
		v := "v" + strconv.Itoa(step)
		switch op := rng.Intn(10); {
		case op < 3:
			list.Append(v)
		case op < 5:
			list.SetAt(rng.Intn(n+3), v)
		case op < 7:
			list.InsertAt(rng.Intn(n+1), v)
		case op < 9:
			list.RemoveAt(rng.Intn(n + 1))
		default:
			if rng.Intn(5) == 0 {
				list.Clear()
			}
		}

		want := expectedRegion(list.Snapshot())
		if got := regionText(lb); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("step %d: region = %q, want %q", step, got, want)
		}
	}
}

func TestListIgnoresOutOfRangeChanges(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList("a")
	lb := env.b.AttachList(ul, list, nil)

	lb.apply(reactive.Change{Op: reactive.OpEntryRemoved, Index: 5})
	lb.apply(reactive.Change{Op: reactive.OpEntryRemoved, Index: -1})
	lb.apply(reactive.Change{Op: reactive.OpEntryAdded, Index: -2, Value: "bad"})
	assertRegion(t, lb, "a")
	if !strings.Contains(env.logs.String(), "negative index") {
		t.Error("negative indexes should be logged")
	}
}

func TestListSharesParent(t *testing.T) {
	env := newTestEnv(t)
	div := env.element("div")
	div.Append(env.doc.CreateTextNode("before"))
	list := reactive.NewList("a", "b")
	lb := env.b.AttachList(div, list, nil)
	div.Append(env.doc.CreateTextNode("after"))

	list.RemoveAt(0)
	list.Append("c")
	assertRegion(t, lb, "b", "c")
	if div.TextContent() != "beforebcafter" {
		t.Errorf("text = %q", div.TextContent())
	}
}

func TestListInsideFragment(t *testing.T) {
	env := newTestEnv(t)
	frag := env.doc.CreateDocumentFragment()
	list := reactive.NewList("a")
	lb := env.b.AttachList(frag, list, nil)

	div := env.element("div")
	div.Append(frag)
	list.Append("b")
	if div.TextContent() != "ab" {
		t.Errorf("text = %q", div.TextContent())
	}
	assertRegion(t, lb, "a", "b")

	if got := env.b.Bindings(div.FirstChild()); len(got) != 1 || !strings.HasPrefix(got[0], "children:") {
		t.Errorf("start anchor should own the list, got %v", got)
	}
}

func TestListMapFunc(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList(1, 2, 3)

	lb := env.b.AttachList(ul, list, func(v any, i int) (any, error) {
		if v.(int) == 2 {
			return nil, errors.New("skip two")
		}
		li := env.doc.CreateElement("li")
		li.SetTextContent(strconv.Itoa(v.(int) * 10))
		return li, nil
	})

	assertRegion(t, lb, "li", "#empty", "li")
	if ul.TextContent() != "1030" {
		t.Errorf("text = %q", ul.TextContent())
	}
	if !strings.Contains(env.logs.String(), "skip two") {
		t.Error("mapping errors should be logged")
	}
}

func TestListFragmentEntryUsesFirstChild(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList("a")

	lb := env.b.AttachList(ul, list, func(v any, _ int) (any, error) {
		frag := env.doc.CreateDocumentFragment()
		frag.Append(env.doc.CreateTextNode(v.(string)), env.doc.CreateTextNode("ignored"))
		return frag, nil
	})
	assertRegion(t, lb, "a")
	if logs := env.logs.String(); !strings.Contains(logs, "list entry fragment has extra nodes") || !strings.Contains(logs, "dropped=1") {
		t.Errorf("dropped fragment nodes should be logged, logs: %s", logs)
	}
}

func TestListClose(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList("a")
	lb := env.b.AttachList(ul, list, nil)

	lb.Close()
	lb.Close()
	list.Append("b")
	assertRegion(t, lb, "a")
	if len(env.b.Bindings(ul)) != 0 {
		t.Errorf("bindings after close: %v", env.b.Bindings(ul))
	}
}

func TestMapAndSetCollections(t *testing.T) {
	env := newTestEnv(t)

	m := reactive.NewMap[string, string]()
	m.Set("one", "1")
	m.Set("two", "2")
	mb := env.b.AttachList(env.element("dl"), m, nil)
	m.Set("one", "uno")
	m.Delete("two")
	m.Set("three", "3")
	assertRegion(t, mb, "uno", "3")

	s := reactive.NewSet("x", "y")
	sb := env.b.AttachList(env.element("ul"), s, nil)
	s.Add("x")
	s.Delete("x")
	s.Add("z")
	assertRegion(t, sb, "y", "z")
}

func TestAppendAttachesCollections(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList("a")

	if err := env.b.Append(ul, "head", list); err != nil {
		t.Fatal(err)
	}
	list.Append("b")
	if ul.TextContent() != "headab" {
		t.Errorf("text = %q", ul.TextContent())
	}
}

func TestListDetachedAnchorsWarn(t *testing.T) {
	env := newTestEnv(t)
	ul := env.element("ul")
	list := reactive.NewList("a")
	env.b.AttachList(ul, list, nil)

	start := ul.FirstChild()
	ul.RemoveChild(start)
	list.Append("b")
	if !strings.Contains(env.logs.String(), "list anchors are detached") {
		t.Error("expected a warning for detached anchors")
	}
}
