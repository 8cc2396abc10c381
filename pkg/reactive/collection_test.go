package reactive

import (
	"reflect"
	"testing"
)

func recordChanges(c Collection) *[]Change {
	var out []Change
	c.ObserveChanges(func(ch Change) { out = append(out, ch) })
	return &out
}

func TestListAppendRemove(t *testing.T) {
	l := NewList("a", "b", "c")
	changes := recordChanges(l)

	l.RemoveAt(1)
	l.Append("d")
	l.RemoveAt(10) // out of range, ignored

	if got := l.Items(); !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Errorf("Items() = %v", got)
	}
	want := []Change{
		{Op: OpEntryRemoved, Index: 1},
		{Op: OpEntryAdded, Index: 2, Value: "d"},
	}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %+v, want %+v", *changes, want)
	}
}

func TestListSetAtLeavesHoles(t *testing.T) {
	l := NewList("a")
	changes := recordChanges(l)

	l.SetAt(3, "d")

	snap := l.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(snap))
	}
	if !IsHole(snap[1]) || !IsHole(snap[2]) {
		t.Errorf("expected holes at 1 and 2, got %v", snap)
	}
	if _, ok := l.At(2); ok {
		t.Error("At(2) should report an unset slot")
	}
	if len(*changes) != 1 || (*changes)[0].Index != 3 {
		t.Errorf("unexpected changes: %+v", *changes)
	}

	l.SetAt(-1, "x")
	if l.Len() != 4 {
		t.Errorf("negative SetAt must be ignored")
	}
}

func TestListInsertAt(t *testing.T) {
	l := NewList("a", "c")
	changes := recordChanges(l)

	l.InsertAt(1, "b")

	if got := l.Items(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Items() = %v", got)
	}
	want := []Change{
		{Op: OpEntryAdded, Index: 1, Value: "b"},
		{Op: OpEntryAdded, Index: 2, Value: "c"},
	}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %+v, want %+v", *changes, want)
	}
}

func TestListClearAndReplace(t *testing.T) {
	l := NewList(1, 2)
	changes := recordChanges(l)

	l.Replace(3, 4, 5)

	if got := l.Items(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Errorf("Items() = %v", got)
	}
	if len(*changes) != 4 || (*changes)[0].Op != OpCleared {
		t.Errorf("expected clear then 3 appends, got %+v", *changes)
	}
}

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap[string, int]()
	changes := recordChanges(m)

	m.Set("x", 1)
	m.Set("y", 2)
	m.Set("x", 10) // replace keeps position
	m.Delete("missing")
	m.Delete("x")

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("Keys() = %v", got)
	}
	want := []Change{
		{Op: OpEntryAdded, Index: 0, Value: 1},
		{Op: OpEntryAdded, Index: 1, Value: 2},
		{Op: OpEntryAdded, Index: 0, Value: 10},
		{Op: OpEntryRemoved, Index: 0},
	}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %+v, want %+v", *changes, want)
	}
	if v, ok := m.Get("y"); !ok || v != 2 {
		t.Errorf("Get(y) = %v, %v", v, ok)
	}
}

func TestSetMembership(t *testing.T) {
	s := NewSet("a", "b", "a")
	changes := recordChanges(s)

	s.Add("b") // already present
	s.Add("c")
	s.Delete("a")
	s.Clear()

	want := []Change{
		{Op: OpEntryAdded, Index: 2, Value: "c"},
		{Op: OpEntryRemoved, Index: 0},
		{Op: OpCleared},
	}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("changes = %+v, want %+v", *changes, want)
	}
	if s.Len() != 0 || s.Has("b") {
		t.Error("set should be empty after Clear")
	}
}

func TestCollectionUnobserve(t *testing.T) {
	l := NewList[int]()
	calls := 0
	sub := l.ObserveChanges(func(Change) { calls++ })
	l.Append(1)
	l.Unobserve(sub)
	l.Append(2)
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestLazyResolve(t *testing.T) {
	lazy := NewLazy[string]()
	var got []Ref
	lazy.OnLoad(func(r Ref) { got = append(got, r) })

	if lazy.Loaded() || len(got) != 0 {
		t.Fatal("lazy must not resolve before Resolve")
	}

	sig := Text("ready")
	lazy.Resolve(sig)
	lazy.Resolve(Text("ignored"))
	lazy.OnLoad(func(r Ref) { got = append(got, r) })

	if len(got) != 2 || got[0] != Ref(sig) || got[1] != Ref(sig) {
		t.Errorf("unexpected resolutions: %v", got)
	}
}

func TestFutureThen(t *testing.T) {
	f := NewFuture[int]()
	var got []any
	f.Then(func(v any) { got = append(got, v) })
	f.Resolve(4)
	f.Resolve(5)
	f.Then(func(v any) { got = append(got, v) })

	if !reflect.DeepEqual(got, []any{4, 4}) {
		t.Errorf("got %v", got)
	}
	if !Resolved("x").Done() {
		t.Error("Resolved future should be done")
	}
}
