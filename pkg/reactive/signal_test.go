package reactive

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalObserve(t *testing.T) {
	name := Text("Ada")

	var got []any
	sub := name.Observe(func(v any) { got = append(got, v) })

	name.Set("Grace")
	name.Set("Grace") // equal, no notification
	name.Set("Barbara")

	if len(got) != 2 || got[0] != "Grace" || got[1] != "Barbara" {
		t.Fatalf("unexpected notifications: %v", got)
	}

	name.Unobserve(sub)
	name.Set("Hedy")
	if len(got) != 2 {
		t.Errorf("expected no notification after Unobserve, got %v", got)
	}
	if name.Observers() != 0 {
		t.Errorf("expected 0 observers, got %d", name.Observers())
	}
}

func TestSignalObserveOrder(t *testing.T) {
	s := NewSignal(0)
	var order []int
	s.Observe(func(any) { order = append(order, 1) })
	second := s.Observe(func(any) { order = append(order, 2) })
	s.Observe(func(any) { order = append(order, 3) })

	s.Unobserve(second)
	s.Set(1)

	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("expected [1 3], got %v", order)
	}
}

func TestSignalIdentity(t *testing.T) {
	a := Text("x")
	b := Text("x")
	if a.ID() == b.ID() {
		t.Error("distinct signals must have distinct IDs")
	}
}

func TestTypedConstructorsKind(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
		want Kind
	}{
		{"text", Text(""), KindText},
		{"decimal", Decimal(0), KindDecimal},
		{"integer", Integer(0), KindInteger},
		{"bool", Bool(false), KindBoolean},
		{"time", Time(time.Time{}), KindTime},
		{"void", Void(), KindVoid},
		{"opaque", NewSignal([]string{"a"}), KindOpaque},
		{"explicit", NewSignal(int32(1), WithKind(KindInteger)), KindInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignalSetValue(t *testing.T) {
	t.Run("numeric conversion", func(t *testing.T) {
		n := Integer(0)
		if err := n.SetValue(12.0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Get() != 12 {
			t.Errorf("expected 12, got %d", n.Get())
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		n := Integer(5)
		err := n.SetValue("12")
		if !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("expected ErrTypeMismatch, got %v", err)
		}
		if n.Get() != 5 {
			t.Errorf("value must not change on error, got %d", n.Get())
		}
	})

	t.Run("validator", func(t *testing.T) {
		errNegative := errors.New("negative")
		n := Integer(1).WithValidator(func(v int64) error {
			if v < 0 {
				return errNegative
			}
			return nil
		})
		if err := n.SetValue(int64(-3)); !errors.Is(err, errNegative) {
			t.Fatalf("expected validator error, got %v", err)
		}
		if n.Get() != 1 {
			t.Errorf("value must not change on error, got %d", n.Get())
		}
	})

	t.Run("nil into interface", func(t *testing.T) {
		v := NewSignal[any]("x")
		if err := v.SetValue(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Get() != nil {
			t.Errorf("expected nil, got %v", v.Get())
		}
	})
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal("a").WithEquals(func(a, b string) bool { return len(a) == len(b) })
	calls := 0
	s.Observe(func(any) { calls++ })

	s.Set("b")
	if calls != 0 {
		t.Errorf("custom equality should suppress notification, got %d", calls)
	}
	s.Set("bb")
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}
}

func TestTimeSignalEquality(t *testing.T) {
	base := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	s := Time(base)
	calls := 0
	s.Observe(func(any) { calls++ })

	s.Set(base.In(time.FixedZone("X", 3600)))
	if calls != 0 {
		t.Errorf("same instant in another zone should not notify, got %d", calls)
	}
}

func TestValueOf(t *testing.T) {
	if ValueOf(Text("x")) != "x" {
		t.Error("ValueOf should read refs")
	}
	if ValueOf(3) != 3 {
		t.Error("ValueOf should pass plain values through")
	}
	if !IsRef(Bool(true)) || IsRef(true) {
		t.Error("IsRef mismatch")
	}
}

func TestSignalConcurrentAccess(t *testing.T) {
	s := NewSignal(0)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set(n)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Get()
		}()
	}

	wg.Wait()
}
