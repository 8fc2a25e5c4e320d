package object

import (
	"errors"
	"testing"

	"github.com/dynkit/retype/internal/config"
)

func TestDeriveWrapsBaseCallables(t *testing.T) {
	_, base, sub := buildPair(t)

	for _, name := range []string{"make", "clone", "myself", "label", "whoami"} {
		v, ok := sub.GetOwnAttr(name)
		if !ok {
			t.Errorf("Derived class did not receive %q", name)
			continue
		}
		if _, isWrapper := v.(*MethodRebinder); !isWrapper {
			t.Errorf("Attribute %q is %T, want *MethodRebinder", name, v)
		}
	}

	v, ok := sub.GetOwnAttr(config.InitMethodName)
	if !ok {
		t.Fatal("Derived class has no initializer")
	}
	if _, isCapture := v.(*InitCapture); !isCapture {
		t.Errorf("Initializer is %T, want *InitCapture", v)
	}

	// The base class table is left alone.
	if v, _ := base.GetOwnAttr("make"); v == nil {
		t.Fatal("Base class lost its factory")
	} else if _, wrapped := v.(*MethodRebinder); wrapped {
		t.Error("Deriving rewrote the base class table")
	}
}

func TestDeriveExclusion(t *testing.T) {
	rt := NewRuntime()
	excluded := &Function{Name: "raw", Fn: func(args []Object, kwargs Kwargs) (Object, error) {
		return strv("base"), nil
	}, Exclude: true}
	base, err := rt.NewClass("Plain", nil, ClassSpec{
		Attrs: map[string]Object{
			"raw":  NewMethod("raw", excluded),
			"both": NewMethod("both", NewFunction("both", func(args []Object, kwargs Kwargs) (Object, error) {
				return strv("base"), nil
			})),
		},
	})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}

	override := &Function{Name: "both", Fn: func(args []Object, kwargs Kwargs) (Object, error) {
		return strv("override"), nil
	}, Exclude: true}
	sub, err := rt.Derive("Derived", base, ClassSpec{
		Attrs: map[string]Object{
			"both": NewMethod("both", override),
			"solo": NewMethod("solo", NewFunction("solo", func(args []Object, kwargs Kwargs) (Object, error) {
				return strv("solo"), nil
			})),
		},
	})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	// A base callable is wrapped regardless of its own exclude flag.
	if v, _ := sub.GetOwnAttr("raw"); v == nil {
		t.Error("Excluded base callable vanished")
	} else if _, wrapped := v.(*MethodRebinder); !wrapped {
		t.Errorf("Base callable %T escaped wrapping", v)
	}

	// An excluded override of a base callable stays as written.
	v, _ := sub.GetOwnAttr("both")
	m, ok := v.(*Method)
	if !ok {
		t.Fatalf("Excluded override is %T, want *Method", v)
	}
	if m.Fn != Caller(override) {
		t.Error("Excluded override was replaced")
	}

	// A callable that exists only on the subclass stays as written.
	if v, _ := sub.GetOwnAttr("solo"); v == nil {
		t.Error("Subclass-only callable vanished")
	} else if _, wrapped := v.(*MethodRebinder); wrapped {
		t.Error("Subclass-only callable was wrapped")
	}
}

func TestDeriveOverrideWrapped(t *testing.T) {
	rt := NewRuntime()
	base, err := rt.NewClass("Plain", nil, ClassSpec{
		Init: storeInit("x"),
		Attrs: map[string]Object{
			"dup": NewMethod("dup", NewFunction("dup", func(args []Object, kwargs Kwargs) (Object, error) {
				return strv("base"), nil
			})),
		},
	})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	override := NewMethod("dup", NewFunction("dup", func(args []Object, kwargs Kwargs) (Object, error) {
		if len(args) == 0 {
			return nil, &ArgumentError{Callee: "dup", Reason: "missing receiver"}
		}
		x, err := Attr(args[0], "x")
		if err != nil {
			return nil, err
		}
		return base.Call([]Object{x}, nil)
	}))
	sub, err := rt.Derive("Derived", base, ClassSpec{
		Init:  extrasInit(),
		Attrs: map[string]Object{"dup": override},
	})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	v, _ := sub.GetOwnAttr("dup")
	w, ok := v.(*MethodRebinder)
	if !ok {
		t.Fatalf("Override is %T, want *MethodRebinder", v)
	}
	if w.Wrapped() != Object(override) {
		t.Error("Wrapper holds a different callable than the override")
	}

	b := construct(t, base, []Object{intv(3)}, nil)
	s := construct(t, sub, []Object{b}, nil)
	out, err := callAttr(t, s, "dup", nil, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if got := out.(*Instance).Class(); got != sub {
		t.Errorf("Override result is a %s, want Derived", got.Name)
	}
}

func TestDeriveWithoutInit(t *testing.T) {
	rt, base, _ := buildPair(t)
	sub, err := rt.Derive("Bare", base, ClassSpec{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	b := construct(t, base, []Object{intv(7)}, nil)
	s := construct(t, sub, []Object{b, strv("ignored")}, nil)

	// No initializer of the chain ran: x flows in through seeding, the
	// extra argument lands only in the record.
	wantOwn(t, s, "x", intv(7))
	wantOwn(t, s, config.CapturedArgsAttr, NewTuple(strv("ignored")))
	if _, ok := s.GetOwn("ignored"); ok {
		t.Error("Interceptor initializer stored an argument")
	}
}

func TestDeriveValueSeeding(t *testing.T) {
	_, base, sub := buildPair(t)

	t.Run("attribute-bearing value", func(t *testing.T) {
		b := construct(t, base, []Object{intv(7)}, nil)
		if err := b.SetAttr("note", strv("kept")); err != nil {
			t.Fatal(err)
		}
		s := construct(t, sub, []Object{b}, nil)
		wantOwn(t, s, "x", intv(7))
		wantOwn(t, s, "note", strv("kept"))
	})

	t.Run("scalar value seeds nothing", func(t *testing.T) {
		s := construct(t, sub, []Object{intv(3)}, nil)
		if _, ok := s.GetOwn("x"); ok {
			t.Error("A scalar value seeded attributes")
		}
		wantOwn(t, s, config.CapturedArgsAttr, NewTuple())
	})

	t.Run("no value at all", func(t *testing.T) {
		s := construct(t, sub, nil, nil)
		if _, ok := s.GetOwn("x"); ok {
			t.Error("Seeding ran without a value argument")
		}
	})
}

func TestDeriveSlotExtension(t *testing.T) {
	rt := NewRuntime()
	base, err := rt.NewClass("Cell", nil, ClassSpec{Slots: []string{"x"}, Init: storeInit("x")})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	sub, err := rt.Derive("TypedCell", base, ClassSpec{Slots: []string{"tag"}, Init: extrasInit("tag")})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	iv := sub.Parent()
	if iv == nil || iv.Parent() != base {
		t.Fatal("Derived class is not parented through the intermediate")
	}
	if !iv.Covariant() {
		t.Error("Intermediate does not seed from the value argument")
	}
	if sub.Dynamic() {
		t.Error("Slotted chain opened a dict")
	}

	want := []string{"x", config.CapturedArgsAttr, config.CapturedKwargsAttr, "tag"}
	got := sub.SlotNames()
	if len(got) != len(want) {
		t.Fatalf("SlotNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SlotNames()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	b := construct(t, base, []Object{intv(4)}, nil)
	s := construct(t, sub, []Object{b, strv("t")}, nil)
	wantOwn(t, s, "x", intv(4))
	wantOwn(t, s, "tag", strv("t"))
	wantOwn(t, s, config.CapturedArgsAttr, NewTuple(strv("t")))
	if err := s.SetAttr("random", intv(1)); err == nil {
		t.Error("Slots-only derived instance accepted an undeclared attribute")
	}
}

func TestDeriveIntermediateCached(t *testing.T) {
	rt, base, _ := buildPair(t)

	iv1, err := rt.CovariantBase(base)
	if err != nil {
		t.Fatalf("CovariantBase failed: %v", err)
	}
	iv2, err := rt.CovariantBase(base)
	if err != nil {
		t.Fatalf("CovariantBase failed: %v", err)
	}
	if iv1 != iv2 {
		t.Error("Two intermediates were built for one base")
	}

	subA, err := rt.Derive("CachedA", base, ClassSpec{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	subB, err := rt.Derive("CachedB", base, ClassSpec{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if subA.Parent() != subB.Parent() {
		t.Error("Siblings do not share the intermediate")
	}
	if _, ok := rt.Lookup(iv1.Name); !ok {
		t.Error("Intermediate is not registered")
	}
}

func TestDeriveRejectsBadSpecs(t *testing.T) {
	rt, base, _ := buildPair(t)

	if _, err := rt.Derive("X", nil, ClassSpec{}); err == nil {
		t.Error("Derive accepted a nil base")
	}

	_, err := rt.Derive("Y", base, ClassSpec{Slots: []string{config.CapturedArgsAttr}})
	if err == nil {
		t.Fatal("Derive accepted a reserved slot name")
	}
	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Errorf("Error is %T, want *ArgumentError", err)
	}

	if _, err := rt.Derive("Tagged", base, ClassSpec{}); err == nil {
		t.Error("Derive accepted a taken class name")
	}
}

func TestDeriveChainUpgrade(t *testing.T) {
	rt, base, sub := buildPair(t)
	outer, err := rt.Derive("Outer", sub, ClassSpec{Init: extrasInit("mark")})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	b := construct(t, base, []Object{intv(7)}, nil)
	s := construct(t, sub, []Object{b, strv("m")}, nil)
	o := construct(t, outer, []Object{s, strv("deep")}, nil)

	// Seeding copied the inner record along with the data attributes,
	// and a present record is never overwritten.
	wantOwn(t, o, "mark", strv("deep"))
	wantOwn(t, o, config.CapturedArgsAttr, NewTuple(strv("m")))

	out, err := callAttr(t, o, "make", nil, nil)
	if err != nil {
		t.Fatalf("Factory call failed: %v", err)
	}
	made := out.(*Instance)
	if made.Class() != outer {
		t.Fatalf("Factory returned a %s, want Outer", made.Class().Name)
	}
	wantOwn(t, made, "x", intv(9))
	wantOwn(t, made, "tag", strv("m"))
	wantOwn(t, made, "mark", strv("deep"))
}
