package object

import (
	"errors"
	"testing"
)

func TestClassCall(t *testing.T) {
	rt := NewRuntime()
	point, err := rt.NewClass("Point", nil, ClassSpec{Init: storeInit("x", "y")})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}

	inst := construct(t, point, []Object{intv(1), intv(2)}, nil)
	if inst.Class() != point {
		t.Errorf("Instance class is %s, want Point", inst.Class().Name)
	}
	wantOwn(t, inst, "x", intv(1))
	wantOwn(t, inst, "y", intv(2))

	if !IsInstance(inst, point) {
		t.Error("Instance does not count as a Point")
	}
	if !IsInstance(inst, ObjectClass) {
		t.Error("Instance does not count as an Object")
	}
	if IsInstance(inst, IntClass) {
		t.Error("Instance counts as an Int")
	}
}

func TestClassCallWithoutInit(t *testing.T) {
	rt := NewRuntime()
	bare, err := rt.NewClass("Bare", nil, ClassSpec{})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}

	if _, err := bare.Call(nil, nil); err != nil {
		t.Errorf("Zero-argument construction failed: %v", err)
	}

	_, err = bare.Call([]Object{intv(1)}, nil)
	if err == nil {
		t.Fatal("Construction with arguments succeeded without an initializer")
	}
	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Errorf("Error is %T, want *ArgumentError", err)
	}
}

func TestSlotStorage(t *testing.T) {
	rt := NewRuntime()
	cell, err := rt.NewClass("Cell", nil, ClassSpec{Slots: []string{"value"}})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	if cell.Dynamic() {
		t.Fatal("Slotted class without Dynamic reports dynamic storage")
	}

	inst := NewInstance(cell)
	if _, ok := inst.GetOwn("value"); ok {
		t.Error("Unset slot reads as present")
	}
	if inst.HasAttr("value") {
		t.Error("HasAttr reports an unset slot")
	}
	if err := inst.SetAttr("value", intv(5)); err != nil {
		t.Fatalf("Slot write failed: %v", err)
	}
	wantOwn(t, inst, "value", intv(5))
	if !inst.HasAttr("value") {
		t.Error("HasAttr misses a set slot")
	}

	err = inst.SetAttr("other", intv(1))
	if err == nil {
		t.Fatal("Undeclared attribute write succeeded on a slots-only instance")
	}
	var attrErr *AttrError
	if !errors.As(err, &attrErr) {
		t.Fatalf("Error is %T, want *AttrError", err)
	}
	if attrErr.Op != "set" || attrErr.Name != "other" {
		t.Errorf("AttrError reports %s %q", attrErr.Op, attrErr.Name)
	}
}

func TestStorageModeRules(t *testing.T) {
	rt := NewRuntime()
	open, err := rt.NewClass("Open", nil, ClassSpec{})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	if !open.Dynamic() {
		t.Error("Slotless class is not dynamic")
	}

	// Slots under a dynamic parent cannot close the dict again.
	narrowed, err := rt.NewClass("Narrowed", open, ClassSpec{Slots: []string{"x"}})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	if !narrowed.Dynamic() {
		t.Error("Child of a dynamic class lost the dict")
	}

	sealed, err := rt.NewClass("SealedBase", nil, ClassSpec{Slots: []string{"x"}})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	widened, err := rt.NewClass("Widened", sealed, ClassSpec{})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	if !widened.Dynamic() {
		t.Error("Slotless child of a slotted class is not dynamic")
	}

	both, err := rt.NewClass("Both", sealed, ClassSpec{Slots: []string{"y"}, Dynamic: true})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	if !both.Dynamic() {
		t.Error("Dynamic flag on a slotted class was ignored")
	}
	inst := NewInstance(both)
	if err := inst.SetAttr("y", intv(1)); err != nil {
		t.Errorf("Slot write failed: %v", err)
	}
	if err := inst.SetAttr("extra", intv(2)); err != nil {
		t.Errorf("Dict write failed on a Dynamic slotted class: %v", err)
	}
}

func TestSlotOrderAcrossChain(t *testing.T) {
	rt := NewRuntime()
	base, err := rt.NewClass("SlotBase", nil, ClassSpec{Slots: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	child, err := rt.NewClass("SlotChild", base, ClassSpec{Slots: []string{"c", "a"}})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	got := child.SlotNames()
	if len(got) != len(want) {
		t.Fatalf("SlotNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SlotNames()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInstanceAttrResolution(t *testing.T) {
	rt := NewRuntime()
	fn := NewFunction("tally", func(args []Object, kwargs Kwargs) (Object, error) {
		return NewTuple(args...), nil
	})
	cls, err := rt.NewClass("Holder", nil, ClassSpec{
		Init: storeInit("x"),
		Attrs: map[string]Object{
			"tally": NewMethod("tally", fn),
			"limit": intv(10),
		},
	})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	inst := construct(t, cls, []Object{intv(1)}, nil)

	// Own storage shadows the class table.
	if err := inst.SetAttr("limit", intv(99)); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	v, err := inst.GetAttr("limit")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if !Equal(v, intv(99)) {
		t.Errorf("GetAttr(limit) = %s, want the instance value", v.Inspect())
	}

	// Class constants come back untouched.
	fresh := construct(t, cls, []Object{intv(2)}, nil)
	v, err = fresh.GetAttr("limit")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if v.(*Integer).Value != 10 {
		t.Errorf("GetAttr(limit) = %s, want 10", v.Inspect())
	}

	// Bindables come back bound to the instance.
	v, err = fresh.GetAttr("tally")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if _, ok := v.(*BoundCall); !ok {
		t.Fatalf("GetAttr(tally) = %T, want *BoundCall", v)
	}

	_, err = fresh.GetAttr("missing")
	if err == nil {
		t.Fatal("GetAttr(missing) succeeded")
	}
	var attrErr *AttrError
	if !errors.As(err, &attrErr) {
		t.Errorf("Error is %T, want *AttrError", err)
	}
}

func TestOwnAttrNames(t *testing.T) {
	rt := NewRuntime()
	cls, err := rt.NewClass("Mixed", nil, ClassSpec{Slots: []string{"s1", "s2"}, Dynamic: true})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	inst := NewInstance(cls)
	if names := inst.OwnAttrNames(); len(names) != 0 {
		t.Fatalf("Fresh instance reports attributes: %v", names)
	}
	if err := inst.SetAttr("s2", intv(1)); err != nil {
		t.Fatal(err)
	}
	if err := inst.SetAttr("zz", intv(2)); err != nil {
		t.Fatal(err)
	}
	if err := inst.SetAttr("aa", intv(3)); err != nil {
		t.Fatal(err)
	}

	want := []string{"aa", "s2", "zz"}
	got := inst.OwnAttrNames()
	if len(got) != len(want) {
		t.Fatalf("OwnAttrNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OwnAttrNames()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInstanceInspect(t *testing.T) {
	rt := NewRuntime()
	cls, err := rt.NewClass("Widget", nil, ClassSpec{})
	if err != nil {
		t.Fatalf("NewClass failed: %v", err)
	}
	a := NewInstance(cls)
	b := NewInstance(cls)
	if a.ID() == b.ID() {
		t.Error("Two instances share an id")
	}
	if a.Inspect() == b.Inspect() {
		t.Errorf("Inspect() is not distinguishing instances: %s", a.Inspect())
	}
}
