package object

import (
	"sync"

	"github.com/dynkit/retype/internal/config"
)

// ClassSpec describes a class under construction.
type ClassSpec struct {
	Slots   []string          // declared slot names; nil means slotless
	Dynamic bool              // instances accept undeclared attributes even with slots
	Init    Object            // initializer callable, stored under config.InitMethodName
	Attrs   map[string]Object // further class attributes (methods, constants)
}

// Class is a first-class runtime class. Classes are objects themselves
// and are callable: calling one constructs an instance.
type Class struct {
	Name string

	parent *Class
	rt     *Runtime

	mu    sync.RWMutex
	attrs map[string]Object

	slots     []string       // declared on this class only
	slotIndex map[string]int // flattened over the chain: name -> instance slot position
	dynamic   bool

	// covariant classes seed a fresh instance from the leading value
	// argument before the initializer runs (Derive output).
	covariant bool
}

func newClass(rt *Runtime, name string, parent *Class, spec ClassSpec) *Class {
	c := &Class{
		Name:   name,
		parent: parent,
		rt:     rt,
		attrs:  make(map[string]Object, len(spec.Attrs)+1),
		slots:  append([]string(nil), spec.Slots...),
	}
	c.slotIndex = make(map[string]int)
	if parent != nil {
		for k, v := range parent.slotIndex {
			c.slotIndex[k] = v
		}
	}
	for _, s := range c.slots {
		if _, ok := c.slotIndex[s]; !ok {
			c.slotIndex[s] = len(c.slotIndex)
		}
	}
	// A slotless class opens a dynamic dict, and once a parent has one
	// the chain cannot close it again. The root class is storage-neutral.
	switch {
	case parent != nil && parent.dynamic:
		c.dynamic = true
	case spec.Slots == nil:
		c.dynamic = true
	default:
		c.dynamic = spec.Dynamic
	}
	// Value seeding is part of the allocation protocol, so every class
	// below a covariant intermediate inherits it.
	if parent != nil && parent.covariant {
		c.covariant = true
	}
	for k, v := range spec.Attrs {
		c.attrs[k] = v
	}
	if spec.Init != nil {
		c.attrs[config.InitMethodName] = spec.Init
	}
	return c
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return "class " + c.Name }
func (c *Class) Class() *Class    { return ClassClass }
func (c *Class) Hash() uint32     { return hashString("class:" + c.Name) }

func (c *Class) Parent() *Class    { return c.parent }
func (c *Class) Runtime() *Runtime { return c.rt }
func (c *Class) Dynamic() bool     { return c.dynamic }

// Covariant reports whether the class was produced by Derive.
func (c *Class) Covariant() bool { return c.covariant }

// SlotNames returns every declared slot name of the chain, in instance
// storage order.
func (c *Class) SlotNames() []string {
	names := make([]string, len(c.slotIndex))
	for name, idx := range c.slotIndex {
		names[idx] = name
	}
	return names
}

// IsSubclassOf walks the parent chain, a class counts as its own subclass.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// GetOwnAttr reads the class's own attribute table, ignoring parents.
func (c *Class) GetOwnAttr(name string) (Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.attrs[name]
	return v, ok
}

// OwnAttrs returns a copy of the class's own attribute table.
func (c *Class) OwnAttrs() map[string]Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Object, len(c.attrs))
	for k, v := range c.attrs {
		out[k] = v
	}
	return out
}

// SetClassAttr installs or replaces a class attribute.
func (c *Class) SetClassAttr(name string, val Object) {
	c.mu.Lock()
	c.attrs[name] = val
	c.mu.Unlock()
}

// Lookup resolves name along the class chain without binding. The
// second result is the class that owns the attribute.
func (c *Class) Lookup(name string) (Object, *Class, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.attrs[name]
		cur.mu.RUnlock()
		if ok {
			return v, cur, true
		}
	}
	return nil, nil, false
}

// IsInstance reports whether obj's class chain includes cls.
func IsInstance(obj Object, cls *Class) bool {
	if obj == nil || cls == nil {
		return false
	}
	return obj.Class().IsSubclassOf(cls)
}

// Call constructs an instance: allocate storage, seed from the value
// argument for covariant classes, then resolve and run the initializer
// through the binding primitive.
func (c *Class) Call(args []Object, kwargs Kwargs) (Object, error) {
	inst := NewInstance(c)
	if c.covariant && len(args) > 0 {
		if err := seedInstance(inst, args[0]); err != nil {
			return nil, err
		}
	}
	initObj, _, ok := c.Lookup(config.InitMethodName)
	if !ok {
		if len(args) > 0 || len(kwargs) > 0 {
			return nil, &ArgumentError{Callee: c.Name, Reason: "class defines no initializer but construction arguments were given"}
		}
		return inst, nil
	}
	bound, err := bindValue(initObj, inst, c)
	if err != nil {
		return nil, err
	}
	caller, ok := bound.(Caller)
	if !ok {
		return nil, &NotCallableError{Got: bound.Type()}
	}
	if _, err := caller.Call(args, kwargs); err != nil {
		return nil, err
	}
	return inst, nil
}

// seedInstance copies the value argument's per-instance state onto a
// freshly allocated instance, before its initializer runs. Values that
// do not expose attributes seed nothing.
func seedInstance(inst *Instance, value Object) error {
	lister, ok := value.(AttrLister)
	if !ok {
		return nil
	}
	getter, ok := value.(AttrGetter)
	if !ok {
		return nil
	}
	for _, name := range lister.OwnAttrNames() {
		v, err := getter.GetAttr(name)
		if err != nil {
			continue
		}
		if err := inst.SetAttr(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Built-in classes. They are shared across runtimes and carry no
// runtime pointer, so no hooks fire for them.
var (
	ObjectClass   = &Class{Name: config.RootClassName, attrs: map[string]Object{}, slotIndex: map[string]int{}}
	NilClass      = builtinClass(config.NilClassName)
	BoolClass     = builtinClass(config.BoolClassName)
	IntClass      = builtinClass(config.IntClassName)
	FloatClass    = builtinClass(config.FloatClassName)
	StrClass      = builtinClass(config.StrClassName)
	TupleClass    = builtinClass(config.TupleClassName)
	RecordClass   = builtinClass(config.RecordClassName)
	NativeClass   = builtinClass(config.NativeClassName)
	ClassClass    = builtinClass(config.ClassClassName)
	CallableClass = builtinClass(config.CallableClassName)
)

func builtinClass(name string) *Class {
	return &Class{
		Name:      name,
		parent:    ObjectClass,
		attrs:     map[string]Object{},
		slotIndex: map[string]int{},
	}
}
