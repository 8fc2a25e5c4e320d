package object

import "github.com/dynkit/retype/internal/config"

// initIntercept is the initializer installed on covariant bases. It
// swallows construction arguments so deriving does not fall through to
// the base initializer; attribute state flows through value seeding
// and migration instead.
var initIntercept = NewMethod(config.InitMethodName,
	NewFunction(config.InitMethodName, func(args []Object, kwargs Kwargs) (Object, error) {
		return NIL, nil
	}))

// CovariantBase returns the covariant intermediate for base, one per
// (runtime, base) pair: a subclass that seeds instances from the value
// argument, extends slotted bases with the reserved record slots and
// intercepts the initializer chain.
func (rt *Runtime) CovariantBase(base *Class) (*Class, error) {
	if base == nil {
		return nil, &ArgumentError{Callee: "CovariantBase", Reason: "base class is required"}
	}
	rt.deriveMu.Lock()
	defer rt.deriveMu.Unlock()
	if iv, ok := rt.derived[base]; ok {
		return iv, nil
	}
	spec := ClassSpec{}
	if len(base.slotIndex) > 0 {
		spec.Slots = []string{config.CapturedArgsAttr, config.CapturedKwargsAttr}
	}
	iv := newClass(rt, "Covariant("+base.Name+")", base, spec)
	iv.covariant = true
	iv.SetClassAttr(config.InitMethodName, initIntercept)
	rt.mu.Lock()
	rt.classes[iv.Name] = iv
	rt.mu.Unlock()
	rt.derived[base] = iv
	return iv, nil
}

// Derive builds a subclass of base with the covariant wrappers
// installed: base-authored callables (and subclass overrides of them)
// are wrapped with MethodRebinder against base, and the initializer is
// wrapped with InitCapture so construction arguments are recorded.
// Callables marked Exclude and subclass-only callables stay unwrapped.
func (rt *Runtime) Derive(name string, base *Class, spec ClassSpec) (*Class, error) {
	if base == nil {
		return nil, &ArgumentError{Callee: "Derive", Reason: "base class is required"}
	}
	iv, err := rt.CovariantBase(base)
	if err != nil {
		return nil, err
	}
	sub, err := rt.NewClass(name, iv, ClassSpec{Slots: spec.Slots, Dynamic: spec.Dynamic, Attrs: spec.Attrs})
	if err != nil {
		return nil, err
	}

	for attrName, v := range base.OwnAttrs() {
		if attrName == config.InitMethodName {
			continue
		}
		if !isCallableValue(v) {
			continue
		}
		if _, rootOwned := ObjectClass.GetOwnAttr(attrName); rootOwned {
			continue
		}
		if _, overridden := spec.Attrs[attrName]; overridden {
			continue
		}
		wrapped, err := NewMethodRebinder(v, base)
		if err != nil {
			return nil, err
		}
		sub.SetClassAttr(attrName, wrapped)
	}

	for attrName, v := range spec.Attrs {
		if attrName == config.InitMethodName {
			continue
		}
		if !isCallableValue(v) {
			continue
		}
		if _, onBase := base.GetOwnAttr(attrName); !onBase {
			continue
		}
		if isExcluded(v) {
			continue
		}
		wrapped, err := NewMethodRebinder(v, base)
		if err != nil {
			return nil, err
		}
		sub.SetClassAttr(attrName, wrapped)
	}

	initFn := spec.Init
	if initFn == nil {
		if v, ok := spec.Attrs[config.InitMethodName]; ok {
			initFn = v
		}
	}
	if initFn == nil {
		initFn = initIntercept
	}
	capture, err := NewInitCapture(initFn)
	if err != nil {
		return nil, err
	}
	sub.SetClassAttr(config.InitMethodName, capture)
	return sub, nil
}

func isCallableValue(v Object) bool {
	if _, ok := v.(Caller); ok {
		return true
	}
	_, ok := v.(Bindable)
	return ok
}

func isExcluded(v Object) bool {
	switch fn := v.(type) {
	case *Function:
		return fn.Exclude
	case *Method:
		return isExcluded(fn.Fn)
	case *ClassMethod:
		return isExcluded(fn.Fn)
	default:
		return false
	}
}
