package object

import (
	"time"

	"github.com/dynkit/retype/internal/config"
)

// MethodRebinder wraps a factory-like callable authored on a base
// class. When the factory is reached through a subclass yet keeps
// returning the base type, the wrapper rebuilds the result as the
// accessing class from the receiver's construction record, then
// migrates per-instance state best effort.
type MethodRebinder struct {
	fn       Object
	bindable Bindable // non-nil when fn itself binds, decided once at wrap time
	declared *Class
	abstract bool
}

func NewMethodRebinder(fn Object, declared *Class) (*MethodRebinder, error) {
	if fn == nil {
		return nil, &NotCallableError{Got: NIL_OBJ}
	}
	if declared == nil {
		return nil, &ArgumentError{Callee: "MethodRebinder", Reason: "declared class is required"}
	}
	w := &MethodRebinder{fn: fn, declared: declared}
	if b, ok := fn.(Bindable); ok {
		w.bindable = b
	}
	if _, ok := fn.(Caller); !ok && w.bindable == nil {
		return nil, &NotCallableError{Got: fn.Type()}
	}
	if am, ok := fn.(AbstractMarker); ok {
		w.abstract = am.IsAbstract()
	}
	return w, nil
}

// Wrapped returns the underlying callable.
func (w *MethodRebinder) Wrapped() Object { return w.fn }

// Declared returns the base class the wrapped callable was authored on.
func (w *MethodRebinder) Declared() *Class { return w.declared }

// IsAbstract mirrors the wrapped callable's abstractness, read-only.
func (w *MethodRebinder) IsAbstract() bool { return w.abstract }

func (w *MethodRebinder) Type() ObjectType { return METHOD_REBINDER_OBJ }
func (w *MethodRebinder) Inspect() string {
	return "rebinder(" + w.fn.Inspect() + ", " + w.declared.Name + ")"
}
func (w *MethodRebinder) Class() *Class { return CallableClass }
func (w *MethodRebinder) Hash() uint32 {
	return hashString("rebinder:"+w.declared.Name) ^ w.fn.Hash()
}

// Bind always yields a fresh bound call on the wrapper itself, never
// unwrapping: reconciliation needs the bound context at call time
// whether access went through the class or an instance.
func (w *MethodRebinder) Bind(recv Object, owner *Class) (Object, error) {
	return &BoundCall{Receiver: recv, Owner: owner, Target: w}, nil
}

// resolve binds the wrapped callable against the declared class, not
// the accessing owner. A factory body therefore sees the class it was
// authored on, which is exactly why its result can need upgrading.
func (w *MethodRebinder) resolve(recv Object) (Caller, error) {
	if w.bindable != nil {
		bound, err := w.bindable.Bind(recv, w.declared)
		if err != nil {
			return nil, err
		}
		caller, ok := bound.(Caller)
		if !ok {
			return nil, &NotCallableError{Got: bound.Type()}
		}
		return caller, nil
	}
	return w.fn.(Caller), nil
}

// Call invokes the wrapper as a free function: the raw result is
// returned unchanged, no reconciliation.
func (w *MethodRebinder) Call(args []Object, kwargs Kwargs) (Object, error) {
	return w.CallBound(nil, nil, args, kwargs)
}

func (w *MethodRebinder) CallBound(recv Object, owner *Class, args []Object, kwargs Kwargs) (Object, error) {
	resolved, err := w.resolve(recv)
	if err != nil {
		return nil, err
	}
	rt := runtimeOf(owner, recv)
	if rt == nil {
		rt = w.declared.rt
	}
	ownerName := ""
	if owner != nil {
		ownerName = owner.Name
	}

	start := time.Now()
	raw, err := resolved.Call(args, kwargs)
	rt.emitInvoke(InvokeEvent{
		Wrapper:  METHOD_REBINDER_OBJ,
		Name:     callableName(w.fn),
		Class:    ownerName,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}

	if recv == nil && owner == nil {
		return raw, nil
	}
	if owner == nil {
		return raw, nil
	}
	if IsInstance(raw, owner) {
		return raw, nil
	}
	if !IsInstance(raw, w.declared) {
		return raw, nil
	}

	// The raw result is a declared-class instance reached through a
	// more specific owner: attempt the upgrade.
	source := recv
	if source == nil {
		if len(args) == 0 || !IsInstance(args[0], owner) {
			return raw, nil
		}
		source = args[0]
	}

	capturedArgs, capturedKwargs := readRecord(source)
	combined := make([]Object, 0, len(capturedArgs)+1)
	combined = append(combined, raw)
	combined = append(combined, capturedArgs...)

	var snapshot map[string]struct{}
	if recv != nil {
		snapshot = ownAttrSet(raw)
	}

	upStart := time.Now()
	upgraded, err := owner.Call(combined, capturedKwargs)
	if err != nil {
		rt.emitUpgrade(UpgradeEvent{
			Method:   callableName(w.fn),
			From:     raw.Class().Name,
			To:       owner.Name,
			Declared: w.declared.Name,
			Outcome:  OutcomeFailed,
			Duration: time.Since(upStart),
			Err:      err,
		})
		return nil, err
	}
	if recv != nil {
		w.migrate(rt, snapshot, recv, upgraded)
	}
	rt.emitUpgrade(UpgradeEvent{
		Method:   callableName(w.fn),
		From:     raw.Class().Name,
		To:       owner.Name,
		Declared: w.declared.Name,
		Outcome:  OutcomeUpgraded,
		Duration: time.Since(upStart),
	})
	return upgraded, nil
}

// readRecord pulls the construction record off the recipe source. An
// absent record reads as empty, never as an error: an instance can be
// upgradable even if it was constructed through a path the init
// wrapper never saw.
func readRecord(source Object) ([]Object, Kwargs) {
	getter, ok := source.(AttrGetter)
	if !ok {
		return nil, nil
	}
	var args []Object
	if v, err := getter.GetAttr(config.CapturedArgsAttr); err == nil {
		if t, ok := v.(*Tuple); ok {
			args = t.Items
		}
	}
	var kwargs Kwargs
	if v, err := getter.GetAttr(config.CapturedKwargsAttr); err == nil {
		if r, ok := v.(*Record); ok {
			kwargs = r.Kwargs()
		}
	}
	return args, kwargs
}

// ownAttrSet snapshots an object's set per-instance attribute names.
func ownAttrSet(obj Object) map[string]struct{} {
	set := make(map[string]struct{})
	if lister, ok := obj.(AttrLister); ok {
		for _, name := range lister.OwnAttrNames() {
			set[name] = struct{}{}
		}
	}
	return set
}

// migrationNames lists the attribute names eligible for migration on
// the upgraded value: its set per-instance state plus, for instances,
// every declared slot name of the class chain.
func migrationNames(obj Object) []string {
	lister, ok := obj.(AttrLister)
	if !ok {
		return nil
	}
	names := lister.OwnAttrNames()
	inst, ok := obj.(*Instance)
	if !ok {
		return names
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	for _, n := range inst.Class().SlotNames() {
		if _, dup := seen[n]; !dup {
			names = append(names, n)
		}
	}
	return names
}

// migrate copies receiver state onto the upgraded instance, attribute
// by attribute: names the upgrade gained that the raw result never
// carried, with receiver values overwriting what the constructor set.
// Individual failures are reported and swallowed; migration is not
// atomic and partial migration is an accepted outcome.
func (w *MethodRebinder) migrate(rt *Runtime, rawAttrs map[string]struct{}, recv, upgraded Object) {
	getter, ok := recv.(AttrGetter)
	if !ok {
		return
	}
	setter, ok := upgraded.(AttrSetter)
	if !ok {
		return
	}
	ev := MigrateEvent{}
	if inst, ok := recv.(*Instance); ok {
		ev.From = inst.ID()
	}
	if inst, ok := upgraded.(*Instance); ok {
		ev.To = inst.ID()
	}
	haser, canProbe := recv.(interface{ HasAttr(string) bool })
	for _, name := range migrationNames(upgraded) {
		if _, present := rawAttrs[name]; present {
			continue
		}
		if canProbe && !haser.HasAttr(name) {
			continue
		}
		v, err := getter.GetAttr(name)
		if err != nil {
			ev.Attr, ev.Outcome, ev.Err = name, OutcomeSkipped, err
			rt.emitMigrate(ev)
			continue
		}
		if err := setter.SetAttr(name, v); err != nil {
			ev.Attr, ev.Outcome, ev.Err = name, OutcomeFailed, err
			rt.emitMigrate(ev)
			continue
		}
		ev.Attr, ev.Outcome, ev.Err = name, OutcomeCopied, nil
		rt.emitMigrate(ev)
	}
}
