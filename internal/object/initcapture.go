package object

import (
	"time"

	"github.com/dynkit/retype/internal/config"
)

// InitCapture wraps an initializer. Before delegating it attaches the
// construction arguments to the receiver, at most once per instance,
// so factories declared on a base class can replay them later through
// MethodRebinder. The wrapper itself holds no binding state; every
// access goes through a fresh BoundCall.
type InitCapture struct {
	fn       Object
	bindable Bindable // non-nil when fn itself binds, decided once at wrap time
	abstract bool
}

func NewInitCapture(fn Object) (*InitCapture, error) {
	if fn == nil {
		return nil, &NotCallableError{Got: NIL_OBJ}
	}
	w := &InitCapture{fn: fn}
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
func (w *InitCapture) Wrapped() Object { return w.fn }

// IsAbstract mirrors the wrapped callable's abstractness, read-only.
func (w *InitCapture) IsAbstract() bool { return w.abstract }

func (w *InitCapture) Type() ObjectType { return INIT_CAPTURE_OBJ }
func (w *InitCapture) Inspect() string  { return "init-capture(" + w.fn.Inspect() + ")" }
func (w *InitCapture) Class() *Class    { return CallableClass }
func (w *InitCapture) Hash() uint32     { return hashString("init-capture:") ^ w.fn.Hash() }

// Bind resolves class-path access to a plain callable and instance
// access to a fresh bound call on the wrapper.
func (w *InitCapture) Bind(recv Object, owner *Class) (Object, error) {
	if recv == nil {
		if w.bindable != nil {
			return w.bindable.Bind(nil, owner)
		}
		return w.fn, nil
	}
	return &BoundCall{Receiver: recv, Owner: owner, Target: w}, nil
}

func (w *InitCapture) resolve(recv Object, owner *Class) (Caller, error) {
	if w.bindable != nil {
		bound, err := w.bindable.Bind(recv, owner)
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

// Call invokes the wrapper as a free function: no receiver, no owner,
// nothing captured.
func (w *InitCapture) Call(args []Object, kwargs Kwargs) (Object, error) {
	return w.CallBound(nil, nil, args, kwargs)
}

// CallBound resolves the effective initializer, records the
// construction arguments when a receiver without a record is present,
// then delegates with the arguments unchanged. A failed record write
// aborts before the initializer runs.
func (w *InitCapture) CallBound(recv Object, owner *Class, args []Object, kwargs Kwargs) (Object, error) {
	resolved, err := w.resolve(recv, owner)
	if err != nil {
		return nil, err
	}
	rt := runtimeOf(owner, recv)
	if recv == nil && owner == nil {
		return w.invoke(rt, resolved, "", args, kwargs)
	}
	if recv != nil {
		if err := captureRecord(rt, recv, owner, args, kwargs); err != nil {
			return nil, err
		}
	}
	ownerName := ""
	if owner != nil {
		ownerName = owner.Name
	}
	return w.invoke(rt, resolved, ownerName, args, kwargs)
}

func (w *InitCapture) invoke(rt *Runtime, resolved Caller, ownerName string, args []Object, kwargs Kwargs) (Object, error) {
	start := time.Now()
	out, err := resolved.Call(args, kwargs)
	rt.emitInvoke(InvokeEvent{
		Wrapper:  INIT_CAPTURE_OBJ,
		Name:     callableName(w.fn),
		Class:    ownerName,
		Duration: time.Since(start),
		Err:      err,
	})
	return out, err
}

// captureRecord attaches captured_args = args[1:] (everything after
// the value slot) and captured_kwargs to recv, unless a record is
// already present. Re-initialization never erases the original recipe.
func captureRecord(rt *Runtime, recv Object, owner *Class, args []Object, kwargs Kwargs) error {
	setter, ok := recv.(AttrSetter)
	if !ok {
		return &AttrError{
			Target: recv.Inspect(),
			Name:   config.CapturedArgsAttr,
			Op:     "set",
			Reason: "receiver does not accept attributes",
		}
	}
	if getter, ok := recv.(AttrGetter); ok {
		if _, err := getter.GetAttr(config.CapturedArgsAttr); err == nil {
			return nil
		}
	}
	var captured []Object
	if len(args) > 1 {
		captured = append([]Object(nil), args[1:]...)
	}
	if err := setter.SetAttr(config.CapturedArgsAttr, &Tuple{Items: captured}); err != nil {
		return err
	}
	if err := setter.SetAttr(config.CapturedKwargsAttr, RecordFromKwargs(kwargs)); err != nil {
		return err
	}
	ev := CaptureEvent{Args: len(captured), Kwargs: len(kwargs)}
	if owner != nil {
		ev.Class = owner.Name
	}
	if inst, ok := recv.(*Instance); ok {
		ev.Instance = inst.ID()
	}
	rt.emitCapture(ev)
	return nil
}
