package object

import (
	"log/slog"
	"sync"

	"github.com/dynkit/retype/internal/config"
)

// Runtime owns a class registry, the derive cache and the hook chain.
// Classes created through different runtimes are unrelated even when
// their names match.
type Runtime struct {
	mu      sync.RWMutex
	classes map[string]*Class

	hooks  []Hook
	logger *slog.Logger

	deriveMu sync.Mutex
	derived  map[*Class]*Class // base -> covariant intermediate
}

type Option func(*Runtime)

// WithHook appends a hook; hooks run in registration order.
func WithHook(h Hook) Option {
	return func(rt *Runtime) { rt.hooks = append(rt.hooks, h) }
}

// WithLogger sets the runtime logger, used for protocol debug lines
// such as swallowed migration failures.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		classes: make(map[string]*Class),
		derived: make(map[*Class]*Class),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(rt)
	}
	for _, c := range []*Class{
		ObjectClass, NilClass, BoolClass, IntClass, FloatClass, StrClass,
		TupleClass, RecordClass, NativeClass, ClassClass, CallableClass,
	} {
		rt.classes[c.Name] = c
	}
	return rt
}

func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// NewClass builds and registers a plain class. The name must be free
// and the spec must not touch the reserved record attributes.
func (rt *Runtime) NewClass(name string, parent *Class, spec ClassSpec) (*Class, error) {
	if name == "" {
		return nil, &ArgumentError{Callee: "NewClass", Reason: "class name must not be empty"}
	}
	if err := checkReserved(spec); err != nil {
		return nil, err
	}
	if parent == nil {
		parent = ObjectClass
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, exists := rt.classes[name]; exists {
		return nil, &ArgumentError{Callee: "NewClass", Reason: "class " + name + " already defined"}
	}
	c := newClass(rt, name, parent, spec)
	rt.classes[name] = c
	return c, nil
}

func checkReserved(spec ClassSpec) error {
	for _, s := range spec.Slots {
		if s == config.CapturedArgsAttr || s == config.CapturedKwargsAttr {
			return &ArgumentError{Callee: "NewClass", Reason: "slot name " + s + " is reserved"}
		}
	}
	for k := range spec.Attrs {
		if k == config.CapturedArgsAttr || k == config.CapturedKwargsAttr {
			return &ArgumentError{Callee: "NewClass", Reason: "attribute name " + k + " is reserved"}
		}
	}
	return nil
}

// Lookup finds a registered class by name.
func (rt *Runtime) Lookup(name string) (*Class, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	c, ok := rt.classes[name]
	return c, ok
}

// ClassNames returns the registered user class names, unordered.
func (rt *Runtime) ClassNames() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	names := make([]string, 0, len(rt.classes))
	for name := range rt.classes {
		names = append(names, name)
	}
	return names
}

// Emit helpers are nil-receiver safe: wrapper code paths reached
// through runtime-less classes simply observe nothing.

func (rt *Runtime) emitCapture(ev CaptureEvent) {
	if rt == nil {
		return
	}
	for _, h := range rt.hooks {
		h.OnCapture(ev)
	}
}

func (rt *Runtime) emitInvoke(ev InvokeEvent) {
	if rt == nil {
		return
	}
	for _, h := range rt.hooks {
		h.OnInvoke(ev)
	}
}

func (rt *Runtime) emitUpgrade(ev UpgradeEvent) {
	if rt == nil {
		return
	}
	for _, h := range rt.hooks {
		h.OnUpgrade(ev)
	}
}

func (rt *Runtime) emitMigrate(ev MigrateEvent) {
	if rt == nil {
		return
	}
	for _, h := range rt.hooks {
		h.OnMigrate(ev)
	}
	if ev.Err != nil {
		rt.logger.Debug("attribute migration skipped",
			"attr", ev.Attr, "from", ev.From, "to", ev.To, "err", ev.Err)
	}
}

// runtimeOf picks the runtime a wrapper call should report through:
// the owner's, else the receiver's class's.
func runtimeOf(owner *Class, recv Object) *Runtime {
	if owner != nil && owner.rt != nil {
		return owner.rt
	}
	if recv != nil {
		if c := recv.Class(); c != nil {
			return c.rt
		}
	}
	return nil
}
