package object

import "fmt"

// GoFunc is the Go-side signature of runtime callables. Invocations
// never carry an implicit receiver; binding prepends one explicitly.
type GoFunc func(args []Object, kwargs Kwargs) (Object, error)

// Function is a plain named callable.
type Function struct {
	Name     string
	Fn       GoFunc
	Abstract bool
	// Exclude marks the callable so Derive leaves it unwrapped.
	Exclude bool
}

func NewFunction(name string, fn GoFunc) *Function {
	return &Function{Name: name, Fn: fn}
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "func " + f.Name }
func (f *Function) Class() *Class    { return CallableClass }
func (f *Function) Hash() uint32     { return hashString("func:" + f.Name) }
func (f *Function) IsAbstract() bool { return f.Abstract }

func (f *Function) Call(args []Object, kwargs Kwargs) (Object, error) {
	if f.Fn == nil {
		return nil, &NotCallableError{Got: f.Type()}
	}
	return f.Fn(args, kwargs)
}

// Method makes a plain callable bindable. Instance access prepends the
// receiver; class access hands back the underlying callable so the
// call site supplies the receiver as the first positional argument.
type Method struct {
	Name string
	Fn   Caller
}

func NewMethod(name string, fn Caller) *Method {
	return &Method{Name: name, Fn: fn}
}

func (m *Method) Type() ObjectType { return METHOD_OBJ }
func (m *Method) Inspect() string  { return "method " + m.Name }
func (m *Method) Class() *Class    { return CallableClass }
func (m *Method) Hash() uint32     { return hashString("method:" + m.Name) }

func (m *Method) IsAbstract() bool {
	if am, ok := m.Fn.(AbstractMarker); ok {
		return am.IsAbstract()
	}
	return false
}

func (m *Method) Bind(recv Object, owner *Class) (Object, error) {
	if recv == nil {
		return m.Fn, nil
	}
	return &BoundCall{Receiver: recv, Owner: owner, Target: m}, nil
}

func (m *Method) CallBound(recv Object, owner *Class, args []Object, kwargs Kwargs) (Object, error) {
	if recv == nil {
		return m.Fn.Call(args, kwargs)
	}
	withRecv := make([]Object, 0, len(args)+1)
	withRecv = append(withRecv, recv)
	withRecv = append(withRecv, args...)
	return m.Fn.Call(withRecv, kwargs)
}

// Call invokes the underlying callable with the arguments as given,
// the unbound calling convention.
func (m *Method) Call(args []Object, kwargs Kwargs) (Object, error) {
	return m.Fn.Call(args, kwargs)
}

// ClassMethod binds the owning class instead of the receiver, so a
// factory body sees the class it was resolved against as its first
// argument.
type ClassMethod struct {
	Name string
	Fn   Caller
}

func NewClassMethod(name string, fn Caller) *ClassMethod {
	return &ClassMethod{Name: name, Fn: fn}
}

func (cm *ClassMethod) Type() ObjectType { return CLASS_METHOD_OBJ }
func (cm *ClassMethod) Inspect() string  { return "classmethod " + cm.Name }
func (cm *ClassMethod) Class() *Class    { return CallableClass }
func (cm *ClassMethod) Hash() uint32     { return hashString("classmethod:" + cm.Name) }

func (cm *ClassMethod) IsAbstract() bool {
	if am, ok := cm.Fn.(AbstractMarker); ok {
		return am.IsAbstract()
	}
	return false
}

func (cm *ClassMethod) Bind(recv Object, owner *Class) (Object, error) {
	return &BoundCall{Receiver: recv, Owner: owner, Target: cm}, nil
}

func (cm *ClassMethod) CallBound(recv Object, owner *Class, args []Object, kwargs Kwargs) (Object, error) {
	var cls Object = NIL
	switch {
	case owner != nil:
		cls = owner
	case recv != nil:
		if c := recv.Class(); c != nil {
			cls = c
		}
	}
	withCls := make([]Object, 0, len(args)+1)
	withCls = append(withCls, cls)
	withCls = append(withCls, args...)
	return cm.Fn.Call(withCls, kwargs)
}

// Call invokes without a bound class, mirroring CallBound(nil, nil).
func (cm *ClassMethod) Call(args []Object, kwargs Kwargs) (Object, error) {
	return cm.CallBound(nil, nil, args, kwargs)
}

// callableName names a callable for events and messages.
func callableName(v Object) string {
	switch fn := v.(type) {
	case *Function:
		return fn.Name
	case *Method:
		return fn.Name
	case *ClassMethod:
		return fn.Name
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%s>", v.Type())
	}
}
