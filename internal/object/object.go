package object

import (
	"hash/fnv"
)

type ObjectType string

const (
	NIL_OBJ             = "NIL"
	BOOLEAN_OBJ         = "BOOLEAN"
	INTEGER_OBJ         = "INTEGER"
	FLOAT_OBJ           = "FLOAT"
	STR_OBJ             = "STR"
	TUPLE_OBJ           = "TUPLE"
	RECORD_OBJ          = "RECORD"
	NATIVE_OBJ          = "NATIVE"
	CLASS_OBJ           = "CLASS"
	INSTANCE_OBJ        = "INSTANCE"
	FUNCTION_OBJ        = "FUNCTION"
	METHOD_OBJ          = "METHOD"
	CLASS_METHOD_OBJ    = "CLASS_METHOD"
	BOUND_CALL_OBJ      = "BOUND_CALL"
	INIT_CAPTURE_OBJ    = "INIT_CAPTURE"
	METHOD_REBINDER_OBJ = "METHOD_REBINDER"
)

type Object interface {
	Type() ObjectType
	Inspect() string
	Class() *Class
	Hash() uint32
}

// Kwargs carries the keyword arguments of a call. A nil map means no
// keywords were given.
type Kwargs map[string]Object

// Caller is a plain callable: invocation carries no receiver, the
// argument list is exactly what the call site wrote.
type Caller interface {
	Object
	Call(args []Object, kwargs Kwargs) (Object, error)
}

// BoundCaller is a callable that needs the binding context supplied per
// call. BoundCall pairs one with the (receiver, owner) of a single access.
type BoundCaller interface {
	Object
	CallBound(recv Object, owner *Class, args []Object, kwargs Kwargs) (Object, error)
}

// Bindable is the attribute-binding protocol: class attributes that
// implement it are resolved through Bind on every access instead of
// being returned raw. Binding never mutates the bindable itself.
type Bindable interface {
	Object
	Bind(recv Object, owner *Class) (Object, error)
}

// AttrGetter, AttrSetter and AttrLister are the capability surface for
// per-instance state. Attribute migration works exclusively through
// them, never through reflection over storage internals.
type AttrGetter interface {
	GetAttr(name string) (Object, error)
}

type AttrSetter interface {
	SetAttr(name string, val Object) error
}

type AttrLister interface {
	OwnAttrNames() []string
}

// AbstractMarker reports whether a callable is abstract. Wrappers
// mirror it read-only so interface checks see through them.
type AbstractMarker interface {
	IsAbstract() bool
}

// Helper for hashing strings
func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
