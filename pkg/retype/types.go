// Package retype is the public surface of the covariant wrapper
// runtime. It re-exports the core object model so embedding programs
// do not import internal packages directly.
package retype

import (
	"github.com/dynkit/retype/internal/object"
)

// Core object model aliases
type Object = object.Object
type ObjectType = object.ObjectType
type Kwargs = object.Kwargs
type GoFunc = object.GoFunc

type Class = object.Class
type ClassSpec = object.ClassSpec
type Instance = object.Instance
type Runtime = object.Runtime
type Option = object.Option

// Callable kinds
type Caller = object.Caller
type Bindable = object.Bindable
type Function = object.Function
type Method = object.Method
type ClassMethod = object.ClassMethod
type BoundCall = object.BoundCall

// Wrapper protocol
type InitCapture = object.InitCapture
type MethodRebinder = object.MethodRebinder

// Value kinds
type Nil = object.Nil
type Boolean = object.Boolean
type Integer = object.Integer
type Float = object.Float
type Str = object.Str
type Tuple = object.Tuple
type Record = object.Record
type Native = object.Native

// Hook surface
type Hook = object.Hook
type BaseHook = object.BaseHook
type CaptureEvent = object.CaptureEvent
type InvokeEvent = object.InvokeEvent
type UpgradeEvent = object.UpgradeEvent
type MigrateEvent = object.MigrateEvent

// Error types
type NotCallableError = object.NotCallableError
type AttrError = object.AttrError
type ArgumentError = object.ArgumentError

// Shared singletons
var (
	NIL   = object.NIL
	TRUE  = object.TRUE
	FALSE = object.FALSE
)

// Constructors and operations
var (
	NewRuntime        = object.NewRuntime
	WithHook          = object.WithHook
	WithLogger        = object.WithLogger
	NewFunction       = object.NewFunction
	NewMethod         = object.NewMethod
	NewClassMethod    = object.NewClassMethod
	NewInitCapture    = object.NewInitCapture
	NewMethodRebinder = object.NewMethodRebinder
	NewTuple          = object.NewTuple
	NewRecord         = object.NewRecord
	NewNative         = object.NewNative
	NewBool           = object.NewBool
	Attr              = object.Attr
	ClassAttr         = object.ClassAttr
	IsInstance        = object.IsInstance
	Equal             = object.Equal
)

// ToObject converts plain Go values into runtime objects. Unhandled
// types are wrapped as Native.
func ToObject(val interface{}) Object {
	if val == nil {
		return NIL
	}
	switch v := val.(type) {
	case Object:
		return v
	case bool:
		return NewBool(v)
	case int:
		return &Integer{Value: int64(v)}
	case int64:
		return &Integer{Value: v}
	case float64:
		return &Float{Value: v}
	case string:
		return &Str{Value: v}
	case []Object:
		return NewTuple(v...)
	case map[string]Object:
		return NewRecord(v)
	}
	return NewNative(val)
}

// Call invokes a callable attribute of obj, the instance-path way:
// the attribute is resolved and bound, then called with args.
func Call(obj Object, name string, args []Object, kwargs Kwargs) (Object, error) {
	v, err := Attr(obj, name)
	if err != nil {
		return nil, err
	}
	caller, ok := v.(Caller)
	if !ok {
		return nil, &NotCallableError{Got: v.Type()}
	}
	return caller.Call(args, kwargs)
}
