package object

import (
	"bytes"
	"fmt"
	"math"
)

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// NewBool returns the shared Boolean singleton for b.
func NewBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Nil
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "Nil" }
func (n *Nil) Class() *Class    { return NilClass }
func (n *Nil) Hash() uint32     { return 0 }

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) Class() *Class    { return BoolClass }
func (b *Boolean) Hash() uint32 {
	if b.Value {
		return 1
	}
	return 0
}

// Integer
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }
func (i *Integer) Class() *Class    { return IntClass }
func (i *Integer) Hash() uint32 {
	return uint32(i.Value ^ (i.Value >> 32))
}

// Float
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return fmt.Sprintf("%g", f.Value) }
func (f *Float) Class() *Class    { return FloatClass }
func (f *Float) Hash() uint32 {
	bits := math.Float64bits(f.Value)
	return uint32(bits ^ (bits >> 32))
}

// Str
type Str struct {
	Value string
}

func (s *Str) Type() ObjectType { return STR_OBJ }
func (s *Str) Inspect() string  { return fmt.Sprintf("%q", s.Value) }
func (s *Str) Class() *Class    { return StrClass }
func (s *Str) Hash() uint32     { return hashString(s.Value) }

// Tuple is an ordered, immutable-by-convention sequence. The captured
// positional arguments of a construction record are stored as one.
type Tuple struct {
	Items []Object
}

func NewTuple(items ...Object) *Tuple {
	return &Tuple{Items: items}
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	var out bytes.Buffer
	out.WriteString("(")
	for i, item := range t.Items {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(item.Inspect())
	}
	out.WriteString(")")
	return out.String()
}
func (t *Tuple) Class() *Class { return TupleClass }
func (t *Tuple) Hash() uint32 {
	h := uint32(0)
	for _, item := range t.Items {
		h = 31*h + item.Hash()
	}
	return h
}
