package object

import "fmt"

// BoundCall pairs a callable with the receiver and owner of a single
// attribute access. One is allocated per access and never shared, so
// concurrent or re-entrant accesses to the same class attribute cannot
// observe each other's binding.
type BoundCall struct {
	Receiver Object // nil for class-path access
	Owner    *Class
	Target   BoundCaller
}

func (b *BoundCall) Type() ObjectType { return BOUND_CALL_OBJ }

func (b *BoundCall) Inspect() string {
	switch {
	case b.Receiver != nil:
		return fmt.Sprintf("bound %s of %s", b.Target.Inspect(), b.Receiver.Inspect())
	case b.Owner != nil:
		return fmt.Sprintf("bound %s of %s", b.Target.Inspect(), b.Owner.Inspect())
	default:
		return fmt.Sprintf("bound %s", b.Target.Inspect())
	}
}

func (b *BoundCall) Class() *Class { return CallableClass }

func (b *BoundCall) Hash() uint32 {
	h := b.Target.Hash()
	if b.Receiver != nil {
		h = 31*h + b.Receiver.Hash()
	}
	if b.Owner != nil {
		h = 31*h + b.Owner.Hash()
	}
	return h
}

func (b *BoundCall) Call(args []Object, kwargs Kwargs) (Object, error) {
	return b.Target.CallBound(b.Receiver, b.Owner, args, kwargs)
}
