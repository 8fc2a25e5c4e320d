package object

// bindValue runs the binding protocol for a single resolved class
// attribute. Non-bindable values pass through untouched; a failing
// forwarded bind propagates its error unmodified.
func bindValue(v Object, recv Object, owner *Class) (Object, error) {
	if b, ok := v.(Bindable); ok {
		return b.Bind(recv, owner)
	}
	return v, nil
}

// Attr resolves name on obj the way instance-path access does. For
// instances that is own storage first, then the class chain with
// bindables bound to (obj, obj's class). Classes take the class path.
// Other objects consult their attribute capability, then their
// built-in class.
func Attr(obj Object, name string) (Object, error) {
	if inst, ok := obj.(*Instance); ok {
		return inst.GetAttr(name)
	}
	if cls, ok := obj.(*Class); ok {
		return ClassAttr(cls, name)
	}
	if g, ok := obj.(AttrGetter); ok {
		if v, err := g.GetAttr(name); err == nil {
			return v, nil
		}
	}
	if cls := obj.Class(); cls != nil {
		if v, _, ok := cls.Lookup(name); ok {
			return bindValue(v, obj, cls)
		}
	}
	return nil, &AttrError{Target: obj.Inspect(), Name: name, Op: "get"}
}

// ClassAttr resolves name for class-path access: the chain is searched
// and bindables bind to (no receiver, cls).
func ClassAttr(cls *Class, name string) (Object, error) {
	if v, _, ok := cls.Lookup(name); ok {
		return bindValue(v, nil, cls)
	}
	return nil, &AttrError{Target: cls.Inspect(), Name: name, Op: "get"}
}
