package object

// Equal reports structural equality for data values and identity for
// classes, instances and callables.
func Equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Integer:
		bv, ok := b.(*Integer)
		return ok && av.Value == bv.Value
	case *Float:
		bv, ok := b.(*Float)
		return ok && av.Value == bv.Value
	case *Str:
		bv, ok := b.(*Str)
		return ok && av.Value == bv.Value
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Record:
		bv, ok := b.(*Record)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Key != bv.Fields[i].Key {
				return false
			}
			if !Equal(av.Fields[i].Value, bv.Fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
