package object

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Native wraps a Go value for use inside the runtime. It opts in to the
// attribute capability surface with a plain key/value bag, so wrapped
// host values can take part in attribute migration like any instance.
type Native struct {
	Value interface{}

	mu    sync.RWMutex
	attrs map[string]Object
}

func NewNative(v interface{}) *Native {
	return &Native{Value: v}
}

func (h *Native) Type() ObjectType { return NATIVE_OBJ }

func (h *Native) Inspect() string {
	return fmt.Sprintf("<Native: %T %+v>", h.Value, h.Value)
}

func (h *Native) Class() *Class { return NativeClass }

func (h *Native) Hash() uint32 {
	// Best effort hash
	if h.Value == nil {
		return 0
	}
	// Use address if possible
	val := reflect.ValueOf(h.Value)
	switch val.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Chan, reflect.Func, reflect.Map, reflect.Slice:
		return uint32(val.Pointer())
	default:
		// Fallback to string representation hash
		return hashString(fmt.Sprintf("%v", h.Value))
	}
}

func (h *Native) GetAttr(name string) (Object, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if v, ok := h.attrs[name]; ok {
		return v, nil
	}
	return nil, &AttrError{Target: h.Inspect(), Name: name, Op: "get"}
}

func (h *Native) SetAttr(name string, val Object) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.attrs == nil {
		h.attrs = make(map[string]Object)
	}
	h.attrs[name] = val
	return nil
}

func (h *Native) OwnAttrNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.attrs))
	for k := range h.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
