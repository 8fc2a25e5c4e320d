package object

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Instance is per-class allocated state: a fixed slot array for the
// declared slot names plus an open dict when the class permits one.
// All storage access is guarded, instances may be shared across
// goroutines.
type Instance struct {
	id    string
	class *Class

	mu    sync.RWMutex
	slots []Object // indexed by class.slotIndex; nil marks unset
	dict  map[string]Object
}

func NewInstance(c *Class) *Instance {
	inst := &Instance{
		id:    uuid.NewString(),
		class: c,
		slots: make([]Object, len(c.slotIndex)),
	}
	if c.dynamic {
		inst.dict = make(map[string]Object)
	}
	return inst
}

func (i *Instance) ID() string { return i.id }

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	short := i.id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("<%s %s>", i.class.Name, short)
}
func (i *Instance) Class() *Class { return i.class }
func (i *Instance) Hash() uint32  { return hashString(i.id) }

// GetOwn reads per-instance storage only, no class chain involved.
func (i *Instance) GetOwn(name string) (Object, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if idx, ok := i.class.slotIndex[name]; ok {
		if v := i.slots[idx]; v != nil {
			return v, true
		}
		return nil, false
	}
	if i.dict != nil {
		if v, ok := i.dict[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// GetAttr resolves name like instance attribute access: own storage
// first, then the class chain with bindables bound to (instance,
// instance's class).
func (i *Instance) GetAttr(name string) (Object, error) {
	if v, ok := i.GetOwn(name); ok {
		return v, nil
	}
	if v, _, ok := i.class.Lookup(name); ok {
		return bindValue(v, i, i.class)
	}
	return nil, &AttrError{Target: i.Inspect(), Name: name, Op: "get"}
}

// SetAttr writes a declared slot or, failing that, the dynamic dict.
// Slots-only instances reject undeclared names.
func (i *Instance) SetAttr(name string, val Object) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if idx, ok := i.class.slotIndex[name]; ok {
		i.slots[idx] = val
		return nil
	}
	if i.dict != nil {
		i.dict[name] = val
		return nil
	}
	return &AttrError{
		Target: i.Inspect(),
		Name:   name,
		Op:     "set",
		Reason: "not a declared slot and instance does not accept new attributes",
	}
}

// HasAttr reports whether GetAttr would succeed.
func (i *Instance) HasAttr(name string) bool {
	if _, ok := i.GetOwn(name); ok {
		return true
	}
	_, _, ok := i.class.Lookup(name)
	return ok
}

// OwnAttrNames lists the instance's set per-instance state, sorted:
// dict keys plus slot names that hold a value.
func (i *Instance) OwnAttrNames() []string {
	i.mu.RLock()
	names := make([]string, 0, len(i.dict)+len(i.slots))
	for name, idx := range i.class.slotIndex {
		if i.slots[idx] != nil {
			names = append(names, name)
		}
	}
	for name := range i.dict {
		names = append(names, name)
	}
	i.mu.RUnlock()
	sort.Strings(names)
	return names
}
