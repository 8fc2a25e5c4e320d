package object

import (
	"bytes"
	"sort"
)

// RecordField is a single key/value pair in a Record.
type RecordField struct {
	Key   string
	Value Object
}

// Record is a string-keyed value bag backed by a sorted slice of
// fields, compact in memory with O(log N) access. The captured keyword
// arguments of a construction record are stored as one.
type Record struct {
	Fields []RecordField // Sorted by Key
}

// NewRecord creates a Record from a map of fields.
func NewRecord(fieldMap map[string]Object) *Record {
	fields := make([]RecordField, 0, len(fieldMap))
	for k, v := range fieldMap {
		fields = append(fields, RecordField{Key: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})
	return &Record{Fields: fields}
}

// RecordFromKwargs materializes the keyword arguments of a call as a
// Record. A nil map yields an empty Record, not nil.
func RecordFromKwargs(kwargs Kwargs) *Record {
	if len(kwargs) == 0 {
		return &Record{}
	}
	return NewRecord(kwargs)
}

// Get returns the value for a key, or nil if not found.
func (r *Record) Get(key string) Object {
	idx := sort.Search(len(r.Fields), func(i int) bool {
		return r.Fields[i].Key >= key
	})
	if idx < len(r.Fields) && r.Fields[idx].Key == key {
		return r.Fields[idx].Value
	}
	return nil
}

// Set updates the value for a key in place, or inserts it keeping the
// fields sorted.
func (r *Record) Set(key string, val Object) {
	idx := sort.Search(len(r.Fields), func(i int) bool {
		return r.Fields[i].Key >= key
	})
	if idx < len(r.Fields) && r.Fields[idx].Key == key {
		r.Fields[idx].Value = val
		return
	}
	r.Fields = append(r.Fields, RecordField{})
	copy(r.Fields[idx+1:], r.Fields[idx:])
	r.Fields[idx] = RecordField{Key: key, Value: val}
}

// Keys returns the field names in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Kwargs converts the Record back into a keyword-argument map.
func (r *Record) Kwargs() Kwargs {
	if len(r.Fields) == 0 {
		return nil
	}
	kw := make(Kwargs, len(r.Fields))
	for _, f := range r.Fields {
		kw[f.Key] = f.Value
	}
	return kw
}

func (r *Record) Len() int { return len(r.Fields) }

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, field := range r.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(field.Key)
		out.WriteString(": ")
		out.WriteString(field.Value.Inspect())
	}
	out.WriteString("}")
	return out.String()
}
func (r *Record) Class() *Class { return RecordClass }
func (r *Record) Hash() uint32 {
	h := uint32(0)
	for _, field := range r.Fields {
		h = 31*h + (hashString(field.Key) ^ (field.Value.Hash() * 31))
	}
	return h
}
