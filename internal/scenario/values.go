package scenario

import (
	"fmt"
	"strings"

	"github.com/dynkit/retype/internal/object"
)

// fromYaml converts Go values coming out of yaml.Unmarshal into
// runtime objects. Whole-valued floats collapse to integers, the way
// YAML readers usually want them.
func fromYaml(data any) (object.Object, error) {
	switch v := data.(type) {
	case nil:
		return object.NIL, nil
	case bool:
		return object.NewBool(v), nil
	case int:
		return &object.Integer{Value: int64(v)}, nil
	case int64:
		return &object.Integer{Value: v}, nil
	case float64:
		if v == float64(int64(v)) {
			return &object.Integer{Value: int64(v)}, nil
		}
		return &object.Float{Value: v}, nil
	case string:
		return &object.Str{Value: v}, nil
	case []any:
		items := make([]object.Object, len(v))
		for i, item := range v {
			obj, err := fromYaml(item)
			if err != nil {
				return nil, err
			}
			items[i] = obj
		}
		return object.NewTuple(items...), nil
	case map[string]any:
		fields := make(map[string]object.Object)
		for k, val := range v {
			obj, err := fromYaml(val)
			if err != nil {
				return nil, err
			}
			fields[k] = obj
		}
		return object.NewRecord(fields), nil
	default:
		return nil, fmt.Errorf("unsupported YAML value type: %T", data)
	}
}

func fromYamlList(items []any) ([]object.Object, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]object.Object, len(items))
	for i, item := range items {
		obj, err := fromYaml(item)
		if err != nil {
			return nil, err
		}
		out[i] = obj
	}
	return out, nil
}

// resolveValue converts one YAML value, resolving "$name" strings to
// stored variables.
func resolveValue(data any, vars map[string]object.Object) (object.Object, error) {
	switch v := data.(type) {
	case string:
		if strings.HasPrefix(v, "$") {
			obj, ok := vars[v[1:]]
			if !ok {
				return nil, fmt.Errorf("unknown variable %q", v)
			}
			return obj, nil
		}
		return &object.Str{Value: v}, nil
	case []any:
		items := make([]object.Object, len(v))
		for i, item := range v {
			obj, err := resolveValue(item, vars)
			if err != nil {
				return nil, err
			}
			items[i] = obj
		}
		return object.NewTuple(items...), nil
	case map[string]any:
		fields := make(map[string]object.Object)
		for k, val := range v {
			obj, err := resolveValue(val, vars)
			if err != nil {
				return nil, err
			}
			fields[k] = obj
		}
		return object.NewRecord(fields), nil
	default:
		return fromYaml(data)
	}
}

func resolveList(items []any, vars map[string]object.Object) ([]object.Object, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]object.Object, len(items))
	for i, item := range items {
		obj, err := resolveValue(item, vars)
		if err != nil {
			return nil, err
		}
		out[i] = obj
	}
	return out, nil
}

func resolveKwargs(m map[string]any, vars map[string]object.Object) (object.Kwargs, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(object.Kwargs, len(m))
	for k, v := range m {
		obj, err := resolveValue(v, vars)
		if err != nil {
			return nil, err
		}
		out[k] = obj
	}
	return out, nil
}
