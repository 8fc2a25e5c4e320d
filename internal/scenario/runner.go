package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dynkit/retype/internal/config"
	"github.com/dynkit/retype/internal/object"
)

// Run executes all steps of a scenario against a fresh runtime. The
// optional hooks observe the protocol while the scenario runs; nil
// entries are skipped. World construction problems are returned as
// errors; step outcomes land in the result.
func Run(s *Scenario, hooks ...object.Hook) (*RunResult, error) {
	var opts []object.Option
	for _, h := range hooks {
		if h != nil {
			opts = append(opts, object.WithHook(h))
		}
	}
	rt := object.NewRuntime(opts...)

	classes, err := buildWorld(rt, s.Classes)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Steps),
	}
	vars := make(map[string]object.Object)

	for i, step := range s.Steps {
		sr := StepResult{Index: i + 1}
		sr.Kind, sr.Passed, sr.Reason = runStep(step, classes, vars)
		if sr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Steps = append(result.Steps, sr)
	}
	return result, nil
}

// LoadFile parses one scenario YAML file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	return &s, nil
}

// LoadAndRun loads a scenario file and runs it.
func LoadAndRun(path string, hooks ...object.Hook) (*RunResult, error) {
	s, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	result, err := Run(s, hooks...)
	if err != nil {
		return nil, err
	}
	result.File = path
	return result, nil
}

// ListFiles returns the scenario files directly under dir, sorted by
// name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range config.ScenarioFileExtensions {
			if strings.HasSuffix(e.Name(), ext) {
				out = append(out, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return out, nil
}

func buildWorld(rt *object.Runtime, defs []ClassDef) (map[string]*object.Class, error) {
	classes := make(map[string]*object.Class, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("class without a name")
		}
		var base *object.Class
		if def.Base != "" {
			b, ok := classes[def.Base]
			if !ok {
				return nil, fmt.Errorf("class %q: unknown base %q", def.Name, def.Base)
			}
			base = b
		}

		spec := object.ClassSpec{
			Slots:   def.Slots,
			Dynamic: def.Dynamic,
			Attrs:   make(map[string]object.Object, len(def.Methods)),
		}
		for _, m := range def.Methods {
			built, err := buildMethod(m, def.Name, classes)
			if err != nil {
				return nil, fmt.Errorf("class %q: %w", def.Name, err)
			}
			spec.Attrs[m.Name] = built
		}
		if len(def.Init) > 0 {
			spec.Init = buildInit(def.Init, def.Covariant)
		}

		var c *object.Class
		var err error
		if def.Covariant {
			if base == nil {
				return nil, fmt.Errorf("class %q: covariant needs a base", def.Name)
			}
			c, err = rt.Derive(def.Name, base, spec)
		} else {
			c, err = rt.NewClass(def.Name, base, spec)
		}
		if err != nil {
			return nil, err
		}
		classes[def.Name] = c
	}
	return classes, nil
}

// buildInit assigns positional arguments to the named attributes. A
// covariant subclass initializer starts after the value slot, a base
// initializer right after the receiver. Keywords assign by name.
func buildInit(names []string, covariant bool) *object.Method {
	start := 1
	if covariant {
		start = 2
	}
	fn := func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
		self, ok := args[0].(object.AttrSetter)
		if !ok {
			return nil, fmt.Errorf("receiver %s does not hold attributes", args[0].Type())
		}
		for i, name := range names {
			idx := start + i
			if idx >= len(args) {
				break
			}
			if err := self.SetAttr(name, args[idx]); err != nil {
				return nil, err
			}
		}
		for _, name := range names {
			if v, ok := kwargs[name]; ok {
				if err := self.SetAttr(name, v); err != nil {
					return nil, err
				}
			}
		}
		return object.NIL, nil
	}
	return object.NewMethod(config.InitMethodName, object.NewFunction(config.InitMethodName, fn))
}

func buildMethod(def MethodDef, declared string, classes map[string]*object.Class) (object.Object, error) {
	var body object.GoFunc
	switch def.Kind {
	case "factory":
		ctorArgs, err := fromYamlList(def.Args)
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", def.Name, err)
		}
		if def.Classmethod {
			body = func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
				if len(args) == 0 {
					return nil, fmt.Errorf("%s: no class bound", def.Name)
				}
				cls, ok := args[0].(*object.Class)
				if !ok {
					return nil, fmt.Errorf("%s: first argument %s is not a class", def.Name, args[0].Type())
				}
				return cls.Call(ctorArgs, nil)
			}
		} else {
			body = func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
				cls, ok := classes[declared]
				if !ok {
					return nil, fmt.Errorf("%s: class %q not built", def.Name, declared)
				}
				return cls.Call(ctorArgs, nil)
			}
		}
	case "getter":
		attr := def.Attr
		body = func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("%s: no receiver", def.Name)
			}
			return object.Attr(args[0], attr)
		}
	case "setter":
		attr := def.Attr
		body = func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
			if len(args) < 2 {
				return nil, fmt.Errorf("%s: needs a receiver and a value", def.Name)
			}
			self, ok := args[0].(object.AttrSetter)
			if !ok {
				return nil, fmt.Errorf("%s: receiver %s does not hold attributes", def.Name, args[0].Type())
			}
			if err := self.SetAttr(attr, args[1]); err != nil {
				return nil, err
			}
			return object.NIL, nil
		}
	case "identity":
		body = func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("%s: no receiver", def.Name)
			}
			return args[0], nil
		}
	case "value":
		val, err := fromYaml(def.Value)
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", def.Name, err)
		}
		body = func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
			return val, nil
		}
	default:
		return nil, fmt.Errorf("method %q: unknown kind %q", def.Name, def.Kind)
	}

	inner := &object.Function{Name: def.Name, Fn: body, Abstract: def.Abstract, Exclude: def.Exclude}
	if def.Classmethod {
		return object.NewClassMethod(def.Name, inner), nil
	}
	return object.NewMethod(def.Name, inner), nil
}

func runStep(step Step, classes map[string]*object.Class, vars map[string]object.Object) (kind string, passed bool, reason string) {
	switch {
	case step.New != nil:
		return "new", runNew(step.New, classes, vars)
	case step.Call != nil:
		return "call", runCall(step.Call, classes, vars)
	case step.Set != nil:
		return "set", runSet(step.Set, vars)
	case step.Expect != nil:
		return "expect", runExpect(step.Expect, vars)
	default:
		return "empty", false, "step has no action"
	}
}

func runNew(st *NewStep, classes map[string]*object.Class, vars map[string]object.Object) (bool, string) {
	cls, ok := classes[st.Class]
	if !ok {
		return false, fmt.Sprintf("unknown class %q", st.Class)
	}
	args, err := resolveList(st.Args, vars)
	if err != nil {
		return false, err.Error()
	}
	kwargs, err := resolveKwargs(st.Kwargs, vars)
	if err != nil {
		return false, err.Error()
	}
	inst, err := cls.Call(args, kwargs)
	if err != nil {
		return false, fmt.Sprintf("%s(...): %v", st.Class, err)
	}
	if st.Var != "" {
		vars[st.Var] = inst
	}
	return true, ""
}

func runCall(st *CallStep, classes map[string]*object.Class, vars map[string]object.Object) (bool, string) {
	target, ok := vars[st.On]
	if !ok {
		if cls, isClass := classes[st.On]; isClass {
			target = cls
		} else {
			return false, fmt.Sprintf("unknown target %q", st.On)
		}
	}
	args, err := resolveList(st.Args, vars)
	if err != nil {
		return false, err.Error()
	}
	kwargs, err := resolveKwargs(st.Kwargs, vars)
	if err != nil {
		return false, err.Error()
	}

	bound, err := object.Attr(target, st.Method)
	if err != nil {
		return false, fmt.Sprintf("attr %s: %v", st.Method, err)
	}
	caller, ok := bound.(object.Caller)
	if !ok {
		return false, fmt.Sprintf("%s is not callable", st.Method)
	}

	result, err := caller.Call(args, kwargs)
	if st.Error != "" {
		if err == nil {
			return false, fmt.Sprintf("expected error containing %q, call succeeded", st.Error)
		}
		if !strings.Contains(err.Error(), st.Error) {
			return false, fmt.Sprintf("expected error containing %q, got %q", st.Error, err.Error())
		}
		return true, ""
	}
	if err != nil {
		return false, fmt.Sprintf("%s.%s(...): %v", st.On, st.Method, err)
	}
	if st.Var != "" {
		vars[st.Var] = result
	}
	return true, ""
}

func runSet(st *SetStep, vars map[string]object.Object) (bool, string) {
	target, ok := vars[st.On]
	if !ok {
		return false, fmt.Sprintf("unknown target %q", st.On)
	}
	setter, ok := target.(object.AttrSetter)
	if !ok {
		return false, fmt.Sprintf("target %s does not hold attributes", target.Type())
	}
	val, err := resolveValue(st.Value, vars)
	if err != nil {
		return false, err.Error()
	}
	if err := setter.SetAttr(st.Attr, val); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func runExpect(st *ExpectStep, vars map[string]object.Object) (bool, string) {
	target, ok := vars[st.On]
	if !ok {
		return false, fmt.Sprintf("unknown target %q", st.On)
	}
	if st.Class != "" {
		cls := target.Class()
		if cls == nil || cls.Name != st.Class {
			got := "<none>"
			if cls != nil {
				got = cls.Name
			}
			return false, fmt.Sprintf("class is %s, want %s", got, st.Class)
		}
	}
	if st.Value != nil {
		want, err := resolveValue(st.Value, vars)
		if err != nil {
			return false, err.Error()
		}
		if !object.Equal(target, want) {
			return false, fmt.Sprintf("value is %s, want %s", target.Inspect(), want.Inspect())
		}
	}
	for name, want := range st.Attrs {
		wantObj, err := resolveValue(want, vars)
		if err != nil {
			return false, err.Error()
		}
		got, err := object.Attr(target, name)
		if err != nil {
			return false, fmt.Sprintf("attr %s: %v", name, err)
		}
		if !object.Equal(got, wantObj) {
			return false, fmt.Sprintf("attr %s is %s, want %s", name, got.Inspect(), wantObj.Inspect())
		}
	}
	if st.Record != nil {
		items, err := fromYamlList(st.Record)
		if err != nil {
			return false, err.Error()
		}
		want := object.NewTuple(items...)
		got, err := object.Attr(target, config.CapturedArgsAttr)
		if err != nil {
			return false, fmt.Sprintf("no construction record: %v", err)
		}
		if !object.Equal(got, want) {
			return false, fmt.Sprintf("record is %s, want %s", got.Inspect(), want.Inspect())
		}
	}
	for _, name := range st.Absent {
		if _, err := object.Attr(target, name); err == nil {
			return false, fmt.Sprintf("attr %s unexpectedly present", name)
		}
	}
	return true, ""
}
