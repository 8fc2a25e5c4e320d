// Package scenario runs YAML-described wrapper protocol flows against
// a fresh runtime, for conformance checks and demos. String arguments
// beginning with "$" reference variables stored by earlier steps.
package scenario

// ClassDef declares one class in a scenario world. Classes are built
// in order, so a base must appear before its subclasses.
type ClassDef struct {
	Name      string      `yaml:"name"`
	Base      string      `yaml:"base,omitempty"`
	Covariant bool        `yaml:"covariant,omitempty"` // derive through the wrapper protocol
	Slots     []string    `yaml:"slots,omitempty"`
	Dynamic   bool        `yaml:"dynamic,omitempty"`
	Init      []string    `yaml:"init,omitempty"` // attr names filled from positional args
	Methods   []MethodDef `yaml:"methods,omitempty"`
}

// MethodDef declares one canned method body.
//
// Kinds: "factory" constructs the declaring class, "getter" reads
// attr, "setter" writes attr, "identity" returns the receiver,
// "value" returns a literal.
type MethodDef struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Attr        string `yaml:"attr,omitempty"`
	Value       any    `yaml:"value,omitempty"`
	Args        []any  `yaml:"args,omitempty"` // factory constructor arguments
	Classmethod bool   `yaml:"classmethod,omitempty"`
	Abstract    bool   `yaml:"abstract,omitempty"`
	Exclude     bool   `yaml:"exclude,omitempty"`
}

// Step is one scenario action. Exactly one field should be set.
type Step struct {
	New    *NewStep    `yaml:"new,omitempty"`
	Call   *CallStep   `yaml:"call,omitempty"`
	Set    *SetStep    `yaml:"set,omitempty"`
	Expect *ExpectStep `yaml:"expect,omitempty"`
}

// NewStep constructs an instance and stores it under Var.
type NewStep struct {
	Var    string         `yaml:"var"`
	Class  string         `yaml:"class"`
	Args   []any          `yaml:"args,omitempty"`
	Kwargs map[string]any `yaml:"kwargs,omitempty"`
}

// CallStep invokes a method on a stored variable or a class. When
// Error is set the call must fail with a message containing it.
type CallStep struct {
	Var    string         `yaml:"var,omitempty"` // stores the result when set
	On     string         `yaml:"on"`
	Method string         `yaml:"method"`
	Args   []any          `yaml:"args,omitempty"`
	Kwargs map[string]any `yaml:"kwargs,omitempty"`
	Error  string         `yaml:"error,omitempty"`
}

// SetStep writes an attribute on a stored variable.
type SetStep struct {
	On    string `yaml:"on"`
	Attr  string `yaml:"attr"`
	Value any    `yaml:"value"`
}

// ExpectStep asserts on a stored variable: its class, its value as a
// whole, attribute values, the captured construction record, and
// absent attributes.
type ExpectStep struct {
	On     string         `yaml:"on"`
	Class  string         `yaml:"class,omitempty"`
	Value  any            `yaml:"value,omitempty"`
	Attrs  map[string]any `yaml:"attrs,omitempty"`
	Record []any          `yaml:"record,omitempty"`
	Absent []string       `yaml:"absent,omitempty"`
}

// Scenario is a named world plus the steps to run in it.
type Scenario struct {
	Name    string     `yaml:"name"`
	Classes []ClassDef `yaml:"classes"`
	Steps   []Step     `yaml:"steps"`
}

// StepResult is the outcome of executing one step.
type StepResult struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// RunResult is the outcome of running all steps in one scenario.
type RunResult struct {
	File   string       `json:"file,omitempty"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Steps  []StepResult `json:"steps"`
}
