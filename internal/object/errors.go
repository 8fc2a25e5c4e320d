package object

import "fmt"

// NotCallableError is returned when a wrapper is constructed around, or
// resolves to, a value that cannot be invoked.
type NotCallableError struct {
	Got ObjectType
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("expected a callable, got %s", e.Got)
}

// AttrError reports a failed attribute operation.
type AttrError struct {
	Target string // Inspect() of the object accessed
	Name   string
	Op     string // "get" or "set"
	Reason string
}

func (e *AttrError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s attribute %q on %s: %s", e.Op, e.Name, e.Target, e.Reason)
	}
	return fmt.Sprintf("cannot %s attribute %q on %s", e.Op, e.Name, e.Target)
}

// ArgumentError reports a bad call or construction argument list.
type ArgumentError struct {
	Callee string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Callee, e.Reason)
}
