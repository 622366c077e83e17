package vm

import "fmt"

// RuntimeError is the taxonomy of failures the VM can raise while
// executing a Chunk (§4.4 "Runtime errors"). Every variant is a distinct
// Go type so callers can recover with a type switch instead of string
// matching.
type RuntimeError interface {
	error
	runtimeErrorNode()
}

type errBase struct{}

func (errBase) runtimeErrorNode() {}

type TypeMismatch struct {
	errBase
	Operation string
	Got       string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch in %s: got %s", e.Operation, e.Got)
}

type ArityMismatch struct {
	errBase
	Name     string
	Expected int
	Got      int
}

func (e *ArityMismatch) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Expected, e.Got)
}

type UndefinedName struct {
	errBase
	Name string
}

func (e *UndefinedName) Error() string { return "undefined name: " + e.Name }

type DivisionByZero struct{ errBase }

func (e *DivisionByZero) Error() string { return "division by zero" }

type IndexOutOfBounds struct {
	errBase
	Index, Length int
}

func (e *IndexOutOfBounds) Error() string {
	return fmt.Sprintf("index %d out of bounds (length %d)", e.Index, e.Length)
}

type KeyNotFound struct {
	errBase
	Key string
}

func (e *KeyNotFound) Error() string { return "key not found: " + e.Key }

type ImmutableAssignment struct {
	errBase
	Name string
}

func (e *ImmutableAssignment) Error() string { return "cannot assign to immutable binding: " + e.Name }

type NonCallable struct {
	errBase
	Got string
}

func (e *NonCallable) Error() string { return "value is not callable: " + e.Got }

// Custom wraps an error raised by a virtual-package capability or a
// native builtin, carrying its own message verbatim (§6 "Capability
// failures surface as an ordinary Mishap").
type Custom struct {
	errBase
	Message string
}

func (e *Custom) Error() string { return e.Message }
