package evaluator

import "github.com/langweave/glyph/internal/vm"

// Environment is a chain of lexical scopes, the tree-walker's equivalent of
// the compiler's local-slot table: each name maps to a boxed value so a
// closure that captures an outer `weave` binding sees later mutations,
// mirroring the VM's per-local Upvalue cells (internal/vm/objects.go).
type Environment struct {
	parent *Environment
	vars   map[string]*vm.Value
}

// NewEnvironment creates a scope nested inside parent (nil for the global
// scope).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, vars: map[string]*vm.Value{}}
}

// Get resolves name starting in this scope and walking outward.
func (e *Environment) Get(name string) (vm.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if box, ok := env.vars[name]; ok {
			return *box, true
		}
	}
	return vm.Value{}, false
}

// Define introduces a new binding in this scope (a fresh `bind`/`weave` or
// parameter), shadowing any outer binding of the same name.
func (e *Environment) Define(name string, v vm.Value) {
	box := v
	e.vars[name] = &box
}

// Assign mutates the nearest existing binding of name, as `weave`
// reassignment does. Reports whether such a binding was found.
func (e *Environment) Assign(name string, v vm.Value) bool {
	for env := e; env != nil; env = env.parent {
		if box, ok := env.vars[name]; ok {
			*box = v
			return true
		}
	}
	return false
}
