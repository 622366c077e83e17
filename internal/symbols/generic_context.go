package symbols

import "github.com/langweave/glyph/internal/typesystem"

// GenericContext maps a declared type-parameter name to the TVar it
// resolves to while analyzing a generic function or type's body.
type GenericContext map[string]typesystem.TVar

// GenericStack is the explicit stack of GenericContext frames described in
// spec §4.1 and §9 ("model as an explicit stack of maps rather than
// thread-local state").
type GenericStack struct {
	frames []GenericContext
}

// Push enters a new generic context (function/type definition).
func (g *GenericStack) Push(ctx GenericContext) {
	g.frames = append(g.frames, ctx)
}

// Pop exits the innermost generic context.
func (g *GenericStack) Pop() {
	if len(g.frames) > 0 {
		g.frames = g.frames[:len(g.frames)-1]
	}
}

// Resolve looks up name across frames, innermost first, returning the
// bound TVar. ok is false if name is not a declared parameter anywhere on
// the stack.
func (g *GenericStack) Resolve(name string) (typesystem.TVar, bool) {
	for i := len(g.frames) - 1; i >= 0; i-- {
		if v, ok := g.frames[i][name]; ok {
			return v, true
		}
	}
	return typesystem.TVar{}, false
}
