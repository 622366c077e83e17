package backend

import (
	"github.com/langweave/glyph/internal/evaluator"
	"github.com/langweave/glyph/internal/pipeline"
	"github.com/langweave/glyph/internal/vm"
)

// TreeWalkBackend wraps internal/evaluator, the spec §8 oracle.
type TreeWalkBackend struct {
	extraGlobals map[string]vm.Value
}

// NewTreeWalk creates a new tree-walk backend. extra, when given, is
// merged into the Evaluator's global scope on top of the builtin prelude —
// mirrors VMBackend's virtual-package opt-in hook.
func NewTreeWalk(extra ...map[string]vm.Value) *TreeWalkBackend {
	b := &TreeWalkBackend{}
	for _, m := range extra {
		if b.extraGlobals == nil {
			b.extraGlobals = map[string]vm.Value{}
		}
		for k, v := range m {
			b.extraGlobals[k] = v
		}
	}
	return b
}

// Run interprets the program carried by ctx directly, with no compile step.
func (b *TreeWalkBackend) Run(ctx *pipeline.PipelineContext) (vm.Value, error) {
	prog, err := programFor(ctx)
	if err != nil {
		return vm.Value{}, err
	}
	e := evaluator.New()
	for name, v := range b.extraGlobals {
		e.DefineGlobal(name, v)
	}
	return e.Eval(prog, analysisFor(ctx))
}

// Name returns the backend name.
func (b *TreeWalkBackend) Name() string { return "tree-walk" }
