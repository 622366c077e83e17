package backend

import (
	"fmt"

	"github.com/langweave/glyph/internal/pipeline"
	"github.com/langweave/glyph/internal/vm"
)

// VMBackend executes programs using the bytecode compiler and VM.
type VMBackend struct {
	extraGlobals map[string]vm.Value
}

// NewVM creates a new VM backend. extra, when given, is merged into the
// VM's global scope on top of the builtin prelude — the hook
// internal/modules' virtual packages use to opt in (pkg/embed wires them).
func NewVM(extra ...map[string]vm.Value) *VMBackend {
	b := &VMBackend{}
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

// Run compiles and executes the program carried by ctx.
func (b *VMBackend) Run(ctx *pipeline.PipelineContext) (vm.Value, error) {
	prog, err := programFor(ctx)
	if err != nil {
		return vm.Value{}, err
	}
	chunk, errs := vm.Compile(prog, analysisFor(ctx))
	if len(errs) > 0 {
		return vm.Value{}, fmt.Errorf("compilation error: %w", errs[0])
	}
	m := vm.New(chunk)
	for name, v := range b.extraGlobals {
		m.Globals[name] = v
	}
	return m.Run()
}

// Name returns the backend name.
func (b *VMBackend) Name() string { return "vm" }
