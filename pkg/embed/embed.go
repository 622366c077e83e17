// Package embed is the public library API of spec §6 "Library API": a
// thin facade over the internal compiler/VM packages, exposing exactly the
// seven collaborators the spec names — (a) Lexer, (b) Parser, (c) analyze,
// (d) compile, (e) compile_with_monomorphization, (f) VM::execute, (g)
// Evaluator — plus a Run convenience that drives all of them through
// internal/pipeline. Grounded on the teacher's pkg/embed/vm.go for the
// "one facade package wrapping internal packages" shape; the teacher's
// reflection-based Go-value marshalling (Bind/hostCallHandler) is dropped
// since it exists only to support the Go-binding FFI the spec's Non-goals
// exclude ("no FFI beyond the allocator C ABI").
package embed

import (
	"fmt"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/backend"
	"github.com/langweave/glyph/internal/diagnostics"
	"github.com/langweave/glyph/internal/evaluator"
	"github.com/langweave/glyph/internal/lexer"
	"github.com/langweave/glyph/internal/modules"
	"github.com/langweave/glyph/internal/monomorph"
	"github.com/langweave/glyph/internal/parser"
	"github.com/langweave/glyph/internal/pipeline"
	"github.com/langweave/glyph/internal/token"
	"github.com/langweave/glyph/internal/vm"
)

// Re-exported so a caller never has to import an internal package directly.
type (
	Chunk          = vm.Chunk
	Value          = vm.Value
	RuntimeError   = vm.RuntimeError
	AnalysisResult = analyzer.AnalysisResult
	SemanticError  = analyzer.SemanticError
	Program        = ast.Program
	Diagnostic     = diagnostics.Diagnostic
	Token          = token.Token
)

// ToText renders a Value the way `print`/string interpolation do.
var ToText = vm.ToText

// Lex is interface (a): a Lexer that yields positioned tokens.
func Lex(source string) []Token { return lexer.All(source) }

// Parse is interface (b): a Parser that yields an AST, plus any parse
// diagnostics (spec §7 layer 1 — stops before semantic work on failure).
func Parse(source, file string) (*Program, []*Diagnostic) {
	p := parser.New(source, file)
	prog := p.ParseProgram()
	return prog, p.Errors
}

// Analyze is interface (c): analyze(ast) -> Ok(()) | Err(list<SemanticError>).
func Analyze(prog *Program, file string) (*AnalysisResult, []SemanticError) {
	return analyzer.New(file).Analyze(prog)
}

// Compile is interface (d): compile(ast) -> Chunk.
func Compile(prog *Program, result *AnalysisResult) (*Chunk, []error) {
	return vm.Compile(prog, result)
}

// CompileWithMonomorphization is interface (e): specializes every generic
// call site before compiling, per §4.3.
func CompileWithMonomorphization(prog *Program, result *AnalysisResult) (*Chunk, []error) {
	specialized, _ := monomorph.Specialize(prog, result)
	return vm.Compile(specialized, result)
}

// Execute is interface (f): VM::execute(chunk) -> Result<Value, RuntimeError>.
func Execute(chunk *Chunk, extraGlobals ...map[string]Value) (Value, error) {
	m := vm.New(chunk)
	for _, g := range extraGlobals {
		for name, v := range g {
			m.Globals[name] = v
		}
	}
	return m.Run()
}

// Evaluate is interface (g): runs prog through the tree-walking oracle
// instead of the bytecode VM.
func Evaluate(prog *Program, result *AnalysisResult, extraGlobals ...map[string]Value) (Value, error) {
	e := evaluator.New()
	for _, g := range extraGlobals {
		for name, v := range g {
			e.DefineGlobal(name, v)
		}
	}
	return e.Eval(prog, result)
}

// VirtualPackages builds the globals map for the grpc/db virtual packages
// (internal/modules), ready to pass to Execute/Evaluate or RunOptions.
func VirtualPackages() map[string]Value {
	g := map[string]Value{}
	modules.Register(g)
	return g
}

// RunOptions configures Run.
type RunOptions struct {
	// Backend selects "vm" (default) or "tree-walk".
	Backend string
	// Monomorphize runs the specializer before compiling; ignored when
	// Backend is "tree-walk" (the evaluator runs directly off the AST).
	Monomorphize bool
	// Preload installs the named virtual packages ("grpc", "db") into the
	// global scope before running.
	Preload []string
}

// Run drives source through the whole pipeline — lex, parse, analyze,
// optionally monomorphize, execute — and returns the final value together
// with the pipeline context, whose Errors holds every diagnostic/error the
// stages recorded. This is the one-call convenience
// cmd/funxy's run-file mode and pkg/cli's REPL both build on.
func Run(source, file string, opts RunOptions) (Value, *pipeline.PipelineContext) {
	ctx := &pipeline.PipelineContext{Source: source, FilePath: file}

	var b backend.Backend
	extra := preloadGlobals(opts.Preload)
	switch opts.Backend {
	case "tree-walk":
		b = backend.NewTreeWalk(extra)
	case "", "vm":
		b = backend.NewVM(extra)
	default:
		ctx.AddError(fmt.Errorf("unknown backend %q", opts.Backend))
		return Value{}, ctx
	}

	stages := []pipeline.Processor{&parser.Processor{}, &analyzer.Processor{}}
	if opts.Monomorphize && opts.Backend != "tree-walk" {
		stages = append(stages, &monomorph.Processor{})
	}
	stages = append(stages, backend.NewExecutionProcessor(b))

	ctx = pipeline.New(stages...).Run(ctx)
	result, _ := ctx.Result.(Value)
	return result, ctx
}

func preloadGlobals(names []string) map[string]Value {
	if len(names) == 0 {
		return nil
	}
	all := VirtualPackages()
	out := map[string]Value{}
	for _, name := range names {
		switch name {
		case "grpc":
			for _, key := range []string{"grpc_load_proto", "grpc_dial", "grpc_close", "grpc_call"} {
				out[key] = all[key]
			}
		case "db":
			for _, key := range []string{"db_open", "db_close", "db_exec", "db_query"} {
				out[key] = all[key]
			}
		}
	}
	return out
}
