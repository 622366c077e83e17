package pipeline

// PipelineContext is the value every Processor reads from and writes to.
// Each front-end stage fills in the field it owns and leaves everything
// upstream untouched, so a later stage (or a caller inspecting a partially
// failed run, e.g. the LSP) can see exactly how far compilation got.
//
// Fields past a stage's own concern are carried as interface{}, the same
// way the teacher's own PipelineContext holds AstRoot/Module/Loader: this
// package sits below analyzer/monomorph/vm/backend in the import graph
// (every one of those imports pipeline to implement Processor), so it
// cannot name their concrete types without a cycle. Each stage's own
// Processor does the type assertion on the way in and out.
type PipelineContext struct {
	// Source input.
	Source   string
	FilePath string

	// AstRoot holds an *ast.Program once the parse stage has run.
	AstRoot interface{}

	// Analysis holds an *analyzer.AnalysisResult once the analysis stage
	// has run.
	Analysis interface{}

	// Specialized holds an *ast.Program and Specializations an
	// *monomorph.Table once the monomorphization stage has run.
	Specialized     interface{}
	Specializations interface{}

	// Backend names the backend the execution stage ran, and Result holds
	// a vm.Value once it has.
	Backend string
	Result  interface{}

	// Accumulates across every stage; a non-empty Errors halts neither the
	// pipeline nor downstream diagnostic collection (see Pipeline.Run).
	Errors []error

	// IsTestMode is carried on the context for callers; no pipeline stage
	// reads it, and no test-only builtins are registered from it.
	IsTestMode bool
}

// HasErrors reports whether any stage has recorded a failure so far.
func (ctx *PipelineContext) HasErrors() bool { return len(ctx.Errors) > 0 }

// AddError appends err to the context's diagnostic list.
func (ctx *PipelineContext) AddError(err error) { ctx.Errors = append(ctx.Errors, err) }
