package analyzer

import (
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/pipeline"
)

// Processor is the pipeline.Processor wrapping Analyze.
type Processor struct{}

// Process runs semantic analysis over ctx.AstRoot, filling in ctx.Analysis.
// It does not abort on ctx already carrying parse errors: a best-effort
// analysis still reports semantic errors over the part of the file that
// did parse.
func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	prog, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return ctx
	}
	a := New(ctx.FilePath)
	result, errs := a.Analyze(prog)
	ctx.Analysis = result
	for _, e := range errs {
		ctx.AddError(e)
	}
	return ctx
}
