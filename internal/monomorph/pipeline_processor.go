package monomorph

import (
	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/pipeline"
)

// Processor is the pipeline.Processor wrapping Specialize.
type Processor struct{}

// Process specializes ctx.AstRoot using the analysis result from the
// previous stage, filling in ctx.Specialized/ctx.Specializations. It is a
// no-op if analysis failed, since a generic-call worklist over an
// incomplete AnalysisResult would just manufacture bogus specializations.
func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	prog, ok := ctx.AstRoot.(*ast.Program)
	if !ok || ctx.HasErrors() {
		return ctx
	}
	result, ok := ctx.Analysis.(*analyzer.AnalysisResult)
	if !ok || result == nil {
		return ctx
	}
	specialized, tbl := Specialize(prog, result)
	ctx.Specialized = specialized
	ctx.Specializations = tbl
	return ctx
}
