package parser

import "github.com/langweave/glyph/internal/pipeline"

// Processor is the pipeline.Processor wrapping this package's entry point,
// grounded on the teacher's own internal/parser/processor.go.
type Processor struct{}

// Process lexes and parses ctx.Source, filling in ctx.AstRoot.
func (pp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p := New(ctx.Source, ctx.FilePath)
	ctx.AstRoot = p.ParseProgram()
	for _, d := range p.Errors {
		ctx.AddError(d)
	}
	return ctx
}
