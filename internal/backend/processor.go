package backend

import "github.com/langweave/glyph/internal/pipeline"

// ExecutionProcessor is the pipeline.Processor that runs a Backend as the
// final stage, grounded on the teacher's own internal/backend/processor.go.
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a pipeline step running b.
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

// Process runs the backend unless an earlier stage already failed.
func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.HasErrors() {
		return ctx
	}
	ctx.Backend = p.Backend.Name()
	result, err := p.Backend.Run(ctx)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Result = result
	return ctx
}
