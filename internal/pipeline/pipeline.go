// Package pipeline is the generic stage runner every front-end step (lex
// to parse to analyze to monomorphize to execute) plugs into, grounded on
// the teacher's own tiny pipeline.go: there is nothing domain-specific to
// add, so the shape is kept near-verbatim.
package pipeline

// Processor is one pipeline stage. It must not panic on a malformed
// PipelineContext — a stage that cannot proceed (e.g. no source to parse)
// records an error on ctx and returns it unchanged so later stages (an LSP
// wants both parse and semantic diagnostics) still get a chance to run.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is an ordered sequence of Processors.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline running processors in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run threads initialCtx through every stage in order, continuing even
// after a stage records an error so downstream diagnostics still surface.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
