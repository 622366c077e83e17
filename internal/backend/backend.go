// Package backend lets a caller switch between the bytecode VM and the
// tree-walking oracle behind one interface, grounded on the teacher's own
// internal/backend/{backend,treewalk,vmbackend}.go.
package backend

import (
	"fmt"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/pipeline"
	"github.com/langweave/glyph/internal/vm"
)

// Backend is the interface for execution backends.
type Backend interface {
	// Run executes the program carried by ctx and returns its result.
	Run(ctx *pipeline.PipelineContext) (vm.Value, error)
	// Name returns the backend name for display (`--backend` flag value).
	Name() string
}

// programFor picks the monomorphized program when one is available (the
// normal case once the pipeline has reached this stage) and falls back to
// the raw parse when a caller drives a Backend directly in a test without
// running monomorphization.
func programFor(ctx *pipeline.PipelineContext) (*ast.Program, error) {
	if prog, ok := ctx.Specialized.(*ast.Program); ok {
		return prog, nil
	}
	if prog, ok := ctx.AstRoot.(*ast.Program); ok {
		return prog, nil
	}
	return nil, fmt.Errorf("backend: no program to execute")
}

// analysisFor extracts the analyzer result from ctx, if the analysis stage
// ran and succeeded.
func analysisFor(ctx *pipeline.PipelineContext) *analyzer.AnalysisResult {
	result, _ := ctx.Analysis.(*analyzer.AnalysisResult)
	return result
}
