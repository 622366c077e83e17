package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/backend"
	"github.com/langweave/glyph/internal/monomorph"
	"github.com/langweave/glyph/internal/parser"
	"github.com/langweave/glyph/internal/pipeline"
	"github.com/langweave/glyph/internal/vm"
)

const factorialSource = `
chant factorial(n) then
  should n <= 1 then
    yield 1
  otherwise
    yield n * factorial(n - 1)
  end
end

yield factorial(5)
`

// runFull drives factorialSource through the real front end (lex, parse,
// analyze, monomorphize) and then through the named backend.
func runFull(t *testing.T, b backend.Backend) (vm.Value, *pipeline.PipelineContext) {
	t.Helper()
	ctx := &pipeline.PipelineContext{Source: factorialSource, FilePath: "<test>"}
	p := pipeline.New(
		&parser.Processor{},
		&analyzer.Processor{},
		&monomorph.Processor{},
		backend.NewExecutionProcessor(b),
	)
	ctx = p.Run(ctx)
	require.Empty(t, ctx.Errors)
	result, ok := ctx.Result.(vm.Value)
	require.True(t, ok, "expected a vm.Value result, got %T", ctx.Result)
	return result, ctx
}

func TestVMBackend_RunsFullPipeline(t *testing.T) {
	result, ctx := runFull(t, backend.NewVM())
	assert.Equal(t, "vm", ctx.Backend)
	assert.Equal(t, float64(120), result.Num)
}

func TestTreeWalkBackend_RunsFullPipeline(t *testing.T) {
	result, ctx := runFull(t, backend.NewTreeWalk())
	assert.Equal(t, "tree-walk", ctx.Backend)
	assert.Equal(t, float64(120), result.Num)
}

func TestBackends_AgreeOnResult(t *testing.T) {
	vmResult, _ := runFull(t, backend.NewVM())
	twResult, _ := runFull(t, backend.NewTreeWalk())
	assert.True(t, vm.Equal(vmResult, twResult))
}
