package embed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/pkg/embed"
)

const doubleSource = `
chant double(n) then
  yield n * 2
end

yield double(21)
`

func TestRun_VMBackend(t *testing.T) {
	result, ctx := embed.Run(doubleSource, "<test>", embed.RunOptions{})
	require.Empty(t, ctx.Errors)
	assert.Equal(t, float64(42), result.Num)
}

func TestRun_TreeWalkBackend(t *testing.T) {
	result, ctx := embed.Run(doubleSource, "<test>", embed.RunOptions{Backend: "tree-walk"})
	require.Empty(t, ctx.Errors)
	assert.Equal(t, float64(42), result.Num)
}

func TestRun_WithMonomorphization(t *testing.T) {
	result, ctx := embed.Run(doubleSource, "<test>", embed.RunOptions{Monomorphize: true})
	require.Empty(t, ctx.Errors)
	assert.Equal(t, float64(42), result.Num)
}

func TestLexParseAnalyzeCompileExecute_LowLevelFacade(t *testing.T) {
	toks := embed.Lex(doubleSource)
	require.NotEmpty(t, toks)

	prog, parseErrs := embed.Parse(doubleSource, "<test>")
	require.Empty(t, parseErrs)

	result, semErrs := embed.Analyze(prog, "<test>")
	require.Empty(t, semErrs)

	chunk, compileErrs := embed.Compile(prog, result)
	require.Empty(t, compileErrs)

	val, err := embed.Execute(chunk)
	require.NoError(t, err)
	assert.Equal(t, float64(42), val.Num)

	val2, err := embed.Evaluate(prog, result)
	require.NoError(t, err)
	assert.Equal(t, float64(42), val2.Num)
}

func TestVirtualPackages_RegistersGrpcAndDb(t *testing.T) {
	g := embed.VirtualPackages()
	for _, name := range []string{"grpc_dial", "grpc_call", "db_open", "db_query"} {
		_, ok := g[name]
		assert.True(t, ok, "expected %s to be registered", name)
	}
}
