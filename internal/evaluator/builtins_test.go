package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/vm"
)

func TestBuiltinYamlParse_TriumphAndMishap(t *testing.T) {
	good, err := builtinYamlParse(nil, []vm.Value{vm.Text("a: 1\nb: 2\n")})
	require.NoError(t, err)
	assert.True(t, vm.IsTriumph(good))

	bad, err := builtinYamlParse(nil, []vm.Value{vm.Text("a: [unterminated")})
	require.NoError(t, err)
	assert.True(t, vm.IsMishap(bad))
}

func TestBuiltinYamlDump_RoundTripsThroughParse(t *testing.T) {
	original := vm.NewList([]vm.Value{vm.Text("x"), vm.Number(1)})

	dumped, err := builtinYamlDump(nil, []vm.Value{original})
	require.NoError(t, err)
	require.Equal(t, vm.KindText, dumped.Kind)

	parsed, err := builtinYamlParse(nil, []vm.Value{dumped})
	require.NoError(t, err)
	require.True(t, vm.IsTriumph(parsed))
}

func TestBuiltinYamlParse_WrongArgTypeIsTypeMismatch(t *testing.T) {
	_, err := builtinYamlParse(nil, []vm.Value{vm.Number(1)})
	require.Error(t, err)
	_, ok := err.(*vm.TypeMismatch)
	assert.True(t, ok)
}

func TestBuiltinYamlDump_WrongArityIsArityMismatch(t *testing.T) {
	_, err := builtinYamlDump(nil, []vm.Value{})
	require.Error(t, err)
	_, ok := err.(*vm.ArityMismatch)
	assert.True(t, ok)
}
