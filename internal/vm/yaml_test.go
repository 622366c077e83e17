package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/vm"
)

func TestYAMLDump_Scalars(t *testing.T) {
	out, err := vm.YAMLDump(vm.Number(42))
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)

	out, err = vm.YAMLDump(vm.Text("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)

	out, err = vm.YAMLDump(vm.Truth(true))
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = vm.YAMLDump(vm.Nothing)
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestYAMLParse_RoundTripsList(t *testing.T) {
	v, err := vm.YAMLParse("- 1\n- 2\n- 3\n")
	require.NoError(t, err)
	assert.True(t, vm.Equal(v, vm.NewList([]vm.Value{vm.Number(1), vm.Number(2), vm.Number(3)})))

	dumped, err := vm.YAMLDump(v)
	require.NoError(t, err)
	reparsed, err := vm.YAMLParse(dumped)
	require.NoError(t, err)
	assert.True(t, vm.Equal(v, reparsed))
}

func TestYAMLParse_RoundTripsMap(t *testing.T) {
	v, err := vm.YAMLParse("name: glyph\ncount: 3\n")
	require.NoError(t, err)
	mo, ok := v.Obj.(*vm.MapObject)
	require.True(t, ok)
	require.Len(t, mo.Entries, 2)

	got := map[string]vm.Value{}
	for _, e := range mo.Entries {
		got[vm.ToText(e.Key)] = e.Value
	}
	assert.True(t, vm.Equal(got["name"], vm.Text("glyph")))
	assert.True(t, vm.Equal(got["count"], vm.Number(3)))
}

func TestYAMLParse_MalformedInputReturnsError(t *testing.T) {
	_, err := vm.YAMLParse("key: [unclosed")
	assert.Error(t, err)
}

func TestBuiltinYamlParse_WrapsResultAsOutcome(t *testing.T) {
	m := vm.New(&vm.Chunk{})

	good, err := m.Call(m.Globals["yaml_parse"], []vm.Value{vm.Text("x: 1\n")})
	require.NoError(t, err)
	assert.True(t, vm.IsTriumph(good))

	bad, err := m.Call(m.Globals["yaml_parse"], []vm.Value{vm.Text("x: [oops")})
	require.NoError(t, err)
	assert.True(t, vm.IsMishap(bad))
}

func TestBuiltinYamlDump_ProducesText(t *testing.T) {
	m := vm.New(&vm.Chunk{})

	out, err := m.Call(m.Globals["yaml_dump"], []vm.Value{vm.NewList([]vm.Value{vm.Number(1), vm.Number(2)})})
	require.NoError(t, err)
	assert.Equal(t, vm.KindText, out.Kind)
	assert.Equal(t, "- 1\n- 2\n", out.Str)
}
