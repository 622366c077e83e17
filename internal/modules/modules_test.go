package modules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/modules"
	"github.com/langweave/glyph/internal/vm"
)

func globals() map[string]vm.Value {
	g := map[string]vm.Value{}
	modules.Register(g)
	return g
}

func call(t *testing.T, g map[string]vm.Value, name string, args ...vm.Value) vm.Value {
	t.Helper()
	fn, ok := g[name]
	require.True(t, ok, "builtin %s not registered", name)
	v, err := vm.New(&vm.Chunk{}).Call(fn, args)
	require.NoError(t, err)
	return v
}

func TestDb_OpenExecQueryRoundTrip(t *testing.T) {
	g := globals()

	opened := call(t, g, "db_open", vm.Text(":memory:"))
	require.True(t, vm.IsTriumph(opened))
	cap := opened.Obj.(*vm.VariantObject).Fields[0]

	created := call(t, g, "db_exec", cap, vm.Text("create table greeting (id integer, msg text)"), vm.NewList(nil))
	require.True(t, vm.IsTriumph(created))

	inserted := call(t, g, "db_exec", cap, vm.Text("insert into greeting (id, msg) values (1, 'hi')"), vm.NewList(nil))
	require.True(t, vm.IsTriumph(inserted))
	assert.Equal(t, float64(1), inserted.Obj.(*vm.VariantObject).Fields[0].Num)

	queried := call(t, g, "db_query", cap, vm.Text("select id, msg from greeting"), vm.NewList(nil))
	require.True(t, vm.IsTriumph(queried))
	rows := queried.Obj.(*vm.VariantObject).Fields[0].Obj.(*vm.ListObject).Elements
	require.Len(t, rows, 1)
	row := rows[0].Obj.(*vm.MapObject)
	idVal, ok := row.Get(vm.Text("id"))
	require.True(t, ok)
	assert.Equal(t, float64(1), idVal.Num)
	msgVal, ok := row.Get(vm.Text("msg"))
	require.True(t, ok)
	assert.Equal(t, "hi", msgVal.Str)

	closed := call(t, g, "db_close", cap)
	require.True(t, vm.IsTriumph(closed))
}

func TestGrpcCall_RejectsWrongCapabilityKind(t *testing.T) {
	g := globals()
	opened := call(t, g, "db_open", vm.Text(":memory:"))
	require.True(t, vm.IsTriumph(opened))
	dbCap := opened.Obj.(*vm.VariantObject).Fields[0]

	fn := g["grpc_call"]
	_, err := vm.New(&vm.Chunk{}).Call(fn, []vm.Value{dbCap, vm.Text("pkg.Svc/Method"), vm.NewMap(nil)})
	require.Error(t, err)
	var mismatch *vm.TypeMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestGrpcCall_MethodNotFoundWithoutLoadedProto(t *testing.T) {
	g := globals()
	dialed := call(t, g, "grpc_dial", vm.Text("localhost:0"))
	require.True(t, vm.IsTriumph(dialed))
	conn := dialed.Obj.(*vm.VariantObject).Fields[0]

	result := call(t, g, "grpc_call", conn, vm.Text("pkg.Svc/Method"), vm.NewMap(nil))
	require.True(t, vm.IsMishap(result))
	assert.Contains(t, result.Obj.(*vm.VariantObject).Fields[0].Str, "not found")
}
