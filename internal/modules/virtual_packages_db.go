package modules

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/langweave/glyph/internal/vm"
)

// capDB tags the Kind field of a Capability wrapping a *sql.DB.
const capDB = "db"

// RegisterDB installs the `db` virtual package: the concrete realization of
// spec §3's Capability base type backed by an embedded SQLite connection,
// the one domain component that gives modernc.org/sqlite a home (no call
// site in the teacher exercises it — its go.mod carries it unused).
func RegisterDB(globals map[string]vm.Value) {
	globals["db_open"] = vm.NewBuiltin("db_open", builtinDbOpen)
	globals["db_close"] = vm.NewBuiltin("db_close", builtinDbClose)
	globals["db_exec"] = vm.NewBuiltin("db_exec", builtinDbExec)
	globals["db_query"] = vm.NewBuiltin("db_query", builtinDbQuery)
}

// db_open(path: Text) -> Outcome<Capability, Text>
func builtinDbOpen(m *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Kind != vm.KindText {
		return vm.Value{}, &vm.TypeMismatch{Operation: "db_open", Got: "expected a database path"}
	}
	db, err := sql.Open("sqlite", args[0].Str)
	if err != nil {
		return vm.Mishap(vm.Text(err.Error())), nil
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return vm.Mishap(vm.Text(err.Error())), nil
	}
	return vm.Triumph(vm.NewCapability(capDB, db, db.Close)), nil
}

// db_close(cap: Capability) -> Outcome<Nothing, Text>
func builtinDbClose(m *vm.VM, args []vm.Value) (vm.Value, error) {
	co, err := capabilityArg(args, 0, capDB, "db_close")
	if err != nil {
		return vm.Value{}, err
	}
	if co.Closer == nil {
		return vm.Triumph(vm.Nothing), nil
	}
	if err := co.Closer(); err != nil {
		return vm.Mishap(vm.Text(err.Error())), nil
	}
	return vm.Triumph(vm.Nothing), nil
}

// db_exec(cap: Capability, query: Text, params: List) -> Outcome<Number, Text>
// params holds the positional bind arguments; pass an empty List for none.
func builtinDbExec(m *vm.VM, args []vm.Value) (vm.Value, error) {
	db, query, params, err := dbCallArgs(args, "db_exec")
	if err != nil {
		return vm.Value{}, err
	}
	result, execErr := db.Exec(query, params...)
	if execErr != nil {
		return vm.Mishap(vm.Text(execErr.Error())), nil
	}
	affected, _ := result.RowsAffected()
	return vm.Triumph(vm.Number(float64(affected))), nil
}

// db_query(cap: Capability, query: Text, params: List) -> Outcome<List, Text>
// Each row becomes a Map keyed by column name.
func builtinDbQuery(m *vm.VM, args []vm.Value) (vm.Value, error) {
	db, query, params, err := dbCallArgs(args, "db_query")
	if err != nil {
		return vm.Value{}, err
	}
	rows, queryErr := db.Query(query, params...)
	if queryErr != nil {
		return vm.Mishap(vm.Text(queryErr.Error())), nil
	}
	defer rows.Close()

	cols, colErr := rows.Columns()
	if colErr != nil {
		return vm.Mishap(vm.Text(colErr.Error())), nil
	}

	var out []vm.Value
	scratch := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range scratch {
		ptrs[i] = &scratch[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return vm.Mishap(vm.Text(err.Error())), nil
		}
		entries := make([]vm.MapEntry, len(cols))
		for i, col := range cols {
			entries[i] = vm.MapEntry{Key: vm.Text(col), Value: sqlValueToVM(scratch[i])}
		}
		out = append(out, vm.NewMap(entries))
	}
	if err := rows.Err(); err != nil {
		return vm.Mishap(vm.Text(err.Error())), nil
	}
	return vm.Triumph(vm.NewList(out)), nil
}

func dbCallArgs(args []vm.Value, op string) (*sql.DB, string, []interface{}, error) {
	if len(args) != 3 || args[1].Kind != vm.KindText || args[2].Kind != vm.KindList {
		return nil, "", nil, &vm.TypeMismatch{Operation: op, Got: "expected (Capability, Text, List)"}
	}
	co, err := capabilityArg(args, 0, capDB, op)
	if err != nil {
		return nil, "", nil, err
	}
	db, ok := co.Native.(*sql.DB)
	if !ok {
		return nil, "", nil, &vm.TypeMismatch{Operation: op, Got: "capability is not an open database"}
	}
	params := args[2].Obj.(*vm.ListObject).Elements
	bound := make([]interface{}, len(params))
	for i, p := range params {
		bound[i] = vmValueToSQL(p)
	}
	return db, args[1].Str, bound, nil
}

func vmValueToSQL(v vm.Value) interface{} {
	switch v.Kind {
	case vm.KindNumber:
		return v.Num
	case vm.KindText:
		return v.Str
	case vm.KindTruth:
		return v.Truthy()
	case vm.KindNothing:
		return nil
	default:
		return vm.ToText(v)
	}
}

func sqlValueToVM(v interface{}) vm.Value {
	switch x := v.(type) {
	case nil:
		return vm.Nothing
	case int64:
		return vm.Number(float64(x))
	case float64:
		return vm.Number(x)
	case bool:
		return vm.Truth(x)
	case string:
		return vm.Text(x)
	case []byte:
		return vm.Text(string(x))
	default:
		return vm.Text(fmt.Sprintf("%v", x))
	}
}
