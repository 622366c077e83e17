package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/langweave/glyph/internal/config"
)

// Stdout is where the `print` builtin writes; tests swap it for a buffer.
var Stdout io.Writer = os.Stdout

// installBuiltins wires the names the analyzer's prelude type-checks
// against (internal/analyzer/prelude.go) to their runtime implementations.
func (m *VM) installBuiltins() {
	def := func(name string, fn BuiltinFunc) { m.Globals[name] = NewBuiltin(name, fn) }

	def(config.PrintFuncName, builtinPrint)
	def(config.TypeOfFuncName, builtinTypeOf)
	def(config.LenFuncName, builtinLen)

	def("map", builtinMap)
	def("filter", builtinFilter)
	def("fold", builtinFold)
	def("take_while", builtinTakeWhile)
	def("skip", builtinSkip)
	def("zip", builtinZip)
	def("chain", builtinChain)
	def("any", builtinAny)
	def("all", builtinAll)
	def("find", builtinFind)

	def("is_triumph", builtinIsTriumph)
	def("is_mishap", builtinIsMishap)
	def("is_present", builtinIsPresent)
	def("is_absent", builtinIsAbsent)
	def("unwrap_or", builtinUnwrapOr)
	def("expect", builtinExpect)
	def("map_outcome", builtinMapOutcome)

	def("yaml_parse", builtinYamlParse)
	def("yaml_dump", builtinYamlDump)
}

// yaml_parse(Text) -> Outcome<Any, Text>
func builtinYamlParse(m *VM, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KindText {
		return Value{}, &TypeMismatch{Operation: "yaml_parse", Got: "expected Text"}
	}
	v, err := YAMLParse(args[0].Str)
	if err != nil {
		return Mishap(Text(err.Error())), nil
	}
	return Triumph(v), nil
}

// yaml_dump(Any) -> Text
func builtinYamlDump(m *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityMismatch{Name: "yaml_dump", Expected: 1, Got: len(args)}
	}
	out, err := YAMLDump(args[0])
	if err != nil {
		return Value{}, &TypeMismatch{Operation: "yaml_dump", Got: err.Error()}
	}
	return Text(out), nil
}

func builtinPrint(m *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityMismatch{Name: config.PrintFuncName, Expected: 1, Got: len(args)}
	}
	fmt.Fprintln(Stdout, ToText(args[0]))
	return Nothing, nil
}

func builtinTypeOf(m *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityMismatch{Name: config.TypeOfFuncName, Expected: 1, Got: len(args)}
	}
	return Text(TypeName(args[0])), nil
}

func builtinLen(m *VM, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, &ArityMismatch{Name: config.LenFuncName, Expected: 1, Got: len(args)}
	}
	switch args[0].Kind {
	case KindList:
		return Number(float64(len(args[0].Obj.(*ListObject).Elements))), nil
	case KindMap:
		return Number(float64(len(args[0].Obj.(*MapObject).Entries))), nil
	case KindText:
		return Number(float64(len(args[0].Str))), nil
	default:
		return Value{}, &TypeMismatch{Operation: config.LenFuncName, Got: TypeName(args[0])}
	}
}

func listArg(args []Value, i int) (*ListObject, bool) {
	if i >= len(args) || args[i].Kind != KindList {
		return nil, false
	}
	return args[i].Obj.(*ListObject), true
}

func builtinMap(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "map", Got: "non-list argument"}
	}
	out := make([]Value, len(lo.Elements))
	for i, e := range lo.Elements {
		v, err := m.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}
		out[i] = v
	}
	return NewList(out), nil
}

func builtinFilter(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "filter", Got: "non-list argument"}
	}
	var out []Value
	for _, e := range lo.Elements {
		keep, err := m.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}
		if keep.Truthy() {
			out = append(out, e)
		}
	}
	return NewList(out), nil
}

func builtinFold(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 3 {
		return Value{}, &TypeMismatch{Operation: "fold", Got: "non-list argument"}
	}
	acc := args[1]
	for _, e := range lo.Elements {
		v, err := m.Call(args[2], []Value{acc, e})
		if err != nil {
			return Value{}, err
		}
		acc = v
	}
	return acc, nil
}

func builtinTakeWhile(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "take_while", Got: "non-list argument"}
	}
	var out []Value
	for _, e := range lo.Elements {
		keep, err := m.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}
		if !keep.Truthy() {
			break
		}
		out = append(out, e)
	}
	return NewList(out), nil
}

func builtinSkip(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 || args[1].Kind != KindNumber {
		return Value{}, &TypeMismatch{Operation: "skip", Got: "non-list argument"}
	}
	n := int(args[1].Num)
	if n < 0 {
		n = 0
	}
	if n >= len(lo.Elements) {
		return NewList(nil), nil
	}
	return NewList(append([]Value{}, lo.Elements[n:]...)), nil
}

func builtinZip(m *VM, args []Value) (Value, error) {
	la, ok1 := listArg(args, 0)
	lb, ok2 := listArg(args, 1)
	if !ok1 || !ok2 {
		return Value{}, &TypeMismatch{Operation: "zip", Got: "non-list argument"}
	}
	n := len(la.Elements)
	if len(lb.Elements) < n {
		n = len(lb.Elements)
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		out[i] = pair(la.Elements[i], lb.Elements[i])
	}
	return NewList(out), nil
}

func builtinChain(m *VM, args []Value) (Value, error) {
	la, ok1 := listArg(args, 0)
	lb, ok2 := listArg(args, 1)
	if !ok1 || !ok2 {
		return Value{}, &TypeMismatch{Operation: "chain", Got: "non-list argument"}
	}
	out := make([]Value, 0, len(la.Elements)+len(lb.Elements))
	out = append(out, la.Elements...)
	out = append(out, lb.Elements...)
	return NewList(out), nil
}

func builtinAny(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "any", Got: "non-list argument"}
	}
	for _, e := range lo.Elements {
		v, err := m.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}
		if v.Truthy() {
			return Truth(true), nil
		}
	}
	return Truth(false), nil
}

func builtinAll(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "all", Got: "non-list argument"}
	}
	for _, e := range lo.Elements {
		v, err := m.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}
		if !v.Truthy() {
			return Truth(false), nil
		}
	}
	return Truth(true), nil
}

func builtinFind(m *VM, args []Value) (Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "find", Got: "non-list argument"}
	}
	for _, e := range lo.Elements {
		v, err := m.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}
		if v.Truthy() {
			return Present(e), nil
		}
	}
	return Absent(), nil
}

func outcomeArg(args []Value, i int) (*VariantObject, bool) {
	if i >= len(args) || !IsOutcome(args[i]) {
		return nil, false
	}
	return args[i].Obj.(*VariantObject), true
}

func builtinIsTriumph(m *VM, args []Value) (Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok {
		return Value{}, &TypeMismatch{Operation: "is_triumph", Got: "non-Outcome argument"}
	}
	return Truth(vo.Case == "Triumph"), nil
}

func builtinIsMishap(m *VM, args []Value) (Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok {
		return Value{}, &TypeMismatch{Operation: "is_mishap", Got: "non-Outcome argument"}
	}
	return Truth(vo.Case == "Mishap"), nil
}

func builtinIsPresent(m *VM, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KindVariant {
		return Value{}, &TypeMismatch{Operation: "is_present", Got: "non-Maybe argument"}
	}
	return Truth(args[0].Obj.(*VariantObject).Case == "Present"), nil
}

func builtinIsAbsent(m *VM, args []Value) (Value, error) {
	if len(args) != 1 || args[0].Kind != KindVariant {
		return Value{}, &TypeMismatch{Operation: "is_absent", Got: "non-Maybe argument"}
	}
	return Truth(args[0].Obj.(*VariantObject).Case == "Absent"), nil
}

func builtinUnwrapOr(m *VM, args []Value) (Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "unwrap_or", Got: "non-Outcome argument"}
	}
	if vo.Case == "Triumph" {
		return vo.Fields[0], nil
	}
	return args[1], nil
}

func builtinExpect(m *VM, args []Value) (Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok || len(args) != 2 || args[1].Kind != KindText {
		return Value{}, &TypeMismatch{Operation: "expect", Got: "non-Outcome argument"}
	}
	if vo.Case == "Triumph" {
		return vo.Fields[0], nil
	}
	return Value{}, &Custom{Message: args[1].Str}
}

func builtinMapOutcome(m *VM, args []Value) (Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok || len(args) != 2 {
		return Value{}, &TypeMismatch{Operation: "map_outcome", Got: "non-Outcome argument"}
	}
	if vo.Case == "Mishap" {
		return args[0], nil
	}
	mapped, err := m.Call(args[1], []Value{vo.Fields[0]})
	if err != nil {
		return Value{}, err
	}
	return Triumph(mapped), nil
}
