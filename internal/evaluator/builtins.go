package evaluator

import (
	"fmt"

	"github.com/langweave/glyph/internal/config"
	"github.com/langweave/glyph/internal/vm"
)

// Stdout is where the `print` builtin writes; tests swap it for a buffer.
var Stdout = vm.Stdout

// installBuiltins wires the names the analyzer's prelude type-checks
// against (internal/analyzer/prelude.go) to their tree-walk
// implementations — the same name set vm.VM.installBuiltins wires for the
// bytecode backend, kept as a separate registration the way the teacher
// keeps evaluator/builtins_*.go and vm's builtins independent.
func (e *Evaluator) installBuiltins() {
	def := func(name string, fn vm.BuiltinFunc) { e.globals.Define(name, vm.NewBuiltin(name, fn)) }

	def(config.PrintFuncName, builtinPrint)
	def(config.TypeOfFuncName, builtinTypeOf)
	def(config.LenFuncName, builtinLen)

	def("map", e.builtinMap)
	def("filter", e.builtinFilter)
	def("fold", e.builtinFold)
	def("take_while", e.builtinTakeWhile)
	def("skip", builtinSkip)
	def("zip", builtinZip)
	def("chain", builtinChain)
	def("any", e.builtinAny)
	def("all", e.builtinAll)
	def("find", e.builtinFind)

	def("is_triumph", builtinIsTriumph)
	def("is_mishap", builtinIsMishap)
	def("is_present", builtinIsPresent)
	def("is_absent", builtinIsAbsent)
	def("unwrap_or", builtinUnwrapOr)
	def("expect", builtinExpect)
	def("map_outcome", e.builtinMapOutcome)

	def("yaml_parse", builtinYamlParse)
	def("yaml_dump", builtinYamlDump)
}

// yaml_parse/yaml_dump share their conversion logic with the VM backend
// (vm.YAMLParse/vm.YAMLDump) — only the Outcome/error wrapping differs per
// backend's builtin calling convention, so there is nothing to duplicate.
func builtinYamlParse(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Kind != vm.KindText {
		return vm.Value{}, &vm.TypeMismatch{Operation: "yaml_parse", Got: "expected Text"}
	}
	v, err := vm.YAMLParse(args[0].Str)
	if err != nil {
		return vm.Mishap(vm.Text(err.Error())), nil
	}
	return vm.Triumph(v), nil
}

func builtinYamlDump(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Value{}, &vm.ArityMismatch{Name: "yaml_dump", Expected: 1, Got: len(args)}
	}
	out, err := vm.YAMLDump(args[0])
	if err != nil {
		return vm.Value{}, &vm.TypeMismatch{Operation: "yaml_dump", Got: err.Error()}
	}
	return vm.Text(out), nil
}

func builtinPrint(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Value{}, &vm.ArityMismatch{Name: config.PrintFuncName, Expected: 1, Got: len(args)}
	}
	fmt.Fprintln(Stdout, vm.ToText(args[0]))
	return vm.Nothing, nil
}

func builtinTypeOf(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Value{}, &vm.ArityMismatch{Name: config.TypeOfFuncName, Expected: 1, Got: len(args)}
	}
	return vm.Text(vm.TypeName(args[0])), nil
}

func builtinLen(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Value{}, &vm.ArityMismatch{Name: config.LenFuncName, Expected: 1, Got: len(args)}
	}
	switch args[0].Kind {
	case vm.KindList:
		return vm.Number(float64(len(args[0].Obj.(*vm.ListObject).Elements))), nil
	case vm.KindMap:
		return vm.Number(float64(len(args[0].Obj.(*vm.MapObject).Entries))), nil
	case vm.KindText:
		return vm.Number(float64(len(args[0].Str))), nil
	default:
		return vm.Value{}, &vm.TypeMismatch{Operation: config.LenFuncName, Got: vm.TypeName(args[0])}
	}
}

func listArg(args []vm.Value, i int) (*vm.ListObject, bool) {
	if i >= len(args) || args[i].Kind != vm.KindList {
		return nil, false
	}
	return args[i].Obj.(*vm.ListObject), true
}

func (e *Evaluator) builtinMap(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "map", Got: "non-list argument"}
	}
	out := make([]vm.Value, len(lo.Elements))
	for i, el := range lo.Elements {
		v, err := e.callValue(args[1], []vm.Value{el})
		if err != nil {
			return vm.Value{}, err
		}
		out[i] = v
	}
	return vm.NewList(out), nil
}

func (e *Evaluator) builtinFilter(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "filter", Got: "non-list argument"}
	}
	var out []vm.Value
	for _, el := range lo.Elements {
		keep, err := e.callValue(args[1], []vm.Value{el})
		if err != nil {
			return vm.Value{}, err
		}
		if keep.Truthy() {
			out = append(out, el)
		}
	}
	return vm.NewList(out), nil
}

func (e *Evaluator) builtinFold(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 3 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "fold", Got: "non-list argument"}
	}
	acc := args[1]
	for _, el := range lo.Elements {
		v, err := e.callValue(args[2], []vm.Value{acc, el})
		if err != nil {
			return vm.Value{}, err
		}
		acc = v
	}
	return acc, nil
}

func (e *Evaluator) builtinTakeWhile(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "take_while", Got: "non-list argument"}
	}
	var out []vm.Value
	for _, el := range lo.Elements {
		keep, err := e.callValue(args[1], []vm.Value{el})
		if err != nil {
			return vm.Value{}, err
		}
		if !keep.Truthy() {
			break
		}
		out = append(out, el)
	}
	return vm.NewList(out), nil
}

func builtinSkip(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 || args[1].Kind != vm.KindNumber {
		return vm.Value{}, &vm.TypeMismatch{Operation: "skip", Got: "non-list argument"}
	}
	n := int(args[1].Num)
	if n < 0 {
		n = 0
	}
	if n >= len(lo.Elements) {
		return vm.NewList(nil), nil
	}
	return vm.NewList(append([]vm.Value{}, lo.Elements[n:]...)), nil
}

func builtinZip(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	la, ok1 := listArg(args, 0)
	lb, ok2 := listArg(args, 1)
	if !ok1 || !ok2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "zip", Got: "non-list argument"}
	}
	n := len(la.Elements)
	if len(lb.Elements) < n {
		n = len(lb.Elements)
	}
	out := make([]vm.Value, n)
	for i := 0; i < n; i++ {
		out[i] = pairValue(la.Elements[i], lb.Elements[i])
	}
	return vm.NewList(out), nil
}

func builtinChain(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	la, ok1 := listArg(args, 0)
	lb, ok2 := listArg(args, 1)
	if !ok1 || !ok2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "chain", Got: "non-list argument"}
	}
	out := make([]vm.Value, 0, len(la.Elements)+len(lb.Elements))
	out = append(out, la.Elements...)
	out = append(out, lb.Elements...)
	return vm.NewList(out), nil
}

func (e *Evaluator) builtinAny(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "any", Got: "non-list argument"}
	}
	for _, el := range lo.Elements {
		v, err := e.callValue(args[1], []vm.Value{el})
		if err != nil {
			return vm.Value{}, err
		}
		if v.Truthy() {
			return vm.Truth(true), nil
		}
	}
	return vm.Truth(false), nil
}

func (e *Evaluator) builtinAll(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "all", Got: "non-list argument"}
	}
	for _, el := range lo.Elements {
		v, err := e.callValue(args[1], []vm.Value{el})
		if err != nil {
			return vm.Value{}, err
		}
		if !v.Truthy() {
			return vm.Truth(false), nil
		}
	}
	return vm.Truth(true), nil
}

func (e *Evaluator) builtinFind(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	lo, ok := listArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "find", Got: "non-list argument"}
	}
	for _, el := range lo.Elements {
		v, err := e.callValue(args[1], []vm.Value{el})
		if err != nil {
			return vm.Value{}, err
		}
		if v.Truthy() {
			return vm.Present(el), nil
		}
	}
	return vm.Absent(), nil
}

func outcomeArg(args []vm.Value, i int) (*vm.VariantObject, bool) {
	if i >= len(args) || !vm.IsOutcome(args[i]) {
		return nil, false
	}
	return args[i].Obj.(*vm.VariantObject), true
}

func builtinIsTriumph(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok {
		return vm.Value{}, &vm.TypeMismatch{Operation: "is_triumph", Got: "non-Outcome argument"}
	}
	return vm.Truth(vo.Case == "Triumph"), nil
}

func builtinIsMishap(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok {
		return vm.Value{}, &vm.TypeMismatch{Operation: "is_mishap", Got: "non-Outcome argument"}
	}
	return vm.Truth(vo.Case == "Mishap"), nil
}

func builtinIsPresent(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Kind != vm.KindVariant {
		return vm.Value{}, &vm.TypeMismatch{Operation: "is_present", Got: "non-Maybe argument"}
	}
	return vm.Truth(args[0].Obj.(*vm.VariantObject).Case == "Present"), nil
}

func builtinIsAbsent(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 || args[0].Kind != vm.KindVariant {
		return vm.Value{}, &vm.TypeMismatch{Operation: "is_absent", Got: "non-Maybe argument"}
	}
	return vm.Truth(args[0].Obj.(*vm.VariantObject).Case == "Absent"), nil
}

func builtinUnwrapOr(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "unwrap_or", Got: "non-Outcome argument"}
	}
	if vo.Case == "Triumph" {
		return vo.Fields[0], nil
	}
	return args[1], nil
}

func builtinExpect(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok || len(args) != 2 || args[1].Kind != vm.KindText {
		return vm.Value{}, &vm.TypeMismatch{Operation: "expect", Got: "non-Outcome argument"}
	}
	if vo.Case == "Triumph" {
		return vo.Fields[0], nil
	}
	return vm.Value{}, &vm.Custom{Message: args[1].Str}
}

func (e *Evaluator) builtinMapOutcome(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	vo, ok := outcomeArg(args, 0)
	if !ok || len(args) != 2 {
		return vm.Value{}, &vm.TypeMismatch{Operation: "map_outcome", Got: "non-Outcome argument"}
	}
	if vo.Case == "Mishap" {
		return args[0], nil
	}
	mapped, err := e.callValue(args[1], []vm.Value{vo.Fields[0]})
	if err != nil {
		return vm.Value{}, err
	}
	return vm.Triumph(mapped), nil
}
