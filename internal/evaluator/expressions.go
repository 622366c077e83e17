package evaluator

import (
	"math"

	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/vm"
)

// evalExpr evaluates expr in env. It returns a signal alongside the value
// because an `if`/`match` arm can contain a `yield`/`skip`/`stop` inline in
// its body (the same block that `vm.Compiler.compileBlockExpr` compiles in
// expression position); every other expression kind always returns
// signal{} (none).
func (e *Evaluator) evalExpr(expr ast.Expression, env *Environment) (vm.Value, signal, error) {
	switch ex := expr.(type) {
	case *ast.NumberLiteral:
		return vm.Number(ex.Value), signal{}, nil
	case *ast.TextLiteral:
		return vm.Text(ex.Value), signal{}, nil
	case *ast.TruthLiteral:
		return vm.Truth(ex.Value), signal{}, nil
	case *ast.NothingLiteral:
		return vm.Nothing, signal{}, nil
	case *ast.Identifier:
		v, ok := env.Get(ex.Value)
		if !ok {
			return vm.Value{}, signal{}, &vm.UndefinedName{Name: ex.Value}
		}
		return v, signal{}, nil
	case *ast.ListLiteral:
		elems := make([]vm.Value, len(ex.Elements))
		for i, el := range ex.Elements {
			v, sig, err := e.evalExpr(el, env)
			if err != nil || sig.kind != signalNone {
				return vm.Value{}, sig, err
			}
			elems[i] = v
		}
		return vm.NewList(elems), signal{}, nil
	case *ast.MapLiteral:
		entries := make([]vm.MapEntry, len(ex.Entries))
		for i, en := range ex.Entries {
			k, sig, err := e.evalExpr(en.Key, env)
			if err != nil || sig.kind != signalNone {
				return vm.Value{}, sig, err
			}
			val, sig, err := e.evalExpr(en.Value, env)
			if err != nil || sig.kind != signalNone {
				return vm.Value{}, sig, err
			}
			entries[i] = vm.MapEntry{Key: k, Value: val}
		}
		return vm.NewMap(entries), signal{}, nil
	case *ast.RangeLiteral:
		start, sig, err := e.evalExpr(ex.Start, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		end, sig, err := e.evalExpr(ex.End, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		return vm.NewRange(start.Num, end.Num), signal{}, nil
	case *ast.PrefixExpression:
		return e.evalPrefix(ex, env)
	case *ast.InfixExpression:
		return e.evalInfix(ex, env)
	case *ast.IfExpression:
		return e.evalIf(ex, env)
	case *ast.MatchExpression:
		return e.evalMatch(ex, env)
	case *ast.CallExpression:
		return e.evalCall(ex, env)
	case *ast.IndexExpression:
		left, sig, err := e.evalExpr(ex.Left, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		idx, sig, err := e.evalExpr(ex.Index, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		v, err := indexValue(left, idx)
		return v, signal{}, err
	case *ast.FieldAccessExpression:
		left, sig, err := e.evalExpr(ex.Left, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		v, err := fieldGet(left, ex.Field)
		return v, signal{}, err
	case *ast.ShapeLiteral:
		return e.evalShapeLiteral(ex, env)
	case *ast.FunctionLiteral:
		return e.makeClosure("<lambda>", ex.Params, ex.Body, env), signal{}, nil
	case *ast.TryExpression:
		v, sig, err := e.evalExpr(ex.Value, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		if !vm.IsOutcome(v) {
			return vm.Value{}, signal{}, &vm.TypeMismatch{Operation: "try", Got: vm.TypeName(v)}
		}
		if vm.IsMishap(v) {
			// `?` on a Mishap yields that Mishap from the enclosing
			// function, the same as vm's OpTry.
			return vm.Value{}, signal{kind: signalYield, value: v}, nil
		}
		return v.Obj.(*vm.VariantObject).Fields[0], signal{}, nil
	default:
		return vm.Value{}, signal{}, e.fail("evaluator: unhandled expression %T", expr)
	}
}

func (e *Evaluator) evalPrefix(ex *ast.PrefixExpression, env *Environment) (vm.Value, signal, error) {
	right, sig, err := e.evalExpr(ex.Right, env)
	if err != nil || sig.kind != signalNone {
		return vm.Value{}, sig, err
	}
	switch ex.Operator {
	case "-":
		if right.Kind != vm.KindNumber {
			return vm.Value{}, signal{}, &vm.TypeMismatch{Operation: "negate", Got: vm.TypeName(right)}
		}
		return vm.Number(-right.Num), signal{}, nil
	case "!":
		return vm.Truth(!right.Truthy()), signal{}, nil
	default:
		return vm.Value{}, signal{}, e.fail("evaluator: unknown prefix operator %s", ex.Operator)
	}
}

func (e *Evaluator) evalInfix(ex *ast.InfixExpression, env *Environment) (vm.Value, signal, error) {
	if ex.Operator == "&&" || ex.Operator == "||" {
		left, sig, err := e.evalExpr(ex.Left, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		if ex.Operator == "&&" && !left.Truthy() {
			return left, signal{}, nil
		}
		if ex.Operator == "||" && left.Truthy() {
			return left, signal{}, nil
		}
		return e.evalExpr(ex.Right, env)
	}

	left, sig, err := e.evalExpr(ex.Left, env)
	if err != nil || sig.kind != signalNone {
		return vm.Value{}, sig, err
	}
	right, sig, err := e.evalExpr(ex.Right, env)
	if err != nil || sig.kind != signalNone {
		return vm.Value{}, sig, err
	}

	switch ex.Operator {
	case "==":
		return vm.Truth(vm.Equal(left, right)), signal{}, nil
	case "!=":
		return vm.Truth(!vm.Equal(left, right)), signal{}, nil
	case "<", "<=", ">", ">=":
		v, err := compareNum(ex.Operator, left, right)
		return v, signal{}, err
	default:
		v, err := arith(ex.Operator, left, right)
		return v, signal{}, err
	}
}

func arith(op string, a, b vm.Value) (vm.Value, error) {
	if op == "+" && a.Kind == vm.KindText {
		if b.Kind != vm.KindText {
			return vm.Value{}, &vm.TypeMismatch{Operation: "+", Got: vm.TypeName(b)}
		}
		return vm.Text(a.Str + b.Str), nil
	}
	if op == "+" && a.Kind == vm.KindList {
		al, aok := a.Obj.(*vm.ListObject)
		bl, bok := b.Obj.(*vm.ListObject)
		if !aok || !bok {
			return vm.Value{}, &vm.TypeMismatch{Operation: "+", Got: vm.TypeName(b)}
		}
		merged := make([]vm.Value, 0, len(al.Elements)+len(bl.Elements))
		merged = append(merged, al.Elements...)
		merged = append(merged, bl.Elements...)
		return vm.NewList(merged), nil
	}
	if a.Kind != vm.KindNumber || b.Kind != vm.KindNumber {
		return vm.Value{}, &vm.TypeMismatch{Operation: "arithmetic", Got: vm.TypeName(a)}
	}
	switch op {
	case "+":
		return vm.Number(a.Num + b.Num), nil
	case "-":
		return vm.Number(a.Num - b.Num), nil
	case "*":
		return vm.Number(a.Num * b.Num), nil
	case "/":
		if b.Num == 0 {
			return vm.Value{}, &vm.DivisionByZero{}
		}
		return vm.Number(a.Num / b.Num), nil
	case "%":
		if b.Num == 0 {
			return vm.Value{}, &vm.DivisionByZero{}
		}
		return vm.Number(math.Mod(a.Num, b.Num)), nil
	default:
		return vm.Value{}, &vm.TypeMismatch{Operation: op, Got: vm.TypeName(a)}
	}
}

func compareNum(op string, a, b vm.Value) (vm.Value, error) {
	if a.Kind != vm.KindNumber || b.Kind != vm.KindNumber {
		return vm.Value{}, &vm.TypeMismatch{Operation: "comparison", Got: vm.TypeName(a)}
	}
	switch op {
	case "<":
		return vm.Truth(a.Num < b.Num), nil
	case "<=":
		return vm.Truth(a.Num <= b.Num), nil
	case ">":
		return vm.Truth(a.Num > b.Num), nil
	case ">=":
		return vm.Truth(a.Num >= b.Num), nil
	default:
		return vm.Value{}, &vm.TypeMismatch{Operation: op, Got: vm.TypeName(a)}
	}
}

func (e *Evaluator) evalIf(ie *ast.IfExpression, env *Environment) (vm.Value, signal, error) {
	cond, sig, err := e.evalExpr(ie.Condition, env)
	if err != nil || sig.kind != signalNone {
		return vm.Value{}, sig, err
	}
	if cond.Truthy() {
		return e.evalBlockExpr(ie.Consequence, env)
	}
	if ie.Alternative != nil {
		return e.evalBlockExpr(ie.Alternative, env)
	}
	return vm.Nothing, signal{}, nil
}

// evalBlockExpr evaluates a block in expression position: a trailing
// expression statement is the block's result; anything else (including an
// empty block) yields Nothing, matching vm.Compiler.compileBlockExpr.
func (e *Evaluator) evalBlockExpr(b *ast.BlockStatement, env *Environment) (vm.Value, signal, error) {
	child := NewEnvironment(env)
	if len(b.Statements) == 0 {
		return vm.Nothing, signal{}, nil
	}
	for i, stmt := range b.Statements {
		if i == len(b.Statements)-1 {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				return e.evalExpr(es.Expression, child)
			}
		}
		sig, err := e.evalStatement(stmt, child)
		if err != nil {
			return vm.Value{}, signal{}, err
		}
		if sig.kind != signalNone {
			return vm.Value{}, sig, nil
		}
	}
	return vm.Nothing, signal{}, nil
}

// evalMatch stashes the subject once and tests each arm in turn, exactly
// as vm.Compiler.compileMatch does with its synthetic `$match` slot — here
// there's no stack to juggle, so the subject is just a Go value reused
// directly.
func (e *Evaluator) evalMatch(me *ast.MatchExpression, env *Environment) (vm.Value, signal, error) {
	subject, sig, err := e.evalExpr(me.Subject, env)
	if err != nil || sig.kind != signalNone {
		return vm.Value{}, sig, err
	}
	for _, arm := range me.Arms {
		if arm.IsOtherwise {
			return e.evalBlockExpr(arm.Body, env)
		}
		ok, err := e.testPattern(arm.Pattern, subject, env)
		if err != nil {
			return vm.Value{}, signal{}, err
		}
		if !ok {
			continue
		}
		child := NewEnvironment(env)
		bindPattern(arm.Pattern, subject, child)
		return e.evalBlockExpr(arm.Body, child)
	}
	// Unreachable once exhaustiveness has been checked.
	return vm.Nothing, signal{}, nil
}

func (e *Evaluator) evalCall(ce *ast.CallExpression, env *Environment) (vm.Value, signal, error) {
	if id, ok := ce.Callee.(*ast.Identifier); ok {
		if ctor, isCtor := e.constructors[id.Value]; isCtor {
			args := make([]vm.Value, len(ce.Arguments))
			for i, a := range ce.Arguments {
				v, sig, err := e.evalExpr(a, env)
				if err != nil || sig.kind != signalNone {
					return vm.Value{}, sig, err
				}
				args[i] = v
			}
			return vm.NewVariant(ctor.TypeName, id.Value, args), signal{}, nil
		}
	}
	callee, sig, err := e.evalExpr(ce.Callee, env)
	if err != nil || sig.kind != signalNone {
		return vm.Value{}, sig, err
	}
	args := make([]vm.Value, len(ce.Arguments))
	for i, a := range ce.Arguments {
		v, sig, err := e.evalExpr(a, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		args[i] = v
	}
	v, err := e.callValue(callee, args)
	return v, signal{}, err
}

func (e *Evaluator) evalShapeLiteral(sl *ast.ShapeLiteral, env *Environment) (vm.Value, signal, error) {
	order := make([]string, len(sl.Entries))
	fields := make(map[string]vm.Value, len(sl.Entries))
	for i, entry := range sl.Entries {
		name := entry.Key.(*ast.Identifier).Value
		order[i] = name
		v, sig, err := e.evalExpr(entry.Value, env)
		if err != nil || sig.kind != signalNone {
			return vm.Value{}, sig, err
		}
		fields[name] = v
	}
	return vm.NewStruct(sl.Name.Value, order, fields), signal{}, nil
}

func indexValue(left, idx vm.Value) (vm.Value, error) {
	switch left.Kind {
	case vm.KindList:
		lo := left.Obj.(*vm.ListObject)
		if idx.Kind != vm.KindNumber {
			return vm.Value{}, &vm.TypeMismatch{Operation: "index", Got: vm.TypeName(idx)}
		}
		i := int(idx.Num)
		if i < 0 || i >= len(lo.Elements) {
			return vm.Value{}, &vm.IndexOutOfBounds{Index: i, Length: len(lo.Elements)}
		}
		return lo.Elements[i], nil
	case vm.KindMap:
		mo := left.Obj.(*vm.MapObject)
		if v, ok := mo.Get(idx); ok {
			return vm.Present(v), nil
		}
		return vm.Absent(), nil
	default:
		return vm.Value{}, &vm.TypeMismatch{Operation: "index", Got: vm.TypeName(left)}
	}
}

func fieldGet(left vm.Value, name string) (vm.Value, error) {
	so, ok := left.Obj.(*vm.StructObject)
	if !ok {
		return vm.Value{}, &vm.TypeMismatch{Operation: "field access", Got: vm.TypeName(left)}
	}
	v, ok := so.Fields[name]
	if !ok {
		return vm.Value{}, &vm.UndefinedName{Name: name}
	}
	return v, nil
}

// testPattern reports whether pattern matches subject, mirroring
// vm.Compiler.compileArmTest's per-pattern-kind cases.
func (e *Evaluator) testPattern(p ast.Pattern, subject vm.Value, env *Environment) (bool, error) {
	switch pt := p.(type) {
	case *ast.WildcardPattern, *ast.IdentifierPattern:
		return true, nil
	case *ast.LiteralPattern:
		lit, sig, err := e.evalExpr(pt.Value, env)
		if err != nil || sig.kind != signalNone {
			return false, err
		}
		return vm.Equal(lit, subject), nil
	case *ast.VariantPattern:
		vo, ok := subject.Obj.(*vm.VariantObject)
		if !ok {
			return false, &vm.TypeMismatch{Operation: "match", Got: vm.TypeName(subject)}
		}
		return vo.Case == pt.Constructor, nil
	default:
		return false, nil
	}
}

// bindPattern declares whatever locals pattern introduces in env.
func bindPattern(p ast.Pattern, subject vm.Value, env *Environment) {
	switch pt := p.(type) {
	case *ast.WildcardPattern, *ast.LiteralPattern:
		// Nothing to bind.
	case *ast.IdentifierPattern:
		env.Define(pt.Name, subject)
	case *ast.VariantPattern:
		vo, ok := subject.Obj.(*vm.VariantObject)
		if !ok {
			return
		}
		for i, field := range pt.Fields {
			if i < len(vo.Fields) {
				bindPattern(field, vo.Fields[i], env)
			}
		}
	}
}
