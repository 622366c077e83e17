// Package evaluator is the tree-walking oracle of spec §8: it interprets
// the same monomorphic AST internal/vm compiles, producing the same
// internal/vm.Value model, so a test can run a program through both
// backends and assert the results agree ("VM ≡ interpreter").
//
// The teacher ships two independent runtimes with two independent object
// systems (evaluator.Object and vm's own value type); this package instead
// shares internal/vm's value model directly, per DESIGN.md.
package evaluator

import (
	"fmt"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/vm"
)

// constructorInfo mirrors internal/vm's compiler-time table: which nominal
// type a bare-identifier call constructs, so `Circle(2)` builds a variant
// value instead of attempting to call an undefined function.
type constructorInfo struct {
	TypeName string
	Arity    int
}

// signalKind reports whether a statement sequence ran to completion or
// unwound early via `yield`/`skip`/`stop` (spec §4.4 "Control transfer").
// The VM gets this for free from jump/return opcodes; the tree-walker has
// to thread it explicitly through every block it evaluates.
type signalKind int

const (
	signalNone signalKind = iota
	signalYield
	signalSkip
	signalStop
)

type signal struct {
	kind  signalKind
	value vm.Value
}

// Evaluator holds the compile-time-equivalent state the tree-walker needs
// across a whole program: the nominal-type constructor table (identical in
// purpose to vm.Compiler.constructors) and the global scope.
type Evaluator struct {
	constructors map[string]constructorInfo
	globals      *Environment
}

// New creates an Evaluator with the builtin prelude installed.
func New() *Evaluator {
	e := &Evaluator{constructors: map[string]constructorInfo{}, globals: NewEnvironment(nil)}
	e.installBuiltins()
	return e
}

// DefineGlobal installs name into the top-level scope, ahead of running
// any program. Used by callers (pkg/embed, internal/modules) that want to
// extend the builtin prelude with virtual-package entry points before
// Eval runs.
func (e *Evaluator) DefineGlobal(name string, v vm.Value) {
	e.globals.Define(name, v)
}

// Eval runs prog to completion and returns its final value: the value
// carried by a top-level `yield`, or Nothing, matching vm.VM.Run's
// contract so the two backends are directly comparable.
func (e *Evaluator) Eval(prog *ast.Program, result *analyzer.AnalysisResult) (vm.Value, error) {
	if result != nil {
		for _, info := range result.Types {
			for _, cs := range info.Cases {
				e.constructors[cs.Name] = constructorInfo{TypeName: info.Name, Arity: len(cs.Fields)}
			}
		}
	}
	// Pre-declare top-level function names so forward/mutually recursive
	// calls resolve regardless of source order, matching
	// vm.Compiler.declareGlobalFunction.
	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			e.globals.Define(fd.Name.Value, vm.Nothing)
		}
	}
	for _, stmt := range prog.Statements {
		sig, err := e.evalStatement(stmt, e.globals)
		if err != nil {
			return vm.Value{}, err
		}
		if sig.kind == signalYield {
			return sig.value, nil
		}
	}
	return vm.Nothing, nil
}

// makeClosure builds a callable vm.Value over an AST function body. vm.Object
// is deliberately closed to outside packages (its refs() method is
// unexported), so rather than invent a parallel closure representation this
// wraps the captured environment and body in a vm.BuiltinFunc — the one
// extension point the shared value model already exposes — keeping exactly
// one Value/Object representation for both backends.
func (e *Evaluator) makeClosure(name string, params []*ast.Param, body *ast.BlockStatement, closureEnv *Environment) vm.Value {
	return vm.NewBuiltin(name, func(_ *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != len(params) {
			return vm.Value{}, &vm.ArityMismatch{Name: name, Expected: len(params), Got: len(args)}
		}
		callEnv := NewEnvironment(closureEnv)
		for i, p := range params {
			callEnv.Define(p.Name.Value, args[i])
		}
		return e.callBody(body, callEnv)
	})
}

// callValue invokes any callable value, used both by CallExpression
// evaluation and by builtins (map/filter/...) that themselves call a
// user-supplied function value.
func (e *Evaluator) callValue(callee vm.Value, args []vm.Value) (vm.Value, error) {
	if callee.Kind != vm.KindClosure {
		return vm.Value{}, &vm.NonCallable{Got: vm.TypeName(callee)}
	}
	co := callee.Obj.(*vm.ClosureObject)
	if co.Builtin == nil {
		return vm.Value{}, &vm.NonCallable{Got: vm.TypeName(callee)}
	}
	return co.Builtin(nil, args)
}

// callBody evaluates a function body: a trailing expression statement is
// its implicit result, an explicit `yield` short-circuits with its value,
// and falling off the end yields Nothing — the same three shapes
// vm.Compiler.compileFunctionBody compiles for the VM.
func (e *Evaluator) callBody(body *ast.BlockStatement, env *Environment) (vm.Value, error) {
	if len(body.Statements) == 0 {
		return vm.Nothing, nil
	}
	for i, stmt := range body.Statements {
		if i == len(body.Statements)-1 {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				v, sig, err := e.evalExpr(es.Expression, env)
				if err != nil {
					return vm.Value{}, err
				}
				if sig.kind == signalYield {
					return sig.value, nil
				}
				return v, nil
			}
		}
		sig, err := e.evalStatement(stmt, env)
		if err != nil {
			return vm.Value{}, err
		}
		if sig.kind == signalYield {
			return sig.value, nil
		}
	}
	return vm.Nothing, nil
}

func (e *Evaluator) fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
