package evaluator_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/evaluator"
	"github.com/langweave/glyph/internal/vm"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Value: name} }

func num(n float64) *ast.NumberLiteral { return &ast.NumberLiteral{Value: n} }

func exprStmt(e ast.Expression) *ast.ExpressionStatement { return &ast.ExpressionStatement{Expression: e} }

func block(stmts ...ast.Statement) *ast.BlockStatement { return &ast.BlockStatement{Statements: stmts} }

func factorialDecl() *ast.FunctionDeclaration {
	n := ident("n")
	ifExpr := &ast.IfExpression{
		Condition:   &ast.InfixExpression{Left: n, Operator: "<=", Right: num(1)},
		Consequence: block(&ast.YieldStatement{Value: num(1)}),
		Alternative: block(&ast.YieldStatement{Value: &ast.InfixExpression{
			Left:     n,
			Operator: "*",
			Right: &ast.CallExpression{
				Callee:    ident("factorial"),
				Arguments: []ast.Expression{&ast.InfixExpression{Left: n, Operator: "-", Right: num(1)}},
			},
		}}),
	}
	return &ast.FunctionDeclaration{
		Name:   ident("factorial"),
		Params: []*ast.Param{{Name: ident("n")}},
		Body:   block(exprStmt(ifExpr)),
	}
}

// capturePrint swaps evaluator.Stdout for a buffer for the duration of fn
// and returns whatever was written.
func capturePrint(t *testing.T, fn func()) string {
	t.Helper()
	old := evaluator.Stdout
	var buf bytes.Buffer
	evaluator.Stdout = &buf
	defer func() { evaluator.Stdout = old }()
	fn()
	return buf.String()
}

func TestEval_FactorialRecursion(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		factorialDecl(),
		exprStmt(&ast.CallExpression{
			Callee:    ident("print"),
			Arguments: []ast.Expression{&ast.CallExpression{Callee: ident("factorial"), Arguments: []ast.Expression{num(5)}}},
		}),
	}}

	out := capturePrint(t, func() {
		_, err := evaluator.New().Eval(prog, nil)
		require.NoError(t, err)
	})
	assert.Equal(t, "120\n", out)
}

func TestEval_WhilstLoopWithSkipAndStop(t *testing.T) {
	iIdent := ident("i")
	body := block(
		&ast.AssignStatement{Name: ident("i"), Value: &ast.InfixExpression{Left: iIdent, Operator: "+", Right: num(1)}},
		exprStmt(&ast.IfExpression{
			Condition:   &ast.InfixExpression{Left: iIdent, Operator: "==", Right: num(5)},
			Consequence: block(&ast.SkipStatement{}),
		}),
		exprStmt(&ast.IfExpression{
			Condition:   &ast.InfixExpression{Left: iIdent, Operator: "==", Right: num(8)},
			Consequence: block(&ast.StopStatement{}),
		}),
		&ast.AssignStatement{Name: ident("total"), Value: &ast.InfixExpression{Left: ident("total"), Operator: "+", Right: iIdent}},
	)
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.MutableDeclaration{Name: ident("total"), Value: num(0)},
		&ast.MutableDeclaration{Name: ident("i"), Value: num(0)},
		&ast.WhilstStatement{Condition: &ast.InfixExpression{Left: iIdent, Operator: "<", Right: num(10)}, Body: body},
		exprStmt(&ast.CallExpression{Callee: ident("print"), Arguments: []ast.Expression{ident("total")}}),
	}}

	// i runs 1..8: the i==5 add is skipped, and the loop stops as soon as
	// i==8 (before that iteration's add runs): 1+2+3+4+6+7 = 23
	out := capturePrint(t, func() {
		_, err := evaluator.New().Eval(prog, nil)
		require.NoError(t, err)
	})
	assert.Equal(t, "23\n", out)
}

func TestEval_ForLoopOverList(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.MutableDeclaration{Name: ident("sum"), Value: num(0)},
		&ast.ForStatement{
			Name:     ident("x"),
			Iterable: &ast.ListLiteral{Elements: []ast.Expression{num(1), num(2), num(3), num(4)}},
			Body: block(&ast.AssignStatement{
				Name:  ident("sum"),
				Value: &ast.InfixExpression{Left: ident("sum"), Operator: "+", Right: ident("x")},
			}),
		},
		exprStmt(&ast.CallExpression{Callee: ident("print"), Arguments: []ast.Expression{ident("sum")}}),
	}}

	out := capturePrint(t, func() {
		_, err := evaluator.New().Eval(prog, nil)
		require.NoError(t, err)
	})
	assert.Equal(t, "10\n", out)
}

func TestEval_Closure(t *testing.T) {
	makeAdder := &ast.FunctionDeclaration{
		Name:   ident("make_adder"),
		Params: []*ast.Param{{Name: ident("n")}},
		Body: block(&ast.YieldStatement{Value: &ast.FunctionLiteral{
			Params: []*ast.Param{{Name: ident("x")}},
			Body:   block(&ast.YieldStatement{Value: &ast.InfixExpression{Left: ident("x"), Operator: "+", Right: ident("n")}}),
		}}),
	}
	prog := &ast.Program{Statements: []ast.Statement{
		makeAdder,
		&ast.ConstantDeclaration{
			Name:  ident("add5"),
			Value: &ast.CallExpression{Callee: ident("make_adder"), Arguments: []ast.Expression{num(5)}},
		},
		exprStmt(&ast.CallExpression{
			Callee:    ident("print"),
			Arguments: []ast.Expression{&ast.CallExpression{Callee: ident("add5"), Arguments: []ast.Expression{num(10)}}},
		}),
	}}

	out := capturePrint(t, func() {
		_, err := evaluator.New().Eval(prog, nil)
		require.NoError(t, err)
	})
	assert.Equal(t, "15\n", out)
}

func shapeVariantResult() *analyzer.AnalysisResult {
	return &analyzer.AnalysisResult{
		Types: map[string]*analyzer.TypeInfo{
			"Shape": {
				Name:      "Shape",
				IsVariant: true,
				Cases: []analyzer.CaseInfo{
					{Name: "Circle", Fields: []analyzer.FieldInfo{{Name: "radius"}}},
					{Name: "Square", Fields: []analyzer.FieldInfo{{Name: "side"}}},
				},
			},
		},
	}
}

func TestEval_VariantConstructAndMatch(t *testing.T) {
	matchExpr := &ast.MatchExpression{
		Subject: ident("s"),
		Arms: []*ast.MatchArm{
			{
				Pattern: &ast.VariantPattern{Constructor: "Circle", Fields: []ast.Pattern{&ast.IdentifierPattern{Name: "r"}}},
				Body: block(exprStmt(&ast.InfixExpression{
					Left:     &ast.InfixExpression{Left: ident("r"), Operator: "*", Right: ident("r")},
					Operator: "*",
					Right:    num(3),
				})),
			},
			{
				Pattern: &ast.VariantPattern{Constructor: "Square", Fields: []ast.Pattern{&ast.IdentifierPattern{Name: "side"}}},
				Body:    block(exprStmt(&ast.InfixExpression{Left: ident("side"), Operator: "*", Right: ident("side")})),
			},
		},
	}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.ConstantDeclaration{
			Name: ident("shapes"),
			Value: &ast.ListLiteral{Elements: []ast.Expression{
				&ast.CallExpression{Callee: ident("Circle"), Arguments: []ast.Expression{num(2)}},
				&ast.CallExpression{Callee: ident("Square"), Arguments: []ast.Expression{num(3)}},
			}},
		},
		&ast.ForStatement{
			Name:     ident("s"),
			Iterable: ident("shapes"),
			Body: block(
				&ast.ConstantDeclaration{Name: ident("area"), Value: matchExpr},
				exprStmt(&ast.CallExpression{Callee: ident("print"), Arguments: []ast.Expression{ident("area")}}),
			),
		},
	}}

	out := capturePrint(t, func() {
		_, err := evaluator.New().Eval(prog, shapeVariantResult())
		require.NoError(t, err)
	})
	assert.Equal(t, "12\n9\n", out)
}

func TestEval_ShapeLiteralFieldAccess(t *testing.T) {
	shape := &ast.ShapeLiteral{
		Name: ident("Point"),
		Entries: []ast.MapEntry{
			{Key: ident("x"), Value: num(3)},
			{Key: ident("y"), Value: num(4)},
		},
	}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.ConstantDeclaration{Name: ident("p"), Value: shape},
		exprStmt(&ast.CallExpression{
			Callee: ident("print"),
			Arguments: []ast.Expression{&ast.InfixExpression{
				Left:     &ast.FieldAccessExpression{Left: ident("p"), Field: "x"},
				Operator: "+",
				Right:    &ast.FieldAccessExpression{Left: ident("p"), Field: "y"},
			}},
		}),
	}}

	out := capturePrint(t, func() {
		_, err := evaluator.New().Eval(prog, nil)
		require.NoError(t, err)
	})
	assert.Equal(t, "7\n", out)
}

func TestEval_DivisionByZeroIsARuntimeError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		exprStmt(&ast.InfixExpression{Left: num(1), Operator: "/", Right: num(0)}),
	}}
	_, err := evaluator.New().Eval(prog, nil)
	require.Error(t, err)
	var divZero *vm.DivisionByZero
	assert.ErrorAs(t, err, &divZero)
}

// TestVMEqualsInterpreter checks spec §8's central property directly: the
// bytecode VM and this tree-walking oracle must agree on every program,
// run here over a representative mix of recursion, closures, loops and
// variant matching.
func TestVMEqualsInterpreter(t *testing.T) {
	programs := []struct {
		name string
		prog func() *ast.Program
		deps *analyzer.AnalysisResult
	}{
		{
			name: "factorial",
			prog: func() *ast.Program {
				return &ast.Program{Statements: []ast.Statement{
					factorialDecl(),
					&ast.YieldStatement{Value: &ast.CallExpression{Callee: ident("factorial"), Arguments: []ast.Expression{num(6)}}},
				}}
			},
		},
		{
			name: "loop with skip and stop",
			prog: func() *ast.Program {
				iIdent := ident("i")
				body := block(
					&ast.AssignStatement{Name: ident("i"), Value: &ast.InfixExpression{Left: iIdent, Operator: "+", Right: num(1)}},
					exprStmt(&ast.IfExpression{
						Condition:   &ast.InfixExpression{Left: iIdent, Operator: "==", Right: num(5)},
						Consequence: block(&ast.SkipStatement{}),
					}),
					exprStmt(&ast.IfExpression{
						Condition:   &ast.InfixExpression{Left: iIdent, Operator: "==", Right: num(8)},
						Consequence: block(&ast.StopStatement{}),
					}),
					&ast.AssignStatement{Name: ident("total"), Value: &ast.InfixExpression{Left: ident("total"), Operator: "+", Right: iIdent}},
				)
				return &ast.Program{Statements: []ast.Statement{
					&ast.MutableDeclaration{Name: ident("total"), Value: num(0)},
					&ast.MutableDeclaration{Name: ident("i"), Value: num(0)},
					&ast.WhilstStatement{Condition: &ast.InfixExpression{Left: iIdent, Operator: "<", Right: num(10)}, Body: body},
					&ast.YieldStatement{Value: ident("total")},
				}}
			},
		},
		{
			name: "closures",
			prog: func() *ast.Program {
				makeAdder := &ast.FunctionDeclaration{
					Name:   ident("make_adder"),
					Params: []*ast.Param{{Name: ident("n")}},
					Body: block(&ast.YieldStatement{Value: &ast.FunctionLiteral{
						Params: []*ast.Param{{Name: ident("x")}},
						Body:   block(&ast.YieldStatement{Value: &ast.InfixExpression{Left: ident("x"), Operator: "+", Right: ident("n")}}),
					}}),
				}
				return &ast.Program{Statements: []ast.Statement{
					makeAdder,
					&ast.ConstantDeclaration{
						Name:  ident("add5"),
						Value: &ast.CallExpression{Callee: ident("make_adder"), Arguments: []ast.Expression{num(5)}},
					},
					&ast.YieldStatement{Value: &ast.CallExpression{Callee: ident("add5"), Arguments: []ast.Expression{num(10)}}},
				}}
			},
		},
		{
			name: "variant match",
			prog: func() *ast.Program {
				matchExpr := &ast.MatchExpression{
					Subject: ident("s"),
					Arms: []*ast.MatchArm{
						{
							Pattern: &ast.VariantPattern{Constructor: "Circle", Fields: []ast.Pattern{&ast.IdentifierPattern{Name: "r"}}},
							Body: block(exprStmt(&ast.InfixExpression{
								Left:     &ast.InfixExpression{Left: ident("r"), Operator: "*", Right: ident("r")},
								Operator: "*",
								Right:    num(3),
							})),
						},
						{
							Pattern: &ast.VariantPattern{Constructor: "Square", Fields: []ast.Pattern{&ast.IdentifierPattern{Name: "side"}}},
							Body:    block(exprStmt(&ast.InfixExpression{Left: ident("side"), Operator: "*", Right: ident("side")})),
						},
					},
				}
				return &ast.Program{Statements: []ast.Statement{
					&ast.ConstantDeclaration{Name: ident("s"), Value: &ast.CallExpression{Callee: ident("Square"), Arguments: []ast.Expression{num(4)}}},
					&ast.YieldStatement{Value: matchExpr},
				}}
			},
			deps: shapeVariantResult(),
		},
	}

	for _, tc := range programs {
		t.Run(tc.name, func(t *testing.T) {
			chunk, errs := vm.Compile(tc.prog(), tc.deps)
			require.Empty(t, errs)
			vmResult, err := vm.New(chunk).Run()
			require.NoError(t, err)

			evalResult, err := evaluator.New().Eval(tc.prog(), tc.deps)
			require.NoError(t, err)

			assert.True(t, vm.Equal(vmResult, evalResult),
				"VM produced %s, interpreter produced %s", vm.ToText(vmResult), vm.ToText(evalResult))
		})
	}
}
