package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/vm"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Value: name} }

func num(n float64) *ast.NumberLiteral { return &ast.NumberLiteral{Value: n} }

func exprStmt(e ast.Expression) *ast.ExpressionStatement { return &ast.ExpressionStatement{Expression: e} }

func block(stmts ...ast.Statement) *ast.BlockStatement { return &ast.BlockStatement{Statements: stmts} }

// factorialDecl builds:
//
//	chant factorial(n) then
//	  should n <= 1 then
//	    yield 1
//	  otherwise
//	    yield n * factorial(n - 1)
//	  end
//	end
func factorialDecl() *ast.FunctionDeclaration {
	n := ident("n")
	cond := &ast.InfixExpression{Left: n, Operator: "<=", Right: num(1)}
	ifExpr := &ast.IfExpression{
		Condition:   cond,
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

// capturePrint swaps vm.Stdout for a buffer for the duration of fn and
// returns whatever was written.
func capturePrint(t *testing.T, fn func()) string {
	t.Helper()
	old := vm.Stdout
	var buf bytes.Buffer
	vm.Stdout = &buf
	defer func() { vm.Stdout = old }()
	fn()
	return buf.String()
}

func TestCompileAndRun_FactorialRecursion(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		factorialDecl(),
		exprStmt(&ast.CallExpression{
			Callee:    ident("print"),
			Arguments: []ast.Expression{&ast.CallExpression{Callee: ident("factorial"), Arguments: []ast.Expression{num(5)}}},
		}),
	}}

	chunk, errs := vm.Compile(prog, nil)
	require.Empty(t, errs)

	out := capturePrint(t, func() {
		_, err := vm.New(chunk).Run()
		require.NoError(t, err)
	})
	assert.Equal(t, "120\n", out)
}

func TestCompileAndRun_BindingsAndArithmetic(t *testing.T) {
	// bind x to 2 + 3 * 4
	// print(x)
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.ConstantDeclaration{
			Name: ident("x"),
			Value: &ast.InfixExpression{
				Left:     num(2),
				Operator: "+",
				Right:    &ast.InfixExpression{Left: num(3), Operator: "*", Right: num(4)},
			},
		},
		exprStmt(&ast.CallExpression{Callee: ident("print"), Arguments: []ast.Expression{ident("x")}}),
	}}

	chunk, errs := vm.Compile(prog, nil)
	require.Empty(t, errs)

	out := capturePrint(t, func() {
		_, err := vm.New(chunk).Run()
		require.NoError(t, err)
	})
	assert.Equal(t, "14\n", out)
}

func TestCompileAndRun_WhilstLoopWithSkipAndStop(t *testing.T) {
	// weave total to 0
	// weave i to 0
	// whilst i < 10 then
	//   i <- i + 1
	//   should i == 5 then
	//     skip
	//   end
	//   should i == 8 then
	//     stop
	//   end
	//   total <- total + i
	// end
	// print(total)
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

	chunk, errs := vm.Compile(prog, nil)
	require.Empty(t, errs)

	// i runs 1..8: the i==5 add is skipped, and the loop stops as soon as
	// i==8 (before that iteration's add runs): 1+2+3+4+6+7 = 23
	out := capturePrint(t, func() {
		_, err := vm.New(chunk).Run()
		require.NoError(t, err)
	})
	assert.Equal(t, "23\n", out)
}

func TestCompileAndRun_ForLoopOverList(t *testing.T) {
	// weave sum to 0
	// for x in [1, 2, 3, 4] then
	//   sum <- sum + x
	// end
	// print(sum)
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

	chunk, errs := vm.Compile(prog, nil)
	require.Empty(t, errs)

	out := capturePrint(t, func() {
		_, err := vm.New(chunk).Run()
		require.NoError(t, err)
	})
	assert.Equal(t, "10\n", out)
}

func TestCompileAndRun_Closure(t *testing.T) {
	// chant make_adder(n) then
	//   yield function(x) then yield x + n end
	// end
	// bind add5 to make_adder(5)
	// print(add5(10))
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

	chunk, errs := vm.Compile(prog, nil)
	require.Empty(t, errs)

	out := capturePrint(t, func() {
		_, err := vm.New(chunk).Run()
		require.NoError(t, err)
	})
	assert.Equal(t, "15\n", out)
}

// variantResult wires an analyzer.AnalysisResult describing an Outcome-like
// user variant so the compiler routes its constructor calls to
// OpMakeVariant instead of treating them as ordinary function calls.
func variantResult() *analyzer.AnalysisResult {
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

func TestCompileAndRun_VariantConstructAndMatch(t *testing.T) {
	// bind shapes to [Circle(2), Square(3)]
	// for s in shapes then
	//   bind area to match s with
	//     when Circle(r) then r * r * 3
	//     when Square(side) then side * side
	//   end
	//   print(area)
	// end
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

	chunk, errs := vm.Compile(prog, variantResult())
	require.Empty(t, errs)

	out := capturePrint(t, func() {
		_, err := vm.New(chunk).Run()
		require.NoError(t, err)
	})
	assert.Equal(t, "12\n9\n", out)
}

func TestCompileAndRun_ShapeLiteralFieldAccess(t *testing.T) {
	// bind p to Point{x: 3, y: 4}
	// print(p.x + p.y)
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

	chunk, errs := vm.Compile(prog, nil)
	require.Empty(t, errs)

	out := capturePrint(t, func() {
		_, err := vm.New(chunk).Run()
		require.NoError(t, err)
	})
	assert.Equal(t, "7\n", out)
}

func TestCompile_UndefinedOperatorProducesCompilerError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		exprStmt(&ast.InfixExpression{Left: num(1), Operator: "??", Right: num(2)}),
	}}
	_, errs := vm.Compile(prog, nil)
	assert.NotEmpty(t, errs)
}

func TestRun_DivisionByZeroIsARuntimeError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		exprStmt(&ast.InfixExpression{Left: num(1), Operator: "/", Right: num(0)}),
	}}
	chunk, errs := vm.Compile(prog, nil)
	require.Empty(t, errs)

	_, err := vm.New(chunk).Run()
	require.Error(t, err)
	var divZero *vm.DivisionByZero
	assert.ErrorAs(t, err, &divZero)
}
