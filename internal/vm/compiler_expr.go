package vm

import (
	"strings"

	"github.com/langweave/glyph/internal/ast"
)

func (c *Compiler) compileExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Number(e.Value))})
	case *ast.TextLiteral:
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Text(e.Value))})
	case *ast.TruthLiteral:
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Truth(e.Value))})
	case *ast.NothingLiteral:
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Nothing)})
	case *ast.Identifier:
		c.compileIdentifier(e.Value)
	case *ast.ListLiteral:
		for _, el := range e.Elements {
			c.compileExpr(el)
		}
		c.emit(Instruction{Op: OpBuildList, A: len(e.Elements)})
	case *ast.MapLiteral:
		for _, entry := range e.Entries {
			c.compileExpr(entry.Key)
			c.compileExpr(entry.Value)
		}
		c.emit(Instruction{Op: OpBuildMap, A: len(e.Entries)})
	case *ast.RangeLiteral:
		c.compileExpr(e.Start)
		c.compileExpr(e.End)
		c.emit(Instruction{Op: OpBuildRange})
	case *ast.PrefixExpression:
		c.compileExpr(e.Right)
		switch e.Operator {
		case "-":
			c.emit(Instruction{Op: OpNeg})
		case "!":
			c.emit(Instruction{Op: OpNot})
		}
	case *ast.InfixExpression:
		c.compileInfix(e)
	case *ast.IfExpression:
		c.compileIf(e)
	case *ast.MatchExpression:
		c.compileMatch(e)
	case *ast.CallExpression:
		c.compileCall(e)
	case *ast.IndexExpression:
		c.compileExpr(e.Left)
		c.compileExpr(e.Index)
		c.emit(Instruction{Op: OpIndex})
	case *ast.FieldAccessExpression:
		c.compileExpr(e.Left)
		c.emit(Instruction{Op: OpFieldGet, Name: e.Field})
	case *ast.ShapeLiteral:
		c.compileShapeLiteral(e)
	case *ast.FunctionLiteral:
		c.compileFunctionLiteral(e)
	case *ast.TryExpression:
		c.compileExpr(e.Value)
		c.emit(Instruction{Op: OpTry})
	default:
		c.fail("compiler: unhandled expression %T", expr)
	}
}

func (c *Compiler) compileIdentifier(name string) {
	kind, idx := c.resolveVariable(name)
	switch kind {
	case refLocal:
		c.emit(Instruction{Op: OpLoadLocal, A: idx})
	case refUpvalue:
		c.emit(Instruction{Op: OpLoadUpvalue, A: idx})
	default:
		c.emit(Instruction{Op: OpLoadGlobal, Name: name})
	}
}

var infixOps = map[string]Opcode{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"==": OpEq, "!=": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

func (c *Compiler) compileInfix(e *ast.InfixExpression) {
	if e.Operator == "&&" || e.Operator == "||" {
		c.compileShortCircuit(e)
		return
	}
	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	op, ok := infixOps[e.Operator]
	if !ok {
		c.fail("compiler: unknown operator %s", e.Operator)
		return
	}
	c.emit(Instruction{Op: op})
}

// compileShortCircuit lowers `&&`/`||` to a conditional jump rather than an
// unconditional Eq-style opcode, since Truth must not evaluate the right
// operand when the left already decides the result.
func (c *Compiler) compileShortCircuit(e *ast.InfixExpression) {
	c.compileExpr(e.Left)
	if e.Operator == "&&" {
		jmp := c.emit(Instruction{Op: OpJumpIfFalse})
		c.emit(Instruction{Op: OpPop})
		c.compileExpr(e.Right)
		c.patchJump(jmp)
		return
	}
	// `||`: jump over RHS if LHS is already true.
	jmpIfFalse := c.emit(Instruction{Op: OpJumpIfFalse})
	jmpEnd := c.emit(Instruction{Op: OpJump})
	c.patchJump(jmpIfFalse)
	c.emit(Instruction{Op: OpPop})
	c.compileExpr(e.Right)
	c.patchJump(jmpEnd)
}

func (c *Compiler) compileIf(e *ast.IfExpression) {
	c.compileExpr(e.Condition)
	jmpElse := c.emit(Instruction{Op: OpJumpIfFalse})
	c.emit(Instruction{Op: OpPop})
	c.compileBlockExpr(e.Consequence)
	jmpEnd := c.emit(Instruction{Op: OpJump})
	c.patchJump(jmpElse)
	c.emit(Instruction{Op: OpPop})
	if e.Alternative != nil {
		c.compileBlockExpr(e.Alternative)
	} else {
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Nothing)})
	}
	c.patchJump(jmpEnd)
}

// compileBlockExpr compiles a block used in expression position: every
// statement but the last runs for effect (and pops its value if it was an
// expression statement); the last, if an expression statement, leaves its
// value on the stack as the block's result.
func (c *Compiler) compileBlockExpr(b *ast.BlockStatement) {
	c.beginScope()
	defer c.endScope()
	if len(b.Statements) == 0 {
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Nothing)})
		return
	}
	for i, stmt := range b.Statements {
		if i == len(b.Statements)-1 {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				c.compileExpr(es.Expression)
				return
			}
		}
		c.compileStatement(stmt)
	}
	c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Nothing)})
}

// compileMatch stashes the subject in a synthetic local so every arm can
// reload it independently: the test and the bind each need their own copy,
// and a plain stack slot can't be peeked without an extra opcode per arm.
func (c *Compiler) compileMatch(e *ast.MatchExpression) {
	c.compileExpr(e.Subject)
	subjectSlot := c.declareLocal("$match")
	c.emit(Instruction{Op: OpStoreLocal, A: subjectSlot})

	var endJumps []int
	for _, arm := range e.Arms {
		hasGuard := !arm.IsOtherwise
		var nextArmJump int
		c.beginScope()
		if hasGuard {
			c.emit(Instruction{Op: OpLoadLocal, A: subjectSlot})
			c.compileArmTest(arm.Pattern)
			nextArmJump = c.emit(Instruction{Op: OpJumpIfFalse})
			c.emit(Instruction{Op: OpPop})
			c.emit(Instruction{Op: OpLoadLocal, A: subjectSlot})
			c.bindArmPattern(arm.Pattern)
		}
		c.compileBlockExpr(arm.Body)
		c.endScope()
		endJumps = append(endJumps, c.emit(Instruction{Op: OpJump}))
		if hasGuard {
			c.patchJump(nextArmJump)
			c.emit(Instruction{Op: OpPop})
		}
	}
	// Unreachable once exhaustiveness has been checked, but keeps the stack
	// balanced if it ever is.
	c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Nothing)})
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

// compileArmTest consumes the subject on top of the stack and pushes a
// Truth reporting whether pattern matches it.
func (c *Compiler) compileArmTest(p ast.Pattern) {
	switch pt := p.(type) {
	case *ast.WildcardPattern, *ast.IdentifierPattern:
		c.emit(Instruction{Op: OpPop})
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Truth(true))})
	case *ast.LiteralPattern:
		c.compileExpr(pt.Value)
		c.emit(Instruction{Op: OpEq})
	case *ast.VariantPattern:
		c.emit(Instruction{Op: OpVariantIs, Name: pt.Constructor})
	}
}

// bindArmPattern consumes the subject on top of the stack, declaring and
// populating whatever locals pattern introduces.
func (c *Compiler) bindArmPattern(p ast.Pattern) {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		c.emit(Instruction{Op: OpPop})
	case *ast.LiteralPattern:
		c.emit(Instruction{Op: OpPop})
	case *ast.IdentifierPattern:
		c.declareLocal(pt.Name)
		slot, _ := resolveLocal(c.cur, pt.Name)
		c.emit(Instruction{Op: OpStoreLocal, A: slot})
	case *ast.VariantPattern:
		for i, field := range pt.Fields {
			c.emit(Instruction{Op: OpDup})
			c.emit(Instruction{Op: OpVariantField, A: i})
			c.bindArmPattern(field)
		}
		c.emit(Instruction{Op: OpPop})
	}
}

func (c *Compiler) compileCall(e *ast.CallExpression) {
	if id, ok := e.Callee.(*ast.Identifier); ok {
		if ctor, isCtor := c.constructors[id.Value]; isCtor {
			for _, arg := range e.Arguments {
				c.compileExpr(arg)
			}
			c.emit(Instruction{Op: OpMakeVariant, A: len(e.Arguments), Name: ctor.TypeName + "." + id.Value})
			return
		}
	}
	c.compileExpr(e.Callee)
	for _, arg := range e.Arguments {
		c.compileExpr(arg)
	}
	c.emit(Instruction{Op: OpCall, A: len(e.Arguments)})
}

func (c *Compiler) compileShapeLiteral(sl *ast.ShapeLiteral) {
	names := make([]string, len(sl.Entries))
	for i, entry := range sl.Entries {
		names[i] = entry.Key.(*ast.Identifier).Value
		c.compileExpr(entry.Value)
	}
	c.emit(Instruction{
		Op:   OpMakeStruct,
		A:    len(sl.Entries),
		Name: sl.Name.Value,
		B:    c.emitConst(Text(strings.Join(names, ","))),
	})
}

func (c *Compiler) compileFunctionLiteral(fl *ast.FunctionLiteral) {
	funcIdx := c.compileFunctionProto("<lambda>", fl.Params, fl.Body)
	c.emit(Instruction{Op: OpClosure, A: funcIdx})
}

// compileFunctionBody compiles a body whose trailing expression statement
// (if any) and any `yield` statements become the function's result.
func (c *Compiler) compileFunctionBody(b *ast.BlockStatement) {
	if len(b.Statements) == 0 {
		c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Nothing)})
		c.emit(Instruction{Op: OpReturn})
		return
	}
	for i, stmt := range b.Statements {
		if i == len(b.Statements)-1 {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				c.compileExpr(es.Expression)
				c.emit(Instruction{Op: OpReturn})
				return
			}
		}
		c.compileStatement(stmt)
	}
	c.emit(Instruction{Op: OpPushConst, A: c.emitConst(Nothing)})
	c.emit(Instruction{Op: OpReturn})
}
