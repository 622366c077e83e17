package vm

import "github.com/langweave/glyph/internal/ast"

// compileStatement mirrors the analyzer's own statement dispatch so the
// compiler's notion of "what a statement is" never drifts from the
// checker's.
func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ConstantDeclaration:
		c.compileBinding(s.Name.Value, s.Value)
	case *ast.MutableDeclaration:
		c.compileBinding(s.Name.Value, s.Value)
	case *ast.AssignStatement:
		c.compileAssign(s)
	case *ast.FunctionDeclaration:
		c.compileNamedFunction(s)
	case *ast.ShapeDeclaration, *ast.VariantDeclaration, *ast.AspectDeclaration:
		// Pure type-level metadata; variant construction compiles directly
		// to OpMakeVariant at call sites via the constructors table.
	case *ast.EmbodyDeclaration:
		c.compileEmbodyDeclaration(s)
	case *ast.BlockStatement:
		c.beginScope()
		c.compileBlockStmt(s)
		c.endScope()
	case *ast.ExpressionStatement:
		c.compileExpr(s.Expression)
		c.emit(Instruction{Op: OpPop})
	case *ast.YieldStatement:
		c.compileExpr(s.Value)
		c.emit(Instruction{Op: OpYield})
	case *ast.WhilstStatement:
		c.compileWhilst(s)
	case *ast.ForStatement:
		c.compileForLoop(s)
	case *ast.SkipStatement:
		c.emit(Instruction{Op: OpLoop, A: c.cur.loopStarts[len(c.cur.loopStarts)-1]})
	case *ast.StopStatement:
		top := len(c.cur.breakJumps) - 1
		idx := c.emit(Instruction{Op: OpJump})
		c.cur.breakJumps[top] = append(c.cur.breakJumps[top], idx)
	default:
		c.fail("compiler: unhandled statement %T", stmt)
	}
}

// compileBlockStmt compiles a block used purely for effect: every
// statement, including a trailing expression statement, runs and is
// popped (contrast with compileBlockExpr's expression-position handling).
func (c *Compiler) compileBlockStmt(b *ast.BlockStatement) {
	for _, stmt := range b.Statements {
		c.compileStatement(stmt)
	}
}

// compileBinding covers both `bind` (immutable) and `weave` (mutable)
// declarations: both simply occupy a new local slot, since mutability is
// a compile-time-only concern enforced by the analyzer.
func (c *Compiler) compileBinding(name string, value ast.Expression) {
	c.compileExpr(value)
	slot := c.declareLocal(name)
	c.emit(Instruction{Op: OpStoreLocal, A: slot})
}

func (c *Compiler) compileAssign(as *ast.AssignStatement) {
	c.compileExpr(as.Value)
	kind, idx := c.resolveVariable(as.Name.Value)
	switch kind {
	case refLocal:
		c.emit(Instruction{Op: OpStoreLocal, A: idx})
	case refUpvalue:
		c.emit(Instruction{Op: OpStoreUpvalue, A: idx})
	default:
		c.emit(Instruction{Op: OpStoreGlobal, Name: as.Name.Value})
	}
}

// compileNamedFunction compiles a `chant` declaration's body into its own
// FunctionProto and binds the resulting closure: top-level declarations
// (pre-registered by declareGlobalFunction) become globals so mutually
// recursive top-level functions resolve regardless of source order;
// declarations nested inside another body become ordinary locals.
func (c *Compiler) compileNamedFunction(fd *ast.FunctionDeclaration) {
	funcIdx := c.compileFunctionProto(fd.Name.Value, fd.Params, fd.Body)
	c.emit(Instruction{Op: OpClosure, A: funcIdx})
	if c.globals[fd.Name.Value] {
		c.emit(Instruction{Op: OpStoreGlobal, Name: fd.Name.Value})
		return
	}
	slot := c.declareLocal(fd.Name.Value)
	c.emit(Instruction{Op: OpStoreLocal, A: slot})
}

// compileEmbodyDeclaration lowers every method of an `embody Aspect for
// Type` block to a global function named "Aspect#Type#method", the same
// qualified-name scheme the analyzer uses for its own method symbols.
func (c *Compiler) compileEmbodyDeclaration(ed *ast.EmbodyDeclaration) {
	targetName := typeAnnotationName(ed.TargetType)
	for _, m := range ed.Methods {
		qualified := ed.AspectName.Value + "#" + targetName + "#" + m.Name.Value
		funcIdx := c.compileFunctionProto(qualified, m.Params, m.Body)
		c.emit(Instruction{Op: OpClosure, A: funcIdx})
		c.emit(Instruction{Op: OpStoreGlobal, Name: qualified})
	}
}

func typeAnnotationName(t ast.TypeAnnotation) string {
	switch n := t.(type) {
	case *ast.NamedType:
		return n.Name
	case *ast.ParametrizedType:
		return n.Name
	default:
		return ""
	}
}

// compileFunctionProto compiles params+body into a new FunctionProto
// appended to the chunk, returning its index. The caller is responsible
// for turning that index into a closure and binding it.
func (c *Compiler) compileFunctionProto(name string, params []*ast.Param, body *ast.BlockStatement) int {
	proto := &FunctionProto{Name: name, Arity: len(params)}
	child := &funcCompiler{parent: c.cur, proto: proto}
	c.cur = child
	c.beginScope()
	for _, p := range params {
		c.declareLocal(p.Name.Value)
	}
	c.compileFunctionBody(body)
	c.endScope()
	c.chunk.Functions = append(c.chunk.Functions, proto)
	funcIdx := len(c.chunk.Functions) - 1
	c.cur = child.parent
	return funcIdx
}

// compileWhilst lowers `whilst cond then body end` to a condition check,
// conditional exit, and an unconditional jump back (§4.4 "Loops").
func (c *Compiler) compileWhilst(ws *ast.WhilstStatement) {
	loopStart := len(c.cur.proto.Code)
	c.pushLoop(loopStart)

	c.compileExpr(ws.Condition)
	exitJump := c.emit(Instruction{Op: OpJumpIfFalse})
	c.emit(Instruction{Op: OpPop})
	c.beginScope()
	c.compileBlockStmt(ws.Body)
	c.endScope()
	c.emit(Instruction{Op: OpLoop, A: loopStart})
	c.patchJump(exitJump)
	c.emit(Instruction{Op: OpPop})

	c.popLoop()
}

// compileForLoop lowers `for name in iterable then body end` onto the
// iterator protocol: IterNew once, then IterNext per iteration, leaving
// [value, matched?] on the stack so it slots into the same
// JumpIfFalse/Pop idiom every other conditional uses here.
func (c *Compiler) compileForLoop(fs *ast.ForStatement) {
	c.compileExpr(fs.Iterable)
	c.emit(Instruction{Op: OpIterNew})
	iterSlot := c.declareLocal("$iter")
	c.emit(Instruction{Op: OpStoreLocal, A: iterSlot})

	loopStart := len(c.cur.proto.Code)
	c.pushLoop(loopStart)

	c.emit(Instruction{Op: OpLoadLocal, A: iterSlot})
	c.emit(Instruction{Op: OpIterNext})
	exitJump := c.emit(Instruction{Op: OpJumpIfFalse})
	c.emit(Instruction{Op: OpPop})
	c.beginScope()
	slot := c.declareLocal(fs.Name.Value)
	c.emit(Instruction{Op: OpStoreLocal, A: slot})
	c.compileBlockStmt(fs.Body)
	c.endScope()
	c.emit(Instruction{Op: OpLoop, A: loopStart})
	c.patchJump(exitJump)
	c.emit(Instruction{Op: OpPop})

	c.popLoop()
}

func (c *Compiler) pushLoop(start int) {
	c.cur.loopStarts = append(c.cur.loopStarts, start)
	c.cur.breakJumps = append(c.cur.breakJumps, nil)
}

func (c *Compiler) popLoop() {
	top := len(c.cur.breakJumps) - 1
	for _, j := range c.cur.breakJumps[top] {
		c.patchJump(j)
	}
	c.cur.breakJumps = c.cur.breakJumps[:top]
	c.cur.loopStarts = c.cur.loopStarts[:len(c.cur.loopStarts)-1]
}
