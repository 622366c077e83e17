package vm

import (
	"fmt"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
)

// constructorInfo is what the compiler needs to know about one variant
// case to emit OpMakeVariant instead of an ordinary call.
type constructorInfo struct {
	TypeName string
	Arity    int
}

// localVar is one compile-time local slot.
type localVar struct {
	name  string
	slot  int
	depth int
}

// funcCompiler holds compile-time state for one function body (or the
// top-level script, treated as an implicit function with no parameters).
type funcCompiler struct {
	parent    *funcCompiler
	proto     *FunctionProto
	locals    []localVar
	scopeDepth int
	loopStarts []int
	breakJumps [][]int // one pending-jump list per enclosing loop, for `stop`
	skipTargets []int  // loop-start index per enclosing loop, for `skip`
}

// Compiler lowers a monomorphic AST (internal/monomorph's output) into a
// Chunk, per spec §4.4.
type Compiler struct {
	chunk        *Chunk
	cur          *funcCompiler
	globals      map[string]bool
	constructors map[string]constructorInfo
	errors       []error
}

// NewCompiler creates a Compiler with an empty top-level chunk.
func NewCompiler() *Compiler {
	c := &Compiler{chunk: &Chunk{}, globals: map[string]bool{}, constructors: map[string]constructorInfo{}}
	c.cur = &funcCompiler{proto: &FunctionProto{Name: "<script>"}}
	return c
}

// Compile implements the public `compile(ast)` entry point of spec §6,
// lowering the (already monomorphized) program into a Chunk. result
// supplies the nominal type declarations the analyzer collected, so
// variant-constructor calls (e.g. `Triumph(x)`) compile to OpMakeVariant
// rather than an ordinary OpCall.
func Compile(prog *ast.Program, result *analyzer.AnalysisResult) (*Chunk, []error) {
	c := NewCompiler()
	if result != nil {
		for _, info := range result.Types {
			for _, cs := range info.Cases {
				c.constructors[cs.Name] = constructorInfo{TypeName: info.Name, Arity: len(cs.Fields)}
			}
		}
	}
	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			c.declareGlobalFunction(fd)
		}
	}
	for _, stmt := range prog.Statements {
		c.compileStatement(stmt)
	}
	c.emit(Instruction{Op: OpReturn})
	c.chunk.Code = c.cur.proto.Code
	c.chunk.Constants = c.cur.proto.Constants
	return c.chunk, c.errors
}

func (c *Compiler) fail(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Errorf(format, args...))
}

func (c *Compiler) emit(ins Instruction) int {
	c.cur.proto.Code = append(c.cur.proto.Code, ins)
	return len(c.cur.proto.Code) - 1
}

func (c *Compiler) emitConst(v Value) int {
	idx := -1
	for i, existing := range c.cur.proto.Constants {
		if sameConstant(existing, v) {
			idx = i
			break
		}
	}
	if idx == -1 {
		c.cur.proto.Constants = append(c.cur.proto.Constants, v)
		idx = len(c.cur.proto.Constants) - 1
	}
	return idx
}

func (c *Compiler) patchJump(at int) {
	c.cur.proto.Code[at].A = len(c.cur.proto.Code)
}

// declareGlobalFunction pre-registers every top-level function's name as a
// global so forward/mutually recursive calls resolve before bodies compile.
func (c *Compiler) declareGlobalFunction(fd *ast.FunctionDeclaration) {
	c.globals[fd.Name.Value] = true
}

func (c *Compiler) beginScope() { c.cur.scopeDepth++ }

func (c *Compiler) endScope() {
	c.cur.scopeDepth--
	for len(c.cur.locals) > 0 && c.cur.locals[len(c.cur.locals)-1].depth > c.cur.scopeDepth {
		c.cur.locals = c.cur.locals[:len(c.cur.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string) int {
	slot := len(c.cur.locals)
	c.cur.locals = append(c.cur.locals, localVar{name: name, slot: slot, depth: c.cur.scopeDepth})
	if slot+1 > c.cur.proto.NumLocals {
		c.cur.proto.NumLocals = slot + 1
	}
	return slot
}

// resolveLocal looks for name in fc's own locals, innermost scope first.
func resolveLocal(fc *funcCompiler, name string) (int, bool) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			return fc.locals[i].slot, true
		}
	}
	return 0, false
}

// resolveUpvalue finds name in an enclosing function's locals or upvalues,
// adding (and deduplicating) the capture chain as it unwinds (§4.4 "closing
// over a local promotes it to an upvalue").
func resolveUpvalue(fc *funcCompiler, name string) (int, bool) {
	if fc.parent == nil {
		return 0, false
	}
	if slot, ok := resolveLocal(fc.parent, name); ok {
		return addUpvalue(fc, UpvalueRef{FromParentLocal: true, Index: slot}), true
	}
	if idx, ok := resolveUpvalue(fc.parent, name); ok {
		return addUpvalue(fc, UpvalueRef{FromParentLocal: false, Index: idx}), true
	}
	return 0, false
}

func addUpvalue(fc *funcCompiler, ref UpvalueRef) int {
	for i, existing := range fc.proto.UpvalueRefs {
		if existing == ref {
			return i
		}
	}
	fc.proto.UpvalueRefs = append(fc.proto.UpvalueRefs, ref)
	return len(fc.proto.UpvalueRefs) - 1
}

// variableRef classifies how an identifier resolves at this point in
// compilation, mirroring the analyzer's own scope-then-global order.
type refKind int

const (
	refLocal refKind = iota
	refUpvalue
	refGlobal
)

func (c *Compiler) resolveVariable(name string) (refKind, int) {
	if slot, ok := resolveLocal(c.cur, name); ok {
		return refLocal, slot
	}
	if idx, ok := resolveUpvalue(c.cur, name); ok {
		return refUpvalue, idx
	}
	return refGlobal, 0
}
