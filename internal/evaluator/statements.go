package evaluator

import "github.com/langweave/glyph/internal/ast"

// evalStatement mirrors internal/vm's compileStatement dispatch (and, one
// level further back, the analyzer's own statement switch) so "what a
// statement is" never drifts between the checker, the compiler and this
// oracle.
func (e *Evaluator) evalStatement(stmt ast.Statement, env *Environment) (signal, error) {
	switch s := stmt.(type) {
	case *ast.ConstantDeclaration:
		return e.evalBinding(s.Name.Value, s.Value, env)
	case *ast.MutableDeclaration:
		return e.evalBinding(s.Name.Value, s.Value, env)
	case *ast.AssignStatement:
		v, sig, err := e.evalExpr(s.Value, env)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
		if !env.Assign(s.Name.Value, v) {
			e.globals.Define(s.Name.Value, v)
		}
		return signal{}, nil
	case *ast.FunctionDeclaration:
		closure := e.makeClosure(s.Name.Value, s.Params, s.Body, env)
		if !env.Assign(s.Name.Value, closure) {
			env.Define(s.Name.Value, closure)
		}
		return signal{}, nil
	case *ast.ShapeDeclaration, *ast.VariantDeclaration, *ast.AspectDeclaration:
		// Pure type-level metadata; variant construction is handled directly
		// at call sites via the constructors table.
		return signal{}, nil
	case *ast.EmbodyDeclaration:
		return e.evalEmbodyDeclaration(s, env)
	case *ast.BlockStatement:
		return e.evalBlockStmt(s, env)
	case *ast.ExpressionStatement:
		_, sig, err := e.evalExpr(s.Expression, env)
		return sig, err
	case *ast.YieldStatement:
		v, sig, err := e.evalExpr(s.Value, env)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
		return signal{kind: signalYield, value: v}, nil
	case *ast.WhilstStatement:
		return e.evalWhilst(s, env)
	case *ast.ForStatement:
		return e.evalForLoop(s, env)
	case *ast.SkipStatement:
		return signal{kind: signalSkip}, nil
	case *ast.StopStatement:
		return signal{kind: signalStop}, nil
	default:
		return signal{}, e.fail("evaluator: unhandled statement %T", stmt)
	}
}

// evalBlockStmt runs a block purely for effect, in a fresh nested scope,
// stopping (and propagating) at the first non-none signal.
func (e *Evaluator) evalBlockStmt(b *ast.BlockStatement, env *Environment) (signal, error) {
	child := NewEnvironment(env)
	for _, stmt := range b.Statements {
		sig, err := e.evalStatement(stmt, child)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
	}
	return signal{}, nil
}

// evalBinding covers both `bind` (immutable) and `weave` (mutable)
// declarations: both just introduce a new binding in the current scope,
// since mutability is a compile-time-only concern the analyzer enforces.
func (e *Evaluator) evalBinding(name string, value ast.Expression, env *Environment) (signal, error) {
	v, sig, err := e.evalExpr(value, env)
	if err != nil {
		return signal{}, err
	}
	if sig.kind != signalNone {
		return sig, nil
	}
	env.Define(name, v)
	return signal{}, nil
}

// evalEmbodyDeclaration registers every method of an `embody Aspect for
// Type` block as a global closure named "Aspect#Type#method", the same
// qualified-name scheme vm.Compiler.compileEmbodyDeclaration uses.
func (e *Evaluator) evalEmbodyDeclaration(ed *ast.EmbodyDeclaration, env *Environment) (signal, error) {
	targetName := typeAnnotationName(ed.TargetType)
	for _, m := range ed.Methods {
		qualified := ed.AspectName.Value + "#" + targetName + "#" + m.Name.Value
		e.globals.Define(qualified, e.makeClosure(qualified, m.Params, m.Body, env))
	}
	return signal{}, nil
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

// evalWhilst lowers `whilst cond then body end`: `skip` re-checks the
// condition, `stop` exits the loop normally, and a `yield` anywhere in the
// body propagates straight out of the enclosing function.
func (e *Evaluator) evalWhilst(ws *ast.WhilstStatement, env *Environment) (signal, error) {
	for {
		cond, sig, err := e.evalExpr(ws.Condition, env)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
		if !cond.Truthy() {
			return signal{}, nil
		}
		bodySig, err := e.evalBlockStmt(ws.Body, env)
		if err != nil {
			return signal{}, err
		}
		switch bodySig.kind {
		case signalSkip:
			continue
		case signalStop:
			return signal{}, nil
		case signalYield:
			return bodySig, nil
		}
	}
}

// evalForLoop lowers `for name in iterable then body end` over the same
// pull-based Iterator protocol vm.iterNew realizes for the VM.
func (e *Evaluator) evalForLoop(fs *ast.ForStatement, env *Environment) (signal, error) {
	iterable, sig, err := e.evalExpr(fs.Iterable, env)
	if err != nil {
		return signal{}, err
	}
	if sig.kind != signalNone {
		return sig, nil
	}
	it, err := iterNew(iterable)
	if err != nil {
		return signal{}, err
	}
	for {
		val, ok := it.Next()
		if !ok {
			return signal{}, nil
		}
		child := NewEnvironment(env)
		child.Define(fs.Name.Value, val)
		bodySig, err := e.evalBlockStmt(fs.Body, child)
		if err != nil {
			return signal{}, err
		}
		switch bodySig.kind {
		case signalSkip:
			continue
		case signalStop:
			return signal{}, nil
		case signalYield:
			return bodySig, nil
		}
	}
}
