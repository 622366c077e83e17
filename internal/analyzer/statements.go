package analyzer

import (
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/config"
	"github.com/langweave/glyph/internal/symbols"
	"github.com/langweave/glyph/internal/typesystem"
)

// analyzeStatement is pass 3: full inference over every statement kind,
// including nested function bodies and aspect embodiments.
func (a *Analyzer) analyzeStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ConstantDeclaration:
		a.analyzeConstantDeclaration(s)
	case *ast.MutableDeclaration:
		a.analyzeMutableDeclaration(s)
	case *ast.AssignStatement:
		a.analyzeAssignStatement(s)
	case *ast.FunctionDeclaration:
		a.analyzeFunctionDeclaration(s)
	case *ast.ShapeDeclaration, *ast.VariantDeclaration, *ast.AspectDeclaration:
		// fully handled in registerDeclaration; nothing left to analyze.
	case *ast.EmbodyDeclaration:
		a.analyzeEmbodyDeclaration(s)
	case *ast.BlockStatement:
		a.inferBlock(s)
	case *ast.ExpressionStatement:
		a.infer(s.Expression)
	case *ast.YieldStatement:
		a.analyzeYieldStatement(s)
	case *ast.WhilstStatement:
		a.analyzeWhilstStatement(s)
	case *ast.ForStatement:
		a.analyzeForStatement(s)
	case *ast.SkipStatement, *ast.StopStatement:
		if a.loopDepth == 0 {
			a.Errors = append(a.Errors, &InvalidOperation{errBase{stmt.GetToken()}, "skip/stop used outside a loop"})
		}
	}
}

func (a *Analyzer) analyzeConstantDeclaration(cd *ast.ConstantDeclaration) {
	valT := a.infer(cd.Value)
	declared := a.resolveAnnotation(cd.TypeAnnotation)
	if cd.TypeAnnotation != nil {
		valT = a.Unify(declared, valT, cd.Token, "bind annotation")
	}
	scheme := typesystem.Generalize(a.Table.FreeVarsInEnv(), valT.Apply(a.Subst))
	if _, exists := a.Table.LookupLocal(cd.Name.Value); exists {
		a.Errors = append(a.Errors, &DuplicateDefinition{errBase{cd.Token}, cd.Name.Value})
		return
	}
	a.Table.Define(&symbols.Symbol{Name: cd.Name.Value, Type: scheme, Kind: symbols.VariableSymbol, Mutable: false, Defined: true})
}

func (a *Analyzer) analyzeMutableDeclaration(md *ast.MutableDeclaration) {
	valT := a.infer(md.Value)
	declared := a.resolveAnnotation(md.TypeAnnotation)
	if md.TypeAnnotation != nil {
		valT = a.Unify(declared, valT, md.Token, "weave annotation")
	}
	if _, exists := a.Table.LookupLocal(md.Name.Value); exists {
		a.Errors = append(a.Errors, &DuplicateDefinition{errBase{md.Token}, md.Name.Value})
		return
	}
	// Mutable bindings are monomorphic (§3: "weave bindings never
	// generalize, since a later assignment could narrow their use").
	a.Table.Define(&symbols.Symbol{Name: md.Name.Value, Type: valT.Apply(a.Subst), Kind: symbols.VariableSymbol, Mutable: true, Defined: true})
}

func (a *Analyzer) analyzeAssignStatement(as *ast.AssignStatement) {
	sym, ok := a.Table.Lookup(as.Name.Value)
	if !ok {
		a.Errors = append(a.Errors, &UndefinedVariable{errBase{as.Token}, as.Name.Value})
		return
	}
	if !sym.Mutable {
		a.Errors = append(a.Errors, &ImmutableBinding{errBase{as.Token}, as.Name.Value})
	}
	valT := a.infer(as.Value)
	a.Unify(sym.Type, valT, as.Token, "assignment")
}

func (a *Analyzer) analyzeFunctionDeclaration(fd *ast.FunctionDeclaration) {
	sig, ok := a.Table.Lookup(fd.Name.Value)
	if !ok {
		// Not pre-declared (nested function): register it now.
		sig = &symbols.Symbol{Type: a.declareFunctionSignature(fd)}
	}

	fullT := sig.Type
	params := identNames(fd.TypeParams)
	ctx := symbols.GenericContext{}
	if forall, isForall := fullT.(typesystem.TForall); isForall {
		for i, v := range forall.Vars {
			if i < len(params) {
				ctx[params[i]] = v
			}
		}
		fullT = forall.Body
	}
	a.Generic.Push(ctx)
	defer a.Generic.Pop()

	paramTypes, ret := typesystem.Uncurry(fullT)

	a.Table.Push()
	defer a.Table.Pop()
	for i, p := range fd.Params {
		if i < len(paramTypes) {
			a.Table.Define(&symbols.Symbol{Name: p.Name.Value, Type: paramTypes[i], Kind: symbols.VariableSymbol, Defined: true})
		}
	}

	a.funcDepth++
	bodyT := a.inferFunctionBody(fd.Body, ret)
	a.funcDepth--
	a.Unify(ret, bodyT, fd.Token, "function body")
}

func (a *Analyzer) analyzeEmbodyDeclaration(ed *ast.EmbodyDeclaration) {
	aspect, ok := a.Aspects[ed.AspectName.Value]
	if !ok {
		a.Errors = append(a.Errors, &InvalidOperation{errBase{ed.Token}, "unknown aspect " + ed.AspectName.Value})
		return
	}
	targetT := a.resolveAnnotation(ed.TargetType)
	targetName := typeConstructorName(targetT)

	key := ed.AspectName.Value + ":" + targetName
	if _, exists := a.Embodiments[key]; exists {
		a.Errors = append(a.Errors, &DuplicateDefinition{errBase{ed.Token}, key})
		return
	}
	methodMap := map[string]string{}

	// A generic frame holds TVars, so Self gets a fresh variable that the
	// running substitution binds to the target type.
	selfVar := a.Fresh()
	a.Subst = a.Subst.Compose(typesystem.Subst{selfVar.Name: targetT})
	ctx := symbols.GenericContext{aspect.Self: selfVar}
	a.Generic.Push(ctx)
	defer a.Generic.Pop()

	seen := map[string]bool{}
	for _, m := range ed.Methods {
		expected, declared := aspect.Methods[m.Name.Value]
		if !declared {
			a.Errors = append(a.Errors, &InvalidOperation{errBase{m.Token}, "aspect " + ed.AspectName.Value + " has no method " + m.Name.Value})
			continue
		}
		seen[m.Name.Value] = true
		qualified := ed.AspectName.Value + "#" + targetName + "#" + m.Name.Value
		methodMap[m.Name.Value] = qualified

		a.Table.Push()
		paramTypes, ret := typesystem.Uncurry(expected.Apply(typesystem.Subst{aspect.Self: targetT}))
		for i, p := range m.Params {
			if i < len(paramTypes) {
				a.Table.Define(&symbols.Symbol{Name: p.Name.Value, Type: paramTypes[i], Kind: symbols.VariableSymbol, Defined: true})
			}
		}
		a.funcDepth++
		bodyT := a.inferFunctionBody(m.Body, ret)
		a.funcDepth--
		a.Unify(ret, bodyT, m.Token, "embody method "+m.Name.Value)
		a.Table.Pop()

		a.Table.Define(&symbols.Symbol{Name: qualified, Type: expected, Kind: symbols.FunctionSymbol, Defined: true})
	}
	for name := range aspect.Methods {
		if !seen[name] {
			a.Errors = append(a.Errors, &InvalidOperation{errBase{ed.Token}, "embody " + ed.AspectName.Value + " for " + targetName + " is missing method " + name})
		}
	}
	a.Embodiments[key] = methodMap
}

func typeConstructorName(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.TCon:
		return tt.Name
	case typesystem.TGeneric:
		return tt.Name
	default:
		return t.String()
	}
}

func (a *Analyzer) analyzeYieldStatement(ys *ast.YieldStatement) {
	if a.funcDepth == 0 {
		a.Errors = append(a.Errors, &ReturnOutsideFunction{errBase{ys.Token}})
	}
	valT := a.infer(ys.Value)
	if a.currentReturn != nil {
		a.Unify(a.currentReturn, valT, ys.Token, "yield value")
	}
}

func (a *Analyzer) analyzeWhilstStatement(ws *ast.WhilstStatement) {
	a.Unify(typesystem.Concrete(typesystem.Truth), a.infer(ws.Condition), ws.Token, "whilst condition")
	a.loopDepth++
	a.inferBlock(ws.Body)
	a.loopDepth--
}

func (a *Analyzer) analyzeForStatement(fs *ast.ForStatement) {
	iterT := a.infer(fs.Iterable).Apply(a.Subst)
	var elem typesystem.Type = a.Fresh()
	switch t := iterT.(type) {
	case typesystem.TGeneric:
		if t.Name == config.ListTypeName && len(t.Args) == 1 {
			elem = t.Args[0]
		} else {
			a.Errors = append(a.Errors, &InvalidOperation{errBase{fs.Token},
				"for-loop iterable must be a List, Range, Any, or Unknown, got " + renderType(iterT)})
		}
	case typesystem.TCon:
		switch t.Name {
		case string(typesystem.RangeBase):
			elem = typesystem.Concrete(typesystem.Number)
		case string(typesystem.Any), string(typesystem.UnknownT):
			// permitted as-is (§4.1: Any/Unknown iterate as a fresh element type).
		default:
			a.Errors = append(a.Errors, &InvalidOperation{errBase{fs.Token},
				"for-loop iterable must be a List, Range, Any, or Unknown, got " + renderType(iterT)})
		}
	case typesystem.TVar:
		// Unresolved at this point in inference; treated as Unknown (§4.1).
	default:
		a.Errors = append(a.Errors, &InvalidOperation{errBase{fs.Token},
			"for-loop iterable must be a List, Range, Any, or Unknown, got " + renderType(iterT)})
	}

	a.Table.Push()
	a.Table.Define(&symbols.Symbol{Name: fs.Name.Value, Type: elem, Kind: symbols.VariableSymbol, Defined: true})
	a.loopDepth++
	a.inferBlock(fs.Body)
	a.loopDepth--
	a.Table.Pop()
}
