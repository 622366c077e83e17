package analyzer

import (
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/symbols"
	"github.com/langweave/glyph/internal/typesystem"
)

// infer is the expression-level driver for spec §4.2: every expression node
// is visited exactly once, producing its inferred type, with unification
// obligations resolved immediately against the analyzer's running
// substitution rather than deferred to a separate solving pass.
func (a *Analyzer) infer(expr ast.Expression) typesystem.Type {
	switch e := expr.(type) {
	case *ast.Identifier:
		return a.inferIdentifier(e)
	case *ast.NumberLiteral:
		return typesystem.Concrete(typesystem.Number)
	case *ast.TextLiteral:
		return typesystem.Concrete(typesystem.Text)
	case *ast.TruthLiteral:
		return typesystem.Concrete(typesystem.Truth)
	case *ast.NothingLiteral:
		return typesystem.Concrete(typesystem.Nothing)
	case *ast.ListLiteral:
		return a.inferListLiteral(e)
	case *ast.MapLiteral:
		return a.inferMapLiteral(e)
	case *ast.RangeLiteral:
		a.Unify(typesystem.Concrete(typesystem.Number), a.infer(e.Start), e.Token, "range start")
		a.Unify(typesystem.Concrete(typesystem.Number), a.infer(e.End), e.Token, "range end")
		return typesystem.Concrete(typesystem.RangeBase)
	case *ast.PrefixExpression:
		return a.inferPrefix(e)
	case *ast.InfixExpression:
		return a.inferInfix(e)
	case *ast.IfExpression:
		return a.inferIf(e)
	case *ast.MatchExpression:
		return a.inferMatch(e)
	case *ast.CallExpression:
		return a.inferCall(e)
	case *ast.IndexExpression:
		return a.inferIndex(e)
	case *ast.FieldAccessExpression:
		return a.inferFieldAccess(e)
	case *ast.ShapeLiteral:
		return a.inferShapeLiteral(e)
	case *ast.FunctionLiteral:
		return a.inferFunctionLiteral(e)
	case *ast.TryExpression:
		return a.inferTry(e)
	default:
		return a.Fresh()
	}
}

func (a *Analyzer) inferIdentifier(id *ast.Identifier) typesystem.Type {
	sym, ok := a.Table.Lookup(id.Value)
	if !ok {
		a.Errors = append(a.Errors, &UndefinedVariable{errBase{id.Token}, id.Value})
		return a.Fresh()
	}
	return typesystem.Instantiate(sym.Type, a.freshFunc())
}

func (a *Analyzer) inferListLiteral(l *ast.ListLiteral) typesystem.Type {
	var elem typesystem.Type = a.Fresh()
	for _, el := range l.Elements {
		elem = a.Unify(elem, a.infer(el), l.Token, "list element")
	}
	return a.listOf(elem)
}

func (a *Analyzer) inferMapLiteral(m *ast.MapLiteral) typesystem.Type {
	var k, v typesystem.Type = a.Fresh(), a.Fresh()
	for _, entry := range m.Entries {
		k = a.Unify(k, a.infer(entry.Key), m.Token, "map key")
		v = a.Unify(v, a.infer(entry.Value), m.Token, "map value")
	}
	return a.mapOf(k, v)
}

func (a *Analyzer) inferPrefix(p *ast.PrefixExpression) typesystem.Type {
	right := a.infer(p.Right)
	switch p.Operator {
	case "-":
		return a.Unify(typesystem.Concrete(typesystem.Number), right, p.Token, "unary minus")
	case "!":
		return a.Unify(typesystem.Concrete(typesystem.Truth), right, p.Token, "logical not")
	default:
		a.Errors = append(a.Errors, &InvalidOperation{errBase{p.Token}, "unknown prefix operator " + p.Operator})
		return a.Fresh()
	}
}

func (a *Analyzer) inferInfix(i *ast.InfixExpression) typesystem.Type {
	left := a.infer(i.Left)
	right := a.infer(i.Right)
	num := typesystem.Concrete(typesystem.Number)
	truth := typesystem.Concrete(typesystem.Truth)

	switch i.Operator {
	case "+", "-", "*", "/", "%":
		a.Unify(num, left, i.Token, "arithmetic left operand")
		a.Unify(num, right, i.Token, "arithmetic right operand")
		return num
	case "<", "<=", ">", ">=":
		a.Unify(num, left, i.Token, "comparison left operand")
		a.Unify(num, right, i.Token, "comparison right operand")
		return truth
	case "==", "!=":
		a.Unify(left, right, i.Token, "equality operands")
		return truth
	case "&&", "||":
		a.Unify(truth, left, i.Token, "logical left operand")
		a.Unify(truth, right, i.Token, "logical right operand")
		return truth
	default:
		a.Errors = append(a.Errors, &InvalidOperation{errBase{i.Token}, "unknown infix operator " + i.Operator})
		return a.Fresh()
	}
}

func (a *Analyzer) inferIf(ie *ast.IfExpression) typesystem.Type {
	a.Unify(typesystem.Concrete(typesystem.Truth), a.infer(ie.Condition), ie.Token, "should condition")
	thenT := a.inferBlock(ie.Consequence)
	if ie.Alternative == nil {
		return typesystem.Concrete(typesystem.Nothing)
	}
	elseT := a.inferBlock(ie.Alternative)
	return a.Unify(thenT, elseT, ie.Token, "should/otherwise branches")
}

// inferBlock analyzes a block's statements in a fresh scope and returns the
// type of its trailing expression statement, or Nothing if it has none (§4.1
// "Block value").
func (a *Analyzer) inferBlock(b *ast.BlockStatement) typesystem.Type {
	a.Table.Push()
	defer a.Table.Pop()

	var last typesystem.Type = typesystem.Concrete(typesystem.Nothing)
	for i, stmt := range b.Statements {
		if i == len(b.Statements)-1 {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				last = a.infer(es.Expression)
				continue
			}
			if _, ok := stmt.(*ast.YieldStatement); ok && a.currentReturn != nil {
				// A trailing yield leaves the function with the return type.
				a.analyzeStatement(stmt)
				last = a.currentReturn.Apply(a.Subst)
				continue
			}
		}
		a.analyzeStatement(stmt)
	}
	return last
}

func (a *Analyzer) inferCall(c *ast.CallExpression) typesystem.Type {
	calleeT := a.inferCallee(c)
	params, result := typesystem.Uncurry(calleeT)

	if len(params) != len(c.Arguments) {
		name := calleeName(c.Callee)
		a.Errors = append(a.Errors, &ArityMismatch{errBase{c.Token}, name, len(params), len(c.Arguments)})
		for _, arg := range c.Arguments {
			a.infer(arg)
		}
		return a.Fresh()
	}
	for i, arg := range c.Arguments {
		argT := a.infer(arg)
		a.Unify(params[i], argT, c.Token, "call argument")
	}
	return result.Apply(a.Subst)
}

// inferCallee instantiates the callee's scheme, substituting explicit type
// arguments (`f<Number>(...)`) for the scheme's quantified variables in
// declaration order when present (§4.1 "Explicit instantiation").
func (a *Analyzer) inferCallee(c *ast.CallExpression) typesystem.Type {
	id, ok := c.Callee.(*ast.Identifier)
	if !ok {
		return a.infer(c.Callee)
	}
	sym, found := a.Table.Lookup(id.Value)
	if !found {
		a.Errors = append(a.Errors, &UndefinedFunction{errBase{id.Token}, id.Value})
		return a.Fresh()
	}
	forall, isForall := sym.Type.(typesystem.TForall)
	if !isForall {
		return typesystem.Instantiate(sym.Type, a.freshFunc())
	}

	s := typesystem.Subst{}
	argVars := make([]typesystem.Type, len(forall.Vars))
	for i, v := range forall.Vars {
		if i < len(c.TypeArgs) {
			t := a.resolveAnnotation(c.TypeArgs[i])
			s[v.Name] = t
			argVars[i] = t
		} else {
			fresh := a.Fresh()
			s[v.Name] = fresh
			argVars[i] = fresh
		}
	}
	if _, isUserGeneric := a.GenericFuncs[id.Value]; isUserGeneric {
		a.CallSites = append(a.CallSites, &CallSite{Call: c, FuncName: id.Value, Args: argVars})
	}
	return forall.Body.Apply(s)
}

func calleeName(e ast.Expression) string {
	if id, ok := e.(*ast.Identifier); ok {
		return id.Value
	}
	return "<expr>"
}

func (a *Analyzer) inferIndex(ix *ast.IndexExpression) typesystem.Type {
	leftT := a.infer(ix.Left).Apply(a.Subst)
	idxT := a.infer(ix.Index)

	if g, ok := leftT.(typesystem.TGeneric); ok {
		switch g.Name {
		case "List":
			a.Unify(typesystem.Concrete(typesystem.Number), idxT, ix.Token, "list index")
			return g.Args[0]
		case "Map":
			a.Unify(g.Args[0], idxT, ix.Token, "map key")
			return a.maybeOf(g.Args[1])
		}
	}
	elem := a.Fresh()
	a.Unify(a.listOf(elem), leftT, ix.Token, "indexable value")
	a.Unify(typesystem.Concrete(typesystem.Number), idxT, ix.Token, "list index")
	return elem
}

func (a *Analyzer) inferFieldAccess(fa *ast.FieldAccessExpression) typesystem.Type {
	leftT := a.infer(fa.Left).Apply(a.Subst)
	g, ok := leftT.(typesystem.TGeneric)
	if !ok {
		if con, ok2 := leftT.(typesystem.TCon); ok2 {
			g = typesystem.TGeneric{Name: con.Name}
		} else {
			a.Errors = append(a.Errors, &InvalidOperation{errBase{fa.Token}, "field access on non-shape value"})
			return a.Fresh()
		}
	}
	info, ok := a.Types[g.Name]
	if !ok || info.IsVariant {
		a.Errors = append(a.Errors, &InvalidOperation{errBase{fa.Token}, "unknown shape " + g.Name})
		return a.Fresh()
	}
	sub := substFor(info.TypeParams, g.Args)
	for _, f := range info.Fields {
		if f.Name == fa.Field {
			return f.Type.Apply(sub)
		}
	}
	a.Errors = append(a.Errors, &InvalidOperation{errBase{fa.Token}, "shape " + g.Name + " has no field " + fa.Field})
	return a.Fresh()
}

func substFor(params []string, args []typesystem.Type) typesystem.Subst {
	s := typesystem.Subst{}
	for i, p := range params {
		if i < len(args) {
			s[p] = args[i]
		}
	}
	return s
}

func (a *Analyzer) inferShapeLiteral(sl *ast.ShapeLiteral) typesystem.Type {
	info, ok := a.Types[sl.Name.Value]
	if !ok || info.IsVariant {
		a.Errors = append(a.Errors, &InvalidOperation{errBase{sl.Token}, "unknown shape " + sl.Name.Value})
		return a.Fresh()
	}
	tvs := make([]typesystem.Type, len(info.TypeParams))
	for i := range info.TypeParams {
		tvs[i] = a.Fresh()
	}
	sub := substFor(info.TypeParams, tvs)

	provided := map[string]bool{}
	for _, entry := range sl.Entries {
		fieldName := entry.Key.(*ast.Identifier).Value
		provided[fieldName] = true
		var declared typesystem.Type
		for _, f := range info.Fields {
			if f.Name == fieldName {
				declared = f.Type.Apply(sub)
				break
			}
		}
		valT := a.infer(entry.Value)
		if declared == nil {
			a.Errors = append(a.Errors, &InvalidOperation{errBase{sl.Token}, "shape " + info.Name + " has no field " + fieldName})
			continue
		}
		a.Unify(declared, valT, sl.Token, "shape field "+fieldName)
	}
	for _, f := range info.Fields {
		if !provided[f.Name] {
			a.Errors = append(a.Errors, &InvalidOperation{errBase{sl.Token}, "missing field " + f.Name + " in " + info.Name + " literal"})
		}
	}
	return typesystem.TGeneric{Name: info.Name, Args: tvs}
}

func (a *Analyzer) inferFunctionLiteral(fl *ast.FunctionLiteral) typesystem.Type {
	a.Table.Push()
	defer a.Table.Pop()
	a.funcDepth++
	defer func() { a.funcDepth-- }()

	paramTypes := make([]typesystem.Type, len(fl.Params))
	for i, p := range fl.Params {
		t := a.resolveAnnotation(p.TypeAnnotation)
		paramTypes[i] = t
		a.Table.Define(&symbols.Symbol{Name: p.Name.Value, Type: t, Kind: symbols.VariableSymbol, Defined: true})
	}
	ret := a.resolveAnnotation(fl.ReturnType)
	bodyT := a.inferFunctionBody(fl.Body, ret)
	a.Unify(ret, bodyT, fl.Token, "function literal body")
	return typesystem.MakeArrow(paramTypes, ret.Apply(a.Subst))
}

// inferFunctionBody analyzes body and returns the type yielded either by an
// explicit `yield` statement or by the trailing expression (§4.1 "A function
// body's result").
func (a *Analyzer) inferFunctionBody(b *ast.BlockStatement, expectedReturn typesystem.Type) typesystem.Type {
	prevReturn := a.currentReturn
	a.currentReturn = expectedReturn
	defer func() { a.currentReturn = prevReturn }()
	return a.inferBlock(b)
}

func (a *Analyzer) inferTry(te *ast.TryExpression) typesystem.Type {
	valT := a.infer(te.Value).Apply(a.Subst)
	g, ok := valT.(typesystem.TGeneric)
	if !ok || g.Name != "Outcome" {
		a.Errors = append(a.Errors, &InvalidOperation{errBase{te.Token}, "'?' requires an Outcome value"})
		return a.Fresh()
	}
	if a.currentReturn != nil {
		a.Unify(a.outcomeOf(a.Fresh(), g.Args[1]), a.currentReturn, te.Token, "error propagation target")
	}
	return g.Args[0]
}
