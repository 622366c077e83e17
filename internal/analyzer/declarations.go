package analyzer

import (
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/symbols"
	"github.com/langweave/glyph/internal/typesystem"
)

func identNames(ids []*ast.Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Value
	}
	return out
}

// pushGenericFrame binds each declared type-parameter name to a fresh TVar
// for the duration of analyzing one declaration's signature and body (§4.1
// "Generic declaration": "a fresh context frame maps every declared
// parameter name to a distinct type variable for the scope of that
// declaration").
func (a *Analyzer) pushGenericFrame(names []string) symbols.GenericContext {
	ctx := symbols.GenericContext{}
	for _, n := range names {
		ctx[n] = a.Fresh()
	}
	a.Generic.Push(ctx)
	return ctx
}

// registerDeclaration is pass 1: it records the shape of every nominal type
// (shape, variant, aspect) so field/case/method lookups work regardless of
// declaration order, without yet analyzing any expression.
func (a *Analyzer) registerDeclaration(stmt ast.Statement) {
	switch d := stmt.(type) {
	case *ast.ShapeDeclaration:
		a.registerShape(d)
	case *ast.VariantDeclaration:
		a.registerVariant(d)
	case *ast.AspectDeclaration:
		a.registerAspect(d)
	}
}

func (a *Analyzer) registerShape(d *ast.ShapeDeclaration) {
	name := d.Name.Value
	if _, exists := a.Types[name]; exists {
		a.Errors = append(a.Errors, &DuplicateDefinition{errBase{d.Token}, name})
		return
	}
	params := identNames(d.TypeParams)
	ctx := a.pushGenericFrame(params)
	defer a.Generic.Pop()

	fields := make([]FieldInfo, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = FieldInfo{Name: f.Name.Value, Type: a.resolveAnnotationIn(f.TypeAnnotation, ctx)}
	}
	a.Types[name] = &TypeInfo{Name: name, TypeParams: params, Fields: fields}
	a.Table.Define(&symbols.Symbol{Name: name, Kind: symbols.TypeSymbol, Defined: true, Type: typesystem.TCon{Name: name}})
}

func (a *Analyzer) registerVariant(d *ast.VariantDeclaration) {
	name := d.Name.Value
	if _, exists := a.Types[name]; exists {
		a.Errors = append(a.Errors, &DuplicateDefinition{errBase{d.Token}, name})
		return
	}
	params := identNames(d.TypeParams)
	ctx := a.pushGenericFrame(params)
	defer a.Generic.Pop()

	cases := make([]CaseInfo, len(d.Cases))
	for i, c := range d.Cases {
		fields := make([]FieldInfo, len(c.Fields))
		for j, f := range c.Fields {
			fields[j] = FieldInfo{Name: f.Name.Value, Type: a.resolveAnnotationIn(f.TypeAnnotation, ctx)}
		}
		cases[i] = CaseInfo{Name: c.Name.Value, Fields: fields}
	}
	info := &TypeInfo{Name: name, TypeParams: params, IsVariant: true, Cases: cases}
	a.Types[name] = info
	a.Table.Define(&symbols.Symbol{Name: name, Kind: symbols.TypeSymbol, Defined: true, Type: typesystem.TCon{Name: name}})
	a.defineConstructors(name)
}

func (a *Analyzer) registerAspect(d *ast.AspectDeclaration) {
	name := d.Name.Value
	if _, exists := a.Aspects[name]; exists {
		a.Errors = append(a.Errors, &DuplicateDefinition{errBase{d.Token}, name})
		return
	}
	selfName := "Self"
	if d.Self != nil {
		selfName = d.Self.Value
	}
	ctx := symbols.GenericContext{selfName: a.Fresh()}
	a.Generic.Push(ctx)
	defer a.Generic.Pop()

	methods := map[string]typesystem.Type{}
	for _, m := range d.Methods {
		params := make([]typesystem.Type, len(m.Params))
		for i, p := range m.Params {
			params[i] = a.resolveAnnotationIn(p.TypeAnnotation, ctx)
		}
		ret := a.resolveAnnotationIn(m.ReturnType, ctx)
		methods[m.Name.Value] = typesystem.MakeArrow(params, ret)
	}
	a.Aspects[name] = &AspectInfo{Name: name, Self: selfName, Methods: methods}
	a.Table.Define(&symbols.Symbol{Name: name, Kind: symbols.AspectSymbol, Defined: true, Type: typesystem.TCon{Name: name}})
}

// resolveAnnotationIn resolves t with ctx as the active (and only) generic
// frame, used while registering a declaration's own signature before its
// body scope exists.
func (a *Analyzer) resolveAnnotationIn(t ast.TypeAnnotation, ctx symbols.GenericContext) typesystem.Type {
	return a.resolveAnnotation(t)
}

// predeclareFunction is pass 2: top-level `chant` declarations get a symbol
// with a fresh-variable signature before any body is analyzed, so mutually
// recursive and forward-referenced functions resolve.
func (a *Analyzer) predeclareFunction(stmt ast.Statement) {
	fd, ok := stmt.(*ast.FunctionDeclaration)
	if !ok {
		return
	}
	a.declareFunctionSignature(fd)
}

func (a *Analyzer) declareFunctionSignature(fd *ast.FunctionDeclaration) typesystem.Type {
	params := identNames(fd.TypeParams)
	ctx := a.pushGenericFrame(params)
	defer a.Generic.Pop()

	paramTypes := make([]typesystem.Type, len(fd.Params))
	for i, p := range fd.Params {
		paramTypes[i] = a.resolveAnnotationIn(p.TypeAnnotation, ctx)
	}
	ret := a.resolveAnnotationIn(fd.ReturnType, ctx)
	sig := typesystem.MakeArrow(paramTypes, ret)

	var scheme typesystem.Type = sig
	if len(params) > 0 {
		vars := make([]typesystem.TVar, len(params))
		for i, p := range params {
			vars[i] = ctx[p]
		}
		scheme = typesystem.TForall{Vars: vars, Body: sig}
	}

	if existing, ok := a.Table.LookupLocal(fd.Name.Value); ok {
		a.Errors = append(a.Errors, &DuplicateDefinition{errBase{fd.Token}, fd.Name.Value})
		return existing.Type
	}
	a.Table.Define(&symbols.Symbol{Name: fd.Name.Value, Type: scheme, Kind: symbols.FunctionSymbol, Defined: true})
	if len(params) > 0 {
		a.GenericFuncs[fd.Name.Value] = fd
	}
	return scheme
}
