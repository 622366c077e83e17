package analyzer

import (
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/config"
	"github.com/langweave/glyph/internal/typesystem"
)

// resolveAnnotation converts a parsed ast.TypeAnnotation into a
// typesystem.Type, resolving generic type-parameter names against the
// current GenericStack frame and lowering the `?` suffix (and the spec §9
// Open Question "what does an unannotated Optional parameter mean") to
// Maybe<T> (§4.1 "Optional types").
func (a *Analyzer) resolveAnnotation(t ast.TypeAnnotation) typesystem.Type {
	switch n := t.(type) {
	case nil:
		return a.Fresh()
	case *ast.NamedType:
		return a.resolveNamed(n.Name)
	case *ast.ParametrizedType:
		args := make([]typesystem.Type, len(n.Args))
		for i, arg := range n.Args {
			args[i] = a.resolveAnnotation(arg)
		}
		switch n.Name {
		case config.ListTypeName:
			if len(args) == 1 {
				return a.listOf(args[0])
			}
		case config.MapTypeName:
			if len(args) == 2 {
				return a.mapOf(args[0], args[1])
			}
		case config.OptionalTypeName:
			if len(args) == 1 {
				return a.maybeOf(args[0])
			}
		case config.OutcomeTypeName:
			if len(args) == 2 {
				return a.outcomeOf(args[0], args[1])
			}
		}
		return typesystem.TGeneric{Name: n.Name, Args: args}
	case *ast.ListType:
		return a.listOf(a.resolveAnnotation(n.Inner))
	case *ast.MapType:
		return a.mapOf(a.resolveAnnotation(n.Key), a.resolveAnnotation(n.Value))
	case *ast.FunctionType:
		params := make([]typesystem.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = a.resolveAnnotation(p)
		}
		return typesystem.MakeArrow(params, a.resolveAnnotation(n.Return))
	case *ast.OptionalType:
		return a.maybeOf(a.resolveAnnotation(n.Inner))
	default:
		return a.Fresh()
	}
}

// resolveNamed resolves a bare identifier type name: a builtin base type, a
// generic parameter bound in the current GenericStack frame, or a
// user-declared nominal type with zero arguments.
func (a *Analyzer) resolveNamed(name string) typesystem.Type {
	if v, ok := a.Generic.Resolve(name); ok {
		return v
	}
	switch name {
	case string(typesystem.Number), string(typesystem.Text), string(typesystem.Truth),
		string(typesystem.Nothing), string(typesystem.RangeBase), string(typesystem.Capability),
		string(typesystem.Any), string(typesystem.UnknownT):
		return typesystem.TCon{Name: name}
	}
	if info, ok := a.Types[name]; ok && len(info.TypeParams) == 0 {
		return typesystem.TCon{Name: name}
	}
	return typesystem.TCon{Name: name}
}
