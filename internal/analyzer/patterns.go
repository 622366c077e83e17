package analyzer

import (
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/symbols"
	"github.com/langweave/glyph/internal/typesystem"
)

// inferMatch infers a match expression's type: every arm's body must unify
// to a common type, and per §4.1's exhaustiveness rule a match is exhaustive
// iff at least one arm carries a wildcard or bare-identifier pattern — case
// coverage never substitutes for a catch-all, so `NonExhaustiveMatch` fires
// whenever no arm is a wildcard/identifier, even if every variant case is
// named individually.
func (a *Analyzer) inferMatch(me *ast.MatchExpression) typesystem.Type {
	subjectT := a.infer(me.Subject).Apply(a.Subst)

	var result typesystem.Type = a.Fresh()
	first := true
	catchAll := false

	for _, arm := range me.Arms {
		a.Table.Push()
		if arm.IsOtherwise {
			catchAll = true
		} else {
			a.bindPattern(arm.Pattern, subjectT)
			if isCatchAllPattern(arm.Pattern) {
				catchAll = true
			}
		}
		bodyT := a.inferBlock(arm.Body)
		a.Table.Pop()

		if first {
			result = bodyT
			first = false
		} else {
			result = a.Unify(result, bodyT, me.Token, "match arms")
		}
	}

	if !catchAll {
		a.Errors = append(a.Errors, &NonExhaustiveMatch{errBase{me.Token}})
	}

	return result
}

// isCatchAllPattern reports whether p is a wildcard or bare-identifier
// pattern, the only patterns §4.1 recognizes as exhaustive on their own.
func isCatchAllPattern(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.IdentifierPattern:
		return true
	default:
		return false
	}
}

// bindPattern binds pattern variables into the current scope and unifies
// structural obligations against subject's type.
func (a *Analyzer) bindPattern(p ast.Pattern, subject typesystem.Type) {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		return
	case *ast.IdentifierPattern:
		a.Table.Define(&symbols.Symbol{Name: pt.Name, Type: subject, Kind: symbols.VariableSymbol, Defined: true})
	case *ast.LiteralPattern:
		litT := a.infer(pt.Value)
		a.Unify(subject, litT, pt.Token, "literal pattern")
	case *ast.VariantPattern:
		a.bindVariantPattern(pt, subject)
	}
}

func (a *Analyzer) bindVariantPattern(pt *ast.VariantPattern, subject typesystem.Type) {
	var typeName string
	var args []typesystem.Type
	switch s := subject.(type) {
	case typesystem.TGeneric:
		typeName, args = s.Name, s.Args
	case typesystem.TCon:
		typeName = s.Name
	default:
		a.Errors = append(a.Errors, &InvalidOperation{errBase{pt.Token}, "cannot match variant pattern against non-variant type"})
		return
	}
	info, ok := a.Types[typeName]
	if !ok || !info.IsVariant {
		a.Errors = append(a.Errors, &InvalidOperation{errBase{pt.Token}, "unknown variant " + typeName})
		return
	}
	sub := substFor(info.TypeParams, args)
	for _, c := range info.Cases {
		if c.Name != pt.Constructor {
			continue
		}
		if len(c.Fields) != len(pt.Fields) {
			a.Errors = append(a.Errors, &ArityMismatch{errBase{pt.Token}, pt.Constructor, len(c.Fields), len(pt.Fields)})
			return
		}
		for i, fieldPat := range pt.Fields {
			a.bindPattern(fieldPat, c.Fields[i].Type.Apply(sub))
		}
		return
	}
	a.Errors = append(a.Errors, &InvalidOperation{errBase{pt.Token}, typeName + " has no case " + pt.Constructor})
}
