package analyzer

import (
	"github.com/langweave/glyph/internal/config"
	"github.com/langweave/glyph/internal/symbols"
	"github.com/langweave/glyph/internal/typesystem"
)

// loadPrelude registers the builtin functions, nominal types (Maybe,
// Outcome) and their constructors into the root scope, mirroring the
// teacher's internal/analyzer/builtins.go + internal/symbols/symbol_table_init.go.
func (a *Analyzer) loadPrelude() {
	num := typesystem.Concrete(typesystem.Number)
	text := typesystem.Concrete(typesystem.Text)
	truth := typesystem.Concrete(typesystem.Truth)
	nothing := typesystem.Concrete(typesystem.Nothing)

	def := func(name string, t typesystem.Type) {
		a.Table.Define(&symbols.Symbol{Name: name, Type: t, Kind: symbols.FunctionSymbol, Defined: true})
	}

	// print(Any) -> Nothing ; len([T]) -> Number ; typeOf(Any) -> Text
	def(config.PrintFuncName, typesystem.MakeArrow([]typesystem.Type{typesystem.Concrete(typesystem.Any)}, nothing))
	def(config.TypeOfFuncName, typesystem.MakeArrow([]typesystem.Type{typesystem.Concrete(typesystem.Any)}, text))

	lenScheme := typesystem.TForall{
		Vars: []typesystem.TVar{{Name: "a"}},
		Body: typesystem.MakeArrow([]typesystem.Type{a.listOf(typesystem.TVar{Name: "a"})}, num),
	}
	def(config.LenFuncName, lenScheme)

	// Iterator combinators: map, filter, fold, take_while, skip, zip, chain,
	// any, all, find (§4.5) — all typed over [T]. Both backends evaluate
	// them eagerly over List values and return new Lists; they are not lazy
	// and do not accept Iterator values.
	tv := func(n string) typesystem.Type { return typesystem.TVar{Name: n} }
	forall := func(vars []string, body typesystem.Type) typesystem.Type {
		vs := make([]typesystem.TVar, len(vars))
		for i, v := range vars {
			vs[i] = typesystem.TVar{Name: v}
		}
		return typesystem.TForall{Vars: vs, Body: body}
	}

	def("map", forall([]string{"a", "b"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), typesystem.MakeArrow([]typesystem.Type{tv("a")}, tv("b"))},
		a.listOf(tv("b")))))
	def("filter", forall([]string{"a"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), typesystem.MakeArrow([]typesystem.Type{tv("a")}, truth)},
		a.listOf(tv("a")))))
	def("fold", forall([]string{"a", "b"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), tv("b"), typesystem.MakeArrow([]typesystem.Type{tv("b"), tv("a")}, tv("b"))},
		tv("b"))))
	def("take_while", forall([]string{"a"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), typesystem.MakeArrow([]typesystem.Type{tv("a")}, truth)},
		a.listOf(tv("a")))))
	def("skip", forall([]string{"a"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), num}, a.listOf(tv("a")))))
	def("zip", forall([]string{"a", "b"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), a.listOf(tv("b"))},
		a.listOf(typesystem.TGeneric{Name: "Pair", Args: []typesystem.Type{tv("a"), tv("b")}}))))
	def("chain", forall([]string{"a"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), a.listOf(tv("a"))}, a.listOf(tv("a")))))
	def("any", forall([]string{"a"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), typesystem.MakeArrow([]typesystem.Type{tv("a")}, truth)}, truth)))
	def("all", forall([]string{"a"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), typesystem.MakeArrow([]typesystem.Type{tv("a")}, truth)}, truth)))
	def("find", forall([]string{"a"}, typesystem.MakeArrow(
		[]typesystem.Type{a.listOf(tv("a")), typesystem.MakeArrow([]typesystem.Type{tv("a")}, truth)}, a.maybeOf(tv("a")))))

	// Outcome/Maybe helpers (§7).
	def("is_triumph", forall([]string{"a", "e"}, typesystem.MakeArrow([]typesystem.Type{a.outcomeOf(tv("a"), tv("e"))}, truth)))
	def("is_mishap", forall([]string{"a", "e"}, typesystem.MakeArrow([]typesystem.Type{a.outcomeOf(tv("a"), tv("e"))}, truth)))
	def("is_present", forall([]string{"a"}, typesystem.MakeArrow([]typesystem.Type{a.maybeOf(tv("a"))}, truth)))
	def("is_absent", forall([]string{"a"}, typesystem.MakeArrow([]typesystem.Type{a.maybeOf(tv("a"))}, truth)))
	def("unwrap_or", forall([]string{"a", "e"}, typesystem.MakeArrow(
		[]typesystem.Type{a.outcomeOf(tv("a"), tv("e")), tv("a")}, tv("a"))))
	def("expect", forall([]string{"a", "e"}, typesystem.MakeArrow(
		[]typesystem.Type{a.outcomeOf(tv("a"), tv("e")), text}, tv("a"))))
	def("map_outcome", forall([]string{"a", "b", "e"}, typesystem.MakeArrow(
		[]typesystem.Type{a.outcomeOf(tv("a"), tv("e")), typesystem.MakeArrow([]typesystem.Type{tv("a")}, tv("b"))},
		a.outcomeOf(tv("b"), tv("e")))))

	// yaml_parse(Text) -> Outcome<Any, Text> ; yaml_dump(Any) -> Text
	any := typesystem.Concrete(typesystem.Any)
	def("yaml_parse", typesystem.MakeArrow([]typesystem.Type{text}, a.outcomeOf(any, text)))
	def("yaml_dump", typesystem.MakeArrow([]typesystem.Type{any}, text))

	// Outcome/Maybe constructors, registered as nominal variants so match
	// exhaustiveness and constructor-arity checks apply uniformly.
	a.Types[config.OutcomeTypeName] = &TypeInfo{
		Name: config.OutcomeTypeName, TypeParams: []string{"t", "e"}, IsVariant: true,
		Cases: []CaseInfo{
			{Name: "Triumph", Fields: []FieldInfo{{Name: "value", Type: tv("t")}}},
			{Name: "Mishap", Fields: []FieldInfo{{Name: "error", Type: tv("e")}}},
		},
	}
	a.Types[config.OptionalTypeName] = &TypeInfo{
		Name: config.OptionalTypeName, TypeParams: []string{"t"}, IsVariant: true,
		Cases: []CaseInfo{
			{Name: "Present", Fields: []FieldInfo{{Name: "value", Type: tv("t")}}},
			{Name: "Absent", Fields: nil},
		},
	}
	a.defineConstructors(config.OutcomeTypeName)
	a.defineConstructors(config.OptionalTypeName)

	// Pair is a builtin shape (not a variant) produced by zip; its fields
	// are accessed with ordinary field access (p.first, p.second).
	a.Types["Pair"] = &TypeInfo{
		Name: "Pair", TypeParams: []string{"a", "b"},
		Fields: []FieldInfo{
			{Name: "first", Type: tv("a")},
			{Name: "second", Type: tv("b")},
		},
	}
}

// defineConstructors installs one function symbol per variant case, with
// arity equal to the declared field count (§4.1 "Variant constructor call").
func (a *Analyzer) defineConstructors(typeName string) {
	info := a.Types[typeName]
	tvs := make([]typesystem.Type, len(info.TypeParams))
	for i, p := range info.TypeParams {
		tvs[i] = typesystem.TVar{Name: p}
	}
	result := typesystem.TGeneric{Name: typeName, Args: tvs}
	for _, c := range info.Cases {
		var params []typesystem.Type
		for _, f := range c.Fields {
			params = append(params, f.Type)
		}
		var t typesystem.Type
		if len(params) == 0 {
			t = result
		} else {
			t = typesystem.MakeArrow(params, result)
		}
		if len(info.TypeParams) > 0 {
			vars := make([]typesystem.TVar, len(info.TypeParams))
			for i, p := range info.TypeParams {
				vars[i] = typesystem.TVar{Name: p}
			}
			t = typesystem.TForall{Vars: vars, Body: t}
		}
		a.Table.Define(&symbols.Symbol{Name: c.Name, Type: t, Kind: symbols.ConstructorSymbol, Defined: true})
	}
}
