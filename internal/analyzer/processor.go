// Package analyzer implements the semantic analyzer (spec §4.1) and the
// real infer_types driver for the type inference engine (spec §4.2),
// resolving the §9 Open Question that the teacher shipped as a stub.
package analyzer

import (
	"fmt"

	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/config"
	"github.com/langweave/glyph/internal/symbols"
	"github.com/langweave/glyph/internal/token"
	"github.com/langweave/glyph/internal/typesystem"
)

// FieldInfo is one field of a shape or one payload field of a variant case.
type FieldInfo struct {
	Name string
	Type typesystem.Type
}

// CaseInfo is one constructor of a variant declaration.
type CaseInfo struct {
	Name   string
	Fields []FieldInfo
}

// TypeInfo records a user-declared nominal type (shape or variant).
type TypeInfo struct {
	Name       string
	TypeParams []string
	IsVariant  bool
	Fields     []FieldInfo // shapes
	Cases      []CaseInfo  // variants
}

// AspectInfo records an `aspect` declaration's method signatures.
type AspectInfo struct {
	Name    string
	Self    string
	Methods map[string]typesystem.Type // method name -> Arrow type with Self as TVar(Self)
}

// Analyzer walks an *ast.Program, populating the symbol table and running
// Hindley-Milner inference inline (a variant of Algorithm J: each
// expression is unified against its obligations as soon as it is visited,
// rather than collected into a batch of equations and solved afterward;
// this still implements exactly the unification rules of spec §4.2).
type Analyzer struct {
	File    string
	Table   *symbols.Table
	Generic symbols.GenericStack
	Subst   typesystem.Subst
	Errors  []SemanticError

	Types    map[string]*TypeInfo
	Aspects  map[string]*AspectInfo
	// Embodiments maps "Aspect:TypeConstructorName" -> method name -> function symbol name.
	Embodiments map[string]map[string]string

	// GenericFuncs holds every top-level `chant` declaration with at least
	// one type parameter, keyed by name, feeding internal/monomorph.
	GenericFuncs map[string]*ast.FunctionDeclaration
	// CallSites records, for each call to a GenericFuncs entry, the type
	// variables allocated for that call's instantiation (§4.3 "Input").
	// Apply the final Subst to CallSite.Args to get the canonical
	// type-argument tuple once analysis completes.
	CallSites []*CallSite

	freshCount  int
	funcDepth   int
	loopDepth   int

	// currentReturn is the declared return type of the function body
	// currently being analyzed, used by TryExpression to unify the error
	// arm of `?` against the enclosing function's own Outcome result.
	currentReturn typesystem.Type
}

// New creates an Analyzer with the builtin prelude loaded.
func New(file string) *Analyzer {
	a := &Analyzer{
		File:         file,
		Table:        symbols.NewTable(),
		Subst:        typesystem.Subst{},
		Types:        map[string]*TypeInfo{},
		Aspects:      map[string]*AspectInfo{},
		Embodiments:  map[string]map[string]string{},
		GenericFuncs: map[string]*ast.FunctionDeclaration{},
	}
	a.loadPrelude()
	return a
}

// CallSite is one call to a generic top-level function, recorded so
// internal/monomorph can canonicalize its type-argument tuple once the
// final substitution is known.
type CallSite struct {
	Call     *ast.CallExpression
	FuncName string
	Args     []typesystem.Type
}

// Fresh returns a fresh unification variable. A monotonic id picks its
// name from the Greek letters α, β, ..., ω, then α1, β1, ... (§4.2
// "Instantiation").
func (a *Analyzer) Fresh() typesystem.TVar {
	letters := []rune("αβγδεζηθικλμνξοπρστυφχψω")
	name := string(letters[a.freshCount%len(letters)])
	if round := a.freshCount / len(letters); round > 0 {
		name += fmt.Sprintf("%d", round)
	}
	v := typesystem.TVar{Name: name}
	a.freshCount++
	return v
}

func (a *Analyzer) freshFunc() typesystem.FreshVarFunc {
	return a.Fresh
}

// Unify applies the analyzer's running substitution to both sides, unifies
// them, and folds the result back into Subst (§9 "Substitution
// discipline": "Maintain a single growing substitution"). On failure it
// records a TypeError and returns the expected type so analysis can
// continue past the failure (§4.1: "Collect errors rather than fail-fast").
func (a *Analyzer) Unify(expected, got typesystem.Type, tok token.Token, context string) typesystem.Type {
	expected = expected.Apply(a.Subst)
	got = got.Apply(a.Subst)
	s, err := typesystem.Unify(expected, got)
	if err != nil {
		a.Errors = append(a.Errors, &TypeError{
			errBase: errBase{Tok: tok},
			Expected: expected, Got: got, Context: context,
		})
		return expected
	}
	a.Subst = a.Subst.Compose(s)
	return expected.Apply(a.Subst)
}

// AnalysisResult is returned on success: the fully annotated environment.
type AnalysisResult struct {
	Table        *symbols.Table
	Types        map[string]*TypeInfo
	Subst        typesystem.Subst
	GenericFuncs map[string]*ast.FunctionDeclaration
	CallSites    []*CallSite
}

// Analyze runs the analyzer over a whole program (§4.1 "Responsibility").
// It returns success iff the error vector is empty (§4.1).
func (a *Analyzer) Analyze(prog *ast.Program) (*AnalysisResult, []SemanticError) {
	// Pass 1: register all nominal type declarations so forward references
	// between shapes/variants/aspects resolve regardless of source order.
	for _, stmt := range prog.Statements {
		a.registerDeclaration(stmt)
	}
	// Pass 2: top-level functions are pre-declared (§4.1 "Function
	// definition": "added to the enclosing scope before its body is
	// analyzed" — this is what makes recursion and forward calls work).
	for _, stmt := range prog.Statements {
		a.predeclareFunction(stmt)
	}
	// Pass 3: full statement analysis, including function bodies.
	for _, stmt := range prog.Statements {
		a.analyzeStatement(stmt)
	}

	if len(a.Errors) > 0 {
		return nil, a.Errors
	}
	return &AnalysisResult{
		Table:        a.Table,
		Types:        a.Types,
		Subst:        a.Subst,
		GenericFuncs: a.GenericFuncs,
		CallSites:    a.CallSites,
	}, nil
}

func (a *Analyzer) listOf(elem typesystem.Type) typesystem.Type {
	return typesystem.TGeneric{Name: config.ListTypeName, Args: []typesystem.Type{elem}}
}

func (a *Analyzer) mapOf(k, v typesystem.Type) typesystem.Type {
	return typesystem.TGeneric{Name: config.MapTypeName, Args: []typesystem.Type{k, v}}
}

func (a *Analyzer) maybeOf(elem typesystem.Type) typesystem.Type {
	return typesystem.TGeneric{Name: config.OptionalTypeName, Args: []typesystem.Type{elem}}
}

func (a *Analyzer) outcomeOf(ok, errT typesystem.Type) typesystem.Type {
	return typesystem.TGeneric{Name: config.OutcomeTypeName, Args: []typesystem.Type{ok, errT}}
}
