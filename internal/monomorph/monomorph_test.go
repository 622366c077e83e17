package monomorph_test

import (
	"testing"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/ast"
	"github.com/langweave/glyph/internal/monomorph"
	"github.com/langweave/glyph/internal/parser"
)

// identity<T>(x: T) -> T then yield x end ; identity<Text>("hello")
// must specialize to exactly one entry, identity$<Text>.
func TestSpecializeIdentity(t *testing.T) {
	src := `
chant identity<T>(x: T) -> T then
  yield x
end

bind greeting to identity<Text>("hello")
`
	p := parser.New(src, "test.weave")
	prog := p.ParseProgram()
	if len(p.Errors) != 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}

	a := analyzer.New("test.weave")
	result, errs := a.Analyze(prog)
	if len(errs) != 0 {
		t.Fatalf("analysis errors: %v", errs)
	}

	_, tbl := monomorph.Specialize(prog, result)
	keys := tbl.SortedKeys()
	if len(keys) != 1 {
		t.Fatalf("expected exactly one specialization, got %v", keys)
	}
	if keys[0] != "identity$<Text>" {
		t.Fatalf("expected identity$<Text>, got %s", keys[0])
	}
}

// Two calls with the same concrete type argument must specialize once, not
// twice (§4.3 "a specialization is only enqueued if unseen").
func TestSpecializeDedupesSameArguments(t *testing.T) {
	src := `
chant identity<T>(x: T) -> T then
  yield x
end

bind a to identity<Number>(1)
bind b to identity<Number>(2)
`
	p := parser.New(src, "test.weave")
	prog := p.ParseProgram()
	if len(p.Errors) != 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}

	a := analyzer.New("test.weave")
	result, errs := a.Analyze(prog)
	if len(errs) != 0 {
		t.Fatalf("analysis errors: %v", errs)
	}

	_, tbl := monomorph.Specialize(prog, result)
	if len(tbl.SortedKeys()) != 1 {
		t.Fatalf("expected one deduplicated specialization, got %v", tbl.SortedKeys())
	}
}

// A generic function that is never called must be silently dropped from
// the monomorphized program (§4.3 "Output").
func TestUninstantiatedGenericIsDropped(t *testing.T) {
	src := `
chant unused<T>(x: T) -> T then
  yield x
end

bind a to 1
`
	p := parser.New(src, "test.weave")
	prog := p.ParseProgram()
	if len(p.Errors) != 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}

	a := analyzer.New("test.weave")
	result, errs := a.Analyze(prog)
	if len(errs) != 0 {
		t.Fatalf("analysis errors: %v", errs)
	}

	out, tbl := monomorph.Specialize(prog, result)
	if len(tbl.Specialized) != 0 {
		t.Fatalf("expected no specializations, got %v", tbl.SortedKeys())
	}
	for _, stmt := range out.Statements {
		if _, ok := stmt.(*ast.FunctionDeclaration); ok {
			t.Fatalf("expected unused generic to be dropped, found a function declaration")
		}
	}
}
