package analyzer

import (
	"strings"
	"testing"

	"github.com/langweave/glyph/internal/parser"
)

// analyzeSource lexes, parses, then analyzes input, returning every
// semantic error the run produced. Parse errors fail the test at once.
func analyzeSource(t *testing.T, input string) []SemanticError {
	t.Helper()
	p := parser.New(input, "<test>")
	prog := p.ParseProgram()
	if len(p.Errors) > 0 {
		var msgs []string
		for _, d := range p.Errors {
			msgs = append(msgs, d.Message)
		}
		t.Fatalf("unexpected parse errors: %s\ninput: %s", strings.Join(msgs, "; "), input)
	}
	_, errs := New("<test>").Analyze(prog)
	return errs
}

func expectError(t *testing.T, input string, want SemanticError) SemanticError {
	t.Helper()
	errs := analyzeSource(t, input)
	wantType := errTypeName(want)
	for _, e := range errs {
		if errTypeName(e) == wantType {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected a %s, got:\n%s\ninput: %s", wantType, strings.Join(msgs, "\n"), input)
	return nil
}

func expectNoErrors(t *testing.T, input string) {
	t.Helper()
	errs := analyzeSource(t, input)
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
}

func errTypeName(e SemanticError) string {
	switch e.(type) {
	case *UndefinedVariable:
		return "UndefinedVariable"
	case *UndefinedFunction:
		return "UndefinedFunction"
	case *DuplicateDefinition:
		return "DuplicateDefinition"
	case *TypeError:
		return "TypeError"
	case *ArityMismatch:
		return "ArityMismatch"
	case *ImmutableBinding:
		return "ImmutableBinding"
	case *ReturnOutsideFunction:
		return "ReturnOutsideFunction"
	case *InvalidOperation:
		return "InvalidOperation"
	case *NonExhaustiveMatch:
		return "NonExhaustiveMatch"
	default:
		return "unknown"
	}
}

func TestUndefinedVariable(t *testing.T) {
	expectError(t, `yield missing + 1`, &UndefinedVariable{})
}

func TestDuplicateDefinition(t *testing.T) {
	expectError(t, `
bind x to 1
bind x to 2
`, &DuplicateDefinition{})
}

func TestImmutableBinding(t *testing.T) {
	expectError(t, `
bind x to 1
x <- 2
`, &ImmutableBinding{})
}

func TestMutableBindingReassignIsFine(t *testing.T) {
	expectNoErrors(t, `
weave x to 1
x <- 2
`)
}

func TestReturnOutsideFunction(t *testing.T) {
	expectError(t, `yield 1`, &ReturnOutsideFunction{})
}

func TestSkipStopOutsideLoopIsInvalidOperation(t *testing.T) {
	expectError(t, `skip`, &InvalidOperation{})
	expectError(t, `stop`, &InvalidOperation{})
}

func TestSkipStopInsideLoopIsFine(t *testing.T) {
	expectNoErrors(t, `
whilst true then
    stop
end
`)
}

func TestArityMismatch(t *testing.T) {
	expectError(t, `
chant add(x, y) then
    yield x + y
end

bind r to add(1)
`, &ArityMismatch{})
}

func TestTypeErrorOnFunctionBody(t *testing.T) {
	e := expectError(t, `
chant f() then
    yield "hello"
end

bind r: Number to f()
`, &TypeError{})
	if !strings.Contains(e.Error(), "text") {
		t.Errorf("expected prose rendering to mention 'text', got: %s", e.Error())
	}
	if !strings.Contains(e.Error(), "a number") {
		t.Errorf("expected prose rendering to mention 'a number', got: %s", e.Error())
	}
}

// ---------------------------------------------------------------------
// Exhaustiveness (§4.1): a match is exhaustive iff some arm carries a
// wildcard/identifier pattern, never merely by naming every variant case.
// ---------------------------------------------------------------------

func TestMatch_AllCasesNamedWithoutCatchAllIsNonExhaustive(t *testing.T) {
	expectError(t, `
variant Message then Quit, Move(x: Number, y: Number) end

bind m to Quit
bind r to match m with
    when Quit then 1
    when Move(x, y) then 2
end
`, &NonExhaustiveMatch{})
}

func TestMatch_WithOtherwiseIsExhaustive(t *testing.T) {
	expectNoErrors(t, `
variant Message then Quit, Move(x: Number, y: Number) end

bind m to Quit
bind r to match m with
    when Quit then 1
    otherwise then 2
end
`)
}

func TestMatch_WithIdentifierCatchAllIsExhaustive(t *testing.T) {
	expectNoErrors(t, `
variant Message then Quit, Move(x: Number, y: Number) end

bind m to Quit
bind r to match m with
    when Quit then 1
    when other then 2
end
`)
}

// ---------------------------------------------------------------------
// For-loop iterable type (§4.1): must be List, Range, Any, or Unknown.
// ---------------------------------------------------------------------

func TestForLoop_OverNumberIsInvalidOperation(t *testing.T) {
	expectError(t, `
for x in 42 then
    yield x
end
`, &InvalidOperation{})
}

func TestForLoop_OverListIsFine(t *testing.T) {
	expectNoErrors(t, `
for x in [1, 2, 3] then
    x
end
`)
}

func TestForLoop_OverRangeIsFine(t *testing.T) {
	expectNoErrors(t, `
for x in 1 .. 3 then
    x
end
`)
}
