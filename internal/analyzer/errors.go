package analyzer

import (
	"fmt"
	"strings"

	"github.com/langweave/glyph/internal/config"
	"github.com/langweave/glyph/internal/diagnostics"
	"github.com/langweave/glyph/internal/token"
	"github.com/langweave/glyph/internal/typesystem"
)

// SemanticError is the taxonomy from spec §4.1. Every variant renders to a
// diagnostics.Diagnostic for display but is also inspectable as a typed Go
// value so callers (tests, LSP) can switch on it directly.
type SemanticError interface {
	error
	Diagnostic(file string) *diagnostics.Diagnostic
}

type errBase struct {
	Tok token.Token
}

type UndefinedVariable struct {
	errBase
	Name string
}

func (e *UndefinedVariable) Error() string { return fmt.Sprintf("undefined variable: %s", e.Name) }
func (e *UndefinedVariable) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E001", e.Tok, file, e.Error())
}

type UndefinedFunction struct {
	errBase
	Name string
}

func (e *UndefinedFunction) Error() string { return fmt.Sprintf("undefined function: %s", e.Name) }
func (e *UndefinedFunction) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E002", e.Tok, file, e.Error())
}

type DuplicateDefinition struct {
	errBase
	Name string
}

func (e *DuplicateDefinition) Error() string { return fmt.Sprintf("duplicate definition: %s", e.Name) }
func (e *DuplicateDefinition) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E003", e.Tok, file, e.Error())
}

type TypeError struct {
	errBase
	Expected typesystem.Type
	Got      typesystem.Type
	Context  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error in %s: expected %s, got %s", e.Context, renderType(e.Expected), renderType(e.Got))
}
func (e *TypeError) Diagnostic(file string) *diagnostics.Diagnostic {
	d := diagnostics.New("E004", e.Tok, file, e.Error())
	if v, ok := e.Got.(typesystem.TVar); ok {
		d.WithNote(fmt.Sprintf("the type of '%s' could not be solved; try adding an annotation", v.String()))
	}
	return d
}

type ArityMismatch struct {
	errBase
	Function string
	Expected int
	Got      int
}

func (e *ArityMismatch) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Function, e.Expected, e.Got)
}
func (e *ArityMismatch) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E005", e.Tok, file, e.Error())
}

type ImmutableBinding struct {
	errBase
	Name string
}

func (e *ImmutableBinding) Error() string {
	return fmt.Sprintf("cannot reassign immutable binding: %s", e.Name)
}
func (e *ImmutableBinding) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E006", e.Tok, file, e.Error())
}

type ReturnOutsideFunction struct{ errBase }

func (e *ReturnOutsideFunction) Error() string { return "yield used outside a function body" }
func (e *ReturnOutsideFunction) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E007", e.Tok, file, e.Error())
}

type InvalidOperation struct {
	errBase
	Message string
}

func (e *InvalidOperation) Error() string { return e.Message }
func (e *InvalidOperation) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E008", e.Tok, file, e.Error())
}

type NonExhaustiveMatch struct{ errBase }

func (e *NonExhaustiveMatch) Error() string {
	return "match is not exhaustive: add a wildcard or identifier arm, or an 'otherwise'"
}
func (e *NonExhaustiveMatch) Diagnostic(file string) *diagnostics.Diagnostic {
	return diagnostics.New("E009", e.Tok, file, e.Error())
}

// renderType implements §4.2's "Natural-language error rendering": it turns
// a structural Type into the prose form TypeError messages show ("a list of
// text" rather than "List<Text>"), with an article on bare type names.
func renderType(t typesystem.Type) string {
	if t == nil {
		return "an unknown type"
	}
	return proseType(t)
}

func proseType(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.TVar:
		return "an unknown type"
	case typesystem.TCon:
		return proseName(tt.Name)
	case typesystem.TArrow:
		params, result := typesystem.Uncurry(tt)
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = proseType(p)
		}
		return fmt.Sprintf("a function from %s to %s", strings.Join(parts, " and "), proseType(result))
	case typesystem.TGeneric:
		return proseGeneric(tt)
	case typesystem.TForall:
		return proseType(tt.Body)
	default:
		return t.String()
	}
}

func proseGeneric(t typesystem.TGeneric) string {
	switch t.Name {
	case config.ListTypeName:
		if len(t.Args) == 1 {
			return "a list of " + proseType(t.Args[0])
		}
	case config.MapTypeName:
		if len(t.Args) == 2 {
			return fmt.Sprintf("a map from %s to %s", proseType(t.Args[0]), proseType(t.Args[1]))
		}
	case config.OptionalTypeName:
		if len(t.Args) == 1 {
			return "an optional " + proseType(t.Args[0])
		}
	case config.OutcomeTypeName:
		if len(t.Args) == 2 {
			return fmt.Sprintf("an outcome of %s or %s", proseType(t.Args[0]), proseType(t.Args[1]))
		}
	case config.RangeTypeName:
		return "a range"
	}
	return proseName(t.Name)
}

// proseName renders a bare type-constructor name in prose: the fixed base
// types get an idiomatic phrase, anything else (a user shape/variant) gets
// an indefinite article.
func proseName(name string) string {
	switch name {
	case string(typesystem.Number):
		return "a number"
	case string(typesystem.Text):
		return "text"
	case string(typesystem.Truth):
		return "a boolean"
	case string(typesystem.Nothing):
		return "nothing"
	case string(typesystem.Capability):
		return "a capability"
	case string(typesystem.Any):
		return "a value of any type"
	case string(typesystem.UnknownT):
		return "an unknown type"
	case config.RangeTypeName:
		return "a range"
	default:
		return article(name) + " " + name
	}
}

func article(name string) string {
	if name == "" {
		return "a"
	}
	switch name[0] {
	case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
		return "an"
	default:
		return "a"
	}
}
