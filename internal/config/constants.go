// Package config carries process-wide constants and mode flags shared by
// every stage of the pipeline, the way the teacher's internal/config does.
package config

// IsTestMode normalizes auto-generated type-variable names (α, β, ...) to
// a stable "t?" form so golden _test.go output is deterministic.
var IsTestMode = false

// IsLSPMode suppresses internal forall quantifiers and normalizes type
// variable names for a clean hover/diagnostic experience.
var IsLSPMode = false

// ListTypeName is the canonical nominal name backing `[T]` list types.
const ListTypeName = "List"

// MapTypeName is the canonical nominal name backing `{K: V}` map types.
const MapTypeName = "Map"

// Builtin generic type names wired into the prelude symbol table.
const (
	OptionalTypeName = "Maybe"
	OutcomeTypeName  = "Outcome"
	RangeTypeName    = "Range"
	CapabilityName   = "Capability"
)

// Builtin function names recognized by the analyzer/evaluator prelude.
const (
	PrintFuncName  = "print"
	LenFuncName    = "len"
	TypeOfFuncName = "typeOf"
)

// SourceFileExt is the canonical extension for this language's source files.
const SourceFileExt = ".weave"
