// Package modules provides the virtual packages that back spec §3's
// Capability base type with real native resources: a dynamic (codegen-free)
// gRPC client and a SQLite connection. Grounded on the teacher's own
// internal/modules/virtual_packages_*.go split, one file per package, but
// where the teacher only registers type-level signatures (the runtime side
// lives in its internal/evaluator/builtins_*.go) we keep signature and
// implementation together, since both the VM and the tree-walking evaluator
// share one Value/builtin model here.
package modules

import "github.com/langweave/glyph/internal/vm"

// Register installs every virtual package's builtins into globals, keyed by
// the name the analyzer's prelude and the compiler/evaluator globals agree
// on. Callers (pkg/embed, cmd/funxy) opt in by calling this after
// constructing a VM or Evaluator and before running a program that imports
// `grpc` or `db`.
func Register(globals map[string]vm.Value) {
	RegisterGRPC(globals)
	RegisterDB(globals)
}
