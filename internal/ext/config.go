// Package ext loads the optional glyph.yaml project file consumed by
// cmd/funxy's REPL and run-file modes, grounded on the teacher's
// internal/ext/config.go (same yaml.v3 struct-tag style), repurposed from
// declaring Go binding/FFI dependencies (out of scope: spec's Non-goal is
// "no FFI beyond the allocator C ABI") to REPL/run-file defaults.
package ext

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of glyph.yaml.
type Config struct {
	// Backend selects the default execution backend ("vm" or "tree-walk")
	// when --backend is not passed on the command line.
	Backend string `yaml:"backend,omitempty"`

	// Preload lists virtual packages (e.g. "grpc", "db") wired into every
	// REPL session and run-file invocation by default.
	Preload []string `yaml:"preload,omitempty"`

	// DebugAlloc turns on --debug-alloc-equivalent heap diagnostics by
	// default.
	DebugAlloc bool `yaml:"debug_alloc,omitempty"`
}

// DefaultConfig is used when no glyph.yaml is found.
func DefaultConfig() *Config {
	return &Config{Backend: "vm"}
}

// LoadConfig reads and parses path. A missing file is not an error — the
// caller gets DefaultConfig() back instead, since glyph.yaml is optional.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses glyph.yaml content from bytes. path is used only for
// error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Backend == "" {
		cfg.Backend = "vm"
	}
	if cfg.Backend != "vm" && cfg.Backend != "tree-walk" {
		return nil, fmt.Errorf("%s: backend must be \"vm\" or \"tree-walk\", got %q", path, cfg.Backend)
	}
	return cfg, nil
}
