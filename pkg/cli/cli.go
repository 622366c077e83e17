// Package cli implements the REPL and run-file entry points cmd/funxy
// exposes over the public embed facade (spec §6 "thin, out of scope" CLI
// tools). Grounded on the teacher's pkg/cli/entry.go for the REPL-loop
// shape and its color-detection convention (internal/evaluator's
// builtins_term.go detectColorLevel, simplified here to the on/off
// decision go-isatty is actually asked for: is stdout a real terminal).
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/langweave/glyph/internal/analyzer"
	"github.com/langweave/glyph/internal/diagnostics"
	"github.com/langweave/glyph/internal/ext"
	"github.com/langweave/glyph/pkg/embed"
)

const ansiRed = "\x1b[31m"
const ansiReset = "\x1b[0m"

// ColorEnabled reports whether out should be decorated with ANSI color
// codes: only when it is a real terminal (NO_COLOR always wins).
func ColorEnabled(out *os.File) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
}

// RunOptions configures both RunFile and REPL.
type RunOptions struct {
	Backend      string
	Monomorphize bool
	Preload      []string
	Color        bool
	Stdout       io.Writer
	Stderr       io.Writer
}

func optionsFromConfig(cfg *ext.Config, o RunOptions) embed.RunOptions {
	backend := o.Backend
	if backend == "" {
		backend = cfg.Backend
	}
	preload := o.Preload
	if len(preload) == 0 {
		preload = cfg.Preload
	}
	return embed.RunOptions{Backend: backend, Monomorphize: o.Monomorphize, Preload: preload}
}

// RunFile loads glyph.yaml (if present) from the current directory, then lexes, parses,
// analyzes and executes the file, printing its result or diagnostics.
// Returns the process exit code.
func RunFile(path string, o RunOptions) int {
	stdout, stderr := output(o)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg, err := ext.LoadConfig("glyph.yaml")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	result, ctx := embed.Run(string(source), path, optionsFromConfig(cfg, o))
	if len(ctx.Errors) > 0 {
		printErrors(stderr, ctx.Errors, path, string(source), o.Color)
		return 1
	}
	fmt.Fprintln(stdout, embed.ToText(result))
	return 0
}

// REPL runs an interactive read-eval-print loop over in, writing prompts
// and results to out. Each line is analyzed and executed independently;
// bindings do not persist between lines (spec's data model has no module-
// level mutable session state beyond what a single program invocation
// carries).
func REPL(in io.Reader, o RunOptions) int {
	stdout, stderr := output(o)
	cfg, err := ext.LoadConfig("glyph.yaml")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	opts := optionsFromConfig(cfg, o)

	scanner := bufio.NewScanner(in)
	fmt.Fprint(stdout, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(stdout, "> ")
			continue
		}
		source := replSource(line)
		result, ctx := embed.Run(source, "<repl>", opts)
		if len(ctx.Errors) > 0 {
			printErrors(stderr, ctx.Errors, "<repl>", source, o.Color)
		} else {
			fmt.Fprintln(stdout, embed.ToText(result))
		}
		fmt.Fprint(stdout, "> ")
	}
	fmt.Fprintln(stdout)
	return 0
}

// replLeadingKeywords are the statement-starting keywords a REPL line may
// already begin with; anything else is a bare expression and gets wrapped
// in a `yield` so the program's implicit return carries its value (a plain
// ExpressionStatement discards its result after evaluating it).
var replLeadingKeywords = []string{
	"bind", "weave", "chant", "yield", "should", "whilst", "for",
	"variant", "shape", "aspect", "embody", "skip", "stop", "match",
}

func replSource(line string) string {
	first := strings.Fields(line)
	if len(first) > 0 {
		for _, kw := range replLeadingKeywords {
			if first[0] == kw {
				return line
			}
		}
	}
	return "yield (" + line + ")"
}

func output(o RunOptions) (io.Writer, io.Writer) {
	stdout, stderr := o.Stdout, o.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

// printErrors renders every error ctx collected, converting parser/analyzer
// errors to diagnostics.Diagnostic first, and falls back to a plain
// message for runtime errors that never carried a source span.
func printErrors(w io.Writer, errs []error, file, source string, color bool) {
	var diags []*diagnostics.Diagnostic
	for _, err := range errs {
		switch e := err.(type) {
		case *diagnostics.Diagnostic:
			diags = append(diags, e)
		case analyzer.SemanticError:
			diags = append(diags, e.Diagnostic(file))
		default:
			if color {
				fmt.Fprintln(w, ansiRed+err.Error()+ansiReset)
			} else {
				fmt.Fprintln(w, err.Error())
			}
		}
	}
	if len(diags) == 0 {
		return
	}
	rendered := diagnostics.RenderAll(diags, source)
	if color {
		fmt.Fprint(w, ansiRed, rendered, ansiReset)
		return
	}
	fmt.Fprint(w, rendered)
}
