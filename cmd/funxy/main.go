// Command funxy is the reference CLI: run a source file, or drop into a
// REPL when none is given. Flag handling follows the teacher's manual
// os.Args scan rather than the flag package (cmd/funxy/main.go), since the
// flag set here is small and mixes host flags with a single positional
// file argument.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/langweave/glyph/internal/alloc"
	"github.com/langweave/glyph/pkg/cli"
)

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	opts := cli.RunOptions{Color: cli.ColorEnabled(os.Stdout)}
	var filePath string
	debugAlloc := false

	for _, arg := range os.Args[1:] {
		switch {
		case arg == "--tree-walk":
			opts.Backend = "tree-walk"
		case arg == "--vm":
			opts.Backend = "vm"
		case strings.HasPrefix(arg, "--backend="):
			opts.Backend = strings.TrimPrefix(arg, "--backend=")
		case arg == "--monomorphize":
			opts.Monomorphize = true
		case arg == "--no-color":
			opts.Color = false
		case arg == "--debug-alloc":
			debugAlloc = true
		case strings.HasPrefix(arg, "--preload="):
			opts.Preload = strings.Split(strings.TrimPrefix(arg, "--preload="), ",")
		case arg == "-h" || arg == "--help":
			printUsage()
			return 0
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", arg)
			return 2
		default:
			if filePath == "" {
				filePath = arg
			}
		}
	}

	if debugAlloc {
		alloc.Init()
	}

	var code int
	if filePath == "" {
		code = cli.REPL(os.Stdin, opts)
	} else {
		code = cli.RunFile(filePath, opts)
	}

	if debugAlloc {
		fmt.Fprintln(os.Stderr, "--debug-alloc:", alloc.Stats())
	}
	return code
}

func printUsage() {
	fmt.Fprintln(os.Stdout, `usage: funxy [options] [file]

  --backend=vm|tree-walk   execution backend (default vm)
  --vm, --tree-walk        shorthand for --backend=...
  --monomorphize           specialize generics before compiling (vm backend only)
  --preload=pkg[,pkg...]   preload virtual packages into global scope (grpc, db)
  --debug-alloc            print native allocator stats to stderr on exit
  --no-color               disable ANSI diagnostics
  -h, --help               show this message

With no file, funxy reads a REPL from stdin.`)
}
