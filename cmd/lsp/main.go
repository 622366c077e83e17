package main

import (
	"log"
	"os"

	"github.com/langweave/glyph/internal/config"
)

func main() {
	config.IsLSPMode = true // normalize forall quantifiers/type-var names for hover-less diagnostics

	log.SetFlags(0)
	log.SetOutput(os.Stderr) // stdout carries the LSP wire protocol only

	server := NewServer(os.Stdout)
	server.Start(os.Stdin)
}
