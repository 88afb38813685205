// This is the main entry point for the nanoexport CLI.
// Build with: go build -o bin/nanoexport ./cmd/nanoexport
// Usage: nanoexport <command> [options]
package main

import (
	"os"
)

func main() {
	cli := NewCLI(os.Stdout, os.Stderr)
	if err := cli.Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
