// Package main provides the entry point for the canrun readiness analyzer CLI.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes. Not-ready is a verdict, not a malfunction: the report has
// already explained it, so main stays quiet. Configuration and path
// problems get a one-line diagnostic on stderr.
const (
	exitReady       = 0
	exitNotReady    = 1
	exitConfigError = 2
)

// errNotReady marks a completed run whose report concluded the system
// cannot run the project.
var errNotReady = errors.New("system not ready")

func main() {
	os.Exit(run())
}

func run() int {
	err := Execute()
	if err == nil {
		return exitReady
	}
	if errors.Is(err, errNotReady) {
		return exitNotReady
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitConfigError
}
