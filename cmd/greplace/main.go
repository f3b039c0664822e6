// Package main provides the greplace command: an interactive search and
// replace front end for ripgrep and grep, with headless search and replace
// subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(defaultDependencies).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
