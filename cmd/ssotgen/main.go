package main

import (
	"fmt"
	"os"

	"github.com/nick227/ssot-codegen/internal/cli/commands"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	root := commands.NewRootCommand(Version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
