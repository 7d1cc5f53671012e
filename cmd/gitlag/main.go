// Package main provides the entry point for the gitlag CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/gitlag/cmd/gitlag/commands"
	"github.com/Sumatoshi-tech/gitlag/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	root := commands.NewRootCommand()

	err := root.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitCode(err))
	}
}
