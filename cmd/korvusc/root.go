package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/spf13/cobra"
)

var (
	red  = color.New(color.FgRed, color.Bold).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "korvusc",
		Short:         "Compile korvus packages to LLVM IR",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCmd())
	return root
}

// reportError renders err to stderr the way spec §6 requires: a
// human-readable message with source excerpt and caret for a
// diagnostic, a plain one-liner for anything else (package-file I/O,
// output-write failures that never reached the compiler core).
func reportError(err error) {
	if derr, ok := err.(*diag.Error); ok {
		diag.NewFormatter().Format(derr)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", red("error:"), err)
}
