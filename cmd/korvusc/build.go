package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "build <source>",
		Short: "Compile a package directory or a single source file to LLVM IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			fmt.Fprintf(os.Stderr, "%s %s...\n", bold("Building"), args[0])
			ir, derr := build(args[0])
			if derr != nil {
				return derr
			}
			if err := os.WriteFile(out, []byte(ir), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output path for the emitted LLVM IR")
	return cmd
}
