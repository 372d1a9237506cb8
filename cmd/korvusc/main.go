// Command korvusc compiles korvus source into LLVM IR text (spec §6
// "EXTERNAL INTERFACES"): a single command taking a source root and an
// output path, exiting 0 on success and non-zero on any failure.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}
