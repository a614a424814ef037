// Command abiverify checks whether an LLVM-IR module conforms to the
// portable ABI subset described by spec.md, reporting diagnostics for
// every violation it finds.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
