// Command prefixsearch answers prefix queries over one column of a
// delimited flat file such as airports.dat.
package main

import (
	"fmt"
	"os"
)

// Version information
const Version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
