// Command admin provides operator utilities for PuppyTalk.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openDeps).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
