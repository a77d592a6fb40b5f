// SPDX-License-Identifier: MIT

// Command dicemice echoes text back with its dice rolled.
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
