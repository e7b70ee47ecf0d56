// Command searchtoken encodes and decodes the search tokens used in forum
// and member directory URLs.
//
//	searchtoken encode --kind forum --set pi=2 --set iot=1
//	searchtoken decode --kind forum "#pi=2&iot=1"
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
