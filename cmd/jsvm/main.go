// Command jsvm is a thin CLI front end over the engine in pkg/jsvm: the
// external collaborator spec.md §1 excludes from the core contract.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-jsvm/cmd/jsvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
