package main

import (
	"fmt"
	"os"

	"github.com/temirov/crates-smoke/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main runs the crates-smoke command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
