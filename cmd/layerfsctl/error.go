package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// warning prints a warning message to standard error.
func warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// fatal prints an error message to standard error and terminates the
// process with an error exit code.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// mainify wraps a non-standard Cobra entry point (one returning an
// error) into the standard signature Cobra expects, so that entry
// points can rely on defer-based cleanup instead of terminating the
// process directly.
func mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			fatal(err)
		}
	}
}
