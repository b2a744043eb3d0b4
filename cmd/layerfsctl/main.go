// Command layerfsctl is a demo CLI for exercising a layerfs topology
// end to end: loading a mount manifest, listing and copying files
// across composed backends, and streaming watch events. It lives
// outside pkg/vfs and only consumes its public interface -- the core
// composition engine has no CLI of its own.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/layerfs/layerfs/pkg/logging"
)

var rootConfiguration struct {
	// debug enables verbose logging via pkg/logging.
	debug bool
}

var rootCommand = &cobra.Command{
	Use:   "layerfsctl",
	Short: "layerfsctl exercises a layerfs mount topology from the command line",
	PersistentPreRun: func(*cobra.Command, []string) {
		if rootConfiguration.debug {
			logging.SetLevel(logging.LevelDebug)
		}
	},
}

func init() {
	cobra.EnableCommandSorting = false

	flags := rootCommand.PersistentFlags()
	flags.BoolVar(&rootConfiguration.debug, "debug", false, "Enable debug logging")

	rootCommand.AddCommand(
		mountCommand,
		lsCommand,
		watchCommand,
		cpCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
