package logging

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func init() {
	// Set the global logger to use standard output.
	log.SetOutput(os.Stdout)

	// Disable colorized warnings and errors when standard output is not
	// a terminal (e.g. when redirected to a file or a pipe).
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	// Honor a level override from the environment.
	if level, ok := NameToLevel(os.Getenv("LAYERFS_LOG_LEVEL")); ok {
		currentLevel = level
	}
}
