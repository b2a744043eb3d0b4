package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/layerfs/layerfs/pkg/topology"
	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

func lsMain(_ *cobra.Command, arguments []string) error {
	if len(arguments) != 2 {
		return errors.New("usage: ls <manifest> <mount>:<path>")
	}

	manifest, err := topology.Load(arguments[0], "")
	if err != nil {
		return errors.Wrap(err, "unable to load manifest")
	}
	topo, err := topology.Build(manifest)
	if err != nil {
		return errors.Wrap(err, "unable to build topology")
	}
	defer topo.Close()

	mountName, path, err := splitEndpoint(arguments[1])
	if err != nil {
		return err
	}
	backend, ok := topo.Mounts[mountName]
	if !ok {
		return errors.Errorf("unknown mount %q", mountName)
	}

	if lsConfiguration.glob != "" {
		if lsConfiguration.filter != "" {
			return errors.New("--filter and --glob cannot be combined")
		}
		matches, err := vfs.Glob(backend, vpath.Parse(path), lsConfiguration.glob)
		if err != nil {
			return errors.Wrap(err, "unable to glob")
		}
		for _, entryPath := range matches {
			if err := printEntry(backend, entryPath); err != nil {
				return err
			}
		}
		return nil
	}

	var pattern *vfs.FilterPattern
	if lsConfiguration.filter != "" {
		pattern, err = vfs.CompileFilter(lsConfiguration.filter)
		if err != nil {
			return errors.Wrap(err, "invalid filter")
		}
	}

	seq, err := backend.EnumeratePaths(vpath.Parse(path), pattern, lsConfiguration.recursive, vfs.SearchBoth)
	if err != nil {
		return errors.Wrap(err, "unable to enumerate")
	}
	defer seq.Close()

	for seq.Next() {
		if err := printEntry(backend, seq.Path()); err != nil {
			return err
		}
	}
	return seq.Err()
}

// printEntry prints one enumerated entry, directories with a marker and
// files with a humanized size.
func printEntry(backend vfs.FileSystem, entryPath vpath.Path) error {
	isDir, err := backend.DirectoryExists(entryPath)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", entryPath)
	}
	if isDir {
		fmt.Printf("%10s  %s/\n", "<dir>", entryPath.String())
		return nil
	}
	length, err := backend.GetFileLength(entryPath)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", entryPath)
	}
	fmt.Printf("%10s  %s\n", humanize.Bytes(uint64(length)), entryPath.String())
	return nil
}

// splitEndpoint splits a "<mount>:<path>" endpoint argument.
func splitEndpoint(endpoint string) (mount string, path string, err error) {
	parts := strings.SplitN(endpoint, ":", 2)
	if len(parts) != 2 {
		return "", "", errors.Errorf("endpoint %q must be of the form <mount>:<path>", endpoint)
	}
	return parts[0], parts[1], nil
}

var lsCommand = &cobra.Command{
	Use:   "ls <manifest> <mount>:<path>",
	Short: "List the contents of a directory on a configured mount",
	Run:   mainify(lsMain),
}

var lsConfiguration struct {
	recursive bool
	filter    string
	glob      string
}

func init() {
	flags := lsCommand.Flags()
	flags.BoolVarP(&lsConfiguration.recursive, "recursive", "r", false, "Recurse into subdirectories")
	flags.StringVar(&lsConfiguration.filter, "filter", "", "Glob filter applied to each entry's name (e.g. \"*.txt\")")
	flags.StringVar(&lsConfiguration.glob, "glob", "", "Recursive pattern matched against each entry's path relative to <path> (e.g. \"**/*.log\"); implies -r")
}
