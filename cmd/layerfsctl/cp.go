package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/layerfs/layerfs/pkg/topology"
	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

func cpMain(_ *cobra.Command, arguments []string) error {
	if len(arguments) != 3 {
		return errors.New("usage: cp <manifest> <src-mount>:<path> <dest-mount>:<path>")
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

	srcMount, srcPath, err := splitEndpoint(arguments[1])
	if err != nil {
		return err
	}
	destMount, destPath, err := splitEndpoint(arguments[2])
	if err != nil {
		return err
	}

	src, ok := topo.Mounts[srcMount]
	if !ok {
		return errors.Errorf("unknown mount %q", srcMount)
	}
	dest, ok := topo.Mounts[destMount]
	if !ok {
		return errors.Errorf("unknown mount %q", destMount)
	}

	srcVPath := vpath.Parse(srcPath)
	destVPath := vpath.Parse(destPath)

	isDir, err := src.DirectoryExists(srcVPath)
	if err != nil {
		return errors.Wrap(err, "unable to stat source")
	}

	if isDir {
		if err := vfs.CopyDirectory(src, srcVPath, dest, destVPath, cpConfiguration.overwrite); err != nil {
			return errors.Wrap(err, "unable to copy directory")
		}
	} else {
		if err := vfs.Copy(src, srcVPath, dest, destVPath, cpConfiguration.overwrite); err != nil {
			return errors.Wrap(err, "unable to copy file")
		}
	}

	fmt.Printf("copied %s:%s -> %s:%s\n", srcMount, srcPath, destMount, destPath)
	return nil
}

var cpCommand = &cobra.Command{
	Use:   "cp <manifest> <src-mount>:<path> <dest-mount>:<path>",
	Short: "Copy a file or directory between two configured mounts",
	Run:   mainify(cpMain),
}

var cpConfiguration struct {
	overwrite bool
}

func init() {
	flags := cpCommand.Flags()
	flags.BoolVarP(&cpConfiguration.overwrite, "overwrite", "f", false, "Overwrite the destination if it already exists")
}
