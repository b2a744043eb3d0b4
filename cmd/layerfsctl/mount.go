package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/layerfs/layerfs/pkg/logging"
	"github.com/layerfs/layerfs/pkg/topology"
	"github.com/layerfs/layerfs/pkg/vpath"
)

var mountLogger = logging.RootLogger.Sublogger("mount")

func mountMain(_ *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("exactly one manifest path must be specified")
	}

	manifest, err := topology.Load(arguments[0], mountConfiguration.envFile)
	if err != nil {
		return errors.Wrap(err, "unable to load manifest")
	}

	topo, err := topology.Build(manifest)
	if err != nil {
		return errors.Wrap(err, "unable to build topology")
	}
	defer topo.Close()

	for _, m := range manifest.Mounts {
		if m.SubOf != "" && m.Kind != "" {
			warning(fmt.Sprintf("mount %s: kind %q is ignored because subOf is set", m.Name, m.Kind))
		}
		mountLogger.Printf("mount %s: validating", m.Name)
		backend := topo.Mounts[m.Name]
		if exists, err := backend.DirectoryExists(vpath.Root); err != nil {
			return errors.Wrapf(err, "mount %s: unable to verify root", m.Name)
		} else if !exists {
			return errors.Errorf("mount %s: root does not exist", m.Name)
		}
		fmt.Printf("%s: ok\n", m.Name)
	}

	return nil
}

var mountCommand = &cobra.Command{
	Use:   "mount <manifest>",
	Short: "Load a mount-topology manifest and validate every configured mount",
	Run:   mainify(mountMain),
}

var mountConfiguration struct {
	// envFile, if set, is loaded before the manifest so ${VAR}
	// references in root paths can be overridden per-environment.
	envFile string
}

func init() {
	flags := mountCommand.Flags()
	flags.StringVar(&mountConfiguration.envFile, "env-file", "", "Load environment overrides from this .env file before parsing the manifest")
}
