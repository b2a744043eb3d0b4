package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/layerfs/layerfs/pkg/logging"
	"github.com/layerfs/layerfs/pkg/topology"
	"github.com/layerfs/layerfs/pkg/vfs"
)

// terminationSignals are the signals watch treats as a request to stop
// and print a final summary. SIGABRT and friends are deliberately
// excluded since the Go runtime gives them special handling.
var terminationSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

var watchLogger = logging.RootLogger.Sublogger("watch")

func watchMain(_ *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("exactly one manifest path must be specified")
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

	if topo.Watcher == nil {
		return errors.New("manifest does not mark any mount with watch: true")
	}

	start := time.Now()
	var count int

	topo.Watcher.OnCreated(func(e vfs.FileChangedEvent) {
		count++
		fmt.Printf("[%s] created %s\n", humanize.Time(start), e.FullPath.String())
	})
	topo.Watcher.OnDeleted(func(e vfs.FileChangedEvent) {
		count++
		fmt.Printf("[%s] deleted %s\n", humanize.Time(start), e.FullPath.String())
	})
	topo.Watcher.OnChanged(func(e vfs.FileChangedEvent) {
		count++
		fmt.Printf("[%s] changed %s\n", humanize.Time(start), e.FullPath.String())
	})
	topo.Watcher.OnRenamed(func(e vfs.FileRenamedEvent) {
		count++
		fmt.Printf("[%s] renamed %s -> %s\n", humanize.Time(start), e.OldFullPath.String(), e.FullPath.String())
	})
	topo.Watcher.OnError(func(e vfs.ErrorEvent) {
		watchLogger.Error(e.Err)
	})

	topo.Watcher.SetIncludeSubdirectories(true)
	topo.Watcher.SetEnableRaisingEvents(true)

	var watched int
	for _, m := range manifest.Mounts {
		if m.Watch {
			watched++
		}
	}
	watchLogger.Printf("watching %d mount(s), press Ctrl-C to stop", watched)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, terminationSignals...)
	<-stop

	fmt.Printf("stopped after %s, %d event(s) observed\n", humanize.RelTime(start, time.Now(), "", ""), count)
	return nil
}

var watchCommand = &cobra.Command{
	Use:   "watch <manifest>",
	Short: "Stream change events from every mount marked watch: true in the manifest",
	Run:   mainify(watchMain),
}
