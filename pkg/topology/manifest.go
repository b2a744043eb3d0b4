// Package topology loads a mount-topology manifest describing a set of
// composed layerfs backends (native roots, sub-views, read-only
// overlays, and an aggregated watch set over all of them) and builds
// the corresponding vfs.FileSystem graph. It is the configuration layer
// cmd/layerfsctl uses to turn a YAML file into a running composition.
package topology

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vfs/memfs"
	"github.com/layerfs/layerfs/pkg/vfs/osfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

// MountConfiguration describes a single named mount in the manifest.
type MountConfiguration struct {
	// Name identifies this mount for later reference by SubOf/Watch.
	Name string `yaml:"name"`
	// Kind selects the leaf backend: "native" (disk-backed, rooted at
	// Root) or "memory" (in-memory, scratch).
	Kind string `yaml:"kind"`
	// Root is the native directory this mount is rooted at. Required
	// for Kind "native"; ignored for "memory". Environment variables
	// of the form ${VAR} are expanded after .env loading.
	Root string `yaml:"root"`
	// SubOf, if set, names another mount in the manifest; this mount
	// becomes a sub-view of it rooted at SubPath instead of an
	// independent leaf backend.
	SubOf string `yaml:"subOf"`
	// SubPath is the absolute path within SubOf this mount exposes.
	// Required when SubOf is set.
	SubPath string `yaml:"subPath"`
	// ReadOnly wraps the resulting backend in a read-only overlay.
	ReadOnly bool `yaml:"readOnly"`
	// Watch includes this mount's backend in the manifest's aggregate
	// watcher.
	Watch bool `yaml:"watch"`
}

// Manifest is the top-level manifest document.
type Manifest struct {
	// Mounts are the backends to construct, applied in order so that
	// SubOf can reference a mount defined earlier in the list.
	Mounts []MountConfiguration `yaml:"mounts"`
}

// Load reads and parses a manifest from path. If envFile is non-empty,
// its key=value pairs are loaded into the process environment first so
// that ${VAR} references in the manifest resolve against overrides
// supplied alongside it.
func Load(path string, envFile string) (*Manifest, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("unable to load environment file %s: %w", envFile, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("unable to parse manifest %s: %w", path, err)
	}
	return &manifest, nil
}

// Topology is the built result of applying a Manifest: every named
// mount's backend, plus an aggregate watcher over whichever mounts
// requested Watch.
type Topology struct {
	Mounts map[string]vfs.FileSystem

	// Watcher fans together every mount with Watch set, or nil if no
	// manifest mount requested watching. Topology.Close closes it.
	Watcher *vfs.AggregateWatcher
}

// Build constructs a Topology from manifest, creating leaf backends,
// wiring sub-views and read-only overlays, and assembling the aggregate
// watcher.
func Build(manifest *Manifest) (*Topology, error) {
	topo := &Topology{Mounts: make(map[string]vfs.FileSystem)}

	var watchNames []string
	for _, m := range manifest.Mounts {
		if m.Name == "" {
			return nil, fmt.Errorf("mount missing a name")
		}
		if _, exists := topo.Mounts[m.Name]; exists {
			return nil, fmt.Errorf("duplicate mount name %q", m.Name)
		}

		backend, err := buildBackend(topo, m)
		if err != nil {
			return nil, fmt.Errorf("mount %q: %w", m.Name, err)
		}

		if m.ReadOnly {
			backend = vfs.NewReadOnly(backend, true)
		}

		topo.Mounts[m.Name] = backend
		if m.Watch {
			watchNames = append(watchNames, m.Name)
		}
	}

	if len(watchNames) > 0 {
		aggregate := vfs.NewAggregateWatcher(vpath.Root)
		for _, name := range watchNames {
			child, err := topo.Mounts[name].Watch(vpath.Root)
			if err != nil {
				aggregate.Close()
				return nil, fmt.Errorf("watch %q: %w", name, err)
			}
			if err := aggregate.Add(child, true); err != nil {
				aggregate.Close()
				return nil, fmt.Errorf("watch %q: %w", name, err)
			}
		}
		topo.Watcher = aggregate
	}

	return topo, nil
}

func buildBackend(topo *Topology, m MountConfiguration) (vfs.FileSystem, error) {
	if m.SubOf != "" {
		parent, ok := topo.Mounts[m.SubOf]
		if !ok {
			return nil, fmt.Errorf("subOf references unknown mount %q (must be defined earlier)", m.SubOf)
		}
		if m.SubPath == "" {
			return nil, fmt.Errorf("subPath is required when subOf is set")
		}
		return vfs.NewSub(parent, vpath.Parse(m.SubPath), false)
	}

	switch m.Kind {
	case "", "native":
		if m.Root == "" {
			return nil, fmt.Errorf("root is required for kind %q", m.Kind)
		}
		return osfs.New(os.ExpandEnv(m.Root))
	case "memory":
		return memfs.New(), nil
	default:
		return nil, fmt.Errorf("unknown mount kind %q", m.Kind)
	}
}

// Close closes the aggregate watcher, if any, and then calls Close on
// every mount's backend, sub-views included. Sub-views are built with
// owned=false (see buildBackend), so closing one does not close its
// delegate; each leaf backend is closed through its own mount entry.
// It returns the first error encountered.
func (t *Topology) Close() error {
	var firstErr error
	if t.Watcher != nil {
		if err := t.Watcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, backend := range t.Mounts {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
