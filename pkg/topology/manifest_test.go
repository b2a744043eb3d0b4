package topology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/layerfs/layerfs/pkg/vpath"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "layerfs.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestBuildNativeAndMemoryMounts(t *testing.T) {
	root := t.TempDir()
	manifestPath := writeManifest(t, `
mounts:
  - name: disk
    kind: native
    root: `+root+`
  - name: scratch
    kind: memory
`)

	manifest, err := Load(manifestPath, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	topo, err := Build(manifest)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer topo.Close()

	if len(topo.Mounts) != 2 {
		t.Fatalf("got %d mounts, want 2", len(topo.Mounts))
	}
	if _, err := topo.Mounts["disk"].DirectoryExists(vpath.Root); err != nil {
		t.Fatalf("disk.DirectoryExists: %v", err)
	}
	if exists, err := topo.Mounts["scratch"].DirectoryExists(vpath.Root); err != nil || !exists {
		t.Fatalf("scratch root should exist, got %v, %v", exists, err)
	}
}

func TestBuildSubView(t *testing.T) {
	manifestPath := writeManifest(t, `
mounts:
  - name: base
    kind: memory
  - name: view
    subOf: base
    subPath: /a
`)

	manifest, err := Load(manifestPath, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The sub view's delegate directory must already exist before Build
	// succeeds.
	if _, err := Build(manifest); err == nil {
		t.Fatal("expected Build to fail because /a does not exist yet on base")
	}
}

func TestBuildSubViewOfExistingDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "a"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a", "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	manifestPath := writeManifest(t, `
mounts:
  - name: base
    kind: native
    root: `+root+`
  - name: view
    subOf: base
    subPath: /a
`)

	manifest, err := Load(manifestPath, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	topo, err := Build(manifest)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer topo.Close()

	if exists, err := topo.Mounts["view"].FileExists(vpath.Parse("/hello.txt")); err != nil || !exists {
		t.Fatalf("expected /hello.txt visible through sub view, got %v, %v", exists, err)
	}
}

func TestBuildUnknownSubOf(t *testing.T) {
	manifestPath := writeManifest(t, `
mounts:
  - name: view
    subOf: missing
    subPath: /a
`)
	manifest, err := Load(manifestPath, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Build(manifest); err == nil {
		t.Fatal("expected error for unknown subOf reference")
	}
}

func TestBuildDuplicateMountName(t *testing.T) {
	manifestPath := writeManifest(t, `
mounts:
  - name: dup
    kind: memory
  - name: dup
    kind: memory
`)
	manifest, err := Load(manifestPath, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Build(manifest); err == nil {
		t.Fatal("expected error for duplicate mount name")
	}
}
