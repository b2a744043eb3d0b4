package osfs

import (
	"sort"
	"testing"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

func mustPath(s string) vpath.Path { return vpath.Parse(s) }

func newTestFS(t *testing.T) vfs.FileSystem {
	t.Helper()
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fs
}

func TestEnumeratePathsRecursiveAndFilter(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.CreateDirectory(mustPath("/dir/sub")); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	for _, p := range []string{"/dir/a.go", "/dir/b.txt", "/dir/sub/c.go"} {
		if err := vfs.WriteAllBytes(fs, mustPath(p), nil); err != nil {
			t.Fatalf("WriteAllBytes(%s): %v", p, err)
		}
	}

	pattern := vfs.MustCompileFilter("*.go")
	seq, err := fs.EnumeratePaths(mustPath("/dir"), pattern, true, vfs.SearchFiles)
	if err != nil {
		t.Fatalf("EnumeratePaths: %v", err)
	}
	defer seq.Close()

	var found []string
	for seq.Next() {
		found = append(found, seq.Path().String())
	}
	if err := seq.Err(); err != nil {
		t.Fatalf("seq.Err: %v", err)
	}
	sort.Strings(found)
	want := []string{"/dir/a.go", "/dir/sub/c.go"}
	if len(found) != len(want) || found[0] != want[0] || found[1] != want[1] {
		t.Fatalf("got %v, want %v", found, want)
	}
}

func TestEnumeratePathsNonRecursive(t *testing.T) {
	fs := newTestFS(t)
	fs.CreateDirectory(mustPath("/dir/sub"))
	vfs.WriteAllBytes(fs, mustPath("/dir/a.txt"), nil)
	vfs.WriteAllBytes(fs, mustPath("/dir/sub/b.txt"), nil)

	seq, err := fs.EnumeratePaths(mustPath("/dir"), nil, false, vfs.SearchBoth)
	if err != nil {
		t.Fatalf("EnumeratePaths: %v", err)
	}
	defer seq.Close()

	var found []string
	for seq.Next() {
		found = append(found, seq.Path().String())
	}
	sort.Strings(found)
	want := []string{"/dir/a.txt", "/dir/sub"}
	if len(found) != len(want) || found[0] != want[0] || found[1] != want[1] {
		t.Fatalf("got %v, want %v", found, want)
	}
}

func TestEnumeratePathsNotFound(t *testing.T) {
	fs := newTestFS(t)
	if _, err := fs.EnumeratePaths(mustPath("/missing"), nil, false, vfs.SearchBoth); !vfs.Is(err, vfs.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestGlobRecursive(t *testing.T) {
	fsys := newTestFS(t)
	if err := fsys.CreateDirectory(mustPath("/a/b")); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	vfs.WriteAllBytes(fsys, mustPath("/a/one.log"), nil)
	vfs.WriteAllBytes(fsys, mustPath("/a/b/two.log"), nil)
	vfs.WriteAllBytes(fsys, mustPath("/a/b/three.txt"), nil)

	matches, err := vfs.Glob(fsys, mustPath("/"), "**/*.log")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}

	scoped, err := vfs.Glob(fsys, mustPath("/a/b"), "*.log")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(scoped) != 1 || scoped[0].String() != "/a/b/two.log" {
		t.Fatalf("got %v, want [/a/b/two.log]", scoped)
	}
}
