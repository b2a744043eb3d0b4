package vfs_test

import (
	"testing"
	"time"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vfs/memfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

func mustPath(s string) vpath.Path { return vpath.Parse(s) }

func TestSubViewRoundTrip(t *testing.T) {
	base := memfs.New()
	if err := base.CreateDirectory(mustPath("/project/src")); err != nil {
		t.Fatal(err)
	}
	if err := vfs.WriteAllText(base, mustPath("/project/src/main.go"), "package main"); err != nil {
		t.Fatal(err)
	}

	sub, err := vfs.NewSub(base, mustPath("/project"), false)
	if err != nil {
		t.Fatalf("NewSub: %v", err)
	}

	if ok, err := sub.FileExists(mustPath("/src/main.go")); err != nil || !ok {
		t.Fatalf("FileExists through sub view: %v, %v", ok, err)
	}
	text, err := vfs.ReadAllText(sub, mustPath("/src/main.go"))
	if err != nil || text != "package main" {
		t.Fatalf("ReadAllText through sub view: %q, %v", text, err)
	}

	if err := vfs.WriteAllText(sub, mustPath("/src/extra.go"), "package main // extra"); err != nil {
		t.Fatal(err)
	}
	if ok, err := base.FileExists(mustPath("/project/src/extra.go")); err != nil || !ok {
		t.Fatalf("write through sub view did not reach base: %v, %v", ok, err)
	}
}

func TestSubViewRequiresExistingRoot(t *testing.T) {
	base := memfs.New()
	if _, err := vfs.NewSub(base, mustPath("/missing"), false); !vfs.Is(err, vfs.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestReadOnlyRejectsMutators(t *testing.T) {
	base := memfs.New()
	vfs.WriteAllBytes(base, mustPath("/a.txt"), []byte("hello"))

	ro := vfs.NewReadOnly(base, false)

	if _, err := vfs.ReadAllBytes(ro, mustPath("/a.txt")); err != nil {
		t.Fatalf("read through read-only overlay: %v", err)
	}
	if err := ro.DeleteFile(mustPath("/a.txt")); !vfs.Is(err, vfs.KindAccessDenied) {
		t.Fatalf("expected KindAccessDenied, got %v", err)
	}
	if err := ro.CreateDirectory(mustPath("/new")); !vfs.Is(err, vfs.KindAccessDenied) {
		t.Fatalf("expected KindAccessDenied, got %v", err)
	}
	if _, err := ro.OpenFile(mustPath("/a.txt"), vfs.OpenExisting, vfs.AccessWrite, vfs.ShareNone); !vfs.Is(err, vfs.KindAccessDenied) {
		t.Fatalf("expected KindAccessDenied for write-mode open, got %v", err)
	}
}

func TestSubWatcherTranslatesPaths(t *testing.T) {
	base := memfs.New()
	if err := base.CreateDirectory(mustPath("/root/dir")); err != nil {
		t.Fatal(err)
	}

	sub, err := vfs.NewSub(base, mustPath("/root"), false)
	if err != nil {
		t.Fatal(err)
	}

	w, err := sub.Watch(mustPath("/"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.SetEnableRaisingEvents(true)
	w.SetIncludeSubdirectories(true)

	events := make(chan vpath.Path, 4)
	w.OnCreated(func(e vfs.FileChangedEvent) { events <- e.FullPath })

	if err := vfs.WriteAllBytes(sub, mustPath("/dir/new.txt"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-events:
		if p.String() != "/dir/new.txt" {
			t.Fatalf("expected translated sub-relative path, got %q", p.String())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for translated Created event")
	}
}

func TestAggregateWatcherFansInChildren(t *testing.T) {
	left := memfs.New()
	right := memfs.New()
	left.CreateDirectory(mustPath("/"))
	right.CreateDirectory(mustPath("/"))

	agg := vfs.NewAggregateWatcher(vpath.Root)
	defer agg.Close()
	agg.SetEnableRaisingEvents(true)
	agg.SetIncludeSubdirectories(true)

	leftWatcher, err := left.Watch(vpath.Root)
	if err != nil {
		t.Fatal(err)
	}
	rightWatcher, err := right.Watch(vpath.Root)
	if err != nil {
		t.Fatal(err)
	}
	if err := agg.Add(leftWatcher, true); err != nil {
		t.Fatal(err)
	}
	if err := agg.Add(rightWatcher, true); err != nil {
		t.Fatal(err)
	}

	events := make(chan vpath.Path, 4)
	agg.OnCreated(func(e vfs.FileChangedEvent) { events <- e.FullPath })

	vfs.WriteAllBytes(left, mustPath("/from-left.txt"), []byte("l"))
	vfs.WriteAllBytes(right, mustPath("/from-right.txt"), []byte("r"))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-events:
			seen[p.String()] = true
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d events, saw %v", i, seen)
		}
	}
	if !seen["/from-left.txt"] || !seen["/from-right.txt"] {
		t.Fatalf("expected both children's events, saw %v", seen)
	}
}

func TestAggregateWatcherRemoveByIdentity(t *testing.T) {
	backend := memfs.New()
	backend.CreateDirectory(mustPath("/"))

	agg := vfs.NewAggregateWatcher(vpath.Root)
	defer agg.Close()
	agg.SetEnableRaisingEvents(true)
	agg.SetIncludeSubdirectories(true)

	child, err := backend.Watch(vpath.Root)
	if err != nil {
		t.Fatal(err)
	}
	identity := child.Identity()
	if err := agg.Add(child, true); err != nil {
		t.Fatal(err)
	}

	events := make(chan vpath.Path, 4)
	agg.OnCreated(func(e vfs.FileChangedEvent) { events <- e.FullPath })

	if err := agg.Remove(identity); err != nil {
		t.Fatal(err)
	}

	vfs.WriteAllBytes(backend, mustPath("/after-remove.txt"), []byte("x"))

	select {
	case p := <-events:
		t.Fatalf("unexpected event after removal: %q", p.String())
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOperationsRejectRelativeAndNullPaths(t *testing.T) {
	fs := memfs.New()

	if err := fs.CreateDirectory(vpath.Parse("relative")); !vfs.Is(err, vfs.KindInvalidPath) {
		t.Fatalf("expected KindInvalidPath, got %v", err)
	}
	if _, err := fs.OpenRead(vpath.Parse("relative.txt")); !vfs.Is(err, vfs.KindInvalidPath) {
		t.Fatalf("expected KindInvalidPath, got %v", err)
	}
	if err := fs.DeleteFile(vpath.Null); !vfs.Is(err, vfs.KindInvalidPath) {
		t.Fatalf("expected KindInvalidPath for null path, got %v", err)
	}
}

func TestCopyDirectoryAcrossBackends(t *testing.T) {
	src := memfs.New()
	dst := memfs.New()

	src.CreateDirectory(mustPath("/data/nested"))
	vfs.WriteAllBytes(src, mustPath("/data/a.txt"), []byte("a"))
	vfs.WriteAllBytes(src, mustPath("/data/nested/b.txt"), []byte("b"))

	if err := vfs.CopyDirectory(src, mustPath("/data"), dst, mustPath("/copy"), false); err != nil {
		t.Fatalf("CopyDirectory: %v", err)
	}

	for _, p := range []string{"/copy/a.txt", "/copy/nested/b.txt"} {
		if ok, err := dst.FileExists(mustPath(p)); err != nil || !ok {
			t.Fatalf("expected %s to exist in destination: %v, %v", p, ok, err)
		}
	}
}
