package memfs

import (
	"testing"
	"time"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

func mustPath(s string) vpath.Path { return vpath.Parse(s) }

func TestCreateDirectoryAndExists(t *testing.T) {
	fs := New()
	if err := fs.CreateDirectory(mustPath("/a/b/c")); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	if ok, err := fs.DirectoryExists(mustPath("/a/b/c")); err != nil || !ok {
		t.Fatalf("DirectoryExists = %v, %v", ok, err)
	}
	if ok, _ := fs.DirectoryExists(mustPath("/a/b")); !ok {
		t.Fatal("expected intermediate directory to exist")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := New()
	if err := vfs.WriteAllText(fs, mustPath("/hello.txt"), "hello world"); err != nil {
		t.Fatalf("WriteAllText: %v", err)
	}
	got, err := vfs.ReadAllText(fs, mustPath("/hello.txt"))
	if err != nil {
		t.Fatalf("ReadAllText: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestOpenFileModes(t *testing.T) {
	fs := New()
	path := mustPath("/f.txt")

	if _, err := fs.OpenFile(path, vfs.OpenExisting, vfs.AccessRead, vfs.ShareNone); !vfs.Is(err, vfs.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}

	w, err := fs.OpenFile(path, vfs.OpenCreateNew, vfs.AccessWrite, vfs.ShareNone)
	if err != nil {
		t.Fatalf("OpenCreateNew: %v", err)
	}
	w.Write([]byte("abc"))
	w.Close()

	if _, err := fs.OpenFile(path, vfs.OpenCreateNew, vfs.AccessWrite, vfs.ShareNone); !vfs.Is(err, vfs.KindAlreadyExists) {
		t.Fatalf("expected KindAlreadyExists, got %v", err)
	}

	appender, err := fs.OpenFile(path, vfs.OpenAppend, vfs.AccessWrite, vfs.ShareNone)
	if err != nil {
		t.Fatalf("OpenAppend: %v", err)
	}
	appender.Write([]byte("def"))
	appender.Close()

	text, err := vfs.ReadAllText(fs, path)
	if err != nil {
		t.Fatalf("ReadAllText: %v", err)
	}
	if text != "abcdef" {
		t.Fatalf("got %q", text)
	}
}

func TestDeleteDirectoryNonEmpty(t *testing.T) {
	fs := New()
	fs.CreateDirectory(mustPath("/a"))
	vfs.WriteAllBytes(fs, mustPath("/a/f.txt"), []byte("x"))

	if err := fs.DeleteDirectory(mustPath("/a"), false); !vfs.Is(err, vfs.KindDirectoryNotEmpty) {
		t.Fatalf("expected KindDirectoryNotEmpty, got %v", err)
	}
	if err := fs.DeleteDirectory(mustPath("/a"), true); err != nil {
		t.Fatalf("recursive delete: %v", err)
	}
	if ok, _ := fs.DirectoryExists(mustPath("/a")); ok {
		t.Fatal("expected directory to be gone")
	}
}

func TestMoveFileRejectsExistingDestination(t *testing.T) {
	fs := New()
	vfs.WriteAllBytes(fs, mustPath("/a.txt"), []byte("a"))
	vfs.WriteAllBytes(fs, mustPath("/b.txt"), []byte("b"))

	if err := fs.MoveFile(mustPath("/a.txt"), mustPath("/b.txt")); !vfs.Is(err, vfs.KindDestinationExists) {
		t.Fatalf("expected KindDestinationExists, got %v", err)
	}
}

func TestEnumeratePathsRecursiveAndFilter(t *testing.T) {
	fs := New()
	fs.CreateDirectory(mustPath("/dir/sub"))
	vfs.WriteAllBytes(fs, mustPath("/dir/a.go"), nil)
	vfs.WriteAllBytes(fs, mustPath("/dir/b.txt"), nil)
	vfs.WriteAllBytes(fs, mustPath("/dir/sub/c.go"), nil)

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
	if len(found) != 2 {
		t.Fatalf("expected 2 matches, got %v", found)
	}
}

func TestWatcherDeliversCreatedAndFiltersByDirectory(t *testing.T) {
	fs := New()
	fs.CreateDirectory(mustPath("/watched"))
	fs.CreateDirectory(mustPath("/other"))

	w, err := fs.Watch(mustPath("/watched"))
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()
	w.SetEnableRaisingEvents(true)
	w.SetIncludeSubdirectories(true)

	events := make(chan vpath.Path, 8)
	w.OnCreated(func(e vfs.FileChangedEvent) { events <- e.FullPath })

	vfs.WriteAllBytes(fs, mustPath("/watched/inside.txt"), []byte("x"))
	vfs.WriteAllBytes(fs, mustPath("/other/outside.txt"), []byte("y"))

	select {
	case p := <-events:
		if p.String() != "/watched/inside.txt" {
			t.Fatalf("unexpected event path %q", p.String())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Created event")
	}

	select {
	case p := <-events:
		t.Fatalf("unexpected second event for %q", p.String())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCopyFileOverwriteGuard(t *testing.T) {
	fs := New()
	vfs.WriteAllBytes(fs, mustPath("/src.txt"), []byte("source"))
	vfs.WriteAllBytes(fs, mustPath("/dst.txt"), []byte("dest"))

	if err := fs.CopyFile(mustPath("/src.txt"), mustPath("/dst.txt"), false); !vfs.Is(err, vfs.KindDestinationExists) {
		t.Fatalf("expected KindDestinationExists, got %v", err)
	}
	if err := fs.CopyFile(mustPath("/src.txt"), mustPath("/dst.txt"), true); err != nil {
		t.Fatalf("overwrite copy: %v", err)
	}
	got, _ := vfs.ReadAllText(fs, mustPath("/dst.txt"))
	if got != "source" {
		t.Fatalf("got %q", got)
	}
}

var _ vfs.FileSystem = New()
