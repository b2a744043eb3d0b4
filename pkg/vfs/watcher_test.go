package vfs

import (
	"testing"
	"time"

	"github.com/layerfs/layerfs/pkg/vpath"
)

func TestWatcherBaseFilterAndRecursionPolicy(t *testing.T) {
	w := NewWatcherBase(vpath.Root)
	defer w.Close()
	if err := w.SetFilter("*.log"); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	w.SetEnableRaisingEvents(true)

	events := make(chan FileChangedEvent, 8)
	w.OnCreated(func(e FileChangedEvent) { events <- e })

	w.RaiseCreated(vpath.Parse("/a.log"))
	w.RaiseCreated(vpath.Parse("/a.txt"))
	w.RaiseCreated(vpath.Parse("/sub/b.log"))

	select {
	case e := <-events:
		if e.FullPath.String() != "/a.log" {
			t.Fatalf("unexpected event path %q", e.FullPath.String())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for matching event")
	}
	select {
	case e := <-events:
		t.Fatalf("unexpected event for %q", e.FullPath.String())
	case <-time.After(50 * time.Millisecond):
	}

	// Enabling recursion admits descendants beyond direct children.
	w.SetIncludeSubdirectories(true)
	w.RaiseCreated(vpath.Parse("/sub/c.log"))
	select {
	case e := <-events:
		if e.FullPath.String() != "/sub/c.log" {
			t.Fatalf("unexpected recursive event path %q", e.FullPath.String())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for recursive event")
	}
}

func TestWatcherBaseDisabledDeliversNothing(t *testing.T) {
	w := NewWatcherBase(vpath.Root)
	defer w.Close()

	events := make(chan FileChangedEvent, 1)
	w.OnCreated(func(e FileChangedEvent) { events <- e })

	w.RaiseCreated(vpath.Parse("/a.txt"))

	select {
	case e := <-events:
		t.Fatalf("disabled watcher delivered %q", e.FullPath.String())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherBasePanickingHandlerIsContained(t *testing.T) {
	w := NewWatcherBase(vpath.Root)
	defer w.Close()
	w.SetEnableRaisingEvents(true)
	w.SetIncludeSubdirectories(true)

	errored := make(chan ErrorEvent, 2)
	w.OnError(func(e ErrorEvent) { errored <- e })

	delivered := make(chan vpath.Path, 2)
	w.OnCreated(func(FileChangedEvent) { panic("handler failure") })
	w.OnCreated(func(e FileChangedEvent) { delivered <- e.FullPath })

	w.RaiseCreated(vpath.Parse("/x.txt"))

	select {
	case <-errored:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Error event from panicking handler")
	}
	select {
	case p := <-delivered:
		if p.String() != "/x.txt" {
			t.Fatalf("unexpected delivery %q", p.String())
		}
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber should still receive the event")
	}

	// The watcher keeps delivering after a handler failure.
	w.RaiseCreated(vpath.Parse("/y.txt"))
	select {
	case p := <-delivered:
		if p.String() != "/y.txt" {
			t.Fatalf("unexpected delivery %q", p.String())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery after handler failure")
	}
}

func TestWatcherBaseUnsubscribeStopsDelivery(t *testing.T) {
	w := NewWatcherBase(vpath.Root)
	defer w.Close()
	w.SetEnableRaisingEvents(true)
	w.SetIncludeSubdirectories(true)

	events := make(chan FileChangedEvent, 2)
	unsubscribe := w.OnCreated(func(e FileChangedEvent) { events <- e })

	w.RaiseCreated(vpath.Parse("/first.txt"))
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pre-unsubscribe delivery")
	}

	unsubscribe()
	w.RaiseCreated(vpath.Parse("/second.txt"))
	select {
	case e := <-events:
		t.Fatalf("delivery after unsubscribe: %q", e.FullPath.String())
	case <-time.After(50 * time.Millisecond):
	}
}
