package osfs

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

// osWatcher is the osfs Watcher implementation: an fsnotify.Watcher with
// a watch registered on path's native directory and on every
// subdirectory beneath it, whatever IncludeSubdirectories is set to;
// WatcherBase's policy drops events below direct children when it is
// off. Newly created subdirectories are added dynamically as Create
// events for them arrive.
type osWatcher struct {
	*vfs.WatcherBase

	fs       *FS
	fsnotify *fsnotify.Watcher
	done     chan struct{}
}

func (fs *FS) CanWatchImpl(path vpath.Path) bool {
	native := fs.native(path)
	info, err := os.Stat(native)
	return err == nil && info.IsDir()
}

func (fs *FS) WatchImpl(path vpath.Path) (vfs.Watcher, error) {
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, vfs.Wrap("Watch", path, vfs.KindIOError, err)
	}

	w := &osWatcher{
		WatcherBase: vfs.NewWatcherBase(path),
		fs:          fs,
		fsnotify:    inner,
		done:        make(chan struct{}),
	}

	root := fs.native(path)
	if err := addRecursive(inner, root); err != nil {
		inner.Close()
		return nil, vfs.Wrap("Watch", path, vfs.KindIOError, err)
	}

	fs.watchersMu.Lock()
	fs.watchers = append(fs.watchers, w)
	fs.watchersMu.Unlock()

	go w.run()
	return w, nil
}

// addRecursive registers root and, walking its subtree, every directory
// beneath it with watcher. It mirrors the "watch every directory
// individually" approach fsnotify requires on platforms without native
// recursive watch support.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func (w *osWatcher) run() {
	for {
		select {
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.RaiseError(vpath.Null, err)
		case <-w.done:
			return
		}
	}
}

func (w *osWatcher) handle(event fsnotify.Event) {
	path, err := w.fs.ConvertPathFromInternalImpl(event.Name)
	if err != nil {
		w.RaiseError(vpath.Null, err)
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			w.fsnotify.Add(event.Name)
		}
		w.RaiseCreated(path)
	case event.Has(fsnotify.Remove):
		w.RaiseDeleted(path)
	case event.Has(fsnotify.Rename):
		// fsnotify reports a rename as a Rename on the old name; the
		// corresponding Create on the new name arrives as a separate
		// event, so the old path is reported as a deletion here.
		w.RaiseDeleted(path)
	case event.Has(fsnotify.Write), event.Has(fsnotify.Chmod):
		w.RaiseChanged(path)
	}
}

// Close stops the native watch loop, detaches from the backend's
// registry, and disposes the embedded dispatcher.
func (w *osWatcher) Close() error {
	w.fs.watchersMu.Lock()
	for i, other := range w.fs.watchers {
		if other == w {
			w.fs.watchers = append(w.fs.watchers[:i], w.fs.watchers[i+1:]...)
			break
		}
	}
	w.fs.watchersMu.Unlock()

	select {
	case <-w.done:
		// Already closed.
	default:
		close(w.done)
	}
	w.fsnotify.Close()
	return w.WatcherBase.Close()
}

func (fs *FS) closeAllWatchers() {
	fs.watchersMu.Lock()
	active := fs.watchers
	fs.watchers = nil
	fs.watchersMu.Unlock()
	for _, w := range active {
		w.Close()
	}
}

var _ vfs.Watcher = (*osWatcher)(nil)
