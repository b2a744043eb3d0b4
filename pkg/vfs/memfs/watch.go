package memfs

import (
	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

// watcher is the memfs Watcher implementation. It carries no native
// resources of its own; FS.notify broadcasts every mutation to every
// live watcher, which applies WatcherBase's delivery policy internally.
type watcher struct {
	*vfs.WatcherBase
	fs *FS
}

func (fs *FS) WatchImpl(path vpath.Path) (vfs.Watcher, error) {
	w := &watcher{WatcherBase: vfs.NewWatcherBase(path), fs: fs}
	fs.watchersMu.Lock()
	fs.watchers = append(fs.watchers, w)
	fs.watchersMu.Unlock()
	return w, nil
}

// Close detaches the watcher from its backend and disposes its
// dispatcher. It is safe to call more than once.
func (w *watcher) Close() error {
	w.fs.watchersMu.Lock()
	for i, other := range w.fs.watchers {
		if other == w {
			w.fs.watchers = append(w.fs.watchers[:i], w.fs.watchers[i+1:]...)
			break
		}
	}
	w.fs.watchersMu.Unlock()
	return w.WatcherBase.Close()
}

var _ vfs.Watcher = (*watcher)(nil)
