package vfs

import "github.com/layerfs/layerfs/pkg/vpath"

// TranslateFunc maps a path observed on one watcher's namespace into
// another's. It returns an error when the path cannot be represented in
// the target namespace, in which case the caller must drop the event
// rather than propagate a bogus path.
type TranslateFunc func(vpath.Path) (vpath.Path, error)

// WrapWatcher forwards another backend's watcher, translating every path
// it carries with TryConvertPath. Configuration fields mirror the inner
// watcher: reads reflect a local copy kept in sync, and writes are
// pushed through to the inner watcher as well as applied locally, so
// that WrapWatcher's own filter/enabled/recursive policy (evaluated
// against the *translated* path, via the embedded WatcherBase) always
// matches what the inner watcher is configured to report.
type WrapWatcher struct {
	*WatcherBase

	inner Watcher
	owned bool

	// TryConvertPath is the overridable path-translation hook. It
	// defaults to the function supplied at construction and may be
	// replaced to change translation or filtering. A sub-view's watcher
	// is constructed with its translator's FromDelegate, which fails for
	// paths outside the rooted subtree, so those events are dropped.
	TryConvertPath TranslateFunc

	unsubscribe []Unsubscribe
}

// NewWrapWatcher constructs a WrapWatcher rooted at path, forwarding
// events from inner through translate. If owned is true, Close also
// closes inner.
func NewWrapWatcher(path vpath.Path, inner Watcher, owned bool, translate TranslateFunc) *WrapWatcher {
	wb := NewWatcherBase(path)
	wb.filterSource = inner.Filter()
	if compiled, err := CompileFilter(inner.Filter()); err == nil {
		wb.filter = compiled
	}
	wb.notifyFilters = inner.NotifyFilters()
	wb.enabled = inner.EnableRaisingEvents()
	wb.recursive = inner.IncludeSubdirectories()

	w := &WrapWatcher{WatcherBase: wb, inner: inner, owned: owned, TryConvertPath: translate}
	w.subscribe()
	return w
}

// subscribe registers forwarding handlers on the inner watcher for all
// five streams.
func (w *WrapWatcher) subscribe() {
	w.unsubscribe = append(w.unsubscribe, w.inner.OnCreated(func(e FileChangedEvent) {
		if p, err := w.TryConvertPath(e.FullPath); err == nil {
			w.RaiseCreated(p)
		}
	}))
	w.unsubscribe = append(w.unsubscribe, w.inner.OnDeleted(func(e FileChangedEvent) {
		if p, err := w.TryConvertPath(e.FullPath); err == nil {
			w.RaiseDeleted(p)
		}
	}))
	w.unsubscribe = append(w.unsubscribe, w.inner.OnChanged(func(e FileChangedEvent) {
		if p, err := w.TryConvertPath(e.FullPath); err == nil {
			w.RaiseChanged(p)
		}
	}))
	w.unsubscribe = append(w.unsubscribe, w.inner.OnRenamed(func(e FileRenamedEvent) {
		newPath, err := w.TryConvertPath(e.FullPath)
		if err != nil {
			return
		}
		oldPath, err := w.TryConvertPath(e.OldFullPath)
		if err != nil {
			return
		}
		w.RaiseRenamed(oldPath, newPath)
	}))
	w.unsubscribe = append(w.unsubscribe, w.inner.OnError(func(e ErrorEvent) {
		path := e.Path
		if !path.IsNull() {
			if p, err := w.TryConvertPath(path); err == nil {
				path = p
			} else {
				path = vpath.Null
			}
		}
		w.RaiseError(path, e.Err)
	}))
}

// SetFilter overrides WatcherBase.SetFilter to also push the new pattern
// to the inner watcher.
func (w *WrapWatcher) SetFilter(pattern string) error {
	if err := w.WatcherBase.SetFilter(pattern); err != nil {
		return err
	}
	return w.inner.SetFilter(pattern)
}

// SetNotifyFilters overrides WatcherBase.SetNotifyFilters to also push
// the new bitfield to the inner watcher.
func (w *WrapWatcher) SetNotifyFilters(filters NotifyFilters) {
	w.WatcherBase.SetNotifyFilters(filters)
	w.inner.SetNotifyFilters(filters)
}

// SetEnableRaisingEvents overrides WatcherBase.SetEnableRaisingEvents to
// also push the new value to the inner watcher.
func (w *WrapWatcher) SetEnableRaisingEvents(enabled bool) {
	w.WatcherBase.SetEnableRaisingEvents(enabled)
	w.inner.SetEnableRaisingEvents(enabled)
}

// SetIncludeSubdirectories overrides WatcherBase.SetIncludeSubdirectories
// to also push the new value to the inner watcher.
func (w *WrapWatcher) SetIncludeSubdirectories(recursive bool) {
	w.WatcherBase.SetIncludeSubdirectories(recursive)
	w.inner.SetIncludeSubdirectories(recursive)
}

// Close unsubscribes from the inner watcher, disposes this watcher's own
// dispatcher, and -- if owned -- disposes the inner watcher as well.
func (w *WrapWatcher) Close() error {
	for _, unsub := range w.unsubscribe {
		if unsub != nil {
			unsub()
		}
	}
	err := w.WatcherBase.Close()
	if w.owned {
		if innerErr := w.inner.Close(); innerErr != nil && err == nil {
			err = innerErr
		}
	}
	return err
}

var _ Watcher = (*WrapWatcher)(nil)
