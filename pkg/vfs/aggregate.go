package vfs

import (
	"sync"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// aggregateChild tracks one watcher registered with an AggregateWatcher:
// the watcher itself, its forwarding subscriptions, and whether removing
// it should also dispose it.
type aggregateChild struct {
	watcher     Watcher
	owned       bool
	unsubscribe []Unsubscribe
}

// AggregateWatcher fans events from a mutable set of child watchers into
// a single subscriber surface. Adding a child applies the aggregate's
// current configuration to it; setting a configuration field on the
// aggregate propagates it to every child under lock before updating the
// cached local value. The child list is guarded by a mutex; mutations
// and configuration propagation always acquire it, and it is never held
// while invoking a child's methods that could re-enter the aggregate
// (event forwarding itself happens through the dispatcher, off this
// lock).
type AggregateWatcher struct {
	*WatcherBase

	mu       sync.Mutex
	children map[Identity]*aggregateChild
}

// NewAggregateWatcher constructs an empty AggregateWatcher rooted at
// path.
func NewAggregateWatcher(path vpath.Path) *AggregateWatcher {
	return &AggregateWatcher{
		WatcherBase: NewWatcherBase(path),
		children:    make(map[Identity]*aggregateChild),
	}
}

// Add registers child with the aggregate, applying the aggregate's
// current filter/notify/enabled/recursive configuration to it and
// wiring forwarders for all five event streams. If owned is true,
// removing or disposing the aggregate also disposes child.
func (a *AggregateWatcher) Add(child Watcher, owned bool) error {
	if err := child.SetFilter(a.WatcherBase.Filter()); err != nil {
		return err
	}
	child.SetNotifyFilters(a.WatcherBase.NotifyFilters())
	child.SetEnableRaisingEvents(a.WatcherBase.EnableRaisingEvents())
	child.SetIncludeSubdirectories(a.WatcherBase.IncludeSubdirectories())

	entry := &aggregateChild{watcher: child, owned: owned}
	entry.unsubscribe = append(entry.unsubscribe, child.OnCreated(func(e FileChangedEvent) {
		a.RaiseCreated(e.FullPath)
	}))
	entry.unsubscribe = append(entry.unsubscribe, child.OnDeleted(func(e FileChangedEvent) {
		a.RaiseDeleted(e.FullPath)
	}))
	entry.unsubscribe = append(entry.unsubscribe, child.OnChanged(func(e FileChangedEvent) {
		a.RaiseChanged(e.FullPath)
	}))
	entry.unsubscribe = append(entry.unsubscribe, child.OnRenamed(func(e FileRenamedEvent) {
		a.RaiseRenamed(e.OldFullPath, e.FullPath)
	}))
	entry.unsubscribe = append(entry.unsubscribe, child.OnError(func(e ErrorEvent) {
		a.RaiseError(e.Path, e.Err)
	}))

	a.mu.Lock()
	a.children[child.Identity()] = entry
	a.mu.Unlock()
	return nil
}

// Remove removes the child backend with the given identity, disposing it
// if it was added with owned=true. It is a no-op if no such child is
// registered.
func (a *AggregateWatcher) Remove(identity Identity) error {
	a.mu.Lock()
	entry, ok := a.children[identity]
	if ok {
		delete(a.children, identity)
	}
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return detachChild(entry)
}

// RemoveAll removes every registered child, optionally excluding one
// identity, disposing each removed child that was added with
// owned=true.
func (a *AggregateWatcher) RemoveAll(excluding *Identity) error {
	a.mu.Lock()
	var removed []*aggregateChild
	for id, entry := range a.children {
		if excluding != nil && id == *excluding {
			continue
		}
		removed = append(removed, entry)
		delete(a.children, id)
	}
	a.mu.Unlock()

	var firstErr error
	for _, entry := range removed {
		if err := detachChild(entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// detachChild unsubscribes entry's forwarders and, if owned, disposes
// its watcher.
func detachChild(entry *aggregateChild) error {
	for _, unsub := range entry.unsubscribe {
		if unsub != nil {
			unsub()
		}
	}
	if entry.owned {
		return entry.watcher.Close()
	}
	return nil
}

// SetFilter propagates pattern to every child before updating the
// aggregate's own cached filter. It is a no-op if pattern is unchanged
// from the current value.
func (a *AggregateWatcher) SetFilter(pattern string) error {
	if pattern == a.WatcherBase.Filter() {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, entry := range a.children {
		if err := entry.watcher.SetFilter(pattern); err != nil {
			return err
		}
	}
	return a.WatcherBase.SetFilter(pattern)
}

// SetNotifyFilters propagates filters to every child before updating the
// aggregate's own cached value. It is a no-op if filters is unchanged.
func (a *AggregateWatcher) SetNotifyFilters(filters NotifyFilters) {
	if filters == a.WatcherBase.NotifyFilters() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, entry := range a.children {
		entry.watcher.SetNotifyFilters(filters)
	}
	a.WatcherBase.SetNotifyFilters(filters)
}

// SetEnableRaisingEvents propagates enabled to every child before
// updating the aggregate's own cached value. It is a no-op if enabled is
// unchanged.
func (a *AggregateWatcher) SetEnableRaisingEvents(enabled bool) {
	if enabled == a.WatcherBase.EnableRaisingEvents() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, entry := range a.children {
		entry.watcher.SetEnableRaisingEvents(enabled)
	}
	a.WatcherBase.SetEnableRaisingEvents(enabled)
}

// SetIncludeSubdirectories propagates recursive to every child before
// updating the aggregate's own cached value. It is a no-op if recursive
// is unchanged.
func (a *AggregateWatcher) SetIncludeSubdirectories(recursive bool) {
	if recursive == a.WatcherBase.IncludeSubdirectories() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, entry := range a.children {
		entry.watcher.SetIncludeSubdirectories(recursive)
	}
	a.WatcherBase.SetIncludeSubdirectories(recursive)
}

// Close removes every child from the aggregate under lock, then, after
// releasing the lock, unsubscribes each one and disposes those added
// with owned=true; children are not disposed while the lock is held.
// Finally it disposes the aggregate's own dispatcher.
func (a *AggregateWatcher) Close() error {
	err := a.RemoveAll(nil)
	if baseErr := a.WatcherBase.Close(); baseErr != nil && err == nil {
		err = baseErr
	}
	return err
}

var _ Watcher = (*AggregateWatcher)(nil)
