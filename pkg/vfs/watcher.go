package vfs

import (
	"sync"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// ChangedHandler receives Created/Deleted/Changed notifications.
type ChangedHandler func(FileChangedEvent)

// RenamedHandler receives Renamed notifications.
type RenamedHandler func(FileRenamedEvent)

// ErrorHandler receives Error notifications.
type ErrorHandler func(ErrorEvent)

// Unsubscribe removes a previously registered handler.
type Unsubscribe func()

// Watcher is the event source contract: an object attached to a backend
// and a path that produces change notifications on five independent
// streams (Changed, Created, Deleted, Renamed, Error).
type Watcher interface {
	Backend

	// Path returns the root path this watcher was constructed against.
	Path() vpath.Path

	// Filter returns the configured filter pattern string.
	Filter() string
	// SetFilter recompiles the watcher's FilterPattern from pattern.
	SetFilter(pattern string) error

	// NotifyFilters returns the configured notify-filter bitfield.
	NotifyFilters() NotifyFilters
	// SetNotifyFilters updates the notify-filter bitfield.
	SetNotifyFilters(filters NotifyFilters)

	// EnableRaisingEvents reports whether the watcher currently
	// delivers events.
	EnableRaisingEvents() bool
	// SetEnableRaisingEvents toggles event delivery.
	SetEnableRaisingEvents(enabled bool)

	// IncludeSubdirectories reports whether descendants beyond direct
	// children are watched.
	IncludeSubdirectories() bool
	// SetIncludeSubdirectories toggles recursive watching.
	SetIncludeSubdirectories(recursive bool)

	// OnChanged registers a handler for Changed events.
	OnChanged(ChangedHandler) Unsubscribe
	// OnCreated registers a handler for Created events.
	OnCreated(ChangedHandler) Unsubscribe
	// OnDeleted registers a handler for Deleted events.
	OnDeleted(ChangedHandler) Unsubscribe
	// OnRenamed registers a handler for Renamed events.
	OnRenamed(RenamedHandler) Unsubscribe
	// OnError registers a handler for Error events.
	OnError(ErrorHandler) Unsubscribe
}

// WatcherBase implements the shared filtering and delivery policy
// described in the watcher protocol: an event reaches subscribers iff
// EnableRaisingEvents is true, the compiled filter matches the event's
// final path name, and ShouldRaiseEventImpl (if set) agrees. The Error
// stream bypasses filter matching and is gated only by
// EnableRaisingEvents.
//
// WatcherBase is meant to be embedded by concrete watcher
// implementations (native backends, WrapWatcher, AggregateWatcher),
// which supply ShouldRaiseEventImpl to override the default
// IsInDirectory predicate when they need different semantics.
type WatcherBase struct {
	mu sync.Mutex

	identity Identity
	path     vpath.Path

	filterSource  string
	filter        *FilterPattern
	notifyFilters NotifyFilters
	enabled       bool
	recursive     bool

	changed  []ChangedHandler
	created  []ChangedHandler
	deleted  []ChangedHandler
	renamed  []RenamedHandler
	errored  []ErrorHandler

	dispatcher *Dispatcher

	// ShouldRaiseEventImpl is the overridable predicate from the
	// watcher protocol. When nil, the default
	// path.IsInDirectory(w.Path(), w.IncludeSubdirectories()) policy is
	// used.
	ShouldRaiseEventImpl func(path vpath.Path) bool
}

// NewWatcherBase constructs a WatcherBase rooted at path, with the
// default configuration (filter "*.*", notify filters at their default,
// disabled, non-recursive). It owns a freshly started Dispatcher.
func NewWatcherBase(path vpath.Path) *WatcherBase {
	w := &WatcherBase{
		identity:      NewIdentity(),
		path:          path,
		filterSource:  "*.*",
		filter:        wildcardAllPattern,
		notifyFilters: DefaultNotifyFilters,
		dispatcher:    NewDispatcher(),
	}
	return w
}

// Identity implements Backend.
func (w *WatcherBase) Identity() Identity { return w.identity }

// Path implements Watcher.
func (w *WatcherBase) Path() vpath.Path { return w.path }

// Filter implements Watcher.
func (w *WatcherBase) Filter() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filterSource
}

// SetFilter implements Watcher. The filter pattern is recompiled
// immediately so that a bad pattern is reported at set-time.
func (w *WatcherBase) SetFilter(pattern string) error {
	compiled, err := CompileFilter(pattern)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.filterSource = pattern
	w.filter = compiled
	w.mu.Unlock()
	return nil
}

// NotifyFilters implements Watcher.
func (w *WatcherBase) NotifyFilters() NotifyFilters {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notifyFilters
}

// SetNotifyFilters implements Watcher.
func (w *WatcherBase) SetNotifyFilters(filters NotifyFilters) {
	w.mu.Lock()
	w.notifyFilters = filters
	w.mu.Unlock()
}

// EnableRaisingEvents implements Watcher.
func (w *WatcherBase) EnableRaisingEvents() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// SetEnableRaisingEvents implements Watcher.
func (w *WatcherBase) SetEnableRaisingEvents(enabled bool) {
	w.mu.Lock()
	w.enabled = enabled
	w.mu.Unlock()
}

// IncludeSubdirectories implements Watcher.
func (w *WatcherBase) IncludeSubdirectories() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.recursive
}

// SetIncludeSubdirectories implements Watcher.
func (w *WatcherBase) SetIncludeSubdirectories(recursive bool) {
	w.mu.Lock()
	w.recursive = recursive
	w.mu.Unlock()
}

// OnChanged implements Watcher.
func (w *WatcherBase) OnChanged(h ChangedHandler) Unsubscribe {
	return w.subscribeChanged(&w.changed, h)
}

// OnCreated implements Watcher.
func (w *WatcherBase) OnCreated(h ChangedHandler) Unsubscribe {
	return w.subscribeChanged(&w.created, h)
}

// OnDeleted implements Watcher.
func (w *WatcherBase) OnDeleted(h ChangedHandler) Unsubscribe {
	return w.subscribeChanged(&w.deleted, h)
}

// OnRenamed implements Watcher.
func (w *WatcherBase) OnRenamed(h RenamedHandler) Unsubscribe {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.renamed = append(w.renamed, h)
	idx := len(w.renamed) - 1
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(w.renamed) {
			w.renamed[idx] = nil
		}
	}
}

// OnError implements Watcher.
func (w *WatcherBase) OnError(h ErrorHandler) Unsubscribe {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errored = append(w.errored, h)
	idx := len(w.errored) - 1
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(w.errored) {
			w.errored[idx] = nil
		}
	}
}

// subscribeChanged is shared plumbing for OnChanged/OnCreated/OnDeleted,
// which differ only in which slice they append to.
func (w *WatcherBase) subscribeChanged(slot *[]ChangedHandler, h ChangedHandler) Unsubscribe {
	w.mu.Lock()
	defer w.mu.Unlock()
	*slot = append(*slot, h)
	idx := len(*slot) - 1
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(*slot) {
			(*slot)[idx] = nil
		}
	}
}

// shouldRaise applies the watcher protocol's delivery policy to a
// Created/Deleted/Changed candidate.
func (w *WatcherBase) shouldRaise(path vpath.Path) bool {
	w.mu.Lock()
	enabled := w.enabled
	filter := w.filter
	hook := w.ShouldRaiseEventImpl
	root := w.path
	recursive := w.recursive
	w.mu.Unlock()

	if !enabled {
		return false
	}
	if !filter.Match(path.Name()) {
		return false
	}
	if hook != nil {
		return hook(path)
	}
	return path.IsInDirectory(root, recursive)
}

// RaiseCreated applies the delivery policy and, if it passes, dispatches
// a Created FileChangedEvent to every Created subscriber.
func (w *WatcherBase) RaiseCreated(path vpath.Path) {
	w.raiseChanged(ChangeCreated, path, w.snapshotCreated)
}

// RaiseDeleted applies the delivery policy and dispatches a Deleted
// FileChangedEvent.
func (w *WatcherBase) RaiseDeleted(path vpath.Path) {
	w.raiseChanged(ChangeDeleted, path, w.snapshotDeleted)
}

// RaiseChanged applies the delivery policy and dispatches a Changed
// FileChangedEvent.
func (w *WatcherBase) RaiseChanged(path vpath.Path) {
	w.raiseChanged(ChangeChanged, path, w.snapshotChanged)
}

func (w *WatcherBase) raiseChanged(kind ChangeKind, path vpath.Path, snapshot func() []ChangedHandler) {
	if !w.shouldRaise(path) {
		return
	}
	event := FileChangedEvent{Backend: w.identity, Kind: kind, FullPath: path}
	handlers := snapshot()
	w.dispatcher.Enqueue(func() {
		for _, h := range handlers {
			if h == nil {
				continue
			}
			w.guard(func() { h(event) })
		}
	})
}

// RaiseRenamed applies the delivery policy (evaluated against the new
// path) and dispatches a Renamed event carrying both paths.
func (w *WatcherBase) RaiseRenamed(oldPath, newPath vpath.Path) {
	if !w.shouldRaise(newPath) {
		return
	}
	event := FileRenamedEvent{Backend: w.identity, FullPath: newPath, OldFullPath: oldPath}
	handlers := w.snapshotRenamed()
	w.dispatcher.Enqueue(func() {
		for _, h := range handlers {
			if h == nil {
				continue
			}
			w.guard(func() { h(event) })
		}
	})
}

// RaiseError dispatches an Error event, bypassing filter matching;
// delivery is gated only by EnableRaisingEvents.
func (w *WatcherBase) RaiseError(path vpath.Path, err error) {
	w.mu.Lock()
	enabled := w.enabled
	w.mu.Unlock()
	if !enabled {
		return
	}
	event := ErrorEvent{Backend: w.identity, Path: path, Err: err}
	handlers := w.snapshotError()
	w.dispatcher.Enqueue(func() {
		for _, h := range handlers {
			if h == nil {
				continue
			}
			// captureError=false here: a failing Error handler must not
			// recurse back through RaiseError, which would risk an
			// infinite loop between a consistently failing subscriber
			// and the Error stream itself.
			func() {
				defer func() { recover() }()
				h(event)
			}()
		}
	})
}

// guard invokes fn, capturing any panic and routing it back through
// RaiseError (captureError=true path from the dispatcher's perspective).
// This is the error-containment policy from the component design: a
// failing callback never propagates to the dispatcher's worker
// goroutine.
func (w *WatcherBase) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.RaiseError(vpath.Null, panicToError(r))
		}
	}()
	fn()
}

func (w *WatcherBase) snapshotChanged() []ChangedHandler {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ChangedHandler(nil), w.changed...)
}

func (w *WatcherBase) snapshotCreated() []ChangedHandler {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ChangedHandler(nil), w.created...)
}

func (w *WatcherBase) snapshotDeleted() []ChangedHandler {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ChangedHandler(nil), w.deleted...)
}

func (w *WatcherBase) snapshotRenamed() []RenamedHandler {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]RenamedHandler(nil), w.renamed...)
}

func (w *WatcherBase) snapshotError() []ErrorHandler {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ErrorHandler(nil), w.errored...)
}

// Close implements Backend: it disposes the watcher's dispatcher,
// cancelling its worker and discarding any undelivered events.
func (w *WatcherBase) Close() error {
	return w.dispatcher.Close()
}

// panicToError normalizes a recovered panic value into an error.
func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errRecoveredPanic{value: r}
}

type errRecoveredPanic struct {
	value interface{}
}

func (e errRecoveredPanic) Error() string {
	return "recovered panic: " + formatPanicValue(e.value)
}

func formatPanicValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if stringer, ok := v.(interface{ String() string }); ok {
		return stringer.String()
	}
	return "non-error panic value"
}
