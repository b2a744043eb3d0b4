package vfs

import "github.com/layerfs/layerfs/pkg/vpath"

// ChangeKind enumerates the kinds of change a watcher can report.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeDeleted
	ChangeChanged
	ChangeRenamed
)

// String implements fmt.Stringer for ChangeKind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "Created"
	case ChangeDeleted:
		return "Deleted"
	case ChangeChanged:
		return "Changed"
	case ChangeRenamed:
		return "Renamed"
	default:
		return "Unknown"
	}
}

// FileChangedEvent is an immutable record describing a single
// Created/Deleted/Changed notification.
type FileChangedEvent struct {
	// Backend identifies the watcher's originating backend.
	Backend Identity
	// Kind is the kind of change observed.
	Kind ChangeKind
	// FullPath is the absolute path affected.
	FullPath vpath.Path
}

// Name returns the final path segment of FullPath.
func (e FileChangedEvent) Name() string {
	return e.FullPath.Name()
}

// FileRenamedEvent is an immutable record describing a rename, carrying
// both the new and old absolute paths.
type FileRenamedEvent struct {
	// Backend identifies the watcher's originating backend.
	Backend Identity
	// FullPath is the new absolute path.
	FullPath vpath.Path
	// OldFullPath is the absolute path the entry was renamed from.
	OldFullPath vpath.Path
}

// Name returns the final path segment of FullPath.
func (e FileRenamedEvent) Name() string {
	return e.FullPath.Name()
}

// OldName returns the final path segment of OldFullPath.
func (e FileRenamedEvent) OldName() string {
	return e.OldFullPath.Name()
}

// ErrorEvent carries an error observed by a watcher. Path is optional
// (the zero Path) when the error isn't attributable to a specific entry.
type ErrorEvent struct {
	// Backend identifies the watcher's originating backend.
	Backend Identity
	// Path is the affected path, if any.
	Path vpath.Path
	// Err is the observed error.
	Err error
}
