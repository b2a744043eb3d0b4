package vfs

import (
	"io"
	"time"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// Backend is implemented by every filesystem handle, read-only or
// read/write. It carries identity (for aggregate watcher bookkeeping)
// and disposal.
type Backend interface {
	// Identity returns this backend's unique identity.
	Identity() Identity
	// Close disposes the backend. Disposing a wrapping backend may or
	// may not dispose its delegate, depending on how it was
	// constructed (see the owned flag on composition constructors).
	// Close must be safe to call more than once.
	Close() error
}

// FileSystem is the read/write capability contract. It extends Reader
// with mutation and watch support. Every mutator rejects relative or
// null paths with a KindInvalidPath error before touching the backend.
type FileSystem interface {
	Backend
	Reader

	// CreateDirectory creates path and any missing ancestors. It is
	// idempotent: creating an already-existing directory succeeds.
	CreateDirectory(path vpath.Path) error
	// MoveDirectory moves the directory at src to dest. It fails with
	// KindDestinationExists if dest already exists.
	MoveDirectory(src, dest vpath.Path) error
	// DeleteDirectory removes the directory at path. If recursive is
	// false and the directory is non-empty, it fails with
	// KindDirectoryNotEmpty.
	DeleteDirectory(path vpath.Path, recursive bool) error

	// CopyFile copies src to dest. If overwrite is false and dest
	// already exists, it fails with KindDestinationExists.
	CopyFile(src, dest vpath.Path, overwrite bool) error
	// ReplaceFile implements Move(dest->backup if backup is non-null) +
	// Move(src->dest), with best-effort metadata preservation.
	// ignoreMetadataErrors suppresses failures from that best-effort
	// step.
	ReplaceFile(src, dest vpath.Path, backup vpath.Path, ignoreMetadataErrors bool) error
	// MoveFile moves src to dest. It fails with KindDestinationExists if
	// dest already exists as a file or directory.
	MoveFile(src, dest vpath.Path) error
	// DeleteFile removes the file at path.
	DeleteFile(path vpath.Path) error
	// OpenFile opens the file at path according to mode/access/share.
	OpenFile(path vpath.Path, mode OpenMode, access Access, share Share) (io.ReadWriteCloser, error)

	// SetAttributes sets the attribute bitfield for path.
	SetAttributes(path vpath.Path, attributes Attributes) error
	// SetCreationTime sets the creation timestamp for path.
	SetCreationTime(path vpath.Path, t time.Time) error
	// SetLastAccessTime sets the last-access timestamp for path.
	SetLastAccessTime(path vpath.Path, t time.Time) error
	// SetLastWriteTime sets the last-write timestamp for path.
	SetLastWriteTime(path vpath.Path, t time.Time) error

	// CanWatch reports whether path can be watched by this backend.
	CanWatch(path vpath.Path) bool
	// Watch returns a Watcher rooted at path. Callers must dispose the
	// returned Watcher when finished.
	Watch(path vpath.Path) (Watcher, error)
}
