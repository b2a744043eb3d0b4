package vfs

import (
	"io"
	"time"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// SearchTarget selects which kind of entries EnumeratePaths should
// return.
type SearchTarget int

const (
	SearchFiles SearchTarget = iota
	SearchDirectories
	SearchBoth
)

// PathSeq is a lazy sequence of absolute paths, modeled as a pull-style
// iterator so that composition layers (Sub, ComposeBase) can translate
// elements one at a time without materializing the whole enumeration.
// Next returns false once the sequence is exhausted or failed; Err
// reports any enumeration failure after Next returns false.
type PathSeq interface {
	// Next advances the sequence and reports whether a value is
	// available via Path.
	Next() bool
	// Path returns the most recent value produced by Next. It is only
	// meaningful after a call to Next that returned true.
	Path() vpath.Path
	// Err returns any error that terminated the sequence early. It must
	// only be consulted after Next returns false.
	Err() error
	// Close releases any resources backing the sequence (e.g. an open
	// directory handle). It is always safe to call, including after the
	// sequence has been fully drained.
	Close() error
}

// Reader is the capability contract every read-only filesystem backend
// must satisfy.
type Reader interface {
	// DirectoryExists reports whether path names an existing directory.
	DirectoryExists(path vpath.Path) (bool, error)
	// FileExists reports whether path names an existing file.
	FileExists(path vpath.Path) (bool, error)
	// Exists reports whether path names a file or directory.
	Exists(path vpath.Path) (bool, error)
	// GetFileLength returns the length, in bytes, of the file at path.
	GetFileLength(path vpath.Path) (int64, error)
	// OpenRead opens the file at path for reading.
	OpenRead(path vpath.Path) (io.ReadCloser, error)
	// GetAttributes returns the attribute bitfield for path.
	GetAttributes(path vpath.Path) (Attributes, error)
	// GetCreationTime returns the creation timestamp for path, or
	// ZeroTime if the backend has none to offer.
	GetCreationTime(path vpath.Path) (time.Time, error)
	// GetLastAccessTime returns the last-access timestamp for path, or
	// ZeroTime if the backend has none to offer.
	GetLastAccessTime(path vpath.Path) (time.Time, error)
	// GetLastWriteTime returns the last-write timestamp for path, or
	// ZeroTime if the backend has none to offer.
	GetLastWriteTime(path vpath.Path) (time.Time, error)
	// EnumeratePaths lazily lists the contents of dir. pattern filters
	// each candidate's final name; recursive controls whether
	// subdirectories are descended into; target selects files,
	// directories, or both.
	EnumeratePaths(dir vpath.Path, pattern *FilterPattern, recursive bool, target SearchTarget) (PathSeq, error)
	// EnumerateFileSystemEntries enumerates both files and directories
	// under dir, equivalent to EnumeratePaths with target SearchBoth.
	EnumerateFileSystemEntries(dir vpath.Path, pattern *FilterPattern, recursive bool) (PathSeq, error)
	// ConvertPathToInternal converts an absolute Path into the backend's
	// native path representation.
	ConvertPathToInternal(path vpath.Path) (string, error)
	// ConvertPathFromInternal converts a backend-native path string into
	// an absolute Path.
	ConvertPathFromInternal(internal string) (vpath.Path, error)
}
