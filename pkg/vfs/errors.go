package vfs

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// Kind is a canonical filesystem failure kind. Backends map their native
// errors onto one of these values so that callers can branch on failure
// category without knowing which backend produced it.
type Kind int

const (
	// KindUnknown is the zero value and should never be produced
	// deliberately; its presence indicates a backend failed to classify
	// an error.
	KindUnknown Kind = iota
	// KindNotFound indicates the file or directory does not exist.
	KindNotFound
	// KindAlreadyExists indicates a creation conflicted with an existing
	// entry.
	KindAlreadyExists
	// KindDestinationExists indicates a move or copy conflicted with an
	// existing destination.
	KindDestinationExists
	// KindIsDirectory indicates a file operation was attempted against a
	// directory.
	KindIsDirectory
	// KindNotADirectory indicates a directory operation was attempted
	// against a file.
	KindNotADirectory
	// KindDirectoryNotEmpty indicates a non-recursive delete was
	// attempted against a populated directory.
	KindDirectoryNotEmpty
	// KindAccessDenied indicates the backend refused the operation.
	KindAccessDenied
	// KindInvalidPath indicates a relative or null path was supplied
	// where an absolute, non-null path is required, or that the path
	// contains characters the backend forbids.
	KindInvalidPath
	// KindInvalidFilter indicates a filter pattern contained a directory
	// separator.
	KindInvalidFilter
	// KindInvariantViolation indicates a delegate backend returned a
	// path outside the root it was declared to own; this is an internal
	// bug indicator, never a user error.
	KindInvariantViolation
	// KindIOError is a generic backend failure that does not fit any
	// other kind.
	KindIOError
	// KindDisposed indicates an operation was attempted on a disposed
	// backend or watcher.
	KindDisposed
)

// String implements fmt.Stringer for Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindDestinationExists:
		return "destination exists"
	case KindIsDirectory:
		return "is a directory"
	case KindNotADirectory:
		return "not a directory"
	case KindDirectoryNotEmpty:
		return "directory not empty"
	case KindAccessDenied:
		return "access denied"
	case KindInvalidPath:
		return "invalid path"
	case KindInvalidFilter:
		return "invalid filter"
	case KindInvariantViolation:
		return "invariant violation"
	case KindIOError:
		return "I/O error"
	case KindDisposed:
		return "disposed"
	default:
		return "unknown error"
	}
}

// PathError records a failing filesystem operation, in the spirit of the
// standard library's os.PathError: an operation name, the path it
// targeted, a canonical Kind, and an optional wrapped cause.
type PathError struct {
	// Op is the name of the failing operation (e.g. "OpenRead").
	Op string
	// Path is the path that was being operated on, if any.
	Path vpath.Path
	// Kind classifies the failure.
	Kind Kind
	// Err is the underlying cause, if the backend has one to offer.
	Err error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if e.Path.IsNull() {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path.String(), e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path.String(), e.Kind)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *PathError) Unwrap() error {
	return e.Err
}

// errorWithKind is the common constructor used by package functions: it
// wraps cause with pkg/errors to retain a stack-ready cause chain and
// attaches the canonical Kind.
func errorWithKind(op string, path vpath.Path, kind Kind, cause error) *PathError {
	var wrapped error
	if cause != nil {
		wrapped = pkgerrors.Wrapf(cause, "%s failed", op)
	}
	return &PathError{Op: op, Path: path, Kind: kind, Err: wrapped}
}

// KindOf extracts the canonical Kind from err, if it (or something it
// wraps) is a *PathError. It returns KindUnknown otherwise.
func KindOf(err error) Kind {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given Kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

var (
	// ErrNotFound is a sentinel for matching KindNotFound failures
	// with errors.Is.
	ErrNotFound = errorSentinel(KindNotFound)
	// ErrAlreadyExists corresponds to KindAlreadyExists.
	ErrAlreadyExists = errorSentinel(KindAlreadyExists)
	// ErrDestinationExists corresponds to KindDestinationExists.
	ErrDestinationExists = errorSentinel(KindDestinationExists)
	// ErrIsDirectory corresponds to KindIsDirectory.
	ErrIsDirectory = errorSentinel(KindIsDirectory)
	// ErrNotADirectory corresponds to KindNotADirectory.
	ErrNotADirectory = errorSentinel(KindNotADirectory)
	// ErrDirectoryNotEmpty corresponds to KindDirectoryNotEmpty.
	ErrDirectoryNotEmpty = errorSentinel(KindDirectoryNotEmpty)
	// ErrAccessDenied corresponds to KindAccessDenied.
	ErrAccessDenied = errorSentinel(KindAccessDenied)
	// ErrInvalidPath corresponds to KindInvalidPath.
	ErrInvalidPath = errorSentinel(KindInvalidPath)
	// ErrInvalidFilter corresponds to KindInvalidFilter.
	ErrInvalidFilter = errorSentinel(KindInvalidFilter)
	// ErrInvariantViolation corresponds to KindInvariantViolation.
	ErrInvariantViolation = errorSentinel(KindInvariantViolation)
	// ErrDisposed corresponds to KindDisposed.
	ErrDisposed = errorSentinel(KindDisposed)
)

// errorSentinel builds a *PathError with no operation or path attached,
// suitable for use with errors.Is against a freshly constructed error of
// the same Kind (via New).
func errorSentinel(kind Kind) *PathError {
	return &PathError{Kind: kind}
}

// New constructs a *PathError for op/path/kind without a wrapped cause.
func New(op string, path vpath.Path, kind Kind) *PathError {
	return errorWithKind(op, path, kind, nil)
}

// Wrap constructs a *PathError for op/path/kind, wrapping cause.
func Wrap(op string, path vpath.Path, kind Kind, cause error) *PathError {
	return errorWithKind(op, path, kind, cause)
}

// Is implements error matching for PathError so that errors.Is(err,
// vfs.ErrNotFound) works regardless of Op/Path/wrapped cause, matching
// only on Kind.
func (e *PathError) Is(target error) bool {
	other, ok := target.(*PathError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
