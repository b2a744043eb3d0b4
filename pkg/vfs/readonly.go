package vfs

import (
	"io"
	"time"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// identityTranslator is a PathTranslator that performs no translation;
// it is used by the read-only overlay, which changes capability but not
// namespace.
type identityTranslator struct{}

func (identityTranslator) ToDelegate(path vpath.Path) (vpath.Path, error)   { return path, nil }
func (identityTranslator) FromDelegate(path vpath.Path) (vpath.Path, error) { return path, nil }

// readOnlyImpl embeds ComposeBase (for the read surface and watch
// forwarding) and shadows every mutator with one that fails with
// KindAccessDenied, implementing the "read-only overlay" composition
// topology.
type readOnlyImpl struct {
	*ComposeBase
}

func (r *readOnlyImpl) CreateDirectoryImpl(path vpath.Path) error {
	return New("CreateDirectory", path, KindAccessDenied)
}

func (r *readOnlyImpl) MoveDirectoryImpl(src, _ vpath.Path) error {
	return New("MoveDirectory", src, KindAccessDenied)
}

func (r *readOnlyImpl) DeleteDirectoryImpl(path vpath.Path, _ bool) error {
	return New("DeleteDirectory", path, KindAccessDenied)
}

func (r *readOnlyImpl) CopyFileImpl(src, _ vpath.Path, _ bool) error {
	return New("CopyFile", src, KindAccessDenied)
}

func (r *readOnlyImpl) ReplaceFileImpl(src, _, _ vpath.Path, _ bool) error {
	return New("ReplaceFile", src, KindAccessDenied)
}

func (r *readOnlyImpl) MoveFileImpl(src, _ vpath.Path) error {
	return New("MoveFile", src, KindAccessDenied)
}

func (r *readOnlyImpl) DeleteFileImpl(path vpath.Path) error {
	return New("DeleteFile", path, KindAccessDenied)
}

func (r *readOnlyImpl) OpenFileImpl(path vpath.Path, mode OpenMode, access Access, _ Share) (io.ReadWriteCloser, error) {
	if access&AccessWrite != 0 || mode != OpenExisting {
		return nil, New("OpenFile", path, KindAccessDenied)
	}
	// A read-only open of an existing file is equivalent to OpenRead,
	// just surfaced through the read/write protocol's richer signature.
	reader, err := r.ComposeBase.Delegate().OpenRead(path)
	if err != nil {
		return nil, err
	}
	return readOnlyFileHandle{ReadCloser: reader}, nil
}

func (r *readOnlyImpl) SetAttributesImpl(path vpath.Path, _ Attributes) error {
	return New("SetAttributes", path, KindAccessDenied)
}

func (r *readOnlyImpl) SetCreationTimeImpl(path vpath.Path, _ time.Time) error {
	return New("SetCreationTime", path, KindAccessDenied)
}

func (r *readOnlyImpl) SetLastAccessTimeImpl(path vpath.Path, _ time.Time) error {
	return New("SetLastAccessTime", path, KindAccessDenied)
}

func (r *readOnlyImpl) SetLastWriteTimeImpl(path vpath.Path, _ time.Time) error {
	return New("SetLastWriteTime", path, KindAccessDenied)
}

// readOnlyFileHandle adapts an io.ReadCloser to io.ReadWriteCloser so
// that OpenFileImpl can satisfy the Impl signature; Write always fails.
type readOnlyFileHandle struct {
	io.ReadCloser
}

func (readOnlyFileHandle) Write(_ []byte) (int, error) {
	return 0, New("Write", vpath.Null, KindAccessDenied)
}

// NewReadOnly wraps delegate in a filesystem that exposes its full read
// surface (including watching) but rejects every mutator with
// KindAccessDenied. If owned is true, closing the overlay also closes
// delegate.
func NewReadOnly(delegate FileSystem, owned bool) FileSystem {
	compose := NewComposeBase(delegate, owned, identityTranslator{})
	impl := &readOnlyImpl{ComposeBase: compose}
	return NewBase(impl)
}
