package vfs

import (
	"io"
	"time"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// PathTranslator converts paths between a composed backend's namespace
// and its delegate's namespace. ToDelegate maps a caller-facing path
// into the delegate's; FromDelegate maps a path the delegate produced
// back into the caller-facing namespace (and may fail, e.g. when the
// delegate's path falls outside a sub-view's root).
type PathTranslator interface {
	ToDelegate(path vpath.Path) (vpath.Path, error)
	FromDelegate(path vpath.Path) (vpath.Path, error)
}

// ComposeBase is a generic decorator: it implements Impl entirely in
// terms of a delegate FileSystem and a PathTranslator, translating every
// path on the way in and every returned path on the way out. Concrete
// composition backends (Sub, ReadOnly) supply the PathTranslator and
// wrap ComposeBase in a Base to get the validating public surface.
type ComposeBase struct {
	delegate   FileSystem
	owned      bool
	translator PathTranslator
}

// NewComposeBase constructs a ComposeBase. If owned is true, Close will
// also close delegate; otherwise delegate is assumed to outlive this
// wrapper and is left untouched.
func NewComposeBase(delegate FileSystem, owned bool, translator PathTranslator) *ComposeBase {
	return &ComposeBase{delegate: delegate, owned: owned, translator: translator}
}

// Delegate returns the wrapped backend.
func (c *ComposeBase) Delegate() FileSystem { return c.delegate }

func (c *ComposeBase) toDelegate(path vpath.Path) (vpath.Path, error) {
	return c.translator.ToDelegate(path)
}

func (c *ComposeBase) fromDelegate(path vpath.Path) (vpath.Path, error) {
	return c.translator.FromDelegate(path)
}

func (c *ComposeBase) DirectoryExistsImpl(path vpath.Path) (bool, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return false, err
	}
	return c.delegate.DirectoryExists(dp)
}

func (c *ComposeBase) FileExistsImpl(path vpath.Path) (bool, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return false, err
	}
	return c.delegate.FileExists(dp)
}

func (c *ComposeBase) GetFileLengthImpl(path vpath.Path) (int64, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return 0, err
	}
	return c.delegate.GetFileLength(dp)
}

func (c *ComposeBase) OpenReadImpl(path vpath.Path) (io.ReadCloser, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return nil, err
	}
	return c.delegate.OpenRead(dp)
}

func (c *ComposeBase) GetAttributesImpl(path vpath.Path) (Attributes, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return 0, err
	}
	return c.delegate.GetAttributes(dp)
}

func (c *ComposeBase) GetCreationTimeImpl(path vpath.Path) (time.Time, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return time.Time{}, err
	}
	return c.delegate.GetCreationTime(dp)
}

func (c *ComposeBase) GetLastAccessTimeImpl(path vpath.Path) (time.Time, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return time.Time{}, err
	}
	return c.delegate.GetLastAccessTime(dp)
}

func (c *ComposeBase) GetLastWriteTimeImpl(path vpath.Path) (time.Time, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return time.Time{}, err
	}
	return c.delegate.GetLastWriteTime(dp)
}

// translatingPathSeq lazily maps each element of an inner PathSeq through
// fromDelegate, so large enumerations never materialize in memory.
type translatingPathSeq struct {
	inner        PathSeq
	fromDelegate func(vpath.Path) (vpath.Path, error)
	current      vpath.Path
	err          error
}

func (s *translatingPathSeq) Next() bool {
	if s.err != nil {
		return false
	}
	for s.inner.Next() {
		translated, err := s.fromDelegate(s.inner.Path())
		if err != nil {
			s.err = err
			return false
		}
		s.current = translated
		return true
	}
	return false
}

func (s *translatingPathSeq) Path() vpath.Path { return s.current }

func (s *translatingPathSeq) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.inner.Err()
}

func (s *translatingPathSeq) Close() error { return s.inner.Close() }

func (c *ComposeBase) EnumeratePathsImpl(dir vpath.Path, pattern *FilterPattern, recursive bool, target SearchTarget) (PathSeq, error) {
	dp, err := c.toDelegate(dir)
	if err != nil {
		return nil, err
	}
	inner, err := c.delegate.EnumeratePaths(dp, pattern, recursive, target)
	if err != nil {
		return nil, err
	}
	return &translatingPathSeq{inner: inner, fromDelegate: c.fromDelegate}, nil
}

func (c *ComposeBase) ConvertPathToInternalImpl(path vpath.Path) (string, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return "", err
	}
	return c.delegate.ConvertPathToInternal(dp)
}

func (c *ComposeBase) ConvertPathFromInternalImpl(internal string) (vpath.Path, error) {
	dp, err := c.delegate.ConvertPathFromInternal(internal)
	if err != nil {
		return vpath.Null, err
	}
	return c.fromDelegate(dp)
}

func (c *ComposeBase) CreateDirectoryImpl(path vpath.Path) error {
	dp, err := c.toDelegate(path)
	if err != nil {
		return err
	}
	return c.delegate.CreateDirectory(dp)
}

func (c *ComposeBase) MoveDirectoryImpl(src, dest vpath.Path) error {
	ds, de, err := c.toDelegatePair(src, dest)
	if err != nil {
		return err
	}
	return c.delegate.MoveDirectory(ds, de)
}

func (c *ComposeBase) DeleteDirectoryImpl(path vpath.Path, recursive bool) error {
	dp, err := c.toDelegate(path)
	if err != nil {
		return err
	}
	return c.delegate.DeleteDirectory(dp, recursive)
}

func (c *ComposeBase) CopyFileImpl(src, dest vpath.Path, overwrite bool) error {
	ds, de, err := c.toDelegatePair(src, dest)
	if err != nil {
		return err
	}
	return c.delegate.CopyFile(ds, de, overwrite)
}

func (c *ComposeBase) ReplaceFileImpl(src, dest, backup vpath.Path, ignoreMetadataErrors bool) error {
	ds, de, err := c.toDelegatePair(src, dest)
	if err != nil {
		return err
	}
	var db vpath.Path
	if !backup.IsNull() {
		db, err = c.toDelegate(backup)
		if err != nil {
			return err
		}
	}
	return c.delegate.ReplaceFile(ds, de, db, ignoreMetadataErrors)
}

func (c *ComposeBase) MoveFileImpl(src, dest vpath.Path) error {
	ds, de, err := c.toDelegatePair(src, dest)
	if err != nil {
		return err
	}
	return c.delegate.MoveFile(ds, de)
}

func (c *ComposeBase) DeleteFileImpl(path vpath.Path) error {
	dp, err := c.toDelegate(path)
	if err != nil {
		return err
	}
	return c.delegate.DeleteFile(dp)
}

func (c *ComposeBase) OpenFileImpl(path vpath.Path, mode OpenMode, access Access, share Share) (io.ReadWriteCloser, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return nil, err
	}
	return c.delegate.OpenFile(dp, mode, access, share)
}

func (c *ComposeBase) SetAttributesImpl(path vpath.Path, attributes Attributes) error {
	dp, err := c.toDelegate(path)
	if err != nil {
		return err
	}
	return c.delegate.SetAttributes(dp, attributes)
}

func (c *ComposeBase) SetCreationTimeImpl(path vpath.Path, t time.Time) error {
	dp, err := c.toDelegate(path)
	if err != nil {
		return err
	}
	return c.delegate.SetCreationTime(dp, t)
}

func (c *ComposeBase) SetLastAccessTimeImpl(path vpath.Path, t time.Time) error {
	dp, err := c.toDelegate(path)
	if err != nil {
		return err
	}
	return c.delegate.SetLastAccessTime(dp, t)
}

func (c *ComposeBase) SetLastWriteTimeImpl(path vpath.Path, t time.Time) error {
	dp, err := c.toDelegate(path)
	if err != nil {
		return err
	}
	return c.delegate.SetLastWriteTime(dp, t)
}

func (c *ComposeBase) CanWatchImpl(path vpath.Path) bool {
	dp, err := c.toDelegate(path)
	if err != nil {
		return false
	}
	return c.delegate.CanWatch(dp)
}

func (c *ComposeBase) WatchImpl(path vpath.Path) (Watcher, error) {
	dp, err := c.toDelegate(path)
	if err != nil {
		return nil, err
	}
	inner, err := c.delegate.Watch(dp)
	if err != nil {
		return nil, err
	}
	return NewWrapWatcher(path, inner, true, c.translator.FromDelegate), nil
}

func (c *ComposeBase) CloseImpl() error {
	if c.owned {
		return c.delegate.Close()
	}
	return nil
}

// toDelegatePair translates two paths, short-circuiting on the first
// failure.
func (c *ComposeBase) toDelegatePair(a, b vpath.Path) (vpath.Path, vpath.Path, error) {
	da, err := c.toDelegate(a)
	if err != nil {
		return vpath.Null, vpath.Null, err
	}
	db, err := c.toDelegate(b)
	if err != nil {
		return vpath.Null, vpath.Null, err
	}
	return da, db, nil
}
