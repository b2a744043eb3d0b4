package vfs

import (
	"io"
	"time"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// Impl is the hook surface a concrete backend implements. Base validates
// and normalizes every incoming path before forwarding to these methods,
// so implementations never observe a relative or null path.
type Impl interface {
	DirectoryExistsImpl(path vpath.Path) (bool, error)
	FileExistsImpl(path vpath.Path) (bool, error)
	GetFileLengthImpl(path vpath.Path) (int64, error)
	OpenReadImpl(path vpath.Path) (io.ReadCloser, error)
	GetAttributesImpl(path vpath.Path) (Attributes, error)
	GetCreationTimeImpl(path vpath.Path) (time.Time, error)
	GetLastAccessTimeImpl(path vpath.Path) (time.Time, error)
	GetLastWriteTimeImpl(path vpath.Path) (time.Time, error)
	EnumeratePathsImpl(dir vpath.Path, pattern *FilterPattern, recursive bool, target SearchTarget) (PathSeq, error)
	ConvertPathToInternalImpl(path vpath.Path) (string, error)
	ConvertPathFromInternalImpl(internal string) (vpath.Path, error)

	CreateDirectoryImpl(path vpath.Path) error
	MoveDirectoryImpl(src, dest vpath.Path) error
	DeleteDirectoryImpl(path vpath.Path, recursive bool) error
	CopyFileImpl(src, dest vpath.Path, overwrite bool) error
	ReplaceFileImpl(src, dest, backup vpath.Path, ignoreMetadataErrors bool) error
	MoveFileImpl(src, dest vpath.Path) error
	DeleteFileImpl(path vpath.Path) error
	OpenFileImpl(path vpath.Path, mode OpenMode, access Access, share Share) (io.ReadWriteCloser, error)
	SetAttributesImpl(path vpath.Path, attributes Attributes) error
	SetCreationTimeImpl(path vpath.Path, t time.Time) error
	SetLastAccessTimeImpl(path vpath.Path, t time.Time) error
	SetLastWriteTimeImpl(path vpath.Path, t time.Time) error
	CanWatchImpl(path vpath.Path) bool
	WatchImpl(path vpath.Path) (Watcher, error)

	CloseImpl() error
}

// Base is the filter base described by the component design: every
// FileSystem entry point funnels through it, which asserts absoluteness
// and non-nullness, normalizes the path, and only then delegates to Impl.
// Base never calls an Impl method with a relative or null path -- that
// invariant is what lets every concrete backend skip re-validating its
// own inputs.
type Base struct {
	identity Identity
	impl     Impl
}

// NewBase wraps impl in a Base, assigning it a fresh Identity.
func NewBase(impl Impl) *Base {
	return &Base{identity: NewIdentity(), impl: impl}
}

// Identity implements Backend.
func (b *Base) Identity() Identity { return b.identity }

// Close implements Backend by delegating to the wrapped Impl.
func (b *Base) Close() error { return b.impl.CloseImpl() }

// normalize re-canonicalizes path defensively (canonicalization is
// idempotent, so this is cheap when path is already canonical) and
// asserts it is absolute and non-null.
func normalize(op string, path vpath.Path) (vpath.Path, error) {
	if err := path.AssertAbsolute(); err != nil {
		return vpath.Null, Wrap(op, path, KindInvalidPath, err)
	}
	return vpath.Parse(path.String()), nil
}

func (b *Base) DirectoryExists(path vpath.Path) (bool, error) {
	p, err := normalize("DirectoryExists", path)
	if err != nil {
		return false, err
	}
	return b.impl.DirectoryExistsImpl(p)
}

func (b *Base) FileExists(path vpath.Path) (bool, error) {
	p, err := normalize("FileExists", path)
	if err != nil {
		return false, err
	}
	return b.impl.FileExistsImpl(p)
}

func (b *Base) Exists(path vpath.Path) (bool, error) {
	if dirExists, err := b.DirectoryExists(path); err != nil {
		return false, err
	} else if dirExists {
		return true, nil
	}
	return b.FileExists(path)
}

func (b *Base) GetFileLength(path vpath.Path) (int64, error) {
	p, err := normalize("GetFileLength", path)
	if err != nil {
		return 0, err
	}
	return b.impl.GetFileLengthImpl(p)
}

func (b *Base) OpenRead(path vpath.Path) (io.ReadCloser, error) {
	p, err := normalize("OpenRead", path)
	if err != nil {
		return nil, err
	}
	return b.impl.OpenReadImpl(p)
}

func (b *Base) GetAttributes(path vpath.Path) (Attributes, error) {
	p, err := normalize("GetAttributes", path)
	if err != nil {
		return 0, err
	}
	return b.impl.GetAttributesImpl(p)
}

func (b *Base) GetCreationTime(path vpath.Path) (time.Time, error) {
	p, err := normalize("GetCreationTime", path)
	if err != nil {
		return time.Time{}, err
	}
	return b.impl.GetCreationTimeImpl(p)
}

func (b *Base) GetLastAccessTime(path vpath.Path) (time.Time, error) {
	p, err := normalize("GetLastAccessTime", path)
	if err != nil {
		return time.Time{}, err
	}
	return b.impl.GetLastAccessTimeImpl(p)
}

func (b *Base) GetLastWriteTime(path vpath.Path) (time.Time, error) {
	p, err := normalize("GetLastWriteTime", path)
	if err != nil {
		return time.Time{}, err
	}
	return b.impl.GetLastWriteTimeImpl(p)
}

func (b *Base) EnumeratePaths(dir vpath.Path, pattern *FilterPattern, recursive bool, target SearchTarget) (PathSeq, error) {
	p, err := normalize("EnumeratePaths", dir)
	if err != nil {
		return nil, err
	}
	if pattern == nil {
		pattern = wildcardAllPattern
	}
	return b.impl.EnumeratePathsImpl(p, pattern, recursive, target)
}

func (b *Base) EnumerateFileSystemEntries(dir vpath.Path, pattern *FilterPattern, recursive bool) (PathSeq, error) {
	return b.EnumeratePaths(dir, pattern, recursive, SearchBoth)
}

func (b *Base) ConvertPathToInternal(path vpath.Path) (string, error) {
	p, err := normalize("ConvertPathToInternal", path)
	if err != nil {
		return "", err
	}
	return b.impl.ConvertPathToInternalImpl(p)
}

func (b *Base) ConvertPathFromInternal(internal string) (vpath.Path, error) {
	return b.impl.ConvertPathFromInternalImpl(internal)
}

func (b *Base) CreateDirectory(path vpath.Path) error {
	p, err := normalize("CreateDirectory", path)
	if err != nil {
		return err
	}
	return b.impl.CreateDirectoryImpl(p)
}

func (b *Base) MoveDirectory(src, dest vpath.Path) error {
	s, err := normalize("MoveDirectory", src)
	if err != nil {
		return err
	}
	d, err := normalize("MoveDirectory", dest)
	if err != nil {
		return err
	}
	return b.impl.MoveDirectoryImpl(s, d)
}

func (b *Base) DeleteDirectory(path vpath.Path, recursive bool) error {
	p, err := normalize("DeleteDirectory", path)
	if err != nil {
		return err
	}
	return b.impl.DeleteDirectoryImpl(p, recursive)
}

func (b *Base) CopyFile(src, dest vpath.Path, overwrite bool) error {
	s, err := normalize("CopyFile", src)
	if err != nil {
		return err
	}
	d, err := normalize("CopyFile", dest)
	if err != nil {
		return err
	}
	return b.impl.CopyFileImpl(s, d, overwrite)
}

func (b *Base) ReplaceFile(src, dest vpath.Path, backup vpath.Path, ignoreMetadataErrors bool) error {
	s, err := normalize("ReplaceFile", src)
	if err != nil {
		return err
	}
	d, err := normalize("ReplaceFile", dest)
	if err != nil {
		return err
	}
	if !backup.IsNull() {
		backup, err = normalize("ReplaceFile", backup)
		if err != nil {
			return err
		}
	}
	return b.impl.ReplaceFileImpl(s, d, backup, ignoreMetadataErrors)
}

func (b *Base) MoveFile(src, dest vpath.Path) error {
	s, err := normalize("MoveFile", src)
	if err != nil {
		return err
	}
	d, err := normalize("MoveFile", dest)
	if err != nil {
		return err
	}
	return b.impl.MoveFileImpl(s, d)
}

func (b *Base) DeleteFile(path vpath.Path) error {
	p, err := normalize("DeleteFile", path)
	if err != nil {
		return err
	}
	return b.impl.DeleteFileImpl(p)
}

func (b *Base) OpenFile(path vpath.Path, mode OpenMode, access Access, share Share) (io.ReadWriteCloser, error) {
	p, err := normalize("OpenFile", path)
	if err != nil {
		return nil, err
	}
	return b.impl.OpenFileImpl(p, mode, access, share)
}

func (b *Base) SetAttributes(path vpath.Path, attributes Attributes) error {
	p, err := normalize("SetAttributes", path)
	if err != nil {
		return err
	}
	return b.impl.SetAttributesImpl(p, attributes)
}

func (b *Base) SetCreationTime(path vpath.Path, t time.Time) error {
	p, err := normalize("SetCreationTime", path)
	if err != nil {
		return err
	}
	return b.impl.SetCreationTimeImpl(p, t)
}

func (b *Base) SetLastAccessTime(path vpath.Path, t time.Time) error {
	p, err := normalize("SetLastAccessTime", path)
	if err != nil {
		return err
	}
	return b.impl.SetLastAccessTimeImpl(p, t)
}

func (b *Base) SetLastWriteTime(path vpath.Path, t time.Time) error {
	p, err := normalize("SetLastWriteTime", path)
	if err != nil {
		return err
	}
	return b.impl.SetLastWriteTimeImpl(p, t)
}

func (b *Base) CanWatch(path vpath.Path) bool {
	p, err := normalize("CanWatch", path)
	if err != nil {
		return false
	}
	return b.impl.CanWatchImpl(p)
}

func (b *Base) Watch(path vpath.Path) (Watcher, error) {
	p, err := normalize("Watch", path)
	if err != nil {
		return nil, err
	}
	return b.impl.WatchImpl(p)
}

// Ensure Base satisfies the full FileSystem contract.
var _ FileSystem = (*Base)(nil)
