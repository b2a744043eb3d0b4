package vfs

import (
	"io"
	"strings"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// Entry is a thin path+backend handle, the common base of FileEntry and
// DirectoryEntry. It holds a non-owning reference to its backend: an
// Entry never disposes the filesystem it was obtained from.
type Entry struct {
	fs   FileSystem
	path vpath.Path
}

// FileSystem returns the backend this entry belongs to.
func (e Entry) FileSystem() FileSystem { return e.fs }

// Path returns this entry's absolute path.
func (e Entry) Path() vpath.Path { return e.path }

// Name returns the entry's final path segment.
func (e Entry) Name() string { return e.path.Name() }

// Attributes returns this entry's attribute bitfield.
func (e Entry) Attributes() (Attributes, error) {
	return e.fs.GetAttributes(e.path)
}

// FileEntry is a handle to a (believed-to-exist) file.
type FileEntry struct {
	Entry
}

// NewFileEntry constructs a FileEntry for path on fs. It does not check
// existence; use FileExists first if that matters to the caller.
func NewFileEntry(fs FileSystem, path vpath.Path) FileEntry {
	return FileEntry{Entry{fs: fs, path: path}}
}

// Length returns the file's length in bytes.
func (f FileEntry) Length() (int64, error) {
	return f.fs.GetFileLength(f.path)
}

// OpenRead opens the file for reading.
func (f FileEntry) OpenRead() (io.ReadCloser, error) {
	return f.fs.OpenRead(f.path)
}

// ReadAllBytes reads the file's entire contents.
func (f FileEntry) ReadAllBytes() ([]byte, error) {
	return ReadAllBytes(f.fs, f.path)
}

// ReadAllText reads the file's entire contents as a string.
func (f FileEntry) ReadAllText() (string, error) {
	return ReadAllText(f.fs, f.path)
}

// DirectoryEntry is a handle to a (believed-to-exist) directory.
type DirectoryEntry struct {
	Entry
}

// NewDirectoryEntry constructs a DirectoryEntry for path on fs.
func NewDirectoryEntry(fs FileSystem, path vpath.Path) DirectoryEntry {
	return DirectoryEntry{Entry{fs: fs, path: path}}
}

// EnumerateFiles lists the files under this directory: its direct
// children, or every descendant when recursive is true.
func (d DirectoryEntry) EnumerateFiles(pattern *FilterPattern, recursive bool) (PathSeq, error) {
	return d.fs.EnumeratePaths(d.path, pattern, recursive, SearchFiles)
}

// EnumerateDirectories lists the subdirectories under this directory:
// its direct children, or every descendant when recursive is true.
func (d DirectoryEntry) EnumerateDirectories(pattern *FilterPattern, recursive bool) (PathSeq, error) {
	return d.fs.EnumeratePaths(d.path, pattern, recursive, SearchDirectories)
}

// ReadAllBytes reads the entire contents of the file at path on fs.
func ReadAllBytes(fs Reader, path vpath.Path) ([]byte, error) {
	reader, err := fs.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// ReadAllText reads the entire contents of the file at path on fs as a
// string.
func ReadAllText(fs Reader, path vpath.Path) (string, error) {
	data, err := ReadAllBytes(fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteAllBytes writes data to the file at path on fs, creating or
// truncating it as needed.
func WriteAllBytes(fs FileSystem, path vpath.Path, data []byte) error {
	writer, err := fs.OpenFile(path, OpenCreate, AccessWrite, ShareNone)
	if err != nil {
		return err
	}
	defer writer.Close()
	_, err = writer.Write(data)
	return err
}

// WriteAllText writes text to the file at path on fs, creating or
// truncating it as needed.
func WriteAllText(fs FileSystem, path vpath.Path, text string) error {
	return WriteAllBytes(fs, path, []byte(text))
}

// Copy copies the file at srcPath on src to destPath on dest, which may
// be a different backend entirely. overwrite controls whether an
// existing destination file is replaced.
func Copy(src Reader, srcPath vpath.Path, dest FileSystem, destPath vpath.Path, overwrite bool) error {
	if sameFS, ok := src.(FileSystem); ok && sameBackend(sameFS, dest) {
		return dest.CopyFile(srcPath, destPath, overwrite)
	}

	if !overwrite {
		if exists, err := dest.FileExists(destPath); err != nil {
			return err
		} else if exists {
			return New("Copy", destPath, KindDestinationExists)
		}
	}

	reader, err := src.OpenRead(srcPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := dest.OpenFile(destPath, OpenCreate, AccessWrite, ShareNone)
	if err != nil {
		return err
	}
	defer writer.Close()

	_, err = io.Copy(writer, reader)
	return err
}

// CopyDirectory recursively copies every file under srcPath on src to
// the corresponding path under destPath on dest, creating directories
// as needed. src and dest may be different backends.
//
// Directories are created in a first pass over the whole subtree before
// any file is copied in a second pass, since file copies open their
// destination with a mode that requires the parent directory to already
// exist, and a single combined pass would depend on enumeration order
// to get that right.
func CopyDirectory(src Reader, srcPath vpath.Path, dest FileSystem, destPath vpath.Path, overwrite bool) error {
	if err := dest.CreateDirectory(destPath); err != nil {
		return err
	}

	dirs, err := src.EnumeratePaths(srcPath, nil, true, SearchDirectories)
	if err != nil {
		return err
	}
	for dirs.Next() {
		target := relocate(srcPath, destPath, dirs.Path())
		if err := dest.CreateDirectory(target); err != nil {
			dirs.Close()
			return err
		}
	}
	if err := dirs.Err(); err != nil {
		dirs.Close()
		return err
	}
	dirs.Close()

	files, err := src.EnumeratePaths(srcPath, nil, true, SearchFiles)
	if err != nil {
		return err
	}
	defer files.Close()
	for files.Next() {
		target := relocate(srcPath, destPath, files.Path())
		if err := Copy(src, files.Path(), dest, target, overwrite); err != nil {
			return err
		}
	}
	return files.Err()
}

// relocate rewrites a path rooted at srcRoot into the equivalent path
// rooted at destRoot.
func relocate(srcRoot, destRoot, path vpath.Path) vpath.Path {
	relative := vpath.Parse(strings.TrimPrefix(path.String(), srcRoot.String()))
	return vpath.Join(destRoot, relative.ToRelative())
}

// sameBackend reports whether a and b share the same backend identity.
// It's used by Copy to take the fast CopyFile path when both sides
// resolve to the same backend instead of streaming bytes through the
// process.
func sameBackend(a, b FileSystem) bool {
	return a.Identity() == b.Identity()
}
