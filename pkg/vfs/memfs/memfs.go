// Package memfs implements an in-memory vfs.FileSystem backend. It is the
// reference leaf backend used by the rest of the layerfs tree's tests and
// is suitable for scratch filesystems, fixtures, and any caller that wants
// a filesystem without touching disk.
package memfs

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

// node is a single file or directory entry in the tree. Directories hold
// children by name; files hold their content directly. A node never holds
// both.
type node struct {
	isDir    bool
	children map[string]*node
	data     []byte

	attrs    vfs.Attributes
	created  time.Time
	accessed time.Time
	modified time.Time
}

func newDirNode() *node {
	now := time.Now()
	return &node{
		isDir:    true,
		children: make(map[string]*node),
		attrs:    vfs.AttrDirectory,
		created:  now,
		accessed: now,
		modified: now,
	}
}

func newFileNode() *node {
	now := time.Now()
	return &node{created: now, accessed: now, modified: now}
}

// FS is an in-memory filesystem backend.
type FS struct {
	mu   sync.RWMutex
	root *node

	watchersMu sync.Mutex
	watchers   []*watcher
}

// New constructs an empty in-memory filesystem rooted at "/".
func New() vfs.FileSystem {
	fs := &FS{root: newDirNode()}
	return vfs.NewBase(fs)
}

// segments splits an absolute path into its non-empty components.
func segments(path vpath.Path) []string {
	s := path.String()
	if s == "" || s == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(s, "/"), "/")
}

// lookup walks to the node at path, returning nil if any component along
// the way is missing.
func (fs *FS) lookup(path vpath.Path) *node {
	cur := fs.root
	for _, seg := range segments(path) {
		if !cur.isDir {
			return nil
		}
		next, ok := cur.children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// lookupParent walks to the parent directory of path, returning the
// parent node and the final segment name. It fails with KindNotFound if
// any ancestor directory is missing, or KindNotADirectory if an ancestor
// exists but is a file.
func (fs *FS) lookupParent(op string, path vpath.Path) (*node, string, error) {
	segs := segments(path)
	if len(segs) == 0 {
		return nil, "", vfs.New(op, path, vfs.KindInvalidPath)
	}
	cur := fs.root
	for _, seg := range segs[:len(segs)-1] {
		if !cur.isDir {
			return nil, "", vfs.New(op, path, vfs.KindNotADirectory)
		}
		next, ok := cur.children[seg]
		if !ok {
			return nil, "", vfs.New(op, path, vfs.KindNotFound)
		}
		cur = next
	}
	if !cur.isDir {
		return nil, "", vfs.New(op, path, vfs.KindNotADirectory)
	}
	return cur, segs[len(segs)-1], nil
}

func (fs *FS) DirectoryExistsImpl(path vpath.Path) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(path)
	return n != nil && n.isDir, nil
}

func (fs *FS) FileExistsImpl(path vpath.Path) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(path)
	return n != nil && !n.isDir, nil
}

func (fs *FS) GetFileLengthImpl(path vpath.Path) (int64, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(path)
	if n == nil {
		return 0, vfs.New("GetFileLength", path, vfs.KindNotFound)
	}
	if n.isDir {
		return 0, vfs.New("GetFileLength", path, vfs.KindIsDirectory)
	}
	return int64(len(n.data)), nil
}

func (fs *FS) OpenReadImpl(path vpath.Path) (io.ReadCloser, error) {
	fs.mu.RLock()
	n := fs.lookup(path)
	if n == nil {
		fs.mu.RUnlock()
		return nil, vfs.New("OpenRead", path, vfs.KindNotFound)
	}
	if n.isDir {
		fs.mu.RUnlock()
		return nil, vfs.New("OpenRead", path, vfs.KindIsDirectory)
	}
	data := append([]byte(nil), n.data...)
	fs.mu.RUnlock()
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (fs *FS) GetAttributesImpl(path vpath.Path) (vfs.Attributes, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(path)
	if n == nil {
		return 0, vfs.New("GetAttributes", path, vfs.KindNotFound)
	}
	return n.attrs, nil
}

func (fs *FS) GetCreationTimeImpl(path vpath.Path) (time.Time, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(path)
	if n == nil {
		return vfs.ZeroTime, vfs.New("GetCreationTime", path, vfs.KindNotFound)
	}
	return n.created, nil
}

func (fs *FS) GetLastAccessTimeImpl(path vpath.Path) (time.Time, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(path)
	if n == nil {
		return vfs.ZeroTime, vfs.New("GetLastAccessTime", path, vfs.KindNotFound)
	}
	return n.accessed, nil
}

func (fs *FS) GetLastWriteTimeImpl(path vpath.Path) (time.Time, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	n := fs.lookup(path)
	if n == nil {
		return vfs.ZeroTime, vfs.New("GetLastWriteTime", path, vfs.KindNotFound)
	}
	return n.modified, nil
}

func (fs *FS) CreateDirectoryImpl(path vpath.Path) error {
	fs.mu.Lock()
	cur := fs.root
	created := false
	for _, seg := range segments(path) {
		if !cur.isDir {
			fs.mu.Unlock()
			return vfs.New("CreateDirectory", path, vfs.KindNotADirectory)
		}
		next, ok := cur.children[seg]
		if !ok {
			next = newDirNode()
			cur.children[seg] = next
			created = true
		} else if !next.isDir {
			fs.mu.Unlock()
			return vfs.New("CreateDirectory", path, vfs.KindNotADirectory)
		}
		cur = next
	}
	fs.mu.Unlock()
	if created {
		fs.notify(vfs.ChangeCreated, path, vpath.Null)
	}
	return nil
}

func (fs *FS) MoveDirectoryImpl(src, dest vpath.Path) error {
	return fs.moveEntry("MoveDirectory", src, dest, true)
}

func (fs *FS) DeleteDirectoryImpl(path vpath.Path, recursive bool) error {
	fs.mu.Lock()
	parent, name, err := fs.lookupParent("DeleteDirectory", path)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	n, ok := parent.children[name]
	if !ok {
		fs.mu.Unlock()
		return vfs.New("DeleteDirectory", path, vfs.KindNotFound)
	}
	if !n.isDir {
		fs.mu.Unlock()
		return vfs.New("DeleteDirectory", path, vfs.KindNotADirectory)
	}
	if !recursive && len(n.children) > 0 {
		fs.mu.Unlock()
		return vfs.New("DeleteDirectory", path, vfs.KindDirectoryNotEmpty)
	}
	delete(parent.children, name)
	fs.mu.Unlock()
	fs.notify(vfs.ChangeDeleted, path, vpath.Null)
	return nil
}

func (fs *FS) CopyFileImpl(src, dest vpath.Path, overwrite bool) error {
	fs.mu.Lock()
	srcNode := fs.lookup(src)
	if srcNode == nil {
		fs.mu.Unlock()
		return vfs.New("CopyFile", src, vfs.KindNotFound)
	}
	if srcNode.isDir {
		fs.mu.Unlock()
		return vfs.New("CopyFile", src, vfs.KindIsDirectory)
	}
	destParent, destName, err := fs.lookupParent("CopyFile", dest)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	if existing, ok := destParent.children[destName]; ok {
		if !overwrite {
			fs.mu.Unlock()
			return vfs.New("CopyFile", dest, vfs.KindDestinationExists)
		}
		if existing.isDir {
			fs.mu.Unlock()
			return vfs.New("CopyFile", dest, vfs.KindIsDirectory)
		}
	}
	copied := newFileNode()
	copied.data = append([]byte(nil), srcNode.data...)
	copied.attrs = srcNode.attrs
	destParent.children[destName] = copied
	fs.mu.Unlock()
	fs.notify(vfs.ChangeCreated, dest, vpath.Null)
	return nil
}

func (fs *FS) ReplaceFileImpl(src, dest, backup vpath.Path, ignoreMetadataErrors bool) error {
	fs.mu.Lock()
	destParent, destName, err := fs.lookupParent("ReplaceFile", dest)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	if destNode, ok := destParent.children[destName]; ok && !backup.IsNull() {
		backupParent, backupName, berr := fs.lookupParent("ReplaceFile", backup)
		if berr != nil {
			if !ignoreMetadataErrors {
				fs.mu.Unlock()
				return berr
			}
		} else {
			backupParent.children[backupName] = destNode
		}
	}
	srcParent, srcName, err := fs.lookupParent("ReplaceFile", src)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	srcNode, ok := srcParent.children[srcName]
	if !ok {
		fs.mu.Unlock()
		return vfs.New("ReplaceFile", src, vfs.KindNotFound)
	}
	delete(srcParent.children, srcName)
	destParent.children[destName] = srcNode
	fs.mu.Unlock()
	fs.notify(vfs.ChangeRenamed, dest, src)
	return nil
}

func (fs *FS) MoveFileImpl(src, dest vpath.Path) error {
	return fs.moveEntry("MoveFile", src, dest, false)
}

// moveEntry implements both MoveFile and MoveDirectory: it fails if dest
// already exists, and fails if the kind of entry at src doesn't match
// expectDir.
func (fs *FS) moveEntry(op string, src, dest vpath.Path, expectDir bool) error {
	fs.mu.Lock()
	srcParent, srcName, err := fs.lookupParent(op, src)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	srcNode, ok := srcParent.children[srcName]
	if !ok {
		fs.mu.Unlock()
		return vfs.New(op, src, vfs.KindNotFound)
	}
	if srcNode.isDir != expectDir {
		kind := vfs.KindIsDirectory
		if expectDir {
			kind = vfs.KindNotADirectory
		}
		fs.mu.Unlock()
		return vfs.New(op, src, kind)
	}
	destParent, destName, err := fs.lookupParent(op, dest)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	if _, exists := destParent.children[destName]; exists {
		fs.mu.Unlock()
		return vfs.New(op, dest, vfs.KindDestinationExists)
	}
	delete(srcParent.children, srcName)
	destParent.children[destName] = srcNode
	fs.mu.Unlock()
	fs.notify(vfs.ChangeRenamed, dest, src)
	return nil
}

func (fs *FS) DeleteFileImpl(path vpath.Path) error {
	fs.mu.Lock()
	parent, name, err := fs.lookupParent("DeleteFile", path)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	n, ok := parent.children[name]
	if !ok {
		fs.mu.Unlock()
		return vfs.New("DeleteFile", path, vfs.KindNotFound)
	}
	if n.isDir {
		fs.mu.Unlock()
		return vfs.New("DeleteFile", path, vfs.KindIsDirectory)
	}
	delete(parent.children, name)
	fs.mu.Unlock()
	fs.notify(vfs.ChangeDeleted, path, vpath.Null)
	return nil
}

func (fs *FS) OpenFileImpl(path vpath.Path, mode vfs.OpenMode, access vfs.Access, _ vfs.Share) (io.ReadWriteCloser, error) {
	fs.mu.Lock()
	parent, name, err := fs.lookupParent("OpenFile", path)
	if err != nil {
		fs.mu.Unlock()
		return nil, err
	}
	existing, exists := parent.children[name]
	if exists && existing.isDir {
		fs.mu.Unlock()
		return nil, vfs.New("OpenFile", path, vfs.KindIsDirectory)
	}

	switch mode {
	case vfs.OpenCreateNew:
		if exists {
			fs.mu.Unlock()
			return nil, vfs.New("OpenFile", path, vfs.KindAlreadyExists)
		}
	case vfs.OpenExisting, vfs.OpenTruncate:
		if !exists {
			fs.mu.Unlock()
			return nil, vfs.New("OpenFile", path, vfs.KindNotFound)
		}
	}

	var content []byte
	existedBefore := exists
	truncated := exists && (mode == vfs.OpenCreate || mode == vfs.OpenTruncate)
	if exists && !truncated {
		content = append([]byte(nil), existing.data...)
	}

	target := existing
	if !exists {
		target = newFileNode()
		parent.children[name] = target
	}
	pos := 0
	if mode == vfs.OpenAppend {
		pos = len(content)
	}
	fs.mu.Unlock()

	return &fileHandle{
		content: content,
		pos:     pos,
		access:  access,
		// A truncating open empties the file even if the caller never
		// writes, so the handle starts out dirty.
		dirty:         truncated,
		node:          target,
		fs:            fs,
		path:          path,
		existedBefore: existedBefore,
	}, nil
}

func (fs *FS) SetAttributesImpl(path vpath.Path, attrs vfs.Attributes) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := fs.lookup(path)
	if n == nil {
		return vfs.New("SetAttributes", path, vfs.KindNotFound)
	}
	n.attrs = attrs
	return nil
}

func (fs *FS) SetCreationTimeImpl(path vpath.Path, t time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := fs.lookup(path)
	if n == nil {
		return vfs.New("SetCreationTime", path, vfs.KindNotFound)
	}
	n.created = t
	return nil
}

func (fs *FS) SetLastAccessTimeImpl(path vpath.Path, t time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := fs.lookup(path)
	if n == nil {
		return vfs.New("SetLastAccessTime", path, vfs.KindNotFound)
	}
	n.accessed = t
	return nil
}

func (fs *FS) SetLastWriteTimeImpl(path vpath.Path, t time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := fs.lookup(path)
	if n == nil {
		return vfs.New("SetLastWriteTime", path, vfs.KindNotFound)
	}
	n.modified = t
	return nil
}

func (fs *FS) ConvertPathToInternalImpl(path vpath.Path) (string, error) {
	return path.String(), nil
}

func (fs *FS) ConvertPathFromInternalImpl(internal string) (vpath.Path, error) {
	return vpath.Parse(internal), nil
}

func (fs *FS) CanWatchImpl(_ vpath.Path) bool { return true }

func (fs *FS) CloseImpl() error {
	fs.watchersMu.Lock()
	active := fs.watchers
	fs.watchers = nil
	fs.watchersMu.Unlock()
	for _, w := range active {
		w.Close()
	}
	return nil
}

// notify broadcasts a raw change to every active watcher; each watcher
// applies its own filter/enabled/recursive delivery policy internally.
func (fs *FS) notify(kind vfs.ChangeKind, path, oldPath vpath.Path) {
	fs.watchersMu.Lock()
	active := append([]*watcher(nil), fs.watchers...)
	fs.watchersMu.Unlock()

	for _, w := range active {
		switch kind {
		case vfs.ChangeCreated:
			w.RaiseCreated(path)
		case vfs.ChangeDeleted:
			w.RaiseDeleted(path)
		case vfs.ChangeChanged:
			w.RaiseChanged(path)
		case vfs.ChangeRenamed:
			w.RaiseRenamed(oldPath, path)
		}
	}
}

var _ vfs.Impl = (*FS)(nil)
