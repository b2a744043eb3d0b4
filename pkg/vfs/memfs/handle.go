package memfs

import (
	"io"
	"time"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

// fileHandle is the io.ReadWriteCloser returned by OpenFileImpl. It holds
// a private copy of the file's content and commits it back to the node
// on Close, only if a write occurred or the open truncated the file.
type fileHandle struct {
	content []byte
	pos     int
	access  vfs.Access
	dirty   bool

	node *node
	fs   *FS
	path vpath.Path

	existedBefore bool
	closed        bool
}

func (h *fileHandle) Read(p []byte) (int, error) {
	if h.access&vfs.AccessRead == 0 {
		return 0, vfs.New("Read", h.path, vfs.KindAccessDenied)
	}
	if h.pos >= len(h.content) {
		return 0, io.EOF
	}
	n := copy(p, h.content[h.pos:])
	h.pos += n
	return n, nil
}

func (h *fileHandle) Write(p []byte) (int, error) {
	if h.access&vfs.AccessWrite == 0 {
		return 0, vfs.New("Write", h.path, vfs.KindAccessDenied)
	}
	end := h.pos + len(p)
	if end > len(h.content) {
		grown := make([]byte, end)
		copy(grown, h.content)
		h.content = grown
	}
	copy(h.content[h.pos:end], p)
	h.pos = end
	h.dirty = true
	return len(p), nil
}

func (h *fileHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if !h.dirty {
		return nil
	}

	h.fs.mu.Lock()
	h.node.data = h.content
	h.node.modified = time.Now()
	h.fs.mu.Unlock()

	kind := vfs.ChangeChanged
	if !h.existedBefore {
		kind = vfs.ChangeCreated
	}
	h.fs.notify(kind, h.path, vpath.Null)
	return nil
}
