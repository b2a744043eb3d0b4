package memfs

import (
	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

// slicePathSeq is a PathSeq backed by a pre-materialized slice. memfs
// enumerations are cheap enough (the whole tree lives in memory already)
// that collecting eagerly under the read lock, then iterating lock-free,
// is simpler than threading a lazy walk through the tree's mutex.
type slicePathSeq struct {
	paths []vpath.Path
	idx   int
}

func (s *slicePathSeq) Next() bool {
	if s.idx >= len(s.paths) {
		return false
	}
	s.idx++
	return true
}

func (s *slicePathSeq) Path() vpath.Path { return s.paths[s.idx-1] }
func (s *slicePathSeq) Err() error       { return nil }
func (s *slicePathSeq) Close() error     { return nil }

func (fs *FS) EnumeratePathsImpl(dir vpath.Path, pattern *vfs.FilterPattern, recursive bool, target vfs.SearchTarget) (vfs.PathSeq, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dirNode := fs.lookup(dir)
	if dirNode == nil {
		return nil, vfs.New("EnumeratePaths", dir, vfs.KindNotFound)
	}
	if !dirNode.isDir {
		return nil, vfs.New("EnumeratePaths", dir, vfs.KindNotADirectory)
	}

	var collected []vpath.Path
	fs.walk(dir, dirNode, pattern, recursive, target, &collected)
	return &slicePathSeq{paths: collected}, nil
}

// walk appends matching descendants of n (located at path) to out. It
// must be called with fs.mu held for reading.
func (fs *FS) walk(path vpath.Path, n *node, pattern *vfs.FilterPattern, recursive bool, target vfs.SearchTarget, out *[]vpath.Path) {
	for name, child := range n.children {
		childPath := path.JoinString(name)
		matches := pattern == nil || pattern.Match(name)
		if matches {
			switch target {
			case vfs.SearchFiles:
				if !child.isDir {
					*out = append(*out, childPath)
				}
			case vfs.SearchDirectories:
				if child.isDir {
					*out = append(*out, childPath)
				}
			default:
				*out = append(*out, childPath)
			}
		}
		if child.isDir && recursive {
			fs.walk(childPath, child, pattern, recursive, target, out)
		}
	}
}
