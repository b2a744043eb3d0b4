package osfs

import (
	"os"
	"path/filepath"

	"github.com/layerfs/layerfs/pkg/vfs"
	"github.com/layerfs/layerfs/pkg/vpath"
)

// pendingDir is a directory queued for listing by dirPathSeq.
type pendingDir struct {
	native string
	path   vpath.Path
}

// dirPathSeq walks the native tree rooted at dir lazily, yielding one
// absolute vpath.Path per call to Next. Unlike memfs (where the whole
// tree already lives in memory and collecting eagerly is cheap), osfs
// enumeration can touch disk for an arbitrarily large subtree, so this
// keeps only the pending stack of unvisited directories in memory
// rather than materializing every result up front.
type dirPathSeq struct {
	fs        *FS
	pattern   *vfs.FilterPattern
	recursive bool
	target    vfs.SearchTarget

	stack []pendingDir

	dirPath vpath.Path
	entries []os.DirEntry
	idx     int

	result vpath.Path
	err    error
}

func (s *dirPathSeq) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		for s.idx < len(s.entries) {
			entry := s.entries[s.idx]
			s.idx++
			name := entry.Name()
			childPath := s.dirPath.JoinString(name)
			isDir := entry.IsDir()

			if isDir && s.recursive {
				s.stack = append(s.stack, pendingDir{
					native: filepath.Join(s.fs.native(s.dirPath), name),
					path:   childPath,
				})
			}

			if s.pattern != nil && !s.pattern.Match(name) {
				continue
			}
			switch s.target {
			case vfs.SearchFiles:
				if isDir {
					continue
				}
			case vfs.SearchDirectories:
				if !isDir {
					continue
				}
			}

			s.result = childPath
			return true
		}

		if len(s.stack) == 0 {
			return false
		}
		next := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		entries, err := os.ReadDir(next.native)
		if err != nil {
			s.err = mapErr("EnumeratePaths", next.path, err)
			return false
		}
		s.dirPath = next.path
		s.entries = entries
		s.idx = 0
	}
}

func (s *dirPathSeq) Path() vpath.Path { return s.result }
func (s *dirPathSeq) Err() error       { return s.err }
func (s *dirPathSeq) Close() error     { return nil }

func (fs *FS) EnumeratePathsImpl(dir vpath.Path, pattern *vfs.FilterPattern, recursive bool, target vfs.SearchTarget) (vfs.PathSeq, error) {
	native := fs.native(dir)
	info, err := os.Stat(native)
	if err != nil {
		return nil, mapErr("EnumeratePaths", dir, err)
	}
	if !info.IsDir() {
		return nil, vfs.New("EnumeratePaths", dir, vfs.KindNotADirectory)
	}

	entries, err := os.ReadDir(native)
	if err != nil {
		return nil, mapErr("EnumeratePaths", dir, err)
	}

	return &dirPathSeq{
		fs:        fs,
		pattern:   pattern,
		recursive: recursive,
		target:    target,
		dirPath:   dir,
		entries:   entries,
	}, nil
}

