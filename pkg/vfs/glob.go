package vfs

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// Glob lists every file or directory under dir whose path relative to
// dir (forward-slash form) matches a doublestar-style recursive
// pattern -- "**/*.log" for every .log file at any depth, "cfg/**" for
// everything under cfg, and so on. This supplements the single-segment
// FilterPattern contract required of every Reader: FilterPattern can
// only ever match one name component, so cross-directory glob shapes
// like "**" have no home there. Glob works against any backend,
// including composed ones, since it is built on EnumeratePaths.
func Glob(r Reader, dir vpath.Path, pattern string) ([]vpath.Path, error) {
	seq, err := r.EnumeratePaths(dir, nil, true, SearchBoth)
	if err != nil {
		return nil, err
	}
	defer seq.Close()

	var matches []vpath.Path
	for seq.Next() {
		relative := strings.TrimPrefix(seq.Path().String(), dir.String())
		relative = strings.TrimPrefix(relative, "/")
		matched, err := doublestar.Match(pattern, relative)
		if err != nil {
			return nil, Wrap("Glob", dir, KindInvalidFilter, err)
		}
		if matched {
			matches = append(matches, seq.Path())
		}
	}
	if err := seq.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
