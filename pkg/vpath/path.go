// Package vpath implements a normalized, backend-independent path value
// used throughout the layerfs virtual filesystem stack. Paths are always
// represented using forward slashes, regardless of the platform
// conventions of any backend that eventually resolves them.
package vpath

import (
	"strings"

	"github.com/pkg/errors"
)

// Separator is the canonical path separator used by every Path value.
const Separator = "/"

// ErrInvalidPath indicates that a path is relative (or null) where an
// absolute, non-null path is required, or that it was built from invalid
// input.
var ErrInvalidPath = errors.New("invalid path")

// Path is an immutable, canonicalized path value. The zero value is the
// "null" path (see IsNull) and carries no meaning other than "absent".
type Path struct {
	// full is the canonical string representation. It is only meaningful
	// when valid is true.
	full string
	// valid indicates whether this Path carries an actual value. A Path
	// built via the zero value (var p Path) is not valid and represents
	// the "null" state described in the data model.
	valid bool
}

// Null is the null Path value, equivalent to the zero value.
var Null = Path{}

// Root is the canonical absolute root path ("/").
var Root = NewCanonical("/")

// Empty is the canonical empty relative path ("").
var Empty = NewCanonical("")

// Parse canonicalizes an arbitrary string into a Path. It replaces
// backslashes with forward slashes, collapses repeated separators,
// resolves "." and ".." segments (".." at an absolute root stays at the
// root), and strips any trailing separator except for the root itself.
func Parse(raw string) Path {
	return Path{full: canonicalize(raw), valid: true}
}

// NewCanonical builds a Path directly from a string that the caller
// guarantees is already canonical. It skips the canonicalization work
// and must only be used by code that can prove the invariant holds
// (e.g. code re-deriving a path from another Path's String()).
func NewCanonical(canonical string) Path {
	return Path{full: canonical, valid: true}
}

// canonicalize implements the canonicalization rule from the data model.
func canonicalize(raw string) string {
	s := strings.ReplaceAll(raw, "\\", "/")

	absolute := strings.HasPrefix(s, "/")

	rawSegments := strings.Split(s, "/")
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		switch segment {
		case "", ".":
			// Collapse repeated separators and drop "." segments.
			continue
		case "..":
			if len(segments) > 0 && segments[len(segments)-1] != ".." {
				// Pop the previous segment.
				segments = segments[:len(segments)-1]
			} else if !absolute {
				// Relative paths may accumulate leading "..".
				segments = append(segments, "..")
			}
			// For absolute paths, ".." at the root is a no-op.
		default:
			segments = append(segments, maybeNormalize(segment))
		}
	}

	joined := strings.Join(segments, "/")
	if absolute {
		return "/" + joined
	}
	return joined
}

// String returns the canonical string representation of the path. For the
// null path, it returns an empty string.
func (p Path) String() string {
	if !p.valid {
		return ""
	}
	return p.full
}

// IsNull reports whether this Path carries no value at all.
func (p Path) IsNull() bool {
	return !p.valid
}

// IsEmpty reports whether this Path is the valid-but-empty relative path.
func (p Path) IsEmpty() bool {
	return p.valid && p.full == ""
}

// IsAbsolute reports whether this Path is rooted (begins with "/").
func (p Path) IsAbsolute() bool {
	return p.valid && strings.HasPrefix(p.full, "/")
}

// IsRelative reports whether this Path is valid and not absolute.
func (p Path) IsRelative() bool {
	return p.valid && !p.IsAbsolute()
}

// AssertNotNull returns ErrInvalidPath if the path is null.
func (p Path) AssertNotNull() error {
	if p.IsNull() {
		return errors.Wrap(ErrInvalidPath, "path is null")
	}
	return nil
}

// AssertAbsolute returns ErrInvalidPath if the path is null or not
// absolute.
func (p Path) AssertAbsolute() error {
	if err := p.AssertNotNull(); err != nil {
		return err
	}
	if !p.IsAbsolute() {
		return errors.Wrapf(ErrInvalidPath, "path %q is not absolute", p.full)
	}
	return nil
}

// Join appends b to a, per the join algebra: if b is absolute it is
// returned as-is (after canonicalization); if a is empty, b is returned;
// otherwise the two are concatenated with a separator and the result is
// canonicalized.
func Join(a, b Path) Path {
	if b.IsAbsolute() {
		return b
	}
	if a.IsEmpty() || a.IsNull() {
		return b
	}
	return Parse(a.full + "/" + b.full)
}

// JoinString is a convenience wrapper around Join for a raw path
// component.
func (p Path) JoinString(component string) Path {
	return Join(p, Parse(component))
}

// Dir returns the parent directory of the path. The parent of the root
// is the root. The parent of a single-segment relative path is Empty.
func (p Path) Dir() Path {
	if p.IsNull() {
		return Null
	}
	if p.full == "/" || p.full == "" {
		return p
	}
	idx := strings.LastIndexByte(p.full, '/')
	if idx < 0 {
		return Empty
	}
	if idx == 0 {
		// Absolute path with a single segment, e.g. "/a".
		return Root
	}
	return NewCanonical(p.full[:idx])
}

// Name returns the final path segment (the "file name").
func (p Path) Name() string {
	if p.IsNull() || p.full == "/" || p.full == "" {
		return ""
	}
	idx := strings.LastIndexByte(p.full, '/')
	if idx < 0 {
		return p.full
	}
	return p.full[idx+1:]
}

// NameWithoutExtension returns Name() with any trailing extension (as
// defined by Ext) removed.
func (p Path) NameWithoutExtension() string {
	name := p.Name()
	ext := extensionOf(name)
	return name[:len(name)-len(ext)]
}

// Ext returns the final name's extension, including the leading dot, or
// an empty string if the name has no extension.
func (p Path) Ext() string {
	return extensionOf(p.Name())
}

// extensionOf computes the dotted extension of a single name segment. A
// name that starts with a dot and has no further dot (e.g. ".gitignore")
// has no extension.
func extensionOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return name[idx:]
}

// IsInDirectory reports whether this path lies within dir. When
// recursive is true, any descendant (at any depth) qualifies; when
// false, only direct children qualify.
func (p Path) IsInDirectory(dir Path, recursive bool) bool {
	if p.IsNull() || dir.IsNull() {
		return false
	}

	prefix := dir.full
	rest := ""
	switch {
	case prefix == p.full:
		// A path is never "in" itself.
		return false
	case prefix == "/":
		if !strings.HasPrefix(p.full, "/") {
			return false
		}
		rest = strings.TrimPrefix(p.full, "/")
	case strings.HasPrefix(p.full, prefix+"/"):
		rest = strings.TrimPrefix(p.full, prefix+"/")
	default:
		return false
	}

	if rest == "" {
		return false
	}
	if recursive {
		return true
	}
	return !strings.Contains(rest, "/")
}

// ToRelative strips a leading separator, converting an absolute path
// into the equivalent relative one. A relative path is returned
// unchanged.
func (p Path) ToRelative() Path {
	if p.IsNull() {
		return Null
	}
	if !p.IsAbsolute() {
		return p
	}
	return NewCanonical(strings.TrimPrefix(p.full, "/"))
}

// Equal reports whether two paths have the same canonical string. Two
// null paths are equal; a null path is never equal to a valid one.
func (p Path) Equal(other Path) bool {
	if p.valid != other.valid {
		return false
	}
	if !p.valid {
		return true
	}
	return p.full == other.full
}
