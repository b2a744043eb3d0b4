package vfs

import (
	"regexp"
	"strings"

	"github.com/layerfs/layerfs/pkg/vpath"
)

// filterForm classifies how a compiled FilterPattern matches names.
type filterForm int

const (
	formWildcardAll filterForm = iota
	formExact
	formRegexp
)

// FilterPattern is a compiled matcher over a single path name segment.
// Directory separators are rejected at compile time (ErrInvalidFilter).
type FilterPattern struct {
	form  filterForm
	exact string
	re    *regexp.Regexp
	// source is retained for diagnostics (e.g. logging).
	source string
}

// wildcardAllPattern is the shared matcher used for "", "*" and "*.*".
var wildcardAllPattern = &FilterPattern{form: formWildcardAll, source: "*.*"}

// CompileFilter parses f into a FilterPattern. It fails with
// ErrInvalidFilter if f contains a path separator.
func CompileFilter(f string) (*FilterPattern, error) {
	if strings.ContainsAny(f, "/\\") {
		return nil, New("CompileFilter", vpath.Empty, KindInvalidFilter)
	}

	switch f {
	case "", "*", "*.*":
		return wildcardAllPattern, nil
	}

	if !strings.ContainsAny(f, ".*?") {
		return &FilterPattern{form: formExact, exact: f, source: f}, nil
	}

	re, err := compileGlobRegexp(f)
	if err != nil {
		return nil, Wrap("CompileFilter", vpath.Empty, KindInvalidFilter, err)
	}
	return &FilterPattern{form: formRegexp, re: re, source: f}, nil
}

// MustCompileFilter is like CompileFilter but panics on error. It is
// intended for compile-time-known patterns (e.g. package-level defaults).
func MustCompileFilter(f string) *FilterPattern {
	p, err := CompileFilter(f)
	if err != nil {
		panic(err)
	}
	return p
}

// compileGlobRegexp translates a glob string into an anchored regular
// expression. "*" becomes ".*?", "?" becomes ".", other regex metachars
// are escaped, and "." becomes a literal "\.". As a special case, if the
// pattern ends in ".*", the final segment is emitted as an optional
// extension group "(\.[^.]*)?" so that "foo.*" matches both "foo" and
// "foo.bar" (but not "fooX").
func compileGlobRegexp(pattern string) (*regexp.Regexp, error) {
	body := pattern
	suffixGroup := ""
	if strings.HasSuffix(pattern, ".*") && len(pattern) > 2 {
		body = pattern[:len(pattern)-2]
		suffixGroup = `(\.[^.]*)?`
	}

	var b strings.Builder
	b.WriteString("^")
	for _, r := range body {
		switch r {
		case '.':
			b.WriteString(`\.`)
		case '*':
			b.WriteString(`.*?`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if suffixGroup != "" {
		b.WriteString(suffixGroup)
	}
	b.WriteString("$")

	return regexp.Compile(b.String())
}

// Match reports whether name satisfies this filter pattern.
func (p *FilterPattern) Match(name string) bool {
	switch p.form {
	case formWildcardAll:
		return name != ""
	case formExact:
		return name == p.exact
	case formRegexp:
		return p.re.MatchString(name)
	default:
		return false
	}
}

// String returns the pattern text the filter was compiled from. The
// wildcard forms "", "*" and "*.*" share one matcher, whose text is "*.*".
func (p *FilterPattern) String() string {
	return p.source
}
