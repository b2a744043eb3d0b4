package vpath

import "testing"

func TestParseCanonicalization(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/", "/"},
		{"", ""},
		{"a/b/c", "a/b/c"},
		{"a//b///c", "a/b/c"},
		{"/a/b/", "/a/b"},
		{`a\b\c`, "a/b/c"},
		{"/a/./b", "/a/b"},
		{"/a/b/..", "/a"},
		{"/..", "/"},
		{"/../../a", "/a"},
		{"a/../b", "b"},
		{"../a", "../a"},
		{"a/..", ""},
	}
	for _, tt := range tests {
		if got := Parse(tt.input).String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseIdempotent(t *testing.T) {
	inputs := []string{"/a/b/c", "", "/", "a/../b/c/../../d", `a\b\..\c`}
	for _, in := range inputs {
		once := Parse(in).String()
		twice := Parse(once).String()
		if once != twice {
			t.Errorf("canonicalization not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"/a", "b", "/a/b"},
		{"/a", "/b", "/b"},
		{"", "b", "b"},
		{"/a/b", "../c", "/a/c"},
		{"/", "a", "/a"},
	}
	for _, tt := range tests {
		got := Join(Parse(tt.a), Parse(tt.b)).String()
		if got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestJoinPreservesAbsoluteB(t *testing.T) {
	root := Parse("/x/y")
	abs := Parse("/z")
	if got := Join(root, abs); got.String() != "/z" {
		t.Errorf("Join should preserve absolute b, got %q", got.String())
	}
}

func TestRootParentIsRoot(t *testing.T) {
	if got := Root.Dir().String(); got != "/" {
		t.Errorf("Root.Dir() = %q, want /", got)
	}
}

func TestNameAndExtension(t *testing.T) {
	tests := []struct {
		path, name, stem, ext string
	}{
		{"/a/b/foo.txt", "foo.txt", "foo", ".txt"},
		{"/a/b/foo", "foo", "foo", ""},
		{"/a/b/.gitignore", ".gitignore", ".gitignore", ""},
		{"/a/b/archive.tar.gz", "archive.tar.gz", "archive.tar", ".gz"},
		{"/", "", "", ""},
	}
	for _, tt := range tests {
		p := Parse(tt.path)
		if got := p.Name(); got != tt.name {
			t.Errorf("Name(%q) = %q, want %q", tt.path, got, tt.name)
		}
		if got := p.NameWithoutExtension(); got != tt.stem {
			t.Errorf("NameWithoutExtension(%q) = %q, want %q", tt.path, got, tt.stem)
		}
		if got := p.Ext(); got != tt.ext {
			t.Errorf("Ext(%q) = %q, want %q", tt.path, got, tt.ext)
		}
	}
}

func TestIsInDirectory(t *testing.T) {
	tests := []struct {
		path, dir string
		recursive bool
		want      bool
	}{
		{"/a/b/c.txt", "/a", true, true},
		{"/a/b/c.txt", "/a", false, false},
		{"/a/b.txt", "/a", false, true},
		{"/a/b.txt", "/a", true, true},
		{"/b/c.txt", "/a", true, false},
		{"/a", "/a", true, false},
		{"/a.txt", "/", false, true},
		{"/sub/a.txt", "/", false, false},
		{"/sub/a.txt", "/", true, true},
	}
	for _, tt := range tests {
		got := Parse(tt.path).IsInDirectory(Parse(tt.dir), tt.recursive)
		if got != tt.want {
			t.Errorf("IsInDirectory(%q, %q, recursive=%v) = %v, want %v",
				tt.path, tt.dir, tt.recursive, got, tt.want)
		}
	}
}

func TestToRelative(t *testing.T) {
	if got := Parse("/a/b").ToRelative().String(); got != "a/b" {
		t.Errorf("ToRelative() = %q, want a/b", got)
	}
	if got := Parse("a/b").ToRelative().String(); got != "a/b" {
		t.Errorf("ToRelative() on relative path should be a no-op, got %q", got)
	}
}

func TestAssertAbsolute(t *testing.T) {
	if err := Parse("/a").AssertAbsolute(); err != nil {
		t.Errorf("AssertAbsolute() on absolute path returned error: %v", err)
	}
	if err := Parse("a").AssertAbsolute(); err == nil {
		t.Error("AssertAbsolute() on relative path should fail")
	}
	if err := Null.AssertAbsolute(); err == nil {
		t.Error("AssertAbsolute() on null path should fail")
	}
}

func TestEquality(t *testing.T) {
	a := Parse("/a/b/../c")
	b := Parse("/a/c")
	if !a.Equal(b) {
		t.Errorf("expected %q and %q to be equal", a.String(), b.String())
	}
	if !Null.Equal(Path{}) {
		t.Error("two null paths should be equal")
	}
	if Null.Equal(Parse("")) {
		t.Error("null should not equal the valid empty path")
	}

	// Reflexive, symmetric, transitive over a small set.
	paths := []Path{Parse("/a"), Parse("/a/b"), Parse("/a/b")}
	for i := range paths {
		if !paths[i].Equal(paths[i]) {
			t.Errorf("Equal not reflexive for %q", paths[i].String())
		}
		for j := range paths {
			if paths[i].Equal(paths[j]) != paths[j].Equal(paths[i]) {
				t.Errorf("Equal not symmetric for %q vs %q", paths[i].String(), paths[j].String())
			}
		}
	}
	if paths[1].Equal(paths[2]) {
		if !paths[2].Equal(paths[1]) {
			t.Error("Equal not symmetric")
		}
	}
}

func TestNullAndEmptyStates(t *testing.T) {
	var zero Path
	if !zero.IsNull() {
		t.Error("zero value should be null")
	}
	if !Empty.IsEmpty() {
		t.Error("Empty should report IsEmpty")
	}
	if Empty.IsNull() {
		t.Error("Empty should not be null")
	}
}
