package vfs

import "testing"

func TestCompileFilterWildcardForms(t *testing.T) {
	for _, src := range []string{"", "*", "*.*"} {
		p, err := CompileFilter(src)
		if err != nil {
			t.Fatalf("CompileFilter(%q): %v", src, err)
		}
		if !p.Match("anything.ext") || !p.Match("noext") {
			t.Fatalf("wildcard pattern %q should match everything", src)
		}
		if p.Match("") {
			t.Fatalf("wildcard pattern %q should not match empty name", src)
		}
	}
}

func TestCompileFilterExact(t *testing.T) {
	p, err := CompileFilter("README")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Match("README") {
		t.Fatal("expected exact match")
	}
	if p.Match("README.md") {
		t.Fatal("exact pattern should not match a superset name")
	}
}

func TestCompileFilterRejectsSeparators(t *testing.T) {
	if _, err := CompileFilter("a/b"); !Is(err, KindInvalidFilter) {
		t.Fatalf("expected KindInvalidFilter, got %v", err)
	}
	if _, err := CompileFilter(`a\b`); !Is(err, KindInvalidFilter) {
		t.Fatalf("expected KindInvalidFilter, got %v", err)
	}
}

func TestCompileFilterGlobStar(t *testing.T) {
	p, err := CompileFilter("*.go")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Match("main.go") || p.Match("main.txt") {
		t.Fatal("unexpected *.go matching behavior")
	}
}

func TestCompileFilterSuffixGroup(t *testing.T) {
	p, err := CompileFilter("foo.*")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Match("foo") {
		t.Fatal(`"foo.*" should match bare "foo"`)
	}
	if !p.Match("foo.bar") {
		t.Fatal(`"foo.*" should match "foo.bar"`)
	}
	if p.Match("fooX") {
		t.Fatal(`"foo.*" should not match "fooX"`)
	}
}

func TestCompileFilterQuestionMark(t *testing.T) {
	p, err := CompileFilter("a?c")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Match("abc") || p.Match("ac") || p.Match("abbc") {
		t.Fatal("unexpected ? matching behavior")
	}
}

func TestMustCompileFilterPanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid filter")
		}
	}()
	MustCompileFilter("a/b")
}
