package resolver

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Address
	}{
		{
			"repo root",
			"https://github.com/o/r",
			Address{Owner: "o", Repo: "r", Kind: KindRoot},
		},
		{
			"repo root with trailing slash",
			"https://github.com/o/r/",
			Address{Owner: "o", Repo: "r", Kind: KindRoot},
		},
		{
			"repo root with surrounding whitespace",
			"  https://github.com/o/r  ",
			Address{Owner: "o", Repo: "r", Kind: KindRoot},
		},
		{
			"git suffix stripped",
			"https://github.com/o/r.git",
			Address{Owner: "o", Repo: "r", Kind: KindRoot},
		},
		{
			"www host",
			"https://www.github.com/o/r",
			Address{Owner: "o", Repo: "r", Kind: KindRoot},
		},
		{
			"tree with ref only",
			"https://github.com/o/r/tree/main",
			Address{Owner: "o", Repo: "r", Ref: "main", Kind: KindTree},
		},
		{
			"tree with path",
			"https://github.com/o/r/tree/main/src",
			Address{Owner: "o", Repo: "r", Ref: "main", Path: "src", Kind: KindTree},
		},
		{
			"tree with nested path",
			"https://github.com/o/r/tree/v1.2.3/src/internal/deep",
			Address{Owner: "o", Repo: "r", Ref: "v1.2.3", Path: "src/internal/deep", Kind: KindTree},
		},
		{
			"blob",
			"https://github.com/o/r/blob/main/README.md",
			Address{Owner: "o", Repo: "r", Ref: "main", Path: "README.md", Kind: KindBlob},
		},
		{
			"blob nested",
			"https://github.com/o/r/blob/develop/docs/guide/intro.md",
			Address{Owner: "o", Repo: "r", Ref: "develop", Path: "docs/guide/intro.md", Kind: KindBlob},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not a url", "://nope"},
		{"wrong host", "https://gitlab.com/o/r"},
		{"no repository", "https://github.com/o"},
		{"empty path", "https://github.com"},
		{"unknown marker", "https://github.com/o/r/commits/main"},
		{"tree without ref", "https://github.com/o/r/tree"},
		{"blob without ref", "https://github.com/o/r/blob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.raw)
			if err == nil {
				t.Fatalf("expected error for %q, got nil", tt.raw)
			}
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("error %v is not ErrInvalidURL", err)
			}
		})
	}
}

func TestWithRef(t *testing.T) {
	a := Address{Owner: "o", Repo: "r", Kind: KindRoot}
	pinned := a.WithRef("main")

	if pinned.Ref != "main" {
		t.Errorf("expected pinned ref main, got %q", pinned.Ref)
	}
	if a.Ref != "" {
		t.Errorf("original address mutated: ref=%q", a.Ref)
	}
}

func TestURLBuilders(t *testing.T) {
	tree := Address{Owner: "o", Repo: "r", Ref: "main", Path: "src", Kind: KindTree}

	if got, want := RepoURL(DefaultAPIBase, tree), "https://api.github.com/repos/o/r"; got != want {
		t.Errorf("RepoURL = %q, want %q", got, want)
	}
	if got, want := ContentsURL(DefaultAPIBase, tree), "https://api.github.com/repos/o/r/contents/src?ref=main"; got != want {
		t.Errorf("ContentsURL = %q, want %q", got, want)
	}
	if got, want := TreeURL(DefaultAPIBase, tree), "https://api.github.com/repos/o/r/git/trees/main?recursive=1"; got != want {
		t.Errorf("TreeURL = %q, want %q", got, want)
	}
	if got, want := RawURL(DefaultRawBase, tree, "src/a.ts"), "https://raw.githubusercontent.com/o/r/main/src/a.ts"; got != want {
		t.Errorf("RawURL = %q, want %q", got, want)
	}
}

func TestTreeURLHeadFallback(t *testing.T) {
	root := Address{Owner: "o", Repo: "r", Kind: KindRoot}

	got := TreeURL(DefaultAPIBase, root)
	want := "https://api.github.com/repos/o/r/git/trees/HEAD?recursive=1"
	if got != want {
		t.Errorf("TreeURL = %q, want %q", got, want)
	}
}

func TestContentsURLWithoutRef(t *testing.T) {
	a := Address{Owner: "o", Repo: "r", Path: "docs/intro.md", Kind: KindBlob}

	got := ContentsURL(DefaultAPIBase, a)
	want := "https://api.github.com/repos/o/r/contents/docs/intro.md"
	if got != want {
		t.Errorf("ContentsURL = %q, want %q", got, want)
	}
}
