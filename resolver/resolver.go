package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind says what a GitHub URL points at
type Kind string

const (
	KindRoot Kind = "root" // whole repository
	KindTree Kind = "tree" // folder inside the repository
	KindBlob Kind = "blob" // single file
)

// ErrInvalidURL marks input that cannot be resolved to a repository address
var ErrInvalidURL = errors.New("invalid GitHub URL")

// Address is the normalized form of a GitHub web URL.
// Ref=="" means the repository's default branch; Path=="" means the root.
// KindRoot implies Path=="".
type Address struct {
	Owner string
	Repo  string
	Ref   string
	Path  string
	Kind  Kind
}

// WithRef returns a copy of the address pinned to the given reference.
// The receiver is left untouched; resolving the default branch produces a
// new value instead of mutating the original.
func (a Address) WithRef(ref string) Address {
	a.Ref = ref
	return a
}

// String returns the canonical owner/repo[@ref][:path] form for display
func (a Address) String() string {
	s := a.Owner + "/" + a.Repo
	if a.Ref != "" {
		s += "@" + a.Ref
	}
	if a.Path != "" {
		s += ":" + a.Path
	}
	return s
}

// Resolve parses a GitHub web URL into an Address.
//
// Accepted shapes:
//
//	https://github.com/{owner}/{repo}
//	https://github.com/{owner}/{repo}/tree/{ref}[/{path}]
//	https://github.com/{owner}/{repo}/blob/{ref}/{path}
func Resolve(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimRight(trimmed, "/")

	u, err := url.Parse(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q is not a URL", ErrInvalidURL, raw)
	}
	if host := strings.ToLower(u.Host); host != "github.com" && host != "www.github.com" {
		return Address{}, fmt.Errorf("%w: host %q is not github.com", ErrInvalidURL, u.Host)
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 {
		return Address{}, fmt.Errorf("%w: missing owner/repository in %q", ErrInvalidURL, raw)
	}

	addr := Address{
		Owner: segments[0],
		Repo:  strings.TrimSuffix(segments[1], ".git"),
		Kind:  KindRoot,
	}
	if len(segments) == 2 {
		return addr, nil
	}

	switch segments[2] {
	case "tree":
		addr.Kind = KindTree
	case "blob":
		addr.Kind = KindBlob
	default:
		return Address{}, fmt.Errorf("%w: unsupported URL segment %q (expected tree or blob)", ErrInvalidURL, segments[2])
	}

	if len(segments) < 4 {
		return Address{}, fmt.Errorf("%w: %s URL without a branch, tag, or commit", ErrInvalidURL, segments[2])
	}
	addr.Ref = segments[3]

	if len(segments) > 4 {
		addr.Path = strings.Join(segments[4:], "/")
	}
	return addr, nil
}

// splitPath splits a URL path into its non-empty segments
func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
