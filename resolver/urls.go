package resolver

import "net/url"

// Default hosts for the GitHub REST API and raw content delivery
const (
	DefaultAPIBase = "https://api.github.com"
	DefaultRawBase = "https://raw.githubusercontent.com"
)

// RepoURL builds the repository metadata endpoint, used to look up the
// default branch.
func RepoURL(base string, a Address) string {
	return base + "/repos/" + a.Owner + "/" + a.Repo
}

// ContentsURL builds the path-scoped contents endpoint for a single item.
// The ref query parameter is omitted when the address has no reference.
func ContentsURL(base string, a Address) string {
	u := base + "/repos/" + a.Owner + "/" + a.Repo + "/contents/" + escapePath(a.Path)
	if a.Ref != "" {
		u += "?ref=" + url.QueryEscape(a.Ref)
	}
	return u
}

// TreeURL builds the recursive tree-listing endpoint. When the address has
// no reference the literal "HEAD" is used, letting GitHub pick the branch at
// listing time. That is a separate mechanism from the explicit default-branch
// lookup used for raw download URLs, and the two can disagree for moving
// references; both paths are kept as-is.
func TreeURL(base string, a Address) string {
	ref := a.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return base + "/repos/" + a.Owner + "/" + a.Repo + "/git/trees/" + url.PathEscape(ref) + "?recursive=1"
}

// RawURL builds the raw content URL for one file at the given reference
func RawURL(base string, a Address, path string) string {
	return base + "/" + a.Owner + "/" + a.Repo + "/" + url.PathEscape(a.Ref) + "/" + escapePath(path)
}

// escapePath escapes each path segment while keeping the separators
func escapePath(p string) string {
	if p == "" {
		return ""
	}
	escaped := ""
	for i, seg := range splitPath(p) {
		if i > 0 {
			escaped += "/"
		}
		escaped += url.PathEscape(seg)
	}
	return escaped
}
