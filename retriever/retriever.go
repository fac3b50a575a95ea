package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ghgrab/cli/logger"
	"github.com/ghgrab/cli/resolver"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "ghgrab/1.0"
)

// FileDescriptor is one discovered file: where it lives in the repository
// and where its raw bytes can be fetched from. Size and SHA are best-effort
// metadata reported by the API, never verified against downloaded content.
type FileDescriptor struct {
	Path        string
	DownloadURL string
	Size        int64
	SHA         string
}

// APIError is a non-success status from a required API call
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GitHub API returned status %d", e.Status)
	}
	return fmt.Sprintf("GitHub API returned status %d: %s", e.Status, e.Message)
}

// DownloadError is a non-success status while fetching one file's bytes
type DownloadError struct {
	Status int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed with status %d", e.Status)
}

// ErrMalformedResponse marks a tree-listing response without a tree field
var ErrMalformedResponse = errors.New("malformed tree listing response")

// Client talks to the GitHub REST API and the raw content host.
// All calls are sequential; one Client is safe to reuse across them.
type Client struct {
	httpClient *http.Client
	token      string

	// APIBase and RawBase default to the public GitHub hosts and are
	// overridable for tests.
	APIBase string
	RawBase string
}

// New creates a Client. An empty token means unauthenticated requests,
// subject to GitHub's anonymous rate limits.
func New(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		token:      token,
		APIBase:    resolver.DefaultAPIBase,
		RawBase:    resolver.DefaultRawBase,
	}
}

// treeResponse is the recursive git/trees payload. Tree is a pointer so a
// payload without the field can be told apart from an empty listing.
type treeResponse struct {
	Tree      *[]treeEntry `json:"tree"`
	Truncated bool         `json:"truncated"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	SHA  string `json:"sha"`
}

type repoResponse struct {
	DefaultBranch string `json:"default_branch"`
}

type contentsResponse struct {
	Size int64  `json:"size"`
	SHA  string `json:"sha"`
}

// DefaultBranch looks up the repository's default branch name
func (c *Client) DefaultBranch(ctx context.Context, a resolver.Address) (string, error) {
	var repo repoResponse
	if err := c.getJSON(ctx, resolver.RepoURL(c.APIBase, a), &repo); err != nil {
		return "", fmt.Errorf("resolving default branch for %s/%s: %w", a.Owner, a.Repo, err)
	}
	logger.Debug("resolved default branch", "repo", a.Owner+"/"+a.Repo, "branch", repo.DefaultBranch)
	return repo.DefaultBranch, nil
}

// Discover turns an address into the flat list of downloadable files.
//
// The address itself is never mutated: when it carries no reference the
// default branch is resolved once here and threaded into the raw download
// URLs. The tree listing request is still built from the original address,
// so an absent reference lists against the literal HEAD; GitHub's HEAD and
// the queried default branch can in principle disagree for moving
// references, and both lookups are kept separate on purpose.
//
// onProgress, when non-nil, is invoked with the running descriptor count
// after each emission.
func (c *Client) Discover(ctx context.Context, a resolver.Address, onProgress func(n int)) ([]FileDescriptor, error) {
	ref := a.Ref
	if ref == "" {
		branch, err := c.DefaultBranch(ctx, a)
		if err != nil {
			return nil, err
		}
		ref = branch
	}
	pinned := a.WithRef(ref)

	if a.Kind == resolver.KindBlob {
		desc := FileDescriptor{
			Path:        a.Path,
			DownloadURL: resolver.RawURL(c.RawBase, pinned, a.Path),
		}
		// Size and SHA are an enrichment, not a requirement: a failed
		// metadata call leaves them zero and the download proceeds.
		if meta, ok := c.enrich(ctx, pinned); ok {
			desc.Size = meta.Size
			desc.SHA = meta.SHA
		}
		if onProgress != nil {
			onProgress(1)
		}
		return []FileDescriptor{desc}, nil
	}

	var listing treeResponse
	if err := c.getJSON(ctx, resolver.TreeURL(c.APIBase, a), &listing); err != nil {
		return nil, fmt.Errorf("listing tree for %s/%s: %w", a.Owner, a.Repo, err)
	}
	if listing.Tree == nil {
		return nil, ErrMalformedResponse
	}
	if listing.Truncated {
		logger.Warn("tree listing truncated by GitHub", "repo", a.Owner+"/"+a.Repo)
	}

	var descs []FileDescriptor
	for _, entry := range *listing.Tree {
		if entry.Type == "tree" {
			continue
		}
		if a.Path != "" {
			if entry.Path == a.Path {
				// The folder URL actually points at a single file:
				// emit it alone and stop scanning.
				desc := c.describe(pinned, entry)
				if onProgress != nil {
					onProgress(1)
				}
				return []FileDescriptor{desc}, nil
			}
			if !strings.HasPrefix(entry.Path, a.Path+"/") {
				continue
			}
		}
		descs = append(descs, c.describe(pinned, entry))
		if onProgress != nil {
			onProgress(len(descs))
		}
	}

	logger.Debug("discovery complete", "files", len(descs))
	return descs, nil
}

func (c *Client) describe(pinned resolver.Address, entry treeEntry) FileDescriptor {
	return FileDescriptor{
		Path:        entry.Path,
		DownloadURL: resolver.RawURL(c.RawBase, pinned, entry.Path),
		Size:        entry.Size,
		SHA:         entry.SHA,
	}
}

// enrichment holds optional single-file metadata. The second return value of
// enrich reports whether it is usable; absence is an expected outcome, not an
// error path.
type enrichment struct {
	Size int64
	SHA  string
}

func (c *Client) enrich(ctx context.Context, pinned resolver.Address) (enrichment, bool) {
	var contents contentsResponse
	if err := c.getJSON(ctx, resolver.ContentsURL(c.APIBase, pinned), &contents); err != nil {
		logger.Debug("file metadata lookup failed", "path", pinned.Path, "error", err)
		return enrichment{}, false
	}
	return enrichment{Size: contents.Size, SHA: contents.SHA}, true
}

// DownloadBytes fetches one file's raw bytes. No retry, no batching; each
// call stands alone.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DownloadError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body from %s: %w", url, err)
	}
	return data, nil
}

// getJSON issues a GET and decodes a JSON payload, converting any
// non-success status into an APIError with the server's message.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: apiMessage(body)}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return resp, nil
}

// apiMessage pulls the message field out of a GitHub error payload
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
