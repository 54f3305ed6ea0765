// Package github is a minimal GitHub REST client covering what tree loading
// needs: repository URL parsing, recursive git-tree listing, lazy blob
// content, and gist fetching.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// MaxFileBytes is the hard per-file fetch ceiling. A blob whose decoded
// content exceeds it fails with a descriptive error; the tree node stays
// present with unpopulated content. Distinct from the 100 KiB listing filter
// applied during tree construction.
const MaxFileBytes = 1 << 20

// ErrTooLarge marks a blob over the fetch ceiling, before or after decoding.
var ErrTooLarge = errors.New("file over fetch ceiling")

// RepoRef identifies a repository subtree to load.
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
	Path   string // optional in-repo path filter, no leading slash
}

// String renders the ref as owner/repo@branch.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo + "@" + r.Branch
}

// repoURLRe matches https://github.com/OWNER/REPO[/tree/BRANCH[/PATH]] with
// an optional trailing slash or .git suffix.
var repoURLRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/tree/([^/]+)(/[^?#]*)?)?/?$`)

// ParseRepoURL parses a repository URL into a RepoRef. The branch defaults
// to main. A URL that does not match the expected shape fails fast; no
// partial ref is produced.
func ParseRepoURL(raw string) (RepoRef, error) {
	m := repoURLRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return RepoRef{}, fmt.Errorf("not a recognized GitHub repository URL: %q", raw)
	}
	ref := RepoRef{Owner: m[1], Repo: m[2], Branch: m[3], Path: strings.Trim(m[4], "/")}
	if ref.Branch == "" {
		ref.Branch = "main"
	}
	return ref, nil
}

// TreeEntry is one blob descriptor from the git-tree API.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Client talks to the GitHub REST API. The zero value is not usable; use
// NewClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client. A non-empty token authenticates requests via
// a static oauth2 token source, raising the unauthenticated rate limit.
func NewClient(token string) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
	}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		c.httpClient = oauth2.NewClient(context.Background(), src)
		c.httpClient.Timeout = 30 * time.Second
	}
	return c
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Tree fetches the recursive git tree for a branch and returns its blob
// entries. An API-reported truncation is logged, not fatal: the resulting
// tree is simply incomplete.
func (c *Client) Tree(ctx context.Context, ref RepoRef) ([]TreeEntry, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.baseURL, ref.Owner, ref.Repo, url.PathEscape(ref.Branch))
	var result struct {
		Tree      []TreeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("failed to list tree for %s: %w", ref, err)
	}
	if result.Truncated {
		slog.WarnContext(ctx, "GitHub tree listing truncated, tree will be incomplete", "repo", ref.String())
	}
	blobs := result.Tree[:0]
	for _, e := range result.Tree {
		if e.Type == "blob" {
			blobs = append(blobs, e)
		}
	}
	return blobs, nil
}

// Blob fetches one file's content via the contents API and decodes its
// base64 transport encoding. Content over MaxFileBytes is rejected before
// and after decoding.
func (c *Client) Blob(ctx context.Context, ref RepoRef, path string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, ref.Owner, ref.Repo, escapePath(path), url.QueryEscape(ref.Branch))
	var result struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		Size     int64  `json:"size"`
	}
	if err := c.getJSON(ctx, u, &result); err != nil {
		return "", fmt.Errorf("failed to fetch %s from %s: %w", path, ref, err)
	}
	if result.Size > MaxFileBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, ceiling is %d", ErrTooLarge, path, result.Size, MaxFileBytes)
	}
	if result.Encoding != "base64" {
		return "", fmt.Errorf("unexpected content encoding %q for %s", result.Encoding, path)
	}
	// The API wraps base64 at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(result.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %w", path, err)
	}
	if len(raw) > MaxFileBytes {
		return "", fmt.Errorf("%w: %s decoded to %d bytes, ceiling is %d", ErrTooLarge, path, len(raw), MaxFileBytes)
	}
	return string(raw), nil
}

// GistFile is one file of a gist.
type GistFile struct {
	Name    string
	Content string
}

// Gist fetches all files of a gist by ID.
func (c *Client) Gist(ctx context.Context, id string) ([]GistFile, error) {
	u := fmt.Sprintf("%s/gists/%s", c.baseURL, url.PathEscape(id))
	var result struct {
		Files map[string]struct {
			Content   string `json:"content"`
			Truncated bool   `json:"truncated"`
		} `json:"files"`
	}
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch gist %s: %w", id, err)
	}
	files := make([]GistFile, 0, len(result.Files))
	for name, f := range result.Files {
		if f.Truncated {
			slog.WarnContext(ctx, "Gist file truncated", "gist", id, "file", name)
		}
		files = append(files, GistFile{Name: name, Content: f.Content})
	}
	return files, nil
}

// getJSON performs a GET and decodes the JSON response. Non-2xx statuses
// are errors carrying the response body.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// escapePath escapes each path segment while preserving separators.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
