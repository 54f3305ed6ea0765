// Package session owns the current virtual filesystem tree.
//
// The original application kept one module-level tree mutated by loaders and
// read everywhere else. Here the tree lives in an explicit Session handle:
// loaders swap the whole tree atomically and every read goes through the
// handle, which removes the stale-reference-after-rebuild hazard.
//
// Node shape (names, paths, children) is immutable after construction, but
// Content, Fetched, and StudyLens mutate under the session lock. Readers
// therefore never get live file nodes: lookups return FileView copies taken
// under the lock, and tree walks run inside Browse.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maruel/ksid"
	"github.com/studylenses/studylenses/internal/github"
	"github.com/studylenses/studylenses/internal/lenscfg"
	"github.com/studylenses/studylenses/internal/vfs"
)

// ErrNoTree is returned when no codebase has been loaded yet.
var ErrNoTree = errors.New("no tree loaded")

// ErrNotFound is returned when a path does not resolve in the current tree.
// Callers apply the fallback policy (similar file, then random, then none).
var ErrNotFound = errors.New("file not found")

// Fetcher retrieves remote file content. Satisfied by *github.Client.
type Fetcher interface {
	Blob(ctx context.Context, ref github.RepoRef, path string) (string, error)
}

// FileView is a copy of one file's state taken under the session lock.
type FileView struct {
	Name      string
	Path      string
	Ext       string
	Lang      string
	Content   string
	Fetched   bool
	StudyLens string

	GitHubRepo string
	GitHubPath string
	GitHubSize int64
}

func viewOf(f *vfs.File) FileView {
	return FileView{
		Name:       f.Name,
		Path:       f.Path,
		Ext:        f.Ext,
		Lang:       f.Lang,
		Content:    f.Content,
		Fetched:    f.Fetched,
		StudyLens:  f.StudyLens,
		GitHubRepo: f.GitHubRepo,
		GitHubPath: f.GitHubPath,
		GitHubSize: f.GitHubSize,
	}
}

// Session holds the single current tree plus the provenance needed for lazy
// content fetches. Each Replace bumps the generation: lazy fetches started
// against an earlier generation serve their caller but are not memoized into
// the new tree (decision for the in-flight-fetch-across-reload gap).
type Session struct {
	fetcher Fetcher

	mu     sync.RWMutex
	tree   *vfs.Dir
	gen    ksid.ID
	source string
	remote *github.RepoRef
}

// New creates an empty session. fetcher may be nil when no remote source
// will ever be used (tests, snapshot-only deployments).
func New(fetcher Fetcher) *Session {
	return &Session{fetcher: fetcher}
}

// Replace installs a freshly built tree, discarding the previous one
// wholesale. source is a human-readable origin label ("snapshot",
// "github:owner/repo@main", ...) that also becomes the tree's root
// annotation. remote carries blob-fetch provenance for GitHub loads and is
// nil for local sources. Returns the new generation ID.
func (s *Session) Replace(tree *vfs.Dir, source string, remote *github.RepoRef) ksid.ID {
	vfs.Annotate(tree, source)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree
	s.gen = ksid.NewID()
	s.source = source
	s.remote = remote
	return s.gen
}

// Tree returns the current tree with its generation and source label.
// The tree is nil until the first Replace. Callers may read node shape
// (names, paths, children), which is immutable; mutable node fields must be
// read through FileView lookups or Browse instead.
func (s *Session) Tree() (*vfs.Dir, ksid.ID, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree, s.gen, s.source
}

// Browse runs fn on the current tree while holding the session read lock,
// so fn may read the mutable node fields. fn must not retain node pointers
// past the call. Returns the generation and source label of the browsed tree.
func (s *Session) Browse(fn func(root *vfs.Dir)) (ksid.ID, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		var zero ksid.ID
		return zero, "", ErrNoTree
	}
	fn(s.tree)
	return s.gen, s.source, nil
}

// findLocked resolves a path in the current tree. Caller holds s.mu.
func (s *Session) findLocked(path string) (*vfs.File, error) {
	if s.tree == nil {
		return nil, ErrNoTree
	}
	f, ok := vfs.FindFile(s.tree, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return f, nil
}

// Find resolves a path in the current tree.
func (s *Session) Find(path string) (FileView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := s.findLocked(path)
	if err != nil {
		return FileView{}, err
	}
	return viewOf(f), nil
}

// Fallback applies the lookup fallback policy for an absent path: a similar
// file first, then a random file. Returns ErrNoTree / ErrNotFound when the
// tree is missing or empty.
func (s *Session) Fallback(path string) (FileView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return FileView{}, ErrNoTree
	}
	if f, ok := vfs.FindSimilarFile(s.tree, path); ok {
		return viewOf(f), nil
	}
	if f, ok := vfs.RandomFile(s.tree); ok {
		return viewOf(f), nil
	}
	return FileView{}, fmt.Errorf("%w: %s (empty tree)", ErrNotFound, path)
}

// Random returns an arbitrary file from the current tree.
func (s *Session) Random() (FileView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return FileView{}, ErrNoTree
	}
	if f, ok := vfs.RandomFile(s.tree); ok {
		return viewOf(f), nil
	}
	return FileView{}, fmt.Errorf("%w: empty tree", ErrNotFound)
}

// Content returns a file's content, fetching it from the remote source on
// first access. Remote files are fetched once: the per-node latch flips when
// the fetch is memoized. If the tree was replaced while the fetch was in
// flight, the content is still served to the requester but the detached node
// is left alone.
func (s *Session) Content(ctx context.Context, path string) (string, error) {
	s.mu.RLock()
	f, err := s.findLocked(path)
	if err != nil {
		s.mu.RUnlock()
		return "", err
	}
	gen, remote := s.gen, s.remote
	if f.Fetched || remote == nil || s.fetcher == nil {
		// Fetched, or a local source with nothing recorded (treat as empty).
		content := f.Content
		s.mu.RUnlock()
		return content, nil
	}
	ghPath := f.GitHubPath
	s.mu.RUnlock()

	content, err := s.fetcher.Blob(ctx, *remote, ghPath)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		slog.DebugContext(ctx, "Tree replaced during fetch, result not memoized", "path", path)
		return content, nil
	}
	// Same generation, so f is still the node in the current tree.
	f.Content = content
	f.Fetched = true
	return content, nil
}

// SetContent edits a file in place. Shape never changes after construction;
// content is the one mutable piece of a node.
func (s *Session) SetContent(path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.findLocked(path)
	if err != nil {
		return err
	}
	f.Content = content
	f.Fetched = true
	return nil
}

// SetStudyLens records the ephemeral per-session lens preference for a file.
// The preference dies with the tree on the next Replace.
func (s *Session) SetStudyLens(path, lens string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.findLocked(path)
	if err != nil {
		return err
	}
	f.StudyLens = lens
	return nil
}

// ResolveConfig computes the effective lens configuration for a file path
// against the current tree. Recomputed on every call; tree depth is small
// and recompute keeps the cascade trivially consistent across reloads. Held
// under the read lock because the cascade reads config file contents, which
// an instructor edit can rewrite.
func (s *Session) ResolveConfig(ctx context.Context, path string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tree == nil {
		return nil, ErrNoTree
	}
	return lenscfg.Resolve(ctx, s.tree, path), nil
}
