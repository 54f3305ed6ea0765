// Handles tree replacement from GitHub repositories, gists, and uploads.

package handlers

import (
	"context"
	"log/slog"

	"github.com/studylenses/studylenses/internal/github"
	"github.com/studylenses/studylenses/internal/server/dto"
	"github.com/studylenses/studylenses/internal/session"
	"github.com/studylenses/studylenses/internal/vfs"
)

// LoadHandler replaces the session tree from an external source.
type LoadHandler struct {
	session *session.Session
	github  *github.Client
}

// NewLoadHandler creates a new load handler.
func NewLoadHandler(s *session.Session, gh *github.Client) *LoadHandler {
	return &LoadHandler{session: s, github: gh}
}

// LoadGitHub lists a repository (or subtree) via the git-tree API and
// installs it as the new session tree. Content is not downloaded here; files
// carry provenance and are fetched lazily on first read.
func (h *LoadHandler) LoadGitHub(ctx context.Context, req *dto.LoadGitHubRequest) (*dto.LoadResponse, error) {
	ref, err := github.ParseRepoURL(req.URL)
	if err != nil {
		return nil, dto.BadRepoURL(err)
	}
	listing, err := h.github.Tree(ctx, ref)
	if err != nil {
		return nil, dto.Upstream("failed to list repository tree", err)
	}

	entries := make([]vfs.Entry, 0, len(listing))
	sizes := make(map[string]int64, len(listing))
	for _, e := range listing {
		entries = append(entries, vfs.Entry{Path: e.Path, Size: e.Size})
		sizes[e.Path] = e.Size
	}
	tree := vfs.BuildFromEntries(entries, ref.Path)
	for _, f := range vfs.Files(tree) {
		full := f.Path
		if ref.Path != "" {
			full = ref.Path + "/" + f.Path
		}
		f.GitHubRepo = ref.String()
		f.GitHubPath = full
		f.GitHubSize = sizes[full]
	}

	gen := h.session.Replace(tree, ref.String(), &ref)
	slog.InfoContext(ctx, "Loaded repository", "repo", ref.String(), "files", len(vfs.Files(tree)))
	return loadResponse(tree, ref.String(), gen.String()), nil
}

// LoadGist installs a gist's files as the new session tree. Gists are flat
// and small; everything arrives with content in one call.
func (h *LoadHandler) LoadGist(ctx context.Context, req *dto.LoadGistRequest) (*dto.LoadResponse, error) {
	files, err := h.github.Gist(ctx, req.ID)
	if err != nil {
		return nil, dto.Upstream("failed to fetch gist", err)
	}
	uploads := make([]vfs.Upload, 0, len(files))
	for _, f := range files {
		uploads = append(uploads, vfs.Upload{Path: f.Name, Content: f.Content})
	}
	tree := vfs.BuildFromUploads(uploads)
	source := "gist:" + req.ID
	gen := h.session.Replace(tree, source, nil)
	return loadResponse(tree, source, gen.String()), nil
}

// LoadUpload installs browser-uploaded files as the new session tree.
func (h *LoadHandler) LoadUpload(ctx context.Context, req *dto.LoadUploadRequest) (*dto.LoadResponse, error) {
	uploads := make([]vfs.Upload, 0, len(req.Files))
	for _, f := range req.Files {
		uploads = append(uploads, vfs.Upload{Path: f.Path, Content: f.Content})
	}
	tree := vfs.BuildFromUploads(uploads)
	source := "upload"
	if req.Name != "" {
		source = "upload:" + req.Name
	}
	gen := h.session.Replace(tree, source, nil)
	return loadResponse(tree, source, gen.String()), nil
}

func loadResponse(tree *vfs.Dir, source, gen string) *dto.LoadResponse {
	files, dirs := 0, 0
	vfs.Walk(tree, func(n vfs.Node) bool {
		switch n.(type) {
		case *vfs.Dir:
			dirs++
		case *vfs.File:
			files++
		}
		return true
	})
	// Walk includes the root; report subdirectories only.
	return &dto.LoadResponse{Source: source, Generation: gen, Files: files, Dirs: dirs - 1}
}
