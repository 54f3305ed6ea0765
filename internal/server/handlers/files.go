// Handles file reads, edits, and lens pinning.

package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/studylenses/studylenses/internal/github"
	"github.com/studylenses/studylenses/internal/lenses"
	"github.com/studylenses/studylenses/internal/server/dto"
	"github.com/studylenses/studylenses/internal/session"
	"github.com/studylenses/studylenses/internal/vfs"
)

// FilesHandler handles file content requests.
type FilesHandler struct {
	session *session.Session
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(s *session.Session) *FilesHandler {
	return &FilesHandler{session: s}
}

// GetFile returns one file with its content, fetching lazily for remote
// sources. A miss honors the fallback query parameter: "similar" substitutes
// a nearby file, "random" any file; otherwise 404.
func (h *FilesHandler) GetFile(ctx context.Context, req *dto.FileRequest) (*dto.FileResponse, error) {
	path := vfs.NormalizePath(req.Path)
	f, err := h.session.Find(path)
	resolvedFrom := ""
	switch {
	case errors.Is(err, session.ErrNoTree):
		return nil, dto.NoTree()
	case errors.Is(err, session.ErrNotFound):
		if req.Fallback == "" {
			return nil, dto.FileNotFound(path)
		}
		f, err = h.fallback(path, req.Fallback)
		if err != nil {
			return nil, dto.FileNotFound(path)
		}
		slog.InfoContext(ctx, "Substituted fallback file", "requested", path, "served", f.Path)
		resolvedFrom = path
	case err != nil:
		return nil, err
	}

	content, err := h.session.Content(ctx, f.Path)
	if err != nil {
		if errors.Is(err, github.ErrTooLarge) {
			return nil, dto.FileTooLarge(err)
		}
		return nil, dto.Upstream("failed to fetch file content", err)
	}
	return fileResponse(f, content, resolvedFrom), nil
}

// UpdateFile replaces a file's content in the session. The shape of the tree
// never changes; content is the one mutable piece.
func (h *FilesHandler) UpdateFile(ctx context.Context, req *dto.UpdateFileRequest) (*dto.FileResponse, error) {
	path := vfs.NormalizePath(req.Path)
	if err := h.session.SetContent(path, req.Content); err != nil {
		return nil, mapSessionError(err, path)
	}
	f, err := h.session.Find(path)
	if err != nil {
		return nil, mapSessionError(err, path)
	}
	return fileResponse(f, req.Content, ""), nil
}

// SetLens pins a study lens on a file for the rest of the session.
func (h *FilesHandler) SetLens(ctx context.Context, req *dto.LensRequest) (*dto.FileResponse, error) {
	if !lenses.Known(req.Lens) {
		return nil, dto.BadRequest("unknown lens: " + req.Lens)
	}
	path := vfs.NormalizePath(req.Path)
	if err := h.session.SetStudyLens(path, req.Lens); err != nil {
		return nil, mapSessionError(err, path)
	}
	f, err := h.session.Find(path)
	if err != nil {
		return nil, mapSessionError(err, path)
	}
	return fileResponse(f, f.Content, ""), nil
}

func (h *FilesHandler) fallback(path, mode string) (session.FileView, error) {
	if mode == "random" {
		return h.session.Random()
	}
	return h.session.Fallback(path)
}

func fileResponse(f session.FileView, content, resolvedFrom string) *dto.FileResponse {
	return &dto.FileResponse{
		Name:         f.Name,
		Path:         f.Path,
		Ext:          f.Ext,
		Lang:         f.Lang,
		Lens:         lenses.PreferredFor(f.StudyLens, f.Ext),
		Content:      content,
		ResolvedFrom: resolvedFrom,
	}
}

// mapSessionError converts session errors into their API shape.
func mapSessionError(err error, path string) error {
	switch {
	case errors.Is(err, session.ErrNoTree):
		return dto.NoTree()
	case errors.Is(err, session.ErrNotFound):
		return dto.FileNotFound(path)
	default:
		return err
	}
}
