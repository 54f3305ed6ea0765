// Resolves effective lens configuration for tree paths.

package handlers

import (
	"context"
	"errors"

	"github.com/studylenses/studylenses/internal/server/dto"
	"github.com/studylenses/studylenses/internal/session"
	"github.com/studylenses/studylenses/internal/vfs"
)

// ConfigHandler resolves the lens configuration cascade.
type ConfigHandler struct {
	session *session.Session
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(s *session.Session) *ConfigHandler {
	return &ConfigHandler{session: s}
}

// Config returns the effective configuration for a path: every lenses.json
// from the root down to the path's directory, deep-merged root first. The
// path does not have to resolve to an existing file; the cascade follows
// whatever ancestor directories do exist.
func (h *ConfigHandler) Config(ctx context.Context, req *dto.ConfigRequest) (*dto.ConfigResponse, error) {
	path := vfs.NormalizePath(req.Path)
	cfg, err := h.session.ResolveConfig(ctx, path)
	if err != nil {
		if errors.Is(err, session.ErrNoTree) {
			return nil, dto.NoTree()
		}
		return nil, err
	}
	return &dto.ConfigResponse{Path: path, Config: cfg}, nil
}
