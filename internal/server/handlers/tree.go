// Serves the current tree in its browser-facing shape.

package handlers

import (
	"context"

	"github.com/studylenses/studylenses/internal/lenses"
	"github.com/studylenses/studylenses/internal/server/dto"
	"github.com/studylenses/studylenses/internal/session"
	"github.com/studylenses/studylenses/internal/vfs"
)

// TreeHandler serves the session tree.
type TreeHandler struct {
	session *session.Session
}

// NewTreeHandler creates a new tree handler.
func NewTreeHandler(s *session.Session) *TreeHandler {
	return &TreeHandler{session: s}
}

// Tree returns the current tree. By default entries hidden from learners
// (dotfiles, per-directory config files) are filtered out and each file
// carries its preferred lens; full=1 returns everything. Conversion runs
// inside Browse because lens pins and fetch latches mutate under the
// session lock.
func (h *TreeHandler) Tree(ctx context.Context, req *dto.TreeRequest) (*dto.TreeResponse, error) {
	var root *dto.TreeNode
	gen, source, err := h.session.Browse(func(tree *vfs.Dir) {
		root = convertDir(tree, req.Full)
	})
	if err != nil {
		return nil, dto.NoTree()
	}
	return &dto.TreeResponse{
		Root:       root,
		Generation: gen.String(),
		Source:     source,
	}, nil
}

// convertDir maps a vfs directory to its response shape, dropping hidden
// entries unless full is set.
func convertDir(d *vfs.Dir, full bool) *dto.TreeNode {
	out := &dto.TreeNode{
		Name:     d.Name,
		Path:     d.Path,
		IsDir:    true,
		Children: []*dto.TreeNode{},
	}
	for _, child := range d.Children {
		switch c := child.(type) {
		case *vfs.Dir:
			if !full && !lenses.Visible(c.Name) {
				continue
			}
			out.Children = append(out.Children, convertDir(c, full))
		case *vfs.File:
			if !full && !lenses.Visible(c.Name) {
				continue
			}
			out.Children = append(out.Children, convertFile(c))
		}
	}
	return out
}

func convertFile(f *vfs.File) *dto.TreeNode {
	return &dto.TreeNode{
		Name:    f.Name,
		Path:    f.Path,
		Ext:     f.Ext,
		Lang:    f.Lang,
		Lens:    lenses.Preferred(f),
		Fetched: f.Fetched,
	}
}
