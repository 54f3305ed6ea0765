package dto

import "encoding/json"

// TreeNode is one entry of the tree response. Directories carry a children
// array (possibly empty, never null); files carry the file-only fields and
// no children key at all. The key's presence is the discriminator, so
// marshalling is explicit rather than relying on omitempty.
type TreeNode struct {
	Name string `json:"name"`
	Path string `json:"path"`
	// IsDir selects the directory shape when marshalling.
	IsDir    bool        `json:"-"`
	Children []*TreeNode `json:"children,omitempty"`
	// File-only fields.
	Ext     string `json:"ext,omitempty"`
	Lang    string `json:"lang,omitempty"`
	Lens    string `json:"lens,omitempty"`
	Fetched bool   `json:"fetched,omitempty"`
}

type treeDirJSON struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Children []*TreeNode `json:"children"`
}

type treeFileJSON struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Ext     string `json:"ext"`
	Lang    string `json:"lang"`
	Lens    string `json:"lens,omitempty"`
	Fetched bool   `json:"fetched,omitempty"`
}

// MarshalJSON emits the directory shape (children always present) or the
// file shape (no children key).
func (n *TreeNode) MarshalJSON() ([]byte, error) {
	if n.IsDir {
		children := n.Children
		if children == nil {
			children = []*TreeNode{}
		}
		return json.Marshal(treeDirJSON{Name: n.Name, Path: n.Path, Children: children})
	}
	return json.Marshal(treeFileJSON{
		Name: n.Name, Path: n.Path, Ext: n.Ext, Lang: n.Lang,
		Lens: n.Lens, Fetched: n.Fetched,
	})
}

// TreeResponse is the GET /api/tree payload.
type TreeResponse struct {
	Root *TreeNode `json:"root"`
	// Generation changes whenever the tree is replaced. Clients use it to
	// detect that cached paths may no longer resolve.
	Generation string `json:"generation"`
	// Source describes where the tree came from, e.g. "owner/repo@main",
	// "snapshot", "upload:project".
	Source string `json:"source"`
}

// FileResponse is the GET/PUT /api/files payload.
type FileResponse struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Ext     string `json:"ext"`
	Lang    string `json:"lang"`
	Lens    string `json:"lens"`
	Content string `json:"content"`
	// ResolvedFrom is set when a fallback substituted this file for the
	// path the client actually asked for.
	ResolvedFrom string `json:"resolvedFrom,omitempty"`
}

// ConfigResponse is the effective lens configuration for a path.
type ConfigResponse struct {
	Path   string         `json:"path"`
	Config map[string]any `json:"config"`
}

// LoadResponse reports the outcome of a load operation.
type LoadResponse struct {
	Source     string `json:"source"`
	Generation string `json:"generation"`
	Files      int    `json:"files"`
	Dirs       int    `json:"dirs"`
}

// LoginResponse carries the instructor bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// HealthResponse is the GET /api/health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
