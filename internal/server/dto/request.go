package dto

import (
	"net/http"
	"strings"
)

// EmptyRequest is for endpoints that take no input.
type EmptyRequest struct{}

// Validate implements Validatable.
func (r *EmptyRequest) Validate() error { return nil }

// TreeRequest asks for the current tree. Learner defaults to the browser
// view: hidden entries filtered, preferred lens attached to every file.
type TreeRequest struct {
	// Full includes hidden entries (dotfiles, per-directory config files).
	Full bool `query:"full"`
}

// Validate implements Validatable.
func (r *TreeRequest) Validate() error { return nil }

// FileRequest addresses a file by its slash-separated path within the tree.
type FileRequest struct {
	Path string `path:"path"`
	// Fallback controls what a miss returns: "similar" substitutes a
	// nearby file, "random" any file, empty means plain 404.
	Fallback string `query:"fallback"`
}

// Validate implements Validatable.
func (r *FileRequest) Validate() error {
	if r.Path == "" {
		return BadRequest("path is required")
	}
	if r.Fallback != "" && r.Fallback != "similar" && r.Fallback != "random" {
		return BadRequest("fallback must be similar or random")
	}
	return nil
}

// UpdateFileRequest replaces a file's content in the session.
type UpdateFileRequest struct {
	Path    string `path:"path" json:"-"`
	Content string `json:"content"`
}

// Validate implements Validatable.
func (r *UpdateFileRequest) Validate() error {
	if r.Path == "" {
		return BadRequest("path is required")
	}
	return nil
}

// LensRequest pins a study lens on a file for the rest of the session.
type LensRequest struct {
	Path string `path:"path" json:"-"`
	Lens string `json:"lens"`
}

// Validate implements Validatable.
func (r *LensRequest) Validate() error {
	if r.Path == "" {
		return BadRequest("path is required")
	}
	if r.Lens == "" {
		return BadRequest("lens is required")
	}
	return nil
}

// ConfigRequest resolves the effective lens configuration for a path.
type ConfigRequest struct {
	Path string `path:"path"`
}

// Validate implements Validatable.
func (r *ConfigRequest) Validate() error { return nil }

// LoadGitHubRequest loads a public repository into the session.
type LoadGitHubRequest struct {
	// URL accepts the forms https://github.com/owner/repo and
	// https://github.com/owner/repo/tree/branch/sub/dir.
	URL string `json:"url"`
}

// Validate implements Validatable.
func (r *LoadGitHubRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return BadRequest("url is required")
	}
	return nil
}

// LoadGistRequest loads a gist into the session.
type LoadGistRequest struct {
	ID string `json:"id"`
}

// Validate implements Validatable.
func (r *LoadGistRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return BadRequest("id is required")
	}
	return nil
}

// UploadFile is one file of a browser upload, path relative to the
// dropped directory.
type UploadFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// LoadUploadRequest replaces the session tree with uploaded files.
type LoadUploadRequest struct {
	Name  string       `json:"name"`
	Files []UploadFile `json:"files"`
}

// Validate implements Validatable.
func (r *LoadUploadRequest) Validate() error {
	if len(r.Files) == 0 {
		return BadRequest("at least one file is required")
	}
	for _, f := range r.Files {
		if strings.TrimSpace(f.Path) == "" {
			return BadRequest("every file needs a path")
		}
	}
	return nil
}

// LoginRequest authenticates the instructor.
type LoginRequest struct {
	Password string `json:"password"`
}

// Validate implements Validatable.
func (r *LoginRequest) Validate() error {
	if r.Password == "" {
		return NewAPIError(http.StatusBadRequest, ErrorCodeValidationFailed, "password is required")
	}
	return nil
}
