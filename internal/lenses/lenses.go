// Package lenses names the pluggable views a file can be studied through
// and decides which one a file opens with by default. The views themselves
// render in the browser; this side only picks names.
package lenses

import (
	"strings"

	"github.com/studylenses/studylenses/internal/lenscfg"
	"github.com/studylenses/studylenses/internal/vfs"
)

// Known lens names.
const (
	Editor     = "editor"
	Study      = "study"
	Flashcards = "flashcards"
	Blanks     = "blanks"
	Flowchart  = "flowchart"
	Markdown   = "markdown"
	Asset      = "asset"
)

// Known reports whether name is a recognized lens.
func Known(name string) bool {
	switch name {
	case Editor, Study, Flashcards, Blanks, Flowchart, Markdown, Asset:
		return true
	}
	return false
}

// DefaultForExt picks the lens a file opens with when neither the session
// preference nor the cascade says otherwise.
func DefaultForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return Markdown
	case ".svg":
		return Asset
	default:
		return Editor
	}
}

// DefaultForFile is DefaultForExt applied to a tree node.
func DefaultForFile(f *vfs.File) string {
	return DefaultForExt(f.Ext)
}

// PreferredFor returns the lens to open a file with: the ephemeral session
// preference wins, then the extension default.
func PreferredFor(studyLens, ext string) string {
	if studyLens != "" {
		return studyLens
	}
	return DefaultForExt(ext)
}

// Preferred is PreferredFor applied to a tree node. The caller must hold the
// lock guarding the node, since the study-lens pin is mutable.
func Preferred(f *vfs.File) string {
	return PreferredFor(f.StudyLens, f.Ext)
}

// Visible is the browser-view boundary contract: the per-directory config
// file and dot-prefixed names are hidden from the learner-facing tree.
func Visible(name string) bool {
	return name != lenscfg.ConfigFileName && !strings.HasPrefix(name, ".")
}
