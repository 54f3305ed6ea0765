// Package vfs implements the in-memory virtual filesystem a loaded codebase
// is browsed through.
//
// A tree is built once per load (startup snapshot, GitHub fetch, gist fetch,
// upload) and replaces any prior tree wholesale. Node shape is immutable
// after construction; only file content (and the ephemeral study preference)
// mutates in place.
package vfs

import (
	"cmp"
	"slices"
	"strings"
)

// Node is a single entry in the virtual filesystem, either *Dir or *File.
// Consumers discriminate with a type switch.
type Node interface {
	node()
}

// Dir is a directory node. Children keep a canonical order: directories
// before files, then case-insensitive name order.
type Dir struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Parent   string `json:"dir"`
	Root     string `json:"root,omitempty"`
	Children []Node `json:"children"`

	// Depth is the number of ".." segments needed to reach the tree root
	// from this directory. Computed by Annotate, not serialized.
	Depth int `json:"-"`
}

// File is a leaf node. Content may stay empty until lazily fetched.
type File struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Parent string `json:"dir"`
	Root   string `json:"root,omitempty"`

	Ext     string `json:"ext"`
	Base    string `json:"base"`
	Lang    string `json:"lang,omitempty"`
	Content string `json:"content"`

	// Remote provenance for lazy loads. Empty for local sources.
	GitHubRepo string `json:"githubRepo,omitempty"`
	GitHubPath string `json:"githubPath,omitempty"`
	GitHubSize int64  `json:"githubSize,omitempty"`

	// Fetched records whether Content is populated. Snapshot and upload
	// sources set it at build time; remote sources set it on first fetch.
	Fetched bool `json:"-"`

	// StudyLens is the per-session lens preference. Not persisted across
	// tree rebuilds.
	StudyLens string `json:"-"`

	Depth int `json:"-"`
}

func (*Dir) node()  {}
func (*File) node() {}

// Child returns the direct child with the given name, or nil.
func (d *Dir) Child(name string) Node {
	for _, c := range d.Children {
		switch n := c.(type) {
		case *Dir:
			if n.Name == name {
				return n
			}
		case *File:
			if n.Name == name {
				return n
			}
		}
	}
	return nil
}

// ChildFile returns the direct child file with the given name, or nil.
// Directories with a matching name are not returned.
func (d *Dir) ChildFile(name string) *File {
	if f, ok := d.Child(name).(*File); ok {
		return f
	}
	return nil
}

// SortChildren orders every directory's children recursively: directories
// sort before files, same-type siblings by case-insensitive name. Running it
// on an already-sorted tree is a no-op, which keeps tree construction
// deterministic regardless of input order.
func SortChildren(d *Dir) {
	slices.SortStableFunc(d.Children, func(a, b Node) int {
		_, aIsDir := a.(*Dir)
		_, bIsDir := b.(*Dir)
		if aIsDir != bIsDir {
			if aIsDir {
				return -1
			}
			return 1
		}
		return cmp.Compare(strings.ToLower(nodeName(a)), strings.ToLower(nodeName(b)))
	})
	for _, c := range d.Children {
		if sub, ok := c.(*Dir); ok {
			SortChildren(sub)
		}
	}
}

// Walk visits every node depth-first, parents before children, starting at
// and including root. Returning false from fn stops the walk.
func Walk(root *Dir, fn func(Node) bool) {
	if !fn(root) {
		return
	}
	var rec func(*Dir) bool
	rec = func(d *Dir) bool {
		for _, c := range d.Children {
			if !fn(c) {
				return false
			}
			if sub, ok := c.(*Dir); ok {
				if !rec(sub) {
					return false
				}
			}
		}
		return true
	}
	rec(root)
}

// Files collects every file node in traversal order.
func Files(root *Dir) []*File {
	var out []*File
	Walk(root, func(n Node) bool {
		if f, ok := n.(*File); ok {
			out = append(out, f)
		}
		return true
	})
	return out
}

// Annotate walks the tree depth-first, stamping every node with the
// caller-supplied root label and its distance to the tree root. A file's
// Lang defaults to its Ext only when Lang is unset. Annotate is idempotent:
// both the snapshot and upload paths run it independently.
func Annotate(root *Dir, label string) {
	var rec func(d *Dir, depth int)
	rec = func(d *Dir, depth int) {
		d.Root = label
		d.Depth = depth
		for _, c := range d.Children {
			switch n := c.(type) {
			case *Dir:
				rec(n, depth+1)
			case *File:
				n.Root = label
				n.Depth = depth
				if n.Lang == "" {
					n.Lang = n.Ext
				}
			}
		}
	}
	rec(root, 0)
}

// nodeName returns the local name segment of any node.
func nodeName(n Node) string {
	switch t := n.(type) {
	case *Dir:
		return t.Name
	case *File:
		return t.Name
	}
	return ""
}

// nodePath returns the path of any node.
func nodePath(n Node) string {
	switch t := n.(type) {
	case *Dir:
		return t.Path
	case *File:
		return t.Path
	}
	return ""
}

// NormalizePath strips the optional leading slash and any trailing slash.
// Paths are slash-separated and case-sensitive throughout.
func NormalizePath(p string) string {
	return strings.Trim(p, "/")
}

// SplitPath returns the non-empty segments of a path.
func SplitPath(p string) []string {
	var segs []string
	for s := range strings.SplitSeq(NormalizePath(p), "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// parentPath returns everything before the final segment of a normalized
// path, or "" for a top-level entry.
func parentPath(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}
