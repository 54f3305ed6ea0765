// Path lookup and the fallback heuristics used when a requested path is gone
// (typically after the tree was rebuilt from a different source).

package vfs

import (
	"math/rand/v2"
	"strings"
)

// FindFile resolves an absolute path to a file node. The leading slash is
// optional. A miss is not an error: the second return is false when any
// segment is absent, when an intermediate node is a file, or when the
// terminal node is a directory.
func FindFile(root *Dir, p string) (*File, bool) {
	segs := SplitPath(p)
	if len(segs) == 0 {
		return nil, false
	}
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur.Child(seg).(*Dir)
		if !ok {
			return nil, false
		}
		cur = next
	}
	f := cur.ChildFile(segs[len(segs)-1])
	if f == nil {
		return nil, false
	}
	return f, true
}

// RandomFile returns a uniformly-random file node, the last-resort fallback
// when a requested path is absent. False on an empty tree.
func RandomFile(root *Dir) (*File, bool) {
	files := Files(root)
	if len(files) == 0 {
		return nil, false
	}
	return files[rand.IntN(len(files))], true
}

// FindSimilarFile is a best-effort nearest-match: it prefers a file whose
// directory is a prefix or suffix of the requested file's directory, then
// any file whose path contains one of the requested path's segments. Ties
// break on traversal order. False when the tree is empty or nothing relates.
func FindSimilarFile(root *Dir, requested string) (*File, bool) {
	files := Files(root)
	if len(files) == 0 {
		return nil, false
	}

	requested = NormalizePath(requested)
	wantDir := parentPath(requested)
	if wantDir != "" {
		for _, f := range files {
			if f.Parent == "" {
				continue
			}
			if strings.HasPrefix(f.Parent, wantDir) || strings.HasPrefix(wantDir, f.Parent) ||
				strings.HasSuffix(f.Parent, wantDir) || strings.HasSuffix(wantDir, f.Parent) {
				return f, true
			}
		}
	}

	for _, seg := range SplitPath(requested) {
		for _, f := range files {
			if strings.Contains(f.Path, seg) {
				return f, true
			}
		}
	}
	return nil, false
}
