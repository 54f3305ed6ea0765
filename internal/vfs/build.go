// Tree construction from flat listings (remote tree API, browser uploads).

package vfs

import (
	"path"
	"strings"
)

// MaxListedFileBytes is the size ceiling applied while building a tree from a
// flat listing. Larger entries are treated as non-text and excluded from the
// tree entirely. Distinct from the per-file fetch ceiling enforced when
// content is actually retrieved (see the github package).
const MaxListedFileBytes = 100 << 10

// binaryExts lists extensions excluded from tree construction as non-text.
var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".ico": true, ".bmp": true, ".tiff": true,
	".pdf": true, ".zip": true, ".gz": true, ".tar": true, ".7z": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".wav": true, ".ogg": true, ".webm": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".wasm": true,
	".jar": true, ".class": true, ".pyc": true,
}

// Entry is one blob descriptor from a flat listing. Order is arbitrary; the
// build step sorts.
type Entry struct {
	Path string
	Size int64
}

// Upload is one browser-uploaded file.
type Upload struct {
	Path    string
	Content string
}

// IsBinaryPath reports whether a path is classified binary by extension.
func IsBinaryPath(p string) bool {
	return binaryExts[strings.ToLower(path.Ext(p))]
}

// BuildFromEntries assembles a single-rooted tree from a flat descriptor
// list. An optional prefix scopes the build to a subtree: entries outside it
// are skipped and the prefix is stripped from resulting paths. Entries
// classified binary by extension or larger than MaxListedFileBytes are
// excluded. Intermediate directories are created on demand and reused across
// entries sharing a prefix. Output is deterministic for any input order.
func BuildFromEntries(entries []Entry, prefix string) *Dir {
	root := &Dir{}
	dirs := map[string]*Dir{"": root}
	prefix = NormalizePath(prefix)

	for _, e := range entries {
		rel, ok := stripPrefix(NormalizePath(e.Path), prefix)
		if !ok || rel == "" {
			// Outside the requested subtree, or the prefix itself.
			continue
		}
		if IsBinaryPath(rel) || e.Size > MaxListedFileBytes {
			continue
		}
		placeFile(dirs, rel)
	}

	SortChildren(root)
	return root
}

// BuildFromUploads assembles a tree from uploaded files. Content is attached
// at build time, so nothing is left to fetch lazily. The same binary and
// size filters as BuildFromEntries apply.
func BuildFromUploads(uploads []Upload) *Dir {
	entries := make([]Entry, 0, len(uploads))
	for _, u := range uploads {
		entries = append(entries, Entry{Path: u.Path, Size: int64(len(u.Content))})
	}
	root := BuildFromEntries(entries, "")
	for _, u := range uploads {
		if f, ok := FindFile(root, u.Path); ok {
			f.Content = u.Content
			f.Fetched = true
		}
	}
	return root
}

// stripPrefix removes prefix (and its trailing slash) from p. An empty
// prefix matches everything.
func stripPrefix(p, prefix string) (string, bool) {
	if prefix == "" {
		return p, true
	}
	if p == prefix {
		return "", true
	}
	if rest, ok := strings.CutPrefix(p, prefix+"/"); ok {
		return rest, true
	}
	return "", false
}

// placeFile inserts a file node at rel, creating missing intermediate
// directories. A path segment colliding with an existing file is dropped:
// descent through a file is impossible.
func placeFile(dirs map[string]*Dir, rel string) {
	segs := SplitPath(rel)
	if len(segs) == 0 {
		return
	}
	name := segs[len(segs)-1]

	cur := dirs[""]
	curPath := ""
	for _, seg := range segs[:len(segs)-1] {
		if curPath == "" {
			curPath = seg
		} else {
			curPath += "/" + seg
		}
		if d, ok := dirs[curPath]; ok {
			cur = d
			continue
		}
		if cur.Child(seg) != nil {
			// A file already occupies this segment.
			return
		}
		d := &Dir{Name: seg, Path: curPath, Parent: parentPath(curPath)}
		cur.Children = append(cur.Children, d)
		dirs[curPath] = d
		cur = d
	}

	if cur.Child(name) != nil {
		return
	}
	ext := path.Ext(name)
	cur.Children = append(cur.Children, &File{
		Name:   name,
		Path:   rel,
		Parent: parentPath(rel),
		Ext:    ext,
		Base:   strings.TrimSuffix(name, ext),
	})
}
