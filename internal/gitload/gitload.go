// Package gitload builds a virtual filesystem from the HEAD tree of a local
// git checkout, so an instructor can serve a working clone directly without
// going through the GitHub API.
package gitload

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/studylenses/studylenses/internal/vfs"
)

// Load opens the repository at dir and assembles a tree from the files
// recorded at HEAD. Content is attached eagerly: every file that survives
// the listing filters is small enough to read up front. An optional prefix
// scopes the load to a subtree, same as the remote path filter.
func Load(dir, prefix string) (*vfs.Dir, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read commit tree: %w", err)
	}

	var entries []vfs.Entry
	if err := tree.Files().ForEach(func(f *object.File) error {
		entries = append(entries, vfs.Entry{Path: f.Name, Size: f.Size})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to walk commit tree: %w", err)
	}

	root := vfs.BuildFromEntries(entries, prefix)

	// Second pass fills content for the files that made it into the tree.
	for _, f := range vfs.Files(root) {
		full := f.Path
		if p := vfs.NormalizePath(prefix); p != "" {
			full = p + "/" + f.Path
		}
		gf, err := tree.File(full)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s at HEAD: %w", full, err)
		}
		content, err := gf.Contents()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", full, err)
		}
		f.Content = content
		f.Fetched = true
	}
	return root, nil
}
