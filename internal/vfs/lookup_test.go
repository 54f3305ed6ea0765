package vfs

import "testing"

func studyTree(t *testing.T) *Dir {
	t.Helper()
	return BuildFromEntries([]Entry{
		{Path: "frontend/components/Button.jsx"},
		{Path: "frontend/components/Input.jsx"},
		{Path: "frontend/app.js"},
		{Path: "backend/server.js"},
		{Path: "README.md"},
	}, "")
}

func TestFindFile(t *testing.T) {
	root := studyTree(t)

	t.Run("leading slash optional", func(t *testing.T) {
		a, okA := FindFile(root, "/frontend/app.js")
		b, okB := FindFile(root, "frontend/app.js")
		if !okA || !okB || a != b {
			t.Error("leading slash should normalize to the same node")
		}
	})

	t.Run("missing segment", func(t *testing.T) {
		if _, ok := FindFile(root, "frontend/missing/app.js"); ok {
			t.Error("expected miss for absent segment")
		}
	})

	t.Run("directory is not returned", func(t *testing.T) {
		if _, ok := FindFile(root, "frontend/components"); ok {
			t.Error("lookup must not return a directory")
		}
	})

	t.Run("cannot descend through a file", func(t *testing.T) {
		if _, ok := FindFile(root, "README.md/nested"); ok {
			t.Error("expected miss when an intermediate node is a file")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, ok := FindFile(root, "/"); ok {
			t.Error("expected miss for empty path")
		}
	})
}

func TestRandomFile(t *testing.T) {
	t.Run("empty tree", func(t *testing.T) {
		if _, ok := RandomFile(&Dir{}); ok {
			t.Error("expected none sentinel on empty tree")
		}
	})

	t.Run("picks an existing file", func(t *testing.T) {
		root := studyTree(t)
		f, ok := RandomFile(root)
		if !ok {
			t.Fatal("expected a file")
		}
		if got, found := FindFile(root, f.Path); !found || got != f {
			t.Errorf("random pick %q is not in the tree", f.Path)
		}
	})
}

func TestFindSimilarFile(t *testing.T) {
	root := studyTree(t)

	t.Run("prefers matching directory", func(t *testing.T) {
		f, ok := FindSimilarFile(root, "frontend/components/Gone.jsx")
		if !ok {
			t.Fatal("expected a similar file")
		}
		if f.Parent != "frontend/components" {
			t.Errorf("similar file %q not from the requested directory", f.Path)
		}
	})

	t.Run("falls back to segment substring", func(t *testing.T) {
		f, ok := FindSimilarFile(root, "missing/README.md")
		if !ok {
			t.Fatal("expected a similar file")
		}
		if f.Name != "README.md" {
			t.Errorf("similar file = %q, want README.md", f.Path)
		}
	})

	t.Run("nothing relates", func(t *testing.T) {
		if _, ok := FindSimilarFile(root, "zzz/qqq.xyz"); ok {
			t.Error("expected no match")
		}
	})

	t.Run("empty tree", func(t *testing.T) {
		if _, ok := FindSimilarFile(&Dir{}, "a/b.js"); ok {
			t.Error("expected no match on empty tree")
		}
	})
}
