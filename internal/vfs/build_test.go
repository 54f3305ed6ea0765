package vfs

import (
	"slices"
	"testing"
)

func TestBuildFromEntries(t *testing.T) {
	entries := []Entry{
		{Path: "src/util/strings.js", Size: 120},
		{Path: "README.md", Size: 40},
		{Path: "src/index.js", Size: 80},
		{Path: "src/util/arrays.js", Size: 95},
		{Path: "assets/logo.png", Size: 512},
		{Path: "docs/huge-dump.txt", Size: 200 << 10},
	}

	t.Run("places files under intermediate directories", func(t *testing.T) {
		root := BuildFromEntries(entries, "")
		for _, p := range []string{"src/util/strings.js", "src/index.js", "README.md"} {
			if _, ok := FindFile(root, p); !ok {
				t.Errorf("FindFile(%q) not found", p)
			}
		}
	})

	t.Run("filters binary extensions", func(t *testing.T) {
		root := BuildFromEntries(entries, "")
		if _, ok := FindFile(root, "assets/logo.png"); ok {
			t.Error("binary file should be excluded from the tree")
		}
	})

	t.Run("filters oversized entries", func(t *testing.T) {
		root := BuildFromEntries(entries, "")
		if _, ok := FindFile(root, "docs/huge-dump.txt"); ok {
			t.Error("entry over the listing ceiling should be excluded")
		}
	})

	t.Run("strips prefix and scopes to subtree", func(t *testing.T) {
		root := BuildFromEntries(entries, "src")
		if _, ok := FindFile(root, "index.js"); !ok {
			t.Error("prefix should be stripped from paths")
		}
		if _, ok := FindFile(root, "README.md"); ok {
			t.Error("entries outside the prefix should be dropped")
		}
		if _, ok := FindFile(root, "util/strings.js"); !ok {
			t.Error("nested entry under prefix missing")
		}
	})

	t.Run("drops entry equal to prefix", func(t *testing.T) {
		root := BuildFromEntries([]Entry{{Path: "src", Size: 10}}, "src")
		if len(root.Children) != 0 {
			t.Errorf("expected empty tree, got %d children", len(root.Children))
		}
	})

	t.Run("deterministic for shuffled input", func(t *testing.T) {
		shuffled := slices.Clone(entries)
		slices.Reverse(shuffled)
		a := BuildFromEntries(entries, "")
		b := BuildFromEntries(shuffled, "")
		var pathsA, pathsB []string
		Walk(a, func(n Node) bool { pathsA = append(pathsA, nodePath(n)); return true })
		Walk(b, func(n Node) bool { pathsB = append(pathsB, nodePath(n)); return true })
		if !slices.Equal(pathsA, pathsB) {
			t.Errorf("tree shapes differ:\n%v\n%v", pathsA, pathsB)
		}
	})

	t.Run("directories sort before files, names case-insensitive", func(t *testing.T) {
		root := BuildFromEntries([]Entry{
			{Path: "b.txt"}, {Path: "A.txt"}, {Path: "zdir/x.txt"}, {Path: "adir/y.txt"},
		}, "")
		var names []string
		for _, c := range root.Children {
			names = append(names, nodeName(c))
		}
		want := []string{"adir", "zdir", "A.txt", "b.txt"}
		if !slices.Equal(names, want) {
			t.Errorf("child order = %v, want %v", names, want)
		}
	})

	t.Run("file extension metadata", func(t *testing.T) {
		root := BuildFromEntries(entries, "")
		f, ok := FindFile(root, "src/index.js")
		if !ok {
			t.Fatal("src/index.js not found")
		}
		if f.Ext != ".js" {
			t.Errorf("Ext = %q, want .js", f.Ext)
		}
		if f.Base != "index" {
			t.Errorf("Base = %q, want index", f.Base)
		}
		if f.Parent != "src" {
			t.Errorf("Parent = %q, want src", f.Parent)
		}
	})

	t.Run("path round-trip for every file", func(t *testing.T) {
		root := BuildFromEntries(entries, "")
		for _, f := range Files(root) {
			got, ok := FindFile(root, f.Path)
			if !ok || got != f {
				t.Errorf("FindFile(%q) did not round-trip", f.Path)
			}
		}
	})
}

func TestBuildFromUploads(t *testing.T) {
	root := BuildFromUploads([]Upload{
		{Path: "notes/day1.md", Content: "# Day 1"},
		{Path: "exercise.js", Content: "export {}"},
	})

	f, ok := FindFile(root, "notes/day1.md")
	if !ok {
		t.Fatal("notes/day1.md not found")
	}
	if f.Content != "# Day 1" {
		t.Errorf("Content = %q, want %q", f.Content, "# Day 1")
	}
	if !f.Fetched {
		t.Error("uploaded file should be marked fetched")
	}
}

func TestAnnotate(t *testing.T) {
	root := BuildFromEntries([]Entry{
		{Path: "a/b/c.js"}, {Path: "a/d.md"}, {Path: "e.py"},
	}, "")

	Annotate(root, "demo")

	t.Run("root label on every node", func(t *testing.T) {
		Walk(root, func(n Node) bool {
			switch v := n.(type) {
			case *Dir:
				if v.Root != "demo" {
					t.Errorf("dir %q Root = %q", v.Path, v.Root)
				}
			case *File:
				if v.Root != "demo" {
					t.Errorf("file %q Root = %q", v.Path, v.Root)
				}
			}
			return true
		})
	})

	t.Run("distance to root", func(t *testing.T) {
		f, _ := FindFile(root, "a/b/c.js")
		if f.Depth != 2 {
			t.Errorf("Depth = %d, want 2", f.Depth)
		}
		top, _ := FindFile(root, "e.py")
		if top.Depth != 0 {
			t.Errorf("Depth = %d, want 0", top.Depth)
		}
	})

	t.Run("lang defaults to ext only when unset", func(t *testing.T) {
		f, _ := FindFile(root, "a/d.md")
		if f.Lang != ".md" {
			t.Errorf("Lang = %q, want .md", f.Lang)
		}
		f.Lang = "markdown"
		Annotate(root, "demo")
		if f.Lang != "markdown" {
			t.Error("Annotate must not overwrite an explicit Lang")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		before, _ := FindFile(root, "a/b/c.js")
		depth, lang := before.Depth, before.Lang
		Annotate(root, "demo")
		if before.Depth != depth || before.Lang != lang {
			t.Error("second Annotate changed node state")
		}
	})
}
