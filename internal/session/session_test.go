package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/studylenses/studylenses/internal/github"
	"github.com/studylenses/studylenses/internal/vfs"
)

// fakeFetcher serves canned blob content and can run a hook before
// returning, to simulate a tree swap racing an in-flight fetch. Blob may be
// called from several goroutines because the session drops its lock while a
// fetch is in flight.
type fakeFetcher struct {
	blobs map[string]string

	mu     sync.Mutex
	before func()
	calls  int
}

func (f *fakeFetcher) Blob(_ context.Context, _ github.RepoRef, path string) (string, error) {
	f.mu.Lock()
	f.calls++
	before := f.before
	f.mu.Unlock()
	if before != nil {
		before()
	}
	content, ok := f.blobs[path]
	if !ok {
		return "", errors.New("no such blob")
	}
	return content, nil
}

func remoteTree() *vfs.Dir {
	root := vfs.BuildFromEntries([]vfs.Entry{
		{Path: "src/app.js", Size: 10},
		{Path: "README.md", Size: 5},
	}, "")
	for _, f := range vfs.Files(root) {
		f.GitHubRepo = "octocat/demo"
		f.GitHubPath = f.Path
	}
	return root
}

func TestReplace(t *testing.T) {
	s := New(nil)

	t.Run("empty session", func(t *testing.T) {
		if tree, _, _ := s.Tree(); tree != nil {
			t.Error("expected nil tree before first load")
		}
		if _, err := s.Find("a.js"); !errors.Is(err, ErrNoTree) {
			t.Errorf("Find err = %v, want ErrNoTree", err)
		}
	})

	t.Run("swap bumps generation and annotates", func(t *testing.T) {
		gen1 := s.Replace(remoteTree(), "github:octocat/demo@main", nil)
		gen2 := s.Replace(remoteTree(), "github:octocat/demo@main", nil)
		if gen1 == gen2 {
			t.Error("generation should change on every replace")
		}
		tree, gen, source := s.Tree()
		if gen != gen2 {
			t.Errorf("gen = %v, want %v", gen, gen2)
		}
		if source != "github:octocat/demo@main" {
			t.Errorf("source = %q", source)
		}
		if tree.Root != "github:octocat/demo@main" {
			t.Errorf("tree root label = %q", tree.Root)
		}
	})
}

func TestContent(t *testing.T) {
	ref := github.RepoRef{Owner: "octocat", Repo: "demo", Branch: "main"}

	t.Run("fetches lazily and memoizes", func(t *testing.T) {
		fetcher := &fakeFetcher{blobs: map[string]string{"src/app.js": "let a = 1;"}}
		s := New(fetcher)
		s.Replace(remoteTree(), "github:octocat/demo@main", &ref)

		got, err := s.Content(t.Context(), "src/app.js")
		if err != nil {
			t.Fatalf("Content: %v", err)
		}
		if got != "let a = 1;" {
			t.Errorf("Content = %q", got)
		}
		if _, err := s.Content(t.Context(), "src/app.js"); err != nil {
			t.Fatalf("Content (second): %v", err)
		}
		if fetcher.calls != 1 {
			t.Errorf("fetch calls = %d, want 1 (memoized)", fetcher.calls)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		s := New(&fakeFetcher{})
		s.Replace(remoteTree(), "github:octocat/demo@main", &ref)
		if _, err := s.Content(t.Context(), "nope.js"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("fetch error leaves node unpopulated", func(t *testing.T) {
		s := New(&fakeFetcher{blobs: map[string]string{}})
		s.Replace(remoteTree(), "github:octocat/demo@main", &ref)
		if _, err := s.Content(t.Context(), "src/app.js"); err == nil {
			t.Fatal("expected fetch error")
		}
		f, err := s.Find("src/app.js")
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if f.Fetched {
			t.Error("failed fetch must not mark the node fetched")
		}
	})

	t.Run("stale fetch is served but not memoized", func(t *testing.T) {
		fetcher := &fakeFetcher{blobs: map[string]string{"src/app.js": "stale content"}}
		s := New(fetcher)
		s.Replace(remoteTree(), "github:octocat/demo@main", &ref)
		// Swap the tree while the fetch is in flight.
		fetcher.before = func() {
			fetcher.before = nil
			s.Replace(remoteTree(), "github:octocat/demo@main", &ref)
		}
		got, err := s.Content(t.Context(), "src/app.js")
		if err != nil {
			t.Fatalf("Content: %v", err)
		}
		if got != "stale content" {
			t.Errorf("Content = %q", got)
		}
		// The replacement tree's node must still be unfetched.
		f, err := s.Find("src/app.js")
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if f.Fetched {
			t.Error("stale fetch result leaked into the new tree")
		}
	})
}

func TestSetContent(t *testing.T) {
	s := New(nil)
	s.Replace(remoteTree(), "test", nil)

	if err := s.SetContent("README.md", "# edited"); err != nil {
		t.Fatalf("SetContent: %v", err)
	}
	got, err := s.Content(t.Context(), "README.md")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if got != "# edited" {
		t.Errorf("Content = %q", got)
	}
	if err := s.SetContent("ghost.md", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetStudyLens(t *testing.T) {
	s := New(nil)
	s.Replace(remoteTree(), "test", nil)

	if err := s.SetStudyLens("src/app.js", "flashcards"); err != nil {
		t.Fatalf("SetStudyLens: %v", err)
	}
	f, err := s.Find("src/app.js")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if f.StudyLens != "flashcards" {
		t.Errorf("StudyLens = %q", f.StudyLens)
	}

	// Preference is ephemeral: gone after a rebuild.
	s.Replace(remoteTree(), "test", nil)
	f, err = s.Find("src/app.js")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if f.StudyLens != "" {
		t.Error("study preference must not survive a tree rebuild")
	}
}

func TestFallback(t *testing.T) {
	s := New(nil)
	s.Replace(remoteTree(), "test", nil)

	f, err := s.Fallback("src/gone.js")
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if f.Path == "" {
		t.Fatal("expected a fallback file")
	}

	s.Replace(&vfs.Dir{}, "empty", nil)
	if _, err := s.Fallback("anything"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound on empty tree", err)
	}
}

// Lazy fetches, edits, lens pins, and tree walks all touch the same nodes;
// run with -race to verify the locking discipline.
func TestConcurrentAccess(t *testing.T) {
	ref := github.RepoRef{Owner: "octocat", Repo: "demo", Branch: "main"}
	fetcher := &fakeFetcher{blobs: map[string]string{
		"src/app.js": "let a = 1;",
		"README.md":  "# demo",
	}}
	s := New(fetcher)
	s.Replace(remoteTree(), "github:octocat/demo@main", &ref)

	var wg sync.WaitGroup
	run := func(fn func(i int) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				if err := fn(i); err != nil {
					t.Errorf("concurrent op: %v", err)
					return
				}
			}
		}()
	}

	run(func(int) error {
		_, err := s.Content(context.Background(), "src/app.js")
		return err
	})
	run(func(int) error {
		return s.SetContent("src/app.js", "let a = 2;")
	})
	run(func(int) error {
		return s.SetStudyLens("src/app.js", "flashcards")
	})
	run(func(int) error {
		_, err := s.Find("src/app.js")
		return err
	})
	run(func(int) error {
		_, _, err := s.Browse(func(root *vfs.Dir) {
			for _, f := range vfs.Files(root) {
				_ = f.Fetched
				_ = f.StudyLens
			}
		})
		return err
	})
	run(func(int) error {
		_, err := s.ResolveConfig(context.Background(), "src/app.js")
		return err
	})
	wg.Wait()

	got, err := s.Content(context.Background(), "src/app.js")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if got != "let a = 1;" && got != "let a = 2;" {
		t.Errorf("Content = %q, want the fetched or edited text", got)
	}
}
