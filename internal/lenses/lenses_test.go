package lenses

import (
	"testing"

	"github.com/studylenses/studylenses/internal/vfs"
)

func TestDefaultForFile(t *testing.T) {
	cases := []struct {
		ext  string
		want string
	}{
		{".js", Editor},
		{".py", Editor},
		{".md", Markdown},
		{".markdown", Markdown},
		{".svg", Asset},
		{"", Editor},
	}
	for _, tc := range cases {
		if got := DefaultForFile(&vfs.File{Ext: tc.ext}); got != tc.want {
			t.Errorf("DefaultForFile(%q) = %q, want %q", tc.ext, got, tc.want)
		}
	}
}

func TestPreferred(t *testing.T) {
	f := &vfs.File{Ext: ".js"}
	if got := Preferred(f); got != Editor {
		t.Errorf("Preferred = %q, want %q", got, Editor)
	}
	f.StudyLens = Flashcards
	if got := Preferred(f); got != Flashcards {
		t.Errorf("Preferred = %q, want session preference %q", got, Flashcards)
	}
}

func TestVisible(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"index.js", true},
		{"lenses.json", false},
		{".gitignore", false},
		{".env", false},
		{"lenses.json.bak", true},
	}
	for _, tc := range cases {
		if got := Visible(tc.name); got != tc.want {
			t.Errorf("Visible(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known(Editor) || !Known(Flashcards) {
		t.Error("built-in lenses should be known")
	}
	if Known("teleporter") {
		t.Error("unknown lens reported as known")
	}
}
