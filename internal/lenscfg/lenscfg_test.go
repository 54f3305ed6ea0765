package lenscfg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/studylenses/studylenses/internal/vfs"
)

// configTree builds a tree from uploads, where lenses.json files carry the
// given per-directory layers.
func configTree(t *testing.T, uploads ...vfs.Upload) *vfs.Dir {
	t.Helper()
	return vfs.BuildFromUploads(uploads)
}

func TestMerge(t *testing.T) {
	t.Run("leaf wins on conflicts", func(t *testing.T) {
		dst := map[string]any{"a": 1.0}
		Merge(dst, map[string]any{"a": 2.0})
		if dst["a"] != 2.0 {
			t.Errorf("a = %v, want 2", dst["a"])
		}
	})

	t.Run("sibling keys survive", func(t *testing.T) {
		dst := map[string]any{"a": 1.0, "b": 2.0}
		Merge(dst, map[string]any{"b": 3.0})
		want := map[string]any{"a": 1.0, "b": 3.0}
		if diff := cmp.Diff(want, dst); diff != "" {
			t.Errorf("merge mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("objects merge recursively", func(t *testing.T) {
		dst := map[string]any{
			"embed": map[string]any{"template": "x", "features": map[string]any{"copy": true}},
		}
		Merge(dst, map[string]any{
			"embed": map[string]any{"features": map[string]any{"paste": true}},
		})
		want := map[string]any{
			"embed": map[string]any{
				"template": "x",
				"features": map[string]any{"copy": true, "paste": true},
			},
		}
		if diff := cmp.Diff(want, dst); diff != "" {
			t.Errorf("merge mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("arrays replace wholesale", func(t *testing.T) {
		dst := map[string]any{"steps": []any{"a", "b"}}
		Merge(dst, map[string]any{"steps": []any{"c"}})
		if diff := cmp.Diff([]any{"c"}, dst["steps"]); diff != "" {
			t.Errorf("steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("null replaces", func(t *testing.T) {
		dst := map[string]any{"ast": map[string]any{"on": true}}
		Merge(dst, map[string]any{"ast": nil})
		if v, ok := dst["ast"]; !ok || v != nil {
			t.Errorf("ast = %v, want explicit null", v)
		}
	})

	t.Run("primitive replaced by object", func(t *testing.T) {
		dst := map[string]any{"lines": true}
		Merge(dst, map[string]any{"lines": map[string]any{"start": 3.0}})
		if diff := cmp.Diff(map[string]any{"start": 3.0}, dst["lines"]); diff != "" {
			t.Errorf("lines mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("result does not alias source", func(t *testing.T) {
		src := map[string]any{"embed": map[string]any{"on": true}}
		dst := map[string]any{}
		Merge(dst, src)
		dst["embed"].(map[string]any)["on"] = false
		if src["embed"].(map[string]any)["on"] != true {
			t.Error("merge must clone source values")
		}
	})
}

func TestResolve(t *testing.T) {
	ctx := t.Context()

	t.Run("cascades root to leaf", func(t *testing.T) {
		root := configTree(t,
			vfs.Upload{Path: "lenses.json", Content: `{"lenses":{"embed":{"template":"base"}}}`},
			vfs.Upload{Path: "frontend/lenses.json", Content: `{"lenses":{"embed":{"features":{"interactive":true}}}}`},
			vfs.Upload{Path: "frontend/components/lenses.json", Content: `{"lenses":{"embed":{"features":{"copy":true}}}}`},
			vfs.Upload{Path: "frontend/components/Button.jsx", Content: "export default null"},
		)
		got := Resolve(ctx, root, "frontend/components/Button.jsx")
		want := map[string]any{
			"lenses": map[string]any{
				"embed": map[string]any{
					"template": "base",
					"features": map[string]any{"interactive": true, "copy": true},
				},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("deepest ancestor wins", func(t *testing.T) {
		root := configTree(t,
			vfs.Upload{Path: "lenses.json", Content: `{"lens":"editor"}`},
			vfs.Upload{Path: "a/lenses.json", Content: `{"lens":"study"}`},
			vfs.Upload{Path: "a/b/lenses.json", Content: `{"lens":"blanks"}`},
			vfs.Upload{Path: "a/b/file.js", Content: ""},
		)
		got := Resolve(ctx, root, "/a/b/file.js")
		if got["lens"] != "blanks" {
			t.Errorf("lens = %v, want blanks", got["lens"])
		}
	})

	t.Run("missing layers contribute nothing", func(t *testing.T) {
		root := configTree(t,
			vfs.Upload{Path: "lenses.json", Content: `{"a":1}`},
			vfs.Upload{Path: "x/y/file.js", Content: ""},
		)
		got := Resolve(ctx, root, "x/y/file.js")
		if got["a"] != 1.0 {
			t.Errorf("a = %v, want 1", got["a"])
		}
	})

	t.Run("malformed layer is skipped, ancestors still apply", func(t *testing.T) {
		root := configTree(t,
			vfs.Upload{Path: "lenses.json", Content: `{"a":1}`},
			vfs.Upload{Path: "x/lenses.json", Content: `{not json`},
			vfs.Upload{Path: "x/file.js", Content: ""},
		)
		got := Resolve(ctx, root, "x/file.js")
		if got["a"] != 1.0 {
			t.Errorf("a = %v, want 1 despite malformed descendant layer", got["a"])
		}
	})

	t.Run("config of a missing file still uses resolvable ancestors", func(t *testing.T) {
		root := configTree(t,
			vfs.Upload{Path: "lenses.json", Content: `{"a":1}`},
		)
		got := Resolve(ctx, root, "ghost/dir/file.js")
		if got["a"] != 1.0 {
			t.Errorf("a = %v, want 1", got["a"])
		}
	})

	t.Run("never nil", func(t *testing.T) {
		if got := Resolve(ctx, &vfs.Dir{}, ""); got == nil {
			t.Fatal("Resolve returned nil")
		}
	})
}
