// Package lenscfg computes the effective lens configuration for a file by
// cascading every ancestor directory's lenses.json.
//
// Configurations are schema-less: the set of lens names and their settings
// is open-ended, so layers and results are generic JSON value trees
// (map[string]any), not fixed structs.
package lenscfg

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/studylenses/studylenses/internal/vfs"
)

// ConfigFileName is the per-directory configuration file. The browser view
// hides it from learners; the resolver reads it.
const ConfigFileName = "lenses.json"

// Resolve walks the ancestor directories of filePath root-first, parses each
// level's lenses.json when present, and deep-merges the layers so that
// deeper directories win on key conflicts. A lenses.json that fails to parse
// is skipped with a warning: one misconfigured directory must not prevent
// browsing the rest of the tree. The result is never nil.
func Resolve(ctx context.Context, root *vfs.Dir, filePath string) map[string]any {
	acc := map[string]any{}
	segs := vfs.SplitPath(filePath)
	if len(segs) == 0 {
		return acc
	}

	cur := root
	// Ancestor chain: root plus every directory above the file itself.
	for i := 0; ; i++ {
		mergeLayer(ctx, acc, cur)
		if i >= len(segs)-1 {
			break
		}
		next, ok := cur.Child(segs[i]).(*vfs.Dir)
		if !ok {
			// Chain broken; shallower layers already contributed.
			break
		}
		cur = next
	}
	return acc
}

// mergeLayer parses d's lenses.json, if any, and merges it into acc.
func mergeLayer(ctx context.Context, acc map[string]any, d *vfs.Dir) {
	f := d.ChildFile(ConfigFileName)
	if f == nil || f.Content == "" {
		return
	}
	var layer map[string]any
	if err := json.Unmarshal([]byte(f.Content), &layer); err != nil {
		slog.WarnContext(ctx, "Skipping malformed lenses.json", "path", f.Path, "err", err)
		return
	}
	Merge(acc, layer)
}

// Merge deep-merges src into dst in place. Object values merge key-by-key;
// arrays, primitives, and null fully replace whatever the destination holds
// at that key. Values copied out of src are cloned so later mutation of dst
// cannot alias a parsed layer.
func Merge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		if srcIsMap {
			if dstMap, ok := dst[k].(map[string]any); ok {
				Merge(dstMap, srcMap)
				continue
			}
			dst[k] = cloneValue(srcMap)
			continue
		}
		dst[k] = cloneValue(v)
	}
}

// cloneValue deep-copies a JSON value tree.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return t
	}
}
