// Static snapshot (de)serialization. A snapshot is a JSON document whose
// root is a directory node with all file contents embedded inline.

package vfs

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// MarshalJSON emits the directory with its polymorphic children.
func (d *Dir) MarshalJSON() ([]byte, error) {
	type alias Dir // Sheds the method set to avoid recursion.
	a := alias(*d)
	if a.Children == nil {
		a.Children = []Node{}
	}
	return json.Marshal(a)
}

// UnmarshalJSON decodes a directory node, discriminating children by the
// presence of a "children" key: directories carry one, files never do.
func (d *Dir) UnmarshalJSON(data []byte) error {
	var wire struct {
		Name     string            `json:"name"`
		Path     string            `json:"path"`
		Parent   string            `json:"dir"`
		Root     string            `json:"root"`
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	d.Name = wire.Name
	d.Path = NormalizePath(wire.Path)
	d.Parent = NormalizePath(wire.Parent)
	d.Root = wire.Root
	d.Children = make([]Node, 0, len(wire.Children))
	for _, raw := range wire.Children {
		var probe struct {
			Children json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return err
		}
		if probe.Children != nil {
			sub := &Dir{}
			if err := json.Unmarshal(raw, sub); err != nil {
				return err
			}
			d.Children = append(d.Children, sub)
		} else {
			f := &File{}
			if err := json.Unmarshal(raw, f); err != nil {
				return err
			}
			f.Path = NormalizePath(f.Path)
			f.Parent = NormalizePath(f.Parent)
			f.Fetched = true // Snapshot content is inline.
			d.Children = append(d.Children, f)
		}
	}
	return nil
}

// ParseSnapshot decodes a snapshot document into a tree. Paths are rederived
// from the name hierarchy so a hand-edited snapshot cannot violate the
// path-reachability invariant, and children are re-sorted into canonical
// order. Callers run Annotate afterwards.
func ParseSnapshot(data []byte) (*Dir, error) {
	root := &Dir{}
	if err := json.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	root.Name = ""
	rederivePaths(root, "")
	SortChildren(root)
	return root, nil
}

// rederivePaths recomputes Path and Parent for every node from its position
// in the tree. The root's path is the empty string.
func rederivePaths(d *Dir, base string) {
	d.Path = base
	d.Parent = parentPath(base)
	for _, c := range d.Children {
		switch n := c.(type) {
		case *Dir:
			p := n.Name
			if base != "" {
				p = base + "/" + n.Name
			}
			rederivePaths(n, p)
		case *File:
			n.Path = n.Name
			if base != "" {
				n.Path = base + "/" + n.Name
			}
			n.Parent = base
			if n.Ext == "" {
				n.Ext = path.Ext(n.Name)
			}
			if n.Base == "" {
				n.Base = strings.TrimSuffix(n.Name, n.Ext)
			}
		}
	}
}
