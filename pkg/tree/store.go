package tree

import (
	"fmt"

	"github.com/odvcencio/geogot/pkg/node"
	"github.com/odvcencio/geogot/pkg/object"
)

// Putter stores object content; *object.Store implements it.
type Putter interface {
	Put(kind object.Kind, data []byte) (object.ID, error)
}

// Getter loads object content of an expected kind; *object.Store
// implements it.
type Getter interface {
	GetKind(id object.ID, want object.Kind) ([]byte, error)
}

// Write stores one tree level and returns its id.
func Write(p Putter, t *Tree) (object.ID, error) {
	id, err := p.Put(object.KindTree, Marshal(t))
	if err != nil {
		return object.NullID, fmt.Errorf("write tree %q: %w", t.path, err)
	}
	return id, nil
}

// Read loads the tree stored under id, which lives at path.
func Read(g Getter, path string, id object.ID) (*Tree, error) {
	data, err := g.GetKind(id, object.KindTree)
	if err != nil {
		return nil, fmt.Errorf("read tree %q: %w", path, err)
	}
	return Unmarshal(path, data)
}

// Build writes every level needed to hold entries, deepest first, and
// returns the root tree id. Each non-root level becomes a tree entry of
// its parent.
func Build(p Putter, entries []node.Entry) (object.ID, error) {
	levels := Group(entries)
	written := make(map[string]object.ID, len(levels))

	for _, path := range BottomUp(levels) {
		level := levels[path]
		for sub, id := range written {
			if parent, _ := node.ParentPath(sub); parent == path && sub != "" {
				subtree, err := node.New(sub, object.KindTree, id, object.NullID)
				if err != nil {
					return object.NullID, fmt.Errorf("build tree: %w", err)
				}
				level = append(level, subtree)
			}
		}
		t, err := New(path, level...)
		if err != nil {
			return object.NullID, fmt.Errorf("build tree: %w", err)
		}
		id, err := Write(p, t)
		if err != nil {
			return object.NullID, fmt.Errorf("build tree: %w", err)
		}
		written[path] = id
	}
	return written[""], nil
}

// Walk visits every entry reachable from the root tree id in depth-first
// tree order. Subtree entries are visited before their contents; returning
// false from fn skips the subtree's contents.
func Walk(g Getter, root object.ID, fn func(node.Entry) bool) error {
	return walk(g, "", root, fn)
}

func walk(g Getter, path string, id object.ID, fn func(node.Entry) bool) error {
	t, err := Read(g, path, id)
	if err != nil {
		return err
	}
	for _, e := range t.entries {
		n := e.Node()
		descend := fn(e)
		if descend && n.Kind() == object.KindTree && !n.ObjectID().IsNull() {
			if err := walk(g, n.Path(), n.ObjectID(), fn); err != nil {
				return err
			}
		}
	}
	return nil
}
