// Package tree groups node entries into tree levels and encodes each level
// deterministically, so identical entry sets always hash to the same id.
package tree

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/odvcencio/geogot/pkg/node"
)

var (
	ErrNotDirectChild = errors.New("entry is not a direct child of the tree")
	ErrDuplicateEntry = errors.New("duplicate tree entry")
	ErrUnencodable    = errors.New("entry cannot be encoded")
)

// Tree is one level of a revision tree: the entries directly under Path,
// kept in node.CompareEntries order. The root tree has Path "".
type Tree struct {
	path    string
	entries []node.Entry
}

// New validates and sorts the entries of the tree at path. Every problem
// found is reported in the returned error, not just the first.
func New(path string, entries ...node.Entry) (*Tree, error) {
	if path != "" {
		if err := node.ValidatePath(path); err != nil {
			return nil, fmt.Errorf("new tree: %w", err)
		}
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, node.CompareEntries)

	var errs *multierror.Error
	for i, e := range sorted {
		n := e.Node()
		if n.IsZero() {
			errs = multierror.Append(errs, fmt.Errorf("%w: zero entry", ErrUnencodable))
			continue
		}
		if !node.IsDirectChild(path, n.Path()) {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q under %q", ErrNotDirectChild, n.Path(), path))
		}
		if i > 0 && node.CompareEntries(sorted[i-1], e) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrDuplicateEntry, n.Path()))
		}
		if strings.ContainsAny(n.Name(), "\n\r") {
			errs = multierror.Append(errs, fmt.Errorf("%w: line break in name %q", ErrUnencodable, n.Path()))
		}
		if b, ok := e.Bounds(); ok && strings.ContainsAny(b.CRS, ", \t\n\r") {
			errs = multierror.Append(errs, fmt.Errorf("%w: crs %q of %q", ErrUnencodable, b.CRS, n.Path()))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("new tree %q: %w", path, err)
	}
	return &Tree{path: path, entries: sorted}, nil
}

func (t *Tree) Path() string { return t.path }
func (t *Tree) Len() int     { return len(t.entries) }

// Entries returns a copy of the entries in tree order.
func (t *Tree) Entries() []node.Entry {
	return slices.Clone(t.entries)
}

// Lookup finds the entry with the given leaf name.
func (t *Tree) Lookup(name string) (node.Entry, bool) {
	full := node.ChildPath(t.path, name)
	i, found := slices.BinarySearchFunc(t.entries, full, func(e node.Entry, p string) int {
		return strings.Compare(e.Node().Path(), p)
	})
	if !found {
		return nil, false
	}
	return t.entries[i], true
}

// Group partitions a flat list of entries into tree levels keyed by parent
// path. Every intermediate ancestor gets a level, possibly empty, and the
// root level "" is always present.
func Group(entries []node.Entry) map[string][]node.Entry {
	levels := map[string][]node.Entry{"": nil}
	for _, e := range entries {
		parent := e.Node().ParentPath()
		levels[parent] = append(levels[parent], e)
		if parent == "" {
			continue
		}
		ancestors, err := node.AncestorPaths(parent)
		if err != nil {
			continue
		}
		for _, a := range ancestors {
			if _, ok := levels[a]; !ok {
				levels[a] = nil
			}
		}
	}
	return levels
}

// depth counts the segments of a tree path; the root has depth 0.
func depth(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, string(node.Separator)) + 1
}

// BottomUp returns the level paths of Group's result, deepest first, so
// every subtree is visited before the tree containing it.
func BottomUp(levels map[string][]node.Entry) []string {
	paths := make([]string, 0, len(levels))
	for p := range levels {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, func(a, b string) int {
		if da, db := depth(a), depth(b); da != db {
			return db - da
		}
		return strings.Compare(a, b)
	})
	return paths
}
