package repo

import (
	"errors"
	"fmt"

	"github.com/odvcencio/geogot/pkg/node"
	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/ref"
	"github.com/odvcencio/geogot/pkg/refs"
	"github.com/odvcencio/geogot/pkg/tree"
)

// Stage writes entries as a tree and moves STAGE_HEAD to it.
func (r *Repo) Stage(entries []node.Entry) (ref.Ref, error) {
	return r.setTreePointer(ref.StageHead, entries)
}

// UpdateWorkTree writes entries as a tree and moves WORK_HEAD to it.
func (r *Repo) UpdateWorkTree(entries []node.Entry) (ref.Ref, error) {
	return r.setTreePointer(ref.WorkHead, entries)
}

// setTreePointer builds the tree, then rebinds name with a compare-and-swap
// against the value read before building. A missing pointer file is
// treated as unborn and recreated.
func (r *Repo) setTreePointer(name string, entries []node.Entry) (ref.Ref, error) {
	expected := object.NullID
	current, err := r.Refs.Resolve(name)
	switch {
	case err == nil:
		expected = current.ObjectID()
	case !errors.Is(err, refs.ErrNotFound):
		return ref.Ref{}, fmt.Errorf("update %s: %w", name, err)
	}
	root, err := tree.Build(r.Objects, entries)
	if err != nil {
		return ref.Ref{}, fmt.Errorf("update %s: %w", name, err)
	}
	next, err := ref.New(name, root, object.KindTree)
	if err != nil {
		return ref.Ref{}, fmt.Errorf("update %s: %w", name, err)
	}
	if err := r.Refs.CompareAndSwap(next, expected); err != nil {
		return ref.Ref{}, fmt.Errorf("update %s: %w", name, err)
	}
	r.log.WithField("ref", name).WithField("entries", len(entries)).Info("tree pointer moved")
	return next, nil
}

// Entries lists the leaf entries of the tree a ref points at, in tree
// order. An unborn ref has no entries.
func (r *Repo) Entries(name string) ([]node.Entry, error) {
	p, err := r.Refs.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("entries %s: %w", name, err)
	}
	if p.IsUnborn() {
		return nil, nil
	}
	if p.Kind() != object.KindTree {
		return nil, fmt.Errorf("entries %s: points at a %s, not a tree", name, p.Kind())
	}

	var out []node.Entry
	err = tree.Walk(r.Objects, p.ObjectID(), func(e node.Entry) bool {
		if e.Node().Kind() != object.KindTree {
			out = append(out, e)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("entries %s: %w", name, err)
	}
	return out, nil
}
