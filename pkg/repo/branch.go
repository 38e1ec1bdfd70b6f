package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/ref"
	"github.com/odvcencio/geogot/pkg/refs"
)

// CreateBranch creates refs/heads/<name> pointing at id. Returns an error
// if the branch already exists.
func (r *Repo) CreateBranch(name string, id object.ID, kind object.Kind) error {
	b, err := ref.New(headsRef(name), id, kind)
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if err := r.Refs.Create(b); err != nil {
		if errors.Is(err, refs.ErrCASMismatch) {
			return fmt.Errorf("create branch: branch %q already exists", name)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes refs/heads/<name>. The current branch cannot be
// deleted.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}
	if err := r.Refs.Delete(headsRef(name)); err != nil {
		if errors.Is(err, refs.ErrNotFound) {
			return fmt.Errorf("delete branch: branch %q does not exist", name)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns branch short names sorted alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	heads, err := r.Refs.List(ref.HeadsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(heads))
	for _, h := range heads {
		names = append(names, h.ShortName())
	}
	return names, nil
}

// CurrentBranch returns the branch HEAD points at, or "" when HEAD is
// detached.
func (r *Repo) CurrentBranch() (string, error) {
	target, symbolic, err := r.Refs.Symbolic(ref.Head)
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if !symbolic || !strings.HasPrefix(target, ref.HeadsPrefix) {
		return "", nil
	}
	return strings.TrimPrefix(target, ref.HeadsPrefix), nil
}

// Checkout points HEAD at an existing branch.
func (r *Repo) Checkout(name string) error {
	if _, err := r.Refs.Get(headsRef(name)); err != nil {
		return fmt.Errorf("checkout %q: %w", name, err)
	}
	if err := r.Refs.SetSymbolic(ref.Head, headsRef(name)); err != nil {
		return fmt.Errorf("checkout %q: %w", name, err)
	}
	return nil
}
