package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/ref"
	"github.com/odvcencio/geogot/pkg/refs"
)

// CreateTag creates or, with force, moves the lightweight tag
// refs/tags/<name>.
func (r *Repo) CreateTag(name string, id object.ID, kind object.Kind, force bool) error {
	name = strings.TrimSpace(name)
	if err := refs.ValidateName(tagsRef(name)); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if id.IsNull() {
		return fmt.Errorf("create tag: target id is required")
	}
	t, err := ref.New(tagsRef(name), id, kind)
	if err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if force {
		err = r.Refs.Update(t)
	} else {
		err = r.Refs.Create(t)
	}
	if err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	return nil
}

// DeleteTag removes refs/tags/<name>.
func (r *Repo) DeleteTag(name string) error {
	if err := r.Refs.Delete(tagsRef(name)); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// ListTags returns all tags sorted by name.
func (r *Repo) ListTags() ([]ref.Ref, error) {
	tags, err := r.Refs.List(ref.TagsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
