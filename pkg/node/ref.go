package node

import (
	"fmt"
	"slices"
	"strings"

	"github.com/odvcencio/geogot/pkg/object"
)

// Ref is the basic leaf element of a revision tree: at Path there is an
// object of Kind whose content is ObjectID, described by the (possibly
// null) MetadataID, e.g. a feature and its feature type.
//
// Ref is an immutable, comparable value. == and Equal compare all four
// fields, and Ref can be used directly as a map key.
type Ref struct {
	path       string
	kind       object.Kind
	objectID   object.ID
	metadataID object.ID
}

// New constructs a Ref. The path must be non-empty and must not end in the
// separator, and kind must be a concrete object kind. Either id may be
// object.NullID.
func New(path string, kind object.Kind, id, metadataID object.ID) (Ref, error) {
	if path == "" {
		return Ref{}, fmt.Errorf("new node ref: %w: path is required", ErrInvalidArgument)
	}
	if !kind.Valid() {
		return Ref{}, fmt.Errorf("new node ref %q: %w: kind is required (got %s)", path, ErrInvalidArgument, kind)
	}
	if err := ValidatePath(path); err != nil {
		return Ref{}, fmt.Errorf("new node ref: %w", err)
	}
	return Ref{path: path, kind: kind, objectID: id, metadataID: metadataID}, nil
}

// MustNew is New for fixtures and static tables; it panics on error.
func MustNew(path string, kind object.Kind, id, metadataID object.ID) Ref {
	r, err := New(path, kind, id, metadataID)
	if err != nil {
		panic(err)
	}
	return r
}

// Path is the full path from the root tree to the referenced object.
func (r Ref) Path() string { return r.path }

// Name is the last segment of Path.
func (r Ref) Name() string {
	name, _ := LeafName(r.path)
	return name
}

// ParentPath is the path of the tree holding this entry; "" for the root.
func (r Ref) ParentPath() string {
	parent, _ := ParentPath(r.path)
	return parent
}

func (r Ref) Kind() object.Kind      { return r.kind }
func (r Ref) ObjectID() object.ID    { return r.objectID }
func (r Ref) MetadataID() object.ID  { return r.metadataID }
func (r Ref) HasMetadata() bool      { return !r.metadataID.IsNull() }
func (r Ref) IsZero() bool           { return r == Ref{} }
func (r Ref) Node() Ref              { return r }
func (r Ref) Bounds() (Bounds, bool) { return Bounds{}, false }
func (r Ref) Equal(other Ref) bool   { return r == other }

// Compare orders refs by path only. Two refs at the same path with
// different content compare as 0 while not being Equal, so this order is
// not consistent with equality; use CompareTotal where that matters (e.g.
// deduplicating a sorted set whose paths are not known to be unique).
func (r Ref) Compare(other Ref) int {
	return strings.Compare(r.path, other.path)
}

// WithObjectID returns a copy of r pointing at a different object.
func (r Ref) WithObjectID(id object.ID) Ref {
	r.objectID = id
	return r
}

// WithMetadataID returns a copy of r with a different metadata id.
func (r Ref) WithMetadataID(id object.ID) Ref {
	r.metadataID = id
	return r
}

// String is for diagnostics only and is not parseable.
func (r Ref) String() string {
	return r.path + " -> " + r.objectID.String()
}

// Compare orders a and b by path; see Ref.Compare.
func Compare(a, b Ref) int {
	return a.Compare(b)
}

// CompareTotal orders by path, then kind, object id and metadata id. It
// returns 0 only for Equal refs.
func CompareTotal(a, b Ref) int {
	if c := strings.Compare(a.path, b.path); c != 0 {
		return c
	}
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	if c := a.objectID.Compare(b.objectID); c != 0 {
		return c
	}
	return a.metadataID.Compare(b.metadataID)
}

// Sort stably sorts refs into tree-entry order.
func Sort(refs []Ref) {
	slices.SortStableFunc(refs, Compare)
}
