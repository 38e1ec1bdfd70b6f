package node

import (
	"fmt"

	"github.com/odvcencio/geogot/pkg/object"
)

// Bounds is an axis-aligned bounding box in the coordinate reference
// system named by CRS (e.g. "EPSG:4326"). It is carried as supplied; no
// geometry validation happens here.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
	CRS        string
}

func (b Bounds) String() string {
	s := fmt.Sprintf("[%g %g, %g %g]", b.MinX, b.MinY, b.MaxX, b.MaxY)
	if b.CRS != "" {
		s += " " + b.CRS
	}
	return s
}

// Spatial is a Ref carrying the bounds of the referenced feature, used to
// accelerate spatial indexes.
//
// Bounds are not part of a Spatial's identity: Equal and Compare look only
// at the embedded Ref, so a Spatial and the plain Ref it wraps are the same
// tree entry. Note that Go's == on two Spatial values also compares bounds.
type Spatial struct {
	Ref
	bounds Bounds
}

// NewSpatial validates the Ref fields exactly as New does.
func NewSpatial(path string, kind object.Kind, id, metadataID object.ID, bounds Bounds) (Spatial, error) {
	r, err := New(path, kind, id, metadataID)
	if err != nil {
		return Spatial{}, err
	}
	return Spatial{Ref: r, bounds: bounds}, nil
}

// WithBounds attaches bounds to an already constructed Ref.
func WithBounds(r Ref, bounds Bounds) Spatial {
	return Spatial{Ref: r, bounds: bounds}
}

func (s Spatial) Bounds() (Bounds, bool) { return s.bounds, true }

// WithObjectID returns a copy of s pointing at a different object. The
// bounds are kept.
func (s Spatial) WithObjectID(id object.ID) Spatial {
	s.Ref = s.Ref.WithObjectID(id)
	return s
}

// WithMetadataID returns a copy of s with a different metadata id and the
// same bounds.
func (s Spatial) WithMetadataID(id object.ID) Spatial {
	s.Ref = s.Ref.WithMetadataID(id)
	return s
}

// Equal reports whether s and other identify the same entry, ignoring
// bounds.
func (s Spatial) Equal(other Spatial) bool {
	return s.Ref == other.Ref
}

// Entry is either a plain Ref or a Spatial.
type Entry interface {
	Node() Ref
	Bounds() (Bounds, bool)
}

var (
	_ Entry = Ref{}
	_ Entry = Spatial{}
)

// CompareEntries orders entries of either variant by path.
func CompareEntries(a, b Entry) int {
	return Compare(a.Node(), b.Node())
}

// SameEntry reports whether a and b share path, kind, object id and
// metadata id, regardless of variant or bounds.
func SameEntry(a, b Entry) bool {
	return a.Node() == b.Node()
}
