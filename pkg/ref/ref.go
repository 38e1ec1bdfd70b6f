// Package ref models named pointers (branch heads, tags, HEAD and the
// staging/working pointers) as immutable snapshots of a name bound to an
// object id.
package ref

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/geogot/pkg/object"
)

// Well-known ref names.
const (
	// Master is, by convention, the main branch.
	Master = "refs/heads/master"
	// Head points at the latest commit of the current branch.
	Head = "HEAD"
	// StageHead points at the current tree in the staging index.
	StageHead = "STAGE_HEAD"
	// WorkHead points at the current tree in the working tree.
	WorkHead = "WORK_HEAD"
)

// Well-known name prefixes.
const (
	RefsPrefix    = "refs/"
	RemotesPrefix = "remotes/"
	TagsPrefix    = RefsPrefix + "tags/"
	HeadsPrefix   = RefsPrefix + "heads/"
	// Origin is, by convention, the namespace of the origin remote.
	Origin = "refs/remotes/origin"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidRefState = errors.New("invalid ref state")
)

// Ref is a name bound to the object it currently points to. A Ref whose id
// is object.NullID points at nothing (an unborn branch) and may have no
// kind; any other Ref always has one.
//
// Rebinding a name produces a new Ref; published values never change.
type Ref struct {
	name     string
	objectID object.ID
	kind     object.Kind
}

// New returns the binding of name to id. kind may be object.KindNone only
// when id is object.NullID.
func New(name string, id object.ID, kind object.Kind) (Ref, error) {
	if name == "" {
		return Ref{}, fmt.Errorf("new ref: %w: name is required", ErrInvalidArgument)
	}
	if kind != object.KindNone && !kind.Valid() {
		return Ref{}, fmt.Errorf("new ref %q: %w: unknown kind %s", name, ErrInvalidArgument, kind)
	}
	if !id.IsNull() && kind == object.KindNone {
		return Ref{}, fmt.Errorf("new ref %q: %w: %s has no kind", name, ErrInvalidRefState, id)
	}
	return Ref{name: name, objectID: id, kind: kind}, nil
}

// Unborn returns a binding of name to nothing.
func Unborn(name string) (Ref, error) {
	return New(name, object.NullID, object.KindNone)
}

// MustNew is New for fixtures; it panics on error.
func MustNew(name string, id object.ID, kind object.Kind) Ref {
	r, err := New(name, id, kind)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Ref) Name() string         { return r.name }
func (r Ref) ObjectID() object.ID  { return r.objectID }
func (r Ref) Kind() object.Kind    { return r.kind }
func (r Ref) IsUnborn() bool       { return r.objectID.IsNull() }
func (r Ref) Equal(other Ref) bool { return r == other }

// Compare orders refs by name only, so two bindings of the same name
// compare as 0 even when they are not Equal.
func (r Ref) Compare(other Ref) int {
	return strings.Compare(r.name, other.name)
}

// Compare orders a and b by name.
func Compare(a, b Ref) int {
	return a.Compare(b)
}

// String is for diagnostics only.
func (r Ref) String() string {
	return r.name + " -> " + r.objectID.String()
}

// IsBranch reports whether name is under refs/heads/.
func IsBranch(name string) bool { return strings.HasPrefix(name, HeadsPrefix) }

// IsTag reports whether name is under refs/tags/.
func IsTag(name string) bool { return strings.HasPrefix(name, TagsPrefix) }

// IsRemote reports whether name is a remote-tracking ref.
func IsRemote(name string) bool {
	return strings.HasPrefix(name, RemotesPrefix) || strings.HasPrefix(name, RefsPrefix+RemotesPrefix)
}

// ShortName strips the category prefix: "refs/heads/master" becomes
// "master", "refs/remotes/origin/master" becomes "origin/master".
func (r Ref) ShortName() string {
	return ShortName(r.name)
}

// ShortName is Ref.ShortName for a bare name.
func ShortName(name string) string {
	for _, prefix := range []string{HeadsPrefix, TagsPrefix, RefsPrefix + RemotesPrefix, RemotesPrefix, RefsPrefix} {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return name[len(prefix):]
		}
	}
	return name
}
