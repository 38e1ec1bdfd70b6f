package object

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
)

// IDSize is the width in bytes of an object id.
const IDSize = 32

// ID is the SHA-256 digest identifying an object's content. The zero value
// is NullID.
type ID [IDSize]byte

// NullID is the distinguished "points at nothing" id.
var NullID ID

var ErrInvalidID = errors.New("invalid object id")

// IsNull reports whether id is NullID.
func (id ID) IsNull() bool {
	return id == NullID
}

// String returns the lowercase hex form of id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first n hex characters of id, for display.
func (id ID) Short(n int) string {
	s := id.String()
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// Compare orders ids bytewise.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID decodes a 64-character hex string.
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) != 2*IDSize {
		return id, fmt.Errorf("%w: %q: want %d hex chars, got %d", ErrInvalidID, s, 2*IDSize, len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return NullID, fmt.Errorf("%w: %q: %v", ErrInvalidID, s, err)
	}
	return id, nil
}

// MustParseID is ParseID for constants and tests; it panics on error.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Kind identifies the kind of object an id refers to. KindNone means absent.
type Kind uint8

const (
	KindNone Kind = iota
	KindCommit
	KindTree
	KindFeatureType
	KindFeature
	KindTag
)

var kindNames = [...]string{
	KindNone:        "",
	KindCommit:      "commit",
	KindTree:        "tree",
	KindFeatureType: "featuretype",
	KindFeature:     "feature",
	KindTag:         "tag",
}

var ErrUnknownKind = errors.New("unknown object kind")

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		if k == KindNone {
			return "none"
		}
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the concrete object kinds.
func (k Kind) Valid() bool {
	return k > KindNone && int(k) < len(kindNames)
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if i != int(KindNone) && name == s {
			return Kind(i), nil
		}
	}
	return KindNone, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
