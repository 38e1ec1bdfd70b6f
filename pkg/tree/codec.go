package tree

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/odvcencio/geogot/pkg/node"
	"github.com/odvcencio/geogot/pkg/object"
)

// Marshal serializes a tree in entry order. Each entry is one line:
//
//	kind objectid metadataid bounds name
//
// where a null metadata id and absent bounds are "-", and bounds are
// "minx,miny,maxx,maxy[,crs]". The name is last so it may contain spaces.
func Marshal(t *Tree) []byte {
	var buf bytes.Buffer
	for _, e := range t.entries {
		n := e.Node()
		meta := "-"
		if n.HasMetadata() {
			meta = n.MetadataID().String()
		}
		fmt.Fprintf(&buf, "%s %s %s %s %s\n", n.Kind(), n.ObjectID(), meta, formatBounds(e), n.Name())
	}
	return buf.Bytes()
}

func formatBounds(e node.Entry) string {
	b, ok := e.Bounds()
	if !ok {
		return "-"
	}
	return FormatBounds(b)
}

// FormatBounds renders b as "minx,miny,maxx,maxy[,crs]", the form
// ParseBounds accepts.
func FormatBounds(b node.Bounds) string {
	parts := []string{
		strconv.FormatFloat(b.MinX, 'g', -1, 64),
		strconv.FormatFloat(b.MinY, 'g', -1, 64),
		strconv.FormatFloat(b.MaxX, 'g', -1, 64),
		strconv.FormatFloat(b.MaxY, 'g', -1, 64),
	}
	if b.CRS != "" {
		parts = append(parts, b.CRS)
	}
	return strings.Join(parts, ",")
}

// ParseBounds parses the output of FormatBounds.
func ParseBounds(s string) (node.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return node.Bounds{}, fmt.Errorf("malformed bounds %q", s)
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return node.Bounds{}, fmt.Errorf("malformed bounds %q: %w", s, err)
		}
		vals[i] = v
	}
	b := node.Bounds{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	if len(parts) == 5 {
		b.CRS = parts[4]
	}
	return b, nil
}

// Unmarshal parses the tree at path from its serialized form.
func Unmarshal(path string, data []byte) (*Tree, error) {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return New(path)
	}

	var entries []node.Entry
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 5)
		if len(parts) != 5 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		kind, err := object.ParseKind(parts[0])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		id, err := object.ParseID(parts[1])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		meta := object.NullID
		if parts[2] != "-" {
			if meta, err = object.ParseID(parts[2]); err != nil {
				return nil, fmt.Errorf("unmarshal tree: %w", err)
			}
		}
		n, err := node.New(node.ChildPath(path, parts[4]), kind, id, meta)
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		if parts[3] == "-" {
			entries = append(entries, n)
			continue
		}
		b, err := ParseBounds(parts[3])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree %q: %w", n.Path(), err)
		}
		entries = append(entries, node.WithBounds(n, b))
	}
	return New(path, entries...)
}

// ID is the id the tree would be stored under.
func ID(t *Tree) object.ID {
	return object.HashObject(object.KindTree, Marshal(t))
}
