package tree

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/odvcencio/geogot/pkg/node"
	"github.com/odvcencio/geogot/pkg/object"
)

var (
	roadsSchema = object.HashObject(object.KindFeatureType, []byte("roads"))
	bay         = node.Bounds{MinX: -122.6, MinY: 37.2, MaxX: -121.7, MaxY: 38.1, CRS: "EPSG:4326"}
)

func feature(t *testing.T, path string) node.Ref {
	t.Helper()
	r, err := node.New(path, object.KindFeature, object.HashObject(object.KindFeature, []byte(path)), roadsSchema)
	if err != nil {
		t.Fatalf("node.New(%q): %v", path, err)
	}
	return r
}

func paths(entries []node.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Node().Path())
	}
	return out
}

func TestNewSortsEntries(t *testing.T) {
	tr, err := New("roads", feature(t, "roads/z"), feature(t, "roads/a"), node.WithBounds(feature(t, "roads/m"), bay))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := paths(tr.Entries()), []string{"roads/a", "roads/m", "roads/z"}; !slices.Equal(got, want) {
		t.Fatalf("entries = %q, want %q", got, want)
	}
	if tr.Len() != 3 || tr.Path() != "roads" {
		t.Fatalf("Len/Path = %d/%q", tr.Len(), tr.Path())
	}
}

func TestNewReportsAllProblems(t *testing.T) {
	_, err := New("roads",
		feature(t, "roads/a"),
		feature(t, "roads/a"),
		feature(t, "rivers/b"),
		feature(t, "roads/deep/c"),
	)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrDuplicateEntry) || !errors.Is(err, ErrNotDirectChild) {
		t.Fatalf("error should wrap both sentinels: %v", err)
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 3 {
		t.Fatalf("errors = %d, want 3: %v", len(merr.Errors), merr.Errors)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("roads/"); !errors.Is(err, node.ErrInvalidPath) {
		t.Fatalf("trailing separator: got %v, want ErrInvalidPath", err)
	}
	if _, err := New("", node.Ref{}); !errors.Is(err, ErrUnencodable) {
		t.Fatalf("zero entry: got %v, want ErrUnencodable", err)
	}
	spaced := node.WithBounds(feature(t, "a"), node.Bounds{CRS: "EPSG 4326"})
	if _, err := New("", spaced); !errors.Is(err, ErrUnencodable) {
		t.Fatalf("crs with space: got %v, want ErrUnencodable", err)
	}
	if _, err := New("", feature(t, "line\nbreak")); !errors.Is(err, ErrUnencodable) {
		t.Fatalf("newline in name: got %v, want ErrUnencodable", err)
	}
}

func TestLookup(t *testing.T) {
	tr, err := New("roads", feature(t, "roads/a"), feature(t, "roads/b"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e, ok := tr.Lookup("b")
	if !ok || e.Node().Path() != "roads/b" {
		t.Fatalf("Lookup(b) = (%v, %v)", e, ok)
	}
	if _, ok := tr.Lookup("c"); ok {
		t.Fatal("Lookup(c) should miss")
	}

	root, err := New("", feature(t, "x"))
	if err != nil {
		t.Fatalf("New root: %v", err)
	}
	if _, ok := root.Lookup("x"); !ok {
		t.Fatal("root Lookup(x) should hit")
	}
}

func TestGroup(t *testing.T) {
	levels := Group([]node.Entry{
		feature(t, "top"),
		feature(t, "roads/highways/i5"),
		feature(t, "roads/highways/i80"),
		feature(t, "roads/local"),
	})
	if len(levels) != 3 {
		t.Fatalf("levels = %d, want 3: %v", len(levels), levels)
	}
	if got := paths(levels["roads/highways"]); !slices.Equal(got, []string{"roads/highways/i5", "roads/highways/i80"}) {
		t.Fatalf("roads/highways = %q", got)
	}
	if got := paths(levels[""]); !slices.Equal(got, []string{"top"}) {
		t.Fatalf("root = %q", got)
	}
	if _, ok := levels["roads"]; !ok {
		t.Fatal("intermediate level roads missing")
	}

	if got, want := BottomUp(levels), []string{"roads/highways", "roads", ""}; !slices.Equal(got, want) {
		t.Fatalf("BottomUp = %q, want %q", got, want)
	}
}

func TestGroupEmpty(t *testing.T) {
	levels := Group(nil)
	if len(levels) != 1 {
		t.Fatalf("Group(nil) = %v, want only root", levels)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	plain := feature(t, "parcels/1")
	spatial := node.WithBounds(feature(t, "parcels/2 west"), bay)
	noMeta, err := node.New("parcels/0", object.KindFeature, plain.ObjectID(), object.NullID)
	if err != nil {
		t.Fatal(err)
	}

	tr, err := New("parcels", spatial, plain, noMeta)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := Marshal(tr)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), data)
	}
	if !strings.HasSuffix(lines[2], " -122.6,37.2,-121.7,38.1,EPSG:4326 2 west") {
		t.Fatalf("spatial line = %q", lines[2])
	}
	if !strings.Contains(lines[0], " - - 0") {
		t.Fatalf("no-metadata line = %q", lines[0])
	}

	back, err := Unmarshal("parcels", data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := back.Entries()
	if len(got) != 3 {
		t.Fatalf("entries = %d", len(got))
	}
	for i, want := range tr.Entries() {
		if !node.SameEntry(got[i], want) {
			t.Errorf("entry %d = %v, want %v", i, got[i].Node(), want.Node())
		}
		wb, wok := want.Bounds()
		gb, gok := got[i].Bounds()
		if wok != gok || wb != gb {
			t.Errorf("entry %d bounds = (%v, %v), want (%v, %v)", i, gb, gok, wb, wok)
		}
	}
	if !bytes.Equal(Marshal(back), data) {
		t.Fatal("re-marshal should be byte-identical")
	}
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := New("", feature(t, "b"), feature(t, "a"), feature(t, "c"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New("", feature(t, "c"), feature(t, "b"), feature(t, "a"))
	if err != nil {
		t.Fatal(err)
	}
	if ID(a) != ID(b) {
		t.Fatal("same entries in different input order must hash identically")
	}
}

func TestUnmarshalErrors(t *testing.T) {
	id := object.HashBytes([]byte("x")).String()
	tests := []string{
		"feature " + id + " -",
		"blob " + id + " - - a",
		"feature nothex - - a",
		"feature " + id + " nothex - a",
		"feature " + id + " - 1,2,3 a",
		"feature " + id + " - 1,2,x,4 a",
	}
	for _, in := range tests {
		if _, err := Unmarshal("", []byte(in)); err == nil {
			t.Errorf("Unmarshal(%q) should fail", in)
		}
	}

	empty, err := Unmarshal("roads", nil)
	if err != nil || empty.Len() != 0 {
		t.Fatalf("Unmarshal(empty) = (%v, %v)", empty, err)
	}
}

func TestParseBounds(t *testing.T) {
	b := node.Bounds{MinX: -122.5, MinY: 37, MaxX: -121, MaxY: 38.25, CRS: "EPSG:4326"}
	s := FormatBounds(b)
	if s != "-122.5,37,-121,38.25,EPSG:4326" {
		t.Fatalf("FormatBounds = %q", s)
	}
	got, err := ParseBounds(s)
	if err != nil || got != b {
		t.Fatalf("ParseBounds(%q) = (%+v, %v), want %+v", s, got, err, b)
	}
	if got, err := ParseBounds("0,0,1,1"); err != nil || got.CRS != "" {
		t.Fatalf("ParseBounds without CRS = (%+v, %v)", got, err)
	}
	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "1,2,3,4,crs,extra"} {
		if _, err := ParseBounds(bad); err == nil {
			t.Errorf("ParseBounds(%q) should fail", bad)
		}
	}
}
