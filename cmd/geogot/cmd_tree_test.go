package main

import (
	"strings"
	"testing"

	"github.com/odvcencio/geogot/pkg/object"
	"github.com/odvcencio/geogot/pkg/repo"
	"github.com/odvcencio/geogot/pkg/tree"
)

func featureID(s string) object.ID {
	return object.HashObject(object.KindFeature, []byte(s))
}

func TestParseEntryLine(t *testing.T) {
	id := featureID("f")
	e, err := parseEntryLine("feature " + id.String() + " roads/i5 -1.5,2,3,4.25,EPSG:4326")
	if err != nil {
		t.Fatalf("parseEntryLine: %v", err)
	}
	if e.Node().Path() != "roads/i5" || e.Node().ObjectID() != id {
		t.Fatalf("entry = %v", e.Node())
	}
	b, ok := e.Bounds()
	if !ok || b.MinX != -1.5 || b.MaxY != 4.25 || b.CRS != "EPSG:4326" {
		t.Fatalf("bounds = %+v, %v", b, ok)
	}

	for _, bad := range []string{
		"feature " + id.String(),
		"blob " + id.String() + " a",
		"feature xyz a",
		"feature " + id.String() + " a/",
		"feature " + id.String() + " a 1,2,3",
	} {
		if _, err := parseEntryLine(bad); err == nil {
			t.Errorf("parseEntryLine(%q) should fail", bad)
		}
	}
}

func TestTreeBuildCmdMatchesLibrary(t *testing.T) {
	initCmdRepo(t)
	listing := strings.Join([]string{
		"# two roads and a river",
		"feature " + featureID("i5").String() + " roads/i5 0,0,1,1",
		"feature " + featureID("i80").String() + " roads/i80",
		"",
		"feature " + featureID("sac").String() + " rivers/sacramento",
	}, "\n")

	out := mustRun(t, listing, "tree", "build")
	entries, err := parseEntries(strings.NewReader(listing))
	if err != nil {
		t.Fatalf("parseEntries: %v", err)
	}
	r, err := repo.Open(".")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want, err := tree.Build(r.Objects, entries)
	if err != nil {
		t.Fatalf("tree.Build: %v", err)
	}
	if strings.TrimSpace(out) != want.String() {
		t.Fatalf("tree build = %q, want %s", out, want)
	}

	if _, err := runCmd(t, "feature nope a\n", "tree", "build"); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("malformed listing: %v", err)
	}
}

func TestStageAndTreeLsCmd(t *testing.T) {
	initCmdRepo(t)
	i5 := featureID("i5")
	listing := "feature " + i5.String() + " roads/i5 0,0,1,1\n"

	staged := mustRun(t, listing, "stage")
	if !strings.HasPrefix(staged, "tree ") || !strings.HasSuffix(staged, " STAGE_HEAD\n") {
		t.Fatalf("stage output = %q", staged)
	}

	if got := mustRun(t, "", "tree", "ls"); got != "feature "+i5.String()+" roads/i5 0,0,1,1\n" {
		t.Fatalf("tree ls = %q", got)
	}
	if got := mustRun(t, "", "tree", "ls", "WORK_HEAD"); got != "" {
		t.Fatalf("tree ls WORK_HEAD = %q, want empty", got)
	}

	mustRun(t, listing, "stage", "--work")
	if got := mustRun(t, "", "tree", "ls", "WORK_HEAD"); !strings.Contains(got, "roads/i5") {
		t.Fatalf("tree ls WORK_HEAD after stage --work = %q", got)
	}
}

func TestParseEntryLineMetadata(t *testing.T) {
	id := featureID("i5")
	schema := object.HashObject(object.KindFeatureType, []byte("roads schema"))

	for _, line := range []string{
		"feature " + id.String() + " roads/i5 meta=" + schema.String() + " 0,0,1,1",
		"feature " + id.String() + " roads/i5 0,0,1,1 meta=" + schema.String(),
	} {
		e, err := parseEntryLine(line)
		if err != nil {
			t.Fatalf("parseEntryLine(%q): %v", line, err)
		}
		if e.Node().MetadataID() != schema {
			t.Fatalf("metadata id = %s, want %s", e.Node().MetadataID(), schema)
		}
		if _, ok := e.Bounds(); !ok {
			t.Fatalf("bounds missing for %q", line)
		}
	}

	e, err := parseEntryLine("feature " + id.String() + " roads/i5 meta=" + schema.String())
	if err != nil {
		t.Fatalf("parseEntryLine without bounds: %v", err)
	}
	if _, ok := e.Bounds(); ok || e.Node().MetadataID() != schema {
		t.Fatalf("entry = %v", e.Node())
	}
	if got, want := formatEntryLine(e), "feature "+id.String()+" roads/i5 meta="+schema.String(); got != want {
		t.Fatalf("formatEntryLine = %q, want %q", got, want)
	}

	for _, bad := range []string{
		"feature " + id.String() + " a meta=xyz",
		"feature " + id.String() + " a meta=" + schema.String() + " meta=" + schema.String(),
		"feature " + id.String() + " a 0,0,1,1 0,0,2,2",
	} {
		if _, err := parseEntryLine(bad); err == nil {
			t.Errorf("parseEntryLine(%q) should fail", bad)
		}
	}
}

func TestTreeLsShowsMetadata(t *testing.T) {
	initCmdRepo(t)
	id := featureID("i5")
	schema := object.HashObject(object.KindFeatureType, []byte("roads schema"))
	line := "feature " + id.String() + " roads/i5 meta=" + schema.String() + " 0,0,1,1\n"

	mustRun(t, line, "stage")
	if got := mustRun(t, "", "tree", "ls"); got != line {
		t.Fatalf("tree ls = %q, want %q", got, line)
	}
}
