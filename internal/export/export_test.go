package export

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/supercut/internal/types"
)

func testPlan() types.EditPlan {
	return types.EditPlan{
		Segments: []types.Segment{
			{SourcePath: "talk.mp4", Start: 1.5, End: 3, Text: "a cat sat"},
			{SourcePath: "other.mp4", Start: 0, End: 2.25, Text: "hi there"},
		},
		ResyncGap: 0.5,
	}
}

func TestWrite_DispatchesOnExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, ext := range []string{".json", ".m3u", ".edl", ".xml", ".JSON"} {
		handled, err := Write(testPlan(), filepath.Join(dir, "out"+ext))
		if err != nil {
			t.Fatalf("write %s: %v", ext, err)
		}
		if !handled {
			t.Fatalf("extension %s should be handled", ext)
		}
	}

	handled, err := Write(testPlan(), filepath.Join(dir, "out.mp4"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if handled {
		t.Fatal(".mp4 must fall through to the renderer")
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.json")
	if err := WriteJSON(testPlan(), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got types.EditPlan
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Segments) != 2 || got.Segments[0].Start != 1.5 || got.ResyncGap != 0.5 {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestWriteM3U(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.m3u")
	if err := WriteM3U(testPlan(), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if lines[0] != "#EXTM3U" {
		t.Fatalf("missing header: %q", lines[0])
	}
	if lines[2] != "#EXTVLCOPT:start-time=1.5" || lines[3] != "#EXTVLCOPT:stop-time=3" {
		t.Fatalf("bad clip options: %q %q", lines[2], lines[3])
	}
	if lines[4] != "talk.mp4" {
		t.Fatalf("bad source line: %q", lines[4])
	}
}

func TestWriteEDL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.edl")
	if err := WriteEDL(testPlan(), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if lines[0] != "# mpv EDL v0" {
		t.Fatalf("missing header: %q", lines[0])
	}
	// path,start,duration with the path made absolute
	if !strings.HasSuffix(lines[1], "talk.mp4,1.5,1.5") || !filepath.IsAbs(strings.SplitN(lines[1], ",", 2)[0]) {
		t.Fatalf("bad EDL line: %q", lines[1])
	}
}

func TestWriteFCPXML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cut.xml")
	if err := WriteFCPXML(testPlan(), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "<!DOCTYPE fcpxml>") {
		t.Fatal("missing fcpxml doctype")
	}

	var got fcpXML
	if err := xml.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Version != "1.9" {
		t.Fatalf("version = %q, want 1.9", got.Version)
	}
	if len(got.Resources.Assets) != 2 {
		t.Fatalf("got %d assets, want one per source", len(got.Resources.Assets))
	}
	if got.Resources.Assets[0].ID != "r1" || !strings.HasPrefix(got.Resources.Assets[0].Src, "file://") {
		t.Fatalf("bad asset: %+v", got.Resources.Assets[0])
	}
	if got.Library.Event.Project.Name != "cut" {
		t.Fatalf("project name = %q, want output basename", got.Library.Event.Project.Name)
	}

	// clip, gap at the source change, clip
	items := got.Library.Event.Project.Sequence.Spine.Items
	if len(items) != 3 {
		t.Fatalf("got %d spine items, want 3: %+v", len(items), items)
	}
	first := items[0]
	if first.XMLName.Local != "asset-clip" || first.Ref != "r1" {
		t.Fatalf("bad first clip: %+v", first)
	}
	if first.Offset != "0/1000s" || first.Start != "1500/1000s" || first.Duration != "1500/1000s" {
		t.Fatalf("bad first clip times: %+v", first)
	}
	gap := items[1]
	if gap.XMLName.Local != "gap" || gap.Offset != "1500/1000s" || gap.Duration != "500/1000s" {
		t.Fatalf("bad gap: %+v", gap)
	}
	last := items[2]
	if last.Ref != "r2" || last.Offset != "2000/1000s" || last.Duration != "2250/1000s" {
		t.Fatalf("bad second clip: %+v", last)
	}
}

func TestListing(t *testing.T) {
	t.Parallel()

	got := Listing(testPlan())
	want := "talk.mp4\t1.5\t3\ta cat sat\nother.mp4\t0\t2.25\thi there\n"
	if got != want {
		t.Fatalf("Listing() = %q, want %q", got, want)
	}
}
