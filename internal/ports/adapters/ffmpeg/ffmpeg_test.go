package ffmpeg

import (
	"context"
	"errors"
	"testing"

	"github.com/forPelevin/supercut/internal/types"
)

func TestFmtSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000"},
		{1.5, "1.500"},
		{2.9, "2.900"},
		{123.4567, "123.457"},
	}
	for _, tt := range tests {
		if got := FmtSeconds(tt.in); got != tt.want {
			t.Errorf("FmtSeconds(%g) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConcatList(t *testing.T) {
	t.Parallel()

	got := ConcatList([]string{"/tmp/part_00000.mp4", "/tmp/o'brien.mp4"})
	want := "file '/tmp/part_00000.mp4'\n" +
		`file '/tmp/o'\''brien.mp4'` + "\n"
	if got != want {
		t.Fatalf("ConcatList() = %q, want %q", got, want)
	}
}

func TestClipPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		out  string
		seq  int
		want string
	}{
		{"cut.mp4", 0, "cut_00000.mp4"},
		{"cut.mp4", 12, "cut_00012.mp4"},
		{"/tmp/a.b/cut.mkv", 3, "/tmp/a.b/cut_00003.mkv"},
	}
	for _, tt := range tests {
		if got := ClipPath(tt.out, tt.seq); got != tt.want {
			t.Errorf("ClipPath(%q, %d) = %q, want %q", tt.out, tt.seq, got, tt.want)
		}
	}
}

func TestRender_EmptyPlan(t *testing.T) {
	t.Parallel()

	err := New("", "").Render(context.Background(), types.EditPlan{}, "out.mp4")
	var rerr *types.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if rerr.SegmentIndex != -1 {
		t.Fatalf("SegmentIndex = %d, want -1 for plan-level failures", rerr.SegmentIndex)
	}
}

func TestRender_MissingSourceNamesSegment(t *testing.T) {
	t.Parallel()

	plan := types.EditPlan{Segments: []types.Segment{
		{SourcePath: "/nonexistent/talk.mp4", Start: 0, End: 1},
	}}
	err := New("", "/nonexistent/ffprobe").Render(context.Background(), plan, "out.mp4")
	var rerr *types.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if rerr.SegmentIndex != 0 || rerr.Source != "/nonexistent/talk.mp4" {
		t.Fatalf("error missing segment context: %+v", rerr)
	}
}

func TestExportClips_EmptyPlan(t *testing.T) {
	t.Parallel()

	err := New("", "").ExportClips(context.Background(), types.EditPlan{}, "out.mp4")
	var rerr *types.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if rerr.SegmentIndex != -1 {
		t.Fatalf("SegmentIndex = %d, want -1 for plan-level failures", rerr.SegmentIndex)
	}
}

func TestExportClips_MissingSourceNamesSegment(t *testing.T) {
	t.Parallel()

	plan := types.EditPlan{Segments: []types.Segment{
		{SourcePath: "/nonexistent/talk.mp4", Start: 0, End: 1},
	}}
	err := New("", "/nonexistent/ffprobe").ExportClips(context.Background(), plan, "out.mp4")
	var rerr *types.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if rerr.SegmentIndex != 0 || rerr.Source != "/nonexistent/talk.mp4" {
		t.Fatalf("error missing segment context: %+v", rerr)
	}
}
