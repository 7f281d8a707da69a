package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/forPelevin/supercut/internal/plan"
	"github.com/forPelevin/supercut/internal/query"
	"github.com/forPelevin/supercut/internal/refine"
	"github.com/forPelevin/supercut/internal/types"
)

type fakeIngestor struct {
	transcripts map[string]types.Transcript
	calls       int
}

func (f *fakeIngestor) Ingest(ctx context.Context, sourcePath string) (types.Transcript, error) {
	f.calls++
	tr, ok := f.transcripts[sourcePath]
	if !ok {
		return types.Transcript{}, fmt.Errorf("no transcript for %s", sourcePath)
	}
	return tr, nil
}

type fakeRenderer struct {
	rendered []types.EditPlan
	outPaths []string
	err      error
}

func (f *fakeRenderer) Render(ctx context.Context, p types.EditPlan, outPath string) error {
	f.rendered = append(f.rendered, p)
	f.outPaths = append(f.outPaths, outPath)
	return f.err
}

type fakeClipExporter struct {
	exported []types.EditPlan
	outPaths []string
	err      error
}

func (f *fakeClipExporter) ExportClips(ctx context.Context, p types.EditPlan, outPath string) error {
	f.exported = append(f.exported, p)
	f.outPaths = append(f.outPaths, outPath)
	return f.err
}

func catTranscript(src string) types.Transcript {
	return types.Transcript{
		SourcePath: src,
		Sentences: []types.Sentence{
			{Start: 0, End: 1, Text: "hi there", Words: []types.Word{
				{Start: 0, End: 0.4, Text: "hi"},
				{Start: 0.5, End: 1, Text: "there"},
			}},
			{Start: 2, End: 3.5, Text: "a cat sat", Words: []types.Word{
				{Start: 2, End: 2.1, Text: "a"},
				{Start: 2.5, End: 2.9, Text: "cat"},
				{Start: 3.0, End: 3.5, Text: "sat"},
			}},
		},
	}
}

func newFixture() (Usecase, *fakeIngestor, *fakeRenderer) {
	ing := &fakeIngestor{transcripts: map[string]types.Transcript{
		"talk.mp4": catTranscript("talk.mp4"),
	}}
	ren := &fakeRenderer{}
	return New(Deps{Ingest: ing, Render: ren, Clips: &fakeClipExporter{}}), ing, ren
}

func TestRun_LiteralSearchBuildsPlan(t *testing.T) {
	t.Parallel()

	u, _, ren := newFixture()
	res, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Mode: types.SearchLiteral, Patterns: []string{"cat"}},
		Refine:  refine.Options{PadLead: 0.1, PadTrail: 0.1},
		Output:  "super.mp4",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Plan.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %+v", res.Plan.Segments)
	}
	s := res.Plan.Segments[0]
	// the matched sentence runs 2..3.5; lead padding reaches back into the
	// silence, trail padding is clamped at the transcript's end
	if s.Start != 1.9 || s.End != 3.5 {
		t.Fatalf("segment = %g..%g, want 1.9..3.5", s.Start, s.End)
	}
	if len(ren.rendered) != 1 || ren.outPaths[0] != "super.mp4" {
		t.Fatalf("renderer not driven: %+v", ren.outPaths)
	}
	if res.OutputPath != "super.mp4" {
		t.Fatalf("OutputPath = %q", res.OutputPath)
	}
}

func TestRun_EmptyOutputBuildsPlanOnly(t *testing.T) {
	t.Parallel()

	u, _, ren := newFixture()
	res, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Patterns: []string{"cat"}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Plan.Segments) != 1 || res.OutputPath != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(ren.rendered) != 0 {
		t.Fatal("renderer must not run without an output path")
	}
}

func TestRun_DemoListsInsteadOfRendering(t *testing.T) {
	t.Parallel()

	u, _, ren := newFixture()
	res, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Patterns: []string{"cat"}},
		Output:  "super.mp4",
		Demo:    true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(res.Listing, "talk.mp4\t") {
		t.Fatalf("listing missing source: %q", res.Listing)
	}
	if len(ren.rendered) != 0 {
		t.Fatal("demo mode must not render")
	}
}

func TestRun_ExportSkipsRenderer(t *testing.T) {
	t.Parallel()

	u, _, ren := newFixture()
	out := filepath.Join(t.TempDir(), "plan.json")
	res, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Patterns: []string{"cat"}},
		Output:  out,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.OutputPath != out {
		t.Fatalf("OutputPath = %q, want %q", res.OutputPath, out)
	}
	if len(ren.rendered) != 0 {
		t.Fatal("export outputs must not touch the renderer")
	}
}

func TestRun_ExportClipsSkipsRenderer(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{transcripts: map[string]types.Transcript{
		"talk.mp4": catTranscript("talk.mp4"),
	}}
	ren := &fakeRenderer{}
	clips := &fakeClipExporter{}
	u := New(Deps{Ingest: ing, Render: ren, Clips: clips})

	res, err := u.Run(context.Background(), Input{
		Sources:     []string{"talk.mp4"},
		Query:       query.Spec{Patterns: []string{"cat"}},
		Output:      "super.mp4",
		ExportClips: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(clips.exported) != 1 || clips.outPaths[0] != "super.mp4" {
		t.Fatalf("clip exporter not driven: %+v", clips.outPaths)
	}
	if len(ren.rendered) != 0 {
		t.Fatal("clip export must not render a single supercut")
	}
	if res.OutputPath != "super.mp4" {
		t.Fatalf("OutputPath = %q", res.OutputPath)
	}
}

func TestRun_ExportClipsFailurePreservesPlan(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{transcripts: map[string]types.Transcript{
		"talk.mp4": catTranscript("talk.mp4"),
	}}
	clips := &fakeClipExporter{err: &types.RenderError{SegmentIndex: 0, Source: "talk.mp4", Err: errors.New("boom")}}
	u := New(Deps{Ingest: ing, Render: &fakeRenderer{}, Clips: clips})

	res, err := u.Run(context.Background(), Input{
		Sources:     []string{"talk.mp4"},
		Query:       query.Spec{Patterns: []string{"cat"}},
		Output:      "super.mp4",
		ExportClips: true,
	})
	var rerr *types.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if len(res.Plan.Segments) != 1 {
		t.Fatal("plan must survive an export failure")
	}
	if res.OutputPath != "" {
		t.Fatalf("OutputPath = %q after failed export", res.OutputPath)
	}
}

func TestRun_InvalidQueryNeverIngests(t *testing.T) {
	t.Parallel()

	u, ing, _ := newFixture()
	_, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Mode: types.SearchRegex, Patterns: []string{"("}},
	})
	var qerr *types.InvalidQueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected InvalidQueryError, got %v", err)
	}
	if ing.calls != 0 {
		t.Fatalf("ingest ran %d times before validation failed", ing.calls)
	}
}

func TestRun_InvalidOptionsNeverIngest(t *testing.T) {
	t.Parallel()

	u, ing, _ := newFixture()
	_, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Patterns: []string{"cat"}},
		Refine:  refine.Options{PadLead: -1},
	})
	var cerr *types.InvalidConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected InvalidConfigurationError, got %v", err)
	}
	if ing.calls != 0 {
		t.Fatalf("ingest ran %d times before validation failed", ing.calls)
	}
}

func TestRun_RenderFailurePreservesPlan(t *testing.T) {
	t.Parallel()

	u, _, ren := newFixture()
	ren.err = &types.RenderError{SegmentIndex: 0, Source: "talk.mp4", Err: errors.New("boom")}

	res, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Patterns: []string{"cat"}},
		Output:  "super.mp4",
	})
	var rerr *types.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if len(res.Plan.Segments) != 1 {
		t.Fatal("plan must survive a renderer failure")
	}
	if res.OutputPath != "" {
		t.Fatalf("OutputPath = %q after failed render", res.OutputPath)
	}
}

func TestRun_IsDeterministic(t *testing.T) {
	t.Parallel()

	in := Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Mode: types.SearchMash, Patterns: []string{"cat sat hi"}, Seed: 42},
		Refine:  refine.Options{Order: types.OrderRandom, Seed: 42},
	}
	run := func() types.EditPlan {
		u, _, _ := newFixture()
		res, err := u.Run(context.Background(), in)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res.Plan
	}
	if !reflect.DeepEqual(run(), run()) {
		t.Fatal("identical inputs and seeds must yield identical plans")
	}
}

func TestRun_NoMatchesIsSuccess(t *testing.T) {
	t.Parallel()

	u, _, ren := newFixture()
	res, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4"},
		Query:   query.Spec{Patterns: []string{"unicorn"}},
	})
	if err != nil {
		t.Fatalf("zero matches must not error: %v", err)
	}
	if len(res.Plan.Segments) != 0 {
		t.Fatalf("expected empty plan, got %+v", res.Plan)
	}
	if len(ren.rendered) != 0 {
		t.Fatal("nothing to render")
	}
}

func TestRun_IngestErrorHaltsRun(t *testing.T) {
	t.Parallel()

	u, _, ren := newFixture()
	_, err := u.Run(context.Background(), Input{
		Sources: []string{"talk.mp4", "absent.mp4"},
		Query:   query.Spec{Patterns: []string{"cat"}},
		Output:  "super.mp4",
	})
	if err == nil {
		t.Fatal("expected the missing source to fail the run")
	}
	if len(ren.rendered) != 0 {
		t.Fatal("no partial output on ingest failure")
	}
}

func TestRun_BudgetAcrossSources(t *testing.T) {
	t.Parallel()

	ing := &fakeIngestor{transcripts: map[string]types.Transcript{
		"a.mp4": catTranscript("a.mp4"),
		"b.mp4": catTranscript("b.mp4"),
	}}
	ren := &fakeRenderer{}
	u := New(Deps{Ingest: ing, Render: ren})

	res, err := u.Run(context.Background(), Input{
		Sources: []string{"a.mp4", "b.mp4"},
		Query:   query.Spec{Patterns: []string{"cat"}},
		Plan:    plan.Options{MaxTotalDuration: 2, ResyncGap: 0.5},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// each match is the 1.5s sentence; the second is cut to the 0.5s left
	if got := res.Plan.TotalDuration(); got != 2 {
		t.Fatalf("total = %g, want the budget spent exactly", got)
	}
	if res.Plan.ResyncGap != 0.5 {
		t.Fatalf("resync gap lost: %+v", res.Plan)
	}
	if res.Plan.Segments[0].SourcePath != "a.mp4" {
		t.Fatal("segments must keep source input order")
	}
}

func TestNGrams(t *testing.T) {
	t.Parallel()

	u, _, _ := newFixture()
	counts, err := u.NGrams(context.Background(), []string{"talk.mp4"}, 1)
	if err != nil {
		t.Fatalf("ngrams: %v", err)
	}
	if len(counts) == 0 {
		t.Fatal("expected some n-grams")
	}
	for i := 1; i < len(counts); i++ {
		if counts[i].Count > counts[i-1].Count {
			t.Fatalf("counts must be descending: %+v", counts)
		}
	}
}
