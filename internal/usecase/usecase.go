// Package usecase is the single forward pass of a run: ingest, match,
// refine, plan, then hand off to an export or the renderer. No backtracking;
// a typed failure halts the run with no partial plan.
package usecase

import (
	"context"

	"github.com/forPelevin/supercut/internal/export"
	"github.com/forPelevin/supercut/internal/plan"
	"github.com/forPelevin/supercut/internal/ports"
	"github.com/forPelevin/supercut/internal/query"
	"github.com/forPelevin/supercut/internal/refine"
	"github.com/forPelevin/supercut/internal/types"
)

type Deps struct {
	Ingest ports.Ingestor
	Render ports.Renderer
	Clips  ports.ClipExporter
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Sources []string
	Query   query.Spec
	Filters query.Filters
	Refine  refine.Options
	Plan    plan.Options

	// Output decides the hand-off: a .json/.m3u/.edl/.xml path exports the
	// plan, anything else goes to the renderer. Empty builds the plan only.
	Output string

	// Demo lists the matched segments without producing any file.
	Demo bool

	// ExportClips writes every segment as its own numbered file instead of
	// one supercut.
	ExportClips bool

	Logf func(format string, args ...any)
}

type Result struct {
	Plan       types.EditPlan
	OutputPath string
	Listing    string // set in demo mode
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	// all fail-fast validation happens before any source is touched
	matcher, err := query.Compile(in.Query)
	if err != nil {
		return Result{}, err
	}
	if err := in.Refine.Validate(); err != nil {
		return Result{}, err
	}
	if err := in.Plan.Validate(); err != nil {
		return Result{}, err
	}

	transcripts := make([]types.Transcript, 0, len(in.Sources))
	for _, src := range in.Sources {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		tr, err := u.d.Ingest.Ingest(ctx, src)
		if err != nil {
			return Result{}, err
		}
		logf("loaded %s: %d sentences", src, len(tr.Sentences))
		transcripts = append(transcripts, tr)
	}

	matches, err := query.ScanAll(ctx, transcripts, matcher, in.Filters)
	if err != nil {
		return Result{}, err
	}
	logf("matched %d ranges", len(matches))

	segments, err := refine.Refine(ctx, matches, transcripts, in.Refine)
	if err != nil {
		return Result{}, err
	}

	p, err := plan.Build(segments, in.Plan)
	if err != nil {
		return Result{}, err
	}
	logf("planned: %s", plan.Describe(p))

	res := Result{Plan: p}
	if in.Demo {
		res.Listing = export.Listing(p)
		return res, nil
	}
	if in.Output == "" {
		return res, nil
	}

	if in.ExportClips {
		if err := u.d.Clips.ExportClips(ctx, p, in.Output); err != nil {
			return res, err
		}
		res.OutputPath = in.Output
		return res, nil
	}

	if exported, err := export.Write(p, in.Output); exported {
		if err != nil {
			return res, err
		}
		res.OutputPath = in.Output
		return res, nil
	}

	// the plan survives a renderer failure so the caller can log or retry
	if err := u.d.Render.Render(ctx, p, in.Output); err != nil {
		return res, err
	}
	res.OutputPath = in.Output
	return res, nil
}

// NGrams lists the most common word n-grams across the sources, for query
// exploration before building a supercut.
func (u Usecase) NGrams(ctx context.Context, sources []string, n int) ([]query.NGramCount, error) {
	transcripts := make([]types.Transcript, 0, len(sources))
	for _, src := range sources {
		tr, err := u.d.Ingest.Ingest(ctx, src)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, tr)
	}
	return query.NGrams(transcripts, n), nil
}
