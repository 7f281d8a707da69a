package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/forPelevin/supercut/internal/cache"
	"github.com/forPelevin/supercut/internal/export"
	"github.com/forPelevin/supercut/internal/plan"
	"github.com/forPelevin/supercut/internal/ports"
	"github.com/forPelevin/supercut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/supercut/internal/ports/adapters/subfile"
	"github.com/forPelevin/supercut/internal/query"
	"github.com/forPelevin/supercut/internal/refine"
	"github.com/forPelevin/supercut/internal/types"
	"github.com/forPelevin/supercut/internal/usecase"
)

type Config struct {
	Inputs []string
	// Output is the supercut file name. An .m3u/.edl/.json extension
	// exports the plan instead of rendering media. Relative paths land in
	// the run output directory.
	Output string
	OutDir string

	Mode      string   // literal|regex|fuzzy|fragment|mash
	Patterns  []string // alternatives; any hit matches
	WordFile  string   // optional file with one extra pattern per line
	Threshold float64  // fuzzy similarity in [0,1]
	// ContextAware includes the sentences surrounding each hit
	// (sentence modes only).
	ContextAware bool

	PadLead      float64
	PadTrail     float64
	AllowBleed   bool
	Shift        float64
	MergeGap     float64
	KeepSeparate bool
	MinDuration  float64
	MaxDuration  float64
	Order        string // sequential|random|length|length-desc
	Seed         int64

	PerSource        int
	MaxResults       int
	MaxTotalDuration float64
	ResyncGap        float64
	Dedupe           bool
	Demo             bool
	// ExportClips writes each segment as its own numbered file.
	ExportClips bool

	// PreferTranscript biases sibling transcript discovery ("json", "srt").
	PreferTranscript string
	// CachePath enables the transcript cache; empty runs without one.
	CachePath string

	FFmpegPath  string
	FFprobePath string

	Logf   func(format string, args ...any)
	Stdout io.Writer
}

func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("no input files")
	}
	for _, in := range c.Inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	if len(c.Patterns) == 0 && c.WordFile == "" {
		return errors.New("a search pattern (or word file) is required")
	}
	return nil
}

func Run(ctx context.Context, cfg Config) error {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	patterns, err := allPatterns(cfg)
	if err != nil {
		return err
	}

	uc, closeDeps, err := buildUsecase(cfg)
	if err != nil {
		return err
	}
	defer closeDeps()

	in := usecase.Input{
		Sources: cfg.Inputs,
		Query: query.Spec{
			Mode:      types.SearchMode(cfg.Mode),
			Patterns:  patterns,
			Threshold: cfg.Threshold,
			Seed:      cfg.Seed,
			Context:   cfg.ContextAware,
		},
		Filters: query.Filters{
			PerSource: cfg.PerSource,
		},
		Refine: refine.Options{
			PadLead:      cfg.PadLead,
			PadTrail:     cfg.PadTrail,
			AllowBleed:   cfg.AllowBleed,
			Shift:        cfg.Shift,
			MergeGap:     cfg.MergeGap,
			KeepSeparate: cfg.KeepSeparate,
			MinDuration:  cfg.MinDuration,
			MaxDuration:  cfg.MaxDuration,
			Order:        types.OrderMode(cfg.Order),
			Seed:         cfg.Seed,
		},
		Plan: plan.Options{
			MaxTotalDuration: cfg.MaxTotalDuration,
			MinDuration:      cfg.MinDuration,
			MaxResults:       cfg.MaxResults,
			ResyncGap:        cfg.ResyncGap,
			Dedupe:           cfg.Dedupe,
		},
		Demo:        cfg.Demo,
		ExportClips: cfg.ExportClips,
		Logf:        logf,
	}

	if cfg.Demo {
		res, err := uc.Run(ctx, in)
		if err != nil {
			return err
		}
		if res.Listing == "" {
			logf("no results for %s", strings.Join(patterns, ", "))
			return nil
		}
		fmt.Fprint(stdout, res.Listing)
		return nil
	}

	runDir := buildRunOutDir(cfg.OutDir, cfg.Inputs[0], time.Now().UTC())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	logf("output run dir: %s", runDir)

	in.Output = cfg.Output
	if in.Output == "" {
		in.Output = "supercut.mp4"
	}
	if !filepath.IsAbs(in.Output) {
		in.Output = filepath.Join(runDir, in.Output)
	}

	res, err := uc.Run(ctx, in)

	// the plan is written whenever one exists, even on a render failure,
	// so the caller can inspect or retry it
	manifestPath := filepath.Join(runDir, "editplan.json")
	if len(res.Plan.Segments) > 0 || err == nil {
		if werr := export.WriteJSON(res.Plan, manifestPath); werr != nil {
			logf("write manifest: %v", werr)
		} else {
			logf("edit plan written: %s", manifestPath)
		}
	}
	if err != nil {
		var rerr *types.RenderError
		if errors.As(err, &rerr) {
			logf("render failed, edit plan preserved at %s", manifestPath)
		}
		return err
	}

	if len(res.Plan.Segments) == 0 {
		logf("no results for %s", strings.Join(patterns, ", "))
		return nil
	}
	if res.OutputPath != "" {
		logf("output written (%d segments): %s", len(res.Plan.Segments), res.OutputPath)
	}
	return nil
}

// RunNGrams prints the most common word n-grams instead of building a
// supercut.
func RunNGrams(ctx context.Context, cfg Config, n int) error {
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	uc, closeDeps, err := buildUsecase(cfg)
	if err != nil {
		return err
	}
	defer closeDeps()

	grams, err := uc.NGrams(ctx, cfg.Inputs, n)
	if err != nil {
		return err
	}
	// the full list is usually enormous; cap the listing
	if len(grams) > 100 {
		grams = grams[:100]
	}
	for _, g := range grams {
		fmt.Fprintf(stdout, "%s %d\n", g.Gram, g.Count)
	}
	return nil
}

func buildUsecase(cfg Config) (usecase.Usecase, func(), error) {
	sub := subfile.New(cfg.PreferTranscript)
	var ingest ports.Ingestor = sub
	closeDeps := func() {}

	if cfg.CachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
			return usecase.Usecase{}, nil, err
		}
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			return usecase.Usecase{}, nil, err
		}
		ingest = cache.NewIngestor(store, sub, sub.Locate)
		closeDeps = func() { _ = store.Close() }
	}

	renderer := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	return usecase.New(usecase.Deps{Ingest: ingest, Render: renderer, Clips: renderer}), closeDeps, nil
}

func allPatterns(cfg Config) ([]string, error) {
	patterns := append([]string(nil), cfg.Patterns...)
	if cfg.WordFile != "" {
		b, err := os.ReadFile(cfg.WordFile)
		if err != nil {
			return nil, fmt.Errorf("read word file: %w", err)
		}
		for _, line := range strings.Split(string(b), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				patterns = append(patterns, line)
			}
		}
	}
	return patterns, nil
}

func buildRunOutDir(outRoot, firstInput string, now time.Time) string {
	if outRoot == "" {
		outRoot = "out"
	}
	name := strings.TrimSuffix(filepath.Base(firstInput), filepath.Ext(firstInput))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var _ ports.Renderer = (*ffmpeg.Adapter)(nil)
var _ ports.ClipExporter = (*ffmpeg.Adapter)(nil)
var _ ports.Ingestor = (*subfile.Adapter)(nil)
