package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/supercut/internal/pipeline"
)

func run(cmd *cobra.Command, inputs []string) error {
	f := cmd.Flags()

	abs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		a, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		abs = append(abs, a)
	}

	cfg := pipeline.Config{
		Inputs:      abs,
		FFmpegPath:  getenvDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenvDefault("FFPROBE_PATH", "ffprobe"),
	}

	cfg.Patterns, _ = f.GetStringArray("search")
	cfg.Mode, _ = f.GetString("search-type")
	cfg.WordFile, _ = f.GetString("input-words")
	cfg.Threshold, _ = f.GetFloat64("threshold")
	cfg.ContextAware, _ = f.GetBool("context-aware")
	cfg.PerSource, _ = f.GetInt("per-source")

	padding, _ := f.GetFloat64("padding")
	cfg.PadLead, _ = f.GetFloat64("pad-lead")
	cfg.PadTrail, _ = f.GetFloat64("pad-trail")
	cfg.PadLead += padding
	cfg.PadTrail += padding
	cfg.AllowBleed, _ = f.GetBool("allow-bleed")
	cfg.Shift, _ = f.GetFloat64("resync")
	cfg.MergeGap, _ = f.GetFloat64("merge-gap")
	cfg.KeepSeparate, _ = f.GetBool("keep-separate")
	cfg.MinDuration, _ = f.GetFloat64("min-duration")
	cfg.MaxDuration, _ = f.GetFloat64("max-duration")
	cfg.Order, _ = f.GetString("order")
	cfg.Seed, _ = f.GetInt64("seed")

	cfg.MaxResults, _ = f.GetInt("max-clips")
	cfg.MaxTotalDuration, _ = f.GetFloat64("max-total-duration")
	cfg.ResyncGap, _ = f.GetFloat64("resync-gap")
	cfg.Dedupe, _ = f.GetBool("dedupe")

	cfg.Output, _ = f.GetString("output")
	cfg.OutDir, _ = f.GetString("out")
	cfg.Demo, _ = f.GetBool("demo")
	cfg.ExportClips, _ = f.GetBool("export-clips")
	cfg.PreferTranscript, _ = f.GetString("prefer-transcript")
	cfg.CachePath, _ = f.GetString("cache")

	if specPath, _ := f.GetString("spec"); specPath != "" {
		if err := applySpecFile(&cfg, specPath, f); err != nil {
			return err
		}
	}
	if randomize, _ := f.GetBool("randomize"); randomize {
		cfg.Order = "random"
	}
	if quiet, _ := f.GetBool("quiet"); !quiet {
		cfg.Logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	if n, _ := f.GetInt("ngrams"); n > 0 {
		return pipeline.RunNGrams(ctx, cfg, n)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
