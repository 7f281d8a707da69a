package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "supercut <input>...",
		Short:        "Build a supercut of spoken-word matches across video files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// query
	root.Flags().StringArrayP("search", "s", nil, "Search pattern (repeatable; any hit matches)")
	root.Flags().String("search-type", "literal", "Match mode: literal, regex, fuzzy, fragment or mash")
	root.Flags().String("input-words", "", "File with extra search patterns, one per line")
	root.Flags().Float64("threshold", 0.75, "Fuzzy similarity threshold in [0,1]")
	root.Flags().Bool("context-aware", false, "Include the sentences surrounding each match")
	root.Flags().Int("per-source", 0, "Max matches kept per input file (0 = unlimited)")

	// refinement
	root.Flags().Float64P("padding", "p", 0, "Seconds of padding on both sides of each clip")
	root.Flags().Float64("pad-lead", 0, "Extra padding before each clip (adds to --padding)")
	root.Flags().Float64("pad-trail", 0, "Extra padding after each clip (adds to --padding)")
	root.Flags().Bool("allow-bleed", false, "Let padding cross into neighboring speech")
	root.Flags().Float64("resync", 0, "Shift transcript timestamps by +/- seconds")
	root.Flags().Float64("merge-gap", 0, "Merge clips whose gap is below this many seconds")
	root.Flags().Bool("keep-separate", false, "Trim overlaps at the midpoint instead of merging")
	root.Flags().Float64("min-duration", 0, "Drop clips shorter than this many seconds")
	root.Flags().Float64("max-duration", 0, "Truncate clips longer than this many seconds (0 = unlimited)")
	root.Flags().String("order", "sequential", "Clip order: sequential, random, length or length-desc")
	root.Flags().BoolP("randomize", "r", false, "Shorthand for --order random")
	root.Flags().Int64("seed", 0, "Seed for random order and mash mode")

	// plan
	root.Flags().IntP("max-clips", "m", 0, "Maximum number of clips in the supercut (0 = unlimited)")
	root.Flags().Float64("max-total-duration", 0, "Total duration budget in seconds (0 = unlimited)")
	root.Flags().Float64("resync-gap", 0, "Pause in seconds between clips from different files")
	root.Flags().Bool("dedupe", false, "Drop near-identical clips repeated across files")

	// output
	root.Flags().StringP("output", "o", "supercut.mp4", "Output file; .m3u/.edl/.json/.xml exports the edit plan instead")
	root.Flags().Bool("export-clips", false, "Write each clip as its own numbered file")
	root.Flags().String("out", "out", "Output directory for run artifacts")
	root.Flags().BoolP("demo", "d", false, "List matching clips without producing any file")
	root.Flags().IntP("ngrams", "n", 0, "Print the most common word n-grams of size N and exit")

	// plumbing
	root.Flags().String("spec", "", "YAML search-spec file; explicit flags override it")
	root.Flags().String("prefer-transcript", "", "Preferred transcript format next to the media: json, srt or vtt")
	root.Flags().String("cache", defaultCachePath, "Transcript cache database (empty disables caching)")
	root.Flags().BoolP("quiet", "q", false, "Suppress progress output")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const defaultCachePath = ".cache/transcripts.db"
