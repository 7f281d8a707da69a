// Package refine converts raw matches into composition-ready segments:
// padding, overlap resolution, duration filtering, and ordering. Every step
// is a pure transform returning a fresh slice.
package refine

import (
	"context"
	"math/rand"
	"sort"

	"github.com/forPelevin/supercut/internal/transcript"
	"github.com/forPelevin/supercut/internal/types"
)

// Options configure the refiner. Validate runs before any processing; a bad
// value fails the whole run with no partial output.
type Options struct {
	// PadLead and PadTrail extend each match backwards/forwards, in seconds.
	PadLead  float64
	PadTrail float64

	// AllowBleed lets padding cross into a neighboring sentence's speech.
	// Off by default: padding stops at the previous sentence's end and the
	// next sentence's start.
	AllowBleed bool

	// Shift moves every timestamp by this many seconds (positive or
	// negative) before padding, to compensate for out-of-sync transcripts.
	Shift float64

	// MergeGap merges two segments whose gap is below this many seconds.
	MergeGap float64

	// KeepSeparate disables merging: overlapping segments are instead
	// trimmed at the midpoint of the overlap.
	KeepSeparate bool

	// MinDuration drops segments shorter than this many seconds.
	MinDuration float64
	// MaxDuration truncates longer segments to this length, measured from
	// the segment start. Zero means unlimited.
	MaxDuration float64

	Order types.OrderMode
	// Seed drives the random order. An explicit seed keeps shuffles
	// reproducible; there is no fallback to process-global randomness.
	Seed int64
}

// Validate fails fast with *types.InvalidConfigurationError.
func (o Options) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"pad_lead", o.PadLead},
		{"pad_trail", o.PadTrail},
		{"merge_gap", o.MergeGap},
		{"min_duration", o.MinDuration},
		{"max_duration", o.MaxDuration},
	} {
		if f.value < 0 {
			return &types.InvalidConfigurationError{Field: f.name, Value: f.value, Reason: "must not be negative"}
		}
	}
	if o.MaxDuration > 0 && o.MinDuration > o.MaxDuration {
		return &types.InvalidConfigurationError{Field: "min_duration", Value: o.MinDuration, Reason: "exceeds max_duration"}
	}
	switch o.Order {
	case "", types.OrderSequential, types.OrderRandom, types.OrderLengthAsc, types.OrderLengthDesc:
	default:
		return &types.InvalidConfigurationError{Field: "order", Reason: "unknown order mode " + string(o.Order)}
	}
	return nil
}

// Refine runs the four-step pass over the matches. Transcripts provide the
// clamping bounds for padding. Cancellation is checked between steps.
func Refine(ctx context.Context, matches []types.Match, trs []types.Transcript, opts Options) ([]types.Segment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	bySource := make(map[string]types.Transcript, len(trs))
	for _, tr := range trs {
		bySource[tr.SourcePath] = tr
	}

	segs := pad(matches, bySource, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	segs = resolveOverlaps(segs, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	segs = filterDurations(segs, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return order(segs, opts), nil
}

// pad applies shift and lead/trail padding, clamped to [0, transcript end]
// and, unless bleed is allowed, to the neighboring sentences' speech bounds.
func pad(matches []types.Match, bySource map[string]types.Transcript, opts Options) []types.Segment {
	out := make([]types.Segment, 0, len(matches))
	for _, m := range matches {
		ms := m.Start + opts.Shift
		me := m.End + opts.Shift

		// floor/ceil bound how far padding may reach
		floor := 0.0
		ceil := me + opts.PadTrail
		if tr, ok := bySource[m.SourcePath]; ok {
			ceil = transcript.Duration(tr)
			if !opts.AllowBleed {
				floor, ceil = speechBounds(tr, ms, me)
			}
		}

		start := maxFloat(ms-opts.PadLead, floor)
		end := minFloat(me+opts.PadTrail, ceil)
		if start < 0 {
			start = 0
		}
		if end <= start {
			continue
		}
		out = append(out, types.Segment{SourcePath: m.SourcePath, Start: start, End: end, Text: m.MatchedText})
	}
	return out
}

// speechBounds returns how far padding may extend around [start,end] without
// crossing into a neighboring sentence: the previous sentence's end and the
// next sentence's start.
func speechBounds(tr types.Transcript, start, end float64) (float64, float64) {
	floor, ceil := 0.0, transcript.Duration(tr)
	sentences := tr.Sentences
	lo := sort.Search(len(sentences), func(i int) bool { return sentences[i].End >= start })
	if lo > 0 && lo <= len(sentences) {
		if prev := sentences[lo-1].End; prev <= start && prev > floor {
			floor = prev
		}
	}
	hi := sort.Search(len(sentences), func(i int) bool { return sentences[i].End >= end })
	next := -1
	switch {
	case hi < len(sentences) && sentences[hi].Start >= end:
		// end sits in the silence before sentence hi
		next = hi
	case hi+1 < len(sentences):
		next = hi + 1
	}
	if next >= 0 {
		if n := sentences[next].Start; n >= end && n < ceil {
			ceil = n
		}
	}
	return floor, ceil
}

// resolveOverlaps sorts each source's segments by start and removes overlap:
// merge mode joins segments that overlap or sit closer than the merge gap;
// keep-separate mode trims both at the overlap midpoint. Sources come back
// in input order.
func resolveOverlaps(segs []types.Segment, opts Options) []types.Segment {
	var sourceOrder []string
	grouped := make(map[string][]types.Segment)
	for _, s := range segs {
		if _, ok := grouped[s.SourcePath]; !ok {
			sourceOrder = append(sourceOrder, s.SourcePath)
		}
		grouped[s.SourcePath] = append(grouped[s.SourcePath], s)
	}

	var out []types.Segment
	for _, src := range sourceOrder {
		group := append([]types.Segment(nil), grouped[src]...)
		sort.SliceStable(group, func(i, j int) bool { return group[i].Start < group[j].Start })

		if opts.KeepSeparate {
			for i := 1; i < len(group); i++ {
				prev := &group[i-1]
				if group[i].Start >= prev.End {
					continue
				}
				// the overlap may be total containment, so the trim point
				// is the midpoint of the overlapping region; this keeps
				// every segment's end at or before the next one's start
				mid := (group[i].Start + minFloat(prev.End, group[i].End)) / 2
				prev.End = mid
				group[i].Start = mid
			}
			out = append(out, group...)
			continue
		}

		merged := group[:1]
		for _, s := range group[1:] {
			last := &merged[len(merged)-1]
			if s.Start <= last.End+opts.MergeGap {
				if s.End > last.End {
					last.End = s.End
				}
				continue
			}
			merged = append(merged, s)
		}
		out = append(out, merged...)
	}
	return out
}

// filterDurations drops segments below the minimum and truncates segments
// above the maximum, keeping the start.
func filterDurations(segs []types.Segment, opts Options) []types.Segment {
	out := make([]types.Segment, 0, len(segs))
	for _, s := range segs {
		if s.End <= s.Start {
			continue
		}
		if opts.MinDuration > 0 && s.Duration() < opts.MinDuration {
			continue
		}
		if opts.MaxDuration > 0 && s.Duration() > opts.MaxDuration {
			s.End = s.Start + opts.MaxDuration
		}
		out = append(out, s)
	}
	return out
}

func order(segs []types.Segment, opts Options) []types.Segment {
	out := append([]types.Segment(nil), segs...)
	switch opts.Order {
	case types.OrderRandom:
		rng := rand.New(rand.NewSource(opts.Seed))
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	case types.OrderLengthAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Duration() < out[j].Duration() })
	case types.OrderLengthDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Duration() > out[j].Duration() })
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
