// Package plan imposes the global constraints across all sources and
// produces the final edit plan.
package plan

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/forPelevin/supercut/internal/types"
)

// Options are the cross-source constraints of the plan.
type Options struct {
	// MaxTotalDuration is the total-duration budget in seconds. The segment
	// that would cross the budget is truncated to fit exactly, or dropped
	// when truncation would leave it shorter than MinDuration. Zero means
	// unlimited.
	MaxTotalDuration float64

	// MinDuration mirrors the refiner's minimum so budget truncation never
	// emits a segment the refiner would have rejected.
	MinDuration float64

	// MaxResults keeps only the first K segments, independent of the
	// duration budget. Zero means unlimited.
	MaxResults int

	// ResyncGap is the pause in seconds inserted between consecutive
	// segments from different source files. Recorded on the plan; the
	// renderer applies it.
	ResyncGap float64

	// Dedupe drops near-identical segments across sources (same spoken
	// text, near-equal duration). Off by default.
	Dedupe bool
}

// Validate fails fast with *types.InvalidConfigurationError.
func (o Options) Validate() error {
	if o.MaxTotalDuration < 0 {
		return &types.InvalidConfigurationError{Field: "max_total_duration", Value: o.MaxTotalDuration, Reason: "must not be negative"}
	}
	if o.ResyncGap < 0 {
		return &types.InvalidConfigurationError{Field: "resync_gap", Value: o.ResyncGap, Reason: "must not be negative"}
	}
	if o.MaxResults < 0 {
		return &types.InvalidConfigurationError{Field: "max_results", Value: float64(o.MaxResults), Reason: "must not be negative"}
	}
	return nil
}

// Build assembles the terminal edit plan. The input slice is never mutated;
// an empty plan is a valid result.
func Build(segments []types.Segment, opts Options) (types.EditPlan, error) {
	if err := opts.Validate(); err != nil {
		return types.EditPlan{}, err
	}

	out := append([]types.Segment(nil), segments...)

	if opts.Dedupe {
		out = dedupe(out)
	}

	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}

	if opts.MaxTotalDuration > 0 {
		out = applyBudget(out, opts.MaxTotalDuration, opts.MinDuration)
	}

	return types.EditPlan{
		Segments:         out,
		ResyncGap:        opts.ResyncGap,
		MaxTotalDuration: opts.MaxTotalDuration,
	}, nil
}

// applyBudget accumulates segments in order until the budget is spent. The
// crossing segment is cut to fit exactly, unless the cut piece would be
// shorter than minDuration, in which case it is dropped.
func applyBudget(segments []types.Segment, budget, minDuration float64) []types.Segment {
	out := make([]types.Segment, 0, len(segments))
	var total float64
	for _, s := range segments {
		remaining := budget - total
		if remaining <= 0 {
			break
		}
		d := s.Duration()
		if d <= remaining {
			out = append(out, s)
			total += d
			continue
		}
		if remaining >= minDuration && remaining > 0 {
			s.End = s.Start + remaining
			out = append(out, s)
		}
		break
	}
	return out
}

// dedupe drops a segment when an earlier one carries the same folded text
// with a near-equal duration; the same quote spoken in two files survives
// only once.
func dedupe(segments []types.Segment) []types.Segment {
	const durationSlack = 0.25 // seconds

	caser := cases.Fold()
	seen := make(map[string][]float64)
	out := make([]types.Segment, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			out = append(out, s)
			continue
		}
		key := caser.String(text)
		dup := false
		for _, d := range seen[key] {
			if diff := s.Duration() - d; diff < durationSlack && diff > -durationSlack {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[key] = append(seen[key], s.Duration())
		out = append(out, s)
	}
	return out
}

// Describe renders a one-line summary, for run logs.
func Describe(p types.EditPlan) string {
	return fmt.Sprintf("%d segments, %.2fs total, resync gap %.2fs", len(p.Segments), p.TotalDuration(), p.ResyncGap)
}
