package query

import (
	"sort"

	"github.com/forPelevin/supercut/internal/types"
)

// Filters are composable predicates applied after base matching, in a fixed
// order: duration bounds, per-source cap, then global result cap. Zero values
// mean "no limit".
type Filters struct {
	// MinMatchDuration drops matches shorter than this many seconds.
	MinMatchDuration float64
	// MaxMatchDuration drops matches longer than this many seconds.
	MaxMatchDuration float64
	// PerSource keeps at most this many matches per source file.
	PerSource int
	// MaxResults keeps only the first K matches overall.
	MaxResults int
}

func (f Filters) apply(matches []types.Match) []types.Match {
	out := make([]types.Match, 0, len(matches))
	perSource := make(map[string]int)
	for _, m := range matches {
		d := m.End - m.Start
		if f.MinMatchDuration > 0 && d < f.MinMatchDuration {
			continue
		}
		if f.MaxMatchDuration > 0 && d > f.MaxMatchDuration {
			continue
		}
		if f.PerSource > 0 && perSource[m.SourcePath] >= f.PerSource {
			continue
		}
		perSource[m.SourcePath]++
		out = append(out, m)
		if f.MaxResults > 0 && len(out) >= f.MaxResults {
			break
		}
	}
	return out
}

// sortMatches orders matches by start time, preserving input order for ties.
func sortMatches(matches []types.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
}
