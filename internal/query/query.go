// Package query compiles a search specification into a matcher and scans
// loaded transcripts for hits.
package query

import (
	"context"
	"strings"
	"sync"

	"github.com/forPelevin/supercut/internal/types"
)

// Spec is the external query specification. Patterns are alternatives: a
// sentence hit for any pattern emits a match.
type Spec struct {
	Mode      types.SearchMode
	Patterns  []string
	Threshold float64 // fuzzy only, in [0,1]
	Seed      int64   // mash only

	// Context includes the sentences surrounding each hit as matches of
	// their own. Sentence modes only; the word-level modes have no
	// enclosing sentence to expand from.
	Context bool
}

// span is a candidate hit inside a single transcript.
type span struct {
	start, end float64
	text       string
}

// sentenceMatcher is one variant of the closed set of per-sentence matchers,
// selected at compile time.
type sentenceMatcher interface {
	match(s types.Sentence) []span
}

// Matcher is a compiled query. Safe for concurrent use across transcripts.
type Matcher struct {
	mode     types.SearchMode
	context  bool
	sentence sentenceMatcher // literal, regex, fuzzy
	fragment *fragmentMatcher
	mash     *mashMatcher
}

// Compile validates the spec and selects the matcher variant. It fails with
// *types.InvalidQueryError on an uncompilable regex, a fuzzy threshold
// outside [0,1], or an empty pattern list.
func Compile(spec Spec) (*Matcher, error) {
	patterns := make([]string, 0, len(spec.Patterns))
	for _, p := range spec.Patterns {
		if strings.TrimSpace(p) != "" {
			patterns = append(patterns, strings.TrimSpace(p))
		}
	}
	if len(patterns) == 0 {
		return nil, &types.InvalidQueryError{Reason: "no search pattern given"}
	}

	mode := spec.Mode
	if mode == "" {
		mode = types.SearchLiteral
	}

	m := &Matcher{mode: mode, context: spec.Context}
	var err error
	switch mode {
	case types.SearchLiteral:
		m.sentence = newLiteralMatcher(patterns)
	case types.SearchRegex:
		m.sentence, err = newRegexMatcher(patterns)
	case types.SearchFuzzy:
		m.sentence, err = newFuzzyMatcher(patterns, spec.Threshold)
	case types.SearchFragment:
		m.fragment, err = newFragmentMatcher(patterns)
	case types.SearchMash:
		m.mash = newMashMatcher(patterns, spec.Seed)
	default:
		return nil, &types.InvalidQueryError{Reason: "unknown search mode " + string(mode)}
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Scan runs the matcher over one transcript. Matches come out in transcript
// order. Cancellation is checked between sentences; a cancelled scan returns
// ctx.Err() and no partial result.
func (m *Matcher) Scan(ctx context.Context, tr types.Transcript) ([]types.Match, error) {
	switch m.mode {
	case types.SearchFragment:
		return m.fragment.scan(ctx, tr)
	case types.SearchMash:
		return m.mash.scan(ctx, tr)
	}

	spans := make([][]span, len(tr.Sentences))
	for i, s := range tr.Sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spans[i] = m.sentence.match(s)
	}

	// context expansion pulls in each hit's neighbors as whole-sentence
	// matches; a sentence that matched on its own is never duplicated
	include := make([]bool, len(tr.Sentences))
	if m.context {
		for i := range spans {
			if len(spans[i]) == 0 {
				continue
			}
			if i > 0 {
				include[i-1] = true
			}
			if i+1 < len(tr.Sentences) {
				include[i+1] = true
			}
		}
	}

	var out []types.Match
	for i, s := range tr.Sentences {
		if len(spans[i]) == 0 && include[i] {
			spans[i] = []span{{start: s.Start, end: s.End, text: s.Text}}
		}
		for _, sp := range spans[i] {
			out = append(out, types.Match{
				SourcePath:  tr.SourcePath,
				Start:       sp.start,
				End:         sp.end,
				MatchedText: sp.text,
			})
		}
	}
	return out, nil
}

// ScanAll matches every transcript and joins results in input order.
// Transcripts are scanned in parallel; there is no ordering dependency
// between them during matching. An empty result is not an error.
func ScanAll(ctx context.Context, trs []types.Transcript, m *Matcher, f Filters) ([]types.Match, error) {
	results := make([][]types.Match, len(trs))
	errs := make([]error, len(trs))

	var wg sync.WaitGroup
	for i := range trs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Scan(ctx, trs[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var merged []types.Match
	for _, r := range results {
		merged = append(merged, r...)
	}
	return f.apply(merged), nil
}
