package query

import (
	"context"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"

	"github.com/forPelevin/supercut/internal/transcript"
	"github.com/forPelevin/supercut/internal/types"
)

// fragmentMatcher matches a run of consecutive words against the transcript's
// word stream, so the emitted span covers exactly the queried words. Unlike
// the sentence modes it may cross a sentence boundary, matching how word-level
// search behaves in subtitle tooling.
type fragmentMatcher struct {
	// one regexp per query word, per pattern
	queries [][]*regexp.Regexp
}

func newFragmentMatcher(patterns []string) (*fragmentMatcher, error) {
	queries := make([][]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		var q []*regexp.Regexp
		for _, tok := range strings.Fields(p) {
			re, err := regexp.Compile("(?i)" + tok)
			if err != nil {
				return nil, &types.InvalidQueryError{Pattern: p, Reason: err.Error()}
			}
			q = append(q, re)
		}
		if len(q) == 0 {
			return nil, &types.InvalidQueryError{Pattern: p, Reason: "no words in fragment pattern"}
		}
		queries = append(queries, q)
	}
	return &fragmentMatcher{queries: queries}, nil
}

func (m *fragmentMatcher) scan(ctx context.Context, tr types.Transcript) ([]types.Match, error) {
	words := transcript.Words(tr)
	var out []types.Match
	for _, q := range m.queries {
		if len(words) < len(q) {
			continue
		}
		for i := 0; i+len(q) <= len(words); i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			window := words[i : i+len(q)]
			if !windowMatches(q, window) {
				continue
			}
			out = append(out, types.Match{
				SourcePath:  tr.SourcePath,
				Start:       window[0].Start,
				End:         window[len(window)-1].End,
				MatchedText: transcript.JoinWords(window),
			})
		}
	}
	sortMatches(out)
	return out, nil
}

func windowMatches(q []*regexp.Regexp, window []types.Word) bool {
	for i, re := range q {
		if !re.MatchString(window[i].Text) {
			return false
		}
	}
	return true
}

// mashMatcher picks one random occurrence of every query word. Each
// transcript gets its own generator derived from the explicit seed and the
// source path, so picks stay reproducible no matter how transcripts are
// scheduled across goroutines.
type mashMatcher struct {
	queries [][]string
	seed    int64
}

func newMashMatcher(patterns []string, seed int64) *mashMatcher {
	queries := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		queries = append(queries, strings.Fields(p))
	}
	return &mashMatcher{queries: queries, seed: seed}
}

func (m *mashMatcher) scan(ctx context.Context, tr types.Transcript) ([]types.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New64a()
	h.Write([]byte(tr.SourcePath))
	rng := rand.New(rand.NewSource(m.seed ^ int64(h.Sum64())))

	words := transcript.Words(tr)
	var out []types.Match
	for _, q := range m.queries {
		for _, tok := range q {
			var hits []types.Word
			for _, w := range words {
				if strings.EqualFold(w.Text, tok) {
					hits = append(hits, w)
				}
			}
			// every query word must occur at least once, otherwise the
			// whole mash is abandoned for this transcript
			if len(hits) == 0 {
				return nil, nil
			}
			pick := hits[rng.Intn(len(hits))]
			out = append(out, types.Match{
				SourcePath:  tr.SourcePath,
				Start:       pick.Start,
				End:         pick.End,
				MatchedText: pick.Text,
			})
		}
	}
	return out, nil
}
