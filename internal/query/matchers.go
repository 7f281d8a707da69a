package query

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/forPelevin/supercut/internal/types"
)

// fold normalizes text for caseless comparison. A fresh caser per call:
// cases.Caser is not safe for concurrent use.
func fold(s string) string { return cases.Fold().String(s) }

type literalMatcher struct {
	folded []string
}

func newLiteralMatcher(patterns []string) *literalMatcher {
	folded := make([]string, len(patterns))
	for i, p := range patterns {
		folded[i] = fold(p)
	}
	return &literalMatcher{folded: folded}
}

func (m *literalMatcher) match(s types.Sentence) []span {
	text := fold(s.Text)
	for _, p := range m.folded {
		if strings.Contains(text, p) {
			return []span{{start: s.Start, end: s.End, text: s.Text}}
		}
	}
	return nil
}

type regexMatcher struct {
	res []*regexp.Regexp
}

func newRegexMatcher(patterns []string) (*regexMatcher, error) {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &types.InvalidQueryError{Pattern: p, Reason: err.Error()}
		}
		res[i] = re
	}
	return &regexMatcher{res: res}, nil
}

// match narrows each regex hit to the minimal covering word span. The regex
// runs against the space-joined word text so byte offsets line up with the
// per-word offset table; sentence-only transcripts fall back to whole-sentence
// spans.
func (m *regexMatcher) match(s types.Sentence) []span {
	if len(s.Words) == 0 {
		for _, re := range m.res {
			if re.MatchString(s.Text) {
				return []span{{start: s.Start, end: s.End, text: s.Text}}
			}
		}
		return nil
	}

	joined, offsets := wordOffsets(s.Words)
	var out []span
	for _, re := range m.res {
		for _, loc := range re.FindAllStringIndex(joined, -1) {
			lo, hi := loc[0], loc[1]
			if hi <= lo {
				continue
			}
			first, last := coveringWords(offsets, lo, hi)
			if first < 0 {
				continue
			}
			out = append(out, span{
				start: s.Words[first].Start,
				end:   s.Words[last].End,
				text:  joined[lo:hi],
			})
		}
	}
	return out
}

// wordOffsets joins word texts with single spaces and records each word's
// byte range within the joined string.
func wordOffsets(words []types.Word) (string, [][2]int) {
	var b strings.Builder
	offsets := make([][2]int, len(words))
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		lo := b.Len()
		b.WriteString(w.Text)
		offsets[i] = [2]int{lo, b.Len()}
	}
	return b.String(), offsets
}

// coveringWords finds the first and last word overlapping byte range [lo,hi).
func coveringWords(offsets [][2]int, lo, hi int) (int, int) {
	first, last := -1, -1
	for i, o := range offsets {
		if o[1] <= lo || o[0] >= hi {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last
}

type fuzzyMatcher struct {
	queries   [][]string
	threshold float64
}

func newFuzzyMatcher(patterns []string, threshold float64) (*fuzzyMatcher, error) {
	if threshold < 0 || threshold > 1 {
		return nil, &types.InvalidQueryError{
			Pattern: strings.Join(patterns, " "),
			Reason:  "fuzzy threshold must be in [0,1]",
		}
	}
	queries := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		toks := tokenize(p)
		if len(toks) == 0 {
			return nil, &types.InvalidQueryError{Pattern: p, Reason: "no tokens in fuzzy pattern"}
		}
		queries = append(queries, toks)
	}
	return &fuzzyMatcher{queries: queries, threshold: threshold}, nil
}

// match scores token overlap between the query and the sentence. A hit always
// expands to the whole enclosing sentence; fuzzy mode never guesses sub-word
// spans.
func (m *fuzzyMatcher) match(s types.Sentence) []span {
	toks := tokenize(s.Text)
	if len(toks) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	for _, q := range m.queries {
		hits := 0
		for _, t := range q {
			if _, ok := set[t]; ok {
				hits++
			}
		}
		if float64(hits)/float64(len(q)) >= m.threshold {
			return []span{{start: s.Start, end: s.End, text: s.Text}}
		}
	}
	return nil
}

// tokenize splits on anything that is not a letter or digit and case-folds
// each token.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fold(f))
	}
	return out
}
