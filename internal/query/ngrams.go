package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/forPelevin/supercut/internal/types"
)

var reSentenceSplit = regexp.MustCompile(`[.?!,:"]+\s*|\s+`)

// NGramCount is one n-gram and how often it occurs across the transcripts.
type NGramCount struct {
	Gram  string
	Count int
}

// NGrams counts word n-grams across all transcripts, most frequent first.
// Ties break lexicographically so the listing is stable.
func NGrams(trs []types.Transcript, n int) []NGramCount {
	if n <= 0 {
		return nil
	}

	var words []string
	for _, tr := range trs {
		for _, s := range tr.Sentences {
			if len(s.Words) > 0 {
				for _, w := range s.Words {
					words = append(words, fold(w.Text))
				}
				continue
			}
			// sentence-only transcripts: split the text instead
			for _, w := range reSentenceSplit.Split(s.Text, -1) {
				if w != "" {
					words = append(words, fold(w))
				}
			}
		}
	}
	counts := make(map[string]int)
	for i := 0; i+n <= len(words); i++ {
		counts[strings.Join(words[i:i+n], " ")]++
	}

	out := make([]NGramCount, 0, len(counts))
	for g, c := range counts {
		out = append(out, NGramCount{Gram: g, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Gram < out[j].Gram
	})
	return out
}
